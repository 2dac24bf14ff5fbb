package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shoppable-video/backend/internal/analytics"
	"github.com/shoppable-video/backend/internal/models"
	"github.com/shoppable-video/backend/pkg/queue"
)

// EventStore persists analytics events.
type EventStore interface {
	Insert(ctx context.Context, e *models.AnalyticsEvent) error
}

// JobQueue is the queue surface the worker drives.
type JobQueue interface {
	Dequeue(ctx context.Context, jobType queue.JobType) (*queue.Job, error)
	Retry(ctx context.Context, job *queue.Job) error
}

// AnalyticsProcessor moves queued analytics events into the database.
type AnalyticsProcessor struct {
	store   EventStore
	queue   JobQueue
	logger  *zap.Logger
	backoff time.Duration
}

// NewAnalyticsProcessor creates an analytics event processor.
func NewAnalyticsProcessor(store EventStore, q JobQueue, logger *zap.Logger) *AnalyticsProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsProcessor{store: store, queue: q, logger: logger, backoff: queue.RetryBackoff}
}

// Process stores one analytics event job. Events referencing deleted videos or
// products are dropped rather than retried.
func (p *AnalyticsProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeAnalyticsEvent {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var event models.AnalyticsEvent
	if err := json.Unmarshal(job.Payload, &event); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	if err := p.store.Insert(ctx, &event); err != nil {
		if errors.Is(err, analytics.ErrInvalidReference) {
			p.logger.Warn("analytics event dropped", zap.String("event_id", event.ID), zap.String("video_id", event.VideoID), zap.Error(err))
			return nil
		}
		return err
	}
	p.logger.Debug("analytics event stored", zap.String("event_id", event.ID), zap.String("event_type", string(event.EventType)))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *AnalyticsProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("analytics worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx, queue.JobTypeAnalyticsEvent)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			p.sleep(ctx)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			p.sleep(ctx)
		}
	}
}

func (p *AnalyticsProcessor) sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(p.backoff):
	}
}
