package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoppable-video/backend/internal/analytics"
	"github.com/shoppable-video/backend/internal/models"
	"github.com/shoppable-video/backend/pkg/queue"
)

type memStore struct {
	mu     sync.Mutex
	stored []models.AnalyticsEvent
	errs   []error
}

func (s *memStore) Insert(ctx context.Context, e *models.AnalyticsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return err
		}
	}
	s.stored = append(s.stored, *e)
	return nil
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stored)
}

type memQueue struct {
	mu      sync.Mutex
	jobs    []*queue.Job
	retried []*queue.Job
}

func (q *memQueue) Dequeue(ctx context.Context, jobType queue.JobType) (*queue.Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.jobs) == 0 {
		return nil, nil
	}
	j := q.jobs[0]
	q.jobs = q.jobs[1:]
	return j, nil
}

func (q *memQueue) Retry(ctx context.Context, job *queue.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	job.Attempt++
	q.retried = append(q.retried, job)
	if job.Attempt < queue.MaxRetries {
		q.jobs = append(q.jobs, job)
	}
	return nil
}

func eventJob(t *testing.T, id string) *queue.Job {
	t.Helper()
	payload, err := json.Marshal(models.AnalyticsEvent{ID: id, VideoID: "v1", EventType: models.EventView, Timestamp: 1})
	require.NoError(t, err)
	return &queue.Job{ID: "job-" + id, Type: queue.JobTypeAnalyticsEvent, Payload: payload}
}

func TestProcess_StoresEvent(t *testing.T) {
	store := &memStore{}
	p := NewAnalyticsProcessor(store, &memQueue{}, nil)

	require.NoError(t, p.Process(context.Background(), eventJob(t, "e1")))

	require.Equal(t, 1, store.count())
	assert.Equal(t, "e1", store.stored[0].ID)
}

func TestProcess_DropsInvalidReference(t *testing.T) {
	store := &memStore{errs: []error{fmt.Errorf("insert: %w", analytics.ErrInvalidReference)}}
	p := NewAnalyticsProcessor(store, &memQueue{}, nil)

	assert.NoError(t, p.Process(context.Background(), eventJob(t, "e1")))
	assert.Equal(t, 0, store.count())
}

func TestProcess_RejectsBadJobs(t *testing.T) {
	p := NewAnalyticsProcessor(&memStore{}, &memQueue{}, nil)

	assert.ErrorContains(t, p.Process(context.Background(), &queue.Job{Type: "email"}), "unknown job type")
	assert.ErrorContains(t, p.Process(context.Background(), &queue.Job{Type: queue.JobTypeAnalyticsEvent, Payload: []byte(`{`)}), "unmarshal payload")
}

func TestRun_RetriesTransientFailures(t *testing.T) {
	store := &memStore{errs: []error{errors.New("conn reset"), errors.New("conn reset")}}
	q := &memQueue{jobs: []*queue.Job{eventJob(t, "e1")}}
	p := NewAnalyticsProcessor(store, q, nil)
	p.backoff = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return store.count() == 1 }, 2*time.Second, time.Millisecond)
	cancel()
	<-done

	q.mu.Lock()
	defer q.mu.Unlock()
	assert.Len(t, q.retried, 2)
}

func TestRun_GivesUpAfterMaxRetries(t *testing.T) {
	fail := errors.New("db down")
	store := &memStore{errs: []error{fail, fail, fail, fail}}
	q := &memQueue{jobs: []*queue.Job{eventJob(t, "e1")}}
	p := NewAnalyticsProcessor(store, q, nil)
	p.backoff = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		q.mu.Lock()
		defer q.mu.Unlock()
		return len(q.retried) == queue.MaxRetries
	}, 2*time.Second, time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, 0, store.count())
}
