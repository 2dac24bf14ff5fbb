package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/shoppable-video/backend/internal/metrics"
	"github.com/shoppable-video/backend/internal/models"
)

// DefaultEmitTimeout bounds a single analytics POST.
const DefaultEmitTimeout = 5 * time.Second

// Emitter reports player events. Emit never blocks on delivery and never reports failure.
type Emitter interface {
	Emit(eventType models.EventType, productID string)
}

// EventPayload is the body POSTed to {apiUrl}/analytics/events.
type EventPayload struct {
	VideoID   string           `json:"videoId"`
	ProductID *string          `json:"productId"`
	EventType models.EventType `json:"eventType"`
	Timestamp int64            `json:"timestamp"`
}

// EmitterConfig configures an HTTPEmitter for one player session.
type EmitterConfig struct {
	APIURL       string
	VideoID      string
	Client       *http.Client
	Timeout      time.Duration
	Clock        clockwork.Clock
	UserAgent    string // forwarded from the embedding browser, if known
	ForwardedFor string
}

// HTTPEmitter posts events in the background: at most once, no retry.
type HTTPEmitter struct {
	cfg    EmitterConfig
	client *http.Client
	clock  clockwork.Clock
	logger *zap.Logger
	wg     sync.WaitGroup
}

// NewHTTPEmitter creates an emitter bound to one API base URL and video.
func NewHTTPEmitter(cfg EmitterConfig, logger *zap.Logger) *HTTPEmitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultEmitTimeout
	}
	client := cfg.Client
	if client == nil {
		client = http.DefaultClient
	}
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &HTTPEmitter{cfg: cfg, client: client, clock: clock, logger: logger}
}

// Emit sends the event asynchronously. An empty productID is sent as null.
func (e *HTTPEmitter) Emit(eventType models.EventType, productID string) {
	if e.cfg.APIURL == "" || e.cfg.VideoID == "" {
		return
	}
	payload := EventPayload{
		VideoID:   e.cfg.VideoID,
		EventType: eventType,
		Timestamp: e.clock.Now().Unix(),
	}
	if productID != "" {
		payload.ProductID = &productID
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if err := e.post(payload); err != nil {
			metrics.AnalyticsEmitted.WithLabelValues(string(eventType), "failed").Inc()
			e.logger.Warn("analytics tracking failed",
				zap.Error(err),
				zap.String("video_id", payload.VideoID),
				zap.String("event_type", string(eventType)),
			)
			return
		}
		metrics.AnalyticsEmitted.WithLabelValues(string(eventType), "sent").Inc()
	}()
}

// Close waits for in-flight posts.
func (e *HTTPEmitter) Close() {
	e.wg.Wait()
}

func (e *HTTPEmitter) post(payload EventPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.Timeout)
	defer cancel()

	url := strings.TrimRight(e.cfg.APIURL, "/") + "/analytics/events"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", e.cfg.UserAgent)
	}
	if e.cfg.ForwardedFor != "" {
		req.Header.Set("X-Forwarded-For", e.cfg.ForwardedFor)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("post event: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("post event: status %d", resp.StatusCode)
	}
	return nil
}
