package analytics

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mssola/useragent"
	"go.uber.org/zap"

	"github.com/shoppable-video/backend/internal/catalog"
	"github.com/shoppable-video/backend/internal/metrics"
	"github.com/shoppable-video/backend/internal/models"
	"github.com/shoppable-video/backend/pkg/queue"
	"github.com/shoppable-video/backend/pkg/response"
)

const defaultListLimit = 1000

// Enqueuer hands accepted events to the storage worker.
type Enqueuer interface {
	Enqueue(ctx context.Context, jobType queue.JobType, payload interface{}) (*queue.Job, error)
}

// Lister reads stored events.
type Lister interface {
	List(ctx context.Context, f ListFilter) ([]models.AnalyticsEvent, error)
}

// GeoLookup resolves a client IP to a country code and city.
type GeoLookup interface {
	Lookup(ip string) (country, city string)
}

// EventRequest is the body for POST /analytics/events.
type EventRequest struct {
	VideoID   string           `json:"videoId" binding:"required"`
	ProductID *string          `json:"productId"`
	EventType models.EventType `json:"eventType" binding:"required"`
	Timestamp int64            `json:"timestamp" binding:"required"`
	Metadata  map[string]any   `json:"metadata"`
}

// Handler accepts player events and serves the raw event log.
type Handler struct {
	queue   Enqueuer
	events  Lister
	catalog catalog.Store
	geo     GeoLookup
	logger  *zap.Logger
}

// NewHandler creates an analytics handler. geo may be nil.
func NewHandler(q Enqueuer, events Lister, store catalog.Store, geo GeoLookup, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{queue: q, events: events, catalog: store, geo: geo, logger: logger}
}

// RegisterRoutes mounts the analytics routes on g.
func (h *Handler) RegisterRoutes(g *gin.RouterGroup) {
	g.POST("/analytics/events", h.Ingest)
	g.GET("/analytics/events", h.List)
}

// Ingest handles POST /analytics/events: validate, enrich, enqueue.
func (h *Handler) Ingest(c *gin.Context) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if !req.EventType.Valid() {
		response.BadRequest(c, "invalid eventType")
		return
	}
	if req.ProductID != nil && *req.ProductID == "" {
		req.ProductID = nil
	}

	ctx := c.Request.Context()
	if err := h.checkReferences(ctx, req); err != nil {
		if errors.Is(err, ErrInvalidReference) {
			response.BadRequest(c, "Invalid videoId or productId reference")
			return
		}
		h.logger.Error("analytics reference check failed", zap.Error(err))
		response.Internal(c, "Failed to create analytics event")
		return
	}

	event := &models.AnalyticsEvent{
		ID:        uuid.New().String(),
		VideoID:   req.VideoID,
		ProductID: req.ProductID,
		EventType: req.EventType,
		Timestamp: req.Timestamp,
		Metadata:  h.metadata(c, req.Metadata),
	}
	if _, err := h.queue.Enqueue(ctx, queue.JobTypeAnalyticsEvent, event); err != nil {
		h.logger.Error("enqueue analytics event failed", zap.Error(err), zap.String("video_id", event.VideoID))
		response.ServiceUnavailable(c, "Failed to create analytics event")
		return
	}
	metrics.EventsIngested.WithLabelValues(string(event.EventType)).Inc()
	c.JSON(http.StatusCreated, event)
}

// List handles GET /analytics/events?videoId=&startTime=&endTime=.
func (h *Handler) List(c *gin.Context) {
	f := ListFilter{VideoID: c.Query("videoId"), Limit: defaultListLimit}
	for name, dst := range map[string]**int64{"startTime": &f.StartTime, "endTime": &f.EndTime} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.BadRequest(c, "invalid "+name)
			return
		}
		*dst = &v
	}

	events, err := h.events.List(c.Request.Context(), f)
	if err != nil {
		h.logger.Error("list analytics events failed", zap.Error(err))
		response.Internal(c, "Failed to fetch analytics events")
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *Handler) checkReferences(ctx context.Context, req EventRequest) error {
	if h.catalog == nil {
		return nil
	}
	if _, err := h.catalog.GetVideo(ctx, req.VideoID); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return ErrInvalidReference
		}
		return err
	}
	if req.ProductID != nil {
		if _, err := h.catalog.GetProduct(ctx, *req.ProductID); err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return ErrInvalidReference
			}
			return err
		}
	}
	return nil
}

// metadata merges client-supplied metadata with what the request reveals about the viewer.
// Server-derived keys win.
func (h *Handler) metadata(c *gin.Context, client map[string]any) map[string]any {
	md := make(map[string]any, len(client)+6)
	for k, v := range client {
		md[k] = v
	}

	if raw := c.Request.UserAgent(); raw != "" {
		ua := useragent.New(raw)
		browser, version := ua.Browser()
		md["userAgent"] = raw
		md["browser"] = browser
		md["browserVersion"] = version
		md["os"] = ua.OS()
		md["device"] = deviceClass(ua)
	}
	if h.geo != nil {
		if country, city := h.geo.Lookup(c.ClientIP()); country != "" {
			md["country"] = country
			if city != "" {
				md["city"] = city
			}
		}
	}
	if len(md) == 0 {
		return nil
	}
	return md
}

func deviceClass(ua *useragent.UserAgent) string {
	switch {
	case ua.Bot():
		return "bot"
	case ua.Mobile():
		return "mobile"
	default:
		return "desktop"
	}
}
