package catalog

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shoppable-video/backend/internal/models"
	"github.com/shoppable-video/backend/pkg/response"
	"github.com/shoppable-video/backend/pkg/storage"
)

// ObjectResolver turns s3:// references into loadable URLs.
type ObjectResolver interface {
	ObjectURL(ctx context.Context, raw string) (string, error)
}

// Handler serves the read-only catalog consumed by embed players.
// Responses are bare JSON documents, not the API envelope.
type Handler struct {
	store   Store
	media   ObjectResolver
	baseURL string
	logger  *zap.Logger
}

// NewHandler creates a catalog handler. media may be nil; baseURL, when set,
// replaces the request-derived origin for relative media paths.
func NewHandler(store Store, media ObjectResolver, baseURL string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		store:   store,
		media:   media,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// RegisterRoutes mounts the catalog routes on g.
func (h *Handler) RegisterRoutes(g *gin.RouterGroup) {
	g.GET("/videos/:id", h.GetVideo)
	g.GET("/products/:id", h.GetProduct)
}

// GetVideo handles GET /videos/:id.
func (h *Handler) GetVideo(c *gin.Context) {
	v, err := h.store.GetVideo(c.Request.Context(), c.Param("id"))
	if errors.Is(err, ErrNotFound) {
		response.NotFound(c, "Video not found")
		return
	}
	if err != nil {
		h.logger.Error("fetch video failed", zap.String("video_id", c.Param("id")), zap.Error(err))
		response.Internal(c, "Failed to fetch video")
		return
	}

	out := *v
	out.VideoURL = h.mediaURL(c, v.VideoURL)
	if v.ThumbnailURL != nil {
		thumb := h.mediaURL(c, *v.ThumbnailURL)
		out.ThumbnailURL = &thumb
	}
	if out.ProductPlacements == nil {
		out.ProductPlacements = []models.Placement{}
	}
	c.JSON(http.StatusOK, out)
}

// GetProduct handles GET /products/:id.
func (h *Handler) GetProduct(c *gin.Context) {
	p, err := h.store.GetProduct(c.Request.Context(), c.Param("id"))
	if errors.Is(err, ErrNotFound) {
		response.NotFound(c, "Product not found")
		return
	}
	if err != nil {
		h.logger.Error("fetch product failed", zap.String("product_id", c.Param("id")), zap.Error(err))
		response.Internal(c, "Failed to fetch product")
		return
	}

	out := *p
	out.ThumbnailURL = h.mediaURL(c, p.ThumbnailURL)
	c.JSON(http.StatusOK, out)
}

// mediaURL makes a stored media reference loadable from a third-party page.
func (h *Handler) mediaURL(c *gin.Context, raw string) string {
	switch {
	case raw == "":
		return raw
	case strings.HasPrefix(raw, "http://"), strings.HasPrefix(raw, "https://"):
		return raw
	case strings.HasPrefix(raw, storage.Scheme):
		if h.media == nil {
			return raw
		}
		u, err := h.media.ObjectURL(c.Request.Context(), raw)
		if err != nil {
			h.logger.Warn("resolve media url failed", zap.String("ref", raw), zap.Error(err))
			return raw
		}
		return u
	default:
		if !strings.HasPrefix(raw, "/") {
			raw = "/" + raw
		}
		return h.origin(c) + raw
	}
}

func (h *Handler) origin(c *gin.Context) string {
	if h.baseURL != "" {
		return h.baseURL
	}
	proto := c.GetHeader("X-Forwarded-Proto")
	if proto == "" {
		proto = "http"
		if c.Request.TLS != nil {
			proto = "https"
		}
	}
	host := c.GetHeader("X-Forwarded-Host")
	if host == "" {
		host = c.Request.Host
	}
	return proto + "://" + host
}
