package realtime

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/shoppable-video/backend/internal/analytics"
	"github.com/shoppable-video/backend/internal/catalog"
	"github.com/shoppable-video/backend/internal/player"
	"github.com/shoppable-video/backend/internal/schedule"
)

// GatewayConfig configures the player sessions started over WebSocket.
type GatewayConfig struct {
	AllowedAPIURLs   []string // empty allows any apiUrl
	FetchTimeout     time.Duration
	AnalyticsTimeout time.Duration
	EndOfVideoTail   float64
	HTTPClient       *http.Client
}

// Gateway starts player sessions for embed clients. Sessions that use the same
// apiUrl share one catalog client so identical fetches collapse.
type Gateway struct {
	hub     *Hub
	cfg     GatewayConfig
	sched   schedule.Scheduler
	logger  *zap.Logger
	mu      sync.Mutex
	clients map[string]*catalog.Client
}

// NewGateway creates a gateway that registers its sessions with hub.
func NewGateway(hub *Hub, cfg GatewayConfig, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	return &Gateway{
		hub:     hub,
		cfg:     cfg,
		sched:   schedule.New(cfg.EndOfVideoTail),
		logger:  logger,
		clients: make(map[string]*catalog.Client),
	}
}

// Allowed reports whether a session may use apiURL.
func (g *Gateway) Allowed(apiURL string) bool {
	if apiURL == "" {
		return false
	}
	if len(g.cfg.AllowedAPIURLs) == 0 {
		return true
	}
	want := normalizeAPIURL(apiURL)
	for _, u := range g.cfg.AllowedAPIURLs {
		if normalizeAPIURL(u) == want {
			return true
		}
	}
	return false
}

func (g *Gateway) catalog(apiURL string) *catalog.Client {
	key := normalizeAPIURL(apiURL)
	g.mu.Lock()
	defer g.mu.Unlock()
	if c, ok := g.clients[key]; ok {
		return c
	}
	c := catalog.NewClient(key, g.cfg.HTTPClient, g.cfg.FetchTimeout)
	g.clients[key] = c
	return c
}

// start begins a player session for c.
func (g *Gateway) start(c *Client, opts player.Options) *player.Controller {
	logger := g.logger.With(zap.String("client_id", c.ID))
	emitter := analytics.NewHTTPEmitter(analytics.EmitterConfig{
		APIURL:       opts.APIURL,
		VideoID:      opts.VideoID,
		Client:       g.cfg.HTTPClient,
		Timeout:      g.cfg.AnalyticsTimeout,
		UserAgent:    c.userAgent,
		ForwardedFor: c.remoteAddr,
	}, logger)

	return player.Init(opts, player.Deps{
		Host:      c,
		Catalog:   g.catalog(opts.APIURL),
		Emitter:   emitter,
		Scheduler: g.sched,
		Logger:    logger,
		OnState: func(s player.State) {
			g.hub.SendToClient(c.ID, "state", map[string]string{"state": s.String()})
		},
	})
}

func normalizeAPIURL(u string) string {
	return strings.TrimRight(strings.TrimSpace(u), "/")
}
