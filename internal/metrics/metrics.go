// Package metrics exposes Prometheus collectors for player sessions and analytics.
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "player_sessions_active",
			Help: "Number of embed player sessions currently connected",
		},
	)

	SessionsFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "player_sessions_failed_total",
			Help: "Player sessions that ended in the error state",
		},
		[]string{"reason"},
	)

	OverlayFrames = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "player_overlay_frames_total",
			Help: "Overlay redraws pushed to player surfaces",
		},
	)

	ProductFetchFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "player_product_fetch_failures_total",
			Help: "Product lookups that failed and left a placement unrendered",
		},
	)

	AnalyticsEmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "player_analytics_emitted_total",
			Help: "Analytics events sent by player sessions, by outcome",
		},
		[]string{"event_type", "outcome"},
	)

	EventsIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_events_ingested_total",
			Help: "Analytics events accepted by the ingest API",
		},
		[]string{"event_type"},
	)

	CatalogCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_lookups_total",
			Help: "Catalog cache lookups, by kind and result",
		},
		[]string{"kind", "result"},
	)
)

func init() {
	prometheus.MustRegister(SessionsActive)
	prometheus.MustRegister(SessionsFailed)
	prometheus.MustRegister(OverlayFrames)
	prometheus.MustRegister(ProductFetchFailures)
	prometheus.MustRegister(AnalyticsEmitted)
	prometheus.MustRegister(EventsIngested)
	prometheus.MustRegister(CatalogCache)
}

// Handler serves the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
