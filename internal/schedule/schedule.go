// Package schedule decides which product placements are active at a playback time
// and keeps the per-overlay scroll cycle state.
package schedule

import (
	"strconv"

	"github.com/shoppable-video/backend/internal/carousel"
	"github.com/shoppable-video/backend/internal/models"
)

// DefaultTail is how many seconds before the end of a video the end-of-video anchor starts showing overlays.
const DefaultTail = 5.0

// ActiveAt returns every placement with start <= t <= end, in input order.
// Placements that reference the same product are all returned.
func ActiveAt(placements []models.Placement, t float64) []models.Placement {
	var active []models.Placement
	for _, p := range placements {
		if t >= p.StartTime && t <= p.EndTime {
			active = append(active, p)
		}
	}
	return active
}

// Scheduler applies playback policies on top of ActiveAt.
type Scheduler struct {
	Tail float64 // seconds; end-of-video overlays only show once t >= duration - Tail
}

// New returns a Scheduler; a non-positive tail falls back to DefaultTail.
func New(tail float64) Scheduler {
	if tail <= 0 {
		tail = DefaultTail
	}
	return Scheduler{Tail: tail}
}

// Active returns the placements of v that should render at t under cfg.
func (s Scheduler) Active(v *models.Video, cfg carousel.Config, t float64) []models.Placement {
	if v == nil {
		return nil
	}
	if cfg.Position == carousel.PositionEndOfVideo && !s.InTail(v, t) {
		return nil
	}
	return ActiveAt(v.ProductPlacements, t)
}

// InTail reports whether t has reached the last Tail seconds of v.
func (s Scheduler) InTail(v *models.Video, t float64) bool {
	return t >= float64(v.Duration)-s.Tail
}

// OverlayKey identifies one active overlay instance for scroll state: video, product and start time.
func OverlayKey(videoID string, p models.Placement) string {
	return videoID + ":" + p.ProductID + ":" + strconv.FormatFloat(p.StartTime, 'f', -1, 64)
}
