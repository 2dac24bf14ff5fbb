package player

import "github.com/shoppable-video/backend/internal/overlay"

// Host resolves embed containers by id.
type Host interface {
	Container(id string) (Surface, bool)
}

// Surface is the part of a host page one player session draws into.
// Calls come from the session's event loop, one at a time.
type Surface interface {
	MountVideo(m Mount)
	ShowError(msg string)
	ReplaceOverlay(f Frame)
	Open(url string)
}

// Mount describes the video element to attach.
type Mount struct {
	VideoURL string `json:"videoUrl"`
	Duration int    `json:"duration"`
	Controls bool   `json:"controls"`
}

// Frame is the complete overlay layer at one playback time. It replaces the previous frame wholesale.
type Frame struct {
	At       float64   `json:"at"`
	Overlays []Overlay `json:"overlays"`
}

// Overlay is one rendered carousel for an active placement.
type Overlay struct {
	PlacementID string        `json:"placementId"`
	ProductID   string        `json:"productId"`
	Key         string        `json:"key"`
	Node        *overlay.Node `json:"node"`
}
