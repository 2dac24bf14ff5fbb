package models

// EventType identifies an analytics event kind.
type EventType string

const (
	EventView         EventType = "view"
	EventProductClick EventType = "product_click"
	EventProductCTR   EventType = "product_ctr"
)

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	switch t {
	case EventView, EventProductClick, EventProductCTR:
		return true
	}
	return false
}

// AnalyticsEvent is one recorded player interaction.
type AnalyticsEvent struct {
	ID        string         `json:"id"`
	VideoID   string         `json:"videoId"`
	ProductID *string        `json:"productId"`
	EventType EventType      `json:"eventType"`
	Timestamp int64          `json:"timestamp"` // unix seconds
	Metadata  map[string]any `json:"metadata,omitempty"`
}
