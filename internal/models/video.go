package models

import "github.com/shoppable-video/backend/internal/carousel"

// Video is a shoppable video with its carousel config and product timeline.
type Video struct {
	ID                string          `json:"id"`
	Title             string          `json:"title"`
	VideoURL          string          `json:"videoUrl"`
	Duration          int             `json:"duration"` // seconds
	ThumbnailURL      *string         `json:"thumbnailUrl,omitempty"`
	Published         bool            `json:"published"`
	CarouselConfig    carousel.Stored `json:"carouselConfig"`
	ProductPlacements []Placement     `json:"productPlacements"`
}

// Placement is a time window during which a product's overlay may be shown.
// StartTime < EndTime is expected but not enforced; ProductID may not resolve.
type Placement struct {
	ID        string  `json:"id"`
	ProductID string  `json:"productId"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
}
