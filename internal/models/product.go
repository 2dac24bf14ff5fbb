package models

// Product is a shoppable item referenced by placements.
type Product struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Price        string  `json:"price"` // display string, e.g. "$19.99"
	Description  *string `json:"description,omitempty"`
	URL          string  `json:"url"`
	ThumbnailURL string  `json:"thumbnailUrl"`
}
