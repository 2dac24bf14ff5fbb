package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/shoppable-video/backend/internal/models"
	"github.com/shoppable-video/backend/pkg/database"
)

// Store reads catalog entries.
type Store interface {
	GetVideo(ctx context.Context, id string) (*models.Video, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
}

// Repository reads videos and products from PostgreSQL.
type Repository struct {
	db database.DBTX
}

// NewRepository creates a catalog repository.
func NewRepository(db database.DBTX) *Repository {
	return &Repository{db: db}
}

// GetVideo returns a video by ID, or ErrNotFound.
func (r *Repository) GetVideo(ctx context.Context, id string) (*models.Video, error) {
	const q = `SELECT id, title, video_url, duration, thumbnail_url, published, carousel_config, product_placements
		FROM videos WHERE id = $1`
	var (
		v          models.Video
		config     []byte
		placements []byte
	)
	err := r.db.QueryRow(ctx, q, id).Scan(&v.ID, &v.Title, &v.VideoURL, &v.Duration, &v.ThumbnailURL, &v.Published, &config, &placements)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select video %s: %w", id, err)
	}
	if len(config) > 0 {
		if err := json.Unmarshal(config, &v.CarouselConfig); err != nil {
			return nil, fmt.Errorf("decode carousel config of video %s: %w", id, err)
		}
	}
	if len(placements) > 0 {
		if err := json.Unmarshal(placements, &v.ProductPlacements); err != nil {
			return nil, fmt.Errorf("decode placements of video %s: %w", id, err)
		}
	}
	if v.ProductPlacements == nil {
		v.ProductPlacements = []models.Placement{}
	}
	return &v, nil
}

// GetProduct returns a product by ID, or ErrNotFound.
func (r *Repository) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	const q = `SELECT id, title, price, description, url, thumbnail_url FROM products WHERE id = $1`
	var p models.Product
	err := r.db.QueryRow(ctx, q, id).Scan(&p.ID, &p.Title, &p.Price, &p.Description, &p.URL, &p.ThumbnailURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select product %s: %w", id, err)
	}
	return &p, nil
}
