package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/shoppable-video/backend/internal/models"
	"github.com/shoppable-video/backend/pkg/database"
)

// ErrInvalidReference means the event points at a video or product that does not exist.
var ErrInvalidReference = errors.New("invalid videoId or productId reference")

const pgForeignKeyViolation = "23503"

// ListFilter narrows List. Zero values do not filter.
type ListFilter struct {
	VideoID   string
	StartTime *int64
	EndTime   *int64
	Limit     int
}

// Repository stores analytics events.
type Repository struct {
	db database.DBTX
}

// NewRepository creates an analytics event repository.
func NewRepository(db database.DBTX) *Repository {
	return &Repository{db: db}
}

// Insert stores an event. Inserting the same id twice is a no-op.
func (r *Repository) Insert(ctx context.Context, e *models.AnalyticsEvent) error {
	const q = `INSERT INTO analytics_events (id, video_id, product_id, event_type, timestamp, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`
	var metadata []byte
	if len(e.Metadata) > 0 {
		var err error
		if metadata, err = json.Marshal(e.Metadata); err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
	}
	_, err := r.db.Exec(ctx, q, e.ID, e.VideoID, e.ProductID, string(e.EventType), e.Timestamp, metadata)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return fmt.Errorf("insert event %s: %w", e.ID, ErrInvalidReference)
		}
		return fmt.Errorf("insert event %s: %w", e.ID, err)
	}
	return nil
}

// List returns events newest first.
func (r *Repository) List(ctx context.Context, f ListFilter) ([]models.AnalyticsEvent, error) {
	var (
		conds []string
		args  []interface{}
	)
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.VideoID != "" {
		add("video_id = $%d", f.VideoID)
	}
	if f.StartTime != nil {
		add("timestamp >= $%d", *f.StartTime)
	}
	if f.EndTime != nil {
		add("timestamp <= $%d", *f.EndTime)
	}

	q := `SELECT id, video_id, product_id, event_type, timestamp, metadata FROM analytics_events`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY timestamp DESC"
	if f.Limit > 0 {
		q += " LIMIT " + strconv.Itoa(f.Limit)
	}

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	list := []models.AnalyticsEvent{}
	for rows.Next() {
		var (
			e         models.AnalyticsEvent
			eventType string
			metadata  []byte
		)
		if err := rows.Scan(&e.ID, &e.VideoID, &e.ProductID, &eventType, &e.Timestamp, &metadata); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.EventType = models.EventType(eventType)
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
				return nil, fmt.Errorf("decode metadata of event %s: %w", e.ID, err)
			}
		}
		list = append(list, e)
	}
	return list, rows.Err()
}
