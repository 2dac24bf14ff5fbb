package analytics

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoppable-video/backend/internal/models"
)

func TestRepository_Insert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	productID := "p1"
	mock.ExpectExec(`INSERT INTO analytics_events`).
		WithArgs("e1", "v1", &productID, "product_click", int64(1700000000), []byte(`{"device":"mobile"}`)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = NewRepository(mock).Insert(context.Background(), &models.AnalyticsEvent{
		ID:        "e1",
		VideoID:   "v1",
		ProductID: &productID,
		EventType: models.EventProductClick,
		Timestamp: 1700000000,
		Metadata:  map[string]any{"device": "mobile"},
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_InsertForeignKeyViolation(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	a := pgxmock.AnyArg()
	mock.ExpectExec(`INSERT INTO analytics_events`).
		WithArgs(a, a, a, a, a, a).
		WillReturnError(&pgconn.PgError{Code: "23503", Message: "violates foreign key constraint"})

	err = NewRepository(mock).Insert(context.Background(), &models.AnalyticsEvent{ID: "e1", VideoID: "gone", EventType: models.EventView})

	assert.ErrorIs(t, err, ErrInvalidReference)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_InsertError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	a := pgxmock.AnyArg()
	mock.ExpectExec(`INSERT INTO analytics_events`).
		WithArgs(a, a, a, a, a, a).
		WillReturnError(errors.New("conn closed"))

	err = NewRepository(mock).Insert(context.Background(), &models.AnalyticsEvent{ID: "e1", VideoID: "v1", EventType: models.EventView})

	assert.ErrorContains(t, err, "conn closed")
	assert.False(t, errors.Is(err, ErrInvalidReference))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	start, end := int64(100), int64(200)
	productID := "p1"
	mock.ExpectQuery(`SELECT id, video_id, product_id, event_type, timestamp, metadata FROM analytics_events WHERE video_id = \$1 AND timestamp >= \$2 AND timestamp <= \$3 ORDER BY timestamp DESC LIMIT 50`).
		WithArgs("v1", start, end).
		WillReturnRows(pgxmock.NewRows([]string{"id", "video_id", "product_id", "event_type", "timestamp", "metadata"}).
			AddRow("e2", "v1", &productID, "product_click", int64(150), []byte(`{"device":"desktop"}`)).
			AddRow("e1", "v1", (*string)(nil), "view", int64(120), []byte(nil)))

	list, err := NewRepository(mock).List(context.Background(), ListFilter{VideoID: "v1", StartTime: &start, EndTime: &end, Limit: 50})

	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, models.EventProductClick, list[0].EventType)
	assert.Equal(t, "desktop", list[0].Metadata["device"])
	assert.Nil(t, list[1].ProductID)
	assert.Nil(t, list[1].Metadata)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListUnfiltered(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM analytics_events ORDER BY timestamp DESC$`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "video_id", "product_id", "event_type", "timestamp", "metadata"}))

	list, err := NewRepository(mock).List(context.Background(), ListFilter{})

	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}
