package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoppable-video/backend/internal/catalog"
	"github.com/shoppable-video/backend/internal/models"
	"github.com/shoppable-video/backend/pkg/queue"
)

type fakeQueue struct {
	jobs []interface{}
	err  error
}

func (q *fakeQueue) Enqueue(ctx context.Context, jobType queue.JobType, payload interface{}) (*queue.Job, error) {
	if q.err != nil {
		return nil, q.err
	}
	q.jobs = append(q.jobs, payload)
	return &queue.Job{ID: "job-1", Type: jobType}, nil
}

type fakeLister struct {
	filter ListFilter
	events []models.AnalyticsEvent
	err    error
}

func (l *fakeLister) List(ctx context.Context, f ListFilter) ([]models.AnalyticsEvent, error) {
	l.filter = f
	return l.events, l.err
}

type fakeCatalog struct {
	videos   map[string]bool
	products map[string]bool
	err      error
}

func (f fakeCatalog) GetVideo(ctx context.Context, id string) (*models.Video, error) {
	if f.err != nil {
		return nil, f.err
	}
	if !f.videos[id] {
		return nil, catalog.ErrNotFound
	}
	return &models.Video{ID: id}, nil
}

func (f fakeCatalog) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	if !f.products[id] {
		return nil, catalog.ErrNotFound
	}
	return &models.Product{ID: id}, nil
}

type fakeGeo struct{}

func (fakeGeo) Lookup(ip string) (string, string) {
	if ip == "203.0.113.7" {
		return "DE", "Berlin"
	}
	return "", ""
}

func knownCatalog() fakeCatalog {
	return fakeCatalog{videos: map[string]bool{"v1": true}, products: map[string]bool{"p1": true}}
}

func newRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h.RegisterRoutes(r.Group("/api"))
	return r
}

func post(r http.Handler, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/analytics/events", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestIngest_EnqueuesEnrichedEvent(t *testing.T) {
	q := &fakeQueue{}
	r := newRouter(NewHandler(q, nil, knownCatalog(), fakeGeo{}, nil))

	rec := post(r, `{"videoId":"v1","productId":"p1","eventType":"product_click","timestamp":1700000000,"metadata":{"placement":"pl1","os":"spoofed"}}`,
		map[string]string{
			"User-Agent":      "Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Mobile/15E148 Safari/604.1",
			"X-Forwarded-For": "203.0.113.7",
		})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, q.jobs, 1)
	event := q.jobs[0].(*models.AnalyticsEvent)
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "v1", event.VideoID)
	require.NotNil(t, event.ProductID)
	assert.Equal(t, "p1", *event.ProductID)
	assert.Equal(t, models.EventProductClick, event.EventType)
	assert.Equal(t, int64(1700000000), event.Timestamp)
	assert.Equal(t, "pl1", event.Metadata["placement"])
	assert.Equal(t, "mobile", event.Metadata["device"])
	assert.Equal(t, "Safari", event.Metadata["browser"])
	assert.NotEqual(t, "spoofed", event.Metadata["os"])
	assert.Equal(t, "DE", event.Metadata["country"])
	assert.Equal(t, "Berlin", event.Metadata["city"])

	var body models.AnalyticsEvent
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, event.ID, body.ID)
}

func TestIngest_NullProduct(t *testing.T) {
	q := &fakeQueue{}
	r := newRouter(NewHandler(q, nil, knownCatalog(), nil, nil))

	rec := post(r, `{"videoId":"v1","productId":null,"eventType":"view","timestamp":1700000000}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = post(r, `{"videoId":"v1","productId":"","eventType":"view","timestamp":1700000000}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	for _, j := range q.jobs {
		assert.Nil(t, j.(*models.AnalyticsEvent).ProductID)
	}
}

func TestIngest_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad json", `{`, "invalid request"},
		{"missing video", `{"eventType":"view","timestamp":1}`, "invalid request"},
		{"missing timestamp", `{"videoId":"v1","eventType":"view"}`, "invalid request"},
		{"unknown type", `{"videoId":"v1","eventType":"hover","timestamp":1}`, "invalid eventType"},
		{"unknown video", `{"videoId":"v9","eventType":"view","timestamp":1}`, "Invalid videoId or productId reference"},
		{"unknown product", `{"videoId":"v1","productId":"p9","eventType":"product_click","timestamp":1}`, "Invalid videoId or productId reference"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &fakeQueue{}
			r := newRouter(NewHandler(q, nil, knownCatalog(), nil, nil))

			rec := post(r, tt.body, nil)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
			assert.Empty(t, q.jobs)
		})
	}
}

func TestIngest_Failures(t *testing.T) {
	r := newRouter(NewHandler(&fakeQueue{err: errors.New("redis down")}, nil, knownCatalog(), nil, nil))
	rec := post(r, `{"videoId":"v1","eventType":"view","timestamp":1}`, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	r = newRouter(NewHandler(&fakeQueue{}, nil, fakeCatalog{err: errors.New("db down")}, nil, nil))
	rec = post(r, `{"videoId":"v1","eventType":"view","timestamp":1}`, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestIngest_ProductCTRAccepted(t *testing.T) {
	q := &fakeQueue{}
	r := newRouter(NewHandler(q, nil, nil, nil, nil))

	rec := post(r, `{"videoId":"anything","eventType":"product_ctr","timestamp":1}`, nil)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, q.jobs, 1)
}

func TestList(t *testing.T) {
	lister := &fakeLister{events: []models.AnalyticsEvent{{ID: "e1", VideoID: "v1", EventType: models.EventView, Timestamp: 5}}}
	r := newRouter(NewHandler(&fakeQueue{}, lister, nil, nil, nil))

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/events?videoId=v1&startTime=1&endTime=10", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "v1", lister.filter.VideoID)
	require.NotNil(t, lister.filter.StartTime)
	assert.Equal(t, int64(1), *lister.filter.StartTime)
	require.NotNil(t, lister.filter.EndTime)
	assert.Equal(t, int64(10), *lister.filter.EndTime)
	var got []models.AnalyticsEvent
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 1)
}

func TestList_BadRange(t *testing.T) {
	r := newRouter(NewHandler(&fakeQueue{}, &fakeLister{}, nil, nil, nil))

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/events?startTime=yesterday", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
