package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoppable-video/backend/internal/models"
)

func TestClient_Video(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/videos/v1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "v1",
			"videoUrl": "https://cdn.example.com/v1.mp4",
			"duration": 100,
			"published": true,
			"carouselConfig": {"position": "top-left", "showTitle": true},
			"productPlacements": [{"id": "pl1", "productId": "p1", "startTime": 10, "endTime": 20}]
		}`))
	}))
	defer srv.Close()

	v, err := NewClient(srv.URL+"/api/", nil, 0).Video(context.Background(), "v1")

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/v1.mp4", v.VideoURL)
	assert.Equal(t, 100, v.Duration)
	require.Len(t, v.ProductPlacements, 1)
	assert.Equal(t, 10.0, v.ProductPlacements[0].StartTime)
	require.NotNil(t, v.CarouselConfig.ShowTitle)
	assert.True(t, *v.CarouselConfig.ShowTitle)
	assert.Nil(t, v.CarouselConfig.ShowPrice)
}

func TestClient_ProductNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"Product not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, nil, 0).Product(context.Background(), "missing")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "products", se.Resource)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
}

func TestClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, nil, 0).Video(context.Background(), "v1")

	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "HTTP 502")
}

func TestClient_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, nil, 0).Product(context.Background(), "p1")

	assert.ErrorContains(t, err, "decode products p1")
}

func TestClient_EscapesID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/a%2Fb", r.URL.RawPath)
		_, _ = w.Write([]byte(`{"id":"a/b","title":"x","price":"1","url":"u","thumbnailUrl":"t"}`))
	}))
	defer srv.Close()

	p, err := NewClient(srv.URL, nil, 0).Product(context.Background(), "a/b")

	require.NoError(t, err)
	assert.Equal(t, "a/b", p.ID)
}

func TestClient_SharedFetchSurvivesCancelledCaller(t *testing.T) {
	release := make(chan struct{})
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		<-release
		_, _ = w.Write([]byte(`{"id":"p1","title":"Sneaker","price":"$89","url":"https://shop.example.com/p1","thumbnailUrl":""}`))
	}))
	defer srv.Close()
	client := NewClient(srv.URL, nil, 0)

	first, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := client.Product(first, "p1")
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return atomic.LoadInt32(&hits) == 1 }, 2*time.Second, time.Millisecond)

	second := make(chan *models.Product, 1)
	go func() {
		p, _ := client.Product(context.Background(), "p1")
		second <- p
	}()
	time.Sleep(50 * time.Millisecond) // let the second caller join the flight

	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	p := <-second
	require.NotNil(t, p)
	assert.Equal(t, "Sneaker", p.Title)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}
