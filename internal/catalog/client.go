// Package catalog reads videos and products: an HTTP client for player sessions and
// the read-only API that serves them.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/shoppable-video/backend/internal/models"
)

// DefaultFetchTimeout bounds one catalog request.
const DefaultFetchTimeout = 10 * time.Second

// ErrNotFound is returned (wrapped) when the API answers 404.
var ErrNotFound = errors.New("not found")

// StatusError is a non-2xx answer from the catalog API.
type StatusError struct {
	Resource   string
	ID         string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Resource, e.ID, e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

// Client fetches catalog resources from {apiUrl}/videos/{id} and {apiUrl}/products/{id}.
// Concurrent requests for the same resource share one round trip.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	group   singleflight.Group
}

// NewClient creates a client for apiURL. A nil httpClient uses http.DefaultClient.
func NewClient(apiURL string, httpClient *http.Client, timeout time.Duration) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(apiURL, "/"),
		http:    httpClient,
		timeout: timeout,
	}
}

// Video fetches one video descriptor.
func (c *Client) Video(ctx context.Context, id string) (*models.Video, error) {
	v, err := c.do(ctx, "videos", id, func() interface{} { return &models.Video{} })
	if err != nil {
		return nil, err
	}
	return v.(*models.Video), nil
}

// Product fetches one product.
func (c *Client) Product(ctx context.Context, id string) (*models.Product, error) {
	v, err := c.do(ctx, "products", id, func() interface{} { return &models.Product{} })
	if err != nil {
		return nil, err
	}
	return v.(*models.Product), nil
}

// do runs one shared fetch. The round trip is detached from ctx so a caller
// giving up does not fail the others waiting on it; it is bounded by c.timeout.
func (c *Client) do(ctx context.Context, resource, id string, alloc func() interface{}) (interface{}, error) {
	ch := c.group.DoChan(resource+"/"+id, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		out := alloc()
		if err := c.getJSON(fetchCtx, resource, id, out); err != nil {
			return nil, err
		}
		return out, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.Val, r.Err
	}
}

func (c *Client) getJSON(ctx context.Context, resource, id string, out interface{}) error {
	endpoint := c.baseURL + "/" + resource + "/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("get %s %s: %w", resource, id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Resource: resource, ID: id, StatusCode: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", resource, id, err)
	}
	return nil
}
