// Package postcodes is an HTTP client for a postcodes.io style geocoding
// service.
package postcodes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/moorfield/propsearch/internal/geocode"
)

// Compile-time check: Client implements geocode.Geocoder.
var _ geocode.Geocoder = (*Client)(nil)

// Config holds connection parameters for the geocoding service.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client resolves postcodes over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a geocoding client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

type lookupResponse struct {
	Status int `json:"status"`
	Result *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"result"`
}

// Lookup resolves a postcode to its coordinate. An unknown postcode returns
// (nil, nil); transport and server failures return an error.
func (c *Client) Lookup(ctx context.Context, outward, inward string) (*geocode.Point, error) {
	u := fmt.Sprintf("%s/postcodes/%s", c.baseURL, url.PathEscape(outward+" "+inward))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoder request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoder status %d", resp.StatusCode)
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if body.Result == nil {
		return nil, nil
	}

	return &geocode.Point{Lat: body.Result.Latitude, Lon: body.Result.Longitude}, nil
}
