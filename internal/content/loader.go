package content

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joshuaberetta/cvglobe/pkg/core"
)

// ErrNoSource is returned when neither a path nor a URL is configured.
var ErrNoSource = errors.New("no globe data source configured")

// DecodeGlobeData decodes a {locations, journeys} document. Missing arrays
// decode as empty.
func DecodeGlobeData(r io.Reader) (core.GlobeData, error) {
	var data core.GlobeData
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return core.GlobeData{}, fmt.Errorf("decoding globe data: %w", err)
	}
	if data.Locations == nil {
		data.Locations = []core.Location{}
	}
	if data.Journeys == nil {
		data.Journeys = []core.Journey{}
	}
	return data, nil
}

// LoadGlobeDataFile reads globe data from path. Files ending in .gz are
// decompressed.
func LoadGlobeDataFile(path string) (core.GlobeData, error) {
	f, err := os.Open(path)
	if err != nil {
		return core.GlobeData{}, fmt.Errorf("failed to open globe data: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return core.GlobeData{}, fmt.Errorf("failed to open gzip reader: %w", err)
		}
		defer gz.Close()
		r = gz
	}
	return DecodeGlobeData(r)
}

// Client fetches content documents over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the given document URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchGlobeData downloads and decodes the globe data document.
func (c *Client) FetchGlobeData(ctx context.Context) (core.GlobeData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return core.GlobeData{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return core.GlobeData{}, fmt.Errorf("globe data request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return core.GlobeData{}, fmt.Errorf("globe data returned status %d", resp.StatusCode)
	}
	return DecodeGlobeData(resp.Body)
}

// Healthcheck checks that the document URL answers a HEAD request.
func (c *Client) Healthcheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("healthcheck request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("healthcheck returned status %d", resp.StatusCode)
	}
	return nil
}

// LoadGlobeData loads from url when set, otherwise from path.
func LoadGlobeData(ctx context.Context, path, url string) (core.GlobeData, error) {
	switch {
	case url != "":
		return NewClient(url).FetchGlobeData(ctx)
	case path != "":
		return LoadGlobeDataFile(path)
	default:
		return core.GlobeData{}, ErrNoSource
	}
}
