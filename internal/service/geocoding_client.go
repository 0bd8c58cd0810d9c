package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"sportsearch/internal/config"
)

// GeoCandidate is one geocoding match with the provider's confidence in it.
type GeoCandidate struct {
	Lat        float64
	Lon        float64
	Confidence float64
}

// GeocodingClient is the contract with the geocoding collaborator: a place
// query biased to the service region yields zero, one, or many candidates.
type GeocodingClient interface {
	Search(ctx context.Context, query string) ([]GeoCandidate, error)
}

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// NominatimClient queries a Nominatim-compatible geocoding endpoint.
type NominatimClient struct {
	client      HTTPClient
	baseURL     string
	countryBias string
}

// NewNominatimClient creates a geocoding client against cfg.BaseURL.
func NewNominatimClient(cfg *config.GeocodeConfig) *NominatimClient {
	return &NominatimClient{
		client:      &http.Client{Timeout: time.Duration(cfg.Timeout) * time.Second},
		baseURL:     cfg.BaseURL,
		countryBias: cfg.CountryBias,
	}
}

// NewNominatimClientWithHTTP allows injecting the HTTP client, for tests.
func NewNominatimClientWithHTTP(client HTTPClient, baseURL, countryBias string) *NominatimClient {
	return &NominatimClient{client: client, baseURL: baseURL, countryBias: countryBias}
}

// nominatimResult mirrors the provider's jsonv2 response; lat/lon arrive
// as strings.
type nominatimResult struct {
	Lat        string  `json:"lat"`
	Lon        string  `json:"lon"`
	Importance float64 `json:"importance"`
}

// Search geocodes a place name within the configured country bias.
func (c *NominatimClient) Search(ctx context.Context, query string) ([]GeoCandidate, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "jsonv2")
	params.Set("limit", "5")
	if c.countryBias != "" {
		params.Set("countrycodes", c.countryBias)
	}

	endpoint := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "sportsearch/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoding request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding service returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var results []nominatimResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	candidates := make([]GeoCandidate, 0, len(results))
	for _, r := range results {
		lat, errLat := strconv.ParseFloat(r.Lat, 64)
		lon, errLon := strconv.ParseFloat(r.Lon, 64)
		if errLat != nil || errLon != nil {
			continue
		}
		candidates = append(candidates, GeoCandidate{Lat: lat, Lon: lon, Confidence: r.Importance})
	}
	return candidates, nil
}
