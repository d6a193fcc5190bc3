package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go-growth-analyzer/pkg/models"
)

// Provider supplies the optional external ambient-light signal the sunlight
// proxy blends with its image-derived estimate. Absence of a provider (or a
// failed fetch) must never fail an analysis.
type Provider interface {
	Current(ctx context.Context) (*models.WeatherReading, error)
}

// SunlightScore normalizes a weather reading onto [0,1]: clear, cloudless
// conditions score high, overcast and stormy conditions score low.
func SunlightScore(r models.WeatherReading) float64 {
	cloudFactor := float64(100-r.Clouds) / 100.0

	boost := 0.0
	description := strings.ToLower(r.Condition)
	switch {
	case strings.Contains(description, "clear"):
		boost = 0.1
	case strings.Contains(description, "sun"):
		boost = 0.15
	case strings.Contains(description, "rain"), strings.Contains(description, "storm"):
		boost = -0.1
	case strings.Contains(description, "cloud"):
		boost = -0.05
	}

	score := cloudFactor + boost
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// httpProvider fetches current conditions from an OpenWeather-compatible
// endpoint.
type httpProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewHTTPProvider creates a weather provider against the given API base URL.
func NewHTTPProvider(baseURL, apiKey string) Provider {
	return &httpProvider{
		client:  &http.Client{Timeout: 5 * time.Second},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// apiResponse mirrors the subset of the upstream payload we consume.
type apiResponse struct {
	Clouds struct {
		All int `json:"all"`
	} `json:"clouds"`
	UVI     float64 `json:"uvi"`
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
}

func (p *httpProvider) Current(ctx context.Context) (*models.WeatherReading, error) {
	u, err := url.Parse(p.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid weather API URL: %w", err)
	}
	q := u.Query()
	if p.apiKey != "" {
		q.Set("appid", p.apiKey)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather API returned status %d", resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode weather response: %w", err)
	}

	reading := &models.WeatherReading{
		Clouds:  body.Clouds.All,
		UVIndex: body.UVI,
	}
	if len(body.Weather) > 0 {
		reading.Condition = body.Weather[0].Main
	}
	return reading, nil
}
