package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/common/config"
	apperrors "github.com/Arnavmishra002/agri-advisory-app-sub001/internal/common/errors"
	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/common/httpclient"
)

const weatherProviderID = "weather"

// WeatherAdapter fetches forecasts from the upstream weather service.
type WeatherAdapter struct {
	cfg    config.ProviderConfig
	client *httpclient.Client
}

func NewWeatherAdapter(cfg config.ProviderConfig) *WeatherAdapter {
	return &WeatherAdapter{
		cfg:    cfg,
		client: httpclient.NewClient(cfg.TimeoutDuration()),
	}
}

func (a *WeatherAdapter) ID() string             { return weatherProviderID }
func (a *WeatherAdapter) TTL() time.Duration     { return a.cfg.TTLDuration() }
func (a *WeatherAdapter) Timeout() time.Duration { return a.cfg.TimeoutDuration() }

func (a *WeatherAdapter) Fetch(ctx context.Context, p Params) (map[string]interface{}, error) {
	q := url.Values{}
	if p.Location != "" {
		q.Set("location", p.Location)
	}
	if p.Latitude != nil && p.Longitude != nil {
		q.Set("lat", strconv.FormatFloat(*p.Latitude, 'f', 4, 64))
		q.Set("lon", strconv.FormatFloat(*p.Longitude, 'f', 4, 64))
	}
	if p.Date != "" {
		q.Set("day", p.Date)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.cfg.BaseURL+"/v1/forecast?"+q.Encode(), nil)
	if err != nil {
		return nil, apperrors.NewProviderUnavailableError(weatherProviderID, err)
	}
	if a.cfg.APIKey != "" {
		req.Header.Set("X-Api-Key", a.cfg.APIKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, apperrors.NewProviderTimeoutError(weatherProviderID)
		}
		return nil, apperrors.NewProviderUnavailableError(weatherProviderID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewProviderUnavailableError(weatherProviderID,
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperrors.NewProviderUnavailableError(weatherProviderID, err)
	}
	return payload, nil
}

// Default returns month-agnostic seasonal averages for the region.
func (a *WeatherAdapter) Default(p Params) map[string]interface{} {
	return map[string]interface{}{
		"location":     p.Location,
		"summary":      "seasonal average",
		"temp_min_c":   18,
		"temp_max_c":   32,
		"rain_chance":  0.3,
		"humidity_pct": 60,
	}
}
