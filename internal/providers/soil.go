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

const soilProviderID = "soil"

// SoilAdapter fetches soil health card data for a district.
type SoilAdapter struct {
	cfg    config.ProviderConfig
	client *httpclient.Client
}

func NewSoilAdapter(cfg config.ProviderConfig) *SoilAdapter {
	return &SoilAdapter{
		cfg:    cfg,
		client: httpclient.NewClient(cfg.TimeoutDuration()),
	}
}

func (a *SoilAdapter) ID() string             { return soilProviderID }
func (a *SoilAdapter) TTL() time.Duration     { return a.cfg.TTLDuration() }
func (a *SoilAdapter) Timeout() time.Duration { return a.cfg.TimeoutDuration() }

func (a *SoilAdapter) Fetch(ctx context.Context, p Params) (map[string]interface{}, error) {
	q := url.Values{}
	if p.Location != "" {
		q.Set("district", p.Location)
	}
	if p.Latitude != nil && p.Longitude != nil {
		q.Set("lat", strconv.FormatFloat(*p.Latitude, 'f', 4, 64))
		q.Set("lon", strconv.FormatFloat(*p.Longitude, 'f', 4, 64))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.cfg.BaseURL+"/v1/soil?"+q.Encode(), nil)
	if err != nil {
		return nil, apperrors.NewProviderUnavailableError(soilProviderID, err)
	}
	if a.cfg.APIKey != "" {
		req.Header.Set("X-Api-Key", a.cfg.APIKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, apperrors.NewProviderTimeoutError(soilProviderID)
		}
		return nil, apperrors.NewProviderUnavailableError(soilProviderID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewProviderUnavailableError(soilProviderID,
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperrors.NewProviderUnavailableError(soilProviderID, err)
	}
	return payload, nil
}

// Default describes the alluvial profile common across the Indo-Gangetic
// plain, which covers most of the service area.
func (a *SoilAdapter) Default(p Params) map[string]interface{} {
	return map[string]interface{}{
		"district":    p.Location,
		"soil_type":   "alluvial",
		"ph":          7.0,
		"organic_pct": 0.5,
		"suitable":    []string{"wheat", "rice", "sugarcane", "mustard"},
	}
}
