package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/common/config"
	apperrors "github.com/Arnavmishra002/agri-advisory-app-sub001/internal/common/errors"
)

const schemeProviderID = "scheme"

// SchemeAdapter searches the government scheme index. Documents carry
// name, description, eligibility and benefit fields in English and
// Hindi.
type SchemeAdapter struct {
	es    *elasticsearch.Client
	index string
	cfg   config.ProviderConfig
}

func NewSchemeAdapter(es *elasticsearch.Client, index string, cfg config.ProviderConfig) *SchemeAdapter {
	return &SchemeAdapter{es: es, index: index, cfg: cfg}
}

func (a *SchemeAdapter) ID() string             { return schemeProviderID }
func (a *SchemeAdapter) TTL() time.Duration     { return a.cfg.TTLDuration() }
func (a *SchemeAdapter) Timeout() time.Duration { return a.cfg.TimeoutDuration() }

func (a *SchemeAdapter) Fetch(ctx context.Context, p Params) (map[string]interface{}, error) {
	query := map[string]interface{}{
		"size": 3,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []map[string]interface{}{
					{"match": map[string]interface{}{"crops": p.Crop}},
					{"match": map[string]interface{}{"regions": p.Location}},
					{"match_all": map[string]interface{}{}},
				},
			},
		},
	}
	var body bytes.Buffer
	if err := json.NewEncoder(&body).Encode(query); err != nil {
		return nil, apperrors.NewProviderUnavailableError(schemeProviderID, err)
	}

	res, err := a.es.Search(
		a.es.Search.WithContext(ctx),
		a.es.Search.WithIndex(a.index),
		a.es.Search.WithBody(&body),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, apperrors.NewProviderTimeoutError(schemeProviderID)
		}
		return nil, apperrors.NewProviderUnavailableError(schemeProviderID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, apperrors.NewProviderUnavailableError(schemeProviderID,
			fmt.Errorf("search returned %s", res.Status()))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source map[string]interface{} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, apperrors.NewProviderUnavailableError(schemeProviderID, err)
	}

	schemes := make([]map[string]interface{}, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		schemes = append(schemes, h.Source)
	}
	return map[string]interface{}{
		"crop":     p.Crop,
		"location": p.Location,
		"schemes":  schemes,
	}, nil
}

// Default lists the flagship schemes every farmer qualifies for.
func (a *SchemeAdapter) Default(p Params) map[string]interface{} {
	return map[string]interface{}{
		"crop":     p.Crop,
		"location": p.Location,
		"schemes": []map[string]interface{}{
			{"name": "PM-KISAN", "benefit": "income support of 6000 INR per year"},
			{"name": "PMFBY", "benefit": "crop insurance against natural calamities"},
		},
	}
}
