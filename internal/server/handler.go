package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/aggregator"
	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/alerts"
	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/common/config"
	apperrors "github.com/Arnavmishra002/agri-advisory-app-sub001/internal/common/errors"
	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/common/logger"
	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/common/metrics"
	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/common/validation"
	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/compose"
	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/models"
	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/nlp/extract"
	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/nlp/intent"
	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/nlp/normalize"
	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/providers"
	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/ratelimit"
	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/session"
)

const maxBodyBytes = 64 << 10

// QueryHandler runs the full advisory pipeline for one request:
// admission, normalization, extraction, classification, session merge,
// aggregation and composition.
type QueryHandler struct {
	cfg        *config.Config
	log        logger.Logger
	normalizer *normalize.Normalizer
	extractor  *extract.Extractor
	classifier *intent.Classifier
	sessions   *session.Manager
	aggregator *aggregator.Aggregator
	composer   *compose.Composer
	limiter    *ratelimit.Limiter
	notifier   *alerts.Notifier
}

func NewQueryHandler(
	cfg *config.Config,
	log logger.Logger,
	normalizer *normalize.Normalizer,
	extractor *extract.Extractor,
	classifier *intent.Classifier,
	sessions *session.Manager,
	agg *aggregator.Aggregator,
	composer *compose.Composer,
	limiter *ratelimit.Limiter,
	notifier *alerts.Notifier,
) *QueryHandler {
	return &QueryHandler{
		cfg:        cfg,
		log:        log,
		normalizer: normalizer,
		extractor:  extractor,
		classifier: classifier,
		sessions:   sessions,
		aggregator: agg,
		composer:   composer,
		limiter:    limiter,
		notifier:   notifier,
	}
}

type queryRequest struct {
	Query          string   `json:"query"`
	LanguageHint   string   `json:"language_hint,omitempty"`
	SessionID      string   `json:"session_id"`
	ClientIdentity string   `json:"client_identity,omitempty"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
}

type intentView struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

type entityView struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
}

type queryResponse struct {
	Language     string                `json:"language"`
	Intents      []intentView          `json:"intents"`
	Entities     map[string]entityView `json:"entities"`
	Sections     []models.Section      `json:"sections"`
	ComposedText string                `json:"composed_text"`
}

// ServeHTTP handles POST /api/v1/query.
func (h *QueryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, apperrors.NewInvalidRequestError("unreadable request body"))
		return
	}
	if err := validation.ValidateQueryPayload(body); err != nil {
		writeError(w, apperrors.NewInvalidRequestError(err.Error()))
		return
	}
	var req queryRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, apperrors.NewInvalidRequestError("malformed JSON payload"))
		return
	}

	client := clientIdentity(&req, r)
	if decision := h.limiter.Allow(ctx, client, "query"); !decision.Allowed {
		h.log.Info("request denied by admission control", map[string]interface{}{
			"client": client,
		})
		writeError(w, apperrors.NewRateLimitExceededError(decision.RetryAfter))
		return
	}

	// Pipeline, admission passed.
	norm := h.normalizer.Normalize(req.Query, models.Language(req.LanguageHint))
	entities := h.extractor.Extract(norm.Tokens)
	intents := h.classifier.Classify(norm.Tokens)

	sctx, hasSession := h.sessions.Load(ctx, req.SessionID)
	params, views, effective := h.resolveParams(entities, sctx, hasSession, &req)

	if err := h.sessions.Remember(ctx, req.SessionID, entities, intents); err != nil {
		// Losing context costs follow-up quality, not this answer.
		h.log.WithError(err).Warn("session update failed", map[string]interface{}{
			"session_id": req.SessionID,
		})
	}

	sections := h.aggregator.Resolve(ctx, intents, params)
	text := h.composer.Compose(norm.Language, intents, effective, sections)

	if h.notifier != nil {
		// Alerting rides on the request but must not delay it.
		go h.notifier.Evaluate(context.WithoutCancel(ctx), params.Location, sections)
	}

	resp := queryResponse{
		Language:     string(norm.Language),
		Intents:      make([]intentView, 0, len(intents)),
		Entities:     views,
		Sections:     sections,
		ComposedText: text,
	}
	for _, in := range intents {
		resp.Intents = append(resp.Intents, intentView{Label: string(in.Label), Confidence: in.Confidence})
	}

	primary := "unknown"
	if len(intents) > 0 {
		primary = string(intents[0].Label)
	}
	metrics.QueriesTotal.WithLabelValues(primary, string(norm.Language)).Inc()
	metrics.QueryDuration.WithLabelValues(primary).Observe(time.Since(start).Seconds())

	writeJSON(w, http.StatusOK, resp)
}

// resolveParams merges query entities with the session context. Entity
// kinds present in the query win; absent kinds fall back to the stored
// session values. The returned set is what the composer renders: query
// entities plus the session-filled ones.
func (h *QueryHandler) resolveParams(entities models.EntitySet, sctx models.SessionContext, hasSession bool, req *queryRequest) (providers.Params, map[string]entityView, models.EntitySet) {
	params := providers.Params{Latitude: req.Latitude, Longitude: req.Longitude}
	views := make(map[string]entityView)

	var merged []models.Entity
	for _, kind := range []models.EntityKind{
		models.EntityLocation, models.EntityCrop, models.EntityCommodity, models.EntityDate,
	} {
		merged = append(merged, entities.All(kind)...)
	}

	if loc, ok := entities.Primary(models.EntityLocation); ok {
		params.Location = loc.Canonical
		views["location"] = entityView{Value: loc.Canonical, Confidence: loc.Confidence, Source: "query"}
	} else if hasSession && sctx.Location != "" {
		params.Location = sctx.Location
		views["location"] = entityView{Value: sctx.Location, Confidence: 1, Source: "session"}
		merged = append(merged, models.Entity{Kind: models.EntityLocation, Canonical: sctx.Location, Confidence: 1})
	}

	if crop, ok := entities.Primary(models.EntityCrop); ok {
		params.Crop = crop.Canonical
		views["crop"] = entityView{Value: crop.Canonical, Confidence: crop.Confidence, Source: "query"}
	} else if hasSession && sctx.Crop != "" {
		params.Crop = sctx.Crop
		views["crop"] = entityView{Value: sctx.Crop, Confidence: 1, Source: "session"}
		merged = append(merged, models.Entity{Kind: models.EntityCrop, Canonical: sctx.Crop, Confidence: 1})
	}

	if com, ok := entities.Primary(models.EntityCommodity); ok {
		params.Commodity = com.Canonical
		views["commodity"] = entityView{Value: com.Canonical, Confidence: com.Confidence, Source: "query"}
	} else if params.Crop != "" {
		params.Commodity = params.Crop
	}

	if date, ok := entities.Primary(models.EntityDate); ok {
		params.Date = date.Canonical
		views["date"] = entityView{Value: date.Canonical, Confidence: date.Confidence, Source: "query"}
	}

	return params, views, models.NewEntitySet(merged)
}

// clientIdentity prefers the declared identity and falls back to the
// transport peer address.
func clientIdentity(req *queryRequest, r *http.Request) string {
	if req.ClientIdentity != "" {
		return req.ClientIdentity
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, stdErr *apperrors.StandardError) {
	body := map[string]interface{}{"error": stdErr}
	if stdErr.Code == apperrors.ErrCodeRateLimitExceeded {
		if secs, ok := stdErr.Metadata["retryAfterSeconds"].(int); ok {
			w.Header().Set("Retry-After", fmt.Sprintf("%d", secs))
			body["retry_after_seconds"] = secs
		}
	}
	writeJSON(w, stdErr.HTTPStatus(), body)
}
