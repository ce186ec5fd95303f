// Package session keeps per-conversation context between queries so
// follow-ups like "what about tomorrow?" can reuse the prior location
// and crop.
package session

import (
	"context"
	"time"

	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/models"
)

// Update carries the fields a query contributes to its session. Empty
// fields leave the stored value untouched; set fields overwrite it.
type Update struct {
	Location string
	Crop     string
	Intent   models.IntentLabel
}

func (u Update) empty() bool {
	return u.Location == "" && u.Crop == "" && u.Intent == ""
}

// Store persists session contexts. Apply must merge atomically: two
// concurrent updates to the same session id may interleave in any
// order, but a reader must never observe a mix of partial fields from
// both.
type Store interface {
	Get(ctx context.Context, sessionID string) (models.SessionContext, bool, error)
	Apply(ctx context.Context, sessionID string, u Update) (models.SessionContext, error)
	Delete(ctx context.Context, sessionID string) error
}

// Manager is the pipeline-facing facade over a Store.
type Manager struct {
	store Store
}

func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Load returns the stored context for the session, if any. Store
// errors degrade to "no context": a session miss only costs fallback
// quality, never the request.
func (m *Manager) Load(ctx context.Context, sessionID string) (models.SessionContext, bool) {
	sctx, ok, err := m.store.Get(ctx, sessionID)
	if err != nil || !ok {
		return models.SessionContext{}, false
	}
	return sctx, true
}

// Remember folds the query's extracted entities and primary intent into
// the session.
func (m *Manager) Remember(ctx context.Context, sessionID string, entities models.EntitySet, intents []models.Intent) error {
	u := Update{}
	if loc, ok := entities.Primary(models.EntityLocation); ok {
		u.Location = loc.Canonical
	}
	if crop, ok := entities.Primary(models.EntityCrop); ok {
		u.Crop = crop.Canonical
	}
	for _, in := range intents {
		if in.Actionable() {
			u.Intent = in.Label
			break
		}
	}
	if u.empty() {
		return nil
	}
	_, err := m.store.Apply(ctx, sessionID, u)
	return err
}

// clock lets tests control time in the stores.
type clock func() time.Time
