package session

import (
	"context"
	"sync"
	"time"

	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/common/logger"
	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/common/metrics"
	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/models"
)

// MemoryStore is the in-process session store. A single mutex guards
// the map; merges happen under it, so readers never see torn writes.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]models.SessionContext
	ttl      time.Duration
	now      clock
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]models.SessionContext),
		ttl:      ttl,
		now:      time.Now,
	}
}

// NewMemoryStoreWithClock is for tests that need to control expiry.
func NewMemoryStoreWithClock(ttl time.Duration, now clock) *MemoryStore {
	s := NewMemoryStore(ttl)
	s.now = now
	return s
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (models.SessionContext, bool, error) {
	s.mu.RLock()
	sctx, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return models.SessionContext{}, false, nil
	}
	if sctx.Expired(s.ttl, s.now()) {
		s.mu.Lock()
		delete(s.sessions, sessionID)
		s.mu.Unlock()
		metrics.SessionsActive.Dec()
		return models.SessionContext{}, false, nil
	}
	return sctx, true, nil
}

func (s *MemoryStore) Apply(_ context.Context, sessionID string, u Update) (models.SessionContext, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	sctx, ok := s.sessions[sessionID]
	if ok && sctx.Expired(s.ttl, now) {
		ok = false
		metrics.SessionsActive.Dec()
	}
	if !ok {
		sctx = models.SessionContext{SessionID: sessionID, CreatedAt: now}
		metrics.SessionsActive.Inc()
	}
	if u.Location != "" {
		sctx.Location = u.Location
	}
	if u.Crop != "" {
		sctx.Crop = u.Crop
	}
	if u.Intent != "" {
		sctx.LastIntent = u.Intent
	}
	sctx.LastAccess = now
	s.sessions[sessionID] = sctx
	return sctx, nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; ok {
		delete(s.sessions, sessionID)
		metrics.SessionsActive.Dec()
	}
	return nil
}

// Sweep drops every expired session and returns how many it removed.
// Run it on a timer; expiry is also enforced lazily on access.
func (s *MemoryStore) Sweep(_ context.Context) int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sctx := range s.sessions {
		if sctx.Expired(s.ttl, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		metrics.SessionsActive.Sub(float64(removed))
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is cancelled.
func (s *MemoryStore) RunSweeper(ctx context.Context, every time.Duration, log logger.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.Sweep(ctx); removed > 0 {
				log.Debug("swept expired sessions", map[string]interface{}{
					"removed": removed,
				})
			}
		}
	}
}

// Len is a test helper.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
