package models

import "time"

// SessionContext is the short-lived conversational state of one session.
// Owned exclusively by the session store; read-only everywhere else.
type SessionContext struct {
	SessionID  string      `json:"sessionId"`
	Location   string      `json:"location,omitempty"`
	Crop       string      `json:"crop,omitempty"`
	LastIntent IntentLabel `json:"lastIntent,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
	LastAccess time.Time   `json:"lastAccess"`
}

// Expired reports whether the context has outlived its inactivity TTL at
// time now.
func (s *SessionContext) Expired(ttl time.Duration, now time.Time) bool {
	return now.Sub(s.LastAccess) > ttl
}
