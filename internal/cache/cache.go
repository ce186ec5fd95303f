// Package cache stores provider payloads under TTL with a longer-lived
// stale copy, so a failing upstream can still be answered from old data.
package cache

import (
	"context"
	"time"
)

// Entry is one cached provider payload.
type Entry struct {
	Payload   map[string]interface{} `json:"payload"`
	FetchedAt time.Time              `json:"fetchedAt"`
}

// Store is the shared cache. Get only returns entries within their TTL;
// GetStale also returns entries past it, up to the stale retention
// horizon. Set records both copies.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	GetStale(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, entry Entry, ttl time.Duration) error
}
