package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process LRU cache. Expired entries linger until
// the stale horizon (TTL times staleFactor) or until LRU eviction, so
// GetStale can serve them when the upstream is down.
type MemoryStore struct {
	mu          sync.Mutex
	maxEntries  int
	staleFactor int
	order       *list.List
	items       map[string]*list.Element
	now         func() time.Time
}

type memoryItem struct {
	key        string
	entry      Entry
	freshUntil time.Time
	staleUntil time.Time
}

func NewMemoryStore(maxEntries, staleFactor int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = 4096
	}
	if staleFactor < 1 {
		staleFactor = 1
	}
	return &MemoryStore{
		maxEntries:  maxEntries,
		staleFactor: staleFactor,
		order:       list.New(),
		items:       make(map[string]*list.Element),
		now:         time.Now,
	}
}

// NewMemoryStoreWithClock is for tests.
func NewMemoryStoreWithClock(maxEntries, staleFactor int, now func() time.Time) *MemoryStore {
	s := NewMemoryStore(maxEntries, staleFactor)
	s.now = now
	return s
}

func (s *MemoryStore) Get(_ context.Context, key string) (Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.lookup(key)
	if !ok || s.now().After(item.freshUntil) {
		return Entry{}, false, nil
	}
	return item.entry, true, nil
}

func (s *MemoryStore) GetStale(_ context.Context, key string) (Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.lookup(key)
	if !ok {
		return Entry{}, false, nil
	}
	return item.entry, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, entry Entry, ttl time.Duration) error {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	item := &memoryItem{
		key:        key,
		entry:      entry,
		freshUntil: now.Add(ttl),
		staleUntil: now.Add(ttl * time.Duration(s.staleFactor)),
	}
	if el, ok := s.items[key]; ok {
		el.Value = item
		s.order.MoveToFront(el)
		return nil
	}
	s.items[key] = s.order.PushFront(item)
	for s.order.Len() > s.maxEntries {
		s.evictOldest()
	}
	return nil
}

// lookup drops entries past the stale horizon and bumps survivors to
// the front of the LRU order. Callers hold the mutex.
func (s *MemoryStore) lookup(key string) (*memoryItem, bool) {
	el, ok := s.items[key]
	if !ok {
		return nil, false
	}
	item := el.Value.(*memoryItem)
	if s.now().After(item.staleUntil) {
		s.order.Remove(el)
		delete(s.items, key)
		return nil, false
	}
	s.order.MoveToFront(el)
	return item, true
}

func (s *MemoryStore) evictOldest() {
	el := s.order.Back()
	if el == nil {
		return
	}
	s.order.Remove(el)
	delete(s.items, el.Value.(*memoryItem).key)
}

// Len is a test helper.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}
