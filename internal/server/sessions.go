package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"docqa/internal/service"
)

// NewAnalyzerFunc builds a fresh analyzer for a new session.
type NewAnalyzerFunc func() (*service.Analyzer, error)

// SessionRegistry maps session IDs to analyzers and expires idle ones.
// Every request touching a session refreshes its TTL.
type SessionRegistry struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]*sessionEntry
	build   NewAnalyzerFunc
}

type sessionEntry struct {
	analyzer  *service.Analyzer
	expiresAt time.Time
}

// NewSessionRegistry creates a registry whose sessions idle out after ttl.
func NewSessionRegistry(ttl time.Duration, build NewAnalyzerFunc) *SessionRegistry {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SessionRegistry{
		ttl:     ttl,
		entries: make(map[string]*sessionEntry),
		build:   build,
	}
}

// Ensure returns the analyzer for id, creating a session when id is empty or
// unknown. The returned string is the session ID to hand back to the client.
func (r *SessionRegistry) Ensure(id string) (string, *service.Analyzer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	if id != "" {
		if entry, ok := r.entries[id]; ok && entry.expiresAt.After(now) {
			entry.expiresAt = now.Add(r.ttl)
			return id, entry.analyzer, nil
		}
	}
	analyzer, err := r.build()
	if err != nil {
		return "", nil, err
	}
	id = uuid.NewString()
	r.entries[id] = &sessionEntry{analyzer: analyzer, expiresAt: now.Add(r.ttl)}
	return id, analyzer, nil
}

// Len reports how many live sessions the registry holds.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep drops expired sessions and reports how many were removed.
func (r *SessionRegistry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	removed := 0
	for id, entry := range r.entries {
		if !entry.expiresAt.After(now) {
			delete(r.entries, id)
			removed++
		}
	}
	return removed
}

func (r *SessionRegistry) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		r.Sweep()
	}
}
