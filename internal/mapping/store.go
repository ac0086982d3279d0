// Package mapping is the persistent address -> business identity store. It
// avoids repeat provider lookups and carries manual overrides across runs.
package mapping

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/dewart-reps/mileage-cli/internal/address"
)

// Sentinel marks a confirmed "searched, found nothing" entry. It is distinct
// from absence: a sentinel never triggers a repeat live lookup.
const Sentinel = "NO_BUSINESS_FOUND"

// Entry sources.
const (
	SourceManual = "manual"
	SourcePlaces = "places"
	SourceOSM    = "osm"
)

// Entry is one address -> business mapping.
type Entry struct {
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Source   string `json:"source"`
}

// IsSentinel reports whether the entry is a confirmed negative.
func (e Entry) IsSentinel() bool { return e.Name == Sentinel }

// Backend is the durable storage behind a Store. Load returns the mapping
// entries plus any unknown raw keys (file comments and the like) that must
// survive a write-back.
type Backend interface {
	Load(ctx context.Context) (map[string]Entry, map[string]json.RawMessage, error)
	Save(ctx context.Context, entries map[string]Entry, extras map[string]json.RawMessage) error
	Close() error
}

// resolutionLogger is implemented by backends that keep a resolution audit
// trail.
type resolutionLogger interface {
	LogResolution(ctx context.Context, addr, name, source, outcome string) error
}

// Store is the in-memory business mapping, bulk-loaded at start and
// bulk-flushed after batches of writes. Single-writer: no locking.
type Store struct {
	backend Backend
	entries map[string]Entry
	extras  map[string]json.RawMessage
	dirty   int
}

// NewStore creates a Store over the given backend. Call Load before use.
func NewStore(b Backend) *Store {
	return &Store{
		backend: b,
		entries: make(map[string]Entry),
		extras:  make(map[string]json.RawMessage),
	}
}

// Load bulk-loads all entries from the backend.
func (s *Store) Load(ctx context.Context) error {
	entries, extras, err := s.backend.Load(ctx)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = make(map[string]Entry)
	}
	if extras == nil {
		extras = make(map[string]json.RawMessage)
	}
	s.entries = entries
	s.extras = extras
	s.dirty = 0
	return nil
}

// Get returns the entry stored under the exact raw-text key.
func (s *Store) Get(addr string) (Entry, bool) {
	e, ok := s.entries[addr]
	return e, ok
}

// Category returns the saved category override for an address, or "".
func (s *Store) Category(addr string) string {
	if e, ok := s.entries[addr]; ok && !e.IsSentinel() {
		return e.Category
	}
	return ""
}

// ResolveFuzzy scans all keys for one whose normalized form is a substring
// of, or contains, the normalized query. Sentinel entries are exact-match
// only and never matched fuzzily. Ties break deterministically: longest
// overlapping span first, then lexical key order. Hash iteration order never
// decides the winner; this is a contract.
func (s *Store) ResolveFuzzy(addr string) (string, Entry, bool) {
	norm := address.Normalize(addr)
	if norm == "" {
		return "", Entry{}, false
	}

	bestKey := ""
	bestSpan := -1
	var bestEntry Entry
	for key, e := range s.entries {
		if e.Name == "" || e.IsSentinel() {
			continue
		}
		normKey := address.Normalize(key)
		if normKey == "" {
			continue
		}
		if !strings.Contains(norm, normKey) && !strings.Contains(normKey, norm) {
			continue
		}
		// Containment means the overlap span is the shorter string.
		span := len(normKey)
		if len(norm) < span {
			span = len(norm)
		}
		if span > bestSpan || (span == bestSpan && key < bestKey) {
			bestKey, bestSpan, bestEntry = key, span, e
		}
	}
	if bestSpan < 0 {
		return "", Entry{}, false
	}
	return bestKey, bestEntry, true
}

// Set upserts an entry and marks the store dirty.
func (s *Store) Set(addr string, e Entry) {
	if e.Source == "" {
		e.Source = SourceManual
	}
	s.entries[addr] = e
	s.dirty++
}

// Delete removes an entry (sentinel purges) and marks the store dirty.
func (s *Store) Delete(addr string) {
	if _, ok := s.entries[addr]; ok {
		delete(s.entries, addr)
		s.dirty++
	}
}

// Len returns the number of mapping entries.
func (s *Store) Len() int { return len(s.entries) }

// Dirty returns the number of writes since the last flush.
func (s *Store) Dirty() int { return s.dirty }

// Addresses returns all mapping keys in sorted order.
func (s *Store) Addresses() []string {
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Resolved returns address -> name for all non-sentinel entries.
func (s *Store) Resolved() map[string]string {
	out := make(map[string]string)
	for k, e := range s.entries {
		if e.Name != "" && !e.IsSentinel() {
			out[k] = e.Name
		}
	}
	return out
}

// Unresolved returns all sentinel addresses in sorted order.
func (s *Store) Unresolved() []string {
	var out []string
	for k, e := range s.entries {
		if e.IsSentinel() {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Flush bulk-writes the store if any writes happened since the last flush.
func (s *Store) Flush(ctx context.Context) error {
	if s.dirty == 0 {
		return nil
	}
	if err := s.backend.Save(ctx, s.entries, s.extras); err != nil {
		return err
	}
	s.dirty = 0
	return nil
}

// LogResolution records a resolution outcome when the backend keeps an
// audit trail; otherwise it is a no-op.
func (s *Store) LogResolution(ctx context.Context, addr, name, source, outcome string) error {
	if rl, ok := s.backend.(resolutionLogger); ok {
		return rl.LogResolution(ctx, addr, name, source, outcome)
	}
	return nil
}

// Close releases the backend.
func (s *Store) Close() error { return s.backend.Close() }
