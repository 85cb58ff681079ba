// Package poller keeps client-side snapshots of the service's read
// collections fresh. Each collection is fetched on an interval derived from
// the previous snapshot's activity, and the latest snapshot per collection
// is shared read-only with every view consumer.
package poller

import (
	"sync"
	"time"
)

// Collection identifies one polled read collection.
type Collection string

const (
	CollectionJobs         Collection = "jobs"
	CollectionAnalysis     Collection = "analysis"
	CollectionCitations    Collection = "citations"
	CollectionPapers       Collection = "papers"
	CollectionBibliography Collection = "bibliography"
)

// Snapshot is one fetched collection value. Data is immutable once
// committed; consumers read it, never write it.
type Snapshot struct {
	Collection Collection
	Generation uint64 // Issued at request time, decides last-write-wins
	FetchedAt  time.Time
	Stale      bool   // Set when a later fetch failed or after a cache restore
	LastError  string // Human-readable fetch failure, when Stale from an error
	Data       interface{}
}

// Store holds the latest snapshot per collection. Replacement is atomic and
// keyed by generation number: a response carrying an older generation than
// one already committed is discarded regardless of arrival order.
type Store struct {
	mu        sync.RWMutex
	snapshots map[Collection]Snapshot
	issued    map[Collection]uint64
}

// NewStore creates an empty snapshot store.
func NewStore() *Store {
	return &Store{
		snapshots: make(map[Collection]Snapshot),
		issued:    make(map[Collection]uint64),
	}
}

// NextGeneration issues the generation number for a fetch about to start.
func (s *Store) NextGeneration(col Collection) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued[col]++
	return s.issued[col]
}

// Commit installs a fetched snapshot. It returns false, leaving the store
// untouched, when a snapshot with an equal or newer generation is already
// present for the collection.
func (s *Store) Commit(snap Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.snapshots[snap.Collection]; ok && current.Generation >= snap.Generation {
		return false
	}
	s.snapshots[snap.Collection] = snap
	return true
}

// MarkStale flags the stored snapshot after a fetch failure. The previous
// data stays visible; only the staleness indicator changes.
func (s *Store) MarkStale(col Collection, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.snapshots[col]
	if !ok {
		return
	}
	snap.Stale = true
	snap.LastError = reason
	s.snapshots[col] = snap
}

// Get returns the latest snapshot for a collection.
func (s *Store) Get(col Collection) (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[col]
	return snap, ok
}

// Seed installs snapshots restored from the local cache. Restored data is
// always marked stale until the first live fetch replaces it, and seeds
// never override a snapshot a live fetch already committed.
func (s *Store) Seed(snaps []Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, snap := range snaps {
		if _, ok := s.snapshots[snap.Collection]; ok {
			continue
		}
		snap.Stale = true
		snap.Generation = 0
		s.snapshots[snap.Collection] = snap
	}
}
