package badger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/tessario/messis/internal/interfaces"
	"github.com/tessario/messis/internal/models"
	"github.com/tessario/messis/internal/poller"
)

// CachedSnapshot is the persisted form of a collection snapshot. Data is
// kept JSON-encoded so the record schema stays stable across releases.
type CachedSnapshot struct {
	Collection string `badgerhold:"key"`
	FetchedAt  time.Time
	Data       []byte
}

// SnapshotStorage implements the SnapshotCache interface for Badger
type SnapshotStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewSnapshotStorage creates a new SnapshotStorage instance
func NewSnapshotStorage(db *BadgerDB, logger arbor.ILogger) interfaces.SnapshotCache {
	return &SnapshotStorage{
		db:     db,
		logger: logger,
	}
}

// SaveSnapshot persists the latest snapshot for a collection, replacing any
// previous entry.
func (s *SnapshotStorage) SaveSnapshot(ctx context.Context, snap poller.Snapshot) error {
	if snap.Collection == "" {
		return fmt.Errorf("snapshot collection is required")
	}

	data, err := json.Marshal(snap.Data)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot data: %w", err)
	}

	cached := &CachedSnapshot{
		Collection: string(snap.Collection),
		FetchedAt:  snap.FetchedAt,
		Data:       data,
	}
	if err := s.db.Store().Upsert(cached.Collection, cached); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshots restores every cached snapshot. Entries whose collection is
// no longer recognized decode to nothing and are skipped.
func (s *SnapshotStorage) LoadSnapshots(ctx context.Context) ([]poller.Snapshot, error) {
	var cached []CachedSnapshot
	if err := s.db.Store().Find(&cached, &badgerhold.Query{}); err != nil {
		return nil, fmt.Errorf("failed to load snapshots: %w", err)
	}

	var snaps []poller.Snapshot
	for _, c := range cached {
		data, err := decodeSnapshotData(poller.Collection(c.Collection), c.Data)
		if err != nil {
			s.logger.Warn().Err(err).Str("collection", c.Collection).Msg("Skipping undecodable cached snapshot")
			continue
		}
		if data == nil {
			continue
		}
		snaps = append(snaps, poller.Snapshot{
			Collection: poller.Collection(c.Collection),
			FetchedAt:  c.FetchedAt,
			Data:       data,
		})
	}
	return snaps, nil
}

// decodeSnapshotData maps a cached record back to its snapshot value type.
func decodeSnapshotData(col poller.Collection, data []byte) (interface{}, error) {
	switch col {
	case poller.CollectionJobs:
		var jobs []models.Job
		if err := json.Unmarshal(data, &jobs); err != nil {
			return nil, err
		}
		return jobs, nil
	case poller.CollectionAnalysis:
		var analysis models.EditionAnalysis
		if err := json.Unmarshal(data, &analysis); err != nil {
			return nil, err
		}
		return &analysis, nil
	case poller.CollectionCitations:
		var citations []models.Citation
		if err := json.Unmarshal(data, &citations); err != nil {
			return nil, err
		}
		return citations, nil
	case poller.CollectionBibliography:
		var bib models.Bibliography
		if err := json.Unmarshal(data, &bib); err != nil {
			return nil, err
		}
		return &bib, nil
	default:
		return nil, nil
	}
}
