package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/tessario/messis/internal/common"
	"github.com/tessario/messis/internal/models"
	"github.com/tessario/messis/internal/poller"
)

func newTestStorage(t *testing.T) *SnapshotStorage {
	t.Helper()

	logger := arbor.NewLogger()
	db, err := NewBadgerDB(logger, &common.BadgerConfig{Path: t.TempDir() + "/snapshots"})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	return NewSnapshotStorage(db, logger).(*SnapshotStorage)
}

func TestSnapshotStorage_SaveAndLoadJobs(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	fetched := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	jobs := []models.Job{
		{ID: "job-1", JobType: models.JobTypeResolve, Status: models.JobStatusCompleted, Progress: 100},
		{ID: "job-2", Status: models.JobStatusRunning},
	}

	require.NoError(t, storage.SaveSnapshot(ctx, poller.Snapshot{
		Collection: poller.CollectionJobs,
		FetchedAt:  fetched,
		Data:       jobs,
	}))

	snaps, err := storage.LoadSnapshots(ctx)
	require.NoError(t, err)
	require.Len(t, snaps, 1)

	assert.Equal(t, poller.CollectionJobs, snaps[0].Collection)
	assert.True(t, snaps[0].FetchedAt.Equal(fetched))

	restored, ok := snaps[0].Data.([]models.Job)
	require.True(t, ok)
	assert.Equal(t, jobs, restored)
}

func TestSnapshotStorage_SaveReplacesPreviousEntry(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	first := []models.Citation{{ID: "c1", IntersectionCount: 1}}
	second := []models.Citation{{ID: "c2", IntersectionCount: 3}}

	require.NoError(t, storage.SaveSnapshot(ctx, poller.Snapshot{Collection: poller.CollectionCitations, Data: first}))
	require.NoError(t, storage.SaveSnapshot(ctx, poller.Snapshot{Collection: poller.CollectionCitations, Data: second}))

	snaps, err := storage.LoadSnapshots(ctx)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, second, snaps[0].Data)
}

func TestSnapshotStorage_RoundTripsEveryCollection(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	analysis := &models.EditionAnalysis{
		Run: &models.AnalysisRun{ID: "run-1", Status: models.RunStatusCompleted},
		Works: []models.LinkedWork{
			{ID: "work-1", MissingEditions: []models.MissingEdition{{ID: "gap-1", Status: models.GapStatusPending}}},
		},
	}
	bib := &models.Bibliography{
		Works: []models.BibliographyWork{{Title: "Also sprach Zarathustra"}},
	}

	require.NoError(t, storage.SaveSnapshot(ctx, poller.Snapshot{Collection: poller.CollectionAnalysis, Data: analysis}))
	require.NoError(t, storage.SaveSnapshot(ctx, poller.Snapshot{Collection: poller.CollectionBibliography, Data: bib}))

	snaps, err := storage.LoadSnapshots(ctx)
	require.NoError(t, err)
	require.Len(t, snaps, 2)

	byCollection := make(map[poller.Collection]poller.Snapshot)
	for _, snap := range snaps {
		byCollection[snap.Collection] = snap
	}

	restoredAnalysis, ok := byCollection[poller.CollectionAnalysis].Data.(*models.EditionAnalysis)
	require.True(t, ok)
	assert.Equal(t, analysis, restoredAnalysis)

	restoredBib, ok := byCollection[poller.CollectionBibliography].Data.(*models.Bibliography)
	require.True(t, ok)
	assert.Equal(t, bib, restoredBib)
}

func TestSnapshotStorage_SkipsUnknownCollections(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	cached := &CachedSnapshot{Collection: "legacy_collection", Data: []byte(`{"whatever":true}`)}
	require.NoError(t, storage.db.Store().Upsert(cached.Collection, cached))

	snaps, err := storage.LoadSnapshots(ctx)
	require.NoError(t, err)
	assert.Empty(t, snaps)
}

func TestSnapshotStorage_RequiresCollection(t *testing.T) {
	storage := newTestStorage(t)
	assert.Error(t, storage.SaveSnapshot(context.Background(), poller.Snapshot{}))
}

func TestNewBadgerDB_ResetOnStartup(t *testing.T) {
	logger := arbor.NewLogger()
	path := t.TempDir() + "/snapshots"

	db, err := NewBadgerDB(logger, &common.BadgerConfig{Path: path})
	require.NoError(t, err)
	storage := NewSnapshotStorage(db, logger)
	require.NoError(t, storage.SaveSnapshot(context.Background(), poller.Snapshot{
		Collection: poller.CollectionJobs,
		Data:       []models.Job{{ID: "job-1"}},
	}))
	require.NoError(t, db.Close())

	db, err = NewBadgerDB(logger, &common.BadgerConfig{Path: path, ResetOnStartup: true})
	require.NoError(t, err)
	defer db.Close()

	snaps, err := NewSnapshotStorage(db, logger).LoadSnapshots(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snaps)
}
