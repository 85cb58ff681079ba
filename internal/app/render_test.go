package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/arbor"

	"github.com/tessario/messis/internal/models"
	"github.com/tessario/messis/internal/poller"
)

func intPtr(v int) *int {
	return &v
}

func TestDigestJobs(t *testing.T) {
	completed := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	jobs := []models.Job{
		{ID: "done-1", Status: models.JobStatusCompleted, CompletedAt: &completed},
		{
			ID:       "run-1",
			Status:   models.JobStatusRunning,
			Progress: 62.5,
			Params: models.JobParams{
				ProgressDetails: &models.ProgressDetails{
					Stage:       models.StageHarvesting,
					HarvestMode: models.HarvestModeYearByYear,
				},
			},
		},
		{ID: "pend-1", Status: models.JobStatusPending},
	}

	d := digestJobs(jobs)

	assert.Equal(t, 2, d.Active)
	assert.Equal(t, 1, d.Recent)
	assert.Equal(t, "running/harvesting_year_by_year", d.Stage)
	assert.Equal(t, 62.5, d.Percent)
}

func TestDigestJobs_Idle(t *testing.T) {
	d := digestJobs([]models.Job{
		{ID: "done-1", Status: models.JobStatusCompleted},
		{ID: "pend-1", Status: models.JobStatusPending},
	})

	assert.Equal(t, 1, d.Active)
	assert.Empty(t, d.Stage)
	assert.Equal(t, float64(0), d.Percent)
}

func TestDigestJobs_RecentCappedAtWindow(t *testing.T) {
	var jobs []models.Job
	for i := 0; i < 9; i++ {
		jobs = append(jobs, models.Job{Status: models.JobStatusFailed})
	}

	d := digestJobs(jobs)
	assert.Equal(t, 0, d.Active)
	assert.Equal(t, 5, d.Recent)
}

func TestDigestGaps(t *testing.T) {
	analysis := &models.EditionAnalysis{
		Works: []models.LinkedWork{
			{
				ID: "work-1",
				MissingEditions: []models.MissingEdition{
					{ID: "gap-1", Status: models.GapStatusPending},
					{ID: "gap-2", Status: models.GapStatusDismissed},
				},
			},
			{
				ID: "work-2",
				MissingEditions: []models.MissingEdition{
					{ID: "gap-3", Status: models.GapStatusJobCreated},
				},
			},
		},
	}

	s := digestGaps(analysis)

	assert.Equal(t, 1, s.Pending)
	assert.Equal(t, 1, s.JobCreated)
	assert.Equal(t, 1, s.Dismissed)
	assert.Equal(t, 3, s.Total)
}

func TestLogSnapshot_CoversEveryCollection(t *testing.T) {
	a := &App{Logger: arbor.NewLogger()}

	snapshots := []poller.Snapshot{
		{Collection: poller.CollectionJobs, Data: []models.Job{
			{ID: "run-1", Status: models.JobStatusRunning},
		}},
		{Collection: poller.CollectionAnalysis, Data: &models.EditionAnalysis{
			Works: []models.LinkedWork{
				{MissingEditions: []models.MissingEdition{
					{ID: "gap-1", Status: models.GapStatusPending, ExpectedYear: intPtr(1927)},
				}},
			},
		}},
		{Collection: poller.CollectionCitations, Data: []models.Citation{
			{ID: "c1", IntersectionCount: 2, EditionID: "ed-1"},
		}},
		{Collection: poller.CollectionBibliography, Data: &models.Bibliography{
			Works: []models.BibliographyWork{{Title: "Logik der Forschung"}},
		}},
	}

	for _, snap := range snapshots {
		a.logSnapshot(snap)
	}
}
