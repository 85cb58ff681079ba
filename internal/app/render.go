package app

import (
	"fmt"

	"github.com/tessario/messis/internal/gaps"
	"github.com/tessario/messis/internal/lifecycle"
	"github.com/tessario/messis/internal/models"
	"github.com/tessario/messis/internal/poller"
	"github.com/tessario/messis/internal/view"
)

// jobsDigest is the one-line jobs summary logged per poll cycle.
type jobsDigest struct {
	Active  int
	Recent  int     // Settled jobs within the display window
	Stage   string  // Display stage of the first running job, empty when idle
	Percent float64 // Completeness of that job
}

// digestJobs reduces a jobs snapshot to its poll-cycle summary.
func digestJobs(jobs []models.Job) jobsDigest {
	active, recent := view.SplitJobs(jobs)
	d := jobsDigest{
		Active: len(active),
		Recent: len(view.RecentWindow(recent)),
	}
	for i := range active {
		if active[i].Status == models.JobStatusRunning {
			m := lifecycle.ComputeMetrics(&active[i])
			d.Stage = string(m.Stage)
			d.Percent = m.Completeness
			break
		}
	}
	return d
}

// digestGaps reduces an analysis snapshot to its per-status gap counts.
func digestGaps(analysis *models.EditionAnalysis) gaps.Summary {
	return gaps.Summarize(gaps.Flatten(analysis))
}

// logSnapshot writes the summary line for a committed snapshot. Every poll
// cycle that changes a collection produces exactly one of these.
func (a *App) logSnapshot(snap poller.Snapshot) {
	switch data := snap.Data.(type) {
	case []models.Job:
		d := digestJobs(data)
		if d.Stage != "" {
			a.Logger.Info().
				Int("active", d.Active).
				Int("recent", d.Recent).
				Str("stage", d.Stage).
				Str("percent", fmt.Sprintf("%.1f", d.Percent)).
				Msg("Jobs snapshot")
			return
		}
		a.Logger.Info().
			Int("active", d.Active).
			Int("recent", d.Recent).
			Msg("Jobs snapshot")
	case *models.EditionAnalysis:
		s := digestGaps(data)
		a.Logger.Info().
			Int("pending", s.Pending).
			Int("job_created", s.JobCreated).
			Int("dismissed", s.Dismissed).
			Int("total", s.Total).
			Msg("Gap analysis snapshot")
		for _, row := range view.GapRows(gaps.Flatten(data)) {
			if row.Status != models.GapStatusPending {
				continue
			}
			a.Logger.Debug().
				Str("gap_id", row.ID).
				Str("title", row.Title).
				Str("year", row.Year).
				Str("source", row.SourceLabel).
				Msg("Pending gap")
		}
	case []models.Citation:
		a.Logger.Info().
			Int("citations", len(data)).
			Int("editions", len(view.GroupByEdition(data))).
			Int("max_intersection", view.MaxIntersection(data)).
			Msg("Citations snapshot")
	case *models.Bibliography:
		a.Logger.Info().
			Int("works", len(data.Works)).
			Msg("Bibliography snapshot")
	}
}
