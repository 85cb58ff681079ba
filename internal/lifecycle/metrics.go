package lifecycle

import (
	"github.com/tessario/messis/internal/common"
	"github.com/tessario/messis/internal/models"
)

// HarvestMetrics are the derived statistics for one job snapshot. All values
// are recomputed from the snapshot on every call; nothing accumulates.
type HarvestMetrics struct {
	Stage        DisplayStage
	Completeness float64 // Estimated completion on [0,100]

	// Year-by-year ETA signal; valid only when HasYearProgress is true
	HasYearProgress bool
	YearsRemaining  int
	CurrentYear     int

	// Partition means year_expected_citations counts page chunks requested
	// out of order, so expected/saved totals are not comparable to standard
	// mode and must be flagged rather than charted side by side.
	Partition bool

	CitationsSaved      int
	PreviouslyHarvested int
	TargetTotal         int
	HasTarget           bool
}

// ComputeMetrics derives the canonical metrics for a job snapshot.
func ComputeMetrics(job *models.Job) HarvestMetrics {
	m := HarvestMetrics{
		Stage:        ResolveStage(job),
		Completeness: clampPercent(job.Progress),
	}

	details := job.Details()
	if details == nil {
		if job.Status == models.JobStatusCompleted {
			m.Completeness = 100
		}
		return m
	}

	m.Partition = details.IsPartition()
	m.CitationsSaved = common.IntOrZero(details.CitationsSaved)
	m.PreviouslyHarvested = common.IntOrZero(details.PreviouslyHarvested)
	m.TargetTotal, m.HasTarget = details.TargetTotal()

	if yearly, ok := details.YearByYear(); ok {
		m.HasYearProgress = true
		m.YearsRemaining = yearly.Remaining()
		m.CurrentYear = yearly.CurrentYear

		// A running year-by-year job with no reported percentage still has a
		// defensible completeness estimate from the year counters.
		if m.Completeness == 0 && yearly.Total > 0 {
			m.Completeness = clampPercent(float64(yearly.Completed) / float64(yearly.Total) * 100)
		}
	} else if m.Completeness == 0 && m.HasTarget && m.TargetTotal > 0 && !m.Partition {
		// Standard mode: saved-vs-target is comparable, partition mode is not
		m.Completeness = clampPercent(float64(m.CitationsSaved) / float64(m.TargetTotal) * 100)
	}

	return m
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
