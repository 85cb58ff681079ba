// Package gaps tracks the resolution workflow for bibliography gaps:
// pending gaps either get a harvest job created for them or are dismissed,
// and both moves are one-way.
package gaps

import (
	"fmt"

	"github.com/tessario/messis/internal/models"
)

// InvalidTransitionError is returned when a command targets a gap whose
// current state does not permit it. The command must not be sent; callers
// check before dispatch and treat this as a client-side rejection.
type InvalidTransitionError struct {
	GapID   string
	Status  models.GapStatus
	Command string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s gap %s: gap is %s", e.Command, e.GapID, e.Status)
}

// CanCreateJob reports whether a create-job command may target the gap.
func CanCreateJob(gap *models.MissingEdition) bool {
	return gap.Status == models.GapStatusPending
}

// CanDismiss reports whether a dismiss command may target the gap.
func CanDismiss(gap *models.MissingEdition) bool {
	return gap.Status == models.GapStatusPending
}

// CheckCreateJob validates a create-job command against the gap's state.
func CheckCreateJob(gap *models.MissingEdition) error {
	if !CanCreateJob(gap) {
		return &InvalidTransitionError{GapID: gap.ID, Status: gap.Status, Command: "create job for"}
	}
	return nil
}

// CheckDismiss validates a dismiss command against the gap's state.
func CheckDismiss(gap *models.MissingEdition) error {
	if !CanDismiss(gap) {
		return &InvalidTransitionError{GapID: gap.ID, Status: gap.Status, Command: "dismiss"}
	}
	return nil
}

// Flatten returns the gap set for an analysis view: the union of
// missing_editions across the run's linked works, in work order. The result
// is rebuilt on every call so it can never diverge from a refetched run.
func Flatten(analysis *models.EditionAnalysis) []models.MissingEdition {
	if analysis == nil {
		return nil
	}
	var gaps []models.MissingEdition
	for _, work := range analysis.Works {
		gaps = append(gaps, work.MissingEditions...)
	}
	return gaps
}

// Summary holds per-status gap counts for an analysis view.
type Summary struct {
	Pending    int
	JobCreated int
	Dismissed  int
	Total      int
}

// Summarize partitions a gap set by status. Pending + JobCreated + Dismissed
// always equals Total: unknown statuses are counted as pending rather than
// dropped, keeping the partition exhaustive.
func Summarize(gaps []models.MissingEdition) Summary {
	s := Summary{Total: len(gaps)}
	for _, gap := range gaps {
		switch gap.Status {
		case models.GapStatusJobCreated:
			s.JobCreated++
		case models.GapStatusDismissed:
			s.Dismissed++
		default:
			s.Pending++
		}
	}
	return s
}

// FindGap locates a gap by ID within an analysis view. Lookups go through
// the flattened set so command validation always sees the latest refetch.
func FindGap(analysis *models.EditionAnalysis, gapID string) (*models.MissingEdition, bool) {
	for _, work := range analysis.Works {
		for i := range work.MissingEditions {
			if work.MissingEditions[i].ID == gapID {
				return &work.MissingEditions[i], true
			}
		}
	}
	return nil, false
}
