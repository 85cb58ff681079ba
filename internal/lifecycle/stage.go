// Package lifecycle interprets raw job records into canonical display stages
// and derived harvest metrics. It is pure: nothing here mutates a snapshot.
package lifecycle

import (
	"fmt"

	"github.com/tessario/messis/internal/models"
)

// DisplayStage is the canonical lifecycle stage shown for a job. Non-running
// statuses map to themselves; running is refined by the progress payload.
type DisplayStage string

const (
	StagePending   DisplayStage = "pending"
	StageCompleted DisplayStage = "completed"
	StageFailed    DisplayStage = "failed"
	StageCancelled DisplayStage = "cancelled"

	// Running refinements
	StageRunning                     DisplayStage = "running"
	StageRunningInitializing         DisplayStage = "running/initializing"
	StageRunningYearByYearInit       DisplayStage = "running/year_by_year_init"
	StageRunningHarvesting           DisplayStage = "running/harvesting"
	StageRunningHarvestingYearByYear DisplayStage = "running/harvesting_year_by_year"
)

// ResolveStage produces the canonical display stage for a job record.
// A non-running status is its own stage. A running job without a progress
// payload is plain running; otherwise the payload's stage tag decides, with
// harvesting refined by harvest mode.
func ResolveStage(job *models.Job) DisplayStage {
	switch job.Status {
	case models.JobStatusPending:
		return StagePending
	case models.JobStatusCompleted:
		return StageCompleted
	case models.JobStatusFailed:
		return StageFailed
	case models.JobStatusCancelled:
		return StageCancelled
	case models.JobStatusRunning:
		// Fall through to refinement below
	default:
		// Unknown status from a newer service version: show it as-is
		return DisplayStage(job.Status)
	}

	details := job.Details()
	if details == nil {
		return StageRunning
	}

	switch details.Stage {
	case models.StageInitializing:
		return StageRunningInitializing
	case models.StageYearByYearInit:
		return StageRunningYearByYearInit
	case models.StageHarvesting:
		if details.HarvestMode == models.HarvestModeYearByYear {
			return StageRunningHarvestingYearByYear
		}
		return StageRunningHarvesting
	default:
		return StageRunning
	}
}

// CanTransition reports whether a job status transition is legal:
// pending -> running -> {completed | failed | cancelled}, with cancellation
// also allowed straight from pending. Nothing leaves a terminal state.
func CanTransition(from, to models.JobStatus) bool {
	if from.IsTerminal() {
		return false
	}
	switch from {
	case models.JobStatusPending:
		return to == models.JobStatusRunning || to == models.JobStatusCancelled
	case models.JobStatusRunning:
		return to.IsTerminal()
	default:
		return false
	}
}

// CanCancel reports whether a cancel command may be sent for the job.
// Cancellation is user-initiated and legal from pending and running only.
func CanCancel(job *models.Job) bool {
	return CanTransition(job.Status, models.JobStatusCancelled)
}

// InvalidTransitionError is returned when a command targets a job whose
// current status does not permit it.
type InvalidTransitionError struct {
	JobID  string
	Status models.JobStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot cancel job %s: job is %s", e.JobID, e.Status)
}

// CheckCancel validates a cancel command against the job's status. The
// command must not be sent when this returns an error.
func CheckCancel(job *models.Job) error {
	if !CanCancel(job) {
		return &InvalidTransitionError{JobID: job.ID, Status: job.Status}
	}
	return nil
}
