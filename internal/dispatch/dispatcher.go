// Package dispatch sends mutating commands to the harvesting service and
// reconciles the read collections each command invalidates. Commands are
// fire-and-confirm: sent once, never retried here, and their triggers are
// disabled while a request is outstanding.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/tessario/messis/internal/common"
	"github.com/tessario/messis/internal/gaps"
	"github.com/tessario/messis/internal/interfaces"
	"github.com/tessario/messis/internal/lifecycle"
	"github.com/tessario/messis/internal/models"
	"github.com/tessario/messis/internal/poller"
)

// ErrCommandInFlight is returned when a command instance already has an
// outstanding request. The caller's trigger should be disabled until the
// first request resolves.
var ErrCommandInFlight = errors.New("command already in flight")

// PartialCompoundError reports a multi-step command whose later step did not
// complete after an earlier step succeeded. It is distinct from full success
// and from plain failure and must never be swallowed into either.
type PartialCompoundError struct {
	Completed string // The step that succeeded
	Failed    string // The step that failed
	Err       error
}

func (e *PartialCompoundError) Error() string {
	return fmt.Sprintf("%s succeeded but %s failed: %v", e.Completed, e.Failed, e.Err)
}

func (e *PartialCompoundError) Unwrap() error {
	return e.Err
}

// Invalidator receives invalidation pokes for collections a successful
// command may have changed. Implemented by the poller.
type Invalidator interface {
	Poke(col poller.Collection)
}

// Dispatcher issues typed commands against the service boundary.
type Dispatcher struct {
	api         interfaces.CommandAPI
	invalidator Invalidator
	logger      arbor.ILogger

	mu       sync.Mutex
	inFlight map[string]bool // Per command-instance pending flags
}

// New creates a command dispatcher.
func New(api interfaces.CommandAPI, invalidator Invalidator, logger arbor.ILogger) *Dispatcher {
	return &Dispatcher{
		api:         api,
		invalidator: invalidator,
		logger:      logger,
		inFlight:    make(map[string]bool),
	}
}

// acquire claims the pending flag for one command instance.
func (d *Dispatcher) acquire(key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.inFlight[key] {
		return ErrCommandInFlight
	}
	d.inFlight[key] = true
	return nil
}

func (d *Dispatcher) release(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.inFlight, key)
}

func (d *Dispatcher) invalidate(cols ...poller.Collection) {
	if d.invalidator == nil {
		return
	}
	for _, col := range cols {
		d.invalidator.Poke(col)
	}
}

// CancelJob cancels a pending or running job. On success the jobs collection
// is invalidated; the settled record arrives with the next snapshot.
func (d *Dispatcher) CancelJob(ctx context.Context, job *models.Job) error {
	if err := lifecycle.CheckCancel(job); err != nil {
		return err
	}

	key := "cancel_job:" + job.ID
	if err := d.acquire(key); err != nil {
		return err
	}
	defer d.release(key)

	if err := d.api.CancelJob(ctx, job.ID); err != nil {
		return fmt.Errorf("failed to cancel job %s: %w", job.ID, err)
	}

	d.logger.Info().Str("command_id", common.NewCommandID()).Str("job_id", job.ID).Msg("Job cancelled")
	d.invalidate(poller.CollectionJobs)
	return nil
}

// PauseHarvest pauses citation harvesting for a paper. On success the papers
// collection is invalidated.
func (d *Dispatcher) PauseHarvest(ctx context.Context, paperID string) (*models.PauseResult, error) {
	key := "pause_harvest:" + paperID
	if err := d.acquire(key); err != nil {
		return nil, err
	}
	defer d.release(key)

	result, err := d.api.PauseHarvest(ctx, paperID)
	if err != nil {
		return nil, fmt.Errorf("failed to pause harvest for paper %s: %w", paperID, err)
	}

	d.logger.Info().Str("command_id", common.NewCommandID()).Str("paper_id", paperID).Str("title", result.Title).Msg("Harvest paused")
	d.invalidate(poller.CollectionPapers)
	return result, nil
}

// CancelAndPause cancels a job, then pauses harvesting for its paper.
// The steps are sequential: cancellation success is a precondition for the
// pause, and a pause failure after a successful cancel is reported as a
// PartialCompoundError, never as success.
func (d *Dispatcher) CancelAndPause(ctx context.Context, job *models.Job) (*models.PauseResult, error) {
	if job.PaperID == "" {
		return nil, fmt.Errorf("job %s has no paper to pause", job.ID)
	}

	if err := d.CancelJob(ctx, job); err != nil {
		return nil, err
	}

	result, err := d.PauseHarvest(ctx, job.PaperID)
	if err != nil {
		return nil, &PartialCompoundError{Completed: "cancel", Failed: "pause", Err: err}
	}
	return result, nil
}

// CreateJobFromGap creates a harvest job for a pending gap. The gap is
// validated against the latest analysis snapshot; terminal gaps are rejected
// client-side and no request is sent. On success the jobs and analysis
// collections are invalidated.
func (d *Dispatcher) CreateJobFromGap(ctx context.Context, gap *models.MissingEdition, priority models.JobPriority) (*interfaces.CreateJobResult, error) {
	if err := gaps.CheckCreateJob(gap); err != nil {
		return nil, err
	}
	if priority == "" {
		priority = models.JobPriorityNormal
	}

	key := "create_job:" + gap.ID
	if err := d.acquire(key); err != nil {
		return nil, err
	}
	defer d.release(key)

	result, err := d.api.CreateJobFromGap(ctx, gap.ID, priority)
	if err != nil {
		return nil, fmt.Errorf("failed to create job for gap %s: %w", gap.ID, err)
	}

	d.logger.Info().
		Str("command_id", common.NewCommandID()).
		Str("gap_id", gap.ID).
		Str("job_id", result.JobID).
		Str("priority", string(priority)).
		Msg("Job created from gap")
	d.invalidate(poller.CollectionJobs, poller.CollectionAnalysis)
	return result, nil
}

// DismissGap dismisses a pending gap with an optional reason. On success the
// analysis collection is invalidated.
func (d *Dispatcher) DismissGap(ctx context.Context, gap *models.MissingEdition, reason string) error {
	if err := gaps.CheckDismiss(gap); err != nil {
		return err
	}

	key := "dismiss_gap:" + gap.ID
	if err := d.acquire(key); err != nil {
		return err
	}
	defer d.release(key)

	if err := d.api.DismissGap(ctx, gap.ID, reason); err != nil {
		return fmt.Errorf("failed to dismiss gap %s: %w", gap.ID, err)
	}

	d.logger.Info().Str("command_id", common.NewCommandID()).Str("gap_id", gap.ID).Msg("Gap dismissed")
	d.invalidate(poller.CollectionAnalysis)
	return nil
}

// StartAnalysis starts (or force-refreshes) a gap-analysis run for a
// dossier. On success the analysis collection is invalidated.
func (d *Dispatcher) StartAnalysis(ctx context.Context, dossierID string, forceRefresh bool) (*interfaces.StartAnalysisResult, error) {
	key := "start_analysis:" + dossierID
	if err := d.acquire(key); err != nil {
		return nil, err
	}
	defer d.release(key)

	result, err := d.api.StartEditionAnalysis(ctx, dossierID, forceRefresh)
	if err != nil {
		return nil, fmt.Errorf("failed to start analysis for dossier %s: %w", dossierID, err)
	}

	d.logger.Info().
		Str("command_id", common.NewCommandID()).
		Str("dossier_id", dossierID).
		Str("run_id", result.RunID).
		Bool("force_refresh", forceRefresh).
		Msg("Analysis run started")
	d.invalidate(poller.CollectionAnalysis)
	return result, nil
}
