package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/tessario/messis/internal/gaps"
	"github.com/tessario/messis/internal/interfaces"
	"github.com/tessario/messis/internal/lifecycle"
	"github.com/tessario/messis/internal/models"
	"github.com/tessario/messis/internal/poller"
)

// fakeAPI records command calls and fails selectively per command name.
type fakeAPI struct {
	mu       sync.Mutex
	calls    []string
	failures map[string]error
	release  chan struct{} // When set, commands block until it closes
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{failures: make(map[string]error)}
}

func (f *fakeAPI) record(name string) error {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	err := f.failures[name]
	release := f.release
	f.mu.Unlock()
	if release != nil {
		<-release
	}
	return err
}

func (f *fakeAPI) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeAPI) CancelJob(ctx context.Context, jobID string) error {
	return f.record("cancel")
}

func (f *fakeAPI) PauseHarvest(ctx context.Context, paperID string) (*models.PauseResult, error) {
	if err := f.record("pause"); err != nil {
		return nil, err
	}
	return &models.PauseResult{Title: "Kritik der reinen Vernunft"}, nil
}

func (f *fakeAPI) CreateJobFromGap(ctx context.Context, gapID string, priority models.JobPriority) (*interfaces.CreateJobResult, error) {
	if err := f.record("create:" + string(priority)); err != nil {
		return nil, err
	}
	return &interfaces.CreateJobResult{JobID: "job-new"}, nil
}

func (f *fakeAPI) DismissGap(ctx context.Context, gapID, reason string) error {
	return f.record("dismiss")
}

func (f *fakeAPI) StartEditionAnalysis(ctx context.Context, dossierID string, forceRefresh bool) (*interfaces.StartAnalysisResult, error) {
	if err := f.record("start_analysis"); err != nil {
		return nil, err
	}
	return &interfaces.StartAnalysisResult{RunID: "run-new"}, nil
}

// fakeInvalidator records which collections were poked.
type fakeInvalidator struct {
	mu    sync.Mutex
	poked []poller.Collection
}

func (f *fakeInvalidator) Poke(col poller.Collection) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.poked = append(f.poked, col)
}

func (f *fakeInvalidator) collections() []poller.Collection {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]poller.Collection(nil), f.poked...)
}

func newTestDispatcher() (*Dispatcher, *fakeAPI, *fakeInvalidator) {
	api := newFakeAPI()
	inv := &fakeInvalidator{}
	return New(api, inv, arbor.NewLogger()), api, inv
}

func runnableJob() *models.Job {
	return &models.Job{ID: "job-1", Status: models.JobStatusRunning, PaperID: "paper-1"}
}

func pendingGap() *models.MissingEdition {
	return &models.MissingEdition{ID: "gap-1", Status: models.GapStatusPending}
}

func TestCancelJob_InvalidatesJobs(t *testing.T) {
	d, api, inv := newTestDispatcher()

	require.NoError(t, d.CancelJob(context.Background(), runnableJob()))

	assert.Equal(t, 1, api.callCount("cancel"))
	assert.Equal(t, []poller.Collection{poller.CollectionJobs}, inv.collections())
}

func TestCancelJob_TerminalJobRejectedClientSide(t *testing.T) {
	d, api, inv := newTestDispatcher()

	job := &models.Job{ID: "job-1", Status: models.JobStatusCompleted}
	err := d.CancelJob(context.Background(), job)

	var invalid *lifecycle.InvalidTransitionError
	require.True(t, errors.As(err, &invalid))

	// No request was sent and nothing was invalidated
	assert.Empty(t, api.calls)
	assert.Empty(t, inv.collections())
}

func TestCancelJob_FailureDoesNotInvalidate(t *testing.T) {
	d, api, inv := newTestDispatcher()
	api.failures["cancel"] = errors.New("service error")

	err := d.CancelJob(context.Background(), runnableJob())

	require.Error(t, err)
	assert.Empty(t, inv.collections())
}

func TestCancelJob_SecondAttemptAllowedAfterFirstResolves(t *testing.T) {
	d, api, _ := newTestDispatcher()
	api.failures["cancel"] = errors.New("transient")

	require.Error(t, d.CancelJob(context.Background(), runnableJob()))

	// The pending flag is released on failure, so the user may retry
	delete(api.failures, "cancel")
	require.NoError(t, d.CancelJob(context.Background(), runnableJob()))
	assert.Equal(t, 2, api.callCount("cancel"))
}

func TestCancelJob_InFlightRejected(t *testing.T) {
	d, api, _ := newTestDispatcher()
	release := make(chan struct{})
	api.release = release

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		close(started)
		done <- d.CancelJob(context.Background(), runnableJob())
	}()

	<-started
	// Wait for the first command to reach the API and block there
	for api.callCount("cancel") == 0 {
		time.Sleep(time.Millisecond)
	}

	err := d.CancelJob(context.Background(), runnableJob())
	assert.ErrorIs(t, err, ErrCommandInFlight)

	close(release)
	require.NoError(t, <-done)
}

func TestPauseHarvest_InvalidatesPapers(t *testing.T) {
	d, _, inv := newTestDispatcher()

	result, err := d.PauseHarvest(context.Background(), "paper-1")

	require.NoError(t, err)
	assert.Equal(t, "Kritik der reinen Vernunft", result.Title)
	assert.Equal(t, []poller.Collection{poller.CollectionPapers}, inv.collections())
}

func TestCancelAndPause_Success(t *testing.T) {
	d, api, inv := newTestDispatcher()

	result, err := d.CancelAndPause(context.Background(), runnableJob())

	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, []string{"cancel", "pause"}, api.calls)
	assert.Equal(t, []poller.Collection{poller.CollectionJobs, poller.CollectionPapers}, inv.collections())
}

func TestCancelAndPause_CancelFailureSkipsPause(t *testing.T) {
	d, api, _ := newTestDispatcher()
	api.failures["cancel"] = errors.New("cancel rejected")

	_, err := d.CancelAndPause(context.Background(), runnableJob())

	require.Error(t, err)
	var partial *PartialCompoundError
	assert.False(t, errors.As(err, &partial))
	assert.Equal(t, 0, api.callCount("pause"))
}

func TestCancelAndPause_PauseFailureIsPartial(t *testing.T) {
	d, api, _ := newTestDispatcher()
	pauseErr := errors.New("pause rejected")
	api.failures["pause"] = pauseErr

	_, err := d.CancelAndPause(context.Background(), runnableJob())

	var partial *PartialCompoundError
	require.True(t, errors.As(err, &partial))
	assert.Equal(t, "cancel", partial.Completed)
	assert.Equal(t, "pause", partial.Failed)
	assert.ErrorIs(t, err, pauseErr)
}

func TestCancelAndPause_RequiresPaper(t *testing.T) {
	d, api, _ := newTestDispatcher()

	job := &models.Job{ID: "job-1", Status: models.JobStatusRunning}
	_, err := d.CancelAndPause(context.Background(), job)

	require.Error(t, err)
	assert.Empty(t, api.calls)
}

func TestCreateJobFromGap_InvalidatesJobsAndAnalysis(t *testing.T) {
	d, api, inv := newTestDispatcher()

	result, err := d.CreateJobFromGap(context.Background(), pendingGap(), models.JobPriorityHigh)

	require.NoError(t, err)
	assert.Equal(t, "job-new", result.JobID)
	assert.Equal(t, []string{"create:high"}, api.calls)
	assert.Equal(t, []poller.Collection{poller.CollectionJobs, poller.CollectionAnalysis}, inv.collections())
}

func TestCreateJobFromGap_DefaultPriority(t *testing.T) {
	d, api, _ := newTestDispatcher()

	_, err := d.CreateJobFromGap(context.Background(), pendingGap(), "")

	require.NoError(t, err)
	assert.Equal(t, []string{"create:normal"}, api.calls)
}

func TestCreateJobFromGap_TerminalGapRejected(t *testing.T) {
	d, api, inv := newTestDispatcher()

	gap := &models.MissingEdition{ID: "gap-1", Status: models.GapStatusDismissed}
	_, err := d.CreateJobFromGap(context.Background(), gap, models.JobPriorityNormal)

	var invalid *gaps.InvalidTransitionError
	require.True(t, errors.As(err, &invalid))
	assert.Empty(t, api.calls)
	assert.Empty(t, inv.collections())
}

func TestDismissGap_InvalidatesAnalysis(t *testing.T) {
	d, _, inv := newTestDispatcher()

	require.NoError(t, d.DismissGap(context.Background(), pendingGap(), "already linked"))
	assert.Equal(t, []poller.Collection{poller.CollectionAnalysis}, inv.collections())
}

func TestDismissGap_JobCreatedGapRejected(t *testing.T) {
	d, api, _ := newTestDispatcher()

	gap := &models.MissingEdition{ID: "gap-1", Status: models.GapStatusJobCreated}
	err := d.DismissGap(context.Background(), gap, "")

	var invalid *gaps.InvalidTransitionError
	require.True(t, errors.As(err, &invalid))
	assert.Empty(t, api.calls)
}

func TestStartAnalysis_InvalidatesAnalysis(t *testing.T) {
	d, _, inv := newTestDispatcher()

	result, err := d.StartAnalysis(context.Background(), "dossier-1", true)

	require.NoError(t, err)
	assert.Equal(t, "run-new", result.RunID)
	assert.Equal(t, []poller.Collection{poller.CollectionAnalysis}, inv.collections())
}

func TestGapResolution_EndToEnd(t *testing.T) {
	d, _, inv := newTestDispatcher()
	ctx := context.Background()

	gap := &models.MissingEdition{ID: "gap-1", Status: models.GapStatusPending}

	result, err := d.CreateJobFromGap(ctx, gap, models.JobPriorityHigh)
	require.NoError(t, err)
	assert.Equal(t, "job-new", result.JobID)
	assert.Contains(t, inv.collections(), poller.CollectionAnalysis)

	// The next analysis snapshot reports the gap bound to its job
	gap.Status = models.GapStatusJobCreated
	gap.JobID = result.JobID

	err = d.DismissGap(ctx, gap, "changed my mind")
	var invalid *gaps.InvalidTransitionError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "gap-1", invalid.GapID)
	assert.Equal(t, models.GapStatusJobCreated, invalid.Status)
}

func TestCommandsOnDistinctTargetsRunConcurrently(t *testing.T) {
	d, api, _ := newTestDispatcher()

	// Pending flags are per command instance, not global
	require.NoError(t, d.CancelJob(context.Background(), runnableJob()))
	other := &models.Job{ID: "job-2", Status: models.JobStatusPending}
	require.NoError(t, d.CancelJob(context.Background(), other))

	assert.Equal(t, 2, api.callCount("cancel"))
}
