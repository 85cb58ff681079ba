// Package interfaces defines the service contracts shared across packages.
package interfaces

import (
	"context"

	"github.com/tessario/messis/internal/models"
)

// CommandAPI is the mutating half of the harvesting service boundary.
// Implemented by the api client; consumed by the command dispatcher.
type CommandAPI interface {
	CancelJob(ctx context.Context, jobID string) error
	PauseHarvest(ctx context.Context, paperID string) (*models.PauseResult, error)
	CreateJobFromGap(ctx context.Context, gapID string, priority models.JobPriority) (*CreateJobResult, error)
	DismissGap(ctx context.Context, gapID, reason string) error
	StartEditionAnalysis(ctx context.Context, dossierID string, forceRefresh bool) (*StartAnalysisResult, error)
}

// ReadAPI is the snapshot half of the harvesting service boundary.
// Implemented by the api client; consumed by the poller wiring.
type ReadAPI interface {
	ListJobs(ctx context.Context) ([]models.Job, error)
	GetDossierEditionAnalysis(ctx context.Context, dossierID string) (*models.EditionAnalysis, error)
	GetEditionAnalysisRun(ctx context.Context, runID string) (*models.AnalysisRun, error)
	GetPaperCitations(ctx context.Context, paperID string) ([]models.Citation, error)
	GetThinkerBibliography(ctx context.Context, thinkerName string) (*models.Bibliography, error)
}

// CreateJobResult is returned when a job is created from a gap.
type CreateJobResult struct {
	JobID string `json:"job_id"`
}

// StartAnalysisResult is returned when a new analysis run is started.
type StartAnalysisResult struct {
	RunID string `json:"run_id"`
}
