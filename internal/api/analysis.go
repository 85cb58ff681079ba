package api

import (
	"context"
	"fmt"

	"github.com/tessario/messis/internal/interfaces"
	"github.com/tessario/messis/internal/models"
)

// GetDossierEditionAnalysis retrieves the latest analysis run for a dossier
// together with its linked works and their missing editions.
func (c *Client) GetDossierEditionAnalysis(ctx context.Context, dossierID string) (*models.EditionAnalysis, error) {
	if dossierID == "" {
		return nil, fmt.Errorf("dossier ID is required")
	}
	var result models.EditionAnalysis
	if err := c.get(ctx, "/dossiers/"+dossierID+"/edition-analysis", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetEditionAnalysisRun retrieves a single analysis run by ID.
func (c *Client) GetEditionAnalysisRun(ctx context.Context, runID string) (*models.AnalysisRun, error) {
	if runID == "" {
		return nil, fmt.Errorf("run ID is required")
	}
	var result models.AnalysisRun
	if err := c.get(ctx, "/edition-analysis/runs/"+runID, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// StartEditionAnalysis starts a gap-analysis run for a dossier.
func (c *Client) StartEditionAnalysis(ctx context.Context, dossierID string, forceRefresh bool) (*interfaces.StartAnalysisResult, error) {
	if dossierID == "" {
		return nil, fmt.Errorf("dossier ID is required")
	}
	body := map[string]interface{}{
		"force_refresh": forceRefresh,
	}
	var result interfaces.StartAnalysisResult
	if err := c.post(ctx, "/dossiers/"+dossierID+"/edition-analysis", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateJobFromGap creates a harvest job for a missing edition. The new job
// record is observed via the next jobs snapshot, not returned here.
func (c *Client) CreateJobFromGap(ctx context.Context, gapID string, priority models.JobPriority) (*interfaces.CreateJobResult, error) {
	if gapID == "" {
		return nil, fmt.Errorf("gap ID is required")
	}
	body := map[string]interface{}{
		"priority": priority,
	}
	var result interfaces.CreateJobResult
	if err := c.post(ctx, "/gaps/"+gapID+"/create-job", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DismissGap marks a missing edition as dismissed. Reason may be empty.
func (c *Client) DismissGap(ctx context.Context, gapID, reason string) error {
	if gapID == "" {
		return fmt.Errorf("gap ID is required")
	}
	body := map[string]interface{}{
		"reason": reason,
	}
	return c.post(ctx, "/gaps/"+gapID+"/dismiss", body, nil)
}
