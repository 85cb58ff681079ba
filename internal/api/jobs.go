package api

import (
	"context"
	"fmt"

	"github.com/tessario/messis/internal/models"
)

// ListJobs retrieves all jobs known to the service.
func (c *Client) ListJobs(ctx context.Context) ([]models.Job, error) {
	var result []models.Job
	if err := c.get(ctx, "/jobs", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// CancelJob requests cancellation of a pending or running job.
func (c *Client) CancelJob(ctx context.Context, jobID string) error {
	if jobID == "" {
		return fmt.Errorf("job ID is required")
	}
	return c.post(ctx, "/jobs/"+jobID+"/cancel", nil, nil)
}

// PauseHarvest pauses citation harvesting for a paper. The returned title
// identifies the paper in confirmation messages.
func (c *Client) PauseHarvest(ctx context.Context, paperID string) (*models.PauseResult, error) {
	if paperID == "" {
		return nil, fmt.Errorf("paper ID is required")
	}
	var result models.PauseResult
	if err := c.post(ctx, "/papers/"+paperID+"/pause", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
