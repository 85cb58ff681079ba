package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/tessario/messis/internal/models"
)

// GetPaperCitations retrieves the harvested citations for a paper across all
// of its editions.
func (c *Client) GetPaperCitations(ctx context.Context, paperID string) ([]models.Citation, error) {
	if paperID == "" {
		return nil, fmt.Errorf("paper ID is required")
	}
	var result []models.Citation
	if err := c.get(ctx, "/papers/"+paperID+"/citations", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetThinkerBibliography retrieves the LLM-sourced reference list for a
// thinker. The list is read-only reference data and is never mutated.
func (c *Client) GetThinkerBibliography(ctx context.Context, thinkerName string) (*models.Bibliography, error) {
	if thinkerName == "" {
		return nil, fmt.Errorf("thinker name is required")
	}
	params := url.Values{}
	params.Set("thinker", thinkerName)
	var result models.Bibliography
	if err := c.get(ctx, "/bibliography", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
