package view

import (
	"github.com/tessario/messis/internal/common"
	"github.com/tessario/messis/internal/models"
)

// GapRow is one display row of the gap list.
type GapRow struct {
	ID            string
	Title         string
	Year          string // Expected year, "?" when unknown
	Language      string
	SourceLabel   string
	Status        models.GapStatus
	JobID         string
	DismissReason string // Populated only for dismissed gaps
}

// GapRows renders a flattened gap set for display. Missing values follow the
// standard display policy rather than showing empty cells.
func GapRows(gaps []models.MissingEdition) []GapRow {
	rows := make([]GapRow, 0, len(gaps))
	for i := range gaps {
		gap := &gaps[i]
		row := GapRow{
			ID:          gap.ID,
			Title:       gap.Title(),
			Year:        common.IntDisplay(gap.ExpectedYear),
			Language:    common.StringOrUnknown(gap.Language),
			SourceLabel: gap.Source.Label(),
			Status:      gap.Status,
			JobID:       gap.JobID,
		}
		if gap.Status == models.GapStatusDismissed {
			row.DismissReason = gap.DismissReasonDisplay()
		}
		rows = append(rows, row)
	}
	return rows
}
