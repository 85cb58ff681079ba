package view

import (
	"github.com/tessario/messis/internal/models"
)

// FilterState is the view-owned filter and expansion state for one citations
// view instance. Each consumer creates its own instance and tears it down on
// navigation away; nothing here is shared or process-wide.
type FilterState struct {
	MinIntersection int
	SelectedEdition *string // nil means all editions
	Sort            CitationSort

	expanded map[string]bool // Expanded-row set, keyed by citation ID
}

// NewFilterState creates the default filter state: full set, intersection
// ordering, nothing expanded.
func NewFilterState() *FilterState {
	return &FilterState{
		MinIntersection: 1,
		Sort:            SortByIntersection,
		expanded:        make(map[string]bool),
	}
}

// SetMinIntersection updates the minimum intersection filter. Values below 1
// clamp to 1, matching the identity filter.
func (f *FilterState) SetMinIntersection(min int) {
	if min < 1 {
		min = 1
	}
	f.MinIntersection = min
}

// SelectEdition restricts the view to one edition; nil clears the filter.
func (f *FilterState) SelectEdition(editionID *string) {
	f.SelectedEdition = editionID
}

// ToggleExpanded flips one row's expansion state.
func (f *FilterState) ToggleExpanded(citationID string) {
	if f.expanded == nil {
		f.expanded = make(map[string]bool)
	}
	if f.expanded[citationID] {
		delete(f.expanded, citationID)
		return
	}
	f.expanded[citationID] = true
}

// IsExpanded reports one row's expansion state.
func (f *FilterState) IsExpanded(citationID string) bool {
	return f.expanded[citationID]
}

// Visible applies the filter then the active sort to a citations snapshot.
func (f *FilterState) Visible(citations []models.Citation) []models.Citation {
	return SortCitations(FilterCitations(citations, f.MinIntersection, f.SelectedEdition), f.Sort)
}

// Teardown discards the view-owned state. The instance must not be reused
// afterwards.
func (f *FilterState) Teardown() {
	f.expanded = nil
	f.SelectedEdition = nil
}
