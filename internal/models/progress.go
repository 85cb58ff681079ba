package models

import "github.com/tessario/messis/internal/common"

// HarvestStage tags the variant of a ProgressDetails payload
type HarvestStage string

const (
	StageInitializing   HarvestStage = "initializing"
	StageYearByYearInit HarvestStage = "year_by_year_init"
	StageHarvesting     HarvestStage = "harvesting"
)

// HarvestMode applies once the stage reaches harvesting
type HarvestMode string

const (
	HarvestModeStandard   HarvestMode = "standard"
	HarvestModeYearByYear HarvestMode = "year_by_year"
)

// YearStrategy is the sub-strategy for a single year's retrieval in
// year-by-year mode. Partition splits one year into non-sequential page
// chunks, which makes expected/saved counts incomparable to standard mode.
type YearStrategy string

const (
	YearStrategyDefault   YearStrategy = "default"
	YearStrategyPartition YearStrategy = "partition"
)

// EditionInfo is a per-edition summary inside a harvest progress payload
type EditionInfo struct {
	ID            string `json:"id"`
	Language      string `json:"language"`
	CitationCount int    `json:"citation_count"`
	Harvested     bool   `json:"harvested"`
}

// ProgressDetails is the harvest-specific progress payload a running job
// reports. It is a tagged variant over Stage; year-by-year fields are only
// meaningful after narrowing via YearByYear.
type ProgressDetails struct {
	Stage       HarvestStage `json:"stage"`
	HarvestMode HarvestMode  `json:"harvest_mode,omitempty"`

	// Edition progress, relevant across stages
	EditionIndex    *int          `json:"edition_index,omitempty"`
	EditionsTotal   *int          `json:"editions_total,omitempty"`
	EditionTitle    string        `json:"edition_title,omitempty"`
	EditionLanguage string        `json:"edition_language,omitempty"`
	EditionsInfo    []EditionInfo `json:"editions_info,omitempty"` // Ordered per-edition summaries
	SkippedEditions *int          `json:"skipped_editions,omitempty"`

	// Year-by-year mode fields
	CurrentYear           *int         `json:"current_year,omitempty"`
	YearRangeStart        *int         `json:"year_range_start,omitempty"`
	YearRangeEnd          *int         `json:"year_range_end,omitempty"`
	YearsCompleted        *int         `json:"years_completed,omitempty"`
	YearsTotal            *int         `json:"years_total,omitempty"`
	YearsRemaining        *int         `json:"years_remaining,omitempty"`
	YearExpectedCitations *int         `json:"year_expected_citations,omitempty"`
	YearHarvestStrategy   YearStrategy `json:"year_harvest_strategy,omitempty"`

	// Aggregate counters, valid in any harvesting stage
	CitationsSaved       *int `json:"citations_saved,omitempty"`       // New this run
	PreviouslyHarvested  *int `json:"previously_harvested,omitempty"`  // Already present before this run
	TargetCitationsTotal *int `json:"target_citations_total,omitempty"`
	EditionCitationCount *int `json:"edition_citation_count,omitempty"`
	CurrentPage          *int `json:"current_page,omitempty"`
}

// YearByYearProgress is the narrowed view of a year-by-year harvest payload
type YearByYearProgress struct {
	CurrentYear       int
	RangeStart        int
	RangeEnd          int
	Completed         int
	Total             int
	ExpectedCitations *int
	Strategy          YearStrategy
}

// YearByYear narrows the payload to year-by-year mode. It returns false when
// the payload is not in a harvesting stage with year-by-year mode.
func (d *ProgressDetails) YearByYear() (YearByYearProgress, bool) {
	if d == nil || d.Stage != StageHarvesting || d.HarvestMode != HarvestModeYearByYear {
		return YearByYearProgress{}, false
	}
	strategy := d.YearHarvestStrategy
	if strategy == "" {
		strategy = YearStrategyDefault
	}
	return YearByYearProgress{
		CurrentYear:       common.IntOrZero(d.CurrentYear),
		RangeStart:        common.IntOrZero(d.YearRangeStart),
		RangeEnd:          common.IntOrZero(d.YearRangeEnd),
		Completed:         common.IntOrZero(d.YearsCompleted),
		Total:             common.IntOrZero(d.YearsTotal),
		ExpectedCitations: d.YearExpectedCitations,
		Strategy:          strategy,
	}, true
}

// Remaining returns years_total - years_completed, never negative. The value
// is always recomputed rather than trusted from the wire.
func (p YearByYearProgress) Remaining() int {
	remaining := p.Total - p.Completed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsPartition reports whether the payload uses the partition year strategy
func (d *ProgressDetails) IsPartition() bool {
	return d != nil && d.YearHarvestStrategy == YearStrategyPartition
}

// TargetTotal returns the harvest target citation count, falling back to the
// edition's own citation count when no explicit target is present.
func (d *ProgressDetails) TargetTotal() (int, bool) {
	if d == nil {
		return 0, false
	}
	if d.TargetCitationsTotal != nil {
		return *d.TargetCitationsTotal, true
	}
	if d.EditionCitationCount != nil {
		return *d.EditionCitationCount, true
	}
	return 0, false
}

