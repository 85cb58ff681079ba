package models

import "time"

// RunStatus represents the state of a gap-analysis run
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Importance grades a linked work within an analysis run
type Importance string

const (
	ImportanceMinor       Importance = "minor"
	ImportanceSignificant Importance = "significant"
	ImportanceMajor       Importance = "major"
)

// WorkEdition is one known edition of a linked work
type WorkEdition struct {
	ID            string `json:"id"`
	Language      string `json:"language,omitempty"`
	Year          *int   `json:"year,omitempty"`
	CitationCount *int   `json:"citation_count,omitempty"`
}

// LinkedWork associates an expected bibliography entry with the editions the
// service has linked to it; its missing_editions are the gaps for this work.
type LinkedWork struct {
	ID              string           `json:"id"`
	CanonicalTitle  string           `json:"canonical_title,omitempty"`
	Importance      Importance       `json:"importance,omitempty"`
	Editions        []WorkEdition    `json:"editions,omitempty"`
	MissingEditions []MissingEdition `json:"missing_editions,omitempty"`
}

// AnalysisRun is one execution of the gap-analysis procedure for a dossier
type AnalysisRun struct {
	ID              string     `json:"id"`
	Status          RunStatus  `json:"status"`
	WorksIdentified int        `json:"works_identified"`
	LinksCreated    int        `json:"links_created"`
	GapsFound       int        `json:"gaps_found"`
	JobsCreated     int        `json:"jobs_created"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// EditionAnalysis is the dossier-level analysis view: the run plus the linked
// works whose union of missing editions forms the gap set for that run.
type EditionAnalysis struct {
	Run   *AnalysisRun `json:"run,omitempty"`
	Works []LinkedWork `json:"works"`
}
