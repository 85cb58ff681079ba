package models

// Citation is a single citing-paper record harvested for one edition of a
// target paper. IntersectionCount is the number of distinct editions of the
// same target paper this citing paper cites; values above 1 mark
// cross-citations.
type Citation struct {
	ID                string `json:"id"`
	Title             string `json:"title,omitempty"`
	IntersectionCount int    `json:"intersection_count"`
	CitationCount     *int   `json:"citation_count,omitempty"` // The citing paper's own citation count
	Year              *int   `json:"year,omitempty"`
	EditionID         string `json:"edition_id,omitempty"`
	EditionTitle      string `json:"edition_title,omitempty"`
	EditionLanguage   string `json:"edition_language,omitempty"`
}

// BibliographyWork is one entry of the LLM-sourced reference list for a
// thinker. The list is read-only reference data.
type BibliographyWork struct {
	Title    string `json:"title"`
	Year     *int   `json:"year,omitempty"`
	Language string `json:"language,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// Bibliography is the full reference list for a thinker
type Bibliography struct {
	Works []BibliographyWork `json:"works"`
}

// PauseResult is returned by the pause-harvest command
type PauseResult struct {
	Title string `json:"title"`
}
