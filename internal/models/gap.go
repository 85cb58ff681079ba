package models

import "github.com/tessario/messis/internal/common"

// GapStatus represents the state of an identified bibliography gap
type GapStatus string

const (
	GapStatusPending    GapStatus = "pending"
	GapStatusJobCreated GapStatus = "job_created"
	GapStatusDismissed  GapStatus = "dismissed"
)

// IsTerminal returns true for states no transition leaves
func (s GapStatus) IsTerminal() bool {
	return s == GapStatusJobCreated || s == GapStatusDismissed
}

// GapSource records how a gap was identified
type GapSource string

const (
	GapSourceLLMKnowledge GapSource = "llm_knowledge"
	GapSourceWebSearch    GapSource = "web_search"
	GapSourceOther        GapSource = "other"
)

// Label returns a display label for the source. Unrecognized values fall
// through to the generic label rather than erroring; the service adds new
// sources without coordinating with clients.
func (s GapSource) Label() string {
	switch s {
	case GapSourceLLMKnowledge:
		return "LLM Knowledge"
	case GapSourceWebSearch:
		return "Web Search"
	default:
		return "Missing Edition"
	}
}

// NoReasonProvided is displayed when a gap was dismissed without a reason
const NoReasonProvided = "No reason provided"

// MissingEdition is a bibliography gap: an expected edition with no
// corresponding linked or harvested record yet.
type MissingEdition struct {
	ID                 string    `json:"id"`
	WorkCanonicalTitle string    `json:"work_canonical_title,omitempty"`
	ExpectedTitle      string    `json:"expected_title,omitempty"`
	Language           string    `json:"language,omitempty"`
	ExpectedYear       *int      `json:"expected_year,omitempty"`
	Source             GapSource `json:"source,omitempty"`
	Notes              string    `json:"notes,omitempty"`
	Status             GapStatus `json:"status"`
	JobID              string    `json:"job_id,omitempty"`         // Bound when status = job_created
	DismissReason      string    `json:"dismiss_reason,omitempty"` // May be empty even when dismissed
}

// Title returns the best available display title for the gap
func (g *MissingEdition) Title() string {
	if g.WorkCanonicalTitle != "" {
		return g.WorkCanonicalTitle
	}
	if g.ExpectedTitle != "" {
		return g.ExpectedTitle
	}
	return common.DisplayUnknown
}

// DismissReasonDisplay renders the dismiss reason, substituting the standard
// text when none was given. An absent reason never displays as empty.
func (g *MissingEdition) DismissReasonDisplay() string {
	if g.DismissReason == "" {
		return NoReasonProvided
	}
	return g.DismissReason
}
