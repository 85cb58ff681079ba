package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// JobStatus represents the state of a harvest job
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// IsTerminal returns true for states no transition leaves
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusCancelled
}

// IsActive returns true while the job still occupies the pipeline
func (s JobStatus) IsActive() bool {
	return s == JobStatusPending || s == JobStatusRunning
}

// JobType represents the kind of background work a job performs
type JobType string

const (
	JobTypeResolve           JobType = "resolve"
	JobTypeDiscoverEditions  JobType = "discover_editions"
	JobTypeExtractCitations  JobType = "extract_citations"
	JobTypeFetchMoreEditions JobType = "fetch_more_editions"
)

// JobPriority is the priority assigned when creating a job from a gap
type JobPriority string

const (
	JobPriorityNormal JobPriority = "normal"
	JobPriorityHigh   JobPriority = "high"
)

// JobParams is the structured parameter bag attached to a job. The service
// transmits it either as a JSON object or as a JSON-encoded string; both
// forms decode identically.
type JobParams struct {
	Language        string           `json:"language,omitempty"`
	ProgressDetails *ProgressDetails `json:"progress_details,omitempty"`
}

// UnmarshalJSON accepts both an object and a string-encoded object.
func (p *JobParams) UnmarshalJSON(data []byte) error {
	type plain JobParams

	// String-encoded form: unwrap, then decode the inner document
	if len(data) > 0 && data[0] == '"' {
		var encoded string
		if err := json.Unmarshal(data, &encoded); err != nil {
			return fmt.Errorf("failed to unwrap encoded params: %w", err)
		}
		if encoded == "" {
			*p = JobParams{}
			return nil
		}
		var decoded plain
		if err := json.Unmarshal([]byte(encoded), &decoded); err != nil {
			return fmt.Errorf("failed to decode encoded params: %w", err)
		}
		*p = JobParams(decoded)
		return nil
	}

	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("failed to decode params: %w", err)
	}
	*p = JobParams(decoded)
	return nil
}

// Job represents one unit of asynchronous work as reported by the service.
// Snapshots are immutable once fetched; derived state lives in the lifecycle
// and view packages, never written back onto the record.
type Job struct {
	ID              string     `json:"id"`
	JobType         JobType    `json:"job_type"`
	Status          JobStatus  `json:"status"`
	Progress        float64    `json:"progress"` // Percentage on [0,100], non-decreasing while running
	ProgressMessage string     `json:"progress_message,omitempty"`
	Params          JobParams  `json:"params"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"` // Set only on entering a terminal state
	Error           string     `json:"error,omitempty"`        // Present only when status = failed
	PaperID         string     `json:"paper_id,omitempty"`
}

// IsTerminal returns true if the job is in a terminal state
func (j *Job) IsTerminal() bool {
	return j.Status.IsTerminal()
}

// Details returns the progress details payload, or nil when the job is not
// running. The payload is only meaningful while status = running; a stale
// payload on a settled job must never be read as activity.
func (j *Job) Details() *ProgressDetails {
	if j.Status != JobStatusRunning {
		return nil
	}
	return j.Params.ProgressDetails
}
