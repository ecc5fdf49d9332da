package agent

import "time"

// Record is the envelope every agent emits when a run finishes. Result is
// set only for completed runs and Error only for failed ones.
type Record struct {
	Agent         string    `json:"agent"`
	Role          string    `json:"role"`
	Status        Status    `json:"status"`
	Result        any       `json:"result,omitempty"`
	Error         string    `json:"error,omitempty"`
	ExecutionTime int64     `json:"executionTime"`
	Timestamp     time.Time `json:"timestamp"`
}

// Succeeded reports whether the run completed.
func (r Record) Succeeded() bool {
	return r.Status == StatusCompleted
}
