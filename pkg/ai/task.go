// Package ai provides a provider-agnostic client for delegated AI work.
// Providers implement the same submit/fetch/wait contract whether they
// complete synchronously or run tasks remotely.
package ai

import "encoding/json"

// Status is the lifecycle state of a task. The four right-hand states of
// queued -> running -> {succeeded | failed | canceled | timed_out} are
// terminal; no transition leaves a terminal state.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCanceled  Status = "canceled"
	StatusTimedOut  Status = "timed_out"
)

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusCanceled, StatusTimedOut:
		return true
	}
	return false
}

// TaskRequest describes one unit of delegated AI work. The instructions are
// passed to the backend verbatim; OutputSchema, when present, tells the
// backend what shape the answer should take.
type TaskRequest struct {
	Engine       string          `json:"engine"`
	Instructions string          `json:"instructions"`
	Tools        []string        `json:"tools,omitempty"`
	OutputSchema json.RawMessage `json:"outputSchema,omitempty"`
}

// Result is the backend's raw answer. Parsing the answer into structured
// data is the caller's responsibility, not the client's.
type Result struct {
	Answer    string `json:"answer"`
	Reasoning string `json:"reasoning,omitempty"`
}

// Task is owned by the task client for its lifetime and is immutable once
// in a terminal status.
type Task struct {
	ID     string  `json:"taskId"`
	Engine string  `json:"engine"`
	Status Status  `json:"status"`
	Result *Result `json:"result,omitempty"`
	Error  string  `json:"error,omitempty"`
}
