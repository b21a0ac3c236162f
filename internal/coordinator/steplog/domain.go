// Package steplog records every step transition of an order-creation run.
//
// The ledger is append-only. Nothing in the pipeline is compensated, so when a
// run fails halfway the ledger is what an operator reads to learn which writes
// happened: the last STEP_DONE row names the last completed step, and its
// Detail carries the order id or the number of lines written.
package steplog

import (
	"encoding/json"
	"time"
)

// Status is the lifecycle state recorded by one ledger entry.
type Status string

const (
	StatusStarted   Status = "STARTED"
	StatusStepDone  Status = "STEP_DONE"
	StatusStepWarn  Status = "STEP_WARNED"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// Entry is one row of the step ledger.
type Entry struct {
	// RunID identifies one execution of the pipeline.
	RunID string

	Status Status

	// Step is the name of the step that just finished, empty for STARTED and COMPLETED.
	Step string

	// Detail is a short step-specific note such as "order_id=42" or "lines=1/2".
	Detail string

	// Payload is the JSON request that started the run. Only set on STARTED.
	Payload string

	// ErrorMessages is a JSON array of error strings, "[]" when there are none.
	ErrorMessages string

	TraceID string
	SpanID  string

	UpdatedAt time.Time
}

// Errors decodes ErrorMessages. A malformed value is returned as a single message.
func (e Entry) Errors() []string {
	if e.ErrorMessages == "" || e.ErrorMessages == "[]" {
		return nil
	}
	var msgs []string
	if err := json.Unmarshal([]byte(e.ErrorMessages), &msgs); err != nil {
		return []string{e.ErrorMessages}
	}
	return msgs
}
