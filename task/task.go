package task

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Task describes a unit of work to be routed to a node. All requirement
// fields are immutable once the task is submitted; only State changes as
// the decision pipeline advances.
type Task struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`

	// Type is a free-form workload tag, e.g. "inference" or "sensor-stream".
	Type string `json:"type"`

	State State `json:"state"`

	// Priority is ordinal 1-10, higher is more urgent.
	Priority int `json:"priority"`

	// MaxLatencyMs is the maximum acceptable network latency in
	// milliseconds. Zero means the task has no latency constraint.
	MaxLatencyMs float64 `json:"max_latency_ms"`

	// RequiredCPU is in cores, RequiredRAM in GB. Zero means unspecified.
	RequiredCPU float64 `json:"required_cpu"`
	RequiredRAM float64 `json:"required_ram"`

	RequiresGPU bool `json:"requires_gpu"`

	// CostSensitivity is ordinal 0-10, higher is more cost-averse.
	CostSensitivity int `json:"cost_sensitivity"`

	SubmittedAt time.Time `json:"submitted_at"`
	FinishedAt  time.Time `json:"finished_at,omitempty"`
}

type InvalidTaskError struct {
	Field  string
	Reason string
}

func (e *InvalidTaskError) Error() string {
	return fmt.Sprintf("invalid task: field %s %s", e.Field, e.Reason)
}

// Validate checks the structurally required fields. A task failing
// validation never enters the decision pipeline.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return &InvalidTaskError{Field: "id", Reason: "must be set"}
	}
	if t.Name == "" {
		return &InvalidTaskError{Field: "name", Reason: "must be set"}
	}
	if t.Type == "" {
		return &InvalidTaskError{Field: "type", Reason: "must be set"}
	}
	if t.Priority < 1 || t.Priority > 10 {
		return &InvalidTaskError{Field: "priority", Reason: fmt.Sprintf("must be in [1, 10], got %d", t.Priority)}
	}
	if t.CostSensitivity < 0 || t.CostSensitivity > 10 {
		return &InvalidTaskError{Field: "costSensitivity", Reason: fmt.Sprintf("must be in [0, 10], got %d", t.CostSensitivity)}
	}
	if t.MaxLatencyMs < 0 {
		return &InvalidTaskError{Field: "maxLatencyMs", Reason: "must not be negative"}
	}
	if t.RequiredCPU < 0 {
		return &InvalidTaskError{Field: "requiredCpu", Reason: "must not be negative"}
	}
	if t.RequiredRAM < 0 {
		return &InvalidTaskError{Field: "requiredRam", Reason: "must not be negative"}
	}
	return nil
}

// LatencySensitive reports whether the task carries a tight latency
// requirement. The 50ms threshold matches the classifier's training data.
func (t *Task) LatencySensitive() bool {
	return t.MaxLatencyMs > 0 && t.MaxLatencyMs <= 50
}
