// Package decision holds the immutable records produced by the routing
// engine: the decision itself, the dispatch handle handed to execution
// collaborators, and the outcome they report back.
package decision

import (
	"time"

	"github.com/google/uuid"

	"github.com/Sumitdevelops/codered/registry"
)

// NodeScore is one candidate's score. Decisions keep scores as an
// ordered slice, preserving the filtering order of the snapshot.
type NodeScore struct {
	NodeID string  `json:"node_id"`
	Score  float64 `json:"score"`
}

// Decision is the result of routing one task. Immutable once produced.
type Decision struct {
	ID     uuid.UUID `json:"id"`
	TaskID uuid.UUID `json:"task_id"`

	NodeID     string  `json:"node_id"`
	Confidence float64 `json:"confidence"`

	Scores    []NodeScore `json:"scores"`
	Rationale string      `json:"rationale"`

	// Strategy that produced the scores and whether the engine was in
	// degraded (heuristic fallback) mode at the time.
	Strategy string `json:"strategy"`
	Degraded bool   `json:"degraded"`

	CreatedAt time.Time `json:"created_at"`
}

// Handle is the opaque dispatch record given to the execution
// collaborator. The collaborator must report back via the engine's
// Complete call so the reservation is released.
type Handle struct {
	ID       uuid.UUID            `json:"id"`
	Decision Decision             `json:"decision"`
	Reserved registry.Reservation `json:"reserved"`
}

// Outcome is what the execution collaborator reports on completion.
type Outcome struct {
	Success         bool    `json:"success"`
	ActualLatencyMs float64 `json:"actual_latency_ms"`
	ActualCost      float64 `json:"actual_cost"`
}

// Record is the terminal form persisted to the decision store: the
// decision plus its reported outcome, if any.
type Record struct {
	Decision Decision `json:"decision"`
	Outcome  *Outcome `json:"outcome,omitempty"`

	FinishedAt time.Time `json:"finished_at,omitempty"`
}
