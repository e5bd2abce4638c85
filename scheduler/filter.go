package scheduler

import (
	"fmt"
	"strings"

	"github.com/Sumitdevelops/codered/node"
	"github.com/Sumitdevelops/codered/registry"
	"github.com/Sumitdevelops/codered/task"
)

// Rejection records why one node failed the hard constraints.
type Rejection struct {
	NodeID string
	Reason string
}

type NoEligibleNodeError struct {
	TaskID     string
	Rejections []Rejection
}

func (e *NoEligibleNodeError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "no eligible node for task %s:", e.TaskID)
	for _, r := range e.Rejections {
		fmt.Fprintf(&sb, " %s (%s);", r.NodeID, r.Reason)
	}
	return strings.TrimSuffix(sb.String(), ";")
}

// SelectCandidates applies every hard constraint to every node in the
// snapshot and returns the survivors in snapshot order, plus a rejection
// reason per eliminated node. A task is never routed to a node that
// fails any of these checks.
func SelectCandidates(t task.Task, snap registry.Snapshot) ([]node.Node, []Rejection) {
	var candidates []node.Node
	var rejections []Rejection

	for _, n := range snap.Nodes {
		if reason := checkConstraints(t, n); reason != "" {
			rejections = append(rejections, Rejection{NodeID: n.ID, Reason: reason})
			continue
		}
		candidates = append(candidates, n)
	}

	return candidates, rejections
}

func checkConstraints(t task.Task, n node.Node) string {
	if n.Status != node.Active {
		return fmt.Sprintf("status is %s", n.Status)
	}
	if t.RequiresGPU && !n.GPUAvailable {
		return "gpu required but not available"
	}
	if t.RequiredCPU > 0 && n.AvailableCPU() < t.RequiredCPU {
		return fmt.Sprintf("requires %.1f cpu cores, %.1f available", t.RequiredCPU, n.AvailableCPU())
	}
	if t.RequiredRAM > 0 && n.AvailableRAM() < t.RequiredRAM {
		return fmt.Sprintf("requires %.1fGB ram, %.1fGB available", t.RequiredRAM, n.AvailableRAM())
	}
	if t.MaxLatencyMs > 0 && n.LatencyMs > t.MaxLatencyMs {
		return fmt.Sprintf("latency %.1fms exceeds max %.1fms", n.LatencyMs, t.MaxLatencyMs)
	}
	return ""
}
