package registry

import (
	"github.com/Sumitdevelops/codered/node"
)

// Ambient carries the environmental signals that accompany node state in
// a snapshot: global network conditions and the current cost multiplier.
type Ambient struct {
	NetworkLatencyMs float64 `json:"network_latency_ms"`
	CostMultiplier   float64 `json:"cost_multiplier"`
}

// Snapshot is an immutable point-in-time view of every registered node
// plus ambient signals. Nodes are value copies in registration order, so
// a decision computed against a snapshot never observes a concurrent
// telemetry update. Version is the registry's mutation counter at the
// time the snapshot was taken; two snapshots with the same version are
// identical.
type Snapshot struct {
	Version uint64
	Nodes   []node.Node
	Ambient Ambient
}

// Find returns a copy of the node with the given id.
func (s Snapshot) Find(id string) (node.Node, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return node.Node{}, false
}

// CategoryLoad returns the average of each node's dominant resource load,
// grouped by category, for the categories present in the snapshot.
func (s Snapshot) CategoryLoad() map[node.Category]float64 {
	sums := make(map[node.Category]float64)
	counts := make(map[node.Category]int)
	for _, n := range s.Nodes {
		load := n.CPULoad
		if n.RAMLoad > load {
			load = n.RAMLoad
		}
		sums[n.Category] += load
		counts[n.Category]++
	}

	loads := make(map[node.Category]float64, len(sums))
	for c, sum := range sums {
		loads[c] = sum / float64(counts[c])
	}
	return loads
}
