package scheduler

import (
	"github.com/Sumitdevelops/codered/feature"
	"github.com/Sumitdevelops/codered/node"
	"github.com/Sumitdevelops/codered/registry"
	"github.com/Sumitdevelops/codered/task"
)

// Scheduler is one scoring strategy. Strategies are stateless with
// respect to decisions: every method is a pure function of its inputs,
// so independent decisions can run in parallel.
type Scheduler interface {
	Name() string

	// SelectCandidateNodes applies the hard constraints and returns the
	// surviving nodes in snapshot order. An empty result is an error
	// (*NoEligibleNodeError), never a silent degradation.
	SelectCandidateNodes(t task.Task, snap registry.Snapshot) ([]node.Node, error)

	// Score maps every candidate's id to a score in [0, 1].
	Score(t task.Task, candidates []node.Node, features feature.Vector) (map[string]float64, error)

	// Pick selects the winner: maximum score, ties broken by headroom
	// then lexicographic id.
	Pick(scores map[string]float64, candidates []node.Node) *node.Node
}

// Epsilon below which two scores count as tied.
const Epsilon = 1e-6

// pickBest is the shared deterministic selection rule. The tie set is
// measured against the true maximum score, not a running best, so the
// winner never depends on candidate order.
func pickBest(scores map[string]float64, candidates []node.Node) *node.Node {
	if len(candidates) == 0 {
		return nil
	}

	maxScore := scores[candidates[0].ID]
	for _, c := range candidates[1:] {
		if s := scores[c.ID]; s > maxScore {
			maxScore = s
		}
	}

	// Tied within epsilon of the maximum: prefer greater headroom, then
	// the lexicographically smaller id.
	var best *node.Node
	for idx := range candidates {
		candidate := &candidates[idx]
		if scores[candidate.ID] < maxScore-Epsilon {
			continue
		}

		switch {
		case best == nil:
			best = candidate
		case candidate.Headroom() > best.Headroom():
			best = candidate
		case candidate.Headroom() == best.Headroom() && candidate.ID < best.ID:
			best = candidate
		}
	}

	return best
}
