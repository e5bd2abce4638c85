package scheduler

import (
	"fmt"
	"math"

	"github.com/Sumitdevelops/codered/feature"
	"github.com/Sumitdevelops/codered/node"
	"github.com/Sumitdevelops/codered/registry"
	"github.com/Sumitdevelops/codered/task"
)

// Weights of the heuristic sub-scores. They must sum to 1.0.
type Weights struct {
	Headroom float64
	Latency  float64
	Cost     float64
	Affinity float64
}

func DefaultWeights() Weights {
	return Weights{
		Headroom: 0.30,
		Latency:  0.25,
		Cost:     0.25,
		Affinity: 0.20,
	}
}

func (w Weights) validate() error {
	sum := w.Headroom + w.Latency + w.Cost + w.Affinity
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("heuristic weights must sum to 1.0, got %v", sum)
	}
	return nil
}

// Subscores are the normalized [0, 1] components of one candidate's
// heuristic score, before weighting.
type Subscores struct {
	Headroom float64
	Latency  float64
	Cost     float64
	Affinity float64
}

// Weighted returns the per-dimension contributions after weighting.
func (s Subscores) Weighted(w Weights) map[string]float64 {
	return map[string]float64{
		"resource headroom": w.Headroom * s.Headroom,
		"latency fitness":   w.Latency * s.Latency,
		"cost efficiency":   w.Cost * s.Cost,
		"category affinity": w.Affinity * s.Affinity,
	}
}

// Heuristic scores candidates with a weighted sum of normalized
// sub-scores. It needs no trained artifact, which also makes it the
// fallback when the classifier is unavailable.
type Heuristic struct {
	weights Weights
}

func NewHeuristic(w Weights) (*Heuristic, error) {
	if err := w.validate(); err != nil {
		return nil, err
	}
	return &Heuristic{weights: w}, nil
}

func (h *Heuristic) Name() string {
	return "heuristic"
}

func (h *Heuristic) Weights() Weights {
	return h.weights
}

func (h *Heuristic) SelectCandidateNodes(t task.Task, snap registry.Snapshot) ([]node.Node, error) {
	candidates, rejections := SelectCandidates(t, snap)
	if len(candidates) == 0 {
		return nil, &NoEligibleNodeError{TaskID: t.ID.String(), Rejections: rejections}
	}
	return candidates, nil
}

func (h *Heuristic) Score(t task.Task, candidates []node.Node, _ feature.Vector) (map[string]float64, error) {
	subs := h.Subscores(t, candidates)

	scores := make(map[string]float64, len(candidates))
	for id, s := range subs {
		scores[id] = clamp01(
			h.weights.Headroom*s.Headroom +
				h.weights.Latency*s.Latency +
				h.weights.Cost*s.Cost +
				h.weights.Affinity*s.Affinity,
		)
	}

	return scores, nil
}

// Subscores computes the normalized components per candidate. Cost
// efficiency is relative to the cheapest surviving candidate, so it is
// only meaningful across one filtered set.
func (h *Heuristic) Subscores(t task.Task, candidates []node.Node) map[string]Subscores {
	minCost, maxCost := costRange(candidates)

	subs := make(map[string]Subscores, len(candidates))
	for _, n := range candidates {
		subs[n.ID] = Subscores{
			Headroom: n.Headroom(),
			Latency:  latencyFitness(t, n),
			Cost:     costEfficiency(n, minCost, maxCost),
			Affinity: categoryAffinity(t, n),
		}
	}
	return subs
}

func (h *Heuristic) Pick(scores map[string]float64, candidates []node.Node) *node.Node {
	return pickBest(scores, candidates)
}

// latencyFitness is 1 - latency/max, clamped to [0, 1]. A task without a
// latency constraint treats every candidate as a perfect fit.
func latencyFitness(t task.Task, n node.Node) float64 {
	if t.MaxLatencyMs <= 0 {
		return 1
	}
	return clamp01(1 - n.LatencyMs/t.MaxLatencyMs)
}

func costRange(candidates []node.Node) (minCost, maxCost float64) {
	for i, n := range candidates {
		if i == 0 || n.CostPerHour < minCost {
			minCost = n.CostPerHour
		}
		if i == 0 || n.CostPerHour > maxCost {
			maxCost = n.CostPerHour
		}
	}
	return minCost, maxCost
}

// costEfficiency is 1 - normalizedCost: the cheapest surviving candidate
// scores 1, the most expensive 0. A uniform-cost set scores 1 across the
// board.
func costEfficiency(n node.Node, minCost, maxCost float64) float64 {
	if maxCost-minCost < Epsilon {
		return 1
	}
	return clamp01(1 - (n.CostPerHour-minCost)/(maxCost-minCost))
}

// categoryAffinity encodes the priority/category preferences the
// classifier was trained on: GPU work on GPU nodes, latency-sensitive
// work near the edge, high-priority work on cloud capacity, cost-averse
// work on the cheaper edge tier.
func categoryAffinity(t task.Task, n node.Node) float64 {
	if t.RequiresGPU && n.Category == node.GPU {
		return 1
	}

	affinity := 0.5
	if t.LatencySensitive() && n.Category == node.Edge {
		affinity += 0.4
	}
	if t.Priority >= 8 && n.Category == node.Cloud {
		affinity += 0.3
	}
	if t.CostSensitivity >= 7 && n.Category == node.Edge {
		affinity += 0.2
	}

	return clamp01(affinity)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
