package scheduler

import (
	"testing"

	"github.com/google/uuid"

	"github.com/Sumitdevelops/codered/node"
	"github.com/Sumitdevelops/codered/task"
)

func TestNewHeuristicRejectsBadWeights(t *testing.T) {
	_, err := NewHeuristic(Weights{Headroom: 0.5, Latency: 0.5, Cost: 0.5, Affinity: 0.5})
	if err == nil {
		t.Fatalf("weights summing to 2.0 must be rejected")
	}

	if _, err := NewHeuristic(DefaultWeights()); err != nil {
		t.Fatalf("default weights must validate: %v", err)
	}
}

func TestHeuristicScoresInUnitRange(t *testing.T) {
	h, _ := NewHeuristic(DefaultWeights())

	tk := task.Task{ID: uuid.New(), Type: "batch", Priority: 9, MaxLatencyMs: 100, CostSensitivity: 8}
	candidates := []node.Node{
		{ID: "Edge-01", Category: node.Edge, Status: node.Active, CPULoad: 10, RAMLoad: 10, LatencyMs: 8, CostPerHour: 0.5},
		{ID: "Cloud-01", Category: node.Cloud, Status: node.Active, CPULoad: 80, RAMLoad: 70, LatencyMs: 95, CostPerHour: 2.0},
	}

	scores, err := h.Score(tk, candidates, nil)
	if err != nil {
		t.Fatalf("score: %v", err)
	}

	for id, s := range scores {
		if s < 0 || s > 1 {
			t.Errorf("score for %s out of [0,1]: %v", id, s)
		}
	}

	if scores["Edge-01"] <= scores["Cloud-01"] {
		t.Errorf("lightly loaded cheap low-latency edge should outrank loaded cloud: %v", scores)
	}
}

func TestLatencyFitnessClamped(t *testing.T) {
	tk := task.Task{MaxLatencyMs: 10}

	n := node.Node{LatencyMs: 50}
	if got := latencyFitness(tk, n); got != 0 {
		t.Errorf("latency 5x over budget should clamp to 0, got %v", got)
	}

	n.LatencyMs = 5
	if got := latencyFitness(tk, n); got != 0.5 {
		t.Errorf("expected fitness 0.5, got %v", got)
	}

	unconstrained := task.Task{}
	if got := latencyFitness(unconstrained, n); got != 1 {
		t.Errorf("unconstrained task should score 1, got %v", got)
	}
}

func TestCostEfficiencyRelativeToCheapest(t *testing.T) {
	candidates := []node.Node{
		{ID: "a", CostPerHour: 0.5},
		{ID: "b", CostPerHour: 2.0},
		{ID: "c", CostPerHour: 5.0},
	}
	minCost, maxCost := costRange(candidates)

	if got := costEfficiency(candidates[0], minCost, maxCost); got != 1 {
		t.Errorf("cheapest candidate should score 1, got %v", got)
	}
	if got := costEfficiency(candidates[2], minCost, maxCost); got != 0 {
		t.Errorf("most expensive candidate should score 0, got %v", got)
	}

	uniform := []node.Node{{ID: "a", CostPerHour: 2}, {ID: "b", CostPerHour: 2}}
	minCost, maxCost = costRange(uniform)
	if got := costEfficiency(uniform[0], minCost, maxCost); got != 1 {
		t.Errorf("uniform cost should score 1, got %v", got)
	}
}

func TestCategoryAffinity(t *testing.T) {
	gpuTask := task.Task{RequiresGPU: true}
	if got := categoryAffinity(gpuTask, node.Node{Category: node.GPU}); got != 1 {
		t.Errorf("gpu task on gpu node should have affinity 1, got %v", got)
	}

	sensorTask := task.Task{MaxLatencyMs: 10}
	edgeAffinity := categoryAffinity(sensorTask, node.Node{Category: node.Edge})
	cloudAffinity := categoryAffinity(sensorTask, node.Node{Category: node.Cloud})
	if edgeAffinity <= cloudAffinity {
		t.Errorf("latency sensitive task should prefer edge: edge=%v cloud=%v", edgeAffinity, cloudAffinity)
	}
}

func TestPickMaximumScore(t *testing.T) {
	h, _ := NewHeuristic(DefaultWeights())

	candidates := []node.Node{
		{ID: "a", CPULoad: 50},
		{ID: "b", CPULoad: 50},
		{ID: "c", CPULoad: 50},
	}
	scores := map[string]float64{"a": 0.2, "b": 0.9, "c": 0.5}

	winner := h.Pick(scores, candidates)
	if winner == nil || winner.ID != "b" {
		t.Fatalf("expected b, got %v", winner)
	}
}

// Tied top scores break on headroom first, then lexicographic id.
func TestPickTieBreak(t *testing.T) {
	h, _ := NewHeuristic(DefaultWeights())

	candidates := []node.Node{
		{ID: "n-zulu", CPULoad: 30, RAMLoad: 20},  // headroom 0.70
		{ID: "n-alpha", CPULoad: 50, RAMLoad: 10}, // headroom 0.50
	}
	scores := map[string]float64{"n-zulu": 0.81, "n-alpha": 0.81}

	winner := h.Pick(scores, candidates)
	if winner.ID != "n-zulu" {
		t.Fatalf("tie should break on greater headroom, got %s", winner.ID)
	}

	// equal headroom: lexicographically smaller id wins
	candidates[1].CPULoad = 30
	candidates[1].RAMLoad = 20
	winner = h.Pick(scores, candidates)
	if winner.ID != "n-alpha" {
		t.Fatalf("tie with equal headroom should break on smaller id, got %s", winner.ID)
	}
}

// Scores spaced under epsilon of each other but spanning more than
// epsilon overall: the tie set is measured against the maximum, so only
// candidates within epsilon of the top score compete, in any order.
func TestPickChainedNearTies(t *testing.T) {
	h, _ := NewHeuristic(DefaultWeights())

	a := node.Node{ID: "n-alpha", CPULoad: 10, RAMLoad: 10} // headroom 0.90
	b := node.Node{ID: "n-bravo", CPULoad: 30, RAMLoad: 30} // headroom 0.70
	c := node.Node{ID: "n-charlie", CPULoad: 50, RAMLoad: 50}
	scores := map[string]float64{
		"n-alpha":   0.5,
		"n-bravo":   0.5 + 0.9e-6,
		"n-charlie": 0.5 + 1.8e-6,
	}

	// n-alpha sits more than epsilon below the maximum and must never
	// win, despite its headroom and being within epsilon of n-bravo.
	orders := [][]node.Node{
		{a, b, c},
		{c, b, a},
		{b, a, c},
		{a, c, b},
	}
	for _, candidates := range orders {
		winner := h.Pick(scores, candidates)
		if winner.ID != "n-bravo" {
			t.Fatalf("expected n-bravo (best headroom within epsilon of the max) for order %v, got %s",
				ids(candidates), winner.ID)
		}
	}
}

func ids(nodes []node.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}

func TestPickTieBreakIndependentOfOrder(t *testing.T) {
	h, _ := NewHeuristic(DefaultWeights())

	a := node.Node{ID: "n-alpha", CPULoad: 30, RAMLoad: 20}
	z := node.Node{ID: "n-zulu", CPULoad: 30, RAMLoad: 20}
	scores := map[string]float64{"n-zulu": 0.81, "n-alpha": 0.81}

	first := h.Pick(scores, []node.Node{a, z})
	second := h.Pick(scores, []node.Node{z, a})

	if first.ID != second.ID {
		t.Fatalf("tie-break depends on candidate order: %s vs %s", first.ID, second.ID)
	}
	if first.ID != "n-alpha" {
		t.Fatalf("expected n-alpha, got %s", first.ID)
	}
}
