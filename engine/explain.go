package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Sumitdevelops/codered/decision"
	"github.com/Sumitdevelops/codered/node"
	"github.com/Sumitdevelops/codered/scheduler"
	"github.com/Sumitdevelops/codered/task"
)

// ExplainInput carries everything the explainer needs. The engine fills
// it from the decision it just computed; nothing here reaches back into
// shared state.
type ExplainInput struct {
	Task   task.Task
	Winner node.Node

	// Scores in filtering order.
	Scores   []decision.NodeScore
	Strategy string
	Degraded bool

	// Heuristic detail: per node, the weighted contribution of each
	// scoring dimension.
	Contributions map[string]map[string]float64

	// Classifier detail.
	PredictedCategory string
	CategoryProb      float64

	Rejections []scheduler.Rejection
}

// Explain produces the human-readable rationale attached to a decision.
// It is a pure function, so a rationale can be re-derived from a stored
// decision for auditing.
func Explain(in ExplainInput) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "routed task %q to %s (%s score %.2f",
		in.Task.Name, in.Winner.ID, in.Strategy, winnerScore(in))

	if runner, ok := runnerUp(in); ok {
		fmt.Fprintf(&sb, ", next best %s at %.2f", runner.NodeID, runner.Score)
	}
	sb.WriteString(")")

	switch in.Strategy {
	case "classifier":
		fmt.Fprintf(&sb, ": predicted category %s with probability %.2f, %s is the strongest %s candidate",
			in.PredictedCategory, in.CategoryProb, in.Winner.ID, in.Winner.Category)
	default:
		if dim, margin, ok := decisiveDimension(in); ok {
			fmt.Fprintf(&sb, ": decisive dimension %s (+%.2f over the next best)", dim, margin)
		}
	}

	if in.Degraded {
		sb.WriteString("; degraded mode, classifier unavailable")
	}

	if len(in.Rejections) > 0 {
		fmt.Fprintf(&sb, "; %d node(s) eliminated by hard constraints: %s",
			len(in.Rejections), formatRejections(in.Rejections))
	}

	return sb.String()
}

func winnerScore(in ExplainInput) float64 {
	for _, s := range in.Scores {
		if s.NodeID == in.Winner.ID {
			return s.Score
		}
	}
	return 0
}

// runnerUp finds the best scored candidate other than the winner.
func runnerUp(in ExplainInput) (decision.NodeScore, bool) {
	var runner decision.NodeScore
	found := false
	for _, s := range in.Scores {
		if s.NodeID == in.Winner.ID {
			continue
		}
		if !found || s.Score > runner.Score {
			runner = s
			found = true
		}
	}
	return runner, found
}

// decisiveDimension names the sub-score that contributed the largest
// share of the winning margin. With a single candidate it is simply the
// winner's largest contribution.
func decisiveDimension(in ExplainInput) (string, float64, bool) {
	winnerContrib, ok := in.Contributions[in.Winner.ID]
	if !ok {
		return "", 0, false
	}

	var runnerContrib map[string]float64
	if runner, found := runnerUp(in); found {
		runnerContrib = in.Contributions[runner.NodeID]
	}

	dims := make([]string, 0, len(winnerContrib))
	for dim := range winnerContrib {
		dims = append(dims, dim)
	}
	sort.Strings(dims)

	var bestDim string
	var bestMargin float64
	for i, dim := range dims {
		margin := winnerContrib[dim] - runnerContrib[dim]
		if i == 0 || margin > bestMargin {
			bestDim = dim
			bestMargin = margin
		}
	}

	return bestDim, bestMargin, bestDim != ""
}

func formatRejections(rejections []scheduler.Rejection) string {
	parts := make([]string, 0, len(rejections))
	for _, r := range rejections {
		parts = append(parts, fmt.Sprintf("%s (%s)", r.NodeID, r.Reason))
	}
	return strings.Join(parts, ", ")
}
