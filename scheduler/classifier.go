package scheduler

import (
	"fmt"

	"github.com/Sumitdevelops/codered/feature"
	"github.com/Sumitdevelops/codered/node"
	"github.com/Sumitdevelops/codered/registry"
	"github.com/Sumitdevelops/codered/task"
)

// Predictor is the classifier artifact boundary: one operation, feature
// vector in, probability per node category out.
type Predictor interface {
	Predict(v feature.Vector) (map[string]float64, error)
	Version() string
}

// Classifier scores each candidate with the predicted probability of its
// category. A candidate whose category the predictor does not know about
// scores 0, leaving it as a fallback only.
type Classifier struct {
	predictor Predictor
}

func NewClassifier(p Predictor) (*Classifier, error) {
	if p == nil {
		return nil, fmt.Errorf("classifier strategy requires a predictor")
	}
	return &Classifier{predictor: p}, nil
}

func (c *Classifier) Name() string {
	return "classifier"
}

func (c *Classifier) SelectCandidateNodes(t task.Task, snap registry.Snapshot) ([]node.Node, error) {
	candidates, rejections := SelectCandidates(t, snap)
	if len(candidates) == 0 {
		return nil, &NoEligibleNodeError{TaskID: t.ID.String(), Rejections: rejections}
	}
	return candidates, nil
}

func (c *Classifier) Score(t task.Task, candidates []node.Node, features feature.Vector) (map[string]float64, error) {
	probs, err := c.predictor.Predict(features)
	if err != nil {
		return nil, fmt.Errorf("classifier prediction for task %s: %w", t.ID, err)
	}

	scores := make(map[string]float64, len(candidates))
	for _, n := range candidates {
		scores[n.ID] = probs[string(n.Category)]
	}

	return scores, nil
}

func (c *Classifier) Pick(scores map[string]float64, candidates []node.Node) *node.Node {
	return pickBest(scores, candidates)
}

// PredictedCategory returns the most probable category for a feature
// vector, used by the explainer.
func (c *Classifier) PredictedCategory(features feature.Vector) (string, float64, error) {
	probs, err := c.predictor.Predict(features)
	if err != nil {
		return "", 0, err
	}

	var best string
	var bestProb float64
	for category, p := range probs {
		if p > bestProb || (p == bestProb && (best == "" || category < best)) {
			best = category
			bestProb = p
		}
	}
	return best, bestProb, nil
}
