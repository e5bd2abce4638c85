// Package model loads and evaluates the pre-trained node category
// classifier. The artifact is produced by an offline training pipeline;
// this package treats it as an opaque, already-fitted predictor.
package model

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/mat"

	"github.com/Sumitdevelops/codered/feature"
)

// Artifact is the on-disk JSON form of a fitted multinomial logistic
// model: one weight row and one bias term per class.
type Artifact struct {
	Version       string      `json:"version"`
	SchemaVersion int         `json:"schema_version"`
	Classes       []string    `json:"classes"`
	Weights       [][]float64 `json:"weights"`
	Bias          []float64   `json:"bias"`
}

// Model answers one question: given a feature vector, what is the
// probability distribution over node categories.
type Model struct {
	version string
	classes []string
	weights *mat.Dense
	bias    *mat.VecDense
}

// Load reads and validates a classifier artifact. A schema version or
// width skew between the artifact and the current extractor is reported
// as *feature.SchemaMismatchError so the caller can drop to heuristic
// scoring instead of misaligning features.
func Load(path string) (*Model, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}

	var a Artifact
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("decode model artifact %s: %w", path, err)
	}

	return FromArtifact(a)
}

// FromArtifact builds a Model from an already decoded artifact.
func FromArtifact(a Artifact) (*Model, error) {
	if len(a.Classes) == 0 {
		return nil, fmt.Errorf("model artifact %q has no classes", a.Version)
	}
	if len(a.Weights) != len(a.Classes) {
		return nil, fmt.Errorf(
			"model artifact %q has %d weight rows for %d classes",
			a.Version, len(a.Weights), len(a.Classes),
		)
	}
	if len(a.Bias) != len(a.Classes) {
		return nil, fmt.Errorf(
			"model artifact %q has %d bias terms for %d classes",
			a.Version, len(a.Bias), len(a.Classes),
		)
	}

	width := len(a.Weights[0])
	for _, row := range a.Weights {
		if len(row) != width {
			return nil, fmt.Errorf("model artifact %q has ragged weight rows", a.Version)
		}
	}
	if a.SchemaVersion != feature.SchemaVersion || width != feature.Width() {
		return nil, &feature.SchemaMismatchError{
			ExtractorVersion: feature.SchemaVersion,
			ArtifactVersion:  a.SchemaVersion,
			ExtractorWidth:   feature.Width(),
			ArtifactWidth:    width,
		}
	}

	flat := make([]float64, 0, len(a.Classes)*width)
	for _, row := range a.Weights {
		flat = append(flat, row...)
	}

	return &Model{
		version: a.Version,
		classes: append([]string(nil), a.Classes...),
		weights: mat.NewDense(len(a.Classes), width, flat),
		bias:    mat.NewVecDense(len(a.Classes), append([]float64(nil), a.Bias...)),
	}, nil
}

func (m *Model) Version() string {
	return m.version
}

func (m *Model) Classes() []string {
	return append([]string(nil), m.classes...)
}

// Predict returns the probability per class for one feature vector.
func (m *Model) Predict(v feature.Vector) (map[string]float64, error) {
	if len(v) != feature.Width() {
		return nil, &feature.SchemaMismatchError{
			ExtractorVersion: feature.SchemaVersion,
			ArtifactVersion:  feature.SchemaVersion,
			ExtractorWidth:   feature.Width(),
			ArtifactWidth:    len(v),
		}
	}

	x := mat.NewVecDense(len(v), append([]float64(nil), v...))

	var logits mat.VecDense
	logits.MulVec(m.weights, x)
	logits.AddVec(&logits, m.bias)

	probs := softmax(logits.RawVector().Data)

	out := make(map[string]float64, len(m.classes))
	for i, c := range m.classes {
		out[c] = probs[i]
	}
	return out, nil
}

// softmax with max subtraction for numeric stability.
func softmax(z []float64) []float64 {
	maxZ := z[0]
	for _, v := range z[1:] {
		if v > maxZ {
			maxZ = v
		}
	}

	var sum float64
	out := make([]float64, len(z))
	for i, v := range z {
		out[i] = math.Exp(v - maxZ)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
