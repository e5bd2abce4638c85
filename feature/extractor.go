// Package feature maps a task and a metrics snapshot into the fixed-order
// numeric vector consumed by scoring. Extraction is pure: no side effects,
// and identical inputs always produce identical vectors.
package feature

import (
	"fmt"

	"github.com/Sumitdevelops/codered/node"
	"github.com/Sumitdevelops/codered/registry"
	"github.com/Sumitdevelops/codered/task"
)

// SchemaVersion pins the vector layout below. A classifier artifact
// trained against a different version must be rejected, never silently
// misaligned. Version 1 was the original five training features; version
// 2 appended the snapshot-derived features.
const SchemaVersion = 2

// Vector layout, fixed order:
//
//	0 required cpu (cores)
//	1 required ram (GB)
//	2 priority (1-10)
//	3 latency sensitive (0/1)
//	4 gpu required (0/1)
//	5 average edge load (percent)
//	6 average cloud load (percent)
//	7 average gpu load (percent)
//	8 ambient network latency (ms)
//	9 cost sensitivity (0-10)
type Vector []float64

// Width is the number of features in the current schema.
func Width() int {
	return 5 + len(node.Categories) + 2
}

type SchemaMismatchError struct {
	ExtractorVersion int
	ArtifactVersion  int
	ExtractorWidth   int
	ArtifactWidth    int
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf(
		"feature schema mismatch: extractor v%d width %d, artifact v%d width %d",
		e.ExtractorVersion, e.ExtractorWidth, e.ArtifactVersion, e.ArtifactWidth,
	)
}

// Extract builds the feature vector for one decision.
func Extract(t task.Task, snap registry.Snapshot) Vector {
	v := make(Vector, 0, Width())

	v = append(v, t.RequiredCPU)
	v = append(v, t.RequiredRAM)
	v = append(v, float64(t.Priority))
	v = append(v, boolToFloat(t.LatencySensitive()))
	v = append(v, boolToFloat(t.RequiresGPU))

	loads := snap.CategoryLoad()
	for _, c := range node.Categories {
		v = append(v, loads[c])
	}

	v = append(v, snap.Ambient.NetworkLatencyMs)
	v = append(v, float64(t.CostSensitivity))

	return v
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
