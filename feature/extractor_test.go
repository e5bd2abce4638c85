package feature

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/Sumitdevelops/codered/node"
	"github.com/Sumitdevelops/codered/registry"
	"github.com/Sumitdevelops/codered/task"
)

func testSnapshot() registry.Snapshot {
	return registry.Snapshot{
		Version: 7,
		Nodes: []node.Node{
			{ID: "Edge-01", Category: node.Edge, Status: node.Active, CPULoad: 30, RAMLoad: 20},
			{ID: "Cloud-01", Category: node.Cloud, Status: node.Active, CPULoad: 50, RAMLoad: 60},
			{ID: "GPU-01", Category: node.GPU, Status: node.Active, CPULoad: 10, RAMLoad: 40},
		},
		Ambient: registry.Ambient{NetworkLatencyMs: 25, CostMultiplier: 1.0},
	}
}

func TestExtractLiteralVector(t *testing.T) {
	tk := task.Task{
		ID:              uuid.New(),
		Type:            "inference",
		Priority:        7,
		MaxLatencyMs:    20, // latency sensitive
		RequiredCPU:     2,
		RequiredRAM:     4,
		RequiresGPU:     true,
		CostSensitivity: 6,
	}

	got := Extract(tk, testSnapshot())

	want := Vector{
		2,  // required cpu
		4,  // required ram
		7,  // priority
		1,  // latency sensitive
		1,  // gpu required
		30, // avg edge load
		60, // avg cloud load (dominant resource)
		40, // avg gpu load (dominant resource)
		25, // ambient network latency
		6,  // cost sensitivity
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("vector mismatch:\n%s", diff)
	}
	if len(got) != Width() {
		t.Fatalf("expected width %d, got %d", Width(), len(got))
	}
}

func TestExtractDeterministic(t *testing.T) {
	tk := task.Task{ID: uuid.New(), Type: "batch", Priority: 3}
	snap := testSnapshot()

	v1 := Extract(tk, snap)
	v2 := Extract(tk, snap)

	if diff := cmp.Diff(v1, v2); diff != "" {
		t.Fatalf("extraction is not deterministic:\n%s", diff)
	}
}

func TestExtractMissingCategoryIsZero(t *testing.T) {
	snap := testSnapshot()
	snap.Nodes = snap.Nodes[:1] // edge only

	v := Extract(task.Task{ID: uuid.New(), Type: "batch", Priority: 3}, snap)

	// cloud and gpu slots follow the edge slot
	if v[6] != 0 || v[7] != 0 {
		t.Errorf("expected zero load for absent categories, got cloud=%v gpu=%v", v[6], v[7])
	}
}
