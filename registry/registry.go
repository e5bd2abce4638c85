package registry

import (
	"sync"

	"go.uber.org/zap"

	"github.com/Sumitdevelops/codered/node"
)

// Telemetry is one idempotently applicable reading for a node. Applying
// the same reading twice leaves the node in the same state.
type Telemetry struct {
	CPULoad      float64     `json:"cpu_load"`
	RAMLoad      float64     `json:"ram_load"`
	LatencyMs    float64     `json:"latency_ms"`
	PowerWatts   float64     `json:"power_watts"`
	Status       node.Status `json:"status"`
	GPUAvailable bool        `json:"gpu_available"`
}

// Reservation is the load a dispatched task adds to a node, in percent
// points of each resource.
type Reservation struct {
	CPULoad float64 `json:"cpu_load"`
	RAMLoad float64 `json:"ram_load"`
}

// Registry is the single owner of all mutable node state. Every read used
// for a decision goes through Snapshot; Reserve and Release share the
// same lock, so two concurrent decisions can never both claim the last
// slice of capacity.
type Registry struct {
	mu      sync.Mutex
	nodes   map[string]*node.Node
	order   []string
	ambient Ambient
	version uint64
}

func New() *Registry {
	return &Registry{
		nodes:   make(map[string]*node.Node),
		ambient: Ambient{CostMultiplier: 1.0},
	}
}

func (r *Registry) Register(n node.Node) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.nodes[n.ID]; exists {
		return &DuplicateNodeError{ID: n.ID}
	}

	copied := n
	r.nodes[n.ID] = &copied
	r.order = append(r.order, n.ID)
	r.version++

	zap.L().Info("node registered",
		zap.String("node", n.ID),
		zap.String("category", string(n.Category)),
		zap.Float64("maxCpu", n.MaxCPU),
		zap.Float64("maxRam", n.MaxRAM),
	)

	return nil
}

// UpdateTelemetry replaces the mutable fields of a single node.
func (r *Registry) UpdateTelemetry(id string, t Telemetry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.nodes[id]
	if !ok {
		return &UnknownNodeError{ID: id}
	}

	n.CPULoad = clampPercent(t.CPULoad)
	n.RAMLoad = clampPercent(t.RAMLoad)
	n.LatencyMs = t.LatencyMs
	n.PowerWatts = t.PowerWatts
	n.Status = t.Status
	n.GPUAvailable = t.GPUAvailable
	r.version++

	return nil
}

// SetAmbient updates the environmental signals attached to snapshots.
func (r *Registry) SetAmbient(a Ambient) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ambient = a
	r.version++
}

// Snapshot returns a deep value copy of every node in registration order.
// Two calls with no intervening mutation return identical snapshots.
func (r *Registry) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	nodes := make([]node.Node, 0, len(r.order))
	for _, id := range r.order {
		nodes = append(nodes, *r.nodes[id])
	}

	return Snapshot{
		Version: r.version,
		Nodes:   nodes,
		Ambient: r.ambient,
	}
}

// Reserve optimistically adds load at dispatch time, before the task has
// actually started, so back-to-back decisions see the node as busier.
// It fails rather than oversubscribe past 100% of either resource.
func (r *Registry) Reserve(id string, res Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.nodes[id]
	if !ok {
		return &UnknownNodeError{ID: id}
	}

	if n.CPULoad+res.CPULoad > 100 {
		return &CapacityExceededError{
			ID:        id,
			Resource:  "cpu",
			Requested: res.CPULoad,
			Available: 100 - n.CPULoad,
		}
	}
	if n.RAMLoad+res.RAMLoad > 100 {
		return &CapacityExceededError{
			ID:        id,
			Resource:  "ram",
			Requested: res.RAMLoad,
			Available: 100 - n.RAMLoad,
		}
	}

	n.CPULoad += res.CPULoad
	n.RAMLoad += res.RAMLoad
	r.version++

	return nil
}

// Release returns reserved load on task completion or failure. It clamps
// at zero so a stray double release cannot drive load negative.
func (r *Registry) Release(id string, res Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.nodes[id]
	if !ok {
		return &UnknownNodeError{ID: id}
	}

	n.CPULoad = clampPercent(n.CPULoad - res.CPULoad)
	n.RAMLoad = clampPercent(n.RAMLoad - res.RAMLoad)
	r.version++

	return nil
}

// Count returns the number of registered nodes.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.nodes)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
