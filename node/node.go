package node

type Category string

const (
	Edge  Category = "edge"
	Cloud Category = "cloud"
	GPU   Category = "gpu"
)

// Categories lists every known node category in fixed order. The feature
// schema and the classifier's class list both depend on this order.
var Categories = []Category{Edge, Cloud, GPU}

type Status string

const (
	Active   Status = "active"
	Degraded Status = "degraded"
	Offline  Status = "offline"
)

// Node is the state of one execution environment. Capacity ceilings are
// fixed at registration; load, latency, status and GPU availability change
// continuously via telemetry. Mutable fields are owned by the registry,
// which hands out value copies only.
type Node struct {
	ID       string   `json:"id"`
	Category Category `json:"category"`
	Status   Status   `json:"status"`
	Location string   `json:"location,omitempty"`

	// Capacity ceilings, fixed at registration.
	MaxCPU float64 `json:"max_cpu"` // cores
	MaxRAM float64 `json:"max_ram"` // GB

	// Current load, percent of capacity in [0, 100].
	CPULoad float64 `json:"cpu_load"`
	RAMLoad float64 `json:"ram_load"`

	LatencyMs  float64 `json:"latency_ms"`
	PowerWatts float64 `json:"power_watts"`

	// CostPerHour is the operational cost rate before any ambient
	// cost multiplier is applied.
	CostPerHour float64 `json:"cost_per_hour"`

	GPUAvailable bool `json:"gpu_available"`
}

// Headroom is the fraction of unused capacity on the most loaded
// resource, in [0, 1].
func (n *Node) Headroom() float64 {
	load := n.CPULoad
	if n.RAMLoad > load {
		load = n.RAMLoad
	}
	if load < 0 {
		load = 0
	}
	if load > 100 {
		load = 100
	}
	return 1 - load/100
}

// AvailableCPU returns unused cores.
func (n *Node) AvailableCPU() float64 {
	return n.MaxCPU * (1 - n.CPULoad/100)
}

// AvailableRAM returns unused memory in GB.
func (n *Node) AvailableRAM() float64 {
	return n.MaxRAM * (1 - n.RAMLoad/100)
}
