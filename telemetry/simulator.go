// Package telemetry feeds the registry with node readings, either from a
// simulated cluster or from the local host.
package telemetry

import (
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/Sumitdevelops/codered/node"
	"github.com/Sumitdevelops/codered/registry"
)

// Simulator drives a random-walk of node metrics: CPU drifts +-5 points
// per tick, RAM +-2, and latency has a 5% chance of spiking before
// decaying back toward the category baseline.
type Simulator struct {
	registry *registry.Registry
	rng      *rand.Rand
	interval time.Duration
	stop     chan struct{}
}

func NewSimulator(reg *registry.Registry, interval time.Duration, seed int64) *Simulator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulator{
		registry: reg,
		rng:      rand.New(rand.NewSource(seed)),
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// InitialTelemetry seeds a freshly registered node with plausible
// category-specific metrics.
func (s *Simulator) InitialTelemetry(category node.Category) registry.Telemetry {
	switch category {
	case node.Edge:
		return registry.Telemetry{
			CPULoad:    s.uniform(10, 40),
			RAMLoad:    s.uniform(20, 50),
			LatencyMs:  s.uniform(5, 20),
			PowerWatts: s.uniform(10, 30),
			Status:     node.Active,
		}
	case node.Cloud:
		return registry.Telemetry{
			CPULoad:    s.uniform(20, 60),
			RAMLoad:    s.uniform(30, 70),
			LatencyMs:  s.uniform(50, 150),
			PowerWatts: s.uniform(100, 200),
			Status:     node.Active,
		}
	case node.GPU:
		return registry.Telemetry{
			CPULoad:      s.uniform(10, 50),
			RAMLoad:      s.uniform(40, 80),
			LatencyMs:    s.uniform(60, 160),
			PowerWatts:   s.uniform(200, 400),
			Status:       node.Active,
			GPUAvailable: true,
		}
	}
	return registry.Telemetry{Status: node.Active}
}

// Run updates metrics until Stop is called.
func (s *Simulator) Run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

func (s *Simulator) Stop() {
	close(s.stop)
}

// Tick applies one random-walk step to every non-offline node.
func (s *Simulator) Tick() {
	snap := s.registry.Snapshot()

	for _, n := range snap.Nodes {
		if n.Status == node.Offline {
			continue
		}

		t := registry.Telemetry{
			CPULoad:      n.CPULoad + s.uniform(-5, 5),
			RAMLoad:      n.RAMLoad + s.uniform(-2, 2),
			PowerWatts:   n.PowerWatts,
			Status:       n.Status,
			GPUAvailable: n.GPUAvailable,
		}

		if s.rng.Float64() < 0.05 {
			t.LatencyMs = n.LatencyMs + s.uniform(50, 200)
		} else {
			t.LatencyMs = n.LatencyMs*0.9 + baselineLatency(n.Category)*0.1
		}

		if err := s.registry.UpdateTelemetry(n.ID, t); err != nil {
			zap.L().Warn("simulator telemetry update failed",
				zap.String("node", n.ID),
				zap.Error(err),
			)
		}
	}
}

func baselineLatency(category node.Category) float64 {
	if category == node.Edge {
		return 10
	}
	return 80
}

func (s *Simulator) uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}
