package telemetry

import (
	"time"

	"github.com/c9s/goprocinfo/linux"
	"go.uber.org/zap"

	"github.com/Sumitdevelops/codered/node"
	"github.com/Sumitdevelops/codered/registry"
)

// Stats is one reading of the local host's /proc counters.
type Stats struct {
	Memory *linux.MemInfo

	CPU *linux.CPUStat

	Load *linux.LoadAvg
}

func GetStats() *Stats {
	return &Stats{
		Memory: GetMemoryInfo(),
		CPU:    GetCPUStats(),
		Load:   GetLoadAvg(),
	}
}

func (s *Stats) GetTotalMemoryKB() uint64 {
	return s.Memory.MemTotal
}

func (s *Stats) GetAvailableMemoryKB() uint64 {
	return s.Memory.MemAvailable
}

func (s *Stats) GetUsedMemoryKB() uint64 {
	return s.GetTotalMemoryKB() - s.GetAvailableMemoryKB()
}

// GetMemoryUsagePercent returns used memory as percent of total.
func (s *Stats) GetMemoryUsagePercent() float64 {
	total := s.GetTotalMemoryKB()
	if total == 0 {
		return 0
	}
	return float64(s.GetUsedMemoryKB()) / float64(total) * 100
}

// GetCPUUsagePercent derives a usage percentage from cumulative jiffies.
func (s *Stats) GetCPUUsagePercent() float64 {
	totalIdle := s.CPU.Idle + s.CPU.IOWait

	totalNonIdle := s.CPU.User + s.CPU.Nice + s.CPU.System + s.CPU.IRQ + s.CPU.SoftIRQ + s.CPU.Steal

	total := totalIdle + totalNonIdle

	if total == 0 {
		return 0.00
	}

	return (float64(total) - float64(totalIdle)) / float64(total) * 100
}

func GetMemoryInfo() *linux.MemInfo {
	memstats, err := linux.ReadMemInfo("/proc/meminfo")
	if err != nil {
		zap.L().Warn("error reading from /proc/meminfo")
		return &linux.MemInfo{}
	}
	return memstats
}

// GetCPUStats See https://godoc.org/github.com/c9s/goprocinfo/linux#CPUStat
func GetCPUStats() *linux.CPUStat {
	stats, err := linux.ReadStat("/proc/stat")
	if err != nil {
		zap.L().Warn("error reading from /proc/stat")
		return &linux.CPUStat{}
	}
	return &stats.CPUStatAll
}

// GetLoadAvg See https://godoc.org/github.com/c9s/goprocinfo/linux#LoadAvg
func GetLoadAvg() *linux.LoadAvg {
	loadavg, err := linux.ReadLoadAvg("/proc/loadavg")
	if err != nil {
		zap.L().Warn("error reading from /proc/loadavg")
		return &linux.LoadAvg{}
	}
	return loadavg
}

// Collector reports the local host to the registry as an edge node, so a
// machine running the engine can also serve workloads.
type Collector struct {
	NodeID   string
	Interval time.Duration

	registry *registry.Registry
	stop     chan struct{}
}

func NewCollector(reg *registry.Registry, nodeID string, interval time.Duration) *Collector {
	return &Collector{
		NodeID:   nodeID,
		Interval: interval,
		registry: reg,
		stop:     make(chan struct{}),
	}
}

// Run publishes a reading per interval until Stop is called.
func (c *Collector) Run() {
	ticker := time.NewTicker(c.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.CollectOnce()
		}
	}
}

func (c *Collector) Stop() {
	close(c.stop)
}

func (c *Collector) CollectOnce() {
	stats := GetStats()

	t := registry.Telemetry{
		CPULoad:   stats.GetCPUUsagePercent(),
		RAMLoad:   stats.GetMemoryUsagePercent(),
		LatencyMs: 1, // local host
		Status:    node.Active,
	}

	if err := c.registry.UpdateTelemetry(c.NodeID, t); err != nil {
		zap.L().Warn("local stats update failed",
			zap.String("node", c.NodeID),
			zap.Error(err),
		)
	}
}
