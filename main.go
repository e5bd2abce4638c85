package main

import (
	"flag"
	"time"

	"go.uber.org/zap"

	"github.com/Sumitdevelops/codered/api"
	"github.com/Sumitdevelops/codered/config"
	"github.com/Sumitdevelops/codered/engine"
	"github.com/Sumitdevelops/codered/model"
	"github.com/Sumitdevelops/codered/node"
	"github.com/Sumitdevelops/codered/observability"
	"github.com/Sumitdevelops/codered/registry"
	"github.com/Sumitdevelops/codered/scheduler"
	"github.com/Sumitdevelops/codered/store"
	"github.com/Sumitdevelops/codered/telemetry"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	logger, err := observability.SetupLogger(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	reg := registry.New()

	sim := telemetry.NewSimulator(reg, time.Duration(cfg.Simulator.IntervalMS)*time.Millisecond, cfg.Simulator.Seed)

	seedCluster(reg, sim)

	heuristic, err := scheduler.NewHeuristic(scheduler.Weights{
		Headroom: cfg.Scheduler.Weights.Headroom,
		Latency:  cfg.Scheduler.Weights.Latency,
		Cost:     cfg.Scheduler.Weights.Cost,
		Affinity: cfg.Scheduler.Weights.Affinity,
	})
	if err != nil {
		logger.Fatal("invalid heuristic weights", zap.Error(err))
	}

	strategy, degraded := buildStrategy(cfg, heuristic)

	decisionStore := buildDecisionStore(cfg)

	e := engine.New(reg, strategy, heuristic, store.NewInMemoryTaskStore(), decisionStore, degraded)

	if cfg.Simulator.Enable {
		go sim.Run()
	}

	if cfg.LocalNode.Enable {
		startLocalNode(reg, cfg.LocalNode)
	}

	go e.ProcessTasks()

	a := api.API{Address: cfg.Address, Port: cfg.Port, Engine: e, Registry: reg}

	logger.Info("starting routing engine",
		zap.String("address", cfg.Address),
		zap.Int("port", cfg.Port),
		zap.String("strategy", strategy.Name()),
		zap.Bool("degraded", degraded),
	)

	if err := a.Start(); err != nil {
		logger.Fatal("api server stopped", zap.Error(err))
	}
}

// buildStrategy selects the configured scoring strategy. A classifier
// strategy without a loadable artifact drops to heuristic-only mode
// instead of failing startup.
func buildStrategy(cfg *config.Config, heuristic *scheduler.Heuristic) (scheduler.Scheduler, bool) {
	if cfg.Scheduler.Strategy != "classifier" {
		return heuristic, false
	}

	m, err := model.Load(cfg.Model.Path)
	if err != nil {
		zap.L().Warn("classifier artifact unavailable, running heuristic-only",
			zap.String("path", cfg.Model.Path),
			zap.Error(err),
		)
		return heuristic, true
	}

	classifier, err := scheduler.NewClassifier(m)
	if err != nil {
		zap.L().Warn("classifier strategy unavailable, running heuristic-only", zap.Error(err))
		return heuristic, true
	}

	zap.L().Info("classifier model loaded", zap.String("version", m.Version()))
	return classifier, false
}

func buildDecisionStore(cfg *config.Config) store.Store {
	if cfg.Store.Kind == "bolt" {
		s, err := store.NewBoltDBDecisionStore(cfg.Store.File, 0o600, cfg.Store.Bucket)
		if err != nil {
			zap.L().Warn("bolt store unavailable, falling back to memory",
				zap.String("file", cfg.Store.File),
				zap.Error(err),
			)
			return store.NewInMemoryDecisionStore()
		}
		return s
	}
	return store.NewInMemoryDecisionStore()
}

// startLocalNode registers the host running the engine as an edge node
// and keeps its telemetry fresh from /proc readings.
func startLocalNode(reg *registry.Registry, cfg config.LocalNodeConfig) {
	n := node.Node{
		ID:       cfg.ID,
		Category: node.Edge,
		Status:   node.Active,
		Location: "local",
		MaxCPU:   cfg.MaxCPU,
		MaxRAM:   cfg.MaxRAM,
	}
	if err := reg.Register(n); err != nil {
		zap.L().Error("failed to register local node", zap.String("node", cfg.ID), zap.Error(err))
		return
	}

	collector := telemetry.NewCollector(reg, cfg.ID, time.Duration(cfg.IntervalMS)*time.Millisecond)
	collector.CollectOnce()
	go collector.Run()
}

// seedCluster registers the default five-node cluster and gives every
// node an initial telemetry reading.
func seedCluster(reg *registry.Registry, sim *telemetry.Simulator) {
	nodes := []node.Node{
		{ID: "Edge-01", Category: node.Edge, Status: node.Active, Location: "Factory Floor", MaxCPU: 4, MaxRAM: 8, CostPerHour: 0.5},
		{ID: "Edge-02", Category: node.Edge, Status: node.Active, Location: "Warehouse", MaxCPU: 4, MaxRAM: 8, CostPerHour: 0.5},
		{ID: "Cloud-AWS-East", Category: node.Cloud, Status: node.Active, Location: "us-east-1", MaxCPU: 16, MaxRAM: 64, CostPerHour: 2.0},
		{ID: "Cloud-GCP-West", Category: node.Cloud, Status: node.Active, Location: "us-west1", MaxCPU: 16, MaxRAM: 64, CostPerHour: 2.0},
		{ID: "GPU-Cluster-01", Category: node.GPU, Status: node.Active, Location: "Data Center", MaxCPU: 32, MaxRAM: 128, CostPerHour: 5.0, GPUAvailable: true},
	}

	for _, n := range nodes {
		if err := reg.Register(n); err != nil {
			zap.L().Error("failed to register seed node", zap.String("node", n.ID), zap.Error(err))
			continue
		}

		t := sim.InitialTelemetry(n.Category)
		if err := reg.UpdateTelemetry(n.ID, t); err != nil {
			zap.L().Error("failed to seed telemetry", zap.String("node", n.ID), zap.Error(err))
		}
	}
}
