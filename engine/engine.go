// Package engine implements the workload routing decision engine: it
// turns a task descriptor and a registry snapshot into a routing
// decision, reserves capacity on the winner, and releases it when the
// execution collaborator reports back.
package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-collections/collections/queue"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Sumitdevelops/codered/decision"
	"github.com/Sumitdevelops/codered/feature"
	"github.com/Sumitdevelops/codered/node"
	"github.com/Sumitdevelops/codered/registry"
	"github.com/Sumitdevelops/codered/scheduler"
	"github.com/Sumitdevelops/codered/store"
	"github.com/Sumitdevelops/codered/task"
)

// defaultLoadPercent is reserved per resource when a task does not
// specify explicit CPU/RAM requirements.
const defaultLoadPercent = 5.0

type Engine struct {
	Registry *registry.Registry

	Scheduler scheduler.Scheduler

	TaskStore store.Store

	DecisionStore store.Store

	// fallback scores decisions when the configured strategy fails
	// transiently; it is always a heuristic.
	fallback *scheduler.Heuristic

	// degraded is set when no usable classifier artifact was available
	// at startup, forcing heuristic-only mode.
	degraded bool

	pendingMu sync.Mutex
	pending   queue.Queue

	handlesMu sync.Mutex
	handles   map[uuid.UUID]*decision.Handle

	ProcessInterval time.Duration
}

func New(
	reg *registry.Registry,
	sched scheduler.Scheduler,
	fallback *scheduler.Heuristic,
	taskStore store.Store,
	decisionStore store.Store,
	degraded bool,
) *Engine {
	return &Engine{
		Registry:        reg,
		Scheduler:       sched,
		TaskStore:       taskStore,
		DecisionStore:   decisionStore,
		fallback:        fallback,
		degraded:        degraded,
		pending:         *queue.New(),
		handles:         make(map[uuid.UUID]*decision.Handle),
		ProcessInterval: 2 * time.Second,
	}
}

// DegradedMode reports whether the engine is running heuristic-only.
func (e *Engine) DegradedMode() bool {
	return e.degraded
}

// Route runs the full decision pipeline for one task. On success the
// winning node has capacity reserved and the returned handle must be
// settled through Complete, even if the caller abandons the task.
func (e *Engine) Route(t task.Task) (*decision.Handle, error) {
	t.State = task.RECEIVED
	t.SubmittedAt = time.Now()

	if err := t.Validate(); err != nil {
		zap.L().Warn("task rejected", zap.String("task", t.Name), zap.Error(err))
		return nil, err
	}
	e.storeTask(&t)

	snap := e.Registry.Snapshot()

	t.State = task.FEATURIZED
	features := feature.Extract(t, snap)

	candidates, err := e.Scheduler.SelectCandidateNodes(t, snap)
	if err != nil {
		e.failTask(&t)
		zap.L().Info("no eligible node", zap.String("task", t.ID.String()), zap.Error(err))
		return nil, err
	}
	t.State = task.FILTERED

	strategy := e.Scheduler
	degraded := e.degraded

	scores, err := strategy.Score(t, candidates, features)
	if err != nil {
		// Transient scorer failure: fall back to the heuristic rather
		// than failing the decision.
		zap.L().Warn("scorer failed, falling back to heuristic",
			zap.String("task", t.ID.String()),
			zap.String("strategy", strategy.Name()),
			zap.Error(err),
		)
		strategy = e.fallback
		degraded = true

		scores, err = strategy.Score(t, candidates, features)
		if err != nil {
			e.failTask(&t)
			return nil, fmt.Errorf("fallback scoring for task %s: %w", t.ID, err)
		}
	}
	t.State = task.SCORED
	e.storeTask(&t)

	winner := strategy.Pick(scores, candidates)
	if winner == nil {
		e.failTask(&t)
		return nil, fmt.Errorf("no winner picked for task %s", t.ID)
	}

	reservation := reservationFor(t, *winner)
	if err := e.Registry.Reserve(winner.ID, reservation); err != nil {
		var capErr *registry.CapacityExceededError
		if errors.As(err, &capErr) {
			// Reservation race lost. The task is not terminal: the
			// caller (or the pending loop) may retry against a fresh
			// snapshot.
			zap.L().Info("reservation race lost",
				zap.String("task", t.ID.String()),
				zap.String("node", winner.ID),
			)
			return nil, err
		}
		e.failTask(&t)
		return nil, err
	}

	d := e.buildDecision(t, *winner, strategy, degraded, scores, candidates, features, snap)

	t.State = task.DISPATCHED
	e.storeTask(&t)

	e.persist(&decision.Record{Decision: d})

	handle := &decision.Handle{
		ID:       uuid.New(),
		Decision: d,
		Reserved: reservation,
	}

	e.handlesMu.Lock()
	e.handles[handle.ID] = handle
	e.handlesMu.Unlock()

	zap.L().Info("task dispatched",
		zap.String("task", t.ID.String()),
		zap.String("node", winner.ID),
		zap.String("strategy", strategy.Name()),
		zap.Float64("confidence", d.Confidence),
		zap.Bool("degraded", degraded),
	)

	return handle, nil
}

// Complete settles a dispatch handle with the outcome reported by the
// execution collaborator. The reservation is released on every path,
// success or failure.
func (e *Engine) Complete(handleID uuid.UUID, out decision.Outcome) error {
	e.handlesMu.Lock()
	handle, ok := e.handles[handleID]
	if ok {
		delete(e.handles, handleID)
	}
	e.handlesMu.Unlock()

	if !ok {
		return fmt.Errorf("unknown dispatch handle %s", handleID)
	}

	defer func() {
		if err := e.Registry.Release(handle.Decision.NodeID, handle.Reserved); err != nil {
			zap.L().Error("release failed, capacity may leak",
				zap.String("node", handle.Decision.NodeID),
				zap.Error(err),
			)
		}
	}()

	finished := time.Now()

	if result, err := e.TaskStore.Get(handle.Decision.TaskID.String()); err == nil {
		if t, castOk := result.(*task.Task); castOk {
			dst := task.COMPLETED
			if !out.Success {
				dst = task.FAILED
			}
			if task.ValidStateTransition(t.State, dst) {
				t.State = dst
				t.FinishedAt = finished
				e.storeTask(t)
			}
		}
	}

	e.persist(&decision.Record{
		Decision:   handle.Decision,
		Outcome:    &out,
		FinishedAt: finished,
	})

	zap.L().Info("task settled",
		zap.String("task", handle.Decision.TaskID.String()),
		zap.String("node", handle.Decision.NodeID),
		zap.Bool("success", out.Success),
		zap.Float64("actualLatencyMs", out.ActualLatencyMs),
	)

	return nil
}

// AddTask queues a task for the pending loop.
func (e *Engine) AddTask(t task.Task) {
	e.pendingMu.Lock()
	defer e.pendingMu.Unlock()

	e.pending.Enqueue(t)
}

// ProcessTasks drains the pending queue forever. Tasks that lose a
// reservation race are re-enqueued for the next pass; terminal failures
// are not retried.
func (e *Engine) ProcessTasks() {
	for {
		e.SendWork()

		time.Sleep(e.ProcessInterval)
	}
}

func (e *Engine) SendWork() {
	for {
		e.pendingMu.Lock()
		item := e.pending.Dequeue()
		e.pendingMu.Unlock()

		if item == nil {
			return
		}

		t := item.(task.Task)

		_, err := e.Route(t)
		if err == nil {
			continue
		}

		var capErr *registry.CapacityExceededError
		if errors.As(err, &capErr) {
			e.AddTask(t)
			return
		}

		zap.L().Warn("pending task failed",
			zap.String("task", t.ID.String()),
			zap.Error(err),
		)
	}
}

// GetTasks lists every task the engine has seen.
func (e *Engine) GetTasks() []*task.Task {
	tasks, err := e.TaskStore.List()
	if err != nil {
		zap.L().Error("error getting list of tasks", zap.Error(err))
		return nil
	}

	return tasks.([]*task.Task)
}

// GetDecisions lists the persisted decision history.
func (e *Engine) GetDecisions() []*decision.Record {
	records, err := e.DecisionStore.List()
	if err != nil {
		zap.L().Error("error getting decision history", zap.Error(err))
		return nil
	}

	return records.([]*decision.Record)
}

func (e *Engine) buildDecision(
	t task.Task,
	winner node.Node,
	strategy scheduler.Scheduler,
	degraded bool,
	scores map[string]float64,
	candidates []node.Node,
	features feature.Vector,
	snap registry.Snapshot,
) decision.Decision {
	ordered := make([]decision.NodeScore, 0, len(candidates))
	for _, c := range candidates {
		ordered = append(ordered, decision.NodeScore{NodeID: c.ID, Score: scores[c.ID]})
	}

	_, rejections := scheduler.SelectCandidates(t, snap)

	in := ExplainInput{
		Task:       t,
		Winner:     winner,
		Scores:     ordered,
		Strategy:   strategy.Name(),
		Degraded:   degraded,
		Rejections: rejections,
	}

	switch s := strategy.(type) {
	case *scheduler.Heuristic:
		subs := s.Subscores(t, candidates)
		contributions := make(map[string]map[string]float64, len(subs))
		for id, sub := range subs {
			contributions[id] = sub.Weighted(s.Weights())
		}
		in.Contributions = contributions
	case *scheduler.Classifier:
		if category, prob, err := s.PredictedCategory(features); err == nil {
			in.PredictedCategory = category
			in.CategoryProb = prob
		}
	}

	return decision.Decision{
		ID:         uuid.New(),
		TaskID:     t.ID,
		NodeID:     winner.ID,
		Confidence: scores[winner.ID],
		Scores:     ordered,
		Rationale:  Explain(in),
		Strategy:   strategy.Name(),
		Degraded:   degraded,
		CreatedAt:  time.Now(),
	}
}

// persist writes a decision record fire-and-forget: a store failure is
// surfaced as a warning and never fails the task.
func (e *Engine) persist(record *decision.Record) {
	if err := e.DecisionStore.Put(record.Decision.ID.String(), record); err != nil {
		zap.L().Warn("failed to persist decision record",
			zap.String("decision", record.Decision.ID.String()),
			zap.Error(err),
		)
	}
}

func (e *Engine) failTask(t *task.Task) {
	t.State = task.FAILED
	t.FinishedAt = time.Now()
	e.storeTask(t)
}

// storeTask records a task's current state fire-and-forget: a store
// failure is surfaced as a warning and never fails the task.
func (e *Engine) storeTask(t *task.Task) {
	if err := e.TaskStore.Put(t.ID.String(), t); err != nil {
		zap.L().Warn("failed to store task state",
			zap.String("task", t.ID.String()),
			zap.String("state", t.State.String()),
			zap.Error(err),
		)
	}
}

// reservationFor converts a task's requirements into percent points of
// the winning node's capacity.
func reservationFor(t task.Task, n node.Node) registry.Reservation {
	res := registry.Reservation{
		CPULoad: defaultLoadPercent,
		RAMLoad: defaultLoadPercent,
	}
	if t.RequiredCPU > 0 && n.MaxCPU > 0 {
		res.CPULoad = t.RequiredCPU / n.MaxCPU * 100
	}
	if t.RequiredRAM > 0 && n.MaxRAM > 0 {
		res.RAMLoad = t.RequiredRAM / n.MaxRAM * 100
	}
	return res
}
