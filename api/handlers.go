package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Sumitdevelops/codered/decision"
	"github.com/Sumitdevelops/codered/node"
	"github.com/Sumitdevelops/codered/registry"
	"github.com/Sumitdevelops/codered/scheduler"
	"github.com/Sumitdevelops/codered/task"
)

// ClusterState is the point-in-time view served at /cluster/state.
type ClusterState struct {
	Nodes     []node.Node  `json:"nodes"`
	Workloads []*task.Task `json:"workloads"`
}

func (a *API) SubmitTaskHandler(w http.ResponseWriter, r *http.Request) {
	d := json.NewDecoder(r.Body)
	d.DisallowUnknownFields()

	t := task.Task{}
	if err := d.Decode(&t); err != nil {
		msg := fmt.Sprintf("Error unmarshalling body: %v", err)
		zap.L().Warn(msg)
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	handle, err := a.Engine.Route(t)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(handle)
}

func (a *API) GetTasksHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	json.NewEncoder(w).Encode(a.Engine.GetTasks())
}

func (a *API) CompleteDispatchHandler(w http.ResponseWriter, r *http.Request) {
	handleIDParam := chi.URLParam(r, "handleID")

	handleID, err := uuid.Parse(handleIDParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid dispatch handle id %q", handleIDParam))
		return
	}

	d := json.NewDecoder(r.Body)
	d.DisallowUnknownFields()

	out := decision.Outcome{}
	if err := d.Decode(&out); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Error unmarshalling body: %v", err))
		return
	}

	if err := a.Engine.Complete(handleID, out); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *API) GetDecisionsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	json.NewEncoder(w).Encode(a.Engine.GetDecisions())
}

func (a *API) RegisterNodeHandler(w http.ResponseWriter, r *http.Request) {
	d := json.NewDecoder(r.Body)
	d.DisallowUnknownFields()

	n := node.Node{}
	if err := d.Decode(&n); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Error unmarshalling body: %v", err))
		return
	}

	if err := a.Registry.Register(n); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(n)
}

func (a *API) GetNodesHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	json.NewEncoder(w).Encode(a.Registry.Snapshot().Nodes)
}

func (a *API) UpdateTelemetryHandler(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")

	d := json.NewDecoder(r.Body)
	d.DisallowUnknownFields()

	t := registry.Telemetry{}
	if err := d.Decode(&t); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Error unmarshalling body: %v", err))
		return
	}

	if err := a.Registry.UpdateTelemetry(nodeID, t); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *API) ClusterStateHandler(w http.ResponseWriter, r *http.Request) {
	state := ClusterState{
		Nodes:     a.Registry.Snapshot().Nodes,
		Workloads: a.Engine.GetTasks(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	json.NewEncoder(w).Encode(state)
}

func (a *API) initRouter() {
	a.Router = chi.NewRouter()
	a.Router.Route(
		"/tasks", func(r chi.Router) {
			r.Post("/", a.SubmitTaskHandler)
			r.Get("/", a.GetTasksHandler)
		},
	)
	a.Router.Route(
		"/dispatches", func(r chi.Router) {
			r.Route(
				"/{handleID}", func(r chi.Router) {
					r.Post("/complete", a.CompleteDispatchHandler)
				},
			)
		},
	)
	a.Router.Route(
		"/decisions", func(r chi.Router) {
			r.Get("/", a.GetDecisionsHandler)
		},
	)
	a.Router.Route(
		"/nodes", func(r chi.Router) {
			r.Post("/", a.RegisterNodeHandler)
			r.Get("/", a.GetNodesHandler)
			r.Route(
				"/{nodeID}", func(r chi.Router) {
					r.Put("/telemetry", a.UpdateTelemetryHandler)
				},
			)
		},
	)
	a.Router.Route(
		"/cluster/state", func(r chi.Router) {
			r.Get("/", a.ClusterStateHandler)
		},
	)
}

func (a *API) Start() error {
	a.initRouter()
	return http.ListenAndServe(fmt.Sprintf("%s:%d", a.Address, a.Port), a.Router)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{HTTPStatusCode: status, Message: msg})
}

// statusFor maps the engine's error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	var invalidTask *task.InvalidTaskError
	var noEligible *scheduler.NoEligibleNodeError
	var capacity *registry.CapacityExceededError
	var unknown *registry.UnknownNodeError
	var duplicate *registry.DuplicateNodeError

	switch {
	case errors.As(err, &invalidTask):
		return http.StatusBadRequest
	case errors.As(err, &noEligible):
		return http.StatusConflict
	case errors.As(err, &capacity):
		return http.StatusServiceUnavailable
	case errors.As(err, &unknown):
		return http.StatusNotFound
	case errors.As(err, &duplicate):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
