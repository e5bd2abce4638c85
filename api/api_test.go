package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Sumitdevelops/codered/decision"
	"github.com/Sumitdevelops/codered/engine"
	"github.com/Sumitdevelops/codered/node"
	"github.com/Sumitdevelops/codered/registry"
	"github.com/Sumitdevelops/codered/scheduler"
	"github.com/Sumitdevelops/codered/store"
)

func testAPI(t *testing.T) *API {
	t.Helper()

	reg := registry.New()
	nodes := []node.Node{
		{ID: "Edge-01", Category: node.Edge, Status: node.Active, MaxCPU: 4, MaxRAM: 8, CPULoad: 20, RAMLoad: 20, LatencyMs: 8, CostPerHour: 0.5},
		{ID: "Cloud-AWS-East", Category: node.Cloud, Status: node.Active, MaxCPU: 16, MaxRAM: 64, CPULoad: 40, RAMLoad: 40, LatencyMs: 90, CostPerHour: 2.0},
	}
	for _, n := range nodes {
		if err := reg.Register(n); err != nil {
			t.Fatalf("register %s: %v", n.ID, err)
		}
	}

	h, err := scheduler.NewHeuristic(scheduler.DefaultWeights())
	if err != nil {
		t.Fatalf("heuristic: %v", err)
	}

	e := engine.New(reg, h, h, store.NewInMemoryTaskStore(), store.NewInMemoryDecisionStore(), false)

	a := &API{Engine: e, Registry: reg}
	a.initRouter()
	return a
}

func TestSubmitTask(t *testing.T) {
	a := testAPI(t)

	body := `{"name": "video-transcode", "type": "stream", "priority": 8, "max_latency_ms": 10}`
	req := httptest.NewRequest(http.MethodPost, "/tasks", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()

	a.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var handle decision.Handle
	if err := json.Unmarshal(rec.Body.Bytes(), &handle); err != nil {
		t.Fatalf("decode handle: %v", err)
	}
	if handle.Decision.NodeID != "Edge-01" {
		t.Errorf("tight latency must land on Edge-01, got %s", handle.Decision.NodeID)
	}
	if handle.Decision.Rationale == "" {
		t.Errorf("decision must carry a rationale")
	}
}

func TestSubmitTaskInvalid(t *testing.T) {
	a := testAPI(t)

	cases := []struct {
		name string
		body string
		want int
	}{
		{"unknown field", `{"name": "x", "type": "batch", "priority": 5, "bogus": 1}`, http.StatusBadRequest},
		{"priority out of range", `{"name": "x", "type": "batch", "priority": 0}`, http.StatusBadRequest},
		{"missing name", `{"type": "batch", "priority": 5}`, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/tasks", bytes.NewBufferString(tc.body))
			rec := httptest.NewRecorder()

			a.Router.ServeHTTP(rec, req)

			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestSubmitTaskNoEligibleNode(t *testing.T) {
	a := testAPI(t)

	body := `{"name": "train", "type": "batch", "priority": 5, "requires_gpu": true}`
	req := httptest.NewRequest(http.MethodPost, "/tasks", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()

	a.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}

	var er ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &er); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	// the reason for every node is in the message
	for _, id := range []string{"Edge-01", "Cloud-AWS-East"} {
		if !bytes.Contains([]byte(er.Message), []byte(id)) {
			t.Errorf("error must mention %s: %s", id, er.Message)
		}
	}
}

func TestCompleteDispatch(t *testing.T) {
	a := testAPI(t)

	submit := httptest.NewRequest(http.MethodPost, "/tasks",
		bytes.NewBufferString(`{"name": "etl", "type": "batch", "priority": 5}`))
	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, submit)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit: %d", rec.Code)
	}

	var handle decision.Handle
	if err := json.Unmarshal(rec.Body.Bytes(), &handle); err != nil {
		t.Fatalf("decode handle: %v", err)
	}

	complete := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/dispatches/%s/complete", handle.ID),
		bytes.NewBufferString(`{"success": true, "actual_latency_ms": 11.5}`))
	rec = httptest.NewRecorder()
	a.Router.ServeHTTP(rec, complete)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("complete: expected 204, got %d: %s", rec.Code, rec.Body.String())
	}

	// settling twice must fail
	again := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/dispatches/%s/complete", handle.ID),
		bytes.NewBufferString(`{"success": true}`))
	rec = httptest.NewRecorder()
	a.Router.ServeHTTP(rec, again)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("double settle: expected 404, got %d", rec.Code)
	}
}

func TestRegisterNode(t *testing.T) {
	a := testAPI(t)

	body := `{"id": "Edge-03", "category": "edge", "status": "active", "max_cpu": 4, "max_ram": 8}`
	req := httptest.NewRequest(http.MethodPost, "/nodes", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()

	a.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// duplicate registration conflicts
	req = httptest.NewRequest(http.MethodPost, "/nodes", bytes.NewBufferString(body))
	rec = httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate: expected 409, got %d", rec.Code)
	}
}

func TestUpdateTelemetry(t *testing.T) {
	a := testAPI(t)

	body := `{"cpu_load": 75, "ram_load": 60, "latency_ms": 12, "power_watts": 20, "status": "active"}`
	req := httptest.NewRequest(http.MethodPut, "/nodes/Edge-01/telemetry", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()

	a.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}

	n, ok := a.Registry.Snapshot().Find("Edge-01")
	if !ok || n.CPULoad != 75 {
		t.Fatalf("telemetry not applied: %+v", n)
	}

	// unknown node maps to 404
	req = httptest.NewRequest(http.MethodPut, "/nodes/Nope-99/telemetry", bytes.NewBufferString(body))
	rec = httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown node: expected 404, got %d", rec.Code)
	}
}

func TestClusterState(t *testing.T) {
	a := testAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/cluster/state", nil)
	rec := httptest.NewRecorder()

	a.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var state ClusterState
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if len(state.Nodes) != 2 {
		t.Errorf("expected 2 nodes, got %d", len(state.Nodes))
	}
}

func TestGetDecisions(t *testing.T) {
	a := testAPI(t)

	submit := httptest.NewRequest(http.MethodPost, "/tasks",
		bytes.NewBufferString(`{"name": "etl", "type": "batch", "priority": 5}`))
	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, submit)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit: %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/decisions", nil)
	rec = httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var records []decision.Record
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("decode records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 decision record, got %d", len(records))
	}
}
