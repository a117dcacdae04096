package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cogpy/probreacog/internal/agent"
	"github.com/cogpy/probreacog/internal/attention"
	"github.com/cogpy/probreacog/internal/domain"
	"github.com/cogpy/probreacog/internal/orchestrator"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestOrchestrator(t *testing.T) *orchestrator.Orchestrator {
	t.Helper()
	canned := map[domain.Role]string{
		domain.RoleSimulator: `{"probability": 0.9, "trajectories": 100}`,
		domain.RoleVerifier:  `{"bounds": [0.85, 0.95]}`,
		domain.RoleAnalyzer:  `{"sensitivity": {"inflow": 0.6}}`,
		domain.RoleOptimizer: `{"suggested_values": {"inflow": 2.8}}`,
	}
	tools := make(map[domain.Role]agent.Config, len(canned))
	for role, output := range canned {
		out := output
		tools[role] = agent.Config{
			ToolPath: "probreach-" + string(role),
			Runner: func(ctx context.Context, name string, args ...string) ([]byte, error) {
				return []byte(out), nil
			},
		}
	}
	o, err := orchestrator.New(orchestrator.Config{
		Attention: attention.DefaultConfig(),
		Tools:     tools,
	}, zap.NewNop())
	require.NoError(t, err)
	return o
}

func testRouter(o *orchestrator.Orchestrator) *chi.Mux {
	r := chi.NewRouter()
	model := NewModelHandler(o)
	workflow := NewWorkflowHandler(o)
	reasoning := NewReasoningHandler(o)
	attn := NewAttentionHandler(o)
	state := NewStateHandler(o)
	status := NewStatusHandler(o)

	r.Post("/models", model.Load)
	r.Post("/workflows", workflow.Create)
	r.Post("/workflows/{id}/execute", workflow.Execute)
	r.Get("/goals/{name}/reasoning", reasoning.Goal)
	r.Post("/attention/bias", attn.Bias)
	r.Get("/attention/top", attn.Top)
	r.Post("/state/export", state.Export)
	r.Post("/state/import", state.Import)
	r.Get("/status", status.Get)
	return r
}

func tankDescriptor() domain.ModelDescriptor {
	return domain.ModelDescriptor{
		Name: "tank",
		File: "tank.pdrh",
		Modes: []domain.ModeDescriptor{
			{ID: 0, Name: "filling"},
		},
		Parameters: []domain.ParameterDescriptor{
			{Name: "inflow", Value: 2.5, Bounds: domain.Interval{Lower: 2.0, Upper: 3.0}, Uncertainty: 0.1},
		},
		Goals: []domain.GoalDescriptor{
			{Name: "goal_fill", Condition: "level >= 10", TargetProbability: 0.9},
		},
	}
}

func doJSON(t *testing.T, r *chi.Mux, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestModelHandler_Load(t *testing.T) {
	r := testRouter(newTestOrchestrator(t))

	rec := doJSON(t, r, http.MethodPost, "/models", tankDescriptor())
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "tank", resp["model"])
	assert.EqualValues(t, 4, resp["atoms"])
}

func TestModelHandler_Load_MissingName(t *testing.T) {
	r := testRouter(newTestOrchestrator(t))
	rec := doJSON(t, r, http.MethodPost, "/models", map[string]any{"file": "x.pdrh"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWorkflowHandler_CreateAndExecute(t *testing.T) {
	o := newTestOrchestrator(t)
	r := testRouter(o)

	rec := doJSON(t, r, http.MethodPost, "/models", tankDescriptor())
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/workflows", map[string]string{"model": "tank"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "analysis_tank", created["workflow_id"])

	rec = doJSON(t, r, http.MethodPost, "/workflows/"+created["workflow_id"]+"/execute", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var report domain.WorkflowReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 4, report.Completed)
	assert.False(t, report.Stalled)
}

func TestWorkflowHandler_Create_UnknownModel(t *testing.T) {
	r := testRouter(newTestOrchestrator(t))
	rec := doJSON(t, r, http.MethodPost, "/workflows", map[string]string{"model": "ghost"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWorkflowHandler_Execute_Unknown(t *testing.T) {
	r := testRouter(newTestOrchestrator(t))
	rec := doJSON(t, r, http.MethodPost, "/workflows/ghost/execute", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReasoningHandler_Goal(t *testing.T) {
	r := testRouter(newTestOrchestrator(t))
	require.Equal(t, http.StatusCreated, doJSON(t, r, http.MethodPost, "/models", tankDescriptor()).Code)

	rec := doJSON(t, r, http.MethodGet, "/goals/goal_fill/reasoning", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "goal_fill", resp["goal"])
	assert.InDelta(t, 0.9, resp["probability"].(float64), 0.2)

	rec = doJSON(t, r, http.MethodGet, "/goals/ghost/reasoning", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAttentionHandler(t *testing.T) {
	r := testRouter(newTestOrchestrator(t))
	require.Equal(t, http.StatusCreated, doJSON(t, r, http.MethodPost, "/models", tankDescriptor()).Code)

	rec := doJSON(t, r, http.MethodPost, "/attention/bias", map[string]any{"atoms": []string{"inflow"}, "intensity": 100})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/attention/top?limit=1&type=ParameterNode", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var top struct {
		Atoms []struct {
			Name string `json:"name"`
		} `json:"atoms"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &top))
	require.Len(t, top.Atoms, 1)
	assert.Equal(t, "inflow", top.Atoms[0].Name)

	rec = doJSON(t, r, http.MethodGet, "/attention/top?limit=junk", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/attention/bias", map[string]any{"atoms": []string{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStateHandlers_ExportImport(t *testing.T) {
	o := newTestOrchestrator(t)
	r := testRouter(o)
	require.Equal(t, http.StatusCreated, doJSON(t, r, http.MethodPost, "/models", tankDescriptor()).Code)

	rec := doJSON(t, r, http.MethodPost, "/state/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Len(t, snap.Atoms, 4)

	fresh := testRouter(newTestOrchestrator(t))
	rec = doJSON(t, fresh, http.MethodPost, "/state/import", snap)
	require.Equal(t, http.StatusOK, rec.Code)
	var status orchestrator.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, 4, status.Atoms)
	assert.Equal(t, []string{"tank"}, status.Models)
}

func TestStatusHandler(t *testing.T) {
	r := testRouter(newTestOrchestrator(t))
	rec := doJSON(t, r, http.MethodGet, "/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var status orchestrator.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, 0, status.Atoms)
}
