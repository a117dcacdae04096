package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cogpy/probreacog/internal/agent"
	"github.com/cogpy/probreacog/internal/atomspace"
	"github.com/cogpy/probreacog/internal/attention"
	"github.com/cogpy/probreacog/internal/domain"
	"github.com/cogpy/probreacog/internal/reasoner"
	"github.com/cogpy/probreacog/internal/scheduler"
	"go.uber.org/zap"
)

// Config assembles one orchestration session.
type Config struct {
	Attention attention.Config
	// Tools maps each agent role to its external executable. Roles without
	// an entry get no default agent.
	Tools map[domain.Role]agent.Config
}

// Orchestrator is the composition root binding the knowledge graph,
// reasoner, attention allocator and task coordinator, and exposing the
// engine's high-level operations. It is a thin facade: all behavior lives
// in the four components.
type Orchestrator struct {
	space       *atomspace.Space
	reasoner    *reasoner.Reasoner
	attention   *attention.Allocator
	coordinator *scheduler.Coordinator
	snapshots   domain.SnapshotStore
	logger      *zap.Logger
}

func New(cfg Config, logger *zap.Logger) (*Orchestrator, error) {
	space := atomspace.New(logger)
	space.SetBaseline(domain.AttentionValue{STI: cfg.Attention.BaselineSTI, LTI: cfg.Attention.BaselineLTI})

	alloc := attention.New(space, cfg.Attention, logger)
	o := &Orchestrator{
		space:       space,
		reasoner:    reasoner.New(space, logger),
		attention:   alloc,
		coordinator: scheduler.New(alloc, logger),
		logger:      logger,
	}

	for role, toolCfg := range cfg.Tools {
		a, err := agent.New(role, fmt.Sprintf("%s_1", role), space, toolCfg, logger)
		if err != nil {
			return nil, err
		}
		o.coordinator.RegisterAgent(a)
	}

	logger.Info("orchestrator initialized", zap.Int("agent_roles", len(cfg.Tools)))
	return o, nil
}

// SetSnapshotStore wires persistent snapshot storage into the facade.
func (o *Orchestrator) SetSnapshotStore(st domain.SnapshotStore) {
	o.snapshots = st
}

// Space exposes the shared knowledge graph.
func (o *Orchestrator) Space() *atomspace.Space { return o.space }

// Coordinator exposes the task coordinator for custom workflows.
func (o *Orchestrator) Coordinator() *scheduler.Coordinator { return o.coordinator }

// LoadModel populates the knowledge graph from a pre-parsed model
// descriptor and initializes attention over the result.
func (o *Orchestrator) LoadModel(desc domain.ModelDescriptor) (*domain.Atom, error) {
	model, err := o.space.AddModel(desc.Name, desc.File)
	if err != nil {
		return nil, err
	}
	modeNames := make(map[int]string, len(desc.Modes))
	for _, m := range desc.Modes {
		atom, err := o.space.AddMode(desc.Name, m.ID, m.Name)
		if err != nil {
			return nil, err
		}
		modeNames[m.ID] = atom.Name
	}
	for _, p := range desc.Parameters {
		if _, err := o.space.AddParameter(desc.Name, p); err != nil {
			return nil, err
		}
	}
	for _, f := range desc.Flows {
		if _, err := o.space.AddFlow(f.Mode, f.Variable, f.Equation); err != nil {
			return nil, err
		}
	}
	for _, j := range desc.Jumps {
		if _, err := o.space.AddJump(j.FromMode, j.ToMode, j.Guard); err != nil {
			return nil, err
		}
	}
	for _, g := range desc.Goals {
		if _, err := o.space.AddGoal(desc.Name, g); err != nil {
			return nil, err
		}
	}

	o.attention.InitializeAttention()
	o.logger.Info("model loaded",
		zap.String("model", desc.Name),
		zap.Int("atoms", o.space.Len()))
	return model, nil
}

// CreateAnalysisWorkflow builds the standard simulate -> verify ->
// analyze -> optimize pipeline over the named model and registers it.
// Returns the workflow id.
func (o *Orchestrator) CreateAnalysisWorkflow(modelName, workflowName string) (string, error) {
	model, err := o.space.GetAtom(domain.AtomModel, modelName)
	if err != nil {
		return "", fmt.Errorf("%w: model %q not found", domain.ErrValidation, modelName)
	}
	goals := o.space.Query(atomspace.Pattern{
		Type:     domain.AtomGoal,
		Metadata: map[string]any{"model": modelName},
	})
	if len(goals) == 0 {
		return "", fmt.Errorf("%w: model %q has no goals", domain.ErrValidation, modelName)
	}
	goal := goals[0].Name
	modelFile, _ := model.Metadata["model_file"].(string)

	wfID := fmt.Sprintf("%s_%s", workflowName, modelName)
	simID := wfID + "_simulate"
	verifyID := wfID + "_verify"
	analyzeID := wfID + "_analyze"
	optimizeID := wfID + "_optimize"

	steps := []struct {
		id       string
		taskType string
		role     domain.Role
		params   map[string]any
		priority float64
		deps     []string
	}{
		{simID, "simulate", domain.RoleSimulator,
			map[string]any{"model_file": modelFile, "goal": goal, "paths": 100, "depth": 365}, 0.8, nil},
		{verifyID, "verify", domain.RoleVerifier,
			map[string]any{"model_file": modelFile, "goal": goal, "precision": 0.01}, 0.9, []string{simID}},
		{analyzeID, "analyze", domain.RoleAnalyzer,
			map[string]any{"model_file": modelFile, "analysis_type": "sensitivity"}, 0.7, []string{verifyID}},
		{optimizeID, "optimize", domain.RoleOptimizer,
			map[string]any{"model_file": modelFile, "objective": "maximize_probability"}, 0.6, []string{analyzeID}},
	}

	ids := make([]string, 0, len(steps))
	for _, s := range steps {
		if _, err := o.coordinator.CreateTask(s.id, s.taskType, s.role, s.params, s.priority, s.deps); err != nil {
			return "", err
		}
		ids = append(ids, s.id)
	}
	if _, err := o.coordinator.CreateWorkflow(wfID, ids); err != nil {
		return "", err
	}
	return wfID, nil
}

// ExecuteWorkflow focuses attention on the graph's goals and runs the
// workflow to completion, returning the full per-task report.
func (o *Orchestrator) ExecuteWorkflow(ctx context.Context, id string) (*domain.WorkflowReport, error) {
	for _, goal := range o.space.AtomsByType(domain.AtomGoal) {
		o.attention.FocusOnGoal(goal, 50)
	}
	return o.coordinator.ExecuteWorkflow(ctx, id)
}

// GoalReasoning is the facade's report on one goal's reachability.
type GoalReasoning struct {
	Goal        string                `json:"goal"`
	Probability float64               `json:"probability"`
	Confidence  float64               `json:"confidence"`
	Evidence    []reasoner.Evidence   `json:"evidence,omitempty"`
	Explanation *reasoner.Explanation `json:"explanation,omitempty"`
}

// ReasonAboutGoal propagates every parameter's uncertainty and folds the
// results into a posterior reachability estimate for the named goal.
func (o *Orchestrator) ReasonAboutGoal(name string) (*GoalReasoning, error) {
	goal, err := o.space.GetAtom(domain.AtomGoal, name)
	if err != nil {
		return nil, fmt.Errorf("%w: goal %q not found", domain.ErrValidation, name)
	}

	var evidence []reasoner.Evidence
	for _, param := range o.space.AtomsByType(domain.AtomParameter) {
		tv, err := o.reasoner.PropagateUncertainty(param.Name, "identity")
		if err != nil {
			continue
		}
		evidence = append(evidence, reasoner.Evidence{Source: param.Name, Truth: tv})
	}

	posterior, err := o.reasoner.ReasonAboutReachability(name, evidence, reasoner.EvidenceIndependent)
	if err != nil {
		return nil, err
	}
	return &GoalReasoning{
		Goal:        name,
		Probability: posterior.Strength,
		Confidence:  posterior.Confidence,
		Evidence:    evidence,
		Explanation: o.reasoner.Explain(goal),
	}, nil
}

// BiasAttention stimulates the named atoms and runs a full attention
// cycle so subsequent dispatch rounds see the new focus.
func (o *Orchestrator) BiasAttention(names []string, intensity float64) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	for _, atom := range o.space.Atoms() {
		if want[atom.Name] {
			o.attention.StimulateAtom(atom, intensity)
		}
	}
	o.attention.RunAttentionCycle(10)
}

// AtomSummary is the read model for attention listings.
type AtomSummary struct {
	Type      domain.AtomType       `json:"type"`
	Name      string                `json:"name"`
	Truth     domain.TruthValue     `json:"truth_value"`
	Attention domain.AttentionValue `json:"attention_value"`
}

// TopAtoms lists the n most important atoms, optionally filtered by type.
func (o *Orchestrator) TopAtoms(n int, atomType domain.AtomType) []AtomSummary {
	atoms := o.attention.GetTopAtoms(n, atomType)
	out := make([]AtomSummary, 0, len(atoms))
	for _, atom := range atoms {
		out = append(out, AtomSummary{
			Type:      atom.Type,
			Name:      atom.Name,
			Truth:     atom.Truth,
			Attention: atom.Attention,
		})
	}
	return out
}

// ExportState captures the whole session: atoms, links, tasks, workflows.
func (o *Orchestrator) ExportState() *domain.Snapshot {
	snap := o.space.Export()
	snap.Tasks, snap.Workflows = o.coordinator.ExportState()
	return snap
}

// ImportState replaces the whole session with the snapshot contents. The
// task half is validated before the atom half is applied, so a rejected
// snapshot leaves the session untouched rather than half-replaced.
func (o *Orchestrator) ImportState(snap *domain.Snapshot) error {
	if err := o.coordinator.ValidateState(snap.Tasks, snap.Workflows); err != nil {
		return err
	}
	if err := o.space.Import(snap); err != nil {
		return err
	}
	return o.coordinator.ImportState(snap.Tasks, snap.Workflows)
}

// SaveSnapshot persists the current state under a name. Requires a
// configured snapshot store.
func (o *Orchestrator) SaveSnapshot(ctx context.Context, name string) (*domain.SnapshotRecord, error) {
	if o.snapshots == nil {
		return nil, fmt.Errorf("%w: no snapshot store configured", domain.ErrValidation)
	}
	payload, err := json.Marshal(o.ExportState())
	if err != nil {
		return nil, err
	}
	return o.snapshots.Save(ctx, name, payload)
}

// LoadSnapshot restores the latest persisted snapshot with the given
// name.
func (o *Orchestrator) LoadSnapshot(ctx context.Context, name string) error {
	if o.snapshots == nil {
		return fmt.Errorf("%w: no snapshot store configured", domain.ErrValidation)
	}
	rec, err := o.snapshots.GetLatestByName(ctx, name)
	if err != nil {
		return err
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(rec.State, &snap); err != nil {
		return err
	}
	return o.ImportState(&snap)
}

// ListSnapshots lists persisted snapshots, newest first.
func (o *Orchestrator) ListSnapshots(ctx context.Context, limit int) ([]domain.SnapshotRecord, error) {
	if o.snapshots == nil {
		return nil, fmt.Errorf("%w: no snapshot store configured", domain.ErrValidation)
	}
	return o.snapshots.List(ctx, limit)
}

// Status summarizes the session.
type Status struct {
	Atoms     int             `json:"atoms"`
	Models    []string        `json:"models"`
	Attention attention.Stats `json:"attention"`
	Focus     []string        `json:"focus,omitempty"`
}

func (o *Orchestrator) Status() Status {
	st := Status{
		Atoms:     o.space.Len(),
		Models:    o.space.ModelNames(),
		Attention: o.attention.Stats(),
	}
	for _, atom := range o.attention.Focus() {
		st.Focus = append(st.Focus, atom.Name)
	}
	return st
}
