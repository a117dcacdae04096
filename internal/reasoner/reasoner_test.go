package reasoner

import (
	"errors"
	"fmt"
	"testing"

	"github.com/cogpy/probreacog/internal/domain"
	"go.uber.org/zap"
)

type mockGraph struct {
	atoms map[domain.AtomKey]*domain.Atom
}

func newMockGraph() *mockGraph {
	return &mockGraph{atoms: make(map[domain.AtomKey]*domain.Atom)}
}

func (g *mockGraph) add(atom *domain.Atom) *domain.Atom {
	g.atoms[atom.Key()] = atom
	return atom
}

func (g *mockGraph) GetAtom(atomType domain.AtomType, name string) (*domain.Atom, error) {
	atom, ok := g.atoms[domain.AtomKey{Type: atomType, Name: name}]
	if !ok {
		return nil, fmt.Errorf("%w: atom not found", domain.ErrValidation)
	}
	return atom, nil
}

func (g *mockGraph) AtomsByType(atomType domain.AtomType) []*domain.Atom {
	var out []*domain.Atom
	for _, atom := range g.atoms {
		if atom.Type == atomType {
			out = append(out, atom)
		}
	}
	return out
}

func link(src, tgt *domain.Atom, truth domain.TruthValue) *domain.Link {
	l := &domain.Link{Type: domain.LinkInheritance, Truth: truth, Source: src, Target: tgt}
	src.Outgoing = append(src.Outgoing, l)
	tgt.Incoming = append(tgt.Incoming, l)
	return l
}

func param(name string, value, lower, upper, uncertainty float64) *domain.Atom {
	return &domain.Atom{
		Type:  domain.AtomParameter,
		Name:  name,
		Truth: domain.TruthValue{Strength: 0.8, Confidence: 0.9},
		Metadata: map[string]any{
			"value":       value,
			"lower_bound": lower,
			"upper_bound": upper,
			"uncertainty": uncertainty,
		},
	}
}

func TestPropagateUncertainty_ZeroUncertaintyIsCertain(t *testing.T) {
	g := newMockGraph()
	g.add(param("k", 0.5, 0.5, 0.5, 0))
	r := New(g, zap.NewNop())

	tv, err := r.PropagateUncertainty("k", "identity")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if tv.Confidence != 1 {
		t.Fatalf("expected confidence exactly 1, got %v", tv.Confidence)
	}
	if tv.Strength != 0.8 {
		t.Fatalf("expected strength carried from atom, got %v", tv.Strength)
	}
}

func TestPropagateUncertainty_DecreasesWithUncertainty(t *testing.T) {
	g := newMockGraph()
	g.add(param("low", 1.0, 0.9, 1.1, 0.05))
	g.add(param("high", 1.0, 0.9, 1.1, 0.5))
	r := New(g, zap.NewNop())

	lowTV, err := r.PropagateUncertainty("low", "identity")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	highTV, err := r.PropagateUncertainty("high", "identity")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if lowTV.Confidence <= highTV.Confidence {
		t.Fatalf("expected confidence to fall with uncertainty: low=%v high=%v", lowTV.Confidence, highTV.Confidence)
	}
	if highTV.Confidence <= 0 || highTV.Confidence >= 1 {
		t.Fatalf("expected confidence strictly inside (0,1), got %v", highTV.Confidence)
	}
}

func TestPropagateUncertainty_OperationWeight(t *testing.T) {
	g := newMockGraph()
	g.add(param("k", 1.0, 0.8, 1.2, 0.2))
	r := New(g, zap.NewNop())

	identity, _ := r.PropagateUncertainty("k", "identity")
	multiply, _ := r.PropagateUncertainty("k", "multiply")
	unknown, _ := r.PropagateUncertainty("k", "integrate")

	if multiply.Confidence >= identity.Confidence {
		t.Fatalf("expected multiply to cost confidence: %v vs %v", multiply.Confidence, identity.Confidence)
	}
	if unknown.Confidence >= multiply.Confidence {
		t.Fatalf("expected unknown operation to cost more than multiply: %v vs %v", unknown.Confidence, multiply.Confidence)
	}
}

func TestPropagateUncertainty_UnknownParameter(t *testing.T) {
	r := New(newMockGraph(), zap.NewNop())
	if _, err := r.PropagateUncertainty("missing", "identity"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestReasonAboutReachability_NoEvidenceReturnsPrior(t *testing.T) {
	g := newMockGraph()
	g.add(&domain.Atom{
		Type:  domain.AtomGoal,
		Name:  "safe",
		Truth: domain.TruthValue{Strength: 0.85, Confidence: 0.4},
	})
	r := New(g, zap.NewNop())

	tv, err := r.ReasonAboutReachability("safe", nil, EvidenceIndependent)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if tv.Strength != 0.85 || tv.Confidence != 0.4 {
		t.Fatalf("expected goal prior back, got %v", tv)
	}
}

func TestReasonAboutReachability_UnknownGoalUsesNeutralPrior(t *testing.T) {
	r := New(newMockGraph(), zap.NewNop())

	tv, err := r.ReasonAboutReachability("missing", nil, EvidenceIndependent)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if tv.Strength != NeutralPrior {
		t.Fatalf("expected neutral prior, got %v", tv)
	}
}

func TestReasonAboutReachability_IndependentEvidenceRaisesConfidence(t *testing.T) {
	g := newMockGraph()
	g.add(&domain.Atom{
		Type:  domain.AtomGoal,
		Name:  "safe",
		Truth: domain.TruthValue{Strength: 0.5, Confidence: 0.1},
	})
	r := New(g, zap.NewNop())

	evidence := []Evidence{
		{Source: "sim", Truth: domain.TruthValue{Strength: 0.9, Confidence: 0.5}},
		{Source: "verify", Truth: domain.TruthValue{Strength: 0.85, Confidence: 0.6}},
	}
	tv, err := r.ReasonAboutReachability("safe", evidence, EvidenceIndependent)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if tv.Confidence <= 0.1 {
		t.Fatalf("expected confidence to grow, got %v", tv.Confidence)
	}
	if tv.Strength <= 0.5 {
		t.Fatalf("expected strength pulled toward evidence, got %v", tv.Strength)
	}
}

func TestReasonAboutReachability_JointEvidence(t *testing.T) {
	r := New(newMockGraph(), zap.NewNop())

	evidence := []Evidence{
		{Source: "a", Truth: domain.TruthValue{Strength: 0.9, Confidence: 0.8}},
		{Source: "b", Truth: domain.TruthValue{Strength: 0.8, Confidence: 0.9}},
	}
	joint, err := r.ReasonAboutReachability("g", evidence, EvidenceJoint)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	indep, err := r.ReasonAboutReachability("g", evidence, EvidenceIndependent)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	// Joint conjunction multiplies strengths, so the posterior sits lower.
	if joint.Strength >= indep.Strength {
		t.Fatalf("expected joint posterior below independent: %v vs %v", joint.Strength, indep.Strength)
	}
}

func TestBackwardChain(t *testing.T) {
	goal := &domain.Atom{Type: domain.AtomGoal, Name: "goal"}
	mid := &domain.Atom{Type: domain.AtomParameter, Name: "mid"}
	root := &domain.Atom{Type: domain.AtomModel, Name: "root"}
	link(mid, goal, domain.DefaultTruthValue())
	link(root, mid, domain.DefaultTruthValue())

	r := New(newMockGraph(), zap.NewNop())

	supporters := r.BackwardChain(goal, 5)
	if len(supporters) != 2 {
		t.Fatalf("expected 2 supporters, got %d", len(supporters))
	}
	if supporters[0].Name != "mid" || supporters[1].Name != "root" {
		t.Fatalf("expected breadth-first order mid,root, got %s,%s", supporters[0].Name, supporters[1].Name)
	}

	shallow := r.BackwardChain(goal, 1)
	if len(shallow) != 1 || shallow[0].Name != "mid" {
		t.Fatalf("expected depth limit to keep only direct supporters, got %v", shallow)
	}
}

func TestBackwardChain_CycleTerminates(t *testing.T) {
	a := &domain.Atom{Type: domain.AtomMode, Name: "a"}
	b := &domain.Atom{Type: domain.AtomMode, Name: "b"}
	link(a, b, domain.DefaultTruthValue())
	link(b, a, domain.DefaultTruthValue())

	r := New(newMockGraph(), zap.NewNop())

	supporters := r.BackwardChain(a, 10)
	if len(supporters) != 1 || supporters[0].Name != "b" {
		t.Fatalf("expected cycle visited once, got %v", supporters)
	}
}

func TestForwardChain_Fixpoint(t *testing.T) {
	a := &domain.Atom{Type: domain.AtomMode, Name: "a"}
	b := &domain.Atom{Type: domain.AtomMode, Name: "b"}
	c := &domain.Atom{Type: domain.AtomMode, Name: "c"}
	link(a, b, domain.DefaultTruthValue())
	link(b, c, domain.DefaultTruthValue())

	r := New(newMockGraph(), zap.NewNop())

	derived := r.ForwardChain([]*domain.Atom{a}, 100)
	if len(derived) != 2 {
		t.Fatalf("expected fixpoint after deriving b,c, got %v", derived)
	}

	bounded := r.ForwardChain([]*domain.Atom{a}, 1)
	if len(bounded) != 1 || bounded[0].Name != "b" {
		t.Fatalf("expected step bound to stop at b, got %v", bounded)
	}
}

func TestExplain(t *testing.T) {
	goal := &domain.Atom{Type: domain.AtomGoal, Name: "goal", Truth: domain.TruthValue{Strength: 0.7, Confidence: 0.6}}
	p1 := &domain.Atom{Type: domain.AtomParameter, Name: "p1"}
	p2 := &domain.Atom{Type: domain.AtomParameter, Name: "p2"}
	link(p1, goal, domain.DefaultTruthValue())
	link(p2, goal, domain.DefaultTruthValue())

	r := New(newMockGraph(), zap.NewNop())

	exp := r.Explain(goal)
	if exp.Conclusion.Name != "goal" {
		t.Fatalf("expected conclusion goal, got %v", exp.Conclusion)
	}
	if len(exp.Premises) != 2 {
		t.Fatalf("expected 2 premises, got %d", len(exp.Premises))
	}
}

func TestInferParameterBounds(t *testing.T) {
	bounds := InferParameterBounds([]float64{1, 1, 1, 1})
	if bounds.Lower != 1 || bounds.Upper != 1 {
		t.Fatalf("expected degenerate interval at 1, got %v", bounds)
	}

	spread := InferParameterBounds([]float64{0, 2})
	if spread.Lower >= spread.Upper {
		t.Fatalf("expected widening interval, got %v", spread)
	}
	if spread.Lower > 0 || spread.Upper < 2 {
		t.Fatalf("expected 2-sigma interval to cover observations, got %v", spread)
	}

	empty := InferParameterBounds(nil)
	if empty.Lower != 0 || empty.Upper != 1 {
		t.Fatalf("expected unit interval fallback, got %v", empty)
	}
}
