package domain

import "fmt"

type AtomType string

const (
	AtomModel     AtomType = "ModelNode"
	AtomMode      AtomType = "ModeNode"
	AtomParameter AtomType = "ParameterNode"
	AtomFlow      AtomType = "FlowNode"
	AtomJump      AtomType = "JumpNode"
	AtomGoal      AtomType = "GoalNode"
)

func ValidAtomType(t string) bool {
	switch AtomType(t) {
	case AtomModel, AtomMode, AtomParameter, AtomFlow, AtomJump, AtomGoal:
		return true
	}
	return false
}

type LinkType string

const (
	LinkInheritance LinkType = "InheritanceLink"
	LinkEvaluation  LinkType = "EvaluationLink"
)

// TruthValue is an immutable (strength, confidence) pair. Both components
// must stay in [0,1]; construct through NewTruthValue or validate inputs
// before use.
type TruthValue struct {
	Strength   float64 `json:"strength"`
	Confidence float64 `json:"confidence"`
}

func NewTruthValue(strength, confidence float64) (TruthValue, error) {
	tv := TruthValue{Strength: strength, Confidence: confidence}
	if err := tv.Validate(); err != nil {
		return TruthValue{}, err
	}
	return tv, nil
}

func (tv TruthValue) Validate() error {
	if tv.Strength < 0 || tv.Strength > 1 {
		return fmt.Errorf("%w: strength %v outside [0,1]", ErrValidation, tv.Strength)
	}
	if tv.Confidence < 0 || tv.Confidence > 1 {
		return fmt.Errorf("%w: confidence %v outside [0,1]", ErrValidation, tv.Confidence)
	}
	return nil
}

// DefaultTruthValue is the truth value for atoms asserted as structural
// facts (the model exists, the mode exists).
func DefaultTruthValue() TruthValue {
	return TruthValue{Strength: 1.0, Confidence: 1.0}
}

// AttentionValue carries the short- and long-term importance of an atom.
// STI is bounded and may go negative; LTI only decreases under explicit
// decay.
type AttentionValue struct {
	STI float64 `json:"sti"`
	LTI float64 `json:"lti"`
}

// AtomKey uniquely identifies an atom.
type AtomKey struct {
	Type AtomType `json:"type"`
	Name string   `json:"name"`
}

func (k AtomKey) String() string {
	return string(k.Type) + ":" + k.Name
}

// Atom is a typed, named node in the knowledge graph. Atoms are owned by
// the atomspace; Outgoing and Incoming reference links owned by the
// atomspace as well. Atoms are never removed once added.
type Atom struct {
	Type      AtomType       `json:"type"`
	Name      string         `json:"name"`
	Truth     TruthValue     `json:"truth_value"`
	Attention AttentionValue `json:"attention_value"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Outgoing  []*Link        `json:"-"`
	Incoming  []*Link        `json:"-"`
}

func (a *Atom) Key() AtomKey {
	return AtomKey{Type: a.Type, Name: a.Name}
}

// Neighbors returns the atoms directly connected to a through any link,
// outgoing targets first, then incoming sources, in link insertion order.
func (a *Atom) Neighbors() []*Atom {
	var out []*Atom
	for _, l := range a.Outgoing {
		out = append(out, l.Target)
	}
	for _, l := range a.Incoming {
		out = append(out, l.Source)
	}
	return out
}

// Link is a typed relation between two atoms. Links are owned by the
// atomspace and referenced, not owned, by the atoms they connect.
type Link struct {
	Type   LinkType   `json:"type"`
	Name   string     `json:"name"`
	Truth  TruthValue `json:"truth_value"`
	Source *Atom      `json:"-"`
	Target *Atom      `json:"-"`
}
