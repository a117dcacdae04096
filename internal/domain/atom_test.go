package domain

import (
	"errors"
	"testing"
)

func TestNewTruthValue(t *testing.T) {
	tests := []struct {
		name       string
		strength   float64
		confidence float64
		wantErr    bool
	}{
		{"both zero", 0, 0, false},
		{"both one", 1, 1, false},
		{"interior", 0.5, 0.3, false},
		{"strength too high", 1.01, 0.5, true},
		{"strength negative", -0.01, 0.5, true},
		{"confidence too high", 0.5, 1.01, true},
		{"confidence negative", 0.5, -0.01, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTruthValue(tt.strength, tt.confidence)
			if tt.wantErr && !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}

func TestAtomNeighbors(t *testing.T) {
	a := &Atom{Type: AtomMode, Name: "a"}
	b := &Atom{Type: AtomMode, Name: "b"}
	c := &Atom{Type: AtomModel, Name: "c"}

	out := &Link{Type: LinkInheritance, Source: a, Target: c, Truth: DefaultTruthValue()}
	a.Outgoing = append(a.Outgoing, out)
	c.Incoming = append(c.Incoming, out)

	in := &Link{Type: LinkEvaluation, Source: b, Target: a, Truth: DefaultTruthValue()}
	b.Outgoing = append(b.Outgoing, in)
	a.Incoming = append(a.Incoming, in)

	neighbors := a.Neighbors()
	if len(neighbors) != 2 {
		t.Fatalf("expected 2 neighbors, got %d", len(neighbors))
	}
	if neighbors[0] != c || neighbors[1] != b {
		t.Fatalf("expected outgoing targets before incoming sources, got %s,%s",
			neighbors[0].Name, neighbors[1].Name)
	}
}

func TestAtomKeyString(t *testing.T) {
	k := AtomKey{Type: AtomGoal, Name: "goal_fill"}
	if k.String() != "GoalNode:goal_fill" {
		t.Fatalf("unexpected key %q", k.String())
	}
}
