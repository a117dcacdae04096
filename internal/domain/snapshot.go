package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AtomSnapshot is the serialized form of one atom. Link references are
// carried separately so re-import can rebuild them by key.
type AtomSnapshot struct {
	Type      AtomType       `json:"type"`
	Name      string         `json:"name"`
	Truth     TruthValue     `json:"truth_value"`
	Attention AttentionValue `json:"attention_value"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type LinkSnapshot struct {
	Type   LinkType   `json:"type"`
	Name   string     `json:"name"`
	Truth  TruthValue `json:"truth_value"`
	Source AtomKey    `json:"source"`
	Target AtomKey    `json:"target"`
}

// Snapshot is a complete, lossless capture of one orchestration session:
// every atom, link, task and workflow. Re-import reproduces state that is
// structurally and numerically identical to what was exported.
type Snapshot struct {
	Atoms     []AtomSnapshot `json:"atoms"`
	Links     []LinkSnapshot `json:"links"`
	Tasks     []Task         `json:"tasks,omitempty"`
	Workflows []Workflow     `json:"workflows,omitempty"`
}

// SnapshotRecord is a persisted snapshot row.
type SnapshotRecord struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	State     []byte    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// SnapshotStore persists exported engine state.
type SnapshotStore interface {
	Save(ctx context.Context, name string, state []byte) (*SnapshotRecord, error)
	Get(ctx context.Context, id uuid.UUID) (*SnapshotRecord, error)
	GetLatestByName(ctx context.Context, name string) (*SnapshotRecord, error)
	List(ctx context.Context, limit int) ([]SnapshotRecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
