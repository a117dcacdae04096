package store

import (
	"context"
	"errors"

	"github.com/cogpy/probreacog/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")

// SnapshotStore persists exported engine state as JSONB documents.
type SnapshotStore struct {
	db *pgxpool.Pool
}

func NewSnapshotStore(db *pgxpool.Pool) *SnapshotStore {
	return &SnapshotStore{db: db}
}

func (s *SnapshotStore) Save(ctx context.Context, name string, state []byte) (*domain.SnapshotRecord, error) {
	rec := &domain.SnapshotRecord{Name: name, State: state}
	err := s.db.QueryRow(ctx,
		`INSERT INTO engine_snapshots (id, name, state)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		uuid.New(), name, state,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *SnapshotStore) Get(ctx context.Context, id uuid.UUID) (*domain.SnapshotRecord, error) {
	rec := &domain.SnapshotRecord{}
	err := s.db.QueryRow(ctx,
		`SELECT id, name, state, created_at
		 FROM engine_snapshots
		 WHERE id = $1`,
		id,
	).Scan(&rec.ID, &rec.Name, &rec.State, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (s *SnapshotStore) GetLatestByName(ctx context.Context, name string) (*domain.SnapshotRecord, error) {
	rec := &domain.SnapshotRecord{}
	err := s.db.QueryRow(ctx,
		`SELECT id, name, state, created_at
		 FROM engine_snapshots
		 WHERE name = $1
		 ORDER BY created_at DESC
		 LIMIT 1`,
		name,
	).Scan(&rec.ID, &rec.Name, &rec.State, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// List returns snapshot rows newest first, without their state payloads.
func (s *SnapshotStore) List(ctx context.Context, limit int) ([]domain.SnapshotRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(ctx,
		`SELECT id, name, created_at
		 FROM engine_snapshots
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.SnapshotRecord
	for rows.Next() {
		var rec domain.SnapshotRecord
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *SnapshotStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM engine_snapshots WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
