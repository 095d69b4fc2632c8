// Package history records analysis runs in Postgres so repeated runs over
// the same script tree can be browsed and compared later.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Store provides run-history persistence backed by Postgres.
type Store struct {
	db *sql.DB
}

// Run represents one recorded analysis run.
type Run struct {
	ID            string
	RootSlug      string
	Root          string
	Entry         string
	SnapshotID    string
	StorageRef    string
	ScriptCount   int
	VisitedCount  int
	EdgeCount     int
	ExternalCount int
	ScanErrors    int
	CreatedAt     time.Time
}

// NewStore creates a new history Store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// RecordRun inserts a run row and returns it with the generated ID.
func (s *Store) RecordRun(ctx context.Context, run Run) (*Run, error) {
	r := &Run{}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO runs (root_slug, root, entry, snapshot_id, storage_ref,
		                   script_count, visited_count, edge_count, external_count, scan_errors)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, root_slug, root, entry, snapshot_id, storage_ref,
		           script_count, visited_count, edge_count, external_count, scan_errors, created_at`,
		run.RootSlug, run.Root, run.Entry, run.SnapshotID, run.StorageRef,
		run.ScriptCount, run.VisitedCount, run.EdgeCount, run.ExternalCount, run.ScanErrors,
	).Scan(
		&r.ID, &r.RootSlug, &r.Root, &r.Entry, &r.SnapshotID, &r.StorageRef,
		&r.ScriptCount, &r.VisitedCount, &r.EdgeCount, &r.ExternalCount, &r.ScanErrors, &r.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("record run: %w", err)
	}
	return r, nil
}

// ListRuns returns runs for a root slug, newest first.
func (s *Store) ListRuns(ctx context.Context, rootSlug string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, root_slug, root, entry, snapshot_id, storage_ref,
		        script_count, visited_count, edge_count, external_count, scan_errors, created_at
		 FROM runs WHERE root_slug = $1 ORDER BY created_at DESC LIMIT $2`,
		rootSlug, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(
			&r.ID, &r.RootSlug, &r.Root, &r.Entry, &r.SnapshotID, &r.StorageRef,
			&r.ScriptCount, &r.VisitedCount, &r.EdgeCount, &r.ExternalCount, &r.ScanErrors, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns a single run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	r := &Run{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, root_slug, root, entry, snapshot_id, storage_ref,
		        script_count, visited_count, edge_count, external_count, scan_errors, created_at
		 FROM runs WHERE id = $1`,
		id,
	).Scan(
		&r.ID, &r.RootSlug, &r.Root, &r.Entry, &r.SnapshotID, &r.StorageRef,
		&r.ScriptCount, &r.VisitedCount, &r.EdgeCount, &r.ExternalCount, &r.ScanErrors, &r.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return r, nil
}
