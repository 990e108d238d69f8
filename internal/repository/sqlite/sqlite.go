// Package sqlite implements repository.Repository on an embedded SQLite
// database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"topoview/internal/domain"
)

// Repository implements repository.Repository using SQLite.
type Repository struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS node_positions (
		network TEXT NOT NULL,
		snapshot TEXT NOT NULL,
		hostname TEXT NOT NULL,
		x REAL NOT NULL,
		y REAL NOT NULL,
		pinned INTEGER NOT NULL DEFAULT 0,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (network, snapshot, hostname)
	);

	CREATE INDEX IF NOT EXISTS idx_positions_snapshot ON node_positions(network, snapshot);
	`

	_, err := r.db.Exec(schema)
	return err
}

// Positions returns the saved positions for a snapshot, keyed by hostname.
func (r *Repository) Positions(ctx context.Context, network, snapshot string) (map[string]domain.NodePosition, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT hostname, x, y, pinned
		FROM node_positions
		WHERE network = ? AND snapshot = ?
	`, network, snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.NodePosition)
	for rows.Next() {
		var (
			p      domain.NodePosition
			pinned int
		)
		if err := rows.Scan(&p.Hostname, &p.X, &p.Y, &pinned); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		p.Pinned = pinned != 0
		out[p.Hostname] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating positions: %w", err)
	}

	return out, nil
}

// SavePositions upserts the given positions for a snapshot in one
// transaction.
func (r *Repository) SavePositions(ctx context.Context, network, snapshot string, positions []domain.NodePosition) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO node_positions (network, snapshot, hostname, x, y, pinned, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(network, snapshot, hostname) DO UPDATE SET
			x = excluded.x,
			y = excluded.y,
			pinned = excluded.pinned,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range positions {
		pinned := 0
		if p.Pinned {
			pinned = 1
		}
		if _, err := stmt.ExecContext(ctx, network, snapshot, p.Hostname, p.X, p.Y, pinned); err != nil {
			return fmt.Errorf("failed to upsert position for %s: %w", p.Hostname, err)
		}
	}

	return tx.Commit()
}

// DeletePositions removes all saved positions for a snapshot.
func (r *Repository) DeletePositions(ctx context.Context, network, snapshot string) error {
	if _, err := r.db.ExecContext(ctx, `
		DELETE FROM node_positions WHERE network = ? AND snapshot = ?
	`, network, snapshot); err != nil {
		return fmt.Errorf("failed to delete positions: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (r *Repository) Close() error {
	return r.db.Close()
}
