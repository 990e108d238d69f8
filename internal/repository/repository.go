// Package repository defines persistence for manually arranged node
// positions, keyed per network and snapshot.
package repository

import (
	"context"

	"topoview/internal/domain"
)

// Repository stores node positions so a manual arrangement survives
// topology reloads and server restarts.
type Repository interface {
	// Positions returns the saved positions for a snapshot, keyed by hostname.
	Positions(ctx context.Context, network, snapshot string) (map[string]domain.NodePosition, error)

	// SavePositions upserts the given positions for a snapshot.
	SavePositions(ctx context.Context, network, snapshot string, positions []domain.NodePosition) error

	// DeletePositions removes all saved positions for a snapshot.
	DeletePositions(ctx context.Context, network, snapshot string) error

	// Close releases resources
	Close() error
}
