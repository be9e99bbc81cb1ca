package store

import (
	"context"

	"github.com/carbonix/carbonix-indexer/internal/domain"
)

// Store defines the interface for snapshot persistence
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// SaveSnapshot persists a reconstructed snapshot and upserts its mint
	// ledger in one transaction
	SaveSnapshot(ctx context.Context, snapshot *domain.ProjectSnapshot) error
	// LatestSnapshot returns the most recent snapshot for an address;
	// domain.ErrSnapshotNotFound when none exists
	LatestSnapshot(ctx context.Context, address string) (*domain.ProjectSnapshot, error)
	// ListAddresses returns every address a snapshot has been stored for
	ListAddresses(ctx context.Context) ([]string, error)
	// MintLedger returns the stored mint ledger of an address, ascending
	// by (height, hash)
	MintLedger(ctx context.Context, address string) ([]domain.MintEntry, error)
}
