package project

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carbonix/carbonix-indexer/internal/adapter"
	"github.com/carbonix/carbonix-indexer/internal/domain"
	"github.com/carbonix/carbonix-indexer/internal/logger"
	"github.com/carbonix/carbonix-indexer/internal/messaging"
	"github.com/carbonix/carbonix-indexer/internal/store"
)

// Ledger provides the transaction history a refresh cycle is derived from
//
//go:generate mockgen -source=refresher.go -destination=../mocks/refresher.go -package=mocks -mock_names=Ledger=MockLedger,Rotator=MockRotator
type Ledger interface {
	// Transactions returns the normalized transaction set for an address,
	// ascending by (height, hash), plus the number of excluded malformed
	// transactions
	Transactions(ctx context.Context, address string, force bool) ([]domain.Txn, int, error)
	// TransactionCount returns the number of distinct transactions known
	// for an address; force bypasses the cache
	TransactionCount(ctx context.Context, address string, force bool) (int, error)
}

// Rotator retires accumulated cached responses once they disagree with the chain
type Rotator interface {
	Rotate(now time.Time) error
}

// RefresherConfig holds the configuration for the snapshot refresher
type RefresherConfig struct {
	WorkerPoolSize int
	QueueSize      int
}

// Refresher drives refresh cycles: it detects stale cached history, rotates
// the cache when the chain has moved past it, rebuilds snapshots and persists
// and announces them.
type Refresher struct {
	ledger    Ledger
	rotator   Rotator
	store     store.Store
	publisher messaging.Publisher
	clock     adapter.Clock
	config    RefresherConfig
}

// NewRefresher creates a new snapshot refresher
func NewRefresher(
	ledger Ledger,
	rotator Rotator,
	st store.Store,
	pub messaging.Publisher,
	clock adapter.Clock,
	cfg RefresherConfig,
) *Refresher {
	if cfg.WorkerPoolSize == 0 {
		cfg.WorkerPoolSize = 4
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 64
	}
	return &Refresher{
		ledger:    ledger,
		rotator:   rotator,
		store:     st,
		publisher: pub,
		clock:     clock,
		config:    cfg,
	}
}

// IsStale reports whether the cached transaction history of an address has
// fallen behind the chain. Any difference between the cached count and a
// forced one invalidates every derived figure, in either direction: a lower
// forced count means the endpoint itself reorganized.
func (r *Refresher) IsStale(ctx context.Context, address string) (bool, error) {
	cached, err := r.ledger.TransactionCount(ctx, address, false)
	if err != nil {
		return false, fmt.Errorf("failed to count cached transactions: %w", err)
	}
	forced, err := r.ledger.TransactionCount(ctx, address, true)
	if err != nil {
		return false, fmt.Errorf("failed to count live transactions: %w", err)
	}
	return cached != forced, nil
}

// Refresh returns a current snapshot for an address. A fresh cache with a
// stored snapshot short-circuits to the stored row; otherwise the cache is
// rotated if stale and the snapshot rebuilt from the full history. A rotation
// failure aborts the cycle: continuing would rebuild from data already known
// to disagree with the chain.
func (r *Refresher) Refresh(ctx context.Context, address string, force bool) (*domain.ProjectSnapshot, error) {
	stale, err := r.IsStale(ctx, address)
	if err != nil {
		return nil, err
	}

	if !stale && !force {
		snapshot, err := r.store.LatestSnapshot(ctx, address)
		if err == nil {
			return snapshot, nil
		}
		if !errors.Is(err, domain.ErrSnapshotNotFound) {
			return nil, err
		}
		// nothing stored yet, rebuild below
	}

	if stale {
		logger.WarnCtx(ctx, "Cached history is stale, rotating cache",
			zap.String("address", address))
		if err := r.rotator.Rotate(r.clock.Now()); err != nil {
			return nil, err
		}
	}

	txs, excluded, err := r.ledger.Transactions(ctx, address, false)
	if err != nil {
		return nil, err
	}

	snapshot, err := Reconstruct(address, txs)
	if err != nil {
		return nil, err
	}
	snapshot.ExcludedCount = excluded
	snapshot.RefreshID = uuid.NewString()
	snapshot.RefreshedAt = r.clock.Now()

	if err := r.store.SaveSnapshot(ctx, snapshot); err != nil {
		return nil, err
	}

	event := &domain.SnapshotEvent{
		Address:       snapshot.Address,
		RefreshID:     snapshot.RefreshID,
		TxCount:       snapshot.TxCount,
		ExcludedCount: snapshot.ExcludedCount,
		TotalMinted:   snapshot.TotalMinted,
		Stale:         stale,
		RefreshedAt:   snapshot.RefreshedAt,
	}
	if err := r.publisher.PublishSnapshot(ctx, event); err != nil {
		// the snapshot is already persisted; consumers catch up on the
		// next cycle
		logger.WarnCtx(ctx, "Failed to publish snapshot event",
			zap.String("address", address), zap.Error(err))
	}

	logger.InfoCtx(ctx, "Snapshot refreshed",
		zap.String("address", address),
		zap.String("refresh_id", snapshot.RefreshID),
		zap.Int("tx_count", snapshot.TxCount),
		zap.Int("excluded", snapshot.ExcludedCount),
		zap.Bool("was_stale", stale))

	return snapshot, nil
}

// RefreshAll refreshes every address through a worker pool and returns the
// joined errors of the failed ones.
func (r *Refresher) RefreshAll(ctx context.Context, addresses []string, force bool) error {
	pool := pond.NewPool(
		r.config.WorkerPoolSize,
		pond.WithQueueSize(r.config.QueueSize),
		pond.WithContext(ctx),
	)

	var mu sync.Mutex
	var errs []error

	for _, address := range addresses {
		pool.Submit(func() {
			if _, err := r.Refresh(ctx, address, force); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("refresh %s: %w", address, err))
				mu.Unlock()
			}
		})
	}

	pool.StopAndWait()

	return errors.Join(errs...)
}
