package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/carbonix/carbonix-indexer/internal/domain"
	"github.com/carbonix/carbonix-indexer/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// Migrate creates or updates the snapshot tables
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&schema.ProjectSnapshot{}, &schema.MintEvent{})
}

// ConfigureConnectionPool configures the connection pool settings for a GORM
// database connection. Zero values fall back to conservative defaults.
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// SaveSnapshot persists a snapshot row and upserts its mint ledger in one
// transaction
func (s *pgStore) SaveSnapshot(ctx context.Context, snapshot *domain.ProjectSnapshot) error {
	row, err := snapshotToRow(snapshot)
	if err != nil {
		return err
	}

	events := make([]schema.MintEvent, 0, len(snapshot.Mints))
	for _, m := range snapshot.Mints {
		events = append(events, schema.MintEvent{
			Hash:      m.Hash,
			Address:   snapshot.Address,
			Height:    m.Height,
			Timestamp: m.Timestamp,
			Buyer:     m.Address,
			Amount:    m.Amount,
		})
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}
		if len(events) == 0 {
			return nil
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&events).Error; err != nil {
			return fmt.Errorf("failed to save mint events: %w", err)
		}
		return nil
	})
}

// LatestSnapshot returns the most recent snapshot for an address
func (s *pgStore) LatestSnapshot(ctx context.Context, address string) (*domain.ProjectSnapshot, error) {
	var row schema.ProjectSnapshot
	err := s.db.WithContext(ctx).
		Where("address = ?", address).
		Order("id DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	snapshot, err := rowToSnapshot(&row)
	if err != nil {
		return nil, err
	}

	mints, err := s.MintLedger(ctx, address)
	if err != nil {
		return nil, err
	}
	snapshot.Mints = mints
	return snapshot, nil
}

// ListAddresses returns every address a snapshot has been stored for
func (s *pgStore) ListAddresses(ctx context.Context) ([]string, error) {
	var addresses []string
	err := s.db.WithContext(ctx).
		Model(&schema.ProjectSnapshot{}).
		Distinct("address").
		Order("address").
		Pluck("address", &addresses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	return addresses, nil
}

// MintLedger returns the stored mint ledger of an address in canonical order
func (s *pgStore) MintLedger(ctx context.Context, address string) ([]domain.MintEntry, error) {
	var rows []schema.MintEvent
	err := s.db.WithContext(ctx).
		Where("address = ?", address).
		Order("height ASC, hash ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load mint ledger: %w", err)
	}

	mints := make([]domain.MintEntry, 0, len(rows))
	for _, row := range rows {
		mints = append(mints, domain.MintEntry{
			Hash:      row.Hash,
			Height:    row.Height,
			Timestamp: row.Timestamp,
			Address:   row.Buyer,
			Amount:    row.Amount,
		})
	}
	return mints, nil
}

func snapshotToRow(snapshot *domain.ProjectSnapshot) (*schema.ProjectSnapshot, error) {
	admins, err := json.Marshal(snapshot.Admins)
	if err != nil {
		return nil, fmt.Errorf("failed to encode admins: %w", err)
	}
	whitelist, err := json.Marshal(snapshot.Whitelist)
	if err != nil {
		return nil, fmt.Errorf("failed to encode whitelist: %w", err)
	}

	return &schema.ProjectSnapshot{
		Address:   snapshot.Address,
		RefreshID: snapshot.RefreshID,

		Price:        snapshot.Price,
		Unit:         snapshot.Unit,
		Name:         snapshot.Name,
		Description:  snapshot.Description,
		Image:        snapshot.Image,
		MaxBuyAtOnce: snapshot.MaxBuyAtOnce,

		MarketSupply:    snapshot.MarketSupply,
		ReservedSupply:  snapshot.ReservedSupply,
		WhitelistSupply: snapshot.WhitelistSupply,
		PublicSupply:    snapshot.PublicSupply,
		TotalSupply:     snapshot.TotalSupply,

		MarketMinted:    snapshot.MarketMinted,
		ReservedMinted:  snapshot.ReservedMinted,
		WhitelistMinted: snapshot.WhitelistMinted,
		PublicMinted:    snapshot.PublicMinted,
		TotalMinted:     snapshot.TotalMinted,

		PresaleHeight:    snapshot.PresaleHeight,
		PresaleTimestamp: snapshot.PresaleTimestamp,
		SaleHeight:       snapshot.SaleHeight,
		SaleTimestamp:    snapshot.SaleTimestamp,

		Admins:    string(admins),
		Whitelist: string(whitelist),

		HeightTimedelta: int64(snapshot.HeightTimedelta),

		TxCount:       snapshot.TxCount,
		ExcludedCount: snapshot.ExcludedCount,
		RefreshedAt:   snapshot.RefreshedAt,
	}, nil
}

func rowToSnapshot(row *schema.ProjectSnapshot) (*domain.ProjectSnapshot, error) {
	var admins []string
	if err := json.Unmarshal([]byte(row.Admins), &admins); err != nil {
		return nil, fmt.Errorf("failed to decode admins: %w", err)
	}
	whitelist := make(map[string]uint64)
	if err := json.Unmarshal([]byte(row.Whitelist), &whitelist); err != nil {
		return nil, fmt.Errorf("failed to decode whitelist: %w", err)
	}

	return &domain.ProjectSnapshot{
		Address: row.Address,

		Price:        row.Price,
		Unit:         row.Unit,
		Name:         row.Name,
		Description:  row.Description,
		Image:        row.Image,
		MaxBuyAtOnce: row.MaxBuyAtOnce,

		MarketSupply:    row.MarketSupply,
		ReservedSupply:  row.ReservedSupply,
		WhitelistSupply: row.WhitelistSupply,
		PublicSupply:    row.PublicSupply,
		TotalSupply:     row.TotalSupply,

		MarketMinted:    row.MarketMinted,
		ReservedMinted:  row.ReservedMinted,
		WhitelistMinted: row.WhitelistMinted,
		PublicMinted:    row.PublicMinted,
		TotalMinted:     row.TotalMinted,

		PresaleHeight:    row.PresaleHeight,
		PresaleTimestamp: row.PresaleTimestamp,
		SaleHeight:       row.SaleHeight,
		SaleTimestamp:    row.SaleTimestamp,

		Admins:    admins,
		Whitelist: whitelist,

		HeightTimedelta: time.Duration(row.HeightTimedelta),

		TxCount:       row.TxCount,
		ExcludedCount: row.ExcludedCount,
		RefreshID:     row.RefreshID,
		RefreshedAt:   row.RefreshedAt,
	}, nil
}
