package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbonix/carbonix-indexer/internal/domain"
)

func TestSnapshotRowRoundTrip(t *testing.T) {
	original := &domain.ProjectSnapshot{
		Address: "juno1contract",

		Price:        100,
		Unit:         "ujuno",
		Name:         "Carbon Forest",
		Description:  "offset sale",
		Image:        "ipfs://img",
		MaxBuyAtOnce: 10,

		MarketSupply:    160,
		ReservedSupply:  40,
		WhitelistSupply: 8,
		PublicSupply:    152,
		TotalSupply:     200,

		MarketMinted:    8,
		ReservedMinted:  40,
		WhitelistMinted: 5,
		PublicMinted:    3,
		TotalMinted:     48,

		PresaleHeight:    10,
		PresaleTimestamp: time.Date(2022, 5, 1, 0, 1, 0, 0, time.UTC),
		SaleHeight:       25,
		SaleTimestamp:    time.Date(2022, 5, 1, 0, 2, 30, 0, time.UTC),

		Admins:    []string{"juno1admin", "juno1deployer"},
		Whitelist: map[string]uint64{"juno1alice": 5, "juno1bob": 3},

		HeightTimedelta: 6 * time.Second,

		TxCount:       12,
		ExcludedCount: 1,
		RefreshID:     "refresh-1",
		RefreshedAt:   time.Date(2022, 5, 6, 15, 0, 0, 0, time.UTC),
	}

	row, err := snapshotToRow(original)
	require.NoError(t, err)
	assert.Equal(t, "juno1contract", row.Address)
	assert.JSONEq(t, `["juno1admin","juno1deployer"]`, row.Admins)
	assert.JSONEq(t, `{"juno1alice":5,"juno1bob":3}`, row.Whitelist)
	assert.Equal(t, int64(6*time.Second), row.HeightTimedelta)

	restored, err := rowToSnapshot(row)
	require.NoError(t, err)

	// the mint ledger lives in its own table and is loaded separately
	assert.Nil(t, restored.Mints)
	restored.Mints = original.Mints
	assert.Equal(t, original, restored)
}

func TestSnapshotRowRoundTrip_NegativeSplit(t *testing.T) {
	// inconsistent upstream data can push the public figures negative;
	// they are stored as-is, not clamped
	original := &domain.ProjectSnapshot{
		Address:      "juno1contract",
		PublicSupply: -12,
		PublicMinted: -3,
		Admins:       []string{},
		Whitelist:    map[string]uint64{},
	}

	row, err := snapshotToRow(original)
	require.NoError(t, err)

	restored, err := rowToSnapshot(row)
	require.NoError(t, err)
	assert.Equal(t, int64(-12), restored.PublicSupply)
	assert.Equal(t, int64(-3), restored.PublicMinted)
}

func TestRowToSnapshot_CorruptColumns(t *testing.T) {
	snapshot := &domain.ProjectSnapshot{Address: "juno1contract"}
	row, err := snapshotToRow(snapshot)
	require.NoError(t, err)

	row.Admins = "not json"
	_, err = rowToSnapshot(row)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode admins")

	row, err = snapshotToRow(snapshot)
	require.NoError(t, err)
	row.Whitelist = "not json"
	_, err = rowToSnapshot(row)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode whitelist")
}
