package project_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbonix/carbonix-indexer/internal/domain"
	"github.com/carbonix/carbonix-indexer/internal/project"
)

func snapshotWithMints(price uint64, mints ...domain.MintEntry) *domain.ProjectSnapshot {
	return &domain.ProjectSnapshot{
		Address: contract,
		Price:   price,
		Mints:   mints,
	}
}

func entry(hash string, height uint64, address string, amount uint64) domain.MintEntry {
	return domain.MintEntry{
		Hash:      hash,
		Height:    height,
		Timestamp: epoch.Add(time.Duration(height) * 6 * time.Second),
		Address:   address,
		Amount:    amount,
	}
}

func TestDistribution(t *testing.T) {
	s := snapshotWithMints(100,
		entry("M1", 10, "juno1alice", 500),
		entry("M2", 12, "juno1bob", 300),
		entry("M3", 14, "juno1alice", 200),
		entry("M4", 16, "juno1carol", 100),
	)

	metrics := project.Distribution(s)

	assert.Equal(t, map[string]uint64{
		"juno1alice": 7,
		"juno1bob":   3,
		"juno1carol": 1,
	}, metrics.TokensByAddress)
	assert.Equal(t, 3, metrics.UniqueCount)
	assert.InDelta(t, 11.0/3, metrics.Mean, 1e-9)
	assert.Equal(t, 3.0, metrics.Median)
}

func TestDistribution_EvenMedian(t *testing.T) {
	s := snapshotWithMints(100,
		entry("M1", 10, "juno1alice", 200),
		entry("M2", 12, "juno1bob", 600),
	)

	metrics := project.Distribution(s)
	assert.Equal(t, 4.0, metrics.Median)
}

func TestDistribution_Empty(t *testing.T) {
	metrics := project.Distribution(snapshotWithMints(100))
	assert.Empty(t, metrics.TokensByAddress)
	assert.Zero(t, metrics.UniqueCount)
	assert.Zero(t, metrics.Mean)
	assert.Zero(t, metrics.Median)
}

func TestDistribution_ZeroPriceSnapshot(t *testing.T) {
	// stored rows predating price validation can carry a zero price
	s := snapshotWithMints(0,
		entry("M1", 10, "juno1alice", 500),
		entry("M2", 12, "juno1bob", 300),
	)

	metrics := project.Distribution(s)

	assert.Equal(t, map[string]uint64{
		"juno1alice": 0,
		"juno1bob":   0,
	}, metrics.TokensByAddress)
	assert.Equal(t, 2, metrics.UniqueCount)
	assert.Zero(t, metrics.Mean)
	assert.Zero(t, metrics.Median)
}

func TestSale(t *testing.T) {
	s := snapshotWithMints(100,
		entry("M1", 10, "juno1alice", 500), // before the boundary
		entry("M2", 30, "juno1bob", 300),
		entry("M3", 40, "juno1carol", 200),
	)
	s.SaleHeight = 25
	s.SaleTimestamp = epoch.Add(25 * 6 * time.Second)
	s.HeightTimedelta = 6 * time.Second

	metrics := project.Sale(s)

	assert.Equal(t, 1, metrics.PresaleMintCount)
	assert.Equal(t, 2, metrics.SaleMintCount)
	// first to last public mint plus one block of padding
	assert.Equal(t, 60*time.Second+6*time.Second, metrics.SaleDuration)
	assert.Equal(t, uint64(11), metrics.SaleHeightSpan)
}

func TestSale_NoPublicMints(t *testing.T) {
	s := snapshotWithMints(100,
		entry("M1", 10, "juno1alice", 500),
	)
	s.SaleTimestamp = epoch.Add(25 * 6 * time.Second)

	metrics := project.Sale(s)
	assert.Equal(t, 1, metrics.PresaleMintCount)
	assert.Zero(t, metrics.SaleMintCount)
	assert.Zero(t, metrics.SaleDuration)
	assert.Zero(t, metrics.SaleHeightSpan)
}

func TestCumulativeMints(t *testing.T) {
	s := snapshotWithMints(100,
		entry("M1", 10, "juno1alice", 500),
		entry("M2", 12, "juno1bob", 300),
		entry("M3", 14, "juno1carol", 250),
	)

	series := project.CumulativeMints(s)
	require.Len(t, series, 3)

	assert.Equal(t, uint64(5), series[0].Tokens)
	assert.Equal(t, uint64(5), series[0].Cumulative)
	assert.Equal(t, uint64(3), series[1].Tokens)
	assert.Equal(t, uint64(8), series[1].Cumulative)
	// floor division, same as the minted figures
	assert.Equal(t, uint64(2), series[2].Tokens)
	assert.Equal(t, uint64(10), series[2].Cumulative)
}

func TestCumulativeMints_ZeroPriceSnapshot(t *testing.T) {
	s := snapshotWithMints(0,
		entry("M1", 10, "juno1alice", 500),
	)

	series := project.CumulativeMints(s)
	require.Len(t, series, 1)
	assert.Zero(t, series[0].Tokens)
	assert.Zero(t, series[0].Cumulative)
}
