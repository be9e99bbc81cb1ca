package project_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbonix/carbonix-indexer/internal/domain"
	"github.com/carbonix/carbonix-indexer/internal/project"
)

const contract = "juno1contract"

var epoch = time.Date(2022, 5, 1, 0, 0, 0, 0, time.UTC)

func txn(hash string, height uint64, method domain.Method, payload domain.Payload) domain.Txn {
	return domain.Txn{
		Hash:      hash,
		Height:    height,
		Timestamp: epoch.Add(time.Duration(height) * 6 * time.Second),
		Methods:   []domain.Method{method},
		Message:   map[domain.Method]domain.Payload{method: payload},
	}
}

func mint(hash string, height uint64, method domain.Method, sender string, amount uint64) domain.Txn {
	t := txn(hash, height, method, &domain.MintBuy{Quantity: 1})
	t.Sender = sender
	t.Recipient = contract
	t.Amount = amount
	t.Unit = "ujuno"
	return t
}

// saleHistory is a complete, reconstructible transaction history
func saleHistory() []domain.Txn {
	admin := txn("T01", 4, domain.MethodAddAdmin, &domain.AdminAdd{Address: "juno1admin"})
	admin.Sender = "juno1deployer"

	return []domain.Txn{
		admin,
		txn("T02", 5, domain.MethodUpdateSupply, &domain.SupplyUpdate{MarketSupply: 100, ReservedSupply: 40}),
		txn("T03", 6, domain.MethodUpdatePrice, &domain.PriceUpdate{Amount: 100, Denom: "ujuno"}),
		txn("T04", 7, domain.MethodUpdateMetadata, &domain.MetadataUpdate{Name: "Carbon Forest", Description: "offset sale", Image: "ipfs://img"}),
		txn("T05", 7, domain.MethodMaxBuyAtOnce, &domain.MaxBuyUpdate{Limit: 10}),
		txn("T06", 8, domain.MethodAddToWhitelist, &domain.WhitelistAdd{Entries: []domain.WhitelistEntry{
			{Address: "juno1alice", Slots: 5},
			{Address: "juno1bob", Slots: 3},
			{Address: "juno1admin", Slots: 9}, // admin entries never reach the table
		}}),
		txn("T07", 9, domain.MethodAddToWhitelist, &domain.WhitelistAdd{Entries: []domain.WhitelistEntry{
			{Address: "juno1carol", Slots: 7}, // single-entry grants are dropped
		}}),
		txn("T08", 10, domain.MethodPreSellMode, &domain.ModeToggle{Enable: true}),
		txn("T09", 25, domain.MethodSellMode, &domain.ModeToggle{Enable: true}),
		mint("T10", 20, domain.MethodBuy, "juno1alice", 500),
		mint("T11", 30, domain.MethodMultiBuy, "juno1bob", 300),
		txn("T12", 50, domain.MethodUpdateSupply, &domain.SupplyUpdate{MarketSupply: 160, ReservedSupply: 40}),
	}
}

func TestReconstruct(t *testing.T) {
	s, err := project.Reconstruct(contract, saleHistory())
	require.NoError(t, err)

	assert.Equal(t, contract, s.Address)
	assert.Equal(t, uint64(100), s.Price)
	assert.Equal(t, "ujuno", s.Unit)
	assert.Equal(t, "Carbon Forest", s.Name)
	assert.Equal(t, uint64(10), s.MaxBuyAtOnce)

	// supply split; the later update wins
	assert.Equal(t, uint64(160), s.MarketSupply)
	assert.Equal(t, uint64(40), s.ReservedSupply)
	assert.Equal(t, uint64(8), s.WhitelistSupply)
	assert.Equal(t, int64(152), s.PublicSupply)
	assert.Equal(t, uint64(200), s.TotalSupply)

	// minted split: 500/100 + 300/100 tokens, the first mint inside the
	// whitelist window
	assert.Equal(t, uint64(8), s.MarketMinted)
	assert.Equal(t, uint64(40), s.ReservedMinted)
	assert.Equal(t, uint64(5), s.WhitelistMinted)
	assert.Equal(t, int64(3), s.PublicMinted)
	assert.Equal(t, uint64(48), s.TotalMinted)

	assert.Equal(t, uint64(10), s.PresaleHeight)
	assert.Equal(t, uint64(25), s.SaleHeight)

	assert.Equal(t, []string{"juno1admin", "juno1deployer"}, s.Admins)
	assert.Equal(t, map[string]uint64{"juno1alice": 5, "juno1bob": 3}, s.Whitelist)

	require.Len(t, s.Mints, 2)
	assert.Equal(t, "T10", s.Mints[0].Hash)
	assert.Equal(t, "T11", s.Mints[1].Hash)
	assert.Equal(t, "juno1alice", s.Mints[0].Address)
	assert.Equal(t, uint64(500), s.Mints[0].Amount)

	assert.Equal(t, 6*time.Second, s.HeightTimedelta)
	assert.Equal(t, 12, s.TxCount)
}

func TestReconstruct_OrderIndependent(t *testing.T) {
	history := saleHistory()
	reversed := make([]domain.Txn, len(history))
	for i, tx := range history {
		reversed[len(history)-1-i] = tx
	}

	a, err := project.Reconstruct(contract, history)
	require.NoError(t, err)
	b, err := project.Reconstruct(contract, reversed)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestReconstruct_LatestWins(t *testing.T) {
	history := saleHistory()
	history = append(history,
		txn("T13", 20, domain.MethodUpdatePrice, &domain.PriceUpdate{Amount: 999, Denom: "ujuno"}),
		txn("T14", 15, domain.MethodUpdatePrice, &domain.PriceUpdate{Amount: 555, Denom: "ujuno"}),
	)

	s, err := project.Reconstruct(contract, history)
	require.NoError(t, err)
	assert.Equal(t, uint64(999), s.Price)
}

func TestReconstruct_ZeroPriceRejected(t *testing.T) {
	history := saleHistory()
	history = append(history,
		txn("T99", 60, domain.MethodUpdatePrice, &domain.PriceUpdate{Amount: 0, Denom: "ujuno"}),
	)

	s, err := project.Reconstruct(contract, history)
	require.Error(t, err)
	assert.Nil(t, s)
	assert.Contains(t, err.Error(), "zero")
}

func TestReconstruct_HashTieBreak(t *testing.T) {
	history := saleHistory()
	history = append(history,
		txn("ZZZ", 60, domain.MethodUpdatePrice, &domain.PriceUpdate{Amount: 200, Denom: "ujuno"}),
		txn("AAA", 60, domain.MethodUpdatePrice, &domain.PriceUpdate{Amount: 300, Denom: "ujuno"}),
	)

	s, err := project.Reconstruct(contract, history)
	require.NoError(t, err)

	// same height: the lexically greater hash is the later entry
	assert.Equal(t, uint64(200), s.Price)
}

func TestReconstruct_BoundaryIgnoresDisable(t *testing.T) {
	history := saleHistory()
	history = append(history,
		txn("T15", 28, domain.MethodSellMode, &domain.ModeToggle{Enable: true}),
		txn("T16", 35, domain.MethodSellMode, &domain.ModeToggle{Enable: false}),
	)

	s, err := project.Reconstruct(contract, history)
	require.NoError(t, err)

	// a disable after the last enable moves no boundary
	assert.Equal(t, uint64(28), s.SaleHeight)
}

func TestReconstruct_WhitelistAfterPresaleExcluded(t *testing.T) {
	history := saleHistory()
	history = append(history,
		txn("T17", 40, domain.MethodAddToWhitelist, &domain.WhitelistAdd{Entries: []domain.WhitelistEntry{
			{Address: "juno1dave", Slots: 2},
			{Address: "juno1erin", Slots: 2},
		}}),
	)

	s, err := project.Reconstruct(contract, history)
	require.NoError(t, err)
	assert.NotContains(t, s.Whitelist, "juno1dave")
	assert.Equal(t, uint64(8), s.WhitelistSupply)
}

func TestReconstruct_EmptySubset(t *testing.T) {
	drop := func(method domain.Method) []domain.Txn {
		var out []domain.Txn
		for _, tx := range saleHistory() {
			if !tx.HasMethod(method) {
				out = append(out, tx)
			}
		}
		return out
	}

	for _, method := range []domain.Method{
		domain.MethodUpdatePrice,
		domain.MethodUpdateSupply,
		domain.MethodUpdateMetadata,
		domain.MethodMaxBuyAtOnce,
		domain.MethodPreSellMode,
		domain.MethodSellMode,
	} {
		t.Run(string(method), func(t *testing.T) {
			_, err := project.Reconstruct(contract, drop(method))
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrEmptySubset))

			var empty *domain.EmptySubsetError
			assert.True(t, errors.As(err, &empty))
		})
	}
}

func TestHeightTimedelta(t *testing.T) {
	at := func(height uint64, ts time.Time) domain.Txn {
		return domain.Txn{Hash: "H", Height: height, Timestamp: ts}
	}

	tests := []struct {
		name     string
		txs      []domain.Txn
		expected time.Duration
	}{
		{
			name: "median over uneven gaps",
			txs: []domain.Txn{
				at(10, epoch),
				at(20, epoch.Add(50*time.Second)),  // 5s per block
				at(30, epoch.Add(120*time.Second)), // 7s per block
				at(31, epoch.Add(126*time.Second)), // 6s per block
			},
			expected: 6 * time.Second,
		},
		{
			name: "duplicate heights contribute nothing",
			txs: []domain.Txn{
				at(10, epoch),
				at(10, epoch.Add(time.Second)),
				at(20, epoch.Add(60*time.Second)),
			},
			expected: 6 * time.Second,
		},
		{
			name:     "single height has no delta",
			txs:      []domain.Txn{at(10, epoch)},
			expected: 0,
		},
		{
			name:     "empty history",
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, project.HeightTimedelta(tt.txs))
		})
	}
}
