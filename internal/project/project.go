// Package project reconstructs the derived sale model of a contract address
// from its raw transaction history.
package project

import (
	"fmt"
	"sort"
	"time"

	"github.com/carbonix/carbonix-indexer/internal/domain"
	"github.com/carbonix/carbonix-indexer/internal/explorer"
)

// Reconstruct derives a project snapshot from the full transaction set of an
// address. It is a pure function: the same set of transactions, in any input
// order, yields the same snapshot. All derived fields are computed in one pass
// because they depend on each other — public_minted depends on the sale
// boundary, which depends on the toggle subset ordering — so partial
// recomputation is never correct.
//
// Ordering contracts per field:
//   - price, supply, metadata, max-buy: strict latest-wins, ascending
//     (height, hash), last entry
//   - presale/sale boundary: latest enabling toggle event
//   - whitelist: ascending flatten, later entries overwrite per address
//   - mint ledger: full ascending sequence
func Reconstruct(address string, txs []domain.Txn) (*domain.ProjectSnapshot, error) {
	price, err := latestPayload[*domain.PriceUpdate](txs, domain.MethodUpdatePrice, "price")
	if err != nil {
		return nil, err
	}
	if price.Amount == 0 {
		// every minted figure is a floor division by the price
		return nil, fmt.Errorf("address %s: latest price update carries a zero amount", address)
	}
	supply, err := latestPayload[*domain.SupplyUpdate](txs, domain.MethodUpdateSupply, "supply")
	if err != nil {
		return nil, err
	}
	metadata, err := latestPayload[*domain.MetadataUpdate](txs, domain.MethodUpdateMetadata, "metadata")
	if err != nil {
		return nil, err
	}
	maxBuy, err := latestPayload[*domain.MaxBuyUpdate](txs, domain.MethodMaxBuyAtOnce, "max buy")
	if err != nil {
		return nil, err
	}

	presale, err := boundary(txs, domain.MethodPreSellMode, "presale boundary")
	if err != nil {
		return nil, err
	}
	sale, err := boundary(txs, domain.MethodSellMode, "sale boundary")
	if err != nil {
		return nil, err
	}

	adminList, adminSet := collectAdmins(txs)
	whitelistTable := buildWhitelist(txs, presale.Height, adminSet)
	mints := mintLedger(txs)

	whitelistSupply := uint64(0)
	for _, slots := range whitelistTable {
		whitelistSupply += slots
	}

	marketMinted := uint64(0)
	whitelistMinted := uint64(0)
	for _, m := range mints {
		tokens := m.Amount / price.Amount
		marketMinted += tokens
		if m.Height <= sale.Height {
			whitelistMinted += tokens
		}
	}

	// reserved mints leave no distinguishable on-chain trace, so the
	// reserved supply stands in for them; an approximation, kept on purpose
	reservedMinted := supply.ReservedSupply

	return &domain.ProjectSnapshot{
		Address: address,

		Price:        price.Amount,
		Unit:         price.Denom,
		Name:         metadata.Name,
		Description:  metadata.Description,
		Image:        metadata.Image,
		MaxBuyAtOnce: maxBuy.Limit,

		MarketSupply:    supply.MarketSupply,
		ReservedSupply:  supply.ReservedSupply,
		WhitelistSupply: whitelistSupply,
		PublicSupply:    int64(supply.MarketSupply) - int64(whitelistSupply),
		TotalSupply:     supply.MarketSupply + supply.ReservedSupply,

		MarketMinted:    marketMinted,
		ReservedMinted:  reservedMinted,
		WhitelistMinted: whitelistMinted,
		PublicMinted:    int64(marketMinted) - int64(whitelistMinted),
		TotalMinted:     marketMinted + reservedMinted,

		PresaleHeight:    presale.Height,
		PresaleTimestamp: presale.Timestamp,
		SaleHeight:       sale.Height,
		SaleTimestamp:    sale.Timestamp,

		Admins:    adminList,
		Whitelist: whitelistTable,
		Mints:     mints,

		HeightTimedelta: HeightTimedelta(txs),

		TxCount: len(txs),
	}, nil
}

// latestPayload returns the decoded payload of the highest-height transaction
// invoking the method. An empty subset is an EmptySubsetError: defaulting to a
// zero value would be indistinguishable from real data and corrupt every
// dependent figure.
func latestPayload[P domain.Payload](txs []domain.Txn, method domain.Method, concern string) (P, error) {
	var zero P
	subset := explorer.Classify(txs, method)
	if len(subset) == 0 {
		return zero, &domain.EmptySubsetError{Concern: concern}
	}
	last := subset[len(subset)-1]
	payload, ok := last.Payload(method).(P)
	if !ok {
		return zero, fmt.Errorf("tx %s: unexpected payload shape for %s", last.Hash, method)
	}
	return payload, nil
}

// boundaryPoint is the height and timestamp of a mode boundary
type boundaryPoint struct {
	Height    uint64
	Timestamp time.Time
}

// boundary returns the height and timestamp of the most recent enabling
// toggle for a mode. Disabling events move no boundary; a history with no
// enabling event at all has no boundary and fails the reconstruction.
func boundary(txs []domain.Txn, method domain.Method, concern string) (boundaryPoint, error) {
	toggles := explorer.ClassifyToggles(txs, method)
	var enabled []domain.Txn
	for _, txn := range toggles {
		if toggle, ok := txn.Payload(method).(*domain.ModeToggle); ok && toggle.Enable {
			enabled = append(enabled, txn)
		}
	}
	if len(enabled) == 0 {
		return boundaryPoint{}, &domain.EmptySubsetError{Concern: concern}
	}
	last := enabled[len(enabled)-1]
	return boundaryPoint{Height: last.Height, Timestamp: last.Timestamp}, nil
}

// collectAdmins returns the sorted admin list and the same addresses as a set: the
// union of admin-tx senders and the addresses they named
func collectAdmins(txs []domain.Txn) ([]string, map[string]bool) {
	set := make(map[string]bool)
	for _, txn := range explorer.Classify(txs, domain.MethodAddAdmin) {
		if txn.Sender != "" {
			set[txn.Sender] = true
		}
		if add, ok := txn.Payload(domain.MethodAddAdmin).(*domain.AdminAdd); ok {
			set[add.Address] = true
		}
	}
	list := make([]string, 0, len(set))
	for address := range set {
		list = append(list, address)
	}
	sort.Strings(list)
	return list, set
}

// buildWhitelist flattens qualifying whitelist-update transactions into the
// address→slots table. A transaction qualifies when its height is at or below
// the presale boundary and it grants more than one entry; the single-entry
// exclusion works around duplicate-address grants in the upstream data and is
// kept exactly as-is. Entries naming an admin address are skipped. Ascending
// flatten order makes later grants overwrite earlier ones per address.
func buildWhitelist(txs []domain.Txn, presaleHeight uint64, adminSet map[string]bool) map[string]uint64 {
	table := make(map[string]uint64)
	for _, txn := range explorer.Classify(txs, domain.MethodAddToWhitelist) {
		if txn.Height > presaleHeight {
			continue
		}
		add, ok := txn.Payload(domain.MethodAddToWhitelist).(*domain.WhitelistAdd)
		if !ok || len(add.Entries) <= 1 {
			continue
		}
		for _, entry := range add.Entries {
			if adminSet[entry.Address] {
				continue
			}
			table[entry.Address] = entry.Slots
		}
	}
	return table
}

// mintLedger materializes the canonical mint ledger, ascending by
// (height, hash). The ordering is part of the contract: cumulative-sum and
// first/last-mint consumers rely on it.
func mintLedger(txs []domain.Txn) []domain.MintEntry {
	subset := explorer.Classify(txs, domain.MintMethods...)
	mints := make([]domain.MintEntry, 0, len(subset))
	for _, txn := range subset {
		mints = append(mints, domain.MintEntry{
			Hash:      txn.Hash,
			Height:    txn.Height,
			Timestamp: txn.Timestamp,
			Address:   txn.Sender,
			Amount:    txn.Amount,
		})
	}
	return mints
}

// HeightTimedelta estimates the duration of one block as the median of
// (time delta / height delta) over consecutive distinct heights. Zero when
// the history spans fewer than two heights.
func HeightTimedelta(txs []domain.Txn) time.Duration {
	sorted := append([]domain.Txn(nil), txs...)
	domain.SortTxs(sorted)

	var deltas []time.Duration
	for i := 1; i < len(sorted); i++ {
		prev, curr := sorted[i-1], sorted[i]
		if curr.Height == prev.Height {
			continue
		}
		dt := curr.Timestamp.Sub(prev.Timestamp)
		if dt <= 0 {
			continue
		}
		deltas = append(deltas, dt/time.Duration(curr.Height-prev.Height)) //nolint:gosec
	}
	if len(deltas) == 0 {
		return 0
	}
	sort.Slice(deltas, func(i, j int) bool { return deltas[i] < deltas[j] })
	mid := len(deltas) / 2
	if len(deltas)%2 == 0 {
		return ((deltas[mid-1] + deltas[mid]) / 2).Round(time.Second)
	}
	return deltas[mid].Round(time.Second)
}
