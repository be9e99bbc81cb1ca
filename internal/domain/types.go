package domain

import (
	"fmt"
	"sort"
	"time"
)

// Method is an entry-point name invoked on the sale contract
type Method string

const (
	MethodBuy            Method = "buy"
	MethodMultiBuy       Method = "multi_buy"
	MethodAddToWhitelist Method = "add_to_whitelist"
	MethodAddAdmin       Method = "add_admin"
	MethodPreSellMode    Method = "pre_sell_mode"
	MethodSellMode       Method = "sell_mode"
	MethodUpdatePrice    Method = "update_price"
	MethodUpdateSupply   Method = "update_supply"
	MethodUpdateMetadata Method = "update_metadata"
	MethodMaxBuyAtOnce   Method = "max_buy_at_once"
)

// MintMethods are the entry points that record a token purchase
var MintMethods = []Method{MethodBuy, MethodMultiBuy}

// Txn is one normalized ledger entry for a contract address.
// It is constructed once from a raw tx_search envelope and immutable after
// construction; the payloads in Message are decoded and validated at parse
// time. Txns are ordered by (Height, Hash) so that ties at the same height
// break deterministically.
type Txn struct {
	Hash      string
	Height    uint64
	Timestamp time.Time
	Sender    string
	Recipient string
	Amount    uint64
	Unit      string
	Methods   []Method
	Message   map[Method]Payload
}

// Payload returns the decoded payload for a method, or nil if absent
func (t *Txn) Payload(method Method) Payload {
	return t.Message[method]
}

// HasMethod reports whether the transaction invoked the given method
func (t *Txn) HasMethod(method Method) bool {
	_, ok := t.Message[method]
	return ok
}

// Less orders transactions ascending by height, hash as tie-break
func (t *Txn) Less(other *Txn) bool {
	if t.Height != other.Height {
		return t.Height < other.Height
	}
	return t.Hash < other.Hash
}

// SortTxs sorts a transaction slice in place, ascending by (height, hash)
func SortTxs(txs []Txn) {
	sort.Slice(txs, func(i, j int) bool {
		return txs[i].Less(&txs[j])
	})
}

// MintEntry is one row of the canonical mint ledger
type MintEntry struct {
	Hash      string    `json:"hash"`
	Height    uint64    `json:"height"`
	Timestamp time.Time `json:"timestamp"`
	Address   string    `json:"address"`
	Amount    uint64    `json:"amount"`
}

// ProjectSnapshot is the derived project model reconstructed from the full
// transaction set of a contract address. All fields are computed jointly by a
// single reconstruction pass; supply and minted figures are mutually dependent
// and must never be recomputed individually.
type ProjectSnapshot struct {
	Address string `json:"address"`

	// latest-wins configuration
	Price        uint64 `json:"price"`
	Unit         string `json:"unit"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Image        string `json:"image"`
	MaxBuyAtOnce uint64 `json:"max_buy_at_once"`

	// supply split
	MarketSupply    uint64 `json:"total_market_supply"`
	ReservedSupply  uint64 `json:"total_reserved_supply"`
	WhitelistSupply uint64 `json:"total_whitelist_supply"`
	PublicSupply    int64  `json:"total_public_supply"`
	TotalSupply     uint64 `json:"total_supply"`

	// minted split; differences may go negative on inconsistent upstream
	// data and are surfaced as-is, not clamped
	MarketMinted    uint64 `json:"total_market_minted"`
	ReservedMinted  uint64 `json:"total_reserved_minted"`
	WhitelistMinted uint64 `json:"total_whitelist_minted"`
	PublicMinted    int64  `json:"total_public_minted"`
	TotalMinted     uint64 `json:"total_minted"`

	// sale phase boundaries: height and timestamp of the last enabling
	// toggle for each mode
	PresaleHeight    uint64    `json:"presale_height"`
	PresaleTimestamp time.Time `json:"presale_timestamp"`
	SaleHeight       uint64    `json:"sale_height"`
	SaleTimestamp    time.Time `json:"sale_timestamp"`

	Admins    []string          `json:"admins"`
	Whitelist map[string]uint64 `json:"whitelist"`

	// HeightTimedelta is the estimated wall-clock duration of one block,
	// the median of observed (time delta / height delta) ratios
	HeightTimedelta time.Duration `json:"height_timedelta"`

	// canonical mint ledger, ascending by (height, hash)
	Mints []MintEntry `json:"mints"`

	// bookkeeping
	TxCount       int       `json:"tx_count"`
	ExcludedCount int       `json:"excluded_count"`
	RefreshID     string    `json:"refresh_id"`
	RefreshedAt   time.Time `json:"refreshed_at"`
}

// MintLedger returns the mint ledger keyed by transaction hash
func (s *ProjectSnapshot) MintLedger() map[string]MintEntry {
	ledger := make(map[string]MintEntry, len(s.Mints))
	for _, m := range s.Mints {
		ledger[m.Hash] = m
	}
	return ledger
}

// MintscanURL returns the explorer page for the contract
func (s *ProjectSnapshot) MintscanURL() string {
	return fmt.Sprintf("https://www.mintscan.io/juno/wasm/contract/%s", s.Address)
}

// ShortAddress returns a shortened display form of an address,
// e.g. "juno10p...3t39vz"
func ShortAddress(address string) string {
	if len(address) <= 13 {
		return address
	}
	return fmt.Sprintf("%s...%s", address[:7], address[len(address)-6:])
}

// ToJuno converts a micro-denom value into its display denomination
func ToJuno(value uint64, unit string) (float64, string, error) {
	if unit != "ujuno" {
		return 0, "", fmt.Errorf("unexpected unit %q", unit)
	}
	return float64(value) / 1e6, "Junø", nil
}
