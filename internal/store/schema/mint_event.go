package schema

import (
	"time"
)

// MintEvent is one row of mint_events: a single token-purchase transaction of
// the canonical mint ledger. The transaction hash is the natural primary key;
// refresh cycles upsert and never rewrite history.
type MintEvent struct {
	// Hash is the transaction hash
	Hash string `gorm:"column:hash;primaryKey;type:text"`
	// Address is the sale contract address the mint executed against
	Address string `gorm:"column:address;not null;type:text;index:idx_mint_events_address_height,priority:1"`
	// Height is the block height of the mint
	Height uint64 `gorm:"column:height;not null;index:idx_mint_events_address_height,priority:2"`
	// Timestamp is the block time of the mint
	Timestamp time.Time `gorm:"column:timestamp;not null"`
	// Buyer is the address that sent the purchase
	Buyer string `gorm:"column:buyer;not null;type:text"`
	// Amount is the micro-denom amount paid
	Amount uint64 `gorm:"column:amount;not null"`

	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()"`
}

// TableName specifies the table name for the MintEvent model
func (MintEvent) TableName() string {
	return "mint_events"
}
