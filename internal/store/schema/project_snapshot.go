package schema

import (
	"time"
)

// ProjectSnapshot is one row of project_snapshots: the fully derived sale
// model of a contract address at one refresh cycle. Rows are append-only; the
// API reads the latest row per address.
type ProjectSnapshot struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Address is the sale contract address
	Address string `gorm:"column:address;not null;type:text;index:idx_snapshots_address_id,priority:1"`
	// RefreshID identifies the refresh cycle that produced this row
	RefreshID string `gorm:"column:refresh_id;not null;uniqueIndex;type:text"`

	Price        uint64 `gorm:"column:price;not null"`
	Unit         string `gorm:"column:unit;not null;type:text"`
	Name         string `gorm:"column:name;not null;type:text"`
	Description  string `gorm:"column:description;not null;type:text"`
	Image        string `gorm:"column:image;not null;type:text"`
	MaxBuyAtOnce uint64 `gorm:"column:max_buy_at_once;not null"`

	MarketSupply    uint64 `gorm:"column:market_supply;not null"`
	ReservedSupply  uint64 `gorm:"column:reserved_supply;not null"`
	WhitelistSupply uint64 `gorm:"column:whitelist_supply;not null"`
	PublicSupply    int64  `gorm:"column:public_supply;not null"`
	TotalSupply     uint64 `gorm:"column:total_supply;not null"`

	MarketMinted    uint64 `gorm:"column:market_minted;not null"`
	ReservedMinted  uint64 `gorm:"column:reserved_minted;not null"`
	WhitelistMinted uint64 `gorm:"column:whitelist_minted;not null"`
	PublicMinted    int64  `gorm:"column:public_minted;not null"`
	TotalMinted     uint64 `gorm:"column:total_minted;not null"`

	PresaleHeight    uint64    `gorm:"column:presale_height;not null"`
	PresaleTimestamp time.Time `gorm:"column:presale_timestamp;not null"`
	SaleHeight       uint64    `gorm:"column:sale_height;not null"`
	SaleTimestamp    time.Time `gorm:"column:sale_timestamp;not null"`

	// Admins and Whitelist are JSON-encoded; their natural shapes are a
	// list and a map and the API returns them verbatim
	Admins    string `gorm:"column:admins;not null;type:text"`
	Whitelist string `gorm:"column:whitelist;not null;type:text"`

	// HeightTimedelta is stored in nanoseconds
	HeightTimedelta int64 `gorm:"column:height_timedelta;not null"`

	TxCount       int       `gorm:"column:tx_count;not null"`
	ExcludedCount int       `gorm:"column:excluded_count;not null"`
	RefreshedAt   time.Time `gorm:"column:refreshed_at;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;not null;default:now()"`
}

// TableName specifies the table name for the ProjectSnapshot model
func (ProjectSnapshot) TableName() string {
	return "project_snapshots"
}
