package dto

import (
	"time"

	"github.com/carbonix/carbonix-indexer/internal/domain"
	"github.com/carbonix/carbonix-indexer/internal/project"
)

// ProjectSummary is one entry of the project listing
type ProjectSummary struct {
	Address     string    `json:"address"`
	Name        string    `json:"name"`
	Price       uint64    `json:"price"`
	Unit        string    `json:"unit"`
	TotalSupply uint64    `json:"total_supply"`
	TotalMinted uint64    `json:"total_minted"`
	RefreshID   string    `json:"refresh_id"`
	RefreshedAt time.Time `json:"refreshed_at"`
}

// ProjectListResponse wraps the project listing
type ProjectListResponse struct {
	Projects []ProjectSummary `json:"projects"`
}

// WhitelistResponse carries the whitelist table of a project
type WhitelistResponse struct {
	Address   string            `json:"address"`
	Whitelist map[string]uint64 `json:"whitelist"`
	// Supply is the sum of all whitelisted slots
	Supply uint64 `json:"total_whitelist_supply"`
}

// MintsResponse carries the ordered mint ledger of a project
type MintsResponse struct {
	Address string             `json:"address"`
	Mints   []domain.MintEntry `json:"mints"`
}

// DistributionResponse carries distribution metrics for a project
type DistributionResponse struct {
	Address string `json:"address"`
	project.DistributionMetrics
}

// SaleResponse carries sale timing metrics and the cumulative mint series
type SaleResponse struct {
	Address string `json:"address"`
	project.SaleMetrics
	PresaleHeight    uint64                    `json:"presale_height"`
	PresaleTimestamp time.Time                 `json:"presale_timestamp"`
	SaleHeight       uint64                    `json:"sale_height"`
	SaleTimestamp    time.Time                 `json:"sale_timestamp"`
	Cumulative       []project.CumulativePoint `json:"cumulative"`
}

// RefreshResponse acknowledges a refresh trigger
type RefreshResponse struct {
	Address   string `json:"address"`
	RefreshID string `json:"refresh_id"`
	TxCount   int    `json:"tx_count"`
	Excluded  int    `json:"excluded_count"`
}

// NewProjectSummary maps a snapshot to its listing entry
func NewProjectSummary(s *domain.ProjectSnapshot) ProjectSummary {
	return ProjectSummary{
		Address:     s.Address,
		Name:        s.Name,
		Price:       s.Price,
		Unit:        s.Unit,
		TotalSupply: s.TotalSupply,
		TotalMinted: s.TotalMinted,
		RefreshID:   s.RefreshID,
		RefreshedAt: s.RefreshedAt,
	}
}
