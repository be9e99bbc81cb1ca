package domain

import (
	"time"
)

// SnapshotEvent announces that a refresh cycle produced a new snapshot for a
// contract address. Consumers re-read the snapshot from the store; the event
// carries only enough to decide whether they care.
type SnapshotEvent struct {
	Address       string    `json:"address"`
	RefreshID     string    `json:"refresh_id"`
	TxCount       int       `json:"tx_count"`
	ExcludedCount int       `json:"excluded_count"`
	TotalMinted   uint64    `json:"total_minted"`
	Stale         bool      `json:"stale"`
	RefreshedAt   time.Time `json:"refreshed_at"`
}
