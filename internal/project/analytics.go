package project

import (
	"sort"
	"time"

	"github.com/carbonix/carbonix-indexer/internal/domain"
)

// DistributionMetrics summarizes how minted tokens spread across buyers
type DistributionMetrics struct {
	// TokensByAddress is the number of tokens each buyer ended up with
	TokensByAddress map[string]uint64 `json:"tokens_by_address"`
	UniqueCount     int               `json:"unique_count"`
	Mean            float64           `json:"mean"`
	Median          float64           `json:"median"`
}

// tokensOf applies the floor division by price shared with the minted
// figures. A snapshot stored before zero prices were rejected at decode time
// can still carry one; count its mints as zero tokens instead of dividing.
func tokensOf(amount, price uint64) uint64 {
	if price == 0 {
		return 0
	}
	return amount / price
}

// Distribution derives the per-address token distribution from the mint
// ledger, using the same floor division by price as the minted figures
func Distribution(s *domain.ProjectSnapshot) DistributionMetrics {
	tokens := make(map[string]uint64)
	for _, m := range s.Mints {
		tokens[m.Address] += tokensOf(m.Amount, s.Price)
	}

	counts := make([]uint64, 0, len(tokens))
	total := uint64(0)
	for _, n := range tokens {
		counts = append(counts, n)
		total += n
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i] < counts[j] })

	metrics := DistributionMetrics{
		TokensByAddress: tokens,
		UniqueCount:     len(tokens),
	}
	if len(counts) == 0 {
		return metrics
	}
	metrics.Mean = float64(total) / float64(len(counts))
	mid := len(counts) / 2
	if len(counts)%2 == 0 {
		metrics.Median = float64(counts[mid-1]+counts[mid]) / 2
	} else {
		metrics.Median = float64(counts[mid])
	}
	return metrics
}

// SaleMetrics summarizes the timing of the sale phases
type SaleMetrics struct {
	// mint event counts on each side of the sale boundary timestamp
	PresaleMintCount int `json:"presale_mint_count"`
	SaleMintCount    int `json:"sale_mint_count"`

	// SaleDuration spans first to last public mint, padded by one block
	SaleDuration time.Duration `json:"sale_duration"`
	// SaleHeightSpan is the number of blocks the public sale covered
	SaleHeightSpan uint64 `json:"sale_height_span"`
}

// Sale derives sale timing metrics from the mint ledger and the sale boundary
func Sale(s *domain.ProjectSnapshot) SaleMetrics {
	var metrics SaleMetrics
	var first, last *domain.MintEntry
	for i := range s.Mints {
		m := &s.Mints[i]
		if m.Timestamp.Before(s.SaleTimestamp) {
			metrics.PresaleMintCount++
			continue
		}
		metrics.SaleMintCount++
		if first == nil {
			first = m
		}
		last = m
	}
	if first != nil && last != nil {
		metrics.SaleDuration = last.Timestamp.Sub(first.Timestamp) + s.HeightTimedelta
		metrics.SaleHeightSpan = last.Height - first.Height + 1
	}
	return metrics
}

// CumulativePoint is one step of the cumulative mint series
type CumulativePoint struct {
	Hash       string    `json:"hash"`
	Height     uint64    `json:"height"`
	Timestamp  time.Time `json:"timestamp"`
	Tokens     uint64    `json:"tokens"`
	Cumulative uint64    `json:"cumulative"`
}

// CumulativeMints walks the mint ledger in its canonical order and
// accumulates token counts
func CumulativeMints(s *domain.ProjectSnapshot) []CumulativePoint {
	series := make([]CumulativePoint, 0, len(s.Mints))
	running := uint64(0)
	for _, m := range s.Mints {
		tokens := tokensOf(m.Amount, s.Price)
		running += tokens
		series = append(series, CumulativePoint{
			Hash:       m.Hash,
			Height:     m.Height,
			Timestamp:  m.Timestamp,
			Tokens:     tokens,
			Cumulative: running,
		})
	}
	return series
}
