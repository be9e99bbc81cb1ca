package explorer

import (
	"github.com/carbonix/carbonix-indexer/internal/domain"
)

// Classify returns the subset of txs whose invoked methods intersect the
// keyword set, sorted ascending by (height, hash). The input is never mutated
// and repeated calls on the same input yield the same subset, which downstream
// latest-wins and cumulative-sum derivations depend on. An empty result is
// valid; only the derivations themselves decide whether emptiness is an error.
func Classify(txs []domain.Txn, keywords ...domain.Method) []domain.Txn {
	var subset []domain.Txn
	for _, txn := range txs {
		for _, keyword := range keywords {
			if txn.HasMethod(keyword) {
				subset = append(subset, txn)
				break
			}
		}
	}
	domain.SortTxs(subset)
	return subset
}

// ClassifyToggles returns the mode-toggle subset for a keyword. The same
// method name also occurs with scalar payloads as an unrelated command; only
// transactions whose payload decoded into the structured toggle form count.
func ClassifyToggles(txs []domain.Txn, keyword domain.Method) []domain.Txn {
	var subset []domain.Txn
	for _, txn := range txs {
		if _, ok := txn.Payload(keyword).(*domain.ModeToggle); ok {
			subset = append(subset, txn)
		}
	}
	domain.SortTxs(subset)
	return subset
}
