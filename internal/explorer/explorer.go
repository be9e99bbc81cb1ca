// Package explorer drives ledger queries for a contract address and turns raw
// tx_search envelopes into normalized transaction records.
package explorer

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/carbonix/carbonix-indexer/internal/adapter"
	"github.com/carbonix/carbonix-indexer/internal/cache"
	"github.com/carbonix/carbonix-indexer/internal/domain"
	"github.com/carbonix/carbonix-indexer/internal/logger"
	"github.com/carbonix/carbonix-indexer/internal/providers/tendermint"
)

// Explorer fetches and normalizes the transaction history of contract
// addresses. Non-forced reads go through the response cache; forced reads hit
// the RPC endpoint directly and leave the cache untouched, so a staleness
// probe never corrupts the snapshot it is compared against.
type Explorer struct {
	client tendermint.Client
	http   adapter.HTTPClient
	cache  *cache.ResponseCache
}

// New creates an explorer over the given RPC client, transport and cache
func New(client tendermint.Client, http adapter.HTTPClient, responseCache *cache.ResponseCache) *Explorer {
	return &Explorer{
		client: client,
		http:   http,
		cache:  responseCache,
	}
}

// direct fetches straight from the RPC endpoint
func (e *Explorer) direct() tendermint.Source {
	return tendermint.SourceFunc(func(ctx context.Context, url string) (json.RawMessage, error) {
		return e.http.GetRaw(ctx, url)
	})
}

// cached fetches through the response cache with write-through
func (e *Explorer) cached() tendermint.Source {
	next := cache.FetchFunc(func(ctx context.Context, url string) (json.RawMessage, error) {
		return e.http.GetRaw(ctx, url)
	})
	return tendermint.SourceFunc(e.cache.Through(next))
}

// source picks the fetch path for the force flag
func (e *Explorer) source(force bool) tendermint.Source {
	if force {
		return e.direct()
	}
	return e.cached()
}

// fetchEnvelopes runs the instantiate and execute queries for an address and
// deduplicates the combined result by hash
func (e *Explorer) fetchEnvelopes(ctx context.Context, address string, force bool) ([]tendermint.TxEnvelope, error) {
	source := e.source(force)

	instantiate, err := e.client.SearchAll(ctx, source, tendermint.AttrInstantiateContract, address)
	if err != nil {
		return nil, err
	}
	execute, err := e.client.SearchAll(ctx, source, tendermint.AttrExecuteContract, address)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(instantiate)+len(execute))
	var envelopes []tendermint.TxEnvelope
	for _, env := range append(instantiate, execute...) {
		if seen[env.Hash] {
			continue
		}
		seen[env.Hash] = true
		envelopes = append(envelopes, env)
	}
	return envelopes, nil
}

// TransactionCount returns the number of distinct transactions currently
// known for an address. The staleness detector compares a cached count with a
// forced one; any difference invalidates the derived state.
func (e *Explorer) TransactionCount(ctx context.Context, address string, force bool) (int, error) {
	envelopes, err := e.fetchEnvelopes(ctx, address, force)
	if err != nil {
		return 0, err
	}
	return len(envelopes), nil
}

// Transactions returns the full normalized transaction set for an address,
// ascending by (height, hash), along with the number of transactions excluded
// because their message payload was malformed. Block timestamps are resolved
// per height through the cache regardless of force: a block header never
// changes once sealed.
func (e *Explorer) Transactions(ctx context.Context, address string, force bool) ([]domain.Txn, int, error) {
	envelopes, err := e.fetchEnvelopes(ctx, address, force)
	if err != nil {
		return nil, 0, err
	}

	excluded := 0
	txs := make([]domain.Txn, 0, len(envelopes))
	for _, env := range envelopes {
		txn, err := ParseTxn(env)
		if err != nil {
			if errors.Is(err, domain.ErrMalformedMessage) {
				excluded++
				logger.WarnCtx(ctx, "excluding malformed transaction",
					zap.String("address", address),
					zap.Error(err))
				continue
			}
			return nil, 0, err
		}
		txs = append(txs, txn)
	}

	if err := e.resolveTimestamps(ctx, txs); err != nil {
		return nil, 0, err
	}

	domain.SortTxs(txs)
	return txs, excluded, nil
}

// resolveTimestamps fills Txn.Timestamp from block headers, one lookup per
// distinct height
func (e *Explorer) resolveTimestamps(ctx context.Context, txs []domain.Txn) error {
	source := e.cached()
	times := make(map[uint64]time.Time)
	for i := range txs {
		height := txs[i].Height
		ts, ok := times[height]
		if !ok {
			var err error
			ts, err = e.client.BlockTime(ctx, source, height)
			if err != nil {
				return err
			}
			times[height] = ts
		}
		txs[i].Timestamp = ts
	}
	return nil
}

// Contacts returns every address that ever sent funds to or received funds
// from the given address. Transfer queries always bypass the cache: the
// contact graph is not part of the derived snapshot and should reflect the
// chain as-is.
func (e *Explorer) Contacts(ctx context.Context, address string) ([]string, error) {
	source := e.direct()

	sent, err := e.client.SearchAll(ctx, source, tendermint.AttrTransferSender, address)
	if err != nil {
		return nil, err
	}
	received, err := e.client.SearchAll(ctx, source, tendermint.AttrTransferRecipient, address)
	if err != nil {
		return nil, err
	}

	contacts := make(map[string]bool)
	for _, env := range sent {
		if info := parseTransfer(env.TxResult.Log); info.Recipient != "" {
			contacts[info.Recipient] = true
		}
	}
	for _, env := range received {
		if info := parseTransfer(env.TxResult.Log); info.Sender != "" {
			contacts[info.Sender] = true
		}
	}
	delete(contacts, address)

	out := make([]string, 0, len(contacts))
	for contact := range contacts {
		out = append(out, contact)
	}
	sort.Strings(out)
	return out, nil
}
