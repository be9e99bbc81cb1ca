package tendermint

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/carbonix/carbonix-indexer/internal/domain"
)

// EventAttr is an event-attribute filter for tx_search queries
type EventAttr string

const (
	AttrInstantiateContract EventAttr = "instantiate._contract_address"
	AttrExecuteContract     EventAttr = "execute._contract_address"
	AttrTransferSender      EventAttr = "transfer.sender"
	AttrTransferRecipient   EventAttr = "transfer.recipient"
)

// DefaultPerPage matches the indexer's tx_search page size
const DefaultPerPage = 30

// TxEnvelope is one raw transaction entry of a tx_search result page
type TxEnvelope struct {
	Hash     string `json:"hash"`
	Height   string `json:"height"`
	Tx       string `json:"tx"`
	TxResult struct {
		Log string `json:"log"`
	} `json:"tx_result"`
}

// SearchResult is the result field of a tx_search response
type SearchResult struct {
	Txs        []TxEnvelope `json:"txs"`
	TotalCount string       `json:"total_count"`
}

// Source fetches the raw response body for a fully-constructed request URL.
// The explorer supplies either a direct HTTP source or a cache-through source,
// so the client stays agnostic of the caching policy.
type Source interface {
	Fetch(ctx context.Context, url string) (json.RawMessage, error)
}

// SourceFunc adapts a plain fetch function to the Source interface
type SourceFunc func(ctx context.Context, url string) (json.RawMessage, error)

// Fetch calls f
func (f SourceFunc) Fetch(ctx context.Context, url string) (json.RawMessage, error) {
	return f(ctx, url)
}

// Client talks to a Tendermint RPC endpoint. It only builds request URLs and
// interprets responses; transport and caching are behind Source.
//
//go:generate mockgen -source=client.go -destination=../../mocks/tendermint_client.go -package=mocks -mock_names=Client=MockTendermintClient
type Client interface {
	// SearchAll fetches every transaction matching "<attr>='<address>'",
	// driving pagination until the accumulated count reaches the total
	// reported by the first page
	SearchAll(ctx context.Context, source Source, attr EventAttr, address string) ([]TxEnvelope, error)

	// BlockTime returns the header time of a block, rounded to the second
	BlockTime(ctx context.Context, source Source, height uint64) (time.Time, error)
}

type client struct {
	base    string
	perPage int
}

// NewClient creates a Tendermint RPC client for the given base URL. A
// non-positive perPage falls back to DefaultPerPage.
func NewClient(base string, perPage int) Client {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	return &client{base: strings.TrimRight(base, "/"), perPage: perPage}
}

// searchURL builds a tx_search request URL. The exact formatting matters: the
// URL doubles as the response-cache key, so it must be reproducible across
// runs.
func (c *client) searchURL(attr EventAttr, address string, page int) string {
	query := fmt.Sprintf("query=%%22%s=%%27%s%%27%%22", attr, address)
	return fmt.Sprintf("%s/tx_search?%s&prove=false&page=%d&per_page=%d&order_by=%%22asc%%22",
		c.base, query, page, c.perPage)
}

// blockURL builds a block header request URL
func (c *client) blockURL(height uint64) string {
	return fmt.Sprintf("%s/block?height=%d", c.base, height)
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
}

func (c *client) fetchResult(ctx context.Context, source Source, url string, out interface{}) error {
	raw, err := source.Fetch(ctx, url)
	if err != nil {
		return err
	}
	var resp rpcResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return fmt.Errorf("failed to decode rpc response: %w", err)
	}
	if len(resp.Result) == 0 {
		return fmt.Errorf("rpc response has no result: %s", url)
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("failed to decode rpc result: %w", err)
	}
	return nil
}

// SearchAll fetches all pages for one query. The termination condition is
// evaluated against the total_count obtained on the first page only; a total
// that keeps growing mid-pagination (new transactions landing during the
// fetch) must not turn the loop infinite.
func (c *client) SearchAll(ctx context.Context, source Source, attr EventAttr, address string) ([]TxEnvelope, error) {
	var first SearchResult
	if err := c.fetchResult(ctx, source, c.searchURL(attr, address, 1), &first); err != nil {
		return nil, err
	}

	total, err := strconv.Atoi(first.TotalCount)
	if err != nil {
		return nil, fmt.Errorf("invalid total_count %q: %w", first.TotalCount, err)
	}
	if total == 0 {
		return nil, nil
	}

	queryDesc := fmt.Sprintf("%s='%s'", attr, address)
	txs := append([]TxEnvelope(nil), first.Txs...)
	for page := 2; len(txs) < total; page++ {
		var result SearchResult
		if err := c.fetchResult(ctx, source, c.searchURL(attr, address, page), &result); err != nil {
			return nil, err
		}
		if len(result.Txs) == 0 {
			return nil, &domain.PaginationError{Query: queryDesc, Fetched: len(txs), Total: total}
		}
		txs = append(txs, result.Txs...)
	}
	if len(txs) > total {
		return nil, &domain.PaginationError{Query: queryDesc, Fetched: len(txs), Total: total}
	}

	return txs, nil
}

// BlockTime returns the header time of the block at the given height
func (c *client) BlockTime(ctx context.Context, source Source, height uint64) (time.Time, error) {
	var result struct {
		Block struct {
			Header struct {
				Time time.Time `json:"time"`
			} `json:"header"`
		} `json:"block"`
	}
	if err := c.fetchResult(ctx, source, c.blockURL(height), &result); err != nil {
		return time.Time{}, err
	}
	if result.Block.Header.Time.IsZero() {
		return time.Time{}, fmt.Errorf("block %d has no header time", height)
	}
	return result.Block.Header.Time.Round(time.Second), nil
}
