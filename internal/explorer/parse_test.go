package explorer_test

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbonix/carbonix-indexer/internal/domain"
	"github.com/carbonix/carbonix-indexer/internal/explorer"
	"github.com/carbonix/carbonix-indexer/internal/providers/tendermint"
)

// envelope builds a tx_search entry whose blob embeds msg the way the chain
// serializes execute messages: JSON surrounded by protobuf framing bytes
func envelope(hash, height, msg, log string) tendermint.TxEnvelope {
	blob := "\x0a\x8c\x01framing" + msg + "\x12\x04sig"
	env := tendermint.TxEnvelope{
		Hash:   hash,
		Height: height,
		Tx:     base64.StdEncoding.EncodeToString([]byte(blob)),
	}
	env.TxResult.Log = log
	return env
}

const transferLog = `[{"events":[
	{"type":"message","attributes":[{"key":"sender","value":"juno1buyer"}]},
	{"type":"execute","attributes":[{"key":"_contract_address","value":"juno1contract"}]},
	{"type":"transfer","attributes":[{"key":"amount","value":"29400000ujuno"}]}
]}]`

func TestParseTxn(t *testing.T) {
	env := envelope("HASH1", "1234",
		`{"update_price":{"price":{"amount":"29400000","denom":"ujuno"}},"buy":{"quantity":"2"}}`,
		transferLog)

	txn, err := explorer.ParseTxn(env)
	require.NoError(t, err)

	assert.Equal(t, "HASH1", txn.Hash)
	assert.Equal(t, uint64(1234), txn.Height)

	// methods keep document order, not map order
	assert.Equal(t, []domain.Method{domain.MethodUpdatePrice, domain.MethodBuy}, txn.Methods)

	price, ok := txn.Payload(domain.MethodUpdatePrice).(*domain.PriceUpdate)
	require.True(t, ok)
	assert.Equal(t, uint64(29400000), price.Amount)
	assert.Equal(t, "ujuno", price.Denom)

	buy, ok := txn.Payload(domain.MethodBuy).(*domain.MintBuy)
	require.True(t, ok)
	assert.Equal(t, uint64(2), buy.Quantity)

	assert.Equal(t, "juno1buyer", txn.Sender)
	assert.Equal(t, "juno1contract", txn.Recipient)
	assert.Equal(t, uint64(29400000), txn.Amount)
	assert.Equal(t, "ujuno", txn.Unit)
}

func TestParseTxn_UnknownMethod(t *testing.T) {
	env := envelope("HASH2", "10", `{"migrate":{"new_code_id":7}}`, "[]")

	txn, err := explorer.ParseTxn(env)
	require.NoError(t, err)

	unknown, ok := txn.Payload(domain.Method("migrate")).(*domain.UnknownPayload)
	require.True(t, ok)
	assert.JSONEq(t, `{"new_code_id":7}`, string(unknown.Raw))
}

func TestParseTxn_NoTransfer(t *testing.T) {
	env := envelope("HASH3", "10", `{"sell_mode":{"enable":true}}`, "[]")

	txn, err := explorer.ParseTxn(env)
	require.NoError(t, err)
	assert.Empty(t, txn.Sender)
	assert.Zero(t, txn.Amount)
	assert.Empty(t, txn.Unit)
}

func TestParseTxn_Malformed(t *testing.T) {
	tests := []struct {
		name string
		env  tendermint.TxEnvelope
	}{
		{
			name: "invalid height",
			env:  envelope("HASH4", "not-a-number", `{"buy":{}}`, "[]"),
		},
		{
			name: "no payload in blob",
			env: tendermint.TxEnvelope{
				Hash:   "HASH5",
				Height: "10",
				Tx:     base64.StdEncoding.EncodeToString([]byte("no json here")),
			},
		},
		{
			name: "known method with wrong shape",
			env:  envelope("HASH6", "10", `{"update_price":{"price":{"amount":"100"}}}`, "[]"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := explorer.ParseTxn(tt.env)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrMalformedMessage))

			var malformed *domain.MalformedMessageError
			require.True(t, errors.As(err, &malformed))
			assert.Equal(t, tt.env.Hash, malformed.Hash)
		})
	}
}
