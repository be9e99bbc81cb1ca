package domain_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbonix/carbonix-indexer/internal/domain"
)

func TestDecodePayload_PriceUpdate(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected *domain.PriceUpdate
		wantErr  bool
	}{
		{
			name:     "string amount",
			raw:      `{"price":{"amount":"3400000","denom":"ujuno"}}`,
			expected: &domain.PriceUpdate{Amount: 3400000, Denom: "ujuno"},
		},
		{
			name:     "numeric amount",
			raw:      `{"price":{"amount":3400000,"denom":"ujuno"}}`,
			expected: &domain.PriceUpdate{Amount: 3400000, Denom: "ujuno"},
		},
		{
			name:    "missing denom",
			raw:     `{"price":{"amount":"3400000"}}`,
			wantErr: true,
		},
		{
			name:    "zero amount",
			raw:     `{"price":{"amount":"0","denom":"ujuno"}}`,
			wantErr: true,
		},
		{
			name:    "scalar payload",
			raw:     `42`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := domain.DecodePayload("HASH", domain.MethodUpdatePrice, json.RawMessage(tt.raw))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, domain.ErrMalformedMessage))
				var malformed *domain.MalformedMessageError
				require.True(t, errors.As(err, &malformed))
				assert.Equal(t, "HASH", malformed.Hash)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, payload)
		})
	}
}

func TestDecodePayload_SupplyUpdate(t *testing.T) {
	payload, err := domain.DecodePayload("H", domain.MethodUpdateSupply,
		json.RawMessage(`{"market_supply":"160","reserved_supply":40}`))
	require.NoError(t, err)
	assert.Equal(t, &domain.SupplyUpdate{MarketSupply: 160, ReservedSupply: 40}, payload)
}

func TestDecodePayload_Whitelist(t *testing.T) {
	payload, err := domain.DecodePayload("H", domain.MethodAddToWhitelist,
		json.RawMessage(`{"entries":[{"address":"juno1aaa","nb_slots":5},{"address":"juno1bbb","nb_slots":3}]}`))
	require.NoError(t, err)

	add, ok := payload.(*domain.WhitelistAdd)
	require.True(t, ok)
	require.Len(t, add.Entries, 2)
	assert.Equal(t, domain.WhitelistEntry{Address: "juno1aaa", Slots: 5}, add.Entries[0])
	assert.Equal(t, domain.WhitelistEntry{Address: "juno1bbb", Slots: 3}, add.Entries[1])
}

func TestDecodePayload_ModeToggle(t *testing.T) {
	tests := []struct {
		name     string
		method   domain.Method
		raw      string
		expected domain.Payload
	}{
		{
			name:     "enable object",
			method:   domain.MethodSellMode,
			raw:      `{"enable":true}`,
			expected: &domain.ModeToggle{Enable: true},
		},
		{
			name:     "disable object",
			method:   domain.MethodPreSellMode,
			raw:      `{"enable":false}`,
			expected: &domain.ModeToggle{Enable: false},
		},
		{
			// the same method name also occurs with scalar payloads as
			// an unrelated command, which must not count as a toggle
			name:     "scalar form is not a toggle",
			method:   domain.MethodSellMode,
			raw:      `3`,
			expected: &domain.UnknownPayload{Raw: json.RawMessage(`3`)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := domain.DecodePayload("H", tt.method, json.RawMessage(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, payload)
		})
	}
}

func TestDecodePayload_MintBuy(t *testing.T) {
	payload, err := domain.DecodePayload("H", domain.MethodMultiBuy, json.RawMessage(`{"quantity":"4"}`))
	require.NoError(t, err)
	assert.Equal(t, &domain.MintBuy{Quantity: 4}, payload)

	// plain buy carries no quantity and defaults to one token
	payload, err = domain.DecodePayload("H", domain.MethodBuy, json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Equal(t, &domain.MintBuy{Quantity: 1}, payload)
}

func TestDecodePayload_MaxBuyAtOnce(t *testing.T) {
	// the wire form is a bare number
	payload, err := domain.DecodePayload("H", domain.MethodMaxBuyAtOnce, json.RawMessage(`10`))
	require.NoError(t, err)
	assert.Equal(t, &domain.MaxBuyUpdate{Limit: 10}, payload)
}

func TestDecodePayload_UnknownMethod(t *testing.T) {
	payload, err := domain.DecodePayload("H", domain.Method("transfer_ownership"), json.RawMessage(`{"to":"juno1ccc"}`))
	require.NoError(t, err)

	unknown, ok := payload.(*domain.UnknownPayload)
	require.True(t, ok)
	assert.JSONEq(t, `{"to":"juno1ccc"}`, string(unknown.Raw))
}
