package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Payload is a decoded message payload for one invoked method. Known methods
// decode into their tagged variant below; anything else (including the scalar
// form of a toggle method name) decodes into UnknownPayload, which derivations
// requiring a specific shape simply skip.
type Payload interface {
	payloadKind() string
}

// Uint accepts both JSON numbers and numeric strings; CosmWasm messages use
// either form depending on the contract version.
type Uint uint64

func (u *Uint) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 1 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return err
		}
		*u = Uint(v)
		return nil
	}
	var v uint64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*u = Uint(v)
	return nil
}

// PriceUpdate is the payload of update_price
type PriceUpdate struct {
	Amount uint64
	Denom  string
}

func (*PriceUpdate) payloadKind() string { return "price_update" }

// SupplyUpdate is the payload of update_supply
type SupplyUpdate struct {
	MarketSupply   uint64
	ReservedSupply uint64
}

func (*SupplyUpdate) payloadKind() string { return "supply_update" }

// MetadataUpdate is the payload of update_metadata
type MetadataUpdate struct {
	Name        string
	Description string
	Image       string
}

func (*MetadataUpdate) payloadKind() string { return "metadata_update" }

// MaxBuyUpdate is the payload of max_buy_at_once; the wire form is a bare number
type MaxBuyUpdate struct {
	Limit uint64
}

func (*MaxBuyUpdate) payloadKind() string { return "max_buy_update" }

// AdminAdd is the payload of add_admin
type AdminAdd struct {
	Address string
}

func (*AdminAdd) payloadKind() string { return "admin_add" }

// WhitelistEntry is one allocation slot grant inside an add_to_whitelist payload
type WhitelistEntry struct {
	Address string `json:"address"`
	Slots   uint64 `json:"nb_slots"`
}

// WhitelistAdd is the payload of add_to_whitelist
type WhitelistAdd struct {
	Entries []WhitelistEntry
}

func (*WhitelistAdd) payloadKind() string { return "whitelist_add" }

// ModeToggle is the object form of pre_sell_mode / sell_mode. The same method
// names also appear with scalar payloads as unrelated commands; those decode
// into UnknownPayload and never count as toggle events.
type ModeToggle struct {
	Enable bool
}

func (*ModeToggle) payloadKind() string { return "mode_toggle" }

// MintBuy is the payload of buy and multi_buy
type MintBuy struct {
	Quantity uint64
}

func (*MintBuy) payloadKind() string { return "mint_buy" }

// UnknownPayload carries the raw payload of a method the reconstruction does
// not model
type UnknownPayload struct {
	Raw json.RawMessage
}

func (*UnknownPayload) payloadKind() string { return "unknown" }

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// DecodePayload decodes the raw payload of one invoked method into its tagged
// variant. Unknown methods are not errors; a known method whose payload does
// not match its expected shape is a MalformedMessageError and the caller
// excludes the transaction from derivation.
func DecodePayload(hash string, method Method, raw json.RawMessage) (Payload, error) {
	malformed := func(reason string) error {
		return &MalformedMessageError{Hash: hash, Method: string(method), Reason: reason}
	}

	switch method {
	case MethodUpdatePrice:
		var wire struct {
			Price struct {
				Amount Uint   `json:"amount"`
				Denom  string `json:"denom"`
			} `json:"price"`
		}
		if !isObject(raw) {
			return nil, malformed("expected object payload")
		}
		if err := json.Unmarshal(raw, &wire); err != nil {
			return nil, malformed(err.Error())
		}
		if wire.Price.Denom == "" {
			return nil, malformed("missing price denom")
		}
		if wire.Price.Amount == 0 {
			// a zero price would divide every mint by zero downstream
			return nil, malformed("zero price amount")
		}
		return &PriceUpdate{Amount: uint64(wire.Price.Amount), Denom: wire.Price.Denom}, nil

	case MethodUpdateSupply:
		var wire struct {
			MarketSupply   Uint `json:"market_supply"`
			ReservedSupply Uint `json:"reserved_supply"`
		}
		if !isObject(raw) {
			return nil, malformed("expected object payload")
		}
		if err := json.Unmarshal(raw, &wire); err != nil {
			return nil, malformed(err.Error())
		}
		return &SupplyUpdate{
			MarketSupply:   uint64(wire.MarketSupply),
			ReservedSupply: uint64(wire.ReservedSupply),
		}, nil

	case MethodUpdateMetadata:
		var wire struct {
			Metadata struct {
				Name        string `json:"name"`
				Description string `json:"description"`
				Image       string `json:"image"`
			} `json:"metadata"`
		}
		if !isObject(raw) {
			return nil, malformed("expected object payload")
		}
		if err := json.Unmarshal(raw, &wire); err != nil {
			return nil, malformed(err.Error())
		}
		return &MetadataUpdate{
			Name:        wire.Metadata.Name,
			Description: wire.Metadata.Description,
			Image:       wire.Metadata.Image,
		}, nil

	case MethodMaxBuyAtOnce:
		var limit Uint
		if err := json.Unmarshal(raw, &limit); err != nil {
			return nil, malformed(err.Error())
		}
		return &MaxBuyUpdate{Limit: uint64(limit)}, nil

	case MethodAddAdmin:
		var wire struct {
			Address string `json:"address"`
		}
		if !isObject(raw) {
			return nil, malformed("expected object payload")
		}
		if err := json.Unmarshal(raw, &wire); err != nil {
			return nil, malformed(err.Error())
		}
		if wire.Address == "" {
			return nil, malformed("missing admin address")
		}
		return &AdminAdd{Address: wire.Address}, nil

	case MethodAddToWhitelist:
		var wire struct {
			Entries []WhitelistEntry `json:"entries"`
		}
		if !isObject(raw) {
			return nil, malformed("expected object payload")
		}
		if err := json.Unmarshal(raw, &wire); err != nil {
			return nil, malformed(err.Error())
		}
		return &WhitelistAdd{Entries: wire.Entries}, nil

	case MethodPreSellMode, MethodSellMode:
		// only the object form is a toggle event
		if !isObject(raw) {
			return &UnknownPayload{Raw: raw}, nil
		}
		var wire struct {
			Enable bool `json:"enable"`
		}
		if err := json.Unmarshal(raw, &wire); err != nil {
			return nil, malformed(err.Error())
		}
		return &ModeToggle{Enable: wire.Enable}, nil

	case MethodBuy, MethodMultiBuy:
		var wire struct {
			Quantity Uint `json:"quantity"`
		}
		if isObject(raw) {
			if err := json.Unmarshal(raw, &wire); err != nil {
				return nil, malformed(err.Error())
			}
		}
		quantity := uint64(wire.Quantity)
		if quantity == 0 {
			quantity = 1
		}
		return &MintBuy{Quantity: quantity}, nil

	default:
		return &UnknownPayload{Raw: raw}, nil
	}
}
