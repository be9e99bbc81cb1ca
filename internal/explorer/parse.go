package explorer

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/carbonix/carbonix-indexer/internal/domain"
	"github.com/carbonix/carbonix-indexer/internal/providers/tendermint"
)

var (
	// messagePattern extracts the embedded execute-message JSON from the
	// decoded tx blob
	messagePattern = regexp.MustCompile(`\{.*\}`)
	// amountPattern splits a coin string like "29400000ujuno"
	amountPattern = regexp.MustCompile(`^([0-9]+)([a-z]+)`)
)

// txLog mirrors the tx_result.log JSON structure
type txLog struct {
	Events []struct {
		Type       string `json:"type"`
		Attributes []struct {
			Key   string `json:"key"`
			Value string `json:"value"`
		} `json:"attributes"`
	} `json:"events"`
}

// transferInfo is the sender/recipient/amount triple extracted from event logs
type transferInfo struct {
	Sender    string
	Recipient string
	Amount    uint64
	Unit      string
}

// parseTransfer extracts transfer information from the tx_result log. Absent
// fields stay zero; not every transaction moves funds.
func parseTransfer(logJSON string) transferInfo {
	var logs []txLog
	if err := json.Unmarshal([]byte(logJSON), &logs); err != nil {
		return transferInfo{}
	}

	var info transferInfo
	for _, l := range logs {
		for _, event := range l.Events {
			for _, attr := range event.Attributes {
				switch {
				case attr.Key == "sender" && info.Sender == "":
					info.Sender = attr.Value
				case (attr.Key == "recipient" || attr.Key == "_contract_address") && info.Recipient == "":
					info.Recipient = attr.Value
				case attr.Key == "amount" && event.Type == "transfer" && info.Unit == "":
					if m := amountPattern.FindStringSubmatch(attr.Value); m != nil {
						amount, err := strconv.ParseUint(m[1], 10, 64)
						if err == nil {
							info.Amount = amount
							info.Unit = m[2]
						}
					}
				}
			}
		}
	}
	return info
}

// messageKeys returns the top-level keys of a JSON object in document order.
// Map iteration order would not be stable, and the methods list is ordered.
func messageKeys(raw []byte) ([]string, error) {
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	if _, err := dec.Token(); err != nil { // opening brace
		return nil, err
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		keys = append(keys, key)
		var discard json.RawMessage
		if err := dec.Decode(&discard); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

// ParseTxn normalizes one raw tx_search envelope into a transaction record.
// The message payload is decoded and validated here, once; a payload that does
// not match its method's expected shape makes the whole transaction malformed
// and the caller excludes it from derivation.
func ParseTxn(env tendermint.TxEnvelope) (domain.Txn, error) {
	height, err := strconv.ParseUint(env.Height, 10, 64)
	if err != nil {
		return domain.Txn{}, &domain.MalformedMessageError{
			Hash: env.Hash, Reason: "invalid height " + env.Height,
		}
	}

	// the tx blob is protobuf with the execute message embedded as JSON;
	// decode leniently and strip invalid UTF-8 the same way the indexer
	// renders it
	blob, _ := base64.StdEncoding.DecodeString(env.Tx)
	data := strings.ToValidUTF8(string(blob), "")

	match := messagePattern.FindString(data)
	if match == "" {
		return domain.Txn{}, &domain.MalformedMessageError{
			Hash: env.Hash, Reason: "no message payload in tx data",
		}
	}

	var wire map[string]json.RawMessage
	if err := json.Unmarshal([]byte(match), &wire); err != nil {
		return domain.Txn{}, &domain.MalformedMessageError{
			Hash: env.Hash, Reason: "message payload is not a JSON object",
		}
	}

	keys, err := messageKeys([]byte(match))
	if err != nil {
		return domain.Txn{}, &domain.MalformedMessageError{
			Hash: env.Hash, Reason: "unreadable message keys",
		}
	}

	methods := make([]domain.Method, 0, len(keys))
	message := make(map[domain.Method]domain.Payload, len(keys))
	for _, key := range keys {
		method := domain.Method(key)
		payload, err := domain.DecodePayload(env.Hash, method, wire[key])
		if err != nil {
			return domain.Txn{}, err
		}
		methods = append(methods, method)
		message[method] = payload
	}

	transfer := parseTransfer(env.TxResult.Log)

	return domain.Txn{
		Hash:      env.Hash,
		Height:    height,
		Sender:    transfer.Sender,
		Recipient: transfer.Recipient,
		Amount:    transfer.Amount,
		Unit:      transfer.Unit,
		Methods:   methods,
		Message:   message,
	}, nil
}
