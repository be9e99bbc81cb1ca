package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/carbonix/carbonix-indexer/internal/adapter"
)

// ContractRegistry defines the interface for the tracked-contract registry
//
//go:generate mockgen -source=contracts.go -destination=../mocks/contract_registry.go -package=mocks -mock_names=ContractRegistry=MockContractRegistry
type ContractRegistry interface {
	// Addresses returns every registered contract address, sorted
	Addresses() []string

	// Contains checks if a contract address is registered
	Contains(address string) bool

	// Label returns the display label of a registered contract, empty
	// when unknown
	Label(address string) string
}

// ContractData represents the structure of the contracts.json file.
// Key format: contract address -> display label
type ContractData map[string]string

// contractRegistry is the internal implementation of ContractRegistry
type contractRegistry struct {
	labels map[string]string
}

// LoadContracts loads the contract registry from a JSON file
func LoadContracts(filePath string, fs adapter.FileSystem, jsonAdapter adapter.JSON) (ContractRegistry, error) {
	data, err := fs.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read contracts file: %w", err)
	}

	var contractData ContractData
	if err := jsonAdapter.Unmarshal(data, &contractData); err != nil {
		return nil, fmt.Errorf("failed to parse contracts JSON: %w", err)
	}

	reg := &contractRegistry{
		labels: make(map[string]string, len(contractData)),
	}
	for address, label := range contractData {
		address = strings.TrimSpace(address)
		if !strings.HasPrefix(address, "juno1") {
			return nil, fmt.Errorf("invalid contract address %q in %s", address, filePath)
		}
		reg.labels[address] = label
	}

	return reg, nil
}

// Addresses returns every registered contract address, sorted
func (r *contractRegistry) Addresses() []string {
	addresses := make([]string, 0, len(r.labels))
	for address := range r.labels {
		addresses = append(addresses, address)
	}
	sort.Strings(addresses)
	return addresses
}

// Contains checks if a contract address is registered
func (r *contractRegistry) Contains(address string) bool {
	if r == nil {
		return false
	}
	_, ok := r.labels[address]
	return ok
}

// Label returns the display label of a registered contract
func (r *contractRegistry) Label(address string) string {
	if r == nil {
		return ""
	}
	return r.labels[address]
}

// Merge unions registry addresses with a configured list, deduplicated and
// sorted; either source may be empty
func Merge(reg ContractRegistry, configured []string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(address string) {
		if address == "" || seen[address] {
			return
		}
		seen[address] = true
		out = append(out, address)
	}
	if reg != nil {
		for _, address := range reg.Addresses() {
			add(address)
		}
	}
	for _, address := range configured {
		add(address)
	}
	sort.Strings(out)
	return out
}
