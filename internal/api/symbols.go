package api

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// DefaultSymbols maps the symbols served when no table is configured.
func DefaultSymbols() map[string]string {
	return map[string]string{
		"WETH": "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
		"USDT": "0xdAC17F958D2ee523a2206206994597C13D831ec7",
	}
}

// SymbolTable resolves a token symbol to its checksummed address.
// Symbols are matched case-insensitively.
type SymbolTable struct {
	addrs map[string]string
}

func NewSymbolTable(entries map[string]string) (*SymbolTable, error) {
	addrs := make(map[string]string, len(entries))
	for symbol, address := range entries {
		key := normalizeSymbol(symbol)
		if key == "" {
			return nil, fmt.Errorf("empty symbol for address %s", address)
		}
		address = strings.TrimSpace(address)
		if !common.IsHexAddress(address) {
			return nil, fmt.Errorf("invalid address for symbol %s: %s", symbol, address)
		}
		addrs[key] = common.HexToAddress(address).Hex()
	}
	return &SymbolTable{addrs: addrs}, nil
}

// Resolve returns the address for symbol.
func (t *SymbolTable) Resolve(symbol string) (string, bool) {
	if t == nil {
		return "", false
	}
	addr, ok := t.addrs[normalizeSymbol(symbol)]
	return addr, ok
}

// Len returns the number of known symbols.
func (t *SymbolTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.addrs)
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
