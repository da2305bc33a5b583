package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbolTableResolve(t *testing.T) {
	table, err := NewSymbolTable(map[string]string{
		"weth": "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2",
		"USDT": "0xdAC17F958D2ee523a2206206994597C13D831ec7",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())

	addr, ok := table.Resolve("WETH")
	require.True(t, ok)
	assert.Equal(t, "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", addr)

	addr, ok = table.Resolve(" usdt ")
	require.True(t, ok)
	assert.Equal(t, "0xdAC17F958D2ee523a2206206994597C13D831ec7", addr)

	_, ok = table.Resolve("DAI")
	assert.False(t, ok)
	_, ok = table.Resolve("")
	assert.False(t, ok)
}

func TestSymbolTableRejectsBadEntries(t *testing.T) {
	_, err := NewSymbolTable(map[string]string{"WETH": "0x1234"})
	require.Error(t, err)

	_, err = NewSymbolTable(map[string]string{" ": "0xdAC17F958D2ee523a2206206994597C13D831ec7"})
	require.Error(t, err)
}

func TestDefaultSymbols(t *testing.T) {
	table, err := NewSymbolTable(DefaultSymbols())
	require.NoError(t, err)

	_, ok := table.Resolve("WETH")
	assert.True(t, ok)
	_, ok = table.Resolve("USDT")
	assert.True(t, ok)
}

func TestNilSymbolTable(t *testing.T) {
	var table *SymbolTable
	_, ok := table.Resolve("WETH")
	assert.False(t, ok)
	assert.Equal(t, 0, table.Len())
}
