package pairs

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Storage layout of a UniswapV2-style pair contract:
//
//	slot 5  factory
//	slot 6  token0
//	slot 7  token1
//	slot 8  reserve0, reserve1, blockTimestampLast
const (
	Token0Slot = 6
	Token1Slot = 7
)

const wordLength = common.HashLength

// NormalizeAddress parses a hex address (with or without 0x, any case) and returns it.
func NormalizeAddress(input string) (common.Address, error) {
	input = strings.TrimSpace(input)
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, input)
	}
	return common.HexToAddress(input), nil
}

// DecodeAddressWord interprets a 32-byte storage word as an address.
// Only the low 20 bytes are kept; the high 12 bytes are masked off.
func DecodeAddressWord(word []byte) (common.Address, error) {
	if len(word) != wordLength {
		return common.Address{}, fmt.Errorf("%w: storage word has %d bytes, want %d", ErrRPCQuery, len(word), wordLength)
	}
	return common.BytesToAddress(word[wordLength-common.AddressLength:]), nil
}

// SplitPairName splits "<symbolA>/<symbolB>" and returns (token0, token1).
// The second component is token0 and the first is token1, matching pools named QUOTE/BASE.
func SplitPairName(name string) (string, string, error) {
	parts := strings.Split(name, "/")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("%w: %q has %d components, want 2", ErrInvalidPoolName, name, len(parts))
	}
	first := strings.TrimSpace(parts[0])
	second := strings.TrimSpace(parts[1])
	if first == "" || second == "" {
		return "", "", fmt.Errorf("%w: %q has an empty symbol", ErrInvalidPoolName, name)
	}
	return second, first, nil
}

func slotKey(slot int64) common.Hash {
	return common.BigToHash(big.NewInt(slot))
}
