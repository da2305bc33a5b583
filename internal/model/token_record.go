package model

// TokenRecord holds the token pair decoded from a pool's storage.
// Addresses are EIP-55 checksummed hex strings.
type TokenRecord struct {
	PoolAddr   string `json:"pool_addr"`
	Token0     string `json:"token0"`
	Token1     string `json:"token1"`
	Token0Addr string `json:"token0_addr"`
	Token1Addr string `json:"token1_addr"`
}

// HasToken reports whether addr is either side of the pair.
func (r TokenRecord) HasToken(addr string) bool {
	return r.Token0Addr == addr || r.Token1Addr == addr
}
