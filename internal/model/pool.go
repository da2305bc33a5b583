package model

// PoolIdentity is a configured pool: a "<symbolA>/<symbolB>" pair name and its contract address.
type PoolIdentity struct {
	Name    string `json:"name" mapstructure:"name"`
	Address string `json:"address" mapstructure:"address"`
}
