package pairs

import "errors"

var (
	// ErrNoPools is returned when Fetch is called without any pool.
	ErrNoPools = errors.New("pool list is empty")
	// ErrInvalidAddress marks a pool address that is not a 20-byte hex address.
	ErrInvalidAddress = errors.New("invalid address")
	// ErrInvalidPoolName marks a pool name that is not "<symbolA>/<symbolB>".
	ErrInvalidPoolName = errors.New("invalid pool name")
	// ErrRPCQuery marks a failed or unusable storage read.
	ErrRPCQuery = errors.New("rpc query failed")
)
