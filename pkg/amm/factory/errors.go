package factory

import "errors"

var (
	ErrIdenticalAddresses = errors.New("factory: IDENTICAL_ADDRESSES")
	ErrZeroAddress        = errors.New("factory: ZERO_ADDRESS")
	ErrPairExists         = errors.New("factory: PAIR_EXISTS")
	ErrForbidden          = errors.New("factory: FORBIDDEN")
)
