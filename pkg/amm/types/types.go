// Package types holds the handle and amount types shared by every AMM
// component, plus the external-collaborator interfaces spec'd in §6: the
// asset ledger, the flash-swap callback, and the factory's fee oracle.
//
// Handles (assets, pools, owners, spenders) are all represented by
// go-ethereum's common.Address: an opaque 160-bit value, which is exactly
// what spec.md calls for and is already the address type every
// go-ethereum-based repo in the pack uses.
package types

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Address is the 160-bit handle naming an asset, a pool, a factory, or a
// share-token owner/spender.
type Address = common.Address

// ZeroAddress is the null handle: the disabled feeTo recipient, the
// sentinel "no counterparty" used by mint/burn events, and an invalid pair
// endpoint.
var ZeroAddress = common.Address{}

// MaxUint256 is the sentinel allowance value ("unlimited approval") that
// transferFrom must leave unchanged rather than decrement.
func MaxUint256() *uint256.Int {
	return new(uint256.Int).Not(uint256.NewInt(0))
}

// AssetLedger is the out-of-scope fungible-asset subsystem's contract as
// consumed by the pool (spec.md §6): balance lookups and transfers of a
// named asset. The pool never trusts a caller-declared amount; it always
// derives inputs from the delta between two BalanceOf observations.
type AssetLedger interface {
	BalanceOf(ctx context.Context, asset, owner Address) (*uint256.Int, error)
	Transfer(ctx context.Context, asset, to Address, amount *uint256.Int) error

	// Reclaim reverses a Transfer the pool itself issued: it decrements
	// to's balance of asset by amount. A guarded operation that pays an
	// output out optimistically and then fails a later invariant check
	// (spec.md §7's "all errors are fatal ... no partial state change")
	// calls this to undo that payout before returning the error, since
	// the pool has no other way to roll back a transfer that already
	// landed on an external ledger. It fails if to no longer holds the
	// funds.
	Reclaim(ctx context.Context, asset, to Address, amount *uint256.Int) error
}

// SwapCallback is the flash-swap recipient's capability (spec.md §6): the
// pool invokes it synchronously in the middle of Swap when the caller
// supplies non-empty data, and the recipient must have delivered the
// required input asset(s) to the pool by the time it returns.
type SwapCallback interface {
	OnSwap(ctx context.Context, initiator Address, amount0Out, amount1Out *uint256.Int, data []byte) error
}

// FeeOracle is the factory's fee-query contract as consumed by the pool
// (spec.md §6): the pool calls FeeTo once per liquidity event to learn
// whether protocol fees are enabled and, if so, who receives them.
type FeeOracle interface {
	FeeTo() Address
}
