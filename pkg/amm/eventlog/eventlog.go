// Package eventlog models the observable events spec.md §6 requires the
// pool and factory to emit verbatim: Transfer, Approval, Mint, Burn, Swap,
// Sync, and PairCreated. Sinks are purely observational — pool and factory
// logic never branches on a sink's success, and a nil sink is a no-op, so
// nothing about core economics ever depends on an event being durably
// recorded.
package eventlog

import (
	"github.com/holiman/uint256"

	"github.com/hiveswap/ammcore/pkg/amm/types"
)

// Kind identifies which of the seven observable events an Event carries.
type Kind int

const (
	KindTransfer Kind = iota
	KindApproval
	KindMint
	KindBurn
	KindSwap
	KindSync
	KindPairCreated
)

func (k Kind) String() string {
	switch k {
	case KindTransfer:
		return "Transfer"
	case KindApproval:
		return "Approval"
	case KindMint:
		return "Mint"
	case KindBurn:
		return "Burn"
	case KindSwap:
		return "Swap"
	case KindSync:
		return "Sync"
	case KindPairCreated:
		return "PairCreated"
	default:
		return "Unknown"
	}
}

// Event is the union of every field any of the seven event kinds carries.
// Only the fields relevant to Kind are populated; this mirrors the way a
// host event log stores a flat topic/data record regardless of shape.
type Event struct {
	Kind Kind

	// Emitter identifies the pool (or factory, for PairCreated) that
	// raised the event.
	Emitter types.Address

	From, To, Owner, Spender, Sender, Asset0, Asset1, Pool Address
	Value, Amount0, Amount1, Amount0In, Amount1In, Amount0Out, Amount1Out *uint256.Int
	Reserve0, Reserve1                                                   *uint256.Int
	Index                                                                 uint64
}

// Address is a local alias kept for readability inside this package's
// struct literals.
type Address = types.Address

// EventSink is the destination for emitted events. Implementations must be
// safe for concurrent use: pool methods may be called from multiple
// goroutines under the pool's own reentrancy guard, but the guard protects
// pool state, not the sink.
type EventSink interface {
	EmitTransfer(pool, from, to types.Address, value *uint256.Int)
	EmitApproval(pool, owner, spender types.Address, value *uint256.Int)
	EmitMint(pool, sender types.Address, amount0, amount1 *uint256.Int)
	EmitBurn(pool, sender types.Address, amount0, amount1 *uint256.Int, to types.Address)
	EmitSwap(pool, sender types.Address, amount0In, amount1In, amount0Out, amount1Out *uint256.Int, to types.Address)
	EmitSync(pool types.Address, reserve0, reserve1 *uint256.Int)
	EmitPairCreated(factory, asset0, asset1, pool types.Address, index uint64)
}

// noop discards every event; it backs a nil EventSink so pool/factory code
// never needs a nil check at the call site.
type noop struct{}

func (noop) EmitTransfer(types.Address, types.Address, types.Address, *uint256.Int)             {}
func (noop) EmitApproval(types.Address, types.Address, types.Address, *uint256.Int)             {}
func (noop) EmitMint(types.Address, types.Address, *uint256.Int, *uint256.Int)                  {}
func (noop) EmitBurn(types.Address, types.Address, *uint256.Int, *uint256.Int, types.Address)   {}
func (noop) EmitSync(types.Address, *uint256.Int, *uint256.Int)                                 {}
func (noop) EmitPairCreated(types.Address, types.Address, types.Address, types.Address, uint64) {}
func (noop) EmitSwap(types.Address, types.Address, *uint256.Int, *uint256.Int, *uint256.Int, *uint256.Int, types.Address) {
}

// Noop returns the shared no-op sink.
func Noop() EventSink { return noop{} }

// OrNoop returns sink unchanged, or the no-op sink if sink is nil.
func OrNoop(sink EventSink) EventSink {
	if sink == nil {
		return noop{}
	}
	return sink
}
