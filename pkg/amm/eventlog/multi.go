package eventlog

import (
	"github.com/holiman/uint256"

	"github.com/hiveswap/ammcore/pkg/amm/types"
)

// Multi fans a single event out to several sinks, e.g. an in-memory sink
// for tests plus a zap sink for ambient logging, or a zap sink plus a
// Postgres sink in production.
type Multi struct {
	sinks []EventSink
}

// NewMulti returns a sink that forwards every call to each of sinks, in
// order. Nil entries are skipped.
func NewMulti(sinks ...EventSink) *Multi {
	filtered := make([]EventSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			filtered = append(filtered, s)
		}
	}
	return &Multi{sinks: filtered}
}

func (m *Multi) EmitTransfer(pool, from, to types.Address, value *uint256.Int) {
	for _, s := range m.sinks {
		s.EmitTransfer(pool, from, to, value)
	}
}

func (m *Multi) EmitApproval(pool, owner, spender types.Address, value *uint256.Int) {
	for _, s := range m.sinks {
		s.EmitApproval(pool, owner, spender, value)
	}
}

func (m *Multi) EmitMint(pool, sender types.Address, amount0, amount1 *uint256.Int) {
	for _, s := range m.sinks {
		s.EmitMint(pool, sender, amount0, amount1)
	}
}

func (m *Multi) EmitBurn(pool, sender types.Address, amount0, amount1 *uint256.Int, to types.Address) {
	for _, s := range m.sinks {
		s.EmitBurn(pool, sender, amount0, amount1, to)
	}
}

func (m *Multi) EmitSwap(pool, sender types.Address, amount0In, amount1In, amount0Out, amount1Out *uint256.Int, to types.Address) {
	for _, s := range m.sinks {
		s.EmitSwap(pool, sender, amount0In, amount1In, amount0Out, amount1Out, to)
	}
}

func (m *Multi) EmitSync(pool types.Address, reserve0, reserve1 *uint256.Int) {
	for _, s := range m.sinks {
		s.EmitSync(pool, reserve0, reserve1)
	}
}

func (m *Multi) EmitPairCreated(factory, asset0, asset1, pool types.Address, index uint64) {
	for _, s := range m.sinks {
		s.EmitPairCreated(factory, asset0, asset1, pool, index)
	}
}
