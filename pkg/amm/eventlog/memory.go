package eventlog

import (
	"sync"

	"github.com/holiman/uint256"

	"github.com/hiveswap/ammcore/pkg/amm/types"
)

// Memory is an append-only, concurrency-safe in-process event sink. Tests
// use it to assert on the exact event sequence spec.md §6/§8 calls for.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

// NewMemory returns an empty in-memory sink.
func NewMemory() *Memory {
	return &Memory{}
}

// Events returns a snapshot of every event recorded so far, in emission
// order.
func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// Reset discards all recorded events.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
}

func (m *Memory) append(e Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
}

func (m *Memory) EmitTransfer(pool, from, to types.Address, value *uint256.Int) {
	m.append(Event{Kind: KindTransfer, Emitter: pool, From: from, To: to, Value: value})
}

func (m *Memory) EmitApproval(pool, owner, spender types.Address, value *uint256.Int) {
	m.append(Event{Kind: KindApproval, Emitter: pool, Owner: owner, Spender: spender, Value: value})
}

func (m *Memory) EmitMint(pool, sender types.Address, amount0, amount1 *uint256.Int) {
	m.append(Event{Kind: KindMint, Emitter: pool, Sender: sender, Amount0: amount0, Amount1: amount1})
}

func (m *Memory) EmitBurn(pool, sender types.Address, amount0, amount1 *uint256.Int, to types.Address) {
	m.append(Event{Kind: KindBurn, Emitter: pool, Sender: sender, Amount0: amount0, Amount1: amount1, To: to})
}

func (m *Memory) EmitSwap(pool, sender types.Address, amount0In, amount1In, amount0Out, amount1Out *uint256.Int, to types.Address) {
	m.append(Event{
		Kind: KindSwap, Emitter: pool, Sender: sender,
		Amount0In: amount0In, Amount1In: amount1In,
		Amount0Out: amount0Out, Amount1Out: amount1Out,
		To: to,
	})
}

func (m *Memory) EmitSync(pool types.Address, reserve0, reserve1 *uint256.Int) {
	m.append(Event{Kind: KindSync, Emitter: pool, Reserve0: reserve0, Reserve1: reserve1})
}

func (m *Memory) EmitPairCreated(factory, asset0, asset1, pool types.Address, index uint64) {
	m.append(Event{Kind: KindPairCreated, Emitter: factory, Asset0: asset0, Asset1: asset1, Pool: pool, Index: index})
}
