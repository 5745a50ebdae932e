// Package ledger provides a reference types.AssetLedger implementation, an
// in-process balance table in the spirit of the host shim's shimBalances
// map: a plain mutex-guarded map standing in for the real settlement layer
// (an on-chain token contract, a custodial balance service) a production
// deployment would inject instead.
package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/holiman/uint256"

	"github.com/hiveswap/ammcore/pkg/amm/types"
)

type balanceKey struct {
	asset, owner types.Address
}

// Memory is a minimal types.AssetLedger backed by an in-memory balance
// table. It never creates or destroys value on its own: Credit is the only
// way balances increase, modeling an external deposit.
type Memory struct {
	mu       sync.Mutex
	balances map[balanceKey]*uint256.Int
}

// NewMemory returns an empty ledger.
func NewMemory() *Memory {
	return &Memory{balances: make(map[balanceKey]*uint256.Int)}
}

func (m *Memory) get(k balanceKey) *uint256.Int {
	if b, ok := m.balances[k]; ok {
		return b
	}
	return uint256.NewInt(0)
}

// BalanceOf implements types.AssetLedger.
func (m *Memory) BalanceOf(_ context.Context, asset, owner types.Address) (*uint256.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return new(uint256.Int).Set(m.get(balanceKey{asset, owner})), nil
}

// Transfer implements types.AssetLedger, moving amount of asset out of the
// ledger's notion of "the pool calling this" and to the named recipient.
// Memory has no notion of a transfer source beyond the pool's own holding,
// consistent with the pool always calling Transfer to pay out of its own
// reserves.
func (m *Memory) Transfer(_ context.Context, asset, to types.Address, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	k := balanceKey{asset, to}
	m.balances[k] = new(uint256.Int).Add(m.get(k), amount)
	return nil
}

// Reclaim implements types.AssetLedger: it removes amount of asset from
// to's balance, undoing a Transfer the pool previously issued to it. It
// mirrors the host shim's decBal, returning an error instead of panicking
// on insufficient balance (to has already spent or moved the funds).
func (m *Memory) Reclaim(_ context.Context, asset, to types.Address, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	k := balanceKey{asset, to}
	cur := m.get(k)
	if cur.Lt(amount) {
		return fmt.Errorf("ledger: insufficient balance for %s", to)
	}
	m.balances[k] = new(uint256.Int).Sub(cur, amount)
	return nil
}

// Credit increases owner's balance of asset by amount, modeling an
// external deposit (a user funding the pool ahead of Mint/Swap). Tests use
// this to seed state the way main_test.go's ShimSetBalance does.
func (m *Memory) Credit(asset, owner types.Address, amount *uint256.Int) {
	if amount == nil || amount.IsZero() {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	k := balanceKey{asset, owner}
	m.balances[k] = new(uint256.Int).Add(m.get(k), amount)
}
