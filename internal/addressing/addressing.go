// Package addressing derives deterministic pool addresses from a factory
// and an asset pair, a keccak-based stand-in for a CREATE2-style scheme,
// so a pool's address can be computed off-chain without a registry
// lookup.
package addressing

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/hiveswap/ammcore/pkg/amm/types"
)

// Deriver computes the address a pool for (asset0, asset1) created by
// factory would live at. Implementations must be pure functions of their
// inputs, so that a pool's address is a deterministic function of the
// factory and the canonical pair.
type Deriver interface {
	Derive(factory, asset0, asset1 types.Address) types.Address
}

// Keccak derives an address as the low 20 bytes of
// keccak256(factory || asset0 || asset1), with asset0/asset1 already
// sorted by the caller.
type Keccak struct{}

// Derive implements Deriver.
func (Keccak) Derive(factory, asset0, asset1 types.Address) types.Address {
	buf := make([]byte, 0, 3*len(factory))
	buf = append(buf, factory.Bytes()...)
	buf = append(buf, asset0.Bytes()...)
	buf = append(buf, asset1.Bytes()...)
	return common.BytesToAddress(crypto.Keccak256Hash(buf).Bytes())
}

// Default is the Deriver factories use unless a test substitutes another
// one.
var Default Deriver = Keccak{}
