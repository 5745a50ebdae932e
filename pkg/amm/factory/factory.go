// Package factory deterministically creates at most one pool per
// unordered asset pair and administers the protocol-fee recipient.
package factory

import (
	"bytes"
	"sync"
	"time"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/hiveswap/ammcore/internal/addressing"
	"github.com/hiveswap/ammcore/pkg/amm/eventlog"
	"github.com/hiveswap/ammcore/pkg/amm/pool"
	"github.com/hiveswap/ammcore/pkg/amm/types"
)

type pairKey struct {
	a, b types.Address
}

// Factory holds the protocol-fee recipient, the administrator that may
// rotate it, and the registry of every pool it has created.
type Factory struct {
	mu sync.Mutex

	self        types.Address
	feeToSetter types.Address
	feeTo       types.Address

	deriver addressing.Deriver
	ledger  types.AssetLedger
	events  eventlog.EventSink
	chainID *uint256.Int
	logger  *zap.Logger
	clock   func() time.Time

	pairs    map[pairKey]types.Address
	pools    map[types.Address]*pool.Pool
	allPairs []types.Address
}

// New constructs a factory with no pairs registered yet. deriver may be
// nil, defaulting to addressing.Default.
func New(
	self types.Address,
	feeToSetter types.Address,
	ledger types.AssetLedger,
	events eventlog.EventSink,
	chainID *uint256.Int,
	deriver addressing.Deriver,
	logger *zap.Logger,
	clock func() time.Time,
) *Factory {
	if deriver == nil {
		deriver = addressing.Default
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Factory{
		self:        self,
		feeToSetter: feeToSetter,
		deriver:     deriver,
		ledger:      ledger,
		events:      eventlog.OrNoop(events),
		chainID:     chainID,
		logger:      logger,
		clock:       clock,
		pairs:       make(map[pairKey]types.Address),
		pools:       make(map[types.Address]*pool.Pool),
	}
}

// FeeTo implements types.FeeOracle.
func (f *Factory) FeeTo() types.Address {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.feeTo
}

func canonicalOrder(tokenA, tokenB types.Address) (types.Address, types.Address) {
	if bytes.Compare(tokenA.Bytes(), tokenB.Bytes()) < 0 {
		return tokenA, tokenB
	}
	return tokenB, tokenA
}

// CreatePair deterministically constructs and registers a pool for the
// unordered pair (tokenA, tokenB).
func (f *Factory) CreatePair(tokenA, tokenB types.Address) (*pool.Pool, error) {
	if tokenA == tokenB {
		return nil, ErrIdenticalAddresses
	}
	asset0, asset1 := canonicalOrder(tokenA, tokenB)
	if asset0 == types.ZeroAddress {
		return nil, ErrZeroAddress
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	key := pairKey{asset0, asset1}
	if _, exists := f.pairs[key]; exists {
		f.logger.Warn("factory: pair already exists", zap.Stringer("asset0", asset0), zap.Stringer("asset1", asset1))
		return nil, ErrPairExists
	}

	poolAddr := f.deriver.Derive(f.self, asset0, asset1)
	p := pool.New(poolAddr, f, asset0, asset1, f.ledger, f.events, f.chainID, f.logger, f.clock)

	f.pairs[pairKey{asset0, asset1}] = poolAddr
	f.pairs[pairKey{asset1, asset0}] = poolAddr
	f.pools[poolAddr] = p
	f.allPairs = append(f.allPairs, poolAddr)
	index := uint64(len(f.allPairs))

	f.events.EmitPairCreated(f.self, asset0, asset1, poolAddr, index)
	f.logger.Info("factory: pair created", zap.Stringer("asset0", asset0), zap.Stringer("asset1", asset1), zap.Stringer("pool", poolAddr), zap.Uint64("index", index))
	return p, nil
}

// GetPair returns the pool address registered for (tokenA, tokenB) in
// either order, or the null address if none exists.
func (f *Factory) GetPair(tokenA, tokenB types.Address) types.Address {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pairs[pairKey{tokenA, tokenB}]
}

// GetPool returns the live pool instance for addr, or nil.
func (f *Factory) GetPool(addr types.Address) *pool.Pool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pools[addr]
}

// AllPairs returns every pool address created so far, in insertion order.
func (f *Factory) AllPairs() []types.Address {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]types.Address, len(f.allPairs))
	copy(out, f.allPairs)
	return out
}

// SetFeeTo changes the protocol-fee recipient. The null address disables
// protocol fees.
func (f *Factory) SetFeeTo(caller, newRecipient types.Address) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if caller != f.feeToSetter {
		return ErrForbidden
	}
	f.feeTo = newRecipient
	f.logger.Info("factory: feeTo set", zap.Stringer("feeTo", newRecipient))
	return nil
}

// SetFeeToSetter rotates the administrator allowed to call SetFeeTo and
// SetFeeToSetter.
func (f *Factory) SetFeeToSetter(caller, newAdmin types.Address) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if caller != f.feeToSetter {
		return ErrForbidden
	}
	f.feeToSetter = newAdmin
	f.logger.Info("factory: feeToSetter set", zap.Stringer("feeToSetter", newAdmin))
	return nil
}
