// Package pool implements a constant-product two-asset liquidity pool:
// reserve accounting, liquidity-share mint/burn, swaps with an optional
// flash-swap callback, protocol-fee accrual, and a time-weighted price
// accumulator, all guarded by a per-pool reentrancy flag.
package pool

import (
	"context"
	"sync"
	"time"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/hiveswap/ammcore/internal/fixedpoint"
	"github.com/hiveswap/ammcore/internal/isqrt"
	"github.com/hiveswap/ammcore/pkg/amm/eventlog"
	"github.com/hiveswap/ammcore/pkg/amm/sharetoken"
	"github.com/hiveswap/ammcore/pkg/amm/types"
)

// MinimumLiquidity is permanently locked to the null holder on a pool's
// first mint, keeping total supply strictly positive forever after.
const MinimumLiquidity = 1000

const feeNumerator = 3
const feeDenominator = 1000

var maxReserve = new(uint256.Int).Lsh(uint256.NewInt(1), 112) // 2^112, exclusive upper bound

// Pool is one instance per unordered asset pair.
type Pool struct {
	sharetoken.Token

	self    types.Address
	factory types.FeeOracle
	asset0  types.Address
	asset1  types.Address
	ledger  types.AssetLedger
	events  eventlog.EventSink
	logger  *zap.Logger
	clock   func() time.Time

	guardMu sync.Mutex // protects only the locked flag, not the operation body
	locked  bool

	reserve0, reserve1                   *uint256.Int
	blockTimestampLast                   uint32
	price0CumulativeLast, price1CumulativeLast *uint256.Int
	kLast                                 *uint256.Int
}

// New constructs a pool for the canonical pair (asset0, asset1), already
// ordered by the caller (the factory). self is the pool's own address,
// used as the owner key when querying the asset ledger and as the
// Transfer/Approval/Sync emitter.
func New(
	self types.Address,
	factory types.FeeOracle,
	asset0, asset1 types.Address,
	ledger types.AssetLedger,
	events eventlog.EventSink,
	chainID *uint256.Int,
	logger *zap.Logger,
	clock func() time.Time,
) *Pool {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = time.Now
	}
	sink := eventlog.OrNoop(events)
	p := &Pool{
		self:                 self,
		factory:              factory,
		asset0:               asset0,
		asset1:               asset1,
		ledger:               ledger,
		events:               sink,
		logger:               logger,
		clock:                clock,
		reserve0:             uint256.NewInt(0),
		reserve1:             uint256.NewInt(0),
		price0CumulativeLast: uint256.NewInt(0),
		price1CumulativeLast: uint256.NewInt(0),
		kLast:                uint256.NewInt(0),
	}
	p.Token = *sharetoken.New(self, chainID, sink, p.nowUnix)
	return p
}

func (p *Pool) nowUnix() uint64 {
	return uint64(uint32(p.clock().Unix()))
}

// enter acquires the reentrancy flag, returning an unlock function that
// must be deferred by the caller. The flag itself is the only thing the
// mutex protects; the body of the guarded operation runs unguarded,
// relying on the flag to serialize all guarded entry points against each
// other.
func (p *Pool) enter() (func(), error) {
	p.guardMu.Lock()
	defer p.guardMu.Unlock()
	if p.locked {
		p.logger.Warn("pool: reentrant call rejected")
		return nil, ErrLocked
	}
	p.locked = true
	return func() {
		p.guardMu.Lock()
		p.locked = false
		p.guardMu.Unlock()
	}, nil
}

// Reserves returns a snapshot of the current reserves and the timestamp
// they were last updated at.
func (p *Pool) Reserves() (reserve0, reserve1 *uint256.Int, blockTimestampLast uint32) {
	return new(uint256.Int).Set(p.reserve0), new(uint256.Int).Set(p.reserve1), p.blockTimestampLast
}

// KLast returns the invariant value as of the end of the last liquidity
// event with protocol fees enabled, or zero.
func (p *Pool) KLast() *uint256.Int { return new(uint256.Int).Set(p.kLast) }

// Asset0 and Asset1 return the pool's two asset handles in canonical
// order.
func (p *Pool) Asset0() types.Address { return p.asset0 }
func (p *Pool) Asset1() types.Address { return p.asset1 }

// Address returns the pool's own identity, as used for ledger balance
// lookups and as the emitter of its events.
func (p *Pool) Address() types.Address { return p.self }

// reservesOverflow reports whether either balance would exceed the pool's
// maximum representable reserve (2^112).
func reservesOverflow(b0, b1 *uint256.Int) bool {
	return b0.Cmp(maxReserve) >= 0 || b1.Cmp(maxReserve) >= 0
}

// syncReserves is "_update" from the reference design: it snapshots new
// balances as the reserves, accumulating the time-weighted price
// integral over the elapsed interval first.
func (p *Pool) syncReserves(b0, b1, r0, r1 *uint256.Int) error {
	if reservesOverflow(b0, b1) {
		return ErrOverflow
	}

	now := uint32(p.clock().Unix())
	elapsed := now - p.blockTimestampLast // uint32 wraparound subtraction, intentional

	if elapsed > 0 && !r0.IsZero() && !r1.IsZero() {
		elapsedWord := uint256.NewInt(uint64(elapsed))
		price0Delta := new(uint256.Int).Mul(fixedpoint.UQDiv(fixedpoint.Encode(r1), r0), elapsedWord)
		price1Delta := new(uint256.Int).Mul(fixedpoint.UQDiv(fixedpoint.Encode(r0), r1), elapsedWord)
		p.price0CumulativeLast = new(uint256.Int).Add(p.price0CumulativeLast, price0Delta)
		p.price1CumulativeLast = new(uint256.Int).Add(p.price1CumulativeLast, price1Delta)
	}

	p.reserve0 = new(uint256.Int).Set(b0)
	p.reserve1 = new(uint256.Int).Set(b1)
	p.blockTimestampLast = now
	p.events.EmitSync(p.self, p.reserve0, p.reserve1)
	return nil
}

// Price0CumulativeLast and Price1CumulativeLast expose the accumulators
// for off-chain TWAP computation by differencing two samples.
func (p *Pool) Price0CumulativeLast() *uint256.Int { return new(uint256.Int).Set(p.price0CumulativeLast) }
func (p *Pool) Price1CumulativeLast() *uint256.Int { return new(uint256.Int).Set(p.price1CumulativeLast) }

// mintFee is "_mintFee": mints protocol-fee shares for the growth in
// sqrt(k) since the last liquidity event, if the factory has a fee
// recipient configured. Returns whether fees are currently on.
func (p *Pool) mintFee(r0, r1 *uint256.Int) bool {
	feeTo := p.factory.FeeTo()
	feeOn := feeTo != types.ZeroAddress

	if feeOn {
		if !p.kLast.IsZero() {
			rootK := isqrt.Sqrt(new(uint256.Int).Mul(r0, r1))
			rootKLast := isqrt.Sqrt(p.kLast)
			if rootK.Gt(rootKLast) {
				totalSupply := p.Token.TotalSupply()
				numerator := new(uint256.Int).Mul(totalSupply, new(uint256.Int).Sub(rootK, rootKLast))
				denominator := new(uint256.Int).Add(new(uint256.Int).Mul(rootK, uint256.NewInt(5)), rootKLast)
				liquidity := new(uint256.Int).Div(numerator, denominator)
				if !liquidity.IsZero() {
					p.Token.Mint(feeTo, liquidity)
				}
			}
		}
	} else if !p.kLast.IsZero() {
		p.kLast = uint256.NewInt(0)
	}
	return feeOn
}

func (p *Pool) balances(ctx context.Context) (*uint256.Int, *uint256.Int, error) {
	b0, err := p.ledger.BalanceOf(ctx, p.asset0, p.self)
	if err != nil {
		return nil, nil, err
	}
	b1, err := p.ledger.BalanceOf(ctx, p.asset1, p.self)
	if err != nil {
		return nil, nil, err
	}
	return b0, b1, nil
}

// Mint credits liquidity shares to to, computed from the assets the
// caller has already transferred to the pool ahead of this call.
func (p *Pool) Mint(ctx context.Context, caller, to types.Address) (*uint256.Int, error) {
	unlock, err := p.enter()
	if err != nil {
		return nil, err
	}
	defer unlock()

	r0, r1 := new(uint256.Int).Set(p.reserve0), new(uint256.Int).Set(p.reserve1)
	b0, b1, err := p.balances(ctx)
	if err != nil {
		return nil, err
	}
	// Checked before any mutation: syncReserves enforces the same bound
	// further down, but by then fee and liquidity shares would already
	// be minted and unrecoverable.
	if reservesOverflow(b0, b1) {
		return nil, ErrOverflow
	}
	amount0 := new(uint256.Int).Sub(b0, r0)
	amount1 := new(uint256.Int).Sub(b1, r1)

	feeOn := p.mintFee(r0, r1)
	totalSupply := p.Token.TotalSupply()

	var liquidity *uint256.Int
	if totalSupply.IsZero() {
		root := isqrt.Sqrt(new(uint256.Int).Mul(amount0, amount1))
		minLiq := uint256.NewInt(MinimumLiquidity)
		if root.Cmp(minLiq) <= 0 {
			return nil, ErrInsufficientLiquidityMinted
		}
		liquidity = new(uint256.Int).Sub(root, minLiq)
		p.Token.Mint(types.ZeroAddress, minLiq)
	} else {
		l0 := new(uint256.Int).Div(new(uint256.Int).Mul(amount0, totalSupply), r0)
		l1 := new(uint256.Int).Div(new(uint256.Int).Mul(amount1, totalSupply), r1)
		if l0.Lt(l1) {
			liquidity = l0
		} else {
			liquidity = l1
		}
	}
	if liquidity == nil || liquidity.IsZero() {
		return nil, ErrInsufficientLiquidityMinted
	}

	p.Token.Mint(to, liquidity)

	if err := p.syncReserves(b0, b1, r0, r1); err != nil {
		return nil, err
	}
	if feeOn {
		p.kLast = new(uint256.Int).Mul(p.reserve0, p.reserve1)
	}
	p.events.EmitMint(p.self, caller, amount0, amount1)
	p.logger.Info("pool mint", zap.Stringer("to", to), zap.String("liquidity", liquidity.Dec()))
	return liquidity, nil
}

// Burn destroys the liquidity shares the pool itself currently holds
// (transferred there by the caller ahead of this call) and pays out the
// corresponding share of reserves to to.
func (p *Pool) Burn(ctx context.Context, caller, to types.Address) (amount0, amount1 *uint256.Int, err error) {
	unlock, err := p.enter()
	if err != nil {
		return nil, nil, err
	}
	defer unlock()

	r0, r1 := new(uint256.Int).Set(p.reserve0), new(uint256.Int).Set(p.reserve1)
	b0, b1, err := p.balances(ctx)
	if err != nil {
		return nil, nil, err
	}
	if reservesOverflow(b0, b1) {
		return nil, nil, ErrOverflow
	}
	liquidity := p.Token.BalanceOf(p.self)

	feeOn := p.mintFee(r0, r1)
	totalSupply := p.Token.TotalSupply()

	amount0 = new(uint256.Int).Div(new(uint256.Int).Mul(liquidity, b0), totalSupply)
	amount1 = new(uint256.Int).Div(new(uint256.Int).Mul(liquidity, b1), totalSupply)
	if amount0.IsZero() || amount1.IsZero() {
		return nil, nil, ErrInsufficientLiquidityBurned
	}

	// Shares are destroyed only once both payouts have actually landed:
	// burning first and then failing a transfer would leave the caller's
	// claim on reserves extinguished without ever having received them.
	if err := p.ledger.Transfer(ctx, p.asset0, to, amount0); err != nil {
		return nil, nil, ErrTransferFailed
	}
	if err := p.ledger.Transfer(ctx, p.asset1, to, amount1); err != nil {
		if rerr := p.ledger.Reclaim(ctx, p.asset0, to, amount0); rerr != nil {
			p.logger.Error("pool: failed to reclaim asset0 payout after aborted burn", zap.Stringer("to", to), zap.Error(rerr))
		}
		return nil, nil, ErrTransferFailed
	}
	p.Token.Burn(p.self, liquidity)

	b0, b1, err = p.balances(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := p.syncReserves(b0, b1, r0, r1); err != nil {
		return nil, nil, err
	}
	if feeOn {
		p.kLast = new(uint256.Int).Mul(p.reserve0, p.reserve1)
	}
	p.events.EmitBurn(p.self, caller, amount0, amount1, to)
	p.logger.Info("pool burn", zap.Stringer("to", to), zap.String("amount0", amount0.Dec()), zap.String("amount1", amount1.Dec()))
	return amount0, amount1, nil
}

// Swap pays out amount0Out of asset0 and amount1Out of asset1 to to,
// optionally invoking to's flash-swap callback with data before checking
// that the pool received sufficient input to preserve the invariant.
func (p *Pool) Swap(ctx context.Context, caller types.Address, amount0Out, amount1Out *uint256.Int, to types.Address, data []byte, cb types.SwapCallback) error {
	unlock, err := p.enter()
	if err != nil {
		return err
	}
	defer unlock()

	if amount0Out.IsZero() && amount1Out.IsZero() {
		return ErrInsufficientOutputAmount
	}
	r0, r1 := new(uint256.Int).Set(p.reserve0), new(uint256.Int).Set(p.reserve1)
	if amount0Out.Cmp(r0) >= 0 || amount1Out.Cmp(r1) >= 0 {
		return ErrInsufficientLiquidity
	}
	if to == p.asset0 || to == p.asset1 {
		return ErrInvalidTo
	}

	if !amount0Out.IsZero() {
		if err := p.ledger.Transfer(ctx, p.asset0, to, amount0Out); err != nil {
			return ErrTransferFailed
		}
	}
	if !amount1Out.IsZero() {
		if err := p.ledger.Transfer(ctx, p.asset1, to, amount1Out); err != nil {
			// asset0 already landed at to; asset1 never did, so only the
			// former needs clawing back.
			p.reclaimPayout(ctx, to, amount0Out, nil)
			return ErrTransferFailed
		}
	}

	// Both payouts have now landed at to. There is no transaction
	// spanning the ledger and this check, unlike the reference contract's
	// single atomic call: every failure from here on must explicitly
	// claw the payout back before reporting its cause.
	abort := func(cause error) error {
		p.reclaimPayout(ctx, to, amount0Out, amount1Out)
		return cause
	}

	if len(data) > 0 && cb != nil {
		if err := cb.OnSwap(ctx, caller, amount0Out, amount1Out, data); err != nil {
			return abort(err)
		}
	}

	b0, b1, err := p.balances(ctx)
	if err != nil {
		return abort(err)
	}

	in0 := uint256.NewInt(0)
	if baseline := new(uint256.Int).Sub(r0, amount0Out); b0.Cmp(baseline) > 0 {
		in0 = new(uint256.Int).Sub(b0, baseline)
	}
	in1 := uint256.NewInt(0)
	if baseline := new(uint256.Int).Sub(r1, amount1Out); b1.Cmp(baseline) > 0 {
		in1 = new(uint256.Int).Sub(b1, baseline)
	}
	if in0.IsZero() && in1.IsZero() {
		return abort(ErrInsufficientInputAmount)
	}

	b0Adj := new(uint256.Int).Sub(new(uint256.Int).Mul(b0, uint256.NewInt(feeDenominator)), new(uint256.Int).Mul(in0, uint256.NewInt(feeNumerator)))
	b1Adj := new(uint256.Int).Sub(new(uint256.Int).Mul(b1, uint256.NewInt(feeDenominator)), new(uint256.Int).Mul(in1, uint256.NewInt(feeNumerator)))
	lhs := new(uint256.Int).Mul(b0Adj, b1Adj)
	rhs := new(uint256.Int).Mul(new(uint256.Int).Mul(r0, r1), uint256.NewInt(feeDenominator*feeDenominator))
	if lhs.Lt(rhs) {
		return abort(ErrK)
	}

	if err := p.syncReserves(b0, b1, r0, r1); err != nil {
		return abort(err)
	}
	p.events.EmitSwap(p.self, caller, in0, in1, amount0Out, amount1Out, to)
	p.logger.Info("pool swap", zap.Stringer("to", to), zap.String("amount0Out", amount0Out.Dec()), zap.String("amount1Out", amount1Out.Dec()))
	return nil
}

// reclaimPayout claws back an optimistic swap payout via the ledger's
// compensating Reclaim when a later invariant check aborts the swap. A
// failed reclaim (to has already spent or moved the funds, e.g. inside a
// flash-swap callback) is logged rather than returned: the caller already
// has the original failure to report, and a non-atomic ledger cannot
// guarantee the payout is still recoverable.
func (p *Pool) reclaimPayout(ctx context.Context, to types.Address, amount0Out, amount1Out *uint256.Int) {
	if amount0Out != nil && !amount0Out.IsZero() {
		if err := p.ledger.Reclaim(ctx, p.asset0, to, amount0Out); err != nil {
			p.logger.Error("pool: failed to reclaim asset0 payout after aborted swap", zap.Stringer("to", to), zap.Error(err))
		}
	}
	if amount1Out != nil && !amount1Out.IsZero() {
		if err := p.ledger.Reclaim(ctx, p.asset1, to, amount1Out); err != nil {
			p.logger.Error("pool: failed to reclaim asset1 payout after aborted swap", zap.Stringer("to", to), zap.Error(err))
		}
	}
}

// Skim pays out any balance in excess of the recorded reserves to to,
// without touching the reserves themselves.
func (p *Pool) Skim(ctx context.Context, to types.Address) error {
	unlock, err := p.enter()
	if err != nil {
		return err
	}
	defer unlock()

	b0, b1, err := p.balances(ctx)
	if err != nil {
		return err
	}
	if excess0 := new(uint256.Int).Sub(b0, p.reserve0); !excess0.IsZero() {
		if err := p.ledger.Transfer(ctx, p.asset0, to, excess0); err != nil {
			return ErrTransferFailed
		}
	}
	if excess1 := new(uint256.Int).Sub(b1, p.reserve1); !excess1.IsZero() {
		if err := p.ledger.Transfer(ctx, p.asset1, to, excess1); err != nil {
			return ErrTransferFailed
		}
	}
	p.logger.Info("pool skim", zap.Stringer("to", to))
	return nil
}

// Sync forces the pool to adopt its current observed balances as the new
// reserves, recovering from a rebasing asset's silent balance change.
func (p *Pool) Sync(ctx context.Context) error {
	unlock, err := p.enter()
	if err != nil {
		return err
	}
	defer unlock()

	b0, b1, err := p.balances(ctx)
	if err != nil {
		return err
	}
	if err := p.syncReserves(b0, b1, p.reserve0, p.reserve1); err != nil {
		return err
	}
	p.logger.Info("pool sync")
	return nil
}
