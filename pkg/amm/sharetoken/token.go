// Package sharetoken implements the liquidity-share fungible-token
// contract a pool embeds: transfer/transferFrom/approve bookkeeping plus
// the EIP-712-shaped signed-approval ("permit") path, factored out of the
// pool the same way the reference contracts separate ERC20 bookkeeping
// from pool economics.
package sharetoken

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/hiveswap/ammcore/pkg/amm/eventlog"
	"github.com/hiveswap/ammcore/pkg/amm/types"
)

const (
	Name     = "Uniswap V2"
	Symbol   = "UNI-V2"
	Decimals = 18
)

// Token is the liquidity-share ledger embedded in a pool. The pool is the
// only caller expected to invoke Mint/Burn; Transfer/TransferFrom/
// Approve/Permit are the holder-facing surface.
type Token struct {
	mu sync.RWMutex

	self common.Address // the pool's own address, used as Transfer/Approval emitter

	totalSupply *uint256.Int
	balances    map[common.Address]*uint256.Int
	allowances  map[common.Address]map[common.Address]*uint256.Int
	nonces      map[common.Address]*uint256.Int

	domainSeparator common.Hash

	events eventlog.EventSink
	now    func() uint64
}

// New constructs an empty share ledger bound to self (the owning pool's
// address) and chainID (the ambient chain identifier baked into the
// domain separator). events may be nil.
func New(self common.Address, chainID *uint256.Int, events eventlog.EventSink, now func() uint64) *Token {
	t := &Token{
		self:        self,
		totalSupply: uint256.NewInt(0),
		balances:    make(map[common.Address]*uint256.Int),
		allowances:  make(map[common.Address]map[common.Address]*uint256.Int),
		nonces:      make(map[common.Address]*uint256.Int),
		events:      eventlog.OrNoop(events),
		now:         now,
	}
	t.domainSeparator = computeDomainSeparator(Name, "1", chainID, self)
	return t
}

func (t *Token) balanceLocked(owner common.Address) *uint256.Int {
	if b, ok := t.balances[owner]; ok {
		return b
	}
	return uint256.NewInt(0)
}

// BalanceOf returns owner's current share balance.
func (t *Token) BalanceOf(owner common.Address) *uint256.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return new(uint256.Int).Set(t.balanceLocked(owner))
}

// TotalSupply returns the current total share supply.
func (t *Token) TotalSupply() *uint256.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return new(uint256.Int).Set(t.totalSupply)
}

// Allowance returns the amount spender may still transfer on owner's
// behalf.
func (t *Token) Allowance(owner, spender common.Address) *uint256.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if m, ok := t.allowances[owner]; ok {
		if a, ok := m[spender]; ok {
			return new(uint256.Int).Set(a)
		}
	}
	return uint256.NewInt(0)
}

// Nonce returns owner's current permit nonce.
func (t *Token) Nonce(owner common.Address) *uint256.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if n, ok := t.nonces[owner]; ok {
		return new(uint256.Int).Set(n)
	}
	return uint256.NewInt(0)
}

// mint increases total supply and to's balance, emitting a Transfer from
// the null address. It never fails: overflow of total supply is an
// internal invariant violation, not a caller mistake, and panics.
func (t *Token) mint(to common.Address, amount *uint256.Int) {
	t.mu.Lock()
	sum, overflow := new(uint256.Int).AddOverflow(t.totalSupply, amount)
	if overflow {
		t.mu.Unlock()
		panic("sharetoken: total supply overflow")
	}
	t.totalSupply = sum
	t.balances[to] = new(uint256.Int).Add(t.balanceLocked(to), amount)
	t.mu.Unlock()
	t.events.EmitTransfer(t.self, common.Address{}, to, amount)
}

// burn decreases from's balance and total supply, emitting a Transfer to
// the null address. Insufficient balance is an internal invariant
// violation (the pool only ever burns what it has just observed it
// holds) and panics rather than returning an error.
func (t *Token) burn(from common.Address, amount *uint256.Int) {
	t.mu.Lock()
	bal := t.balanceLocked(from)
	if bal.Lt(amount) {
		t.mu.Unlock()
		panic("sharetoken: burn exceeds balance")
	}
	t.balances[from] = new(uint256.Int).Sub(bal, amount)
	t.totalSupply = new(uint256.Int).Sub(t.totalSupply, amount)
	t.mu.Unlock()
	t.events.EmitTransfer(t.self, from, common.Address{}, amount)
}

// Mint is the package-external entry point the pool uses to credit newly
// issued liquidity shares.
func (t *Token) Mint(to common.Address, amount *uint256.Int) { t.mint(to, amount) }

// Burn is the package-external entry point the pool uses to retire
// liquidity shares it holds.
func (t *Token) Burn(from common.Address, amount *uint256.Int) { t.burn(from, amount) }

func (t *Token) transfer(from, to common.Address, amount *uint256.Int) error {
	t.mu.Lock()
	fromBal := t.balanceLocked(from)
	if fromBal.Lt(amount) {
		t.mu.Unlock()
		return ErrInsufficientBalance
	}
	t.balances[from] = new(uint256.Int).Sub(fromBal, amount)
	t.balances[to] = new(uint256.Int).Add(t.balanceLocked(to), amount)
	t.mu.Unlock()
	t.events.EmitTransfer(t.self, from, to, amount)
	return nil
}

// Transfer moves amount of shares from the caller to to.
func (t *Token) Transfer(from, to common.Address, amount *uint256.Int) error {
	return t.transfer(from, to, amount)
}

// TransferFrom moves amount of shares from from to to on spender's
// behalf, consuming allowance unless it holds the unlimited sentinel
// (max uint256), which is left unchanged.
func (t *Token) TransferFrom(spender, from, to common.Address, amount *uint256.Int) error {
	t.mu.Lock()
	m, ok := t.allowances[from]
	var allowance *uint256.Int
	if ok {
		allowance = m[spender]
	}
	if allowance == nil {
		allowance = uint256.NewInt(0)
	}
	unlimited := allowance.Eq(types.MaxUint256())
	if !unlimited {
		if allowance.Lt(amount) {
			t.mu.Unlock()
			return ErrInsufficientAllowance
		}
		if m == nil {
			m = make(map[common.Address]*uint256.Int)
			t.allowances[from] = m
		}
		m[spender] = new(uint256.Int).Sub(allowance, amount)
	}
	t.mu.Unlock()
	return t.transfer(from, to, amount)
}

// Approve sets spender's allowance over owner's shares to exactly amount.
func (t *Token) Approve(owner, spender common.Address, amount *uint256.Int) {
	t.mu.Lock()
	m, ok := t.allowances[owner]
	if !ok {
		m = make(map[common.Address]*uint256.Int)
		t.allowances[owner] = m
	}
	m[spender] = new(uint256.Int).Set(amount)
	t.mu.Unlock()
	t.events.EmitApproval(t.self, owner, spender, amount)
}
