package sharetoken

import (
	"crypto/ecdsa"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/hiveswap/ammcore/pkg/amm/eventlog"
)

func newTestToken(t *testing.T) (*Token, *eventlog.Memory) {
	t.Helper()
	mem := eventlog.NewMemory()
	self := common.HexToAddress("0xaabb")
	tok := New(self, uint256.NewInt(1), mem, func() uint64 { return 1000 })
	return tok, mem
}

func TestMintBurnAdjustSupplyAndEmit(t *testing.T) {
	tok, mem := newTestToken(t)
	alice := common.HexToAddress("0x01")

	tok.Mint(alice, uint256.NewInt(500))
	require.Equal(t, uint256.NewInt(500), tok.BalanceOf(alice))
	require.Equal(t, uint256.NewInt(500), tok.TotalSupply())

	tok.Burn(alice, uint256.NewInt(200))
	require.Equal(t, uint256.NewInt(300), tok.BalanceOf(alice))
	require.Equal(t, uint256.NewInt(300), tok.TotalSupply())

	events := mem.Events()
	require.Len(t, events, 2)
	require.Equal(t, eventlog.KindTransfer, events[0].Kind)
	require.Equal(t, common.Address{}, events[0].From)
	require.Equal(t, alice, events[0].To)
	require.Equal(t, alice, events[1].From)
	require.Equal(t, common.Address{}, events[1].To)
}

func TestBurnExceedingBalancePanics(t *testing.T) {
	tok, _ := newTestToken(t)
	alice := common.HexToAddress("0x01")
	tok.Mint(alice, uint256.NewInt(10))
	require.Panics(t, func() { tok.Burn(alice, uint256.NewInt(11)) })
}

func TestTransferMovesBalance(t *testing.T) {
	tok, _ := newTestToken(t)
	alice := common.HexToAddress("0x01")
	bob := common.HexToAddress("0x02")
	tok.Mint(alice, uint256.NewInt(100))

	require.NoError(t, tok.Transfer(alice, bob, uint256.NewInt(40)))
	require.Equal(t, uint256.NewInt(60), tok.BalanceOf(alice))
	require.Equal(t, uint256.NewInt(40), tok.BalanceOf(bob))
}

func TestTransferInsufficientBalance(t *testing.T) {
	tok, _ := newTestToken(t)
	alice := common.HexToAddress("0x01")
	bob := common.HexToAddress("0x02")
	tok.Mint(alice, uint256.NewInt(10))
	require.ErrorIs(t, tok.Transfer(alice, bob, uint256.NewInt(11)), ErrInsufficientBalance)
}

func TestTransferFromConsumesAllowance(t *testing.T) {
	tok, _ := newTestToken(t)
	alice := common.HexToAddress("0x01")
	bob := common.HexToAddress("0x02")
	carol := common.HexToAddress("0x03")
	tok.Mint(alice, uint256.NewInt(100))
	tok.Approve(alice, bob, uint256.NewInt(50))

	require.NoError(t, tok.TransferFrom(bob, alice, carol, uint256.NewInt(30)))
	require.Equal(t, uint256.NewInt(20), tok.Allowance(alice, bob))
	require.Equal(t, uint256.NewInt(30), tok.BalanceOf(carol))
}

func TestTransferFromUnlimitedAllowanceUnchanged(t *testing.T) {
	tok, _ := newTestToken(t)
	alice := common.HexToAddress("0x01")
	bob := common.HexToAddress("0x02")
	carol := common.HexToAddress("0x03")
	tok.Mint(alice, uint256.NewInt(100))

	maxUint := new(uint256.Int).Not(uint256.NewInt(0))
	tok.Approve(alice, bob, maxUint)

	require.NoError(t, tok.TransferFrom(bob, alice, carol, uint256.NewInt(30)))
	require.Equal(t, maxUint, tok.Allowance(alice, bob))
}

func TestTransferFromInsufficientAllowance(t *testing.T) {
	tok, _ := newTestToken(t)
	alice := common.HexToAddress("0x01")
	bob := common.HexToAddress("0x02")
	carol := common.HexToAddress("0x03")
	tok.Mint(alice, uint256.NewInt(100))
	tok.Approve(alice, bob, uint256.NewInt(5))

	require.ErrorIs(t, tok.TransferFrom(bob, alice, carol, uint256.NewInt(6)), ErrInsufficientAllowance)
}

func signPermit(t *testing.T, tok *Token, key *ecdsa.PrivateKey, owner, spender common.Address, value *uint256.Int, nonce *uint256.Int, deadline uint64) (uint8, common.Hash, common.Hash) {
	t.Helper()
	digest := tok.digest(owner, spender, value, nonce, deadline)
	sig, err := crypto.Sign(digest.Bytes(), key)
	require.NoError(t, err)
	var r, s common.Hash
	copy(r[:], sig[0:32])
	copy(s[:], sig[32:64])
	v := sig[64] + 27
	return v, r, s
}

func TestPermitCommitsAllowanceAndIncrementsNonce(t *testing.T) {
	tok, _ := newTestToken(t)
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	owner := crypto.PubkeyToAddress(key.PublicKey)
	spender := common.HexToAddress("0x02")
	value := uint256.NewInt(123)
	deadline := uint64(5000)

	v, r, s := signPermit(t, tok, key, owner, spender, value, tok.Nonce(owner), deadline)
	require.NoError(t, tok.Permit(owner, spender, value, deadline, v, r, s))
	require.Equal(t, value, tok.Allowance(owner, spender))
	require.Equal(t, uint256.NewInt(1), tok.Nonce(owner))
}

func TestPermitExpired(t *testing.T) {
	tok, _ := newTestToken(t)
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	owner := crypto.PubkeyToAddress(key.PublicKey)
	spender := common.HexToAddress("0x02")
	value := uint256.NewInt(1)
	deadline := uint64(1) // before the fixed clock's 1000

	v, r, s := signPermit(t, tok, key, owner, spender, value, tok.Nonce(owner), deadline)
	require.ErrorIs(t, tok.Permit(owner, spender, value, deadline, v, r, s), ErrExpired)
}

func TestPermitReplayFails(t *testing.T) {
	tok, _ := newTestToken(t)
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	owner := crypto.PubkeyToAddress(key.PublicKey)
	spender := common.HexToAddress("0x02")
	value := uint256.NewInt(1)
	deadline := uint64(5000)

	v, r, s := signPermit(t, tok, key, owner, spender, value, tok.Nonce(owner), deadline)
	require.NoError(t, tok.Permit(owner, spender, value, deadline, v, r, s))
	require.ErrorIs(t, tok.Permit(owner, spender, value, deadline, v, r, s), ErrInvalidSignature)
}

func TestPermitWrongSignerFails(t *testing.T) {
	tok, _ := newTestToken(t)
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	claimedOwner := common.HexToAddress("0xdeadbeef")
	spender := common.HexToAddress("0x02")
	value := uint256.NewInt(1)
	deadline := uint64(5000)

	v, r, s := signPermit(t, tok, key, claimedOwner, spender, value, tok.Nonce(claimedOwner), deadline)
	require.ErrorIs(t, tok.Permit(claimedOwner, spender, value, deadline, v, r, s), ErrInvalidSignature)
}
