package factory

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/hiveswap/ammcore/internal/ledger"
	"github.com/hiveswap/ammcore/pkg/amm/eventlog"
	"github.com/hiveswap/ammcore/pkg/amm/types"
)

func newTestFactory(t *testing.T, admin types.Address) (*Factory, *eventlog.Memory) {
	t.Helper()
	led := ledger.NewMemory()
	mem := eventlog.NewMemory()
	self := common.HexToAddress("0xf00d")
	f := New(self, admin, led, mem, uint256.NewInt(1), nil, nil, time.Now)
	return f, mem
}

func TestCreatePairCanonicalizesAndRegistersBothOrderings(t *testing.T) {
	admin := common.HexToAddress("0xad")
	f, mem := newTestFactory(t, admin)

	tokenA := common.HexToAddress("0x02")
	tokenB := common.HexToAddress("0x01")

	p, err := f.CreatePair(tokenA, tokenB)
	require.NoError(t, err)
	require.Equal(t, tokenB, p.Asset0())
	require.Equal(t, tokenA, p.Asset1())

	require.Equal(t, p.Address(), f.GetPair(tokenA, tokenB))
	require.Equal(t, p.Address(), f.GetPair(tokenB, tokenA))
	require.Equal(t, []types.Address{p.Address()}, f.AllPairs())

	events := mem.Events()
	require.Len(t, events, 1)
	require.Equal(t, eventlog.KindPairCreated, events[0].Kind)
	require.Equal(t, uint64(1), events[0].Index)
}

func TestS9_PairCreationIdempotence(t *testing.T) {
	admin := common.HexToAddress("0xad")
	f, _ := newTestFactory(t, admin)

	a := common.HexToAddress("0x01")
	b := common.HexToAddress("0x02")

	_, err := f.CreatePair(a, b)
	require.NoError(t, err)

	_, err = f.CreatePair(a, b)
	require.ErrorIs(t, err, ErrPairExists)

	_, err = f.CreatePair(b, a)
	require.ErrorIs(t, err, ErrPairExists)
}

func TestCreatePairIdenticalAddresses(t *testing.T) {
	admin := common.HexToAddress("0xad")
	f, _ := newTestFactory(t, admin)
	a := common.HexToAddress("0x01")

	_, err := f.CreatePair(a, a)
	require.ErrorIs(t, err, ErrIdenticalAddresses)
}

func TestCreatePairZeroAddress(t *testing.T) {
	admin := common.HexToAddress("0xad")
	f, _ := newTestFactory(t, admin)
	a := common.HexToAddress("0x01")

	_, err := f.CreatePair(types.ZeroAddress, a)
	require.ErrorIs(t, err, ErrZeroAddress)
}

func TestPoolIdentityIsDeterministicFunctionOfFactoryAndPair(t *testing.T) {
	admin := common.HexToAddress("0xad")
	f1, _ := newTestFactory(t, admin)
	f2, _ := newTestFactory(t, admin) // second factory instance with the same self address (newTestFactory always uses 0xf00d)

	a := common.HexToAddress("0x01")
	b := common.HexToAddress("0x02")

	p1, err := f1.CreatePair(a, b)
	require.NoError(t, err)
	p2, err := f2.CreatePair(a, b)
	require.NoError(t, err)

	// Same factory self-address and same pair => same derived pool address.
	require.Equal(t, p1.Address(), p2.Address())
}

func TestSetFeeToRequiresAdmin(t *testing.T) {
	admin := common.HexToAddress("0xad")
	f, _ := newTestFactory(t, admin)
	stranger := common.HexToAddress("0xbad")
	recipient := common.HexToAddress("0xfee")

	require.ErrorIs(t, f.SetFeeTo(stranger, recipient), ErrForbidden)
	require.NoError(t, f.SetFeeTo(admin, recipient))
	require.Equal(t, recipient, f.FeeTo())
}

func TestSetFeeToSetterRotatesAdmin(t *testing.T) {
	admin := common.HexToAddress("0xad")
	f, _ := newTestFactory(t, admin)
	newAdmin := common.HexToAddress("0xnew")

	require.NoError(t, f.SetFeeToSetter(admin, newAdmin))
	require.ErrorIs(t, f.SetFeeTo(admin, common.HexToAddress("0xfee")), ErrForbidden)
	require.NoError(t, f.SetFeeTo(newAdmin, common.HexToAddress("0xfee")))
}
