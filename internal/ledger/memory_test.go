package ledger

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestMemoryCreditBalanceOf(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	asset := common.HexToAddress("0xaa")
	owner := common.HexToAddress("0xbb")

	m.Credit(asset, owner, uint256.NewInt(1000))
	bal, err := m.BalanceOf(ctx, asset, owner)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(1000), bal)
}

func TestMemoryTransferAccumulates(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	asset := common.HexToAddress("0xaa")
	to := common.HexToAddress("0xcc")

	require.NoError(t, m.Transfer(ctx, asset, to, uint256.NewInt(50)))
	require.NoError(t, m.Transfer(ctx, asset, to, uint256.NewInt(25)))

	bal, err := m.BalanceOf(ctx, asset, to)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(75), bal)
}

func TestMemoryReclaimInsufficientBalance(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	asset := common.HexToAddress("0xaa")
	owner := common.HexToAddress("0xdd")

	err := m.Reclaim(ctx, asset, owner, uint256.NewInt(1))
	require.Error(t, err)
}

func TestMemoryReclaimExactBalance(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	asset := common.HexToAddress("0xaa")
	owner := common.HexToAddress("0xee")

	m.Credit(asset, owner, uint256.NewInt(10))
	require.NoError(t, m.Reclaim(ctx, asset, owner, uint256.NewInt(10)))

	bal, err := m.BalanceOf(ctx, asset, owner)
	require.NoError(t, err)
	require.True(t, bal.IsZero())
}

func TestMemoryReclaimReversesTransfer(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	asset := common.HexToAddress("0xaa")
	to := common.HexToAddress("0xff")

	require.NoError(t, m.Transfer(ctx, asset, to, uint256.NewInt(500)))
	require.NoError(t, m.Reclaim(ctx, asset, to, uint256.NewInt(500)))

	bal, err := m.BalanceOf(ctx, asset, to)
	require.NoError(t, err)
	require.True(t, bal.IsZero())
}
