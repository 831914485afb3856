package keeper_test

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	keepertest "github.com/ramboll-max/wormhole/testutil/keeper"
	"github.com/ramboll-max/wormhole/x/tokenbridge/types"
)

// TestDepositTransferWithdraw deposits bank funds, spends part of them on a
// transfer and withdraws the rest.
func TestDepositTransferWithdraw(t *testing.T) {
	f := keepertest.TokenBridgeKeeper(t)
	f.Ledger.AddDenom("uosmo", "osmo", 6)
	require.NoError(t, f.Ledger.Fund(types.NewBankAsset("uosmo"), "alice", sdkmath.NewUint(1000)))

	deposit := func(coins types.Coins) error {
		_, err := f.Execute("alice", coins, func(ctx types.Context, info types.MessageInfo) (*types.Response, error) {
			return f.Keeper.DepositTokens(ctx, info)
		})
		return err
	}
	withdraw := func(asset types.AssetInfo) (*types.Response, error) {
		var res *types.Response
		_, err := f.Execute("alice", nil, func(ctx types.Context, info types.MessageInfo) (*types.Response, error) {
			r, err := f.Keeper.WithdrawTokens(ctx, info, types.MsgWithdrawTokens{Asset: asset})
			res = r
			return r, err
		})
		return res, err
	}

	require.ErrorIs(t, deposit(nil), types.ErrMissingFunds)
	require.NoError(t, deposit(types.Coins{types.NewCoin("uosmo", 700)}))
	requireUint(t, 700, f.Keeper.GetDeposit(f.Ctx(), "alice", "uosmo"))

	msg := types.MsgInitiateTransfer{
		Asset:          types.Asset{Info: types.NewBankAsset("uosmo"), Amount: sdkmath.NewUint(500)},
		RecipientChain: ethRecipientChain,
		Recipient:      ethRecipient,
		Fee:            sdkmath.ZeroUint(),
	}
	_, err := initiateTransfer(f, "alice", msg)
	require.NoError(t, err)
	requireUint(t, 200, f.Keeper.GetDeposit(f.Ctx(), "alice", "uosmo"))
	assert.Equal(t, uint64(500), postedTransfer(t, f, 0).Amount.Uint64())

	msg.Asset.Amount = sdkmath.NewUint(300)
	_, err = initiateTransfer(f, "alice", msg)
	require.ErrorIs(t, err, types.ErrInsufficientFunds)
	requireUint(t, 200, f.Keeper.GetDeposit(f.Ctx(), "alice", "uosmo"))

	_, err = withdraw(types.NewTokenAsset("cw20"))
	require.ErrorIs(t, err, types.ErrInvalidAsset)

	res, err := withdraw(types.NewBankAsset("uosmo"))
	require.NoError(t, err)
	send := res.Messages[0].Msg.(types.SendMsg)
	assert.Equal(t, "alice", send.Recipient)
	requireUint(t, 200, send.Amount)
	requireUint(t, 0, f.Keeper.GetDeposit(f.Ctx(), "alice", "uosmo"))
	requireUint(t, 500, f.Ledger.BalanceOf(types.NewBankAsset("uosmo"), "alice"))

	_, err = withdraw(types.NewBankAsset("uosmo"))
	require.ErrorIs(t, err, types.ErrInsufficientFunds)
}
