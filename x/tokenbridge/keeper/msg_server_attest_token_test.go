package keeper_test

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	keepertest "github.com/ramboll-max/wormhole/testutil/keeper"
	"github.com/ramboll-max/wormhole/x/tokenbridge/types"
)

func createAssetMeta(f *keepertest.Fixture, asset types.AssetInfo) (*types.AssetMeta, error) {
	_, err := f.Execute("alice", nil, func(ctx types.Context, info types.MessageInfo) (*types.Response, error) {
		return f.Keeper.CreateAssetMeta(ctx, info, types.MsgCreateAssetMeta{AssetInfo: asset, Nonce: 3})
	})
	if err != nil {
		return nil, err
	}
	posted := f.Ledger.Posted()
	return types.ParseAssetMeta(posted[len(posted)-1].Payload)
}

// TestCreateWrapped attests a foreign token and checks the wrapped denom it
// is registered under.
func TestCreateWrapped(t *testing.T) {
	f := keepertest.TokenBridgeKeeper(t)
	f.RegisterForeignChain(t)

	res, err := submitVAA(f, "relayer", f.Signed(foreignMeta(18)))
	require.NoError(t, err)

	require.Len(t, res.Instructions, 1)
	issue := res.Instructions[0].(types.IssueTokenMsg)
	assert.Equal(t, "Wrapped Ether (Wormhole)", issue.Name)
	assert.Equal(t, "WETH", issue.Symbol)
	assert.Equal(t, uint8(18), issue.Decimals)
	assert.Equal(t, types.GetWrappedCoinIdentifier(keepertest.ForeignChain, foreignToken), issue.Subdenom)

	_, ok := res.Event(types.EventTypeCreateWrapped)
	assert.True(t, ok)
	reply, ok := res.Event(types.EventTypeCreateWrappedReply)
	require.True(t, ok)

	denom, found := f.Keeper.GetWrappedDenom(f.Ctx(), keepertest.ForeignChain, foreignToken)
	require.True(t, found)
	assert.Equal(t, "factory/tokenbridge/"+issue.Subdenom, denom)
	assert.Equal(t, denom, attr(t, reply, "wrapped_denom"))

	wrapped, found := f.Keeper.GetDenomWrappedAsset(f.Ctx(), denom)
	require.True(t, found)
	assert.Equal(t, uint8(18), wrapped.Decimals)
	assert.Equal(t, uint16(keepertest.ForeignChain), wrapped.ChainID)

	_, pending := f.Keeper.GetWrappedAssetTemp(f.Ctx())
	assert.False(t, pending)
}

func TestCreateWrappedCapsDecimals(t *testing.T) {
	f := keepertest.TokenBridgeKeeper(t, keepertest.WithCapWrappedDecimals())
	f.RegisterForeignChain(t)
	denom := f.AttestForeign(t, foreignMeta(18))

	wrapped, found := f.Keeper.GetDenomWrappedAsset(f.Ctx(), denom)
	require.True(t, found)
	assert.Equal(t, uint8(8), wrapped.Decimals)
}

func TestCreateWrappedRejected(t *testing.T) {
	f := keepertest.TokenBridgeKeeper(t)
	f.RegisterForeignChain(t)
	f.AttestForeign(t, foreignMeta(8))

	local := foreignMeta(6)
	local.TokenChain = keepertest.LocalChain

	_, err := submitVAA(f, "relayer", f.Signed(foreignMeta(8)))
	require.ErrorIs(t, err, types.ErrAlreadyAttested)

	_, err = submitVAA(f, "relayer", f.Signed(local))
	require.ErrorIs(t, err, types.ErrNativeAssetAttestation)
}

// TestCreateWrappedInProgress refuses a second creation while one waits for
// its reply.
func TestCreateWrappedInProgress(t *testing.T) {
	f := keepertest.TokenBridgeKeeper(t)
	f.RegisterForeignChain(t)
	f.Keeper.SetWrappedAssetTemp(f.Ctx(), types.WrappedAssetTemp{ChainID: 5, Sequence: 1})

	_, err := submitVAA(f, "relayer", f.Signed(foreignMeta(8)))
	require.ErrorIs(t, err, types.ErrAttestationInProgress)
}

// TestCreateWrappedIssueFails releases the asset when the token module
// cannot issue the denom.
func TestCreateWrappedIssueFails(t *testing.T) {
	f := keepertest.TokenBridgeKeeper(t)
	f.RegisterForeignChain(t)
	subdenom := types.GetWrappedCoinIdentifier(keepertest.ForeignChain, foreignToken)
	f.Ledger.AddDenom("factory/tokenbridge/"+subdenom, "squatted", 0)

	_, err := submitVAA(f, "relayer", f.Signed(foreignMeta(8)))
	require.ErrorIs(t, err, types.ErrSubOperationFailed)

	_, pending := f.Keeper.GetWrappedAssetTemp(f.Ctx())
	assert.False(t, pending)
	_, found := f.Keeper.GetWrappedAssetSeq(f.Ctx(), keepertest.ForeignChain, foreignToken)
	assert.False(t, found)
	_, found = f.Keeper.GetWrappedDenom(f.Ctx(), keepertest.ForeignChain, foreignToken)
	assert.False(t, found)
}

// TestIssueReplyForgery feeds an issue reply for a creation that was never
// requested by an attestation.
func TestIssueReplyForgery(t *testing.T) {
	f := keepertest.TokenBridgeKeeper(t)

	_, err := f.Keeper.Resume(f.Ctx(), types.ReplyIDIssue, types.SubMsgResult{Data: []byte(`{"denom":"fake"}`)})
	require.ErrorIs(t, err, types.ErrNoPendingOperation)

	f.Keeper.SetWrappedAssetTemp(f.Ctx(), types.WrappedAssetTemp{ChainID: 2, ForeignAddress: foreignToken, Decimals: 8, Sequence: 4})
	_, err = f.Keeper.Resume(f.Ctx(), types.ReplyIDIssue, types.SubMsgResult{Data: []byte(`{"denom":"fake"}`)})
	require.ErrorIs(t, err, types.ErrRegistrationForbidden)

	f.Keeper.SetWrappedAssetSeq(f.Ctx(), 2, foreignToken, 3)
	_, err = f.Keeper.Resume(f.Ctx(), types.ReplyIDIssue, types.SubMsgResult{Data: []byte(`{"denom":"fake"}`)})
	require.ErrorIs(t, err, types.ErrRegistrationForbidden)

	_, err = f.Keeper.Resume(f.Ctx(), 42, types.SubMsgResult{})
	require.ErrorIs(t, err, types.ErrUnknownReply)
}

func TestCreateAssetMeta(t *testing.T) {
	f := keepertest.TokenBridgeKeeper(t)
	f.Ledger.AddDenom("uosmo", "osmo", 6)
	f.Ledger.AddToken("cw20", types.TokenInfo{Name: "Token", Symbol: "TKN", Decimals: 18})

	meta, err := createAssetMeta(f, types.NewBankAsset("uosmo"))
	require.NoError(t, err)
	assert.Equal(t, keepertest.LocalChain, meta.TokenChain)
	assert.Equal(t, uint8(6), meta.Decimals)
	assert.Equal(t, "osmo", meta.Symbol)
	assert.Equal(t, types.NewLocalExternalID(types.TokenKindBank, 1).Address(), meta.TokenAddress)

	meta, err = createAssetMeta(f, types.NewTokenAsset("cw20"))
	require.NoError(t, err)
	assert.Equal(t, uint8(18), meta.Decimals)
	assert.Equal(t, "TKN", meta.Symbol)
	assert.Equal(t, "Token", meta.Name)
	assert.Equal(t, types.NewLocalExternalID(types.TokenKindNativeContract, 2).Address(), meta.TokenAddress)

	// attesting again keeps the external id
	meta, err = createAssetMeta(f, types.NewBankAsset("uosmo"))
	require.NoError(t, err)
	assert.Equal(t, types.NewLocalExternalID(types.TokenKindBank, 1).Address(), meta.TokenAddress)
}

func TestCreateAssetMetaMessageFee(t *testing.T) {
	f := keepertest.TokenBridgeKeeper(t)
	f.Ledger.AddDenom("uosmo", "osmo", 6)
	require.NoError(t, f.Ledger.Fund(types.NewBankAsset("uosmo"), "alice", sdkmath.NewUint(50)))

	_, err := f.Execute("alice", types.Coins{types.NewCoin("uosmo", 50)}, func(ctx types.Context, info types.MessageInfo) (*types.Response, error) {
		return f.Keeper.CreateAssetMeta(ctx, info, types.MsgCreateAssetMeta{AssetInfo: types.NewBankAsset("uosmo")})
	})
	require.NoError(t, err)
	requireUint(t, 50, f.Ledger.BalanceOf(types.NewBankAsset("uosmo"), f.Host.Wormhole))
}

func TestCreateAssetMetaRejected(t *testing.T) {
	f := keepertest.TokenBridgeKeeper(t)
	f.RegisterForeignChain(t)
	denom := f.AttestForeign(t, foreignMeta(8))

	_, err := createAssetMeta(f, types.NewBankAsset(denom))
	require.ErrorIs(t, err, types.ErrAttestWrappedAsset)

	_, err = createAssetMeta(f, types.NewBankAsset("unknown"))
	require.ErrorIs(t, err, types.ErrTokenNotFound)

	_, err = createAssetMeta(f, types.AssetInfo{})
	require.ErrorIs(t, err, types.ErrInvalidAsset)
}
