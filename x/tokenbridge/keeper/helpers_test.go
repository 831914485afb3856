package keeper_test

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/ramboll-max/wormhole/pkg/devnet"
	"github.com/ramboll-max/wormhole/pkg/vaa"
	keepertest "github.com/ramboll-max/wormhole/testutil/keeper"
	"github.com/ramboll-max/wormhole/x/tokenbridge/types"
)

// foreignToken is an 18 decimals token on the foreign chain.
var foreignToken = vaa.Address{12: 0xc0, 31: 0x2a}

func foreignMeta(decimals uint8) *types.AssetMeta {
	return &types.AssetMeta{
		TokenAddress: foreignToken,
		TokenChain:   keepertest.ForeignChain,
		Decimals:     decimals,
		Symbol:       "weth",
		Name:         "Wrapped Ether",
	}
}

func submitVAA(f *keepertest.Fixture, sender string, data []byte) (*devnet.Result, error) {
	return f.Execute(sender, nil, func(ctx types.Context, info types.MessageInfo) (*types.Response, error) {
		return f.Keeper.SubmitVAA(ctx, info, data)
	})
}

func executeGovernance(f *keepertest.Fixture, data []byte) (*devnet.Result, error) {
	return f.Execute("relayer", nil, func(ctx types.Context, _ types.MessageInfo) (*types.Response, error) {
		return f.Keeper.ExecuteGovernanceVAA(ctx, data)
	})
}

func inboundTransfer(f *keepertest.Fixture, token vaa.Address, tokenChain vaa.ChainID, recipient string, amount, fee uint64) *types.Transfer {
	return &types.Transfer{
		Amount:         uint256.NewInt(amount),
		TokenAddress:   token,
		TokenChain:     tokenChain,
		Recipient:      devnet.MustAddress(recipient),
		RecipientChain: f.Config.Chain(),
		Fee:            uint256.NewInt(fee),
	}
}

// postedTransfer decodes the i-th message posted through the core bridge.
func postedTransfer(t *testing.T, f *keepertest.Fixture, i int) *types.Transfer {
	t.Helper()
	posted := f.Ledger.Posted()
	require.Greater(t, len(posted), i)
	transfer, err := types.ParseTransfer(posted[i].Payload)
	require.NoError(t, err)
	return transfer
}

func requireUint(t *testing.T, expected uint64, actual sdkmath.Uint) {
	t.Helper()
	require.Equal(t, sdkmath.NewUint(expected).String(), actual.String())
}

func attr(t *testing.T, e types.Event, key string) string {
	t.Helper()
	v, ok := e.Attribute(key)
	require.True(t, ok, "event %s has no attribute %s", e.Type, key)
	return v
}
