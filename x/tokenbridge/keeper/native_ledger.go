package keeper

import (
	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"

	"github.com/ramboll-max/wormhole/x/tokenbridge/types"
)

// The native ledger tracks, per local token, the wire amount that left this
// chain and has not come back. Inbound transfers of local tokens can never
// release more than that.

// OutstandingNative returns the wire amount of a local token currently bridged out.
func (k Keeper) OutstandingNative(ctx types.Context, ext types.ExternalTokenID) sdkmath.Uint {
	bz := mustGet(k.prefixStore(ctx, types.NativeLedgerPrefix), ext[:])
	if bz == nil {
		return sdkmath.ZeroUint()
	}
	amount, err := sdkmath.ParseUint(string(bz))
	if err != nil {
		panic(err)
	}
	return amount
}

func (k Keeper) setOutstandingNative(ctx types.Context, ext types.ExternalTokenID, amount sdkmath.Uint) {
	store := k.prefixStore(ctx, types.NativeLedgerPrefix)
	if amount.IsZero() {
		mustDelete(store, ext[:])
		return
	}
	mustSet(store, ext[:], []byte(amount.String()))
}

// SendNative records amount leaving the chain.
func (k Keeper) SendNative(ctx types.Context, ext types.ExternalTokenID, amount sdkmath.Uint) {
	k.setOutstandingNative(ctx, ext, k.OutstandingNative(ctx, ext).Add(amount))
}

// ReceiveNative records amount coming back. It fails if more comes back than went out.
func (k Keeper) ReceiveNative(ctx types.Context, ext types.ExternalTokenID, amount sdkmath.Uint) error {
	outstanding := k.OutstandingNative(ctx, ext)
	if outstanding.LT(amount) {
		return errorsmod.Wrapf(types.ErrInsufficientFunds, "outstanding %s < %s", outstanding, amount)
	}
	k.setOutstandingNative(ctx, ext, outstanding.Sub(amount))
	return nil
}
