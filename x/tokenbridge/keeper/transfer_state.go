package keeper

import (
	"github.com/ramboll-max/wormhole/x/tokenbridge/types"
)

// The transfer state slot holds at most one contract token transfer that
// waits for its TransferFrom reply. An occupied slot locks out every other
// contract token transfer.

func (k Keeper) SetTransferState(ctx types.Context, state types.TransferState) {
	k.save(ctx.KVStore(), types.TransferTempKey, &state)
}

func (k Keeper) GetTransferState(ctx types.Context) (state types.TransferState, found bool) {
	found = k.load(ctx.KVStore(), types.TransferTempKey, &state)
	return state, found
}

func (k Keeper) RemoveTransferState(ctx types.Context) {
	mustDelete(ctx.KVStore(), types.TransferTempKey)
}

func (k Keeper) TransferInProgress(ctx types.Context) bool {
	return mustHas(ctx.KVStore(), types.TransferTempKey)
}
