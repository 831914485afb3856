package keeper

import (
	"github.com/ramboll-max/wormhole/x/tokenbridge/types"
)

var consumed = []byte{1}

// SetReplayProtection marks the VAA with the given hex digest as consumed.
func (k Keeper) SetReplayProtection(ctx types.Context, hash string) {
	store := k.prefixStore(ctx, types.ReplayProtectionKeyPrefix)
	mustSet(store, []byte(hash), consumed)
	vaasConsumedTotal.Inc()
}

// IsVAAConsumed reports whether the VAA with the given hex digest was already executed.
func (k Keeper) IsVAAConsumed(ctx types.Context, hash string) bool {
	if hash == "" {
		return false
	}
	store := k.prefixStore(ctx, types.ReplayProtectionKeyPrefix)
	return mustHas(store, []byte(hash))
}
