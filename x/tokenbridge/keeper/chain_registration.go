package keeper

import (
	"encoding/binary"

	errorsmod "cosmossdk.io/errors"

	"github.com/ramboll-max/wormhole/pkg/vaa"
	"github.com/ramboll-max/wormhole/x/tokenbridge/types"
)

func chainRegistrationKey(chainID vaa.ChainID) []byte {
	key := make([]byte, 2)
	binary.BigEndian.PutUint16(key, uint16(chainID))
	return key
}

// SetChainRegistration set a specific chainRegistration in the store from its index
func (k Keeper) SetChainRegistration(ctx types.Context, chainRegistration types.ChainRegistration) {
	store := k.prefixStore(ctx, types.ChainRegistrationKeyPrefix)
	k.save(store, chainRegistrationKey(vaa.ChainID(chainRegistration.ChainID)), &chainRegistration)
}

// GetChainRegistration returns a chainRegistration from its index
func (k Keeper) GetChainRegistration(ctx types.Context, chainID vaa.ChainID) (val types.ChainRegistration, found bool) {
	store := k.prefixStore(ctx, types.ChainRegistrationKeyPrefix)
	found = k.load(store, chainRegistrationKey(chainID), &val)
	return val, found
}

// RemoveChainRegistration removes a chainRegistration from the store
func (k Keeper) RemoveChainRegistration(ctx types.Context, chainID vaa.ChainID) {
	store := k.prefixStore(ctx, types.ChainRegistrationKeyPrefix)
	mustDelete(store, chainRegistrationKey(chainID))
}

// GetAllChainRegistrations returns all chainRegistration ordered by chain id
func (k Keeper) GetAllChainRegistrations(ctx types.Context) (list []types.ChainRegistration) {
	store := k.prefixStore(ctx, types.ChainRegistrationKeyPrefix)
	mustIterate(store, nil, func(_, value []byte) bool {
		var val types.ChainRegistration
		if err := k.cdc.Unmarshal(value, &val); err != nil {
			panic(err)
		}
		list = append(list, val)
		return true
	})
	return
}

// checkEmitter authenticates a token bridge message against the bridge
// contract registered for its emitter chain.
func (k Keeper) checkEmitter(ctx types.Context, chainID vaa.ChainID, emitter vaa.Address) error {
	registration, found := k.GetChainRegistration(ctx, chainID)
	if !found {
		return errorsmod.Wrapf(types.ErrUnregisteredEmitter, "chain %d", chainID)
	}
	if registration.EmitterAddress != emitter {
		return errorsmod.Wrapf(types.ErrInvalidEmitter, "chain %d emitter %s", chainID, emitter)
	}
	return nil
}
