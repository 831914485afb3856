package keeper

import (
	"encoding/binary"

	errorsmod "cosmossdk.io/errors"

	"github.com/ramboll-max/wormhole/pkg/vaa"
	"github.com/ramboll-max/wormhole/x/tokenbridge/types"
)

func wrappedAssetKey(chainID vaa.ChainID, address vaa.Address) []byte {
	key := make([]byte, 34)
	binary.BigEndian.PutUint16(key[:2], uint16(chainID))
	copy(key[2:], address[:])
	return key
}

// SetWrappedAssetSeq records the attestation sequence a wrapped asset creation was requested for.
func (k Keeper) SetWrappedAssetSeq(ctx types.Context, chainID vaa.ChainID, address vaa.Address, sequence uint64) {
	setUint64(k.prefixStore(ctx, types.WrappedAssetSeqPrefix), wrappedAssetKey(chainID, address), sequence)
}

func (k Keeper) GetWrappedAssetSeq(ctx types.Context, chainID vaa.ChainID, address vaa.Address) (uint64, bool) {
	return getUint64(k.prefixStore(ctx, types.WrappedAssetSeqPrefix), wrappedAssetKey(chainID, address))
}

func (k Keeper) RemoveWrappedAssetSeq(ctx types.Context, chainID vaa.ChainID, address vaa.Address) {
	mustDelete(k.prefixStore(ctx, types.WrappedAssetSeqPrefix), wrappedAssetKey(chainID, address))
}

// SetWrappedAssetTemp stores the pending creation record. Only one creation
// may be pending at a time.
func (k Keeper) SetWrappedAssetTemp(ctx types.Context, temp types.WrappedAssetTemp) {
	k.save(ctx.KVStore(), types.WrappedAssetTempKey, &temp)
}

func (k Keeper) GetWrappedAssetTemp(ctx types.Context) (temp types.WrappedAssetTemp, found bool) {
	found = k.load(ctx.KVStore(), types.WrappedAssetTempKey, &temp)
	return temp, found
}

func (k Keeper) RemoveWrappedAssetTemp(ctx types.Context) {
	mustDelete(ctx.KVStore(), types.WrappedAssetTempKey)
}

// RegisterWrapped binds denom to the foreign token (chainID, address) in
// both directions. A token can only be registered once.
func (k Keeper) RegisterWrapped(ctx types.Context, chainID vaa.ChainID, address vaa.Address, denom string, decimals uint8) error {
	if denom == "" {
		return errorsmod.Wrap(types.ErrInvalidAsset, "empty wrapped denom")
	}
	if existing, found := k.GetWrappedDenom(ctx, chainID, address); found {
		return errorsmod.Wrapf(types.ErrAlreadyAttested, "registered as %s", existing)
	}
	if _, found := k.GetDenomWrappedAsset(ctx, denom); found {
		return errorsmod.Wrapf(types.ErrAlreadyAttested, "denom %s is already bound", denom)
	}

	mustSet(k.prefixStore(ctx, types.WrappedAssetDenomPrefix), wrappedAssetKey(chainID, address), []byte(denom))
	k.save(k.prefixStore(ctx, types.DenomWrappedAssetPrefix), []byte(denom), &types.WrappedAsset{
		Denom:          denom,
		ChainID:        uint16(chainID),
		ForeignAddress: address,
		Decimals:       decimals,
	})
	return nil
}

// GetWrappedDenom returns the local denom of a registered foreign token.
func (k Keeper) GetWrappedDenom(ctx types.Context, chainID vaa.ChainID, address vaa.Address) (string, bool) {
	bz := mustGet(k.prefixStore(ctx, types.WrappedAssetDenomPrefix), wrappedAssetKey(chainID, address))
	if bz == nil {
		return "", false
	}
	return string(bz), true
}

// GetDenomWrappedAsset returns the origin of a wrapped denom.
func (k Keeper) GetDenomWrappedAsset(ctx types.Context, denom string) (asset types.WrappedAsset, found bool) {
	if denom == "" {
		return asset, false
	}
	found = k.load(k.prefixStore(ctx, types.DenomWrappedAssetPrefix), []byte(denom), &asset)
	return asset, found
}

// GetAllWrappedAssets returns every registered wrapped denom.
func (k Keeper) GetAllWrappedAssets(ctx types.Context) (list []types.WrappedAsset) {
	mustIterate(k.prefixStore(ctx, types.DenomWrappedAssetPrefix), nil, func(_, value []byte) bool {
		var asset types.WrappedAsset
		if err := k.cdc.Unmarshal(value, &asset); err != nil {
			panic(err)
		}
		list = append(list, asset)
		return true
	})
	return
}
