package keeper

import (
	errorsmod "cosmossdk.io/errors"
	"go.uber.org/zap"

	"github.com/ramboll-max/wormhole/pkg/vaa"
	"github.com/ramboll-max/wormhole/x/tokenbridge/types"
)

// StoreTokenID returns the external id of id. Local tokens get the next
// registry sequence the first time they are seen; the mapping never changes
// afterwards. Foreign tokens are identified by their origin address.
func (k Keeper) StoreTokenID(ctx types.Context, id types.TokenID) (types.ExternalTokenID, error) {
	var ext types.ExternalTokenID

	switch t := id.(type) {
	case types.ForeignToken:
		return types.ExternalTokenID(t.Address), nil
	case types.BankToken:
		if t.Denom == "" {
			return ext, errorsmod.Wrap(types.ErrInvalidAsset, "empty denom")
		}
	case types.ContractToken:
		if t.ContractAddress == "" {
			return ext, errorsmod.Wrap(types.ErrInvalidAsset, "empty contract address")
		}
	default:
		return ext, errorsmod.Wrapf(types.ErrInvalidAsset, "unknown token id %T", id)
	}

	if existing, found := k.GetExternalID(ctx, id); found {
		return existing, nil
	}

	ext = types.NewLocalExternalID(id.Kind(), k.nextTokenSequence(ctx))
	mustSet(k.prefixStore(ctx, types.ExternalByTokenIDPrefix), id.Key(), ext[:])
	mustSet(k.prefixStore(ctx, types.TokenIDByExternalPrefix), ext[:], id.Key())

	k.logger.Debug("assigned external token id",
		zap.Stringer("token", id),
		zap.Stringer("external_id", ext))
	return ext, nil
}

// GetExternalID looks up the external id assigned to a local token.
func (k Keeper) GetExternalID(ctx types.Context, id types.TokenID) (ext types.ExternalTokenID, found bool) {
	bz := mustGet(k.prefixStore(ctx, types.ExternalByTokenIDPrefix), id.Key())
	if bz == nil {
		return ext, false
	}
	copy(ext[:], bz)
	return ext, true
}

// LookupExternalID returns the local token an external id was assigned to.
func (k Keeper) LookupExternalID(ctx types.Context, ext types.ExternalTokenID) (types.TokenID, error) {
	bz := mustGet(k.prefixStore(ctx, types.TokenIDByExternalPrefix), ext[:])
	if bz == nil {
		return nil, errorsmod.Wrapf(types.ErrTokenNotFound, "external id %s", ext)
	}
	return types.ParseTokenIDKey(bz)
}

// ResolveExternalID maps a wire token address to a token identity. Tokens of
// this chain are looked up in the registry, any other token is foreign.
// ResolveExternalID never writes.
func (k Keeper) ResolveExternalID(ctx types.Context, ext types.ExternalTokenID, tokenChain vaa.ChainID) (types.TokenID, error) {
	cfg, err := k.config(ctx)
	if err != nil {
		return nil, err
	}
	if tokenChain == cfg.Chain() {
		return k.LookupExternalID(ctx, ext)
	}
	return types.ForeignToken{ChainID: tokenChain, Address: ext.Address()}, nil
}

func (k Keeper) nextTokenSequence(ctx types.Context) uint64 {
	store := ctx.KVStore()
	seq, _ := getUint64(store, types.TokenSequenceKey)
	seq++
	setUint64(store, types.TokenSequenceKey, seq)
	return seq
}
