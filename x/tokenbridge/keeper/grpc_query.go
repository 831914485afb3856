package keeper

import (
	errorsmod "cosmossdk.io/errors"

	"github.com/ramboll-max/wormhole/pkg/vaa"
	"github.com/ramboll-max/wormhole/x/tokenbridge/types"
)

// Queries never write. They run against the caller's context directly and
// only recover store panics.

// WrappedRegistry returns the wrapped denom registered for a foreign token.
func (k Keeper) WrappedRegistry(ctx types.Context, chain vaa.ChainID, address vaa.Address) (denom string, err error) {
	defer k.recoverPanic("query_wrapped_registry", &err)

	denom, found := k.GetWrappedDenom(ctx, chain, address)
	if !found {
		return "", errorsmod.Wrapf(types.ErrAssetNotAttested, "%d/%s", chain, address)
	}
	return denom, nil
}

// TransferInfo decodes the transfer carried by a verified VAA without
// consuming it.
func (k Keeper) TransferInfo(ctx types.Context, data []byte) (resp *types.TransferInfoResponse, err error) {
	defer k.recoverPanic("query_transfer_info", &err)

	cfg, err := k.config(ctx)
	if err != nil {
		return nil, err
	}
	v, err := k.verifyVAA(ctx, data)
	if err != nil {
		return nil, err
	}
	if cfg.IsGovernanceEmitter(v.EmitterChain, v.EmitterAddress) {
		return nil, errorsmod.Wrap(types.ErrInvalidVAAAction, "governance VAA")
	}

	message, err := types.ParseMessage(v.Payload)
	if err != nil {
		return nil, err
	}
	switch m := message.(type) {
	case *types.Transfer:
		return &types.TransferInfoResponse{
			Amount:         types.UintFromWire(m.Amount),
			TokenAddress:   m.TokenAddress,
			TokenChain:     m.TokenChain,
			Recipient:      m.Recipient,
			RecipientChain: m.RecipientChain,
			Fee:            types.UintFromWire(m.Fee),
		}, nil
	case *types.TransferWithPayload:
		return &types.TransferInfoResponse{
			Amount:         types.UintFromWire(m.Amount),
			TokenAddress:   m.TokenAddress,
			TokenChain:     m.TokenChain,
			Recipient:      m.Recipient,
			RecipientChain: m.RecipientChain,
			Fee:            types.UintFromWire(nil),
			Payload:        m.Payload,
		}, nil
	default:
		return nil, errorsmod.Wrapf(types.ErrInvalidVAAAction, "payload id %d is not a transfer", message.PayloadID())
	}
}

// ExternalID resolves a 32 byte wire token address of this chain.
func (k Keeper) ExternalID(ctx types.Context, ext types.ExternalTokenID) (id types.TokenID, err error) {
	defer k.recoverPanic("query_external_id", &err)
	return k.LookupExternalID(ctx, ext)
}

func (k Keeper) DenomWrappedAssetInfo(ctx types.Context, denom string) (resp types.DenomWrappedAssetInfoResponse, err error) {
	defer k.recoverPanic("query_denom_wrapped_asset_info", &err)

	wrapped, found := k.GetDenomWrappedAsset(ctx, denom)
	if !found {
		return types.DenomWrappedAssetInfoResponse{}, nil
	}
	return types.DenomWrappedAssetInfoResponse{
		Found:        true,
		IsWrapped:    true,
		AssetChain:   vaa.ChainID(wrapped.ChainID),
		AssetAddress: append([]byte{}, wrapped.ForeignAddress[:]...),
	}, nil
}

func (k Keeper) QueryVAAConsumed(ctx types.Context, hash string) (consumed bool, err error) {
	defer k.recoverPanic("query_is_vaa_consumed", &err)
	return k.IsVAAConsumed(ctx, hash), nil
}

func (k Keeper) QueryChainRegistration(ctx types.Context, chain vaa.ChainID) (reg types.ChainRegistration, err error) {
	defer k.recoverPanic("query_chain_registration", &err)

	reg, found := k.GetChainRegistration(ctx, chain)
	if !found {
		return reg, errorsmod.Wrapf(types.ErrUnregisteredEmitter, "chain %d", chain)
	}
	return reg, nil
}

func (k Keeper) QueryAllChainRegistrations(ctx types.Context) (list []types.ChainRegistration, err error) {
	defer k.recoverPanic("query_all_chain_registrations", &err)
	return k.GetAllChainRegistrations(ctx), nil
}
