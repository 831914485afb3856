package keeper

import (
	errorsmod "cosmossdk.io/errors"
	"go.uber.org/zap"

	"github.com/ramboll-max/wormhole/pkg/vaa"
	"github.com/ramboll-max/wormhole/x/tokenbridge/types"
)

// CreateAssetMeta posts the metadata of a token of this chain so that other
// chains can create a wrapped representation. Attached funds pay the
// message fee.
func (k Keeper) CreateAssetMeta(ctx types.Context, info types.MessageInfo, msg types.MsgCreateAssetMeta) (*types.Response, error) {
	return k.execute(ctx, "create_asset_meta", func(ctx types.Context) (*types.Response, error) {
		cfg, err := k.config(ctx)
		if err != nil {
			return nil, err
		}
		if err := msg.AssetInfo.Validate(); err != nil {
			return nil, err
		}

		var meta *types.AssetMeta
		if bank := msg.AssetInfo.BankToken; bank != nil {
			meta, err = k.bankAssetMeta(ctx, bank.Denom)
		} else {
			meta, err = k.contractAssetMeta(ctx, msg.AssetInfo.Token.ContractAddr)
		}
		if err != nil {
			return nil, err
		}
		meta.TokenChain = cfg.Chain()

		res := types.NewResponse()
		k.postMessage(res, meta, msg.Nonce, info.Funds)
		return res.AddEvent(types.NewEvent(types.EventTypeAssetMeta,
			types.NewAttribute("meta.token_chain", uint16(meta.TokenChain)),
			types.NewAttribute("meta.token", msg.AssetInfo),
			types.NewAttribute("meta.symbol", meta.Symbol),
			types.NewAttribute("meta.decimals", meta.Decimals),
			types.NewAttribute("meta.asset_id", meta.TokenAddress),
			types.NewAttribute("meta.nonce", msg.Nonce),
			types.NewAttribute("meta.block_time", ctx.BlockTime().Unix()),
		)), nil
	})
}

func (k Keeper) bankAssetMeta(ctx types.Context, denom string) (*types.AssetMeta, error) {
	if _, wrapped := k.GetDenomWrappedAsset(ctx, denom); wrapped {
		return nil, errorsmod.Wrapf(types.ErrAttestWrappedAsset, "denom %s", denom)
	}
	metadata, err := ctx.Querier().DenomMetadata(ctx, denom)
	if err != nil {
		return nil, errorsmod.Wrapf(types.ErrTokenNotFound, "denom metadata of %s: %v", denom, err)
	}
	decimals, err := metadata.Decimals()
	if err != nil {
		return nil, err
	}
	ext, err := k.StoreTokenID(ctx, types.BankToken{Denom: denom})
	if err != nil {
		return nil, err
	}

	symbol := metadata.Symbol
	if symbol == "" {
		symbol = metadata.Display
	}
	name := metadata.Name
	if name == "" {
		name = metadata.Base
	}
	return &types.AssetMeta{
		TokenAddress: ext.Address(),
		Decimals:     decimals,
		Symbol:       symbol,
		Name:         name,
	}, nil
}

func (k Keeper) contractAssetMeta(ctx types.Context, contract string) (*types.AssetMeta, error) {
	tokenInfo, err := ctx.Querier().TokenInfo(ctx, contract)
	if err != nil {
		return nil, errorsmod.Wrapf(types.ErrTokenNotFound, "token info of %s: %v", contract, err)
	}
	ext, err := k.StoreTokenID(ctx, types.ContractToken{ContractAddress: contract})
	if err != nil {
		return nil, err
	}
	return &types.AssetMeta{
		TokenAddress: ext.Address(),
		Decimals:     tokenInfo.Decimals,
		Symbol:       tokenInfo.Symbol,
		Name:         tokenInfo.Name,
	}, nil
}

// handleCreateWrapped requests the creation of the wrapped representation of
// an attested foreign token. Registration completes in handleIssueReply.
func (k Keeper) handleCreateWrapped(ctx types.Context, cfg types.Config, v *vaa.VAA, meta *types.AssetMeta) (*types.Response, error) {
	if err := k.checkEmitter(ctx, v.EmitterChain, v.EmitterAddress); err != nil {
		return nil, err
	}
	if meta.TokenChain == cfg.Chain() {
		return nil, errorsmod.Wrapf(types.ErrNativeAssetAttestation, "token %s", meta.TokenAddress)
	}
	if denom, found := k.GetWrappedDenom(ctx, meta.TokenChain, meta.TokenAddress); found {
		return nil, errorsmod.Wrapf(types.ErrAlreadyAttested, "registered as %s", denom)
	}
	if _, pending := k.GetWrappedAssetTemp(ctx); pending {
		return nil, types.ErrAttestationInProgress
	}

	decimals := meta.Decimals
	if cfg.CapWrappedDecimals && decimals > types.WireDecimals {
		decimals = types.WireDecimals
	}
	if err := types.ValidateDecimals(decimals); err != nil {
		return nil, err
	}

	k.SetWrappedAssetSeq(ctx, meta.TokenChain, meta.TokenAddress, v.Sequence)
	k.SetWrappedAssetTemp(ctx, types.WrappedAssetTemp{
		ChainID:        uint16(meta.TokenChain),
		ForeignAddress: meta.TokenAddress,
		Decimals:       decimals,
		Sequence:       v.Sequence,
	})

	issue := types.IssueTokenMsg{
		Name:        types.WrappedName(meta.Name),
		Symbol:      types.WrappedSymbol(meta.Symbol),
		Decimals:    decimals,
		Description: types.WrappedDescription(meta.Name),
		Subdenom:    types.GetWrappedCoinIdentifier(meta.TokenChain, meta.TokenAddress),
	}

	k.logger.Info("creating wrapped asset",
		zap.Stringer("token_chain", meta.TokenChain),
		zap.Stringer("token_address", meta.TokenAddress),
		zap.String("name", issue.Name),
		zap.Uint64("sequence", v.Sequence))

	return types.NewResponse().
		AddSubMessage(types.ReplyIDIssue, issue, types.ReplyAlways).
		AddEvent(types.NewEvent(types.EventTypeCreateWrapped,
			types.NewAttribute("token_chain", uint16(meta.TokenChain)),
			types.NewAttribute("token_address", meta.TokenAddress),
			types.NewAttribute("wrapped_name", issue.Name),
			types.NewAttribute("wrapped_symbol", issue.Symbol),
			types.NewAttribute("wrapped_decimals", decimals),
		)), nil
}
