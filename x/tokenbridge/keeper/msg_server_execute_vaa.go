package keeper

import (
	"errors"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/ramboll-max/wormhole/pkg/vaa"
	"github.com/ramboll-max/wormhole/x/tokenbridge/types"
)

// SubmitVAA executes a governance action, a Transfer or an AssetMeta
// attestation. The sender of a Transfer collects its fee.
func (k Keeper) SubmitVAA(ctx types.Context, info types.MessageInfo, data []byte) (*types.Response, error) {
	return k.execute(ctx, "submit_vaa", func(ctx types.Context) (*types.Response, error) {
		cfg, v, err := k.parseAndArchiveVAA(ctx, data)
		if err != nil {
			return nil, err
		}

		if cfg.IsGovernanceEmitter(v.EmitterChain, v.EmitterAddress) {
			return k.handleGovernancePayload(ctx, cfg, v)
		}

		message, err := types.ParseMessage(v.Payload)
		if err != nil {
			return nil, err
		}
		switch m := message.(type) {
		case *types.Transfer:
			return k.completeTransfer(ctx, cfg, v, inboundTransfer{
				amount:         m.Amount,
				fee:            m.Fee,
				tokenAddress:   m.TokenAddress,
				tokenChain:     m.TokenChain,
				recipient:      m.Recipient,
				recipientChain: m.RecipientChain,
			}, info.Sender, info.Sender)
		case *types.AssetMeta:
			return k.handleCreateWrapped(ctx, cfg, v, m)
		default:
			return nil, errorsmod.Wrapf(types.ErrInvalidVAAAction, "payload id %d must be completed by the recipient", message.PayloadID())
		}
	})
}

// ExecuteGovernanceVAA executes a VAA that must come from the governance emitter.
func (k Keeper) ExecuteGovernanceVAA(ctx types.Context, data []byte) (*types.Response, error) {
	return k.execute(ctx, "execute_governance_vaa", func(ctx types.Context) (*types.Response, error) {
		cfg, v, err := k.parseAndArchiveVAA(ctx, data)
		if err != nil {
			return nil, err
		}
		if !cfg.IsGovernanceEmitter(v.EmitterChain, v.EmitterAddress) {
			return nil, errorsmod.Wrapf(types.ErrInvalidGovernanceEmitter, "%d/%s", v.EmitterChain, v.EmitterAddress)
		}
		return k.handleGovernancePayload(ctx, cfg, v)
	})
}

// CompleteTransferWithPayload redeems a TransferWithPayload. Only the
// recipient may call it; relayer is credited with the (zero) fee.
func (k Keeper) CompleteTransferWithPayload(ctx types.Context, info types.MessageInfo, msg types.MsgCompleteTransferWithPayload) (*types.Response, error) {
	return k.execute(ctx, "complete_transfer_with_payload", func(ctx types.Context) (*types.Response, error) {
		cfg, v, err := k.parseAndArchiveVAA(ctx, msg.Data)
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
		m, ok := message.(*types.TransferWithPayload)
		if !ok {
			return nil, errorsmod.Wrapf(types.ErrInvalidVAAAction, "payload id %d", message.PayloadID())
		}

		res, err := k.completeTransfer(ctx, cfg, v, inboundTransfer{
			amount:         m.Amount,
			fee:            new(uint256.Int),
			tokenAddress:   m.TokenAddress,
			tokenChain:     m.TokenChain,
			recipient:      m.Recipient,
			recipientChain: m.RecipientChain,
			withPayload:    true,
		}, info.Sender, msg.Relayer)
		if err != nil {
			return nil, err
		}
		return res.AddAttribute("transfer.payload_sender", m.SenderAddress), nil
	})
}

// parseAndArchiveVAA verifies data and adds it to the replay set. Nothing
// else is written before this succeeds.
func (k Keeper) parseAndArchiveVAA(ctx types.Context, data []byte) (types.Config, *vaa.VAA, error) {
	cfg, err := k.config(ctx)
	if err != nil {
		return cfg, nil, err
	}

	v, err := k.verifyVAA(ctx, data)
	if err != nil {
		return cfg, nil, err
	}

	hash := v.HexDigest()
	if k.IsVAAConsumed(ctx, hash) {
		return cfg, nil, errorsmod.Wrap(types.ErrVAAAlreadyExecuted, hash)
	}
	k.SetReplayProtection(ctx, hash)

	k.logger.Debug("accepted VAA",
		zap.String("message_id", v.MessageID()),
		zap.String("digest", hash))
	return cfg, v, nil
}

func (k Keeper) verifyVAA(ctx types.Context, data []byte) (*vaa.VAA, error) {
	v, err := k.verifier.VerifyVAA(ctx, data)
	switch {
	case err == nil:
		return v, nil
	case errors.Is(err, vaa.ErrVAATooShort),
		errors.Is(err, vaa.ErrUnsupportedVersion),
		errors.Is(err, vaa.ErrTruncatedSignatures):
		return nil, errorsmod.Wrap(types.ErrInvalidVAA, err.Error())
	default:
		return nil, errorsmod.Wrap(types.ErrVAAVerification, err.Error())
	}
}

// inboundTransfer is the common part of Transfer and TransferWithPayload.
type inboundTransfer struct {
	amount         *uint256.Int
	fee            *uint256.Int
	tokenAddress   vaa.Address
	tokenChain     vaa.ChainID
	recipient      vaa.Address
	recipientChain vaa.ChainID
	withPayload    bool
}

// completeTransfer pays out an inbound transfer: amount to the recipient and
// fee to the relayer. Wrapped tokens are minted, local tokens are released
// from custody.
func (k Keeper) completeTransfer(ctx types.Context, cfg types.Config, v *vaa.VAA, t inboundTransfer, sender, relayer string) (*types.Response, error) {
	if err := k.checkEmitter(ctx, v.EmitterChain, v.EmitterAddress); err != nil {
		return nil, err
	}
	if t.recipientChain != cfg.Chain() {
		return nil, errorsmod.Wrapf(types.ErrWrongDestinationChain, "recipient chain %d", t.recipientChain)
	}

	recipient, err := k.addrs.Humanize(ctx, t.recipient)
	if err != nil {
		return nil, errorsmod.Wrapf(types.ErrInvalidAddress, "recipient %s: %v", t.recipient, err)
	}
	if t.withPayload && recipient != sender {
		return nil, types.ErrPayloadRecipientOnly
	}

	tokenID, err := k.ResolveExternalID(ctx, types.ExternalTokenID(t.tokenAddress), t.tokenChain)
	if err != nil {
		return nil, err
	}

	amount, fee := types.UintFromWire(t.amount), types.UintFromWire(t.fee)
	total := amount.Add(fee)
	if total.IsZero() {
		return nil, errorsmod.Wrap(types.ErrZeroAmount, "zero amount and fee total")
	}

	res := types.NewResponse()

	switch id := tokenID.(type) {
	case types.ForeignToken:
		denom, found := k.GetWrappedDenom(ctx, id.ChainID, id.Address)
		if !found {
			return nil, errorsmod.Wrapf(types.ErrAssetNotAttested, "%d/%s", id.ChainID, id.Address)
		}
		wrapped, found := k.GetDenomWrappedAsset(ctx, denom)
		if !found {
			return nil, errorsmod.Wrapf(types.ErrAssetNotAttested, "denom %s", denom)
		}
		localAmount, localFee, err := fromWirePair(amount, fee, wrapped.Decimals)
		if err != nil {
			return nil, err
		}

		if !localAmount.IsZero() {
			res.AddMessage(types.MintMsg{Denom: denom, Amount: localAmount, Recipient: recipient})
		}
		if !localFee.IsZero() {
			res.AddMessage(types.MintMsg{Denom: denom, Amount: localFee, Recipient: relayer})
		}
		res.AddEvent(types.NewEvent(types.EventTypeCompleteTransferWrapped,
			types.NewAttribute("wrapped_denom", denom),
			types.NewAttribute("recipient", recipient),
			types.NewAttribute(types.AttributeKeyAmount, localAmount),
			types.NewAttribute("relayer", relayer),
			types.NewAttribute(types.AttributeKeyFee, localFee),
		))
		return res, nil

	case types.BankToken, types.ContractToken:
		if err := k.ReceiveNative(ctx, types.ExternalTokenID(t.tokenAddress), total); err != nil {
			return nil, err
		}

		asset, decimals, err := k.localAsset(ctx, id)
		if err != nil {
			return nil, err
		}
		localAmount, localFee, err := fromWirePair(amount, fee, decimals)
		if err != nil {
			return nil, err
		}

		if !localAmount.IsZero() {
			res.AddMessage(types.SendMsg{Asset: asset, Amount: localAmount, Recipient: recipient})
		}
		if !localFee.IsZero() {
			res.AddMessage(types.SendMsg{Asset: asset, Amount: localFee, Recipient: relayer})
		}
		res.AddEvent(types.NewEvent(types.EventTypeCompleteTransferNative,
			types.NewAttribute("asset", asset),
			types.NewAttribute("recipient", recipient),
			types.NewAttribute(types.AttributeKeyAmount, localAmount),
			types.NewAttribute("relayer", relayer),
			types.NewAttribute(types.AttributeKeyFee, localFee),
		))
		return res, nil

	default:
		return nil, errorsmod.Wrapf(types.ErrInvalidAsset, "unknown token id %T", tokenID)
	}
}

// localAsset returns the custody asset and the decimals of a token of this chain.
func (k Keeper) localAsset(ctx types.Context, id types.TokenID) (types.AssetInfo, uint8, error) {
	switch t := id.(type) {
	case types.BankToken:
		metadata, err := ctx.Querier().DenomMetadata(ctx, t.Denom)
		if err != nil {
			return types.AssetInfo{}, 0, errorsmod.Wrapf(types.ErrTokenNotFound, "denom metadata of %s: %v", t.Denom, err)
		}
		decimals, err := metadata.Decimals()
		return types.NewBankAsset(t.Denom), decimals, err
	case types.ContractToken:
		info, err := ctx.Querier().TokenInfo(ctx, t.ContractAddress)
		if err != nil {
			return types.AssetInfo{}, 0, errorsmod.Wrapf(types.ErrTokenNotFound, "token info of %s: %v", t.ContractAddress, err)
		}
		return types.NewTokenAsset(t.ContractAddress), info.Decimals, nil
	default:
		return types.AssetInfo{}, 0, errorsmod.Wrapf(types.ErrInvalidAsset, "%s is not a local token", id)
	}
}

func fromWirePair(amount, fee sdkmath.Uint, decimals uint8) (sdkmath.Uint, sdkmath.Uint, error) {
	if err := types.ValidateDecimals(decimals); err != nil {
		return amount, fee, err
	}
	localAmount, err := types.FromWire(amount, decimals)
	if err != nil {
		return localAmount, fee, err
	}
	localFee, err := types.FromWire(fee, decimals)
	return localAmount, localFee, err
}
