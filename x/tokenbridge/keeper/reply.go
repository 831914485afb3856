package keeper

import (
	"encoding/json"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	"go.uber.org/zap"

	"github.com/ramboll-max/wormhole/pkg/vaa"
	"github.com/ramboll-max/wormhole/x/tokenbridge/types"
)

// Resume is the continuation entry point. The host calls it with the result
// of a SubMsg that was issued with a reply id.
func (k Keeper) Resume(ctx types.Context, id uint64, result types.SubMsgResult) (*types.Response, error) {
	return k.execute(ctx, "reply", func(ctx types.Context) (*types.Response, error) {
		switch id {
		case types.ReplyIDIssue:
			return k.handleIssueReply(ctx, result)
		case types.ReplyIDTransferFrom:
			return k.handleTransferFromReply(ctx, result)
		default:
			return nil, errorsmod.Wrapf(types.ErrUnknownReply, "reply id %d", id)
		}
	})
}

// handleIssueReply finalizes a wrapped asset creation.
func (k Keeper) handleIssueReply(ctx types.Context, result types.SubMsgResult) (*types.Response, error) {
	temp, found := k.GetWrappedAssetTemp(ctx)
	if !found {
		return nil, errorsmod.Wrap(types.ErrNoPendingOperation, "no wrapped asset creation pending")
	}
	chainID, address := vaa.ChainID(temp.ChainID), vaa.Address(temp.ForeignAddress)

	if !result.IsOk() {
		// Release the asset so that a later attestation can create it.
		k.RemoveWrappedAssetTemp(ctx)
		k.RemoveWrappedAssetSeq(ctx, chainID, address)
		k.logger.Warn("wrapped asset creation failed",
			zap.Stringer("token_chain", chainID),
			zap.Stringer("token_address", address),
			zap.String("error", result.Err))
		return nil, &types.AbortError{
			Err: errorsmod.Wrapf(types.ErrSubOperationFailed, "issue: %s", result.Err),
			Unwind: types.NewResponse().AddEvent(types.NewEvent(types.EventTypeCreateWrappedReply,
				types.NewAttribute("token_chain", uint16(chainID)),
				types.NewAttribute("token_address", address),
				types.NewAttribute("error", result.Err),
			)),
		}
	}

	// The creation must have been requested by handleCreateWrapped for this
	// very attestation.
	sequence, found := k.GetWrappedAssetSeq(ctx, chainID, address)
	if !found || sequence != temp.Sequence {
		return nil, types.ErrRegistrationForbidden
	}

	var issued types.IssueTokenResponse
	if len(result.Data) == 0 {
		return nil, errorsmod.Wrap(types.ErrInvalidAsset, "no denom returned")
	}
	if err := json.Unmarshal(result.Data, &issued); err != nil {
		return nil, errorsmod.Wrapf(types.ErrInvalidAsset, "issue reply: %v", err)
	}

	if err := k.RegisterWrapped(ctx, chainID, address, issued.Denom, temp.Decimals); err != nil {
		return nil, err
	}
	k.RemoveWrappedAssetTemp(ctx)

	k.logger.Info("wrapped asset created",
		zap.Stringer("token_chain", chainID),
		zap.Stringer("token_address", address),
		zap.String("denom", issued.Denom))

	return types.NewResponse().AddEvent(types.NewEvent(types.EventTypeCreateWrappedReply,
		types.NewAttribute("wrapped_denom", issued.Denom),
	)), nil
}

// handleTransferFromReply completes a contract token transfer. The amount
// that actually arrived in custody replaces the requested amount, which
// accounts for tokens that charge a fee on transfer.
func (k Keeper) handleTransferFromReply(ctx types.Context, result types.SubMsgResult) (*types.Response, error) {
	state, found := k.GetTransferState(ctx)
	if !found {
		return nil, errorsmod.Wrap(types.ErrNoPendingOperation, "no transfer in progress")
	}
	// the slot is cleared on every path
	k.RemoveTransferState(ctx)

	if !result.IsOk() {
		return nil, &types.AbortError{
			Err: errorsmod.Wrapf(types.ErrSubOperationFailed, "transfer from: %s", result.Err),
			Unwind: types.NewResponse().AddEvent(types.NewEvent(types.EventTypeTransferAborted,
				types.NewAttribute("contract", state.TokenAddress),
				types.NewAttribute("account", state.Account),
				types.NewAttribute("error", result.Err),
			)),
		}
	}

	message, err := types.ParseMessage(state.Message)
	if err != nil {
		return nil, err
	}
	previous, err := sdkmath.ParseUint(state.PreviousBalance)
	if err != nil {
		return nil, err
	}
	multiplier, err := sdkmath.ParseUint(state.Multiplier)
	if err != nil {
		return nil, err
	}

	balance, err := ctx.Querier().Balance(ctx, types.NewTokenAsset(state.TokenAddress), ctx.ContractAddress())
	if err != nil {
		return nil, errorsmod.Wrapf(types.ErrTokenNotFound, "balance of %s: %v", state.TokenAddress, err)
	}
	received := sdkmath.ZeroUint()
	if balance.GT(previous) {
		received = balance.Sub(previous)
	}
	wire := received.Quo(multiplier)

	var fee sdkmath.Uint
	switch m := message.(type) {
	case *types.Transfer:
		fee = types.UintFromWire(m.Fee)
	case *types.TransferWithPayload:
		fee = sdkmath.ZeroUint()
	default:
		return nil, errorsmod.Wrapf(types.ErrInvalidVAAAction, "pending message has payload id %d", message.PayloadID())
	}

	if fee.GT(wire) {
		// the recipient would get nothing, refund what arrived
		k.logger.Info("aborting contract token transfer",
			zap.String("contract", state.TokenAddress),
			zap.Stringer("received", received),
			zap.Stringer("fee", fee))
		res := types.NewResponse().AddEvent(types.NewEvent(types.EventTypeTransferAborted,
			types.NewAttribute("contract", state.TokenAddress),
			types.NewAttribute("account", state.Account),
			types.NewAttribute(types.AttributeKeyAmount, received),
			types.NewAttribute(types.AttributeKeyFee, fee),
		))
		if !received.IsZero() {
			res.AddMessage(types.SendMsg{
				Asset:     types.NewTokenAsset(state.TokenAddress),
				Amount:    received,
				Recipient: state.Account,
			})
		}
		return nil, &types.AbortError{
			Err:    errorsmod.Wrapf(types.ErrFeeExceedsAmount, "fee %s > received %s", fee, wire),
			Unwind: res,
		}
	}

	amount, err := types.UintToWire(wire.Sub(fee))
	if err != nil {
		return nil, err
	}
	switch m := message.(type) {
	case *types.Transfer:
		m.Amount = amount
	case *types.TransferWithPayload:
		m.Amount = amount
	}

	funds, err := types.CoinsFromRecords(state.MessageFee)
	if err != nil {
		return nil, err
	}
	res := types.NewResponse()
	k.postMessage(res, message, state.Nonce, funds)

	ext, found := k.GetExternalID(ctx, types.ContractToken{ContractAddress: state.TokenAddress})
	if !found {
		return nil, errorsmod.Wrapf(types.ErrTokenNotFound, "external id of %s", state.TokenAddress)
	}
	k.SendNative(ctx, ext, wire)

	return res.
		AddAttribute(types.AttributeKeyAction, "reply_handler").
		AddAttribute(types.AttributeKeyAmount, wire.Sub(fee)).
		AddAttribute(types.AttributeKeyFee, fee), nil
}
