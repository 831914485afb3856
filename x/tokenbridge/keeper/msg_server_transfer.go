package keeper

import (
	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/ramboll-max/wormhole/pkg/vaa"
	"github.com/ramboll-max/wormhole/x/tokenbridge/types"
)

// transferRequest is an outbound transfer as requested by the caller, in
// local token units.
type transferRequest struct {
	sender         string
	amount         sdkmath.Uint
	fee            sdkmath.Uint
	recipientChain vaa.ChainID
	recipient      vaa.Address
	payload        []byte
	withPayload    bool
	nonce          uint32
	// messageFee is forwarded to the core bridge with the posted message
	messageFee types.Coins
}

// outboundTransfer is the wire form of a transfer leaving this chain.
type outboundTransfer struct {
	tokenAddress   vaa.Address
	tokenChain     vaa.ChainID
	recipient      vaa.Address
	recipientChain vaa.ChainID
	sender         vaa.Address
	payload        []byte
	withPayload    bool
	amount         *uint256.Int
	fee            *uint256.Int
}

func (t outboundTransfer) message() types.Message {
	if t.withPayload {
		return &types.TransferWithPayload{
			Amount:         t.amount,
			TokenAddress:   t.tokenAddress,
			TokenChain:     t.tokenChain,
			Recipient:      t.recipient,
			RecipientChain: t.recipientChain,
			SenderAddress:  t.sender,
			Payload:        t.payload,
		}
	}
	return &types.Transfer{
		Amount:         t.amount,
		TokenAddress:   t.tokenAddress,
		TokenChain:     t.tokenChain,
		Recipient:      t.recipient,
		RecipientChain: t.recipientChain,
		Fee:            t.fee,
	}
}

func (t outboundTransfer) event(ctx types.Context, typ string, amount sdkmath.Uint, nonce uint32, extra ...types.Attribute) types.Event {
	attrs := []types.Attribute{
		types.NewAttribute("transfer.token_chain", uint16(t.tokenChain)),
		types.NewAttribute("transfer.token", t.tokenAddress),
		types.NewAttribute("transfer.sender", t.sender),
		types.NewAttribute("transfer.recipient_chain", uint16(t.recipientChain)),
		types.NewAttribute("transfer.recipient", t.recipient),
		types.NewAttribute("transfer.amount", amount),
		types.NewAttribute("transfer.nonce", nonce),
		types.NewAttribute("transfer.block_time", ctx.BlockTime().Unix()),
	}
	return types.NewEvent(typ, append(attrs, extra...)...)
}

func validateOutbound(cfg types.Config, req transferRequest) error {
	if req.recipientChain == cfg.Chain() {
		return errorsmod.Wrapf(types.ErrSameSourceAndTarget, "chain %d", req.recipientChain)
	}
	if req.amount.IsZero() {
		return types.ErrZeroAmount
	}
	if req.fee.GT(req.amount) {
		return errorsmod.Wrapf(types.ErrFeeExceedsAmount, "fee %s > amount %s", req.fee, req.amount)
	}
	return nil
}

// splitWire normalizes the caller's amount and fee independently. The wire
// amount is what the recipient receives and the wire fee is paid on top, so
// together they equal total, the normalized amount. Transfers with payload
// carry no fee.
func splitWire(req transferRequest, decimals uint8) (total sdkmath.Uint, amount, fee *uint256.Int, err error) {
	if err = types.ValidateDecimals(decimals); err != nil {
		return
	}
	total, _ = types.ToWire(req.amount, decimals)
	wireFee, _ := types.ToWire(req.fee, decimals)
	if req.withPayload {
		wireFee = sdkmath.ZeroUint()
	}

	if amount, err = types.UintToWire(total.Sub(wireFee)); err != nil {
		return
	}
	fee, err = types.UintToWire(wireFee)
	return
}

func (k Keeper) canonicalize(ctx types.Context, human string) (vaa.Address, error) {
	addr, err := k.addrs.Canonicalize(ctx, human)
	if err != nil {
		return addr, errorsmod.Wrapf(types.ErrInvalidAddress, "%s: %v", human, err)
	}
	return addr, nil
}

func (k Keeper) postMessage(res *types.Response, msg types.Message, nonce uint32, funds types.Coins) {
	res.AddMessage(types.PostMessageMsg{Payload: msg.Serialize(), Nonce: nonce, Funds: funds})
	messagesPostedTotal.WithLabelValues(payloadLabel(msg)).Inc()
}

func payloadLabel(msg types.Message) string {
	switch msg.PayloadID() {
	case types.PayloadIDTransfer:
		return "transfer"
	case types.PayloadIDAssetMeta:
		return "asset_meta"
	case types.PayloadIDTransferWithPayload:
		return "transfer_with_payload"
	default:
		return "unknown"
	}
}

// DepositAndTransferBankTokens transfers bank funds attached to the call.
func (k Keeper) DepositAndTransferBankTokens(ctx types.Context, info types.MessageInfo, msg types.MsgDepositAndTransferBankTokens) (*types.Response, error) {
	return k.execute(ctx, "deposit_and_transfer_bank_tokens", func(ctx types.Context) (*types.Response, error) {
		return k.depositAndTransfer(ctx, info, msg, false)
	})
}

// DepositAndTransferBankTokensWithPayload is DepositAndTransferBankTokens
// carrying msg.Payload to the recipient contract.
func (k Keeper) DepositAndTransferBankTokensWithPayload(ctx types.Context, info types.MessageInfo, msg types.MsgDepositAndTransferBankTokens) (*types.Response, error) {
	return k.execute(ctx, "deposit_and_transfer_bank_tokens_with_payload", func(ctx types.Context) (*types.Response, error) {
		return k.depositAndTransfer(ctx, info, msg, true)
	})
}

func (k Keeper) depositAndTransfer(ctx types.Context, info types.MessageInfo, msg types.MsgDepositAndTransferBankTokens, withPayload bool) (*types.Response, error) {
	cfg, err := k.config(ctx)
	if err != nil {
		return nil, err
	}
	if msg.Denom == "" {
		return nil, errorsmod.Wrap(types.ErrInvalidAsset, "empty denom")
	}

	attached := info.Funds.AmountOf(msg.Denom)
	if attached.IsZero() || attached.LT(msg.Amount) {
		return nil, errorsmod.Wrapf(types.ErrMissingFunds, "send more %s please", msg.Denom)
	}

	// whatever is attached beyond the transferred amount pays the message fee
	messageFee := info.Funds.Without(msg.Denom)
	if rest := attached.Sub(msg.Amount); !rest.IsZero() {
		messageFee = append(messageFee, types.Coin{Denom: msg.Denom, Amount: rest})
	}

	res, err := k.transferBankTokens(ctx, cfg, msg.Denom, transferRequest{
		sender:         info.Sender,
		amount:         msg.Amount,
		fee:            msg.Fee,
		recipientChain: msg.RecipientChain,
		recipient:      msg.Recipient,
		payload:        msg.Payload,
		withPayload:    withPayload,
		nonce:          msg.Nonce,
		messageFee:     messageFee,
	})
	if err != nil {
		return nil, err
	}
	return res.AddAttribute(types.AttributeKeyAction, "deposit_and_transfer"), nil
}

// InitiateTransfer transfers msg.Asset. Contract tokens are pulled into
// custody with TransferFrom and the message is posted once the pull is
// confirmed; bank tokens are taken from the sender's deposit.
func (k Keeper) InitiateTransfer(ctx types.Context, info types.MessageInfo, msg types.MsgInitiateTransfer) (*types.Response, error) {
	return k.execute(ctx, "initiate_transfer", func(ctx types.Context) (*types.Response, error) {
		return k.initiateTransfer(ctx, info, msg, false)
	})
}

func (k Keeper) InitiateTransferWithPayload(ctx types.Context, info types.MessageInfo, msg types.MsgInitiateTransfer) (*types.Response, error) {
	return k.execute(ctx, "initiate_transfer_with_payload", func(ctx types.Context) (*types.Response, error) {
		return k.initiateTransfer(ctx, info, msg, true)
	})
}

func (k Keeper) initiateTransfer(ctx types.Context, info types.MessageInfo, msg types.MsgInitiateTransfer, withPayload bool) (*types.Response, error) {
	cfg, err := k.config(ctx)
	if err != nil {
		return nil, err
	}
	if err := msg.Asset.Info.Validate(); err != nil {
		return nil, err
	}

	req := transferRequest{
		sender:         info.Sender,
		amount:         msg.Asset.Amount,
		fee:            msg.Fee,
		recipientChain: msg.RecipientChain,
		recipient:      msg.Recipient,
		payload:        msg.Payload,
		withPayload:    withPayload,
		nonce:          msg.Nonce,
		messageFee:     info.Funds,
	}
	if err := validateOutbound(cfg, req); err != nil {
		return nil, err
	}

	if bank := msg.Asset.Info.BankToken; bank != nil {
		if err := k.consumeDeposit(ctx, info.Sender, bank.Denom, req.amount); err != nil {
			return nil, err
		}
		return k.transferBankTokens(ctx, cfg, bank.Denom, req)
	}
	return k.transferContractToken(ctx, cfg, msg.Asset.Info.Token.ContractAddr, req)
}

// transferBankTokens sends bank funds the bridge already holds. Wrapped
// denoms are burned, native denoms stay in custody. The whole amount is
// taken; dust below the wire precision is not returned.
func (k Keeper) transferBankTokens(ctx types.Context, cfg types.Config, denom string, req transferRequest) (*types.Response, error) {
	if err := validateOutbound(cfg, req); err != nil {
		return nil, err
	}
	sender, err := k.canonicalize(ctx, req.sender)
	if err != nil {
		return nil, err
	}

	t := outboundTransfer{
		recipient:      req.recipient,
		recipientChain: req.recipientChain,
		sender:         sender,
		payload:        req.payload,
		withPayload:    req.withPayload,
	}
	res := types.NewResponse()

	if wrapped, found := k.GetDenomWrappedAsset(ctx, denom); found {
		if _, t.amount, t.fee, err = splitWire(req, wrapped.Decimals); err != nil {
			return nil, err
		}
		t.tokenAddress = wrapped.ForeignAddress
		t.tokenChain = vaa.ChainID(wrapped.ChainID)

		res.AddMessage(types.BurnMsg{Denom: denom, Amount: req.amount})
		k.postMessage(res, t.message(), req.nonce, req.messageFee)
		res.AddEvent(t.event(ctx, types.EventTypeInitiateTransferWrapped, req.amount, req.nonce,
			types.NewAttribute("transfer.wrapped_denom", denom)))
		return res, nil
	}

	metadata, err := ctx.Querier().DenomMetadata(ctx, denom)
	if err != nil {
		return nil, errorsmod.Wrapf(types.ErrTokenNotFound, "denom metadata of %s: %v", denom, err)
	}
	decimals, err := metadata.Decimals()
	if err != nil {
		return nil, err
	}

	// stored here in case the token is transferred out before it is attested
	ext, err := k.StoreTokenID(ctx, types.BankToken{Denom: denom})
	if err != nil {
		return nil, err
	}
	total, amount, fee, err := splitWire(req, decimals)
	if err != nil {
		return nil, err
	}
	t.tokenAddress = ext.Address()
	t.tokenChain = cfg.Chain()
	t.amount, t.fee = amount, fee

	k.SendNative(ctx, ext, total)

	k.postMessage(res, t.message(), req.nonce, req.messageFee)
	res.AddEvent(t.event(ctx, types.EventTypeInitiateTransferNative, req.amount, req.nonce,
		types.NewAttribute("transfer.denom", denom)))
	return res, nil
}

// transferContractToken starts the two phase transfer of a contract token.
// The balance snapshot and the prepared message wait in the transfer state
// slot for the TransferFrom reply, see handleTransferFromReply.
func (k Keeper) transferContractToken(ctx types.Context, cfg types.Config, contract string, req transferRequest) (*types.Response, error) {
	// A token's TransferFrom hook may call back into the bridge before the
	// reply of this transfer arrives. It must not overwrite the slot.
	if k.TransferInProgress(ctx) {
		return nil, types.ErrTransferInProgress
	}

	sender, err := k.canonicalize(ctx, req.sender)
	if err != nil {
		return nil, err
	}
	tokenInfo, err := ctx.Querier().TokenInfo(ctx, contract)
	if err != nil {
		return nil, errorsmod.Wrapf(types.ErrTokenNotFound, "token info of %s: %v", contract, err)
	}
	if err := types.ValidateDecimals(tokenInfo.Decimals); err != nil {
		return nil, err
	}

	// dust stays with the sender
	_, dust := types.ToWire(req.amount, tokenInfo.Decimals)
	pulled := req.amount.Sub(dust)

	ext, err := k.StoreTokenID(ctx, types.ContractToken{ContractAddress: contract})
	if err != nil {
		return nil, err
	}
	_, amount, fee, err := splitWire(req, tokenInfo.Decimals)
	if err != nil {
		return nil, err
	}
	t := outboundTransfer{
		tokenAddress:   ext.Address(),
		tokenChain:     cfg.Chain(),
		recipient:      req.recipient,
		recipientChain: req.recipientChain,
		sender:         sender,
		payload:        req.payload,
		withPayload:    req.withPayload,
		amount:         amount,
		fee:            fee,
	}

	balance, err := ctx.Querier().Balance(ctx, types.NewTokenAsset(contract), ctx.ContractAddress())
	if err != nil {
		return nil, errorsmod.Wrapf(types.ErrTokenNotFound, "balance of %s: %v", contract, err)
	}

	k.SetTransferState(ctx, types.TransferState{
		PreviousBalance: balance.String(),
		Account:         req.sender,
		TokenAddress:    contract,
		Message:         t.message().Serialize(),
		Multiplier:      types.Multiplier(tokenInfo.Decimals).String(),
		Nonce:           req.nonce,
		MessageFee:      types.NewCoinRecords(req.messageFee),
	})

	k.logger.Debug("locking contract token transfer",
		zap.String("contract", contract),
		zap.String("sender", req.sender),
		zap.Stringer("amount", pulled),
		zap.Stringer("previous_balance", balance))

	return types.NewResponse().
		AddSubMessage(types.ReplyIDTransferFrom, types.TransferFromMsg{
			Contract: contract,
			Owner:    req.sender,
			Amount:   pulled,
		}, types.ReplyAlways).
		AddEvent(t.event(ctx, types.EventTypeInitiateTransferToken, pulled, req.nonce,
			types.NewAttribute("transfer.contract", contract))), nil
}
