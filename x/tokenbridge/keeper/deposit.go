package keeper

import (
	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	"go.uber.org/zap"

	"github.com/ramboll-max/wormhole/x/tokenbridge/types"
)

func depositKey(account, denom string) []byte {
	return types.KeyPrefix([]byte(account), []byte{0}, []byte(denom))
}

// GetDeposit returns the bank funds account deposited and has not spent.
func (k Keeper) GetDeposit(ctx types.Context, account, denom string) sdkmath.Uint {
	bz := mustGet(k.prefixStore(ctx, types.DepositPrefix), depositKey(account, denom))
	if bz == nil {
		return sdkmath.ZeroUint()
	}
	amount, err := sdkmath.ParseUint(string(bz))
	if err != nil {
		panic(err)
	}
	return amount
}

func (k Keeper) setDeposit(ctx types.Context, account, denom string, amount sdkmath.Uint) {
	store := k.prefixStore(ctx, types.DepositPrefix)
	if amount.IsZero() {
		mustDelete(store, depositKey(account, denom))
		return
	}
	mustSet(store, depositKey(account, denom), []byte(amount.String()))
}

// consumeDeposit takes amount of denom out of the deposit of account.
func (k Keeper) consumeDeposit(ctx types.Context, account, denom string, amount sdkmath.Uint) error {
	deposit := k.GetDeposit(ctx, account, denom)
	if deposit.LT(amount) {
		return errorsmod.Wrapf(types.ErrInsufficientFunds, "deposit of %s is %s, need %s", denom, deposit, amount)
	}
	k.setDeposit(ctx, account, denom, deposit.Sub(amount))
	return nil
}

// DepositTokens credits the attached bank funds to the sender.
func (k Keeper) DepositTokens(ctx types.Context, info types.MessageInfo) (*types.Response, error) {
	return k.execute(ctx, "deposit_tokens", func(ctx types.Context) (*types.Response, error) {
		if _, err := k.config(ctx); err != nil {
			return nil, err
		}
		if len(info.Funds) == 0 {
			return nil, errorsmod.Wrap(types.ErrMissingFunds, "no funds attached")
		}

		res := types.NewResponse().AddAttribute(types.AttributeKeyAction, "deposit_tokens")
		for _, coin := range info.Funds {
			if coin.Amount.IsZero() {
				continue
			}
			total := k.GetDeposit(ctx, info.Sender, coin.Denom).Add(coin.Amount)
			k.setDeposit(ctx, info.Sender, coin.Denom, total)
			res.AddEvent(types.NewEvent(types.EventTypeDeposit,
				types.NewAttribute("account", info.Sender),
				types.NewAttribute("denom", coin.Denom),
				types.NewAttribute(types.AttributeKeyAmount, coin.Amount),
				types.NewAttribute("deposit", total),
			))
		}
		return res, nil
	})
}

// WithdrawTokens pays the whole deposit of a bank asset back to the sender.
func (k Keeper) WithdrawTokens(ctx types.Context, info types.MessageInfo, msg types.MsgWithdrawTokens) (*types.Response, error) {
	return k.execute(ctx, "withdraw_tokens", func(ctx types.Context) (*types.Response, error) {
		if err := msg.Asset.Validate(); err != nil {
			return nil, err
		}
		if msg.Asset.BankToken == nil {
			return nil, errorsmod.Wrap(types.ErrInvalidAsset, "only bank tokens can be deposited")
		}
		denom := msg.Asset.BankToken.Denom

		deposit := k.GetDeposit(ctx, info.Sender, denom)
		if deposit.IsZero() {
			return nil, errorsmod.Wrapf(types.ErrInsufficientFunds, "no deposit of %s", denom)
		}
		k.setDeposit(ctx, info.Sender, denom, sdkmath.ZeroUint())

		k.logger.Info("withdrawing deposit",
			zap.String("account", info.Sender),
			zap.String("denom", denom),
			zap.Stringer("amount", deposit))

		return types.NewResponse().
			AddMessage(types.SendMsg{Asset: msg.Asset, Amount: deposit, Recipient: info.Sender}).
			AddAttribute(types.AttributeKeyAction, "withdraw_tokens").
			AddEvent(types.NewEvent(types.EventTypeWithdraw,
				types.NewAttribute("account", info.Sender),
				types.NewAttribute("denom", denom),
				types.NewAttribute(types.AttributeKeyAmount, deposit),
			)), nil
	})
}
