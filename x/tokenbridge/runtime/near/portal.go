// Package near runs the token bridge as a NEAR portal contract. Calls arrive
// as a method name with JSON arguments; sub-operations are scheduled as
// promises whose callbacks re-enter the portal.
package near

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	"go.uber.org/zap"

	"github.com/ramboll-max/wormhole/pkg/store"
	"github.com/ramboll-max/wormhole/pkg/vaa"
	"github.com/ramboll-max/wormhole/x/tokenbridge/keeper"
	"github.com/ramboll-max/wormhole/x/tokenbridge/types"
)

const LogAborted = "aborted"

type Config struct {
	// Owner is the only key allowed to boot the portal.
	Owner PublicKey
	// TokenCode is deployed to every wrapped token account, if set.
	TokenCode []byte
}

type Portal struct {
	keeper *keeper.Keeper
	cfg    Config
	logger *zap.Logger
}

// NewKeeper builds a keeper storing borsh records and addressing accounts by hash.
func NewKeeper(verifier types.VAAVerifier, logger *zap.Logger) *keeper.Keeper {
	return keeper.NewKeeper(BorshCodec{}, verifier, AccountHashCodec{}, logger)
}

func NewPortal(k *keeper.Keeper, cfg Config, logger *zap.Logger) *Portal {
	return &Portal{keeper: k, cfg: cfg, logger: logger.With(zap.String("runtime", "near"))}
}

func (p *Portal) context(env Env, kv store.KVStore, v Viewer) types.Context {
	return types.NewContext(context.Background(), kv, types.Env{
		BlockHeight:     env.BlockHeight,
		BlockTime:       env.blockTime(),
		ContractAddress: env.CurrentAccountID,
	}, NewQuerier(v))
}

func (p *Portal) lowerer(ctx types.Context, env Env) (lowerer, error) {
	cfg, found := p.keeper.GetConfig(ctx)
	if !found {
		return lowerer{}, types.ErrNotConfigured
	}
	return lowerer{
		current:   env.CurrentAccountID,
		core:      cfg.WormholeContract,
		refundTo:  env.SignerAccountID,
		tokenCode: p.cfg.TokenCode,
	}, nil
}

func (p *Portal) respond(ctx types.Context, env Env, res *types.Response, err error) (*Outcome, error) {
	var abort *types.AbortError
	if errors.As(err, &abort) {
		p.logger.Info("continuation aborted", zap.Error(abort.Err))
		res = abort.Unwind
		if res == nil {
			res = types.NewResponse()
		}
		res.AddAttribute(LogAborted, abort.Err.Error())
	} else if err != nil {
		return nil, err
	}

	l, err := p.lowerer(ctx, env)
	if err != nil {
		return nil, err
	}
	return l.outcome(res)
}

func invalidArgs(method string, err error) error {
	return errorsmod.Wrapf(types.ErrInvalidMessage, "%s: %v", method, err)
}

// Call executes a change method.
func (p *Portal) Call(env Env, kv store.KVStore, v Viewer, method string, args []byte) (*Outcome, error) {
	ctx := p.context(env, kv, v)
	switch method {
	case "boot_portal":
		return p.boot(ctx, env, args)
	case "register_account":
		return p.registerAccount(ctx, env)
	case "submit_vaa":
		data, err := vaaArg(method, args)
		if err != nil {
			return nil, err
		}
		res, err := p.keeper.SubmitVAA(ctx, p.info(env), data)
		return p.respond(ctx, env, res, err)
	case "complete_transfer_with_payload":
		data, err := vaaArg(method, args)
		if err != nil {
			return nil, err
		}
		res, err := p.keeper.CompleteTransferWithPayload(ctx, p.info(env), types.MsgCompleteTransferWithPayload{
			Data:    data,
			Relayer: env.PredecessorAccountID,
		})
		return p.respond(ctx, env, res, err)
	case "send_transfer_near":
		return p.sendTransferNear(ctx, env, args)
	case "ft_on_transfer":
		return p.ftOnTransfer(ctx, env, args)
	case "attest_near":
		res, err := p.keeper.CreateAssetMeta(ctx, p.info(env), types.MsgCreateAssetMeta{
			AssetInfo: types.NewBankAsset(NativeDenom),
			Nonce:     uint32(env.BlockHeight),
		})
		return p.respond(ctx, env, res, err)
	case "attest_token":
		var a tokenArgs
		if err := decodeArgs(args, &a); err != nil {
			return nil, invalidArgs(method, err)
		}
		res, err := p.keeper.CreateAssetMeta(ctx, p.info(env), types.MsgCreateAssetMeta{
			AssetInfo: types.NewBankAsset(a.Token),
			Nonce:     uint32(env.BlockHeight),
		})
		return p.respond(ctx, env, res, err)
	case "update_contract":
		return p.updateContract(ctx, env, args)
	case MethodResolveSub:
		return p.resolveSub(ctx, env, args)
	case MethodEmitterCallback:
		return p.emitterCallback(env, args)
	default:
		return nil, errorsmod.Wrapf(types.ErrInvalidMessage, "unknown method %s", method)
	}
}

// info is the caller of env with the attached deposit as funds.
func (p *Portal) info(env Env) types.MessageInfo {
	info := types.MessageInfo{Sender: env.PredecessorAccountID}
	if deposit := env.deposit(); !deposit.IsZero() {
		info.Funds = types.Coins{{Denom: NativeDenom, Amount: deposit}}
	}
	return info
}

func (p *Portal) boot(ctx types.Context, env Env, args []byte) (*Outcome, error) {
	if !env.SignerAccountPK.Equal(p.cfg.Owner) {
		return nil, errorsmod.Wrap(types.ErrUnauthorized, "invalid signer")
	}
	var a bootPortalArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, invalidArgs("boot_portal", err)
	}
	if err := ValidateAccountID(a.Core); err != nil {
		return nil, invalidArgs("boot_portal", err)
	}
	if err := p.keeper.Instantiate(ctx, types.DefaultConfig(vaa.ChainIDNear, a.Core)); err != nil {
		return nil, err
	}
	out := &Outcome{}
	out.log("portal emitter: %s", AccountHash(env.CurrentAccountID))
	return out, nil
}

// registerAccount makes the caller reachable by its account hash.
func (p *Portal) registerAccount(ctx types.Context, env Env) (*Outcome, error) {
	h, err := AccountHashCodec{}.Canonicalize(ctx, env.PredecessorAccountID)
	if err != nil {
		return nil, errorsmod.Wrap(types.ErrInvalidAddress, err.Error())
	}
	ret, err := json.Marshal(h.String())
	if err != nil {
		return nil, err
	}
	return &Outcome{Return: ret}, nil
}

// sendTransferNear bridges the attached deposit minus the message fee.
func (p *Portal) sendTransferNear(ctx types.Context, env Env, args []byte) (*Outcome, error) {
	var a sendTransferNearArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, invalidArgs("send_transfer_near", err)
	}
	deposit, messageFee := env.deposit(), uintOrZero(a.MessageFee)
	if deposit.LTE(messageFee) {
		return nil, errorsmod.Wrapf(types.ErrMissingFunds, "deposit %s does not cover message fee %s", deposit, messageFee)
	}
	msg, err := bankTransfer(NativeDenom, deposit.Sub(messageFee), transferMsg{
		Receiver: a.Receiver,
		Chain:    a.Chain,
		Fee:      a.Fee,
		Payload:  a.Payload,
	}, uint32(env.BlockHeight))
	if err != nil {
		return nil, invalidArgs("send_transfer_near", err)
	}
	res, err := p.depositAndTransfer(ctx, p.info(env), msg)
	return p.respond(ctx, env, res, err)
}

// ftOnTransfer bridges fungible tokens sent with ft_transfer_call. The
// predecessor is the token; its tokens are already held by the portal.
func (p *Portal) ftOnTransfer(ctx types.Context, env Env, args []byte) (*Outcome, error) {
	var a ftOnTransferArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, invalidArgs("ft_on_transfer", err)
	}
	var tm transferMsg
	if err := json.Unmarshal([]byte(a.Msg), &tm); err != nil {
		return nil, invalidArgs("ft_on_transfer", err)
	}
	amount := uintOrZero(a.Amount)
	msg, err := bankTransfer(env.PredecessorAccountID, amount, tm, uint32(env.BlockHeight))
	if err != nil {
		return nil, invalidArgs("ft_on_transfer", err)
	}

	info := p.info(env)
	info.Sender = a.SenderID
	info.Funds = append(info.Funds, types.Coin{Denom: env.PredecessorAccountID, Amount: amount})

	res, err := p.depositAndTransfer(ctx, info, msg)
	out, err := p.respond(ctx, env, res, err)
	if err != nil {
		return nil, err
	}
	// nothing is returned to the sender
	out.Return = []byte(`"0"`)
	return out, nil
}

func bankTransfer(denom string, amount sdkmath.Uint, tm transferMsg, nonce uint32) (types.MsgDepositAndTransferBankTokens, error) {
	recipient, err := decodeAddress(tm.Receiver)
	if err != nil {
		return types.MsgDepositAndTransferBankTokens{}, err
	}
	payload, err := decodeHex(tm.Payload)
	if err != nil {
		return types.MsgDepositAndTransferBankTokens{}, err
	}
	return types.MsgDepositAndTransferBankTokens{
		Denom:          denom,
		Amount:         amount,
		RecipientChain: vaa.ChainID(tm.Chain),
		Recipient:      recipient,
		Fee:            uintOrZero(tm.Fee),
		Payload:        payload,
		Nonce:          nonce,
	}, nil
}

func (p *Portal) depositAndTransfer(ctx types.Context, info types.MessageInfo, msg types.MsgDepositAndTransferBankTokens) (*types.Response, error) {
	if len(msg.Payload) > 0 {
		return p.keeper.DepositAndTransferBankTokensWithPayload(ctx, info, msg)
	}
	return p.keeper.DepositAndTransferBankTokens(ctx, info, msg)
}

// updateContract deploys code whose hash governance authorized. args is the
// raw code.
func (p *Portal) updateContract(ctx types.Context, env Env, code []byte) (*Outcome, error) {
	auth, found := p.keeper.GetUpgradeAuthorization(ctx)
	if !found {
		return nil, errorsmod.Wrap(types.ErrUnauthorized, "no upgrade authorized")
	}
	if sha256.Sum256(code) != auth.NewContract {
		return nil, errorsmod.Wrap(types.ErrUnauthorized, "code hash does not match the authorized upgrade")
	}
	p.logger.Info("contract upgraded", zap.String("code_hash", hex.EncodeToString(auth.NewContract[:])))
	out := &Outcome{Promises: []*Promise{NewPromise(env.CurrentAccountID).DeployContract(code)}}
	out.log("%s: upgrade", types.AttributeKeyAction)
	return out, nil
}

// callbackResult checks a callback is private and chained to one promise.
func callbackResult(env Env) (PromiseResult, error) {
	if !env.private() {
		return PromiseResult{}, errorsmod.Wrapf(types.ErrUnauthorized, "callback called by %s", env.PredecessorAccountID)
	}
	if len(env.PromiseResults) != 1 {
		return PromiseResult{}, errorsmod.Wrapf(types.ErrInvalidMessage, "expected 1 promise result, got %d", len(env.PromiseResults))
	}
	return env.PromiseResults[0], nil
}

func (p *Portal) resolveSub(ctx types.Context, env Env, args []byte) (*Outcome, error) {
	r, err := callbackResult(env)
	if err != nil {
		return nil, err
	}
	var a resolveSubArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, invalidArgs(MethodResolveSub, err)
	}

	replies := a.ReplyOn == types.ReplyAlways ||
		(a.ReplyOn == types.ReplySuccess && r.Successful) ||
		(a.ReplyOn == types.ReplyError && !r.Successful)
	if !replies {
		if !r.Successful {
			return nil, errorsmod.Wrapf(types.ErrSubOperationFailed, "promise of reply %d failed", a.ID)
		}
		return &Outcome{}, nil
	}

	result := types.SubMsgResult{Data: r.Value}
	switch {
	case !r.Successful:
		result = types.SubMsgResult{Err: "promise failed"}
	case a.ID == types.ReplyIDIssue:
		if result.Data, err = json.Marshal(types.IssueTokenResponse{Denom: a.Denom}); err != nil {
			return nil, err
		}
	}
	res, err := p.keeper.Resume(ctx, a.ID, result)
	return p.respond(ctx, env, res, err)
}

// emitterCallback follows publish_message. On failure the message fee the
// core bridge returned to the portal is refunded to the signer.
func (p *Portal) emitterCallback(env Env, args []byte) (*Outcome, error) {
	r, err := callbackResult(env)
	if err != nil {
		return nil, err
	}
	var a emitterCallbackArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, invalidArgs(MethodEmitterCallback, err)
	}

	out := &Outcome{}
	if r.Successful {
		out.Return = r.Value
		return out, nil
	}
	p.logger.Warn("publish_message failed", zap.String("refund_to", a.RefundTo))
	if deposit := uintOrZero(a.Deposit); !deposit.IsZero() {
		out.Promises = append(out.Promises, NewPromise(a.RefundTo).Transfer(deposit))
	}
	out.log("%s: EmitFail", LogAborted)
	return out, nil
}
