// Package cosmwasm runs the token bridge as a CosmWasm contract: it decodes
// the contract's JSON messages, binds the VM storage and querier to the
// keeper and lowers the resulting instructions to wasmvm messages.
package cosmwasm

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	errorsmod "cosmossdk.io/errors"
	wasmvmtypes "github.com/CosmWasm/wasmvm/types"
	"go.uber.org/zap"

	"github.com/ramboll-max/wormhole/pkg/vaa"
	"github.com/ramboll-max/wormhole/x/tokenbridge/keeper"
	"github.com/ramboll-max/wormhole/x/tokenbridge/types"
)

// AttributeKeyAborted marks a response whose continuation was aborted.
const AttributeKeyAborted = "aborted"

type Contract struct {
	keeper *keeper.Keeper
	logger *zap.Logger
}

// NewKeeper builds a keeper storing JSON records and addressing accounts with
// the bech32 prefix of the chain.
func NewKeeper(prefix string, verifier types.VAAVerifier, logger *zap.Logger) *keeper.Keeper {
	return keeper.NewKeeper(types.JSONCodec{}, verifier, Bech32Codec{Prefix: prefix}, logger)
}

func NewContract(k *keeper.Keeper, logger *zap.Logger) *Contract {
	return &Contract{keeper: k, logger: logger.With(zap.String("runtime", "cosmwasm"))}
}

func (c *Contract) context(env wasmvmtypes.Env, kv wasmvmtypes.KVStore, q wasmvmtypes.Querier) types.Context {
	return types.NewContext(context.Background(), vmStore{kv: kv}, types.Env{
		BlockHeight:     env.Block.Height,
		BlockTime:       time.Unix(0, int64(env.Block.Time)),
		ContractAddress: env.Contract.Address,
	}, NewQuerier(q))
}

func (c *Contract) lowerer(ctx types.Context) (lowerer, error) {
	cfg, found := c.keeper.GetConfig(ctx)
	if !found {
		return lowerer{}, types.ErrNotConfigured
	}
	return lowerer{contract: ctx.ContractAddress(), wormhole: cfg.WormholeContract}, nil
}

// respond lowers the outcome of an operation. An aborted continuation is not
// an error for the VM: its state and unwind messages must be kept.
func (c *Contract) respond(ctx types.Context, res *types.Response, err error) (*wasmvmtypes.Response, error) {
	var abort *types.AbortError
	if errors.As(err, &abort) {
		c.logger.Info("continuation aborted", zap.Error(abort.Err))
		res = abort.Unwind
		if res == nil {
			res = types.NewResponse()
		}
		res.AddAttribute(AttributeKeyAborted, abort.Err.Error())
	} else if err != nil {
		return nil, err
	}

	l, err := c.lowerer(ctx)
	if err != nil {
		return nil, err
	}
	return l.response(res)
}

func (c *Contract) Instantiate(env wasmvmtypes.Env, _ wasmvmtypes.MessageInfo, kv wasmvmtypes.KVStore, q wasmvmtypes.Querier, msg []byte) (*wasmvmtypes.Response, error) {
	var m InstantiateMsg
	if err := json.Unmarshal(msg, &m); err != nil {
		return nil, errorsmod.Wrap(types.ErrInvalidMessage, err.Error())
	}
	cfg, err := m.Config()
	if err != nil {
		return nil, err
	}
	ctx := c.context(env, kv, q)
	if err := c.keeper.Instantiate(ctx, cfg); err != nil {
		return nil, err
	}
	return c.respond(ctx, types.NewResponse().AddAttribute(types.AttributeKeyAction, "instantiate"), nil)
}

func (c *Contract) Execute(env wasmvmtypes.Env, info wasmvmtypes.MessageInfo, kv wasmvmtypes.KVStore, q wasmvmtypes.Querier, msg []byte) (*wasmvmtypes.Response, error) {
	var m ExecuteMsg
	if err := json.Unmarshal(msg, &m); err != nil {
		return nil, errorsmod.Wrap(types.ErrInvalidMessage, err.Error())
	}
	funds, err := fromVMCoins(info.Funds)
	if err != nil {
		return nil, errorsmod.Wrap(types.ErrInvalidMessage, err.Error())
	}
	ctx := c.context(env, kv, q)
	res, err := c.execute(ctx, types.MessageInfo{Sender: info.Sender, Funds: funds}, m)
	return c.respond(ctx, res, err)
}

func (c *Contract) execute(ctx types.Context, info types.MessageInfo, m ExecuteMsg) (*types.Response, error) {
	k := c.keeper
	switch {
	case m.DepositTokens != nil:
		return k.DepositTokens(ctx, info)
	case m.WithdrawTokens != nil:
		return k.WithdrawTokens(ctx, info, types.MsgWithdrawTokens{Asset: m.WithdrawTokens.Asset})
	case m.InitiateTransfer != nil:
		msg, err := m.InitiateTransfer.toMsg()
		if err != nil {
			return nil, errorsmod.Wrap(types.ErrInvalidMessage, err.Error())
		}
		return k.InitiateTransfer(ctx, info, msg)
	case m.InitiateTransferWithPayload != nil:
		msg, err := m.InitiateTransferWithPayload.toMsg()
		if err != nil {
			return nil, errorsmod.Wrap(types.ErrInvalidMessage, err.Error())
		}
		return k.InitiateTransferWithPayload(ctx, info, msg)
	case m.DepositAndTransferBankTokens != nil:
		msg, err := m.DepositAndTransferBankTokens.toMsg()
		if err != nil {
			return nil, errorsmod.Wrap(types.ErrInvalidMessage, err.Error())
		}
		return k.DepositAndTransferBankTokens(ctx, info, msg)
	case m.DepositAndTransferBankTokensWithPayload != nil:
		msg, err := m.DepositAndTransferBankTokensWithPayload.toMsg()
		if err != nil {
			return nil, errorsmod.Wrap(types.ErrInvalidMessage, err.Error())
		}
		return k.DepositAndTransferBankTokensWithPayload(ctx, info, msg)
	case m.SubmitVaa != nil:
		return k.SubmitVAA(ctx, info, m.SubmitVaa.Data)
	case m.CreateAssetMeta != nil:
		return k.CreateAssetMeta(ctx, info, types.MsgCreateAssetMeta{
			AssetInfo: m.CreateAssetMeta.AssetInfo,
			Nonce:     m.CreateAssetMeta.Nonce,
		})
	case m.CompleteTransferWithPayload != nil:
		return k.CompleteTransferWithPayload(ctx, info, types.MsgCompleteTransferWithPayload{
			Data:    m.CompleteTransferWithPayload.Data,
			Relayer: m.CompleteTransferWithPayload.Relayer,
		})
	default:
		return nil, errorsmod.Wrap(types.ErrInvalidMessage, "unknown execute message")
	}
}

// Reply resumes the operation that issued the sub message reply.ID.
func (c *Contract) Reply(env wasmvmtypes.Env, kv wasmvmtypes.KVStore, q wasmvmtypes.Querier, reply wasmvmtypes.Reply) (*wasmvmtypes.Response, error) {
	result, err := liftReply(reply)
	if err != nil {
		return nil, errorsmod.Wrap(types.ErrInvalidMessage, err.Error())
	}
	ctx := c.context(env, kv, q)
	res, err := c.keeper.Resume(ctx, reply.ID, result)
	return c.respond(ctx, res, err)
}

// Migrate is the target of an UpgradeContract instruction. The state layout
// is unchanged, so the new code only needs an instantiated bridge.
func (c *Contract) Migrate(env wasmvmtypes.Env, kv wasmvmtypes.KVStore, q wasmvmtypes.Querier, msg []byte) (*wasmvmtypes.Response, error) {
	var m MigrateMsg
	if err := json.Unmarshal(msg, &m); err != nil {
		return nil, errorsmod.Wrap(types.ErrInvalidMessage, err.Error())
	}
	ctx := c.context(env, kv, q)
	auth, found := c.keeper.GetUpgradeAuthorization(ctx)
	if !found {
		return nil, errorsmod.Wrap(types.ErrUnauthorized, "no upgrade authorized")
	}
	c.logger.Info("contract migrated", zap.Uint64("code_id", auth.CodeID), zap.Uint64("sequence", auth.Sequence))
	return c.respond(ctx, types.NewResponse().
		AddAttribute(types.AttributeKeyAction, "migrate").
		AddAttribute("code_id", auth.CodeID), nil)
}

func (c *Contract) Query(env wasmvmtypes.Env, kv wasmvmtypes.KVStore, q wasmvmtypes.Querier, msg []byte) ([]byte, error) {
	var m QueryMsg
	if err := json.Unmarshal(msg, &m); err != nil {
		return nil, errorsmod.Wrap(types.ErrInvalidMessage, err.Error())
	}
	ctx := c.context(env, kv, q)
	res, err := c.query(ctx, m)
	if err != nil {
		return nil, err
	}
	return json.Marshal(res)
}

func (c *Contract) query(ctx types.Context, m QueryMsg) (interface{}, error) {
	k := c.keeper
	switch {
	case m.WrappedRegistry != nil:
		addr, err := vaa.BytesToAddress(m.WrappedRegistry.Address)
		if err != nil {
			return nil, errorsmod.Wrap(types.ErrInvalidMessage, err.Error())
		}
		denom, err := k.WrappedRegistry(ctx, vaa.ChainID(m.WrappedRegistry.Chain), addr)
		if err != nil {
			return nil, err
		}
		return WrappedRegistryResponse{Denom: denom}, nil
	case m.TransferInfo != nil:
		return k.TransferInfo(ctx, m.TransferInfo.Vaa)
	case m.ExternalID != nil:
		if len(m.ExternalID.ExternalID) != 32 {
			return nil, errorsmod.Wrapf(types.ErrInvalidMessage, "external id must be 32 bytes, got %d", len(m.ExternalID.ExternalID))
		}
		var ext types.ExternalTokenID
		copy(ext[:], m.ExternalID.ExternalID)
		id, err := k.ExternalID(ctx, ext)
		if err != nil {
			return nil, err
		}
		bz, err := types.MarshalTokenIDJSON(id)
		if err != nil {
			return nil, err
		}
		return ExternalIDResponse{TokenID: bz}, nil
	case m.IsVaaRedeemed != nil:
		v, err := vaa.Unmarshal(m.IsVaaRedeemed.Vaa)
		if err != nil {
			return nil, errorsmod.Wrap(types.ErrInvalidVAA, err.Error())
		}
		redeemed, err := k.QueryVAAConsumed(ctx, v.HexDigest())
		if err != nil {
			return nil, err
		}
		return IsVaaRedeemedResponse{IsRedeemed: redeemed}, nil
	case m.ChainRegistration != nil:
		reg, err := k.QueryChainRegistration(ctx, vaa.ChainID(m.ChainRegistration.Chain))
		if err != nil {
			return nil, err
		}
		return ChainRegistrationResponse{Address: reg.EmitterAddress[:]}, nil
	case m.AllChainRegistrations != nil:
		list, err := k.QueryAllChainRegistrations(ctx)
		if err != nil {
			return nil, err
		}
		out := AllChainRegistrationsResponse{Registrations: []ChainRegistration{}}
		for _, reg := range list {
			addr := reg.EmitterAddress
			out.Registrations = append(out.Registrations, ChainRegistration{Chain: reg.ChainID, Address: addr[:]})
		}
		return out, nil
	case m.DenomWrappedAssetInfo != nil:
		return k.DenomWrappedAssetInfo(ctx, m.DenomWrappedAssetInfo.Denom)
	default:
		return nil, errorsmod.Wrap(types.ErrInvalidMessage, "unknown query message")
	}
}
