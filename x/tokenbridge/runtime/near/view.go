package near

import (
	"encoding/json"
	"fmt"

	errorsmod "cosmossdk.io/errors"

	"github.com/ramboll-max/wormhole/pkg/store"
	"github.com/ramboll-max/wormhole/pkg/vaa"
	"github.com/ramboll-max/wormhole/x/tokenbridge/types"
)

// originalAsset is returned by get_original_asset as [chain, address].
type originalAsset [2]interface{}

// View executes a view method and returns its JSON result.
func (p *Portal) View(env Env, kv store.KVStore, v Viewer, method string, args []byte) ([]byte, error) {
	ctx := p.context(env, kv, v)
	res, err := p.view(ctx, env, method, args)
	if err != nil {
		return nil, err
	}
	return json.Marshal(res)
}

func (p *Portal) view(ctx types.Context, env Env, method string, args []byte) (interface{}, error) {
	k := p.keeper
	switch method {
	case "account_hash":
		return []string{env.CurrentAccountID, AccountHash(env.CurrentAccountID).String()}, nil
	case "is_transfer_completed":
		data, err := vaaArg(method, args)
		if err != nil {
			return nil, err
		}
		parsed, err := vaa.Unmarshal(data)
		if err != nil {
			return nil, errorsmod.Wrap(types.ErrInvalidVAA, err.Error())
		}
		return k.QueryVAAConsumed(ctx, parsed.HexDigest())
	case "transfer_info":
		data, err := vaaArg(method, args)
		if err != nil {
			return nil, err
		}
		return k.TransferInfo(ctx, data)
	case "get_original_asset":
		var a tokenArgs
		if err := decodeArgs(args, &a); err != nil {
			return nil, invalidArgs(method, err)
		}
		info, err := k.DenomWrappedAssetInfo(ctx, a.Token)
		if err != nil {
			return nil, err
		}
		if !info.IsWrapped {
			return nil, errorsmod.Wrapf(types.ErrTokenNotFound, "%s is not a wormhole asset", a.Token)
		}
		return originalAsset{uint16(info.AssetChain), fmt.Sprintf("%x", info.AssetAddress)}, nil
	case "wrapped_registry":
		var a wrappedRegistryArgs
		if err := decodeArgs(args, &a); err != nil {
			return nil, invalidArgs(method, err)
		}
		addr, err := decodeAddress(a.Address)
		if err != nil {
			return nil, invalidArgs(method, err)
		}
		return k.WrappedRegistry(ctx, vaa.ChainID(a.Chain), addr)
	case "external_id":
		var a externalIDArgs
		if err := decodeArgs(args, &a); err != nil {
			return nil, invalidArgs(method, err)
		}
		addr, err := decodeAddress(a.ID)
		if err != nil {
			return nil, invalidArgs(method, err)
		}
		id, err := k.ExternalID(ctx, types.ExternalTokenID(addr))
		if err != nil {
			return nil, err
		}
		bz, err := types.MarshalTokenIDJSON(id)
		return json.RawMessage(bz), err
	case "chain_registration":
		var a chainArgs
		if err := decodeArgs(args, &a); err != nil {
			return nil, invalidArgs(method, err)
		}
		reg, err := k.QueryChainRegistration(ctx, vaa.ChainID(a.Chain))
		if err != nil {
			return nil, err
		}
		return vaa.Address(reg.EmitterAddress).String(), nil
	case "all_chain_registrations":
		list, err := k.QueryAllChainRegistrations(ctx)
		if err != nil {
			return nil, err
		}
		out := map[uint16]string{}
		for _, reg := range list {
			out[reg.ChainID] = vaa.Address(reg.EmitterAddress).String()
		}
		return out, nil
	default:
		return nil, errorsmod.Wrapf(types.ErrInvalidMessage, "unknown view %s", method)
	}
}

func vaaArg(method string, args []byte) ([]byte, error) {
	var a vaaArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, invalidArgs(method, err)
	}
	data, err := decodeHex(a.VAA)
	if err != nil {
		return nil, invalidArgs(method, err)
	}
	return data, nil
}
