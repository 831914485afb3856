package cosmwasm

import (
	"encoding/json"
	"fmt"

	sdkmath "cosmossdk.io/math"
	wasmvmtypes "github.com/CosmWasm/wasmvm/types"
	"github.com/tidwall/gjson"

	"github.com/ramboll-max/wormhole/x/tokenbridge/types"
)

// queryGasLimit bounds every query the bridge issues to the chain.
const queryGasLimit = 1_000_000

// Querier answers ledger questions through the raw VM querier: bank queries
// for denoms, cw20 smart queries for contract tokens.
type Querier struct {
	vm wasmvmtypes.Querier
}

var _ types.Querier = Querier{}

func NewQuerier(vm wasmvmtypes.Querier) Querier {
	return Querier{vm: vm}
}

func (q Querier) query(req wasmvmtypes.QueryRequest) (gjson.Result, error) {
	bz, err := q.vm.Query(req, queryGasLimit)
	if err != nil {
		return gjson.Result{}, err
	}
	if !gjson.ValidBytes(bz) {
		return gjson.Result{}, fmt.Errorf("invalid query response %q", bz)
	}
	return gjson.ParseBytes(bz), nil
}

func (q Querier) smart(contract string, msg interface{}) (gjson.Result, error) {
	bz, err := json.Marshal(msg)
	if err != nil {
		return gjson.Result{}, err
	}
	return q.query(wasmvmtypes.QueryRequest{
		Wasm: &wasmvmtypes.WasmQuery{Smart: &wasmvmtypes.SmartQuery{ContractAddr: contract, Msg: bz}},
	})
}

func (q Querier) Balance(_ types.Context, asset types.AssetInfo, address string) (sdkmath.Uint, error) {
	if err := asset.Validate(); err != nil {
		return sdkmath.ZeroUint(), err
	}

	var amount gjson.Result
	if asset.Token != nil {
		res, err := q.smart(asset.Token.ContractAddr, map[string]interface{}{
			"balance": map[string]string{"address": address},
		})
		if err != nil {
			return sdkmath.ZeroUint(), err
		}
		amount = res.Get("balance")
	} else {
		res, err := q.query(wasmvmtypes.QueryRequest{Bank: &wasmvmtypes.BankQuery{
			Balance: &wasmvmtypes.BalanceQuery{Address: address, Denom: asset.BankToken.Denom},
		}})
		if err != nil {
			return sdkmath.ZeroUint(), err
		}
		amount = res.Get("amount.amount")
	}
	if !amount.Exists() {
		return sdkmath.ZeroUint(), fmt.Errorf("balance of %s: missing amount", asset)
	}
	return sdkmath.ParseUint(amount.String())
}

func (q Querier) TokenInfo(_ types.Context, contract string) (types.TokenInfo, error) {
	res, err := q.smart(contract, map[string]interface{}{"token_info": struct{}{}})
	if err != nil {
		return types.TokenInfo{}, err
	}
	decimals := res.Get("decimals")
	if !decimals.Exists() || decimals.Uint() > 255 {
		return types.TokenInfo{}, fmt.Errorf("token info of %s: invalid decimals %q", contract, decimals.Raw)
	}
	return types.TokenInfo{
		Name:     res.Get("name").String(),
		Symbol:   res.Get("symbol").String(),
		Decimals: uint8(decimals.Uint()),
	}, nil
}

func (q Querier) DenomMetadata(_ types.Context, denom string) (types.DenomMetadata, error) {
	res, err := q.query(wasmvmtypes.QueryRequest{Bank: &wasmvmtypes.BankQuery{
		DenomMetadata: &wasmvmtypes.DenomMetadataQuery{Denom: denom},
	}})
	if err != nil {
		return types.DenomMetadata{}, err
	}
	md := res.Get("metadata")
	if !md.Exists() {
		return types.DenomMetadata{}, fmt.Errorf("no metadata for %s", denom)
	}

	out := types.DenomMetadata{
		Description: md.Get("description").String(),
		Base:        md.Get("base").String(),
		Display:     md.Get("display").String(),
		Name:        md.Get("name").String(),
		Symbol:      md.Get("symbol").String(),
	}
	md.Get("denom_units").ForEach(func(_, unit gjson.Result) bool {
		out.DenomUnits = append(out.DenomUnits, types.DenomUnit{
			Denom:    unit.Get("denom").String(),
			Exponent: uint32(unit.Get("exponent").Uint()),
		})
		return true
	})
	return out, nil
}
