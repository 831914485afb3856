package near

import (
	"encoding/json"
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/tidwall/gjson"

	"github.com/ramboll-max/wormhole/x/tokenbridge/types"
)

// NativeDenom is the bank denom of NEAR itself, counted in yoctoNEAR.
const (
	NativeDenom    = "yoctonear"
	nativeDisplay  = "near"
	nativeDecimals = 24
)

// Viewer runs read only calls against other accounts.
type Viewer interface {
	// View calls a view method of account with JSON args and returns its JSON result.
	View(account, method string, args []byte) ([]byte, error)
	AccountBalance(account string) (sdkmath.Uint, error)
}

// Querier answers ledger questions with NEP-141 view calls. Every denom
// other than NativeDenom is the account of a fungible token contract.
type Querier struct {
	viewer Viewer
}

var _ types.Querier = Querier{}

func NewQuerier(v Viewer) Querier {
	return Querier{viewer: v}
}

func (q Querier) view(account, method string, args interface{}) (gjson.Result, error) {
	bz, err := json.Marshal(args)
	if err != nil {
		return gjson.Result{}, err
	}
	res, err := q.viewer.View(account, method, bz)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%s.%s: %w", account, method, err)
	}
	if !gjson.ValidBytes(res) {
		return gjson.Result{}, fmt.Errorf("%s.%s: invalid result %q", account, method, res)
	}
	return gjson.ParseBytes(res), nil
}

func (q Querier) Balance(_ types.Context, asset types.AssetInfo, address string) (sdkmath.Uint, error) {
	if err := asset.Validate(); err != nil {
		return sdkmath.ZeroUint(), err
	}
	var token string
	switch {
	case asset.BankToken != nil && asset.BankToken.Denom == NativeDenom:
		return q.viewer.AccountBalance(address)
	case asset.BankToken != nil:
		token = asset.BankToken.Denom
	default:
		token = asset.Token.ContractAddr
	}
	res, err := q.view(token, "ft_balance_of", map[string]string{"account_id": address})
	if err != nil {
		return sdkmath.ZeroUint(), err
	}
	// U128 values are JSON strings
	return sdkmath.ParseUint(res.String())
}

// ftMetadata reads the NEP-148 metadata of a token.
func (q Querier) ftMetadata(token string) (types.TokenInfo, error) {
	res, err := q.view(token, "ft_metadata", struct{}{})
	if err != nil {
		return types.TokenInfo{}, err
	}
	decimals := res.Get("decimals")
	if !decimals.Exists() || decimals.Uint() > 255 {
		return types.TokenInfo{}, fmt.Errorf("ft_metadata of %s: invalid decimals %q", token, decimals.Raw)
	}
	return types.TokenInfo{
		Name:     res.Get("name").String(),
		Symbol:   res.Get("symbol").String(),
		Decimals: uint8(decimals.Uint()),
	}, nil
}

func (q Querier) TokenInfo(_ types.Context, contract string) (types.TokenInfo, error) {
	return q.ftMetadata(contract)
}

// DenomMetadata describes a token as a bank denom whose display unit is its symbol.
func (q Querier) DenomMetadata(_ types.Context, denom string) (types.DenomMetadata, error) {
	if denom == NativeDenom {
		return types.DenomMetadata{
			Base:    NativeDenom,
			Display: nativeDisplay,
			Name:    "NEAR",
			Symbol:  "NEAR",
			DenomUnits: []types.DenomUnit{
				{Denom: NativeDenom, Exponent: 0},
				{Denom: nativeDisplay, Exponent: nativeDecimals},
			},
		}, nil
	}
	info, err := q.ftMetadata(denom)
	if err != nil {
		return types.DenomMetadata{}, err
	}
	return types.DenomMetadata{
		Base:    denom,
		Display: info.Symbol,
		Name:    info.Name,
		Symbol:  info.Symbol,
		DenomUnits: []types.DenomUnit{
			{Denom: denom, Exponent: 0},
			{Denom: info.Symbol, Exponent: uint32(info.Decimals)},
		},
	}, nil
}
