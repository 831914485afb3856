package types

import (
	"fmt"
	"math/big"
	"strings"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	"github.com/holiman/uint256"

	"github.com/ramboll-max/wormhole/pkg/vaa"
)

// WireDecimals is the fixed precision of amounts on the wire.
const WireDecimals = 8

var maxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// AssetInfo references a token held on this chain, as supplied by callers.
type AssetInfo struct {
	Token     *TokenAsset `json:"token,omitempty"`
	BankToken *BankAsset  `json:"bank_token,omitempty"`
}

type TokenAsset struct {
	ContractAddr string `json:"contract_addr"`
}

type BankAsset struct {
	Denom string `json:"denom"`
}

// Asset is an amount of an AssetInfo.
type Asset struct {
	Info   AssetInfo    `json:"info"`
	Amount sdkmath.Uint `json:"amount"`
}

func NewBankAsset(denom string) AssetInfo {
	return AssetInfo{BankToken: &BankAsset{Denom: denom}}
}

func NewTokenAsset(contract string) AssetInfo {
	return AssetInfo{Token: &TokenAsset{ContractAddr: contract}}
}

func (a AssetInfo) Validate() error {
	switch {
	case a.Token != nil && a.BankToken != nil:
		return errorsmod.Wrap(ErrInvalidAsset, "asset is both a token and a bank token")
	case a.Token != nil && a.Token.ContractAddr == "":
		return errorsmod.Wrap(ErrInvalidAsset, "empty contract address")
	case a.BankToken != nil && a.BankToken.Denom == "":
		return errorsmod.Wrap(ErrInvalidAsset, "empty denom")
	case a.Token == nil && a.BankToken == nil:
		return errorsmod.Wrap(ErrInvalidAsset, "empty asset")
	}
	return nil
}

// TokenID returns the local identity of the asset.
func (a AssetInfo) TokenID() TokenID {
	if a.Token != nil {
		return ContractToken{ContractAddress: a.Token.ContractAddr}
	}
	return BankToken{Denom: a.BankToken.Denom}
}

func (a AssetInfo) String() string {
	if a.Token != nil {
		return a.Token.ContractAddr
	}
	if a.BankToken != nil {
		return a.BankToken.Denom
	}
	return ""
}

// MaxDecimals is the largest precision whose multiplier still fits in 128 bits.
const MaxDecimals = WireDecimals + 38

// ValidateDecimals rejects precisions the normalization cannot represent.
func ValidateDecimals(decimals uint8) error {
	if decimals > MaxDecimals {
		return errorsmod.Wrapf(ErrExponentTooLarge, "%d decimals", decimals)
	}
	return nil
}

func multiplier(decimals uint8) *big.Int {
	if decimals <= WireDecimals {
		return big.NewInt(1)
	}
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals-WireDecimals)), nil)
}

// Multiplier returns 10^(decimals-8) for tokens with more than 8 decimals and 1 otherwise.
// decimals must pass ValidateDecimals.
func Multiplier(decimals uint8) sdkmath.Uint {
	return sdkmath.NewUintFromBigInt(multiplier(decimals))
}

// ToWire truncates amount to the wire precision. dust is the remainder that
// does not fit and is not transferred.
func ToWire(amount sdkmath.Uint, decimals uint8) (wire, dust sdkmath.Uint) {
	q, r := new(big.Int).QuoRem(amount.BigInt(), multiplier(decimals), new(big.Int))
	return sdkmath.NewUintFromBigInt(q), sdkmath.NewUintFromBigInt(r)
}

// FromWire scales a wire amount back to the local precision. The result must fit in 128 bits.
func FromWire(wire sdkmath.Uint, decimals uint8) (sdkmath.Uint, error) {
	local := new(big.Int).Mul(wire.BigInt(), multiplier(decimals))
	if local.Cmp(maxUint128) > 0 {
		return sdkmath.ZeroUint(), errorsmod.Wrapf(ErrAmountOverflow, "%s", local)
	}
	return sdkmath.NewUintFromBigInt(local), nil
}

// UintFromWire converts a decoded wire amount into a host amount.
func UintFromWire(amount *uint256.Int) sdkmath.Uint {
	if amount == nil {
		return sdkmath.ZeroUint()
	}
	return sdkmath.NewUintFromBigInt(amount.ToBig())
}

// UintToWire converts a host amount into a wire amount. Amounts above 128 bits are rejected.
func UintToWire(amount sdkmath.Uint) (*uint256.Int, error) {
	b := amount.BigInt()
	if b.Cmp(maxUint128) > 0 {
		return nil, errorsmod.Wrapf(ErrAmountOverflow, "%s", amount)
	}
	out, _ := uint256.FromBig(b)
	return out, nil
}

// DenomUnit and DenomMetadata mirror the bank module's denomination metadata.
type DenomUnit struct {
	Denom    string `json:"denom"`
	Exponent uint32 `json:"exponent"`
}

type DenomMetadata struct {
	Description string      `json:"description"`
	DenomUnits  []DenomUnit `json:"denom_units"`
	Base        string      `json:"base"`
	Display     string      `json:"display"`
	Name        string      `json:"name"`
	Symbol      string      `json:"symbol"`
}

// Decimals returns the exponent of the display unit.
func (m DenomMetadata) Decimals() (uint8, error) {
	for _, u := range m.DenomUnits {
		if u.Denom == m.Display {
			if u.Exponent > 255 {
				return 0, ErrExponentTooLarge
			}
			return uint8(u.Exponent), nil
		}
	}
	return 0, errorsmod.Wrapf(ErrDisplayUnitNotFound, "display %q", m.Display)
}

// TokenInfo is the metadata of a contract token.
type TokenInfo struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

// WrappedName is the display name of the wrapped representation of a token named name.
func WrappedName(name string) string {
	return name + " (Wormhole)"
}

func WrappedSymbol(symbol string) string {
	return strings.ToUpper(symbol)
}

func WrappedDescription(name string) string {
	return "Wormhole Wrapped " + name
}

// GetWrappedCoinIdentifier derives the subdenom requested for a wrapped token:
//
//	"wh/00002/000000000000000000000000c02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"
//
// where the token chain is printed in 5 decimals and the address in 64 hex characters.
func GetWrappedCoinIdentifier(tokenChain vaa.ChainID, tokenAddress vaa.Address) string {
	// log10(2^16) = 5, so we print token chain in 5 decimals
	return fmt.Sprintf("wh/%05d/%064x", uint16(tokenChain), tokenAddress[:])
}
