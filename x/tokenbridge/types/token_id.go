package types

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"

	errorsmod "cosmossdk.io/errors"

	"github.com/ramboll-max/wormhole/pkg/vaa"
)

// TokenKind discriminates token identities. The value is also the marker
// byte of a local external id.
type TokenKind uint8

const (
	TokenKindBank           TokenKind = 1
	TokenKindNativeContract TokenKind = 2
	TokenKindForeign        TokenKind = 3
)

// TokenID identifies a token from this chain's point of view.
type TokenID interface {
	Kind() TokenKind
	// Key is the canonical byte encoding used as a registry key.
	Key() []byte
	String() string
}

// BankToken is a denomination of the host's native fungible token module.
type BankToken struct {
	Denom string
}

// ContractToken is a token issued by a contract on this chain.
type ContractToken struct {
	ContractAddress string
}

// ForeignToken is a token whose origin is another chain.
type ForeignToken struct {
	ChainID vaa.ChainID
	Address vaa.Address
}

func (BankToken) Kind() TokenKind     { return TokenKindBank }
func (ContractToken) Kind() TokenKind { return TokenKindNativeContract }
func (ForeignToken) Kind() TokenKind  { return TokenKindForeign }

func (t BankToken) Key() []byte {
	return append([]byte{byte(TokenKindBank)}, t.Denom...)
}

func (t ContractToken) Key() []byte {
	return append([]byte{byte(TokenKindNativeContract)}, t.ContractAddress...)
}

func (t ForeignToken) Key() []byte {
	key := make([]byte, 35)
	key[0] = byte(TokenKindForeign)
	binary.BigEndian.PutUint16(key[1:3], uint16(t.ChainID))
	copy(key[3:], t.Address[:])
	return key
}

func (t BankToken) String() string     { return "bank:" + t.Denom }
func (t ContractToken) String() string { return "contract:" + t.ContractAddress }
func (t ForeignToken) String() string  { return fmt.Sprintf("foreign:%d/%s", t.ChainID, t.Address) }

// ParseTokenIDKey decodes the output of TokenID.Key.
func ParseTokenIDKey(key []byte) (TokenID, error) {
	if len(key) < 2 {
		return nil, errorsmod.Wrap(ErrInvalidAsset, "token id key too short")
	}
	switch TokenKind(key[0]) {
	case TokenKindBank:
		return BankToken{Denom: string(key[1:])}, nil
	case TokenKindNativeContract:
		return ContractToken{ContractAddress: string(key[1:])}, nil
	case TokenKindForeign:
		if len(key) != 35 {
			return nil, errorsmod.Wrap(ErrInvalidAsset, "foreign token id key has wrong length")
		}
		t := ForeignToken{ChainID: vaa.ChainID(binary.BigEndian.Uint16(key[1:3]))}
		copy(t.Address[:], key[3:])
		return t, nil
	default:
		return nil, errorsmod.Wrapf(ErrInvalidAsset, "unknown token kind %d", key[0])
	}
}

type (
	tokenIDJSON struct {
		Bank     *bankJSON     `json:"bank,omitempty"`
		Contract *contractJSON `json:"contract,omitempty"`
	}
	bankJSON struct {
		Denom string `json:"denom"`
	}
	contractJSON struct {
		NativeCW20   *nativeCW20JSON   `json:"native_c_w20,omitempty"`
		ForeignToken *foreignTokenJSON `json:"foreign_token,omitempty"`
	}
	nativeCW20JSON struct {
		ContractAddress string `json:"contract_address"`
	}
	foreignTokenJSON struct {
		ChainID        vaa.ChainID `json:"chain_id"`
		ForeignAddress string      `json:"foreign_address"`
	}
)

// MarshalTokenIDJSON encodes a TokenID the way the CosmWasm query surface
// returns it: {"bank":{...}} or {"contract":{...}}.
func MarshalTokenIDJSON(id TokenID) ([]byte, error) {
	var out tokenIDJSON
	switch t := id.(type) {
	case BankToken:
		out.Bank = &bankJSON{Denom: t.Denom}
	case ContractToken:
		out.Contract = &contractJSON{NativeCW20: &nativeCW20JSON{ContractAddress: t.ContractAddress}}
	case ForeignToken:
		out.Contract = &contractJSON{ForeignToken: &foreignTokenJSON{
			ChainID:        t.ChainID,
			ForeignAddress: hex.EncodeToString(t.Address[:]),
		}}
	default:
		return nil, errorsmod.Wrapf(ErrInvalidAsset, "unknown token id %T", id)
	}
	return json.Marshal(out)
}

// ExternalTokenID is the 32 byte token address carried on the wire.
//
// For bank and contract tokens of this chain byte 0 holds the TokenKind and
// the last 8 bytes a registry sequence. For foreign tokens it is the token
// address on its origin chain.
type ExternalTokenID [32]byte

func NewLocalExternalID(kind TokenKind, sequence uint64) ExternalTokenID {
	var id ExternalTokenID
	id[0] = byte(kind)
	binary.BigEndian.PutUint64(id[24:], sequence)
	return id
}

func (e ExternalTokenID) Address() vaa.Address {
	return vaa.Address(e)
}

func (e ExternalTokenID) String() string {
	return hex.EncodeToString(e[:])
}
