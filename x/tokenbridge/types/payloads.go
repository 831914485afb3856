package types

import (
	"bytes"
	"encoding/binary"
	"strings"

	errorsmod "cosmossdk.io/errors"
	"github.com/holiman/uint256"

	"github.com/ramboll-max/wormhole/pkg/vaa"
)

// Token bridge payload ids.
const (
	PayloadIDTransfer            uint8 = 1
	PayloadIDAssetMeta           uint8 = 2
	PayloadIDTransferWithPayload uint8 = 3
)

const (
	transferLength            = 133
	transferWithPayloadLength = 133
	assetMetaLength           = 100
)

// Message is a decoded token bridge payload.
type Message interface {
	PayloadID() uint8
	Serialize() []byte
}

// Transfer moves Amount of a token to Recipient on RecipientChain. Fee is
// paid to the relayer on top of Amount.
type Transfer struct {
	Amount         *uint256.Int
	TokenAddress   vaa.Address
	TokenChain     vaa.ChainID
	Recipient      vaa.Address
	RecipientChain vaa.ChainID
	Fee            *uint256.Int
}

// TransferWithPayload carries an arbitrary payload for the recipient contract.
// Only the recipient may redeem it.
type TransferWithPayload struct {
	Amount         *uint256.Int
	TokenAddress   vaa.Address
	TokenChain     vaa.ChainID
	Recipient      vaa.Address
	RecipientChain vaa.ChainID
	SenderAddress  vaa.Address
	Payload        []byte
}

// AssetMeta attests the metadata of a token on its origin chain.
type AssetMeta struct {
	TokenAddress vaa.Address
	TokenChain   vaa.ChainID
	Decimals     uint8
	Symbol       string
	Name         string
}

func (*Transfer) PayloadID() uint8            { return PayloadIDTransfer }
func (*TransferWithPayload) PayloadID() uint8 { return PayloadIDTransferWithPayload }
func (*AssetMeta) PayloadID() uint8           { return PayloadIDAssetMeta }

func (t *Transfer) Serialize() []byte {
	buf := new(bytes.Buffer)
	buf.WriteByte(PayloadIDTransfer)
	writeAmount(buf, t.Amount)
	buf.Write(t.TokenAddress[:])
	vaa.MustWrite(buf, binary.BigEndian, t.TokenChain)
	buf.Write(t.Recipient[:])
	vaa.MustWrite(buf, binary.BigEndian, t.RecipientChain)
	writeAmount(buf, t.Fee)
	return buf.Bytes()
}

func (t *TransferWithPayload) Serialize() []byte {
	buf := new(bytes.Buffer)
	buf.WriteByte(PayloadIDTransferWithPayload)
	writeAmount(buf, t.Amount)
	buf.Write(t.TokenAddress[:])
	vaa.MustWrite(buf, binary.BigEndian, t.TokenChain)
	buf.Write(t.Recipient[:])
	vaa.MustWrite(buf, binary.BigEndian, t.RecipientChain)
	buf.Write(t.SenderAddress[:])
	buf.Write(t.Payload)
	return buf.Bytes()
}

func (m *AssetMeta) Serialize() []byte {
	buf := new(bytes.Buffer)
	buf.WriteByte(PayloadIDAssetMeta)
	buf.Write(m.TokenAddress[:])
	vaa.MustWrite(buf, binary.BigEndian, m.TokenChain)
	buf.WriteByte(m.Decimals)
	symbol := RightPadString32(m.Symbol)
	name := RightPadString32(m.Name)
	buf.Write(symbol[:])
	buf.Write(name[:])
	return buf.Bytes()
}

// ParseMessage decodes a token bridge payload. Unknown payload ids are rejected.
func ParseMessage(b []byte) (Message, error) {
	if len(b) == 0 {
		return nil, ErrPayloadTooShort
	}
	switch b[0] {
	case PayloadIDTransfer:
		return ParseTransfer(b)
	case PayloadIDAssetMeta:
		return ParseAssetMeta(b)
	case PayloadIDTransferWithPayload:
		return ParseTransferWithPayload(b)
	default:
		return nil, errorsmod.Wrapf(ErrUnknownPayload, "payload id %d", b[0])
	}
}

func ParseTransfer(b []byte) (*Transfer, error) {
	if len(b) < transferLength {
		return nil, errorsmod.Wrapf(ErrPayloadTooShort, "transfer: %d < %d", len(b), transferLength)
	}
	if b[0] != PayloadIDTransfer {
		return nil, errorsmod.Wrapf(ErrUnknownPayload, "expected transfer, got %d", b[0])
	}

	amount, err := readAmount(b[1:33])
	if err != nil {
		return nil, err
	}
	fee, err := readAmount(b[101:133])
	if err != nil {
		return nil, err
	}

	t := &Transfer{
		Amount:         amount,
		TokenChain:     vaa.ChainID(binary.BigEndian.Uint16(b[65:67])),
		RecipientChain: vaa.ChainID(binary.BigEndian.Uint16(b[99:101])),
		Fee:            fee,
	}
	copy(t.TokenAddress[:], b[33:65])
	copy(t.Recipient[:], b[67:99])
	return t, nil
}

func ParseTransferWithPayload(b []byte) (*TransferWithPayload, error) {
	if len(b) < transferWithPayloadLength {
		return nil, errorsmod.Wrapf(ErrPayloadTooShort, "transfer with payload: %d < %d", len(b), transferWithPayloadLength)
	}
	if b[0] != PayloadIDTransferWithPayload {
		return nil, errorsmod.Wrapf(ErrUnknownPayload, "expected transfer with payload, got %d", b[0])
	}

	amount, err := readAmount(b[1:33])
	if err != nil {
		return nil, err
	}

	t := &TransferWithPayload{
		Amount:         amount,
		TokenChain:     vaa.ChainID(binary.BigEndian.Uint16(b[65:67])),
		RecipientChain: vaa.ChainID(binary.BigEndian.Uint16(b[99:101])),
		Payload:        append([]byte{}, b[133:]...),
	}
	copy(t.TokenAddress[:], b[33:65])
	copy(t.Recipient[:], b[67:99])
	copy(t.SenderAddress[:], b[101:133])
	return t, nil
}

func ParseAssetMeta(b []byte) (*AssetMeta, error) {
	if len(b) < assetMetaLength {
		return nil, errorsmod.Wrapf(ErrPayloadTooShort, "asset meta: %d < %d", len(b), assetMetaLength)
	}
	if b[0] != PayloadIDAssetMeta {
		return nil, errorsmod.Wrapf(ErrUnknownPayload, "expected asset meta, got %d", b[0])
	}

	m := &AssetMeta{
		TokenChain: vaa.ChainID(binary.BigEndian.Uint16(b[33:35])),
		Decimals:   b[35],
		Symbol:     TrimNul(b[36:68]),
		Name:       TrimNul(b[68:100]),
	}
	copy(m.TokenAddress[:], b[1:33])
	return m, nil
}

// readAmount decodes a 256-bit big-endian amount whose high 128 bits must be zero.
func readAmount(b []byte) (*uint256.Int, error) {
	for _, c := range b[:16] {
		if c != 0 {
			return nil, ErrAmountOverflow
		}
	}
	return new(uint256.Int).SetBytes(b), nil
}

func writeAmount(buf *bytes.Buffer, amount *uint256.Int) {
	if amount == nil {
		amount = new(uint256.Int)
	}
	b := amount.Bytes32()
	buf.Write(b[:])
}

// RightPadString32 copies s into a NUL padded 32 byte field, truncating longer strings.
func RightPadString32(s string) (padded [32]byte) {
	copy(padded[:], s)
	return padded
}

// TrimNul decodes a NUL padded fixed width string.
func TrimNul(b []byte) string {
	return strings.ReplaceAll(string(b), "\x00", "")
}
