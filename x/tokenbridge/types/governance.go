package types

import (
	"bytes"
	"encoding/binary"

	errorsmod "cosmossdk.io/errors"
	"github.com/holiman/uint256"

	"github.com/ramboll-max/wormhole/pkg/vaa"
)

// TokenBridgeModule is "TokenBridge" left padded with zeroes to 32 bytes.
var TokenBridgeModule = [32]byte{
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x54, 0x6f, 0x6b, 0x65, 0x6e, 0x42, 0x72, 0x69, 0x64, 0x67, 0x65,
}

type GovernanceAction uint8

const (
	ActionRegisterChain   GovernanceAction = 1
	ActionUpgradeContract GovernanceAction = 2
	ActionSetMessageFee   GovernanceAction = 3
	ActionTransferFee     GovernanceAction = 4
)

func (a GovernanceAction) String() string {
	switch a {
	case ActionRegisterChain:
		return "RegisterChain"
	case ActionUpgradeContract:
		return "UpgradeContract"
	case ActionSetMessageFee:
		return "SetMessageFee"
	case ActionTransferFee:
		return "TransferFee"
	default:
		return "Unknown"
	}
}

// governance header: module (32) | action (1) | chain (2)
const governanceHeaderLength = 35

// GovernancePacket is the envelope of every governance payload.
type GovernancePacket struct {
	Module [32]byte
	Action GovernanceAction
	Chain  vaa.ChainID
	Body   []byte
}

type (
	BodyRegisterChain struct {
		ChainID        vaa.ChainID
		EmitterAddress vaa.Address
	}

	BodyUpgradeContract struct {
		NewContract vaa.Address
	}

	BodySetMessageFee struct {
		Fee *uint256.Int
	}

	BodyTransferFee struct {
		Amount    *uint256.Int
		Recipient vaa.Address
	}
)

func ParseGovernancePacket(b []byte) (*GovernancePacket, error) {
	if len(b) < governanceHeaderLength {
		return nil, errorsmod.Wrapf(ErrPayloadTooShort, "governance header: %d < %d", len(b), governanceHeaderLength)
	}
	p := &GovernancePacket{
		Action: GovernanceAction(b[32]),
		Chain:  vaa.ChainID(binary.BigEndian.Uint16(b[33:35])),
		Body:   append([]byte{}, b[35:]...),
	}
	copy(p.Module[:], b[:32])
	return p, nil
}

func (p *GovernancePacket) Serialize() []byte {
	buf := new(bytes.Buffer)
	buf.Write(p.Module[:])
	vaa.MustWrite(buf, binary.BigEndian, p.Action)
	vaa.MustWrite(buf, binary.BigEndian, p.Chain)
	buf.Write(p.Body)
	return buf.Bytes()
}

// NewGovernancePacket builds a token bridge governance packet for target chain.
func NewGovernancePacket(action GovernanceAction, chain vaa.ChainID, body []byte) *GovernancePacket {
	return &GovernancePacket{Module: TokenBridgeModule, Action: action, Chain: chain, Body: body}
}

func (r BodyRegisterChain) Serialize() []byte {
	buf := new(bytes.Buffer)
	vaa.MustWrite(buf, binary.BigEndian, r.ChainID)
	buf.Write(r.EmitterAddress[:])
	return buf.Bytes()
}

func ParseBodyRegisterChain(b []byte) (*BodyRegisterChain, error) {
	if len(b) < 34 {
		return nil, errorsmod.Wrapf(ErrPayloadTooShort, "register chain: %d < 34", len(b))
	}
	r := &BodyRegisterChain{ChainID: vaa.ChainID(binary.BigEndian.Uint16(b[0:2]))}
	copy(r.EmitterAddress[:], b[2:34])
	return r, nil
}

func (r BodyUpgradeContract) Serialize() []byte {
	return append([]byte{}, r.NewContract[:]...)
}

// CodeID interprets the last 8 bytes of the new contract as a CosmWasm code id.
func (r BodyUpgradeContract) CodeID() uint64 {
	return binary.BigEndian.Uint64(r.NewContract[24:])
}

func ParseBodyUpgradeContract(b []byte) (*BodyUpgradeContract, error) {
	if len(b) < 32 {
		return nil, errorsmod.Wrapf(ErrPayloadTooShort, "upgrade contract: %d < 32", len(b))
	}
	r := &BodyUpgradeContract{}
	copy(r.NewContract[:], b[:32])
	return r, nil
}

func (r BodySetMessageFee) Serialize() []byte {
	buf := new(bytes.Buffer)
	writeAmount(buf, r.Fee)
	return buf.Bytes()
}

func ParseBodySetMessageFee(b []byte) (*BodySetMessageFee, error) {
	if len(b) < 32 {
		return nil, errorsmod.Wrapf(ErrPayloadTooShort, "set message fee: %d < 32", len(b))
	}
	fee, err := readAmount(b[:32])
	if err != nil {
		return nil, err
	}
	return &BodySetMessageFee{Fee: fee}, nil
}

func (r BodyTransferFee) Serialize() []byte {
	buf := new(bytes.Buffer)
	writeAmount(buf, r.Amount)
	buf.Write(r.Recipient[:])
	return buf.Bytes()
}

func ParseBodyTransferFee(b []byte) (*BodyTransferFee, error) {
	if len(b) < 64 {
		return nil, errorsmod.Wrapf(ErrPayloadTooShort, "transfer fee: %d < 64", len(b))
	}
	amount, err := readAmount(b[:32])
	if err != nil {
		return nil, err
	}
	r := &BodyTransferFee{Amount: amount}
	copy(r.Recipient[:], b[32:64])
	return r, nil
}
