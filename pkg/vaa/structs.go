package vaa

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

type (
	// VAA is a verifiable action approval: a guardian-quorum-signed envelope around an emitted message.
	VAA struct {
		// Version of the VAA schema
		Version uint8
		// GuardianSetIndex is the index of the guardian set that signed this VAA
		GuardianSetIndex uint32
		// Signatures of the guardians, ordered by strictly increasing guardian index
		Signatures []*Signature

		// Timestamp when the message was observed
		Timestamp time.Time
		// Nonce of the message
		Nonce uint32
		// Sequence of the message, assigned by the emitter chain's core bridge
		Sequence uint64
		// ConsistencyLevel requested by the emitter
		ConsistencyLevel uint8
		// EmitterChain the message was emitted on
		EmitterChain ChainID
		// EmitterAddress of the contract that emitted the message
		EmitterAddress Address
		// Payload of the message
		Payload []byte
	}

	// ChainID of a Wormhole chain
	ChainID uint16

	// Address is a Wormhole protocol address. Chains with shorter native
	// addresses are zero-padded on the left.
	Address [32]byte

	// Signature of a single guardian
	Signature struct {
		// Index of the guardian in the guardian set
		Index uint8
		// Signature data
		Signature SignatureData
	}

	SignatureData [65]byte
)

const (
	ChainIDUnset     ChainID = 0
	ChainIDSolana    ChainID = 1
	ChainIDEthereum  ChainID = 2
	ChainIDTerra     ChainID = 3
	ChainIDNear      ChainID = 15
	ChainIDTerra2    ChainID = 18
	ChainIDInjective ChainID = 19
	ChainIDOsmosis   ChainID = 20
	ChainIDWormchain ChainID = 3104
)

const (
	// HEADER: version (1) + guardian set index (4) + len signatures (1) = 6
	// BODY: timestamp (4) + nonce (4) + emitter chain (2) + emitter address (32) + sequence (8) + consistency (1) = 51
	minVAALength = 57

	signatureLength = 65

	SupportedVAAVersion = 0x01
)

var (
	ErrVAATooShort         = errors.New("VAA is too short")
	ErrUnsupportedVersion  = errors.New("unsupported VAA version")
	ErrTruncatedSignatures = errors.New("VAA signature block is truncated")
)

func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

func (a Address) Bytes() []byte {
	return a[:]
}

func (a Address) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`"%s"`, a)), nil
}

func (a *Address) UnmarshalJSON(data []byte) error {
	addr, err := StringToAddress(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

func (a SignatureData) String() string {
	return hex.EncodeToString(a[:])
}

func (c ChainID) String() string {
	switch c {
	case ChainIDUnset:
		return "unset"
	case ChainIDSolana:
		return "solana"
	case ChainIDEthereum:
		return "ethereum"
	case ChainIDTerra:
		return "terra"
	case ChainIDNear:
		return "near"
	case ChainIDTerra2:
		return "terra2"
	case ChainIDInjective:
		return "injective"
	case ChainIDOsmosis:
		return "osmosis"
	case ChainIDWormchain:
		return "wormchain"
	default:
		return fmt.Sprintf("unknown chain ID: %d", c)
	}
}

// ChainIDFromString parses a chain name or a decimal chain id.
func ChainIDFromString(s string) (ChainID, error) {
	switch strings.ToLower(s) {
	case "solana":
		return ChainIDSolana, nil
	case "ethereum":
		return ChainIDEthereum, nil
	case "terra":
		return ChainIDTerra, nil
	case "near":
		return ChainIDNear, nil
	case "terra2":
		return ChainIDTerra2, nil
	case "injective":
		return ChainIDInjective, nil
	case "osmosis":
		return ChainIDOsmosis, nil
	case "wormchain":
		return ChainIDWormchain, nil
	}
	id, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return ChainIDUnset, fmt.Errorf("unknown chain %q", s)
	}
	return ChainID(id), nil
}

// UnmarshalBody deserializes the body of a VAA from reader into v.
func UnmarshalBody(reader *bytes.Reader, v *VAA) (*VAA, error) {
	unixSeconds := uint32(0)
	if err := binary.Read(reader, binary.BigEndian, &unixSeconds); err != nil {
		return nil, fmt.Errorf("failed to read timestamp: %w", err)
	}
	v.Timestamp = time.Unix(int64(unixSeconds), 0)

	if err := binary.Read(reader, binary.BigEndian, &v.Nonce); err != nil {
		return nil, fmt.Errorf("failed to read nonce: %w", err)
	}

	if err := binary.Read(reader, binary.BigEndian, &v.EmitterChain); err != nil {
		return nil, fmt.Errorf("failed to read emitter chain: %w", err)
	}

	emitterAddress := Address{}
	if n, err := io.ReadFull(reader, emitterAddress[:]); err != nil {
		return nil, fmt.Errorf("failed to read emitter address [%d]: %w", n, err)
	}
	v.EmitterAddress = emitterAddress

	if err := binary.Read(reader, binary.BigEndian, &v.Sequence); err != nil {
		return nil, fmt.Errorf("failed to read sequence: %w", err)
	}

	if err := binary.Read(reader, binary.BigEndian, &v.ConsistencyLevel); err != nil {
		return nil, fmt.Errorf("failed to read commitment: %w", err)
	}

	// VAAs may carry a zero length payload
	v.Payload = make([]byte, reader.Len())
	if _, err := io.ReadFull(reader, v.Payload); err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}

	return v, nil
}

// Unmarshal deserializes the binary representation of a VAA. It does not verify signatures.
func Unmarshal(data []byte) (*VAA, error) {
	if len(data) < minVAALength {
		return nil, ErrVAATooShort
	}
	v := &VAA{}

	v.Version = data[0]
	if v.Version != SupportedVAAVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v.Version)
	}

	reader := bytes.NewReader(data[1:])

	if err := binary.Read(reader, binary.BigEndian, &v.GuardianSetIndex); err != nil {
		return nil, fmt.Errorf("failed to read guardian set index: %w", err)
	}

	lenSignatures, err := reader.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("failed to read signature length: %w", err)
	}

	if reader.Len() < int(lenSignatures)*(1+signatureLength)+minVAALength-6 {
		return nil, ErrTruncatedSignatures
	}

	v.Signatures = make([]*Signature, lenSignatures)
	for i := 0; i < int(lenSignatures); i++ {
		index, err := reader.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("failed to read validator index [%d]: %w", i, err)
		}

		signature := SignatureData{}
		if _, err := io.ReadFull(reader, signature[:]); err != nil {
			return nil, fmt.Errorf("failed to read signature [%d]: %w", i, err)
		}

		v.Signatures[i] = &Signature{
			Index:     index,
			Signature: signature,
		}
	}

	return UnmarshalBody(reader, v)
}

func doubleKeccak(bz []byte) common.Hash {
	return crypto.Keccak256Hash(crypto.Keccak256Hash(bz).Bytes())
}

// SigningDigest returns the double keccak256 of the body. It is the digest the
// guardians sign and the key used for replay protection.
func (v *VAA) SigningDigest() common.Hash {
	return doubleKeccak(v.serializeBody())
}

// HexDigest returns the hex-encoded signing digest.
func (v *VAA) HexDigest() string {
	return hex.EncodeToString(v.SigningDigest().Bytes())
}

// MessageID returns a human-readable emitter_chain/emitter_address/sequence tuple.
func (v *VAA) MessageID() string {
	return fmt.Sprintf("%d/%s/%d", v.EmitterChain, v.EmitterAddress, v.Sequence)
}

// Marshal returns the binary representation of the VAA
func (v *VAA) Marshal() ([]byte, error) {
	if len(v.Signatures) > 255 {
		return nil, fmt.Errorf("too many signatures: %d", len(v.Signatures))
	}

	buf := new(bytes.Buffer)
	MustWrite(buf, binary.BigEndian, v.Version)
	MustWrite(buf, binary.BigEndian, v.GuardianSetIndex)

	MustWrite(buf, binary.BigEndian, uint8(len(v.Signatures)))
	for _, sig := range v.Signatures {
		MustWrite(buf, binary.BigEndian, sig.Index)
		buf.Write(sig.Signature[:])
	}

	buf.Write(v.serializeBody())

	return buf.Bytes(), nil
}

/*
SECURITY: Do not change this code! Changing it could result in two different hashes for
the same observation, which would defeat replay protection.
*/
func (v *VAA) serializeBody() []byte {
	buf := new(bytes.Buffer)
	MustWrite(buf, binary.BigEndian, uint32(v.Timestamp.Unix()))
	MustWrite(buf, binary.BigEndian, v.Nonce)
	MustWrite(buf, binary.BigEndian, v.EmitterChain)
	buf.Write(v.EmitterAddress[:])
	MustWrite(buf, binary.BigEndian, v.Sequence)
	MustWrite(buf, binary.BigEndian, v.ConsistencyLevel)
	buf.Write(v.Payload)

	return buf.Bytes()
}

// AddSignature signs the VAA digest with key and appends it as guardian index.
func (v *VAA) AddSignature(key *ecdsa.PrivateKey, index uint8) {
	sig, err := crypto.Sign(v.SigningDigest().Bytes(), key)
	if err != nil {
		panic(err)
	}
	sigData := SignatureData{}
	copy(sigData[:], sig)

	v.Signatures = append(v.Signatures, &Signature{
		Index:     index,
		Signature: sigData,
	})
}

// MustWrite calls binary.Write and panics on errors
func MustWrite(w io.Writer, order binary.ByteOrder, data interface{}) {
	if err := binary.Write(w, order, data); err != nil {
		panic(fmt.Errorf("failed to write binary data: %v", data).Error())
	}
}

// StringToAddress converts a hex-encoded address into a vaa.Address
func StringToAddress(value string) (Address, error) {
	var address Address

	if len(value) < 2 {
		return address, fmt.Errorf("value must be at least 1 byte")
	}

	value = strings.TrimPrefix(value, "0x")

	res, err := hex.DecodeString(value)
	if err != nil {
		return address, err
	}

	if len(res) > 32 {
		return address, fmt.Errorf("value must be no more than 32 bytes")
	}
	copy(address[32-len(res):], res)

	return address, nil
}

// BytesToAddress left-pads b into an Address.
func BytesToAddress(b []byte) (Address, error) {
	var address Address
	if len(b) > 32 {
		return address, fmt.Errorf("value must be no more than 32 bytes")
	}

	copy(address[32-len(b):], b)
	return address, nil
}
