package vaa

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getVaa() VAA {
	var payload = []byte{97, 97, 97, 97, 97, 97}

	return VAA{
		Version:          uint8(1),
		GuardianSetIndex: uint32(1),
		Signatures:       []*Signature{},
		Timestamp:        time.Unix(0, 0),
		Nonce:            uint32(1),
		Sequence:         uint64(1),
		ConsistencyLevel: uint8(32),
		EmitterChain:     ChainIDSolana,
		EmitterAddress:   GovernanceEmitter,
		Payload:          payload,
	}
}

var vaaBytes = []byte{0x1, 0x0, 0x0, 0x0, 0x1, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0x1, 0x0, 0x1, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0x4, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0x1, 0x20, 0x61, 0x61, 0x61, 0x61, 0x61, 0x61}

func TestMinVAALength(t *testing.T) {
	assert.Equal(t, minVAALength, 57)
}

func TestHexDigest(t *testing.T) {
	vaa := getVaa()
	expected := "4fae136bb1fd782fe1b5180ba735cdc83bcece3f9b7fd0e5e35300a61c8acd8f"
	assert.Equal(t, expected, vaa.HexDigest())
	assert.Equal(t, common.HexToHash(expected), vaa.SigningDigest())
}

func TestMessageID(t *testing.T) {
	vaa := getVaa()
	assert.Equal(t, "1/0000000000000000000000000000000000000000000000000000000000000004/1", vaa.MessageID())
}

func TestMarshal(t *testing.T) {
	vaa := getVaa()
	marshalBytes, err := vaa.Marshal()
	require.NoError(t, err)
	assert.Equal(t, vaaBytes, marshalBytes)
}

func TestUnmarshal(t *testing.T) {
	vaa1 := getVaa()
	vaa2, err := Unmarshal(vaaBytes)
	require.NoError(t, err)
	assert.Equal(t, &vaa1, vaa2)
}

func TestUnmarshalNoPayload(t *testing.T) {
	vaa2, err := Unmarshal(vaaBytes[:57])
	require.NoError(t, err)
	assert.Empty(t, vaa2.Payload)
	assert.Equal(t, uint64(1), vaa2.Sequence)
}

func TestUnmarshalErrors(t *testing.T) {
	tests := []struct {
		label string
		data  func() []byte
		err   error
	}{
		{label: "empty", data: func() []byte { return nil }, err: ErrVAATooShort},
		{label: "short header", data: func() []byte { return vaaBytes[:56] }, err: ErrVAATooShort},
		{
			label: "bad version",
			data: func() []byte {
				b := append([]byte{}, vaaBytes...)
				b[0] = 2
				return b
			},
			err: ErrUnsupportedVersion,
		},
		{
			label: "signature count past the end",
			data: func() []byte {
				b := append([]byte{}, vaaBytes...)
				b[5] = 3
				return b
			},
			err: ErrTruncatedSignatures,
		},
	}

	for _, tc := range tests {
		t.Run(tc.label, func(t *testing.T) {
			_, err := Unmarshal(tc.data())
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestSignedRoundTrip(t *testing.T) {
	vaa := getVaa()
	vaa.Payload = make([]byte, 2000)
	for i := range vaa.Payload {
		vaa.Payload[i] = byte(i % 255)
	}
	for i := 0; i < 3; i++ {
		key, err := crypto.GenerateKey()
		require.NoError(t, err)
		vaa.AddSignature(key, uint8(i))
	}

	marshalBytes, err := vaa.Marshal()
	require.NoError(t, err)

	vaa2, err := Unmarshal(marshalBytes)
	require.NoError(t, err)
	assert.Equal(t, vaa, *vaa2)
	assert.Equal(t, vaa.HexDigest(), vaa2.HexDigest())
}

func TestStringToAddress(t *testing.T) {
	addr, err := StringToAddress("0x0000000000000000000000000000000000000004")
	require.NoError(t, err)
	assert.Equal(t, GovernanceEmitter, addr)

	_, err = StringToAddress("zz")
	assert.Error(t, err)

	_, err = BytesToAddress(make([]byte, 33))
	assert.Error(t, err)
}

func FuzzUnmarshal(f *testing.F) {
	f.Add(vaaBytes)
	f.Fuzz(func(t *testing.T, data []byte) {
		v, err := Unmarshal(data)
		if err != nil {
			return
		}
		out, err := v.Marshal()
		require.NoError(t, err)
		assert.Equal(t, data, out)
	})
}

func TestChainIDFromString(t *testing.T) {
	tests := []struct {
		in   string
		want ChainID
	}{
		{"ethereum", ChainIDEthereum},
		{"Osmosis", ChainIDOsmosis},
		{"near", ChainIDNear},
		{"15", ChainIDNear},
		{"4", ChainID(4)},
	}
	for _, tc := range tests {
		got, err := ChainIDFromString(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	_, err := ChainIDFromString("65536")
	assert.Error(t, err)
	_, err = ChainIDFromString("moon")
	assert.Error(t, err)
}
