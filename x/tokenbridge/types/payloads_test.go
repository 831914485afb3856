package types

import (
	"encoding/hex"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramboll-max/wormhole/pkg/vaa"
)

func addr(b byte) vaa.Address {
	var a vaa.Address
	a[31] = b
	return a
}

func TestTransferLayout(t *testing.T) {
	transfer := &Transfer{
		Amount:         uint256.NewInt(100000000),
		TokenAddress:   addr(0xaa),
		TokenChain:     vaa.ChainIDEthereum,
		Recipient:      addr(0xbb),
		RecipientChain: 20001,
		Fee:            uint256.NewInt(1000000),
	}
	b := transfer.Serialize()
	require.Len(t, b, 133)

	assert.Equal(t, byte(1), b[0])
	assert.Equal(t, "0000000000000000000000000000000000000000000000000000000005f5e100", hex.EncodeToString(b[1:33]))
	assert.Equal(t, byte(0xaa), b[64])
	assert.Equal(t, []byte{0x00, 0x02}, b[65:67])
	assert.Equal(t, byte(0xbb), b[98])
	assert.Equal(t, []byte{0x4e, 0x21}, b[99:101])
	assert.Equal(t, "00000000000000000000000000000000000000000000000000000000000f4240", hex.EncodeToString(b[101:133]))

	msg, err := ParseMessage(b)
	require.NoError(t, err)
	assert.Equal(t, transfer, msg)
}

func TestTransferWithPayloadLayout(t *testing.T) {
	transfer := &TransferWithPayload{
		Amount:         uint256.NewInt(5),
		TokenAddress:   addr(1),
		TokenChain:     vaa.ChainIDSolana,
		Recipient:      addr(2),
		RecipientChain: vaa.ChainIDTerra2,
		SenderAddress:  addr(3),
		Payload:        []byte("hello"),
	}
	b := transfer.Serialize()
	require.Len(t, b, 138)
	assert.Equal(t, byte(3), b[0])
	assert.Equal(t, []byte("hello"), b[133:])

	msg, err := ParseMessage(b)
	require.NoError(t, err)
	assert.Equal(t, transfer, msg)

	// the payload may be empty
	msg, err = ParseMessage(b[:133])
	require.NoError(t, err)
	assert.Empty(t, msg.(*TransferWithPayload).Payload)
}

func TestAssetMetaLayout(t *testing.T) {
	meta := &AssetMeta{
		TokenAddress: addr(0xcc),
		TokenChain:   vaa.ChainIDEthereum,
		Decimals:     18,
		Symbol:       "WETH",
		Name:         "Wrapped Ether",
	}
	b := meta.Serialize()
	require.Len(t, b, 100)
	assert.Equal(t, byte(2), b[0])
	assert.Equal(t, byte(18), b[35])
	assert.Equal(t, []byte("WETH"), b[36:40])
	assert.Equal(t, make([]byte, 28), b[40:68])

	msg, err := ParseMessage(b)
	require.NoError(t, err)
	assert.Equal(t, meta, msg)
}

func TestAssetMetaLongNameTruncated(t *testing.T) {
	meta := &AssetMeta{Name: "a name that is definitely longer than thirty two bytes"}
	parsed, err := ParseAssetMeta(meta.Serialize())
	require.NoError(t, err)
	assert.Equal(t, "a name that is definitely longer", parsed.Name)
}

func TestParseMessageErrors(t *testing.T) {
	valid := (&Transfer{Amount: uint256.NewInt(1), Fee: uint256.NewInt(0)}).Serialize()

	overflow := append([]byte{}, valid...)
	overflow[16] = 1

	feeOverflow := append([]byte{}, valid...)
	feeOverflow[101] = 1

	tests := []struct {
		label string
		data  []byte
		err   error
	}{
		{label: "empty", data: nil, err: ErrPayloadTooShort},
		{label: "unknown id", data: []byte{9, 0, 0}, err: ErrUnknownPayload},
		{label: "short transfer", data: valid[:132], err: ErrPayloadTooShort},
		{label: "short transfer with payload", data: append([]byte{3}, valid[1:100]...), err: ErrPayloadTooShort},
		{label: "short asset meta", data: []byte{2, 0, 0}, err: ErrPayloadTooShort},
		{label: "amount high word", data: overflow, err: ErrAmountOverflow},
		{label: "fee high word", data: feeOverflow, err: ErrAmountOverflow},
	}

	for _, tc := range tests {
		t.Run(tc.label, func(t *testing.T) {
			_, err := ParseMessage(tc.data)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestMaxLowWordAccepted(t *testing.T) {
	maxAmount := new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 128), uint256.NewInt(1))
	b := (&Transfer{Amount: maxAmount, Fee: uint256.NewInt(0)}).Serialize()
	transfer, err := ParseTransfer(b)
	require.NoError(t, err)
	assert.Equal(t, maxAmount, transfer.Amount)
}
