package cosmwasm_test

import (
	"testing"

	btcbech32 "github.com/btcsuite/btcutil/bech32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramboll-max/wormhole/pkg/vaa"
	"github.com/ramboll-max/wormhole/x/tokenbridge/runtime/cosmwasm"
	"github.com/ramboll-max/wormhole/x/tokenbridge/types"
)

func TestBech32Codec(t *testing.T) {
	var account vaa.Address
	copy(account[12:], repeat(0xa1, 20))

	tests := []struct {
		name string
		raw  []byte
		want vaa.Address
	}{
		{"account", repeat(0xa1, 20), account},
		{"contract", append([]byte{0x01}, repeat(0, 31)...), vaa.Address{0: 0x01}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			human := bech32(t, tc.raw...)
			assert.Contains(t, human, prefix+"1")

			addr, err := codec.Canonicalize(types.Context{}, human)
			require.NoError(t, err)
			assert.Equal(t, tc.want, addr)

			back, err := codec.Humanize(types.Context{}, addr)
			require.NoError(t, err)
			assert.Equal(t, human, back)
		})
	}
}

func TestBech32CodecRejects(t *testing.T) {
	foreign, err := cosmwasm.Bech32Codec{Prefix: "terra"}.Humanize(types.Context{}, vaa.Address{31: 1})
	require.NoError(t, err)

	data, err := btcbech32.ConvertBits(repeat(0x0f, 10), 8, 5, true)
	require.NoError(t, err)
	short, err := btcbech32.Encode(prefix, data)
	require.NoError(t, err)

	for _, human := range []string{foreign, short, "osmo1notbech32", ""} {
		_, err := codec.Canonicalize(types.Context{}, human)
		assert.Error(t, err, human)
	}
}
