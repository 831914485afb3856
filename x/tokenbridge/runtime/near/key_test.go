package near_test

import (
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramboll-max/wormhole/x/tokenbridge/runtime/near"
)

func TestParsePublicKey(t *testing.T) {
	key := keyFromSeed(0x07)

	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{name: "valid", in: key.String()},
		{name: "secp256k1", in: "secp256k1:" + base58.Encode(key), wantErr: true},
		{name: "no prefix", in: base58.Encode(key), wantErr: true},
		{name: "bad base58", in: "ed25519:0OIl", wantErr: true},
		{name: "short", in: "ed25519:" + base58.Encode(key[:31]), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := near.ParsePublicKey(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(key))
			assert.Equal(t, tt.in, got.String())
		})
	}
}
