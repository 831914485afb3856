package cosmwasm

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcutil/bech32"

	"github.com/ramboll-max/wormhole/pkg/vaa"
	"github.com/ramboll-max/wormhole/x/tokenbridge/types"
)

// Bech32Codec converts bech32 account and contract addresses to wire
// addresses. Accounts (20 bytes) are left padded; contracts are 32 bytes.
type Bech32Codec struct {
	Prefix string
}

var _ types.AddressCodec = Bech32Codec{}

func (c Bech32Codec) Canonicalize(_ types.Context, human string) (vaa.Address, error) {
	hrp, data, err := bech32.Decode(human)
	if err != nil {
		return vaa.Address{}, err
	}
	if hrp != c.Prefix {
		return vaa.Address{}, fmt.Errorf("invalid bech32 prefix %q, expected %q", hrp, c.Prefix)
	}
	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return vaa.Address{}, err
	}
	if len(raw) != 20 && len(raw) != 32 {
		return vaa.Address{}, fmt.Errorf("invalid address length %d", len(raw))
	}
	return vaa.BytesToAddress(raw)
}

func (c Bech32Codec) Humanize(_ types.Context, addr vaa.Address) (string, error) {
	raw := addr[:]
	// 12 leading zero bytes mark a padded account address
	if bytes.Equal(raw[:12], make([]byte, 12)) {
		raw = raw[12:]
	}
	data, err := bech32.ConvertBits(raw, 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.Encode(c.Prefix, data)
}
