package devnet

import (
	"bytes"
	"fmt"

	"github.com/ramboll-max/wormhole/pkg/vaa"
	"github.com/ramboll-max/wormhole/x/tokenbridge/types"
)

// PaddedAddressCodec maps a devnet account name to its bytes, left padded to
// 32 bytes. Names are at most 32 bytes and never start with a NUL byte.
type PaddedAddressCodec struct{}

var _ types.AddressCodec = PaddedAddressCodec{}

func (PaddedAddressCodec) Canonicalize(_ types.Context, human string) (vaa.Address, error) {
	if human == "" || human[0] == 0 {
		return vaa.Address{}, fmt.Errorf("invalid account name %q", human)
	}
	return vaa.BytesToAddress([]byte(human))
}

func (PaddedAddressCodec) Humanize(_ types.Context, addr vaa.Address) (string, error) {
	name := bytes.TrimLeft(addr[:], "\x00")
	if len(name) == 0 {
		return "", fmt.Errorf("zero address")
	}
	return string(name), nil
}

// MustAddress is the wire address of a devnet account.
func MustAddress(name string) vaa.Address {
	addr, err := PaddedAddressCodec{}.Canonicalize(types.Context{}, name)
	if err != nil {
		panic(err)
	}
	return addr
}
