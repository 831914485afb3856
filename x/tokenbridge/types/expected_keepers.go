package types

import (
	sdkmath "cosmossdk.io/math"

	"github.com/ramboll-max/wormhole/pkg/vaa"
)

// VAAVerifier parses a raw VAA and checks its guardian signatures.
type VAAVerifier interface {
	VerifyVAA(ctx Context, data []byte) (*vaa.VAA, error)
}

// Querier answers read-only questions about the token ledger.
type Querier interface {
	// Balance of asset held by address.
	Balance(ctx Context, asset AssetInfo, address string) (sdkmath.Uint, error)
	// TokenInfo of a contract token.
	TokenInfo(ctx Context, contract string) (TokenInfo, error)
	// DenomMetadata of a bank denomination.
	DenomMetadata(ctx Context, denom string) (DenomMetadata, error)
}

// AddressCodec converts between host addresses and 32 byte wire addresses.
type AddressCodec interface {
	Canonicalize(ctx Context, human string) (vaa.Address, error)
	Humanize(ctx Context, addr vaa.Address) (string, error)
}
