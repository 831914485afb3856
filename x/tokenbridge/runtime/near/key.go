package near

import (
	"crypto/ed25519"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

const ed25519Prefix = "ed25519:"

// PublicKey is an ed25519 access key in NEAR's "ed25519:<base58>" notation.
type PublicKey ed25519.PublicKey

func ParsePublicKey(s string) (PublicKey, error) {
	if !strings.HasPrefix(s, ed25519Prefix) {
		return nil, fmt.Errorf("unsupported key type in %q", s)
	}
	raw, err := base58.Decode(strings.TrimPrefix(s, ed25519Prefix))
	if err != nil {
		return nil, fmt.Errorf("decode public key: %w", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("public key is %d bytes, expected %d", len(raw), ed25519.PublicKeySize)
	}
	return PublicKey(raw), nil
}

func (k PublicKey) String() string {
	return ed25519Prefix + base58.Encode(k)
}

func (k PublicKey) Equal(other PublicKey) bool {
	return ed25519.PublicKey(k).Equal(ed25519.PublicKey(other))
}
