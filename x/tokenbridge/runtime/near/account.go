package near

import (
	"crypto/sha256"
	"fmt"

	"github.com/ramboll-max/wormhole/pkg/store"
	"github.com/ramboll-max/wormhole/pkg/vaa"
	"github.com/ramboll-max/wormhole/x/tokenbridge/types"
)

// AccountHash is the wire address of a NEAR account: sha256 of the account id.
func AccountHash(account string) vaa.Address {
	return vaa.Address(sha256.Sum256([]byte(account)))
}

// AccountHashCodec addresses accounts by their hash. Hashing is one way, so
// every canonicalized account is remembered to humanize it later.
type AccountHashCodec struct{}

var _ types.AddressCodec = AccountHashCodec{}

func (AccountHashCodec) registry(ctx types.Context) store.PrefixStore {
	return store.NewPrefixStore(ctx.KVStore(), types.AccountHashPrefix)
}

func (c AccountHashCodec) Canonicalize(ctx types.Context, account string) (vaa.Address, error) {
	if err := ValidateAccountID(account); err != nil {
		return vaa.Address{}, err
	}
	h := AccountHash(account)
	if err := c.registry(ctx).Set(h[:], []byte(account)); err != nil {
		return vaa.Address{}, err
	}
	return h, nil
}

func (c AccountHashCodec) Humanize(ctx types.Context, addr vaa.Address) (string, error) {
	account, err := c.registry(ctx).Get(addr[:])
	if err != nil {
		return "", err
	}
	if account == nil {
		return "", fmt.Errorf("account hash %s is not registered", addr)
	}
	return string(account), nil
}

// ValidateAccountID checks the NEAR account id rules: 2 to 64 characters of
// lowercase alphanumerics separated by single '-', '_' or '.'.
func ValidateAccountID(account string) error {
	if len(account) < 2 || len(account) > 64 {
		return fmt.Errorf("account id %q must be 2 to 64 characters", account)
	}
	separator := true
	for _, c := range account {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			separator = false
		case c == '-' || c == '_' || c == '.':
			if separator {
				return fmt.Errorf("invalid account id %q", account)
			}
			separator = true
		default:
			return fmt.Errorf("invalid character %q in account id %q", c, account)
		}
	}
	if separator {
		return fmt.Errorf("invalid account id %q", account)
	}
	return nil
}
