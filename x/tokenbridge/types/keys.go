package types

const (
	// ModuleName defines the module name
	ModuleName = "tokenbridge"

	// StoreKey defines the primary module store key
	StoreKey = ModuleName
)

// Store key prefixes. One byte per logical table.
var (
	ConfigKey                  = []byte{0x01}
	ChainRegistrationKeyPrefix = []byte{0x02}
	ReplayProtectionKeyPrefix  = []byte{0x03}
	TokenIDByExternalPrefix    = []byte{0x04}
	ExternalByTokenIDPrefix    = []byte{0x05}
	TokenSequenceKey           = []byte{0x06}
	WrappedAssetSeqPrefix      = []byte{0x07}
	WrappedAssetTempKey        = []byte{0x08}
	WrappedAssetDenomPrefix    = []byte{0x09}
	DenomWrappedAssetPrefix    = []byte{0x0a}
	TransferTempKey            = []byte{0x0b}
	NativeLedgerPrefix         = []byte{0x0c}
	DepositPrefix              = []byte{0x0d}
	UpgradeAuthorizationKey    = []byte{0x0e}
	AccountHashPrefix          = []byte{0x0f}
)

// KeyPrefix concatenates prefix and the key parts.
func KeyPrefix(prefix []byte, parts ...[]byte) []byte {
	n := len(prefix)
	for _, p := range parts {
		n += len(p)
	}
	key := make([]byte, 0, n)
	key = append(key, prefix...)
	for _, p := range parts {
		key = append(key, p...)
	}
	return key
}
