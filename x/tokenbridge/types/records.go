package types

import sdkmath "cosmossdk.io/math"

// Records persisted by the keeper. Amounts are kept as decimal strings so
// every RecordCodec can encode them.

// ChainRegistration is the bridge contract registered for a foreign chain.
type ChainRegistration struct {
	ChainID        uint16   `json:"chain_id"`
	EmitterAddress [32]byte `json:"emitter_address"`
}

// TransferState is the single slot record of a contract token transfer
// awaiting its TransferFrom confirmation.
type TransferState struct {
	PreviousBalance string `json:"previous_balance"`
	Account         string `json:"account"`
	TokenAddress    string `json:"token_address"`
	Message         []byte `json:"message"`
	Multiplier      string `json:"multiplier"`
	Nonce           uint32 `json:"nonce"`
	// MessageFee is forwarded to the core bridge with the posted message.
	MessageFee []CoinRecord `json:"message_fee"`
}

type CoinRecord struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

// WrappedAssetTemp is the pending creation record of a wrapped asset.
// Sequence is the attestation sequence the creation was requested for.
type WrappedAssetTemp struct {
	ChainID        uint16   `json:"chain_id"`
	ForeignAddress [32]byte `json:"foreign_address"`
	Decimals       uint8    `json:"decimals"`
	Sequence       uint64   `json:"sequence"`
}

// WrappedAsset is the origin of a registered wrapped denom.
type WrappedAsset struct {
	Denom          string   `json:"denom"`
	ChainID        uint16   `json:"chain_id"`
	ForeignAddress [32]byte `json:"foreign_address"`
	Decimals       uint8    `json:"decimals"`
}

// UpgradeAuthorization is the last contract upgrade accepted through governance.
type UpgradeAuthorization struct {
	NewContract [32]byte `json:"new_contract"`
	CodeID      uint64   `json:"code_id"`
	Sequence    uint64   `json:"sequence"`
}

func NewCoinRecords(coins Coins) []CoinRecord {
	out := make([]CoinRecord, 0, len(coins))
	for _, c := range coins {
		out = append(out, CoinRecord{Denom: c.Denom, Amount: c.Amount.String()})
	}
	return out
}

func CoinsFromRecords(records []CoinRecord) (Coins, error) {
	out := make(Coins, 0, len(records))
	for _, r := range records {
		amount, err := sdkmath.ParseUint(r.Amount)
		if err != nil {
			return nil, err
		}
		out = append(out, Coin{Denom: r.Denom, Amount: amount})
	}
	return out, nil
}
