package types

import (
	sdkmath "cosmossdk.io/math"

	"github.com/ramboll-max/wormhole/pkg/vaa"
)

// TransferInfoResponse summarizes the transfer carried by a VAA.
type TransferInfoResponse struct {
	Amount         sdkmath.Uint `json:"amount"`
	TokenAddress   vaa.Address  `json:"token_address"`
	TokenChain     vaa.ChainID  `json:"token_chain"`
	Recipient      vaa.Address  `json:"recipient"`
	RecipientChain vaa.ChainID  `json:"recipient_chain"`
	Fee            sdkmath.Uint `json:"fee"`
	Payload        []byte       `json:"payload"`
}

// DenomWrappedAssetInfoResponse tells whether a denom is wrapped and where it originates.
type DenomWrappedAssetInfoResponse struct {
	Found        bool        `json:"found"`
	IsWrapped    bool        `json:"is_wrapped"`
	AssetChain   vaa.ChainID `json:"asset_chain"`
	AssetAddress []byte      `json:"asset_address"`
}
