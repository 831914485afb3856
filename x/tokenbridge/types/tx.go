package types

import (
	sdkmath "cosmossdk.io/math"

	"github.com/ramboll-max/wormhole/pkg/vaa"
)

// MsgDepositAndTransferBankTokens sends Amount of the attached Denom funds
// across the bridge. Attached funds beyond Amount pay the message fee.
type MsgDepositAndTransferBankTokens struct {
	Denom          string
	Amount         sdkmath.Uint
	RecipientChain vaa.ChainID
	Recipient      vaa.Address
	Fee            sdkmath.Uint
	Payload        []byte
	Nonce          uint32
}

// MsgInitiateTransfer sends Asset across the bridge. Bank assets are taken
// from the sender's deposit, contract tokens are pulled with TransferFrom.
type MsgInitiateTransfer struct {
	Asset          Asset
	RecipientChain vaa.ChainID
	Recipient      vaa.Address
	Fee            sdkmath.Uint
	Payload        []byte
	Nonce          uint32
}

type MsgCreateAssetMeta struct {
	AssetInfo AssetInfo
	Nonce     uint32
}

type MsgWithdrawTokens struct {
	Asset AssetInfo
}

type MsgCompleteTransferWithPayload struct {
	Data    []byte
	Relayer string
}
