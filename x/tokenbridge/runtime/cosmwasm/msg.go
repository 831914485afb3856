package cosmwasm

import (
	"encoding/json"
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/ramboll-max/wormhole/pkg/vaa"
	"github.com/ramboll-max/wormhole/x/tokenbridge/types"
)

type InstantiateMsg struct {
	ChainID uint16 `json:"chain_id"`

	// governance contract details
	GovChain   uint16 `json:"gov_chain"`
	GovAddress []byte `json:"gov_address"`

	WormholeContract   string `json:"wormhole_contract"`
	CapWrappedDecimals bool   `json:"cap_wrapped_decimals,omitempty"`
}

func (m InstantiateMsg) Config() (types.Config, error) {
	gov, err := vaa.BytesToAddress(m.GovAddress)
	if err != nil {
		return types.Config{}, err
	}
	cfg := types.Config{
		ChainID:            m.ChainID,
		GovChain:           m.GovChain,
		GovAddress:         gov,
		WormholeContract:   m.WormholeContract,
		CapWrappedDecimals: m.CapWrappedDecimals,
	}
	return cfg, cfg.Validate()
}

// ExecuteMsg is a JSON enum: exactly one field is set.
type ExecuteMsg struct {
	DepositTokens                           *struct{}                     `json:"deposit_tokens,omitempty"`
	WithdrawTokens                          *WithdrawTokens               `json:"withdraw_tokens,omitempty"`
	InitiateTransfer                        *InitiateTransfer             `json:"initiate_transfer,omitempty"`
	InitiateTransferWithPayload             *InitiateTransfer             `json:"initiate_transfer_with_payload,omitempty"`
	DepositAndTransferBankTokens            *DepositAndTransferBankTokens `json:"deposit_and_transfer_bank_tokens,omitempty"`
	DepositAndTransferBankTokensWithPayload *DepositAndTransferBankTokens `json:"deposit_and_transfer_bank_tokens_with_payload,omitempty"`
	SubmitVaa                               *SubmitVaa                    `json:"submit_vaa,omitempty"`
	CreateAssetMeta                         *CreateAssetMeta              `json:"create_asset_meta,omitempty"`
	CompleteTransferWithPayload             *CompleteTransferWithPayload  `json:"complete_transfer_with_payload,omitempty"`
}

type WithdrawTokens struct {
	Asset types.AssetInfo `json:"asset"`
}

type InitiateTransfer struct {
	Asset          types.Asset  `json:"asset"`
	RecipientChain uint16       `json:"recipient_chain"`
	Recipient      []byte       `json:"recipient"`
	Fee            sdkmath.Uint `json:"fee"`
	Payload        []byte       `json:"payload,omitempty"`
	Nonce          uint32       `json:"nonce"`
}

type DepositAndTransferBankTokens struct {
	Denom          string       `json:"denom"`
	Amount         sdkmath.Uint `json:"amount"`
	RecipientChain uint16       `json:"recipient_chain"`
	Recipient      []byte       `json:"recipient"`
	Fee            sdkmath.Uint `json:"fee"`
	Payload        []byte       `json:"payload,omitempty"`
	Nonce          uint32       `json:"nonce"`
}

type SubmitVaa struct {
	Data []byte `json:"data"`
}

type CreateAssetMeta struct {
	AssetInfo types.AssetInfo `json:"asset_info"`
	Nonce     uint32          `json:"nonce"`
}

type CompleteTransferWithPayload struct {
	Data    []byte `json:"data"`
	Relayer string `json:"relayer"`
}

// MigrateMsg carries no parameters.
type MigrateMsg struct{}

type QueryMsg struct {
	WrappedRegistry       *WrappedRegistryQuery       `json:"wrapped_registry,omitempty"`
	TransferInfo          *TransferInfoQuery          `json:"transfer_info,omitempty"`
	ExternalID            *ExternalIDQuery            `json:"external_id,omitempty"`
	IsVaaRedeemed         *IsVaaRedeemedQuery         `json:"is_vaa_redeemed,omitempty"`
	ChainRegistration     *ChainRegistrationQuery     `json:"chain_registration,omitempty"`
	AllChainRegistrations *struct{}                   `json:"all_chain_registrations,omitempty"`
	DenomWrappedAssetInfo *DenomWrappedAssetInfoQuery `json:"denom_wrapped_asset_info,omitempty"`
}

type WrappedRegistryQuery struct {
	Chain   uint16 `json:"chain"`
	Address []byte `json:"address"`
}

type TransferInfoQuery struct {
	Vaa []byte `json:"vaa"`
}

type ExternalIDQuery struct {
	ExternalID []byte `json:"external_id"`
}

type IsVaaRedeemedQuery struct {
	Vaa []byte `json:"vaa"`
}

type ChainRegistrationQuery struct {
	Chain uint16 `json:"chain"`
}

type DenomWrappedAssetInfoQuery struct {
	Denom string `json:"denom"`
}

type WrappedRegistryResponse struct {
	Denom string `json:"denom"`
}

type ExternalIDResponse struct {
	TokenID json.RawMessage `json:"token_id"`
}

type IsVaaRedeemedResponse struct {
	IsRedeemed bool `json:"is_redeemed"`
}

type ChainRegistrationResponse struct {
	Address []byte `json:"address"`
}

type AllChainRegistrationsResponse struct {
	Registrations []ChainRegistration `json:"registrations"`
}

type ChainRegistration struct {
	Chain   uint16 `json:"chain"`
	Address []byte `json:"address"`
}

// uintOrZero treats an omitted amount as zero.
func uintOrZero(u sdkmath.Uint) sdkmath.Uint {
	if u.IsNil() {
		return sdkmath.ZeroUint()
	}
	return u
}

func recipientAddress(b []byte) (vaa.Address, error) {
	if len(b) != 32 {
		return vaa.Address{}, fmt.Errorf("recipient must be 32 bytes, got %d", len(b))
	}
	return vaa.BytesToAddress(b)
}

func (m InitiateTransfer) toMsg() (types.MsgInitiateTransfer, error) {
	recipient, err := recipientAddress(m.Recipient)
	if err != nil {
		return types.MsgInitiateTransfer{}, err
	}
	asset := m.Asset
	asset.Amount = uintOrZero(asset.Amount)
	return types.MsgInitiateTransfer{
		Asset:          asset,
		RecipientChain: vaa.ChainID(m.RecipientChain),
		Recipient:      recipient,
		Fee:            uintOrZero(m.Fee),
		Payload:        m.Payload,
		Nonce:          m.Nonce,
	}, nil
}

func (m DepositAndTransferBankTokens) toMsg() (types.MsgDepositAndTransferBankTokens, error) {
	recipient, err := recipientAddress(m.Recipient)
	if err != nil {
		return types.MsgDepositAndTransferBankTokens{}, err
	}
	return types.MsgDepositAndTransferBankTokens{
		Denom:          m.Denom,
		Amount:         uintOrZero(m.Amount),
		RecipientChain: vaa.ChainID(m.RecipientChain),
		Recipient:      recipient,
		Fee:            uintOrZero(m.Fee),
		Payload:        m.Payload,
		Nonce:          m.Nonce,
	}, nil
}
