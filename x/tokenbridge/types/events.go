package types

// Event types emitted by the bridge.
const (
	EventTypeCreateWrapped           = "create_wrapped"
	EventTypeCreateWrappedReply      = "create_wrapped_reply"
	EventTypeCompleteTransferWrapped = "complete_transfer_wrapped"
	EventTypeCompleteTransferNative  = "complete_transfer_native"
	EventTypeInitiateTransferWrapped = "initiate_transfer_wrapped_token"
	EventTypeInitiateTransferNative  = "initiate_transfer_native_token"
	EventTypeInitiateTransferToken   = "initiate_transfer_token"
	EventTypeTransferAborted         = "transfer_aborted"
	EventTypeAssetMeta               = "asset_meta"
	EventTypeRegisterChain           = "register_chain"
	EventTypeContractUpgrade         = "contract_upgrade"
	EventTypeDeposit                 = "deposit_tokens"
	EventTypeWithdraw                = "withdraw_tokens"
)

const (
	AttributeKeyAction = "action"
	AttributeKeyAmount = "amount"
	AttributeKeyFee    = "fee"
)
