package types

// DONTCOVER

import (
	errorsmod "cosmossdk.io/errors"
)

// x/tokenbridge module sentinel errors
var (
	// malformed input
	ErrInvalidVAA              = errorsmod.Register(ModuleName, 1101, "invalid VAA")
	ErrPayloadTooShort         = errorsmod.Register(ModuleName, 1102, "payload too short")
	ErrUnknownPayload          = errorsmod.Register(ModuleName, 1103, "unknown payload type")
	ErrAmountOverflow          = errorsmod.Register(ModuleName, 1104, "amount does not fit in 128 bits")
	ErrInvalidGovernanceVAA    = errorsmod.Register(ModuleName, 1105, "invalid governance VAA")
	ErrUnknownGovernanceModule = errorsmod.Register(ModuleName, 1106, "invalid governance module")
	ErrInvalidAddress          = errorsmod.Register(ModuleName, 1107, "invalid address")
	ErrInvalidAsset            = errorsmod.Register(ModuleName, 1108, "invalid asset")
	ErrInvalidMessage          = errorsmod.Register(ModuleName, 1109, "invalid message")

	// authentication
	ErrVAAVerification              = errorsmod.Register(ModuleName, 1201, "VAA verification failed")
	ErrInvalidGovernanceEmitter     = errorsmod.Register(ModuleName, 1202, "invalid governance emitter")
	ErrUnregisteredEmitter          = errorsmod.Register(ModuleName, 1203, "emitter chain not registered")
	ErrInvalidEmitter               = errorsmod.Register(ModuleName, 1204, "invalid emitter")
	ErrWrongDestinationChain        = errorsmod.Register(ModuleName, 1205, "transfer is not for this chain")
	ErrInvalidGovernanceTargetChain = errorsmod.Register(ModuleName, 1206, "governance target chain does not match")
	ErrPayloadRecipientOnly         = errorsmod.Register(ModuleName, 1207, "transfers with payload can only be redeemed by the recipient")
	ErrRegistrationForbidden        = errorsmod.Register(ModuleName, 1208, "registration forbidden")
	ErrUnauthorized                 = errorsmod.Register(ModuleName, 1209, "unauthorized")

	// protocol invariants
	ErrVAAAlreadyExecuted          = errorsmod.Register(ModuleName, 1301, "VAA was already executed")
	ErrChainAlreadyRegistered      = errorsmod.Register(ModuleName, 1302, "chain already registered")
	ErrAlreadyAttested             = errorsmod.Register(ModuleName, 1303, "asset already attested")
	ErrAttestationInProgress       = errorsmod.Register(ModuleName, 1304, "wrapped asset creation in progress")
	ErrTransferInProgress          = errorsmod.Register(ModuleName, 1305, "a locking transfer is already in progress")
	ErrInvalidVAAAction            = errorsmod.Register(ModuleName, 1306, "invalid VAA action")
	ErrUnsupportedGovernanceAction = errorsmod.Register(ModuleName, 1307, "unsupported governance action")
	ErrNativeAssetAttestation      = errorsmod.Register(ModuleName, 1308, "cannot attest an asset native to this chain")
	ErrAttestWrappedAsset          = errorsmod.Register(ModuleName, 1309, "cannot attest a wrapped asset")
	ErrUnknownReply                = errorsmod.Register(ModuleName, 1310, "unknown reply id")
	ErrNoPendingOperation          = errorsmod.Register(ModuleName, 1311, "no pending operation for reply")
	ErrSubOperationFailed          = errorsmod.Register(ModuleName, 1312, "sub-operation failed")

	// business rules
	ErrZeroAmount          = errorsmod.Register(ModuleName, 1401, "amount too low")
	ErrFeeExceedsAmount    = errorsmod.Register(ModuleName, 1402, "fee greater than sent amount")
	ErrInsufficientFunds   = errorsmod.Register(ModuleName, 1403, "insufficient funds")
	ErrSameSourceAndTarget = errorsmod.Register(ModuleName, 1404, "source and target chain are the same")
	ErrAssetNotAttested    = errorsmod.Register(ModuleName, 1405, "wrapped asset not deployed, attest the asset meta first")
	ErrTokenNotFound       = errorsmod.Register(ModuleName, 1406, "token not found")
	ErrMissingFunds        = errorsmod.Register(ModuleName, 1407, "required funds were not attached")
	ErrDisplayUnitNotFound = errorsmod.Register(ModuleName, 1408, "display denom unit not found")
	ErrExponentTooLarge    = errorsmod.Register(ModuleName, 1409, "display denom exponent too large")
	ErrNotConfigured       = errorsmod.Register(ModuleName, 1410, "contract not configured")
)
