package keeper

import (
	errorsmod "cosmossdk.io/errors"
	"go.uber.org/zap"

	"github.com/ramboll-max/wormhole/pkg/vaa"
	"github.com/ramboll-max/wormhole/x/tokenbridge/types"
)

func (k Keeper) handleGovernancePayload(ctx types.Context, cfg types.Config, v *vaa.VAA) (*types.Response, error) {
	packet, err := types.ParseGovernancePacket(v.Payload)
	if err != nil {
		return nil, errorsmod.Wrap(types.ErrInvalidGovernanceVAA, err.Error())
	}

	// Check governance header
	if packet.Module != types.TokenBridgeModule {
		return nil, errorsmod.Wrapf(types.ErrUnknownGovernanceModule, "%q", types.TrimNul(packet.Module[:]))
	}
	if packet.Chain != vaa.ChainIDUnset && packet.Chain != cfg.Chain() {
		return nil, errorsmod.Wrapf(types.ErrInvalidGovernanceTargetChain, "chain %d", packet.Chain)
	}

	k.logger.Info("executing governance action",
		zap.Stringer("action", packet.Action),
		zap.String("message_id", v.MessageID()))

	switch packet.Action {
	case types.ActionRegisterChain:
		return k.handleRegisterChain(ctx, packet.Body)
	case types.ActionUpgradeContract:
		return k.handleUpgradeContract(ctx, v, packet.Body)
	case types.ActionSetMessageFee:
		if _, err := types.ParseBodySetMessageFee(packet.Body); err != nil {
			return nil, err
		}
		return nil, errorsmod.Wrap(types.ErrUnsupportedGovernanceAction, "message fees are set on the core bridge")
	case types.ActionTransferFee:
		if _, err := types.ParseBodyTransferFee(packet.Body); err != nil {
			return nil, err
		}
		return nil, errorsmod.Wrap(types.ErrUnsupportedGovernanceAction, "fees are collected by the core bridge")
	default:
		return nil, errorsmod.Wrapf(types.ErrInvalidVAAAction, "governance action %d", packet.Action)
	}
}

func (k Keeper) handleRegisterChain(ctx types.Context, body []byte) (*types.Response, error) {
	reg, err := types.ParseBodyRegisterChain(body)
	if err != nil {
		return nil, err
	}
	if _, found := k.GetChainRegistration(ctx, reg.ChainID); found {
		return nil, errorsmod.Wrapf(types.ErrChainAlreadyRegistered, "chain %d", reg.ChainID)
	}

	k.SetChainRegistration(ctx, types.ChainRegistration{
		ChainID:        uint16(reg.ChainID),
		EmitterAddress: reg.EmitterAddress,
	})

	return types.NewResponse().AddEvent(types.NewEvent(types.EventTypeRegisterChain,
		types.NewAttribute("chain_id", uint16(reg.ChainID)),
		types.NewAttribute("chain_address", reg.EmitterAddress),
	)), nil
}

// handleUpgradeContract records the authorization. The code replacement
// itself is carried out by the host.
func (k Keeper) handleUpgradeContract(ctx types.Context, v *vaa.VAA, body []byte) (*types.Response, error) {
	upgrade, err := types.ParseBodyUpgradeContract(body)
	if err != nil {
		return nil, err
	}

	auth := types.UpgradeAuthorization{
		NewContract: upgrade.NewContract,
		CodeID:      upgrade.CodeID(),
		Sequence:    v.Sequence,
	}
	k.SetUpgradeAuthorization(ctx, auth)

	return types.NewResponse().
		AddMessage(types.UpgradeContractMsg{NewContract: upgrade.NewContract, CodeID: auth.CodeID}).
		AddAttribute(types.AttributeKeyAction, "contract_upgrade").
		AddEvent(types.NewEvent(types.EventTypeContractUpgrade,
			types.NewAttribute("new_contract", upgrade.NewContract),
			types.NewAttribute("code_id", auth.CodeID),
		)), nil
}

func (k Keeper) SetUpgradeAuthorization(ctx types.Context, auth types.UpgradeAuthorization) {
	k.save(ctx.KVStore(), types.UpgradeAuthorizationKey, &auth)
}

// GetUpgradeAuthorization returns the last upgrade accepted through governance.
func (k Keeper) GetUpgradeAuthorization(ctx types.Context) (auth types.UpgradeAuthorization, found bool) {
	found = k.load(ctx.KVStore(), types.UpgradeAuthorizationKey, &auth)
	return auth, found
}
