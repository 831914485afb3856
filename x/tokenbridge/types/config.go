package types

import (
	errorsmod "cosmossdk.io/errors"

	"github.com/ramboll-max/wormhole/pkg/vaa"
)

// Config is the instantiation state of a bridge deployment.
type Config struct {
	// ChainID of the chain the bridge is deployed on
	ChainID uint16 `json:"chain_id"`
	// GovChain and GovAddress identify the governance emitter
	GovChain   uint16   `json:"gov_chain"`
	GovAddress [32]byte `json:"gov_address"`
	// WormholeContract is the core bridge messages are posted through
	WormholeContract string `json:"wormhole_contract"`
	// CapWrappedDecimals issues wrapped tokens with at most 8 decimals
	CapWrappedDecimals bool `json:"cap_wrapped_decimals"`
}

func DefaultConfig(chainID vaa.ChainID, wormholeContract string) Config {
	return Config{
		ChainID:          uint16(chainID),
		GovChain:         uint16(vaa.GovernanceChain),
		GovAddress:       vaa.GovernanceEmitter,
		WormholeContract: wormholeContract,
	}
}

func (c Config) Chain() vaa.ChainID { return vaa.ChainID(c.ChainID) }

func (c Config) IsGovernanceEmitter(chain vaa.ChainID, addr vaa.Address) bool {
	return uint16(chain) == c.GovChain && addr == vaa.Address(c.GovAddress)
}

func (c Config) Validate() error {
	if c.ChainID == 0 {
		return errorsmod.Wrap(ErrNotConfigured, "chain id must not be zero")
	}
	if c.WormholeContract == "" {
		return errorsmod.Wrap(ErrNotConfigured, "wormhole contract is empty")
	}
	return nil
}
