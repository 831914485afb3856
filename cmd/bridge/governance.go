package bridge

import (
	"encoding/hex"
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/holiman/uint256"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ramboll-max/wormhole/pkg/devnet"
	"github.com/ramboll-max/wormhole/pkg/vaa"
	"github.com/ramboll-max/wormhole/x/tokenbridge/types"
)

var (
	sequence    *uint64
	targetChain *string
	printOnly   *bool

	emitterChain   *string
	emitterAddress *string
)

func init() {
	gf := pflag.NewFlagSet("commonGovernanceFlags", pflag.ContinueOnError)
	sequence = gf.Uint64("sequence", 0, "Sequence of the signed VAA")
	targetChain = gf.String("targetChain", "0", "Chain the action is addressed to, 0 for all")
	printOnly = gf.Bool("printOnly", false, "Print the signed VAA instead of submitting it")

	GovernanceRegisterChainCmd.Flags().AddFlagSet(gf)
	GovernanceUpgradeContractCmd.Flags().AddFlagSet(gf)
	GovernanceCmd.AddCommand(GovernanceRegisterChainCmd, GovernanceUpgradeContractCmd)

	ef := pflag.NewFlagSet("commonEmitFlags", pflag.ContinueOnError)
	emitterChain = ef.String("emitterChain", "ethereum", "Chain of the foreign token bridge")
	emitterAddress = ef.String("emitterAddress", "", "Hex address of the foreign token bridge")
	ef.AddFlag(gf.Lookup("sequence"))
	if err := cobra.MarkFlagRequired(ef, "emitterAddress"); err != nil {
		panic(err)
	}

	EmitAssetMetaCmd.Flags().AddFlagSet(ef)
	EmitTransferCmd.Flags().AddFlagSet(ef)
	EmitCmd.AddCommand(EmitAssetMetaCmd, EmitTransferCmd)
}

var GovernanceCmd = &cobra.Command{
	Use:   "governance",
	Short: "Sign token bridge governance actions with the devnet guardians",
}

var GovernanceRegisterChainCmd = &cobra.Command{
	Use:   "register-chain [CHAIN] [EMITTER]",
	Short: "Register the token bridge of a foreign chain",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		chain, err := vaa.ChainIDFromString(args[0])
		if err != nil {
			return err
		}
		emitter, err := parseAddress(args[1])
		if err != nil {
			return fmt.Errorf("emitter: %w", err)
		}
		return signGovernance(cmd, types.ActionRegisterChain,
			types.BodyRegisterChain{ChainID: chain, EmitterAddress: emitter}.Serialize())
	},
}

var GovernanceUpgradeContractCmd = &cobra.Command{
	Use:   "upgrade-contract [NEW_CONTRACT]",
	Short: "Authorize an upgrade to new code, given as a 32 byte hex id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := parseAddress(args[0])
		if err != nil {
			return fmt.Errorf("new contract: %w", err)
		}
		return signGovernance(cmd, types.ActionUpgradeContract, types.BodyUpgradeContract{NewContract: code}.Serialize())
	},
}

func signGovernance(cmd *cobra.Command, action types.GovernanceAction, body []byte) error {
	target, err := vaa.ChainIDFromString(*targetChain)
	if err != nil {
		return err
	}
	packet := types.NewGovernancePacket(action, target, body)
	data := sign(devnet.GovernanceEmitter(clock.New()), packet.Serialize())
	if *printOnly {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(data))
		return err
	}
	return withSession(func(cmd *cobra.Command, s *session, _ []string) error {
		return s.execute(cmd, nil, func(ctx types.Context, _ types.MessageInfo) (*types.Response, error) {
			return s.keeper.ExecuteGovernanceVAA(ctx, data)
		})
	})(cmd, nil)
}

// sign emits payload at --sequence and signs it with the devnet guardians.
func sign(e *devnet.Emitter, payload []byte) []byte {
	v := e.Emit(payload, 0)
	v.Sequence = *sequence
	return devnet.NewGuardians(viper.GetUint32("guardianSetIndex"), viper.GetInt("guardians")).Sign(v)
}

var EmitCmd = &cobra.Command{
	Use:   "emit",
	Short: "Print token bridge messages of a foreign chain signed by the devnet guardians",
}

var EmitAssetMetaCmd = &cobra.Command{
	Use:   "asset-meta [TOKEN] [DECIMALS] [SYMBOL] [NAME]",
	Short: "Attest a token of the emitter chain",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := foreignEmitter()
		if err != nil {
			return err
		}
		token, err := parseAddress(args[0])
		if err != nil {
			return fmt.Errorf("token: %w", err)
		}
		var decimals uint8
		if _, err := fmt.Sscan(args[1], &decimals); err != nil {
			return fmt.Errorf("decimals: %w", err)
		}
		meta := &types.AssetMeta{TokenAddress: token, TokenChain: e.Chain, Decimals: decimals, Symbol: args[2], Name: args[3]}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(sign(e, meta.Serialize())))
		return err
	},
}

var EmitTransferCmd = &cobra.Command{
	Use:   "transfer [TOKEN_CHAIN] [TOKEN] [AMOUNT] [RECIPIENT_CHAIN] [RECIPIENT] [FEE]",
	Short: "Transfer wire amounts of a token to an account of this chain",
	Args:  cobra.ExactArgs(6),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := foreignEmitter()
		if err != nil {
			return err
		}
		tokenChain, err := vaa.ChainIDFromString(args[0])
		if err != nil {
			return err
		}
		token, err := parseAddress(args[1])
		if err != nil {
			return fmt.Errorf("token: %w", err)
		}
		amount, err := uint256.FromDecimal(args[2])
		if err != nil {
			return fmt.Errorf("amount: %w", err)
		}
		recipientChain, err := vaa.ChainIDFromString(args[3])
		if err != nil {
			return err
		}
		recipient, err := devnet.PaddedAddressCodec{}.Canonicalize(types.Context{}, args[4])
		if err != nil {
			return fmt.Errorf("recipient: %w", err)
		}
		fee, err := uint256.FromDecimal(args[5])
		if err != nil {
			return fmt.Errorf("fee: %w", err)
		}
		t := &types.Transfer{
			Amount:         amount,
			TokenAddress:   token,
			TokenChain:     tokenChain,
			Recipient:      recipient,
			RecipientChain: recipientChain,
			Fee:            fee,
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(sign(e, t.Serialize())))
		return err
	},
}

func foreignEmitter() (*devnet.Emitter, error) {
	chain, err := vaa.ChainIDFromString(*emitterChain)
	if err != nil {
		return nil, err
	}
	addr, err := parseAddress(*emitterAddress)
	if err != nil {
		return nil, fmt.Errorf("emitterAddress: %w", err)
	}
	return devnet.NewEmitter(chain, addr, clock.New()), nil
}
