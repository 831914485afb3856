package bridge

import (
	"encoding/hex"
	"fmt"
	"strings"

	sdkmath "cosmossdk.io/math"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ramboll-max/wormhole/pkg/devnet"
	"github.com/ramboll-max/wormhole/pkg/vaa"
	"github.com/ramboll-max/wormhole/x/tokenbridge/types"
)

var (
	sender *string
	nonce  *uint32

	initChainID            *uint16
	initGovChain           *uint16
	initGovAddress         *string
	initCapWrappedDecimals *bool

	transferFee     *string
	transferPayload *string
	messageFee      *string
)

func init() {
	// Shared flags for all commands executing on behalf of an account
	pf := pflag.NewFlagSet("commonTxFlags", pflag.ContinueOnError)
	sender = pf.String("sender", "relayer", "Devnet account executing the command")
	nonce = pf.Uint32("nonce", 0, "Nonce of the posted message")

	SubmitVAACmd.Flags().AddFlagSet(pf)
	CompleteTransferCmd.Flags().AddFlagSet(pf)
	TransferCmd.Flags().AddFlagSet(pf)
	AttestCmd.Flags().AddFlagSet(pf)

	initChainID = InitCmd.Flags().Uint16("chainID", uint16(vaa.ChainIDOsmosis), "Wormhole chain id of this bridge")
	initGovChain = InitCmd.Flags().Uint16("govChain", uint16(vaa.GovernanceChain), "Chain of the governance emitter")
	initGovAddress = InitCmd.Flags().String("govAddress", vaa.GovernanceEmitter.String(), "Hex address of the governance emitter")
	initCapWrappedDecimals = InitCmd.Flags().Bool("capWrappedDecimals", false, "Issue wrapped tokens with at most 8 decimals")

	transferFee = TransferCmd.Flags().String("fee", "0", "Relayer fee, in local units")
	transferPayload = TransferCmd.Flags().String("payload", "", "Hex payload for the recipient contract")
	messageFee = TransferCmd.Flags().String("messageFee", "0", "Amount of the denom forwarded to the core bridge")
}

var InitCmd = &cobra.Command{
	Use:   "init",
	Short: "Instantiate the bridge in the data directory",
	Args:  cobra.NoArgs,
	RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
		gov, err := parseAddress(*initGovAddress)
		if err != nil {
			return fmt.Errorf("govAddress: %w", err)
		}
		cfg := types.Config{
			ChainID:            *initChainID,
			GovChain:           *initGovChain,
			GovAddress:         gov,
			WormholeContract:   s.host.Wormhole,
			CapWrappedDecimals: *initCapWrappedDecimals,
		}
		if err := s.keeper.Instantiate(s.host.Context(), cfg); err != nil {
			return err
		}
		return printJSON(cmd, cfg)
	}),
}

var SubmitVAACmd = &cobra.Command{
	Use:   "submit-vaa [HEX]",
	Short: "Submit a signed transfer, attestation or governance VAA",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
		data, err := hex.DecodeString(strings.TrimPrefix(args[0], "0x"))
		if err != nil {
			return fmt.Errorf("vaa: %w", err)
		}
		return s.execute(cmd, nil, func(ctx types.Context, info types.MessageInfo) (*types.Response, error) {
			return s.keeper.SubmitVAA(ctx, info, data)
		})
	}),
}

var CompleteTransferCmd = &cobra.Command{
	Use:   "complete-transfer-with-payload [HEX] [RELAYER]",
	Short: "Redeem a transfer with payload as its recipient",
	Args:  cobra.ExactArgs(2),
	RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
		data, err := hex.DecodeString(strings.TrimPrefix(args[0], "0x"))
		if err != nil {
			return fmt.Errorf("vaa: %w", err)
		}
		msg := types.MsgCompleteTransferWithPayload{Data: data, Relayer: args[1]}
		return s.execute(cmd, nil, func(ctx types.Context, info types.MessageInfo) (*types.Response, error) {
			return s.keeper.CompleteTransferWithPayload(ctx, info, msg)
		})
	}),
}

var TransferCmd = &cobra.Command{
	Use:   "transfer [DENOM] [AMOUNT] [CHAIN] [RECIPIENT]",
	Short: "Fund the sender from the devnet faucet and send bank tokens to another chain",
	Args:  cobra.ExactArgs(4),
	RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
		denom := args[0]
		amount, err := sdkmath.ParseUint(args[1])
		if err != nil {
			return fmt.Errorf("amount: %w", err)
		}
		chain, err := vaa.ChainIDFromString(args[2])
		if err != nil {
			return err
		}
		recipient, err := parseAddress(args[3])
		if err != nil {
			return fmt.Errorf("recipient: %w", err)
		}
		fee, err := sdkmath.ParseUint(*transferFee)
		if err != nil {
			return fmt.Errorf("fee: %w", err)
		}
		msgFee, err := sdkmath.ParseUint(*messageFee)
		if err != nil {
			return fmt.Errorf("messageFee: %w", err)
		}
		payload, err := hex.DecodeString(*transferPayload)
		if err != nil {
			return fmt.Errorf("payload: %w", err)
		}

		funds := types.Coins{{Denom: denom, Amount: amount.Add(msgFee)}}
		if err := s.ledger.Fund(types.NewBankAsset(denom), *sender, funds[0].Amount); err != nil {
			return err
		}
		msg := types.MsgDepositAndTransferBankTokens{
			Denom:          denom,
			Amount:         amount,
			RecipientChain: chain,
			Recipient:      recipient,
			Fee:            fee,
			Payload:        payload,
			Nonce:          *nonce,
		}
		return s.execute(cmd, funds, func(ctx types.Context, info types.MessageInfo) (*types.Response, error) {
			if len(payload) > 0 {
				return s.keeper.DepositAndTransferBankTokensWithPayload(ctx, info, msg)
			}
			return s.keeper.DepositAndTransferBankTokens(ctx, info, msg)
		})
	}),
}

var AttestCmd = &cobra.Command{
	Use:   "attest [DENOM]",
	Short: "Publish the metadata of a bank denom",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
		msg := types.MsgCreateAssetMeta{AssetInfo: types.NewBankAsset(args[0]), Nonce: *nonce}
		return s.execute(cmd, nil, func(ctx types.Context, info types.MessageInfo) (*types.Response, error) {
			return s.keeper.CreateAssetMeta(ctx, info, msg)
		})
	}),
}

var GuardiansCmd = &cobra.Command{
	Use:   "guardians",
	Short: "Print the addresses of the devnet guardian set",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		gs := devnet.NewGuardians(viper.GetUint32("guardianSetIndex"), viper.GetInt("guardians")).GuardianSet()
		return printJSON(cmd, map[string]interface{}{
			"index":  gs.Index,
			"keys":   gs.KeysAsHexStrings(),
			"quorum": gs.Quorum(),
		})
	},
}

// parseAddress reads a hex wire address, left padding shorter input.
func parseAddress(s string) (vaa.Address, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return vaa.Address{}, err
	}
	return vaa.BytesToAddress(raw)
}
