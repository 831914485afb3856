package bridge

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ramboll-max/wormhole/pkg/vaa"
	"github.com/ramboll-max/wormhole/x/tokenbridge/types"
)

func init() {
	QueryCmd.AddCommand(
		queryConfigCmd,
		queryChainsCmd,
		queryVAAConsumedCmd,
		queryTransferInfoCmd,
		queryWrappedCmd,
		queryDenomCmd,
		queryExternalIDCmd,
		queryOutstandingCmd,
	)
}

var QueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Read the bridge state",
}

var queryConfigCmd = &cobra.Command{
	Use:  "config",
	Args: cobra.NoArgs,
	RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
		cfg, found := s.keeper.GetConfig(s.host.Context())
		if !found {
			return types.ErrNotConfigured
		}
		return printJSON(cmd, cfg)
	}),
}

var queryChainsCmd = &cobra.Command{
	Use:   "chains",
	Short: "List the registered foreign token bridges",
	Args:  cobra.NoArgs,
	RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
		list, err := s.keeper.QueryAllChainRegistrations(s.host.Context())
		if err != nil {
			return err
		}
		out := map[string]string{}
		for _, reg := range list {
			out[vaa.ChainID(reg.ChainID).String()] = vaa.Address(reg.EmitterAddress).String()
		}
		return printJSON(cmd, out)
	}),
}

func decodeVAA(arg string) ([]byte, error) {
	data, err := hex.DecodeString(strings.TrimPrefix(arg, "0x"))
	if err != nil {
		return nil, fmt.Errorf("vaa: %w", err)
	}
	return data, nil
}

var queryVAAConsumedCmd = &cobra.Command{
	Use:   "vaa-consumed [HEX]",
	Short: "Tell whether a VAA was already redeemed",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
		data, err := decodeVAA(args[0])
		if err != nil {
			return err
		}
		v, err := vaa.Unmarshal(data)
		if err != nil {
			return err
		}
		consumed, err := s.keeper.QueryVAAConsumed(s.host.Context(), v.HexDigest())
		if err != nil {
			return err
		}
		return printJSON(cmd, map[string]interface{}{"digest": v.HexDigest(), "consumed": consumed})
	}),
}

var queryTransferInfoCmd = &cobra.Command{
	Use:  "transfer-info [HEX]",
	Args: cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
		data, err := decodeVAA(args[0])
		if err != nil {
			return err
		}
		info, err := s.keeper.TransferInfo(s.host.Context(), data)
		if err != nil {
			return err
		}
		return printJSON(cmd, info)
	}),
}

var queryWrappedCmd = &cobra.Command{
	Use:   "wrapped [CHAIN] [ADDRESS]",
	Short: "Print the denom wrapping a foreign token",
	Args:  cobra.ExactArgs(2),
	RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
		chain, err := vaa.ChainIDFromString(args[0])
		if err != nil {
			return err
		}
		addr, err := parseAddress(args[1])
		if err != nil {
			return err
		}
		denom, err := s.keeper.WrappedRegistry(s.host.Context(), chain, addr)
		if err != nil {
			return err
		}
		return printJSON(cmd, map[string]string{"denom": denom})
	}),
}

var queryDenomCmd = &cobra.Command{
	Use:   "denom [DENOM]",
	Short: "Print the origin of a denom",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
		info, err := s.keeper.DenomWrappedAssetInfo(s.host.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, info)
	}),
}

var queryExternalIDCmd = &cobra.Command{
	Use:   "external-id [HEX]",
	Short: "Resolve a 32 byte wire token address",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
		addr, err := parseAddress(args[0])
		if err != nil {
			return err
		}
		id, err := s.keeper.ExternalID(s.host.Context(), types.ExternalTokenID(addr))
		if err != nil {
			return err
		}
		bz, err := types.MarshalTokenIDJSON(id)
		if err != nil {
			return err
		}
		return printJSON(cmd, json.RawMessage(bz))
	}),
}

var queryOutstandingCmd = &cobra.Command{
	Use:   "outstanding [HEX]",
	Short: "Print the amount of a native token held for other chains, in wire units",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
		addr, err := parseAddress(args[0])
		if err != nil {
			return err
		}
		amount := s.keeper.OutstandingNative(s.host.Context(), types.ExternalTokenID(addr))
		return printJSON(cmd, map[string]string{"outstanding": amount.String()})
	}),
}
