// Package bridge holds the commands driving a token bridge on a devnet host.
// Bridge state persists in the data directory; the token ledger is rebuilt
// on every run from the configured denoms and the registered wrapped assets.
package bridge

import (
	"encoding/json"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ramboll-max/wormhole/pkg/devnet"
	"github.com/ramboll-max/wormhole/pkg/store"
	"github.com/ramboll-max/wormhole/pkg/vaa"
	"github.com/ramboll-max/wormhole/x/tokenbridge/keeper"
	"github.com/ramboll-max/wormhole/x/tokenbridge/types"
)

const storeName = "tokenbridge"

// AddPersistentFlags registers the flags shared by every bridge command.
func AddPersistentFlags(pf *pflag.FlagSet) {
	pf.String("logLevel", "info", "Logging level (debug, info, warn, error, dpanic, panic, fatal)")
	pf.String("dataDir", ".tokenbridge", "Directory holding the bridge state")
	pf.String("storeBackend", store.BackendBadger, "State backend (badger, goleveldb, memdb)")
	pf.String("contract", devnet.DefaultContract, "Address of the bridge contract")
	pf.String("wormhole", devnet.DefaultWormhole, "Address of the core bridge")
	pf.Uint32("guardianSetIndex", 0, "Index of the devnet guardian set")
	pf.Int("guardians", 1, "Number of devnet guardians")
	pf.StringSlice("denom", nil, "Bank denom known to the ledger as base:display:decimals (repeatable)")
}

func AddCommands(root *cobra.Command) {
	root.AddCommand(InitCmd, SubmitVAACmd, CompleteTransferCmd, TransferCmd, AttestCmd, GuardiansCmd)
	root.AddCommand(GovernanceCmd, EmitCmd, QueryCmd)
}

// session is an open bridge on a devnet host.
type session struct {
	host      *devnet.Host
	keeper    *keeper.Keeper
	ledger    *devnet.Ledger
	guardians *devnet.Guardians
	kv        store.KVStore
	logger    *zap.Logger
}

func open(cmd *cobra.Command) (*session, error) {
	logger, err := newLogger(viper.GetString("logLevel"), cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	kv, err := store.Open(viper.GetString("storeBackend"), storeName, viper.GetString("dataDir"))
	if err != nil {
		return nil, fmt.Errorf("open %s store in %s: %w", viper.GetString("storeBackend"), viper.GetString("dataDir"), err)
	}

	guardians := devnet.NewGuardians(viper.GetUint32("guardianSetIndex"), viper.GetInt("guardians"))
	k := keeper.NewKeeper(
		types.JSONCodec{},
		keeper.NewGuardianVerifier(vaa.NewGuardianSets(guardians.GuardianSet())),
		devnet.PaddedAddressCodec{},
		logger,
	)
	ledger := devnet.NewLedger()
	host := devnet.NewHost(k, kv, ledger, clock.New(), logger)
	host.Contract = viper.GetString("contract")
	host.Wormhole = viper.GetString("wormhole")

	s := &session{host: host, keeper: k, ledger: ledger, guardians: guardians, kv: kv, logger: logger}
	for _, d := range viper.GetStringSlice("denom") {
		base, display, decimals, err := parseDenom(d)
		if err != nil {
			s.Close()
			return nil, err
		}
		ledger.AddDenom(base, display, decimals)
	}
	// wrapped denoms issued in earlier runs
	for _, w := range k.GetAllWrappedAssets(host.Context()) {
		ledger.AddDenom(w.Denom, path.Base(w.Denom), uint32(w.Decimals))
	}
	return s, nil
}

func (s *session) Close() {
	if c, ok := s.kv.(store.Closer); ok {
		if err := c.Close(); err != nil {
			s.logger.Error("failed to close store", zap.Error(err))
		}
	}
	_ = s.logger.Sync()
}

func parseDenom(s string) (base, display string, decimals uint32, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return "", "", 0, fmt.Errorf("denom %q is not base:display:decimals", s)
	}
	d, err := strconv.ParseUint(parts[2], 10, 32)
	if err != nil {
		return "", "", 0, fmt.Errorf("denom %q: %w", s, err)
	}
	return parts[0], parts[1], uint32(d), nil
}

// withSession opens the bridge around run.
func withSession(run func(cmd *cobra.Command, s *session, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := open(cmd)
		if err != nil {
			return err
		}
		defer s.Close()
		return run(cmd, s, args)
	}
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	bz, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(bz))
	return err
}
