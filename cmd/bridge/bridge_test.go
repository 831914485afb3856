package bridge_test

import (
	"bytes"
	"encoding/hex"
	"io"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/ramboll-max/wormhole/cmd/bridge"
	"github.com/ramboll-max/wormhole/x/tokenbridge/types"
)

const (
	foreignBridge = "00000000000000000000000000000000000000000000000000000000000000fb"
	weth          = "000000000000000000000000c02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"
)

// run executes the bridge command line against the state in dir.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	root := &cobra.Command{Use: "tokenbridge", SilenceUsage: true, SilenceErrors: true}
	bridge.AddPersistentFlags(root.PersistentFlags())
	require.NoError(t, viper.BindPFlags(root.PersistentFlags()))
	bridge.AddCommands(root)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append(args, "--dataDir", dir, "--storeBackend", "goleveldb", "--logLevel", "error", "--denom", "uosmo:osmo:6"))
	err := root.Execute()
	return strings.TrimSpace(out.String()), err
}

func mustRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := run(t, dir, args...)
	require.NoError(t, err, strings.Join(args, " "))
	return out
}

func newBridge(t *testing.T) string {
	dir := t.TempDir()
	cfg := gjson.Parse(mustRun(t, dir, "init", "--chainID", "20"))
	require.Equal(t, int64(20), cfg.Get("chain_id").Int())
	mustRun(t, dir, "governance", "register-chain", "ethereum", foreignBridge, "--printOnly=false", "--sequence", "1")
	return dir
}

func TestInitTwice(t *testing.T) {
	dir := newBridge(t)
	_, err := run(t, dir, "init")
	require.ErrorIs(t, err, types.ErrUnauthorized)

	chains := gjson.Parse(mustRun(t, dir, "query", "chains"))
	assert.Equal(t, foreignBridge, chains.Get("ethereum").String())
}

func TestWrappedTransferAcrossRuns(t *testing.T) {
	dir := newBridge(t)

	meta := mustRun(t, dir, "emit", "asset-meta", weth, "18", "weth", "Wrapped Ether",
		"--emitterAddress", foreignBridge, "--sequence", "7")
	res := gjson.Parse(mustRun(t, dir, "submit-vaa", meta))
	assert.Equal(t, "IssueTokenMsg", res.Get("instructions.0.type").String())
	assert.Equal(t, "WETH", res.Get("instructions.0.msg.Symbol").String())

	denom := gjson.Parse(mustRun(t, dir, "query", "wrapped", "ethereum", weth)).Get("denom").String()
	require.NotEmpty(t, denom)

	// the wrapped denom is known to the ledger of a fresh run
	transfer := mustRun(t, dir, "emit", "transfer", "ethereum", weth, "100", "osmosis", "alice", "0",
		"--emitterAddress", foreignBridge, "--sequence", "8")
	res = gjson.Parse(mustRun(t, dir, "submit-vaa", transfer))
	require.Empty(t, res.Get("error").String())
	mint := res.Get("instructions.0")
	assert.Equal(t, "MintMsg", mint.Get("type").String())
	assert.Equal(t, denom, mint.Get("msg.Denom").String())
	assert.Equal(t, "1000000000000", mint.Get("msg.Amount").String())
	assert.Equal(t, "alice", mint.Get("msg.Recipient").String())

	assert.True(t, gjson.Parse(mustRun(t, dir, "query", "vaa-consumed", transfer)).Get("consumed").Bool())
	_, err := run(t, dir, "submit-vaa", transfer)
	require.ErrorIs(t, err, types.ErrVAAAlreadyExecuted)
}

func TestNativeTransferOut(t *testing.T) {
	dir := newBridge(t)

	res := gjson.Parse(mustRun(t, dir, "transfer", "uosmo", "2500000", "ethereum", "ee01",
		"--sender", "alice", "--fee", "500000", "--messageFee", "10"))
	post := res.Get("instructions.0")
	require.Equal(t, "PostMessageMsg", post.Get("type").String())

	transfer, err := types.ParseTransfer(mustHex(t, post.Get("payload").String()))
	require.NoError(t, err)
	assert.Equal(t, uint64(2_000_000), transfer.Amount.Uint64())
	assert.Equal(t, uint64(500_000), transfer.Fee.Uint64())
	assert.Equal(t, "10", post.Get("msg.Funds.0.amount").String())

	origin := gjson.Parse(mustRun(t, dir, "query", "external-id", transfer.TokenAddress.String()))
	assert.Equal(t, "uosmo", origin.Get("bank.denom").String())
	outstanding := gjson.Parse(mustRun(t, dir, "query", "outstanding", transfer.TokenAddress.String()))
	assert.Equal(t, "2500000", outstanding.Get("outstanding").String())
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	bz, err := hex.DecodeString(s)
	require.NoError(t, err)
	return bz
}
