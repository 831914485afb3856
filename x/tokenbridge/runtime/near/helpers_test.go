package near_test

import (
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap/zaptest"

	"github.com/ramboll-max/wormhole/pkg/devnet"
	"github.com/ramboll-max/wormhole/pkg/store"
	"github.com/ramboll-max/wormhole/pkg/vaa"
	"github.com/ramboll-max/wormhole/x/tokenbridge/keeper"
	"github.com/ramboll-max/wormhole/x/tokenbridge/runtime/near"
	"github.com/ramboll-max/wormhole/x/tokenbridge/types"
)

const (
	portalAccount = "portal.near"
	coreAccount   = "wormhole.near"
	ownerAccount  = "owner.near"
)

var (
	foreignBridge = vaa.Address{0: 0xfb, 31: 0x02}
	ethRecipient  = vaa.Address{12: 0xee, 31: 0x01}
)

func repeat(b byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}

func keyFromSeed(b byte) near.PublicKey {
	return near.PublicKey(ed25519.NewKeyFromSeed(repeat(b, ed25519.SeedSize)).Public().(ed25519.PublicKey))
}

// fakeViewer answers ft_metadata and ft_balance_of from maps.
type fakeViewer struct {
	accounts map[string]sdkmath.Uint
	tokens   map[string]types.TokenInfo
	balances map[string]uint64 // token/account
}

var _ near.Viewer = (*fakeViewer)(nil)

func newFakeViewer() *fakeViewer {
	return &fakeViewer{
		accounts: map[string]sdkmath.Uint{},
		tokens:   map[string]types.TokenInfo{},
		balances: map[string]uint64{},
	}
}

func (v *fakeViewer) View(account, method string, args []byte) ([]byte, error) {
	info, ok := v.tokens[account]
	if !ok {
		return nil, fmt.Errorf("account %s does not exist", account)
	}
	switch method {
	case "ft_metadata":
		return json.Marshal(map[string]interface{}{
			"spec": "ft-1.0.0", "name": info.Name, "symbol": info.Symbol, "decimals": info.Decimals,
		})
	case "ft_balance_of":
		holder := gjson.GetBytes(args, "account_id").String()
		return []byte(fmt.Sprintf(`"%d"`, v.balances[account+"/"+holder])), nil
	}
	return nil, fmt.Errorf("%s has no method %s", account, method)
}

func (v *fakeViewer) AccountBalance(account string) (sdkmath.Uint, error) {
	if b, ok := v.accounts[account]; ok {
		return b, nil
	}
	return sdkmath.ZeroUint(), nil
}

// chain drives a portal the way the NEAR runtime would.
type chain struct {
	t      *testing.T
	portal *near.Portal
	kv     store.KVStore
	viewer *fakeViewer
	owner  near.PublicKey
	height uint64
	clk    *clock.Mock

	guardians *devnet.Guardians
	gov       *devnet.Emitter
	foreign   *devnet.Emitter
}

func newUnbootedChain(t *testing.T) *chain {
	t.Helper()
	clk := clock.NewMock()
	clk.Set(time.Unix(1_700_000_000, 0))
	guardians := devnet.NewGuardians(0, 4)
	logger := zaptest.NewLogger(t)

	owner := keyFromSeed(0x01)
	k := near.NewKeeper(keeper.NewGuardianVerifier(vaa.NewGuardianSets(guardians.GuardianSet())), logger)
	return &chain{
		t:         t,
		portal:    near.NewPortal(k, near.Config{Owner: owner}, logger),
		kv:        store.NewMemStore(),
		viewer:    newFakeViewer(),
		owner:     owner,
		clk:       clk,
		guardians: guardians,
		gov:       devnet.GovernanceEmitter(clk),
		foreign:   devnet.NewEmitter(vaa.ChainIDEthereum, foreignBridge, clk),
	}
}

func newChain(t *testing.T) *chain {
	c := newUnbootedChain(t)
	_, err := c.boot(c.owner)
	require.NoError(t, err)
	return c
}

func (c *chain) boot(key near.PublicKey) (*near.Outcome, error) {
	env := c.env(ownerAccount, ownerAccount, sdkmath.ZeroUint())
	env.SignerAccountPK = key
	return c.portal.Call(env, c.kv, c.viewer, "boot_portal", mustJSON(c.t, map[string]string{"core": coreAccount}))
}

func (c *chain) env(signer, predecessor string, deposit sdkmath.Uint) near.Env {
	c.height++
	return near.Env{
		BlockHeight:          c.height,
		BlockTimestamp:       uint64(c.clk.Now().UnixNano()),
		CurrentAccountID:     portalAccount,
		SignerAccountID:      signer,
		PredecessorAccountID: predecessor,
		AttachedDeposit:      deposit,
	}
}

// call is a transaction of signer calling the portal directly.
func (c *chain) call(signer string, deposit sdkmath.Uint, method string, args interface{}) (*near.Outcome, error) {
	return c.portal.Call(c.env(signer, signer, deposit), c.kv, c.viewer, method, mustJSON(c.t, args))
}

// callback resumes the portal with the result of promise.
func (c *chain) callback(signer string, promise *near.Promise, result near.PromiseResult) (*near.Outcome, error) {
	c.t.Helper()
	cb := promise.Last()
	require.Equal(c.t, portalAccount, cb.Receiver)
	fc := functionCall(c.t, cb, 0)
	env := c.env(signer, portalAccount, sdkmath.ZeroUint())
	env.PromiseResults = []near.PromiseResult{result}
	return c.portal.Call(env, c.kv, c.viewer, fc.Method, fc.Args)
}

func (c *chain) view(method string, args interface{}) gjson.Result {
	c.t.Helper()
	res, err := c.portal.View(c.env("", "", sdkmath.ZeroUint()), c.kv, c.viewer, method, mustJSON(c.t, args))
	require.NoError(c.t, err)
	return gjson.ParseBytes(res)
}

func (c *chain) submit(signer string, data []byte) (*near.Outcome, error) {
	return c.call(signer, sdkmath.ZeroUint(), "submit_vaa", map[string]string{"vaa": hex.EncodeToString(data)})
}

func (c *chain) registerForeign() {
	packet := types.NewGovernancePacket(types.ActionRegisterChain, vaa.ChainIDUnset,
		types.BodyRegisterChain{ChainID: vaa.ChainIDEthereum, EmitterAddress: foreignBridge}.Serialize())
	_, err := c.submit("relayer.near", c.guardians.Sign(c.gov.Emit(packet.Serialize(), 0)))
	require.NoError(c.t, err)
}

func mustJSON(t testing.TB, v interface{}) []byte {
	t.Helper()
	if v == nil {
		return nil
	}
	bz, err := json.Marshal(v)
	require.NoError(t, err)
	return bz
}

func functionCall(t testing.TB, p *near.Promise, i int) near.FunctionCall {
	t.Helper()
	require.Greater(t, len(p.Actions), i)
	fc, ok := p.Actions[i].(near.FunctionCall)
	require.True(t, ok, "action %d is %T", i, p.Actions[i])
	return fc
}

func hasLog(logs []string, want string) bool {
	for _, l := range logs {
		if l == want {
			return true
		}
	}
	return false
}
