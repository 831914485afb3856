package keeper

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ramboll-max/wormhole/pkg/devnet"
	"github.com/ramboll-max/wormhole/pkg/store"
	"github.com/ramboll-max/wormhole/pkg/vaa"
	"github.com/ramboll-max/wormhole/x/tokenbridge/keeper"
	"github.com/ramboll-max/wormhole/x/tokenbridge/types"
)

// LocalChain is the chain id test bridges are deployed on.
const LocalChain = vaa.ChainIDOsmosis

// ForeignChain is the chain test transfers come from.
const ForeignChain = vaa.ChainIDEthereum

// ForeignBridge is the token bridge emitter registered for ForeignChain.
var ForeignBridge = vaa.Address{0: 0xfb, 31: 0x02}

// Fixture is a token bridge keeper on a devnet host.
type Fixture struct {
	Keeper    *keeper.Keeper
	Host      *devnet.Host
	Ledger    *devnet.Ledger
	Store     *store.DBStore
	Clock     *clock.Mock
	Guardians *devnet.Guardians
	Config    types.Config

	Governance *devnet.Emitter
	Foreign    *devnet.Emitter
}

// Option adjusts the configuration a test bridge is instantiated with.
type Option func(cfg *types.Config)

func WithChain(chain vaa.ChainID) Option {
	return func(cfg *types.Config) { cfg.ChainID = uint16(chain) }
}

func WithCapWrappedDecimals() Option {
	return func(cfg *types.Config) { cfg.CapWrappedDecimals = true }
}

// TokenBridgeKeeper returns an instantiated keeper with no registered chains.
func TokenBridgeKeeper(t testing.TB, opts ...Option) *Fixture {
	t.Helper()

	clk := clock.NewMock()
	clk.Set(time.Unix(1_700_000_000, 0))

	guardians := devnet.NewGuardians(0, 4)
	logger := zaptest.NewLogger(t)
	kv := store.NewMemStore()
	ledger := devnet.NewLedger()

	k := keeper.NewKeeper(
		types.JSONCodec{},
		keeper.NewGuardianVerifier(vaa.NewGuardianSets(guardians.GuardianSet())),
		devnet.PaddedAddressCodec{},
		logger,
	)
	host := devnet.NewHost(k, kv, ledger, clk, logger)

	cfg := types.DefaultConfig(LocalChain, host.Wormhole)
	for _, opt := range opts {
		opt(&cfg)
	}
	require.NoError(t, k.Instantiate(host.Context(), cfg))

	return &Fixture{
		Keeper:     k,
		Host:       host,
		Ledger:     ledger,
		Store:      kv,
		Clock:      clk,
		Guardians:  guardians,
		Config:     cfg,
		Governance: devnet.GovernanceEmitter(clk),
		Foreign:    devnet.NewEmitter(ForeignChain, ForeignBridge, clk),
	}
}

// Execute runs op on the host on behalf of sender.
func (f *Fixture) Execute(sender string, funds types.Coins, op devnet.Operation) (*devnet.Result, error) {
	return f.Host.Execute(sender, funds, op)
}

// Ctx returns a context over the committed state.
func (f *Fixture) Ctx() types.Context {
	return f.Host.Context()
}

// SignedGovernance returns a signed token bridge governance VAA.
func (f *Fixture) SignedGovernance(action types.GovernanceAction, chain vaa.ChainID, body []byte) []byte {
	packet := types.NewGovernancePacket(action, chain, body)
	return f.Guardians.Sign(f.Governance.Emit(packet.Serialize(), 0))
}

// Signed returns msg emitted by the foreign bridge and signed by the guardians.
func (f *Fixture) Signed(msg types.Message) []byte {
	return f.Guardians.Sign(f.Foreign.Emit(msg.Serialize(), 0))
}

// RegisterForeignChain registers ForeignBridge through governance.
func (f *Fixture) RegisterForeignChain(t testing.TB) {
	t.Helper()
	data := f.SignedGovernance(types.ActionRegisterChain, vaa.ChainIDUnset,
		types.BodyRegisterChain{ChainID: ForeignChain, EmitterAddress: ForeignBridge}.Serialize())
	_, err := f.Host.Execute("relayer", nil, func(ctx types.Context, _ types.MessageInfo) (*types.Response, error) {
		return f.Keeper.ExecuteGovernanceVAA(ctx, data)
	})
	require.NoError(t, err)
}

// AttestForeign creates the wrapped representation of a foreign token and
// returns its denom.
func (f *Fixture) AttestForeign(t testing.TB, meta *types.AssetMeta) string {
	t.Helper()
	data := f.Signed(meta)
	_, err := f.Host.Execute("relayer", nil, func(ctx types.Context, info types.MessageInfo) (*types.Response, error) {
		return f.Keeper.SubmitVAA(ctx, info, data)
	})
	require.NoError(t, err)

	denom, found := f.Keeper.GetWrappedDenom(f.Ctx(), meta.TokenChain, meta.TokenAddress)
	require.True(t, found)
	return denom
}
