package cosmwasm_test

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	wasmvmtypes "github.com/CosmWasm/wasmvm/types"
	"github.com/benbjohnson/clock"
	dbm "github.com/cometbft/cometbft-db"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap/zaptest"

	"github.com/ramboll-max/wormhole/pkg/devnet"
	"github.com/ramboll-max/wormhole/pkg/vaa"
	"github.com/ramboll-max/wormhole/x/tokenbridge/keeper"
	"github.com/ramboll-max/wormhole/x/tokenbridge/runtime/cosmwasm"
	"github.com/ramboll-max/wormhole/x/tokenbridge/types"
)

const prefix = "osmo"

var (
	codec = cosmwasm.Bech32Codec{Prefix: prefix}

	foreignBridge = vaa.Address{0: 0xfb, 31: 0x02}
	ethRecipient  = vaa.Address{12: 0xee, 31: 0x01}
)

// bech32 returns the address of raw, which is 20 or 32 bytes.
func bech32(t testing.TB, raw ...byte) string {
	t.Helper()
	addr, err := vaa.BytesToAddress(raw)
	require.NoError(t, err)
	human, err := codec.Humanize(types.Context{}, addr)
	require.NoError(t, err)
	return human
}

func repeat(b byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}

// memKV is the contract storage of the fake VM.
type memKV struct {
	db *dbm.MemDB
}

var _ wasmvmtypes.KVStore = memKV{}

func (m memKV) Get(key []byte) []byte {
	v, err := m.db.Get(key)
	if err != nil {
		panic(err)
	}
	return v
}

func (m memKV) Set(key, value []byte) {
	if err := m.db.Set(key, value); err != nil {
		panic(err)
	}
}

func (m memKV) Delete(key []byte) {
	if err := m.db.Delete(key); err != nil {
		panic(err)
	}
}

func (m memKV) Iterator(start, end []byte) wasmvmtypes.Iterator {
	it, err := m.db.Iterator(start, end)
	if err != nil {
		panic(err)
	}
	return it
}

func (m memKV) ReverseIterator(start, end []byte) wasmvmtypes.Iterator {
	it, err := m.db.ReverseIterator(start, end)
	if err != nil {
		panic(err)
	}
	return it
}

// fakeQuerier answers bank and cw20 queries from maps.
type fakeQuerier struct {
	bank     map[string]uint64 // address/denom
	cw20     map[string]uint64 // contract/address
	tokens   map[string]types.TokenInfo
	metadata map[string]string
}

var _ wasmvmtypes.Querier = (*fakeQuerier)(nil)

func newFakeQuerier() *fakeQuerier {
	return &fakeQuerier{
		bank:     map[string]uint64{},
		cw20:     map[string]uint64{},
		tokens:   map[string]types.TokenInfo{},
		metadata: map[string]string{},
	}
}

func (q *fakeQuerier) Query(req wasmvmtypes.QueryRequest, _ uint64) ([]byte, error) {
	switch {
	case req.Bank != nil && req.Bank.Balance != nil:
		b := req.Bank.Balance
		return []byte(fmt.Sprintf(`{"amount":{"denom":%q,"amount":"%d"}}`, b.Denom, q.bank[b.Address+"/"+b.Denom])), nil
	case req.Bank != nil && req.Bank.DenomMetadata != nil:
		md, ok := q.metadata[req.Bank.DenomMetadata.Denom]
		if !ok {
			return nil, wasmvmtypes.InvalidRequest{Err: "denom metadata not found"}
		}
		return []byte(md), nil
	case req.Wasm != nil && req.Wasm.Smart != nil:
		contract := req.Wasm.Smart.ContractAddr
		msg := gjson.ParseBytes(req.Wasm.Smart.Msg)
		if msg.Get("token_info").Exists() {
			info, ok := q.tokens[contract]
			if !ok {
				return nil, wasmvmtypes.InvalidRequest{Err: "no such contract"}
			}
			return json.Marshal(map[string]interface{}{
				"name": info.Name, "symbol": info.Symbol, "decimals": info.Decimals, "total_supply": "0",
			})
		}
		if addr := msg.Get("balance.address"); addr.Exists() {
			return []byte(fmt.Sprintf(`{"balance":"%d"}`, q.cw20[contract+"/"+addr.String()])), nil
		}
	}
	return nil, wasmvmtypes.UnsupportedRequest{Kind: "fake querier"}
}

func (q *fakeQuerier) GasConsumed() uint64 { return 0 }

// chain drives a bridge contract the way wasmd would.
type chain struct {
	t        *testing.T
	contract *cosmwasm.Contract
	kv       memKV
	querier  *fakeQuerier
	env      wasmvmtypes.Env

	guardians *devnet.Guardians
	gov       *devnet.Emitter
	foreign   *devnet.Emitter

	bridge   string
	wormhole string
}

func newChain(t *testing.T) *chain {
	t.Helper()
	clk := clock.NewMock()
	clk.Set(time.Unix(1_700_000_000, 0))
	guardians := devnet.NewGuardians(0, 4)
	logger := zaptest.NewLogger(t)

	k := cosmwasm.NewKeeper(prefix, keeper.NewGuardianVerifier(vaa.NewGuardianSets(guardians.GuardianSet())), logger)
	c := &chain{
		t:         t,
		contract:  cosmwasm.NewContract(k, logger),
		kv:        memKV{db: dbm.NewMemDB()},
		querier:   newFakeQuerier(),
		guardians: guardians,
		gov:       devnet.GovernanceEmitter(clk),
		foreign:   devnet.NewEmitter(vaa.ChainIDEthereum, foreignBridge, clk),
		bridge:    bech32(t, repeat(0xb1, 32)...),
		wormhole:  bech32(t, repeat(0xc0, 32)...),
	}
	c.env = wasmvmtypes.Env{
		Block: wasmvmtypes.BlockInfo{
			Height:  1,
			Time:    uint64(clk.Now().UnixNano()),
			ChainID: "osmosis-1",
		},
		Contract: wasmvmtypes.ContractInfo{Address: c.bridge},
	}

	msg, err := json.Marshal(cosmwasm.InstantiateMsg{
		ChainID:          uint16(vaa.ChainIDOsmosis),
		GovChain:         uint16(vaa.GovernanceChain),
		GovAddress:       vaa.GovernanceEmitter[:],
		WormholeContract: c.wormhole,
	})
	require.NoError(t, err)
	_, err = c.contract.Instantiate(c.env, wasmvmtypes.MessageInfo{Sender: bech32(t, repeat(0xad, 20)...)}, c.kv, c.querier, msg)
	require.NoError(t, err)
	return c
}

func (c *chain) execute(sender string, funds wasmvmtypes.Coins, msg interface{}) (*wasmvmtypes.Response, error) {
	bz, err := json.Marshal(msg)
	require.NoError(c.t, err)
	c.env.Block.Height++
	return c.contract.Execute(c.env, wasmvmtypes.MessageInfo{Sender: sender, Funds: funds}, c.kv, c.querier, bz)
}

func (c *chain) reply(id uint64, result wasmvmtypes.SubMsgResult) (*wasmvmtypes.Response, error) {
	return c.contract.Reply(c.env, c.kv, c.querier, wasmvmtypes.Reply{ID: id, Result: result})
}

func (c *chain) query(msg interface{}) gjson.Result {
	bz, err := json.Marshal(msg)
	require.NoError(c.t, err)
	res, err := c.contract.Query(c.env, c.kv, c.querier, bz)
	require.NoError(c.t, err)
	return gjson.ParseBytes(res)
}

func (c *chain) submit(sender string, data []byte) (*wasmvmtypes.Response, error) {
	return c.execute(sender, nil, cosmwasm.ExecuteMsg{SubmitVaa: &cosmwasm.SubmitVaa{Data: data}})
}

func (c *chain) governance(action types.GovernanceAction, body []byte) []byte {
	packet := types.NewGovernancePacket(action, vaa.ChainIDUnset, body)
	return c.guardians.Sign(c.gov.Emit(packet.Serialize(), 0))
}

func (c *chain) registerForeign() {
	_, err := c.submit(bech32(c.t, repeat(0x01, 20)...), c.governance(types.ActionRegisterChain,
		types.BodyRegisterChain{ChainID: vaa.ChainIDEthereum, EmitterAddress: foreignBridge}.Serialize()))
	require.NoError(c.t, err)
}

// customMsg decodes the token factory message of msg.
func customMsg(t testing.TB, msg wasmvmtypes.CosmosMsg) gjson.Result {
	t.Helper()
	require.NotNil(t, msg.Custom)
	return gjson.ParseBytes(msg.Custom).Get("token")
}

// executeMsg decodes the contract message of a wasm execute.
func executeMsg(t testing.TB, msg wasmvmtypes.CosmosMsg) (string, gjson.Result) {
	t.Helper()
	require.NotNil(t, msg.Wasm)
	require.NotNil(t, msg.Wasm.Execute)
	return msg.Wasm.Execute.ContractAddr, gjson.ParseBytes(msg.Wasm.Execute.Msg)
}

func attribute(attrs []wasmvmtypes.EventAttribute, key string) (string, bool) {
	for _, a := range attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}
