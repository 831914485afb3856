package near_test

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/ramboll-max/wormhole/pkg/vaa"
	"github.com/ramboll-max/wormhole/x/tokenbridge/runtime/near"
	"github.com/ramboll-max/wormhole/x/tokenbridge/types"
)

var oneNear = sdkmath.NewUintFromString("1000000000000000000000000")

func TestBootPortal(t *testing.T) {
	c := newUnbootedChain(t)

	_, err := c.boot(keyFromSeed(0x02))
	require.ErrorIs(t, err, types.ErrUnauthorized)

	out, err := c.boot(c.owner)
	require.NoError(t, err)
	assert.True(t, hasLog(out.Logs, "portal emitter: "+near.AccountHash(portalAccount).String()))

	_, err = c.boot(c.owner)
	require.ErrorIs(t, err, types.ErrUnauthorized)

	hash := c.view("account_hash", nil).Array()
	require.Len(t, hash, 2)
	assert.Equal(t, portalAccount, hash[0].String())
	assert.Equal(t, near.AccountHash(portalAccount).String(), hash[1].String())
}

func TestUnknownMethod(t *testing.T) {
	c := newChain(t)
	_, err := c.call("alice.near", sdkmath.ZeroUint(), "steal", nil)
	require.ErrorIs(t, err, types.ErrInvalidMessage)

	_, err = c.call("alice.near", sdkmath.ZeroUint(), "submit_vaa", map[string]string{"vaa": "zz"})
	require.ErrorIs(t, err, types.ErrInvalidMessage)
}

func TestRegisterAccount(t *testing.T) {
	c := newChain(t)
	out, err := c.call("alice.near", sdkmath.ZeroUint(), "register_account", nil)
	require.NoError(t, err)

	var hash string
	require.NoError(t, json.Unmarshal(out.Return, &hash))
	assert.Equal(t, near.AccountHash("alice.near").String(), hash)
}

// decodePublished decodes the transfer of a publish_message call.
func decodePublished(t *testing.T, fc near.FunctionCall) *types.Transfer {
	t.Helper()
	require.Equal(t, "publish_message", fc.Method)
	payload, err := hex.DecodeString(gjson.GetBytes(fc.Args, "data").String())
	require.NoError(t, err)
	transfer, err := types.ParseTransfer(payload)
	require.NoError(t, err)
	return transfer
}

func TestSendTransferNear(t *testing.T) {
	c := newChain(t)
	deposit := oneNear.MulUint64(2).AddUint64(1_000)

	out, err := c.call("alice.near", deposit, "send_transfer_near", map[string]interface{}{
		"receiver":    ethRecipient.String(),
		"chain":       uint16(vaa.ChainIDEthereum),
		"fee":         "10000000000000000",
		"message_fee": "1000",
	})
	require.NoError(t, err)
	require.Len(t, out.Promises, 1)

	publish := out.Promises[0]
	assert.Equal(t, coreAccount, publish.Receiver)
	fc := functionCall(t, publish, 0)
	assert.Equal(t, uint64(1_000), fc.Deposit.Uint64())

	transfer := decodePublished(t, fc)
	// 2 NEAR is 2e8 on the wire, the fee of 1e16 yocto is 1
	assert.Equal(t, uint64(199_999_999), transfer.Amount.Uint64())
	assert.Equal(t, uint64(1), transfer.Fee.Uint64())
	assert.Equal(t, vaa.ChainIDNear, transfer.TokenChain)
	assert.Equal(t, ethRecipient, transfer.Recipient)

	emitter := publish.Then
	require.NotNil(t, emitter)
	cb := functionCall(t, emitter, 0)
	assert.Equal(t, near.MethodEmitterCallback, cb.Method)
	assert.Equal(t, "alice.near", gjson.GetBytes(cb.Args, "refund_to").String())
	assert.Equal(t, "1000", gjson.GetBytes(cb.Args, "deposit").String())

	ext := c.view("external_id", map[string]string{"id": transfer.TokenAddress.String()})
	assert.Equal(t, near.NativeDenom, ext.Get("bank.denom").String())

	// the message fee alone is not a transfer
	_, err = c.call("alice.near", sdkmath.NewUint(1_000), "send_transfer_near", map[string]interface{}{
		"receiver":    ethRecipient.String(),
		"chain":       uint16(vaa.ChainIDEthereum),
		"message_fee": "1000",
	})
	require.ErrorIs(t, err, types.ErrMissingFunds)
}

func TestEmitterCallback(t *testing.T) {
	c := newChain(t)
	out, err := c.call("alice.near", oneNear.AddUint64(500), "send_transfer_near", map[string]interface{}{
		"receiver":    ethRecipient.String(),
		"chain":       uint16(vaa.ChainIDEthereum),
		"message_fee": "500",
	})
	require.NoError(t, err)
	publish := out.Promises[0]

	ok, err := c.callback("alice.near", publish, near.PromiseResult{Successful: true, Value: []byte("7")})
	require.NoError(t, err)
	assert.Equal(t, "7", string(ok.Return))
	assert.Empty(t, ok.Promises)

	failed, err := c.callback("alice.near", publish, near.PromiseResult{})
	require.NoError(t, err)
	assert.True(t, hasLog(failed.Logs, near.LogAborted+": EmitFail"))
	require.Len(t, failed.Promises, 1)
	refund := failed.Promises[0]
	assert.Equal(t, "alice.near", refund.Receiver)
	require.Len(t, refund.Actions, 1)
	assert.Equal(t, uint64(500), refund.Actions[0].(near.Transfer).Deposit.Uint64())

	// only the portal may call its callbacks
	fc := functionCall(t, publish.Then, 0)
	env := c.env("mallory.near", "mallory.near", sdkmath.ZeroUint())
	env.PromiseResults = []near.PromiseResult{{}}
	_, err = c.portal.Call(env, c.kv, c.viewer, fc.Method, fc.Args)
	require.ErrorIs(t, err, types.ErrUnauthorized)
}

func attestWrapped(t *testing.T, c *chain, token vaa.Address, nonce uint32) *near.Outcome {
	t.Helper()
	out, err := c.submit("relayer.near", c.guardians.Sign(c.foreign.Emit((&types.AssetMeta{
		TokenAddress: token,
		TokenChain:   vaa.ChainIDEthereum,
		Decimals:     18,
		Symbol:       "weth",
		Name:         "Wrapped Ether",
	}).Serialize(), nonce)))
	require.NoError(t, err)
	return out
}

func TestWrappedAssetLifecycle(t *testing.T) {
	c := newChain(t)
	c.registerForeign()
	token := vaa.Address{12: 0xc0, 31: 0x2a}

	out := attestWrapped(t, c, token, 0)
	require.Len(t, out.Promises, 1)
	issue := out.Promises[0]
	account := near.WrappedAccount(portalAccount, types.GetWrappedCoinIdentifier(vaa.ChainIDEthereum, token))
	assert.Equal(t, account, issue.Receiver)
	require.Len(t, issue.Actions, 3)
	assert.IsType(t, near.CreateAccount{}, issue.Actions[0])
	assert.IsType(t, near.Transfer{}, issue.Actions[1])
	init := functionCall(t, issue, 2)
	assert.Equal(t, "new", init.Method)
	assert.Equal(t, "WETH", gjson.GetBytes(init.Args, "metadata.symbol").String())
	assert.Equal(t, uint64(18), gjson.GetBytes(init.Args, "metadata.decimals").Uint())

	resolve := functionCall(t, issue.Then, 0)
	assert.Equal(t, near.MethodResolveSub, resolve.Method)
	assert.Equal(t, account, gjson.GetBytes(resolve.Args, "denom").String())

	_, err := c.callback("relayer.near", issue, near.PromiseResult{Successful: true})
	require.NoError(t, err)

	registered := c.view("wrapped_registry", map[string]interface{}{"chain": uint16(vaa.ChainIDEthereum), "address": token.String()})
	assert.Equal(t, account, registered.String())
	original := c.view("get_original_asset", map[string]string{"token": account}).Array()
	require.Len(t, original, 2)
	assert.Equal(t, uint64(vaa.ChainIDEthereum), original[0].Uint())
	assert.Equal(t, token.String(), original[1].String())

	// inbound to an account that never registered its hash
	transfer := func(nonce uint32) []byte {
		return c.guardians.Sign(c.foreign.Emit((&types.Transfer{
			Amount:         uint256.NewInt(1_000),
			TokenAddress:   token,
			TokenChain:     vaa.ChainIDEthereum,
			Recipient:      near.AccountHash("alice.near"),
			RecipientChain: vaa.ChainIDNear,
			Fee:            uint256.NewInt(10),
		}).Serialize(), nonce))
	}
	_, err = c.submit("relayer.near", transfer(1))
	require.ErrorIs(t, err, types.ErrInvalidAddress)

	_, err = c.call("alice.near", sdkmath.ZeroUint(), "register_account", nil)
	require.NoError(t, err)
	vaaBytes := transfer(2)
	out, err = c.submit("relayer.near", vaaBytes)
	require.NoError(t, err)

	require.Len(t, out.Promises, 2)
	mint := functionCall(t, out.Promises[0], 0)
	assert.Equal(t, account, out.Promises[0].Receiver)
	assert.Equal(t, "vaa_transfer", mint.Method)
	assert.Equal(t, "alice.near", gjson.GetBytes(mint.Args, "receiver_id").String())
	assert.Equal(t, "10000000000000", gjson.GetBytes(mint.Args, "amount").String())
	fee := functionCall(t, out.Promises[1], 0)
	assert.Equal(t, "relayer.near", gjson.GetBytes(fee.Args, "receiver_id").String())
	assert.Equal(t, "100000000000", gjson.GetBytes(fee.Args, "amount").String())

	assert.True(t, c.view("is_transfer_completed", map[string]string{"vaa": hex.EncodeToString(vaaBytes)}).Bool())

	// back out through ft_transfer_call on the wrapped token
	msg := mustJSON(t, map[string]interface{}{"receiver": ethRecipient.String(), "chain": uint16(vaa.ChainIDEthereum)})
	env := c.env("alice.near", account, sdkmath.ZeroUint())
	out, err = c.portal.Call(env, c.kv, c.viewer, "ft_on_transfer", mustJSON(t, map[string]string{
		"sender_id": "alice.near",
		"amount":    "10000000000000",
		"msg":       string(msg),
	}))
	require.NoError(t, err)
	assert.Equal(t, `"0"`, string(out.Return))
	require.Len(t, out.Promises, 2)
	burn := functionCall(t, out.Promises[0], 0)
	assert.Equal(t, "vaa_withdraw", burn.Method)
	assert.Equal(t, portalAccount, gjson.GetBytes(burn.Args, "account_id").String())
	sent := decodePublished(t, functionCall(t, out.Promises[1], 0))
	assert.Equal(t, uint64(1_000), sent.Amount.Uint64())
	assert.Equal(t, token, sent.TokenAddress)
}

func TestIssueFailureReleasesAttestation(t *testing.T) {
	c := newChain(t)
	c.registerForeign()
	token := vaa.Address{31: 0x07}

	issue := attestWrapped(t, c, token, 0).Promises[0]
	out, err := c.callback("relayer.near", issue, near.PromiseResult{})
	require.NoError(t, err)
	var aborted bool
	for _, l := range out.Logs {
		aborted = aborted || strings.HasPrefix(l, near.LogAborted+": ")
	}
	assert.True(t, aborted)
	assert.Empty(t, out.Promises)

	out = attestWrapped(t, c, token, 1)
	require.Len(t, out.Promises, 1)
}

func TestFungibleTokenTransfer(t *testing.T) {
	c := newChain(t)
	c.viewer.tokens["usdc.near"] = types.TokenInfo{Name: "USD Coin", Symbol: "USDC", Decimals: 6}

	out, err := c.call("alice.near", sdkmath.ZeroUint(), "attest_token", map[string]string{"token": "usdc.near"})
	require.NoError(t, err)
	require.Len(t, out.Promises, 1)
	fc := functionCall(t, out.Promises[0], 0)
	require.Equal(t, "publish_message", fc.Method)
	payload, err := hex.DecodeString(gjson.GetBytes(fc.Args, "data").String())
	require.NoError(t, err)
	meta, err := types.ParseAssetMeta(payload)
	require.NoError(t, err)
	assert.Equal(t, uint8(6), meta.Decimals)
	assert.Equal(t, "USDC", meta.Symbol)
	assert.Equal(t, vaa.ChainIDNear, meta.TokenChain)

	msg := mustJSON(t, map[string]interface{}{"receiver": ethRecipient.String(), "chain": uint16(vaa.ChainIDEthereum), "fee": "100"})
	out, err = c.portal.Call(c.env("alice.near", "usdc.near", sdkmath.ZeroUint()), c.kv, c.viewer, "ft_on_transfer",
		mustJSON(t, map[string]string{"sender_id": "alice.near", "amount": "5000", "msg": string(msg)}))
	require.NoError(t, err)
	require.Len(t, out.Promises, 1)
	sent := decodePublished(t, functionCall(t, out.Promises[0], 0))
	assert.Equal(t, uint64(4_900), sent.Amount.Uint64())
	assert.Equal(t, uint64(100), sent.Fee.Uint64())
	assert.Equal(t, meta.TokenAddress, sent.TokenAddress)
}

func TestUpdateContract(t *testing.T) {
	c := newChain(t)
	code := []byte("\x00asm new portal")

	_, err := c.call(ownerAccount, sdkmath.ZeroUint(), "update_contract", nil)
	require.ErrorIs(t, err, types.ErrUnauthorized)

	packet := types.NewGovernancePacket(types.ActionUpgradeContract, vaa.ChainIDNear,
		types.BodyUpgradeContract{NewContract: sha256.Sum256(code)}.Serialize())
	out, err := c.submit("relayer.near", c.guardians.Sign(c.gov.Emit(packet.Serialize(), 0)))
	require.NoError(t, err)
	assert.Empty(t, out.Promises)

	env := c.env(ownerAccount, ownerAccount, sdkmath.ZeroUint())
	_, err = c.portal.Call(env, c.kv, c.viewer, "update_contract", []byte("other code"))
	require.ErrorIs(t, err, types.ErrUnauthorized)

	out, err = c.portal.Call(env, c.kv, c.viewer, "update_contract", code)
	require.NoError(t, err)
	require.Len(t, out.Promises, 1)
	assert.Equal(t, portalAccount, out.Promises[0].Receiver)
	assert.Equal(t, near.DeployContract{Code: code}, out.Promises[0].Actions[0])
}
