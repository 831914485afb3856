package near

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/ramboll-max/wormhole/x/tokenbridge/types"
)

const (
	TGas = 1_000_000_000_000

	gasForTokenCall = 10 * TGas
	gasForPublish   = 30 * TGas
	gasForCallback  = 10 * TGas

	MethodResolveSub      = "resolve_sub"
	MethodEmitterCallback = "emitter_callback"

	eventStandard = "wormhole_token_bridge"
	eventVersion  = "1.0.0"
)

var (
	// oneYocto is the deposit NEP-141 requires on ft_transfer.
	oneYocto = sdkmath.OneUint()

	// wrappedTokenDeposit pays for the storage of a new wrapped token account.
	wrappedTokenDeposit = sdkmath.NewUintFromString("5000000000000000000000000")
)

// WrappedAccount is the sub-account of portal holding the wrapped token
// created for subdenom.
func WrappedAccount(portal, subdenom string) string {
	h := sha256.Sum256([]byte(subdenom))
	return hex.EncodeToString(h[:8]) + "." + portal
}

type (
	resolveSubArgs struct {
		ID      uint64        `json:"id"`
		ReplyOn types.ReplyOn `json:"reply_on"`
		// Denom is the account of an issued token.
		Denom string `json:"denom,omitempty"`
	}

	emitterCallbackArgs struct {
		RefundTo string       `json:"refund_to"`
		Deposit  sdkmath.Uint `json:"deposit"`
	}

	ftMetadata struct {
		Spec     string `json:"spec"`
		Name     string `json:"name"`
		Symbol   string `json:"symbol"`
		Decimals uint8  `json:"decimals"`
	}
)

// lowerer schedules bridge instructions as promises on behalf of the portal.
// Refunds go to refundTo, the signer of the transaction.
type lowerer struct {
	current   string
	core      string
	refundTo  string
	tokenCode []byte
}

func (l lowerer) callback(method string, args interface{}) (*Promise, error) {
	return NewPromise(l.current).FunctionCall(method, args, sdkmath.ZeroUint(), gasForCallback)
}

func (l lowerer) lower(sub types.SubMsg) (*Promise, error) {
	p, resolve, err := l.lowerInstruction(sub.Msg)
	if err != nil || p == nil {
		return p, err
	}
	if post, ok := sub.Msg.(types.PostMessageMsg); ok {
		p.Last().Then, err = l.callback(MethodEmitterCallback, emitterCallbackArgs{
			RefundTo: l.refundTo,
			Deposit:  post.Funds.AmountOf(NativeDenom),
		})
		return p, err
	}
	if sub.ReplyOn != types.ReplyNever {
		resolve.ID, resolve.ReplyOn = sub.ID, sub.ReplyOn
		p.Last().Then, err = l.callback(MethodResolveSub, resolve)
	}
	return p, err
}

func (l lowerer) lowerInstruction(ins types.Instruction) (*Promise, resolveSubArgs, error) {
	var resolve resolveSubArgs
	switch m := ins.(type) {
	case types.MintMsg:
		p, err := NewPromise(m.Denom).FunctionCall("vaa_transfer", map[string]interface{}{
			"receiver_id": m.Recipient,
			"amount":      m.Amount,
		}, sdkmath.ZeroUint(), gasForTokenCall)
		return p, resolve, err
	case types.BurnMsg:
		p, err := NewPromise(m.Denom).FunctionCall("vaa_withdraw", map[string]interface{}{
			"account_id": l.current,
			"amount":     m.Amount,
		}, sdkmath.ZeroUint(), gasForTokenCall)
		return p, resolve, err
	case types.SendMsg:
		var token string
		switch {
		case m.Asset.BankToken != nil && m.Asset.BankToken.Denom == NativeDenom:
			return NewPromise(m.Recipient).Transfer(m.Amount), resolve, nil
		case m.Asset.BankToken != nil:
			token = m.Asset.BankToken.Denom
		default:
			token = m.Asset.Token.ContractAddr
		}
		p, err := NewPromise(token).FunctionCall("ft_transfer", map[string]interface{}{
			"receiver_id": m.Recipient,
			"amount":      m.Amount,
		}, oneYocto, gasForTokenCall)
		return p, resolve, err
	case types.PostMessageMsg:
		for _, c := range m.Funds {
			if c.Denom != NativeDenom && !c.Amount.IsZero() {
				return nil, resolve, fmt.Errorf("message fee must be paid in %s, got %s", NativeDenom, c.Denom)
			}
		}
		p, err := NewPromise(l.core).FunctionCall("publish_message", map[string]interface{}{
			"data":  hex.EncodeToString(m.Payload),
			"nonce": m.Nonce,
		}, m.Funds.AmountOf(NativeDenom), gasForPublish)
		return p, resolve, err
	case types.IssueTokenMsg:
		account := WrappedAccount(l.current, m.Subdenom)
		p := NewPromise(account).CreateAccount().Transfer(wrappedTokenDeposit)
		if l.tokenCode != nil {
			p.DeployContract(l.tokenCode)
		}
		p, err := p.FunctionCall("new", map[string]interface{}{
			"metadata": ftMetadata{Spec: "ft-1.0.0", Name: m.Name, Symbol: m.Symbol, Decimals: m.Decimals},
			"owner_id": l.current,
		}, sdkmath.ZeroUint(), gasForTokenCall)
		resolve.Denom = account
		return p, resolve, err
	case types.UpgradeContractMsg:
		// the owner deploys the authorized code with update_contract
		return nil, resolve, nil
	case types.TransferFromMsg:
		return nil, resolve, fmt.Errorf("%s: fungible tokens reach the portal through ft_transfer_call", m.Contract)
	default:
		return nil, resolve, fmt.Errorf("cannot lower %T", ins)
	}
}

type eventLog struct {
	Standard string            `json:"standard"`
	Version  string            `json:"version"`
	Event    string            `json:"event"`
	Data     map[string]string `json:"data"`
}

// outcome lowers res. Events become NEP-297 "EVENT_JSON:" logs.
func (l lowerer) outcome(res *types.Response) (*Outcome, error) {
	out := &Outcome{Return: res.Data}
	for _, sub := range res.Messages {
		p, err := l.lower(sub)
		if err != nil {
			return nil, err
		}
		if p != nil {
			out.Promises = append(out.Promises, p)
		}
	}
	for _, e := range res.Events {
		data := make(map[string]string, len(e.Attributes))
		for _, a := range e.Attributes {
			data[a.Key] = a.Value
		}
		bz, err := json.Marshal(eventLog{Standard: eventStandard, Version: eventVersion, Event: e.Type, Data: data})
		if err != nil {
			return nil, err
		}
		out.log("EVENT_JSON:%s", bz)
	}
	for _, a := range res.Attributes {
		out.log("%s: %s", a.Key, a.Value)
	}
	return out, nil
}
