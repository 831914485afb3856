package cosmwasm

import (
	"encoding/json"
	"fmt"
	"strings"

	sdkmath "cosmossdk.io/math"
	wasmvmtypes "github.com/CosmWasm/wasmvm/types"

	"github.com/ramboll-max/wormhole/x/tokenbridge/types"
)

// Custom messages understood by the chain's token factory bindings.
type (
	tokenFactoryMsg struct {
		Token *tokenMsg `json:"token"`
	}

	tokenMsg struct {
		CreateDenom *createDenom `json:"create_denom,omitempty"`
		MintTokens  *mintTokens  `json:"mint_tokens,omitempty"`
		BurnTokens  *burnTokens  `json:"burn_tokens,omitempty"`
	}

	createDenom struct {
		Subdenom string    `json:"subdenom"`
		Metadata *metadata `json:"metadata,omitempty"`
	}

	metadata struct {
		Description string      `json:"description"`
		DenomUnits  []denomUnit `json:"denom_units"`
		Base        string      `json:"base"`
		Display     string      `json:"display"`
		Name        string      `json:"name"`
		Symbol      string      `json:"symbol"`
	}

	denomUnit struct {
		Denom    string   `json:"denom"`
		Exponent uint32   `json:"exponent"`
		Aliases  []string `json:"aliases"`
	}

	mintTokens struct {
		Denom         string       `json:"denom"`
		Amount        sdkmath.Uint `json:"amount"`
		MintToAddress string       `json:"mint_to_address"`
	}

	burnTokens struct {
		Denom           string       `json:"denom"`
		Amount          sdkmath.Uint `json:"amount"`
		BurnFromAddress string       `json:"burn_from_address"`
	}
)

// cw20 execute messages.
type (
	cw20Msg struct {
		Transfer     *cw20Transfer     `json:"transfer,omitempty"`
		TransferFrom *cw20TransferFrom `json:"transfer_from,omitempty"`
	}

	cw20Transfer struct {
		Recipient string       `json:"recipient"`
		Amount    sdkmath.Uint `json:"amount"`
	}

	cw20TransferFrom struct {
		Owner     string       `json:"owner"`
		Recipient string       `json:"recipient"`
		Amount    sdkmath.Uint `json:"amount"`
	}
)

// wormholeMsg is the core bridge execute message.
type wormholeMsg struct {
	PostMessage *postMessage `json:"post_message,omitempty"`
}

type postMessage struct {
	Message []byte `json:"message"`
	Nonce   uint32 `json:"nonce"`
}

// FactoryDenom is the denom the token factory assigns to subdenom created by contract.
func FactoryDenom(contract, subdenom string) string {
	return strings.Join([]string{"factory", contract, subdenom}, "/")
}

// lowerer turns bridge instructions into VM messages on behalf of contract.
type lowerer struct {
	contract string
	wormhole string
}

func custom(msg tokenMsg) (wasmvmtypes.CosmosMsg, error) {
	bz, err := json.Marshal(tokenFactoryMsg{Token: &msg})
	if err != nil {
		return wasmvmtypes.CosmosMsg{}, err
	}
	return wasmvmtypes.CosmosMsg{Custom: bz}, nil
}

func execute(contract string, msg interface{}, funds wasmvmtypes.Coins) (wasmvmtypes.CosmosMsg, error) {
	bz, err := json.Marshal(msg)
	if err != nil {
		return wasmvmtypes.CosmosMsg{}, err
	}
	if funds == nil {
		funds = wasmvmtypes.Coins{}
	}
	return wasmvmtypes.CosmosMsg{Wasm: &wasmvmtypes.WasmMsg{
		Execute: &wasmvmtypes.ExecuteMsg{ContractAddr: contract, Msg: bz, Funds: funds},
	}}, nil
}

func toVMCoins(coins types.Coins) wasmvmtypes.Coins {
	out := wasmvmtypes.Coins{}
	for _, c := range coins {
		if c.Amount.IsZero() {
			continue
		}
		out = append(out, wasmvmtypes.Coin{Denom: c.Denom, Amount: c.Amount.String()})
	}
	return out
}

func fromVMCoins(coins wasmvmtypes.Coins) (types.Coins, error) {
	out := make(types.Coins, 0, len(coins))
	for _, c := range coins {
		amount, err := sdkmath.ParseUint(c.Amount)
		if err != nil {
			return nil, fmt.Errorf("coin %s: %w", c.Denom, err)
		}
		out = append(out, types.Coin{Denom: c.Denom, Amount: amount})
	}
	return out, nil
}

func (l lowerer) lower(ins types.Instruction) (wasmvmtypes.CosmosMsg, error) {
	switch m := ins.(type) {
	case types.MintMsg:
		return custom(tokenMsg{MintTokens: &mintTokens{Denom: m.Denom, Amount: m.Amount, MintToAddress: m.Recipient}})
	case types.BurnMsg:
		return custom(tokenMsg{BurnTokens: &burnTokens{Denom: m.Denom, Amount: m.Amount, BurnFromAddress: l.contract}})
	case types.IssueTokenMsg:
		base := FactoryDenom(l.contract, m.Subdenom)
		return custom(tokenMsg{CreateDenom: &createDenom{
			Subdenom: m.Subdenom,
			Metadata: &metadata{
				Description: m.Description,
				DenomUnits: []denomUnit{
					{Denom: base, Exponent: 0},
					{Denom: m.Symbol, Exponent: uint32(m.Decimals)},
				},
				Base:    base,
				Display: m.Symbol,
				Name:    m.Name,
				Symbol:  m.Symbol,
			},
		}})
	case types.SendMsg:
		if m.Asset.Token != nil {
			return execute(m.Asset.Token.ContractAddr, cw20Msg{Transfer: &cw20Transfer{
				Recipient: m.Recipient,
				Amount:    m.Amount,
			}}, nil)
		}
		return wasmvmtypes.CosmosMsg{Bank: &wasmvmtypes.BankMsg{Send: &wasmvmtypes.SendMsg{
			ToAddress: m.Recipient,
			Amount:    wasmvmtypes.Coins{{Denom: m.Asset.BankToken.Denom, Amount: m.Amount.String()}},
		}}}, nil
	case types.TransferFromMsg:
		return execute(m.Contract, cw20Msg{TransferFrom: &cw20TransferFrom{
			Owner:     m.Owner,
			Recipient: l.contract,
			Amount:    m.Amount,
		}}, nil)
	case types.PostMessageMsg:
		return execute(l.wormhole, wormholeMsg{PostMessage: &postMessage{
			Message: m.Payload,
			Nonce:   m.Nonce,
		}}, toVMCoins(m.Funds))
	case types.UpgradeContractMsg:
		return wasmvmtypes.CosmosMsg{Wasm: &wasmvmtypes.WasmMsg{Migrate: &wasmvmtypes.MigrateMsg{
			ContractAddr: l.contract,
			NewCodeID:    m.CodeID,
			Msg:          []byte("{}"),
		}}}, nil
	default:
		return wasmvmtypes.CosmosMsg{}, fmt.Errorf("cannot lower %T", ins)
	}
}

func (l lowerer) response(res *types.Response) (*wasmvmtypes.Response, error) {
	out := &wasmvmtypes.Response{
		Messages:   []wasmvmtypes.SubMsg{},
		Attributes: lowerAttributes(res.Attributes),
		Events:     []wasmvmtypes.Event{},
		Data:       res.Data,
	}
	for _, sub := range res.Messages {
		msg, err := l.lower(sub.Msg)
		if err != nil {
			return nil, err
		}
		vm := wasmvmtypes.SubMsg{ID: sub.ID, Msg: msg}
		switch sub.ReplyOn {
		case types.ReplyAlways:
			vm.ReplyOn = wasmvmtypes.ReplyAlways
		case types.ReplySuccess:
			vm.ReplyOn = wasmvmtypes.ReplySuccess
		case types.ReplyError:
			vm.ReplyOn = wasmvmtypes.ReplyError
		default:
			vm.ReplyOn = wasmvmtypes.ReplyNever
		}
		out.Messages = append(out.Messages, vm)
	}
	for _, e := range res.Events {
		out.Events = append(out.Events, wasmvmtypes.Event{Type: e.Type, Attributes: lowerAttributes(e.Attributes)})
	}
	return out, nil
}

func lowerAttributes(attrs []types.Attribute) []wasmvmtypes.EventAttribute {
	out := make([]wasmvmtypes.EventAttribute, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, wasmvmtypes.EventAttribute{Key: a.Key, Value: a.Value})
	}
	return out
}

// newTokenDenomAttribute is set by the token factory on the create_denom event.
const newTokenDenomAttribute = "new_token_denom"

// liftReply converts a VM reply into the result Keeper.Resume expects. The
// token factory answers create_denom with a protobuf message; the bridge
// only needs the denom, which the event carries.
func liftReply(reply wasmvmtypes.Reply) (types.SubMsgResult, error) {
	if reply.Result.Err != "" {
		return types.SubMsgResult{Err: reply.Result.Err}, nil
	}
	if reply.Result.Ok == nil {
		return types.SubMsgResult{}, fmt.Errorf("reply %d has neither result nor error", reply.ID)
	}
	if reply.ID != types.ReplyIDIssue {
		return types.SubMsgResult{Data: reply.Result.Ok.Data}, nil
	}
	for _, e := range reply.Result.Ok.Events {
		for _, a := range e.Attributes {
			if a.Key == newTokenDenomAttribute {
				bz, err := json.Marshal(types.IssueTokenResponse{Denom: a.Value})
				return types.SubMsgResult{Data: bz}, err
			}
		}
	}
	return types.SubMsgResult{}, fmt.Errorf("reply %d: no %s attribute", reply.ID, newTokenDenomAttribute)
}
