package types

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/ramboll-max/wormhole/pkg/vaa"
)

// Instruction is an effect the bridge asks the host to carry out after the
// operation that produced it has committed.
type Instruction interface {
	instruction()
}

type (
	// MintMsg mints a wrapped denom to Recipient.
	MintMsg struct {
		Denom     string
		Amount    sdkmath.Uint
		Recipient string
	}

	// BurnMsg burns a wrapped denom held by the bridge.
	BurnMsg struct {
		Denom  string
		Amount sdkmath.Uint
	}

	// SendMsg releases a native asset from custody to Recipient.
	SendMsg struct {
		Asset     AssetInfo
		Amount    sdkmath.Uint
		Recipient string
	}

	// TransferFromMsg moves Amount of a contract token from Owner into custody.
	TransferFromMsg struct {
		Contract string
		Owner    string
		Amount   sdkmath.Uint
	}

	// PostMessageMsg emits Payload through the core bridge. Funds pay the message fee.
	PostMessageMsg struct {
		Payload []byte
		Nonce   uint32
		Funds   Coins
	}

	// IssueTokenMsg creates a new wrapped denom. The host replies with the denom it created.
	IssueTokenMsg struct {
		Name        string
		Symbol      string
		Decimals    uint8
		Description string
		Subdenom    string
	}

	// UpgradeContractMsg authorizes replacing the bridge code.
	UpgradeContractMsg struct {
		NewContract vaa.Address
		CodeID      uint64
	}
)

func (MintMsg) instruction()            {}
func (BurnMsg) instruction()            {}
func (SendMsg) instruction()            {}
func (TransferFromMsg) instruction()    {}
func (PostMessageMsg) instruction()     {}
func (IssueTokenMsg) instruction()      {}
func (UpgradeContractMsg) instruction() {}

// Reply ids of continuations.
const (
	ReplyIDIssue        uint64 = 1
	ReplyIDTransferFrom uint64 = 2
)

// IssueTokenResponse is the reply data of a successful IssueTokenMsg.
type IssueTokenResponse struct {
	Denom string `json:"denom"`
}

type ReplyOn uint8

const (
	ReplyNever ReplyOn = iota
	ReplySuccess
	ReplyError
	ReplyAlways
)

// SubMsg is an instruction, optionally resumed through Keeper.Resume under ID.
type SubMsg struct {
	ID      uint64
	Msg     Instruction
	ReplyOn ReplyOn
}

// SubMsgResult is what the host reports back for a SubMsg.
type SubMsgResult struct {
	Err  string
	Data []byte
}

func (r SubMsgResult) IsOk() bool { return r.Err == "" }

type Attribute struct {
	Key   string
	Value string
}

type Event struct {
	Type       string
	Attributes []Attribute
}

func NewEvent(typ string, attrs ...Attribute) Event {
	return Event{Type: typ, Attributes: attrs}
}

func NewAttribute(key string, value interface{}) Attribute {
	return Attribute{Key: key, Value: fmt.Sprint(value)}
}

// Attribute returns the value of key, if present.
func (e Event) Attribute(key string) (string, bool) {
	for _, a := range e.Attributes {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// Response is the outcome of a bridge operation.
type Response struct {
	Messages   []SubMsg
	Events     []Event
	Attributes []Attribute
	Data       []byte
}

func NewResponse() *Response {
	return &Response{}
}

func (r *Response) AddMessage(msg Instruction) *Response {
	r.Messages = append(r.Messages, SubMsg{Msg: msg, ReplyOn: ReplyNever})
	return r
}

func (r *Response) AddSubMessage(id uint64, msg Instruction, on ReplyOn) *Response {
	r.Messages = append(r.Messages, SubMsg{ID: id, Msg: msg, ReplyOn: on})
	return r
}

func (r *Response) AddEvent(e Event) *Response {
	r.Events = append(r.Events, e)
	return r
}

func (r *Response) AddAttribute(key string, value interface{}) *Response {
	r.Attributes = append(r.Attributes, NewAttribute(key, value))
	return r
}

// Instructions returns the instructions of every SubMsg in order.
func (r *Response) Instructions() []Instruction {
	out := make([]Instruction, len(r.Messages))
	for i, m := range r.Messages {
		out[i] = m.Msg
	}
	return out
}

// Event returns the first event of type typ.
func (r *Response) Event(typ string) (Event, bool) {
	for _, e := range r.Events {
		if e.Type == typ {
			return e, true
		}
	}
	return Event{}, false
}

// AbortError is returned by a continuation that could not complete. State
// written before the abort is kept and Unwind holds compensating instructions
// (refunds) the host must still execute.
type AbortError struct {
	Err    error
	Unwind *Response
}

func (e *AbortError) Error() string { return "aborted: " + e.Err.Error() }
func (e *AbortError) Unwrap() error { return e.Err }
