package near

import (
	"encoding/json"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
)

// Env is the execution environment of a NEAR function call.
type Env struct {
	BlockHeight uint64
	// BlockTimestamp in nanoseconds
	BlockTimestamp       uint64
	CurrentAccountID     string
	SignerAccountID      string
	SignerAccountPK      PublicKey
	PredecessorAccountID string
	AttachedDeposit      sdkmath.Uint
	// PromiseResults of the promises a callback was chained to.
	PromiseResults []PromiseResult
}

func (e Env) blockTime() time.Time {
	return time.Unix(0, int64(e.BlockTimestamp))
}

func (e Env) deposit() sdkmath.Uint {
	if e.AttachedDeposit.IsNil() {
		return sdkmath.ZeroUint()
	}
	return e.AttachedDeposit
}

// private reports whether the contract is calling itself, the only caller
// allowed into callbacks.
func (e Env) private() bool {
	return e.PredecessorAccountID == e.CurrentAccountID
}

type PromiseResult struct {
	Successful bool
	Value      []byte
}

// Action is one step of a promise executed on its receiver.
type Action interface {
	action()
}

type (
	CreateAccount struct{}

	DeployContract struct {
		Code []byte
	}

	FunctionCall struct {
		Method  string
		Args    []byte
		Deposit sdkmath.Uint
		Gas     uint64
	}

	Transfer struct {
		Deposit sdkmath.Uint
	}
)

func (CreateAccount) action()  {}
func (DeployContract) action() {}
func (FunctionCall) action()   {}
func (Transfer) action()       {}

// Promise is a batch of actions on Receiver. Then is scheduled once the
// batch has resolved and sees its result.
type Promise struct {
	Receiver string
	Actions  []Action
	Then     *Promise
}

func NewPromise(receiver string) *Promise {
	return &Promise{Receiver: receiver}
}

func (p *Promise) CreateAccount() *Promise {
	p.Actions = append(p.Actions, CreateAccount{})
	return p
}

func (p *Promise) DeployContract(code []byte) *Promise {
	p.Actions = append(p.Actions, DeployContract{Code: code})
	return p
}

func (p *Promise) Transfer(amount sdkmath.Uint) *Promise {
	p.Actions = append(p.Actions, Transfer{Deposit: amount})
	return p
}

// FunctionCall appends a call of method with JSON encoded args.
func (p *Promise) FunctionCall(method string, args interface{}, deposit sdkmath.Uint, gas uint64) (*Promise, error) {
	bz, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("%s args: %w", method, err)
	}
	p.Actions = append(p.Actions, FunctionCall{Method: method, Args: bz, Deposit: deposit, Gas: gas})
	return p, nil
}

// Last returns the final promise of the chain starting at p.
func (p *Promise) Last() *Promise {
	for p.Then != nil {
		p = p.Then
	}
	return p
}

// Outcome is what a function call returns to the runtime.
type Outcome struct {
	Promises []*Promise
	Logs     []string
	// Return is the JSON return value.
	Return []byte
}

func (o *Outcome) log(format string, args ...interface{}) {
	o.Logs = append(o.Logs, fmt.Sprintf(format, args...))
}
