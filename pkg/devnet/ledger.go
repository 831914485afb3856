package devnet

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	sdkmath "cosmossdk.io/math"

	"github.com/ramboll-max/wormhole/x/tokenbridge/types"
)

var (
	ErrUnknownDenom    = errors.New("unknown denom")
	ErrUnknownToken    = errors.New("unknown token contract")
	ErrInsufficientBal = errors.New("insufficient balance")
	ErrDenomExists     = errors.New("denom already exists")
	ErrTransferRefused = errors.New("token refused the transfer")
)

// Token is a contract token. TransferTax is withheld from every TransferFrom,
// the way fee-on-transfer tokens behave.
type Token struct {
	Info        types.TokenInfo
	TransferTax sdkmath.Uint
	// Refuse makes every TransferFrom fail.
	Refuse   bool
	balances map[string]sdkmath.Uint
}

// PostedMessage is a message handed to the core bridge.
type PostedMessage struct {
	Sequence uint64
	Nonce    uint32
	Payload  []byte
	Funds    types.Coins
}

// Ledger is the token state of the devnet: bank denominations, contract
// tokens and the messages posted through the core bridge. It implements
// types.Querier.
type Ledger struct {
	mu       sync.Mutex
	bank     map[string]map[string]sdkmath.Uint
	metadata map[string]types.DenomMetadata
	tokens   map[string]*Token
	posted   []PostedMessage
	upgrades []types.UpgradeContractMsg
}

var _ types.Querier = (*Ledger)(nil)

func NewLedger() *Ledger {
	return &Ledger{
		bank:     map[string]map[string]sdkmath.Uint{},
		metadata: map[string]types.DenomMetadata{},
		tokens:   map[string]*Token{},
	}
}

// AddDenom registers a bank denomination whose display unit has decimals.
func (l *Ledger) AddDenom(base, display string, decimals uint32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.addDenom(types.DenomMetadata{
		Base:    base,
		Display: display,
		Symbol:  display,
		Name:    display,
		DenomUnits: []types.DenomUnit{
			{Denom: base, Exponent: 0},
			{Denom: display, Exponent: decimals},
		},
	})
}

func (l *Ledger) addDenom(m types.DenomMetadata) {
	l.metadata[m.Base] = m
	if _, ok := l.bank[m.Base]; !ok {
		l.bank[m.Base] = map[string]sdkmath.Uint{}
	}
}

// AddToken deploys a contract token.
func (l *Ledger) AddToken(contract string, info types.TokenInfo) *Token {
	l.mu.Lock()
	defer l.mu.Unlock()
	t := &Token{Info: info, TransferTax: sdkmath.ZeroUint(), balances: map[string]sdkmath.Uint{}}
	l.tokens[contract] = t
	return t
}

// Fund credits amount of a bank denom or contract token to account.
func (l *Ledger) Fund(asset types.AssetInfo, account string, amount sdkmath.Uint) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	balances, err := l.balances(asset)
	if err != nil {
		return err
	}
	credit(balances, account, amount)
	return nil
}

func (l *Ledger) balances(asset types.AssetInfo) (map[string]sdkmath.Uint, error) {
	if asset.BankToken != nil {
		b, ok := l.bank[asset.BankToken.Denom]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownDenom, asset.BankToken.Denom)
		}
		return b, nil
	}
	if asset.Token != nil {
		t, ok := l.tokens[asset.Token.ContractAddr]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownToken, asset.Token.ContractAddr)
		}
		return t.balances, nil
	}
	return nil, fmt.Errorf("%w: empty asset", ErrUnknownToken)
}

// BalanceOf returns the balance of account, zero for unknown assets.
func (l *Ledger) BalanceOf(asset types.AssetInfo, account string) sdkmath.Uint {
	l.mu.Lock()
	defer l.mu.Unlock()
	balances, err := l.balances(asset)
	if err != nil {
		return sdkmath.ZeroUint()
	}
	return balanceOf(balances, account)
}

// Posted returns the messages posted so far.
func (l *Ledger) Posted() []PostedMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]PostedMessage{}, l.posted...)
}

func (l *Ledger) Upgrades() []types.UpgradeContractMsg {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]types.UpgradeContractMsg{}, l.upgrades...)
}

func (l *Ledger) Balance(_ types.Context, asset types.AssetInfo, address string) (sdkmath.Uint, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	balances, err := l.balances(asset)
	if err != nil {
		return sdkmath.ZeroUint(), err
	}
	return balanceOf(balances, address), nil
}

func (l *Ledger) TokenInfo(_ types.Context, contract string) (types.TokenInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.tokens[contract]
	if !ok {
		return types.TokenInfo{}, fmt.Errorf("%w: %s", ErrUnknownToken, contract)
	}
	return t.Info, nil
}

func (l *Ledger) DenomMetadata(_ types.Context, denom string) (types.DenomMetadata, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.metadata[denom]
	if !ok {
		return types.DenomMetadata{}, fmt.Errorf("%w: %s", ErrUnknownDenom, denom)
	}
	return m, nil
}

// Transfer moves bank funds between accounts.
func (l *Ledger) Transfer(from, to string, coins types.Coins) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, c := range coins {
		if err := l.move(types.NewBankAsset(c.Denom), from, to, c.Amount); err != nil {
			return err
		}
	}
	return nil
}

func (l *Ledger) move(asset types.AssetInfo, from, to string, amount sdkmath.Uint) error {
	balances, err := l.balances(asset)
	if err != nil {
		return err
	}
	if err := debit(balances, from, amount); err != nil {
		return fmt.Errorf("%s of %s: %w", from, asset, err)
	}
	credit(balances, to, amount)
	return nil
}

// Apply carries out instruction on behalf of contract and returns the reply data.
func (l *Ledger) Apply(contract, wormhole string, instruction types.Instruction) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch msg := instruction.(type) {
	case types.MintMsg:
		balances, err := l.balances(types.NewBankAsset(msg.Denom))
		if err != nil {
			return nil, err
		}
		credit(balances, msg.Recipient, msg.Amount)
		return nil, nil

	case types.BurnMsg:
		balances, err := l.balances(types.NewBankAsset(msg.Denom))
		if err != nil {
			return nil, err
		}
		return nil, debit(balances, contract, msg.Amount)

	case types.SendMsg:
		return nil, l.move(msg.Asset, contract, msg.Recipient, msg.Amount)

	case types.TransferFromMsg:
		t, ok := l.tokens[msg.Contract]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownToken, msg.Contract)
		}
		if t.Refuse {
			return nil, ErrTransferRefused
		}
		if err := debit(t.balances, msg.Owner, msg.Amount); err != nil {
			return nil, err
		}
		arrived := sdkmath.ZeroUint()
		if msg.Amount.GT(t.TransferTax) {
			arrived = msg.Amount.Sub(t.TransferTax)
		}
		credit(t.balances, contract, arrived)
		return nil, nil

	case types.PostMessageMsg:
		for _, c := range msg.Funds {
			if err := l.move(types.NewBankAsset(c.Denom), contract, wormhole, c.Amount); err != nil {
				return nil, err
			}
		}
		seq := uint64(len(l.posted))
		l.posted = append(l.posted, PostedMessage{Sequence: seq, Nonce: msg.Nonce, Payload: msg.Payload, Funds: msg.Funds})
		return json.Marshal(map[string]uint64{"sequence": seq})

	case types.IssueTokenMsg:
		denom := fmt.Sprintf("factory/%s/%s", contract, msg.Subdenom)
		if _, exists := l.metadata[denom]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDenomExists, denom)
		}
		l.addDenom(types.DenomMetadata{
			Description: msg.Description,
			Base:        denom,
			Display:     msg.Symbol,
			Name:        msg.Name,
			Symbol:      msg.Symbol,
			DenomUnits: []types.DenomUnit{
				{Denom: denom, Exponent: 0},
				{Denom: msg.Symbol, Exponent: uint32(msg.Decimals)},
			},
		})
		return json.Marshal(types.IssueTokenResponse{Denom: denom})

	case types.UpgradeContractMsg:
		l.upgrades = append(l.upgrades, msg)
		return nil, nil

	default:
		return nil, fmt.Errorf("unsupported instruction %T", instruction)
	}
}

// snapshot returns a deep copy used to roll back a failed execution.
func (l *Ledger) snapshot() *Ledger {
	l.mu.Lock()
	defer l.mu.Unlock()
	c := NewLedger()
	for denom, balances := range l.bank {
		c.bank[denom] = copyBalances(balances)
	}
	for denom, m := range l.metadata {
		c.metadata[denom] = m
	}
	for contract, t := range l.tokens {
		cp := *t
		cp.balances = copyBalances(t.balances)
		c.tokens[contract] = &cp
	}
	c.posted = append(c.posted, l.posted...)
	c.upgrades = append(c.upgrades, l.upgrades...)
	return c
}

// restore replaces the state of l with the state of s. Token pointers handed
// out by AddToken stay valid.
func (l *Ledger) restore(s *Ledger) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.bank = s.bank
	l.metadata = s.metadata
	for contract, t := range s.tokens {
		if live, ok := l.tokens[contract]; ok {
			live.balances = t.balances
			s.tokens[contract] = live
		}
	}
	l.tokens = s.tokens
	l.posted = s.posted
	l.upgrades = s.upgrades
}

func balanceOf(balances map[string]sdkmath.Uint, account string) sdkmath.Uint {
	if b, ok := balances[account]; ok {
		return b
	}
	return sdkmath.ZeroUint()
}

func credit(balances map[string]sdkmath.Uint, account string, amount sdkmath.Uint) {
	balances[account] = balanceOf(balances, account).Add(amount)
}

func debit(balances map[string]sdkmath.Uint, account string, amount sdkmath.Uint) error {
	b := balanceOf(balances, account)
	if b.LT(amount) {
		return fmt.Errorf("%w: %s < %s", ErrInsufficientBal, b, amount)
	}
	balances[account] = b.Sub(amount)
	return nil
}

func copyBalances(in map[string]sdkmath.Uint) map[string]sdkmath.Uint {
	out := make(map[string]sdkmath.Uint, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
