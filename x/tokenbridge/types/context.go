package types

import (
	"context"
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/ramboll-max/wormhole/pkg/store"
)

// Env describes the block and contract an operation executes in.
type Env struct {
	BlockHeight     uint64
	BlockTime       time.Time
	ContractAddress string
}

// Coin is an amount of a bank denomination.
type Coin struct {
	Denom  string       `json:"denom"`
	Amount sdkmath.Uint `json:"amount"`
}

func NewCoin(denom string, amount uint64) Coin {
	return Coin{Denom: denom, Amount: sdkmath.NewUint(amount)}
}

type Coins []Coin

// AmountOf returns the amount of denom in coins.
func (cs Coins) AmountOf(denom string) sdkmath.Uint {
	total := sdkmath.ZeroUint()
	for _, c := range cs {
		if c.Denom == denom {
			total = total.Add(c.Amount)
		}
	}
	return total
}

// Without returns coins without any entry of denom.
func (cs Coins) Without(denom string) Coins {
	out := Coins{}
	for _, c := range cs {
		if c.Denom != denom && !c.Amount.IsZero() {
			out = append(out, c)
		}
	}
	return out
}

// MessageInfo is the caller of an operation and the funds it attached.
type MessageInfo struct {
	Sender string
	Funds  Coins
}

// Context carries the state and host services an operation runs against.
// It is a value type; the With* methods return modified copies.
type Context struct {
	goCtx   context.Context
	kv      store.KVStore
	env     Env
	querier Querier
}

func NewContext(goCtx context.Context, kv store.KVStore, env Env, querier Querier) Context {
	if goCtx == nil {
		goCtx = context.Background()
	}
	return Context{goCtx: goCtx, kv: kv, env: env, querier: querier}
}

func (c Context) Context() context.Context { return c.goCtx }
func (c Context) KVStore() store.KVStore   { return c.kv }
func (c Context) Env() Env                 { return c.env }
func (c Context) BlockTime() time.Time     { return c.env.BlockTime }
func (c Context) Querier() Querier         { return c.querier }

// ContractAddress is the address the bridge holds custody under.
func (c Context) ContractAddress() string { return c.env.ContractAddress }

func (c Context) WithKVStore(kv store.KVStore) Context {
	c.kv = kv
	return c
}

func (c Context) WithEnv(env Env) Context {
	c.env = env
	return c
}

// CacheContext branches the store. Writes made through the returned context
// only reach the parent store when write is called.
func (c Context) CacheContext() (cc Context, write func() error) {
	cache := store.NewCache(c.kv)
	return c.WithKVStore(cache), cache.Write
}
