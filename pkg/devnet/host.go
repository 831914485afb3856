package devnet

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/ramboll-max/wormhole/pkg/store"
	"github.com/ramboll-max/wormhole/x/tokenbridge/keeper"
	"github.com/ramboll-max/wormhole/x/tokenbridge/types"
)

const (
	DefaultContract = "tokenbridge"
	DefaultWormhole = "wormhole"
)

// Result is everything an execution produced, continuations included.
type Result struct {
	Instructions []types.Instruction
	Events       []types.Event
	Attributes   []types.Attribute
	Data         []byte
}

// Event returns the first event of type typ.
func (r *Result) Event(typ string) (types.Event, bool) {
	for _, e := range r.Events {
		if e.Type == typ {
			return e, true
		}
	}
	return types.Event{}, false
}

func (r *Result) add(res *types.Response) {
	r.Events = append(r.Events, res.Events...)
	r.Attributes = append(r.Attributes, res.Attributes...)
	if res.Data != nil {
		r.Data = res.Data
	}
}

// Host runs the bridge the way a contract VM would: attached funds move to
// the contract before the call, returned instructions run after it, and
// replies are fed back through Keeper.Resume. An execution is atomic unless
// the bridge aborts a continuation, in which case the state written so far
// and the unwind instructions are kept.
type Host struct {
	Keeper   *keeper.Keeper
	Ledger   *Ledger
	Clock    clock.Clock
	Contract string
	Wormhole string

	mu     sync.Mutex
	kv     store.KVStore
	height uint64
	logger *zap.Logger
}

func NewHost(k *keeper.Keeper, kv store.KVStore, ledger *Ledger, clk clock.Clock, logger *zap.Logger) *Host {
	return &Host{
		Keeper:   k,
		Ledger:   ledger,
		Clock:    clk,
		Contract: DefaultContract,
		Wormhole: DefaultWormhole,
		kv:       kv,
		logger:   logger,
	}
}

// Context returns a context reading the committed state at the current block.
func (h *Host) Context() types.Context {
	return h.contextFor(h.kv)
}

func (h *Host) contextFor(kv store.KVStore) types.Context {
	return types.NewContext(context.Background(), kv, types.Env{
		BlockHeight:     h.height,
		BlockTime:       h.Clock.Now(),
		ContractAddress: h.Contract,
	}, h.Ledger)
}

// Operation is a keeper entry point bound to its message.
type Operation func(ctx types.Context, info types.MessageInfo) (*types.Response, error)

// Execute runs op in a new block on behalf of sender with funds attached.
func (h *Host) Execute(sender string, funds types.Coins, op Operation) (*Result, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.height++
	snapshot := h.Ledger.snapshot()
	cache := store.NewCache(h.kv)
	ctx := h.contextFor(cache)
	result := &Result{}

	err := h.run(ctx, types.MessageInfo{Sender: sender, Funds: funds}, op, result)

	var abort *types.AbortError
	if err != nil && !errors.As(err, &abort) {
		h.Ledger.restore(snapshot)
		cache.Discard()
		h.logger.Debug("execution reverted", zap.Uint64("height", h.height), zap.Error(err))
		return result, err
	}
	if werr := cache.Write(); werr != nil {
		h.Ledger.restore(snapshot)
		return result, werr
	}
	return result, err
}

func (h *Host) run(ctx types.Context, info types.MessageInfo, op Operation, result *Result) error {
	if len(info.Funds) > 0 {
		if err := h.Ledger.Transfer(info.Sender, h.Contract, info.Funds); err != nil {
			return fmt.Errorf("attach funds: %w", err)
		}
	}
	res, err := op(ctx, info)
	if err != nil {
		return err
	}
	result.add(res)
	return h.dispatch(ctx, res, result)
}

// dispatch carries out the messages of res in order.
func (h *Host) dispatch(ctx types.Context, res *types.Response, result *Result) error {
	for _, sub := range res.Messages {
		data, err := h.Ledger.Apply(h.Contract, h.Wormhole, sub.Msg)
		if err == nil {
			result.Instructions = append(result.Instructions, sub.Msg)
		}

		replies := sub.ReplyOn == types.ReplyAlways ||
			(sub.ReplyOn == types.ReplySuccess && err == nil) ||
			(sub.ReplyOn == types.ReplyError && err != nil)
		if !replies {
			if err != nil {
				return fmt.Errorf("%T: %w", sub.Msg, err)
			}
			continue
		}

		reply := types.SubMsgResult{Data: data}
		if err != nil {
			reply.Err = err.Error()
		}
		next, err := h.Keeper.Resume(ctx, sub.ID, reply)
		if err != nil {
			var abort *types.AbortError
			if errors.As(err, &abort) && abort.Unwind != nil {
				result.add(abort.Unwind)
				if uerr := h.dispatch(ctx, abort.Unwind, result); uerr != nil {
					return uerr
				}
			}
			return err
		}
		result.add(next)
		if err := h.dispatch(ctx, next, result); err != nil {
			return err
		}
	}
	return nil
}
