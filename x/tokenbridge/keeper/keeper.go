package keeper

import (
	"errors"
	"time"

	errorsmod "cosmossdk.io/errors"
	"go.uber.org/zap"

	"github.com/ramboll-max/wormhole/x/tokenbridge/types"
)

// Keeper owns the token bridge state of one contract instance. All state
// lives in the store of the Context each operation runs against.
type Keeper struct {
	cdc      types.RecordCodec
	verifier types.VAAVerifier
	addrs    types.AddressCodec
	logger   *zap.Logger
}

func NewKeeper(
	cdc types.RecordCodec,
	verifier types.VAAVerifier,
	addrs types.AddressCodec,
	logger *zap.Logger,
) *Keeper {
	return &Keeper{
		cdc:      cdc,
		verifier: verifier,
		addrs:    addrs,
		logger:   logger.With(zap.String("module", types.ModuleName)),
	}
}

func (k Keeper) Logger() *zap.Logger {
	return k.logger
}

// execute runs fn against a branch of the context store. The branch is
// written back when fn succeeds or returns an *types.AbortError, whose state
// (e.g. a cleared lock) must survive. Any other error discards every write.
func (k Keeper) execute(ctx types.Context, op string, fn func(ctx types.Context) (*types.Response, error)) (res *types.Response, err error) {
	start := time.Now()
	defer func() {
		observeOperation(op, start, err)
		if err != nil {
			k.logger.Debug("operation failed", zap.String("op", op), zap.Error(err))
		}
	}()
	defer k.recoverPanic(op, &err)

	cc, write := ctx.CacheContext()
	res, err = fn(cc)

	var abort *types.AbortError
	if err != nil && !errors.As(err, &abort) {
		return nil, err
	}
	if werr := write(); werr != nil {
		return nil, werr
	}
	return res, err
}

// recoverPanic turns a panic raised by a store or codec failure into an error.
func (k Keeper) recoverPanic(op string, err *error) {
	if r := recover(); r != nil {
		k.logger.Error("recovered from panic", zap.String("op", op), zap.Any("panic", r))
		*err = errorsmod.Wrapf(errorsmod.ErrPanic, "%s: %v", op, r)
	}
}

// Instantiate stores the configuration of a new deployment.
func (k Keeper) Instantiate(ctx types.Context, cfg types.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	_, err := k.execute(ctx, "instantiate", func(ctx types.Context) (*types.Response, error) {
		if _, found := k.GetConfig(ctx); found {
			return nil, errorsmod.Wrap(types.ErrUnauthorized, "contract already instantiated")
		}
		k.SetConfig(ctx, cfg)
		return types.NewResponse(), nil
	})
	if err == nil {
		k.logger.Info("token bridge instantiated",
			zap.Uint16("chain_id", cfg.ChainID),
			zap.Uint16("gov_chain", cfg.GovChain),
			zap.String("wormhole_contract", cfg.WormholeContract))
	}
	return err
}

func (k Keeper) SetConfig(ctx types.Context, cfg types.Config) {
	k.save(ctx.KVStore(), types.ConfigKey, &cfg)
}

func (k Keeper) GetConfig(ctx types.Context) (cfg types.Config, found bool) {
	found = k.load(ctx.KVStore(), types.ConfigKey, &cfg)
	return cfg, found
}

func (k Keeper) config(ctx types.Context) (types.Config, error) {
	cfg, found := k.GetConfig(ctx)
	if !found {
		return cfg, types.ErrNotConfigured
	}
	return cfg, nil
}
