package keeper

import (
	"encoding/binary"
	"fmt"

	"github.com/ramboll-max/wormhole/pkg/store"
	"github.com/ramboll-max/wormhole/x/tokenbridge/types"
)

// Store access helpers. A failing store or codec is a host failure, not a
// business error; the helpers panic and execute recovers.

func (k Keeper) prefixStore(ctx types.Context, prefix []byte) store.PrefixStore {
	return store.NewPrefixStore(ctx.KVStore(), prefix)
}

func (k Keeper) load(s store.KVStore, key []byte, v interface{}) bool {
	bz := mustGet(s, key)
	if bz == nil {
		return false
	}
	if err := k.cdc.Unmarshal(bz, v); err != nil {
		panic(fmt.Errorf("decode %x with %s codec: %w", key, k.cdc.Name(), err))
	}
	return true
}

func (k Keeper) save(s store.KVStore, key []byte, v interface{}) {
	bz, err := k.cdc.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("encode %T with %s codec: %w", v, k.cdc.Name(), err))
	}
	mustSet(s, key, bz)
}

func mustGet(s store.KVStore, key []byte) []byte {
	bz, err := s.Get(key)
	if err != nil {
		panic(err)
	}
	return bz
}

func mustHas(s store.KVStore, key []byte) bool {
	ok, err := s.Has(key)
	if err != nil {
		panic(err)
	}
	return ok
}

func mustSet(s store.KVStore, key, value []byte) {
	if err := s.Set(key, value); err != nil {
		panic(err)
	}
}

func mustDelete(s store.KVStore, key []byte) {
	if err := s.Delete(key); err != nil {
		panic(err)
	}
}

func mustIterate(s store.KVStore, prefix []byte, fn func(key, value []byte) bool) {
	if err := s.Iterate(prefix, fn); err != nil {
		panic(err)
	}
}

func getUint64(s store.KVStore, key []byte) (uint64, bool) {
	bz := mustGet(s, key)
	if len(bz) != 8 {
		return 0, false
	}
	return binary.BigEndian.Uint64(bz), true
}

func setUint64(s store.KVStore, key []byte, v uint64) {
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, v)
	mustSet(s, key, bz)
}
