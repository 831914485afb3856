package cosmwasm

import (
	wasmvmtypes "github.com/CosmWasm/wasmvm/types"

	"github.com/ramboll-max/wormhole/pkg/store"
)

// vmStore exposes the contract storage handed over by the VM as a store.KVStore.
type vmStore struct {
	kv wasmvmtypes.KVStore
}

var _ store.KVStore = vmStore{}

func (s vmStore) Get(key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, store.ErrEmptyKey
	}
	return s.kv.Get(key), nil
}

func (s vmStore) Has(key []byte) (bool, error) {
	v, err := s.Get(key)
	return v != nil, err
}

func (s vmStore) Set(key, value []byte) error {
	if len(key) == 0 {
		return store.ErrEmptyKey
	}
	if value == nil {
		return store.ErrNilValue
	}
	s.kv.Set(key, value)
	return nil
}

func (s vmStore) Delete(key []byte) error {
	if len(key) == 0 {
		return store.ErrEmptyKey
	}
	s.kv.Delete(key)
	return nil
}

func (s vmStore) Iterate(prefix []byte, fn func(key, value []byte) bool) error {
	start := prefix
	if len(start) == 0 {
		start = nil
	}
	it := s.kv.Iterator(start, store.PrefixEnd(prefix))
	defer it.Close()
	for ; it.Valid(); it.Next() {
		if !fn(it.Key(), it.Value()) {
			break
		}
	}
	return it.Error()
}
