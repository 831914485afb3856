// Package store holds the key-value plumbing the bridge state is kept in.
//
// Every backend implements KVStore. Callers group the writes of one
// operation in a Cache and only Write it back when the operation succeeds.
package store

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ErrEmptyKey  = errors.New("store: empty key")
	ErrNilValue  = errors.New("store: nil value")
	ErrClosed    = errors.New("store: closed")
	ErrNoBackend = errors.New("store: unknown backend")
)

var storeWritesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tokenbridge_store_writes_total",
		Help: "Total number of key writes and deletes flushed to a store backend",
	}, []string{"backend"})

// KVStore is an ordered key-value store. Get returns a nil value and no
// error for a missing key.
type KVStore interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	// Iterate calls fn in ascending key order for every key starting with
	// prefix until fn returns false.
	Iterate(prefix []byte, fn func(key, value []byte) bool) error
}

// Backend names accepted by Open.
const (
	BackendMemory  = "memdb"
	BackendLevelDB = "goleveldb"
	BackendBadger  = "badger"
)

// Closer is implemented by stores that hold resources.
type Closer interface {
	Close() error
}

// Open opens a persistent or in-memory backend by name.
func Open(backend, name, dir string) (KVStore, error) {
	switch backend {
	case BackendMemory:
		return NewMemStore(), nil
	case BackendLevelDB:
		return NewLevelDBStore(name, dir)
	case BackendBadger:
		return OpenBadger(dir)
	default:
		return nil, ErrNoBackend
	}
}

func validate(key, value []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	if value == nil {
		return ErrNilValue
	}
	return nil
}

// PrefixEnd returns the smallest key greater than every key with the given prefix,
// or nil when no such key exists.
func PrefixEnd(prefix []byte) []byte {
	if len(prefix) == 0 {
		return nil
	}
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
