package store

import (
	dbm "github.com/cometbft/cometbft-db"
)

// DBStore adapts a cometbft-db database.
type DBStore struct {
	db      dbm.DB
	backend string
}

// NewMemStore returns a store over an in-memory cometbft-db MemDB.
func NewMemStore() *DBStore {
	return &DBStore{db: dbm.NewMemDB(), backend: BackendMemory}
}

// NewLevelDBStore opens (or creates) a goleveldb database named name in dir.
func NewLevelDBStore(name, dir string) (*DBStore, error) {
	db, err := dbm.NewDB(name, dbm.GoLevelDBBackend, dir)
	if err != nil {
		return nil, err
	}
	return &DBStore{db: db, backend: BackendLevelDB}, nil
}

func (s *DBStore) Get(key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}
	return s.db.Get(key)
}

func (s *DBStore) Has(key []byte) (bool, error) {
	if len(key) == 0 {
		return false, ErrEmptyKey
	}
	return s.db.Has(key)
}

func (s *DBStore) Set(key, value []byte) error {
	if err := validate(key, value); err != nil {
		return err
	}
	storeWritesTotal.WithLabelValues(s.backend).Inc()
	return s.db.Set(key, value)
}

func (s *DBStore) Delete(key []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	storeWritesTotal.WithLabelValues(s.backend).Inc()
	return s.db.Delete(key)
}

func (s *DBStore) Iterate(prefix []byte, fn func(key, value []byte) bool) error {
	start := prefix
	if len(start) == 0 {
		start = nil
	}
	it, err := s.db.Iterator(start, PrefixEnd(prefix))
	if err != nil {
		return err
	}
	defer it.Close()

	for ; it.Valid(); it.Next() {
		if !fn(it.Key(), it.Value()) {
			break
		}
	}
	return it.Error()
}

func (s *DBStore) Close() error {
	return s.db.Close()
}
