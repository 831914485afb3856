package store

// PrefixStore scopes every key of a parent store under a fixed prefix.
type PrefixStore struct {
	parent KVStore
	prefix []byte
}

func NewPrefixStore(parent KVStore, prefix []byte) PrefixStore {
	return PrefixStore{parent: parent, prefix: append([]byte{}, prefix...)}
}

func (s PrefixStore) key(key []byte) []byte {
	k := make([]byte, 0, len(s.prefix)+len(key))
	k = append(k, s.prefix...)
	return append(k, key...)
}

func (s PrefixStore) Get(key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}
	return s.parent.Get(s.key(key))
}

func (s PrefixStore) Has(key []byte) (bool, error) {
	if len(key) == 0 {
		return false, ErrEmptyKey
	}
	return s.parent.Has(s.key(key))
}

func (s PrefixStore) Set(key, value []byte) error {
	if err := validate(key, value); err != nil {
		return err
	}
	return s.parent.Set(s.key(key), value)
}

func (s PrefixStore) Delete(key []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	return s.parent.Delete(s.key(key))
}

// Iterate yields keys with the store prefix stripped.
func (s PrefixStore) Iterate(prefix []byte, fn func(key, value []byte) bool) error {
	n := len(s.prefix)
	return s.parent.Iterate(s.key(prefix), func(key, value []byte) bool {
		return fn(key[n:], value)
	})
}
