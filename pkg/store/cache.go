package store

import (
	"bytes"
	"sort"
)

// Cache buffers writes on top of a parent store. Nothing reaches the parent
// until Write is called; dropping the Cache discards the buffered writes.
type Cache struct {
	parent KVStore
	// a nil value marks a delete
	dirty map[string][]byte
}

func NewCache(parent KVStore) *Cache {
	return &Cache{parent: parent, dirty: map[string][]byte{}}
}

func (c *Cache) Get(key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}
	if v, ok := c.dirty[string(key)]; ok {
		return v, nil
	}
	return c.parent.Get(key)
}

func (c *Cache) Has(key []byte) (bool, error) {
	v, err := c.Get(key)
	return v != nil, err
}

func (c *Cache) Set(key, value []byte) error {
	if err := validate(key, value); err != nil {
		return err
	}
	c.dirty[string(key)] = append([]byte{}, value...)
	return nil
}

func (c *Cache) Delete(key []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	c.dirty[string(key)] = nil
	return nil
}

func (c *Cache) Iterate(prefix []byte, fn func(key, value []byte) bool) error {
	merged := map[string][]byte{}
	err := c.parent.Iterate(prefix, func(key, value []byte) bool {
		merged[string(key)] = value
		return true
	})
	if err != nil {
		return err
	}
	for k, v := range c.dirty {
		if bytes.HasPrefix([]byte(k), prefix) {
			merged[k] = v
		}
	}

	keys := make([]string, 0, len(merged))
	for k, v := range merged {
		if v != nil {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		if !fn([]byte(k), merged[k]) {
			break
		}
	}
	return nil
}

// Write flushes the buffered writes to the parent in key order and resets the cache.
func (c *Cache) Write() error {
	keys := make([]string, 0, len(c.dirty))
	for k := range c.dirty {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := c.dirty[k]
		var err error
		if v == nil {
			err = c.parent.Delete([]byte(k))
		} else {
			err = c.parent.Set([]byte(k), v)
		}
		if err != nil {
			return err
		}
	}
	c.dirty = map[string][]byte{}
	return nil
}

// Discard drops the buffered writes.
func (c *Cache) Discard() {
	c.dirty = map[string][]byte{}
}
