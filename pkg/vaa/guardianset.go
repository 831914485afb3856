package vaa

import (
	"crypto/ecdsa"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

type GuardianSet struct {
	// Guardian's public key hashes truncated by the ETH standard hashing mechanism (20 bytes).
	Keys []common.Address
	// On-chain set index
	Index uint32
	// ExpirationTime in unix seconds; zero means the set never expires.
	ExpirationTime uint64
}

// NewGuardianSet derives the guardian addresses from keys.
func NewGuardianSet(index uint32, keys ...*ecdsa.PrivateKey) *GuardianSet {
	gs := &GuardianSet{Index: index, Keys: make([]common.Address, len(keys))}
	for i, k := range keys {
		gs.Keys[i] = crypto.PubkeyToAddress(k.PublicKey)
	}
	return gs
}

func (g *GuardianSet) KeysAsHexStrings() []string {
	r := make([]string, len(g.Keys))

	for n, k := range g.Keys {
		r[n] = k.Hex()
	}

	return r
}

// KeyIndex returns a given address index from the guardian set. Returns (-1, false)
// if the address wasn't found and (addr, true) otherwise.
func (g *GuardianSet) KeyIndex(addr common.Address) (int, bool) {
	for n, k := range g.Keys {
		if k == addr {
			return n, true
		}
	}

	return -1, false
}

// Quorum returns the number of signatures needed for this set.
func (g *GuardianSet) Quorum() int {
	return CalculateQuorum(len(g.Keys))
}

// Expired reports whether the set has expired at now.
func (g *GuardianSet) Expired(now time.Time) bool {
	return 0 < g.ExpirationTime && g.ExpirationTime < uint64(now.Unix())
}

// GuardianSetStore resolves a guardian set by index.
type GuardianSetStore interface {
	GuardianSet(index uint32) (*GuardianSet, bool)
}

// GuardianSets is an in-memory GuardianSetStore.
type GuardianSets struct {
	mu   sync.RWMutex
	sets map[uint32]*GuardianSet
}

func NewGuardianSets(sets ...*GuardianSet) *GuardianSets {
	s := &GuardianSets{sets: map[uint32]*GuardianSet{}}
	for _, gs := range sets {
		s.Set(gs)
	}
	return s
}

func (s *GuardianSets) Set(gs *GuardianSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets[gs.Index] = gs
}

func (s *GuardianSets) GuardianSet(index uint32) (*GuardianSet, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	gs, ok := s.sets[index]
	return gs, ok
}
