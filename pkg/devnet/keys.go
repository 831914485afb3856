// Package devnet contains an in-process deterministic devnet for the token
// bridge: guardian keys, a token ledger and a host that carries out the
// instructions the bridge returns.
package devnet

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	mathrand "math/rand"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/ramboll-max/wormhole/pkg/vaa"
)

// InsecureDeterministicEcdsaKeyByIndex generates a deterministic ecdsa.PrivateKey from a given index.
func InsecureDeterministicEcdsaKeyByIndex(c elliptic.Curve, idx uint64) *ecdsa.PrivateKey {
	// use 555 as offset to deterministically generate key 0 to match vaa-test such that
	// we generate the same key.
	r := mathrand.New(mathrand.NewSource(int64(555 + idx))) //#nosec G404 Testnet/devnet keys are not secret.
	key, err := ecdsa.GenerateKey(c, r)
	if err != nil {
		panic(err)
	}

	return key
}

// Guardians is a devnet guardian set together with its private keys.
type Guardians struct {
	Index uint32
	Keys  []*ecdsa.PrivateKey
}

// NewGuardians returns n deterministic guardians for set index.
func NewGuardians(index uint32, n int) *Guardians {
	g := &Guardians{Index: index, Keys: make([]*ecdsa.PrivateKey, n)}
	for i := range g.Keys {
		g.Keys[i] = InsecureDeterministicEcdsaKeyByIndex(crypto.S256(), uint64(i))
	}
	return g
}

func (g *Guardians) GuardianSet() *vaa.GuardianSet {
	return vaa.NewGuardianSet(g.Index, g.Keys...)
}

// Sign adds a quorum of signatures to v, in guardian index order, and
// returns the serialized VAA.
func (g *Guardians) Sign(v *vaa.VAA) []byte {
	v.GuardianSetIndex = g.Index
	v.Signatures = nil
	for i := 0; i < vaa.CalculateQuorum(len(g.Keys)); i++ {
		v.AddSignature(g.Keys[i], uint8(i))
	}
	data, err := v.Marshal()
	if err != nil {
		panic(err)
	}
	return data
}
