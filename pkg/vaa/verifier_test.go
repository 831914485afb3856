package vaa

import (
	"crypto/ecdsa"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKeys(t *testing.T, n int) []*ecdsa.PrivateKey {
	t.Helper()
	keys := make([]*ecdsa.PrivateKey, n)
	for i := range keys {
		k, err := crypto.GenerateKey()
		require.NoError(t, err)
		keys[i] = k
	}
	return keys
}

func TestCalculateQuorum(t *testing.T) {
	tests := []struct{ guardians, quorum int }{
		{0, 1}, {1, 1}, {2, 2}, {3, 3}, {4, 3}, {5, 4}, {6, 5}, {7, 5}, {19, 13},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.quorum, CalculateQuorum(tc.guardians))
	}
	assert.Panics(t, func() { CalculateQuorum(-1) })
}

func TestVerifier(t *testing.T) {
	keys := generateKeys(t, 4)
	now := time.Unix(1_700_000_000, 0)

	active := NewGuardianSet(1, keys...)
	expired := NewGuardianSet(0, keys...)
	expired.ExpirationTime = uint64(now.Unix()) - 1
	verifier := NewVerifier(NewGuardianSets(active, expired))

	tests := []struct {
		label   string
		gsIndex uint32
		signers []int
		err     error
	}{
		{label: "quorum", gsIndex: 1, signers: []int{0, 1, 2}},
		{label: "all", gsIndex: 1, signers: []int{0, 1, 2, 3}},
		{label: "unknown set", gsIndex: 7, signers: []int{0, 1, 2}, err: ErrGuardianSetNotFound},
		{label: "expired set", gsIndex: 0, signers: []int{0, 1, 2}, err: ErrGuardianSetExpired},
		{label: "no quorum", gsIndex: 1, signers: []int{0, 1}, err: ErrNoQuorum},
		{label: "non monotonic", gsIndex: 1, signers: []int{1, 0, 2}, err: ErrSignerOrder},
		{label: "duplicate index", gsIndex: 1, signers: []int{0, 0, 2}, err: ErrSignerOrder},
	}

	for _, tc := range tests {
		t.Run(tc.label, func(t *testing.T) {
			v := getVaa()
			v.GuardianSetIndex = tc.gsIndex
			for _, i := range tc.signers {
				v.AddSignature(keys[i], uint8(i))
			}
			raw, err := v.Marshal()
			require.NoError(t, err)

			parsed, err := verifier.ParseAndVerify(raw, now)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, v.HexDigest(), parsed.HexDigest())
		})
	}
}

func TestVerifierWrongKey(t *testing.T) {
	keys := generateKeys(t, 4)
	verifier := NewVerifier(NewGuardianSets(NewGuardianSet(1, keys...)))

	v := getVaa()
	v.AddSignature(keys[0], 0)
	v.AddSignature(keys[1], 1)
	// signed by guardian 3 but claims index 2
	v.AddSignature(keys[3], 2)

	err := verifier.Verify(&v, time.Now())
	assert.ErrorIs(t, err, ErrSignaturesInvalid)
	assert.False(t, v.VerifySignatures(NewGuardianSet(1, keys...).Keys))
}

func TestGuardianSetKeyIndex(t *testing.T) {
	keys := generateKeys(t, 2)
	gs := NewGuardianSet(0, keys...)

	idx, ok := gs.KeyIndex(crypto.PubkeyToAddress(keys[1].PublicKey))
	assert.True(t, ok)
	assert.Equal(t, 1, idx)

	other := generateKeys(t, 1)[0]
	idx, ok = gs.KeyIndex(crypto.PubkeyToAddress(other.PublicKey))
	assert.False(t, ok)
	assert.Equal(t, -1, idx)
	assert.Len(t, gs.KeysAsHexStrings(), 2)
}
