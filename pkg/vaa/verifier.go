package vaa

import (
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	ErrGuardianSetNotFound = errors.New("guardian set not found")
	ErrGuardianSetExpired  = errors.New("guardian set expired")
	ErrNoQuorum            = errors.New("no quorum")
	ErrSignerOrder         = errors.New("guardian signatures are not in strictly increasing order")
	ErrSignaturesInvalid   = errors.New("invalid signatures")
)

// Verifier checks guardian signatures against a GuardianSetStore.
type Verifier struct {
	sets GuardianSetStore
}

func NewVerifier(sets GuardianSetStore) *Verifier {
	return &Verifier{sets: sets}
}

// ParseAndVerify unmarshals data and verifies it at block time now.
func (vr *Verifier) ParseAndVerify(data []byte, now time.Time) (*VAA, error) {
	v, err := Unmarshal(data)
	if err != nil {
		return nil, err
	}
	if err := vr.Verify(v, now); err != nil {
		return nil, err
	}
	return v, nil
}

// Verify checks the guardian set expiry, quorum and every signature of v.
func (vr *Verifier) Verify(v *VAA, now time.Time) error {
	guardianSet, exists := vr.sets.GuardianSet(v.GuardianSetIndex)
	if !exists {
		return fmt.Errorf("%w: %d", ErrGuardianSetNotFound, v.GuardianSetIndex)
	}

	if guardianSet.Expired(now) {
		return ErrGuardianSetExpired
	}

	if len(v.Signatures) < guardianSet.Quorum() {
		return ErrNoQuorum
	}

	return verifySignatures(v.SigningDigest().Bytes(), v.Signatures, guardianSet.Keys)
}

// VerifySignatures reports whether all signatures of v are valid for addresses.
func (v *VAA) VerifySignatures(addresses []common.Address) bool {
	return verifySignatures(v.SigningDigest().Bytes(), v.Signatures, addresses) == nil
}

func verifySignature(digest []byte, signature *Signature, address common.Address) bool {
	pubKey, err := crypto.Ecrecover(digest, signature.Signature[:])
	if err != nil {
		return false
	}
	addr := common.BytesToAddress(crypto.Keccak256(pubKey[1:])[12:])

	return addr == address
}

func verifySignatures(digest []byte, signatures []*Signature, addresses []common.Address) error {
	if len(addresses) < len(signatures) {
		return ErrSignaturesInvalid
	}

	lastIndex := -1
	seen := map[common.Address]struct{}{}

	for _, sig := range signatures {
		if int(sig.Index) >= len(addresses) {
			return fmt.Errorf("%w: guardian index %d out of range", ErrSignaturesInvalid, sig.Index)
		}

		if int(sig.Index) <= lastIndex {
			return ErrSignerOrder
		}
		lastIndex = int(sig.Index)

		addr := addresses[sig.Index]
		if !verifySignature(digest, sig, addr) {
			return fmt.Errorf("%w: guardian %d", ErrSignaturesInvalid, sig.Index)
		}

		if _, dup := seen[addr]; dup {
			return fmt.Errorf("%w: duplicate signer %s", ErrSignaturesInvalid, addr.Hex())
		}
		seen[addr] = struct{}{}
	}

	return nil
}
