package devnet

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/ramboll-max/wormhole/pkg/vaa"
)

// Emitter simulates a contract on another chain emitting messages. Each
// message gets the next sequence of the emitter.
type Emitter struct {
	Chain   vaa.ChainID
	Address vaa.Address

	clock    clock.Clock
	mu       sync.Mutex
	sequence uint64
}

func NewEmitter(chain vaa.ChainID, address vaa.Address, clk clock.Clock) *Emitter {
	return &Emitter{Chain: chain, Address: address, clock: clk}
}

// GovernanceEmitter emits governance messages.
func GovernanceEmitter(clk clock.Clock) *Emitter {
	return NewEmitter(vaa.GovernanceChain, vaa.GovernanceEmitter, clk)
}

// Emit returns an unsigned VAA carrying payload.
func (e *Emitter) Emit(payload []byte, nonce uint32) *vaa.VAA {
	e.mu.Lock()
	seq := e.sequence
	e.sequence++
	e.mu.Unlock()

	return &vaa.VAA{
		Version:          vaa.SupportedVAAVersion,
		Timestamp:        e.clock.Now().Truncate(time.Second),
		Nonce:            nonce,
		Sequence:         seq,
		ConsistencyLevel: 32,
		EmitterChain:     e.Chain,
		EmitterAddress:   e.Address,
		Payload:          payload,
	}
}
