package keeper

import (
	"github.com/ramboll-max/wormhole/pkg/vaa"
	"github.com/ramboll-max/wormhole/x/tokenbridge/types"
)

// GuardianVerifier verifies VAAs against a guardian set store at the block
// time of the context.
type GuardianVerifier struct {
	verifier *vaa.Verifier
}

var _ types.VAAVerifier = GuardianVerifier{}

func NewGuardianVerifier(sets vaa.GuardianSetStore) GuardianVerifier {
	return GuardianVerifier{verifier: vaa.NewVerifier(sets)}
}

func (g GuardianVerifier) VerifyVAA(ctx types.Context, data []byte) (*vaa.VAA, error) {
	return g.verifier.ParseAndVerify(data, ctx.BlockTime())
}
