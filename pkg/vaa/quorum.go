package vaa

// CalculateQuorum returns the minimum number of guardians that need to sign a VAA for a given guardian set.
//
// This needs to match the calculation in the core bridge contracts.
func CalculateQuorum(numGuardians int) int {
	if numGuardians < 0 {
		panic("Invalid numGuardians is less than zero")
	}
	return ((numGuardians * 2) / 3) + 1
}
