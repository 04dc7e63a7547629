package state

import (
	"crypto/rand"
	"math/big"
)

// cryptoRandIntn returns a uniform random integer in [0, n) using a
// cryptographically secure source, matching the module's PRNG requirement
// for every scalar/index sampling path.
func cryptoRandIntn(n int) int {
	if n <= 0 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}
