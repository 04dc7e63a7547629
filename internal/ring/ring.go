// Package ring implements linear (non-linkable) ring signatures and the
// dual view/spend stealth-address scheme used by the ring-variant
// transactions and wallets.
package ring

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"

	"github.com/ccoin/veil/internal/zkp"
)

// Signature is a linear ring signature (c0, s_0 .. s_{n-1}) over a public
// key list, hiding which member signed.
type Signature struct {
	C0 *big.Int
	S  []*big.Int
}

// Sign produces a ring signature over message for signerIndex within
// publicKeys:
//
//	seed the challenge one step ahead of the signer with a random nonce k,
//	walk the ring forward from signer+1 back around to signer, drawing a
//	fresh random s_i and deriving c_{i+1} at each non-signer member,
//	then close the ring at the signer: s_signer = k - x*c_signer mod q.
func Sign(ctx *zkp.CryptoContext, message []byte, signerIndex int, publicKeys []*bn254.G1Affine, signerKey *big.Int) (*Signature, error) {
	n := len(publicKeys)
	if n == 0 {
		return nil, zkp.ErrEmptyRing
	}
	if signerIndex < 0 || signerIndex >= n {
		return nil, zkp.ErrSignerIndex
	}

	messageHash := zkp.HashToScalar(ctx.Order, message)

	c := make([]*big.Int, n)
	s := make([]*big.Int, n)

	k, err := zkp.RandomScalar()
	if err != nil {
		return nil, err
	}
	signerPoint := ctx.MulG(k)
	c[(signerIndex+1)%n] = ringChallenge(ctx, signerIndex, messageHash, &signerPoint)

	for i := (signerIndex + 1) % n; i != signerIndex; i = (i + 1) % n {
		si, err := zkp.RandomScalar()
		if err != nil {
			return nil, err
		}
		s[i] = si

		sG := ctx.MulG(si)
		cPk := ctx.ScalarMulPoint(publicKeys[i], c[i])
		point := zkp.AddPoints(&sG, &cPk)
		c[(i+1)%n] = ringChallenge(ctx, i, messageHash, &point)
	}

	s[signerIndex] = ctx.ScalarSub(k, ctx.ScalarMul(signerKey, c[signerIndex]))

	return &Signature{C0: c[0], S: s}, nil
}

// Verify walks the ring recomputing each c_{i+1} and checks the ring closes
// (c[0] matches the included commitment). Linkability is not provided.
func Verify(ctx *zkp.CryptoContext, message []byte, publicKeys []*bn254.G1Affine, sig *Signature) bool {
	if sig == nil || sig.C0 == nil {
		return false
	}
	n := len(publicKeys)
	if n == 0 || len(sig.S) != n {
		return false
	}

	messageHash := zkp.HashToScalar(ctx.Order, message)

	c := make([]*big.Int, n)
	c[0] = sig.C0
	for i := 0; i < n; i++ {
		if sig.S[i] == nil {
			return false
		}
		sG := ctx.MulG(sig.S[i])
		cPk := ctx.ScalarMulPoint(publicKeys[i], c[i])
		point := zkp.AddPoints(&sG, &cPk)
		next := ringChallenge(ctx, i, messageHash, &point)
		c[(i+1)%n] = next
	}

	return c[0].Cmp(sig.C0) == 0
}

// SignatureJSON is the wire form of a ring Signature.
type SignatureJSON struct {
	C0 string   `json:"c0"`
	S  []string `json:"s"`
}

// ToJSON serializes a ring signature.
func (sig *Signature) ToJSON() SignatureJSON {
	s := make([]string, len(sig.S))
	for i, si := range sig.S {
		s[i] = si.String()
	}
	return SignatureJSON{C0: sig.C0.String(), S: s}
}

// SignatureFromJSON reconstructs a ring signature from its wire form.
func SignatureFromJSON(sj SignatureJSON) (*Signature, error) {
	c0, ok := new(big.Int).SetString(sj.C0, 10)
	if !ok {
		return nil, zkp.ErrInvalidProof
	}
	s := make([]*big.Int, len(sj.S))
	for i, si := range sj.S {
		v, ok := new(big.Int).SetString(si, 10)
		if !ok {
			return nil, zkp.ErrInvalidProof
		}
		s[i] = v
	}
	return &Signature{C0: c0, S: s}, nil
}

func ringChallenge(ctx *zkp.CryptoContext, index int, messageHash *big.Int, point *bn254.G1Affine) *big.Int {
	pj := ctx.ToJSON(point)
	indexBytes := big.NewInt(int64(index)).Bytes()
	return zkp.HashToScalar(ctx.Order, indexBytes, []byte(messageHash.String()), []byte(pj.X))
}
