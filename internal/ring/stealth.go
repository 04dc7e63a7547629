package ring

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"

	"github.com/ccoin/veil/internal/zkp"
)

// GenerateStealthAddress derives a one-time (R, P) pair for sending to a
// recipient's dual view/spend keys: R = r*G is published with the
// transaction, P = h*G + spendPk is the one-time destination, where
// h = H((r*viewPk).x) mod q is a shared secret only the recipient (holding
// viewSk) can reconstruct.
func GenerateStealthAddress(ctx *zkp.CryptoContext, recipientViewPk, recipientSpendPk *bn254.G1Affine) (bn254.G1Affine, bn254.G1Affine, error) {
	r, err := zkp.RandomScalar()
	if err != nil {
		return bn254.G1Affine{}, bn254.G1Affine{}, err
	}
	R := ctx.MulG(r)

	sharedSecret := ctx.ScalarMulPoint(recipientViewPk, r)
	h := stealthHash(ctx, &sharedSecret)

	hG := ctx.MulG(h)
	P := zkp.AddPoints(&hG, recipientSpendPk)

	return R, P, nil
}

// RecoverStealthAddress reports whether the stealth output (R, P) belongs
// to the holder of viewSk and spendPk, by recomputing the shared secret as
// viewSk*R and checking P == h*G + spendPk.
func RecoverStealthAddress(ctx *zkp.CryptoContext, R, P bn254.G1Affine, viewSk *big.Int, spendPk *bn254.G1Affine) bool {
	sharedSecret := ctx.ScalarMulPoint(&R, viewSk)
	h := stealthHash(ctx, &sharedSecret)

	hG := ctx.MulG(h)
	expectedP := zkp.AddPoints(&hG, spendPk)

	return expectedP.Equal(&P)
}

// RecoverStealthSecret derives the one-time secret key x = h + spendSk mod
// q for a stealth output (R, P) addressed to (viewSk, spendSk), where h is
// the same shared-secret scalar RecoverStealthAddress checks against. The
// caller should confirm ownership via RecoverStealthAddress first; spending
// against a key derived for the wrong output just produces an unusable x.
func RecoverStealthSecret(ctx *zkp.CryptoContext, R bn254.G1Affine, viewSk, spendSk *big.Int) *big.Int {
	sharedSecret := ctx.ScalarMulPoint(&R, viewSk)
	h := stealthHash(ctx, &sharedSecret)
	return ctx.ScalarAdd(h, spendSk)
}

// stealthHash derives h = H(sharedSecret.x) mod q, the scalar binding a
// stealth destination to its shared secret.
func stealthHash(ctx *zkp.CryptoContext, sharedSecret *bn254.G1Affine) *big.Int {
	xj := ctx.ToJSON(sharedSecret)
	return zkp.HashToScalar(ctx.Order, []byte(xj.X))
}
