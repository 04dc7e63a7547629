package zkp

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
)

// Commitment is a Pedersen commitment C = v*G + r*H. Binding under
// discrete-log hardness in the group; perfectly hiding over a uniform
// blinder.
type Commitment struct {
	Point bn254.G1Affine
}

// Commit computes C(v, r) = v*G + r*H.
func (c *CryptoContext) Commit(value, blinder *big.Int) (*Commitment, error) {
	if value == nil || blinder == nil {
		return nil, ErrInvalidValue
	}
	vG := c.MulG(value)
	rH := c.MulH(blinder)
	point := AddPoints(&vG, &rH)
	return &Commitment{Point: point}, nil
}

// CommitRandom commits to value with a freshly sampled blinder, returning
// both the commitment and the blinder (the caller must retain the blinder
// to open or prove against the commitment later).
func (c *CryptoContext) CommitRandom(value *big.Int) (*Commitment, *big.Int, error) {
	blinder, err := RandomScalar()
	if err != nil {
		return nil, nil, err
	}
	commitment, err := c.Commit(value, blinder)
	if err != nil {
		return nil, nil, err
	}
	return commitment, blinder, nil
}

// VerifyOpening checks that the commitment opens to (value, blinder).
func (c *CryptoContext) VerifyOpening(commitment *Commitment, value, blinder *big.Int) bool {
	expected, err := c.Commit(value, blinder)
	if err != nil {
		return false
	}
	return commitment.Point.Equal(&expected.Point)
}

// Add returns the homomorphic sum of two commitments: C(a,r1)+C(b,r2) =
// C(a+b, r1+r2).
func (c *Commitment) Add(other *Commitment) *Commitment {
	return &Commitment{Point: AddPoints(&c.Point, &other.Point)}
}

// Sub returns the homomorphic difference of two commitments.
func (c *Commitment) Sub(other *Commitment) *Commitment {
	return &Commitment{Point: SubPoints(&c.Point, &other.Point)}
}

// Equal reports whether two commitments are the same curve point.
func (c *Commitment) Equal(other *Commitment) bool {
	return c.Point.Equal(&other.Point)
}

// ToJSON serializes the commitment point for canonical transaction encoding.
func (c *Commitment) ToJSON(ctx *CryptoContext) PointJSON {
	return ctx.ToJSON(&c.Point)
}

// CommitmentFromJSON reconstructs a commitment from its wire form.
func CommitmentFromJSON(ctx *CryptoContext, pj PointJSON) (*Commitment, error) {
	p, err := ctx.FromJSON(pj)
	if err != nil {
		return nil, err
	}
	return &Commitment{Point: p}, nil
}
