package zkp

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
)

// EqualityProof is a single non-interactive Sigma-protocol proof that an
// ElGamal ciphertext and a Pedersen commitment bind the same value, over
// the joint witness (v, k, r).
type EqualityProof struct {
	R1 bn254.G1Affine
	R2 bn254.G1Affine
	R3 bn254.G1Affine
	Sv *big.Int
	Se *big.Int
	Sp *big.Int
}

// CreateEqualityProof proves that ciphertext = Enc(v, pk, k) and
// commitment = Commit(v, r) hide the same v.
func (c *CryptoContext) CreateEqualityProof(v, k, r *big.Int, pk *bn254.G1Affine, ciphertext *Ciphertext, commitment *Commitment) (*EqualityProof, error) {
	rv, err := RandomScalar()
	if err != nil {
		return nil, err
	}
	re, err := RandomScalar()
	if err != nil {
		return nil, err
	}
	rp, err := RandomScalar()
	if err != nil {
		return nil, err
	}

	r1 := c.MulG(re)
	rvG := c.MulG(rv)
	rePk := c.ScalarMulPoint(pk, re)
	r2 := AddPoints(&rvG, &rePk)
	rpH := c.MulH(rp)
	r3 := AddPoints(&rvG, &rpH)

	challenge := c.equalityChallenge(pk, ciphertext, commitment, &r1, &r2, &r3)

	sv := c.ScalarAdd(rv, c.ScalarMul(challenge, v))
	se := c.ScalarAdd(re, c.ScalarMul(challenge, k))
	sp := c.ScalarAdd(rp, c.ScalarMul(challenge, r))

	return &EqualityProof{R1: r1, R2: r2, R3: r3, Sv: sv, Se: se, Sp: sp}, nil
}

// VerifyEqualityProof reconstructs R1, R2, R3 from the responses and the
// public statement and compares against the proof's commitments.
func (c *CryptoContext) VerifyEqualityProof(pk *bn254.G1Affine, ciphertext *Ciphertext, commitment *Commitment, p *EqualityProof) bool {
	if p == nil || p.Sv == nil || p.Se == nil || p.Sp == nil {
		return false
	}
	challenge := c.equalityChallenge(pk, ciphertext, commitment, &p.R1, &p.R2, &p.R3)

	seG := c.MulG(p.Se)
	cC1 := c.ScalarMulPoint(&ciphertext.C1, challenge)
	expectedR1 := SubPoints(&seG, &cC1)
	if !expectedR1.Equal(&p.R1) {
		return false
	}

	svG := c.MulG(p.Sv)
	sePk := c.ScalarMulPoint(pk, p.Se)
	lhs2 := AddPoints(&svG, &sePk)
	cC2 := c.ScalarMulPoint(&ciphertext.C2, challenge)
	expectedR2 := SubPoints(&lhs2, &cC2)
	if !expectedR2.Equal(&p.R2) {
		return false
	}

	spH := c.MulH(p.Sp)
	lhs3 := AddPoints(&svG, &spH)
	cCommit := c.ScalarMulPoint(&commitment.Point, challenge)
	expectedR3 := SubPoints(&lhs3, &cCommit)
	return expectedR3.Equal(&p.R3)
}

// EqualityProofJSON is the wire form of an EqualityProof.
type EqualityProofJSON struct {
	R1 PointJSON `json:"r1"`
	R2 PointJSON `json:"r2"`
	R3 PointJSON `json:"r3"`
	Sv string    `json:"sv"`
	Se string    `json:"se"`
	Sp string    `json:"sp"`
}

// ToJSON serializes an EqualityProof.
func (c *CryptoContext) EqualityProofToJSON(p *EqualityProof) EqualityProofJSON {
	return EqualityProofJSON{
		R1: c.ToJSON(&p.R1),
		R2: c.ToJSON(&p.R2),
		R3: c.ToJSON(&p.R3),
		Sv: p.Sv.String(),
		Se: p.Se.String(),
		Sp: p.Sp.String(),
	}
}

// EqualityProofFromJSON reconstructs an EqualityProof from its wire form.
func (c *CryptoContext) EqualityProofFromJSON(pj EqualityProofJSON) (*EqualityProof, error) {
	r1, err := c.FromJSON(pj.R1)
	if err != nil {
		return nil, err
	}
	r2, err := c.FromJSON(pj.R2)
	if err != nil {
		return nil, err
	}
	r3, err := c.FromJSON(pj.R3)
	if err != nil {
		return nil, err
	}
	sv, ok := new(big.Int).SetString(pj.Sv, 10)
	if !ok {
		return nil, ErrInvalidProof
	}
	se, ok := new(big.Int).SetString(pj.Se, 10)
	if !ok {
		return nil, ErrInvalidProof
	}
	sp, ok := new(big.Int).SetString(pj.Sp, 10)
	if !ok {
		return nil, ErrInvalidProof
	}
	return &EqualityProof{R1: r1, R2: r2, R3: r3, Sv: sv, Se: se, Sp: sp}, nil
}

func (c *CryptoContext) equalityChallenge(pk *bn254.G1Affine, ct *Ciphertext, commitment *Commitment, r1, r2, r3 *bn254.G1Affine) *big.Int {
	pkj := c.ToJSON(pk)
	c1j := c.ToJSON(&ct.C1)
	c2j := c.ToJSON(&ct.C2)
	cj := c.ToJSON(&commitment.Point)
	r1j := c.ToJSON(r1)
	r2j := c.ToJSON(r2)
	r3j := c.ToJSON(r3)
	return HashToScalar(c.Order,
		[]byte(pkj.X), []byte(pkj.Y),
		[]byte(c1j.X), []byte(c1j.Y),
		[]byte(c2j.X), []byte(c2j.Y),
		[]byte(cj.X), []byte(cj.Y),
		[]byte(r1j.X), []byte(r1j.Y),
		[]byte(r2j.X), []byte(r2j.Y),
		[]byte(r3j.X), []byte(r3j.Y),
	)
}
