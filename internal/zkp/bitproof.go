package zkp

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
)

// BitProof is a non-interactive OR-proof that a Pedersen commitment
// C = b*G + r*H opens to b=0 or b=1, without revealing which.
type BitProof struct {
	C  Commitment
	T0 bn254.G1Affine
	T1 bn254.G1Affine
	C0 *big.Int
	C1 *big.Int
	S0 *big.Int
	S1 *big.Int
}

// CreateBitProof proves that commitment opens to bit with blinder r.
func (c *CryptoContext) CreateBitProof(bit uint, r *big.Int) (*BitProof, error) {
	if bit != 0 && bit != 1 {
		return nil, ErrOutOfRange
	}
	commitment, err := c.Commit(big.NewInt(int64(bit)), r)
	if err != nil {
		return nil, err
	}

	w, err := RandomScalar()
	if err != nil {
		return nil, err
	}

	var tHonest bn254.G1Affine
	tHonest = c.MulH(w)

	// Simulate the other side: sample its challenge and response, then
	// invert the verification equation to find its commitment.
	otherChallenge, err := RandomScalar()
	if err != nil {
		return nil, err
	}
	otherResponse, err := RandomScalar()
	if err != nil {
		return nil, err
	}

	var tOther bn254.G1Affine
	if bit == 0 {
		// Other side is bit=1: verify eq is t1 = s1*H - c1*(C-G).
		cMinusG := SubPoints(&commitment.Point, &c.G)
		sH := c.MulH(otherResponse)
		cTerm := c.ScalarMulPoint(&cMinusG, otherChallenge)
		tOther = SubPoints(&sH, &cTerm)
	} else {
		// Other side is bit=0: verify eq is t0 = s0*H - c0*C.
		sH := c.MulH(otherResponse)
		cTerm := c.ScalarMulPoint(&commitment.Point, otherChallenge)
		tOther = SubPoints(&sH, &cTerm)
	}

	var t0, t1 bn254.G1Affine
	if bit == 0 {
		t0, t1 = tHonest, tOther
	} else {
		t0, t1 = tOther, tHonest
	}

	challenge := c.bitChallenge(&commitment.Point, &t0, &t1)

	var c0, c1, s0, s1 *big.Int
	if bit == 0 {
		c1 = otherChallenge
		c0 = c.ScalarSub(challenge, c1)
		s1 = otherResponse
		s0 = c.ScalarAdd(w, c.ScalarMul(c0, r))
	} else {
		c0 = otherChallenge
		c1 = c.ScalarSub(challenge, c0)
		s0 = otherResponse
		s1 = c.ScalarAdd(w, c.ScalarMul(c1, r))
	}

	return &BitProof{
		C:  *commitment,
		T0: t0, T1: t1,
		C0: c0, C1: c1,
		S0: s0, S1: s1,
	}, nil
}

// VerifyBitProof checks an OR-proof: c0+c1 == H(C,t0,t1), and the two
// reconstruction equations t0 == s0*H - c0*C, t1 == s1*H - c1*(C-G).
func (c *CryptoContext) VerifyBitProof(p *BitProof) bool {
	if p == nil || p.C0 == nil || p.C1 == nil || p.S0 == nil || p.S1 == nil {
		return false
	}

	challenge := c.bitChallenge(&p.C.Point, &p.T0, &p.T1)
	sum := c.ScalarAdd(p.C0, p.C1)
	if sum.Cmp(challenge) != 0 {
		return false
	}

	s0H := c.MulH(p.S0)
	c0C := c.ScalarMulPoint(&p.C.Point, p.C0)
	expectedT0 := SubPoints(&s0H, &c0C)
	if !expectedT0.Equal(&p.T0) {
		return false
	}

	cMinusG := SubPoints(&p.C.Point, &c.G)
	s1H := c.MulH(p.S1)
	c1C := c.ScalarMulPoint(&cMinusG, p.C1)
	expectedT1 := SubPoints(&s1H, &c1C)
	return expectedT1.Equal(&p.T1)
}

// BitProofJSON is the wire form of a BitProof.
type BitProofJSON struct {
	C  PointJSON `json:"c"`
	T0 PointJSON `json:"t0"`
	T1 PointJSON `json:"t1"`
	C0 string    `json:"c0"`
	C1 string    `json:"c1"`
	S0 string    `json:"s0"`
	S1 string    `json:"s1"`
}

// ToJSON serializes a BitProof.
func (c *CryptoContext) BitProofToJSON(p *BitProof) BitProofJSON {
	return BitProofJSON{
		C:  c.ToJSON(&p.C.Point),
		T0: c.ToJSON(&p.T0),
		T1: c.ToJSON(&p.T1),
		C0: p.C0.String(),
		C1: p.C1.String(),
		S0: p.S0.String(),
		S1: p.S1.String(),
	}
}

// BitProofFromJSON reconstructs a BitProof from its wire form.
func (c *CryptoContext) BitProofFromJSON(pj BitProofJSON) (*BitProof, error) {
	cPoint, err := c.FromJSON(pj.C)
	if err != nil {
		return nil, err
	}
	t0, err := c.FromJSON(pj.T0)
	if err != nil {
		return nil, err
	}
	t1, err := c.FromJSON(pj.T1)
	if err != nil {
		return nil, err
	}
	c0, ok := new(big.Int).SetString(pj.C0, 10)
	if !ok {
		return nil, ErrInvalidProof
	}
	c1, ok := new(big.Int).SetString(pj.C1, 10)
	if !ok {
		return nil, ErrInvalidProof
	}
	s0, ok := new(big.Int).SetString(pj.S0, 10)
	if !ok {
		return nil, ErrInvalidProof
	}
	s1, ok := new(big.Int).SetString(pj.S1, 10)
	if !ok {
		return nil, ErrInvalidProof
	}
	return &BitProof{
		C:  Commitment{Point: cPoint},
		T0: t0, T1: t1,
		C0: c0, C1: c1,
		S0: s0, S1: s1,
	}, nil
}

func (c *CryptoContext) bitChallenge(commitment, t0, t1 *bn254.G1Affine) *big.Int {
	cj := c.ToJSON(commitment)
	t0j := c.ToJSON(t0)
	t1j := c.ToJSON(t1)
	return HashToScalar(c.Order,
		[]byte(cj.X), []byte(cj.Y),
		[]byte(t0j.X), []byte(t0j.Y),
		[]byte(t1j.X), []byte(t1j.Y),
	)
}
