package zkp

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
)

// RangeProof proves that a committed value v lies in [lo, hi] via
// bit-decomposition of v-lo plus a linking proof over the blinding gap.
// Verification bounds v-lo below 2^bitWidth(lo, hi); when hi-lo+1 is not a
// power of two that bound is looser than hi, and CreateRangeProof is what
// refuses v outside [lo, hi].
type RangeProof struct {
	Commitment Commitment
	Lo, Hi     uint64
	Bits       []BitProof
	Link       LinkProof
}

// LinkProof is a Schnorr-style proof (base H) that
// C - lo*G - Sum(2^i * C_i) opens to 0 on H alone.
type LinkProof struct {
	R bn254.G1Affine
	S *big.Int
}

// bitWidth returns ceil(log2(hi-lo+1)).
func bitWidth(lo, hi uint64) int {
	span := hi - lo + 1
	n := 0
	for (uint64(1) << uint(n)) < span {
		n++
	}
	if n == 0 {
		n = 1
	}
	return n
}

// CreateRangeProof proves v in [lo, hi]. If inputCommitment is non-nil, it
// must already commit to v under inputBlinder (checked for consistency
// before proof construction); otherwise a fresh commitment and blinder are
// generated.
func (c *CryptoContext) CreateRangeProof(v *big.Int, lo, hi uint64, inputCommitment *Commitment, inputBlinder *big.Int) (*RangeProof, error) {
	if v == nil {
		return nil, ErrInvalidInput
	}
	loBig := new(big.Int).SetUint64(lo)
	hiBig := new(big.Int).SetUint64(hi)
	if v.Cmp(loBig) < 0 || v.Cmp(hiBig) > 0 {
		return nil, ErrInvalidInput
	}

	var commitment *Commitment
	var blinder *big.Int
	var err error
	if inputCommitment != nil {
		if inputBlinder == nil {
			return nil, ErrInvalidBlinder
		}
		if !c.VerifyOpening(inputCommitment, v, inputBlinder) {
			return nil, ErrInvalidBlinder
		}
		commitment, blinder = inputCommitment, inputBlinder
	} else {
		commitment, blinder, err = c.CommitRandom(v)
		if err != nil {
			return nil, err
		}
	}

	n := bitWidth(lo, hi)
	delta := new(big.Int).Sub(v, loBig)

	bitProofs := make([]BitProof, n)
	bitBlinders := make([]*big.Int, n)
	for i := 0; i < n; i++ {
		bit := delta.Bit(i)
		r, err := RandomScalar()
		if err != nil {
			return nil, err
		}
		bp, err := c.CreateBitProof(uint(bit), r)
		if err != nil {
			return nil, err
		}
		bitProofs[i] = *bp
		bitBlinders[i] = r
	}

	// Blinding gap: r - Sum(2^i * r_i) mod q.
	gap := new(big.Int).Set(blinder)
	for i := 0; i < n; i++ {
		weight := new(big.Int).Lsh(big.NewInt(1), uint(i))
		term := c.ScalarMul(weight, bitBlinders[i])
		gap = c.ScalarSub(gap, term)
	}

	// D = C - lo*G - Sum(2^i * C_i); must equal gap*H if correctly formed.
	d := c.linkPoint(commitment, loBig, bitProofs)

	link, err := c.proveLink(gap, &d)
	if err != nil {
		return nil, err
	}

	return &RangeProof{
		Commitment: *commitment,
		Lo:         lo,
		Hi:         hi,
		Bits:       bitProofs,
		Link:       *link,
	}, nil
}

// linkPoint computes D = C - lo*G - Sum(2^i * C_i).
func (c *CryptoContext) linkPoint(commitment *Commitment, lo *big.Int, bits []BitProof) bn254.G1Affine {
	loG := c.MulG(lo)
	d := SubPoints(&commitment.Point, &loG)
	for i, bp := range bits {
		weight := new(big.Int).Lsh(big.NewInt(1), uint(i))
		weighted := c.ScalarMulPoint(&bp.C.Point, weight)
		d = SubPoints(&d, &weighted)
	}
	return d
}

// proveLink proves knowledge of gap such that D = gap*H.
func (c *CryptoContext) proveLink(gap *big.Int, d *bn254.G1Affine) (*LinkProof, error) {
	w, err := RandomScalar()
	if err != nil {
		return nil, err
	}
	r := c.MulH(w)
	e := c.linkChallenge(d, &r)
	s := c.ScalarSub(w, c.ScalarMul(e, gap))
	return &LinkProof{R: r, S: s}, nil
}

// LinkProofJSON is the wire form of a LinkProof.
type LinkProofJSON struct {
	R PointJSON `json:"r"`
	S string    `json:"s"`
}

// RangeProofJSON is the wire form of a RangeProof.
type RangeProofJSON struct {
	Commitment PointJSON      `json:"commitment"`
	Lo         uint64         `json:"lo"`
	Hi         uint64         `json:"hi"`
	Bits       []BitProofJSON `json:"bits"`
	Link       LinkProofJSON  `json:"link"`
}

// ToJSON serializes a RangeProof.
func (c *CryptoContext) RangeProofToJSON(p *RangeProof) RangeProofJSON {
	bits := make([]BitProofJSON, len(p.Bits))
	for i := range p.Bits {
		bits[i] = c.BitProofToJSON(&p.Bits[i])
	}
	return RangeProofJSON{
		Commitment: c.ToJSON(&p.Commitment.Point),
		Lo:         p.Lo,
		Hi:         p.Hi,
		Bits:       bits,
		Link:       LinkProofJSON{R: c.ToJSON(&p.Link.R), S: p.Link.S.String()},
	}
}

// RangeProofFromJSON reconstructs a RangeProof from its wire form.
func (c *CryptoContext) RangeProofFromJSON(pj RangeProofJSON) (*RangeProof, error) {
	commitment, err := c.FromJSON(pj.Commitment)
	if err != nil {
		return nil, err
	}
	bits := make([]BitProof, len(pj.Bits))
	for i, bj := range pj.Bits {
		bp, err := c.BitProofFromJSON(bj)
		if err != nil {
			return nil, err
		}
		bits[i] = *bp
	}
	linkR, err := c.FromJSON(pj.Link.R)
	if err != nil {
		return nil, err
	}
	linkS, ok := new(big.Int).SetString(pj.Link.S, 10)
	if !ok {
		return nil, ErrInvalidProof
	}
	return &RangeProof{
		Commitment: Commitment{Point: commitment},
		Lo:         pj.Lo,
		Hi:         pj.Hi,
		Bits:       bits,
		Link:       LinkProof{R: linkR, S: linkS},
	}, nil
}

func (c *CryptoContext) linkChallenge(d, r *bn254.G1Affine) *big.Int {
	dj := c.ToJSON(d)
	rj := c.ToJSON(r)
	return HashToScalar(c.Order, []byte(dj.X), []byte(dj.Y), []byte(rj.X), []byte(rj.Y))
}

// VerifyRangeProof checks every bit's OR-proof and the weighted-sum linking
// proof.
func (c *CryptoContext) VerifyRangeProof(p *RangeProof) bool {
	if p == nil || p.Hi < p.Lo || len(p.Bits) != bitWidth(p.Lo, p.Hi) {
		return false
	}
	for i := range p.Bits {
		if !c.VerifyBitProof(&p.Bits[i]) {
			return false
		}
	}

	loBig := new(big.Int).SetUint64(p.Lo)
	d := c.linkPoint(&p.Commitment, loBig, p.Bits)

	e := c.linkChallenge(&d, &p.Link.R)
	sH := c.MulH(p.Link.S)
	eD := c.ScalarMulPoint(&d, e)
	rhs := AddPoints(&sH, &eD)
	return rhs.Equal(&p.Link.R)
}
