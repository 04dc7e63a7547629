// Package zkp implements the elliptic-curve commitment, encryption, and
// zero-knowledge proof primitives that back the confidential transaction
// core: Pedersen commitments, twisted ElGamal, Schnorr signatures, and the
// bit-decomposition range/equality/subtraction proofs built on top of them.
package zkp

import (
	"crypto/sha256"
	"errors"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Sentinel errors shared across the proof primitives.
var (
	ErrInvalidValue   = errors.New("zkp: invalid commitment value")
	ErrInvalidBlinder = errors.New("zkp: invalid blinder")
	ErrInvalidPoint   = errors.New("zkp: invalid elliptic curve point")
	ErrInvalidProof   = errors.New("zkp: proof verification failed")
	ErrOutOfRange     = errors.New("zkp: value out of range")
	ErrEmptyRing      = errors.New("zkp: ring must have at least one member")
	ErrSignerIndex    = errors.New("zkp: signer index out of range")
	ErrInvalidInput   = errors.New("zkp: invalid input")
)

// CurveProfile selects between the module's two operating points: a default
// profile sized for normal transfers and a smaller profile for faster demo
// throughput (fewer range-proof bits, smaller value table). Both profiles
// run on the same bn254 G1 group; only the value-table size and derived
// range-proof bit-width differ.
type CurveProfile int

const (
	// CurveDefault is the standard operating profile: a 10,000-entry value
	// table and ranges sized to match it.
	CurveDefault CurveProfile = iota
	// CurveSmall trades table size and proof size for speed in demos.
	CurveSmall
)

// pedersenHGeneratorSeed is the domain-separation string hashed to derive
// the second Pedersen generator H.
const pedersenHGeneratorSeed = "PEDERSEN_H_GENERATOR"

// DefaultValueTableSize is the size of the twisted-ElGamal value lookup
// table for the default profile.
const DefaultValueTableSize = 10000

// smallValueTableSize is used for CurveSmall.
const smallValueTableSize = 1000

// CryptoContext owns the curve generators and the twisted-ElGamal value
// table for its lifetime. Every proof constructor and wallet operation
// takes a *CryptoContext explicitly rather than reaching into package-level
// singleton state, so multiple curve profiles can coexist and tests can
// construct isolated contexts freely.
type CryptoContext struct {
	Profile CurveProfile

	// G is the standard group generator.
	G bn254.G1Affine
	// H is the second Pedersen generator, derived once via hash_to_scalar
	// and never retained as a known multiple of G in scalar form after
	// derivation (the derivation scalar is discarded, only H itself kept).
	H bn254.G1Affine

	// Order is the scalar field order q.
	Order *big.Int

	valueTable    map[string]uint64
	valueTableMax uint64
}

// NewCryptoContext constructs a CryptoContext for the given profile,
// deriving H and building the twisted-ElGamal value table once.
func NewCryptoContext(profile CurveProfile) (*CryptoContext, error) {
	_, _, g1Gen, _ := bn254.Generators()

	order := fr.Modulus()

	ctx := &CryptoContext{
		Profile: profile,
		G:       g1Gen,
		Order:   new(big.Int).Set(order),
	}

	hScalar := HashToScalar(ctx.Order, []byte(pedersenHGeneratorSeed))
	ctx.H.ScalarMultiplication(&ctx.G, hScalar)

	tableSize := uint64(DefaultValueTableSize)
	if profile == CurveSmall {
		tableSize = smallValueTableSize
	}
	ctx.buildValueTable(tableSize)

	return ctx, nil
}

// buildValueTable precomputes {(i*G).x : i} for i in [0, max), the only
// plaintext-recovery path for twisted ElGamal ciphertexts. Built once at
// construction; lookups afterward are O(1) map reads.
func (c *CryptoContext) buildValueTable(max uint64) {
	c.valueTable = make(map[string]uint64, max)
	c.valueTableMax = max

	var acc bn254.G1Affine
	c.valueTable[pointKey(&acc)] = 0
	for i := uint64(1); i < max; i++ {
		acc.Add(&acc, &c.G)
		key := pointKey(&acc)
		if _, exists := c.valueTable[key]; !exists {
			c.valueTable[key] = i
		}
	}
}

// LookupValue recovers the scalar v such that point == v*G, for v in
// [0, valueTableMax). Returns (0, false) if the point isn't in the table —
// this is an expected "unknown" outcome, not an error.
func (c *CryptoContext) LookupValue(point *bn254.G1Affine) (uint64, bool) {
	v, ok := c.valueTable[pointKey(point)]
	return v, ok
}

// ValueTableMax returns the exclusive upper bound of the value table.
func (c *CryptoContext) ValueTableMax() uint64 {
	return c.valueTableMax
}

// pointKey derives a map key from a point's affine coordinates.
func pointKey(p *bn254.G1Affine) string {
	return string(p.Marshal())
}

// RandomScalar draws a uniform scalar in [1, q-1], suitable for blinding
// factors, nonces, and private keys. The PRNG backing fr.Element.SetRandom
// is crypto/rand.
func RandomScalar() (*big.Int, error) {
	var s fr.Element
	for s.IsZero() {
		if _, err := s.SetRandom(); err != nil {
			return nil, err
		}
	}
	return s.BigInt(new(big.Int)), nil
}

// HashToScalar computes SHA-256(data) mod q, the module's one
// hash-to-scalar primitive, used for the H-generator derivation, Schnorr
// and ring challenges, and OR-proof challenges alike.
func HashToScalar(order *big.Int, data ...[]byte) *big.Int {
	h := sha256.New()
	for _, d := range data {
		h.Write(d)
	}
	digest := h.Sum(nil)
	return new(big.Int).Mod(new(big.Int).SetBytes(digest), order)
}

// ScalarMod reduces s modulo the context's group order.
func (c *CryptoContext) ScalarMod(s *big.Int) *big.Int {
	return new(big.Int).Mod(s, c.Order)
}

// ScalarAdd returns (a + b) mod q.
func (c *CryptoContext) ScalarAdd(a, b *big.Int) *big.Int {
	return c.ScalarMod(new(big.Int).Add(a, b))
}

// ScalarSub returns (a - b) mod q.
func (c *CryptoContext) ScalarSub(a, b *big.Int) *big.Int {
	return c.ScalarMod(new(big.Int).Sub(a, b))
}

// ScalarMul returns (a * b) mod q.
func (c *CryptoContext) ScalarMul(a, b *big.Int) *big.Int {
	return c.ScalarMod(new(big.Int).Mul(a, b))
}

// ScalarMulPoint returns s*P.
func (c *CryptoContext) ScalarMulPoint(p *bn254.G1Affine, s *big.Int) bn254.G1Affine {
	var r bn254.G1Affine
	r.ScalarMultiplication(p, c.ScalarMod(s))
	return r
}

// MulG returns s*G.
func (c *CryptoContext) MulG(s *big.Int) bn254.G1Affine {
	return c.ScalarMulPoint(&c.G, s)
}

// MulH returns s*H.
func (c *CryptoContext) MulH(s *big.Int) bn254.G1Affine {
	return c.ScalarMulPoint(&c.H, s)
}

// AddPoints returns a+b.
func AddPoints(a, b *bn254.G1Affine) bn254.G1Affine {
	var r bn254.G1Affine
	r.Add(a, b)
	return r
}

// SubPoints returns a-b.
func SubPoints(a, b *bn254.G1Affine) bn254.G1Affine {
	var neg bn254.G1Affine
	neg.Neg(b)
	var r bn254.G1Affine
	r.Add(a, &neg)
	return r
}

// IsOnCurve reports whether the point satisfies the curve equation and is
// not the point at infinity — used to reject malformed ciphertext points
// (off-curve or identity-element points) before they enter any proof path.
func IsOnCurve(p *bn254.G1Affine) bool {
	if p.IsInfinity() {
		return false
	}
	return p.IsOnCurve()
}

// PointJSON is the canonical wire representation of a curve point:
// decimal-string coordinates plus a curve tag. Proofs serialize recursively
// as nested objects whose points take this shape.
type PointJSON struct {
	X     string `json:"x"`
	Y     string `json:"y"`
	Curve string `json:"curve"`
}

// curveName returns the wire tag for the context's (substituted) curve.
func (c *CryptoContext) curveName() string {
	if c.Profile == CurveSmall {
		return "bn254-g1-small"
	}
	return "bn254-g1-default"
}

// ToJSON converts a point to its wire representation.
func (c *CryptoContext) ToJSON(p *bn254.G1Affine) PointJSON {
	x := new(big.Int)
	y := new(big.Int)
	p.X.BigInt(x)
	p.Y.BigInt(y)
	return PointJSON{X: x.String(), Y: y.String(), Curve: c.curveName()}
}

// FromJSON reconstructs a point from its wire representation and checks it
// lies on the curve.
func (c *CryptoContext) FromJSON(pj PointJSON) (bn254.G1Affine, error) {
	var p bn254.G1Affine
	x, ok := new(big.Int).SetString(pj.X, 10)
	if !ok {
		return p, ErrInvalidPoint
	}
	y, ok := new(big.Int).SetString(pj.Y, 10)
	if !ok {
		return p, ErrInvalidPoint
	}
	p.X.SetBigInt(x)
	p.Y.SetBigInt(y)
	if !IsOnCurve(&p) {
		return p, ErrInvalidPoint
	}
	return p, nil
}
