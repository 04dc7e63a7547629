package zkp

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
)

// Keypair is a discrete-log keypair (sk, pk = sk*G), sk drawn uniformly
// from [1, q-1].
type Keypair struct {
	SecretKey *big.Int
	PublicKey bn254.G1Affine
}

// KeyGen generates a fresh keypair.
func (c *CryptoContext) KeyGen() (*Keypair, error) {
	sk, err := RandomScalar()
	if err != nil {
		return nil, err
	}
	if sk.Sign() == 0 {
		sk = big.NewInt(1)
	}
	pk := c.MulG(sk)
	return &Keypair{SecretKey: sk, PublicKey: pk}, nil
}

// Ciphertext is a twisted ElGamal ciphertext (c1, c2) = (k*G, v*G + k*pk).
type Ciphertext struct {
	C1 bn254.G1Affine
	C2 bn254.G1Affine
}

// Encrypt encrypts value under pk. If k is nil, fresh randomness is drawn;
// tests may inject k to make encryption deterministic.
func (c *CryptoContext) Encrypt(value *big.Int, pk *bn254.G1Affine, k *big.Int) (*Ciphertext, error) {
	if value == nil {
		return nil, ErrInvalidValue
	}
	var err error
	if k == nil {
		k, err = RandomScalar()
		if err != nil {
			return nil, err
		}
	}
	c1 := c.MulG(k)
	vG := c.MulG(value)
	kPk := c.ScalarMulPoint(pk, k)
	c2 := AddPoints(&vG, &kPk)
	return &Ciphertext{C1: c1, C2: c2}, nil
}

// Decrypt returns v*G given the ciphertext and the recipient's secret key;
// recovering the scalar v itself requires a subsequent value-table lookup.
func (c *CryptoContext) Decrypt(ct *Ciphertext, sk *big.Int) bn254.G1Affine {
	shared := c.ScalarMulPoint(&ct.C1, sk)
	return SubPoints(&ct.C2, &shared)
}

// DecryptAndLookup decrypts and attempts to recover the plaintext scalar
// via the context's value table. Returns (0, false) if the recovered point
// is outside the table range — an expected "unknown" outcome, not an
// error.
func (c *CryptoContext) DecryptAndLookup(ct *Ciphertext, sk *big.Int) (uint64, bool) {
	point := c.Decrypt(ct, sk)
	return c.LookupValue(&point)
}

// HomomorphicAdd returns Enc(a)+Enc(b) = Enc(a+b), exploiting the additive
// homomorphism on both ciphertext coordinates.
func (c *Ciphertext) HomomorphicAdd(other *Ciphertext) *Ciphertext {
	return &Ciphertext{
		C1: AddPoints(&c.C1, &other.C1),
		C2: AddPoints(&c.C2, &other.C2),
	}
}

// HomomorphicSub returns Enc(a)-Enc(b) = Enc(a-b).
func (c *Ciphertext) HomomorphicSub(other *Ciphertext) *Ciphertext {
	return &Ciphertext{
		C1: SubPoints(&c.C1, &other.C1),
		C2: SubPoints(&c.C2, &other.C2),
	}
}

// Equal reports whether two ciphertexts carry the same coordinates.
func (c *Ciphertext) Equal(other *Ciphertext) bool {
	return c.C1.Equal(&other.C1) && c.C2.Equal(&other.C2)
}

// IsWellFormed rejects ciphertexts whose coordinate points are off-curve or
// the identity element.
func (c *Ciphertext) IsWellFormed() bool {
	return IsOnCurve(&c.C1) && IsOnCurve(&c.C2)
}

// CiphertextJSON is the wire form of a ciphertext: c1/c2 flattened to x/y.
type CiphertextJSON struct {
	C1X string `json:"ciphertext_c1_x"`
	C1Y string `json:"ciphertext_c1_y"`
	C2X string `json:"ciphertext_c2_x"`
	C2Y string `json:"ciphertext_c2_y"`
}

// ToJSON flattens the ciphertext to its wire form.
func (c *CryptoContext) CiphertextToJSON(ct *Ciphertext) CiphertextJSON {
	c1 := c.ToJSON(&ct.C1)
	c2 := c.ToJSON(&ct.C2)
	return CiphertextJSON{C1X: c1.X, C1Y: c1.Y, C2X: c2.X, C2Y: c2.Y}
}

// CiphertextFromJSON reconstructs a ciphertext from its wire form.
func (c *CryptoContext) CiphertextFromJSON(cj CiphertextJSON) (*Ciphertext, error) {
	c1, err := c.FromJSON(PointJSON{X: cj.C1X, Y: cj.C1Y, Curve: c.curveName()})
	if err != nil {
		return nil, err
	}
	c2, err := c.FromJSON(PointJSON{X: cj.C2X, Y: cj.C2Y, Curve: c.curveName()})
	if err != nil {
		return nil, err
	}
	return &Ciphertext{C1: c1, C2: c2}, nil
}
