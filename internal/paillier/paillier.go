// Package paillier implements the Paillier additively homomorphic
// cryptosystem, kept alongside the twisted-ElGamal core for arithmetic over
// values with magnitudes far beyond the ElGamal value table's lookup range:
// two such values can be encrypted, added homomorphically, and the exact
// sum decrypted.
package paillier

import (
	"crypto/rand"
	"errors"
	"math/big"
)

// Sentinel errors.
var (
	ErrKeyGenFailed  = errors.New("paillier: key generation failed after all attempts")
	ErrCiphertextMod = errors.New("paillier: ciphertext not reduced mod n^2")
)

// primeGenAttempts bounds how many key-generation retries are made before
// giving up.
const primeGenAttempts = 3

// MinPrimeBits is the smallest prime size this package will accept for key
// generation.
const MinPrimeBits = 256

// PublicKey is (n, g) with g fixed to n+1, the standard simplification that
// keeps encryption a single modular exponentiation plus a blinding term.
type PublicKey struct {
	N *big.Int
	G *big.Int

	nSquared *big.Int
}

// PrivateKey is the Carmichael-function pair (lambda, mu) used for
// decryption.
type PrivateKey struct {
	Lambda *big.Int
	Mu     *big.Int
}

// KeyPair bundles a Paillier public/private key pair.
type KeyPair struct {
	Public  *PublicKey
	Private *PrivateKey
}

// GenerateKeyPair produces a fresh Paillier key pair over two independent
// probable primes of at least bits length, retrying up to primeGenAttempts
// times if lambda turns out not to be invertible mod n.
func GenerateKeyPair(bits int) (*KeyPair, error) {
	if bits < MinPrimeBits {
		bits = MinPrimeBits
	}

	for attempt := 0; attempt < primeGenAttempts; attempt++ {
		p, err := rand.Prime(rand.Reader, bits)
		if err != nil {
			continue
		}
		q, err := rand.Prime(rand.Reader, bits)
		if err != nil {
			continue
		}
		if p.Cmp(q) == 0 {
			continue
		}

		n := new(big.Int).Mul(p, q)
		nSquared := new(big.Int).Mul(n, n)
		g := new(big.Int).Add(n, big.NewInt(1))

		pMinus1 := new(big.Int).Sub(p, big.NewInt(1))
		qMinus1 := new(big.Int).Sub(q, big.NewInt(1))
		lambda := lcm(pMinus1, qMinus1)

		mu := new(big.Int).ModInverse(lambda, n)
		if mu == nil {
			continue
		}

		return &KeyPair{
			Public:  &PublicKey{N: n, G: g, nSquared: nSquared},
			Private: &PrivateKey{Lambda: lambda, Mu: mu},
		}, nil
	}

	return nil, ErrKeyGenFailed
}

func lcm(a, b *big.Int) *big.Int {
	gcd := new(big.Int).GCD(nil, nil, a, b)
	product := new(big.Int).Mul(a, b)
	return new(big.Int).Div(product, gcd)
}

// nSq returns n^2, computing it lazily for keys reconstructed without it.
func (pub *PublicKey) nSq() *big.Int {
	if pub.nSquared == nil {
		pub.nSquared = new(big.Int).Mul(pub.N, pub.N)
	}
	return pub.nSquared
}

// Encrypt computes E(m) = g^m * r^n mod n^2 for a fresh random blinder r.
func Encrypt(pub *PublicKey, m *big.Int) (*big.Int, error) {
	nSquared := pub.nSq()

	r, err := rand.Int(rand.Reader, new(big.Int).Sub(pub.N, big.NewInt(1)))
	if err != nil {
		return nil, err
	}
	r.Add(r, big.NewInt(1))

	gm := new(big.Int).Exp(pub.G, m, nSquared)
	rn := new(big.Int).Exp(r, pub.N, nSquared)
	c := new(big.Int).Mul(gm, rn)
	c.Mod(c, nSquared)
	return c, nil
}

// Decrypt recovers m from a ciphertext via the Carmichael-function
// reduction: L(c^lambda mod n^2) * mu mod n, where L(x) = (x-1)/n.
func Decrypt(pub *PublicKey, priv *PrivateKey, c *big.Int) *big.Int {
	nSquared := pub.nSq()
	cLambda := new(big.Int).Exp(c, priv.Lambda, nSquared)
	l := lFunction(cLambda, pub.N)
	m := new(big.Int).Mul(l, priv.Mu)
	m.Mod(m, pub.N)
	return m
}

// lFunction computes L(x) = (x-1)/n, the standard Paillier reduction.
func lFunction(x, n *big.Int) *big.Int {
	num := new(big.Int).Sub(x, big.NewInt(1))
	return new(big.Int).Div(num, n)
}

// HomomorphicAdd returns E(a+b) by multiplying the two ciphertexts mod n^2.
func HomomorphicAdd(pub *PublicKey, c1, c2 *big.Int) *big.Int {
	nSquared := pub.nSq()
	sum := new(big.Int).Mul(c1, c2)
	sum.Mod(sum, nSquared)
	return sum
}

// MultiplyConstant returns E(m*k) by raising the ciphertext to the k-th
// power mod n^2, the Paillier analogue of scalar multiplication.
func MultiplyConstant(pub *PublicKey, c, k *big.Int) *big.Int {
	nSquared := pub.nSq()
	return new(big.Int).Exp(c, k, nSquared)
}
