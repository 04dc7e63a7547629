package zkp

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
)

// Signature is a non-interactive Schnorr signature (R, s).
type Signature struct {
	R bn254.G1Affine
	S *big.Int
}

// Sign produces a full message-binding Schnorr signature over an arbitrary
// message string: nonce k, R = k*G, challenge e = H(pk.x || pk.y || R.x ||
// R.y || m), response s = k - e*sk mod q.
//
// This is the variant used for all transaction signing — the message-less
// Schnorr-PoK below is never used for transaction signatures.
func (c *CryptoContext) Sign(sk *big.Int, pk *bn254.G1Affine, message []byte) (*Signature, error) {
	k, err := RandomScalar()
	if err != nil {
		return nil, err
	}
	r := c.MulG(k)
	e := c.schnorrChallenge(pk, &r, message)
	s := c.ScalarSub(k, c.ScalarMul(e, sk))
	return &Signature{R: r, S: s}, nil
}

// VerifySignature recomputes the challenge from pk and R, then checks
// s*G + e*pk == R.
func (c *CryptoContext) VerifySignature(pk *bn254.G1Affine, message []byte, sig *Signature) bool {
	if sig == nil || sig.S == nil {
		return false
	}
	e := c.schnorrChallenge(pk, &sig.R, message)
	sG := c.MulG(sig.S)
	ePk := c.ScalarMulPoint(pk, e)
	rhs := AddPoints(&sG, &ePk)
	return rhs.Equal(&sig.R)
}

func (c *CryptoContext) schnorrChallenge(pk, r *bn254.G1Affine, message []byte) *big.Int {
	pkJSON := c.ToJSON(pk)
	rJSON := c.ToJSON(r)
	return HashToScalar(c.Order, []byte(pkJSON.X), []byte(pkJSON.Y), []byte(rJSON.X), []byte(rJSON.Y), message)
}

// PoK is a message-less Schnorr proof of knowledge of a discrete log,
// structurally identical to Signature but never bound to a transaction
// message. An older, weaker design signed transactions with this shape;
// this module never does that. No other proof in this package calls PoK;
// range proofs link with their own LinkProof over H.
type PoK struct {
	R bn254.G1Affine
	S *big.Int
}

// Prove constructs a message-less proof of knowledge of sk where pk = sk*G.
func (c *CryptoContext) Prove(sk *big.Int, pk *bn254.G1Affine) (*PoK, error) {
	k, err := RandomScalar()
	if err != nil {
		return nil, err
	}
	r := c.MulG(k)
	e := c.pokChallenge(pk, &r)
	s := c.ScalarSub(k, c.ScalarMul(e, sk))
	return &PoK{R: r, S: s}, nil
}

// VerifyPoK checks a message-less proof of knowledge.
func (c *CryptoContext) VerifyPoK(pk *bn254.G1Affine, proof *PoK) bool {
	if proof == nil || proof.S == nil {
		return false
	}
	e := c.pokChallenge(pk, &proof.R)
	sG := c.MulG(proof.S)
	ePk := c.ScalarMulPoint(pk, e)
	rhs := AddPoints(&sG, &ePk)
	return rhs.Equal(&proof.R)
}

func (c *CryptoContext) pokChallenge(pk, r *bn254.G1Affine) *big.Int {
	pkJSON := c.ToJSON(pk)
	rJSON := c.ToJSON(r)
	return HashToScalar(c.Order, []byte(pkJSON.X), []byte(pkJSON.Y), []byte(rJSON.X), []byte(rJSON.Y))
}

// SignatureJSON is the wire form of a Schnorr signature.
type SignatureJSON struct {
	R PointJSON `json:"r"`
	S string    `json:"s"`
}

// ToJSON serializes a signature.
func (c *CryptoContext) SignatureToJSON(sig *Signature) SignatureJSON {
	return SignatureJSON{R: c.ToJSON(&sig.R), S: sig.S.String()}
}

// SignatureFromJSON reconstructs a signature from its wire form.
func (c *CryptoContext) SignatureFromJSON(sj SignatureJSON) (*Signature, error) {
	r, err := c.FromJSON(sj.R)
	if err != nil {
		return nil, err
	}
	s, ok := new(big.Int).SetString(sj.S, 10)
	if !ok {
		return nil, ErrInvalidProof
	}
	return &Signature{R: r, S: s}, nil
}
