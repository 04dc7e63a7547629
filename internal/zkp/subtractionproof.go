package zkp

import "encoding/hex"

// SubtractionProof is a public, witness-less binding that
// C_out = C_orig - C_amt holds coordinate-wise across three ciphertexts,
// bound by a SHA-256 hash over all six ciphertext coordinates. There is no
// secret witness here: any verifier can recompute both the relation and the
// hash directly from the three public ciphertexts.
type SubtractionProof struct {
	Hash [32]byte
}

// CreateSubtractionProof binds orig, amt, and out under one hash. The
// caller is expected to have already arranged out = orig - amt
// homomorphically; the proof exists to pin the three ciphertexts together
// in the transaction's signed bytes.
func (c *CryptoContext) CreateSubtractionProof(orig, amt, out *Ciphertext) *SubtractionProof {
	return &SubtractionProof{Hash: c.subtractionHash(orig, amt, out)}
}

// VerifySubtractionProof checks the coordinate-wise relation
// C_out == C_orig - C_amt and that the bound hash matches.
func (c *CryptoContext) VerifySubtractionProof(orig, amt, out *Ciphertext, p *SubtractionProof) bool {
	if p == nil {
		return false
	}
	expectedOut := orig.HomomorphicSub(amt)
	if !expectedOut.Equal(out) {
		return false
	}
	return c.subtractionHash(orig, amt, out) == p.Hash
}

// SubtractionProofJSON is the wire form of a SubtractionProof.
type SubtractionProofJSON struct {
	Hash string `json:"hash"`
}

// ToJSON serializes a SubtractionProof.
func (p *SubtractionProof) ToJSON() SubtractionProofJSON {
	return SubtractionProofJSON{Hash: hex.EncodeToString(p.Hash[:])}
}

// SubtractionProofFromJSON reconstructs a SubtractionProof from its wire
// form.
func SubtractionProofFromJSON(pj SubtractionProofJSON) (*SubtractionProof, error) {
	raw, err := hex.DecodeString(pj.Hash)
	if err != nil || len(raw) != 32 {
		return nil, ErrInvalidProof
	}
	var p SubtractionProof
	copy(p.Hash[:], raw)
	return &p, nil
}

func (c *CryptoContext) subtractionHash(orig, amt, out *Ciphertext) [32]byte {
	origJ := c.CiphertextToJSON(orig)
	amtJ := c.CiphertextToJSON(amt)
	outJ := c.CiphertextToJSON(out)
	digest := HashToScalar(c.Order,
		[]byte(origJ.C1X), []byte(origJ.C1Y), []byte(origJ.C2X), []byte(origJ.C2Y),
		[]byte(amtJ.C1X), []byte(amtJ.C1Y), []byte(amtJ.C2X), []byte(amtJ.C2Y),
		[]byte(outJ.C1X), []byte(outJ.C1Y), []byte(outJ.C2X), []byte(outJ.C2Y),
	)
	var out32 [32]byte
	digest.FillBytes(out32[:])
	return out32
}
