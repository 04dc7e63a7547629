package zkp

import (
	"math/big"
	"testing"
)

func TestEqualityProofValid(t *testing.T) {
	ctx := mustContext(t)
	kp, err := ctx.KeyGen()
	if err != nil {
		t.Fatal(err)
	}
	v := big.NewInt(99)
	k, err := RandomScalar()
	if err != nil {
		t.Fatal(err)
	}
	ct, err := ctx.Encrypt(v, &kp.PublicKey, k)
	if err != nil {
		t.Fatal(err)
	}
	commitment, r, err := ctx.CommitRandom(v)
	if err != nil {
		t.Fatal(err)
	}
	proof, err := ctx.CreateEqualityProof(v, k, r, &kp.PublicKey, ct, commitment)
	if err != nil {
		t.Fatal(err)
	}
	if !ctx.VerifyEqualityProof(&kp.PublicKey, ct, commitment, proof) {
		t.Fatal("expected valid equality proof to verify")
	}
}

func TestEqualityProofRejectsMismatchedValues(t *testing.T) {
	ctx := mustContext(t)
	kp, err := ctx.KeyGen()
	if err != nil {
		t.Fatal(err)
	}
	k, err := RandomScalar()
	if err != nil {
		t.Fatal(err)
	}
	ct, err := ctx.Encrypt(big.NewInt(10), &kp.PublicKey, k)
	if err != nil {
		t.Fatal(err)
	}
	commitment, r, err := ctx.CommitRandom(big.NewInt(11))
	if err != nil {
		t.Fatal(err)
	}
	proof, err := ctx.CreateEqualityProof(big.NewInt(10), k, r, &kp.PublicKey, ct, commitment)
	if err != nil {
		t.Fatal(err)
	}
	// The proof is honestly constructed for v=10 against the ciphertext,
	// but the commitment opens to 11 — the R3 check must catch this.
	if ctx.VerifyEqualityProof(&kp.PublicKey, ct, commitment, proof) {
		t.Fatal("expected mismatched commitment value to fail verification")
	}
}

func TestEqualityProofJSONRoundTrip(t *testing.T) {
	ctx := mustContext(t)
	kp, err := ctx.KeyGen()
	if err != nil {
		t.Fatal(err)
	}
	v := big.NewInt(3)
	k, err := RandomScalar()
	if err != nil {
		t.Fatal(err)
	}
	ct, err := ctx.Encrypt(v, &kp.PublicKey, k)
	if err != nil {
		t.Fatal(err)
	}
	commitment, r, err := ctx.CommitRandom(v)
	if err != nil {
		t.Fatal(err)
	}
	proof, err := ctx.CreateEqualityProof(v, k, r, &kp.PublicKey, ct, commitment)
	if err != nil {
		t.Fatal(err)
	}
	back, err := ctx.EqualityProofFromJSON(ctx.EqualityProofToJSON(proof))
	if err != nil {
		t.Fatalf("EqualityProofFromJSON: %v", err)
	}
	if !ctx.VerifyEqualityProof(&kp.PublicKey, ct, commitment, back) {
		t.Fatal("round-tripped proof should still verify")
	}
}
