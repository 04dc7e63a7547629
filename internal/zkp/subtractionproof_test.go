package zkp

import (
	"math/big"
	"testing"
)

func TestSubtractionProofValid(t *testing.T) {
	ctx := mustContext(t)
	kp, err := ctx.KeyGen()
	if err != nil {
		t.Fatal(err)
	}
	orig, err := ctx.Encrypt(big.NewInt(100), &kp.PublicKey, nil)
	if err != nil {
		t.Fatal(err)
	}
	amt, err := ctx.Encrypt(big.NewInt(30), &kp.PublicKey, nil)
	if err != nil {
		t.Fatal(err)
	}
	out := orig.HomomorphicSub(amt)

	proof := ctx.CreateSubtractionProof(orig, amt, out)
	if !ctx.VerifySubtractionProof(orig, amt, out, proof) {
		t.Fatal("expected valid subtraction proof to verify")
	}

	got, ok := ctx.DecryptAndLookup(out, kp.SecretKey)
	if !ok || got != 70 {
		t.Fatalf("got (%d, %v), want 70", got, ok)
	}
}

func TestSubtractionProofRejectsWrongOutput(t *testing.T) {
	ctx := mustContext(t)
	kp, err := ctx.KeyGen()
	if err != nil {
		t.Fatal(err)
	}
	orig, err := ctx.Encrypt(big.NewInt(100), &kp.PublicKey, nil)
	if err != nil {
		t.Fatal(err)
	}
	amt, err := ctx.Encrypt(big.NewInt(30), &kp.PublicKey, nil)
	if err != nil {
		t.Fatal(err)
	}
	wrongOut, err := ctx.Encrypt(big.NewInt(71), &kp.PublicKey, nil)
	if err != nil {
		t.Fatal(err)
	}

	proof := ctx.CreateSubtractionProof(orig, amt, wrongOut)
	if ctx.VerifySubtractionProof(orig, amt, wrongOut, proof) {
		t.Fatal("expected proof against a non-subtracted output to fail")
	}
}

func TestSubtractionProofJSONRoundTrip(t *testing.T) {
	ctx := mustContext(t)
	kp, err := ctx.KeyGen()
	if err != nil {
		t.Fatal(err)
	}
	orig, err := ctx.Encrypt(big.NewInt(10), &kp.PublicKey, nil)
	if err != nil {
		t.Fatal(err)
	}
	amt, err := ctx.Encrypt(big.NewInt(4), &kp.PublicKey, nil)
	if err != nil {
		t.Fatal(err)
	}
	out := orig.HomomorphicSub(amt)
	proof := ctx.CreateSubtractionProof(orig, amt, out)

	back, err := SubtractionProofFromJSON(proof.ToJSON())
	if err != nil {
		t.Fatalf("SubtractionProofFromJSON: %v", err)
	}
	if !ctx.VerifySubtractionProof(orig, amt, out, back) {
		t.Fatal("round-tripped proof should still verify")
	}
}
