package zkp

import "testing"

func TestSignVerifySignature(t *testing.T) {
	ctx := mustContext(t)
	kp, err := ctx.KeyGen()
	if err != nil {
		t.Fatal(err)
	}
	message := []byte("transfer:alice:bob:10")
	sig, err := ctx.Sign(kp.SecretKey, &kp.PublicKey, message)
	if err != nil {
		t.Fatal(err)
	}
	if !ctx.VerifySignature(&kp.PublicKey, message, sig) {
		t.Fatal("expected valid signature to verify")
	}
}

func TestVerifySignatureRejectsTamperedMessage(t *testing.T) {
	ctx := mustContext(t)
	kp, err := ctx.KeyGen()
	if err != nil {
		t.Fatal(err)
	}
	sig, err := ctx.Sign(kp.SecretKey, &kp.PublicKey, []byte("original"))
	if err != nil {
		t.Fatal(err)
	}
	if ctx.VerifySignature(&kp.PublicKey, []byte("tampered"), sig) {
		t.Fatal("expected tampered message to fail verification")
	}
}

func TestVerifySignatureRejectsWrongKey(t *testing.T) {
	ctx := mustContext(t)
	kp, err := ctx.KeyGen()
	if err != nil {
		t.Fatal(err)
	}
	other, err := ctx.KeyGen()
	if err != nil {
		t.Fatal(err)
	}
	message := []byte("payload")
	sig, err := ctx.Sign(kp.SecretKey, &kp.PublicKey, message)
	if err != nil {
		t.Fatal(err)
	}
	if ctx.VerifySignature(&other.PublicKey, message, sig) {
		t.Fatal("expected signature to fail verification under a different key")
	}
}

func TestSignatureJSONRoundTrip(t *testing.T) {
	ctx := mustContext(t)
	kp, err := ctx.KeyGen()
	if err != nil {
		t.Fatal(err)
	}
	sig, err := ctx.Sign(kp.SecretKey, &kp.PublicKey, []byte("m"))
	if err != nil {
		t.Fatal(err)
	}
	back, err := ctx.SignatureFromJSON(ctx.SignatureToJSON(sig))
	if err != nil {
		t.Fatalf("SignatureFromJSON: %v", err)
	}
	if !ctx.VerifySignature(&kp.PublicKey, []byte("m"), back) {
		t.Fatal("round-tripped signature should still verify")
	}
}

func TestProveVerifyPoK(t *testing.T) {
	ctx := mustContext(t)
	kp, err := ctx.KeyGen()
	if err != nil {
		t.Fatal(err)
	}
	proof, err := ctx.Prove(kp.SecretKey, &kp.PublicKey)
	if err != nil {
		t.Fatal(err)
	}
	if !ctx.VerifyPoK(&kp.PublicKey, proof) {
		t.Fatal("expected valid PoK to verify")
	}
}
