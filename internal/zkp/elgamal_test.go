package zkp

import (
	"math/big"
	"testing"
)

func TestEncryptDecryptAndLookup(t *testing.T) {
	ctx := mustContext(t)
	kp, err := ctx.KeyGen()
	if err != nil {
		t.Fatal(err)
	}
	ct, err := ctx.Encrypt(big.NewInt(777), &kp.PublicKey, nil)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := ctx.DecryptAndLookup(ct, kp.SecretKey)
	if !ok {
		t.Fatal("expected plaintext to be recovered")
	}
	if got != 777 {
		t.Fatalf("got %d, want 777", got)
	}
}

func TestDecryptWithWrongKeyFails(t *testing.T) {
	ctx := mustContext(t)
	kp, err := ctx.KeyGen()
	if err != nil {
		t.Fatal(err)
	}
	other, err := ctx.KeyGen()
	if err != nil {
		t.Fatal(err)
	}
	ct, err := ctx.Encrypt(big.NewInt(50), &kp.PublicKey, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := ctx.DecryptAndLookup(ct, other.SecretKey); ok {
		t.Fatal("expected decryption under the wrong key to miss the value table")
	}
}

func TestHomomorphicAddSub(t *testing.T) {
	ctx := mustContext(t)
	kp, err := ctx.KeyGen()
	if err != nil {
		t.Fatal(err)
	}
	a, err := ctx.Encrypt(big.NewInt(30), &kp.PublicKey, nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := ctx.Encrypt(big.NewInt(12), &kp.PublicKey, nil)
	if err != nil {
		t.Fatal(err)
	}

	sum := a.HomomorphicAdd(b)
	got, ok := ctx.DecryptAndLookup(sum, kp.SecretKey)
	if !ok || got != 42 {
		t.Fatalf("sum: got (%d, %v), want 42", got, ok)
	}

	diff := a.HomomorphicSub(b)
	got, ok = ctx.DecryptAndLookup(diff, kp.SecretKey)
	if !ok || got != 18 {
		t.Fatalf("diff: got (%d, %v), want 18", got, ok)
	}
}

func TestCiphertextJSONRoundTrip(t *testing.T) {
	ctx := mustContext(t)
	kp, err := ctx.KeyGen()
	if err != nil {
		t.Fatal(err)
	}
	ct, err := ctx.Encrypt(big.NewInt(5), &kp.PublicKey, nil)
	if err != nil {
		t.Fatal(err)
	}
	back, err := ctx.CiphertextFromJSON(ctx.CiphertextToJSON(ct))
	if err != nil {
		t.Fatalf("CiphertextFromJSON: %v", err)
	}
	if !back.Equal(ct) {
		t.Fatal("round trip mismatch")
	}
}

func TestIsWellFormedRejectsIdentity(t *testing.T) {
	var identity Ciphertext
	if identity.IsWellFormed() {
		t.Fatal("identity-element ciphertext should be rejected")
	}
}
