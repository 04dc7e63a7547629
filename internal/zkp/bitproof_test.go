package zkp

import (
	"math/big"
	"testing"
)

func TestBitProofValidForBothBits(t *testing.T) {
	ctx := mustContext(t)
	for _, bit := range []uint{0, 1} {
		r, err := RandomScalar()
		if err != nil {
			t.Fatal(err)
		}
		p, err := ctx.CreateBitProof(bit, r)
		if err != nil {
			t.Fatalf("bit %d: %v", bit, err)
		}
		if !ctx.VerifyBitProof(p) {
			t.Fatalf("bit %d: expected proof to verify", bit)
		}
	}
}

func TestCreateBitProofRejectsNonBit(t *testing.T) {
	ctx := mustContext(t)
	r, err := RandomScalar()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ctx.CreateBitProof(2, r); err == nil {
		t.Fatal("expected error for out-of-range bit")
	}
}

func TestBitProofJSONRoundTrip(t *testing.T) {
	ctx := mustContext(t)
	r, err := RandomScalar()
	if err != nil {
		t.Fatal(err)
	}
	p, err := ctx.CreateBitProof(1, r)
	if err != nil {
		t.Fatal(err)
	}
	back, err := ctx.BitProofFromJSON(ctx.BitProofToJSON(p))
	if err != nil {
		t.Fatalf("BitProofFromJSON: %v", err)
	}
	if !ctx.VerifyBitProof(back) {
		t.Fatal("round-tripped proof should still verify")
	}
}

func TestVerifyBitProofRejectsTamperedChallenge(t *testing.T) {
	ctx := mustContext(t)
	r, err := RandomScalar()
	if err != nil {
		t.Fatal(err)
	}
	p, err := ctx.CreateBitProof(0, r)
	if err != nil {
		t.Fatal(err)
	}
	p.C0 = ctx.ScalarAdd(p.C0, big.NewInt(1))
	if ctx.VerifyBitProof(p) {
		t.Fatal("expected tampered challenge to fail verification")
	}
}
