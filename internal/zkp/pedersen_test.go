package zkp

import (
	"math/big"
	"testing"
)

func TestCommitAndVerifyOpening(t *testing.T) {
	ctx := mustContext(t)
	v := big.NewInt(123)
	commitment, blinder, err := ctx.CommitRandom(v)
	if err != nil {
		t.Fatalf("CommitRandom: %v", err)
	}
	if !ctx.VerifyOpening(commitment, v, blinder) {
		t.Fatal("commitment should open to its own value/blinder")
	}
	if ctx.VerifyOpening(commitment, big.NewInt(124), blinder) {
		t.Fatal("commitment should not open to a different value")
	}
}

func TestCommitmentHomomorphicAdd(t *testing.T) {
	ctx := mustContext(t)
	c1, r1, err := ctx.CommitRandom(big.NewInt(10))
	if err != nil {
		t.Fatal(err)
	}
	c2, r2, err := ctx.CommitRandom(big.NewInt(32))
	if err != nil {
		t.Fatal(err)
	}
	sum := c1.Add(c2)
	rSum := ctx.ScalarAdd(r1, r2)
	if !ctx.VerifyOpening(sum, big.NewInt(42), rSum) {
		t.Fatal("sum commitment should open to 42")
	}
}

func TestCommitmentJSONRoundTrip(t *testing.T) {
	ctx := mustContext(t)
	c, _, err := ctx.CommitRandom(big.NewInt(7))
	if err != nil {
		t.Fatal(err)
	}
	back, err := CommitmentFromJSON(ctx, c.ToJSON(ctx))
	if err != nil {
		t.Fatalf("CommitmentFromJSON: %v", err)
	}
	if !back.Equal(c) {
		t.Fatal("round trip mismatch")
	}
}
