package zkp

import (
	"math/big"
	"testing"
)

func mustContext(t *testing.T) *CryptoContext {
	t.Helper()
	ctx, err := NewCryptoContext(CurveDefault)
	if err != nil {
		t.Fatalf("NewCryptoContext: %v", err)
	}
	return ctx
}

func TestNewCryptoContextGeneratorsDistinct(t *testing.T) {
	ctx := mustContext(t)
	if ctx.G.Equal(&ctx.H) {
		t.Fatal("G and H must be distinct generators")
	}
	if !IsOnCurve(&ctx.G) || !IsOnCurve(&ctx.H) {
		t.Fatal("generators must be on curve")
	}
}

func TestValueTableRoundTrip(t *testing.T) {
	ctx := mustContext(t)
	for _, v := range []uint64{0, 1, 2, 500, 9999} {
		point := ctx.MulG(new(big.Int).SetUint64(v))
		got, ok := ctx.LookupValue(&point)
		if !ok {
			t.Fatalf("value %d not found in table", v)
		}
		if got != v {
			t.Fatalf("value %d: got %d", v, got)
		}
	}
}

func TestLookupValueOutOfRange(t *testing.T) {
	ctx := mustContext(t)
	point := ctx.MulG(new(big.Int).SetUint64(ctx.ValueTableMax() + 10))
	if _, ok := ctx.LookupValue(&point); ok {
		t.Fatal("expected value outside table range to miss")
	}
}

func TestScalarArithmeticModReduces(t *testing.T) {
	ctx := mustContext(t)
	sum := ctx.ScalarAdd(ctx.Order, big.NewInt(5))
	if sum.Cmp(big.NewInt(5)) != 0 {
		t.Fatalf("expected order+5 mod order == 5, got %s", sum)
	}
}

func TestPointJSONRoundTrip(t *testing.T) {
	ctx := mustContext(t)
	p := ctx.MulG(big.NewInt(42))
	pj := ctx.ToJSON(&p)
	back, err := ctx.FromJSON(pj)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if !back.Equal(&p) {
		t.Fatal("round trip mismatch")
	}
}

func TestFromJSONRejectsOffCurvePoint(t *testing.T) {
	ctx := mustContext(t)
	_, err := ctx.FromJSON(PointJSON{X: "1", Y: "3", Curve: "bn254-g1-default"})
	if err == nil {
		t.Fatal("expected off-curve point to be rejected")
	}
}
