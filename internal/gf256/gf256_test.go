package gf256

import "testing"

func TestMulInverse(t *testing.T) {
	f := New()
	for x := 1; x < 256; x++ {
		inv := f.Div(1, uint8(x))
		if got := f.Mul(uint8(x), inv); got != 1 {
			t.Errorf("mul(%d, inv(%d)=%d) = %d, want 1", x, x, inv, got)
		}
	}
}

func TestPow255IsOne(t *testing.T) {
	f := New()
	for x := 1; x < 256; x++ {
		if got := f.Pow(uint8(x), 255); got != 1 {
			t.Errorf("pow(%d, 255) = %d, want 1", x, got)
		}
	}
}

func TestMulZero(t *testing.T) {
	f := New()
	for x := 0; x < 256; x++ {
		if got := f.Mul(0, uint8(x)); got != 0 {
			t.Errorf("mul(0, %d) = %d, want 0", x, got)
		}
	}
}

func TestPolyEvalHorner(t *testing.T) {
	f := New()
	// poly(x) = 1 + 2x (ascending order coefficients).
	poly := []uint8{1, 2}
	got := f.PolyEval(poly, 3)
	want := f.Mul(2, 3) ^ 1
	if got != want {
		t.Errorf("PolyEval = %d, want %d", got, want)
	}
}

func TestPolyDerivCharacteristicTwo(t *testing.T) {
	f := New()
	poly := []uint8{5, 7, 9, 11, 13}
	dst := make([]uint8, len(poly)-1)
	f.PolyDeriv(dst, poly)
	for i := 1; i < len(poly); i++ {
		want := uint8(0)
		if i%2 == 1 {
			want = poly[i]
		}
		if dst[i-1] != want {
			t.Errorf("deriv[%d] = %d, want %d", i-1, dst[i-1], want)
		}
	}
}
