package diffcode

import "testing"

// TestIsqrtMatchesReferenceApproximation pins isqrt to the reference
// decoder's int_sqrt: a fast four-iteration Newton approximation, not an
// exact square root. Several of these (9, 50, 10000) are perfect or
// near-perfect squares where the approximation is deliberately off by one
// from the true root.
func TestIsqrtMatchesReferenceApproximation(t *testing.T) {
	cases := map[int]int{
		0: 0, 1: 0, 2: 1, 3: 1, 4: 2, 9: 2, 15: 3, 16: 4,
		50: 6, 127: 10, 128: 11, 10000: 99, 16129: 126,
	}
	for x, want := range cases {
		if got := isqrt(x); got != want {
			t.Errorf("isqrt(%d) = %d, want %d", x, got, want)
		}
	}
}

func TestSignSqrtSign(t *testing.T) {
	if signSqrt(100) <= 0 {
		t.Errorf("signSqrt(100) should be positive")
	}
	if signSqrt(-100) >= 0 {
		t.Errorf("signSqrt(-100) should be negative")
	}
	if signSqrt(0) != 0 {
		t.Errorf("signSqrt(0) should be 0")
	}
}

func TestDecodeStatePersistsAcrossCalls(t *testing.T) {
	d := New()

	// First call establishes prevI/prevQ from the given samples.
	buf1 := []int8{10, 20}
	d.Decode(buf1)

	// A second call's output must depend on the first call's final
	// sample pair, not be independent of it.
	d2 := New()
	buf2a := []int8{10, 20, 30, 40}
	d2.Decode(buf2a)

	buf2b := []int8{10, 20}
	d3 := New()
	d3.Decode(buf2b)
	buf2c := []int8{30, 40}
	d3.Decode(buf2c)

	if buf2a[0] != buf2b[0] || buf2a[1] != buf2b[1] {
		t.Fatalf("first pair differs between single-call and split-call decoding")
	}
	if buf2a[2] != buf2c[0] || buf2a[3] != buf2c[1] {
		t.Fatalf("decoder state did not carry across calls: got (%d,%d), want (%d,%d)",
			buf2c[0], buf2c[1], buf2a[2], buf2a[3])
	}
}

func TestDecodeEvenLengthRequired(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Decode with odd-length input should panic")
		}
	}()
	New().Decode([]int8{1, 2, 3})
}
