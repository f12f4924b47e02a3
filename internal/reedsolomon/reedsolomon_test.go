package reedsolomon

import (
	"testing"

	"github.com/meteorground/lrpt/internal/gf256"
)

// encoder builds valid RS(255,223) codewords for test vectors, independent
// of the decoder under test.
type encoder struct {
	gf *gf256.Field
	g  [T + 1]uint8 // generator polynomial, ascending order, monic (g[T]=1)
}

func newEncoder() *encoder {
	gf := gf256.New()
	e := &encoder{gf: gf}
	e.g[0] = 1 // start with g(x) = 1
	deg := 0
	for i := 0; i < T; i++ {
		root := gf.Exp(((i + FirstRoot) * RootSkip) % 255)
		// Multiply current g by (x - root) == (x + root) over GF(2).
		var next [T + 1]uint8
		for j := 0; j <= deg; j++ {
			next[j+1] ^= e.g[j]
			next[j] ^= gf.Mul(e.g[j], root)
		}
		e.g = next
		deg++
	}
	return e
}

// encode returns a systematic RS(255,223) codeword (ascending-order
// coefficients, data[0] is x^0) for the given 223-byte message.
func (e *encoder) encode(message []byte) [N]byte {
	if len(message) != K {
		panic("encode: message must be K bytes")
	}

	var rem [N]byte
	copy(rem[T:], message)

	for i := N - 1; i >= T; i-- {
		coef := rem[i]
		if coef == 0 {
			continue
		}
		for j := 0; j <= T; j++ {
			rem[i-T+j] ^= e.gf.Mul(coef, e.g[j])
		}
	}

	var codeword [N]byte
	copy(codeword[T:], message)
	copy(codeword[:T], rem[:T])
	return codeword
}

func packInterleaved(columns [Interleaving][N]byte) []byte {
	out := make([]byte, N*Interleaving)
	for col := 0; col < Interleaving; col++ {
		for j := 0; j < N; j++ {
			out[j*Interleaving+col] = columns[col][j]
		}
	}
	return out
}

func testMessage(seed byte) []byte {
	msg := make([]byte, K)
	for i := range msg {
		msg[i] = byte(i)*7 + seed
	}
	return msg
}

func TestFixCleanBlock(t *testing.T) {
	d := New()
	enc := newEncoder()

	var cols [Interleaving][N]byte
	cols[0] = enc.encode(testMessage(1))
	data := packInterleaved(cols)

	got := d.Fix(data)
	if got != 0 {
		t.Fatalf("Fix on clean block = %d, want 0", got)
	}
}

func TestFixCorrectsExactlyT(t *testing.T) {
	d := New()
	enc := newEncoder()

	var cols [Interleaving][N]byte
	cols[0] = enc.encode(testMessage(2))
	want := cols[0]

	// Corrupt exactly T2=16 symbols in column 0.
	corrupted := cols
	for i := 0; i < T2; i++ {
		corrupted[0][i*15] ^= 0xFF
	}

	data := packInterleaved(corrupted)
	got := d.Fix(data)
	if got != T2 {
		t.Fatalf("Fix with %d errors = %d, want %d", T2, got, T2)
	}

	for j := 0; j < N; j++ {
		if data[j*Interleaving+0] != want[j] {
			t.Fatalf("byte %d mismatch after fix: got %x, want %x", j, data[j*Interleaving+0], want[j])
		}
	}
}

func TestFixFailsOnTooManyErrors(t *testing.T) {
	d := New()
	enc := newEncoder()

	var cols [Interleaving][N]byte
	cols[0] = enc.encode(testMessage(3))

	corrupted := cols
	for i := 0; i < T2+1; i++ {
		corrupted[0][i*15] ^= 0xFF
	}

	data := packInterleaved(corrupted)
	if got := d.Fix(data); got != -1 {
		t.Fatalf("Fix with %d errors = %d, want -1", T2+1, got)
	}
}

func TestGapRootIsTotalInverse(t *testing.T) {
	d := New()
	for x := 0; x < 256; x++ {
		v := d.gf.Pow(uint8(x), RootSkip)
		if got := d.gapRoot(v); got != uint8(x) {
			t.Errorf("gapRoot(pow(%d,%d)) = %d, want %d", x, RootSkip, got, x)
		}
	}
}
