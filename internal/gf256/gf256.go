/*
NAME
  gf256.go

DESCRIPTION
  gf256 provides arithmetic over GF(2^8) with the CCSDS/Meteor-M generator
  polynomial 0x187 (x^8+x^7+x^2+x+1 in the representation used by the
  reference decoder), backing the Reed-Solomon decoder in
  internal/reedsolomon.

LICENSE
  See LICENSE file in the root of this repository.
*/

// Package gf256 implements Galois field GF(2^8) arithmetic: multiply,
// divide, power and polynomial helpers used by the Reed-Solomon decoder.
package gf256

// GenPoly is the field-generating polynomial used by the Meteor-M downlink's
// Reed-Solomon code.
const GenPoly = 0x187

// Field holds the precomputed log/antilog tables for GF(2^8). It is
// immutable once built by New and safe for concurrent read-only use.
type Field struct {
	alpha [256]uint8 // alpha[i] = 2^i mod GenPoly
	log   [256]uint8 // log[alpha[i]] = i
}

// New builds the GF(2^8) log/antilog tables for generator 2 and the field
// polynomial GenPoly. Index 0 of the log table has no discrete logarithm;
// it is left at zero and must never be looked up (Div and Pow both special
// case a zero operand before consulting the table).
func New() *Field {
	var f Field

	f.alpha[0] = 1
	for i := 1; i < 255; i++ {
		v := int(f.alpha[i-1]) << 1
		if v > 255 {
			v ^= GenPoly
		}
		f.alpha[i] = uint8(v)
		f.log[f.alpha[i]] = uint8(i)
	}
	f.alpha[255] = 0

	return &f
}

// Mul returns x*y in GF(2^8).
func (f *Field) Mul(x, y uint8) uint8 {
	if x == 0 || y == 0 {
		return 0
	}
	return f.alpha[(int(f.log[x])+int(f.log[y]))%255]
}

// Div returns x/y in GF(2^8). Div panics if y is zero, since division by
// zero is a programmer error in every caller of this package (every divisor
// here is a known-nonzero field element derived from a root or a nonzero
// error locator).
func (f *Field) Div(x, y uint8) uint8 {
	if y == 0 {
		panic("gf256: division by zero")
	}
	if x == 0 {
		return 0
	}
	return f.alpha[(255+int(f.log[x])-int(f.log[y]))%255]
}

// Pow returns x^e in GF(2^8).
func (f *Field) Pow(x uint8, e int) uint8 {
	if x == 0 {
		return 0
	}
	exp := (int(f.log[x]) * e) % 255
	if exp < 0 {
		exp += 255
	}
	return f.alpha[exp]
}

// Exp returns alpha^i (2^i mod GenPoly), the base-2 antilog of i mod 255.
func (f *Field) Exp(i int) uint8 {
	i %= 255
	if i < 0 {
		i += 255
	}
	return f.alpha[i]
}

// Log returns the discrete logarithm of x base alpha=2. Log must not be
// called with x==0.
func (f *Field) Log(x uint8) int {
	return int(f.log[x])
}

// PolyEval evaluates poly (ascending-order coefficients) at x using
// Horner's scheme.
func (f *Field) PolyEval(poly []uint8, x uint8) uint8 {
	var ret uint8
	for i := len(poly) - 1; i >= 0; i-- {
		ret = f.Mul(ret, x) ^ poly[i]
	}
	return ret
}

// PolyMul multiplies poly1 by poly2 (both ascending-order coefficients) and
// writes the result into dst, truncating to len(dst) terms. dst must not
// alias poly1 or poly2.
func (f *Field) PolyMul(dst, poly1, poly2 []uint8) {
	for i := range dst {
		dst[i] = 0
	}
	for j := range poly2 {
		for i := range poly1 {
			if i+j < len(dst) {
				dst[i+j] ^= f.Mul(poly1[i], poly2[j])
			}
		}
	}
}

// PolyDeriv computes the formal derivative of poly (ascending-order
// coefficients) over a field of characteristic 2: the coefficient at i-1
// is poly[i] if i is odd, else 0 (an even number of identical XOR terms
// cancels). dst must have at least len(poly)-1 elements.
func (f *Field) PolyDeriv(dst, poly []uint8) {
	for i := 1; i < len(poly); i++ {
		if i%2 == 1 {
			dst[i-1] = poly[i]
		} else {
			dst[i-1] = 0
		}
	}
}
