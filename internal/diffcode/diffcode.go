/*
NAME
  diffcode.go

DESCRIPTION
  diffcode undoes the differential OQPSK encoding applied by the Meteor-M
  transmitter, recovering absolute soft I/Q samples from the
  differentially-coded samples produced by the demodulator.

LICENSE
  See LICENSE file in the root of this repository.
*/

// Package diffcode implements the differential OQPSK postdecoder: it turns
// differentially-coded soft samples back into absolute soft samples, one
// sample pair (Q, I) at a time, carrying state across calls.
package diffcode

import "math/bits"

// Decoder tracks the previous sample pair across calls, since differential
// decoding of one symbol depends on the symbol before it.
type Decoder struct {
	prevI, prevQ int8
}

// New returns a Decoder with zeroed history.
func New() *Decoder {
	return &Decoder{}
}

// Decode differentially decodes samples in place. samples holds
// interleaved Q,I soft-sample pairs (Q first, matching the demodulator's
// output order); its length must be even.
func (d *Decoder) Decode(samples []int8) {
	if len(samples)%2 != 0 {
		panic("diffcode: samples must hold an even number of values (Q,I pairs)")
	}

	for i := 0; i < len(samples); i += 2 {
		q := samples[i]
		in := samples[i+1]

		newQ := signSqrt(int(q) * int(d.prevQ))
		newI := signSqrt(-int(in) * int(d.prevI))

		d.prevQ = q
		d.prevI = in

		samples[i] = newQ
		samples[i+1] = newI
	}
}

// signSqrt returns sign(x) * isqrt(|x|), using the approximate integer
// square root below rather than an exactly rounded one. It
// maps the product of two soft samples (each roughly proportional to a
// confidence-weighted sign) back onto the same soft-sample scale.
func signSqrt(x int) int8 {
	if x > 0 {
		return int8(isqrt(x))
	}
	return int8(-isqrt(-x))
}

// isqrt approximates the integer square root of a non-negative x: a
// power-of-two initial guess refined by four fixed Newton iterations,
// matching the reference decoder's int_sqrt exactly. This is deliberately
// not an exact sqrt (isqrt(9) is 2, not 3) and the soft-sample rescaling
// in signSqrt above depends on that specific approximation, not a truer one.
func isqrt(x int) int {
	guess := 1 << ((32 - bits.LeadingZeros32(uint32(x))) >> 1)
	if guess < 2 {
		return 0
	}
	half := x >> 1
	for i := 0; i < 4; i++ {
		guess = (guess >> 1) + half/guess
	}
	return guess
}
