/*
NAME
  reedsolomon.go

DESCRIPTION
  reedsolomon implements the four-way interleaved RS(255,223) code used to
  protect the VCDU data zone: syndrome computation, Berlekamp-Massey,
  Chien search and Forney error-magnitude evaluation in the CCSDS
  dual-basis representation.

LICENSE
  See LICENSE file in the root of this repository.
*/

// Package reedsolomon implements the interleaved RS(255,223) decoder used
// to error-correct a Meteor-M VCDU.
package reedsolomon

import "github.com/meteorground/lrpt/internal/gf256"

// Code parameters, spec.md §6 "RS parameters".
const (
	N            = 255 // Codeword length.
	K            = 223 // Message length.
	T            = N - K
	T2           = T / 2
	FirstRoot    = 112
	RootSkip     = 11
	Interleaving = 4

	// gapRootExp is the multiplicative inverse of RootSkip modulo 255
	// (11*116 = 1276 = 5*255+1). See Decoder.gapRoot and DESIGN.md's
	// discussion of spec.md §9 open question (a): rather than replicate
	// the reference decoder's off-by-one gap-root table (built by
	// iterating a loop bound of N instead of N+1, leaving exactly one
	// field element unmapped and papering over the gap with a patched
	// log-table entry), the gap root is derived directly as the closed
	// form inverse power map, which is total over all 256 byte values
	// and needs no patch.
	gapRootExp = 116
)

// Decoder holds the process-wide constant tables (syndrome roots) for the
// interleaved RS(255,223) code. A Decoder is stateless across Fix calls and
// safe for reuse; construct one with New at startup.
type Decoder struct {
	gf     *gf256.Field
	zeroes [T]uint8 // roots of the generator polynomial
}

// New builds a Decoder, precomputing the generator polynomial's roots.
func New() *Decoder {
	gf := gf256.New()
	d := &Decoder{gf: gf}
	for i := 0; i < T; i++ {
		exp := ((i + FirstRoot) * RootSkip) % 255
		d.zeroes[i] = gf.Exp(exp)
	}
	return d
}

// gapRoot maps a field element back through the RootSkip'th power, i.e.
// gapRoot(x^RootSkip) == x for every field element x. It is total (defined
// for all 256 byte values, including 0) because exponentiation by
// gapRootExp is simply the inverse automorphism of exponentiation by
// RootSkip over the size-255 multiplicative group.
func (d *Decoder) gapRoot(x uint8) uint8 {
	return d.gf.Pow(x, gapRootExp)
}

// Fix error-corrects a 1020-byte VCDU data+RS-parity region in place
// (4-way interleaved, N=255 bytes per column), returning the total number
// of corrected symbols across the four columns, or -1 if any column could
// not be corrected. On success every byte of data has been corrected;
// on failure data is left exactly as fix_block left each column (some
// columns may have been "corrected" into a codeword different from the
// original, despite a failure being reported for a different column --
// this mirrors the reference decoder, whose caller always discards the
// whole VCDU on any column failure).
func (d *Decoder) Fix(data []byte) int {
	if len(data) != N*Interleaving {
		panic("reedsolomon: Fix requires exactly N*Interleaving bytes")
	}

	var block [N]byte
	total := 0
	for col := 0; col < Interleaving; col++ {
		for j := 0; j < N; j++ {
			block[j] = data[j*Interleaving+col]
		}

		n := d.fixBlock(block[:])
		if n < 0 || total < 0 {
			total = -1
		} else {
			total += n
		}

		for j := 0; j < N; j++ {
			data[j*Interleaving+col] = block[j]
		}
	}
	return total
}

// fixBlock error-corrects a single deinterleaved 255-byte RS codeword in
// place, returning the number of corrected symbols, or -1 if the block
// contains more errors than the code can correct.
func (d *Decoder) fixBlock(data []byte) int {
	gf := d.gf

	var syndrome [T]uint8
	hasErrors := false
	for i := 0; i < T; i++ {
		syndrome[i] = gf.PolyEval(data, d.zeroes[i])
		if syndrome[i] != 0 {
			hasErrors = true
		}
	}
	if !hasErrors {
		return 0
	}

	// Berlekamp-Massey.
	var lambda, prevLambda [T2 + 1]uint8
	lambda[0], prevLambda[0] = 1, 1
	lambdaDeg := 0
	prevDelta := uint8(1)
	m := 1

	for n := 0; n < T; n++ {
		delta := syndrome[n]
		for i := 1; i <= lambdaDeg; i++ {
			delta ^= gf.Mul(syndrome[n-i], lambda[i])
		}

		switch {
		case delta == 0:
			m++
		case 2*lambdaDeg <= n:
			tmp := lambda
			coeff := gf.Div(delta, prevDelta)
			for i := m; i <= T2; i++ {
				lambda[i] ^= gf.Mul(coeff, prevLambda[i-m])
			}
			prevLambda = tmp
			prevDelta = delta
			lambdaDeg = n + 1 - lambdaDeg
			if lambdaDeg > T2 {
				return -1
			}
			m = 1
		default:
			coeff := gf.Div(delta, prevDelta)
			for i := m; i <= T2; i++ {
				lambda[i] ^= gf.Mul(coeff, prevLambda[i-m])
			}
			m++
		}
	}

	// Chien search: brute force every nonzero field element looking for
	// roots of lambda, recovering the corresponding error position via the
	// gap-root table.
	var lambdaRoot, errorPos [T2]uint8
	errorCount := 0
	for i := 1; i <= N && errorCount < lambdaDeg; i++ {
		x := uint8(i)
		if gf.PolyEval(lambda[:], x) == 0 {
			lambdaRoot[errorCount] = x
			errorPos[errorCount] = uint8(gf.Log(d.gapRoot(gf.Div(1, x))))
			errorCount++
		}
	}
	if errorCount != lambdaDeg {
		return -1
	}

	var omega [T]uint8
	gf.PolyMul(omega[:], syndrome[:], lambda[:])
	var lambdaPrime [T2]uint8
	gf.PolyDeriv(lambdaPrime[:], lambda[:])

	for i := 0; i < errorCount; i++ {
		root := lambdaRoot[i]
		fcr := gf.Pow(root, FirstRoot-1)
		num := gf.PolyEval(omega[:], root)
		den := gf.PolyEval(lambdaPrime[:], root)
		data[errorPos[i]] ^= gf.Div(gf.Mul(num, fcr), den)
	}

	return errorCount
}
