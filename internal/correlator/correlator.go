/*
NAME
  correlator.go

DESCRIPTION
  correlator locates the CCSDS attached sync marker in a hard-demodulated
  bitstream, searching all four carrier phase/mirror ambiguities, and
  provides an autocorrelator used to re-derive the interleaver's marker
  phase after a dropout in "80k interleaved" mode.

LICENSE
  See LICENSE file in the root of this repository.
*/

// Package correlator implements CCSDS sync-marker correlation across the
// four OQPSK phase/mirror ambiguities, and an autocorrelator for
// recovering bit alignment from the periodic markers inserted by
// Meteor-M's interleaved transmission mode.
package correlator

import "math/bits"

// SyncWord is the 32-bit CCSDS attached synchronization marker.
const SyncWord uint32 = 0x1ACFFC1D

// Threshold is the number of agreeing bits (out of the 64 compared by
// Correlate64) between a candidate window and an encoded, rotated sync
// word that must be exceeded for the window to be accepted as a
// frame-sync hit.
const Threshold = 42

// Phase identifies one of the four ways a differential OQPSK receiver can
// lock onto the wrong carrier phase or I/Q mirror, each of which
// corresponds to a fixed bit transformation of the recovered stream.
type Phase int

const (
	Phase0 Phase = iota
	Phase90
	Phase180
	Phase270
	NumPhases = 4
)

// iMask and qMask select the even ("I") and odd ("Q") bit positions of a
// 32-bit word containing 16 interleaved I/Q dibits.
const (
	iMask = 0xaaaaaaaa
	qMask = 0x55555555
)

// Rotate applies the bit transformation for carrier phase p to a 32-bit
// hard-demodulated word: swapping I/Q and/or inverting one or both rails
// reproduces the effect of a 90-degree carrier phase ambiguity on an
// OQPSK constellation.
func Rotate(word uint32, p Phase) uint32 {
	switch p {
	case Phase0:
		return word
	case Phase90:
		return (word & iMask) | (^word & qMask)
	case Phase180:
		return ^word
	case Phase270:
		return (^word & iMask) | (word & qMask)
	default:
		panic("correlator: invalid phase")
	}
}

// Correlate64 returns the number of matching bits between two 64-bit
// words, i.e. 64 minus the Hamming distance between them.
func Correlate64(a, b uint64) int {
	return 64 - bits.OnesCount64(a^b)
}

// correlate32 returns the number of matching bits between two 32-bit
// words.
func correlate32(a, b uint32) int {
	return 32 - bits.OnesCount32(a^b)
}

// Find searches word (the next 32 hard bits of the candidate bitstream)
// against all four phase rotations of SyncWord and returns the
// best-matching phase and its bit-agreement score, the number of
// agreeing bits out of 32 (32 is an exact match).
func Find(word uint32) (best Phase, score int) {
	best, score = Phase0, -1
	for p := Phase(0); p < NumPhases; p++ {
		s := correlate32(word, Rotate(SyncWord, p))
		if s > score {
			score = s
			best = p
		}
	}
	return best, score
}

// Autocorrelator recovers the interleaved-mode marker phase by XORing the
// incoming bitstream against a delayed copy of itself: at the true marker
// stride, the periodic Marker bytes inserted by the transmitter produce a
// locally minimal number of differing bits, since two marker bytes
// compared against each other always agree.
type Autocorrelator struct {
	stride int
	delay  []byte // ring buffer of the last `stride` bytes
	pos    int
	sum    []int // running count of XOR-ones at each offset within stride
	filled bool
}

// NewAutocorrelator returns an Autocorrelator that searches for periodic
// structure with the given byte stride (normally deinterleave.MarkerStride).
func NewAutocorrelator(stride int) *Autocorrelator {
	return &Autocorrelator{
		stride: stride,
		delay:  make([]byte, stride),
		sum:    make([]int, stride),
	}
}

// Observe feeds one byte to the autocorrelator.
func (a *Autocorrelator) Observe(b byte) {
	prev := a.delay[a.pos]
	a.delay[a.pos] = b
	a.sum[a.pos] += bits.OnesCount8(b ^ prev)
	a.pos = (a.pos + 1) % a.stride
	if a.pos == 0 {
		a.filled = true
	}
}

// BestOffset returns the byte offset within the stride whose running
// XOR-ones average is smallest, i.e. the most likely marker phase, along
// with whether the autocorrelator has accumulated at least one full
// stride of history.
func (a *Autocorrelator) BestOffset() (offset int, ready bool) {
	if !a.filled {
		return 0, false
	}
	best := 0
	for i := 1; i < a.stride; i++ {
		if a.sum[i] < a.sum[best] {
			best = i
		}
	}
	return best, true
}

// Reset clears all accumulated history.
func (a *Autocorrelator) Reset() {
	for i := range a.sum {
		a.sum[i] = 0
	}
	for i := range a.delay {
		a.delay[i] = 0
	}
	a.pos = 0
	a.filled = false
}
