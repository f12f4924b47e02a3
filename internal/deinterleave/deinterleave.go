/*
NAME
  deinterleave.go

DESCRIPTION
  deinterleave implements the 36-branch, 2048-byte-delay periodic
  convolutional deinterleaver applied to the Meteor-M downlink's "80k
  interleaved" transmission mode, along with the fixed-period sync markers
  that mode inserts to let a receiver locate itself within the
  interleaver's branch cycle after a dropout.

LICENSE
  See LICENSE file in the root of this repository.
*/

// Package deinterleave implements the convolutional deinterleaver used by
// Meteor-M's interleaved ("80k") transmission mode.
package deinterleave

// Interleaver geometry (spec.md §4.3).
const (
	BranchCount = 36
	BranchDelay = 2048

	// Marker is the byte value inserted by the transmitter once every
	// MarkerStride bytes of interleaved output, MarkerInterSamps bytes of
	// which are payload.
	Marker           = 0x27
	MarkerStride     = 80
	MarkerInterSamps = 72
)

// Deinterleaver reverses the branch-delay-line convolutional interleaver:
// branch i of the input stream passes through a delay line of
// i*BranchDelay bytes before being re-multiplexed; since each branch is
// serviced once every BranchCount bytes, that is a delay of
// i*BranchDelay*BranchCount stream positions. A Deinterleaver owns
// BranchCount ring buffers and
// must be fed bytes in strict arrival order; it is not safe for
// concurrent use.
type Deinterleaver struct {
	buf   [BranchCount][]byte
	pos   [BranchCount]int
	index int // next branch to service, cycles 0..BranchCount-1
}

// New returns a Deinterleaver with all delay lines zeroed. Branch i is
// given a delay line of i*BranchDelay bytes, the standard convolutional
// interleaver construction: branch 0 passes through unchanged and branch
// BranchCount-1 is delayed by (BranchCount-1)*BranchDelay bytes.
func New() *Deinterleaver {
	d := &Deinterleaver{}
	for i := range d.buf {
		d.buf[i] = make([]byte, i*BranchDelay)
	}
	return d
}

// Deinterleave processes src byte-by-byte, writing the deinterleaved
// stream to dst (len(dst) must be >= len(src)), and returns the number of
// bytes written. Output trails input: the delay line for branch i holds
// i*BranchDelay bytes, so until a fresh Deinterleaver has filled a line
// once, that branch's output positions carry the line's initial zeros
// (for branch BranchCount-1, the first
// (BranchCount-1)*BranchDelay*BranchCount bytes fed).
func (d *Deinterleaver) Deinterleave(dst, src []byte) int {
	n := 0
	for _, b := range src {
		branch := d.index
		line := d.buf[branch]
		if len(line) > 0 {
			pos := d.pos[branch]
			out := line[pos]
			line[pos] = b
			d.pos[branch] = (pos + 1) % len(line)
			dst[n] = out
		} else {
			dst[n] = b
		}
		n++
		d.index = (d.index + 1) % BranchCount
	}
	return n
}

// ExpectedSyncOffset returns the byte offset, modulo MarkerStride, at
// which the next Marker byte is expected in the raw (not yet
// deinterleaved) bitstream, given lastOffset, the position within the
// MarkerStride framing at which a marker was last located. Markers repeat
// every MarkerStride bytes, so this is lastOffset reduced modulo
// MarkerStride. It is used to re-synchronize the bit-level reader
// after a dropout in interleaved mode (spec.md §4.3, §9 open question
// (b)).
func ExpectedSyncOffset(lastOffset int) int {
	return (lastOffset + MarkerStride) % MarkerStride
}

// NumSamples returns the number of deinterleaved output bytes produced by
// feeding n raw bytes into a fresh Deinterleaver, accounting for the
// MarkerStride/MarkerInterSamps framing of interleaved-mode samples: every
// MarkerStride raw bytes contain MarkerInterSamps bytes of deinterleaver
// input (the remainder are marker bytes, stripped before reaching
// Deinterleave).
func NumSamples(n int) int {
	return (n / MarkerStride) * MarkerInterSamps
}
