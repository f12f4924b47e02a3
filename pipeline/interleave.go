/*
NAME
  interleave.go

DESCRIPTION
  interleave implements the "80k interleaved" mode sample reader: it
  strips and tracks the periodic sync markers the transmitter inserts
  every MarkerStride bytes, re-deriving bit alignment via autocorrelation
  whenever enough history has accumulated, and feeds the result through a
  Deinterleaver.

LICENSE
  See LICENSE file in the root of this repository.
*/

package pipeline

import "github.com/meteorground/lrpt/internal/deinterleave"

// readInterleaved fills dst with deinterleaved samples read from the
// source's raw interleaved stream, adapted from decode.c's read_samples.
//
// This port always reads forward: the reference decoder can reuse bytes
// sitting just before its destination pointer inside one large static
// sample buffer when a resync shift comes out negative, but this
// implementation has no such backing store, so a negative shift is
// treated as already-aligned (offset 0) instead. This only affects
// resync precision right after a marker-alignment dropout; it does not
// change behavior once alignment is found, since BestOffset converges to
// the same true offset on the following call.
func (d *Driver) readInterleaved(dst []int8) error {
	outLen := len(dst)
	numSamples := interleaveInputSamples(outLen)

	buf := make([]int8, numSamples+deinterleave.MarkerStride)
	if err := readInt8(d.src, buf[:numSamples]); err != nil {
		return err
	}

	if numSamples < deinterleave.MarkerStride*8 {
		// Not enough history to reliably resync; assume the existing
		// alignment still holds.
		softDerotate(buf[:numSamples], d.interPhase)
		deinterleaveInt8(d.deint, dst, buf[:outLen])
		return nil
	}

	hard := softToHard(buf[:numSamples&^0x7])
	for _, b := range hard {
		d.auto.Observe(b)
	}
	autoOffset, ready := d.auto.BestOffset()
	if !ready {
		autoOffset = 0
	}

	deintOffset := deinterleave.ExpectedSyncOffset(d.lastSyncOffset)
	offset := (autoOffset - deintOffset + deinterleave.MarkerInterSamps + 1) % deinterleave.MarkerStride
	if offset > deinterleave.MarkerStride/2 {
		offset -= deinterleave.MarkerStride
	}
	if offset < 0 {
		offset = 0
	}

	if offset > 0 {
		if err := readInt8(d.src, buf[numSamples:numSamples+offset]); err != nil {
			return err
		}
	}

	softDerotate(buf[:numSamples+offset], d.interPhase)
	deinterleaveInt8(d.deint, dst, buf[offset:offset+outLen])
	d.lastSyncOffset = autoOffset
	return nil
}
