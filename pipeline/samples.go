/*
NAME
  samples.go

DESCRIPTION
  samples implements the small soft/hard sample-domain primitives the
  driver's READ state needs: hard-decision slicing, derotation across the
  four OQPSK phase ambiguities, and the interleaved-mode input sizing
  formula.

LICENSE
  See LICENSE file in the root of this repository.
*/

package pipeline

import (
	"github.com/meteorground/lrpt/internal/correlator"
	"github.com/meteorground/lrpt/internal/deinterleave"
	"github.com/meteorground/lrpt/input"
)

// readInt8 reads exactly len(dst) soft samples from src.
func readInt8(src input.Source, dst []int8) error {
	buf := make([]byte, len(dst))
	if err := src.ReadFull(buf); err != nil {
		return err
	}
	for i, b := range buf {
		dst[i] = int8(b)
	}
	return nil
}

// softToHard hard-slices len(soft)/8 bytes, MSB first: the first sample
// of each group of 8 becomes the top bit.
func softToHard(soft []int8) []byte {
	hard := make([]byte, len(soft)/8)
	for i := range hard {
		var h byte
		for bit := 0; bit < 8; bit++ {
			if soft[i*8+bit] < 0 {
				h |= 1 << uint(7-bit)
			}
		}
		hard[i] = h
	}
	return hard
}

// softDerotate undoes carrier phase ambiguity p on soft in place,
// clamping to -127 first to avoid overflow when negating.
func softDerotate(soft []int8, p correlator.Phase) {
	for i := range soft {
		if soft[i] < -127 {
			soft[i] = -127
		}
	}

	switch p {
	case correlator.Phase0:
	case correlator.Phase270:
		for i := 0; i+1 < len(soft); i += 2 {
			x, y := soft[i], soft[i+1]
			soft[i] = -y
			soft[i+1] = x
		}
	case correlator.Phase180:
		for i := range soft {
			soft[i] = -soft[i]
		}
	case correlator.Phase90:
		for i := 0; i+1 < len(soft); i += 2 {
			x, y := soft[i], soft[i+1]
			soft[i] = y
			soft[i+1] = -x
		}
	}
}

// interleaveInputSamples returns the number of raw interleaved samples
// (payload plus periodic sync marker bytes) that must be read to obtain
// outputLen deinterleaved samples, plus a small safety margin.
func interleaveInputSamples(outputLen int) int {
	return outputLen*deinterleave.MarkerStride/deinterleave.MarkerInterSamps + 8
}

// deinterleaveInt8 runs a Deinterleaver over int8 soft samples, bridging
// to the byte-oriented Deinterleaver API.
func deinterleaveInt8(d *deinterleave.Deinterleaver, dst, src []int8) {
	bsrc := make([]byte, len(src))
	for i, v := range src {
		bsrc[i] = byte(v)
	}
	bdst := make([]byte, len(dst))
	n := d.Deinterleave(bdst, bsrc)
	for i := 0; i < n; i++ {
		dst[i] = int8(bdst[i])
	}
}
