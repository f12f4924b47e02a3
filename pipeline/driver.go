/*
NAME
  driver.go

DESCRIPTION
  driver implements the READ/PARSE_MPDU/VIT_SECOND decoder state machine:
  one call to Driver.Next reads and frame-syncs a CADU, Viterbi-decodes it
  (one CADU's trailing bits behind, per the Viterbi decoder's own
  documented delay), descrambles and Reed-Solomon corrects it, then
  yields the MPDUs reassembled from its VCDU one at a time.

LICENSE
  See LICENSE file in the root of this repository.
*/

// Package pipeline drives the Meteor-M LRPT decode chain end to end: frame
// sync, Viterbi decode, descramble, Reed-Solomon correction and VCDU/MPDU
// reassembly, over a stream of soft QPSK samples from an input.Source.
package pipeline

import (
	"github.com/meteorground/lrpt/input"
	"github.com/meteorground/lrpt/internal/correlator"
	"github.com/meteorground/lrpt/internal/deinterleave"
	"github.com/meteorground/lrpt/internal/descramble"
	"github.com/meteorground/lrpt/internal/diffcode"
	"github.com/meteorground/lrpt/internal/reassemble"
	"github.com/meteorground/lrpt/internal/reedsolomon"
	"github.com/meteorground/lrpt/internal/viterbi"
	"github.com/meteorground/lrpt/protocol"
)

// Status reports what a single call to Driver.Next accomplished, mirroring
// the reference decoder's DecoderState.
type Status int

const (
	// EOFReached means the sample source is exhausted; decoding is done.
	EOFReached Status = iota
	// NotReady means more calls are needed before another MPDU is ready.
	NotReady
	// MpduReady means Next's Mpdu return value holds a freshly
	// reassembled MPDU.
	MpduReady
	// StatsOnly means a CADU finished decoding but produced no new MPDU;
	// Driver's RSErrors/VitAvg/VCDUSeq fields were updated.
	StatsOnly
)

const (
	// caduLen is one CADU: the attached sync marker plus one VCDU.
	caduLen = protocol.SyncLength + protocol.VcduLength

	// softLen is the number of soft samples spanning one CADU: one
	// sample per rate-1/2 encoded bit.
	softLen = 2 * 8 * caduLen

	// softBufLen leaves room for the frame-sync search to shift the
	// window by up to a full extra CADU, mirroring the reference
	// decoder's double-length sample buffer.
	softBufLen = 2*softLen + 8
)

type driverState int

const (
	stateRead driverState = iota
	stateParseMpdu
	stateVitSecond
)

// Driver implements the READ/PARSE_MPDU/VIT_SECOND state machine. A Driver
// is not safe for concurrent use.
type Driver struct {
	src         input.Source
	diffcoded   bool
	interleaved bool

	diff  *diffcode.Decoder
	vit   *viterbi.Decoder
	rs    *reedsolomon.Decoder
	reasm *reassemble.Reassembler
	deint *deinterleave.Deinterleaver
	auto  *correlator.Autocorrelator

	syncwords [correlator.NumPhases]uint64

	st     driverState
	soft   []int8
	offset int
	cadu   [caduLen]byte
	vcdu   protocol.Vcdu

	vitTotal int

	interPhase     correlator.Phase
	lastSyncOffset int

	// RSErrors, VitAvg and VCDUSeq are updated every time a CADU finishes
	// decoding (on both MpduReady and StatsOnly returns).
	RSErrors int
	VitAvg   int
	VCDUSeq  uint32
}

// NewDriver returns a Driver reading soft samples from src. diffcoded and
// interleaved select the same two transmission-mode options as the
// reference decoder's decode_init.
func NewDriver(src input.Source, diffcoded, interleaved bool) *Driver {
	d := &Driver{
		src:         src,
		diffcoded:   diffcoded,
		interleaved: interleaved,
		diff:        diffcode.New(),
		vit:         viterbi.New(),
		rs:          reedsolomon.New(),
		reasm:       reassemble.New(),
		deint:       deinterleave.New(),
		auto:        correlator.NewAutocorrelator(deinterleave.MarkerStride),
		soft:        make([]int8, softBufLen),
	}

	encoded, _ := viterbi.ConvEncodeU32(0, correlator.SyncWord)
	hi, lo := uint32(encoded>>32), uint32(encoded)
	for p := correlator.Phase(0); p < correlator.NumPhases; p++ {
		d.syncwords[p] = uint64(correlator.Rotate(hi, p))<<32 | uint64(correlator.Rotate(lo, p))
	}
	return d
}

// Next decodes as far as it can with the data read so far, returning one
// of the four Status values. Callers should loop calling Next until it
// returns EOFReached, handling an Mpdu whenever MpduReady is returned.
func (d *Driver) Next() (protocol.Mpdu, Status) {
	for {
		switch d.st {
		case stateRead:
			if err := d.readSamples(d.soft[:softLen]); err != nil {
				return protocol.Mpdu{}, EOFReached
			}

			if d.diffcoded {
				d.diff.Decode(d.soft[:softLen])
			}

			hard := softToHard(d.soft[:softLen])
			offset, phase := d.correlate(hard)

			if offset > 0 {
				if err := d.readSamples(d.soft[softLen : softLen+offset]); err != nil {
					return protocol.Mpdu{}, EOFReached
				}
			}

			softDerotate(d.soft[offset:offset+softLen], phase)

			// Finish decoding the previous CADU: its final viterbi.Delay
			// bytes trail by one Next cycle, per Decoder.Decode's
			// documented output delay.
			tail := d.cadu[caduLen-viterbi.Delay:]
			vit := d.vit.Decode(tail, d.soft[offset:offset+2*8*viterbi.Delay], viterbi.Delay)
			d.vitTotal += vit

			vcduBuf := d.cadu[protocol.SyncLength:]
			descramble.Descramble(vcduBuf)
			errors := d.rs.Fix(vcduBuf)
			d.RSErrors = errors

			d.offset = offset

			if errors < 0 {
				d.reasm = reassemble.New()
				d.st = stateVitSecond
				continue
			}

			vcdu, err := protocol.ParseVcdu(vcduBuf)
			if err != nil {
				d.st = stateVitSecond
				continue
			}
			d.vcdu = vcdu
			d.VCDUSeq = vcdu.Counter()
			d.st = stateParseMpdu
			continue

		case stateParseMpdu:
			switch d.reasm.Feed(d.vcdu) {
			case reassemble.Parsed:
				return d.reasm.Mpdu(), MpduReady
			case reassemble.Proceed:
				d.st = stateVitSecond
			}
			return protocol.Mpdu{}, NotReady

		case stateVitSecond:
			rest := d.cadu[:caduLen-viterbi.Delay]
			in := d.soft[d.offset+2*8*viterbi.Delay : d.offset+softLen]
			vit := d.vit.Decode(rest, in, caduLen-viterbi.Delay)
			d.vitTotal += vit
			d.VitAvg = d.vitTotal / caduLen
			d.st = stateRead
			return protocol.Mpdu{}, StatsOnly
		}
	}
}

// readSamples dispatches to the plain or interleaved-mode sample reader.
func (d *Driver) readSamples(dst []int8) error {
	if !d.interleaved {
		return readInt8(d.src, dst)
	}
	return d.readInterleaved(dst)
}

// correlate searches hard (the hard-sliced, not yet Viterbi-decoded
// samples of one CADU) for the best-matching bit offset and carrier
// phase against the convolutionally-encoded sync word, preferring offset
// 0 whenever any phase there already clears correlator.Threshold.
func (d *Driver) correlate(hard []byte) (offset int, phase correlator.Phase) {
	if len(hard) < 8 {
		return 0, correlator.Phase0
	}

	window := uint64(0)
	for i := 0; i < 8; i++ {
		window = window<<8 | uint64(hard[i])
	}

	for p, sw := range d.syncwords {
		if correlator.Correlate64(sw, window) > correlator.Threshold {
			return 0, correlator.Phase(p)
		}
	}

	best := 0
	bestOffset := 0
	bestPhase := correlator.Phase0
	for i := 0; i < len(hard)-8; i++ {
		b := hard[8+i]
		for j := 0; j < 8; j++ {
			for p, sw := range d.syncwords {
				c := correlator.Correlate64(sw, window)
				if c > best {
					best = c
					bestOffset = i*8 + j
					bestPhase = correlator.Phase(p)
				}
			}
			window = window<<1 | uint64((b>>uint(7-j))&1)
		}
	}
	return bestOffset, bestPhase
}
