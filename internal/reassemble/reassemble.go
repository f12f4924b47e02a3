/*
NAME
  reassemble.go

DESCRIPTION
  reassemble reconstructs MPDUs from the stream of VCDUs a Meteor-M
  downlink breaks them across, using the VCDU first-header-pointer field
  to recover synchronization after a dropout.

LICENSE
  See LICENSE file in the root of this repository.
*/

// Package reassemble reconstructs MPDUs from a stream of Reed-Solomon
// corrected VCDUs.
package reassemble

import "github.com/meteorground/lrpt/protocol"

// Status reports what a single Reassembler.Feed call accomplished.
type Status int

const (
	// Proceed means there is no more data to extract from the current
	// VCDU; the caller should move on to the next one.
	Proceed Status = iota
	// Fragment means some bytes were consumed but no complete MPDU is
	// available yet; call Feed again with the same VCDU.
	Fragment
	// Parsed means a complete MPDU was reconstructed and is available
	// from Reassembler.Mpdu; the caller should process it and call Feed
	// again, since the current VCDU may hold more data.
	Parsed
)

type state int

const (
	stateIdle state = iota
	stateHeader
	stateData
)

// Reassembler rebuilds MPDUs by walking the data unit zone of successive
// VCDUs from the same virtual channel. It is not safe for concurrent use
// and must see every VCDU of a channel in order; a gap (e.g. a VCDU that
// failed Reed-Solomon correction) should be fed in anyway so the header
// pointer mechanism can resynchronize on the next good VCDU.
type Reassembler struct {
	st         state
	offset     uint16 // byte offset into the current VCDU's data zone
	fragOffset int    // bytes already written into buf
	doneLen    int    // total length of the last MPDU completed by Feed

	buf [protocol.Length]byte
}

// New returns a Reassembler in its initial (Idle) state.
func New() *Reassembler {
	return &Reassembler{}
}

// Feed advances the reassembler using one VCDU's data unit zone. Callers
// should loop, calling Feed repeatedly on the same VCDU until it returns
// Proceed, checking for Parsed after each call.
func (r *Reassembler) Feed(vcdu protocol.Vcdu) Status {
	// A VCDU with a zero version or zero virtual channel ID slipped past
	// Reed-Solomon correction as noise rather than a real frame; skip it
	// outright rather than risk building a garbage MPDU from it.
	if vcdu.Version() == 0 || vcdu.VirtualChannelID() == 0 {
		return Proceed
	}

	data := vcdu.Data()
	jmpIdle := vcdu.HeaderPresent() && r.offset == 0

	switch r.st {
	case stateIdle:
		if !vcdu.HeaderPresent() {
			return Proceed
		}
		r.offset = vcdu.HeaderPointer()
		if r.offset > protocol.VcduDataLength {
			return Proceed
		}
		r.fragOffset = 0
		r.st = stateHeader
		return Fragment

	case stateHeader:
		bytesLeft := protocol.PrimaryHeaderLength - r.fragOffset
		if int(r.offset)+bytesLeft < protocol.VcduDataLength {
			copy(r.buf[r.fragOffset:], data[r.offset:int(r.offset)+bytesLeft])
			r.fragOffset = 0
			r.offset += uint16(bytesLeft)
			r.st = stateData
			return Fragment
		}
		n := protocol.VcduDataLength - int(r.offset)
		copy(r.buf[r.fragOffset:], data[r.offset:])
		r.fragOffset += n
		r.offset = 0
		return Proceed

	case stateData:
		// The primary header (written in full by stateHeader before this
		// state is ever entered) is enough to know the packet's declared
		// length, even though the secondary header and payload have not
		// arrived yet. fragOffset here counts bytes written into the data
		// region, which starts right after the primary header.
		want, err := protocol.PeekDataLength(r.buf[:protocol.PrimaryHeaderLength])
		if err != nil {
			r.st = stateIdle
			return Proceed
		}
		dst := r.buf[protocol.PrimaryHeaderLength:]
		bytesLeft := int(want) - r.fragOffset
		if int(r.offset)+bytesLeft < protocol.VcduDataLength {
			copy(dst[r.fragOffset:], data[r.offset:int(r.offset)+bytesLeft])
			r.doneLen = protocol.PrimaryHeaderLength + r.fragOffset + bytesLeft
			r.fragOffset = 0
			r.offset += uint16(bytesLeft)
			if jmpIdle {
				r.st = stateIdle
			} else {
				r.st = stateHeader
			}
			return Parsed
		}
		n := protocol.VcduDataLength - int(r.offset)
		copy(dst[r.fragOffset:], data[r.offset:])
		r.fragOffset += n
		r.offset = 0
		if jmpIdle {
			r.st = stateIdle
			return Fragment
		}
		r.st = stateData
		return Proceed
	}

	return Proceed
}

// Mpdu returns the most recently completed MPDU. It is only valid to call
// immediately after Feed has returned Parsed.
func (r *Reassembler) Mpdu() protocol.Mpdu {
	m, _ := protocol.ParseMpdu(r.buf[:r.doneLen])
	return m
}
