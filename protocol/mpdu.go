/*
NAME
  mpdu.go

DESCRIPTION
  mpdu defines the Multiplexing Protocol Data Unit layout carried inside
  a VCDU's data zone: a CCSDS space packet primary header, a timestamp
  secondary header, and one MCU segment of payload.

LICENSE
  See LICENSE file in the root of this repository.
*/

package protocol

import (
	"fmt"

	"github.com/pkg/errors"
)

// Byte lengths of an MPDU's fixed-size regions.
const (
	mpduIDLen    = 2
	mpduSeqLen   = 2
	mpduLenLen   = 2
	timestampLen = 2 + 4 + 2 // day, ms, us

	// PrimaryHeaderLength is the size of an MPDU's CCSDS primary header:
	// id, sequence control, and packet data length fields.
	PrimaryHeaderLength = mpduIDLen + mpduSeqLen + mpduLenLen

	// HeaderLength is the size of an MPDU's primary plus secondary
	// (timestamp) header, everything before its MCU segment.
	HeaderLength = PrimaryHeaderLength + timestampLen

	// Length is the total size of one MPDU (header plus one MCU segment).
	Length = HeaderLength + McuSegmentLength

	// MaxSeq is one past the largest value of the 14-bit sequence count
	// field, i.e. the modulus it counts in.
	MaxSeq = 16384

	// PerLine is the number of MPDUs making up one scan line's worth of
	// imaging data for a single channel.
	PerLine = 14

	// PerPeriod is the number of MPDUs in one full minor-frame period:
	// three channels' worth of scan lines, plus one calibration MPDU.
	PerPeriod = 3*PerLine + 1

	// UsPerDay is the number of microseconds in a day, the modulus of the
	// MPDU timestamp's raw microsecond-of-day representation.
	UsPerDay = 1000 * 1000 * 86400
)

// ErrShortMpdu is returned by ParseMpdu when given fewer than HeaderLength
// bytes.
var ErrShortMpdu = errors.New("protocol: buffer shorter than one MPDU header")

// ErrShortPrimaryHeader is returned by PeekDataLength when given fewer
// than PrimaryHeaderLength bytes.
var ErrShortPrimaryHeader = errors.New("protocol: buffer shorter than one MPDU primary header")

// PeekDataLength reads the packet data length field out of an MPDU's
// primary header alone (buf need only hold PrimaryHeaderLength bytes),
// for use while reassembling an MPDU whose secondary header has not yet
// arrived.
func PeekDataLength(buf []byte) (uint16, error) {
	if len(buf) < PrimaryHeaderLength {
		return 0, ErrShortPrimaryHeader
	}
	return (uint16(buf[4])<<8 | uint16(buf[5])) + 1, nil
}

/*
Mpdu is a Multiplexing Protocol Data Unit. Below is its byte layout for
reference.

============================================================================
| octet range | field                                                     |
============================================================================
| 0           | version (bits 0-2) | type (bit 3) | sec. hdr flag (bit 4) |
|             | APID high 3 bits (bits 5-7)                              |
----------------------------------------------------------------------------
| 1           | APID low 8 bits                                          |
----------------------------------------------------------------------------
| 2           | seq flags (bits 0-1) | seq count high 6 bits (bits 2-7)   |
----------------------------------------------------------------------------
| 3           | seq count low 8 bits                                     |
----------------------------------------------------------------------------
| 4..5        | packet data length minus one, big-endian                |
----------------------------------------------------------------------------
| 6..7        | timestamp: day number since epoch, big-endian            |
----------------------------------------------------------------------------
| 8..11       | timestamp: millisecond of day, big-endian                |
----------------------------------------------------------------------------
| 12..13      | timestamp: microsecond remainder, big-endian             |
----------------------------------------------------------------------------
| 14..2061    | MCU segment (McuSegmentLength bytes)                     |
----------------------------------------------------------------------------
*/
type Mpdu struct {
	// raw holds at least HeaderLength bytes; it may be shorter than
	// Length at a VCDU boundary, see package reassemble.
	raw []byte
}

// ParseMpdu wraps buf (at least HeaderLength bytes) as an Mpdu. buf is
// not copied and may be shorter than Length if the MPDU straddles a VCDU
// boundary and has not yet been fully reassembled.
func ParseMpdu(buf []byte) (Mpdu, error) {
	if len(buf) < HeaderLength {
		return Mpdu{}, ErrShortMpdu
	}
	return Mpdu{raw: buf}, nil
}

// Version returns the 3-bit CCSDS packet version number.
func (m Mpdu) Version() uint8 { return m.raw[0] >> 5 }

// Type returns the packet type flag (0 for telemetry).
func (m Mpdu) Type() uint8 { return m.raw[0] >> 4 & 0x1 }

// HasSecondaryHeader reports whether a secondary header follows the
// primary header (always true for Meteor-M imaging packets).
func (m Mpdu) HasSecondaryHeader() bool { return m.raw[0]>>3&0x1 != 0 }

// APID returns the 11-bit Application Process Identifier, which
// determines which imaging or service channel this MPDU belongs to.
func (m Mpdu) APID() uint16 {
	return uint16(m.raw[0]&0x7)<<8 | uint16(m.raw[1])
}

// SeqFlag returns the 2-bit sequence flag (3 for an unsegmented packet).
func (m Mpdu) SeqFlag() uint8 { return m.raw[2] >> 6 }

// Seq returns the 14-bit packet sequence count, wrapping modulo MaxSeq.
func (m Mpdu) Seq() uint16 {
	return uint16(m.raw[2]&0x3F)<<8 | uint16(m.raw[3])
}

// DataLength returns the packet data length field, decoded as "length in
// bytes of everything after the length field" per CCSDS convention (the
// on-wire value is this minus one).
func (m Mpdu) DataLength() uint16 {
	return (uint16(m.raw[4])<<8 | uint16(m.raw[5])) + 1
}

// Day returns the secondary header's day-since-epoch field.
func (m Mpdu) Day() uint16 { return uint16(m.raw[6])<<8 | uint16(m.raw[7]) }

// Ms returns the secondary header's millisecond-of-day field.
func (m Mpdu) Ms() uint32 {
	return uint32(m.raw[8])<<24 | uint32(m.raw[9])<<16 | uint32(m.raw[10])<<8 | uint32(m.raw[11])
}

// Us returns the secondary header's microsecond-remainder field.
func (m Mpdu) Us() uint16 { return uint16(m.raw[12])<<8 | uint16(m.raw[13]) }

// RawTime returns the packet's timestamp as a single microsecond count:
// Day() whole days plus the microsecond of that day.
func (m Mpdu) RawTime() uint64 {
	return uint64(m.Day())*86400*1000*1000 + uint64(m.Ms())*1000 + uint64(m.Us())
}

// Raw returns the MPDU's underlying buffer, header and data together,
// for sinks that pass MPDUs through verbatim (e.g. the APID70 raw
// calibration channel).
func (m Mpdu) Raw() []byte { return m.raw }

// FormatRawTime renders a microsecond-of-day value (as returned by
// RawTime, or a difference of two such values) as "HH:MM:SS.mmm".
func FormatRawTime(us uint64) string {
	ms := us / 1000
	hr := ms / 1000 / 60 / 60 % 24
	min := ms / 1000 / 60 % 60
	sec := ms / 1000 % 60
	ms %= 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hr, min, sec, ms)
}

// Data returns the MPDU's payload (the MCU segment), which may be
// shorter than McuSegmentLength if the underlying buffer has not been
// fully reassembled.
func (m Mpdu) Data() []byte {
	if len(m.raw) <= HeaderLength {
		return nil
	}
	return m.raw[HeaderLength:]
}
