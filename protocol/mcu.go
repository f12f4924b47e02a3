/*
NAME
  mcu.go

DESCRIPTION
  mcu defines the AVHRR minor cell unit segment layout packed inside each
  MPDU's data field, along with its scan/segment header accessors.

LICENSE
  See LICENSE file in the root of this repository.
*/

package protocol

// McuSegmentLength is the fixed size of the MCU segment carried in every
// imaging MPDU, regardless of whether it holds AVHRR image data or
// calibration data.
const McuSegmentLength = 2048

// McuPerMpdu is the number of 8x8 MCU blocks packed into one MCU segment.
const McuPerMpdu = 14

// avhrrHdrLen is the size of the AVHRR segment header (sequence byte,
// scan header, segment header) preceding the entropy-coded MCU data.
const avhrrHdrLen = 1 + 2 + 3

/*
AVHRR is an imaging-channel MCU segment. Below is its byte layout for
reference.

============================================================================
| octet range | field                                                     |
============================================================================
| 0           | sequence number                                           |
----------------------------------------------------------------------------
| 1..2        | scan header: quantization table id, AC/DC table indices  |
----------------------------------------------------------------------------
| 3..5        | segment header: reserved, reserved, quality factor (q)   |
----------------------------------------------------------------------------
| 6..2047     | entropy-coded MCU data (McuPerMpdu blocks)                |
----------------------------------------------------------------------------
*/
type AVHRR struct {
	raw []byte // McuSegmentLength bytes
}

// ParseAVHRR wraps buf (at least McuSegmentLength bytes) as an AVHRR
// segment. buf is not copied.
func ParseAVHRR(buf []byte) AVHRR {
	return AVHRR{raw: buf[:McuSegmentLength]}
}

// Seq returns the segment's sequence number.
func (a AVHRR) Seq() uint8 { return a.raw[0] }

// QuantTable returns the quantization table identifier used to encode
// this segment's MCU blocks.
func (a AVHRR) QuantTable() uint8 { return a.raw[1] }

// ACIndex returns the AC Huffman table index.
func (a AVHRR) ACIndex() uint8 { return a.raw[2] & 0xF }

// DCIndex returns the DC Huffman table index.
func (a AVHRR) DCIndex() uint8 { return a.raw[2] >> 4 }

// Q returns the JPEG quality factor used to derive this segment's
// dequantization table. A value of 0 carries no usable quality factor;
// the segment's blocks are still decoded, and jpeg.Decoder.Decode reuses
// the last nonzero quality factor it has seen.
func (a AVHRR) Q() uint8 { return a.raw[5] }

// Data returns the segment's entropy-coded MCU payload.
func (a AVHRR) Data() []byte { return a.raw[avhrrHdrLen:] }
