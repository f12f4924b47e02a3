/*
NAME
  vcdu.go

DESCRIPTION
  vcdu defines the Virtual Channel Data Unit layout and bitfield
  accessors: the data link layer frame that carries one fixed-size slice
  of MPDU-framed payload, Reed-Solomon protected as a whole.

LICENSE
  See LICENSE file in the root of this repository.
*/

package protocol

import "github.com/pkg/errors"

// Byte lengths of a VCDU's regions.
const (
	VcduDataLength = 882 // MPDU data unit zone.
	VcduRSLength   = 128 // Interleaved RS(255,223) check symbols.

	vcduPrimaryHdrLen = 6
	vcduInsertZoneLen = 2
	vcduMpduHdrLen    = 2

	// VcduLength is the total size of a VCDU, matching cadu.DataLength.
	VcduLength = vcduPrimaryHdrLen + vcduInsertZoneLen + vcduMpduHdrLen + VcduDataLength + VcduRSLength
)

// ErrShortVcdu is returned by ParseVcdu when given fewer than VcduLength
// bytes.
var ErrShortVcdu = errors.New("protocol: buffer shorter than one VCDU")

/*
Vcdu is a Virtual Channel Data Unit. Below is its byte layout for
reference.

============================================================================
| octet range | field                                                     |
============================================================================
| 0           | version (bits 0-1) | spacecraft id (bits 2-7, high part)   |
----------------------------------------------------------------------------
| 1           | spacecraft id (bits 0-1, low part) | VCID (bits 2-7)       |
----------------------------------------------------------------------------
| 2..4        | VCDU counter, 24 bits big-endian                          |
----------------------------------------------------------------------------
| 5           | replay flag (bit 0) | spare (bits 1-7)                    |
----------------------------------------------------------------------------
| 6..7        | insert zone: encryption flag, encryption key number       |
----------------------------------------------------------------------------
| 8..9        | MPDU header: spare (bits 0-4) | first-header pointer (11) |
----------------------------------------------------------------------------
| 10..891     | MPDU data unit zone (VcduDataLength bytes)                |
----------------------------------------------------------------------------
| 892..1019   | Reed-Solomon check symbols (VcduRSLength bytes)           |
----------------------------------------------------------------------------
*/
type Vcdu struct {
	raw []byte // VcduLength bytes, shared with the owning Cadu buffer
}

// ParseVcdu wraps buf (at least VcduLength bytes) as a Vcdu. buf is not
// copied; mutations to buf (e.g. descrambling or RS correction) are
// visible through the Vcdu and vice versa.
func ParseVcdu(buf []byte) (Vcdu, error) {
	if len(buf) < VcduLength {
		return Vcdu{}, ErrShortVcdu
	}
	return Vcdu{raw: buf[:VcduLength]}, nil
}

// Version returns the 2-bit VCDU version number.
func (v Vcdu) Version() uint8 { return v.raw[0] >> 6 }

// SpacecraftID returns the 8-bit spacecraft identifier.
func (v Vcdu) SpacecraftID() uint8 { return (v.raw[0]&0x3F)<<2 | v.raw[1]>>6 }

// VirtualChannelID returns the 6-bit virtual channel identifier.
func (v Vcdu) VirtualChannelID() uint8 { return v.raw[1] & 0x3F }

// Counter returns the 24-bit VCDU sequence counter.
func (v Vcdu) Counter() uint32 {
	return uint32(v.raw[2])<<16 | uint32(v.raw[3])<<8 | uint32(v.raw[4])
}

// Replay reports the frame's replay flag.
func (v Vcdu) Replay() bool { return v.raw[5]&0x80 != 0 }

// Encryption returns the insert zone's encryption flag byte.
func (v Vcdu) Encryption() uint8 { return v.raw[6] }

// EncryptionKeyNum returns the insert zone's encryption key number.
func (v Vcdu) EncryptionKeyNum() uint8 { return v.raw[7] }

// mpduSpare returns the 5 spare bits at the top of the MPDU header.
func (v Vcdu) mpduSpare() uint8 { return v.raw[8] >> 3 }

// HeaderPointer returns the 11-bit first-header pointer: the byte offset
// within Data of the start of the first MPDU header packed into this
// VCDU, or 0x7FF if no MPDU header starts within it.
func (v Vcdu) HeaderPointer() uint16 {
	return uint16(v.raw[8]&0x7)<<8 | uint16(v.raw[9])
}

// HeaderPresent reports whether an MPDU header starts within this VCDU's
// data zone.
func (v Vcdu) HeaderPresent() bool {
	return v.mpduSpare() == 0 && v.HeaderPointer() != 0x7FF
}

// Data returns the VCDU's MPDU data unit zone.
func (v Vcdu) Data() []byte {
	off := vcduPrimaryHdrLen + vcduInsertZoneLen + vcduMpduHdrLen
	return v.raw[off : off+VcduDataLength]
}

// Checksum returns the VCDU's trailing Reed-Solomon check symbol region.
func (v Vcdu) Checksum() []byte {
	off := VcduLength - VcduRSLength
	return v.raw[off:]
}
