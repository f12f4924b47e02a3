/*
NAME
  descramble.go

DESCRIPTION
  descramble implements the CCSDS pseudo-noise descrambler applied to each
  CADU's 1020-byte VCDU payload, undoing the synchronous scrambler applied
  at the transmitter to guarantee adequate bit transitions for clock
  recovery.

LICENSE
  See LICENSE file in the root of this repository.
*/

// Package descramble implements the CCSDS PN descrambler for Meteor-M
// VCDU payloads.
package descramble

// Parameters of the length-255 PN sequence generator (CCSDS 101.0-B-6),
// reset once per VCDU.
const (
	seed   = 0xFF
	period = 255
)

// Sequence is the precomputed 255-byte PN sequence, generated once at
// package init from the polynomial x^8+x^7+x^5+x^3+1 (taps at bits 7, 5,
// 3, 0).
var Sequence [period]byte

func init() {
	reg := uint8(seed)
	for i := 0; i < period; i++ {
		var out uint8
		for bit := 7; bit >= 0; bit-- {
			out <<= 1
			out |= reg & 1
			fb := (reg & 1) ^ ((reg >> 3) & 1) ^ ((reg >> 5) & 1) ^ ((reg >> 7) & 1)
			reg = (reg >> 1) | (fb << 7)
		}
		Sequence[i] = out
	}
}

// Descramble XORs data in place with the PN sequence, restarting the
// sequence at the first byte of data. data is normally exactly one VCDU
// (1020 bytes), four full repetitions of the 255-byte period; the
// sequence wraps as needed.
func Descramble(data []byte) {
	for i := range data {
		data[i] ^= Sequence[i%period]
	}
}
