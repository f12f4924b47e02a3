/*
NAME
  channel.go

DESCRIPTION
  channel assembles the 8x8 MCU blocks of a single imaging channel (one
  AVHRR APID) into a contiguous grayscale image, inserting black strips
  to keep the image aligned after a run of lost MPDUs or MCUs.

LICENSE
  See LICENSE file in the root of this repository.
*/

// Package channel assembles decoded MCU strips into a channel's image
// buffer, using MCU and MPDU sequence numbers to detect and compensate
// for lost data.
package channel

import "github.com/meteorground/lrpt/protocol"

const (
	// mcuPerLine is the number of 8x8 MCU blocks across one scan line.
	mcuPerLine = protocol.McuPerMpdu * protocol.PerLine

	// pixelsPerStrip is the number of pixels in one 8-row strip spanning
	// the full image width.
	pixelsPerStrip = mcuPerLine * 8 * 8

	// stripsPerAlloc is the number of strips' worth of pixels to grow the
	// buffer by whenever it runs out of room.
	stripsPerAlloc = 32
)

// Strip holds the decoded pixel blocks of one MPDU's worth of MCU data,
// in left-to-right order.
type Strip [protocol.McuPerMpdu][8][8]uint8

var blackStrip Strip

// Channel builds a channel's image one strip at a time. It is not safe
// for concurrent use.
type Channel struct {
	apid    int
	mcuSeq  int
	mpduSeq int // -1 until the first strip is appended

	pixels []uint8
	offset int
}

// New returns a Channel for the imaging channel identified by apid.
func New(apid int) *Channel {
	return &Channel{
		apid:    apid,
		mpduSeq: -1,
		pixels:  make([]uint8, stripsPerAlloc*pixelsPerStrip),
	}
}

// APID returns the Application Process Identifier this Channel was
// created for.
func (a *Channel) APID() int { return a.apid }

// Width returns the pixel width of the assembled image, constant across
// all channels.
func (a *Channel) Width() int { return mcuPerLine * 8 }

// Height returns the number of fully assembled scan lines so far. Each
// scan line is one strip row, 8 pixels tall.
func (a *Channel) Height() int { return a.offset / pixelsPerStrip }

// Pixels returns the assembled image as a row-major 8-bit grayscale
// buffer of Width()*Height()*8 bytes. The returned slice aliases the
// Channel's internal buffer and is only valid until the next call to
// AppendStrip.
func (a *Channel) Pixels() []uint8 { return a.pixels[:a.offset] }

// Prime backdates mpduSeq for a channel that is about to receive its
// first real strip partway through a downlink session, so that the next
// AppendStrip inserts one black scan line for every full MPDU period
// elapsed since the session's first MPDU, keeping this channel's lines
// aligned with channels that started earlier. Without Prime, the first
// strip of a channel is appended with no lines inserted before it. seq
// is the MPDU sequence number of the strip about to be
// appended; firstMpduSeq is the sequence number of the first MPDU seen
// in the session (of any channel). Prime is a no-op once the channel
// has appended its first strip.
func (a *Channel) Prime(seq, firstMpduSeq uint32) {
	if a.mpduSeq >= 0 {
		return
	}
	linesLost := (int(seq) - int(firstMpduSeq)) / protocol.PerPeriod
	a.mpduSeq = (int(seq) - protocol.PerPeriod*linesLost - 1 + protocol.MaxSeq) % protocol.MaxSeq
}

// AppendStrip appends one MPDU's worth of decoded MCU blocks to the
// channel, inserting black strips to compensate for any strips implied
// lost by a gap in mcuSeq or mpduSeq since the previous call. A nil
// strip is treated as a strip that failed to decode and is itself
// replaced with black.
func (a *Channel) AppendStrip(strip *Strip, mcuSeq, mpduSeq uint32) {
	// Snap down to a strip boundary: a buffer overflow upstream can
	// misalign this otherwise.
	mcuSeq -= mcuSeq % protocol.McuPerMpdu

	mpduDelta := (int(mpduSeq) - a.mpduSeq - 1 + protocol.MaxSeq) % protocol.MaxSeq
	mcuDelta := (int(mcuSeq) - a.mcuSeq + mcuPerLine) % mcuPerLine

	linesLost := 0
	if a.mpduSeq >= 0 {
		linesLost = mpduDelta / protocol.PerPeriod
	}
	stripsLost := mcuDelta/protocol.McuPerMpdu + linesLost*protocol.PerLine

	for i := stripsLost; i > 0; i-- {
		a.cacheStrip(&blackStrip)
	}
	a.mpduSeq = int(mpduSeq)
	a.mcuSeq = int(mcuSeq)

	if strip == nil {
		strip = &blackStrip
	}
	a.cacheStrip(strip)
}

// cacheStrip writes strip into the buffer at the Channel's current
// mcuSeq/offset, growing the buffer first if needed.
func (a *Channel) cacheStrip(strip *Strip) {
	if a.offset+pixelsPerStrip > len(a.pixels) {
		grown := make([]uint8, len(a.pixels)+stripsPerAlloc*pixelsPerStrip)
		copy(grown, a.pixels)
		a.pixels = grown
	}

	for row := 0; row < 8; row++ {
		for block := 0; block < protocol.McuPerMpdu; block++ {
			dst := a.pixels[a.offset+row*mcuPerLine*8+(a.mcuSeq+block)*8:]
			copy(dst[:8], strip[block][row][:])
		}
	}

	a.mcuSeq += protocol.McuPerMpdu
	if a.mcuSeq >= mcuPerLine {
		// Both counters roll forward by one scan line's worth; mcuSeq
		// wraps to the next line and mpduSeq advances by a full period
		// minus this channel's own share of it, since the other two
		// channels and the calibration MPDU occupy the rest.
		a.mcuSeq = 0
		a.mpduSeq += protocol.PerPeriod - protocol.PerLine
		a.offset += pixelsPerStrip
	}
}
