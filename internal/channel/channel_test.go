package channel

import (
	"testing"

	"github.com/meteorground/lrpt/protocol"
)

// fillStrip builds a Strip filled uniformly with value, for easy
// verification of placement within the buffer.
func fillStrip(value uint8) *Strip {
	var s Strip
	for block := range s {
		for row := range s[block] {
			for col := range s[block][row] {
				s[block][row][col] = value
			}
		}
	}
	return &s
}

func TestAppendStripNoLossWritesContiguously(t *testing.T) {
	a := New(1)

	a.AppendStrip(fillStrip(1), 0, 0)
	if a.mcuSeq != mcuPerLine/14 {
		t.Fatalf("mcuSeq after first strip = %d", a.mcuSeq)
	}
	if a.Height() != 0 {
		t.Fatalf("Height() = %d before a full line, want 0", a.Height())
	}
}

func TestAppendStripCompletesLine(t *testing.T) {
	a := New(1)
	linesWorth := mcuPerLine / 14
	for i := 0; i < linesWorth; i++ {
		a.AppendStrip(fillStrip(byte(i+1)), uint32(i*14), uint32(i))
	}
	if a.Height() != 1 {
		t.Fatalf("Height() = %d, want 1 after a full line", a.Height())
	}
	px := a.Pixels()
	if len(px) != pixelsPerStrip {
		t.Fatalf("len(Pixels()) = %d, want %d", len(px), pixelsPerStrip)
	}
	// First strip's first pixel should sit at the top-left corner.
	if px[0] != 1 {
		t.Fatalf("Pixels()[0] = %d, want 1", px[0])
	}
}

func TestAppendStripInsertsBlackForLostMcu(t *testing.T) {
	a := New(1)
	a.AppendStrip(fillStrip(9), 0, 0)
	// Skip one strip's worth of MCUs (mcuSeq jumps by 28 instead of 14)
	// while mpduSeq only advances by one: this should insert exactly one
	// black strip before the new data.
	a.AppendStrip(fillStrip(7), 28, 1)

	linesWorth := mcuPerLine / 14
	for i := 3; i < linesWorth; i++ {
		a.AppendStrip(fillStrip(byte(i)), uint32(i*14), uint32(i))
	}

	if a.Height() != 1 {
		t.Fatalf("Height() = %d, want 1", a.Height())
	}
	px := a.Pixels()
	// Strip 0 (pixels 0..111 of the top row) holds the first real strip's data.
	if px[0] != 9 {
		t.Fatalf("px[0] = %d, want 9", px[0])
	}
	// Strip 1 (pixels 112..223) is the inserted black strip.
	if px[112] != 0 {
		t.Fatalf("px[112] = %d, want 0 (black strip)", px[112])
	}
	// Strip 2 (pixels 224..335) holds the strip passed with mcuSeq=28.
	if px[224] != 7 {
		t.Fatalf("px[224] = %d, want 7", px[224])
	}
}

func TestAppendStripGrowsBuffer(t *testing.T) {
	a := New(1)
	a.pixels = make([]uint8, pixelsPerStrip) // force growth on the second line

	linesWorth := mcuPerLine / 14
	for i := 0; i < 2*linesWorth; i++ {
		a.AppendStrip(fillStrip(1), uint32(i%linesWorth*14), uint32(i/linesWorth*protocol.PerPeriod+i%linesWorth))
	}
	if a.Height() != 2 {
		t.Fatalf("Height() = %d, want 2", a.Height())
	}
	if len(a.pixels) < 2*pixelsPerStrip {
		t.Fatalf("buffer did not grow: len = %d", len(a.pixels))
	}
}

func TestPrimeBackdatesMpduSeq(t *testing.T) {
	a := New(1)
	// Session started at firstMpduSeq=0; this channel's first real strip
	// arrives at seq=90, two periods (2*43=86) in. Priming should leave
	// mpduSeq set so the very next AppendStrip sees exactly that many
	// lines lost, not the whole session.
	a.Prime(90, 0)
	if a.mpduSeq < 0 {
		t.Fatal("Prime left mpduSeq unset")
	}

	a.AppendStrip(fillStrip(5), 0, 90)
	if a.Height() >= 10 {
		t.Fatalf("Height() = %d after priming, want a small number of lost lines, not a session's worth", a.Height())
	}
}

func TestPrimeIsNoopAfterFirstStrip(t *testing.T) {
	a := New(1)
	a.AppendStrip(fillStrip(1), 0, 0)
	before := a.mpduSeq
	a.Prime(1000, 0)
	if a.mpduSeq != before {
		t.Fatalf("Prime changed mpduSeq after a real strip: got %d, want %d", a.mpduSeq, before)
	}
}

func TestAppendStripNilIsBlack(t *testing.T) {
	a := New(1)
	a.AppendStrip(nil, 0, 0)
	px := a.pixels[:pixelsPerStrip]
	for _, v := range px[:mcuPerLine*8] {
		if v != 0 {
			t.Fatalf("nil strip produced nonzero pixel %d", v)
		}
	}
}
