package output

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/meteorground/lrpt/protocol"
)

func TestImageSinkEncodesPNGByExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.png")

	s := NewImageSink(path, 2, 2, false)
	for i := 0; i < 4; i++ {
		if err := s.WriteRGB(uint8(i), uint8(i), uint8(i)); err != nil {
			t.Fatalf("WriteRGB: %v", err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 2, 2) {
		t.Fatalf("bounds = %v, want 0,0,2,2", img.Bounds())
	}
}

func TestImageSinkRejectsWrongPixelKind(t *testing.T) {
	s := NewImageSink(filepath.Join(t.TempDir(), "mono.bmp"), 1, 1, true)
	if err := s.WriteRGB(1, 2, 3); err != ErrWrongPixelKind {
		t.Fatalf("WriteRGB on mono sink = %v, want ErrWrongPixelKind", err)
	}
}

func TestDefaultPathAppendsBmp(t *testing.T) {
	if got := DefaultPath("out"); got != "out.bmp" {
		t.Fatalf("DefaultPath(out) = %q, want out.bmp", got)
	}
	if got := DefaultPath("out.png"); got != "out.png" {
		t.Fatalf("DefaultPath(out.png) = %q, want out.png", got)
	}
}

func TestSplitPath(t *testing.T) {
	if got := SplitPath("out.bmp", 64); got != "out_64.bmp" {
		t.Fatalf("SplitPath = %q, want out_64.bmp", got)
	}
	if got := SplitPath("out", 65); got != "out_65.bmp" {
		t.Fatalf("SplitPath = %q, want out_65.bmp", got)
	}
}

func TestWriteStatFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.stat")
	if err := WriteStatFile(path, 0, 90061000); err != nil {
		t.Fatalf("WriteStatFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	// 90061000us -> 90061ms -> 0h 1m 30s 61ms.
	want := "00:00:00.000\r\n00:01:30.061\r\n0\r\n"
	if string(data) != want {
		t.Fatalf("stat file = %q, want %q", data, want)
	}
}

func TestRawSinkWritesVerbatim(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apid70.raw")
	s, err := NewRawSink(path)
	if err != nil {
		t.Fatalf("NewRawSink: %v", err)
	}

	buf := make([]byte, protocol.HeaderLength+10)
	buf[0] = 0b000_1_1_000
	buf[3] = 1
	buf[5] = 9
	for i := protocol.HeaderLength; i < len(buf); i++ {
		buf[i] = byte(i)
	}
	mpdu, err := protocol.ParseMpdu(buf)
	if err != nil {
		t.Fatalf("ParseMpdu: %v", err)
	}

	if err := s.Write(mpdu); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(got) != len(buf) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(buf))
	}
	for i := range buf {
		if got[i] != buf[i] {
			t.Fatalf("byte %d = %#x, want %#x", i, got[i], buf[i])
		}
	}
}
