package input

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestFileSourceReadFullExact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.bin")
	want := []byte{1, 2, 3, 4, 5, 6}
	if err := os.WriteFile(path, want, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s, err := NewFileSource(path, false)
	if err != nil {
		t.Fatalf("NewFileSource: %v", err)
	}
	defer s.Close()

	got := make([]byte, len(want))
	if err := s.ReadFull(got); err != nil {
		t.Fatalf("ReadFull: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("ReadFull = %v, want %v", got, want)
	}
}

func TestFileSourceReadFullShortReturnsEOF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.bin")
	if err := os.WriteFile(path, []byte{1, 2, 3}, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s, err := NewFileSource(path, false)
	if err != nil {
		t.Fatalf("NewFileSource: %v", err)
	}
	defer s.Close()

	buf := make([]byte, 8)
	if err := s.ReadFull(buf); err != io.EOF {
		t.Fatalf("ReadFull on short file = %v, want io.EOF", err)
	}
}
