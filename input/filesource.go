/*
NAME
  filesource.go

DESCRIPTION
  filesource implements the pipeline's soft-sample source contract over
  a file, optionally tailing it with fsnotify as a live SDR capture
  grows instead of only replaying one that has already been closed.

LICENSE
  See LICENSE file in the root of this repository.
*/

// Package input provides the pipeline's sample-source contract and a
// file-backed implementation.
package input

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Source presents a "read exactly len(p) bytes or signal end-of-input"
// contract to the pipeline driver, matching spec.md §6's input stream
// description.
type Source interface {
	// ReadFull reads exactly len(p) bytes into p, returning io.EOF (or a
	// wrapped io.ErrUnexpectedEOF) once no more data will ever arrive.
	ReadFull(p []byte) error
	Close() error
}

// FileSource reads soft samples from a file. When Follow is set, a
// short read blocks on an fsnotify watch for further Write events on
// the file instead of returning end-of-input immediately, so a capture
// still being written by another process can be decoded live.
type FileSource struct {
	f        *os.File
	follow   bool
	watcher  *fsnotify.Watcher
	pollWait time.Duration
}

// NewFileSource opens path for reading. If follow is true, ReadFull
// waits for the file to grow (via fsnotify) rather than returning EOF
// on a short read, up to a small idle timeout, matching a live capture
// that may pause between writes.
func NewFileSource(path string, follow bool) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("input: could not open %s: %w", path, err)
	}

	s := &FileSource{f: f, follow: follow, pollWait: 2 * time.Second}
	if !follow {
		return s, nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("input: could not create watcher: %w", err)
	}
	if err := w.Add(path); err != nil {
		w.Close()
		f.Close()
		return nil, fmt.Errorf("input: could not watch %s: %w", path, err)
	}
	s.watcher = w
	return s, nil
}

// NewStdinSource wraps os.Stdin as a Source, for the "-" path convention
// of spec.md §6. Following is never applicable to a pipe.
func NewStdinSource() *FileSource {
	return &FileSource{f: os.Stdin}
}

// ReadFull reads exactly len(p) bytes, blocking on file growth when
// Follow was requested.
func (s *FileSource) ReadFull(p []byte) error {
	read := 0
	for read < len(p) {
		n, err := s.f.Read(p[read:])
		read += n
		if err == nil {
			continue
		}
		if err != io.EOF {
			return fmt.Errorf("input: read error: %w", err)
		}
		if !s.follow {
			return io.EOF
		}
		if !s.waitForGrowth() {
			return io.EOF
		}
	}
	return nil
}

// waitForGrowth blocks until the watched file reports a write event or
// the idle timeout elapses, returning false on timeout (treated as a
// genuine end of input).
func (s *FileSource) waitForGrowth() bool {
	select {
	case ev, ok := <-s.watcher.Events:
		if !ok {
			return false
		}
		return ev.Op&(fsnotify.Write|fsnotify.Create) != 0
	case <-s.watcher.Errors:
		return false
	case <-time.After(s.pollWait):
		return false
	}
}

// Close closes the underlying file and watcher, if any.
func (s *FileSource) Close() error {
	if s.watcher != nil {
		s.watcher.Close()
	}
	if s.f == os.Stdin {
		return nil
	}
	return s.f.Close()
}
