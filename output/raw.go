/*
NAME
  raw.go

DESCRIPTION
  raw implements the APID70 raw calibration passthrough sink: every
  MPDU routed to it is written out verbatim, header and data together.

LICENSE
  See LICENSE file in the root of this repository.
*/

package output

import (
	"fmt"
	"os"

	"github.com/meteorground/lrpt/protocol"
)

// RawSink writes whole MPDUs verbatim to a file, mirroring
// raw_channel.c's passthrough of the APID70 calibration channel.
type RawSink struct {
	f *os.File
}

// NewRawSink creates (or truncates) the file at path for raw MPDU
// passthrough.
func NewRawSink(path string) (*RawSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("output: could not create raw sink %s: %w", path, err)
	}
	return &RawSink{f: f}, nil
}

// Write appends mpdu's id, sequence, length, timestamp and data fields
// verbatim.
func (s *RawSink) Write(mpdu protocol.Mpdu) error {
	_, err := s.f.Write(mpdu.Raw())
	return err
}

// Close closes the underlying file.
func (s *RawSink) Close() error { return s.f.Close() }
