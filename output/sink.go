/*
NAME
  sink.go

DESCRIPTION
  sink defines the ImageSink contract decoded pixels are written
  through, and an in-memory implementation backed by image.Image,
  encoded to BMP or PNG on Close depending on the destination's file
  extension.

LICENSE
  See LICENSE file in the root of this repository.
*/

// Package output adapts assembled channel pixel data to on-disk image
// and raw-passthrough formats.
package output

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
)

// ImageSink accepts pixels in raster order (left to right, top to
// bottom) and encodes them to a destination once Close is called.
type ImageSink interface {
	// WriteRGB writes one composite-color pixel. It is an error to call
	// WriteRGB on a sink created mono.
	WriteRGB(r, g, b uint8) error

	// WriteMono writes one grayscale pixel. It is an error to call
	// WriteMono on a sink not created mono.
	WriteMono(ch uint8) error

	// Close encodes and writes the accumulated image, and releases any
	// held resources.
	Close() error
}

// ErrWrongPixelKind is returned when WriteRGB is called on a mono sink
// or WriteMono is called on an RGB sink.
var ErrWrongPixelKind = errors.New("output: wrong pixel write method for this sink's kind")

type imageSink struct {
	path string
	mono bool
	img  image.Image
	rgba *image.RGBA
	gray *image.Gray
	w, h int
	x, y int
}

// NewImageSink returns an ImageSink that buffers a width x height image
// in memory and encodes it to path on Close. The encoder is chosen from
// path's extension: ".png" selects the standard library PNG encoder,
// anything else (including no extension) defaults to BMP per spec.md
// §6's default composite format.
func NewImageSink(path string, width, height int, mono bool) ImageSink {
	s := &imageSink{path: path, mono: mono, w: width, h: height}
	if mono {
		s.gray = image.NewGray(image.Rect(0, 0, width, height))
		s.img = s.gray
	} else {
		s.rgba = image.NewRGBA(image.Rect(0, 0, width, height))
		s.img = s.rgba
	}
	return s
}

func (s *imageSink) WriteRGB(r, g, b uint8) error {
	if s.mono {
		return ErrWrongPixelKind
	}
	if s.y < s.h {
		s.rgba.SetRGBA(s.x, s.y, color.RGBA{R: r, G: g, B: b, A: 0xff})
	}
	s.advance()
	return nil
}

func (s *imageSink) WriteMono(ch uint8) error {
	if !s.mono {
		return ErrWrongPixelKind
	}
	if s.y < s.h {
		s.gray.SetGray(s.x, s.y, color.Gray{Y: ch})
	}
	s.advance()
	return nil
}

func (s *imageSink) advance() {
	s.x++
	if s.x >= s.w {
		s.x = 0
		s.y++
	}
}

func (s *imageSink) Close() error {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("output: could not create %s: %w", s.path, err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(s.path), ".png") {
		return png.Encode(f, s.img)
	}
	return bmp.Encode(f, s.img)
}

// DefaultPath appends ".bmp" to base if it has no extension, matching
// spec.md §6's "auto-derived by appending .bmp if omitted" rule for the
// composite output path.
func DefaultPath(base string) string {
	if filepath.Ext(base) == "" {
		return base + ".bmp"
	}
	return base
}

// SplitPath derives a per-channel output path of the form
// "<base>_<apid>.<ext>", mirroring main.c's split-output path
// construction.
func SplitPath(base string, apid int) string {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if ext == "" {
		ext = ".bmp"
	}
	return fmt.Sprintf("%s_%02d%s", stem, apid, ext)
}
