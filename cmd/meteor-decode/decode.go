/*
NAME
  decode.go

DESCRIPTION
  decode wires input.Source, pipeline.Driver, codec/jpeg and the output
  sinks together into the single-pass decode loop described by
  spec.md §6's CLI contract: read samples, reassemble MPDUs, decode AVHRR
  strips into channels, and on completion write the composite or
  per-channel images plus their optional .stat files.

LICENSE
  See LICENSE file in the root of this repository.
*/

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/meteorground/lrpt/codec/jpeg"
	"github.com/meteorground/lrpt/input"
	"github.com/meteorground/lrpt/internal/channel"
	"github.com/meteorground/lrpt/internal/logging"
	"github.com/meteorground/lrpt/output"
	"github.com/meteorground/lrpt/pipeline"
	"github.com/meteorground/lrpt/protocol"
)

// run opens inputPath, drives the decode pipeline to completion, and
// writes whatever output opts request. It returns a non-nil error for
// every failure spec.md §6 maps to exit code 1.
func run(inputPath string, opts options) error {
	log := logging.New(os.Stderr)
	if opts.quiet {
		log.SetLevel(logging.Error)
	}

	apids, err := parseApids(opts.apids)
	if err != nil {
		return err
	}

	src, total, err := openSource(inputPath)
	if err != nil {
		log.Error("could not open input", "error", err.Error())
		return err
	}
	defer src.Close()
	cs := &countingSource{Source: src}

	outPath := output.DefaultPath(opts.output)

	var apid70 *output.RawSink
	if opts.apid70 {
		apid70, err = output.NewRawSink(outPath + ".70")
		if err != nil {
			log.Error("could not create apid70 sink", "error", err.Error())
			return errors.Wrap(err, "cmd: apid70 sink")
		}
		defer apid70.Close()
	}

	drv := pipeline.NewDriver(cs, opts.diffcoded, opts.interleaved)
	o := &orchestrator{
		binder:   pipeline.NewChannelBinder(apids),
		apid70:   apid70,
		decoders: make(map[*channel.Channel]*jpeg.Decoder),
	}

	var mpduCount int
	for {
		mpdu, status := drv.Next()
		if status == pipeline.EOFReached {
			break
		}
		if status == pipeline.MpduReady {
			o.handleMpdu(mpdu)
			mpduCount++
		}
		if status == pipeline.MpduReady || status == pipeline.StatsOnly {
			printStatus(opts, cs.n, total, drv)
		}
	}
	if !opts.quiet && !opts.batch {
		fmt.Println()
	}

	chans := o.binder.Channels()
	height := 0
	for _, ch := range chans {
		if ch != nil && 8*ch.Height() > height {
			height = 8 * ch.Height()
		}
	}
	log.Info("decode complete", "mpdus", mpduCount, "lines", height)

	if height == 0 {
		return nil
	}

	if opts.split {
		if err := writeSplit(outPath, chans, height); err != nil {
			log.Error("could not write split output", "error", err.Error())
			return errors.Wrap(err, "cmd: split output")
		}
	} else {
		if err := writeComposite(outPath, chans, height); err != nil {
			log.Error("could not write composite output", "error", err.Error())
			return errors.Wrap(err, "cmd: composite output")
		}
	}

	if opts.statfile {
		if err := writeStatFiles(outPath, opts.split, chans, o.stats); err != nil {
			log.Error("could not write stat file", "error", err.Error())
			return errors.Wrap(err, "cmd: stat file")
		}
	}

	return nil
}

// openSource opens "-" as standard input (total size unknown, reported
// as 0) or a named file (total taken from its current size, for the
// progress percentage).
func openSource(path string) (input.Source, int64, error) {
	if path == "-" {
		return input.NewStdinSource(), 0, nil
	}
	fi, err := os.Stat(path)
	if err != nil {
		return nil, 0, fmt.Errorf("cmd: could not stat %s: %w", path, err)
	}
	src, err := input.NewFileSource(path, false)
	if err != nil {
		return nil, 0, err
	}
	return src, fi.Size(), nil
}

// countingSource decorates a Source, tracking bytes read for the
// progress percentage.
type countingSource struct {
	input.Source
	n int64
}

func (c *countingSource) ReadFull(p []byte) error {
	err := c.Source.ReadFull(p)
	c.n += int64(len(p))
	return err
}

// parseApids parses a "--apid R,G,B" value into the three preset APIDs
// ChannelBinder expects, defaulting to {-1,-1,-1} (auto-detect) when
// spec is empty.
func parseApids(spec string) ([pipeline.NumChannels]int, error) {
	apids := [pipeline.NumChannels]int{-1, -1, -1}
	if spec == "" {
		return apids, nil
	}
	parts := strings.Split(spec, ",")
	if len(parts) != pipeline.NumChannels {
		return apids, fmt.Errorf("cmd: --apid needs %d comma-separated values, got %d", pipeline.NumChannels, len(parts))
	}
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return apids, fmt.Errorf("cmd: invalid --apid value %q: %w", p, err)
		}
		apids[i] = v
	}
	return apids, nil
}

// orchestrator holds the per-run state process_mpdu closed over as
// static locals in the reference decoder: the channel bindings, the
// optional raw APID70 sink, a JPEG decoder per bound channel (its DC
// predictor resets every segment, but its last-seen quality factor must
// persist across segments), and session timestamp bookkeeping.
type orchestrator struct {
	binder   *pipeline.ChannelBinder
	apid70   *output.RawSink
	decoders map[*channel.Channel]*jpeg.Decoder
	stats    pipeline.Stats

	haveFirst    bool
	firstMpduSeq uint32
}

// handleMpdu routes one reassembled MPDU to its channel or the APID70
// passthrough, mirroring main.c's process_mpdu.
func (o *orchestrator) handleMpdu(mpdu protocol.Mpdu) {
	seq := uint32(mpdu.Seq())
	first := !o.haveFirst
	if first {
		o.haveFirst = true
		o.firstMpduSeq = seq
	}
	o.stats.Observe(mpdu.RawTime())

	apid := int(mpdu.APID())
	switch {
	case apid >= 64 && apid <= 69:
		ch := o.binder.Bind(apid)
		if ch == nil {
			return
		}
		if !first {
			ch.Prime(seq, o.firstMpduSeq)
		}
		avhrr := protocol.ParseAVHRR(mpdu.Data())
		strip := decodeStrip(o.decoderFor(ch), avhrr)
		ch.AppendStrip(strip, uint32(avhrr.Seq()), seq)

	case apid == 70:
		if o.apid70 != nil {
			_ = o.apid70.Write(mpdu)
		}
	}
}

// decoderFor returns ch's JPEG decoder, creating one on first use.
func (o *orchestrator) decoderFor(ch *channel.Channel) *jpeg.Decoder {
	dec, ok := o.decoders[ch]
	if !ok {
		dec = jpeg.NewDecoder()
		o.decoders[ch] = dec
	}
	return dec
}

// decodeStrip entropy-decodes, dequantizes and inverse-transforms one
// AVHRR MCU segment into a channel strip.
func decodeStrip(dec *jpeg.Decoder, avhrr protocol.AVHRR) *channel.Strip {
	dec.ResetDC()
	var blocks [protocol.McuPerMpdu]jpeg.Block
	data := avhrr.Data()
	dec.HuffmanDecode(blocks[:], data, len(data))

	var strip channel.Strip
	for i := range blocks {
		dec.Decode(&strip[i], &blocks[i], int(avhrr.Q()))
	}
	return &strip
}

// printStatus prints the running percent, average Viterbi metric and
// per-VCDU RS error count of spec.md §7, redrawing in place unless
// --batch was given.
func printStatus(opts options, pos, total int64, drv *pipeline.Driver) {
	if opts.quiet {
		return
	}
	percent := "  n/a"
	if total > 0 {
		percent = fmt.Sprintf("%5.1f%%", 100*float64(pos)/float64(total))
	}
	line := fmt.Sprintf("%s vit(avg): %4d rs: %3d vcdu: %d", percent, drv.VitAvg, drv.RSErrors, drv.VCDUSeq)
	if opts.batch {
		fmt.Println(line)
		return
	}
	fmt.Print("\r\033[2K" + line)
}

// imageWidth returns the shared pixel width of whichever channels are
// bound, or 0 if none are.
func imageWidth(chans [pipeline.NumChannels]*channel.Channel) int {
	for _, ch := range chans {
		if ch != nil {
			return ch.Width()
		}
	}
	return 0
}

// writeComposite writes the three bound channels interleaved as one RGB
// image; a slot with no bound channel, or a pixel position beyond a
// bound channel's current offset, contributes zero.
func writeComposite(path string, chans [pipeline.NumChannels]*channel.Channel, height int) error {
	width := imageWidth(chans)
	if width == 0 {
		return nil
	}
	sink := output.NewImageSink(path, width, height, false)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := y*width + x
			var px [pipeline.NumChannels]uint8
			for i, ch := range chans {
				if ch == nil {
					continue
				}
				pixels := ch.Pixels()
				if idx < len(pixels) {
					px[i] = pixels[idx]
				}
			}
			if err := sink.WriteRGB(px[0], px[1], px[2]); err != nil {
				return err
			}
		}
	}
	return sink.Close()
}

// writeSplit writes each distinct bound channel to its own grayscale
// image, named per output.SplitPath.
func writeSplit(base string, chans [pipeline.NumChannels]*channel.Channel, height int) error {
	written := make(map[*channel.Channel]bool, pipeline.NumChannels)
	for _, ch := range chans {
		if ch == nil || written[ch] {
			continue
		}
		written[ch] = true

		sink := output.NewImageSink(output.SplitPath(base, ch.APID()), ch.Width(), height, true)
		pixels := ch.Pixels()
		n := ch.Width() * height
		for i := 0; i < n; i++ {
			var v uint8
			if i < len(pixels) {
				v = pixels[i]
			}
			if err := sink.WriteMono(v); err != nil {
				return err
			}
		}
		if err := sink.Close(); err != nil {
			return err
		}
	}
	return nil
}

// writeStatFiles writes a .stat file per image actually written: one
// next to the composite, or one per distinct split channel.
func writeStatFiles(base string, split bool, chans [pipeline.NumChannels]*channel.Channel, stats pipeline.Stats) error {
	if !split {
		return output.WriteStatFile(statPath(base), stats.FirstTime, stats.LastTime)
	}
	written := make(map[*channel.Channel]bool, pipeline.NumChannels)
	for _, ch := range chans {
		if ch == nil || written[ch] {
			continue
		}
		written[ch] = true
		path := statPath(output.SplitPath(base, ch.APID()))
		if err := output.WriteStatFile(path, stats.FirstTime, stats.LastTime); err != nil {
			return err
		}
	}
	return nil
}

// statPath derives a ".stat" path alongside an image path.
func statPath(imgPath string) string {
	return strings.TrimSuffix(imgPath, filepath.Ext(imgPath)) + ".stat"
}
