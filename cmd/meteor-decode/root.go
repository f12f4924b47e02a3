/*
NAME
  root.go

DESCRIPTION
  root defines the meteor-decode command line contract of spec.md §6:
  flags, their defaults, and the handoff into run.

LICENSE
  See LICENSE file in the root of this repository.
*/

// Command meteor-decode decodes a Meteor-M LRPT soft-symbol capture into
// an AVHRR raster image.
package main

import (
	"github.com/spf13/cobra"
)

// options holds the parsed CLI flags, passed down to run unchanged.
type options struct {
	output      string
	apids       string
	diffcoded   bool
	interleaved bool
	split       bool
	apid70      bool
	statfile    bool
	quiet       bool
	batch       bool
}

// newRootCmd builds the meteor-decode command.
func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "meteor-decode <input>",
		Short:         "Decode a Meteor-M LRPT soft-symbol capture into an AVHRR image",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "composite output image path (required; \".bmp\" is appended if it has no extension)")
	f.StringVarP(&opts.apids, "apid", "a", "", `APID triple "R,G,B" in 64..69 (default: auto-detect each channel)`)
	f.BoolVarP(&opts.diffcoded, "diff", "d", false, "input carries a differential OQPSK postdecode stage")
	f.BoolVarP(&opts.interleaved, "int", "i", false, `input is convolutionally interleaved ("80k" mode)`)
	f.BoolVarP(&opts.split, "split", "s", false, "write each channel to its own grayscale image instead of one composite")
	f.BoolVarP(&opts.apid70, "70", "7", false, "also write the APID 70 raw calibration passthrough, to <output>.70")
	f.BoolVarP(&opts.statfile, "statfile", "t", false, "also write a .stat file alongside each image")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress the progress status line")
	f.BoolVarP(&opts.batch, "batch", "b", false, "print one status line per update instead of redrawing in place")
	cmd.MarkFlagRequired("output")

	return cmd
}
