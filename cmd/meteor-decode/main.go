/*
NAME
  main.go

DESCRIPTION
  main is the meteor-decode entry point: a panic-recovery wrapper around
  the cobra command tree, matching the reference decoder's "exit 0 on
  success, 1 on configuration or I/O failure" contract.

LICENSE
  See LICENSE file in the root of this repository.
*/

package main

import (
	"fmt"
	"os"
	"runtime"
)

func main() {
	exitCode := 0
	defer func() {
		if r := recover(); r != nil {
			const size = 64 << 10
			buf := make([]byte, size)
			buf = buf[:runtime.Stack(buf, false)]
			fmt.Fprintf(os.Stderr, "meteor-decode: panic: %v\n%s\n", r, buf)
			exitCode = 1
		}
		os.Exit(exitCode)
	}()

	if err := newRootCmd().Execute(); err != nil {
		exitCode = 1
	}
}
