/*
NAME
  stat.go

DESCRIPTION
  stat writes the three-line ".stat" file accompanying a decoded image:
  first-packet timestamp, elapsed onboard time, and a literal "0" whose
  meaning the original decoder itself never documented.

LICENSE
  See LICENSE file in the root of this repository.
*/

package output

import (
	"fmt"
	"os"

	"github.com/meteorground/lrpt/protocol"
)

// WriteStatFile writes path as three CRLF-terminated lines: the
// first-packet onboard timestamp, the elapsed onboard time between the
// first and last packet, and a literal "0".
func WriteStatFile(path string, firstRawTime, lastRawTime uint64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: could not create stat file %s: %w", path, err)
	}
	defer f.Close()

	_, err = fmt.Fprintf(f, "%s\r\n%s\r\n0\r\n",
		protocol.FormatRawTime(firstRawTime),
		protocol.FormatRawTime(lastRawTime-firstRawTime))
	return err
}
