/*
NAME
  stats.go

DESCRIPTION
  stats tracks session-wide bookkeeping across Driver.Next calls: the
  first and most recently accepted MPDU timestamps, guarding against the
  backward time jumps a corrupted timestamp field can otherwise produce.

LICENSE
  See LICENSE file in the root of this repository.
*/

package pipeline

import "github.com/meteorground/lrpt/protocol"

// Stats accumulates the first and last accepted MPDU timestamps of a
// decode session, for the .stat file of spec.md §6.
type Stats struct {
	FirstTime uint64
	LastTime  uint64

	seen bool
}

// Observe records rawTime (an Mpdu.RawTime value) as the latest accepted
// timestamp, unless it jumps backward by more than half a day relative
// to the last accepted timestamp, which is treated as corrupted
// telemetry and discarded. It returns whether rawTime was accepted.
func (s *Stats) Observe(rawTime uint64) bool {
	if !s.seen {
		s.seen = true
		s.FirstTime = rawTime
		s.LastTime = rawTime
		return true
	}

	if s.LastTime > rawTime && s.LastTime-rawTime > protocol.UsPerDay/2 {
		return false
	}

	s.LastTime = rawTime
	return true
}
