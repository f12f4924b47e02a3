/*
NAME
  channelbinder.go

DESCRIPTION
  channelbinder maps the imaging APIDs (64-69) onto a fixed set of three
  RGB channel slots, the way main.c's process_mpdu does: prefer the slot
  already carrying this APID, then the slot this APID prefers by default,
  then any free slot, discarding the packet only if none is available.

LICENSE
  See LICENSE file in the root of this repository.
*/

package pipeline

import "github.com/meteorground/lrpt/internal/channel"

// NumChannels is the number of simultaneous imaging channels a Meteor-M
// downlink carries (red, green, blue).
const NumChannels = 3

// preferredSlot returns the default channel slot index (0=Red, 1=Green,
// 2=Blue) for an imaging APID, matching the default --apid ordering of
// spec.md §6.
func preferredSlot(apid int) int {
	switch apid {
	case 64:
		return 2
	case 65:
		return 1
	case 66:
		return 0
	case 67:
		return 1
	case 68:
		return 0
	case 69:
		return 2
	default:
		return 0
	}
}

// ChannelBinder assigns imaging APIDs to a fixed set of channel slots.
// It is not safe for concurrent use.
type ChannelBinder struct {
	slots [NumChannels]*channel.Channel
}

// NewChannelBinder returns a ChannelBinder with slots pre-bound from
// apids (R, G, B order); use -1 for a slot that should auto-detect its
// APID from the incoming stream. Slots sharing the same preset APID
// share a single Channel, the way main.c dupes channel pointers for a
// repeated --apid argument, so e.g. "--apid 66,66,66" composites one
// grayscale image across all three components instead of decoding it
// three times over.
func NewChannelBinder(apids [NumChannels]int) *ChannelBinder {
	b := &ChannelBinder{}
	for i, apid := range apids {
		if apid < 0 {
			continue
		}
		dup := false
		for j := 0; j < i; j++ {
			if apids[j] == apid {
				b.slots[i] = b.slots[j]
				dup = true
				break
			}
		}
		if !dup {
			b.slots[i] = channel.New(apid)
		}
	}
	return b
}

// Bind returns the Channel that an MPDU with the given imaging APID
// (64-69) should append its next strip to, creating and binding a free
// slot if none already carries this APID. It returns nil if every slot
// is already bound to a different APID, in which case the packet should
// be discarded.
func (b *ChannelBinder) Bind(apid int) *channel.Channel {
	for _, ch := range b.slots {
		if ch != nil && ch.APID() == apid {
			return ch
		}
	}

	i := preferredSlot(apid)
	if b.slots[i] == nil {
		b.slots[i] = channel.New(apid)
		return b.slots[i]
	}

	for j, ch := range b.slots {
		if ch == nil {
			b.slots[j] = channel.New(apid)
			return b.slots[j]
		}
	}

	return nil
}

// Channels returns the three channel slots in R, G, B order; a slot is
// nil if it has never been bound.
func (b *ChannelBinder) Channels() [NumChannels]*channel.Channel {
	return b.slots
}
