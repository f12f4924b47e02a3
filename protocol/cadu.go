/*
NAME
  cadu.go

DESCRIPTION
  cadu defines the Channel Access Data Unit framing that wraps every
  Virtual Channel Data Unit on the Meteor-M downlink: a 4-byte attached
  sync marker followed by the VCDU itself.

LICENSE
  See LICENSE file in the root of this repository.
*/

// Package protocol defines the wire layouts of the Meteor-M LRPT downlink,
// from the CADU frame down through VCDU, MPDU and MCU segment, along with
// the bitfield accessors needed to parse each layer.
package protocol

/*
Cadu is a Channel Access Data Unit: the attached sync marker plus one
VCDU. Below is its byte layout for reference.

============================================================================
| octet range    | field                                                  |
============================================================================
| 0..3           | sync marker (SyncWord, after descrambling/derotation)  |
----------------------------------------------------------------------------
| 4..1023        | VCDU (see Vcdu)                                       |
----------------------------------------------------------------------------
*/
const (
	// DataLength is the size in bytes of a VCDU (sync word excluded).
	DataLength = 1020

	// SyncWord is the CCSDS attached sync marker, transmitted MSB first.
	SyncWord uint32 = 0x1ACFFC1D

	// SyncLength is the size in bytes of the sync marker.
	SyncLength = 4
)
