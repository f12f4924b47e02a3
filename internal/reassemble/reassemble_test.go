package reassemble

import (
	"bytes"
	"testing"

	"github.com/meteorground/lrpt/protocol"
)

// buildVcdu returns a raw protocol.VcduLength buffer with version=1, VCID=1,
// the given first-header pointer, and dataZone copied at the start of the
// data unit zone (the rest left zeroed).
func buildVcdu(t *testing.T, headerPtr uint16, dataZone []byte) protocol.Vcdu {
	t.Helper()
	buf := make([]byte, protocol.VcduLength)
	buf[0] = 0x40 // version=1, spacecraft id high bits = 0
	buf[1] = 0x01 // VCID = 1
	buf[8] = byte(headerPtr >> 8 & 0x7)
	buf[9] = byte(headerPtr)

	off := 6 + 2 + 2
	copy(buf[off:off+protocol.VcduDataLength], dataZone)

	v, err := protocol.ParseVcdu(buf)
	if err != nil {
		t.Fatalf("ParseVcdu: %v", err)
	}
	return v
}

// buildMpduBytes returns a raw MPDU whose packet data length field
// declares payloadLen bytes following the primary header, filled with a
// repeating byte pattern for easy comparison.
func buildMpduBytes(payloadLen int) []byte {
	total := protocol.PrimaryHeaderLength + payloadLen
	buf := make([]byte, total)
	buf[0] = 0b000_1_1_000 // secondary header present, apid high = 0
	buf[1] = 64
	buf[2] = 0b11_000000
	buf[3] = 1
	want := payloadLen - 1
	buf[4] = byte(want >> 8)
	buf[5] = byte(want)
	for i := protocol.PrimaryHeaderLength; i < total; i++ {
		buf[i] = byte(i)
	}
	return buf
}

func TestReassembleWithinSingleVcdu(t *testing.T) {
	mpdu := buildMpduBytes(40)

	dataZone := make([]byte, protocol.VcduDataLength)
	copy(dataZone, mpdu)
	// The header pointer is 0: the only MPDU header in this VCDU is the
	// one placed at the start of the data zone; the rest stays zero.

	v := buildVcdu(t, 0, dataZone)

	r := New()
	var got []byte
	for {
		status := r.Feed(v)
		if status == Parsed {
			got = append([]byte{}, r.Mpdu().Data()...)
			break
		}
		if status == Proceed {
			t.Fatal("never reached Parsed before Proceed")
		}
	}

	want := mpdu[protocol.HeaderLength:]
	if !bytes.Equal(got, want) {
		t.Fatalf("reassembled payload mismatch:\ngot  %x\nwant %x", got, want)
	}
}

func TestReassembleAcrossVcduBoundary(t *testing.T) {
	mpdu := buildMpduBytes(40)
	split := protocol.VcduDataLength - 10 // force the MPDU to straddle two VCDUs

	firstZone := make([]byte, protocol.VcduDataLength)
	copy(firstZone[split:], mpdu[:protocol.VcduDataLength-split])
	firstHeaderPtr := uint16(split)

	secondZone := make([]byte, protocol.VcduDataLength)
	copy(secondZone, mpdu[protocol.VcduDataLength-split:])

	v1 := buildVcdu(t, firstHeaderPtr, firstZone)
	// second VCDU carries no new header: use the sentinel value.
	v2 := buildVcdu(t, 0x7FF, secondZone)

	r := New()
	for r.Feed(v1) != Proceed {
	}

	var got []byte
	for {
		status := r.Feed(v2)
		if status == Parsed {
			got = append([]byte{}, r.Mpdu().Data()...)
			break
		}
		if status == Proceed {
			t.Fatal("never reached Parsed before Proceed")
		}
	}

	want := mpdu[protocol.HeaderLength:]
	if !bytes.Equal(got, want) {
		t.Fatalf("reassembled payload across VCDU boundary mismatch:\ngot  %x\nwant %x", got, want)
	}
}
