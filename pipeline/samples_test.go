package pipeline

import (
	"testing"

	"github.com/meteorground/lrpt/internal/correlator"
)

func TestSoftToHardPacksMSBFirst(t *testing.T) {
	// Negative samples become 1 bits, positive become 0, first sample is
	// the most significant bit of the byte.
	soft := []int8{-1, -1, -1, -1, 1, 1, 1, 1}
	got := softToHard(soft)
	if len(got) != 1 || got[0] != 0xF0 {
		t.Fatalf("softToHard(%v) = %v, want [0xf0]", soft, got)
	}
}

func TestSoftDerotatePhase0IsNoop(t *testing.T) {
	soft := []int8{10, -20, 30, -40}
	want := append([]int8(nil), soft...)
	softDerotate(soft, correlator.Phase0)
	for i := range soft {
		if soft[i] != want[i] {
			t.Fatalf("Phase0 changed sample %d: got %d, want %d", i, soft[i], want[i])
		}
	}
}

func TestSoftDerotatePhase180NegatesAll(t *testing.T) {
	soft := []int8{10, -20, 30, -40}
	softDerotate(soft, correlator.Phase180)
	want := []int8{-10, 20, -30, 40}
	for i := range soft {
		if soft[i] != want[i] {
			t.Fatalf("sample %d = %d, want %d", i, soft[i], want[i])
		}
	}
}

func TestSoftDerotatePhase90SwapsAndNegates(t *testing.T) {
	// (x, y) -> (y, -x)
	soft := []int8{10, 20}
	softDerotate(soft, correlator.Phase90)
	if soft[0] != 20 || soft[1] != -10 {
		t.Fatalf("Phase90 = %v, want [20 -10]", soft)
	}
}

func TestSoftDerotatePhase270SwapsAndNegates(t *testing.T) {
	// (x, y) -> (-y, x)
	soft := []int8{10, 20}
	softDerotate(soft, correlator.Phase270)
	if soft[0] != -20 || soft[1] != 10 {
		t.Fatalf("Phase270 = %v, want [-20 10]", soft)
	}
}

func TestSoftDerotateClampsBeforeNegating(t *testing.T) {
	soft := []int8{-128}
	softDerotate(soft, correlator.Phase180)
	if soft[0] != 127 {
		t.Fatalf("Phase180 of clamped -128 = %d, want 127", soft[0])
	}
}

func TestInterleaveInputSamples(t *testing.T) {
	// 72 deinterleaved output bytes need 80 raw bytes (one full marker
	// stride), plus the fixed +8 safety margin.
	if got := interleaveInputSamples(72); got != 72*80/72+8 {
		t.Fatalf("interleaveInputSamples(72) = %d, want %d", got, 72*80/72+8)
	}
}
