/*
NAME
  viterbi.go

DESCRIPTION
  viterbi implements a rate-1/2, K=7, soft-decision Viterbi decoder with a
  sliding-window traceback, matching the convolutional code used on the
  Meteor-M LRPT downlink (G1=0x79, G2=0x5B).

LICENSE
  See LICENSE file in the root of this repository.
*/

// Package viterbi implements a soft-decision Viterbi decoder for the
// rate-1/2, K=7 convolutional code used by the Meteor-M LRPT downlink.
package viterbi

// Convolutional code parameters.
const (
	K          = 7          // Constraint length.
	NumStates  = 1 << (K - 1) // 64 states.
	G1         = 0x79
	G2         = 0x5B

	// MemDepth is the size of the predecessor-history ring. MemBacktrace
	// bits (MemBacktrace/8 output bytes) are traced back and emitted after
	// every MemBacktrace trellis steps;
	// MemStart bits at the front of each traceback are discarded because
	// the path has not yet converged.
	MemDepth      = 128
	MemBacktrace  = 64
	MemStart      = 64

	// Delay is the number of output bytes by which viterbi_decode trails
	// its input: the last MemStart bits of any given input are not
	// resolved until the following call's forward pass completes them.
	Delay = MemStart / 8
)

// Decoder is a rate-1/2 K=7 soft Viterbi decoder with sliding-window
// traceback. Each Decoder owns its state metrics and predecessor history;
// none of it is shared across instances.
type Decoder struct {
	outputLUT [NumStates]uint8 // output symbol (2 bits) for each state, given input bit 0

	metric     [NumStates]int16
	nextMetric [NumStates]int16
	prev       [MemDepth][NumStates / 2]uint8
	depth      int
}

// New builds a Decoder with all state metrics initialized to zero.
func New() *Decoder {
	d := &Decoder{}
	for state := 0; state < NumStates; state++ {
		next := (state >> 1) | (0 << (K - 1))
		d.outputLUT[state] = uint8(parity(uint32(next)&G1)<<1 | parity(uint32(next)&G2))
	}
	return d
}

func parity(word uint32) uint8 {
	word ^= word >> 1
	word ^= word >> 2
	word = (word & 0x11111111) * 0x11111111
	return uint8((word >> 28) & 0x1)
}

// twinMetric returns the local metric for the "input bit 1" transition out
// of a state, given the "input bit 0" local metric m0 and the raw soft
// samples. The two transitions out of a butterfly differ only in the two
// top bits of the generator polynomials applied to the new state's top bit.
func twinMetric(m0 int16, x, y int8) int16 {
	switch (G1>>(K-1)&1)<<1 | (G2 >> (K - 1) & 1) {
	case 0x0:
		return m0
	case 0x1:
		return m0 - 2*int16(x)
	case 0x2:
		return m0 - 2*int16(y)
	default:
		return -m0
	}
}

// localMetric returns the branch metric for hypothesis "coding" (a 2-bit
// output symbol) against received soft samples x, y. Higher is better.
func localMetric(x, y int8, coding int) int16 {
	a, b := int16(x), int16(y)
	if coding&2 == 0 {
		a = -a
	}
	if coding&1 == 0 {
		b = -b
	}
	return a + b
}

// Decode runs the Viterbi forward pass over soft (symbol-pair) input and
// writes decoded bits to out. in must hold bytecount*16 soft samples (two
// per decoded bit, y then x, eight bits per byte) and bytecount must be a multiple of
// MemBacktrace/8. Decode returns the total accumulated path metric,
// useful as a quality indicator (see spec.md §4.5 and §7).
//
// Decode's output trails its input by Delay bytes: the final Delay bytes
// of any given forward pass are not resolved until the start of the next
// call. Callers must account for this the way pipeline.Driver does.
func (d *Decoder) Decode(out []byte, in []int8, bytecount int) int {
	if bytecount%(MemBacktrace/8) != 0 {
		panic("viterbi: bytecount must be a multiple of MemBacktrace/8")
	}

	totalMetric := 0
	outIdx := 0
	inIdx := 0
	for ; bytecount > 0; bytecount -= MemBacktrace / 8 {
		for i := MemStart; i < MemDepth; i++ {
			d.depth = nextDepth(d.depth)

			y := in[inIdx]
			x := in[inIdx+1]
			inIdx += 2

			d.updateMetrics(-x, -y, d.depth)
		}

		bestState := 0
		bestMetric := d.metric[0]
		for i := 1; i < NumStates; i++ {
			if d.metric[i] > bestMetric {
				bestMetric = d.metric[i]
				bestState = i
			}
		}
		for i := range d.metric {
			d.metric[i] -= bestMetric
		}

		totalMetric += 255*MemBacktrace - int(bestMetric)

		d.backtrace(out[outIdx:outIdx+MemBacktrace/8], uint8(bestState), d.depth, MemStart, MemBacktrace)
		outIdx += MemBacktrace / 8
	}

	return totalMetric
}

func nextDepth(x int) int { return (x + 1) % MemDepth }
func prevDepth(x int) int { return (x - 1 + MemDepth) % MemDepth }

// updateMetrics advances the Viterbi trellis by one step for received
// samples (x,y), recording predecessor choices into prev[depth] and
// swapping the current/next metric arrays.
func (d *Decoder) updateMetrics(x, y int8, depth int) {
	lm := [4]int16{
		localMetric(x, y, 0), localMetric(x, y, 1),
		localMetric(x, y, 2), localMetric(x, y, 3),
	}
	prevState := &d.prev[depth]

	for state := 0; state < NumStates/2; state += 2 {
		ns0 := state
		ns1 := state + NumStates/2

		m0 := d.metric[state<<1]
		m1 := d.metric[(state<<1)+1]
		best01 := m0
		pred01 := uint8(state << 1)
		if m1 > m0 {
			best01 = m1
			pred01 = uint8((state << 1) + 1)
		}

		lm0 := lm[d.outputLUT[state<<1]]
		lm1 := twinMetric(lm0, x, y)

		d.nextMetric[ns0] = best01 + lm0
		d.nextMetric[ns1] = best01 + lm1
		prevState[ns0] = pred01

		ns2 := ns0 + 1
		ns3 := ns1 + 1

		m2 := d.metric[(state<<1)+2]
		m3 := d.metric[(state<<1)+3]
		best23 := m2
		pred23 := uint8((state << 1) + 2)
		if m3 > m2 {
			best23 = m3
			pred23 = uint8((state << 1) + 3)
		}

		lm2 := lm1
		lm3 := twinMetric(lm2, x, y)

		d.nextMetric[ns2] = best23 + lm2
		d.nextMetric[ns3] = best23 + lm3
		prevState[ns2] = pred23
	}

	d.metric, d.nextMetric = d.nextMetric, d.metric
}

// backtrace walks the predecessor history backward bitskip+bitcount steps
// from state at the given depth, discarding the first bitskip bits (not
// yet converged) and writing the remaining bitcount bits MSB-first into
// out, filled in reverse byte order because traceback runs backward in
// time.
func (d *Decoder) backtrace(out []byte, state uint8, depth, bitskip, bitcount int) {
	if bitcount%8 != 0 {
		panic("viterbi: bitcount must be a multiple of 8")
	}

	for ; bitskip > 0; bitskip-- {
		state = d.prev[depth][state&^(1<<(K-2))]
		depth = prevDepth(depth)
	}

	bytecount := bitcount / 8
	outIdx := bytecount
	for ; bytecount > 0; bytecount-- {
		var tmp uint8
		for i := 0; i < 8; i++ {
			tmp |= (state >> (K - 2)) << i
			state = d.prev[depth][state&^(1<<(K-2))]
			depth = prevDepth(depth)
		}
		outIdx--
		out[outIdx] = tmp
	}
}

// ConvEncodeU32 convolutionally encodes the 32-bit word data with the same
// rate-1/2 K=7 code starting from state, returning the 64-bit encoded
// output and the resulting state. It is used once at startup to compute
// the encoded sync word the correlator searches for (spec.md §4.4).
func ConvEncodeU32(state uint32, data uint32) (output uint64, newState uint32) {
	for i := 31; i >= 0; i-- {
		state = ((state >> 1) | (((data >> uint(i)) & 1) << (K - 2))) & (NumStates - 1)
		tmp := parity(state&G1)<<1 | parity(state&G2)
		output |= uint64(tmp) << uint(i*2)
	}
	return output, state
}
