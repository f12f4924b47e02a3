/*
NAME
  jpeg.go

DESCRIPTION
  jpeg implements the cut-down, fixed-quantization-table JPEG-like entropy
  codec used to compress Meteor-M AVHRR imaging data: a single fixed
  Huffman table pair for DC/AC coefficients, a standard 50%-quality
  luminance quantization table scaled by a per-segment quality factor, and
  a Q14 fixed-point inverse DCT.

LICENSE
  See LICENSE file in the root of this repository.
*/

// Package jpeg decodes the 8x8-block entropy-coded image data carried in
// Meteor-M AVHRR MCU segments into 8-bit pixel blocks.
package jpeg

// Block is one 8x8 block of pixel or coefficient data.
type Block [8][8]int16

// Decoder holds state that must persist across blocks decoded from the
// same channel: the running DC predictor (Huffman-coded DC coefficients
// are differentially coded against the previous block) and the last
// nonzero quality factor seen, used as a fallback when a corrupted
// segment reports a quality factor of zero.
type Decoder struct {
	dcPred int
	lastQ  int
}

// NewDecoder returns a Decoder with a zeroed DC predictor.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// ResetDC zeroes the running DC predictor, which must happen at the start
// of each new MCU segment (the DC predictor does not carry across
// segment boundaries, only across blocks within one).
func (d *Decoder) ResetDC() {
	d.dcPred = 0
}

// DC prefix-code lengths, indexed by DC coefficient category.
var dcPrefixSize = [12]uint8{2, 3, 3, 3, 3, 3, 4, 5, 6, 7, 8, 9}

// AC Huffman table, laid out as a canonical code: acTableSize[j] gives
// the number of codewords of length j, and acTable holds their (run,
// category) payloads in code order.
var acTableSize = [17]uint8{0, 0, 2, 1, 3, 3, 2, 4, 3, 5, 5, 4, 4, 0, 0, 1, 125}

var acTable = [162]uint8{
	1, 2,
	3,
	0, 4, 17,
	5, 18, 33,
	49, 65,
	6, 19, 81, 97,
	7, 34, 113,
	20, 50, 129, 145, 161,
	8, 35, 66, 177, 193,
	21, 82, 209, 240,
	36, 51, 98, 114,
	130,
	9, 10, 22, 23, 24, 25, 26, 37, 38, 39, 40, 41, 42, 52, 53, 54, 55, 56, 57,
	58, 67, 68, 69, 70, 71, 72, 73, 74, 83, 84, 85, 86, 87, 88, 89, 90, 99, 100,
	101, 102, 103, 104, 105, 106, 115, 116, 117, 118, 119, 120, 121, 122, 131,
	132, 133, 134, 135, 136, 137, 138, 146, 147, 148, 149, 150, 151, 152, 153,
	154, 162, 163, 164, 165, 166, 167, 168, 169, 170, 178, 179, 180, 181, 182,
	183, 184, 185, 186, 194, 195, 196, 197, 198, 199, 200, 201, 202, 210, 211,
	212, 213, 214, 215, 216, 217, 218, 225, 226, 227, 228, 229, 230, 231, 232,
	233, 234, 241, 242, 243, 244, 245, 246, 247, 248, 249, 250,
}

// dcCategory classifies a 16-bit DC prefix codeword into one of 12
// categories (the number of extra magnitude bits that follow), or -1 if
// no category's prefix matches (corrupted data).
func dcCategory(codeword uint16) int {
	switch {
	case codeword>>14 == 0:
		return 0
	case codeword>>13 < 7:
		return int(codeword>>13) - 1
	case codeword>>12 < 0xF:
		return 6
	case codeword>>11 < 0x1F:
		return 7
	case codeword>>10 < 0x3F:
		return 8
	case codeword>>9 < 0x7F:
		return 9
	case codeword>>8 < 0xFF:
		return 10
	case codeword>>7 < 0x1FF:
		return 11
	default:
		return -1
	}
}

// bitCursor reads a stream of bits MSB-first out of a byte slice, past
// its declared end if necessary (returning zero bits), matching the
// reference decoder's tolerance of slightly overrunning truncated
// segments before the maxlen check catches it.
type bitCursor struct {
	data   []byte
	bitPos int
}

// peek returns the next n (<=32) bits from the cursor without advancing
// it.
func (c *bitCursor) peek(n int) uint32 {
	return c.peekFrom(0, n)
}

// peekFrom returns n (<=32) bits starting skip bits past the cursor,
// without advancing it.
func (c *bitCursor) peekFrom(skip, n int) uint32 {
	pos := c.bitPos + skip
	var ret uint32
	for n > 0 {
		byteIdx := pos / 8
		bitOff := pos % 8
		var b byte
		if byteIdx < len(c.data) {
			b = c.data[byteIdx]
		}
		avail := 8 - bitOff
		take := avail
		if take > n {
			take = n
		}
		shift := avail - take
		mask := uint32(1)<<uint(take) - 1
		chunk := (uint32(b) >> uint(shift)) & mask
		ret = ret<<uint(take) | chunk
		pos += take
		n -= take
	}
	return ret
}

// advance moves the cursor forward n bits.
func (c *bitCursor) advance(n int) { c.bitPos += n }

// byteCount returns how many whole bytes the cursor has consumed.
func (c *bitCursor) byteCount() int { return c.bitPos / 8 }

// HuffmanDecode entropy-decodes maxlen bytes of src into dst, one 8x8
// block of DCT coefficients per entry, continuing the running DC
// predictor held by d across calls (reset it with ResetDC at the start
// of a new segment). dst is zeroed first; decoding stops early, leaving
// any remaining blocks zeroed, if src is exhausted or a corrupt DC codeword is encountered --
// both of which happen on genuinely corrupted downlink data and must not
// cause a panic.
func (d *Decoder) HuffmanDecode(dst []Block, src []byte, maxlen int) {
	cur := bitCursor{data: src}
	if maxlen > len(src) {
		maxlen = len(src)
	}
	for i := range dst {
		dst[i] = Block{}
	}

	for i := range dst {
		dcInfo := cur.peek(32)
		cat := dcCategory(uint16(dcInfo >> 16))
		if cat < 0 {
			return
		}

		prefix := int(dcPrefixSize[cat])
		sign := (dcInfo >> uint(31-prefix)) & 1
		var extra uint32
		if cat > 0 {
			extra = (dcInfo >> uint(31-prefix-cat+1)) & (1<<uint(cat-1) - 1)
		}
		if cat > 0 {
			if sign != 0 {
				d.dcPred += int(extra) + (1 << uint(cat-1))
			} else {
				d.dcPred += int(extra) + (1 - (1 << uint(cat)))
			}
		}
		dst[i][0][0] = int16(d.dcPred)

		cur.advance(prefix + cat)
		if cur.byteCount() >= maxlen {
			return
		}

		for r := 1; r < 64; {
			acBuf := cur.peek(32)

			firstCoeff := uint32(0)
			acIdx := 0
			acInfo := uint32(0)
			codeLen := 0
			for j := 2; j < len(acTableSize); j++ {
				info := acBuf >> uint(32-j)
				if info-firstCoeff < uint32(acTableSize[j]) {
					acInfo = uint32(acTable[acIdx+int(info-firstCoeff)])
					codeLen = j
					break
				}
				firstCoeff = (firstCoeff + uint32(acTableSize[j])) << 1
				acIdx += int(acTableSize[j])
			}
			cur.advance(codeLen)

			if acInfo == 0 {
				for ; r < 64; r++ {
					dst[i][r/8][r%8] = 0
				}
				break
			}

			runlength := int(acInfo >> 4 & 0xF)
			acCategory := int(acInfo & 0xF)

			acSign := cur.peek(1)
			var acExtra uint32
			if acCategory > 0 {
				acExtra = cur.peekFrom(1, acCategory-1)
			}

			var acCoeff int
			if acCategory > 0 {
				if acSign != 0 {
					acCoeff = int(acExtra) + (1 << uint(acCategory-1))
				} else {
					acCoeff = int(acExtra) + (1 - (1 << uint(acCategory)))
				}
			}

			for ; runlength > 0 && r < 63; runlength-- {
				dst[i][r/8][r%8] = 0
				r++
			}
			dst[i][r/8][r%8] = int16(acCoeff)
			cur.advance(acCategory)
			r++

			if cur.byteCount() >= maxlen {
				return
			}
		}

		if cur.byteCount() >= maxlen {
			return
		}
	}
}

// 8x8 reverse zigzag pattern: zigzagLUT[i*8+j] gives the natural-order
// position of the coefficient stored at zigzag position i*8+j.
var zigzagLUT = [64]uint8{
	0, 1, 8, 16, 9, 2, 3, 10,
	17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34,
	27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36,
	29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46,
	53, 60, 61, 54, 47, 55, 62, 63,
}

// quantTable is the standard 50%-quality JPEG luminance quantization
// table, scaled per-segment by the quality factor in quantization.
var quantTable = [8][8]uint8{
	{16, 11, 10, 16, 24, 40, 51, 61},
	{12, 12, 14, 19, 26, 58, 60, 55},
	{14, 13, 16, 24, 40, 57, 69, 56},
	{14, 17, 22, 29, 51, 87, 80, 62},
	{18, 22, 37, 56, 68, 109, 103, 77},
	{24, 35, 55, 64, 81, 104, 113, 92},
	{49, 64, 78, 87, 103, 121, 120, 101},
	{72, 92, 95, 98, 112, 100, 103, 99},
}

// cosLUT holds cos((2x+1)*u*pi/16) in Q14 fixed point, used by the
// separable inverse DCT.
var cosLUT = [8][8]int16{
	{0x4000, 0x3ec5, 0x3b21, 0x3537, 0x2d41, 0x238e, 0x187e, 0x0c7c},
	{0x4000, 0x3537, 0x187e, -0x0c7c, -0x2d41, -0x3ec5, -0x3b21, -0x238e},
	{0x4000, 0x238e, -0x187e, -0x3ec5, -0x2d41, 0x0c7c, 0x3b21, 0x3537},
	{0x4000, 0x0c7c, -0x3b21, -0x238e, 0x2d41, 0x3537, -0x187e, -0x3ec5},
	{0x4000, -0x0c7c, -0x3b21, 0x238e, 0x2d41, -0x3537, -0x187e, 0x3ec5},
	{0x4000, -0x238e, -0x187e, 0x3ec5, -0x2d41, -0x0c7c, 0x3b21, -0x3537},
	{0x4000, -0x3537, 0x187e, 0x0c7c, -0x2d41, 0x3ec5, -0x3b21, 0x238e},
	{0x4000, -0x3ec5, 0x3b21, -0x3537, 0x2d41, -0x238e, 0x187e, -0x0c7c},
}

const (
	qShift  = 14
	qInvSq2 = 0x2d41 // 1/sqrt(2) in Q14
)

// qmul multiplies two Q14 fixed-point values, returning a Q14 result.
func qmul(x, y int32) int16 {
	return int16((x * y) >> qShift)
}

// unzigzag reorders a block's coefficients from zigzag scan order into
// natural 8x8 raster order, in place.
func unzigzag(block *Block) {
	var tmp [64]int16
	for i := 0; i < 8; i++ {
		for j := 0; j < 8; j++ {
			tmp[zigzagLUT[i*8+j]] = block[i][j]
		}
	}
	for i := 0; i < 8; i++ {
		for j := 0; j < 8; j++ {
			block[i][j] = tmp[i*8+j]
		}
	}
}

// quantization returns the dequantization factor for quantTable[x][y] at
// the given JPEG quality factor (1-100), following the standard
// IJG scaling formula.
func quantization(quality, x, y int) int {
	var comprRatio int
	if quality < 50 {
		comprRatio = 5000 / quality
	} else {
		comprRatio = 200 - 2*quality
	}
	v := ((int(quantTable[x][y])*comprRatio)/50 + 1) / 2
	if v < 1 {
		v = 1
	}
	return v
}

// dequantize scales a block's coefficients by the quantization table at
// the given quality factor, in place.
func dequantize(block *Block, quality int) {
	for i := 0; i < 8; i++ {
		for j := 0; j < 8; j++ {
			block[i][j] = int16(int32(block[i][j]) * int32(quantization(quality, i, j)))
		}
	}
}

// inverseDCT performs a separable 2D inverse DCT over a dequantized
// block, producing an 8-bit pixel block rescaled from the DCT's nominal
// [-512, 512) output range to [0, 255].
func inverseDCT(dst *[8][8]uint8, src *Block) {
	var work [8][8]int32

	for i := 0; i < 8; i++ {
		alpha := int32(0x4000)
		if i == 0 {
			alpha = qInvSq2
		}
		for j := 0; j < 8; j++ {
			for u := 0; u < 8; u++ {
				work[j][u] += int32(qmul(alpha, int32(cosLUT[u][i]))) * int32(src[j][i])
			}
		}
	}

	for j := 0; j < 8; j++ {
		var row [8]int32
		for i := 0; i < 8; i++ {
			alpha := int32(0x4000)
			if i == 0 {
				alpha = qInvSq2
			}
			for v := 0; v < 8; v++ {
				row[v] += int32(int64(work[i][j]) * int64(qmul(alpha, int32(cosLUT[v][i]))) >> qShift)
			}
		}
		for i := 0; i < 8; i++ {
			px := (row[i]/4)>>qShift + 128
			if px < 0 {
				px = 0
			}
			if px > 255 {
				px = 255
			}
			dst[i][j] = uint8(px)
		}
	}
}

// Decode turns entropy-decoded coefficients src into an 8x8 pixel block,
// applying the given JPEG quality factor (1-100). A quality of 0 reuses
// the last nonzero quality factor d has seen (the reference decoder's
// tolerance for segments whose quality field was corrupted to zero); the
// very first call with quality 0 produces an all-black block.
func (d *Decoder) Decode(dst *[8][8]uint8, src *Block, quality int) {
	if quality <= 0 {
		quality = d.lastQ
	}
	if quality <= 0 {
		*dst = [8][8]uint8{}
		return
	}
	d.lastQ = quality

	block := *src
	unzigzag(&block)
	dequantize(&block, quality)
	inverseDCT(dst, &block)
}
