/*
NAME
  rice.go - Rice/SZIP scan-line codec.

DESCRIPTION
  Decoder reverses the block-adaptive Rice coding CCSDS uses to
  compress each LRIT image scan line: samples are DPCM-predicted
  against the previous sample, zigzag-mapped to unsigned residuals, and
  Rice-coded in fixed-size blocks with a per-block adaptive parameter
  and a raw escape for incompressible blocks, per spec §4.9's
  {options, bits_per_pixel, pixels_per_block, pixels_per_scanline}
  parameterization. Encoder is the inverse, used by tests to build
  exercisable compressed scan lines.

AUTHORS
  Grounded on the {options_mask, bits_per_pixel, pixels_per_block,
  pixels_per_scanline} SZ_BufftoBuffDecompress parameterization
  documented in original_source/src/assembler/session_pdu.cc; the block
  structure (adaptive k-parameter search plus a raw escape) follows the
  CCSDS 121.0-B Rice coding scheme referenced there. Bit-level
  reader/writer helpers follow the small bit-cursor style of
  ausocean-av/codec/h264/h264dec/bits.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package rice implements the block-adaptive Rice codec used to
// compress GOES LRIT image scan lines.
package rice

import "github.com/pkg/errors"

// RawOptionMask, ORed into a Params.Options value, selects the raw
// (uncompressed passthrough) variant. Carried for completeness; this
// decoder auto-detects the per-block raw escape regardless.
const RawOptionMask = 0x01

// Params configures the codec, mirroring the parameters an S_PDU reads
// from its RiceCompression header.
type Params struct {
	Options        uint16
	BitsPerPixel   int
	PixelsPerBlock int
}

// rawEscape is the reserved k value (equal to BitsPerPixel) that marks
// a block as stored verbatim rather than Rice-coded.
func (p Params) rawEscape() int { return p.BitsPerPixel }

// kBits is the number of bits used to signal a block's Rice parameter
// (or its raw escape), wide enough to hold values 0..BitsPerPixel.
func (p Params) kBits() int {
	return bitsFor(p.BitsPerPixel)
}

func bitsFor(n int) int {
	b := 0
	for (1 << uint(b)) <= n {
		b++
	}
	return b
}

func zigzag(v int32) uint32 {
	return uint32((v << 1) ^ (v >> 31))
}

func unzigzag(v uint32) int32 {
	return int32(v>>1) ^ -int32(v&1)
}

// bitWriter accumulates MSB-first bits into a byte slice.
type bitWriter struct {
	buf  []byte
	cur  byte
	nbit uint
}

func (w *bitWriter) writeBit(b uint32) {
	w.cur = (w.cur << 1) | byte(b&1)
	w.nbit++
	if w.nbit == 8 {
		w.buf = append(w.buf, w.cur)
		w.cur, w.nbit = 0, 0
	}
}

func (w *bitWriter) writeBits(v uint32, n int) {
	for i := n - 1; i >= 0; i-- {
		w.writeBit((v >> uint(i)) & 1)
	}
}

func (w *bitWriter) writeUnary(q uint32) {
	for i := uint32(0); i < q; i++ {
		w.writeBit(1)
	}
	w.writeBit(0)
}

func (w *bitWriter) flush() []byte {
	if w.nbit > 0 {
		w.cur <<= (8 - w.nbit)
		w.buf = append(w.buf, w.cur)
		w.cur, w.nbit = 0, 0
	}
	return w.buf
}

// bitReader consumes MSB-first bits from a byte slice.
type bitReader struct {
	buf []byte
	pos uint // bit position
}

// Sentinel errors, in the style of container/mts's package-level
// Err... values.
var (
	ErrUnexpectedEOF          = errors.New("rice: unexpected end of input")
	ErrRunawayUnary           = errors.New("rice: runaway unary code")
	ErrInvalidBlockParam      = errors.New("rice: invalid block parameter")
	ErrScanlineLengthMismatch = errors.New("rice: decoded length mismatch")
)

func (r *bitReader) readBit() (uint32, error) {
	byteIdx := r.pos / 8
	if int(byteIdx) >= len(r.buf) {
		return 0, ErrUnexpectedEOF
	}
	shift := 7 - (r.pos % 8)
	b := (r.buf[byteIdx] >> shift) & 1
	r.pos++
	return uint32(b), nil
}

func (r *bitReader) readBits(n int) (uint32, error) {
	var v uint32
	for i := 0; i < n; i++ {
		b, err := r.readBit()
		if err != nil {
			return 0, err
		}
		v = (v << 1) | b
	}
	return v, nil
}

func (r *bitReader) readUnary() (uint32, error) {
	var q uint32
	for {
		b, err := r.readBit()
		if err != nil {
			return 0, err
		}
		if b == 0 {
			return q, nil
		}
		q++
		if q > 1<<20 {
			return 0, ErrRunawayUnary
		}
	}
}

// Encode compresses pixelsPerScanline 8-bit samples (one scan line)
// into a Rice-coded byte stream using the given parameters.
func Encode(params Params, samples []byte) []byte {
	w := &bitWriter{}
	n := params.PixelsPerBlock
	var prev int32
	for start := 0; start < len(samples); start += n {
		end := start + n
		if end > len(samples) {
			end = len(samples)
		}
		block := samples[start:end]

		residuals := make([]uint32, len(block))
		for i, s := range block {
			residuals[i] = zigzag(int32(s) - prev)
			prev = int32(s)
		}

		k, cost := bestK(residuals, params.BitsPerPixel)
		rawCost := len(block) * params.BitsPerPixel
		if rawCost < cost {
			w.writeBits(uint32(params.rawEscape()), params.kBits())
			for _, s := range block {
				w.writeBits(uint32(s), params.BitsPerPixel)
			}
			continue
		}

		w.writeBits(uint32(k), params.kBits())
		for _, r := range residuals {
			w.writeUnary(r >> uint(k))
			if k > 0 {
				w.writeBits(r&((1<<uint(k))-1), k)
			}
		}
	}
	return w.flush()
}

// bestK picks the Rice parameter minimizing the block's encoded bit
// length, among k in [0, bitsPerPixel).
func bestK(residuals []uint32, bitsPerPixel int) (k int, cost int) {
	best, bestCost := 0, -1
	for cand := 0; cand < bitsPerPixel; cand++ {
		c := 0
		for _, r := range residuals {
			c += int(r>>uint(cand)) + 1 + cand
		}
		if bestCost < 0 || c < bestCost {
			best, bestCost = cand, c
		}
	}
	return best, bestCost
}

// Decode decompresses one Rice-coded scan line of pixelsPerScanline
// samples.
func Decode(params Params, data []byte, pixelsPerScanline int) ([]byte, error) {
	r := &bitReader{buf: data}
	out := make([]byte, 0, pixelsPerScanline)
	n := params.PixelsPerBlock

	for len(out) < pixelsPerScanline {
		blockLen := n
		if remain := pixelsPerScanline - len(out); blockLen > remain {
			blockLen = remain
		}

		k, err := r.readBits(params.kBits())
		if err != nil {
			return nil, errors.Wrap(err, "reading block parameter")
		}

		if int(k) == params.rawEscape() {
			for i := 0; i < blockLen; i++ {
				v, err := r.readBits(params.BitsPerPixel)
				if err != nil {
					return nil, errors.Wrap(err, "reading raw-escape sample")
				}
				out = append(out, byte(v))
			}
			continue
		}
		if int(k) > params.BitsPerPixel {
			return nil, ErrInvalidBlockParam
		}

		var prev int32
		if len(out) > 0 {
			prev = int32(out[len(out)-1])
		}
		for i := 0; i < blockLen; i++ {
			q, err := r.readUnary()
			if err != nil {
				return nil, errors.Wrap(err, "reading unary code")
			}
			var rem uint32
			if k > 0 {
				rem, err = r.readBits(int(k))
				if err != nil {
					return nil, errors.Wrap(err, "reading remainder bits")
				}
			}
			residual := (q << k) | rem
			delta := unzigzag(residual)
			sample := prev + delta
			out = append(out, byte(sample))
			prev = sample
		}
	}
	if len(out) != pixelsPerScanline {
		return nil, ErrScanlineLengthMismatch
	}
	return out, nil
}
