/*
NAME
  rs.go - CCSDS (255,223) interleaved Reed-Solomon codec.

DESCRIPTION
  Decode reverses the dual-basis, depth-4 interleaved Reed-Solomon
  coding applied to each GOES downlink frame body: four independent
  (255,223) codewords are interleaved byte-by-byte across the 1020-byte
  input, each symbol is converted from the transponder's dual basis
  into the decoder's conventional GF(2^8) basis, each codeword is
  decoded and up to NRoots/2 symbol errors per codeword are corrected,
  and the 4*223 = 892 corrected message bytes are de-interleaved into
  the output. Encode is the inverse systematic encoder, used by tests
  to build exercisable codewords.

AUTHORS
  Grounded on the stateful, buffer-owning processing style of
  ausocean-av/codec/h264/h264dec (frame-at-a-time decode returning a
  status/consumed count) and on the exact dual-basis conversion
  constants and interleave/deinterleave order of
  original_source/src/decoder/reed_solomon.cc.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package rs implements the CCSDS interleaved Reed-Solomon code used to
// protect each GOES LRIT/HRIT downlink frame body.
package rs

import "math/bits"

// InterleaveDepth is the number of codewords interleaved across one
// frame body.
const InterleaveDepth = 4

// CodewordLen is the full (data+parity) length of one Reed-Solomon
// codeword.
const CodewordLen = DataLen + NRoots // 255

// BodyLen is the interleaved frame body length fed to Decode
// (InterleaveDepth * CodewordLen).
const BodyLen = InterleaveDepth * CodewordLen // 1020

// MessageLen is the interleaved message length returned by Decode
// (InterleaveDepth * DataLen).
const MessageLen = InterleaveDepth * DataLen // 892

// dualBasisRows are the eight basis vectors (as GF(2^8) elements in
// conventional basis) of the transponder's dual basis representation,
// taken verbatim from the reference decoder's conversion table.
var dualBasisRows = [8]byte{
	0b11111110, 0b01101001, 0b01101011, 0b00001101,
	0b11101111, 0b11110010, 0b01011011, 0b11000111,
}

var convToDualTable [256]byte
var dualToConvTable [256]byte

func init() {
	// convToDual(x) = the byte whose bit i is the parity of (x & dualBasisRows[i]),
	// i.e. each output bit is a fixed linear (XOR) combination of the
	// input's bits, applied directly to a conventional-basis byte to
	// produce its dual-basis representation; dualToConvTable is its
	// precomputed inverse, built by brute-force search since the
	// transform is a bijection over 256 values.
	for x := 0; x < 256; x++ {
		var y byte
		for i, row := range dualBasisRows {
			if bits.OnesCount8(byte(x)&row)&1 != 0 {
				y |= 1 << uint(7-i)
			}
		}
		convToDualTable[x] = y
		dualToConvTable[y] = byte(x)
	}
}

// DualToConv converts one byte from the transponder's dual basis into
// conventional GF(2^8) basis.
func DualToConv(x byte) byte { return dualToConvTable[x] }

// ConvToDual converts one byte from conventional GF(2^8) basis into the
// transponder's dual basis.
func ConvToDual(x byte) byte { return convToDualTable[x] }

// Decode reverses depth-4 interleaving, dual-basis conversion and
// Reed-Solomon coding on a 1020-byte frame body, writing the 892-byte
// corrected message into out. It returns the total number of corrected
// symbols across all four codewords, or -1 if any codeword held more
// errors than it could correct.
func Decode(body *[BodyLen]byte, out *[MessageLen]byte) int {
	totalCorrected := 0
	var codeword [CodewordLen]byte

	for lane := 0; lane < InterleaveDepth; lane++ {
		for i := 0; i < CodewordLen; i++ {
			codeword[i] = DualToConv(body[i*InterleaveDepth+lane])
		}

		corrected, ok := decodeCodeword(codeword[:])
		if !ok {
			return -1
		}
		totalCorrected += corrected

		for i := 0; i < DataLen; i++ {
			out[i*InterleaveDepth+lane] = ConvToDual(codeword[i])
		}
	}
	return totalCorrected
}

// decodeCodeword corrects a single 255-byte codeword (message followed
// by NRoots parity bytes, all in conventional basis) in place, returning
// the number of symbols corrected and whether decoding succeeded.
func decodeCodeword(data []byte) (corrected int, ok bool) {
	s := syndromes(data)

	zero := true
	for _, v := range s {
		if v != 0 {
			zero = false
			break
		}
	}
	if zero {
		return 0, true
	}

	lambda := berlekampMassey(s)
	deg := len(lambda) - 1
	if deg > NRoots/2 {
		return 0, false
	}

	errPos, ok := chienSearch(lambda, len(data))
	if !ok || len(errPos) != deg {
		return 0, false
	}

	forneyCorrect(data, s, lambda, errPos)
	return len(errPos), true
}

// syndromes evaluates the received codeword polynomial (data[0] is the
// highest-degree coefficient) at the code's NRoots consecutive roots.
func syndromes(data []byte) []byte {
	s := make([]byte, NRoots)
	for i := 0; i < NRoots; i++ {
		root := expTable[(fcr+i)%fieldSize]
		var acc byte
		for _, d := range data {
			acc = gfMul(acc, root) ^ d
		}
		s[i] = acc
	}
	return s
}

// berlekampMassey finds the shortest linear feedback shift register that
// generates the syndrome sequence, i.e. the error locator polynomial
// lambda (lambda[0] == 1, lambda[len-1] the highest-degree nonzero
// term).
func berlekampMassey(s []byte) []byte {
	n := len(s)
	c := make([]byte, n+1)
	b := make([]byte, n+1)
	c[0], b[0] = 1, 1

	l := 0
	m := 1
	bCoeff := byte(1)

	for i := 0; i < n; i++ {
		d := s[i]
		for j := 1; j <= l; j++ {
			d ^= gfMul(c[j], s[i-j])
		}
		switch {
		case d == 0:
			m++
		case 2*l <= i:
			t := make([]byte, len(c))
			copy(t, c)
			coeff := gfDiv(d, bCoeff)
			for j := 0; j+m < len(c); j++ {
				c[j+m] ^= gfMul(coeff, b[j])
			}
			l = i + 1 - l
			copy(b, t)
			bCoeff = d
			m = 1
		default:
			coeff := gfDiv(d, bCoeff)
			for j := 0; j+m < len(c); j++ {
				c[j+m] ^= gfMul(coeff, b[j])
			}
			m++
		}
	}
	return c[:l+1]
}

// chienSearch finds the roots of lambda among the inverses of the
// codeword's n candidate error-locator values, returning the error
// positions as powers of x (0 = lowest-degree coefficient, i.e. the
// last byte, data[n-1]).
func chienSearch(lambda []byte, n int) (positions []int, ok bool) {
	for p := 0; p < n; p++ {
		xInv := expTable[((fieldSize-p)%fieldSize+fieldSize)%fieldSize]
		var v byte
		pow := byte(1)
		for _, c := range lambda {
			v ^= gfMul(c, pow)
			pow = gfMul(pow, xInv)
		}
		if v == 0 {
			positions = append(positions, p)
		}
	}
	return positions, true
}

// forneyCorrect computes and applies the error magnitude at each
// position in errPos via the generalized Forney formula
//
//	e_k = X_k^(1-fcr) * Omega(X_k^-1) / Lambda'(X_k^-1)
func forneyCorrect(data []byte, s, lambda []byte, errPos []int) {
	// omega(x) = s(x)*lambda(x) mod x^NRoots
	omega := make([]byte, NRoots)
	for i := range omega {
		var acc byte
		for j := 0; j <= i && j < len(lambda); j++ {
			if i-j < len(s) {
				acc ^= gfMul(lambda[j], s[i-j])
			}
		}
		omega[i] = acc
	}

	// lambda'(x): derivative over GF(2) keeps only odd-degree terms,
	// shifted down one degree.
	lambdaPrime := make([]byte, len(lambda))
	for j := 1; j < len(lambda); j += 2 {
		lambdaPrime[j-1] = lambda[j]
	}

	n := len(data)
	for _, p := range errPos {
		xk := expTable[p%fieldSize]
		xInv := gfInv(xk)

		var omegaVal byte
		pow := byte(1)
		for _, c := range omega {
			omegaVal ^= gfMul(c, pow)
			pow = gfMul(pow, xInv)
		}

		var lambdaPrimeVal byte
		pow = byte(1)
		for _, c := range lambdaPrime {
			lambdaPrimeVal ^= gfMul(c, pow)
			pow = gfMul(pow, xInv)
		}
		if lambdaPrimeVal == 0 {
			continue
		}

		mag := gfPowMul(gfDiv(omegaVal, lambdaPrimeVal), (1-fcr)*p)
		data[n-1-p] ^= mag
	}
}

// Encode computes the NRoots parity bytes for a DataLen-byte message
// (conventional basis), appending them to produce a CodewordLen-byte
// systematic codeword.
func Encode(data [DataLen]byte) [CodewordLen]byte {
	gen := generator()
	parity := make([]byte, NRoots)

	for _, d := range data {
		feedback := d ^ parity[0]
		copy(parity, parity[1:])
		parity[NRoots-1] = 0
		if feedback != 0 {
			for j := 0; j < NRoots; j++ {
				parity[j] ^= gfMul(feedback, gen[NRoots-1-j])
			}
		}
	}

	var out [CodewordLen]byte
	copy(out[:DataLen], data[:])
	copy(out[DataLen:], parity)
	return out
}

// generator returns the coefficients (low-degree first, monic leading
// term implicit at index NRoots) of the code's generator polynomial.
func generator() []byte {
	g := make([]byte, NRoots+1)
	g[0] = 1
	for i := 0; i < NRoots; i++ {
		root := expTable[(fcr+i)%fieldSize]
		ng := make([]byte, NRoots+1)
		for j := i + 1; j >= 0; j-- {
			var a, b byte
			if j <= i {
				a = gfMul(g[j], root)
			}
			if j >= 1 {
				b = g[j-1]
			}
			ng[j] = a ^ b
		}
		g = ng
	}
	return g
}
