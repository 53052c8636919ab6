/*
NAME
  gf.go - GF(256) arithmetic for the CCSDS interleaved Reed-Solomon code.

DESCRIPTION
  Builds the log/antilog tables for GF(2^8) under the CCSDS convention
  primitive polynomial x^8+x^7+x^2+x+1 (0x187), then re-bases them onto
  the code's actual root-spacing generator (alpha^11, which is itself
  primitive since gcd(11,255)=1). This collapses the CCSDS code's
  non-unity root gap into an ordinary, single-generator "prim=1" code
  expressed in terms of that re-based generator, which is the same
  (255,223) code (same 32 roots, same generator polynomial) but lets the
  decoder use the textbook consecutive-root Berlekamp-Massey/Forney
  procedure without a separate root-gap correction term.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package rs

// Field size parameters.
const (
	fieldSize    = 255 // 2^8 - 1
	ccsdsPrimPoly = 0x187
	rootGap       = 11  // CCSDS root spacing.
	rootGapInv    = 116 // 11^-1 mod 255.
	firstRoot     = 112 // CCSDS first consecutive root, as an exponent of alpha^11.

	// NRoots is the number of parity symbols per 255-symbol codeword
	// (E=16 correctable byte errors per codeword).
	NRoots = 32
	// DataLen is the number of message symbols per 255-symbol codeword.
	DataLen = fieldSize - NRoots // 223

	logSentinel = fieldSize // marks log(0); never a valid exponent.
)

// fcr is the first consecutive root as an exponent of the re-based
// alpha^11 generator. The CCSDS roots are alpha^(11*j) for
// j = 112..143, which are generator^112 .. generator^143.
const fcr = firstRoot

var expTable [fieldSize]byte // expTable[e] = generator^e
var logTable [256]byte       // logTable[v] = e such that generator^e == v

func init() {
	var alphaExp [fieldSize]byte
	var alphaLog [256]byte

	sr := 1
	for i := 0; i < fieldSize; i++ {
		alphaExp[i] = byte(sr)
		alphaLog[sr] = byte(i)
		sr <<= 1
		if sr&0x100 != 0 {
			sr ^= ccsdsPrimPoly
		}
	}

	for e := 0; e < fieldSize; e++ {
		v := alphaExp[(rootGap*e)%fieldSize]
		expTable[e] = v
		logTable[v] = byte(e)
	}
}

func gfMul(a, b byte) byte {
	if a == 0 || b == 0 {
		return 0
	}
	return expTable[(int(logTable[a])+int(logTable[b]))%fieldSize]
}

func gfInv(a byte) byte {
	if a == 0 {
		panic("rs: inverse of zero")
	}
	return expTable[(fieldSize-int(logTable[a]))%fieldSize]
}

func gfDiv(a, b byte) byte {
	return gfMul(a, gfInv(b))
}

// gfPowMul raises the generator to exponent e and multiplies by a, i.e.
// returns a * generator^e for possibly negative e.
func gfPowMul(a byte, e int) byte {
	if a == 0 {
		return 0
	}
	ei := ((int(logTable[a]) + e) % fieldSize)
	ei = ((ei % fieldSize) + fieldSize) % fieldSize
	return expTable[ei]
}
