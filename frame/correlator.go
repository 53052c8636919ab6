/*
NAME
  correlator.go - sync-word correlation and lock state machine.

DESCRIPTION
  Correlator holds the four Viterbi-encoded sync-word patterns the
  downlink can present (LRIT/HRIT, each in-phase or 180-degree
  inverted) and scores a candidate bit window against all four at
  once, returning the best-scoring type and its score. State models the
  acquisition state machine explicitly, per spec §9's design note.

AUTHORS
  Grounded on original_source/src/decoder/correlator.cc/.h: the four
  encoded sync-word constants are taken verbatim from there rather than
  re-derived through a from-scratch Viterbi encoder, to avoid any risk
  of a bit/byte-order mismatch with the reference encoding. The
  explicit acquisition state machine follows spec §9's instruction not
  to bury it in nested loops.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package frame

import "math/bits"

// SyncWordBits is the bit width of the (unencoded) sync word.
const SyncWordBits = 32

// EncodedSyncWordBits is the bit width of the Viterbi-encoded sync
// word (rate 1/2 doubles it).
const EncodedSyncWordBits = 64

// Type identifies which of the four known sync patterns a correlation
// matched.
type Type int

const (
	LRITPhase000 Type = iota
	LRITPhase180
	HRITPhase000
	HRITPhase180
)

func (t Type) String() string {
	switch t {
	case LRITPhase000:
		return "LRIT-0"
	case LRITPhase180:
		return "LRIT-180"
	case HRITPhase000:
		return "HRIT-0"
	case HRITPhase180:
		return "HRIT-180"
	default:
		return "unknown"
	}
}

// IsLRIT reports whether t is one of the two LRIT phase variants.
func (t Type) IsLRIT() bool { return t == LRITPhase000 || t == LRITPhase180 }

// encodedSyncWords holds the four known 64-bit Viterbi-encoded sync
// patterns, packed MSB-first.
var encodedSyncWords = [4]uint64{
	LRITPhase000: 0x035d49c24ff2686b,
	LRITPhase180: 0xfca2b63db00d9794,
	HRITPhase000: 0x03b10b02f33d2076,
	HRITPhase180: 0xdafef4fd0cc2df89,
}

// packBitsMSB packs up to 64 hard bits (0/1, one per byte in hard) into
// a uint64, MSB-first.
func packBitsMSB(hard []uint8) uint64 {
	var v uint64
	for _, b := range hard {
		v = (v << 1) | uint64(b&1)
	}
	return v
}

// hardBitsFromSoft converts a soft-bit block into hard 0/1 decisions
// (0 soft, meaning non-negative, decides bit 0; negative decides 1),
// matching the quantizer's sign convention.
func hardBitsFromSoft(soft []int8) []uint8 {
	out := make([]uint8, len(soft))
	for i, s := range soft {
		if s < 0 {
			out[i] = 1
		}
	}
	return out
}

// correlateAt scores a 64-bit encoded hard-bit window against all four
// known patterns, returning the best-matching type and its score
// (64 - popcount(xor), so a perfect match scores 64).
func correlateAt(window uint64) (best Type, score int) {
	best, score = LRITPhase000, -1
	for t, pat := range encodedSyncWords {
		s := EncodedSyncWordBits - bits.OnesCount64(window^pat)
		if s > score {
			best, score = Type(t), s
		}
	}
	return best, score
}

// Correlate scores every 64-bit-aligned hard-bit window starting at
// each bit offset 0..len(soft)-64 against the four known sync
// patterns, returning the offset, type and score of the best match.
// It is used during Unlocked acquisition, where the whole
// prelude+frame+sync window must be searched.
func Correlate(soft []int8) (offset int, t Type, score int) {
	hard := hardBitsFromSoft(soft)
	best, bestScore, bestType := -1, -1, LRITPhase000
	for i := 0; i+EncodedSyncWordBits <= len(hard); i++ {
		w := packBitsMSB(hard[i : i+EncodedSyncWordBits])
		ty, s := correlateAt(w)
		if s > bestScore {
			best, bestScore, bestType = i, s, ty
		}
	}
	return best, bestType, bestScore
}

// CorrelateAt scores exactly the 64-bit hard-bit window at offset off
// against the four known sync patterns. It is used during Locked
// acquisition, where only the expected sync position is checked.
func CorrelateAt(soft []int8, off int) (t Type, score int) {
	hard := hardBitsFromSoft(soft[off : off+EncodedSyncWordBits])
	return correlateAt(packBitsMSB(hard))
}

// LockState is the packetizer's explicit acquisition state, per spec
// §9's instruction to model it rather than bury it in nested loops.
type LockState int

const (
	Unlocked LockState = iota
	LockedLRIT000
	LockedLRIT180
	LockedHRIT000
	LockedHRIT180
)

// lockStateFor maps a correlation Type onto its corresponding Locked
// state.
func lockStateFor(t Type) LockState {
	switch t {
	case LRITPhase000:
		return LockedLRIT000
	case LRITPhase180:
		return LockedLRIT180
	case HRITPhase000:
		return LockedHRIT000
	case HRITPhase180:
		return LockedHRIT180
	default:
		return Unlocked
	}
}

func (s LockState) String() string {
	switch s {
	case Unlocked:
		return "Unlocked"
	case LockedLRIT000:
		return "Locked-LRIT-000"
	case LockedLRIT180:
		return "Locked-LRIT-180"
	case LockedHRIT000:
		return "Locked-HRIT-000"
	case LockedHRIT180:
		return "Locked-HRIT-180"
	default:
		return "invalid"
	}
}
