package match

import "math/bits"

// Similarity scores two fingerprint symbols in [0, 1]: the fraction of their
// sixteen 2-bit fields that are equal.
func Similarity(a, b uint32) float64 {
	x := a ^ b
	// Fold each 2-bit field onto its low bit; a set bit marks a differing field.
	diff := (x | x>>1) & 0x55555555
	return float64(16-bits.OnesCount32(diff)) / 16
}

// gapSimilarity returns the mean similarity of the gap items that precede
// (a, b) in both tracks, walking back from a-1/b-1. ok is false when the
// walk leaves either track.
func gapSimilarity(alpha Alphabet, a, b, gap int) (score float64, ok bool) {
	if gap <= 0 {
		return 1, true
	}
	if !alpha.InA(a-gap) || !alpha.InB(b-gap) {
		return 0, false
	}
	var sum float64
	for j := 1; j <= gap; j++ {
		sum += Similarity(alpha.Value(a-j), alpha.Value(b-j))
	}
	return sum / float64(gap), true
}
