package match

import (
	"fmt"
	"math"
	"slices"
)

// Reserved ranks. Real symbols are ranked from firstRank upwards.
const (
	// rankSentinel separates the two tracks in the combined array.
	rankSentinel = 0
	// rankSpare is never assigned to a symbol.
	rankSpare = 1
	firstRank = 2
)

// Alphabet is the rank-compressed concatenation of two fingerprint sequences:
// the ranks of A, one sentinel, then the ranks of B.
type Alphabet struct {
	// Combined holds len(A) + 1 + len(B) ranks.
	Combined []int32
	// RankToValue maps a rank back to its symbol. Entries 0 and 1 are unused.
	RankToValue []uint32
	// LenA is the number of items from track A; Combined[LenA] is the sentinel.
	LenA int
	// OffsetB is the index of the first item of track B.
	OffsetB int
}

// Compress ranks every distinct symbol of a and b in ascending value order,
// starting at rank 2, and builds the combined array.
func Compress(a, b []uint32) (Alphabet, error) {
	if len(a) == 0 || len(b) == 0 {
		return Alphabet{}, fmt.Errorf("%w: len(a)=%d len(b)=%d", ErrEmptySequence, len(a), len(b))
	}
	n := len(a) + len(b) + 1
	if n > math.MaxInt32-1 {
		return Alphabet{}, fmt.Errorf("%w: %d items", ErrTooLong, n)
	}

	values := make([]uint32, 0, len(a)+len(b))
	values = append(values, a...)
	values = append(values, b...)
	slices.Sort(values)
	values = slices.Compact(values)

	rankToValue := make([]uint32, firstRank+len(values))
	copy(rankToValue[firstRank:], values)

	combined := make([]int32, n)
	for i, v := range a {
		combined[i] = rankOf(values, v)
	}
	combined[len(a)] = rankSentinel
	for i, v := range b {
		combined[len(a)+1+i] = rankOf(values, v)
	}

	return Alphabet{
		Combined:    combined,
		RankToValue: rankToValue,
		LenA:        len(a),
		OffsetB:     len(a) + 1,
	}, nil
}

// rankOf returns the rank of v within the sorted distinct values.
func rankOf(values []uint32, v uint32) int32 {
	i, ok := slices.BinarySearch(values, v)
	if !ok {
		panic(fmt.Sprintf("match: symbol %d missing from alphabet", v))
	}
	return int32(i + firstRank)
}

// Len returns the length of the combined array.
func (a Alphabet) Len() int {
	return len(a.Combined)
}

// LenB returns the number of items from track B.
func (a Alphabet) LenB() int {
	return len(a.Combined) - a.OffsetB
}

// RankCount returns one more than the highest rank in use.
func (a Alphabet) RankCount() int {
	return len(a.RankToValue)
}

// Value returns the original symbol at combined index i.
// It panics when i is the sentinel.
func (a Alphabet) Value(i int) uint32 {
	r := a.Combined[i]
	if r < firstRank {
		panic(fmt.Sprintf("match: index %d holds reserved rank %d", i, r))
	}
	return a.RankToValue[r]
}

// InA reports whether combined index i belongs to track A.
func (a Alphabet) InA(i int) bool {
	return i >= 0 && i < a.LenA
}

// InB reports whether combined index i belongs to track B.
func (a Alphabet) InB(i int) bool {
	return i >= a.OffsetB && i < len(a.Combined)
}
