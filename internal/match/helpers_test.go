package match

import (
	"math/rand/v2"
	"testing"
)

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

// randomSymbols returns n symbols drawn from a small alphabet so that
// repeats are frequent.
func randomSymbols(r *rand.Rand, n, alphabet int) []uint32 {
	out := make([]uint32, n)
	for i := range out {
		out[i] = uint32(r.IntN(alphabet))
	}
	return out
}

// plantedPair returns two sequences of random noise sharing one copy of a
// common segment at different offsets.
func plantedPair(r *rand.Rand, segment int) (a, b []uint32) {
	common := make([]uint32, segment)
	for i := range common {
		common[i] = r.Uint32()
	}
	noise := func(n int) []uint32 {
		out := make([]uint32, n)
		for i := range out {
			out[i] = r.Uint32()
		}
		return out
	}

	a = append(append(noise(r.IntN(20)+1), common...), noise(r.IntN(20)+1)...)
	b = append(append(noise(r.IntN(20)+1), common...), noise(r.IntN(20)+1)...)
	return a, b
}

// mustCompress builds an alphabet or fails the test.
func mustCompress(t *testing.T, a, b []uint32) Alphabet {
	t.Helper()
	alpha, err := Compress(a, b)
	if err != nil {
		t.Fatalf("Compress() unexpected error: %v", err)
	}
	return alpha
}

// spaced returns n distinct symbols with gaps so that single-bit
// variations never collide with another symbol.
func spaced(n int) []uint32 {
	out := make([]uint32, n)
	for i := range out {
		out[i] = uint32(1000 + 16*i)
	}
	return out
}
