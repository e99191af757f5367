package match

import "fmt"

// BuildSuffixArray returns the suffix array of alpha.Combined: a permutation
// of [0, len) listing suffix start positions in ascending lexicographic order,
// with the sentinel ordering below every symbol.
//
// Construction is linear time (SA-IS). The combined array is copied with the
// separator raised to the spare rank and a unique terminator appended, which
// preserves the ordering of every suffix.
func BuildSuffixArray(alpha Alphabet) []int32 {
	n := len(alpha.Combined)
	text := make([]int32, n+1)
	copy(text, alpha.Combined)
	text[alpha.LenA] = rankSpare
	text[n] = rankSentinel

	sa := make([]int32, n+1)
	SuffixArray(text, sa, alpha.RankCount())
	if sa[0] != int32(n) {
		panic(fmt.Sprintf("match: terminator sorted at %d", sa[0]))
	}
	return sa[1:]
}

// SuffixArray fills sa with the suffix array of text. The last symbol of text
// must be 0 and occur nowhere else; every symbol must be below k.
// len(sa) must equal len(text).
func SuffixArray(text, sa []int32, k int) {
	n := len(text)
	if len(sa) != n {
		panic(fmt.Sprintf("match: suffix array length %d, text length %d", len(sa), n))
	}
	if n == 0 {
		return
	}
	if n == 1 {
		sa[0] = 0
		return
	}

	// stype[i] is true when suffix i is S-type (smaller than suffix i+1).
	stype := make([]bool, n)
	stype[n-1] = true
	for i := n - 2; i >= 0; i-- {
		stype[i] = text[i] < text[i+1] || (text[i] == text[i+1] && stype[i+1])
	}
	isLMS := func(i int) bool {
		return i > 0 && stype[i] && !stype[i-1]
	}

	sizes := bucketSizes(text, k)
	bkt := make([]int32, k)

	// Sort LMS substrings by inducing from their unsorted positions.
	for i := range sa {
		sa[i] = -1
	}
	bucketTails(sizes, bkt)
	for i := n - 1; i >= 1; i-- {
		if isLMS(i) {
			c := text[i]
			bkt[c]--
			sa[bkt[c]] = int32(i)
		}
	}
	induce(text, sa, stype, sizes, bkt)

	// Compact the sorted LMS positions into the front of sa.
	numLMS := 0
	for i := 0; i < n; i++ {
		if isLMS(int(sa[i])) {
			sa[numLMS] = sa[i]
			numLMS++
		}
	}

	// Name each LMS substring; equal substrings share a name.
	for i := numLMS; i < n; i++ {
		sa[i] = -1
	}
	names := 0
	prev := -1
	for i := 0; i < numLMS; i++ {
		pos := int(sa[i])
		if prev < 0 || !lmsSubstringsEqual(text, stype, isLMS, pos, prev) {
			names++
			prev = pos
		}
		sa[numLMS+pos/2] = int32(names - 1)
	}
	j := n - 1
	for i := n - 1; i >= numLMS; i-- {
		if sa[i] >= 0 {
			sa[j] = sa[i]
			j--
		}
	}

	// Sort the reduced string, recursing when names are not yet unique.
	reduced := sa[n-numLMS:]
	reducedSA := sa[:numLMS]
	if names < numLMS {
		SuffixArray(reduced, reducedSA, names)
	} else {
		for i := 0; i < numLMS; i++ {
			reducedSA[reduced[i]] = int32(i)
		}
	}

	// Map reduced ranks back to LMS positions and induce the final order.
	j = 0
	for i := 1; i < n; i++ {
		if isLMS(i) {
			reduced[j] = int32(i)
			j++
		}
	}
	for i := 0; i < numLMS; i++ {
		reducedSA[i] = reduced[reducedSA[i]]
	}
	for i := numLMS; i < n; i++ {
		sa[i] = -1
	}
	bucketTails(sizes, bkt)
	for i := numLMS - 1; i >= 0; i-- {
		p := sa[i]
		sa[i] = -1
		c := text[p]
		bkt[c]--
		sa[bkt[c]] = p
	}
	induce(text, sa, stype, sizes, bkt)
}

// induce places L-type suffixes scanning forward, then S-type suffixes
// scanning backward, from the seeded positions already in sa.
func induce(text, sa []int32, stype []bool, sizes, bkt []int32) {
	n := len(text)

	bucketHeads(sizes, bkt)
	for i := 0; i < n; i++ {
		j := int(sa[i]) - 1
		if j >= 0 && !stype[j] {
			c := text[j]
			sa[bkt[c]] = int32(j)
			bkt[c]++
		}
	}

	bucketTails(sizes, bkt)
	for i := n - 1; i >= 0; i-- {
		j := int(sa[i]) - 1
		if j >= 0 && stype[j] {
			c := text[j]
			bkt[c]--
			sa[bkt[c]] = int32(j)
		}
	}
}

// lmsSubstringsEqual compares the LMS substrings starting at i and j,
// symbol by symbol and type by type, up to and including their next LMS position.
func lmsSubstringsEqual(text []int32, stype []bool, isLMS func(int) bool, i, j int) bool {
	n := len(text)
	for d := 0; ; d++ {
		if i+d >= n || j+d >= n {
			return false
		}
		if text[i+d] != text[j+d] || stype[i+d] != stype[j+d] {
			return false
		}
		if d > 0 {
			endI, endJ := isLMS(i+d), isLMS(j+d)
			if endI || endJ {
				return endI && endJ
			}
		}
	}
}

func bucketSizes(text []int32, k int) []int32 {
	sizes := make([]int32, k)
	for _, c := range text {
		sizes[c]++
	}
	return sizes
}

func bucketHeads(sizes, bkt []int32) {
	var sum int32
	for c, s := range sizes {
		bkt[c] = sum
		sum += s
	}
}

func bucketTails(sizes, bkt []int32) {
	var sum int32
	for c, s := range sizes {
		sum += s
		bkt[c] = sum
	}
}
