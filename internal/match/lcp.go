package match

// RankArray returns the inverse permutation of sa: rank[sa[i]] == i.
func RankArray(sa []int32) []int32 {
	rank := make([]int32, len(sa))
	for i, p := range sa {
		rank[p] = int32(i)
	}
	return rank
}

// LCPArray returns lcp where lcp[i] is the length of the longest common
// prefix of the suffixes at sa[i-1] and sa[i]; lcp[0] is 0.
// It runs in linear time (Kasai et al.).
func LCPArray(text, sa, rank []int32) []int32 {
	n := len(text)
	lcp := make([]int32, n)
	h := 0
	for i := 0; i < n; i++ {
		r := rank[i]
		if r == 0 {
			h = 0
			continue
		}
		j := int(sa[r-1])
		for i+h < n && j+h < n && text[i+h] == text[j+h] {
			h++
		}
		lcp[r] = int32(h)
		if h > 0 {
			h--
		}
	}
	return lcp
}
