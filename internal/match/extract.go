package match

import (
	"cmp"
	"fmt"
	"slices"
)

// Match claims Combined[StartA:StartA+Length] equals Combined[StartB:StartB+Length],
// with StartA in track A and StartB in track B (combined coordinates).
type Match struct {
	StartA int
	StartB int
	Length int
}

// EndA returns the exclusive end of the match in track A.
func (m Match) EndA() int { return m.StartA + m.Length }

// EndB returns the exclusive end of the match in track B.
func (m Match) EndB() int { return m.StartB + m.Length }

// Drift returns the offset between the two copies.
func (m Match) Drift() int { return m.StartB - m.StartA }

// Overlaps reports whether m and o share any item in either track.
func (m Match) Overlaps(o Match) bool {
	return intersects(m.StartA, m.EndA(), o.StartA, o.EndA()) ||
		intersects(m.StartB, m.EndB(), o.StartB, o.EndB())
}

func (m Match) String() string {
	return fmt.Sprintf("A[%d,%d) B[%d,%d)", m.StartA, m.EndA(), m.StartB, m.EndB())
}

func intersects(s1, e1, s2, e2 int) bool {
	return s1 < e2 && s2 < e1
}

// Extract scans adjacent suffix array entries for cross-track common prefixes
// longer than minLength items. A candidate overlapping accepted matches
// replaces them only when it is longer than all of them; otherwise it is
// discarded. The result has no overlaps in either track and is sorted by
// length, shortest first.
func Extract(alpha Alphabet, sa, lcp []int32, minLength int) []Match {
	var accepted []Match

	for i := 1; i < len(sa); i++ {
		length := int(lcp[i])
		if length <= minLength {
			continue
		}

		p, q := int(sa[i]), int(sa[i-1])
		if p > q {
			p, q = q, p
		}
		if !alpha.InA(p) || !alpha.InB(q) {
			continue
		}
		candidate := Match{StartA: p, StartB: q, Length: length}

		longest := true
		for _, m := range accepted {
			if m.Overlaps(candidate) && m.Length >= length {
				longest = false
				break
			}
		}
		if !longest {
			continue
		}
		accepted = slices.DeleteFunc(accepted, candidate.Overlaps)
		accepted = append(accepted, candidate)
	}

	slices.SortStableFunc(accepted, func(a, b Match) int {
		return cmp.Or(cmp.Compare(a.Length, b.Length), cmp.Compare(a.StartA, b.StartA))
	})
	return accepted
}
