package match

import (
	"cmp"
	"slices"

	"github.com/alnah/go-reprise/internal/fingerprint"
)

// Default tuning.
const (
	// DefaultMinSimilarity is the mean gap similarity required to bridge two matches.
	DefaultMinSimilarity = 0.7
	// DefaultMergeFactor sizes the bridging window in multiples of the decode delay.
	DefaultMergeFactor = 4

	// minMatchFloor keeps the extraction threshold meaningful when
	// one second is only a handful of items.
	minMatchFloor = 3
	// driftSeconds is the tolerated difference in offset between bridged matches.
	driftSeconds = 0.25
	// minDriftTolerance is the drift tolerance floor, in items.
	minDriftTolerance = 2
)

// Params holds the item-denominated thresholds of one comparison.
type Params struct {
	// MinMatchItems is the exclusive lower bound on extracted match length.
	MinMatchItems int
	// MergeWindow bounds the gap, and the start distance scanned, when bridging.
	MergeWindow int
	// DriftTolerance bounds the change in offset between bridged matches.
	DriftTolerance int
	// DelayItems is the fingerprint decode delay in items.
	DelayItems int
	// MinSimilarity is the mean gap similarity required to bridge.
	MinSimilarity float64
}

// DefaultParams derives thresholds from the fingerprint timing:
// roughly one second for extraction, four decode delays for bridging and a
// quarter second of drift.
func DefaultParams(meta fingerprint.Meta) Params {
	delay := meta.DelayItems()
	return Params{
		MinMatchItems:  max(meta.ItemsPerSecond(), minMatchFloor),
		MergeWindow:    DefaultMergeFactor * delay,
		DriftTolerance: max(minDriftTolerance, meta.Items(driftSeconds)),
		DelayItems:     delay,
		MinSimilarity:  DefaultMinSimilarity,
	}
}

// MergeResult is the outcome of Merge.
type MergeResult struct {
	Matches []Match
	Bridged int
	Dropped int
}

// Merge sorts matches by their position in track A, bridges fragments of the
// same repeat, drops matches no longer than the decode delay and extends the
// survivors by the decode delay. The input slice is not modified.
func Merge(alpha Alphabet, matches []Match, p Params) MergeResult {
	bridged, n := Bridge(alpha, matches, p)
	kept := Filter(bridged, p.DelayItems)
	return MergeResult{
		Matches: Extend(alpha, kept, p.DelayItems),
		Bridged: n,
		Dropped: len(bridged) - len(kept),
	}
}

// Bridge joins pairs of matches whose gap is within p.MergeWindow, whose
// offsets agree within p.DriftTolerance and whose gap region is similar
// enough. Matches lying between a joined pair are absorbed. Passes repeat
// until none merges, so bridging its own output is a no-op.
// It returns the matches sorted by StartA and the number of merges.
func Bridge(alpha Alphabet, matches []Match, p Params) ([]Match, int) {
	ms := slices.Clone(matches)
	sortByA(ms)

	total := 0
	for {
		var merged int
		ms, merged = bridgePass(alpha, ms, p)
		total += merged
		if merged == 0 {
			return ms, total
		}
	}
}

// bridgePass scans from the last match backward, trying each earlier
// match until one bridges or the start distance leaves the window.
// A joined match immediately becomes the next bridging target.
func bridgePass(alpha Alphabet, ms []Match, p Params) ([]Match, int) {
	merged := 0
	for i := len(ms) - 1; i > 0; i-- {
		next := ms[i]
		for k := i - 1; k >= 0; k-- {
			cur := ms[k]
			if canBridge(alpha, cur, next, p) {
				ms[k] = Match{
					StartA: cur.StartA,
					StartB: cur.StartB,
					Length: min(next.EndA()-cur.StartA, next.EndB()-cur.StartB),
				}
				ms = slices.Delete(ms, k+1, i+1)
				merged++
				i = k + 1
				break
			}
			if next.StartA-cur.StartA >= p.MergeWindow {
				break
			}
		}
	}
	return ms, merged
}

func canBridge(alpha Alphabet, cur, next Match, p Params) bool {
	gap := next.StartA - cur.EndA()
	if gap > p.MergeWindow {
		return false
	}
	if abs(next.Drift()-cur.Drift()) > p.DriftTolerance {
		return false
	}
	if next.EndA() <= cur.StartA || next.EndB() <= cur.StartB {
		return false
	}
	if gap > 0 {
		score, ok := gapSimilarity(alpha, next.StartA, next.StartB, gap)
		if !ok || score < p.MinSimilarity {
			return false
		}
	}
	return true
}

// Filter drops matches whose length does not exceed delayItems.
func Filter(matches []Match, delayItems int) []Match {
	return slices.DeleteFunc(slices.Clone(matches), func(m Match) bool {
		return m.Length <= delayItems
	})
}

// Extend grows every match by up to delayItems, stopping at the end of its
// track and at the start of any later match in either track.
func Extend(alpha Alphabet, matches []Match, delayItems int) []Match {
	out := slices.Clone(matches)
	if delayItems <= 0 {
		return out
	}
	for i, m := range matches {
		limitA, limitB := alpha.LenA, alpha.Len()
		for j, o := range matches {
			if j == i {
				continue
			}
			if o.StartA >= m.EndA() {
				limitA = min(limitA, o.StartA)
			}
			if o.StartB >= m.EndB() {
				limitB = min(limitB, o.StartB)
			}
		}
		grow := min(delayItems, limitA-m.EndA(), limitB-m.EndB())
		if grow > 0 {
			out[i].Length += grow
		}
	}
	return out
}

func sortByA(ms []Match) {
	slices.SortStableFunc(ms, func(a, b Match) int {
		return cmp.Or(cmp.Compare(a.StartA, b.StartA), cmp.Compare(a.StartB, b.StartB))
	})
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
