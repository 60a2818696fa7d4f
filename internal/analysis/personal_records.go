package analysis

import (
	"sort"
	"time"
)

// SessionData is the raw material for personal-best detection
type SessionData struct {
	SessionID string
	Sport     Sport
	Date      time.Time
	Records   []SessionRecord
}

// ImprovedPB is a personal best that has already beaten the record it replaces.
// It can only be produced by DetectNewPBs, so MergePBs never sees an unchecked value.
type ImprovedPB struct {
	pb       PersonalBest
	previous *PersonalBest
}

// PB returns the new record
func (i ImprovedPB) PB() PersonalBest { return i.pb }

// Previous returns the record that was beaten, or nil for a first-ever record
func (i ImprovedPB) Previous() *PersonalBest { return i.previous }

// IsBetter reports whether candidate beats current. Fastest-distance is a time
// so lower wins; every other category is higher-is-better. Ties do not count.
func IsBetter(category PBCategory, candidate, current float64) bool {
	if category == CategoryFastestDistance {
		return candidate < current
	}
	return candidate > current
}

// SessionPeaks computes every personal-best candidate a session can claim
func SessionPeaks(s SessionData) []PersonalBest {
	var peaks []PersonalBest
	add := func(category PBCategory, window, value float64) {
		peaks = append(peaks, PersonalBest{
			Sport:     s.Sport,
			Category:  category,
			Window:    window,
			Value:     value,
			SessionID: s.SessionID,
			Date:      s.Date,
		})
	}

	for _, w := range PeakPowerWindows() {
		if v, ok := PeakPower(s.Records, w); ok {
			add(CategoryPeakPower, w, v)
		}
	}
	for _, d := range EffortDistances(s.Sport) {
		if v, ok := FastestDistance(s.Records, d); ok {
			add(CategoryFastestDistance, d, v)
		}
	}
	if v, ok := TotalDistance(s.Records); ok {
		add(CategoryLongest, 0, v)
	}
	if s.Sport == SportCycling {
		if v, ok := ElevationGain(s.Records); ok {
			add(CategoryMostElevation, 0, v)
		}
	}
	return peaks
}

func indexByKey(pbs []PersonalBest) map[PBKey]int {
	idx := make(map[PBKey]int, len(pbs))
	for i, pb := range pbs {
		idx[pb.Key()] = i
	}
	return idx
}

// DetectNewPBs returns the session's peaks that strictly beat the existing
// record with the same key. A key with no existing record is always new.
func DetectNewPBs(s SessionData, existing []PersonalBest) []ImprovedPB {
	idx := indexByKey(existing)

	var improved []ImprovedPB
	for _, peak := range SessionPeaks(s) {
		i, ok := idx[peak.Key()]
		if !ok {
			improved = append(improved, ImprovedPB{pb: peak})
			continue
		}
		if IsBetter(peak.Category, peak.Value, existing[i].Value) {
			prev := existing[i]
			improved = append(improved, ImprovedPB{pb: peak, previous: &prev})
		}
	}
	return improved
}

// MergePBs replaces records by key, appending keys that are new. It does not
// compare values; improvements were already verified by DetectNewPBs.
// The input slice is not modified.
func MergePBs(existing []PersonalBest, improved []ImprovedPB) []PersonalBest {
	merged := make([]PersonalBest, len(existing), len(existing)+len(improved))
	copy(merged, existing)
	idx := indexByKey(merged)

	for _, imp := range improved {
		if i, ok := idx[imp.pb.Key()]; ok {
			merged[i] = imp.pb
			continue
		}
		idx[imp.pb.Key()] = len(merged)
		merged = append(merged, imp.pb)
	}
	return merged
}

// UpsertIfBetter folds raw candidates into existing records, keeping a
// candidate only if it beats the record currently held for its key.
func UpsertIfBetter(existing []PersonalBest, candidates []PersonalBest) []PersonalBest {
	merged := make([]PersonalBest, len(existing), len(existing)+len(candidates))
	copy(merged, existing)
	idx := indexByKey(merged)

	for _, c := range candidates {
		i, ok := idx[c.Key()]
		if !ok {
			idx[c.Key()] = len(merged)
			merged = append(merged, c)
			continue
		}
		if IsBetter(c.Category, c.Value, merged[i].Value) {
			merged[i] = c
		}
	}
	return merged
}

// ComputePBsForSessions returns the best-of-set for every key across the given
// sessions, independent of any stored records. On ties the earliest session
// in input order keeps the record.
func ComputePBsForSessions(sessions []SessionData) []PersonalBest {
	var best []PersonalBest
	for _, s := range sessions {
		best = UpsertIfBetter(best, SessionPeaks(s))
	}
	SortPBs(best)
	return best
}

// SortPBs orders records by sport, category and window
func SortPBs(pbs []PersonalBest) {
	sort.Slice(pbs, func(i, j int) bool {
		a, b := pbs[i], pbs[j]
		if a.Sport != b.Sport {
			return a.Sport < b.Sport
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.Window < b.Window
	})
}
