package predict

import "github.com/mkuehnel/superblock/internal/ssa"

// Stats accumulates hazard/path heuristic coverage and agreement against
// the profile-derived ground truth, scoped to a single run. The original
// pass kept these as package-level globals (glb_hazard_count and
// friends) that accumulated across every function in a module; a single
// Stats value per run gives the same numbers without the cross-run
// leakage that would cause.
type Stats struct {
	ConditionalCount int
	HazardCount      int
	HazardAgree      int
	PathCount        int
	PathAgree        int
}

// Accuracy returns the fraction of covered branches (hazard + path)
// whose prediction matched the profile-derived ground truth.
func (s *Stats) Accuracy() float64 {
	covered := s.HazardCount + s.PathCount
	if covered == 0 {
		return 0
	}
	return float64(s.HazardAgree+s.PathAgree) / float64(covered)
}

// Coverage returns the fraction of conditional branches that got a
// prediction from either heuristic.
func (s *Stats) Coverage() float64 {
	if s.ConditionalCount == 0 {
		return 0
	}
	return float64(s.HazardCount+s.PathCount) / float64(s.ConditionalCount)
}

// Record folds one function's predictions into s, comparing each
// covered branch's prediction against the profile's preferred
// direction (the successor index whose edge probability exceeds 1/2).
func (s *Stats) Record(view ssa.View, condBranches []*ssa.Block, r *Result) {
	s.ConditionalCount += len(condBranches)
	for _, b := range condBranches {
		profileIdx, hasProfile := profilePreferred(view, b)

		if idx, ok := r.Hazard[b.ID]; ok {
			s.HazardCount++
			if hasProfile && idx == profileIdx {
				s.HazardAgree++
			}
			continue
		}
		if idx, ok := r.Path[b.ID]; ok {
			s.PathCount++
			if hasProfile && idx == profileIdx {
				s.PathAgree++
			}
		}
	}
}

// profilePreferred returns the successor index whose edge probability
// exceeds one half, and whether such an index exists.
func profilePreferred(view ssa.View, b *ssa.Block) (int, bool) {
	for i := range view.Successors(b) {
		if view.EdgeProb(b, i) > 0.5 {
			return i, true
		}
	}
	return 0, false
}
