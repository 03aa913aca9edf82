package trace

import (
	"math/rand"

	"github.com/mkuehnel/superblock/internal/ssa"
)

// profilePolicy implements GrowthPolicy for the profile-directed
// variant (§4.D): growth follows an edge only if its probability (or,
// backward, the predecessor's rederived fraction) exceeds a threshold.
type profilePolicy struct {
	view                  ssa.View
	visited               map[ssa.ID]bool
	probabilityThreshold  float64
	predecessorThreshold  float64
}

func newProfilePolicy(view ssa.View, visited map[ssa.ID]bool, probThreshold, predThreshold float64) *profilePolicy {
	return &profilePolicy{view: view, visited: visited, probabilityThreshold: probThreshold, predecessorThreshold: predThreshold}
}

func (p *profilePolicy) MarkVisited(b *ssa.Block) { p.visited[b.ID] = true }

// BestSuccessor returns the unvisited, non-back-edge successor whose
// edge probability exceeds probabilityThreshold, preferring the
// highest-probability qualifying edge if more than one qualifies.
func (p *profilePolicy) BestSuccessor(cur *ssa.Block) (*ssa.Block, bool) {
	succs := p.view.Successors(cur)
	var best *ssa.Block
	bestProb := -1.0
	for i, s := range succs {
		if p.visited[s.ID] || isBackEdge(p.view, cur, s) {
			continue
		}
		prob := p.view.EdgeProb(cur, i)
		if prob > p.probabilityThreshold && prob > bestProb {
			best, bestProb = s, prob
		}
	}
	return best, best != nil
}

// BestPredecessor returns the unvisited, non-back-edge predecessor
// whose count(pred)*prob(pred->cur)/count(cur) fraction exceeds
// predecessorThreshold.
func (p *profilePolicy) BestPredecessor(cur *ssa.Block) (*ssa.Block, bool) {
	preds := p.view.Predecessors(cur)
	curCount := p.view.BlockCount(cur)
	var best *ssa.Block
	bestFrac := -1.0
	for _, pr := range preds {
		if p.visited[pr.ID] || isBackEdge(p.view, pr, cur) {
			continue
		}
		idx := succIndexOf(p.view, pr, cur)
		if idx < 0 {
			continue
		}
		frac := 0.0
		if curCount > 0 {
			frac = float64(p.view.BlockCount(pr)) * p.view.EdgeProb(pr, idx) / float64(curCount)
		}
		if frac > p.predecessorThreshold && frac > bestFrac {
			best, bestFrac = pr, frac
		}
	}
	return best, best != nil
}

// succIndexOf returns the index of the edge from->to in from's
// successor list, or -1 if none.
func succIndexOf(view ssa.View, from, to *ssa.Block) int {
	for i, s := range view.Successors(from) {
		if s == to {
			return i
		}
	}
	return -1
}

// randomPolicy implements GrowthPolicy for the random variant (§4.D):
// at each step it picks one neighbor uniformly at random and only
// proceeds if that single candidate is legal, never retrying with a
// different neighbor.
type randomPolicy struct {
	view    ssa.View
	visited map[ssa.ID]bool
	rng     *rand.Rand
}

func newRandomPolicy(view ssa.View, visited map[ssa.ID]bool, seed uint64) *randomPolicy {
	return &randomPolicy{view: view, visited: visited, rng: rand.New(rand.NewSource(int64(seed)))}
}

func (p *randomPolicy) MarkVisited(b *ssa.Block) { p.visited[b.ID] = true }

func (p *randomPolicy) BestSuccessor(cur *ssa.Block) (*ssa.Block, bool) {
	succs := p.view.Successors(cur)
	if len(succs) == 0 {
		return nil, false
	}
	choice := succs[p.rng.Intn(len(succs))]
	if p.visited[choice.ID] || isBackEdge(p.view, cur, choice) {
		return nil, false
	}
	return choice, true
}

func (p *randomPolicy) BestPredecessor(cur *ssa.Block) (*ssa.Block, bool) {
	preds := p.view.Predecessors(cur)
	if len(preds) == 0 {
		return nil, false
	}
	choice := preds[p.rng.Intn(len(preds))]
	if p.visited[choice.ID] || isBackEdge(p.view, choice, cur) {
		return nil, false
	}
	return choice, true
}
