package trace

import (
	"math/rand"

	"github.com/mkuehnel/superblock/internal/hazard"
	"github.com/mkuehnel/superblock/internal/predict"
	"github.com/mkuehnel/superblock/internal/ssa"
)

// heuristicPolicy implements GrowthPolicy for the static-heuristic
// variant (§4.D): it follows the static predictor's prediction for
// cur's terminator, falling back to an unbiased coin flip when neither
// heuristic covered the branch, and grows forward only.
type heuristicPolicy struct {
	view        ssa.View
	info        *hazard.Info
	predictions *predict.Result
	visited     map[ssa.ID]bool
	rng         *rand.Rand
}

func newHeuristicPolicy(view ssa.View, info *hazard.Info, predictions *predict.Result, visited map[ssa.ID]bool, seed uint64) *heuristicPolicy {
	return &heuristicPolicy{view: view, info: info, predictions: predictions, visited: visited, rng: rand.New(rand.NewSource(int64(seed)))}
}

func (p *heuristicPolicy) MarkVisited(b *ssa.Block) { p.visited[b.ID] = true }

// BestSuccessor stops growth at a hazard block, a return block, an
// indirect branch, or any non-branch terminator; otherwise it follows
// an unconditional branch's sole successor, or a conditional branch's
// predicted successor (hazard prediction, else path prediction, else a
// random coin flip between the two), stopping short of an already
// visited or back-edge target.
func (p *heuristicPolicy) BestSuccessor(cur *ssa.Block) (*ssa.Block, bool) {
	if p.info.HasHazard(cur) || p.info.HasReturn(cur) || p.info.HasIndirectBranch(cur) {
		return nil, false
	}

	succs := p.view.Successors(cur)
	var target *ssa.Block
	switch cur.Term {
	case ssa.OpGoto:
		if len(succs) != 1 {
			return nil, false
		}
		target = succs[0]
	case ssa.OpCondBranch:
		if len(succs) != 2 {
			return nil, false
		}
		idx, ok := p.predictions.TakenIndex(cur)
		if !ok {
			idx = p.rng.Intn(2)
		}
		target = succs[idx]
	default:
		return nil, false
	}

	if target == nil || p.visited[target.ID] || isBackEdge(p.view, cur, target) {
		return nil, false
	}
	return target, true
}

// BestPredecessor never returns a predecessor: the heuristic variant
// grows forward only (§4.D).
func (p *heuristicPolicy) BestPredecessor(cur *ssa.Block) (*ssa.Block, bool) {
	return nil, false
}
