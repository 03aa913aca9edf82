// Package trace implements the trace former (component D): seed
// selection and forward/backward growth under one of three
// GrowthPolicy implementations (profile, random, static-heuristic),
// producing an ordered list of traces and a block-to-trace-id map.
package trace

import (
	"sort"

	"github.com/mkuehnel/superblock/internal/config"
	"github.com/mkuehnel/superblock/internal/hazard"
	"github.com/mkuehnel/superblock/internal/predict"
	"github.com/mkuehnel/superblock/internal/ssa"
)

// Trace is a non-empty, back-edge-free sequence of blocks forming one
// straight-line path through the CFG (§3's Trace).
type Trace []*ssa.Block

// Result is the outcome of trace formation for one function: the
// traces in emission order, and a dense block -> trace-id map.
type Result struct {
	Traces []Trace
	TraceID map[ssa.ID]int
}

// GrowthPolicy is the capability the three trace-former variants
// implement: where to grow next from the current end of a trace. This
// collapses the profile/random/heuristic variants into one outer
// algorithm (Form), per the design's tagged-variant note.
type GrowthPolicy interface {
	// BestSuccessor returns the block to append to the trace after cur,
	// and whether one exists.
	BestSuccessor(cur *ssa.Block) (*ssa.Block, bool)
	// BestPredecessor returns the block to prepend to the trace before
	// cur, and whether one exists. The heuristic policy never returns
	// one: it grows forward only.
	BestPredecessor(cur *ssa.Block) (*ssa.Block, bool)
	// MarkVisited records that b now belongs to a trace.
	MarkVisited(b *ssa.Block)
}

// Form runs trace formation over view using the policy selected by
// cfg.Variant, seeded per §4.D, and returns the resulting traces.
func Form(view ssa.View, info *hazard.Info, predictions *predict.Result, cfg *config.Config, rngSeed uint64) *Result {
	visited := make(map[ssa.ID]bool)

	var policy GrowthPolicy
	var seeds []*ssa.Block
	switch cfg.Variant {
	case config.VariantProfile:
		policy = newProfilePolicy(view, visited, cfg.ProbabilityThreshold, cfg.PredecessorThreshold)
		seeds = seedsByFrequencyDesc(view)
	case config.VariantRandom:
		policy = newRandomPolicy(view, visited, rngSeed)
		seeds = seedsByFrequencyDesc(view)
	case config.VariantHeuristic:
		policy = newHeuristicPolicy(view, info, predictions, visited, rngSeed)
		seeds = seedsForHeuristic(view)
	default:
		policy = newProfilePolicy(view, visited, cfg.ProbabilityThreshold, cfg.PredecessorThreshold)
		seeds = seedsByFrequencyDesc(view)
	}

	res := &Result{TraceID: make(map[ssa.ID]int)}
	forwardOnly := cfg.Variant == config.VariantHeuristic

	for _, seed := range seeds {
		if visited[seed.ID] {
			continue
		}
		t := growFrom(seed, policy, forwardOnly)
		id := len(res.Traces)
		for _, b := range t {
			res.TraceID[b.ID] = id
		}
		res.Traces = append(res.Traces, t)
	}
	return res
}

// growFrom builds one trace seeded at seed: forward growth first, then
// backward growth from the seed. Heuristic trace formation skips
// backward growth entirely.
func growFrom(seed *ssa.Block, policy GrowthPolicy, forwardOnly bool) Trace {
	t := Trace{seed}
	policy.MarkVisited(seed)

	for {
		next, ok := policy.BestSuccessor(t[len(t)-1])
		if !ok {
			break
		}
		policy.MarkVisited(next)
		t = append(t, next)
	}

	if !forwardOnly {
		for {
			prev, ok := policy.BestPredecessor(t[0])
			if !ok {
				break
			}
			policy.MarkVisited(prev)
			t = append(Trace{prev}, t...)
		}
	}
	return t
}

// seedsByFrequencyDesc orders every block in view by descending block
// execution count, breaking ties by ascending block ID for
// determinism (§4.D: profile and random variants seed this way).
func seedsByFrequencyDesc(view ssa.View) []*ssa.Block {
	blocks := append([]*ssa.Block(nil), view.Blocks()...)
	sort.SliceStable(blocks, func(i, j int) bool {
		ci, cj := view.BlockCount(blocks[i]), view.BlockCount(blocks[j])
		if ci != cj {
			return ci > cj
		}
		return blocks[i].ID < blocks[j].ID
	})
	return blocks
}

// seedsForHeuristic orders blocks per §4.D's heuristic seeding: a BFS
// over each loop's blocks, loops visited in descending nesting depth
// (inner loops before outer ones), followed by a BFS of the whole
// function starting at the entry for anything not yet covered.
func seedsForHeuristic(view ssa.View) []*ssa.Block {
	seen := make(map[ssa.ID]bool)
	var order []*ssa.Block

	loops := append([]*ssa.Loop(nil), view.LoopsInPreorder()...)
	sort.SliceStable(loops, func(i, j int) bool {
		return view.LoopDepth(loops[i]) > view.LoopDepth(loops[j])
	})

	for _, l := range loops {
		header := view.LoopHeader(l)
		if header == nil {
			continue
		}
		for _, b := range bfsFiltered(view, header, func(b *ssa.Block) bool { return view.LoopContains(l, b) }) {
			if !seen[b.ID] {
				seen[b.ID] = true
				order = append(order, b)
			}
		}
	}

	entry := view.Entry()
	if entry != nil {
		for _, b := range bfsFiltered(view, entry, nil) {
			if !seen[b.ID] {
				seen[b.ID] = true
				order = append(order, b)
			}
		}
	}
	// Any block unreachable from the entry (disconnected) still needs a
	// seed slot so it ends up as its own singleton trace.
	for _, b := range view.Blocks() {
		if !seen[b.ID] {
			seen[b.ID] = true
			order = append(order, b)
		}
	}
	return order
}

// bfsFiltered runs a breadth-first traversal from start over view's
// successor edges, restricted to blocks accept reports true for (or
// all blocks reachable, if accept is nil).
func bfsFiltered(view ssa.View, start *ssa.Block, accept func(*ssa.Block) bool) []*ssa.Block {
	if accept != nil && !accept(start) {
		return nil
	}
	seen := map[ssa.ID]bool{start.ID: true}
	queue := []*ssa.Block{start}
	var order []*ssa.Block
	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]
		order = append(order, b)
		for _, s := range view.Successors(b) {
			if seen[s.ID] {
				continue
			}
			if accept != nil && !accept(s) {
				continue
			}
			seen[s.ID] = true
			queue = append(queue, s)
		}
	}
	return order
}

// isBackEdge reports whether the edge u->v is a back-edge: v
// (non-strictly) dominates u, per §3 and §9's self-loop convention.
func isBackEdge(view ssa.View, u, v *ssa.Block) bool {
	return view.Dom(v, u)
}
