// Package predict implements the static branch predictor (component C):
// a hazard heuristic, five path heuristics applied in strict priority
// order, and a relational-consistency pass that keeps correlated
// comparisons mutually consistent. The predicate-dependent parts (the
// opcode heuristic's truth table and the consistency pass's flip table)
// are expressed as data tables rather than cascaded conditionals, so the
// predicate sets an entry fires on are visible in one place instead of
// scattered across if-chains.
package predict

import (
	"github.com/mkuehnel/superblock/internal/hazard"
	"github.com/mkuehnel/superblock/internal/ssa"
)

// pathPriority names the five path heuristics in the fixed evaluation
// order spec'd for the second pass; a later heuristic never overwrites
// a branch a higher-priority one already predicted.
type pathPriority int

const (
	priorityPointer pathPriority = iota
	priorityLoop
	priorityOpcode
	priorityGuard
	priorityDirection
	numPriorities
)

// Result holds the predictions made for every conditional two-way branch
// in one function, plus enough bookkeeping for the consistency pass and
// for Stats accounting.
type Result struct {
	// Hazard maps a branch block's ID to its hazard-heuristic predicted
	// taken index, for branches the hazard heuristic covered.
	Hazard map[ssa.ID]int
	// Path maps a branch block's ID to its path-heuristic predicted
	// taken index (post consistency-pass), for branches not covered by
	// the hazard heuristic but covered by a path heuristic.
	Path map[ssa.ID]int

	priority map[ssa.ID]pathPriority
}

// TakenIndex returns the overall prediction for b (hazard first, else
// path), and whether any heuristic produced one.
func (r *Result) TakenIndex(b *ssa.Block) (int, bool) {
	if idx, ok := r.Hazard[b.ID]; ok {
		return idx, true
	}
	idx, ok := r.Path[b.ID]
	return idx, ok
}

// Predict runs the hazard pass, the path pass and the consistency pass
// over every conditional branch info.CondBranches lists.
func Predict(view ssa.View, info *hazard.Info) *Result {
	r := &Result{
		Hazard:   make(map[ssa.ID]int),
		Path:     make(map[ssa.ID]int),
		priority: make(map[ssa.ID]pathPriority),
	}
	hazardPass(view, info, r)
	byPriority := pathPass(view, info, r)
	consistencyPass(r, byPriority)
	return r
}

// hazardPass implements §4.C.1: a branch avoids a successor if that
// successor is itself hazardous, or falls through an unconditional
// branch into a hazard block that does not post-dominate the branch
// (the hazard is reachable only via this edge).
func hazardPass(view ssa.View, info *hazard.Info, r *Result) {
	for _, bi := range info.CondBranches {
		succs := view.Successors(bi)
		s0, s1 := succs[0], succs[1]
		avoid0 := avoids(view, info, bi, s0)
		avoid1 := avoids(view, info, bi, s1)
		if avoid0 != avoid1 {
			if avoid0 {
				r.Hazard[bi.ID] = 1
			} else {
				r.Hazard[bi.ID] = 0
			}
		}
	}
}

func avoids(view ssa.View, info *hazard.Info, branch, s *ssa.Block) bool {
	if info.HasHazard(s) {
		return true
	}
	if s.Term != ssa.OpGoto || len(view.Successors(s)) != 1 {
		return false
	}
	child := view.Successors(s)[0]
	if !info.HasHazard(child) {
		return false
	}
	return !view.PostDom(child, branch)
}

// comparison is the condition of a conditional branch, cached per branch
// so the path heuristics and the consistency pass don't re-derive it.
type comparison struct {
	branch   *ssa.Block
	cmp      *ssa.Value
	op1, op2 *ssa.Value
	pred     ssa.Predicate
}

// pathPass implements §4.C.2: for every branch not already hazard
// predicted, evaluate the five heuristics in priority order, stopping at
// the first that fires. Returns the branches grouped by the priority
// that predicted them, for the consistency pass.
func pathPass(view ssa.View, info *hazard.Info, r *Result) [][]comparison {
	byPriority := make([][]comparison, numPriorities)

	for _, bi := range info.CondBranches {
		if _, predicted := r.Hazard[bi.ID]; predicted {
			continue
		}
		c, ok := branchComparison(bi)
		if !ok {
			continue
		}
		succs := view.Successors(bi)
		s0, s1 := succs[0], succs[1]

		if idx, ok := pointerHeuristic(c); ok {
			r.Path[bi.ID] = idx
			r.priority[bi.ID] = priorityPointer
			byPriority[priorityPointer] = append(byPriority[priorityPointer], c)
			continue
		}
		if idx, ok := loopHeuristic(view, s0, s1); ok {
			r.Path[bi.ID] = idx
			r.priority[bi.ID] = priorityLoop
			byPriority[priorityLoop] = append(byPriority[priorityLoop], c)
			continue
		}
		if idx, ok := opcodeHeuristic(c); ok {
			r.Path[bi.ID] = idx
			r.priority[bi.ID] = priorityOpcode
			byPriority[priorityOpcode] = append(byPriority[priorityOpcode], c)
			continue
		}
		if idx, ok := guardHeuristic(view, c, bi, s0, s1); ok {
			r.Path[bi.ID] = idx
			r.priority[bi.ID] = priorityGuard
			byPriority[priorityGuard] = append(byPriority[priorityGuard], c)
			continue
		}
		if idx, ok := directionHeuristic(view, bi, s0, s1); ok {
			r.Path[bi.ID] = idx
			r.priority[bi.ID] = priorityDirection
			byPriority[priorityDirection] = append(byPriority[priorityDirection], c)
			continue
		}
	}
	return byPriority
}

// branchComparison extracts the comparison a conditional branch tests,
// if its condition is an ICmp/FCmp with exactly two operands.
func branchComparison(bi *ssa.Block) (comparison, bool) {
	cond := bi.Cond
	if cond == nil || (cond.Op != ssa.OpICmp && cond.Op != ssa.OpFCmp) {
		return comparison{}, false
	}
	return comparison{branch: bi, cmp: cond, op1: cond.Operands[0], op2: cond.Operands[1], pred: cond.Pred}, true
}

// pointerHeuristic: §4.C.2 priority 0. Applies when both operands are
// non-constant (pointer-typed in the host IR; here, neither operand is
// a compile-time constant) and distinct. Equality predicates predict
// fall-through (pointers are rarely equal); relational predicates
// predict taken.
func pointerHeuristic(c comparison) (int, bool) {
	if c.op1 == nil || c.op2 == nil {
		return 0, false
	}
	if c.op1.IsConst || c.op2.IsConst {
		return 0, false
	}
	if ssa.SameValue(c.op1, c.op2) {
		return 0, false
	}
	if c.pred.IsEquality() {
		if c.pred.TrueWhenEqual() {
			return 1, true // EQ: predict fall-through
		}
		return 0, true // NE: predict taken
	}
	if c.pred.TrueWhenEqual() {
		return 0, true // GE/LE-style relational: predict taken
	}
	return 0, true
}

// loopHeuristic: §4.C.2 priority 1. Fires when exactly one successor
// lies inside a loop; predicts that successor.
func loopHeuristic(view ssa.View, s0, s1 *ssa.Block) (int, bool) {
	in0 := view.LoopOf(s0) != nil
	in1 := view.LoopOf(s1) != nil
	if in0 == in1 {
		return 0, false
	}
	if in0 {
		return 0, true
	}
	return 1, true
}

// opcodeRow is one entry of the opcode-heuristic truth table: given
// which operand is the negative-or-zero constant and the predicate
// tested, whether the heuristic fires and which index it predicts.
type opcodeRow struct {
	pred           ssa.Predicate
	constIsOp1     bool
	negative, zero bool
	fallThrough    bool
}

// opcodeTable enumerates §4.C.2 priority 2 exactly, rather than as
// cascaded conditionals: negative constants are expected to compare
// false against ">"-style predicates (so ">" predicts fall-through) and
// zero constants follow the same convention for their one relevant
// direction. EQ against a negative constant also predicts fall-through
// (equality with an out-of-common-range constant is unlikely).
var opcodeTable = []opcodeRow{
	// constant is op1 (compile-time value op1, variable op2)
	{pred: ssa.CmpEQ, constIsOp1: true, negative: true, fallThrough: true},
	{pred: ssa.CmpSGE, constIsOp1: true, negative: true, fallThrough: true},
	{pred: ssa.CmpUGE, constIsOp1: true, negative: true, fallThrough: true},
	{pred: ssa.CmpSGT, constIsOp1: true, negative: true, fallThrough: true},
	{pred: ssa.CmpUGT, constIsOp1: true, negative: true, fallThrough: true},
	{pred: ssa.CmpOGE, constIsOp1: true, negative: true, fallThrough: true},
	{pred: ssa.CmpUGE, constIsOp1: true, negative: true, fallThrough: true},
	{pred: ssa.CmpOGT, constIsOp1: true, negative: true, fallThrough: true},
	{pred: ssa.CmpUGT, constIsOp1: true, negative: true, fallThrough: true},
	{pred: ssa.CmpSGT, constIsOp1: true, zero: true, fallThrough: true},
	{pred: ssa.CmpUGT, constIsOp1: true, zero: true, fallThrough: true},
	{pred: ssa.CmpOGT, constIsOp1: true, zero: true, fallThrough: true},
	{pred: ssa.CmpUGT, constIsOp1: true, zero: true, fallThrough: true},

	// constant is op2 (variable op1, compile-time value op2): directions
	// invert relative to the op1 case.
	{pred: ssa.CmpEQ, constIsOp1: false, negative: true, fallThrough: true},
	{pred: ssa.CmpSLE, constIsOp1: false, negative: true, fallThrough: true},
	{pred: ssa.CmpULE, constIsOp1: false, negative: true, fallThrough: true},
	{pred: ssa.CmpSLT, constIsOp1: false, negative: true, fallThrough: true},
	{pred: ssa.CmpULT, constIsOp1: false, negative: true, fallThrough: true},
	{pred: ssa.CmpOLE, constIsOp1: false, negative: true, fallThrough: true},
	{pred: ssa.CmpULE, constIsOp1: false, negative: true, fallThrough: true},
	{pred: ssa.CmpOLT, constIsOp1: false, negative: true, fallThrough: true},
	{pred: ssa.CmpULT, constIsOp1: false, negative: true, fallThrough: true},
	{pred: ssa.CmpSLT, constIsOp1: false, zero: true, fallThrough: true},
	{pred: ssa.CmpULT, constIsOp1: false, zero: true, fallThrough: true},
	{pred: ssa.CmpOLT, constIsOp1: false, zero: true, fallThrough: true},
	{pred: ssa.CmpULT, constIsOp1: false, zero: true, fallThrough: true},
}

// opcodeHeuristic: §4.C.2 priority 2, covering both the negative/zero
// constant table and the float-equality special case.
func opcodeHeuristic(c comparison) (int, bool) {
	if c.op1 == nil || c.op2 == nil {
		return 0, false
	}

	// Float-equality special case: equality predicates on float
	// comparisons are treated as unlikely regardless of operand shape.
	if c.cmp.Op == ssa.OpFCmp && c.pred.IsEquality() {
		if c.pred.TrueWhenEqual() {
			return 1, true // FOEQ/FUEQ -> fall-through
		}
		return 0, true // FONE/FUNE -> taken
	}

	op1Const, op2Const := c.op1.IsConst, c.op2.IsConst
	if op1Const == op2Const {
		return 0, false // need exactly one constant operand
	}

	constIsOp1 := op1Const
	constOperand := c.op2
	if constIsOp1 {
		constOperand = c.op1
	}
	if !constOperand.Negative && !constOperand.Zero {
		return 0, false
	}

	for _, row := range opcodeTable {
		if row.pred != c.pred || row.constIsOp1 != constIsOp1 {
			continue
		}
		if row.negative && !constOperand.Negative {
			continue
		}
		if row.zero && !constOperand.Zero {
			continue
		}
		if row.fallThrough {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// guardHeuristic: §4.C.2 priority 3. Fires when exactly one operand is
// used inside exactly one of the two successors, and that successor's
// terminator does not post-dominate the branch (the use only happens
// if that edge is taken). Predicts the successor using the operand.
func guardHeuristic(view ssa.View, c comparison, branch, s0, s1 *ssa.Block) (int, bool) {
	dir1, ok1 := guardedSuccessor(view, c.op1, branch, s0, s1)
	dir2, ok2 := guardedSuccessor(view, c.op2, branch, s0, s1)
	if ok1 == ok2 {
		return 0, false
	}
	if ok1 {
		return dir1, true
	}
	return dir2, true
}

// guardedSuccessor reports whether op is used inside exactly one of
// s0/s1 in a way that qualifies as a guard (the using successor's
// terminator does not post-dominate branch), and if so which index.
func guardedSuccessor(view ssa.View, op *ssa.Value, branch, s0, s1 *ssa.Block) (int, bool) {
	if op == nil {
		return 0, false
	}
	usedIn0, usedIn1 := false, false
	for _, u := range op.Users {
		if u.Block == nil {
			continue
		}
		switch u.Block {
		case s0:
			if !view.PostDom(s0, branch) {
				usedIn0 = true
			}
		case s1:
			if !view.PostDom(s1, branch) {
				usedIn1 = true
			}
		}
	}
	if usedIn0 == usedIn1 {
		return 0, false
	}
	if usedIn0 {
		return 0, true
	}
	return 1, true
}

// directionHeuristic: §4.C.2 priority 4. Fires when exactly one
// successor dominates the branch (i.e. is a back-edge target); predicts
// the other (forward) side.
func directionHeuristic(view ssa.View, branch, s0, s1 *ssa.Block) (int, bool) {
	back0 := view.Dom(s0, branch)
	back1 := view.Dom(s1, branch)
	if back0 == back1 {
		return 0, false
	}
	if back0 {
		return 1, true
	}
	return 0, true
}
