// Package features implements the static-branch feature extractor
// (component F): for every two-way conditional branch it emits a fixed
// 39-column row (38 boolean features plus the profile-derived label)
// to a per-source-file CSV sink, grounded on the same encoding/csv
// convention the pack's other CSV formatter uses.
package features

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/mkuehnel/superblock/internal/hazard"
	"github.com/mkuehnel/superblock/internal/ssa"
)

// Columns names the 39-column schema in emission order (§4.F).
var Columns = []string{
	"is_pointer_cmp", "is_pointer_eq",
	"is_taken_loop", "is_fall_through_loop",
	"is_ifcmp", "is_ifcmp_lt_zero", "is_ifcmp_gt_zero", "is_ifcmp_eq_zero",
	"is_ifcmp_ne_zero", "is_ifcmp_le_zero", "is_ifcmp_ge_zero",
	"is_ifcmp_lt_negative", "is_ifcmp_gt_negative", "is_ifcmp_eq_negative",
	"is_ifcmp_ne_negative", "is_ifcmp_le_negative", "is_ifcmp_ge_negative",
	"is_fcmp_eq",
	"is_op1_used_taken", "is_op1_used_fall_through",
	"is_op2_used_taken", "is_op2_used_fall_through",
	"is_taken_backward", "is_fall_through_backward",
	"has_taken_call", "has_taken_invoke", "has_taken_store", "has_taken_ret", "has_taken_indirectbr", "has_taken_yield", "is_taken_pdom",
	"has_fall_through_call", "has_fall_through_invoke", "has_fall_through_store", "has_fall_through_ret", "has_fall_through_indirectbr", "has_fall_through_yield", "is_fall_through_pdom",
	"label",
}

// Sink appends feature rows to a CSV file opened once per source file,
// in append mode, so multi-function inputs accumulate into one file
// (§4.F).
type Sink struct {
	w      io.Closer
	writer *csv.Writer
}

// OpenSink opens (creating if necessary) path for append and returns a
// Sink ready to receive rows. Call Close when done with the source
// file.
func OpenSink(path string) (*Sink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &Sink{w: f, writer: csv.NewWriter(f)}, nil
}

// Close flushes any buffered rows and closes the underlying file.
func (s *Sink) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.w.Close()
		return err
	}
	return s.w.Close()
}

// Write appends one row. A write failure is the caller's to log and
// move past (§7's CSV I/O failure handling); Write itself just reports
// the error.
func (s *Sink) Write(row [39]int) error {
	fields := make([]string, len(row))
	for i, v := range row {
		fields[i] = strconv.Itoa(v)
	}
	if err := s.writer.Write(fields); err != nil {
		return err
	}
	s.writer.Flush()
	return s.writer.Error()
}

// Extract walks every two-way conditional branch info.CondBranches
// lists and writes its feature row to sink, in block-discovery order
// (§5's ordering guarantee). A write failure for one row is reported
// but does not stop extraction for the remaining branches (§7).
func Extract(view ssa.View, info *hazard.Info, sink *Sink) []error {
	var errs []error
	for _, b := range info.CondBranches {
		row := rowFor(view, b)
		if err := sink.Write(row); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// rowFor builds the 39-field row for branch b, per §4.F's semantics.
func rowFor(view ssa.View, b *ssa.Block) [39]int {
	succs := view.Successors(b)
	taken, fallThrough := succs[0], succs[1]

	var row [39]int
	cond := b.Cond

	if cond != nil && (cond.Op == ssa.OpICmp || cond.Op == ssa.OpFCmp) {
		op1, op2 := cond.Operands[0], cond.Operands[1]

		if op1 != nil && op2 != nil && !op1.IsConst && !op2.IsConst && !ssa.SameValue(op1, op2) {
			row[0] = 1 // is_pointer_cmp
			if cond.Pred.IsEquality() && cond.Pred.TrueWhenEqual() {
				row[1] = 1 // is_pointer_eq
			}
		}

		if cond.Op == ssa.OpICmp {
			setIfcmpBits(&row, cond, op1, op2)
		}
		if cond.Op == ssa.OpFCmp && cond.Pred.IsEquality() {
			row[17] = 1 // is_fcmp_eq
		}

		row[18] = boolInt(usedIn(op1, taken))
		row[19] = boolInt(usedIn(op1, fallThrough))
		row[20] = boolInt(usedIn(op2, taken))
		row[21] = boolInt(usedIn(op2, fallThrough))
	}

	row[2] = boolInt(view.LoopOf(taken) != nil)
	row[3] = boolInt(view.LoopOf(fallThrough) != nil)

	row[22] = boolInt(view.Dom(taken, b))
	row[23] = boolInt(view.Dom(fallThrough, b))

	setOpcodeYieldBits(&row, view, b, taken, 24, 30)
	setOpcodeYieldBits(&row, view, b, fallThrough, 31, 37)

	row[38] = label(view, b)
	return row
}

// setIfcmpBits fills the 13 is_ifcmp_* columns for an integer
// comparison against a negative-or-zero constant operand, following
// the same operand-order-aware table the opcode path heuristic uses.
func setIfcmpBits(row *[39]int, cond, op1, op2 *ssa.Value) {
	row[4] = 1 // is_ifcmp

	var constOperand *ssa.Value
	constIsOp1 := false
	switch {
	case op1 != nil && op1.IsConst && (op2 == nil || !op2.IsConst):
		constOperand, constIsOp1 = op1, true
	case op2 != nil && op2.IsConst && (op1 == nil || !op1.IsConst):
		constOperand, constIsOp1 = op2, false
	default:
		return
	}

	neg, zero := constOperand.Negative, constOperand.Zero
	p := cond.Pred
	// Indices: lt_zero=5 gt_zero=6 eq_zero=7 ne_zero=8 le_zero=9 ge_zero=10
	//          lt_neg=11 gt_neg=12 eq_neg=13 ne_neg=14 le_neg=15 ge_neg=16
	dir := directionOf(p, constIsOp1)
	if zero {
		switch dir {
		case dirLT:
			row[5] = 1
		case dirGT:
			row[6] = 1
		case dirEQ:
			row[7] = 1
		case dirNE:
			row[8] = 1
		case dirLE:
			row[9] = 1
		case dirGE:
			row[10] = 1
		}
	}
	if neg {
		switch dir {
		case dirLT:
			row[11] = 1
		case dirGT:
			row[12] = 1
		case dirEQ:
			row[13] = 1
		case dirNE:
			row[14] = 1
		case dirLE:
			row[15] = 1
		case dirGE:
			row[16] = 1
		}
	}
}

type direction int

const (
	dirNone direction = iota
	dirLT
	dirLE
	dirGT
	dirGE
	dirEQ
	dirNE
)

// directionOf reports the variable-relative-to-constant direction a
// predicate expresses, inverting relational predicates when the
// constant is the first operand (so the result always reads as
// "variable <cmp> constant").
func directionOf(p ssa.Predicate, constIsOp1 bool) direction {
	base := func(p ssa.Predicate) direction {
		switch p {
		case ssa.CmpEQ, ssa.CmpOEQ, ssa.CmpUEQ:
			return dirEQ
		case ssa.CmpNE, ssa.CmpONE, ssa.CmpUNE:
			return dirNE
		case ssa.CmpSLT, ssa.CmpULT, ssa.CmpOLT:
			return dirLT
		case ssa.CmpSLE, ssa.CmpULE, ssa.CmpOLE:
			return dirLE
		case ssa.CmpSGT, ssa.CmpUGT, ssa.CmpOGT:
			return dirGT
		case ssa.CmpSGE, ssa.CmpUGE, ssa.CmpOGE:
			return dirGE
		default:
			return dirNone
		}
	}(p)
	if !constIsOp1 {
		return base
	}
	// constant op1, variable op2: flip the relational sense.
	switch base {
	case dirLT:
		return dirGT
	case dirLE:
		return dirGE
	case dirGT:
		return dirLT
	case dirGE:
		return dirLE
	default:
		return base
	}
}

// setOpcodeYieldBits fills the has_*_{call,invoke,store,ret,indirectbr,yield}
// and is_*_pdom columns for one successor, starting at base for the
// opcode bits and pdomIdx for the post-dominance bit. Per §9's
// preserved-as-observed semantics, has_*_{op} reflects the *last*
// instruction opcode seen in the successor block, not "any instruction".
func setOpcodeYieldBits(row *[39]int, view ssa.View, branch, succ *ssa.Block, base, pdomIdx int) {
	var lastOp ssa.Op
	for _, v := range view.Instructions(succ) {
		lastOp = v.Op
	}
	// The terminator is the final instruction of the block if the value
	// list didn't already end in one of the recognized opcodes.
	term := view.Terminator(succ)
	switch term {
	case ssa.OpCall, ssa.OpInvoke, ssa.OpStore, ssa.OpReturn, ssa.OpIndirectBr:
		lastOp = term
	}

	switch lastOp {
	case ssa.OpCall:
		row[base] = 1
	case ssa.OpInvoke:
		row[base+1] = 1
	case ssa.OpStore:
		row[base+2] = 1
	case ssa.OpReturn:
		row[base+3] = 1
	case ssa.OpIndirectBr:
		row[base+4] = 1
	}

	if term == ssa.OpGoto {
		succs := view.Successors(succ)
		if len(succs) == 1 && isHazardousOpinion(view, succs[0]) {
			row[base+5] = 1 // has_*_yield
		}
	}

	row[pdomIdx] = boolInt(view.PostDom(succ, branch))
}

// isHazardousOpinion reports whether target's terminator is one of the
// opcodes the block classifier treats as hazardous, used for the
// has_*_yield bit without importing the hazard package's block-level
// Info (which is keyed by the branch's own function, not an arbitrary
// successor chain).
func isHazardousOpinion(view ssa.View, target *ssa.Block) bool {
	switch view.Terminator(target) {
	case ssa.OpIndirectBr, ssa.OpReturn, ssa.OpCallBr, ssa.OpInvoke, ssa.OpStore:
		return true
	}
	for _, v := range view.Instructions(target) {
		switch v.Op {
		case ssa.OpIndirectBr, ssa.OpReturn, ssa.OpCallBr, ssa.OpInvoke, ssa.OpStore:
			return true
		}
	}
	return false
}

func usedIn(op *ssa.Value, block *ssa.Block) bool {
	if op == nil {
		return false
	}
	for _, u := range op.Users {
		if u.Block == block {
			return true
		}
	}
	return false
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// label returns the first successor index whose edge probability
// exceeds one half, defaulting to 0 if neither does (§4.F).
func label(view ssa.View, b *ssa.Block) int {
	for i := range view.Successors(b) {
		if view.EdgeProb(b, i) > 0.5 {
			return i
		}
	}
	return 0
}
