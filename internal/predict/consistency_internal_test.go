package predict

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mkuehnel/superblock/internal/hazard"
	"github.com/mkuehnel/superblock/internal/sbtest"
	"github.com/mkuehnel/superblock/internal/ssa"
)

// The entry branch (x < 0) is opcode-heuristic predicted; a later branch
// over the same operands in the same order (x >= 0) is guard-heuristic
// predicted toward its own successor, but the consistency pass must
// flip it to agree with the entry branch's standard prediction.
func TestConsistencyPassFlipsCorrelatedBranch(t *testing.T) {
	b := sbtest.Fn("f")
	b.Entry("entry")
	b.Val("x")
	b.ConstInt("zero", false, true)
	b.Cond(ssa.CmpSLT, "x", "zero", "neg", "nonneg")
	b.Block("neg").GotoB("final")
	b.Block("nonneg").Cond(ssa.CmpSGE, "x", "zero", "gA", "gB")
	b.Block("gA").GotoB("final")
	b.Block("gB").Use("x").GotoB("final")
	b.Block("final").Return()
	f := b.Func()

	info := hazard.Classify(f)
	r := Predict(f, info)

	firstIdx, ok := r.TakenIndex(f.Entry())
	require.True(t, ok)

	nonneg := blockNamed(f, "nonneg")
	secondIdx, ok := r.TakenIndex(nonneg)
	require.True(t, ok)

	// CmpSGE is in CmpSLT's same-order flip set, so the guard-predicted
	// branch must end up agreeing inversely with the opcode-predicted one.
	require.Equal(t, 1-firstIdx, secondIdx)
}
