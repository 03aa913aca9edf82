package predict_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mkuehnel/superblock/internal/hazard"
	"github.com/mkuehnel/superblock/internal/predict"
	"github.com/mkuehnel/superblock/internal/sbtest"
	"github.com/mkuehnel/superblock/internal/ssa"
)

func TestHazardHeuristicAvoidsReturn(t *testing.T) {
	b := sbtest.Fn("f")
	b.Entry("entry").Cond(ssa.CmpEQ, "", "", "ret", "cont")
	b.Block("ret").Return()
	b.Block("cont").GotoB("loop")
	b.Block("loop").GotoB("loop")
	f := b.Func()

	info := hazard.Classify(f)
	r := predict.Predict(f, info)

	idx, ok := r.TakenIndex(entryBlock(f))
	require.True(t, ok)
	require.Equal(t, 1, idx) // avoids "ret" at index 0, predicts "cont"
}

func TestPointerHeuristicEqualityPredictsFallThrough(t *testing.T) {
	b := sbtest.Fn("f")
	b.Entry("entry")
	b.Val("p")
	b.Val("q")
	b.Cond(ssa.CmpEQ, "p", "q", "eq", "ne")
	b.Block("eq").Return()
	b.Block("ne").Return()
	f := b.Func()

	info := hazard.Classify(f)
	r := predict.Predict(f, info)

	idx, ok := r.TakenIndex(entryBlock(f))
	require.True(t, ok)
	require.Equal(t, 1, idx)
}

func TestOpcodeHeuristicNegativeConstantOp2(t *testing.T) {
	b := sbtest.Fn("f")
	b.Entry("entry")
	b.Val("x")
	b.ConstInt("negone", true, false)
	b.Cond(ssa.CmpSLT, "x", "negone", "taken", "fall")
	b.Block("taken").Return()
	b.Block("fall").Return()
	f := b.Func()

	info := hazard.Classify(f)
	r := predict.Predict(f, info)

	idx, ok := r.TakenIndex(entryBlock(f))
	require.True(t, ok)
	require.Equal(t, 1, idx) // SLT against a negative constant: fall-through
}

func entryBlock(f *ssa.Func) *ssa.Block { return f.Entry() }
