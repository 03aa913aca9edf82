package hazard_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mkuehnel/superblock/internal/hazard"
	"github.com/mkuehnel/superblock/internal/sbtest"
	"github.com/mkuehnel/superblock/internal/ssa"
)

func TestClassifyFlagsReturn(t *testing.T) {
	b := sbtest.Fn("f")
	b.Entry("entry").Cond(ssa.CmpSLT, "", "", "ret", "loop")
	b.Block("ret").Return()
	b.Block("loop").GotoB("entry")
	f := b.Func()

	info := hazard.Classify(f)
	require.True(t, info.HasReturn(blockByName(f, "ret")))
	require.True(t, info.HasHazard(blockByName(f, "ret")))
	require.False(t, info.HasReturn(blockByName(f, "loop")))
}

func TestClassifyFlagsIndirectBranch(t *testing.T) {
	b := sbtest.Fn("f")
	b.Entry("entry").GotoB("ib")
	b.Block("ib").IndirectBr("a", "b")
	b.Block("a").Return()
	b.Block("b").Return()
	f := b.Func()

	info := hazard.Classify(f)
	require.True(t, info.HasIndirectBranch(blockByName(f, "ib")))
	require.True(t, info.HasHazard(blockByName(f, "ib")))
}

func TestClassifyFlagsStoreAsHazardOnly(t *testing.T) {
	b := sbtest.Fn("f")
	b.Entry("entry").Hazard(ssa.OpStore).GotoB("exit")
	b.Block("exit").Return()
	f := b.Func()

	info := hazard.Classify(f)
	entry := blockByName(f, "entry")
	require.True(t, info.HasHazard(entry))
	require.False(t, info.HasReturn(entry))
	require.False(t, info.HasIndirectBranch(entry))
}

// A plain call is not a hazard instruction (only invoke/callbr carry
// exceptional control flow); a block containing only one must not be
// flagged.
func TestClassifyDoesNotFlagPlainCallAsHazard(t *testing.T) {
	b := sbtest.Fn("f")
	b.Entry("entry").Hazard(ssa.OpCall).GotoB("exit")
	b.Block("exit").Return()
	f := b.Func()

	info := hazard.Classify(f)
	require.False(t, info.HasHazard(blockByName(f, "entry")))
}

func TestClassifyCollectsOnlyTwoWayCondBranches(t *testing.T) {
	b := sbtest.Fn("f")
	b.Entry("entry").Cond(ssa.CmpEQ, "", "", "a", "b")
	b.Block("a").Return()
	b.Block("b").Return()
	f := b.Func()

	info := hazard.Classify(f)
	require.Len(t, info.CondBranches, 1)
	require.Equal(t, blockByName(f, "entry"), info.CondBranches[0])
}

func blockByName(f *ssa.Func, name string) *ssa.Block {
	for _, b := range f.Blocks() {
		if b.Name == name {
			return b
		}
	}
	return nil
}
