package predict

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mkuehnel/superblock/internal/sbtest"
	"github.com/mkuehnel/superblock/internal/ssa"
)

func TestPointerHeuristicSameValueDoesNotFire(t *testing.T) {
	b := sbtest.Fn("f")
	b.Entry("entry")
	b.Val("p")
	b.Cond(ssa.CmpEQ, "p", "p", "a", "b")
	b.Block("a")
	b.Block("b")
	f := b.Func()

	c, ok := branchComparison(f.Entry())
	require.True(t, ok)
	_, fired := pointerHeuristic(c)
	require.False(t, fired)
}

func TestLoopHeuristicPrefersLoopSuccessor(t *testing.T) {
	b := sbtest.Fn("f")
	b.Entry("entry").GotoB("header")
	b.Block("header").GotoB("body")
	b.Block("body").GotoB("header") // header/body form a loop
	f := b.Func()

	idx, ok := loopHeuristic(f, blockNamed(f, "body"), f.Entry())
	require.True(t, ok)
	require.Equal(t, 0, idx)
}

func TestLoopHeuristicAbstainsWhenBothOrNeitherInLoop(t *testing.T) {
	b := sbtest.Fn("f")
	b.Entry("entry").GotoB("a")
	b.Block("a").GotoB("b")
	b.Block("b").Return()
	f := b.Func()

	_, ok := loopHeuristic(f, blockNamed(f, "a"), blockNamed(f, "b"))
	require.False(t, ok)
}

func TestGuardHeuristicPredictsUsingSuccessor(t *testing.T) {
	b := sbtest.Fn("f")
	b.Entry("entry")
	b.Val("p")
	b.Cond(ssa.CmpNE, "p", "", "guarded", "other")
	b.Block("guarded").Use("p").Return()
	b.Block("other").Return()
	f := b.Func()

	c, ok := branchComparison(f.Entry())
	require.True(t, ok)

	idx, fired := guardHeuristic(f, c, f.Entry(), blockNamed(f, "guarded"), blockNamed(f, "other"))
	require.True(t, fired)
	require.Equal(t, 0, idx)
}

func TestDirectionHeuristicPredictsForwardSide(t *testing.T) {
	b := sbtest.Fn("f")
	b.Entry("entry").GotoB("loop")
	b.Block("loop").Cond(ssa.CmpSGT, "", "", "loop", "exit")
	b.Block("exit").Return()
	f := b.Func()

	idx, ok := directionHeuristic(f, blockNamed(f, "loop"), blockNamed(f, "loop"), blockNamed(f, "exit"))
	require.True(t, ok)
	require.Equal(t, 1, idx)
}

func blockNamed(f *ssa.Func, name string) *ssa.Block {
	for _, b := range f.Blocks() {
		if b.Name == name {
			return b
		}
	}
	return nil
}
