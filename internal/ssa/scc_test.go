package ssa_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mkuehnel/superblock/internal/sbtest"
	"github.com/mkuehnel/superblock/internal/ssa"
)

func TestSCCsLinearChainAllSingletons(t *testing.T) {
	b := sbtest.Fn("f")
	b.Entry("entry").GotoB("a")
	b.Block("a").GotoB("b")
	b.Block("b").Return()
	f := b.Func()

	sccs := ssa.SCCs(f)
	require.Len(t, sccs, 3)
	for _, scc := range sccs {
		require.Len(t, scc, 1)
	}
}

func TestSCCsDetectsTwoBlockLoop(t *testing.T) {
	b := sbtest.Fn("f")
	b.Entry("entry").GotoB("header")
	b.Block("header").GotoB("body")
	b.Block("body").GotoB("header")
	f := b.Func()

	sccs := ssa.SCCs(f)
	var loopSize int
	for _, scc := range sccs {
		if len(scc) > 1 {
			loopSize = len(scc)
		}
	}
	require.Equal(t, 2, loopSize)
}

func TestSCCIsLoopForSelfEdge(t *testing.T) {
	b := sbtest.Fn("f")
	b.Entry("entry").GotoB("spin")
	b.Block("spin").GotoB("spin")
	f := b.Func()

	for _, blocks := range ssa.SCCs(f) {
		scc := ssa.SCC{Blocks: blocks}
		if len(blocks) == 1 && blocks[0].Name == "spin" {
			require.True(t, scc.IsLoop())
		}
	}
}
