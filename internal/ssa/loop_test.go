package ssa_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mkuehnel/superblock/internal/sbtest"
	"github.com/mkuehnel/superblock/internal/ssa"
)

func TestLoopOfClassifiesLoopBlocksOnly(t *testing.T) {
	b := sbtest.Fn("g")
	b.Entry("entry").GotoB("header")
	b.Block("header")
	b.Val("p")
	b.Cond(ssa.CmpEQ, "p", "", "body", "exit")
	b.Block("body").GotoB("header")
	b.Block("exit").Return()
	g := b.Func()

	header, body, entry, exit := named(g, "header"), named(g, "body"), named(g, "entry"), named(g, "exit")
	require.NotNil(t, g.LoopOf(header))
	require.NotNil(t, g.LoopOf(body))
	require.Nil(t, g.LoopOf(entry))
	require.Nil(t, g.LoopOf(exit))
}

func TestLoopDepthNesting(t *testing.T) {
	b := sbtest.Fn("f")
	b.Entry("entry").GotoB("outer")
	b.Block("outer")
	b.Val("p")
	b.Cond(ssa.CmpEQ, "p", "", "inner", "exit")
	b.Block("inner")
	b.Val("q")
	b.Cond(ssa.CmpEQ, "q", "", "inner", "outer")
	b.Block("exit").Return()
	f := b.Func()

	inner := named(f, "inner")
	outer := named(f, "outer")

	innerLoop := f.LoopOf(inner)
	outerLoop := f.LoopOf(outer)
	require.NotNil(t, innerLoop)
	require.NotNil(t, outerLoop)
	require.Greater(t, f.LoopDepth(innerLoop), f.LoopDepth(outerLoop))
}
