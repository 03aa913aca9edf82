package duplicate_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mkuehnel/superblock/internal/duplicate"
	"github.com/mkuehnel/superblock/internal/sbtest"
	"github.com/mkuehnel/superblock/internal/ssa"
	"github.com/mkuehnel/superblock/internal/trace"
)

func named(f *ssa.Func, name string) *ssa.Block {
	for _, b := range f.Blocks() {
		if b.Name == name {
			return b
		}
	}
	return nil
}

// A trace with no side entrances needs no cloning at all.
func TestDuplicateNoSideEntranceLeavesTraceUnchanged(t *testing.T) {
	b := sbtest.Fn("f")
	b.Entry("entry").GotoB("mid")
	b.Block("mid").GotoB("tail")
	b.Block("tail").Return()
	f := b.Func()

	before := len(f.Blocks())
	res := &trace.Result{
		Traces:  []trace.Trace{{named(f, "entry"), named(f, "mid"), named(f, "tail")}},
		TraceID: map[ssa.ID]int{},
	}
	for _, blk := range res.Traces[0] {
		res.TraceID[blk.ID] = 0
	}

	changed, err := duplicate.Duplicate(f, res)
	require.NoError(t, err)
	require.False(t, changed)
	require.Len(t, f.Blocks(), before)
}

// A trace-interior block also reachable from outside the trace is a
// side entrance and must be cloned: the trace's own edge is rewired to
// the clone, leaving the original reachable only from the outside
// predecessor.
func TestDuplicateClonesBlockWithSideEntrance(t *testing.T) {
	b := sbtest.Fn("f")
	b.Entry("entry").GotoB("shared")
	b.Block("outside").GotoB("shared")
	b.Block("shared").GotoB("tail")
	b.Block("tail").Return()
	f := b.Func()

	entry, shared, outside, tail := named(f, "entry"), named(f, "shared"), named(f, "outside"), named(f, "tail")

	res := &trace.Result{
		Traces:  []trace.Trace{{entry, shared, tail}},
		TraceID: map[ssa.ID]int{entry.ID: 0, shared.ID: 0, tail.ID: 0, outside.ID: 1},
	}

	before := len(f.Blocks())
	changed, err := duplicate.Duplicate(f, res)
	require.NoError(t, err)
	require.True(t, changed)
	// shared and everything after it in the trace (tail) are cloned once
	// duplication begins, to keep the whole duplicated suffix self-contained.
	require.Len(t, f.Blocks(), before+2)

	succs := f.Successors(entry)
	require.Len(t, succs, 1)
	require.NotEqual(t, shared, succs[0])
	require.Equal(t, "shared.dup", succs[0].Name)

	// The untouched original still serves the outside predecessor.
	outsideSuccs := f.Successors(outside)
	require.Len(t, outsideSuccs, 1)
	require.Equal(t, shared, outsideSuccs[0])
}

// A trace whose recorded order doesn't match the actual CFG edges (the
// interior block has a side entrance but isn't actually reachable from
// its supposed predecessor in the trace) must surface a
// MalformedTerminatorError rather than silently doing nothing.
func TestDuplicateReportsMalformedTerminator(t *testing.T) {
	b := sbtest.Fn("f")
	b.Entry("entry").GotoB("realTarget")
	b.Block("realTarget").Return()
	b.Block("decoy").Return()
	b.Block("other").GotoB("decoy")
	f := b.Func()

	entry, decoy, other := named(f, "entry"), named(f, "decoy"), named(f, "other")

	res := &trace.Result{
		Traces:  []trace.Trace{{entry, decoy}},
		TraceID: map[ssa.ID]int{entry.ID: 0, decoy.ID: 0, other.ID: 1},
	}

	_, err := duplicate.Duplicate(f, res)
	require.Error(t, err)
	var malformed *duplicate.MalformedTerminatorError
	require.True(t, errors.As(err, &malformed))
	require.Equal(t, entry, malformed.Block)
}

// Cloned instructions must reference the clone's own remapped operands,
// not the original block's values.
func TestDuplicateRewritesOperandsWithinClone(t *testing.T) {
	b := sbtest.Fn("f")
	b.Entry("entry").GotoB("shared")
	b.Block("outside").GotoB("shared")
	b.Block("shared")
	b.Val("x")
	b.Use("x").GotoB("tail")
	b.Block("tail").Return()
	f := b.Func()

	entry, shared, outside, tail := named(f, "entry"), named(f, "shared"), named(f, "outside"), named(f, "tail")
	res := &trace.Result{
		Traces:  []trace.Trace{{entry, shared, tail}},
		TraceID: map[ssa.ID]int{entry.ID: 0, shared.ID: 0, tail.ID: 0, outside.ID: 1},
	}

	_, err := duplicate.Duplicate(f, res)
	require.NoError(t, err)

	clone := f.Successors(entry)[0]
	require.Len(t, clone.Values, 2)
	use := clone.Values[1]
	require.NotEqual(t, shared.Values[0], use.Operands[0])
	require.Equal(t, clone.Values[0], use.Operands[0])
}

// A cloned block's own terminator condition must be cloned too, and its
// operand must point at the clone's own def rather than the original
// block's, just like any other value use within the clone.
func TestDuplicateClonesTerminatorCondition(t *testing.T) {
	b := sbtest.Fn("f")
	b.Entry("entry").GotoB("shared")
	b.Block("outside").GotoB("shared")
	b.Block("shared")
	b.Val("x")
	b.Cond(ssa.CmpEQ, "x", "", "taken", "fall")
	b.Block("taken").Return()
	b.Block("fall").Return()
	f := b.Func()

	entry, shared, outside, taken := named(f, "entry"), named(f, "shared"), named(f, "outside"), named(f, "taken")
	res := &trace.Result{
		Traces:  []trace.Trace{{entry, shared, taken}},
		TraceID: map[ssa.ID]int{entry.ID: 0, shared.ID: 0, taken.ID: 0, outside.ID: 1},
	}

	_, err := duplicate.Duplicate(f, res)
	require.NoError(t, err)

	clone := f.Successors(entry)[0]
	require.NotNil(t, clone.Cond)
	require.NotEqual(t, shared.Cond, clone.Cond)
	require.NotEqual(t, shared.Values[0], clone.Cond.Operands[0])
	require.Equal(t, clone.Values[0], clone.Cond.Operands[0])

	// The untouched original still serves the outside predecessor, and
	// its condition still references its own operand.
	require.Equal(t, shared.Values[0], shared.Cond.Operands[0])
}
