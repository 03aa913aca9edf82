package diag_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mkuehnel/superblock/internal/diag"
	"github.com/mkuehnel/superblock/internal/sbtest"
	"github.com/mkuehnel/superblock/internal/ssa"
	"github.com/mkuehnel/superblock/internal/trace"
)

func TestDumpTracesSilentBelowTraceLevel(t *testing.T) {
	var buf bytes.Buffer
	l := diag.NewLogger(&buf, diag.LevelDebug)

	b := sbtest.Fn("f")
	b.Entry("entry").Return()
	f := b.Func()
	res := &trace.Result{Traces: []trace.Trace{{f.Entry()}}, TraceID: map[ssa.ID]int{f.Entry().ID: 0}}

	l.DumpTraces("f", res)
	require.Empty(t, buf.String())
}

func TestDumpTracesPrintsEachTraceAtTraceLevel(t *testing.T) {
	var buf bytes.Buffer
	l := diag.NewLogger(&buf, diag.LevelTrace)

	b := sbtest.Fn("f")
	b.Entry("entry").GotoB("tail")
	b.Block("tail").Return()
	f := b.Func()
	res := &trace.Result{
		Traces:  []trace.Trace{{f.Entry(), named(f, "tail")}},
		TraceID: map[ssa.ID]int{f.Entry().ID: 0, named(f, "tail").ID: 0},
	}

	l.DumpTraces("f", res)
	out := buf.String()
	require.Contains(t, out, "f")
	require.Contains(t, out, "trace 0")
}

func named(f *ssa.Func, name string) *ssa.Block {
	for _, b := range f.Blocks() {
		if b.Name == name {
			return b
		}
	}
	return nil
}
