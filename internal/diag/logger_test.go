package diag_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mkuehnel/superblock/internal/diag"
)

func TestLevelSilentSuppressesInfoDebugTrace(t *testing.T) {
	var buf bytes.Buffer
	l := diag.NewLogger(&buf, diag.LevelSilent)

	l.Infof("info %d", 1)
	l.Debugf("debug %d", 2)
	l.Tracef("trace %d", 3)

	require.Empty(t, buf.String())
}

func TestLevelInfoAllowsInfoButNotDebug(t *testing.T) {
	var buf bytes.Buffer
	l := diag.NewLogger(&buf, diag.LevelInfo)

	l.Infof("hello %s", "world")
	l.Debugf("should not appear")

	out := buf.String()
	require.Contains(t, out, "hello world")
	require.NotContains(t, out, "should not appear")
}

func TestLevelDebugAllowsDebugButNotTrace(t *testing.T) {
	var buf bytes.Buffer
	l := diag.NewLogger(&buf, diag.LevelDebug)

	l.Debugf("debug line")
	l.Tracef("trace line")

	out := buf.String()
	require.Contains(t, out, "debug line")
	require.NotContains(t, out, "trace line")
}

func TestLevelTraceAllowsEverything(t *testing.T) {
	var buf bytes.Buffer
	l := diag.NewLogger(&buf, diag.LevelTrace)

	l.Infof("i")
	l.Debugf("d")
	l.Tracef("tr")

	out := buf.String()
	for _, want := range []string{"i", "d", "tr"} {
		require.True(t, strings.Contains(out, want))
	}
}

// Warnf and Fatalf are not level-gated: they print regardless of the
// configured verbosity, even at LevelSilent.
func TestWarnAndFatalAlwaysPrintAtSilentLevel(t *testing.T) {
	var buf bytes.Buffer
	l := diag.NewLogger(&buf, diag.LevelSilent)

	l.Warnf("a warning")
	l.Fatalf("a fatal")

	out := buf.String()
	require.Contains(t, out, "a warning")
	require.Contains(t, out, "a fatal")
}
