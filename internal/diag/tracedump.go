package diag

import (
	"strings"

	"github.com/mkuehnel/superblock/internal/trace"
)

// DumpTraces prints one line per trace at LevelTrace, the rewrite's
// gated equivalent of SB_PASS.cpp's always-on printTraces debug dump.
func (l *Logger) DumpTraces(funcName string, res *trace.Result) {
	if l.level < LevelTrace {
		return
	}
	l.Tracef("---- traces for %s (%d) ----", funcName, len(res.Traces))
	for i, t := range res.Traces {
		names := make([]string, len(t))
		for j, b := range t {
			names[j] = b.String()
		}
		l.Tracef("  trace %d: %s", i, strings.Join(names, " -> "))
	}
}
