package predict_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mkuehnel/superblock/internal/hazard"
	"github.com/mkuehnel/superblock/internal/predict"
	"github.com/mkuehnel/superblock/internal/sbtest"
	"github.com/mkuehnel/superblock/internal/ssa"
)

// A hazard-predicted branch that agrees with the profile's preferred
// direction counts toward both coverage and accuracy.
func TestStatsRecordsHazardAgreement(t *testing.T) {
	b := sbtest.Fn("f")
	b.Entry("entry").Cond(ssa.CmpEQ, "", "", "ret", "cont")
	b.EdgeProb(0, 1, 10)
	b.EdgeProb(1, 9, 10)
	b.Block("ret").Return()
	b.Block("cont").GotoB("loop")
	b.Block("loop").GotoB("loop")
	f := b.Func()

	info := hazard.Classify(f)
	r := predict.Predict(f, info)

	var stats predict.Stats
	stats.Record(f, info.CondBranches, r)

	require.Equal(t, 1, stats.ConditionalCount)
	require.Equal(t, 1, stats.HazardCount)
	require.Equal(t, 1, stats.HazardAgree)
	require.InDelta(t, 1.0, stats.Coverage(), 1e-9)
	require.InDelta(t, 1.0, stats.Accuracy(), 1e-9)
}

// A branch no heuristic covers contributes to ConditionalCount but not
// to coverage or accuracy.
func TestStatsUncoveredBranchLowersCoverage(t *testing.T) {
	var stats predict.Stats
	stats.ConditionalCount = 4
	stats.HazardCount = 1
	stats.HazardAgree = 1

	require.InDelta(t, 0.25, stats.Coverage(), 1e-9)
	require.InDelta(t, 1.0, stats.Accuracy(), 1e-9)
}

func TestStatsAccuracyZeroWhenNothingCovered(t *testing.T) {
	var stats predict.Stats
	stats.ConditionalCount = 3
	require.Equal(t, 0.0, stats.Accuracy())
	require.Equal(t, 0.0, stats.Coverage())
}
