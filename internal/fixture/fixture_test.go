package fixture_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mkuehnel/superblock/internal/fixture"
	"github.com/mkuehnel/superblock/internal/ssa"
)

const diamondYAML = `
name: diamond
entry: entry
blocks:
  - name: entry
    term: cond
    succs: [left, right]
    cond:
      pred: slt
      op1: x
      op2_const: {negative: false, zero: true}
    values:
      - name: x
        op: other
  - name: left
    term: goto
    succs: [join]
  - name: right
    term: goto
    succs: [join]
  - name: join
    term: return
`

func TestParseBuildsBlocksAndSuccessors(t *testing.T) {
	f, err := fixture.Parse([]byte(diamondYAML))
	require.NoError(t, err)
	require.Equal(t, "diamond", f.Name)
	require.Len(t, f.Blocks(), 4)

	entry := named(t, f, "entry")
	require.Equal(t, ssa.OpCondBranch, entry.Term)
	require.Len(t, f.Successors(entry), 2)
	require.Equal(t, "left", f.Successors(entry)[0].Name)
	require.Equal(t, "right", f.Successors(entry)[1].Name)
}

func TestParseBuildsConditionFromConstantOperand(t *testing.T) {
	f, err := fixture.Parse([]byte(diamondYAML))
	require.NoError(t, err)

	entry := named(t, f, "entry")
	require.NotNil(t, entry.Cond)
	require.Equal(t, ssa.CmpSLT, entry.Cond.Pred)
	require.True(t, entry.Cond.Operands[1].IsConst)
	require.True(t, entry.Cond.Operands[1].Zero)
	require.False(t, entry.Cond.Operands[1].Negative)
	require.Equal(t, "x", entry.Cond.Operands[0].Name)
}

func TestParseAttachesProfileWhenPresent(t *testing.T) {
	data := []byte(`
name: f
entry: entry
blocks:
  - name: entry
    term: cond
    succs: [a, b]
    cond:
      pred: eq
      op1: ""
      op2: ""
    edge_probs:
      - {index: 0, num: 3, den: 4}
      - {index: 1, num: 1, den: 4}
  - name: a
    term: return
  - name: b
    term: return
`)
	f, err := fixture.Parse(data)
	require.NoError(t, err)
	require.NotNil(t, f.Profile)
	entry := named(t, f, "entry")
	require.InDelta(t, 0.75, f.EdgeProb(entry, 0), 1e-9)
	require.InDelta(t, 0.25, f.EdgeProb(entry, 1), 1e-9)
}

func TestParseLeavesProfileNilWhenAbsent(t *testing.T) {
	f, err := fixture.Parse([]byte(diamondYAML))
	require.NoError(t, err)
	require.Nil(t, f.Profile)
}

func TestParseRejectsUnknownTerminator(t *testing.T) {
	data := []byte(`
name: f
entry: a
blocks:
  - name: a
    term: bogus
`)
	_, err := fixture.Parse(data)
	require.Error(t, err)
}

func TestParseRejectsUnknownSuccessor(t *testing.T) {
	data := []byte(`
name: f
entry: a
blocks:
  - name: a
    term: goto
    succs: [missing]
`)
	_, err := fixture.Parse(data)
	require.Error(t, err)
}

func TestParseRejectsUnknownEntry(t *testing.T) {
	data := []byte(`
name: f
entry: nope
blocks:
  - name: a
    term: return
`)
	_, err := fixture.Parse(data)
	require.Error(t, err)
}

func TestParseRejectsUnknownPredicate(t *testing.T) {
	data := []byte(`
name: f
entry: a
blocks:
  - name: a
    term: cond
    succs: [b, c]
    cond:
      pred: bogus
      op1: ""
      op2: ""
  - name: b
    term: return
  - name: c
    term: return
`)
	_, err := fixture.Parse(data)
	require.Error(t, err)
}

func TestParseRejectsUnknownOperandReference(t *testing.T) {
	data := []byte(`
name: f
entry: a
blocks:
  - name: a
    term: cond
    succs: [b, c]
    cond:
      pred: eq
      op1: nosuchvalue
      op2: ""
  - name: b
    term: return
  - name: c
    term: return
`)
	_, err := fixture.Parse(data)
	require.Error(t, err)
}

func named(t *testing.T, f *ssa.Func, name string) *ssa.Block {
	t.Helper()
	for _, b := range f.Blocks() {
		if b.Name == name {
			return b
		}
	}
	t.Fatalf("no block named %q", name)
	return nil
}
