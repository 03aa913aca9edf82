// Package duplicate implements tail duplication (component E): for
// each trace, interior blocks reached by a side entrance are cloned so
// that every interior edge of the resulting superblock originates from
// within the trace itself.
package duplicate

import (
	"fmt"

	"github.com/mkuehnel/superblock/internal/ssa"
	"github.com/mkuehnel/superblock/internal/trace"
)

// MalformedTerminatorError reports a block whose terminator has no
// successor slot pointing at the next block of its trace, so the slot
// cannot be rewired to the clone (§7).
type MalformedTerminatorError struct {
	Func  string
	Block *ssa.Block
}

func (e *MalformedTerminatorError) Error() string {
	return fmt.Sprintf("%s: block %s has a malformed terminator for tail duplication", e.Func, e.Block)
}

// cloner accumulates the running original-to-clone value map and the
// fresh-ID counter used to allocate cloned values, scoped to one
// trace's duplication (the "cloned-block registry" of §3 is the
// per-trace chain threaded through prevClone in Duplicate).
type cloner struct {
	f        *ssa.Func
	nextVal  ssa.ID
	valueMap map[*ssa.Value]*ssa.Value
}

func newCloner(f *ssa.Func) *cloner {
	max := ssa.ID(-1)
	for _, b := range f.Blocks() {
		for _, v := range b.Values {
			if v.ID > max {
				max = v.ID
			}
		}
		if b.Cond != nil && b.Cond.ID > max {
			max = b.Cond.ID
		}
	}
	return &cloner{f: f, nextVal: max + 1, valueMap: make(map[*ssa.Value]*ssa.Value)}
}

func (c *cloner) remap(v *ssa.Value) *ssa.Value {
	if v == nil {
		return nil
	}
	if nv, ok := c.valueMap[v]; ok {
		return nv
	}
	return v
}

func (c *cloner) cloneValue(orig *ssa.Value, owner *ssa.Block) *ssa.Value {
	nv := &ssa.Value{
		ID:       c.nextVal,
		Op:       orig.Op,
		Block:    owner,
		Pred:     orig.Pred,
		IsConst:  orig.IsConst,
		Negative: orig.Negative,
		Zero:     orig.Zero,
		Name:     orig.Name,
	}
	c.nextVal++
	nv.Operands[0] = c.remap(orig.Operands[0])
	nv.Operands[1] = c.remap(orig.Operands[1])
	for _, op := range nv.Operands {
		if op != nil {
			op.Users = append(op.Users, nv)
		}
	}
	c.valueMap[orig] = nv
	return nv
}

// cloneBlock instantiates a structurally identical copy of orig in the
// same function: same instruction sequence and terminator shape, same
// outgoing edges, with every operand use rewritten through c's running
// value map (§4.E step 2's "remapped intra-clone operand uses").
func (c *cloner) cloneBlock(orig *ssa.Block) *ssa.Block {
	clone := c.f.NewBlock(orig.Name + ".dup")
	clone.Term = orig.Term
	for _, v := range orig.Values {
		clone.Values = append(clone.Values, c.cloneValue(v, clone))
	}
	if orig.Cond != nil {
		if cloned, ok := c.valueMap[orig.Cond]; ok {
			clone.Cond = cloned
		} else {
			clone.Cond = c.cloneValue(orig.Cond, clone)
		}
	}
	for _, e := range orig.Succs {
		clone.AddSucc(e.Block())
	}
	return clone
}

// rewireTarget replaces every successor slot of from that currently
// points at oldTarget with newTarget (§4.E's edge case: all matching
// slots, not just the first).
func rewireTarget(from, oldTarget, newTarget *ssa.Block) bool {
	rewrote := false
	for i, e := range from.Succs {
		if e.Block() == oldTarget {
			from.SetSucc(i, newTarget)
			rewrote = true
		}
	}
	return rewrote
}

// Duplicate runs tail duplication over every trace in res, mutating f
// in place. It returns whether any duplication occurred. A
// MalformedTerminatorError leaves f unmodified for the offending
// function's remaining traces (the caller should discard any partial
// mutation by not proceeding further; per §7 errors are local to the
// run that hit them).
func Duplicate(f *ssa.Func, res *trace.Result) (bool, error) {
	changed := false

	for _, t := range res.Traces {
		if len(t) < 2 {
			continue
		}
		c := newCloner(f)
		prevOriginal := t[0]
		var prevClone *ssa.Block
		cloning := false

		for i := 1; i < len(t); i++ {
			bi := t[i]

			if !cloning {
				if hasSideEntrance(bi, t, res) {
					clone := c.cloneBlock(bi)
					if !rewireTarget(prevOriginal, bi, clone) {
						return changed, &MalformedTerminatorError{Func: f.Name, Block: prevOriginal}
					}
					prevClone = clone
					cloning = true
					changed = true
				} else {
					prevOriginal = bi
				}
				continue
			}

			clone := c.cloneBlock(bi)
			if !rewireTarget(prevClone, bi, clone) {
				return changed, &MalformedTerminatorError{Func: f.Name, Block: prevClone}
			}
			prevClone = clone
		}
	}
	return changed, nil
}

// hasSideEntrance reports whether bi (the current block at position i
// in trace t) has a predecessor belonging to a different trace than
// bi's own — an entrance into the trace from outside it.
func hasSideEntrance(bi *ssa.Block, t trace.Trace, res *trace.Result) bool {
	ownTrace := res.TraceID[bi.ID]
	for _, e := range bi.Preds {
		p := e.Block()
		if res.TraceID[p.ID] != ownTrace {
			return true
		}
	}
	return false
}
