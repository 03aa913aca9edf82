// Package hazard implements the block classifier (component B): a single
// linear scan over a function that flags blocks containing hazardous
// instructions and collects the conditional two-way branches the static
// predictor and trace formers operate on.
package hazard

import "github.com/mkuehnel/superblock/internal/ssa"

// Info is the result of classifying one function: per-block hazard flags
// plus the list of conditional two-way branches found along the way. No
// inter-block reasoning happens here — that is left to the predictor
// (internal/predict), which consults Info together with the dominator and
// post-dominator trees.
type Info struct {
	hasHazard         map[ssa.ID]bool
	hasReturn         map[ssa.ID]bool
	hasIndirectBranch map[ssa.ID]bool

	// CondBranches lists every block whose terminator is a two-way
	// conditional branch, in block-ID order.
	CondBranches []*ssa.Block
}

// HasHazard reports whether b contains an indirect branch, return, invoke,
// callbr or store instruction.
func (i *Info) HasHazard(b *ssa.Block) bool { return i.hasHazard[b.ID] }

// HasReturn reports whether b contains a return. Tracked separately from
// HasHazard because the trace formers need it as a dedicated growth
// stopper independent of the general hazard flag.
func (i *Info) HasReturn(b *ssa.Block) bool { return i.hasReturn[b.ID] }

// HasIndirectBranch reports whether b contains an indirect branch,
// tracked separately for the same reason as HasReturn.
func (i *Info) HasIndirectBranch(b *ssa.Block) bool { return i.hasIndirectBranch[b.ID] }

// Classify scans every block of f exactly once, building an Info.
func Classify(f *ssa.Func) *Info {
	blocks := f.Blocks()
	info := &Info{
		hasHazard:         make(map[ssa.ID]bool, len(blocks)),
		hasReturn:         make(map[ssa.ID]bool, len(blocks)),
		hasIndirectBranch: make(map[ssa.ID]bool, len(blocks)),
	}

	for _, b := range blocks {
		for _, v := range b.Values {
			switch v.Op {
			case ssa.OpIndirectBr:
				info.hasIndirectBranch[b.ID] = true
				info.hasHazard[b.ID] = true
			case ssa.OpReturn:
				info.hasReturn[b.ID] = true
				info.hasHazard[b.ID] = true
			case ssa.OpCallBr, ssa.OpInvoke, ssa.OpStore:
				info.hasHazard[b.ID] = true
			}
		}
		// The terminator itself can also be one of these opcodes (a
		// block's terminator is not duplicated into Values).
		switch b.Term {
		case ssa.OpIndirectBr:
			info.hasIndirectBranch[b.ID] = true
			info.hasHazard[b.ID] = true
		case ssa.OpReturn:
			info.hasReturn[b.ID] = true
			info.hasHazard[b.ID] = true
		case ssa.OpCallBr, ssa.OpInvoke, ssa.OpStore:
			info.hasHazard[b.ID] = true
		case ssa.OpCondBranch:
			if len(b.Succs) == 2 {
				info.CondBranches = append(info.CondBranches, b)
			}
		}
	}
	return info
}
