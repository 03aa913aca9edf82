package ssa

// This file is the CFG/analysis adapter of spec §4.A: it is the only
// surface the classifier, predictor, trace former, tail duplicator and
// feature extractor are allowed to call into. Everything here is a thin,
// read-only wrapper over Func/Block/Loopnest — the point of collecting
// them in one file is that a caller can audit at a glance that no
// component reaches past this interface into Func internals.

// View exposes exactly the CFG and analysis queries the core consumes.
// *Func implements View directly; callers should still depend on the
// interface so tests can substitute a narrower fake.
type View interface {
	Blocks() []*Block
	Entry() *Block
	Successors(b *Block) []*Block
	Predecessors(b *Block) []*Block
	Terminator(b *Block) Op
	Instructions(b *Block) []*Value

	Dom(a, b *Block) bool
	PostDom(a, b *Block) bool

	LoopOf(b *Block) *Loop
	LoopsInPreorder() []*Loop
	LoopDepth(l *Loop) int16
	LoopContains(l *Loop, b *Block) bool
	LoopHeader(l *Loop) *Block

	BlockCount(b *Block) uint64
	EdgeProb(b *Block, succIndex int) float64
}

// Blocks returns every block in f, including ones added by tail
// duplication, in allocation order.
func (f *Func) Blocks() []*Block { return f.blockList }

// Entry returns f's entry block.
func (f *Func) Entry() *Block { return f.entry }

// Successors returns b's successor blocks in taken/fall-through order.
func (f *Func) Successors(b *Block) []*Block {
	out := make([]*Block, len(b.Succs))
	for i, e := range b.Succs {
		out[i] = e.Block()
	}
	return out
}

// Predecessors returns b's predecessor blocks.
func (f *Func) Predecessors(b *Block) []*Block {
	out := make([]*Block, len(b.Preds))
	for i, e := range b.Preds {
		out[i] = e.Block()
	}
	return out
}

// Terminator returns b's terminator opcode.
func (f *Func) Terminator(b *Block) Op { return b.Term }

// Instructions returns b's instruction list (terminator excluded; query
// Terminator/Cond for that).
func (f *Func) Instructions(b *Block) []*Value { return b.Values }

// Dom reports whether a dominates b (non-strict).
func (f *Func) Dom(a, b *Block) bool { return Dominates(f, a, b) }

// PostDom reports whether a post-dominates b (non-strict).
func (f *Func) PostDom(a, b *Block) bool { return PostDominates(f, a, b) }

// LoopOf returns the innermost loop containing b, or nil.
func (f *Func) LoopOf(b *Block) *Loop { return loopnestFor(f).LoopOf(b) }

// LoopsInPreorder returns every loop in f, outer before inner.
func (f *Func) LoopsInPreorder() []*Loop { return loopnestFor(f).LoopsInPreorder() }

// LoopDepth returns l's nesting depth, or 0 if l is nil.
func (f *Func) LoopDepth(l *Loop) int16 {
	if l == nil {
		return 0
	}
	return l.Depth()
}

// LoopContains reports whether b belongs to l or a loop nested in l.
func (f *Func) LoopContains(l *Loop, b *Block) bool {
	if l == nil {
		return false
	}
	return l.Contains(b)
}

// LoopHeader returns l's header block, or nil if l is nil.
func (f *Func) LoopHeader(l *Loop) *Block {
	if l == nil {
		return nil
	}
	return l.Header()
}

var _ View = (*Func)(nil)
