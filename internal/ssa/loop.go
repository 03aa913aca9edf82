package ssa

// This file builds the loop nest of a function's control-flow graph using
// Bourdoncle's algorithm: find the SCCs of the CFG (scc.go), recursively
// peel each reducible loop's header off and re-partition what remains to
// discover nested loops, and record depth and irreducibility as we go.
// This mirrors the teacher package's likelyadjust.go loopnestfor/processLoop,
// generalized to the local SCC/Block types.

// Loop is one member of a function's loop nest: a header block plus the
// (transitive) set of blocks that belong to it, including nested loops.
type Loop struct {
	header  *Block
	outer   *Loop
	isInner bool
	depth   int16
	blocks  map[ID]bool
}

// Header returns the loop's entry block.
func (l *Loop) Header() *Block { return l.header }

// Depth returns the loop's nesting depth; a top-level loop has depth 1.
func (l *Loop) Depth() int16 { return l.depth }

// Contains reports whether b belongs to l or to a loop nested within l.
func (l *Loop) Contains(b *Block) bool { return l.blocks[b.ID] }

// Loopnest is a function's complete loop nest: every block belongs to at
// most one innermost loop (possibly none).
type Loopnest struct {
	f              *Func
	b2l            []*Loop
	loops          []*Loop
	hasIrreducible bool
}

// LoopOf returns the innermost loop containing b, or nil if b is not in
// any loop.
func (ln *Loopnest) LoopOf(b *Block) *Loop {
	if int(b.ID) >= len(ln.b2l) {
		return nil
	}
	return ln.b2l[b.ID]
}

// LoopsInPreorder returns every loop in the nest, outer loops before the
// loops nested within them.
func (ln *Loopnest) LoopsInPreorder() []*Loop { return ln.loops }

// HasIrreducible reports whether the function contains a loop region with
// more than one entry point, which the loop nest does not further analyze.
func (ln *Loopnest) HasIrreducible() bool { return ln.hasIrreducible }

// loopnestFor computes (or returns the cached) loop nest for f.
func loopnestFor(f *Func) *Loopnest {
	if f.cachedLoopnest != nil {
		return f.cachedLoopnest
	}

	b2l := make([]*Loop, f.NumBlocks())
	var loops []*Loop
	sawIrreducible := false

	for _, scc := range sccPartitionOf(f) {
		if !scc.IsLoop() {
			continue
		}
		processLoop(scc, nil, b2l, &loops, &sawIrreducible)
	}

	computeLoopDepths(loops)
	computeLoopBlocks(f, b2l, loops)

	ln := &Loopnest{f: f, b2l: b2l, loops: loops, hasIrreducible: sawIrreducible}
	f.cachedLoopnest = ln
	return ln
}

func sccPartitionOf(f *Func) []SCC {
	if f.cachedSCCs != nil {
		return f.cachedSCCs
	}
	comps := SCCs(f)
	sccs := make([]SCC, len(comps))
	for i, c := range comps {
		sccs[i] = SCC{Blocks: c}
	}
	f.cachedSCCs = sccs
	return sccs
}

// processLoop recursively decomposes scc (known to be a loop) into a Loop
// header plus nested loops found in the remainder, following Bourdoncle's
// algorithm.
func processLoop(scc SCC, outer *Loop, b2l []*Loop, loops *[]*Loop, sawIrreducible *bool) {
	header := scc.Header()
	if header == nil {
		// Irreducible: multiple entries into this SCC. We don't build a
		// Loop for it; its blocks fall back to whatever loop (if any)
		// contains it from the outside.
		*sawIrreducible = true
		for _, b := range scc.Blocks {
			if b2l[b.ID] == nil {
				b2l[b.ID] = outer
			}
		}
		return
	}

	l := &Loop{header: header, outer: outer, isInner: true}
	*loops = append(*loops, l)
	b2l[header.ID] = l
	if outer != nil {
		outer.isInner = false
	}

	remaining := make([]*Block, 0, len(scc.Blocks)-1)
	for _, b := range scc.Blocks {
		if b != header {
			remaining = append(remaining, b)
		}
	}
	if len(remaining) == 0 {
		return
	}

	for _, sub := range sccSubgraph(remaining, header) {
		if sub.IsLoop() {
			processLoop(sub, l, b2l, loops, sawIrreducible)
		} else {
			for _, b := range sub.Blocks {
				if b2l[b.ID] == nil {
					b2l[b.ID] = l
				}
			}
		}
	}
}

// computeLoopDepths assigns each loop a 1-based nesting depth.
func computeLoopDepths(loops []*Loop) {
	for _, l := range loops {
		if l.depth != 0 {
			continue
		}
		var chain []*Loop
		for x := l; x != nil && x.depth == 0; x = x.outer {
			chain = append(chain, x)
		}
		base := int16(0)
		if last := chain[len(chain)-1]; last.outer != nil {
			base = last.outer.depth
		}
		for i := len(chain) - 1; i >= 0; i-- {
			base++
			chain[i].depth = base
		}
	}
}

// computeLoopBlocks populates each loop's transitive block set from b2l,
// walking each block's innermost loop up through outer to mark membership
// at every enclosing level.
func computeLoopBlocks(f *Func, b2l []*Loop, loops []*Loop) {
	for _, l := range loops {
		l.blocks = map[ID]bool{l.header.ID: true}
	}
	for _, b := range f.blockList {
		for l := b2l[b.ID]; l != nil; l = l.outer {
			l.blocks[b.ID] = true
		}
	}
}
