// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ssa

// This file computes the dominator and post-dominator trees of a
// control-flow graph, following the Cooper-Harvey-Kennedy "simple, fast
// dominance" algorithm: a reverse-postorder fixed point where each
// step takes the closest common ancestor of a block's already-resolved
// predecessors via intersect(). The postorder DFS and intersect() are
// kept in the same shape the ssa package uses them in, generalized with
// a neighbors function so the identical code computes both the forward
// dominator tree (over Succs) and, rooted at a virtual exit, the
// post-dominator tree (over Preds).

type blockAndIndex struct {
	b     *Block
	index int // number of neighbor edges of b already explored
}

type neighborsFn func(*Block) []Edge

func succsOf(b *Block) []Edge { return b.Succs }
func predsOf(b *Block) []Edge { return b.Preds }

// postorder computes a DFS postordering of f's blocks reachable from
// f.entry. Unreachable blocks do not appear. Cached on f.
func postorder(f *Func) []*Block {
	if f.cachedPostorder != nil {
		return f.cachedPostorder
	}
	po := poFrom(f.entry, f.NumBlocks(), succsOf, &f.cache)
	f.cachedPostorder = po
	return po
}

// poFrom provides a DFS postordering over neighbors(b) starting at
// entry. n is an upper bound on block ID, used to size the seen set.
func poFrom(entry *Block, n int, neighbors neighborsFn, cache *Cache) []*Block {
	seen := cache.allocBoolSlice(n)
	defer cache.freeBoolSlice(seen)

	order := make([]*Block, 0, n)

	// A constant initial bound lets most calls stack-allocate s.
	s := make([]blockAndIndex, 0, 32)
	s = append(s, blockAndIndex{b: entry})
	seen[entry.ID] = true
	for len(s) > 0 {
		tos := len(s) - 1
		x := s[tos]
		b := x.b
		nbrs := neighbors(b)
		if i := x.index; i < len(nbrs) {
			s[tos].index++
			bb := nbrs[i].Block()
			if int(bb.ID) < len(seen) && !seen[bb.ID] {
				seen[bb.ID] = true
				s = append(s, blockAndIndex{b: bb})
			}
			continue
		}
		s = s[:tos]
		order = append(order, b)
	}
	return order
}

// intersect finds the closest common dominator of b and c, given a
// postorder numbering and an idom table, both indexed by a block's
// position in the postorder list (not by Block.ID).
func intersect(b, c int, postnum, idom []int) int {
	for b != c {
		for postnum[b] < postnum[c] {
			b = idom[b]
		}
		for postnum[c] < postnum[b] {
			c = idom[c]
		}
	}
	return b
}

// buildDomTree runs the CHK fixed point over the graph described by
// neighbors (successors of the traversal direction) and rneighbors
// (predecessors of that direction), rooted at entry. n bounds the
// ID space, which for post-dominance includes one extra slot for a
// virtual exit node.
func buildDomTree(entry *Block, n int, neighbors, rneighbors neighborsFn, cache *Cache) []*Block {
	po := poFrom(entry, n, neighbors, cache)
	rpo := make([]*Block, len(po))
	postnum := make([]int, n)
	index := make([]int, n)
	for i, b := range po {
		postnum[i] = i
		index[b.ID] = i
		rpo[len(po)-1-i] = b
	}

	idom := make([]int, len(po))
	for i := range idom {
		idom[i] = -1
	}
	entryIdx := index[entry.ID]
	idom[entryIdx] = entryIdx

	for changed := true; changed; {
		changed = false
		for _, b := range rpo {
			if b == entry {
				continue
			}
			bi := index[b.ID]
			newIdom := -1
			for _, e := range rneighbors(b) {
				p := e.Block()
				if int(p.ID) >= len(index) {
					continue
				}
				pi := index[p.ID]
				if idom[pi] == -1 {
					continue // predecessor not yet processed this pass
				}
				if newIdom == -1 {
					newIdom = pi
				} else {
					newIdom = intersect(newIdom, pi, postnum, idom)
				}
			}
			if newIdom != -1 && idom[bi] != newIdom {
				idom[bi] = newIdom
				changed = true
			}
		}
	}

	result := make([]*Block, n)
	for i, b := range po {
		if i == entryIdx || idom[i] == -1 {
			continue
		}
		result[b.ID] = po[idom[i]]
	}
	return result
}

// idomTable returns f's immediate-dominator table, indexed by Block.ID.
// idomTable(f)[f.entry.ID] is nil.
func idomTable(f *Func) []*Block {
	if f.cachedIdom != nil {
		return f.cachedIdom
	}
	t := buildDomTree(f.entry, f.NumBlocks(), succsOf, predsOf, &f.cache)
	f.cachedIdom = t
	return t
}

// Dominates reports whether a dominates b. Dominance is non-strict
// here (a dominates itself): per spec §9, the profile trace-former
// relies on that convention to treat a self-loop a->a as a back-edge.
func Dominates(f *Func, a, b *Block) bool {
	idom := idomTable(f)
	for cur := b; ; {
		if cur == a {
			return true
		}
		if cur == f.entry {
			return false
		}
		next := idom[cur.ID]
		if next == nil {
			return false
		}
		cur = next
	}
}

// postDomTree computes f's post-dominator tree by running buildDomTree
// over the reversed graph, rooted at a virtual exit every block with no
// successors flows into.
func postDomTree(f *Func) []*Block {
	if f.cachedPdom != nil {
		return f.cachedPdom
	}

	var exits []*Block
	for _, b := range f.blockList {
		if len(b.Succs) == 0 {
			exits = append(exits, b)
		}
	}
	n := f.NumBlocks()
	if len(exits) == 0 {
		// No function exit (e.g. an infinite loop): post-dominance is
		// vacuous except for self-post-dominance, which callers handle
		// via the non-strict convention in PostDominates.
		f.cachedPdom = make([]*Block, n)
		return f.cachedPdom
	}

	ve := &Block{ID: ID(n), Name: "<exit>"}
	for _, b := range exits {
		ve.Preds = append(ve.Preds, Edge{b: b})
	}

	rsuccs := func(b *Block) []Edge {
		if b == ve {
			return ve.Preds
		}
		return b.Preds
	}
	rpreds := func(b *Block) []Edge {
		if b == ve {
			return nil
		}
		out := append([]Edge(nil), b.Succs...)
		for _, e := range exits {
			if e == b {
				out = append(out, Edge{b: ve})
			}
		}
		return out
	}

	idom := buildDomTree(ve, n+1, rsuccs, rpreds, &f.cache)
	f.cachedPdom = idom[:n]
	return f.cachedPdom
}

// PostDominates reports whether a post-dominates b (non-strict).
func PostDominates(f *Func, a, b *Block) bool {
	pdom := postDomTree(f)
	n := f.NumBlocks()
	for cur, steps := b, 0; steps <= n; steps++ {
		if cur == a {
			return true
		}
		next := pdom[cur.ID]
		if next == nil || int(next.ID) >= n {
			return false // reached the virtual exit
		}
		cur = next
	}
	return false
}
