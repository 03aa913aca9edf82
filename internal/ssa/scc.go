// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ssa

// This file implements strongly connected component (SCC) detection for
// control-flow graphs using the Kosaraju-Sharir algorithm.
//
// Kosaraju-Sharir was chosen over Tarjan's single-pass algorithm because it is
// straightforward to implement iteratively and requires no auxiliary data on
// graph nodes, and because the loop nest (loop.go) needs to run it again on
// ever-shrinking vertex subsets as it peels off loop headers — a vertex-subset
// parameter falls out naturally from the two-pass structure, whereas
// Tarjan's single DFS would need bookkeeping to exclude already-peeled nodes
// from the lowlink computation.
//
// SCCs returns the strongly connected components of f's control-flow graph,
// reachable from the entry, in an unspecified order. Each SCC of size > 1,
// plus each singleton SCC whose block has a self-edge, corresponds to a loop
// (or nested group of loops) in f; every other singleton is a straight-line
// block.
func SCCs(f *Func) [][]*Block {
	po := postorder(f)
	return kosaraju(po, succsOf, predsOf)
}

// SCC is a strongly connected component together with the classification
// the loop nest (loop.go) needs: whether it denotes a loop at all, and if
// so whether it has the single entry point that makes it a reducible
// (structured) loop.
type SCC struct {
	Blocks []*Block
}

// IsLoop reports whether scc denotes a loop: more than one block, or a
// single block with an edge to itself.
func (s SCC) IsLoop() bool {
	if len(s.Blocks) > 1 {
		return true
	}
	if len(s.Blocks) == 1 {
		b := s.Blocks[0]
		for _, e := range b.Succs {
			if e.b == b {
				return true
			}
		}
	}
	return false
}

// Header returns the loop's unique entry block — the block in scc reached
// by an edge from outside scc — or nil if the SCC has more than one such
// entry (an irreducible, multi-entry region).
func (s SCC) Header() *Block {
	inSet := sccSet(s.Blocks)
	var header *Block
	for _, b := range s.Blocks {
		for _, e := range b.Preds {
			if !inSet[e.b.ID] {
				if header != nil && header != b {
					return nil
				}
				header = b
				break
			}
		}
	}
	// A single-block self-loop has no external predecessor requirement
	// beyond itself; its header is simply that block.
	if header == nil && len(s.Blocks) == 1 {
		return s.Blocks[0]
	}
	return header
}

// IsReducible reports whether scc has the single-entry property that
// makes it a structured (reducible) loop.
func (s SCC) IsReducible() bool { return s.Header() != nil }

func sccSet(blocks []*Block) map[ID]bool {
	m := make(map[ID]bool, len(blocks))
	for _, b := range blocks {
		m[b.ID] = true
	}
	return m
}

// sccSubgraph partitions remaining into SCCs using only edges whose both
// endpoints lie in remaining — i.e. with header (and everything outside
// remaining) treated as removed from the graph. This is the step
// Bourdoncle's decomposition uses to find loops nested inside a loop
// once its header has been peeled off.
func sccSubgraph(remaining []*Block, exclude *Block) []SCC {
	inSet := sccSet(remaining)
	succ := func(b *Block) []Edge {
		out := b.Succs
		filtered := out[:0:0]
		for _, e := range out {
			if inSet[e.b.ID] && e.b != exclude {
				filtered = append(filtered, e)
			}
		}
		return filtered
	}
	pred := func(b *Block) []Edge {
		out := b.Preds
		filtered := out[:0:0]
		for _, e := range out {
			if inSet[e.b.ID] && e.b != exclude {
				filtered = append(filtered, e)
			}
		}
		return filtered
	}
	comps := kosaraju(remaining, succ, pred)
	sccs := make([]SCC, len(comps))
	for i, c := range comps {
		sccs[i] = SCC{Blocks: c}
	}
	return sccs
}

// kosaraju computes the strongly connected components of the subgraph
// induced by verts, using succ/pred restricted to that vertex set.
func kosaraju(verts []*Block, succ, pred neighborsFn) [][]*Block {
	inSet := sccSet(verts)
	visited := make(map[ID]bool, len(verts))
	po := make([]*Block, 0, len(verts))

	var stack []blockAndIndex
	for _, start := range verts {
		if visited[start.ID] {
			continue
		}
		stack = append(stack, blockAndIndex{b: start})
		visited[start.ID] = true
		for len(stack) > 0 {
			top := len(stack) - 1
			b := stack[top].b
			nbrs := succ(b)
			if i := stack[top].index; i < len(nbrs) {
				stack[top].index++
				nb := nbrs[i].Block()
				if inSet[nb.ID] && !visited[nb.ID] {
					visited[nb.ID] = true
					stack = append(stack, blockAndIndex{b: nb})
				}
				continue
			}
			stack = stack[:top]
			po = append(po, b)
		}
	}

	seen := make(map[ID]bool, len(verts))
	var result [][]*Block
	for i := len(po) - 1; i >= 0; i-- {
		leader := po[i]
		if seen[leader.ID] {
			continue
		}
		var comp []*Block
		queue := []*Block{leader}
		seen[leader.ID] = true
		for len(queue) > 0 {
			b := queue[0]
			queue = queue[1:]
			comp = append(comp, b)
			for _, e := range pred(b) {
				p := e.Block()
				if inSet[p.ID] && !seen[p.ID] {
					seen[p.ID] = true
					queue = append(queue, p)
				}
			}
		}
		result = append(result, comp)
	}
	return result
}
