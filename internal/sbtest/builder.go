// Package sbtest is a fluent CFG builder for unit tests, in the spirit
// of the host compiler's (external, not present in this retrieval)
// Bloc/Valu/Goto test DSL: Fn("f").Block("a").GotoB("b")... assembles a
// *ssa.Func directly, without going through internal/fixture's YAML.
package sbtest

import "github.com/mkuehnel/superblock/internal/ssa"

// Builder assembles one *ssa.Func block by block.
type Builder struct {
	f       *ssa.Func
	blocks  map[string]*ssa.Block
	values  map[string]*ssa.Value
	cur     *ssa.Block
	nextVal ssa.ID
}

// Fn starts building a function named name.
func Fn(name string) *Builder {
	return &Builder{
		f:      ssa.NewFunc(name),
		blocks: make(map[string]*ssa.Block),
		values: make(map[string]*ssa.Value),
	}
}

func (b *Builder) block(name string) *ssa.Block {
	if bl, ok := b.blocks[name]; ok {
		return bl
	}
	bl := b.f.NewBlock(name)
	b.blocks[name] = bl
	return bl
}

// Entry declares name as the entry block and makes it current.
func (b *Builder) Entry(name string) *Builder {
	bl := b.block(name)
	b.f.SetEntry(bl)
	b.cur = bl
	return b
}

// Block switches the current block to name, creating it if new.
func (b *Builder) Block(name string) *Builder {
	b.cur = b.block(name)
	return b
}

// GotoB terminates the current block with an unconditional branch to name.
func (b *Builder) GotoB(name string) *Builder {
	b.cur.Term = ssa.OpGoto
	b.cur.AddSucc(b.block(name))
	return b
}

// Return terminates the current block with a return.
func (b *Builder) Return() *Builder {
	b.cur.Term = ssa.OpReturn
	return b
}

// IndirectBr terminates the current block with an indirect branch to
// the listed possible targets.
func (b *Builder) IndirectBr(targets ...string) *Builder {
	b.cur.Term = ssa.OpIndirectBr
	for _, t := range targets {
		b.cur.AddSucc(b.block(t))
	}
	return b
}

// Hazard appends a plain instruction with opcode op (call, invoke,
// callbr, store, ...) to the current block without altering its
// terminator. Whether it counts as a hazard is up to the classifier.
func (b *Builder) Hazard(op ssa.Op) *Builder {
	b.cur.Values = append(b.cur.Values, &ssa.Value{ID: b.alloc(), Op: op, Block: b.cur})
	return b
}

// Val declares a named opaque (pointer-like) value in the current
// block, usable later as a comparison operand or traced via Use.
func (b *Builder) Val(name string) *Builder {
	v := &ssa.Value{ID: b.alloc(), Op: ssa.OpOther, Block: b.cur, Name: name}
	b.values[name] = v
	b.cur.Values = append(b.cur.Values, v)
	return b
}

// Use appends a value to the current block that consumes the named
// operand, so the feature extractor's is_op{1,2}_used_* bits see it.
func (b *Builder) Use(name string) *Builder {
	src := b.values[name]
	v := &ssa.Value{ID: b.alloc(), Op: ssa.OpOther, Block: b.cur, Operands: [2]*ssa.Value{src}}
	if src != nil {
		src.Users = append(src.Users, v)
	}
	b.cur.Values = append(b.cur.Values, v)
	return b
}

// ConstInt declares a named integer constant operand.
func (b *Builder) ConstInt(name string, negative, zero bool) *Builder {
	v := &ssa.Value{ID: b.alloc(), Op: ssa.OpConstInt, IsConst: true, Negative: negative, Zero: zero, Name: name}
	b.values[name] = v
	return b
}

// Cond terminates the current block with a two-way conditional branch
// comparing op1 and op2 under pred, taken on match to takenBlock,
// falling through otherwise.
func (b *Builder) Cond(pred ssa.Predicate, op1, op2, takenBlock, fallThroughBlock string) *Builder {
	op := ssa.OpICmp
	if pred.IsFloat() {
		op = ssa.OpFCmp
	}
	cond := &ssa.Value{ID: b.alloc(), Op: op, Block: b.cur, Pred: pred}
	cond.Operands[0] = b.resolve(op1)
	cond.Operands[1] = b.resolve(op2)
	if cond.Operands[0] != nil {
		cond.Operands[0].Users = append(cond.Operands[0].Users, cond)
	}
	if cond.Operands[1] != nil {
		cond.Operands[1].Users = append(cond.Operands[1].Users, cond)
	}
	b.cur.Cond = cond
	b.cur.Term = ssa.OpCondBranch
	b.cur.AddSucc(b.block(takenBlock))
	b.cur.AddSucc(b.block(fallThroughBlock))
	return b
}

func (b *Builder) resolve(name string) *ssa.Value {
	if name == "" {
		return nil
	}
	return b.values[name]
}

// Count sets the current block's profile execution count.
func (b *Builder) Count(n uint64) *Builder {
	b.profile().SetCount(b.cur, n)
	return b
}

// EdgeProb sets the probability of the current block's idx'th
// successor edge, as a num/den fraction.
func (b *Builder) EdgeProb(idx int, num, den uint64) *Builder {
	b.profile().SetEdgeProb(b.cur, idx, num, den)
	return b
}

func (b *Builder) profile() *ssa.Profile {
	if b.f.Profile == nil {
		b.f.Profile = ssa.NewProfile()
	}
	return b.f.Profile
}

func (b *Builder) alloc() ssa.ID {
	id := b.nextVal
	b.nextVal++
	return id
}

// Func returns the assembled function.
func (b *Builder) Func() *ssa.Func { return b.f }
