// Package ssa provides the CFG and analysis adapter the rest of the
// superblock core consumes (component A of the design). It is a
// from-scratch, much smaller cousin of the compiler's own SSA package:
// dense ID-indexed blocks owned by a Func, with dominator, post-dominator,
// loop-nest and profile queries computed on demand and cached until the
// CFG is mutated.
package ssa

// ID identifies a block or a value within one Func. IDs are dense,
// starting at 0, and stable for the lifetime of the analysis: the tail
// duplicator only appends new blocks, it never reassigns or frees an ID.
type ID int

// Op enumerates the instruction opcodes the core recognizes. Only the
// opcodes the core's heuristics and feature extractor inspect are
// modeled; anything else collapses to OpOther.
type Op int

const (
	OpOther Op = iota
	OpCondBranch
	OpGoto
	OpSwitch
	OpIndirectBr
	OpReturn
	OpCall
	OpInvoke
	OpCallBr
	OpStore
	OpICmp
	OpFCmp
	OpConstInt
	OpConstFloat
)

func (op Op) String() string {
	switch op {
	case OpCondBranch:
		return "condbranch"
	case OpGoto:
		return "goto"
	case OpSwitch:
		return "switch"
	case OpIndirectBr:
		return "indirectbr"
	case OpReturn:
		return "ret"
	case OpCall:
		return "call"
	case OpInvoke:
		return "invoke"
	case OpCallBr:
		return "callbr"
	case OpStore:
		return "store"
	case OpICmp:
		return "icmp"
	case OpFCmp:
		return "fcmp"
	case OpConstInt:
		return "constint"
	case OpConstFloat:
		return "constfloat"
	default:
		return "other"
	}
}

// Predicate is a comparison predicate, drawn from the same space as
// the host IR's integer and floating-point comparison predicates.
type Predicate int

const (
	CmpInvalid Predicate = iota
	CmpEQ
	CmpNE
	CmpSLT
	CmpSLE
	CmpSGT
	CmpSGE
	CmpULT
	CmpULE
	CmpUGT
	CmpUGE
	CmpOEQ
	CmpONE
	CmpUEQ
	CmpUNE
	CmpOLT
	CmpOLE
	CmpOGT
	CmpOGE
)

// IsFloat reports whether p is drawn from the floating-point predicate
// space (as opposed to the integer predicate space).
func (p Predicate) IsFloat() bool {
	switch p {
	case CmpOEQ, CmpONE, CmpUEQ, CmpUNE, CmpOLT, CmpOLE, CmpOGT, CmpOGE:
		return true
	default:
		return false
	}
}

// IsEquality reports whether p tests equality or inequality.
func (p Predicate) IsEquality() bool {
	switch p {
	case CmpEQ, CmpNE, CmpOEQ, CmpONE, CmpUEQ, CmpUNE:
		return true
	default:
		return false
	}
}

// TrueWhenEqual reports whether p evaluates true for equal operands
// (EQ, GE, LE variants), mirroring CmpInst::isTrueWhenEqual.
func (p Predicate) TrueWhenEqual() bool {
	switch p {
	case CmpEQ, CmpSLE, CmpSGE, CmpULE, CmpUGE, CmpOEQ, CmpUEQ, CmpOLE, CmpOGE:
		return true
	default:
		return false
	}
}

// Value is an instruction or constant operand. Only the fields the
// core's heuristics and feature extractor need are modeled: a real
// compiler's IR carries much more, but the core never looks at it.
type Value struct {
	ID    ID
	Op    Op
	Block *Block // owning block; nil for a Value that is a pure constant operand

	// Comparison-specific fields, valid when Op is OpICmp or OpFCmp.
	Pred     Predicate
	Operands [2]*Value

	// Constant-operand fields.
	IsConst  bool
	Negative bool
	Zero     bool

	// Users lists every Value whose Operands reference this Value,
	// needed by the guard heuristic (§4.C.2) and the feature
	// extractor's is_op{1,2}_used_{taken,fall_through} bits.
	Users []*Value

	Name string // for diagnostics only
}

func (v *Value) String() string {
	if v.Name != "" {
		return v.Name
	}
	return v.Op.String()
}

// SameValue reports whether two operands denote the identical SSA
// value (pointer identity on Value, matching the host IR's convention
// that distinct defs are distinct values even if coincidentally equal).
func SameValue(a, b *Value) bool { return a == b }

// Edge is a CFG edge, recorded from both endpoints: Block.Succs holds
// edges in taken/fall-through order (index 0 = taken, index 1 =
// fall-through for a two-way conditional branch), Block.Preds holds
// the reverse.
type Edge struct {
	b   *Block
	idx int // index of this edge in the other endpoint's sibling list
}

// Block returns the block this edge points to (or comes from).
func (e Edge) Block() *Block { return e.b }

// Block is a basic block: a maximal straight-line sequence of Values
// ending in exactly one terminator.
type Block struct {
	ID     ID
	Name   string
	Func   *Func
	Values []*Value
	Succs  []Edge
	Preds  []Edge

	// Term is the block's terminator opcode, kept separate from Values
	// so that rewiring (tail duplication) can patch Succs without
	// hunting through the instruction list for the right Value.
	Term Op
	// Cond is the branch condition, valid when Term == OpCondBranch.
	Cond *Value
}

// AddSucc records a CFG edge b -> to, keeping both sibling lists
// consistent. Used by fixture construction and by the tail duplicator
// when it rewires a terminator's successor slot.
func (b *Block) AddSucc(to *Block) {
	b.Succs = append(b.Succs, Edge{b: to, idx: len(to.Preds)})
	to.Preds = append(to.Preds, Edge{b: b, idx: len(b.Succs) - 1})
}

// SetSucc replaces the block at successor slot i with to, removing the
// corresponding Preds entry from the old target and adding one to the
// new target. This is the single rewiring primitive the tail duplicator
// uses (§4.E): every successor-slot rewrite in the core goes through it.
func (b *Block) SetSucc(i int, to *Block) {
	old := b.Succs[i].b
	// Drop b from old's Preds.
	for j, e := range old.Preds {
		if e.b == b && e.idx == i {
			old.Preds = append(old.Preds[:j], old.Preds[j+1:]...)
			break
		}
	}
	b.Succs[i] = Edge{b: to, idx: len(to.Preds)}
	to.Preds = append(to.Preds, Edge{b: b, idx: i})
}

func (b *Block) String() string {
	if b.Name != "" {
		return b.Name
	}
	return "b" + itoa(int(b.ID))
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Func is one function's CFG plus the analyses computed over it, owned
// by a single run of the core. All of the cached* fields are discarded
// (or simply dropped) once tail duplication or feature emission is done;
// see the Lifecycle note in spec §3.
type Func struct {
	Name      string
	blockList []*Block
	entry     *Block
	Profile   *Profile

	cache Cache

	cachedPostorder []*Block
	cachedIdom      []*Block
	cachedPdom      []*Block
	cachedLoopnest  *Loopnest
	cachedSCCs      []SCC
}

// NewFunc creates an empty function ready to have blocks added via
// NewBlock and an entry block assigned via SetEntry.
func NewFunc(name string) *Func {
	return &Func{Name: name}
}

// SetEntry designates b as f's entry block. b must already belong to f.
func (f *Func) SetEntry(b *Block) {
	f.entry = b
	f.invalidateCFG()
}

// NumBlocks returns the number of blocks ever allocated in f, including
// ones added by tail duplication. Block IDs are always < NumBlocks().
func (f *Func) NumBlocks() int { return len(f.blockList) }

// NewBlock allocates a fresh block in f and appends it to f.blockList.
// This is the only way new blocks enter a Func, used by the tail
// duplicator's cloning step; it invalidates cached CFG-shape analyses
// (dominators, loop nest, SCCs) but never the profile map, since the
// duplicator does not change block counts.
func (f *Func) NewBlock(name string) *Block {
	b := &Block{ID: ID(len(f.blockList)), Name: name, Func: f}
	f.blockList = append(f.blockList, b)
	f.invalidateCFG()
	return b
}

// invalidateCFG tells f that its CFG shape has changed.
func (f *Func) invalidateCFG() {
	f.cachedPostorder = nil
	f.cachedIdom = nil
	f.cachedPdom = nil
	f.cachedLoopnest = nil
	f.cachedSCCs = nil
}
