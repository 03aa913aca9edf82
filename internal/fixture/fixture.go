// Package fixture loads a function's control-flow graph, instructions
// and profile from a YAML description. It stands in for the host
// compiler's analysis front end (out of scope per spec §1): tests and
// the CLI both describe example functions this way instead of parsing
// real IR.
package fixture

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mkuehnel/superblock/internal/ssa"
)

// Func is the parsed YAML shape of one function (§6's input contract,
// expressed as data instead of compiler analysis calls).
type Func struct {
	Name   string       `yaml:"name"`
	Entry  string       `yaml:"entry"`
	Blocks []BlockSpec  `yaml:"blocks"`
}

// BlockSpec describes one basic block.
type BlockSpec struct {
	Name      string          `yaml:"name"`
	Term      string          `yaml:"term"`
	Succs     []string        `yaml:"succs"`
	Values    []ValueSpec     `yaml:"values,omitempty"`
	Cond      *CondSpec       `yaml:"cond,omitempty"`
	Count     *uint64         `yaml:"count,omitempty"`
	EdgeProbs []EdgeProbSpec  `yaml:"edge_probs,omitempty"`
}

// ValueSpec describes a plain instruction with no operands the
// classifier or feature extractor cares about by opcode alone (call,
// invoke, store, and so on).
type ValueSpec struct {
	Name string `yaml:"name"`
	Op   string `yaml:"op"`
}

// CondSpec describes a conditional branch's comparison.
type CondSpec struct {
	Pred string      `yaml:"pred"`
	Op1  string      `yaml:"op1"`
	Op2  string      `yaml:"op2"`
	Op1C *ConstSpec  `yaml:"op1_const,omitempty"`
	Op2C *ConstSpec  `yaml:"op2_const,omitempty"`
}

// ConstSpec marks an operand as a compile-time constant, with sign/zero
// flags (§3's comparison descriptor).
type ConstSpec struct {
	Negative bool `yaml:"negative"`
	Zero     bool `yaml:"zero"`
}

// EdgeProbSpec records one successor edge's probability as a fraction.
type EdgeProbSpec struct {
	Index int    `yaml:"index"`
	Num   uint64 `yaml:"num"`
	Den   uint64 `yaml:"den"`
}

var opNames = map[string]ssa.Op{
	"goto":       ssa.OpGoto,
	"cond":       ssa.OpCondBranch,
	"switch":     ssa.OpSwitch,
	"indirectbr": ssa.OpIndirectBr,
	"return":     ssa.OpReturn,
	"call":       ssa.OpCall,
	"invoke":     ssa.OpInvoke,
	"callbr":     ssa.OpCallBr,
	"store":      ssa.OpStore,
	"icmp":       ssa.OpICmp,
	"fcmp":       ssa.OpFCmp,
	"constint":   ssa.OpConstInt,
	"constfloat": ssa.OpConstFloat,
	"other":      ssa.OpOther,
}

var predNames = map[string]ssa.Predicate{
	"eq":  ssa.CmpEQ,
	"ne":  ssa.CmpNE,
	"slt": ssa.CmpSLT,
	"sle": ssa.CmpSLE,
	"sgt": ssa.CmpSGT,
	"sge": ssa.CmpSGE,
	"ult": ssa.CmpULT,
	"ule": ssa.CmpULE,
	"ugt": ssa.CmpUGT,
	"uge": ssa.CmpUGE,
	"oeq": ssa.CmpOEQ,
	"one": ssa.CmpONE,
	"ueq": ssa.CmpUEQ,
	"une": ssa.CmpUNE,
	"olt": ssa.CmpOLT,
	"ole": ssa.CmpOLE,
	"ogt": ssa.CmpOGT,
	"oge": ssa.CmpOGE,
}

// Load reads and builds the function described in the YAML file at path.
func Load(path string) (*ssa.Func, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse builds a function from YAML-encoded fixture data.
func Parse(data []byte) (*ssa.Func, error) {
	var spec Func
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("fixture: %w", err)
	}
	return build(&spec)
}

func build(spec *Func) (*ssa.Func, error) {
	f := ssa.NewFunc(spec.Name)

	blocks := make(map[string]*ssa.Block, len(spec.Blocks))
	for _, bs := range spec.Blocks {
		blocks[bs.Name] = f.NewBlock(bs.Name)
	}

	values := make(map[string]*ssa.Value)
	nextValID := ssa.ID(0)

	for _, bs := range spec.Blocks {
		b := blocks[bs.Name]
		term, ok := opNames[bs.Term]
		if !ok {
			return nil, fmt.Errorf("fixture: block %s has unknown terminator %q", bs.Name, bs.Term)
		}
		b.Term = term

		for _, vs := range bs.Values {
			op, ok := opNames[vs.Op]
			if !ok {
				return nil, fmt.Errorf("fixture: block %s has unknown value opcode %q", bs.Name, vs.Op)
			}
			v := &ssa.Value{ID: nextValID, Op: op, Block: b, Name: vs.Name}
			nextValID++
			b.Values = append(b.Values, v)
			if vs.Name != "" {
				values[vs.Name] = v
			}
		}

		if bs.Cond != nil {
			cond, err := buildCond(bs.Cond, values, &nextValID, b)
			if err != nil {
				return nil, err
			}
			b.Cond = cond
			if cond.Name != "" {
				values[cond.Name] = cond
			}
		}
	}

	for _, bs := range spec.Blocks {
		b := blocks[bs.Name]
		for _, succName := range bs.Succs {
			succ, ok := blocks[succName]
			if !ok {
				return nil, fmt.Errorf("fixture: block %s has unknown successor %q", bs.Name, succName)
			}
			b.AddSucc(succ)
		}
	}

	profile := ssa.NewProfile()
	hasProfile := false
	for _, bs := range spec.Blocks {
		b := blocks[bs.Name]
		if bs.Count != nil {
			profile.SetCount(b, *bs.Count)
			hasProfile = true
		}
		for _, ep := range bs.EdgeProbs {
			profile.SetEdgeProb(b, ep.Index, ep.Num, ep.Den)
			hasProfile = true
		}
	}
	if hasProfile {
		f.Profile = profile
	}

	entry, ok := blocks[spec.Entry]
	if !ok {
		return nil, fmt.Errorf("fixture: unknown entry block %q", spec.Entry)
	}
	f.SetEntry(entry)

	return f, nil
}

func buildCond(cs *CondSpec, values map[string]*ssa.Value, nextValID *ssa.ID, owner *ssa.Block) (*ssa.Value, error) {
	pred, ok := predNames[cs.Pred]
	if !ok {
		return nil, fmt.Errorf("fixture: unknown predicate %q", cs.Pred)
	}
	op := ssa.OpICmp
	if pred.IsFloat() {
		op = ssa.OpFCmp
	}

	op1, err := resolveOperand(cs.Op1, cs.Op1C, values, nextValID, owner)
	if err != nil {
		return nil, err
	}
	op2, err := resolveOperand(cs.Op2, cs.Op2C, values, nextValID, owner)
	if err != nil {
		return nil, err
	}

	cond := &ssa.Value{ID: *nextValID, Op: op, Block: owner, Pred: pred}
	*nextValID++
	cond.Operands[0] = op1
	cond.Operands[1] = op2
	if op1 != nil {
		op1.Users = append(op1.Users, cond)
	}
	if op2 != nil {
		op2.Users = append(op2.Users, cond)
	}
	return cond, nil
}

func resolveOperand(name string, c *ConstSpec, values map[string]*ssa.Value, nextValID *ssa.ID, owner *ssa.Block) (*ssa.Value, error) {
	if c != nil {
		v := &ssa.Value{ID: *nextValID, Op: ssa.OpConstInt, IsConst: true, Negative: c.Negative, Zero: c.Zero, Name: name}
		*nextValID++
		return v, nil
	}
	if name == "" {
		return nil, nil
	}
	v, ok := values[name]
	if !ok {
		return nil, fmt.Errorf("fixture: reference to unknown operand %q", name)
	}
	return v, nil
}
