package predict

import "github.com/mkuehnel/superblock/internal/ssa"

// flipRule is one entry of the predicate-pair flip table used by the
// relational-consistency pass (§4.C.3): when the standard comparison
// (the earliest-priority prediction over a given operand pair) uses
// standardPred, any lower-priority branch over the same operands using
// a predicate in flips must have its prediction flipped relative to the
// standard's taken direction, separately for same-order and
// swapped-order operand pairs.
type flipRule struct {
	standard     ssa.Predicate
	sameOrder    map[ssa.Predicate]bool
	swappedOrder map[ssa.Predicate]bool
}

func predSet(preds ...ssa.Predicate) map[ssa.Predicate]bool {
	m := make(map[ssa.Predicate]bool, len(preds))
	for _, p := range preds {
		m[p] = true
	}
	return m
}

// flipTable enumerates §4.C.3's six standard-predicate rows. Predicates
// are treated uniformly whether they come from an integer or float
// comparison, matching the spec's "in either operand order" wording;
// rows with no swapped-order entry default to the same set as
// same-order (symmetric relations like = and ≠).
var flipTable = []flipRule{
	{
		standard:  ssa.CmpEQ,
		sameOrder: predSet(ssa.CmpNE, ssa.CmpSLT, ssa.CmpULT, ssa.CmpOLT, ssa.CmpUNE,
			ssa.CmpSGT, ssa.CmpUGT, ssa.CmpOGT, ssa.CmpONE, ssa.CmpUEQ),
	},
	{
		standard:  ssa.CmpNE,
		sameOrder: predSet(ssa.CmpEQ, ssa.CmpOEQ, ssa.CmpUEQ),
	},
	{
		standard:     ssa.CmpSGT,
		sameOrder:    predSet(ssa.CmpSLT, ssa.CmpULT, ssa.CmpOLT, ssa.CmpSLE, ssa.CmpULE, ssa.CmpOLE, ssa.CmpEQ, ssa.CmpOEQ, ssa.CmpUEQ),
		swappedOrder: predSet(ssa.CmpSGT, ssa.CmpUGT, ssa.CmpOGT, ssa.CmpSGE, ssa.CmpUGE, ssa.CmpOGE, ssa.CmpEQ, ssa.CmpOEQ, ssa.CmpUEQ),
	},
	{
		standard:     ssa.CmpSLT,
		sameOrder:    predSet(ssa.CmpSGT, ssa.CmpUGT, ssa.CmpOGT, ssa.CmpSGE, ssa.CmpUGE, ssa.CmpOGE, ssa.CmpEQ, ssa.CmpOEQ, ssa.CmpUEQ),
		swappedOrder: predSet(ssa.CmpSLT, ssa.CmpULT, ssa.CmpOLT, ssa.CmpSLE, ssa.CmpULE, ssa.CmpOLE, ssa.CmpEQ, ssa.CmpOEQ, ssa.CmpUEQ),
	},
	{
		standard:     ssa.CmpSGE,
		sameOrder:    predSet(ssa.CmpSLT, ssa.CmpULT, ssa.CmpOLT, ssa.CmpNE, ssa.CmpONE, ssa.CmpUNE),
		swappedOrder: predSet(ssa.CmpSGT, ssa.CmpUGT, ssa.CmpOGT, ssa.CmpNE, ssa.CmpONE, ssa.CmpUNE),
	},
	{
		standard:     ssa.CmpSLE,
		sameOrder:    predSet(ssa.CmpSGT, ssa.CmpUGT, ssa.CmpOGT, ssa.CmpNE, ssa.CmpONE, ssa.CmpUNE),
		swappedOrder: predSet(ssa.CmpSLT, ssa.CmpULT, ssa.CmpOLT, ssa.CmpNE, ssa.CmpONE, ssa.CmpUNE),
	},
}

// canonical maps a predicate onto the row it matches regardless of
// signedness/float flavor (SGT/UGT/OGT all behave as ">" for this
// table's purposes).
func canonical(p ssa.Predicate) ssa.Predicate {
	switch p {
	case ssa.CmpSGT, ssa.CmpUGT, ssa.CmpOGT:
		return ssa.CmpSGT
	case ssa.CmpSLT, ssa.CmpULT, ssa.CmpOLT:
		return ssa.CmpSLT
	case ssa.CmpSGE, ssa.CmpUGE, ssa.CmpOGE:
		return ssa.CmpSGE
	case ssa.CmpSLE, ssa.CmpULE, ssa.CmpOLE:
		return ssa.CmpSLE
	case ssa.CmpEQ, ssa.CmpOEQ, ssa.CmpUEQ:
		return ssa.CmpEQ
	case ssa.CmpNE, ssa.CmpONE, ssa.CmpUNE:
		return ssa.CmpNE
	}
	return p
}

func ruleFor(p ssa.Predicate) (flipRule, bool) {
	canon := canonical(p)
	for _, rule := range flipTable {
		if rule.standard == canon {
			return rule, true
		}
	}
	return flipRule{}, false
}

// consistencyPass implements §4.C.3: iterating predicted path branches
// in priority order, the earliest prediction over each distinct operand
// pair is the standard; every later branch sharing that operand pair
// (in either order) is flipped relative to the standard's taken
// direction when its predicate falls in the standard's flip set.
func consistencyPass(r *Result, byPriority [][]comparison) {
	settled := make(map[*ssa.Block]bool)

	for i := 0; i < len(byPriority); i++ {
		for _, standard := range byPriority[i] {
			if settled[standard.branch] {
				continue
			}
			settled[standard.branch] = true
			rule, ok := ruleFor(standard.pred)
			if !ok {
				continue
			}
			standardPrediction := r.Path[standard.branch.ID]

			for j := i + 1; j < len(byPriority); j++ {
				for _, candidate := range byPriority[j] {
					if settled[candidate.branch] {
						continue
					}
					sameOrder := ssa.SameValue(standard.op1, candidate.op1) && ssa.SameValue(standard.op2, candidate.op2)
					swapped := ssa.SameValue(standard.op1, candidate.op2) && ssa.SameValue(standard.op2, candidate.op1)
					if !sameOrder && !swapped {
						continue
					}

					flip := false
					if sameOrder && rule.sameOrder != nil {
						flip = rule.sameOrder[canonical(candidate.pred)]
					} else if swapped {
						set := rule.swappedOrder
						if set == nil {
							set = rule.sameOrder
						}
						flip = set[canonical(candidate.pred)]
					}
					if flip {
						r.Path[candidate.branch.ID] = 1 - standardPrediction
						settled[candidate.branch] = true
					}
				}
			}
		}
	}
}
