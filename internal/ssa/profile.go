package ssa

import "math/big"

// Profile is the block-frequency and edge-probability analysis input
// (spec §3's "Profile map" plus on-demand edge probabilities). A block
// absent from Counts is treated as having an execution count of zero
// (spec §7's MissingProfile handling).
type Profile struct {
	Counts map[ID]uint64
	// edgeProbNum/edgeProbDen give edge (b, succIndex) probability as a
	// rational numerator/denominator pair, avoiding float drift when the
	// profile variant's threshold comparisons run on a long trace chain.
	edgeProbNum map[edgeKey]uint64
	edgeProbDen map[edgeKey]uint64
}

type edgeKey struct {
	block ID
	idx   int
}

// NewProfile builds an empty Profile ready to have counts and edge
// probabilities recorded into it.
func NewProfile() *Profile {
	return &Profile{
		Counts:      make(map[ID]uint64),
		edgeProbNum: make(map[edgeKey]uint64),
		edgeProbDen: make(map[edgeKey]uint64),
	}
}

// SetCount records b's block execution count.
func (p *Profile) SetCount(b *Block, count uint64) { p.Counts[b.ID] = count }

// SetEdgeProb records the probability of the edge leaving b at
// successor index idx, as a num/den fraction (den must be > 0).
func (p *Profile) SetEdgeProb(b *Block, idx int, num, den uint64) {
	k := edgeKey{b.ID, idx}
	p.edgeProbNum[k] = num
	p.edgeProbDen[k] = den
}

// BlockCount returns b's profile-derived execution count, or 0 if the
// profile has no entry for b (MissingProfile, spec §7).
func (p *Profile) BlockCount(b *Block) uint64 {
	if p == nil {
		return 0
	}
	return p.Counts[b.ID]
}

// EdgeProb returns the probability of b's successor-index-th outgoing
// edge being taken, as a float64 in [0, 1]. An edge with no recorded
// probability defaults to an even split across b's successors.
func (p *Profile) EdgeProb(b *Block, succIndex int) float64 {
	if p != nil {
		if den, ok := p.edgeProbDen[edgeKey{b.ID, succIndex}]; ok && den != 0 {
			num := p.edgeProbNum[edgeKey{b.ID, succIndex}]
			r := new(big.Rat).SetFrac64(int64(num), int64(den))
			f, _ := r.Float64()
			return f
		}
	}
	if len(b.Succs) == 0 {
		return 0
	}
	return 1.0 / float64(len(b.Succs))
}

// BlockCount is the Func-level convenience wrapper over f.Profile.
func (f *Func) BlockCount(b *Block) uint64 { return f.Profile.BlockCount(b) }

// EdgeProb is the Func-level convenience wrapper over f.Profile.
func (f *Func) EdgeProb(b *Block, succIndex int) float64 { return f.Profile.EdgeProb(b, succIndex) }
