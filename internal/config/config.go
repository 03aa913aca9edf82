// Package config holds the enumerated run configuration (§6) for a
// superblock-formation run: the trace-former variant, its thresholds,
// the random engine's seed, and feature-extraction output settings.
// Built with functional options in the style the rest of the pack uses
// for optional run configuration.
package config

// Variant selects the trace-former's seeding and growth policy.
type Variant int

const (
	VariantProfile Variant = iota
	VariantRandom
	VariantHeuristic
)

func (v Variant) String() string {
	switch v {
	case VariantProfile:
		return "profile"
	case VariantRandom:
		return "random"
	case VariantHeuristic:
		return "heuristic"
	default:
		return "unknown"
	}
}

// ParseVariant maps a CLI/config string onto a Variant.
func ParseVariant(s string) (Variant, bool) {
	switch s {
	case "profile":
		return VariantProfile, true
	case "random":
		return VariantRandom, true
	case "heuristic":
		return VariantHeuristic, true
	default:
		return 0, false
	}
}

// Config is one run's configuration. Construct with New and Options.
type Config struct {
	Variant Variant

	// ProbabilityThreshold gates the profile variant's forward growth:
	// an edge is followed only if its probability exceeds this value.
	ProbabilityThreshold float64
	// PredecessorThreshold gates the profile variant's backward growth,
	// applied to the count(pred)*prob(pred->cur)/count(cur) fraction.
	PredecessorThreshold float64

	// RNGSeed records the seed for the random variant's growth engine
	// and the heuristic variant's tie-breaking random choice. trace.Form
	// takes its seed as a separate argument and does not read this field.
	RNGSeed uint64

	EmitFeatures bool
	CSVPath      string
}

// Option mutates a Config under construction.
type Option func(*Config)

// WithVariant sets the trace-former variant.
func WithVariant(v Variant) Option {
	return func(c *Config) { c.Variant = v }
}

// WithProbabilityThreshold overrides the profile variant's forward
// growth threshold (default 0.60).
func WithProbabilityThreshold(t float64) Option {
	return func(c *Config) { c.ProbabilityThreshold = t }
}

// WithPredecessorThreshold overrides the profile variant's backward
// growth threshold (default 0.60).
func WithPredecessorThreshold(t float64) Option {
	return func(c *Config) { c.PredecessorThreshold = t }
}

// WithRNGSeed seeds the random engine deterministically.
func WithRNGSeed(seed uint64) Option {
	return func(c *Config) { c.RNGSeed = seed }
}

// WithFeatures enables feature-row emission to path.
func WithFeatures(path string) Option {
	return func(c *Config) {
		c.EmitFeatures = true
		c.CSVPath = path
	}
}

// New builds a Config with the spec's defaults (profile variant,
// 0.60/0.60 thresholds), then applies opts in order.
func New(opts ...Option) *Config {
	c := &Config{
		Variant:              VariantProfile,
		ProbabilityThreshold: 0.60,
		PredecessorThreshold: 0.60,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
