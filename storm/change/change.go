package change

import (
	"fmt"
	"math/rand"
	"time"
)

// Kind is the category of generated change. It decides
// which artifact-generation routine runs for an
// iteration.
type Kind string

// The three change kinds.
const (
	KindDocs   Kind = "docs"
	KindCode   Kind = "code"
	KindConfig Kind = "config"
)

// Weights holds the relative weight of each change kind
// in the random draw.
type Weights struct {
	Docs   int
	Code   int
	Config int
}

// DefaultWeights is the 60/30/10 docs/code/config
// distribution.
var DefaultWeights = Weights{
	Docs:   60,
	Code:   30,
	Config: 10,
}

// total returns the sum of all weights.
func (w Weights) total() int {
	return w.Docs + w.Code + w.Config
}

// DefaultTitles is the fixed pool of commit/PR titles,
// drawn uniformly per iteration.
var DefaultTitles = []string{
	"Update documentation",
	"Add usage example",
	"Tweak configuration",
	"Minor housekeeping",
	"Refresh generated content",
	"Add load-test artifact",
	"Extend examples",
	"Routine maintenance",
}

// DefaultBodies is the fixed pool of PR bodies, drawn
// uniformly per iteration.
var DefaultBodies = []string{
	"Automated change generated for PR workflow " +
		"load testing.",
	"Small generated change. Safe to merge.",
	"Part of a bulk PR generation run. No review " +
		"needed.",
}

// Source provides all randomized choices an iteration
// needs. Implementations must be deterministic under a
// fixed seed so tests can assert exact picks.
type Source interface {
	// Kind draws a change kind by weighted random
	// pick.
	Kind() Kind
	// Title draws a title uniformly from the title
	// pool.
	Title() string
	// Body draws a body uniformly from the body pool.
	Body() string
	// Suffix draws a random number used to
	// disambiguate branch and artifact names.
	Suffix() int
}

// PickerConfig configures a Picker. Zero values fall
// back to defaults.
type PickerConfig struct {
	// Rand is the random number generator. Nil means
	// a time-seeded one.
	Rand *rand.Rand
	// Weights for the kind draw. Zero total means
	// DefaultWeights.
	Weights Weights
	// Titles pool. Empty means DefaultTitles.
	Titles []string
	// Bodies pool. Empty means DefaultBodies.
	Bodies []string
}

// Picker implements Source over a math/rand generator.
type Picker struct {
	rng     *rand.Rand
	weights Weights
	titles  []string
	bodies  []string
}

// NewPicker applies defaults to cfg and returns a
// Picker.
func NewPicker(cfg PickerConfig) *Picker {
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New( //nolint:gosec // not crypto
			rand.NewSource(time.Now().UnixNano()),
		)
	}

	weights := cfg.Weights
	if weights.total() <= 0 {
		weights = DefaultWeights
	}

	titles := cfg.Titles
	if len(titles) == 0 {
		titles = DefaultTitles
	}

	bodies := cfg.Bodies
	if len(bodies) == 0 {
		bodies = DefaultBodies
	}

	return &Picker{
		rng:     rng,
		weights: weights,
		titles:  titles,
		bodies:  bodies,
	}
}

// Kind draws a change kind according to the configured
// weights.
func (p *Picker) Kind() Kind {
	n := p.rng.Intn(p.weights.total())

	switch {
	case n < p.weights.Docs:
		return KindDocs
	case n < p.weights.Docs+p.weights.Code:
		return KindCode
	default:
		return KindConfig
	}
}

// Title draws a title uniformly from the pool.
func (p *Picker) Title() string {
	return p.titles[p.rng.Intn(len(p.titles))]
}

// Body draws a body uniformly from the pool.
func (p *Picker) Body() string {
	return p.bodies[p.rng.Intn(len(p.bodies))]
}

// Suffix draws a random name-disambiguation number.
func (p *Picker) Suffix() int {
	return p.rng.Intn(100000)
}

// BranchName builds a branch name encoding the
// timestamp, a random suffix, and the change kind, so
// no two iterations collide.
func BranchName(
	prefix string,
	timestamp int64,
	suffix int,
	kind Kind,
) string {
	return fmt.Sprintf(
		"%s%d-%d-%s", prefix, timestamp, suffix, kind,
	)
}
