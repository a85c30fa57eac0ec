// Package classify tags subjects with a scouting category by evaluating an
// ordered rule list against their percentiles and eligibility.
//
// Rules form a priority list, not a partition: the first rule that matches
// wins, so a subject satisfying two rules takes the earlier one.
package classify

import (
	"strings"

	"github.com/pable/gleague-scout/internal/model"
	"github.com/pable/gleague-scout/internal/percentile"
)

// Reference category labels.
const (
	LabelDevelopment = "NBA Struggling / G-League Potential"
	LabelWellRounded = "Well-Rounded"
	LabelNone        = "Not a Target"
)

// Eligibility holds the categorical conditions of a subject.
type Eligibility struct {
	Status string // contract status, e.g. "Free Agent"
	Age    float64
	HasAge bool
}

// Input is everything a rule may look at.
type Input struct {
	Subject     string
	Percentiles map[string]float64 // undefined percentiles are absent
	Eligibility Eligibility
}

// Band is an inclusive percentile interval.
type Band struct {
	Lo, Hi float64
}

// Contains reports whether v lies in [Lo, Hi].
func (b Band) Contains(v float64) bool { return v >= b.Lo && v <= b.Hi }

// Predicate is one condition of a rule.
type Predicate func(Input) bool

// Rule assigns Label when Match holds.
type Rule struct {
	Label string
	Match Predicate
}

// RuleSet is an ordered rule list with a fallback label.
type RuleSet struct {
	Rules   []Rule
	Default string
}

// Classify returns the label of the first matching rule, or Default.
func (rs RuleSet) Classify(in Input) string {
	for _, r := range rs.Rules {
		if r.Match != nil && r.Match(in) {
			return r.Label
		}
	}
	return rs.Default
}

// Labels returns every label the rule set can produce, in priority order.
func (rs RuleSet) Labels() []string {
	out := make([]string, 0, len(rs.Rules)+1)
	for _, r := range rs.Rules {
		out = append(out, r.Label)
	}
	return append(out, rs.Default)
}

// ---- Predicates ----

// AnyIn holds when at least one of stats has a defined percentile in band.
func AnyIn(stats []string, band Band) Predicate {
	return func(in Input) bool {
		for _, s := range stats {
			if v, ok := in.Percentiles[s]; ok && band.Contains(v) {
				return true
			}
		}
		return false
	}
}

// AllIn holds when every one of stats has a defined percentile in band.
// An undefined percentile fails the predicate.
func AllIn(stats []string, band Band) Predicate {
	return func(in Input) bool {
		if len(stats) == 0 {
			return false
		}
		for _, s := range stats {
			v, ok := in.Percentiles[s]
			if !ok || !band.Contains(v) {
				return false
			}
		}
		return true
	}
}

// StatusIn holds when the subject's status contains one of statuses
// (case-insensitive), so "Free Agent (2025)" counts as "Free Agent".
func StatusIn(statuses []string) Predicate {
	return func(in Input) bool {
		st := strings.ToLower(in.Eligibility.Status)
		for _, s := range statuses {
			if s != "" && strings.Contains(st, strings.ToLower(s)) {
				return true
			}
		}
		return false
	}
}

// AgeAtMost holds when the subject has a known age of at most max.
func AgeAtMost(max float64) Predicate {
	return func(in Input) bool {
		return in.Eligibility.HasAge && in.Eligibility.Age <= max
	}
}

// And holds when every predicate holds.
func And(ps ...Predicate) Predicate {
	return func(in Input) bool {
		for _, p := range ps {
			if !p(in) {
				return false
			}
		}
		return true
	}
}

// ---- Reference configuration ----

// Config parameterises the reference rule set.
type Config struct {
	TrackedStats      []string
	EfficiencyStat    string
	AvailableStatuses []string
	MaxAge            float64
	WeakBand          Band
	AverageBand       Band

	// ByGroup ranks each player against its StatRow.Group (position)
	// instead of the whole season.
	ByGroup bool
}

// DefaultConfig mirrors the contract-targets table.
func DefaultConfig() Config {
	return Config{
		TrackedStats:      []string{model.StatPts, model.StatTrb, model.StatAst},
		EfficiencyStat:    model.StatTSPct,
		AvailableStatuses: []string{"Free Agent", "Uncontracted", "Expiring"},
		MaxAge:            27,
		WeakBand:          Band{Lo: 0, Hi: 25},
		AverageBand:       Band{Lo: 25, Hi: 75},
	}
}

// ReferenceRules builds the development-target / well-rounded rule list.
func ReferenceRules(cfg Config) RuleSet {
	eligible := And(StatusIn(cfg.AvailableStatuses), AgeAtMost(cfg.MaxAge))
	return RuleSet{
		Rules: []Rule{
			{
				Label: LabelDevelopment,
				Match: And(AnyIn(cfg.TrackedStats, cfg.WeakBand), eligible),
			},
			{
				Label: LabelWellRounded,
				Match: And(
					AllIn(cfg.TrackedStats, cfg.AverageBand),
					AllIn([]string{cfg.EfficiencyStat}, cfg.AverageBand),
					eligible,
				),
			},
		},
		Default: LabelNone,
	}
}

// Stats returns the statistics whose percentiles the reference rules read.
func (c Config) Stats() []string {
	out := append([]string(nil), c.TrackedStats...)
	if c.EfficiencyStat != "" {
		out = append(out, c.EfficiencyStat)
	}
	return out
}

// PercentileOptions returns the percentile options implied by c.
func (c Config) PercentileOptions() []percentile.Option {
	if c.ByGroup {
		return []percentile.Option{percentile.ByGroup()}
	}
	return nil
}

// EligibilityOf reads status and age from a target row.
func EligibilityOf(r model.StatRow) Eligibility {
	e := Eligibility{Status: r.Attr(model.AttrContractStatus)}
	if age := r.Stat(model.StatAge); age.Valid {
		e.Age, e.HasAge = age.Float, true
	}
	return e
}

// Labelled is one subject's classification.
type Labelled struct {
	Subject     string
	Label       string
	Percentiles map[string]float64
}

// Population classifies every row of pop. Percentiles of stats are computed
// against pop itself, or within each group when opts include ByGroup.
func Population(pop model.Population, rs RuleSet, stats []string, opts ...percentile.Option) []Labelled {
	if pop.Empty() {
		return nil
	}
	results := percentile.Multi(pop, stats, opts...)
	out := make([]Labelled, 0, pop.Len())
	for _, r := range pop.Rows {
		in := Input{
			Subject:     r.Subject,
			Percentiles: percentile.Subject(results, r.Subject),
			Eligibility: EligibilityOf(r),
		}
		out = append(out, Labelled{Subject: r.Subject, Label: rs.Classify(in), Percentiles: in.Percentiles})
	}
	return out
}

// Counts tallies labels in priority order of rs.
func Counts(rs RuleSet, labelled []Labelled) map[string]int {
	out := make(map[string]int, len(rs.Rules)+1)
	for _, l := range rs.Labels() {
		out[l] = 0
	}
	for _, l := range labelled {
		out[l.Label]++
	}
	return out
}
