// Package percentile ranks each subject of a population against its peers.
//
// A subject's percentile is the share of its group whose value is strictly
// lower, times 100. Ties get no credit, so the best subject of a group of n
// scores 100*(n-1)/n and never 100; the sole member of a group scores 0.
package percentile

import (
	"sort"

	"github.com/pable/gleague-scout/internal/model"
)

// Result maps subject to percentile in [0,100] for one statistic.
type Result struct {
	Stat   string
	Values map[string]float64

	// Undefined lists subjects whose value was null.
	Undefined []string
}

// Get returns the percentile of subject. ok is false when the subject had a
// null value or was not part of the population.
func (r Result) Get(subject string) (float64, bool) {
	v, ok := r.Values[subject]
	return v, ok
}

// Len returns the number of subjects with a defined percentile.
func (r Result) Len() int { return len(r.Values) }

type options struct {
	byGroup bool
}

// Option configures Compute.
type Option func(*options)

// ByGroup partitions the population by StatRow.Group before counting.
func ByGroup() Option {
	return func(o *options) { o.byGroup = true }
}

// Compute returns the percentile of every subject with a non-null value for stat.
// An empty population yields an empty Result.
func Compute(pop model.Population, stat string, opts ...Option) Result {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	res := Result{Stat: stat, Values: make(map[string]float64)}

	// Bucket non-null values per group; nulls never enter a group, so they
	// neither count towards its size nor sit below anyone.
	type member struct {
		subject string
		value   float64
	}
	groups := make(map[string][]member)
	for _, r := range pop.Rows {
		v := r.Stat(stat)
		if !v.Valid {
			res.Undefined = append(res.Undefined, r.Subject)
			continue
		}
		key := ""
		if o.byGroup {
			key = r.Group
		}
		groups[key] = append(groups[key], member{subject: r.Subject, value: v.Float})
	}

	for _, members := range groups {
		n := len(members)
		sorted := make([]float64, n)
		for i, m := range members {
			sorted[i] = m.value
		}
		sort.Float64s(sorted)

		for _, m := range members {
			// SearchFloat64s returns the first index with sorted[i] >= value,
			// which is exactly the count of strictly smaller values.
			below := sort.SearchFloat64s(sorted, m.value)
			res.Values[m.subject] = 100 * float64(below) / float64(n)
		}
	}
	return res
}

// Multi computes Compute for each stat.
func Multi(pop model.Population, stats []string, opts ...Option) map[string]Result {
	out := make(map[string]Result, len(stats))
	for _, s := range stats {
		out[s] = Compute(pop, s, opts...)
	}
	return out
}

// Of returns the percentile of a single value against the population, as the
// player profile page does for a subject that may sit outside the reference
// season. ok is false when no population member has a value for stat.
func Of(pop model.Population, stat string, value float64) (float64, bool) {
	vals := pop.Values(stat)
	if len(vals) == 0 {
		return 0, false
	}
	below := 0
	for _, v := range vals {
		if v < value {
			below++
		}
	}
	return 100 * float64(below) / float64(len(vals)), true
}

// Subject returns the percentiles of one subject across stats. Stats with an
// undefined percentile are omitted.
func Subject(results map[string]Result, subject string) map[string]float64 {
	out := make(map[string]float64, len(results))
	for stat, r := range results {
		if v, ok := r.Get(subject); ok {
			out[stat] = v
		}
	}
	return out
}
