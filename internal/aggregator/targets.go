package aggregator

import (
	"sort"

	"github.com/pable/gleague-scout/internal/classify"
	"github.com/pable/gleague-scout/internal/model"
)

// Target is a classified player of the contracts table.
type Target struct {
	Row   model.StatRow
	Label string
	// Stored is the category carried by the source row, if any.
	Stored      string
	Percentiles map[string]float64
}

// Targets labels every row of pop with rs and keeps the stored category
// next to the computed one. cfg.ByGroup computes percentiles per position.
func Targets(pop model.Population, rs classify.RuleSet, cfg classify.Config) []Target {
	labelled := classify.Population(pop, rs, cfg.Stats(), cfg.PercentileOptions()...)
	out := make([]Target, 0, len(labelled))
	for i, l := range labelled {
		r := pop.Rows[i]
		out = append(out, Target{
			Row:         r,
			Label:       l.Label,
			Stored:      r.Attr(model.AttrCategory),
			Percentiles: l.Percentiles,
		})
	}
	return out
}

// Category is one bar of the category distribution.
type Category struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Distribution counts targets per computed label, in rule priority order,
// followed by any stored label the rule set does not produce.
func Distribution(rs classify.RuleSet, targets []Target) []Category {
	counts := make(map[string]int)
	for _, t := range targets {
		counts[t.Label]++
	}
	var out []Category
	seen := make(map[string]bool)
	for _, label := range rs.Labels() {
		out = append(out, Category{Label: label, Count: counts[label]})
		seen[label] = true
	}
	var extra []string
	for label := range counts {
		if !seen[label] {
			extra = append(extra, label)
		}
	}
	sort.Strings(extra)
	for _, label := range extra {
		out = append(out, Category{Label: label, Count: counts[label]})
	}
	return out
}

// Relabel returns a copy of pop whose category attribute holds the computed label.
func Relabel(pop model.Population, targets []Target) model.Population {
	labels := make(map[string]string, len(targets))
	for _, t := range targets {
		labels[t.Row.Subject] = t.Label
	}
	out := pop.Clone()
	for i := range out.Rows {
		if out.Rows[i].Attrs == nil {
			out.Rows[i].Attrs = make(map[string]string)
		}
		if l, ok := labels[out.Rows[i].Subject]; ok {
			out.Rows[i].Attrs[model.AttrCategory] = l
		}
	}
	return out
}
