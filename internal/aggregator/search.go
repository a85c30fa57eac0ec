package aggregator

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pable/gleague-scout/internal/classify"
	"github.com/pable/gleague-scout/internal/model"
	"github.com/pable/gleague-scout/internal/ranking"
)

// Range is an inclusive numeric bound on a statistic. A zero Range
// accepts everything, including null values.
type Range struct {
	Lo, Hi       float64
	HasLo, HasHi bool
}

// Active reports whether the range constrains anything.
func (r Range) Active() bool { return r.HasLo || r.HasHi }

// Contains reports whether v satisfies the range. Null never satisfies an
// active range.
func (r Range) Contains(v model.Value) bool {
	if !r.Active() {
		return true
	}
	if !v.Valid {
		return false
	}
	if r.HasLo && v.Float < r.Lo {
		return false
	}
	if r.HasHi && v.Float > r.Hi {
		return false
	}
	return true
}

// ParseRange accepts "lo-hi", "lo-", "-hi", "lo:hi" or a single value.
// Bounds are non-negative; a leading "-" opens the lower bound.
func ParseRange(s string) (Range, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Range{}, nil
	}
	sep := strings.IndexAny(s, "-:")
	if sep < 0 {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Range{}, fmt.Errorf("bad range %q", s)
		}
		return Range{Lo: v, Hi: v, HasLo: true, HasHi: true}, nil
	}
	var r Range
	if lo := strings.TrimSpace(s[:sep]); lo != "" {
		v, err := strconv.ParseFloat(lo, 64)
		if err != nil {
			return Range{}, fmt.Errorf("bad range lower bound %q", lo)
		}
		r.Lo, r.HasLo = v, true
	}
	if hi := strings.TrimSpace(s[sep+1:]); hi != "" {
		v, err := strconv.ParseFloat(hi, 64)
		if err != nil {
			return Range{}, fmt.Errorf("bad range upper bound %q", hi)
		}
		r.Hi, r.HasHi = v, true
	}
	if r.HasLo && r.HasHi && r.Lo > r.Hi {
		return Range{}, fmt.Errorf("bad range %q: lower bound above upper bound", s)
	}
	return r, nil
}

// Filter is the player search form.
type Filter struct {
	Name       string   // case-insensitive substring of the subject
	Categories []string // g_league_category values
	Positions  []string
	Statuses   []string // contract_status values
	Teams      []string
	Ranges     map[string]Range // per statistic

	SortBy string
	Order  ranking.Order
	Limit  int
}

// Search returns the rows of pop matching f, sorted by f.SortBy when set.
// Rows with a null sort value go last.
func Search(pop model.Population, f Filter) []model.StatRow {
	cats := foldSet(f.Categories)
	pos := foldSet(f.Positions)
	statuses := foldSet(f.Statuses)
	teams := foldSet(f.Teams)
	name := strings.ToLower(strings.TrimSpace(f.Name))

	var out []model.StatRow
	for _, r := range pop.Rows {
		if name != "" && !strings.Contains(strings.ToLower(r.Subject), name) {
			continue
		}
		if !inSet(cats, r.Attr(model.AttrCategory)) ||
			!inSet(pos, positionOf(r)) ||
			!inSet(statuses, r.Attr(model.AttrContractStatus)) ||
			!inSet(teams, r.Team) {
			continue
		}
		ok := true
		for stat, rg := range f.Ranges {
			if !rg.Contains(r.Stat(stat)) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, r)
		}
	}

	switch f.SortBy {
	case "":
	case SortSubject:
		sort.SliceStable(out, func(i, j int) bool {
			if f.Order == ranking.Descending {
				return out[i].Subject > out[j].Subject
			}
			return out[i].Subject < out[j].Subject
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i].Stat(f.SortBy), out[j].Stat(f.SortBy)
			switch {
			case a.Valid != b.Valid:
				return a.Valid
			case !a.Valid:
				return false
			case f.Order == ranking.Ascending:
				return a.Float < b.Float
			default:
				return a.Float > b.Float
			}
		})
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

// Options lists the distinct values of a categorical attribute, sorted.
func Options(pop model.Population, attr string) []string {
	set := make(map[string]struct{})
	for _, r := range pop.Rows {
		v := r.Attr(attr)
		if attr == model.AttrPosition {
			v = positionOf(r)
		}
		if v != "" {
			set[v] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func positionOf(r model.StatRow) string {
	if p := r.Attr(model.AttrPosition); p != "" {
		return p
	}
	return r.Group
}

func foldSet(in []string) map[string]bool {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]bool, len(in))
	for _, s := range in {
		out[strings.ToLower(strings.TrimSpace(s))] = true
	}
	return out
}

func inSet(set map[string]bool, v string) bool {
	return set == nil || set[strings.ToLower(v)]
}

// SortSubject sorts search results by subject name instead of a statistic.
const SortSubject = "player"

// SignableStatuses are the contract statuses the search summary counts as
// available. Narrower than the classification statuses: an expiring deal
// is not signable yet.
var SignableStatuses = []string{"Free Agent", "Uncontracted"}

// Summary is the header line of a search result.
type Summary struct {
	Found       int
	AvgAge      model.Value
	Available   int
	Development int
}

// Summarize counts the results, their mean age, how many have one of
// availableStatuses (usually SignableStatuses) and how many carry the
// development category.
func Summarize(rows []model.StatRow, availableStatuses []string) Summary {
	s := Summary{Found: len(rows)}
	var ageSum float64
	var ages int
	for _, r := range rows {
		if a := r.Stat(model.StatAge); a.Valid {
			ageSum += a.Float
			ages++
		}
		status := strings.ToLower(r.Attr(model.AttrContractStatus))
		for _, want := range availableStatuses {
			if want != "" && strings.Contains(status, strings.ToLower(want)) {
				s.Available++
				break
			}
		}
		if r.Attr(model.AttrCategory) == classify.LabelDevelopment {
			s.Development++
		}
	}
	if ages > 0 {
		s.AvgAge = model.Num(ageSum / float64(ages))
	}
	return s
}

// CountBy tallies rows by a categorical attribute, most frequent first.
func CountBy(rows []model.StatRow, attr string) []Category {
	counts := make(map[string]int)
	for _, r := range rows {
		v := r.Attr(attr)
		if v == "" {
			v = "Unknown"
		}
		counts[v]++
	}
	out := make([]Category, 0, len(counts))
	for label, n := range counts {
		out = append(out, Category{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}
