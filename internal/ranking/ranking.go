// Package ranking orders a population by one statistic.
//
// Ties use fractional ranking: tied subjects share the mean of the positions
// they occupy (values 30, 20, 20, 10 rank 1, 2.5, 2.5, 4). Position carries
// the competition rank of the same order (1, 2, 2, 4) for "#K of N" display.
// Subjects with a null value are listed last, unranked, and never shift the
// ranks of valued subjects.
package ranking

import (
	"sort"
	"strings"

	"github.com/pable/gleague-scout/internal/model"
)

// Order is the sort direction. Descending ("more is better") is the default.
type Order int

const (
	Descending Order = iota
	Ascending
)

func (o Order) String() string {
	if o == Ascending {
		return "asc"
	}
	return "desc"
}

// ParseOrder accepts asc/ascending and desc/descending (case-insensitive).
func ParseOrder(s string) Order {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending":
		return Ascending
	default:
		return Descending
	}
}

// Entry is one subject's place in a ranking.
type Entry struct {
	Subject  string
	Value    model.Value
	Rank     float64 // fractional rank, 0 when unranked
	Position int     // competition rank, 0 when unranked
	Ranked   bool
}

// Result is a full ranking.
type Result struct {
	Stat    string
	Order   Order
	Entries []Entry // ranked entries first, in rank order; then unranked

	// Size is the number of ranked subjects (the N of "#K of N").
	Size int
	// Total is the population size including unranked subjects.
	Total int
}

// Get returns subject's entry.
func (r Result) Get(subject string) (Entry, bool) {
	for _, e := range r.Entries {
		if e.Subject == subject {
			return e, true
		}
	}
	return Entry{}, false
}

// Top returns at most n ranked entries.
func (r Result) Top(n int) []Entry {
	if n <= 0 || n > r.Size {
		n = r.Size
	}
	return r.Entries[:n]
}

// Rank ranks pop by stat. An empty population yields an empty Result.
func Rank(pop model.Population, stat string, order Order) Result {
	res := Result{Stat: stat, Order: order, Total: pop.Len()}

	var ranked, unranked []Entry
	for _, r := range pop.Rows {
		v := r.Stat(stat)
		e := Entry{Subject: r.Subject, Value: v}
		if v.Valid {
			ranked = append(ranked, e)
		} else {
			unranked = append(unranked, e)
		}
	}

	// Subject name breaks ties so output order is stable across runs.
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i].Value.Float, ranked[j].Value.Float
		if a != b {
			if order == Ascending {
				return a < b
			}
			return a > b
		}
		return ranked[i].Subject < ranked[j].Subject
	})

	for i := 0; i < len(ranked); {
		j := i
		for j+1 < len(ranked) && ranked[j+1].Value.Float == ranked[i].Value.Float {
			j++
		}
		// Positions i..j (0-based) are tied: mean of i+1..j+1.
		frac := float64(i+1+j+1) / 2
		for k := i; k <= j; k++ {
			ranked[k].Rank = frac
			ranked[k].Position = i + 1
			ranked[k].Ranked = true
		}
		i = j + 1
	}

	sort.SliceStable(unranked, func(i, j int) bool { return unranked[i].Subject < unranked[j].Subject })

	res.Size = len(ranked)
	res.Entries = append(ranked, unranked...)
	return res
}
