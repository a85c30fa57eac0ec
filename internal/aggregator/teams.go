package aggregator

import (
	"sort"

	"github.com/pable/gleague-scout/internal/model"
	"github.com/pable/gleague-scout/internal/ranking"
)

// DefaultTeamStats are charted by default on the team overview.
var DefaultTeamStats = []string{model.StatTeamWin, model.StatTeamPts, model.StatTeamAst, model.StatTeamReb}

// Context is one selectable (season, competition) pair of the team table.
type Context struct {
	Season      int
	Competition string
}

// Contexts lists the distinct (season, competition) pairs, newest season
// first then competition alphabetically.
func Contexts(pop model.Population) []Context {
	set := make(map[Context]struct{})
	for _, r := range pop.Rows {
		set[Context{Season: r.Season, Competition: r.Competition}] = struct{}{}
	}
	out := make([]Context, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Season != out[j].Season {
			return out[i].Season > out[j].Season
		}
		return out[i].Competition < out[j].Competition
	})
	return out
}

// Frame narrows pop to one season and one competition so rows of different
// competitions never share a reference frame. An empty competition picks the
// first one of the season in Contexts order; rows without a competition
// (player tables) pass through unchanged. The chosen competition is returned.
func Frame(pop model.Population, season int, competition string) (model.Population, string) {
	if season != 0 {
		pop = pop.Season(season)
	}
	if competition == "" {
		if ctxs := Contexts(pop); len(ctxs) > 0 {
			competition = ctxs[0].Competition
		}
	}
	if competition != "" {
		pop = pop.Filter(func(r model.StatRow) bool { return r.Competition == competition })
	}
	pop.Scope.Competition = competition
	return pop, competition
}

// TeamOverview returns the teams of one season and competition ordered by
// win rate, best first. teams, when non-empty, restricts the result.
func TeamOverview(pop model.Population, season int, competition string, teams []string) model.Population {
	keep := foldSet(teams)
	sub := pop.Filter(func(r model.StatRow) bool {
		return (season == 0 || r.Season == season) &&
			(competition == "" || r.Competition == competition) &&
			inSet(keep, r.Subject)
	})
	sub.Scope.Season, sub.Scope.Competition = season, competition

	sub.Rows = Search(sub, Filter{SortBy: model.StatTeamWin, Order: ranking.Descending})
	return sub
}

// NumericStats lists the statistics with at least one value, excluding
// games played, in name order.
func NumericStats(pop model.Population) []string {
	var out []string
	for _, s := range pop.StatNames() {
		if s == model.StatTeamGP {
			continue
		}
		if len(pop.Values(s)) > 0 {
			out = append(out, s)
		}
	}
	return out
}
