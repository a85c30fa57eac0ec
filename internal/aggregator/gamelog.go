package aggregator

import (
	"fmt"
	"sort"
	"time"

	"github.com/pable/gleague-scout/internal/model"
	"github.com/pable/gleague-scout/internal/normalize"
	"github.com/pable/gleague-scout/internal/percentile"
)

// DefaultWindow is the rolling-average window of the game timeline.
const DefaultWindow = 5

// GameMetrics are the box-score lines of the game log page.
var GameMetrics = []KeyStat{
	{Stat: model.StatPoints, Label: "Points"},
	{Stat: model.StatRebounds, Label: "Rebounds"},
	{Stat: model.StatAssists, Label: "Assists"},
	{Stat: model.StatSteals, Label: "Steals"},
	{Stat: model.StatBlocks, Label: "Blocks"},
	{Stat: model.StatFGM, Label: "FG Made"},
	{Stat: model.StatEfficiency, Label: "Efficiency"},
}

// GameFilter narrows the games of a log. Zero fields do not filter.
type GameFilter struct {
	Season int
	Team   string
	From   time.Time
	To     time.Time
	// Last keeps only the most recent games after the other filters.
	Last int
}

func (f GameFilter) inWindow(r model.StatRow) bool {
	if f.Season != 0 && r.Season != f.Season {
		return false
	}
	if f.From.IsZero() && f.To.IsZero() {
		return true
	}
	d, err := time.Parse(time.DateOnly, r.Game)
	if err != nil {
		return false
	}
	if !f.From.IsZero() && d.Before(f.From) {
		return false
	}
	return f.To.IsZero() || !d.After(f.To)
}

// GameLine is one metric averaged over the player's games.
type GameLine struct {
	KeyStat
	Mean       model.Value
	LeagueMean model.Value
	// Percentile places Mean among every game in the window.
	Percentile float64
	HasPct     bool
}

// Delta returns mean minus league mean, or null if either is missing.
func (l GameLine) Delta() model.Value {
	if !l.Mean.Valid || !l.LeagueMean.Valid {
		return model.Null()
	}
	return model.Num(l.Mean.Float - l.LeagueMean.Float)
}

// Shooting is a made/attempted percentage over summed games.
type Shooting struct {
	Made, Attempted float64
	Pct             model.Value
}

func shooting(games model.Population, made, attempted string) Shooting {
	var s Shooting
	for _, v := range games.Values(made) {
		s.Made += v
	}
	for _, v := range games.Values(attempted) {
		s.Attempted += v
	}
	if s.Attempted > 0 {
		s.Pct = model.Num(s.Made / s.Attempted * 100)
	}
	return s
}

// GameLog is the per-game page of one player.
type GameLog struct {
	Subject    string
	Games      model.Population // oldest first
	Teams      []string
	Lines      []GameLine
	FG         Shooting
	ThreePoint Shooting
	FreeThrow  Shooting
	Minutes    model.Value
	PlusMinus  model.Value
	// LeagueGames counts every game row in the window.
	LeagueGames int
}

// First and Last return the dates of the oldest and newest game.
func (g GameLog) First() string { return g.Games.Rows[0].Game }
func (g GameLog) Last() string { return g.Games.Rows[g.Games.Len()-1].Game }

// WithEfficiency returns a copy of pop where every row missing an
// efficiency value gets one derived from its box score.
func WithEfficiency(pop model.Population) model.Population {
	out := pop.Clone()
	for i := range out.Rows {
		r := &out.Rows[i]
		if _, ok := r.Stats[model.StatEfficiency]; ok {
			continue
		}
		if r.Stats == nil {
			r.Stats = make(map[string]model.Value)
		}
		r.Stats[model.StatEfficiency] = model.Efficiency(*r)
	}
	return out
}

// PlayerGames returns the games of subject that pass f, oldest first.
func PlayerGames(all model.Population, subject string, f GameFilter) (model.Population, error) {
	if all.Empty() {
		return model.Population{}, normalize.ErrEmptyPopulation
	}
	mine := all.Filter(func(r model.StatRow) bool { return r.Subject == subject })
	if mine.Empty() {
		return model.Population{}, fmt.Errorf("%w: %s", normalize.ErrUnknownSubject, subject)
	}
	games := mine.Filter(func(r model.StatRow) bool {
		return f.inWindow(r) && (f.Team == "" || r.Team == f.Team)
	})
	games = WithEfficiency(games)
	sort.SliceStable(games.Rows, func(i, j int) bool { return games.Rows[i].Game < games.Rows[j].Game })
	if f.Last > 0 && games.Len() > f.Last {
		games.Rows = games.Rows[games.Len()-f.Last:]
	}
	return games, nil
}

// BuildGameLog averages the games of subject and compares them with every
// game in the same date window. The team filter applies to the player only.
func BuildGameLog(all model.Population, subject string, f GameFilter, metrics []KeyStat) (GameLog, error) {
	games, err := PlayerGames(all, subject, f)
	if err != nil {
		return GameLog{}, err
	}
	if games.Empty() {
		return GameLog{}, fmt.Errorf("%w: %s has no games in the selected window", normalize.ErrUnknownSubject, subject)
	}
	league := WithEfficiency(all.Filter(f.inWindow))

	g := GameLog{
		Subject:     subject,
		Games:       games,
		FG:          shooting(games, model.StatFGM, model.StatFGA),
		ThreePoint:  shooting(games, model.Stat3PM, model.Stat3PA),
		FreeThrow:   shooting(games, model.StatFTM, model.StatFTA),
		LeagueGames: league.Len(),
	}
	seen := map[string]bool{}
	for _, r := range games.Rows {
		if r.Team != "" && !seen[r.Team] {
			seen[r.Team] = true
			g.Teams = append(g.Teams, r.Team)
		}
	}
	if m, ok := games.Mean(model.StatMinutes); ok {
		g.Minutes = model.Num(m)
	}
	if m, ok := games.Mean(model.StatPlusMinus); ok {
		g.PlusMinus = model.Num(m)
	}
	for _, ks := range metrics {
		line := GameLine{KeyStat: ks}
		if m, ok := games.Mean(ks.Stat); ok {
			line.Mean = model.Num(m)
			line.Percentile, line.HasPct = percentile.Of(league, ks.Stat, m)
		}
		if m, ok := league.Mean(ks.Stat); ok {
			line.LeagueMean = model.Num(m)
		}
		g.Lines = append(g.Lines, line)
	}
	return g, nil
}

// TimelinePoint is one game of a metric timeline.
type TimelinePoint struct {
	Game    string
	Value   model.Value
	Rolling model.Value
}

// Timeline returns stat per game with its rolling mean over the last window
// games. Games with no value are skipped by the mean but keep their slot, and
// the mean needs only one value, so the first games average what there is.
func Timeline(games model.Population, stat string, window int) []TimelinePoint {
	if window < 1 {
		window = 1
	}
	out := make([]TimelinePoint, games.Len())
	for i, r := range games.Rows {
		out[i] = TimelinePoint{Game: r.Game, Value: r.Stat(stat)}
		var sum float64
		n := 0
		for j := max(0, i-window+1); j <= i; j++ {
			if v := games.Rows[j].Stat(stat); v.Valid {
				sum += v.Float
				n++
			}
		}
		if n > 0 {
			out[i].Rolling = model.Num(sum / float64(n))
		}
	}
	return out
}
