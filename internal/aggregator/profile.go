// Package aggregator combines the statistic engines into the views a scout
// reads: player profiles, filtered searches, comparisons and team overviews.
package aggregator

import (
	"fmt"
	"sort"

	"github.com/pable/gleague-scout/internal/model"
	"github.com/pable/gleague-scout/internal/normalize"
	"github.com/pable/gleague-scout/internal/percentile"
	"github.com/pable/gleague-scout/internal/ranking"
)

// KeyStat is a statistic shown on the profile page.
type KeyStat struct {
	Stat  string
	Label string
}

// DefaultKeyStats are the per-game lines of the profile page.
var DefaultKeyStats = []KeyStat{
	{Stat: model.StatPointsPerGame, Label: "Points/Game"},
	{Stat: model.StatReboundsPerGame, Label: "Rebounds/Game"},
	{Stat: model.StatAssistsPerGame, Label: "Assists/Game"},
}

// StatLine is one key statistic against the season league.
type StatLine struct {
	KeyStat
	Value      model.Value
	LeagueAvg  model.Value
	Percentile float64
	HasPct     bool
	Rank       ranking.Entry
	// OutOf is the number of ranked players, those with a value.
	OutOf int
}

// Delta returns value minus league average, or null if either is missing.
func (l StatLine) Delta() model.Value {
	if !l.Value.Valid || !l.LeagueAvg.Valid {
		return model.Null()
	}
	return model.Num(l.Value.Float - l.LeagueAvg.Float)
}

// Advanced holds the derived metrics of a player season.
type Advanced struct {
	// Availability is games played as a percentage of the league max.
	Availability model.Value
	// PointsPerMinute assumes a fixed number of minutes per game.
	PointsPerMinute   model.Value
	ProductionPerGame model.Value
}

// PlayerProfile is everything the profile page shows for one player season.
type PlayerProfile struct {
	Subject    string
	Season     int
	Row        model.StatRow
	Lines      []StatLine
	Radar      normalize.Profile
	Advanced   Advanced
	History    []model.StatRow // every season of the player, newest first
	LeagueSize int
}

// ProfileOptions tunes BuildPlayerProfile.
type ProfileOptions struct {
	KeyStats       []KeyStat
	Dimensions     []normalize.Dimension
	Strategy       normalize.Strategy
	MinutesPerGame float64

	// ByGroup quotes key stat percentiles against players of the same
	// position. Ranks and the radar stay league-wide.
	ByGroup bool
}

// DefaultProfileOptions returns the reference profile settings.
func DefaultProfileOptions() ProfileOptions {
	return ProfileOptions{
		KeyStats:       DefaultKeyStats,
		Dimensions:     normalize.DefaultDimensions(normalize.DefaultGamesCap),
		Strategy:       normalize.MinMeanMax,
		MinutesPerGame: 25,
	}
}

// BuildPlayerProfile profiles subject in season against that season's
// league. Season 0 selects the player's latest season.
func BuildPlayerProfile(all model.Population, subject string, season int, opts ProfileOptions) (PlayerProfile, error) {
	if all.Empty() {
		return PlayerProfile{}, normalize.ErrEmptyPopulation
	}
	history := all.Filter(func(r model.StatRow) bool { return r.Subject == subject })
	if history.Empty() {
		return PlayerProfile{}, fmt.Errorf("%w: %s", normalize.ErrUnknownSubject, subject)
	}
	if season == 0 {
		season = history.Seasons()[0]
	}
	league := all.Season(season)
	row, ok := league.Find(subject)
	if !ok {
		return PlayerProfile{}, fmt.Errorf("%w: %s in season %d", normalize.ErrUnknownSubject, subject, season)
	}

	radar, err := normalize.BuildProfile(league, row, opts.Dimensions, opts.Strategy)
	if err != nil {
		return PlayerProfile{}, err
	}

	p := PlayerProfile{
		Subject:    subject,
		Season:     season,
		Row:        row,
		Radar:      radar,
		Advanced:   AdvancedMetrics(league, row, opts.MinutesPerGame),
		History:    sortedHistory(history.Rows),
		LeagueSize: league.Len(),
	}
	var pctOpts []percentile.Option
	if opts.ByGroup {
		pctOpts = append(pctOpts, percentile.ByGroup())
	}
	for _, ks := range opts.KeyStats {
		line := StatLine{KeyStat: ks, Value: row.Stat(ks.Stat)}
		if avg, ok := league.Mean(ks.Stat); ok {
			line.LeagueAvg = model.Num(avg)
		}
		line.Percentile, line.HasPct = percentile.Compute(league, ks.Stat, pctOpts...).Get(subject)
		ranked := ranking.Rank(league, ks.Stat, ranking.Descending)
		line.Rank, _ = ranked.Get(subject)
		line.OutOf = ranked.Size
		p.Lines = append(p.Lines, line)
	}
	return p, nil
}

// AdvancedMetrics derives availability, points per estimated minute and
// production per game for row within league.
func AdvancedMetrics(league model.Population, row model.StatRow, minutesPerGame float64) Advanced {
	var a Advanced
	gp := row.Stat(model.StatGamesPlayed)

	maxGP := 0.0
	for _, v := range league.Values(model.StatGamesPlayed) {
		if v > maxGP {
			maxGP = v
		}
	}
	if gp.Valid && maxGP > 0 {
		a.Availability = model.Num(gp.Float / maxGP * 100)
	}

	pts := row.Stat(model.StatTotalPoints)
	if gp.Valid && pts.Valid && minutesPerGame > 0 && gp.Float > 0 {
		a.PointsPerMinute = model.Num(pts.Float / (gp.Float * minutesPerGame))
	}
	a.ProductionPerGame = model.ProductionPerGame(row)
	return a
}

func sortedHistory(rows []model.StatRow) []model.StatRow {
	out := make([]model.StatRow, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Season > out[j].Season })
	return out
}
