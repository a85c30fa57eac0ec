package aggregator

import (
	"fmt"

	"github.com/pable/gleague-scout/internal/model"
	"github.com/pable/gleague-scout/internal/normalize"
)

// DefaultCompareStats are the statistics of the head-to-head view.
var DefaultCompareStats = []KeyStat{
	{Stat: model.StatPointsPerGame, Label: "Points/Game"},
	{Stat: model.StatReboundsPerGame, Label: "Rebounds/Game"},
	{Stat: model.StatAssistsPerGame, Label: "Assists/Game"},
	{Stat: model.StatGamesPlayed, Label: "Games Played"},
}

// Comparison puts two subjects of one season side by side.
type Comparison struct {
	Season int
	Left   model.StatRow
	Right  model.StatRow
	Stats  []KeyStat
}

// Value returns the left and right values of stat i.
func (c Comparison) Value(i int) (model.Value, model.Value) {
	s := c.Stats[i].Stat
	return c.Left.Stat(s), c.Right.Stat(s)
}

// Compare looks both subjects up in the given season of pop.
func Compare(pop model.Population, left, right string, season int, stats []KeyStat) (Comparison, error) {
	if len(stats) == 0 {
		stats = DefaultCompareStats
	}
	league := pop
	if season != 0 {
		league = pop.Season(season)
	}
	if league.Empty() {
		return Comparison{}, normalize.ErrEmptyPopulation
	}
	l, ok := league.Find(left)
	if !ok {
		return Comparison{}, fmt.Errorf("%w: %s in season %d", normalize.ErrUnknownSubject, left, season)
	}
	r, ok := league.Find(right)
	if !ok {
		return Comparison{}, fmt.Errorf("%w: %s in season %d", normalize.ErrUnknownSubject, right, season)
	}
	return Comparison{Season: season, Left: l, Right: r, Stats: stats}, nil
}
