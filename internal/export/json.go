package export

import (
	"encoding/json"
	"io"
	"math"

	"github.com/pable/gleague-scout/internal/aggregator"
	"github.com/pable/gleague-scout/internal/model"
)

// ProfileDoc is the JSON form of a player profile.
type ProfileDoc struct {
	Player     string              `json:"player"`
	Season     int                 `json:"season"`
	Team       string              `json:"team,omitempty"`
	Position   string              `json:"position,omitempty"`
	LeagueSize int                 `json:"league_size"`
	Stats      []StatLineDoc       `json:"stats"`
	Radar      []AxisDoc           `json:"radar"`
	Strategy   string              `json:"anchor_strategy"`
	Advanced   map[string]*float64 `json:"advanced"`
	History    []SeasonDoc         `json:"history"`
}

type StatLineDoc struct {
	Stat       string   `json:"stat"`
	Label      string   `json:"label"`
	Value      *float64 `json:"value"`
	LeagueAvg  *float64 `json:"league_avg"`
	Percentile *float64 `json:"percentile"`
	Rank       *float64 `json:"rank"`
	Position   int      `json:"position,omitempty"`
	OutOf      int      `json:"out_of"`
}

type AxisDoc struct {
	Label string   `json:"label"`
	Score *float64 `json:"score"`
	Raw   *float64 `json:"raw"`
}

type SeasonDoc struct {
	Season int                 `json:"season"`
	Team   string              `json:"team,omitempty"`
	Stats  map[string]*float64 `json:"stats"`
}

// Ptr returns nil for a null value, rounded to the precision of stat.
func Ptr(stat string, v model.Value) *float64 {
	if !v.Valid {
		return nil
	}
	return round(v.Float, Decimals(stat))
}

// Round returns nil for a null value, else v rounded to decimals.
func Round(v model.Value, decimals int) *float64 {
	if !v.Valid {
		return nil
	}
	return round(v.Float, decimals)
}

func round(f float64, decimals int) *float64 {
	p := math.Pow(10, float64(decimals))
	r := math.Round(f*p) / p
	return &r
}

// NewProfileDoc converts p.
func NewProfileDoc(p aggregator.PlayerProfile) ProfileDoc {
	doc := ProfileDoc{
		Player:     p.Subject,
		Season:     p.Season,
		Team:       p.Row.Team,
		Position:   p.Row.Attr(model.AttrPosition),
		LeagueSize: p.LeagueSize,
		Strategy:   p.Radar.Strategy.String(),
		Advanced: map[string]*float64{
			"availability":        Round(p.Advanced.Availability, VolumeDecimals),
			"points_per_minute":   Round(p.Advanced.PointsPerMinute, EfficiencyDecimals),
			"production_per_game": Round(p.Advanced.ProductionPerGame, VolumeDecimals),
		},
	}
	for _, l := range p.Lines {
		line := StatLineDoc{
			Stat:      l.Stat,
			Label:     l.Label,
			Value:     Ptr(l.Stat, l.Value),
			LeagueAvg: Ptr(l.Stat, l.LeagueAvg),
			OutOf:     l.OutOf,
		}
		if l.HasPct {
			line.Percentile = round(l.Percentile, PercentileDecimals)
		}
		if l.Rank.Ranked {
			rank := l.Rank.Rank
			line.Rank = &rank
			line.Position = l.Rank.Position
		}
		doc.Stats = append(doc.Stats, line)
	}
	for _, a := range p.Radar.Axes {
		ax := AxisDoc{Label: a.Label}
		if a.Defined {
			ax.Score = round(a.Score, VolumeDecimals)
			ax.Raw = round(a.Raw, EfficiencyDecimals)
		}
		doc.Radar = append(doc.Radar, ax)
	}
	for _, h := range p.History {
		sd := SeasonDoc{Season: h.Season, Team: h.Team, Stats: make(map[string]*float64, len(h.Stats))}
		for name, v := range h.Stats {
			sd.Stats[name] = Ptr(name, v)
		}
		doc.History = append(doc.History, sd)
	}
	return doc
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteProfileJSON writes p as indented JSON.
func WriteProfileJSON(w io.Writer, p aggregator.PlayerProfile) error {
	return WriteJSON(w, NewProfileDoc(p))
}

// GameLogDoc is the JSON form of a player's game log.
type GameLogDoc struct {
	Player      string              `json:"player"`
	Teams       []string            `json:"teams"`
	Games       int                 `json:"games"`
	First       string              `json:"first_game"`
	Last        string              `json:"last_game"`
	LeagueGames int                 `json:"league_games"`
	Averages    []GameLineDoc       `json:"averages"`
	Shooting    map[string]*float64 `json:"shooting"`
	Minutes     *float64            `json:"minutes"`
	PlusMinus   *float64            `json:"plus_minus"`
	Timeline    []TimelineDoc       `json:"timeline"`
}

type GameLineDoc struct {
	Stat       string   `json:"stat"`
	Label      string   `json:"label"`
	Mean       *float64 `json:"mean"`
	LeagueMean *float64 `json:"league_mean"`
	Delta      *float64 `json:"delta"`
	Percentile *float64 `json:"percentile"`
}

type TimelineDoc struct {
	Game    string   `json:"game_date"`
	Value   *float64 `json:"value"`
	Rolling *float64 `json:"rolling"`
}

// NewGameLogDoc converts g, with the timeline of stat averaged over window.
func NewGameLogDoc(g aggregator.GameLog, stat string, window int) GameLogDoc {
	doc := GameLogDoc{
		Player:      g.Subject,
		Teams:       g.Teams,
		Games:       g.Games.Len(),
		First:       g.First(),
		Last:        g.Last(),
		LeagueGames: g.LeagueGames,
		Shooting: map[string]*float64{
			"fg_pct":  Round(g.FG.Pct, VolumeDecimals),
			"fg3_pct": Round(g.ThreePoint.Pct, VolumeDecimals),
			"ft_pct":  Round(g.FreeThrow.Pct, VolumeDecimals),
		},
		Minutes:   Round(g.Minutes, VolumeDecimals),
		PlusMinus: Round(g.PlusMinus, VolumeDecimals),
	}
	for _, l := range g.Lines {
		line := GameLineDoc{
			Stat:       l.Stat,
			Label:      l.Label,
			Mean:       Round(l.Mean, VolumeDecimals),
			LeagueMean: Round(l.LeagueMean, VolumeDecimals),
			Delta:      Round(l.Delta(), VolumeDecimals),
		}
		if l.HasPct {
			line.Percentile = round(l.Percentile, PercentileDecimals)
		}
		doc.Averages = append(doc.Averages, line)
	}
	for _, p := range aggregator.Timeline(g.Games, stat, window) {
		doc.Timeline = append(doc.Timeline, TimelineDoc{
			Game:    p.Game,
			Value:   Ptr(stat, p.Value),
			Rolling: Round(p.Rolling, VolumeDecimals),
		})
	}
	return doc
}
