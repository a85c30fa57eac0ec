package model

import (
	"fmt"
	"math"
	"sort"
)

// Kind identifies which gold table a population is drawn from.
type Kind int

const (
	KindUnknown Kind = 0
	KindPlayers Kind = 1 // player_stats_gold: one row per (player, season)
	KindTargets Kind = 2 // player_contracts_gold: NBA players with contract status
	KindTeams   Kind = 3 // gold_team_stats_all: one row per (team, season, competition)
	KindGames   Kind = 4 // player game logs: one row per (player, game date)
)

func (k Kind) String() string {
	switch k {
	case KindPlayers:
		return "players"
	case KindTargets:
		return "targets"
	case KindTeams:
		return "teams"
	case KindGames:
		return "games"
	default:
		return "?"
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "players", "player":
		return KindPlayers, nil
	case "targets", "target", "contracts":
		return KindTargets, nil
	case "teams", "team":
		return KindTeams, nil
	case "games", "game", "gamelog":
		return KindGames, nil
	default:
		return KindUnknown, fmt.Errorf("unknown dataset kind %q (want players, targets, teams or games)", s)
	}
}

// ---- Statistic names ----

// Player season statistics (player_stats_gold).
const (
	StatPointsPerGame   = "points_per_game"
	StatReboundsPerGame = "rebounds_per_game"
	StatAssistsPerGame  = "assists_per_game"
	StatGamesPlayed     = "games_played"
	StatTotalPoints     = "total_points"
	StatTotalRebounds   = "total_rebounds"
	StatTotalAssists    = "total_assists"
)

// Target statistics (player_contracts_gold).
const (
	StatPts   = "pts"
	StatTrb   = "trb"
	StatAst   = "ast"
	StatTSPct = "ts_pct"
	StatAge   = "age"
)

// Team statistics (gold_team_stats_all). Only the columns the tool ranks by
// default; any other numeric column loaded from the warehouse is kept too.
const (
	StatTeamGP   = "gp"
	StatTeamWins = "w"
	StatTeamWin  = "win"
	StatTeamPts  = "pts"
	StatTeamReb  = "reb"
	StatTeamAst  = "ast"
)

// Game-log statistics, one value per player game.
const (
	StatPoints     = "points"
	StatRebounds   = "rebounds"
	StatAssists    = "assists"
	StatSteals     = "steals"
	StatBlocks     = "blocks"
	StatTurnovers  = "turnovers"
	StatMinutes    = "minutes_played"
	StatPlusMinus  = "plus_minus"
	StatFGM        = "field_goals_made"
	StatFGA        = "field_goals_attempted"
	Stat3PM        = "three_pointers_made"
	Stat3PA        = "three_pointers_attempted"
	StatFTM        = "free_throws_made"
	StatFTA        = "free_throws_attempted"
	StatEfficiency = "efficiency" // derived, see Efficiency
)

// Value is a nullable statistic. The zero value is null.
type Value struct {
	Float float64
	Valid bool
}

// Num returns a non-null Value. NaN and infinities are stored as null.
func Num(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	return Value{Float: f, Valid: true}
}

// Null returns a missing Value.
func Null() Value { return Value{} }

func (v Value) String() string {
	if !v.Valid {
		return "—"
	}
	return fmt.Sprintf("%g", v.Float)
}

// StatRow is one observation of a subject (player or team) for one season
// and optional competition type.
type StatRow struct {
	Subject     string
	Season      int
	Competition string // "" for player tables
	Group       string // grouping key, e.g. position
	Team        string
	Game        string // game date (YYYY-MM-DD) of game-log rows, "" otherwise

	// Attrs holds categorical columns (contract_status, g_league_category, ...).
	Attrs map[string]string
	Stats map[string]Value
}

// Key is the uniqueness key of a row within a snapshot.
type Key struct {
	Subject     string
	Season      int
	Competition string
	Game        string
}

func (r StatRow) Key() Key {
	return Key{Subject: r.Subject, Season: r.Season, Competition: r.Competition, Game: r.Game}
}

// Stat returns the named statistic, or null if absent.
func (r StatRow) Stat(name string) Value {
	if r.Stats == nil {
		return Value{}
	}
	return r.Stats[name]
}

// Attr returns the named categorical attribute, or "" if absent.
func (r StatRow) Attr(name string) string {
	if r.Attrs == nil {
		return ""
	}
	return r.Attrs[name]
}

// Clone returns a deep copy of r.
func (r StatRow) Clone() StatRow {
	out := r
	if r.Stats != nil {
		out.Stats = make(map[string]Value, len(r.Stats))
		for k, v := range r.Stats {
			out.Stats[k] = v
		}
	}
	if r.Attrs != nil {
		out.Attrs = make(map[string]string, len(r.Attrs))
		for k, v := range r.Attrs {
			out.Attrs[k] = v
		}
	}
	return out
}

// Scope identifies the season/competition context a population is fetched for.
// Season 0 means all seasons; Competition "" means any.
type Scope struct {
	Kind        Kind
	Season      int
	Competition string
}

func (s Scope) String() string {
	out := s.Kind.String()
	if s.Season != 0 {
		out += fmt.Sprintf("/%d", s.Season)
	}
	if s.Competition != "" {
		out += "/" + s.Competition
	}
	return out
}

// Population is the reference frame for percentile, normalization and
// ranking computations. Engines treat it as read-only.
type Population struct {
	Scope Scope
	Rows  []StatRow
}

// NewPopulation builds a population and rejects duplicate keys.
func NewPopulation(scope Scope, rows []StatRow) (Population, error) {
	seen := make(map[Key]struct{}, len(rows))
	for _, r := range rows {
		if r.Subject == "" {
			return Population{}, fmt.Errorf("row with empty subject in %s", scope)
		}
		k := r.Key()
		if _, dup := seen[k]; dup {
			if k.Game != "" {
				return Population{}, fmt.Errorf("duplicate row for %s game %s", k.Subject, k.Game)
			}
			return Population{}, fmt.Errorf("duplicate row for %s season %d %q", k.Subject, k.Season, k.Competition)
		}
		seen[k] = struct{}{}
	}
	return Population{Scope: scope, Rows: rows}, nil
}

// Len returns the number of rows.
func (p Population) Len() int { return len(p.Rows) }

// Empty reports whether the population has no rows.
func (p Population) Empty() bool { return len(p.Rows) == 0 }

// Values returns the non-null values of stat, in row order.
func (p Population) Values(stat string) []float64 {
	out := make([]float64, 0, len(p.Rows))
	for _, r := range p.Rows {
		if v := r.Stat(stat); v.Valid {
			out = append(out, v.Float)
		}
	}
	return out
}

// Find returns the first row for subject.
func (p Population) Find(subject string) (StatRow, bool) {
	for _, r := range p.Rows {
		if r.Subject == subject {
			return r, true
		}
	}
	return StatRow{}, false
}

// Filter returns a population containing only the rows keep accepts. The
// returned population shares row storage with p.
func (p Population) Filter(keep func(StatRow) bool) Population {
	out := Population{Scope: p.Scope}
	for _, r := range p.Rows {
		if keep(r) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// Season returns the rows of one season, with the scope narrowed to match.
func (p Population) Season(season int) Population {
	out := p.Filter(func(r StatRow) bool { return r.Season == season })
	out.Scope.Season = season
	return out
}

// Clone returns a deep copy of p.
func (p Population) Clone() Population {
	out := Population{Scope: p.Scope, Rows: make([]StatRow, len(p.Rows))}
	for i, r := range p.Rows {
		out.Rows[i] = r.Clone()
	}
	return out
}

// Seasons returns the distinct seasons, newest first.
func (p Population) Seasons() []int {
	set := make(map[int]struct{})
	for _, r := range p.Rows {
		set[r.Season] = struct{}{}
	}
	out := make([]int, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

// Subjects returns the distinct subjects in alphabetical order.
func (p Population) Subjects() []string {
	set := make(map[string]struct{})
	for _, r := range p.Rows {
		set[r.Subject] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// StatNames returns every statistic name present on at least one row, sorted.
func (p Population) StatNames() []string {
	set := make(map[string]struct{})
	for _, r := range p.Rows {
		for k := range r.Stats {
			set[k] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Mean returns the arithmetic mean of the non-null values of stat.
func (p Population) Mean(stat string) (float64, bool) {
	vals := p.Values(stat)
	if len(vals) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals)), true
}

// ---- Derived values ----

// Production returns total points + rebounds + assists, or null if any is missing.
func Production(r StatRow) Value {
	p, rb, a := r.Stat(StatTotalPoints), r.Stat(StatTotalRebounds), r.Stat(StatTotalAssists)
	if !p.Valid || !rb.Valid || !a.Valid {
		return Value{}
	}
	return Num(p.Float + rb.Float + a.Float)
}

// ProductionPerGame returns Production divided by games played.
func ProductionPerGame(r StatRow) Value {
	prod := Production(r)
	gp := r.Stat(StatGamesPlayed)
	if !prod.Valid || !gp.Valid || gp.Float <= 0 {
		return Value{}
	}
	return Num(prod.Float / gp.Float)
}

// Efficiency is the box-score composite points + rebounds + assists +
// steals + blocks - turnovers of one game, or null if any part is missing.
func Efficiency(r StatRow) Value {
	var sum float64
	for _, stat := range []string{StatPoints, StatRebounds, StatAssists, StatSteals, StatBlocks} {
		v := r.Stat(stat)
		if !v.Valid {
			return Value{}
		}
		sum += v.Float
	}
	tov := r.Stat(StatTurnovers)
	if !tov.Valid {
		return Value{}
	}
	return Num(sum - tov.Float)
}

// Attribute names carried on target rows.
const (
	AttrContractStatus = "contract_status"
	AttrCategory       = "g_league_category"
	AttrPosition       = "pos"
)
