// Package report renders scouting views as terminal tables.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/gleague-scout/internal/aggregator"
	"github.com/pable/gleague-scout/internal/export"
	"github.com/pable/gleague-scout/internal/model"
	"github.com/pable/gleague-scout/internal/ranking"
	"github.com/pable/gleague-scout/internal/storage"
)

const dash = "—"

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// cell formats v at the export precision of stat, or a dash when null.
func cell(stat string, v model.Value) string {
	if !v.Valid {
		return dash
	}
	return export.Format(stat, v)
}

func fixed(v model.Value, decimals int) string {
	if !v.Valid {
		return dash
	}
	return strconv.FormatFloat(v.Float, 'f', decimals, 64)
}

func orDash(s string) string {
	if s == "" {
		return dash
	}
	return s
}

func signed(stat string, v model.Value) string {
	if !v.Valid {
		return dash
	}
	s := export.Format(stat, v)
	if v.Float >= 0 {
		return "+" + s
	}
	return s
}

func signedFixed(v model.Value, decimals int) string {
	s := fixed(v, decimals)
	if v.Valid && v.Float >= 0 {
		return "+" + s
	}
	return s
}

// NoData prints the standard empty-state line.
func NoData(w io.Writer, what string) {
	fmt.Fprintf(w, "No %s available.\n", what)
}

// PrintSnapshots lists every stored snapshot.
func PrintSnapshots(w io.Writer, snaps []storage.SnapshotInfo) {
	table := newTable(w)
	table.Header("ID", "KIND", "SEASON", "COMPETITION", "SOURCE", "ROWS", "FETCHED")
	for _, s := range snaps {
		season := "all"
		if s.Scope.Season != 0 {
			season = strconv.Itoa(s.Scope.Season)
		}
		table.Append(
			strconv.FormatInt(s.ID, 10),
			s.Scope.Kind.String(),
			season,
			orDash(s.Scope.Competition),
			s.Source,
			strconv.Itoa(s.Rows),
			s.FetchedAt.Local().Format("2006-01-02 15:04"),
		)
	}
	table.Render()
}

// PrintSearchSummary prints the headline counts above a search result.
func PrintSearchSummary(w io.Writer, s aggregator.Summary) {
	fmt.Fprintf(w, "\nPlayers found: %d  |  Avg age: %s  |  Available: %d  |  Development targets: %d\n\n",
		s.Found, fixed(s.AvgAge, 1), s.Available, s.Development)
}

// PrintPlayers prints one line per row with the given statistic columns.
// Categorical attributes named in attrs are printed before the statistics.
func PrintPlayers(w io.Writer, rows []model.StatRow, attrs, stats []string) {
	table := newTable(w)
	header := []any{"#", "PLAYER", "SEASON", "TEAM"}
	for _, a := range attrs {
		header = append(header, strings.ToUpper(a))
	}
	for _, s := range stats {
		header = append(header, strings.ToUpper(s))
	}
	table.Header(header...)

	for i, r := range rows {
		season := dash
		if r.Season != 0 {
			season = strconv.Itoa(r.Season)
		}
		line := []any{strconv.Itoa(i + 1), r.Subject, season, orDash(r.Team)}
		for _, a := range attrs {
			line = append(line, orDash(r.Attr(a)))
		}
		for _, s := range stats {
			line = append(line, cell(s, r.Stat(s)))
		}
		table.Append(line...)
	}
	table.Render()
}

// PrintProfile prints the player page: key statistics against the league,
// derived metrics, radar scores and season history.
func PrintProfile(w io.Writer, p aggregator.PlayerProfile) {
	fmt.Fprintf(w, "\n%s  |  Season: %d  |  Team: %s  |  Pos: %s  |  League: %d players\n\n",
		p.Subject, p.Season, orDash(p.Row.Team), orDash(p.Row.Attr(model.AttrPosition)), p.LeagueSize)

	table := newTable(w)
	table.Header("STAT", "VALUE", "LEAGUE_AVG", "DELTA", "PCTL", "RANK")
	for _, l := range p.Lines {
		pct := dash
		if l.HasPct {
			pct = export.FormatPercentile(l.Percentile)
		}
		rank := dash
		if l.Rank.Ranked {
			rank = fmt.Sprintf("#%d out of %d", l.Rank.Position, l.OutOf)
		}
		table.Append(
			l.Label,
			cell(l.Stat, l.Value),
			cell(l.Stat, l.LeagueAvg),
			signed(l.Stat, l.Delta()),
			pct,
			rank,
		)
	}
	table.Render()

	fmt.Fprintf(w, "\nAvailability: %s%%  |  Points/Minute: %s  |  Production/Game: %s\n",
		fixed(p.Advanced.Availability, export.VolumeDecimals),
		fixed(p.Advanced.PointsPerMinute, export.EfficiencyDecimals),
		fixed(p.Advanced.ProductionPerGame, export.VolumeDecimals))

	fmt.Fprintf(w, "\nRadar (%s anchors, 50 = league average)\n", p.Radar.Strategy)
	radar := newTable(w)
	radar.Header("AXIS", "SCORE", "RAW")
	for _, a := range p.Radar.Axes {
		if !a.Defined {
			radar.Append(a.Label, dash, dash)
			continue
		}
		radar.Append(a.Label, fmt.Sprintf("%.0f", a.Score), fmt.Sprintf("%.2f", a.Raw))
	}
	radar.Render()

	if len(p.History) > 1 {
		fmt.Fprintln(w, "\nSeason history")
		PrintPlayers(w, p.History, nil, []string{
			model.StatGamesPlayed, model.StatPointsPerGame, model.StatReboundsPerGame, model.StatAssistsPerGame,
		})
	}
}

// PrintLeaderboard prints the top n entries of a ranking (all when n <= 0).
// Subjects without a value are listed last without a rank.
func PrintLeaderboard(w io.Writer, res ranking.Result, n int) {
	entries := res.Entries
	if n > 0 {
		entries = res.Top(n)
	}
	table := newTable(w)
	table.Header("RANK", "PLAYER", strings.ToUpper(res.Stat))
	for _, e := range entries {
		rank := dash
		if e.Ranked {
			rank = strconv.FormatFloat(e.Rank, 'f', -1, 64)
		}
		table.Append(rank, e.Subject, cell(res.Stat, e.Value))
	}
	table.Render()
	fmt.Fprintf(w, "(%d ranked of %d, %s)\n", res.Size, res.Total, res.Order)
}

// PrintTeams prints the team overview with the given statistic columns.
func PrintTeams(w io.Writer, pop model.Population, stats []string) {
	table := newTable(w)
	header := []any{"#", "TEAM", "SEASON", "COMPETITION"}
	for _, s := range stats {
		header = append(header, strings.ToUpper(s))
	}
	table.Header(header...)
	for i, r := range pop.Rows {
		line := []any{strconv.Itoa(i + 1), r.Subject, strconv.Itoa(r.Season), orDash(r.Competition)}
		for _, s := range stats {
			line = append(line, cell(s, r.Stat(s)))
		}
		table.Append(line...)
	}
	table.Render()
}

// PrintTargets prints classified targets with their percentiles. A "*"
// marks rows whose stored category disagrees with the computed label.
func PrintTargets(w io.Writer, targets []aggregator.Target, stats []string) {
	table := newTable(w)
	header := []any{" ", "PLAYER", "AGE", "POS", "STATUS", "CATEGORY"}
	for _, s := range stats {
		header = append(header, strings.ToUpper(s)+"_PCTL")
	}
	table.Header(header...)
	for _, t := range targets {
		marker := " "
		if t.Stored != "" && t.Stored != t.Label {
			marker = "*"
		}
		line := []any{
			marker,
			t.Row.Subject,
			cell(model.StatAge, t.Row.Stat(model.StatAge)),
			orDash(t.Row.Attr(model.AttrPosition)),
			orDash(t.Row.Attr(model.AttrContractStatus)),
			t.Label,
		}
		for _, s := range stats {
			if p, ok := t.Percentiles[s]; ok {
				line = append(line, export.FormatPercentile(p))
			} else {
				line = append(line, dash)
			}
		}
		table.Append(line...)
	}
	table.Render()
}

// PrintDistribution prints counts with a proportional bar.
func PrintDistribution(w io.Writer, title string, cats []aggregator.Category) {
	fmt.Fprintf(w, "\n%s\n", title)
	maxN := 0
	for _, c := range cats {
		maxN = max(maxN, c.Count)
	}
	table := newTable(w)
	table.Header("LABEL", "N", " ")
	for _, c := range cats {
		bar := ""
		if maxN > 0 {
			bar = strings.Repeat("█", c.Count*30/maxN)
		}
		table.Append(c.Label, strconv.Itoa(c.Count), bar)
	}
	table.Render()
}

// PrintComparison prints a head-to-head table; ">" marks the better value.
func PrintComparison(w io.Writer, c aggregator.Comparison) {
	table := newTable(w)
	table.Header("STAT", c.Left.Subject, c.Right.Subject, "DIFF")
	for i, ks := range c.Stats {
		l, r := c.Value(i)
		ls, rs := cell(ks.Stat, l), cell(ks.Stat, r)
		diff := dash
		if l.Valid && r.Valid {
			diff = signed(ks.Stat, model.Num(l.Float-r.Float))
			switch {
			case l.Float > r.Float:
				ls = "> " + ls
			case r.Float > l.Float:
				rs = "> " + rs
			}
		}
		table.Append(ks.Label, ls, rs, diff)
	}
	table.Render()
}

// PrintQuery prints the result of a raw query followed by its row count.
func PrintQuery(w io.Writer, cols []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "(no rows)")
		return
	}
	table := newTable(w)
	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = strings.ToUpper(c)
	}
	table.Header(header...)
	for _, row := range rows {
		line := make([]any, len(row))
		for i, v := range row {
			if v == "NULL" {
				v = dash
			}
			line[i] = v
		}
		table.Append(line...)
	}
	table.Render()
	fmt.Fprintf(w, "\n(%d rows)\n", len(rows))
}

// PrintGameLog prints the game log page: averages against every game in the
// window, shooting from summed attempts, and the timeline of stat.
func PrintGameLog(w io.Writer, g aggregator.GameLog, stat string, window int) {
	fmt.Fprintf(w, "\n%s  |  Games: %d (%s to %s)  |  Team: %s  |  League: %d games\n\n",
		g.Subject, g.Games.Len(), g.First(), g.Last(), orDash(strings.Join(g.Teams, ", ")), g.LeagueGames)

	table := newTable(w)
	table.Header("STAT", "AVG", "LEAGUE_AVG", "DELTA", "PCTL")
	for _, l := range g.Lines {
		pct := dash
		if l.HasPct {
			pct = export.FormatPercentile(l.Percentile)
		}
		table.Append(l.Label, fixed(l.Mean, export.VolumeDecimals), fixed(l.LeagueMean, export.VolumeDecimals),
			signedFixed(l.Delta(), export.VolumeDecimals), pct)
	}
	table.Render()

	fmt.Fprintf(w, "\nFG: %s%%  |  3P: %s%%  |  FT: %s%%  |  Minutes: %s  |  +/-: %s\n",
		fixed(g.FG.Pct, export.VolumeDecimals), fixed(g.ThreePoint.Pct, export.VolumeDecimals),
		fixed(g.FreeThrow.Pct, export.VolumeDecimals), fixed(g.Minutes, export.VolumeDecimals),
		signedFixed(g.PlusMinus, export.VolumeDecimals))

	if g.Games.Len() < window {
		fmt.Fprintf(w, "\nTimeline needs at least %d games.\n", window)
		return
	}
	fmt.Fprintf(w, "\n%s by game (%d-game rolling average)\n", stat, window)
	tl := newTable(w)
	tl.Header("DATE", "VALUE", "ROLLING")
	for _, p := range aggregator.Timeline(g.Games, stat, window) {
		tl.Append(p.Game, cell(stat, p.Value), fixed(p.Rolling, export.VolumeDecimals))
	}
	tl.Render()
}
