package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/pable/gleague-scout/internal/model"
	"github.com/pable/gleague-scout/internal/percentile"
	"github.com/pable/gleague-scout/internal/ranking"
)

// Column is one CSV column.
type Column struct {
	Header string
	Value  func(model.StatRow) string
}

// SubjectColumn writes the subject name.
func SubjectColumn(header string) Column {
	return Column{Header: header, Value: func(r model.StatRow) string { return r.Subject }}
}

// SeasonColumn writes the season, blank when unset.
func SeasonColumn(header string) Column {
	return Column{Header: header, Value: func(r model.StatRow) string {
		if r.Season == 0 {
			return ""
		}
		return strconv.Itoa(r.Season)
	}}
}

// GameColumn writes the game date.
func GameColumn(header string) Column {
	return Column{Header: header, Value: func(r model.StatRow) string { return r.Game }}
}

// TeamColumn writes the team.
func TeamColumn(header string) Column {
	return Column{Header: header, Value: func(r model.StatRow) string { return r.Team }}
}

// CompetitionColumn writes the competition type.
func CompetitionColumn(header string) Column {
	return Column{Header: header, Value: func(r model.StatRow) string { return r.Competition }}
}

// AttrColumn writes a categorical attribute.
func AttrColumn(header, attr string) Column {
	return Column{Header: header, Value: func(r model.StatRow) string { return r.Attr(attr) }}
}

// StatColumn writes a statistic at its documented precision.
func StatColumn(header, stat string) Column {
	return Column{Header: header, Value: func(r model.StatRow) string { return Format(stat, r.Stat(stat)) }}
}

// PercentileColumn writes the percentile of stat from res, falling back to
// a "<stat>_percentile" value carried by the row.
func PercentileColumn(header string, res percentile.Result) Column {
	stored := res.Stat + "_percentile"
	return Column{Header: header, Value: func(r model.StatRow) string {
		if p, ok := res.Get(r.Subject); ok {
			return FormatPercentile(p)
		}
		if v := r.Stat(stored); v.Valid {
			return FormatPercentile(v.Float)
		}
		return ""
	}}
}

// PopulationColumns lists every field present in pop: key fields, then
// attributes, then statistics, each group in name order.
func PopulationColumns(pop model.Population) []Column {
	cols := []Column{SubjectColumn("subject"), SeasonColumn("season")}
	var hasComp, hasTeam bool
	attrs := make(map[string]struct{})
	for _, r := range pop.Rows {
		hasComp = hasComp || r.Competition != ""
		hasTeam = hasTeam || r.Team != ""
		for a := range r.Attrs {
			attrs[a] = struct{}{}
		}
	}
	if hasComp {
		cols = append(cols, CompetitionColumn("competition_type"))
	}
	if hasTeam {
		cols = append(cols, TeamColumn("team"))
	}
	names := make([]string, 0, len(attrs))
	for a := range attrs {
		names = append(names, a)
	}
	sort.Strings(names)
	for _, a := range names {
		cols = append(cols, AttrColumn(a, a))
	}
	for _, s := range pop.StatNames() {
		cols = append(cols, StatColumn(s, s))
	}
	return cols
}

// TargetColumns is the detailed player list of the search page.
func TargetColumns(pcts map[string]percentile.Result) []Column {
	cols := []Column{
		SubjectColumn("Player"),
		StatColumn("Age", model.StatAge),
		AttrColumn("Pos", model.AttrPosition),
		TeamColumn("Team"),
		AttrColumn(model.AttrCategory, model.AttrCategory),
		AttrColumn(model.AttrContractStatus, model.AttrContractStatus),
		StatColumn(model.StatPts, model.StatPts),
		StatColumn(model.StatTrb, model.StatTrb),
		StatColumn(model.StatAst, model.StatAst),
		StatColumn(model.StatTSPct, model.StatTSPct),
	}
	for _, s := range []string{model.StatPts, model.StatTrb, model.StatAst} {
		res, ok := pcts[s]
		if !ok {
			res = percentile.Result{Stat: s}
		}
		cols = append(cols, PercentileColumn(s+"_percentile", res))
	}
	return cols
}

// GameLogColumns is the per-game export of the game log page, with the
// derived efficiency last.
func GameLogColumns() []Column {
	cols := []Column{SubjectColumn("player_name"), GameColumn("game_date"), TeamColumn("team")}
	for _, s := range []string{
		model.StatPoints, model.StatRebounds, model.StatAssists, model.StatSteals, model.StatBlocks,
		model.StatTurnovers, model.StatMinutes, model.StatPlusMinus,
		model.StatFGM, model.StatFGA, model.Stat3PM, model.Stat3PA, model.StatFTM, model.StatFTA,
		model.StatEfficiency,
	} {
		cols = append(cols, StatColumn(s, s))
	}
	return cols
}

// WriteCSV writes a header line and one line per row.
func WriteCSV(w io.Writer, rows []model.StatRow, cols []Column) error {
	cw := csv.NewWriter(w)
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.Header
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, len(cols))
	for _, r := range rows {
		for i, c := range cols {
			rec[i] = c.Value(r)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write %s: %w", r.Subject, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRankingCSV writes a leaderboard: rank, position, subject, value.
func WriteRankingCSV(w io.Writer, res ranking.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"rank", "position", "subject", res.Stat}); err != nil {
		return err
	}
	for _, e := range res.Entries {
		rank, pos := "", ""
		if e.Ranked {
			rank = strconv.FormatFloat(e.Rank, 'f', -1, 64)
			pos = strconv.Itoa(e.Position)
		}
		if err := cw.Write([]string{rank, pos, e.Subject, Format(res.Stat, e.Value)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
