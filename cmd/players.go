package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/gleague-scout/internal/aggregator"
	"github.com/pable/gleague-scout/internal/model"
	"github.com/pable/gleague-scout/internal/ranking"
	"github.com/pable/gleague-scout/internal/report"
)

var (
	playersKind       string
	playersSeason     int
	playersName       string
	playersPos        []string
	playersTeams      []string
	playersStatuses   []string
	playersCategories []string
	playersRanges     []string
	playersSort       string
	playersOrder      string
	playersLimit      int
	playersStats      []string
)

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "Search players of one season",
	Long: `Filter and sort the players of one season.

Statistic ranges are given as stat:lo-hi and may be open on either side:
  --range pts:10-20 --range age:-25 --range ts_pct:0.55-

Examples:
  scoutmetrics players --sort points_per_game --limit 20
  scoutmetrics players --kind targets --status "Free Agent" --range age:-24 --sort pts`,
	Args: cobra.NoArgs,
	RunE: runPlayers,
}

func init() {
	f := playersCmd.Flags()
	f.StringVar(&playersKind, "kind", "players", "dataset: players or targets")
	f.IntVar(&playersSeason, "season", 0, "season (0 = latest)")
	f.StringVar(&playersName, "name", "", "case-insensitive name substring")
	f.StringSliceVar(&playersPos, "pos", nil, "positions")
	f.StringSliceVar(&playersTeams, "team", nil, "teams")
	f.StringSliceVar(&playersStatuses, "status", nil, "contract statuses")
	f.StringSliceVar(&playersCategories, "category", nil, "G-League categories")
	f.StringArrayVar(&playersRanges, "range", nil, "statistic range stat:lo-hi (repeatable)")
	f.StringVar(&playersSort, "sort", "", "statistic to sort by, or 'player' for name")
	f.StringVar(&playersOrder, "order", "desc", "sort order: asc or desc")
	f.IntVar(&playersLimit, "limit", 0, "maximum rows (0 = all)")
	f.StringSliceVar(&playersStats, "stats", nil, "statistic columns to show (default depends on dataset)")
}

func parseRanges(args []string) (map[string]aggregator.Range, error) {
	if len(args) == 0 {
		return nil, nil
	}
	out := make(map[string]aggregator.Range, len(args))
	for _, arg := range args {
		stat, raw, ok := strings.Cut(arg, ":")
		if !ok || stat == "" {
			return nil, fmt.Errorf("range %q must be stat:lo-hi", arg)
		}
		r, err := aggregator.ParseRange(raw)
		if err != nil {
			return nil, fmt.Errorf("range %q: %w", arg, err)
		}
		out[stat] = r
	}
	return out, nil
}

func defaultStats(kind model.Kind) []string {
	switch kind {
	case model.KindTargets:
		return []string{model.StatAge, model.StatPts, model.StatTrb, model.StatAst, model.StatTSPct}
	case model.KindTeams:
		return aggregator.DefaultTeamStats
	case model.KindGames:
		return []string{model.StatMinutes, model.StatPoints, model.StatRebounds, model.StatAssists, model.StatPlusMinus}
	default:
		return []string{model.StatGamesPlayed, model.StatPointsPerGame, model.StatReboundsPerGame, model.StatAssistsPerGame}
	}
}

func runPlayers(cmd *cobra.Command, args []string) error {
	kind, err := model.ParseKind(playersKind)
	if err != nil {
		return err
	}
	ranges, err := parseRanges(playersRanges)
	if err != nil {
		return err
	}
	all, err := fetch(cmd.Context(), model.Scope{Kind: kind})
	if err != nil {
		return err
	}
	season := latestSeason(all, playersSeason)
	pop := all.Season(season)
	if pop.Empty() {
		report.NoData(os.Stdout, fmt.Sprintf("%s data for season %d", kind, season))
		return nil
	}

	rows := aggregator.Search(pop, aggregator.Filter{
		Name:       playersName,
		Categories: playersCategories,
		Positions:  playersPos,
		Statuses:   playersStatuses,
		Teams:      playersTeams,
		Ranges:     ranges,
		SortBy:     playersSort,
		Order:      ranking.ParseOrder(playersOrder),
		Limit:      playersLimit,
	})

	stats := playersStats
	if len(stats) == 0 {
		stats = defaultStats(kind)
	}
	var attrs []string
	if kind == model.KindTargets {
		attrs = []string{model.AttrPosition, model.AttrContractStatus, model.AttrCategory}
		report.PrintSearchSummary(os.Stdout, aggregator.Summarize(rows, aggregator.SignableStatuses))
	} else {
		attrs = []string{model.AttrPosition}
	}
	if len(rows) == 0 {
		fmt.Fprintln(os.Stdout, "No players match the filters.")
		return nil
	}
	fmt.Fprintf(os.Stdout, "\nSeason %d  |  %d of %d players\n\n", season, len(rows), pop.Len())
	report.PrintPlayers(os.Stdout, rows, attrs, stats)
	return nil
}
