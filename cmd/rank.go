package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/gleague-scout/internal/aggregator"
	"github.com/pable/gleague-scout/internal/export"
	"github.com/pable/gleague-scout/internal/model"
	"github.com/pable/gleague-scout/internal/ranking"
	"github.com/pable/gleague-scout/internal/report"
)

var (
	rankKind        string
	rankSeason      int
	rankCompetition string
	rankOrder       string
	rankTop         int
	rankCSV         string
)

var rankCmd = &cobra.Command{
	Use:   "rank <stat>",
	Short: "Leaderboard of one statistic for a season",
	Long: `Rank every subject of a season by one statistic. Ties share a fractional rank;
subjects without a value are listed last, unranked. Team tables are ranked
within one competition type (--competition, default the first of the season).

Examples:
  scoutmetrics rank points_per_game --top 10
  scoutmetrics rank ts_pct --kind targets --season 2024 --csv ts.csv
  scoutmetrics rank win --kind teams --competition "Regular Season"`,
	Args: cobra.ExactArgs(1),
	RunE: runRank,
}

func init() {
	rankCmd.Flags().StringVar(&rankKind, "kind", "players", "dataset: players, targets or teams")
	rankCmd.Flags().IntVar(&rankSeason, "season", 0, "season (0 = latest)")
	rankCmd.Flags().StringVar(&rankCompetition, "competition", "", "competition type for team tables (default: first of the season)")
	rankCmd.Flags().StringVar(&rankOrder, "order", "desc", "asc ranks the smallest value first")
	rankCmd.Flags().IntVar(&rankTop, "top", 25, "rows to print (0 = all)")
	rankCmd.Flags().StringVar(&rankCSV, "csv", "", "also write the full leaderboard to this CSV file (.zst to compress)")
}

func runRank(cmd *cobra.Command, args []string) error {
	kind, err := model.ParseKind(rankKind)
	if err != nil {
		return err
	}
	all, err := fetch(cmd.Context(), model.Scope{Kind: kind})
	if err != nil {
		return err
	}
	season := latestSeason(all, rankSeason)
	pop, competition := aggregator.Frame(all, season, rankCompetition)
	if pop.Empty() {
		report.NoData(os.Stdout, fmt.Sprintf("%s data for season %d %s", kind, season, competition))
		return nil
	}

	res := ranking.Rank(pop, args[0], ranking.ParseOrder(rankOrder))
	if res.Size == 0 {
		fmt.Fprintf(os.Stdout, "No %s has a value for %q in season %d.\n", kind, args[0], season)
		return nil
	}
	fmt.Fprintf(os.Stdout, "\n%s  |  %s\n\n", args[0], frameTitle(season, competition))
	report.PrintLeaderboard(os.Stdout, res, rankTop)

	if rankCSV != "" {
		w, err := export.Create(rankCSV)
		if err != nil {
			return err
		}
		if err := export.WriteRankingCSV(w, res); err != nil {
			w.Close()
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Leaderboard written to %s\n", rankCSV)
	}
	return nil
}

func frameTitle(season int, competition string) string {
	if competition == "" {
		return fmt.Sprintf("Season %d", season)
	}
	return fmt.Sprintf("Season %d  |  %s", season, competition)
}
