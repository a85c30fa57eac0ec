package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/gleague-scout/internal/aggregator"
	"github.com/pable/gleague-scout/internal/chart"
	"github.com/pable/gleague-scout/internal/export"
	"github.com/pable/gleague-scout/internal/loader"
	"github.com/pable/gleague-scout/internal/model"
	"github.com/pable/gleague-scout/internal/report"
)

var (
	gamelogSeason int
	gamelogTeam   string
	gamelogFrom   string
	gamelogTo     string
	gamelogLast   int
	gamelogMetric string
	gamelogWindow int
	gamelogSVG    string
	gamelogCSV    string
	gamelogJSON   string
)

var gamelogCmd = &cobra.Command{
	Use:   "gamelog <player>",
	Short: "Show a player's game-by-game log with a rolling-average timeline",
	Long: `Average a player's games against every game in the same date window, with
shooting percentages from summed attempts, the box-score efficiency
(PTS+REB+AST+STL+BLK-TOV) and a rolling-average timeline of one metric.
Needs the games dataset: scoutmetrics load games.

Examples:
  scoutmetrics gamelog "Mac McClung"
  scoutmetrics gamelog "Mac McClung" --from 2024-11-01 --to 2024-12-31 --metric efficiency
  scoutmetrics gamelog "Mac McClung" --last 10 --svg mac_points.svg --csv mac_games.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runGamelog,
}

func init() {
	gamelogCmd.Flags().IntVar(&gamelogSeason, "season", 0, "only games of this season (0 = all)")
	gamelogCmd.Flags().StringVar(&gamelogTeam, "team", "", "only the player's games for this team")
	gamelogCmd.Flags().StringVar(&gamelogFrom, "from", "", "first game date, YYYY-MM-DD")
	gamelogCmd.Flags().StringVar(&gamelogTo, "to", "", "last game date, YYYY-MM-DD")
	gamelogCmd.Flags().IntVar(&gamelogLast, "last", 0, "keep only the most recent N games")
	gamelogCmd.Flags().StringVar(&gamelogMetric, "metric", model.StatPoints, "timeline metric, e.g. points, rebounds, assists, efficiency")
	gamelogCmd.Flags().IntVar(&gamelogWindow, "window", aggregator.DefaultWindow, "rolling-average window in games")
	gamelogCmd.Flags().StringVar(&gamelogSVG, "svg", "", "write the timeline chart to this SVG file")
	gamelogCmd.Flags().StringVar(&gamelogCSV, "csv", "", "write the filtered games to this CSV file (.zst to compress)")
	gamelogCmd.Flags().StringVar(&gamelogJSON, "json", "", "write the log as JSON to this file (- for stdout)")
}

func gameFilter(season int, team, from, to string, last int) (aggregator.GameFilter, error) {
	f := aggregator.GameFilter{Season: season, Team: team, Last: last}
	var err error
	if f.From, err = loader.ParseGameDate(from); err != nil {
		return f, fmt.Errorf("--from: %w", err)
	}
	if f.To, err = loader.ParseGameDate(to); err != nil {
		return f, fmt.Errorf("--to: %w", err)
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return f, fmt.Errorf("--to %s is before --from %s", f.To.Format(time.DateOnly), f.From.Format(time.DateOnly))
	}
	return f, nil
}

func metricLabel(stat string) string {
	for _, m := range aggregator.GameMetrics {
		if m.Stat == stat {
			return m.Label
		}
	}
	return stat
}

func runGamelog(cmd *cobra.Command, args []string) error {
	f, err := gameFilter(gamelogSeason, gamelogTeam, gamelogFrom, gamelogTo, gamelogLast)
	if err != nil {
		return err
	}
	all, err := fetch(cmd.Context(), model.Scope{Kind: model.KindGames, Season: gamelogSeason})
	if err != nil {
		return err
	}
	if all.Empty() {
		report.NoData(os.Stdout, "game data")
		return nil
	}
	g, err := aggregator.BuildGameLog(all, args[0], f, aggregator.GameMetrics)
	if err != nil {
		return err
	}

	if gamelogJSON != "" {
		w, err := export.Create(gamelogJSON)
		if err != nil {
			return err
		}
		if err := export.WriteJSON(w, export.NewGameLogDoc(g, gamelogMetric, gamelogWindow)); err != nil {
			w.Close()
			return fmt.Errorf("write game log: %w", err)
		}
		if err := w.Close(); err != nil {
			return err
		}
		if gamelogJSON == "-" {
			return nil
		}
	}

	report.PrintGameLog(os.Stdout, g, gamelogMetric, gamelogWindow)

	if gamelogCSV != "" {
		w, err := export.Create(gamelogCSV)
		if err != nil {
			return err
		}
		if err := export.WriteCSV(w, g.Games.Rows, export.GameLogColumns()); err != nil {
			w.Close()
			return fmt.Errorf("write csv: %w", err)
		}
		if err := w.Close(); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "\n%d games written to %s\n", g.Games.Len(), gamelogCSV)
	}

	if gamelogSVG != "" {
		points := aggregator.Timeline(g.Games, gamelogMetric, gamelogWindow)
		dates := make([]string, len(points))
		values := chart.Series{Name: metricLabel(gamelogMetric)}
		rolling := chart.Series{Name: fmt.Sprintf("%d-game avg", gamelogWindow)}
		for i, p := range points {
			dates[i] = p.Game
			values.Values = append(values.Values, p.Value)
			rolling.Values = append(rolling.Values, p.Rolling)
		}
		title := fmt.Sprintf("%s: %s by game", g.Subject, metricLabel(gamelogMetric))
		if err := writeSVG(gamelogSVG, func(f *os.File) error {
			return chart.Timeline(f, title, dates, []chart.Series{values, rolling})
		}); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "\nTimeline written to %s\n", gamelogSVG)
	}
	return nil
}
