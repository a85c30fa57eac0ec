package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/gleague-scout/internal/aggregator"
	"github.com/pable/gleague-scout/internal/chart"
	"github.com/pable/gleague-scout/internal/model"
	"github.com/pable/gleague-scout/internal/report"
)

var (
	teamsSeason      int
	teamsCompetition string
	teamsFilter      []string
	teamsStats       []string
	teamsSVG         string
	teamsContexts    bool
)

var teamsCmd = &cobra.Command{
	Use:   "teams",
	Short: "Team overview for one season and competition, best win rate first",
	Args:  cobra.NoArgs,
	RunE:  runTeams,
}

func init() {
	teamsCmd.Flags().IntVar(&teamsSeason, "season", 0, "season (0 = latest)")
	teamsCmd.Flags().StringVar(&teamsCompetition, "competition", "", "competition type (default: first of the season)")
	teamsCmd.Flags().StringSliceVar(&teamsFilter, "team", nil, "only these teams")
	teamsCmd.Flags().StringSliceVar(&teamsStats, "stats", nil, "statistics to show and chart (default win,pts,ast,reb)")
	teamsCmd.Flags().StringVar(&teamsSVG, "svg", "", "write a grouped bar chart to this SVG file")
	teamsCmd.Flags().BoolVar(&teamsContexts, "contexts", false, "list the available season/competition pairs and exit")
}

func runTeams(cmd *cobra.Command, args []string) error {
	all, err := fetch(cmd.Context(), model.Scope{Kind: model.KindTeams})
	if err != nil {
		return err
	}
	if all.Empty() {
		report.NoData(os.Stdout, "team data")
		return nil
	}
	ctxs := aggregator.Contexts(all)
	if teamsContexts {
		for _, c := range ctxs {
			fmt.Fprintf(os.Stdout, "%d  %s\n", c.Season, c.Competition)
		}
		return nil
	}

	season := latestSeason(all, teamsSeason)
	_, competition := aggregator.Frame(all, season, teamsCompetition)
	overview := aggregator.TeamOverview(all, season, competition, teamsFilter)
	if overview.Empty() {
		report.NoData(os.Stdout, fmt.Sprintf("team data for %d %s", season, competition))
		return nil
	}

	stats := teamsStats
	if len(stats) == 0 {
		stats = aggregator.DefaultTeamStats
	}
	fmt.Fprintf(os.Stdout, "\nSeason %d  |  %s  |  %d teams\n\n", season, competition, overview.Len())
	report.PrintTeams(os.Stdout, overview, stats)

	if teamsSVG != "" {
		title := fmt.Sprintf("Teams %d %s", season, competition)
		if err := writeSVG(teamsSVG, func(f *os.File) error { return chart.TeamBars(f, title, overview, stats) }); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "\nChart written to %s\n", teamsSVG)
	}
	return nil
}
