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
	compareSeason int
	compareSVG    string
)

var compareCmd = &cobra.Command{
	Use:   "compare <player> <player>",
	Short: "Compare two players side by side for one season",
	Args:  cobra.ExactArgs(2),
	RunE:  runCompare,
}

func init() {
	compareCmd.Flags().IntVar(&compareSeason, "season", 0, "season (0 = latest)")
	compareCmd.Flags().StringVar(&compareSVG, "svg", "", "write a grouped bar chart to this SVG file")
}

func runCompare(cmd *cobra.Command, args []string) error {
	all, err := fetch(cmd.Context(), model.Scope{Kind: model.KindPlayers})
	if err != nil {
		return err
	}
	if all.Empty() {
		report.NoData(os.Stdout, "player data")
		return nil
	}
	season := latestSeason(all, compareSeason)
	c, err := aggregator.Compare(all, args[0], args[1], season, nil)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "\nSeason %d\n\n", season)
	report.PrintComparison(os.Stdout, c)

	if compareSVG != "" {
		cats := make([]string, len(c.Stats))
		left := chart.Series{Name: c.Left.Subject}
		right := chart.Series{Name: c.Right.Subject}
		for i, ks := range c.Stats {
			cats[i] = ks.Label
			l, r := c.Value(i)
			left.Values = append(left.Values, l)
			right.Values = append(right.Values, r)
		}
		title := fmt.Sprintf("%s vs %s (%d)", c.Left.Subject, c.Right.Subject, season)
		if err := writeSVG(compareSVG, func(f *os.File) error {
			return chart.Bars(f, title, cats, []chart.Series{left, right})
		}); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "\nChart written to %s\n", compareSVG)
	}
	return nil
}
