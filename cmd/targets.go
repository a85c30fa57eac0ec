package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/gleague-scout/internal/aggregator"
	"github.com/pable/gleague-scout/internal/classify"
	"github.com/pable/gleague-scout/internal/metrics"
	"github.com/pable/gleague-scout/internal/model"
	"github.com/pable/gleague-scout/internal/report"
)

var (
	targetsSeason   int
	targetsLabels   []string
	targetsMismatch bool
	targetsByPos    bool
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "Classify contract targets with the reference rules",
	Long: `Compute per-season percentiles of the tracked statistics and label every
player of the contracts table. Rules are checked in order; the first match wins.

  1. ` + classify.LabelDevelopment + `: available, young enough and at most
     the 25th percentile in at least one tracked statistic.
  2. ` + classify.LabelWellRounded + `: available, young enough and between
     the 25th and 75th percentile in every tracked statistic and efficiency.
  3. otherwise ` + classify.LabelNone + `.

With --by-pos, percentiles are computed within each position instead of the
whole season. A "*" marks rows whose stored category differs from the
computed one.`,
	Args: cobra.NoArgs,
	RunE: runTargets,
}

func init() {
	targetsCmd.Flags().IntVar(&targetsSeason, "season", 0, "season (0 = latest)")
	targetsCmd.Flags().StringSliceVar(&targetsLabels, "label", nil, "only show these computed labels")
	targetsCmd.Flags().BoolVar(&targetsByPos, "by-pos", false, "compute percentiles within each position")
	targetsCmd.Flags().BoolVar(&targetsMismatch, "mismatch", false, "only show rows whose stored category differs")
}

func runTargets(cmd *cobra.Command, args []string) error {
	all, err := fetch(cmd.Context(), model.Scope{Kind: model.KindTargets})
	if err != nil {
		return err
	}
	season := latestSeason(all, targetsSeason)
	pop := all.Season(season)
	if pop.Empty() {
		report.NoData(os.Stdout, fmt.Sprintf("contract data for season %d", season))
		return nil
	}

	cc := cfg.ClassifyConfig()
	cc.ByGroup = cc.ByGroup || targetsByPos
	rules := classify.ReferenceRules(cc)
	targets := aggregator.Targets(pop, rules, cc)
	dist := aggregator.Distribution(rules, targets)
	for _, c := range dist {
		metrics.RecordClassified(c.Label, c.Count)
	}

	keep := make(map[string]bool, len(targetsLabels))
	for _, l := range targetsLabels {
		keep[l] = true
	}
	shown := targets[:0:0]
	for _, t := range targets {
		if len(keep) > 0 && !keep[t.Label] {
			continue
		}
		if targetsMismatch && (t.Stored == "" || t.Stored == t.Label) {
			continue
		}
		shown = append(shown, t)
	}

	fmt.Fprintf(os.Stdout, "\nSeason %d  |  %d players classified\n\n", season, len(targets))
	report.PrintTargets(os.Stdout, shown, cc.TrackedStats)
	report.PrintDistribution(os.Stdout, "By computed category", dist)
	report.PrintDistribution(os.Stdout, "By contract status", aggregator.CountBy(pop.Rows, model.AttrContractStatus))
	return nil
}
