package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/gleague-scout/internal/aggregator"
	"github.com/pable/gleague-scout/internal/classify"
	"github.com/pable/gleague-scout/internal/export"
	"github.com/pable/gleague-scout/internal/model"
	"github.com/pable/gleague-scout/internal/percentile"
)

var (
	exportSeason  int
	exportOut     string
	exportLayout  string
	exportRelabel bool
)

var exportCmd = &cobra.Command{
	Use:   "export <players|targets|teams>",
	Short: "Export a dataset as CSV",
	Long: `Write one dataset to CSV with the scouting-sheet precision: 1 decimal for
per-game volume statistics, 3 for efficiency ratios, none for percentiles and
counts. Paths ending in .zst are zstd-compressed.

Layouts:
  raw     every column of the dataset (default)
  detail  the contract-target sheet: Player, Age, Pos, Team, g_league_category,
          contract_status, pts, trb, ast, ts_pct and their percentiles (targets only)

Examples:
  scoutmetrics export players --season 2024 --out players_2024.csv
  scoutmetrics export targets --layout detail --relabel --out targets.csv.zst`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().IntVar(&exportSeason, "season", 0, "season (0 = all seasons)")
	exportCmd.Flags().StringVar(&exportOut, "out", "-", "output path (- for stdout)")
	exportCmd.Flags().StringVar(&exportLayout, "layout", "raw", "column layout: raw or detail")
	exportCmd.Flags().BoolVar(&exportRelabel, "relabel", false, "replace the stored category with the computed label (targets)")
}

func runExport(cmd *cobra.Command, args []string) error {
	kind, err := model.ParseKind(args[0])
	if err != nil {
		return err
	}
	if exportLayout != "raw" && exportLayout != "detail" {
		return fmt.Errorf("unknown layout %q (want raw or detail)", exportLayout)
	}
	if exportLayout == "detail" && kind != model.KindTargets {
		return fmt.Errorf("--layout detail needs the targets dataset")
	}

	pop, err := fetch(cmd.Context(), model.Scope{Kind: kind, Season: exportSeason})
	if err != nil {
		return err
	}
	if exportSeason != 0 {
		pop = pop.Season(exportSeason)
	}
	if exportLayout == "detail" {
		// Percentiles are only meaningful within one season.
		pop = pop.Season(latestSeason(pop, exportSeason))
	}
	if pop.Empty() {
		return fmt.Errorf("no %s data to export", kind)
	}

	if kind == model.KindTargets && exportRelabel {
		cc := cfg.ClassifyConfig()
		pop = relabelBySeason(pop, cc)
	}

	cols := export.PopulationColumns(pop)
	if exportLayout == "detail" {
		cols = export.TargetColumns(percentile.Multi(pop, []string{model.StatPts, model.StatTrb, model.StatAst}))
	}

	w, err := export.Create(exportOut)
	if err != nil {
		return err
	}
	if err := export.WriteCSV(w, pop.Rows, cols); err != nil {
		w.Close()
		return fmt.Errorf("write csv: %w", err)
	}
	if err := w.Close(); err != nil {
		return err
	}
	if exportOut != "-" {
		fmt.Fprintf(os.Stdout, "Exported %d rows to %s\n", pop.Len(), exportOut)
	}
	return nil
}

// relabelBySeason classifies each season separately so percentiles stay
// within one season.
func relabelBySeason(pop model.Population, cc classify.Config) model.Population {
	rules := classify.ReferenceRules(cc)
	out := model.Population{Scope: pop.Scope}
	for _, s := range pop.Seasons() {
		season := pop.Season(s)
		out.Rows = append(out.Rows, aggregator.Relabel(season, aggregator.Targets(season, rules, cc)).Rows...)
	}
	return out
}
