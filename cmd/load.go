package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/gleague-scout/internal/logger"
	"github.com/pable/gleague-scout/internal/model"
	"github.com/pable/gleague-scout/internal/storage"
)

var (
	loadFrom        string
	loadSeason      int
	loadCompetition string
)

var loadCmd = &cobra.Command{
	Use:   "load [players|targets|teams|games ...]",
	Short: "Fetch datasets from the warehouse or CSV files into the local database",
	Long: `Fetch one or more datasets and store them as snapshots in the SQLite database.
A snapshot replaces any earlier snapshot of the same dataset, season and competition.
With no arguments all four datasets are loaded. The games dataset is the
per-game log behind the gamelog command.

Examples:
  scoutmetrics load --from warehouse
  scoutmetrics load players --from csv --csv players=player_stats_gold.csv.zst
  scoutmetrics load teams --from warehouse --season 2024
  scoutmetrics load games --from csv --csv games=player_games.csv`,
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().StringVar(&loadFrom, "from", "warehouse", "source to fetch from: warehouse or csv")
	loadCmd.Flags().IntVar(&loadSeason, "season", 0, "only load this season (0 = all)")
	loadCmd.Flags().StringVar(&loadCompetition, "competition", "", "only load this competition type (teams)")
}

func runLoad(cmd *cobra.Command, args []string) error {
	if loadFrom == "db" || loadFrom == "sqlite" {
		return fmt.Errorf("--from must be a remote source, not the database itself")
	}
	kinds := []model.Kind{model.KindPlayers, model.KindTargets, model.KindTeams, model.KindGames}
	if len(args) > 0 {
		kinds = kinds[:0]
		for _, a := range args {
			k, err := model.ParseKind(a)
			if err != nil {
				return err
			}
			kinds = append(kinds, k)
		}
	}

	ctx := cmd.Context()
	src, closeFn, err := openSource(ctx, loadFrom)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	log := logger.Named("load")
	for _, kind := range kinds {
		scope := model.Scope{Kind: kind, Season: loadSeason}
		if kind == model.KindTeams {
			scope.Competition = loadCompetition
		}
		fmt.Fprintf(os.Stdout, "Fetching %s from %s...\n", scope, src.Name())
		pop, err := src.FetchPopulation(ctx, scope)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", scope, err)
		}
		if pop.Empty() {
			log.Warn(ctx, "no rows fetched", logger.String("scope", scope.String()))
			fmt.Fprintf(os.Stdout, "  no rows, skipped\n")
			continue
		}
		info, err := db.SaveSnapshot(ctx, pop, src.Name(), time.Now())
		if err != nil {
			return fmt.Errorf("save %s: %w", scope, err)
		}
		log.Info(ctx, "snapshot stored", logger.String("scope", scope.String()), logger.Int("rows", info.Rows))
		fmt.Fprintf(os.Stdout, "  stored %d rows (%d seasons) as snapshot %d\n", info.Rows, len(pop.Seasons()), info.ID)
	}
	return nil
}
