package cmd

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/gleague-scout/internal/export"
	"github.com/pable/gleague-scout/internal/report"
	"github.com/pable/gleague-scout/internal/storage"
)

var sqlCSV string

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the snapshot database",
	Long: `Run an arbitrary SQL query against the local snapshot mirror.

Tables:
  snapshots(id, kind, season, competition, source, fetched_at, row_count)
    kind is players, targets, teams or games; season 0 means all seasons
  stat_rows(snapshot_id, subject, season, competition, game, grp, team)
    game is the game date of game-log rows, '' otherwise
  stat_values(snapshot_id, subject, season, competition, game, stat, value)
    value is NULL when the source cell was blank or NA
  stat_attrs(snapshot_id, subject, season, competition, game, attr, value)

Examples:
  scoutmetrics sql "SELECT subject, value FROM stat_values WHERE stat = 'points_per_game' ORDER BY value DESC LIMIT 10"
  scoutmetrics sql --csv top.csv.zst "SELECT * FROM stat_attrs WHERE attr = 'contract_status'"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func init() {
	sqlCmd.Flags().StringVar(&sqlCSV, "csv", "", "write rows as CSV to this path (- for stdout) instead of a table")
}

func runSQL(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	cols, rows, err := db.QueryRaw(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}
	if sqlCSV == "" {
		report.PrintQuery(os.Stdout, cols, rows)
		return nil
	}

	out, err := export.Create(sqlCSV)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(out)
	if err := cw.Write(cols); err != nil {
		out.Close()
		return err
	}
	for _, row := range rows {
		for i, v := range row {
			if v == "NULL" {
				row[i] = ""
			}
		}
		if err := cw.Write(row); err != nil {
			out.Close()
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
