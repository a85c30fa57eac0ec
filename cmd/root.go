package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pable/gleague-scout/internal/config"
	"github.com/pable/gleague-scout/internal/logger"
)

var (
	dbPath     string
	cfgPath    string
	logLevel   string
	sourceName string
	csvFiles   map[string]string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "scoutmetrics",
	Short: "G-League scouting metrics tool",
	Long: `Load G-League player, contract and team statistics and compute percentiles,
normalized radar profiles, leaderboards and contract-target classifications.

Data is read from one of three sources (--source):
  db         the local SQLite snapshot mirror (default; fill it with 'load')
  warehouse  the BigQuery gold tables
  csv        CSV exports given with --csv players=a.csv,targets=b.csv,teams=c.csv`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	defaultDB := filepath.Join(mustUserHome(), ".scoutmetrics", "scout.db")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDB, "path to SQLite snapshot database")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "YAML config file (falls back to $SCOUT_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&sourceName, "source", "db", "data source: db, warehouse or csv")
	rootCmd.PersistentFlags().StringToStringVar(&csvFiles, "csv", nil, "CSV files per dataset for --source csv (kind=path)")

	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(seasonsCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(gamelogCmd)
	rootCmd.AddCommand(rankCmd)
	rootCmd.AddCommand(teamsCmd)
	rootCmd.AddCommand(targetsCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(dropCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(analyzeCmd)
}

// setup loads configuration and applies flag overrides.
func setup(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(cmd.Context(), cfgPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	if cmd.Flags().Changed("db") || c.DBPath == "" {
		c.DBPath = dbPath
	}
	dbPath = c.DBPath
	if err := logger.SetLevelString(c.LogLevel); err != nil {
		return err
	}
	cfg = c
	return nil
}

func mustUserHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
