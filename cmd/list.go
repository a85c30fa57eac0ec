package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/gleague-scout/internal/report"
	"github.com/pable/gleague-scout/internal/storage"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored snapshots",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	snaps, err := db.ListSnapshots(cmd.Context())
	if err != nil {
		return fmt.Errorf("list snapshots: %w", err)
	}
	if len(snaps) == 0 {
		fmt.Fprintln(os.Stdout, "No snapshots stored yet. Run 'scoutmetrics load' to add some.")
		return nil
	}
	report.PrintSnapshots(os.Stdout, snaps)
	return nil
}
