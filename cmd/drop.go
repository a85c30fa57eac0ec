package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/gleague-scout/internal/model"
	"github.com/pable/gleague-scout/internal/storage"
)

var (
	dropForce bool
	dropScope string
)

// dropCmd deletes the snapshot database, or one scope of it.
var dropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Delete the snapshot database or one dataset scope",
	Long: `Permanently delete the SQLite snapshot database. All stored snapshots will be lost.
Run 'scoutmetrics load' afterwards to rebuild.

With --scope only matching snapshots are removed:
  --scope players            every players snapshot
  --scope teams/2024         the 2024 teams snapshot
  --scope "teams/2024/Regular Season"`,
	Args: cobra.NoArgs,
	RunE: runDrop,
}

func init() {
	dropCmd.Flags().BoolVarP(&dropForce, "force", "f", false, "skip confirmation prompt")
	dropCmd.Flags().StringVar(&dropScope, "scope", "", "only delete this kind[/season[/competition]]")
}

func parseScope(s string) (model.Scope, error) {
	parts := strings.SplitN(s, "/", 3)
	kind, err := model.ParseKind(parts[0])
	if err != nil {
		return model.Scope{}, err
	}
	scope := model.Scope{Kind: kind}
	if len(parts) > 1 {
		if scope.Season, err = strconv.Atoi(parts[1]); err != nil {
			return model.Scope{}, fmt.Errorf("bad season in scope %q: %w", s, err)
		}
	}
	if len(parts) > 2 {
		scope.Competition = parts[2]
	}
	return scope, nil
}

func runDrop(cmd *cobra.Command, args []string) error {
	if dropScope != "" {
		scope, err := parseScope(dropScope)
		if err != nil {
			return err
		}
		if !dropForce {
			fmt.Fprintf(os.Stderr, "This will permanently delete the %s snapshots in %s\n", scope, dbPath)
			fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
			return nil
		}
		db, err := storage.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		defer db.Close()
		n, err := db.DeleteScope(cmd.Context(), scope)
		if err != nil {
			return fmt.Errorf("delete %s: %w", scope, err)
		}
		fmt.Fprintf(os.Stdout, "Deleted %d snapshot(s) for %s\n", n, scope)
		return nil
	}

	if !dropForce {
		fmt.Fprintf(os.Stderr, "This will permanently delete: %s\n", dbPath)
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}
	if err := os.Remove(dbPath); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(os.Stdout, "Database does not exist, nothing to drop.")
			return nil
		}
		return fmt.Errorf("remove database: %w", err)
	}
	// WAL side files.
	_ = os.Remove(dbPath + "-wal")
	_ = os.Remove(dbPath + "-shm")
	fmt.Fprintf(os.Stdout, "Deleted: %s\n", dbPath)
	return nil
}
