package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/gleague-scout/internal/model"
)

var seasonsCmd = &cobra.Command{
	Use:   "seasons [players|targets|teams]",
	Short: "List the seasons available in a dataset, newest first",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSeasons,
}

func runSeasons(cmd *cobra.Command, args []string) error {
	kind := model.KindPlayers
	if len(args) == 1 {
		k, err := model.ParseKind(args[0])
		if err != nil {
			return err
		}
		kind = k
	}
	src, closeFn, err := openSource(cmd.Context(), "")
	if err != nil {
		return err
	}
	defer closeFn()

	seasons, err := src.Seasons(cmd.Context(), kind)
	if err != nil {
		return fmt.Errorf("list seasons: %w", err)
	}
	if len(seasons) == 0 {
		fmt.Fprintf(os.Stdout, "No %s seasons available.\n", kind)
		return nil
	}
	parts := make([]string, len(seasons))
	for i, s := range seasons {
		parts[i] = strconv.Itoa(s)
	}
	fmt.Fprintf(os.Stdout, "%s: %s\n", kind, strings.Join(parts, ", "))
	return nil
}
