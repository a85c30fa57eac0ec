package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/gleague-scout/internal/aggregator"
	"github.com/pable/gleague-scout/internal/chart"
	"github.com/pable/gleague-scout/internal/export"
	"github.com/pable/gleague-scout/internal/model"
	"github.com/pable/gleague-scout/internal/normalize"
	"github.com/pable/gleague-scout/internal/report"
)

var (
	profileSeason   int
	profileStrategy string
	profileVs       string
	profileSVG      string
	profileJSON     string
	profileByPos    bool
)

var profileCmd = &cobra.Command{
	Use:   "profile <player>",
	Short: "Show a player's season profile against the league",
	Long: `Show key per-game statistics against the league average with percentiles and
ranks, derived metrics, a normalized radar (50 = league average) and the
player's season history.

Examples:
  scoutmetrics profile "Mac McClung"
  scoutmetrics profile "Mac McClung" --season 2023 --svg mac.svg --vs "Pete Nance"`,
	Args: cobra.ExactArgs(1),
	RunE: runProfile,
}

func init() {
	profileCmd.Flags().IntVar(&profileSeason, "season", 0, "season (0 = the player's latest)")
	profileCmd.Flags().StringVar(&profileStrategy, "strategy", "", "radar anchors: min-mean-max or league-average (default from config)")
	profileCmd.Flags().StringVar(&profileVs, "vs", "", "overlay another player's radar in the SVG")
	profileCmd.Flags().StringVar(&profileSVG, "svg", "", "write the radar chart to this SVG file")
	profileCmd.Flags().BoolVar(&profileByPos, "by-pos", false, "quote percentiles against players of the same position")
	profileCmd.Flags().StringVar(&profileJSON, "json", "", "write the profile as JSON to this file (- for stdout)")
}

// profileOptions applies config and the --strategy and --by-pos flags.
func profileOptions() (aggregator.ProfileOptions, error) {
	opts := aggregator.DefaultProfileOptions()
	opts.Dimensions = normalize.DefaultDimensions(cfg.Profile.GamesCap)
	opts.MinutesPerGame = cfg.Profile.MinutesPerGame
	opts.ByGroup = cfg.Profile.ByPosition || profileByPos
	strategy, err := cfg.Strategy()
	if err != nil {
		return opts, err
	}
	if profileStrategy != "" {
		if strategy, err = normalize.ParseStrategy(profileStrategy); err != nil {
			return opts, err
		}
	}
	opts.Strategy = strategy
	return opts, nil
}

func runProfile(cmd *cobra.Command, args []string) error {
	opts, err := profileOptions()
	if err != nil {
		return err
	}
	all, err := fetch(cmd.Context(), model.Scope{Kind: model.KindPlayers})
	if err != nil {
		return err
	}
	if all.Empty() {
		report.NoData(os.Stdout, "player data")
		return nil
	}
	p, err := aggregator.BuildPlayerProfile(all, args[0], profileSeason, opts)
	if err != nil {
		return err
	}

	if profileJSON != "" {
		w, err := export.Create(profileJSON)
		if err != nil {
			return err
		}
		if err := export.WriteProfileJSON(w, p); err != nil {
			w.Close()
			return fmt.Errorf("write profile: %w", err)
		}
		if err := w.Close(); err != nil {
			return err
		}
		if profileJSON == "-" {
			return nil
		}
	}

	report.PrintProfile(os.Stdout, p)

	if profileSVG != "" {
		profiles := []normalize.Profile{p.Radar}
		title := fmt.Sprintf("%s (%d)", p.Subject, p.Season)
		if profileVs != "" {
			other, err := normalize.ProfileOf(all.Season(p.Season), profileVs, opts.Dimensions, opts.Strategy)
			if err != nil {
				return fmt.Errorf("--vs: %w", err)
			}
			profiles = append(profiles, other)
			title = fmt.Sprintf("%s vs %s (%d)", p.Subject, profileVs, p.Season)
		}
		if err := writeSVG(profileSVG, func(f *os.File) error { return chart.Radar(f, title, profiles...) }); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "\nRadar written to %s\n", profileSVG)
	}
	return nil
}

func writeSVG(path string, draw func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := draw(f); err != nil {
		f.Close()
		return fmt.Errorf("draw %s: %w", path, err)
	}
	return f.Close()
}
