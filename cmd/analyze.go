package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/gleague-scout/internal/advisor"
	"github.com/pable/gleague-scout/internal/aggregator"
	"github.com/pable/gleague-scout/internal/classify"
	"github.com/pable/gleague-scout/internal/model"
)

var (
	analyzeModel  string
	analyzeAPIKey string
	analyzeSeason int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "AI-powered grounded scouting briefing (requires ANTHROPIC_API_KEY)",
}

var analyzePlayerCmd = &cobra.Command{
	Use:   "player <player> <question>",
	Short: "Ask about one player's profile and target classification",
	Args:  cobra.ExactArgs(2),
	RunE:  runAnalyzePlayer,
}

var analyzeCompareCmd = &cobra.Command{
	Use:   "compare <player> <player> <question>",
	Short: "Ask about a head-to-head comparison",
	Args:  cobra.ExactArgs(3),
	RunE:  runAnalyzeCompare,
}

func init() {
	analyzeCmd.PersistentFlags().StringVar(&analyzeModel, "model", "", "Anthropic model to use (default from config)")
	analyzeCmd.PersistentFlags().StringVar(&analyzeAPIKey, "api-key", "", "Anthropic API key (falls back to $ANTHROPIC_API_KEY)")
	analyzeCmd.PersistentFlags().IntVar(&analyzeSeason, "season", 0, "season (0 = latest)")

	analyzeCmd.AddCommand(analyzePlayerCmd)
	analyzeCmd.AddCommand(analyzeCompareCmd)
}

func newAdvisor() (*advisor.Client, error) {
	m := analyzeModel
	if m == "" {
		m = cfg.AnthropicModel
	}
	return advisor.New(analyzeAPIKey, m)
}

func runAnalyzePlayer(cmd *cobra.Command, args []string) error {
	name, question := args[0], args[1]
	client, err := newAdvisor()
	if err != nil {
		return err
	}
	opts, err := profileOptions()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	players, err := fetch(ctx, model.Scope{Kind: model.KindPlayers})
	if err != nil {
		return err
	}
	p, err := aggregator.BuildPlayerProfile(players, name, analyzeSeason, opts)
	if err != nil {
		return err
	}

	// The contracts table is optional context.
	var target *aggregator.Target
	if contracts, err := fetch(ctx, model.Scope{Kind: model.KindTargets}); err == nil {
		pop := contracts.Season(latestSeason(contracts, analyzeSeason))
		cc := cfg.ClassifyConfig()
		for _, t := range aggregator.Targets(pop, classify.ReferenceRules(cc), cc) {
			if t.Row.Subject == name {
				target = &t
				break
			}
		}
	}

	contextJSON, err := advisor.PlayerContext(p, target)
	if err != nil {
		return fmt.Errorf("build context: %w", err)
	}
	return stream(cmd, client, contextJSON, question)
}

func runAnalyzeCompare(cmd *cobra.Command, args []string) error {
	client, err := newAdvisor()
	if err != nil {
		return err
	}
	players, err := fetch(cmd.Context(), model.Scope{Kind: model.KindPlayers})
	if err != nil {
		return err
	}
	c, err := aggregator.Compare(players, args[0], args[1], latestSeason(players, analyzeSeason), nil)
	if err != nil {
		return err
	}
	contextJSON, err := advisor.CompareContext(c)
	if err != nil {
		return fmt.Errorf("build context: %w", err)
	}
	return stream(cmd, client, contextJSON, args[2])
}

func stream(cmd *cobra.Command, client *advisor.Client, contextJSON, question string) error {
	fmt.Fprintln(os.Stdout, "\n─── Scouting Briefing ───────────────────────────────")
	err := client.Stream(cmd.Context(), os.Stdout, contextJSON, question)
	fmt.Fprintln(os.Stdout, "\n─────────────────────────────────────────────────────")
	return err
}
