package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/gleague-scout/internal/aggregator"
	"github.com/pable/gleague-scout/internal/classify"
	"github.com/pable/gleague-scout/internal/loader"
	"github.com/pable/gleague-scout/internal/logger"
	"github.com/pable/gleague-scout/internal/model"
	"github.com/pable/gleague-scout/internal/ranking"
	"github.com/pable/gleague-scout/internal/report"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cHeader   = color.New(color.FgCyan, color.Bold)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive REPL session",
	Long:  "Open a persistent session against the data source. Populations are fetched once and cached. Type 'help' for available commands.",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

type shellSession struct {
	ctx    context.Context
	cache  *loader.Cached
	season int
}

func runShell(cmd *cobra.Command, _ []string) error {
	src, closeFn, err := openSource(cmd.Context(), "")
	if err != nil {
		return err
	}
	defer closeFn()
	s := &shellSession{
		ctx:   cmd.Context(),
		cache: loader.NewCached(src, cfg.CacheTTL, loader.WithLogger(logger.Named("cache"))),
	}

	cGreeting.Println("scoutmetrics shell")
	cMuted.Printf("source: %s  |  type 'help' or 'exit'\n", src.Name())
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Print("scout")
		if s.season != 0 {
			cMuted.Printf("[%d]", s.season)
		}
		cMuted.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		name, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		switch name {
		case "exit", "quit":
			return nil
		case "help":
			shellHelp()
		case "season":
			n, err := strconv.Atoi(rest)
			if err != nil {
				cError.Fprintln(os.Stderr, "usage: season <year>   (0 = latest)")
				continue
			}
			s.season = n
		case "seasons":
			s.seasons(rest)
		case "find":
			s.find(rest)
		case "profile":
			if rest == "" {
				cError.Fprintln(os.Stderr, "usage: profile <player>")
				continue
			}
			s.profile(rest)
		case "compare":
			left, right, ok := strings.Cut(rest, " vs ")
			if !ok {
				cError.Fprintln(os.Stderr, "usage: compare <player> vs <player>")
				continue
			}
			s.compare(strings.TrimSpace(left), strings.TrimSpace(right))
		case "rank":
			fields := strings.Fields(rest)
			if len(fields) == 0 {
				cError.Fprintln(os.Stderr, "usage: rank <stat> [top]")
				continue
			}
			top := 10
			if len(fields) > 1 {
				top, _ = strconv.Atoi(fields[1])
			}
			s.rank(fields[0], top)
		case "teams":
			s.teams()
		case "targets":
			s.targets()
		case "refresh":
			s.cache.Purge()
			cMuted.Println("cache cleared")
		default:
			cWarn.Fprintf(os.Stderr, "unknown command %q, type 'help'\n", name)
		}
	}
	return nil
}

func shellHelp() {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"season <year>", "pin the season for later commands (0 = latest)"},
		{"seasons [players|targets|teams]", "list available seasons"},
		{"find <name>", "search players by name substring"},
		{"profile <player>", "player profile against the league"},
		{"compare <player> vs <player>", "side-by-side comparison"},
		{"rank <stat> [top]", "leaderboard for one statistic"},
		{"teams", "team overview, best win rate first"},
		{"targets", "contract-target classification"},
		{"refresh", "drop cached populations"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-38s", r.cmd)
		fmt.Println(r.desc)
	}
	fmt.Println()
}

// population fetches every season of kind and warns when the copy is stale.
func (s *shellSession) population(kind model.Kind) (model.Population, bool) {
	snap, err := s.cache.Snapshot(s.ctx, model.Scope{Kind: kind})
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return model.Population{}, false
	}
	if snap.Stale {
		cWarn.Fprintf(os.Stderr, "warning: source unavailable, showing data fetched %s\n", snap.FetchedAt.Local().Format("2006-01-02 15:04"))
	}
	if snap.Population.Empty() {
		cMuted.Printf("No %s data available.\n", kind)
		return snap.Population, false
	}
	return snap.Population, true
}

func (s *shellSession) seasons(arg string) {
	kind := model.KindPlayers
	if arg != "" {
		k, err := model.ParseKind(arg)
		if err != nil {
			cError.Fprintf(os.Stderr, "error: %v\n", err)
			return
		}
		kind = k
	}
	seasons, err := s.cache.Seasons(s.ctx, kind)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	cHeader.Printf("%s: ", kind)
	fmt.Println(strings.Trim(fmt.Sprint(seasons), "[]"))
}

func (s *shellSession) find(name string) {
	all, ok := s.population(model.KindPlayers)
	if !ok {
		return
	}
	season := latestSeason(all, s.season)
	rows := aggregator.Search(all.Season(season), aggregator.Filter{
		Name:   name,
		SortBy: model.StatPointsPerGame,
		Limit:  25,
	})
	if len(rows) == 0 {
		cMuted.Println("No players match.")
		return
	}
	report.PrintPlayers(os.Stdout, rows, []string{model.AttrPosition}, defaultStats(model.KindPlayers))
}

func (s *shellSession) profile(name string) {
	all, ok := s.population(model.KindPlayers)
	if !ok {
		return
	}
	opts, err := profileOptions()
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	p, err := aggregator.BuildPlayerProfile(all, name, s.season, opts)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	report.PrintProfile(os.Stdout, p)
}

func (s *shellSession) compare(left, right string) {
	all, ok := s.population(model.KindPlayers)
	if !ok {
		return
	}
	c, err := aggregator.Compare(all, left, right, latestSeason(all, s.season), nil)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	report.PrintComparison(os.Stdout, c)
}

func (s *shellSession) rank(stat string, top int) {
	all, ok := s.population(model.KindPlayers)
	if !ok {
		return
	}
	season := latestSeason(all, s.season)
	cHeader.Printf("\n%s  |  Season %d\n", stat, season)
	pop, _ := aggregator.Frame(all, season, "")
	report.PrintLeaderboard(os.Stdout, ranking.Rank(pop, stat, ranking.Descending), top)
}

func (s *shellSession) teams() {
	all, ok := s.population(model.KindTeams)
	if !ok {
		return
	}
	season := latestSeason(all, s.season)
	_, competition := aggregator.Frame(all, season, "")
	cHeader.Printf("\nSeason %d  |  %s\n", season, competition)
	report.PrintTeams(os.Stdout, aggregator.TeamOverview(all, season, competition, nil), aggregator.DefaultTeamStats)
}

func (s *shellSession) targets() {
	all, ok := s.population(model.KindTargets)
	if !ok {
		return
	}
	pop := all.Season(latestSeason(all, s.season))
	cc := cfg.ClassifyConfig()
	rules := classify.ReferenceRules(cc)
	targets := aggregator.Targets(pop, rules, cc)
	report.PrintTargets(os.Stdout, targets, cc.TrackedStats)
	report.PrintDistribution(os.Stdout, "By computed category", aggregator.Distribution(rules, targets))
}
