package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pable/gleague-scout/internal/aggregator"
	"github.com/pable/gleague-scout/internal/model"
	"github.com/pable/gleague-scout/internal/ranking"
)

func league() model.Population {
	mk := func(name string, ppg, gp float64) model.StatRow {
		return model.StatRow{Subject: name, Season: 2024, Team: "OSC", Stats: map[string]model.Value{
			model.StatPointsPerGame:   model.Num(ppg),
			model.StatReboundsPerGame: model.Num(4),
			model.StatAssistsPerGame:  model.Null(),
			model.StatGamesPlayed:     model.Num(gp),
			model.StatTotalPoints:     model.Num(ppg * gp),
		}}
	}
	return model.Population{Rows: []model.StatRow{mk("Ava", 21.5, 30), mk("Bo", 11.5, 20), mk("Cy", 14, 25)}}
}

func TestPrintProfile(t *testing.T) {
	p, err := aggregator.BuildPlayerProfile(league(), "Ava", 2024, aggregator.DefaultProfileOptions())
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	PrintProfile(&buf, p)
	out := buf.String()
	for _, want := range []string{"Ava", "Points/Game", "21.5", "#1 out of 3", "+5.8", "Availability: 100.0%", "Scoring", "min-mean-max"} {
		if !strings.Contains(out, want) {
			t.Errorf("profile output missing %q:\n%s", want, out)
		}
	}
	// Assists are null league-wide.
	if !strings.Contains(out, "Assists/Game") || !strings.Contains(out, dash) {
		t.Errorf("null stat line should render a dash:\n%s", out)
	}
}

func TestPrintLeaderboard(t *testing.T) {
	pop := league()
	pop.Rows = append(pop.Rows, model.StatRow{Subject: "Dee", Season: 2024})
	var buf bytes.Buffer
	PrintLeaderboard(&buf, ranking.Rank(pop, model.StatPointsPerGame, ranking.Descending), 0)
	out := buf.String()
	if strings.Index(out, "Ava") > strings.Index(out, "Cy") || strings.Index(out, "Cy") > strings.Index(out, "Bo") {
		t.Errorf("leaderboard out of order:\n%s", out)
	}
	if !strings.Contains(out, "(3 ranked of 4, desc)") {
		t.Errorf("missing footer:\n%s", out)
	}
}

func TestPrintComparison(t *testing.T) {
	c, err := aggregator.Compare(league(), "Ava", "Bo", 2024, nil)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	PrintComparison(&buf, c)
	out := buf.String()
	if !strings.Contains(out, "> 21.5") || !strings.Contains(out, "+10.0") {
		t.Errorf("comparison should mark the leader and diff:\n%s", out)
	}
}

func TestPrintDistribution(t *testing.T) {
	var buf bytes.Buffer
	PrintDistribution(&buf, "By category", []aggregator.Category{{Label: "Development Target", Count: 4}, {Label: "Other", Count: 2}})
	out := buf.String()
	if !strings.Contains(out, strings.Repeat("█", 30)) || !strings.Contains(out, strings.Repeat("█", 15)) {
		t.Errorf("bars not proportional:\n%s", out)
	}
}

func TestNoData(t *testing.T) {
	var buf bytes.Buffer
	NoData(&buf, "team data")
	if buf.String() != "No team data available.\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestPrintQuery(t *testing.T) {
	var buf bytes.Buffer
	PrintQuery(&buf, []string{"subject", "value"}, [][]string{{"Ava", "21.5"}, {"Bo", "NULL"}})
	out := buf.String()
	for _, want := range []string{"SUBJECT", "Ava", "21.5", "—", "(2 rows)"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}

	buf.Reset()
	PrintQuery(&buf, []string{"n"}, nil)
	if buf.String() != "(no rows)\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestPrintGameLog(t *testing.T) {
	mk := func(name, date string, pts float64) model.StatRow {
		return model.StatRow{Subject: name, Season: 2024, Team: "OSC", Game: date, Stats: map[string]model.Value{
			model.StatPoints: model.Num(pts),
			model.StatFGM:    model.Num(pts / 2),
			model.StatFGA:    model.Num(pts),
		}}
	}
	pop := model.Population{Rows: []model.StatRow{
		mk("Ava", "2024-11-01", 10), mk("Ava", "2024-11-04", 30), mk("Bo", "2024-11-01", 8),
	}}
	g, err := aggregator.BuildGameLog(pop, "Ava", aggregator.GameFilter{}, aggregator.GameMetrics)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	PrintGameLog(&buf, g, model.StatPoints, 2)
	out := buf.String()
	for _, want := range []string{"Ava", "Games: 2 (2024-11-01 to 2024-11-04)", "League: 3 games", "Points", "+4.0", "FG: 50.0%", "3P: " + dash, "2-game rolling", "20.0"} {
		if !strings.Contains(out, want) {
			t.Errorf("game log output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	PrintGameLog(&buf, g, model.StatPoints, 5)
	if !strings.Contains(buf.String(), "Timeline needs at least 5 games") {
		t.Errorf("short logs skip the timeline:\n%s", buf.String())
	}
}
