package aggregator

import (
	"errors"
	"testing"
	"time"

	"github.com/pable/gleague-scout/internal/model"
	"github.com/pable/gleague-scout/internal/normalize"
)

func game(name, date, team string, pts, fgm, fga float64) model.StatRow {
	return model.StatRow{
		Subject: name,
		Season:  2024,
		Team:    team,
		Game:    date,
		Stats: map[string]model.Value{
			model.StatPoints:    model.Num(pts),
			model.StatRebounds:  model.Num(5),
			model.StatAssists:   model.Num(3),
			model.StatSteals:    model.Num(1),
			model.StatBlocks:    model.Num(1),
			model.StatTurnovers: model.Num(2),
			model.StatFGM:       model.Num(fgm),
			model.StatFGA:       model.Num(fga),
			model.Stat3PM:       model.Num(0),
			model.Stat3PA:       model.Num(0),
			model.StatFTM:       model.Num(2),
			model.StatFTA:       model.Num(4),
			model.StatMinutes:   model.Num(30),
			model.StatPlusMinus: model.Num(pts - 20),
		},
	}
}

func games() model.Population {
	return model.Population{
		Scope: model.Scope{Kind: model.KindGames},
		Rows: []model.StatRow{
			game("Ana", "2024-11-05", "Capitanes", 30, 12, 14),
			game("Bo", "2024-11-01", "Swarm", 0, 0, 5),
			game("Ana", "2024-11-01", "Swarm", 10, 4, 10),
			game("Bo", "2024-11-03", "Swarm", 40, 15, 20),
			game("Ana", "2024-11-03", "Swarm", 20, 8, 16),
		},
	}
}

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestBuildGameLog(t *testing.T) {
	g, err := BuildGameLog(games(), "Ana", GameFilter{}, GameMetrics)
	if err != nil {
		t.Fatalf("BuildGameLog: %v", err)
	}
	if g.Games.Len() != 3 || g.First() != "2024-11-01" || g.Last() != "2024-11-05" {
		t.Errorf("games should be sorted oldest first: %d games %s..%s", g.Games.Len(), g.First(), g.Last())
	}
	if len(g.Teams) != 2 || g.Teams[0] != "Swarm" || g.Teams[1] != "Capitanes" {
		t.Errorf("teams in order of appearance: %v", g.Teams)
	}
	pts := g.Lines[0]
	if !approx(pts.Mean.Float, 20) || !approx(pts.LeagueMean.Float, 20) || !approx(pts.Delta().Float, 0) {
		t.Errorf("points line %+v", pts)
	}
	// 0 and 10 of the five league games sit below a 20 mean.
	if !pts.HasPct || !approx(pts.Percentile, 40) {
		t.Errorf("points percentile %v", pts.Percentile)
	}
	eff := g.Lines[len(g.Lines)-1]
	if eff.Stat != model.StatEfficiency || !approx(eff.Mean.Float, 28) {
		t.Errorf("efficiency should be derived per game: %+v", eff)
	}
	if !approx(g.FG.Pct.Float, 60) || !approx(g.FreeThrow.Pct.Float, 50) {
		t.Errorf("shooting from sums: fg %v ft %v", g.FG.Pct, g.FreeThrow.Pct)
	}
	if g.ThreePoint.Pct.Valid {
		t.Error("no attempts should leave the percentage null")
	}
	if !approx(g.Minutes.Float, 30) || !approx(g.PlusMinus.Float, 0) || g.LeagueGames != 5 {
		t.Errorf("minutes %v plus/minus %v league games %d", g.Minutes, g.PlusMinus, g.LeagueGames)
	}
}

func TestBuildGameLogFilters(t *testing.T) {
	g, err := BuildGameLog(games(), "Ana", GameFilter{Team: "Swarm"}, GameMetrics)
	if err != nil {
		t.Fatal(err)
	}
	if g.Games.Len() != 2 || !approx(g.Lines[0].Mean.Float, 15) || g.LeagueGames != 5 {
		t.Errorf("team filter narrows the player only: %d games, mean %v, league %d", g.Games.Len(), g.Lines[0].Mean, g.LeagueGames)
	}

	g, err = BuildGameLog(games(), "Ana", GameFilter{From: day("2024-11-02")}, GameMetrics)
	if err != nil {
		t.Fatal(err)
	}
	if g.Games.Len() != 2 || !approx(g.Lines[0].Mean.Float, 25) {
		t.Errorf("date window: %d games, mean %v", g.Games.Len(), g.Lines[0].Mean)
	}
	if g.LeagueGames != 3 || !approx(g.Lines[0].LeagueMean.Float, 30) {
		t.Errorf("league should share the date window: %d games, mean %v", g.LeagueGames, g.Lines[0].LeagueMean)
	}

	g, err = BuildGameLog(games(), "Ana", GameFilter{To: day("2024-11-03"), Last: 1}, GameMetrics)
	if err != nil {
		t.Fatal(err)
	}
	if g.Games.Len() != 1 || g.First() != "2024-11-03" {
		t.Errorf("last should keep the newest game in range, got %s", g.First())
	}
}

func TestBuildGameLogErrors(t *testing.T) {
	if _, err := BuildGameLog(model.Population{}, "Ana", GameFilter{}, GameMetrics); !errors.Is(err, normalize.ErrEmptyPopulation) {
		t.Errorf("empty: %v", err)
	}
	if _, err := BuildGameLog(games(), "Zed", GameFilter{}, GameMetrics); !errors.Is(err, normalize.ErrUnknownSubject) {
		t.Errorf("unknown player: %v", err)
	}
	if _, err := BuildGameLog(games(), "Ana", GameFilter{Season: 2023}, GameMetrics); !errors.Is(err, normalize.ErrUnknownSubject) {
		t.Errorf("empty window: %v", err)
	}
}

func TestTimelineRollingMean(t *testing.T) {
	pts := []model.Value{model.Num(10), model.Num(20), model.Null(), model.Num(40)}
	pop := model.Population{Scope: model.Scope{Kind: model.KindGames}}
	for i, v := range pts {
		pop.Rows = append(pop.Rows, model.StatRow{
			Subject: "Ana",
			Game:    day("2024-11-01").AddDate(0, 0, i).Format(time.DateOnly),
			Stats:   map[string]model.Value{model.StatPoints: v},
		})
	}
	got := Timeline(pop, model.StatPoints, 2)
	want := []float64{10, 15, 20, 40}
	if len(got) != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), len(got))
	}
	for i, w := range want {
		if !got[i].Rolling.Valid || !approx(got[i].Rolling.Float, w) {
			t.Errorf("game %d: rolling %v, want %v", i, got[i].Rolling, w)
		}
	}
	if got[2].Value.Valid {
		t.Error("a game without the stat keeps a null value")
	}
	if Timeline(pop, model.StatPoints, 0)[1].Rolling.Float != 20 {
		t.Error("a window below one should fall back to the game itself")
	}
}
