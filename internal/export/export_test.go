package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"

	"github.com/pable/gleague-scout/internal/aggregator"
	"github.com/pable/gleague-scout/internal/model"
	"github.com/pable/gleague-scout/internal/percentile"
	"github.com/pable/gleague-scout/internal/ranking"
)

func TestFormatPrecision(t *testing.T) {
	cases := []struct {
		stat string
		v    float64
		want string
	}{
		{model.StatPts, 12.345, "12.3"},
		{model.StatPointsPerGame, 7.25, "7.2"},
		{model.StatTSPct, 0.56789, "0.568"},
		{"fg3_pct", 0.4, "0.400"},
		{"pts_percentile", 87.6, "88"},
		{model.StatGamesPlayed, 31, "31"},
		{model.StatAge, 24, "24"},
		{model.StatTeamWin, 0.625, "0.625"},
	}
	for _, c := range cases {
		if got := Format(c.stat, model.Num(c.v)); got != c.want {
			t.Errorf("Format(%s, %v): want %s, got %s", c.stat, c.v, c.want, got)
		}
	}
	if got := Format(model.StatPts, model.Null()); got != "" {
		t.Errorf("null should format empty, got %q", got)
	}
}

func targetPop() model.Population {
	row := func(name string, pts, ts float64, status string) model.StatRow {
		return model.StatRow{
			Subject: name,
			Season:  2024,
			Team:    "SXF",
			Attrs: map[string]string{
				model.AttrPosition:       "G",
				model.AttrContractStatus: status,
				model.AttrCategory:       "Scorer",
			},
			Stats: map[string]model.Value{
				model.StatPts:   model.Num(pts),
				model.StatTrb:   model.Num(4),
				model.StatAst:   model.Num(3),
				model.StatTSPct: model.Num(ts),
				model.StatAge:   model.Num(23),
			},
		}
	}
	return model.Population{Rows: []model.StatRow{
		row("Ava", 18.26, 0.6123, "Free Agent"),
		row("Bo", 9.04, 0.5, "Signed"),
	}}
}

func readCSV(t *testing.T, s string) [][]string {
	t.Helper()
	recs, err := csv.NewReader(strings.NewReader(s)).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	return recs
}

func TestWriteTargetCSV(t *testing.T) {
	pop := targetPop()
	pcts := percentile.Multi(pop, []string{model.StatPts, model.StatTrb, model.StatAst})

	var buf bytes.Buffer
	if err := WriteCSV(&buf, pop.Rows, TargetColumns(pcts)); err != nil {
		t.Fatal(err)
	}
	recs := readCSV(t, buf.String())
	if len(recs) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(recs))
	}
	wantHeader := "Player,Age,Pos,Team,g_league_category,contract_status,pts,trb,ast,ts_pct,pts_percentile,trb_percentile,ast_percentile"
	if got := strings.Join(recs[0], ","); got != wantHeader {
		t.Errorf("header:\nwant %s\ngot  %s", wantHeader, got)
	}
	ava := recs[1]
	if ava[0] != "Ava" || ava[1] != "23" || ava[2] != "G" || ava[6] != "18.3" || ava[9] != "0.612" {
		t.Errorf("unexpected Ava row %v", ava)
	}
	if ava[10] != "50" || recs[2][10] != "0" {
		t.Errorf("pts percentiles: Ava %s, Bo %s", ava[10], recs[2][10])
	}
}

func TestPercentileColumnFallsBackToStoredValue(t *testing.T) {
	row := model.StatRow{Subject: "x", Stats: map[string]model.Value{"pts_percentile": model.Num(71.4)}}
	col := PercentileColumn("pts_percentile", percentile.Result{Stat: model.StatPts})
	if got := col.Value(row); got != "71" {
		t.Errorf("want 71, got %s", got)
	}
}

func TestPopulationColumns(t *testing.T) {
	pop := targetPop()
	var buf bytes.Buffer
	if err := WriteCSV(&buf, pop.Rows, PopulationColumns(pop)); err != nil {
		t.Fatal(err)
	}
	header := readCSV(t, buf.String())[0]
	want := []string{"subject", "season", "team", model.AttrContractStatus, model.AttrCategory, model.AttrPosition}
	for i, h := range want {
		if header[i] != h {
			t.Fatalf("column %d: want %s, got %s (%v)", i, h, header[i], header)
		}
	}
}

func TestWriteRankingCSV(t *testing.T) {
	pop := targetPop()
	pop.Rows = append(pop.Rows, model.StatRow{Subject: "Cy", Stats: map[string]model.Value{model.StatPts: model.Null()}})
	var buf bytes.Buffer
	if err := WriteRankingCSV(&buf, ranking.Rank(pop, model.StatPts, ranking.Descending)); err != nil {
		t.Fatal(err)
	}
	recs := readCSV(t, buf.String())
	if len(recs) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(recs))
	}
	if strings.Join(recs[1], ",") != "1,1,Ava,18.3" {
		t.Errorf("first line %v", recs[1])
	}
	if strings.Join(recs[3], ",") != ",,Cy," {
		t.Errorf("unranked line %v", recs[3])
	}
}

func TestWriteProfileJSON(t *testing.T) {
	mk := func(name string, season int, ppg, gp float64) model.StatRow {
		return model.StatRow{Subject: name, Season: season, Stats: map[string]model.Value{
			model.StatPointsPerGame:   model.Num(ppg),
			model.StatReboundsPerGame: model.Num(5),
			model.StatAssistsPerGame:  model.Null(),
			model.StatGamesPlayed:     model.Num(gp),
			model.StatTotalPoints:     model.Num(ppg * gp),
		}}
	}
	all := model.Population{Rows: []model.StatRow{
		mk("Ava", 2024, 20.04, 30), mk("Bo", 2024, 10, 15), mk("Ava", 2023, 12, 20),
	}}
	p, err := aggregator.BuildPlayerProfile(all, "Ava", 0, aggregator.DefaultProfileOptions())
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteProfileJSON(&buf, p); err != nil {
		t.Fatal(err)
	}
	var doc ProfileDoc
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v\n%s", err, buf.String())
	}
	if doc.Player != "Ava" || doc.Season != 2024 || doc.LeagueSize != 2 {
		t.Errorf("unexpected header %+v", doc)
	}
	if len(doc.Stats) != 3 || *doc.Stats[0].Value != 20 {
		t.Fatalf("unexpected stat lines %+v", doc.Stats)
	}
	if doc.Stats[2].Value != nil || doc.Stats[2].Rank != nil {
		t.Errorf("null assists should encode as null: %+v", doc.Stats[2])
	}
	if !strings.Contains(buf.String(), `"value": null`) {
		t.Errorf("expected literal null in output:\n%s", buf.String())
	}
	if len(doc.History) != 2 || doc.History[0].Season != 2024 {
		t.Errorf("unexpected history %+v", doc.History)
	}
	if got := doc.Advanced["availability"]; got == nil || *got != 100 {
		t.Errorf("availability: %v", got)
	}
}

func TestCreateZstd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv.zst")
	w, err := Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := io.WriteString(w, "a,b\n1,2\n"); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatal(err)
	}
	defer dec.Close()
	got, err := io.ReadAll(dec)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "a,b\n1,2\n" {
		t.Errorf("round trip mismatch: %q", got)
	}
}

func gameLogFixture(t *testing.T) aggregator.GameLog {
	t.Helper()
	row := func(date string, pts, fgm, fga float64) model.StatRow {
		return model.StatRow{Subject: "Ana", Season: 2024, Team: "Swarm", Game: date, Stats: map[string]model.Value{
			model.StatPoints: model.Num(pts), model.StatRebounds: model.Num(4), model.StatAssists: model.Num(6),
			model.StatSteals: model.Num(1), model.StatBlocks: model.Num(0), model.StatTurnovers: model.Num(3),
			model.StatFGM: model.Num(fgm), model.StatFGA: model.Num(fga), model.StatMinutes: model.Num(31.5),
		}}
	}
	pop := model.Population{Scope: model.Scope{Kind: model.KindGames}, Rows: []model.StatRow{
		row("2024-11-03", 20, 8, 16),
		row("2024-11-01", 12, 5, 12),
	}}
	g, err := aggregator.BuildGameLog(pop, "Ana", aggregator.GameFilter{}, aggregator.GameMetrics)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestWriteGameLogCSV(t *testing.T) {
	g := gameLogFixture(t)
	var buf bytes.Buffer
	if err := WriteCSV(&buf, g.Games.Rows, GameLogColumns()); err != nil {
		t.Fatal(err)
	}
	recs, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected header and 2 games, got %d lines", len(recs))
	}
	header := recs[0]
	if header[1] != "game_date" || header[len(header)-1] != model.StatEfficiency {
		t.Errorf("unexpected header %v", header)
	}
	first := recs[1]
	// 12 + 4 + 6 + 1 + 0 - 3
	if first[1] != "2024-11-01" || first[3] != "12" || first[len(first)-1] != "20" {
		t.Errorf("unexpected first game %v", first)
	}
	if first[9] != "31.5" {
		t.Errorf("minutes keep a decimal, got %q", first[9])
	}
	if first[len(first)-3] != "" {
		t.Errorf("missing free throws should be blank, got %q", first[len(first)-3])
	}
}

func TestGameLogDoc(t *testing.T) {
	doc := NewGameLogDoc(gameLogFixture(t), model.StatPoints, 5)
	if doc.Games != 2 || doc.First != "2024-11-01" || doc.Last != "2024-11-03" {
		t.Errorf("unexpected header %+v", doc)
	}
	if fg := doc.Shooting["fg_pct"]; fg == nil || *fg != 46.4 {
		t.Errorf("fg_pct %v", fg)
	}
	if doc.Shooting["ft_pct"] != nil {
		t.Error("no attempts should encode as null")
	}
	if len(doc.Timeline) != 2 || *doc.Timeline[1].Rolling != 16 {
		t.Errorf("timeline %+v", doc.Timeline)
	}
	b, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"ft_pct":null`) {
		t.Errorf("json %s", b)
	}
}
