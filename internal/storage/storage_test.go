package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pable/gleague-scout/internal/model"
)

func openMemDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func playerRow(name string, season int, ppg float64, status string) model.StatRow {
	return model.StatRow{
		Subject: name,
		Season:  season,
		Group:   "G",
		Team:    "Capitanes",
		Attrs:   map[string]string{model.AttrContractStatus: status},
		Stats: map[string]model.Value{
			model.StatPointsPerGame: model.Num(ppg),
			model.StatGamesPlayed:   model.Null(),
		},
	}
}

func allSeasons(t *testing.T) model.Population {
	t.Helper()
	pop, err := model.NewPopulation(model.Scope{Kind: model.KindPlayers}, []model.StatRow{
		playerRow("Ana", 2024, 18.5, "Free Agent"),
		playerRow("Ana", 2023, 12.0, "Free Agent"),
		playerRow("Bo", 2024, 9.25, "Signed"),
	})
	if err != nil {
		t.Fatal(err)
	}
	return pop
}

func TestSaveAndLoadSnapshot(t *testing.T) {
	db := openMemDB(t)
	ctx := context.Background()
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	info, err := db.SaveSnapshot(ctx, allSeasons(t), "csv", at)
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	if info.Rows != 3 || info.ID == 0 {
		t.Errorf("unexpected info %+v", info)
	}

	pop, got, err := db.LoadPopulation(ctx, model.Scope{Kind: model.KindPlayers})
	if err != nil {
		t.Fatalf("LoadPopulation: %v", err)
	}
	if pop.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", pop.Len())
	}
	if !got.FetchedAt.Equal(at) || got.Source != "csv" {
		t.Errorf("snapshot info not round-tripped: %+v", got)
	}
	ana, ok := pop.Find("Ana")
	if !ok {
		t.Fatal("Ana missing")
	}
	// Ordered by subject then season desc.
	if ana.Season != 2024 || ana.Stat(model.StatPointsPerGame).Float != 18.5 {
		t.Errorf("unexpected first Ana row %+v", ana)
	}
	if v, present := ana.Stats[model.StatGamesPlayed]; !present || v.Valid {
		t.Errorf("null statistic should load as present but null, got %+v (present=%v)", v, present)
	}
	if ana.Attr(model.AttrContractStatus) != "Free Agent" || ana.Group != "G" || ana.Team != "Capitanes" {
		t.Errorf("attributes not round-tripped: %+v", ana)
	}
}

func TestLoadSeasonFallsBackToAllSeasons(t *testing.T) {
	db := openMemDB(t)
	ctx := context.Background()
	if _, err := db.SaveSnapshot(ctx, allSeasons(t), "csv", time.Now()); err != nil {
		t.Fatal(err)
	}

	scope := model.Scope{Kind: model.KindPlayers, Season: 2024}
	pop, _, err := db.LoadPopulation(ctx, scope)
	if err != nil {
		t.Fatalf("LoadPopulation: %v", err)
	}
	if pop.Len() != 2 {
		t.Errorf("expected 2 rows for 2024, got %d", pop.Len())
	}
	if pop.Scope != scope {
		t.Errorf("population should carry the requested scope, got %s", pop.Scope)
	}
}

func TestSaveSnapshotReplacesScope(t *testing.T) {
	db := openMemDB(t)
	ctx := context.Background()
	if _, err := db.SaveSnapshot(ctx, allSeasons(t), "csv", time.Now()); err != nil {
		t.Fatal(err)
	}
	smaller, _ := model.NewPopulation(model.Scope{Kind: model.KindPlayers}, []model.StatRow{
		playerRow("Cy", 2024, 4, "Free Agent"),
	})
	if _, err := db.SaveSnapshot(ctx, smaller, "warehouse", time.Now()); err != nil {
		t.Fatal(err)
	}

	pop, info, err := db.LoadPopulation(ctx, model.Scope{Kind: model.KindPlayers})
	if err != nil {
		t.Fatal(err)
	}
	if pop.Len() != 1 || info.Source != "warehouse" {
		t.Errorf("expected the replacement snapshot, got %d rows from %s", pop.Len(), info.Source)
	}
	list, _ := db.ListSnapshots(ctx)
	if len(list) != 1 {
		t.Errorf("expected one snapshot after replace, got %d", len(list))
	}
}

func TestSaveSnapshotRejectsDuplicateKeys(t *testing.T) {
	db := openMemDB(t)
	pop := model.Population{
		Scope: model.Scope{Kind: model.KindPlayers},
		Rows:  []model.StatRow{playerRow("Ana", 2024, 1, ""), playerRow("Ana", 2024, 2, "")},
	}
	if _, err := db.SaveSnapshot(context.Background(), pop, "csv", time.Now()); err == nil {
		t.Error("expected duplicate key error")
	}
	list, _ := db.ListSnapshots(context.Background())
	if len(list) != 0 {
		t.Error("failed save should leave nothing behind")
	}
}

func TestFetchPopulationEmptyWhenMissing(t *testing.T) {
	db := openMemDB(t)
	ctx := context.Background()

	_, _, err := db.LoadPopulation(ctx, model.Scope{Kind: model.KindTeams})
	if !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("expected ErrNoSnapshot, got %v", err)
	}
	pop, err := db.FetchPopulation(ctx, model.Scope{Kind: model.KindTeams, Season: 2024})
	if err != nil {
		t.Fatalf("FetchPopulation: %v", err)
	}
	if !pop.Empty() || pop.Scope.Kind != model.KindTeams {
		t.Errorf("expected empty teams population, got %+v", pop)
	}
}

func TestSeasonsAndDelete(t *testing.T) {
	db := openMemDB(t)
	ctx := context.Background()
	if _, err := db.SaveSnapshot(ctx, allSeasons(t), "csv", time.Now()); err != nil {
		t.Fatal(err)
	}

	seasons, err := db.Seasons(ctx, model.KindPlayers)
	if err != nil {
		t.Fatal(err)
	}
	if len(seasons) != 2 || seasons[0] != 2024 || seasons[1] != 2023 {
		t.Errorf("expected [2024 2023], got %v", seasons)
	}

	n, err := db.DeleteScope(ctx, model.Scope{Kind: model.KindPlayers})
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("expected 1 snapshot removed, got %d", n)
	}
	cols, rows, err := db.QueryRaw(ctx, "SELECT COUNT(*) AS n FROM stat_values")
	if err != nil {
		t.Fatal(err)
	}
	if cols[0] != "n" || rows[0][0] != "0" {
		t.Errorf("values should be deleted with the snapshot, got %v %v", cols, rows)
	}
}

func TestQueryRawFormatsNulls(t *testing.T) {
	db := openMemDB(t)
	_, rows, err := db.QueryRaw(context.Background(), "SELECT NULL, 1.5, 'x'")
	if err != nil {
		t.Fatal(err)
	}
	if rows[0][0] != "NULL" || rows[0][1] != "1.5" || rows[0][2] != "x" {
		t.Errorf("unexpected formatting %v", rows[0])
	}
}

func TestGameLogRowsKeepTheirDate(t *testing.T) {
	db := openMemDB(t)
	ctx := context.Background()
	game := func(date string, pts float64) model.StatRow {
		return model.StatRow{Subject: "Ana", Season: 2023, Game: date, Team: "Capitanes",
			Stats: map[string]model.Value{model.StatPoints: model.Num(pts)}}
	}
	pop, err := model.NewPopulation(model.Scope{Kind: model.KindGames}, []model.StatRow{
		game("2024-01-12", 14), game("2023-11-10", 22), game("2023-12-01", 9),
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.SaveSnapshot(ctx, pop, "csv", time.Now()); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	got, _, err := db.LoadPopulation(ctx, model.Scope{Kind: model.KindGames, Season: 2023})
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 3 {
		t.Fatalf("every game should be a row, got %d", got.Len())
	}
	if got.Rows[0].Game != "2023-11-10" || got.Rows[2].Game != "2024-01-12" {
		t.Errorf("games should load in date order: %q .. %q", got.Rows[0].Game, got.Rows[2].Game)
	}
	if got.Rows[0].Stat(model.StatPoints).Float != 22 {
		t.Errorf("values should follow their game: %+v", got.Rows[0])
	}
}
