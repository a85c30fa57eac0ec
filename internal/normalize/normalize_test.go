package normalize

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/pable/gleague-scout/internal/model"
)

func playerRow(name string, ppg, rpg, apg, gp, tp, tr, ta float64) model.StatRow {
	return model.StatRow{
		Subject: name,
		Season:  2024,
		Stats: map[string]model.Value{
			model.StatPointsPerGame:   model.Num(ppg),
			model.StatReboundsPerGame: model.Num(rpg),
			model.StatAssistsPerGame:  model.Num(apg),
			model.StatGamesPlayed:     model.Num(gp),
			model.StatTotalPoints:     model.Num(tp),
			model.StatTotalRebounds:   model.Num(tr),
			model.StatTotalAssists:    model.Num(ta),
		},
	}
}

func TestScoreReferenceScenario(t *testing.T) {
	a := Anchors{Min: 10, Mean: 20, Max: 30}
	cases := []struct {
		v, want float64
	}{
		{10, 0},
		{15, 25},
		{20, 50},
		{25, 75},
		{30, 100},
	}
	for _, c := range cases {
		if got := Score(a, c.v); got != c.want {
			t.Errorf("Score(%v): want %v, got %v", c.v, c.want, got)
		}
	}
}

func TestScoreDegenerateSides(t *testing.T) {
	// Zero spread below the mean.
	if got := Score(Anchors{Min: 5, Mean: 5, Max: 9}, 5); got != 50 {
		t.Errorf("mean==min: want 50, got %v", got)
	}
	// Zero spread above the mean.
	if got := Score(Anchors{Min: 1, Mean: 5, Max: 5}, 7); got != 50 {
		t.Errorf("max==mean: want 50, got %v", got)
	}
	if got := Score(Anchors{Min: 3, Mean: 3, Max: 3}, 3); got != 50 {
		t.Errorf("all equal: want 50, got %v", got)
	}
}

func TestScoreAtMeanIsExactly50(t *testing.T) {
	pops := [][]float64{
		{1, 2, 3},
		{0.1, 0.7, 13.3, 2.9},
		{4},
		{7, 7, 7, 7},
		{-3, 11, 100.25},
	}
	for _, vals := range pops {
		var rows []model.StatRow
		for i, v := range vals {
			rows = append(rows, model.StatRow{Subject: string(rune('a' + i)), Stats: map[string]model.Value{"x": model.Num(v)}})
		}
		pop := model.Population{Rows: rows}
		dim := StatDimension("X", "x")
		for _, strat := range []Strategy{MinMeanMax, LeagueAverage} {
			a, ok := AnchorsFor(pop, dim, strat)
			if !ok {
				t.Fatalf("%v: anchors undefined", vals)
			}
			if got := Score(a, a.Mean); got != 50 {
				t.Errorf("%v %s: score at mean want 50, got %v", vals, strat, got)
			}
		}
	}
}

func TestProfileSingleMemberIsAll50(t *testing.T) {
	only := playerRow("solo", 12.5, 4, 3.1, 40, 500, 160, 124)
	pop := model.Population{Rows: []model.StatRow{only}}

	for _, strat := range []Strategy{MinMeanMax, LeagueAverage} {
		prof, err := ProfileOf(pop, "solo", DefaultDimensions(DefaultGamesCap), strat)
		if err != nil {
			t.Fatalf("ProfileOf: %v", err)
		}
		if len(prof.Axes) != 5 {
			t.Fatalf("expected 5 axes, got %d", len(prof.Axes))
		}
		for _, a := range prof.Axes {
			if !a.Defined || a.Score != 50 {
				t.Errorf("%s %s: want 50, got %v (defined=%v)", strat, a.Label, a.Score, a.Defined)
			}
		}
	}
}

func TestProfileBounds(t *testing.T) {
	pop := model.Population{Rows: []model.StatRow{
		playerRow("low", 10, 2, 1, 10, 100, 20, 10),
		playerRow("mid", 20, 5, 4, 50, 1000, 250, 200),
		playerRow("high", 30, 8, 7, 90, 2700, 720, 630),
	}}
	dims := DefaultDimensions(DefaultGamesCap)

	low, err := ProfileOf(pop, "low", dims, MinMeanMax)
	if err != nil {
		t.Fatal(err)
	}
	high, err := ProfileOf(pop, "high", dims, MinMeanMax)
	if err != nil {
		t.Fatal(err)
	}
	for i := range dims {
		if low.Axes[i].Score != 0 {
			t.Errorf("low %s: want 0, got %v", dims[i].Label, low.Axes[i].Score)
		}
		if high.Axes[i].Score != 100 {
			t.Errorf("high %s: want 100, got %v", dims[i].Label, high.Axes[i].Score)
		}
	}
}

func TestAvailabilityCap(t *testing.T) {
	pop := model.Population{Rows: []model.StatRow{
		playerRow("a", 10, 1, 1, 20, 1, 1, 1),
		playerRow("b", 10, 1, 1, 60, 1, 1, 1),
		playerRow("c", 10, 1, 1, 100, 1, 1, 1), // above the cap
	}}
	dim := DefaultDimensions(DefaultGamesCap)[3]
	a, ok := AnchorsFor(pop, dim, MinMeanMax)
	if !ok {
		t.Fatal("anchors undefined")
	}
	if a.Max != 82 {
		t.Errorf("capped max: want 82, got %v", a.Max)
	}
	prof, _ := ProfileOf(pop, "c", []Dimension{dim}, MinMeanMax)
	if prof.Axes[0].Score != 100 {
		t.Errorf("value above cap should clamp to 100, got %v", prof.Axes[0].Score)
	}
}

func TestLeagueAverageAnchors(t *testing.T) {
	pop := model.Population{Rows: []model.StatRow{
		{Subject: "a", Stats: map[string]model.Value{"x": model.Num(10)}},
		{Subject: "b", Stats: map[string]model.Value{"x": model.Num(30)}},
	}}
	a, _ := AnchorsFor(pop, StatDimension("X", "x"), LeagueAverage)
	if a != (Anchors{Min: 0, Mean: 20, Max: 40}) {
		t.Errorf("unexpected anchors %+v", a)
	}
	if got := Score(a, 30); got != 75 {
		t.Errorf("want 75, got %v", got)
	}
}

func TestZeroSpreadScores50(t *testing.T) {
	for _, x := range []float64{0.1, 0.7, 1.1, 3.3, 12.7} {
		for _, n := range []int{2, 3, 6, 7} {
			rows := make([]model.StatRow, n)
			for i := range rows {
				rows[i] = model.StatRow{Subject: fmt.Sprintf("p%d", i), Stats: map[string]model.Value{"x": model.Num(x)}}
			}
			pop := model.Population{Rows: rows}
			for _, strat := range []Strategy{MinMeanMax, LeagueAverage} {
				a, ok := AnchorsFor(pop, StatDimension("X", "x"), strat)
				if !ok {
					t.Fatal("anchors undefined")
				}
				if a.Mean < a.Min || a.Mean > a.Max {
					t.Errorf("x=%v n=%d %s: mean outside anchors %+v", x, n, strat, a)
				}
				prof, err := ProfileOf(pop, "p0", []Dimension{StatDimension("X", "x")}, strat)
				if err != nil {
					t.Fatal(err)
				}
				if got := prof.Axes[0].Score; got != 50 {
					t.Errorf("x=%v n=%d %s: want 50, got %v", x, n, strat, got)
				}
			}
		}
	}
}

func TestLeagueAverageNonPositiveMeanFallsBack(t *testing.T) {
	pop := model.Population{Rows: []model.StatRow{
		{Subject: "a", Stats: map[string]model.Value{"plus_minus": model.Num(-6)}},
		{Subject: "b", Stats: map[string]model.Value{"plus_minus": model.Num(-2)}},
		{Subject: "c", Stats: map[string]model.Value{"plus_minus": model.Num(2)}},
	}}
	a, _ := AnchorsFor(pop, StatDimension("+/-", "plus_minus"), LeagueAverage)
	if a != (Anchors{Min: -6, Mean: -2, Max: 2}) {
		t.Errorf("want min-mean-max anchors, got %+v", a)
	}
	if got := Score(a, 2); got != 100 {
		t.Errorf("best value should score 100, got %v", got)
	}
}

func TestProfileMissingValueIsUndefined(t *testing.T) {
	r := playerRow("gap", 10, 2, 1, 10, 100, 20, 10)
	r.Stats[model.StatAssistsPerGame] = model.Null()
	pop := model.Population{Rows: []model.StatRow{r, playerRow("x", 20, 3, 2, 30, 400, 60, 40)}}

	prof, err := ProfileOf(pop, "gap", DefaultDimensions(DefaultGamesCap), MinMeanMax)
	if err != nil {
		t.Fatal(err)
	}
	play := prof.Axes[2]
	if play.Defined {
		t.Error("playmaking should be undefined for a null value")
	}
	if !math.IsNaN(prof.Scores()[2]) {
		t.Error("undefined axis should surface as NaN in Scores")
	}
	// Production needs all three totals; assists total is still valid here.
	if !prof.Axes[4].Defined {
		t.Error("production should be defined")
	}
}

func TestProfileErrors(t *testing.T) {
	if _, err := ProfileOf(model.Population{}, "x", DefaultDimensions(82), MinMeanMax); !errors.Is(err, ErrEmptyPopulation) {
		t.Errorf("want ErrEmptyPopulation, got %v", err)
	}
	pop := model.Population{Rows: []model.StatRow{playerRow("a", 1, 1, 1, 1, 1, 1, 1)}}
	if _, err := ProfileOf(pop, "nobody", DefaultDimensions(82), MinMeanMax); !errors.Is(err, ErrUnknownSubject) {
		t.Errorf("want ErrUnknownSubject, got %v", err)
	}
}

func TestParseStrategy(t *testing.T) {
	for in, want := range map[string]Strategy{"": MinMeanMax, "min-mean-max": MinMeanMax, "league-average": LeagueAverage} {
		got, err := ParseStrategy(in)
		if err != nil || got != want {
			t.Errorf("ParseStrategy(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseStrategy("zscore"); err == nil {
		t.Error("expected error for unknown strategy")
	}
}
