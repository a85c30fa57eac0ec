package ranking

import (
	"fmt"
	"testing"

	"github.com/pable/gleague-scout/internal/model"
)

func popOf(vals map[string]model.Value) model.Population {
	var rows []model.StatRow
	for s, v := range vals {
		rows = append(rows, model.StatRow{Subject: s, Stats: map[string]model.Value{"points": v}})
	}
	return model.Population{Rows: rows}
}

func TestRankDescending(t *testing.T) {
	pop := popOf(map[string]model.Value{"a": model.Num(10), "b": model.Num(20), "c": model.Num(30)})
	res := Rank(pop, "points", Descending)

	if res.Size != 3 || res.Total != 3 {
		t.Fatalf("size/total: want 3/3, got %d/%d", res.Size, res.Total)
	}
	for subj, want := range map[string]float64{"c": 1, "b": 2, "a": 3} {
		e, ok := res.Get(subj)
		if !ok {
			t.Fatalf("%s missing", subj)
		}
		if e.Rank != want || e.Position != int(want) {
			t.Errorf("%s: want rank %v, got %v (pos %d)", subj, want, e.Rank, e.Position)
		}
	}
	if res.Entries[0].Subject != "c" {
		t.Errorf("first entry should be c, got %s", res.Entries[0].Subject)
	}
}

func TestRankTiesFractional(t *testing.T) {
	pop := popOf(map[string]model.Value{
		"a": model.Num(30), "b": model.Num(20), "c": model.Num(20), "d": model.Num(10),
	})
	res := Rank(pop, "points", Descending)

	want := map[string]struct {
		rank float64
		pos  int
	}{
		"a": {1, 1}, "b": {2.5, 2}, "c": {2.5, 2}, "d": {4, 4},
	}
	for subj, w := range want {
		e, _ := res.Get(subj)
		if e.Rank != w.rank || e.Position != w.pos {
			t.Errorf("%s: want %v/%d, got %v/%d", subj, w.rank, w.pos, e.Rank, e.Position)
		}
	}
}

func TestRankTieForFirst(t *testing.T) {
	pop := popOf(map[string]model.Value{"a": model.Num(9), "b": model.Num(9), "c": model.Num(5)})
	res := Rank(pop, "points", Descending)
	a, _ := res.Get("a")
	c, _ := res.Get("c")
	if a.Position != 1 || a.Rank != 1.5 {
		t.Errorf("a: want pos 1 rank 1.5, got %d/%v", a.Position, a.Rank)
	}
	if c.Position != 3 || c.Rank != 3 {
		t.Errorf("c: want pos 3 rank 3, got %d/%v", c.Position, c.Rank)
	}
}

func TestRankNullsLast(t *testing.T) {
	pop := popOf(map[string]model.Value{
		"a": model.Num(1), "b": model.Null(), "c": model.Num(3), "d": model.Null(),
	})
	for _, order := range []Order{Descending, Ascending} {
		res := Rank(pop, "points", order)
		if res.Size != 2 || res.Total != 4 {
			t.Fatalf("%s: size/total want 2/4, got %d/%d", order, res.Size, res.Total)
		}
		for _, e := range res.Entries[2:] {
			if e.Ranked {
				t.Errorf("%s: %s should be unranked", order, e.Subject)
			}
		}
		if len(res.Top(10)) != 2 {
			t.Errorf("%s: Top should only return ranked entries", order)
		}
	}
}

func TestRankMaxIsFirstAndReverseChangesRanks(t *testing.T) {
	for n := 2; n <= 9; n++ {
		vals := make(map[string]model.Value)
		for i := 0; i < n; i++ {
			vals[fmt.Sprintf("s%d", i)] = model.Num(float64(i*i) + 0.5)
		}
		pop := popOf(vals)
		desc := Rank(pop, "points", Descending)
		asc := Rank(pop, "points", Ascending)

		top, _ := desc.Get(fmt.Sprintf("s%d", n-1))
		if top.Rank != 1 {
			t.Errorf("n=%d: max value should rank 1, got %v", n, top.Rank)
		}
		for s := range vals {
			d, _ := desc.Get(s)
			a, _ := asc.Get(s)
			// n odd leaves the median with the same rank in both orders.
			if d.Rank == a.Rank && d.Rank != float64(n+1)/2 {
				t.Errorf("n=%d: %s rank unchanged by reversal (%v)", n, s, d.Rank)
			}
		}
	}
}

func TestRankEmpty(t *testing.T) {
	res := Rank(model.Population{}, "points", Descending)
	if res.Size != 0 || len(res.Entries) != 0 {
		t.Errorf("empty population: want empty result, got %+v", res)
	}
	if len(res.Top(3)) != 0 {
		t.Error("Top on empty result should be empty")
	}
}

func TestParseOrder(t *testing.T) {
	if ParseOrder("ASC") != Ascending || ParseOrder("ascending") != Ascending {
		t.Error("expected ascending")
	}
	if ParseOrder("") != Descending || ParseOrder("desc") != Descending {
		t.Error("expected descending")
	}
}
