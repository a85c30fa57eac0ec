package cmd

import (
	"testing"

	"github.com/pable/gleague-scout/internal/model"
)

func TestParseScope(t *testing.T) {
	cases := []struct {
		in   string
		want model.Scope
	}{
		{"players", model.Scope{Kind: model.KindPlayers}},
		{"teams/2024", model.Scope{Kind: model.KindTeams, Season: 2024}},
		{"teams/2024/Regular Season", model.Scope{Kind: model.KindTeams, Season: 2024, Competition: "Regular Season"}},
	}
	for _, c := range cases {
		got, err := parseScope(c.in)
		if err != nil {
			t.Fatalf("%s: %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("%s: want %+v, got %+v", c.in, c.want, got)
		}
	}
	for _, bad := range []string{"coaches", "teams/x"} {
		if _, err := parseScope(bad); err == nil {
			t.Errorf("%s: expected error", bad)
		}
	}
}

func TestParseRanges(t *testing.T) {
	r, err := parseRanges([]string{"pts:10-20", "age:-25"})
	if err != nil {
		t.Fatal(err)
	}
	if !r["pts"].HasLo || !r["pts"].HasHi || r["pts"].Lo != 10 || r["pts"].Hi != 20 {
		t.Errorf("pts range %+v", r["pts"])
	}
	if r["age"].HasLo || !r["age"].HasHi || r["age"].Hi != 25 {
		t.Errorf("age range %+v", r["age"])
	}
	if _, err := parseRanges([]string{"pts"}); err == nil {
		t.Error("missing colon should fail")
	}
}

func TestGameFilter(t *testing.T) {
	f, err := gameFilter(2024, "Swarm", "2024-11-01", "12/31/2024", 10)
	if err != nil {
		t.Fatal(err)
	}
	if f.Season != 2024 || f.Team != "Swarm" || f.Last != 10 {
		t.Errorf("unexpected filter %+v", f)
	}
	if f.From.Format("2006-01-02") != "2024-11-01" || f.To.Format("2006-01-02") != "2024-12-31" {
		t.Errorf("dates %v %v", f.From, f.To)
	}
	if f, err := gameFilter(0, "", "", "", 0); err != nil || !f.From.IsZero() || !f.To.IsZero() {
		t.Errorf("empty flags should not filter: %+v %v", f, err)
	}
	if _, err := gameFilter(0, "", "2024-12-01", "2024-11-01", 0); err == nil {
		t.Error("reversed range should fail")
	}
	if _, err := gameFilter(0, "", "soon", "", 0); err == nil {
		t.Error("bad date should fail")
	}
}
