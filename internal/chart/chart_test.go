package chart

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/pable/gleague-scout/internal/model"
	"github.com/pable/gleague-scout/internal/normalize"
)

func profile(subject string, scores ...float64) normalize.Profile {
	labels := []string{"Scoring", "Rebounding", "Playmaking", "Availability", "Production"}
	p := normalize.Profile{Subject: subject}
	for i, s := range scores {
		p.Axes = append(p.Axes, normalize.Axis{Label: labels[i], Score: s, Defined: s >= 0})
	}
	return p
}

func TestRadar(t *testing.T) {
	var buf bytes.Buffer
	if err := Radar(&buf, "Ava vs Bo", profile("Ava", 80, 50, 20, 100, 65), profile("Bo", 40, -1, 60, 30, 50)); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "<?xml") || !strings.HasSuffix(strings.TrimSpace(out), "</svg>") {
		t.Fatalf("not an svg document:\n%s", out)
	}
	for _, want := range append(Ticks, "Ava", "Bo", "Playmaking", "stroke-dasharray", "n/a") {
		if !strings.Contains(out, want) {
			t.Errorf("radar missing %q", want)
		}
	}
}

func TestRadarRejectsBadInput(t *testing.T) {
	var buf bytes.Buffer
	if err := Radar(&buf, "x", profile("a", 1, 2)); !errors.Is(err, ErrTooFewAxes) {
		t.Errorf("want ErrTooFewAxes, got %v", err)
	}
	if err := Radar(&buf, "x", profile("a", 1, 2, 3), profile("b", 1, 2, 3, 4)); err == nil {
		t.Error("mismatched axes should fail")
	}
	if err := Radar(&buf, "x"); err == nil {
		t.Error("no profiles should fail")
	}
}

func TestGeometry(t *testing.T) {
	g := radarGeom{cx: 100, cy: 100, r: 50, n: 4}
	if x, y := g.point(0, 100); x != 100 || y != 50 {
		t.Errorf("first axis should point up, got %d,%d", x, y)
	}
	if x, y := g.point(1, 50); x != 125 || y != 100 {
		t.Errorf("second axis at half radius, got %d,%d", x, y)
	}
	if x, y := g.point(2, 0); x != 100 || y != 100 {
		t.Errorf("zero score sits at the centre, got %d,%d", x, y)
	}
}

func TestTeamBars(t *testing.T) {
	pop := model.Population{Rows: []model.StatRow{
		{Subject: "OSC", Stats: map[string]model.Value{"win": model.Num(0.72), "pts": model.Num(118.4)}},
		{Subject: "SXF", Stats: map[string]model.Value{"win": model.Num(0.41), "pts": model.Null()}},
	}}
	var buf bytes.Buffer
	if err := TeamBars(&buf, "Teams", pop, []string{"win", "pts"}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"OSC", "SXF", "0.720", "118.4", "—"} {
		if !strings.Contains(out, want) {
			t.Errorf("bars missing %q", want)
		}
	}
	if err := Bars(&buf, "x", []string{"a"}, []Series{{Name: "s"}}); err == nil {
		t.Error("value count mismatch should fail")
	}
}

func TestTimeline(t *testing.T) {
	dates := []string{"2024-11-01", "2024-11-03", "2024-11-05", "2024-11-07"}
	series := []Series{
		{Name: "Points", Values: []model.Value{model.Num(10), model.Num(20), model.Null(), model.Num(40)}},
		{Name: "5-game avg", Values: []model.Value{model.Num(10), model.Num(15), model.Num(15), model.Num(23.3)}},
	}
	var buf bytes.Buffer
	if err := Timeline(&buf, "Ana points", dates, series); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Ana points", "Points", "5-game avg", "2024-11-01", "2024-11-07", "40.0"} {
		if !strings.Contains(out, want) {
			t.Errorf("timeline missing %q", want)
		}
	}
	// The null splits the first series into one two-point line and a lone dot.
	if n := strings.Count(out, "<polyline"); n != 2 {
		t.Errorf("expected 2 polylines, got %d", n)
	}
	if err := Timeline(&buf, "x", dates, []Series{{Name: "s"}}); err == nil {
		t.Error("value count mismatch should fail")
	}
	if err := Timeline(&buf, "x", []string{"d"}, []Series{{Name: "s", Values: []model.Value{model.Null()}}}); err == nil {
		t.Error("an all-null chart should fail")
	}
}
