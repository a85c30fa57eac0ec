// Package chart draws scouting charts as SVG.
package chart

import (
	"errors"
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/pable/gleague-scout/internal/model"
	"github.com/pable/gleague-scout/internal/normalize"
)

// ErrTooFewAxes is returned when a radar has fewer than three axes.
var ErrTooFewAxes = errors.New("radar needs at least three axes")

// Ticks label the radar rings from the centre outwards.
var Ticks = []string{"Min", "Below Avg", "Average", "Above Avg", "Max"}

// Palette colours successive series.
var Palette = []string{"#1f77b4", "#d62728", "#2ca02c", "#ff7f0e", "#9467bd", "#8c564b"}

const baseline = 50

// vmap maps one range into another
func vmap(value, low1, high1, low2, high2 float64) float64 {
	return low2 + (high2-low2)*(value-low1)/(high1-low1)
}

type radarGeom struct {
	cx, cy, r float64
	n         int
}

// point is the canvas position of score s on axis i.
func (g radarGeom) point(i int, s float64) (int, int) {
	angle := -math.Pi/2 + 2*math.Pi*float64(i)/float64(g.n)
	d := vmap(s, 0, 100, 0, g.r)
	return int(math.Round(g.cx + d*math.Cos(angle))), int(math.Round(g.cy + d*math.Sin(angle)))
}

func (g radarGeom) ring(s float64) ([]int, []int) {
	xs, ys := make([]int, g.n), make([]int, g.n)
	for i := range g.n {
		xs[i], ys[i] = g.point(i, s)
	}
	return xs, ys
}

// Radar writes a radar chart of profiles. All profiles must share the axes
// of the first; the dashed ring is the league-average baseline at 50.
// Undefined axes are left out of a profile's polygon and marked "n/a".
func Radar(w io.Writer, title string, profiles ...normalize.Profile) error {
	if len(profiles) == 0 {
		return errors.New("radar: no profiles")
	}
	labels := profiles[0].Labels()
	if len(labels) < 3 {
		return ErrTooFewAxes
	}
	for _, p := range profiles[1:] {
		if len(p.Axes) != len(labels) {
			return fmt.Errorf("radar: %s has %d axes, want %d", p.Subject, len(p.Axes), len(labels))
		}
	}

	width, height := 640, 600
	g := radarGeom{cx: float64(width) / 2, cy: float64(height)/2 + 20, r: 210, n: len(labels)}

	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, "fill:white")
	canvas.Gstyle("font-family:Calibri,sans-serif;font-size:14px")
	canvas.Text(width/2, 30, title, "text-anchor:middle;font-size:20px;fill:#333")

	for t, label := range Ticks {
		s := float64(t) * 100 / float64(len(Ticks)-1)
		xs, ys := g.ring(s)
		style := "fill:none;stroke:#ccc;stroke-width:1"
		if s == baseline {
			style = "fill:none;stroke:#666;stroke-width:2;stroke-dasharray:6,4"
		}
		if s > 0 {
			canvas.Polygon(xs, ys, style)
		}
		tx, ty := g.point(0, s)
		canvas.Text(tx+4, ty-2, label, "font-size:11px;fill:#888")
	}
	for i, label := range labels {
		x, y := g.point(i, 100)
		canvas.Line(int(g.cx), int(g.cy), x, y, "stroke:#ccc")
		lx, ly := g.point(i, 116)
		canvas.Text(lx, ly, label, "text-anchor:middle;fill:#333")
	}

	for k, p := range profiles {
		colour := Palette[k%len(Palette)]
		var xs, ys []int
		for i, a := range p.Axes {
			if !a.Defined {
				x, y := g.point(i, 0)
				canvas.Text(x, y+14, "n/a", "text-anchor:middle;font-size:11px;fill:"+colour)
				continue
			}
			x, y := g.point(i, a.Score)
			xs, ys = append(xs, x), append(ys, y)
			canvas.Circle(x, y, 4, "fill:"+colour)
		}
		if len(xs) >= 2 {
			canvas.Polygon(xs, ys, "fill-opacity:0.25;stroke-width:2;fill:"+colour+";stroke:"+colour)
		}
		canvas.Rect(20, height-30-22*k, 14, 14, "fill:"+colour)
		canvas.Text(40, height-19-22*k, p.Subject, "fill:#333")
	}
	canvas.Gend()
	canvas.End()
	return nil
}

// Series is one coloured set of bars.
type Series struct {
	Name   string
	Values []model.Value
}

// Bars writes a grouped bar chart: one group per category, one bar per
// series. Each group is scaled to its own maximum so statistics of
// different magnitudes stay readable; the value is printed above the bar.
func Bars(w io.Writer, title string, categories []string, series []Series) error {
	if len(categories) == 0 || len(series) == 0 {
		return errors.New("bars: nothing to draw")
	}
	for _, s := range series {
		if len(s.Values) != len(categories) {
			return fmt.Errorf("bars: %s has %d values, want %d", s.Name, len(s.Values), len(categories))
		}
	}

	groupW, barGap := 40*len(series)+40, 4
	width := max(480, 60+groupW*len(categories))
	height := 420
	top, bottom := 70, height-60
	fh := float64(bottom - top)
	barW := (groupW - 40 - barGap*(len(series)-1)) / len(series)

	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, "fill:white")
	canvas.Gstyle("font-family:Calibri,sans-serif;font-size:13px")
	canvas.Text(width/2, 30, title, "text-anchor:middle;font-size:20px;fill:#333")
	canvas.Line(30, bottom, width-30, bottom, "stroke:#333")

	for c, cat := range categories {
		peak := 0.0
		for _, s := range series {
			if v := s.Values[c]; v.Valid {
				peak = math.Max(peak, math.Abs(v.Float))
			}
		}
		gx := 50 + c*groupW
		for k, s := range series {
			v := s.Values[c]
			x := gx + k*(barW+barGap)
			if !v.Valid {
				canvas.Text(x+barW/2, bottom-4, "—", "text-anchor:middle;fill:#888")
				continue
			}
			h := 0
			if peak > 0 {
				h = int(vmap(math.Abs(v.Float), 0, peak, 0, fh))
			}
			canvas.Rect(x, bottom-h, barW, h, "fill:"+Palette[k%len(Palette)])
			canvas.Text(x+barW/2, bottom-h-4, formatBar(v.Float), "text-anchor:middle;font-size:11px;fill:#333")
		}
		canvas.Text(gx+(groupW-40)/2, bottom+18, cat, "text-anchor:middle;fill:#333")
	}
	for k, s := range series {
		canvas.Rect(30+140*k, height-26, 12, 12, "fill:"+Palette[k%len(Palette)])
		canvas.Text(48+140*k, height-16, s.Name, "fill:#333")
	}
	canvas.Gend()
	canvas.End()
	return nil
}

func formatBar(v float64) string {
	if math.Abs(v) < 1 {
		return fmt.Sprintf("%.3f", v)
	}
	return fmt.Sprintf("%.1f", v)
}

// TeamBars charts stats for every team row of pop.
func TeamBars(w io.Writer, title string, pop model.Population, stats []string) error {
	series := make([]Series, 0, pop.Len())
	for _, r := range pop.Rows {
		s := Series{Name: r.Subject}
		for _, st := range stats {
			s.Values = append(s.Values, r.Stat(st))
		}
		series = append(series, s)
	}
	return Bars(w, title, stats, series)
}

// Timeline writes a line chart of series over dates, one polyline per
// series. Null values break the line. Every series must have one value per
// date.
func Timeline(w io.Writer, title string, dates []string, series []Series) error {
	if len(dates) == 0 || len(series) == 0 {
		return errors.New("timeline: nothing to draw")
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		if len(s.Values) != len(dates) {
			return fmt.Errorf("timeline: %s has %d values, want %d", s.Name, len(s.Values), len(dates))
		}
		for _, v := range s.Values {
			if v.Valid {
				lo, hi = math.Min(lo, v.Float), math.Max(hi, v.Float)
			}
		}
	}
	if math.IsInf(lo, 1) {
		return errors.New("timeline: no values")
	}
	if hi == lo {
		lo, hi = lo-1, hi+1
	}

	width, height := max(480, 40+24*len(dates)), 360
	left, right, top, bottom := 50, width-30, 60, height-70
	x := func(i int) int {
		if len(dates) == 1 {
			return (left + right) / 2
		}
		return int(math.Round(vmap(float64(i), 0, float64(len(dates)-1), float64(left), float64(right))))
	}
	y := func(v float64) int { return int(math.Round(vmap(v, lo, hi, float64(bottom), float64(top)))) }

	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, "fill:white")
	canvas.Gstyle("font-family:Calibri,sans-serif;font-size:13px")
	canvas.Text(width/2, 30, title, "text-anchor:middle;font-size:20px;fill:#333")
	canvas.Line(left, bottom, right, bottom, "stroke:#333")
	canvas.Line(left, top, left, bottom, "stroke:#333")
	canvas.Text(left-6, y(hi)+4, formatBar(hi), "text-anchor:end;font-size:11px;fill:#333")
	canvas.Text(left-6, y(lo)+4, formatBar(lo), "text-anchor:end;font-size:11px;fill:#333")

	step := max(1, len(dates)/8)
	for i, d := range dates {
		if i%step == 0 || i == len(dates)-1 {
			canvas.Text(x(i), bottom+18, d, "text-anchor:middle;font-size:10px;fill:#333")
		}
	}
	for k, s := range series {
		colour := Palette[k%len(Palette)]
		var xs, ys []int
		flush := func() {
			if len(xs) > 1 {
				canvas.Polyline(xs, ys, "fill:none;stroke-width:2;stroke:"+colour)
			}
			xs, ys = xs[:0], ys[:0]
		}
		for i, v := range s.Values {
			if !v.Valid {
				flush()
				continue
			}
			xs, ys = append(xs, x(i)), append(ys, y(v.Float))
			canvas.Circle(x(i), y(v.Float), 3, "fill:"+colour)
		}
		flush()
		canvas.Rect(30+160*k, height-26, 12, 12, "fill:"+colour)
		canvas.Text(48+160*k, height-16, s.Name, "fill:#333")
	}
	canvas.Gend()
	canvas.End()
	return nil
}
