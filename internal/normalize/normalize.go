// Package normalize maps raw statistics onto a bounded 0–100 radar scale
// where 50 is the population mean.
package normalize

import (
	"errors"
	"fmt"
	"math"

	"github.com/pable/gleague-scout/internal/model"
)

var (
	// ErrEmptyPopulation is returned when there is nothing to anchor against.
	ErrEmptyPopulation = errors.New("empty population")
	// ErrUnknownSubject is returned when the subject is not in the population.
	ErrUnknownSubject = errors.New("subject not in population")
)

// DefaultGamesCap is the maximum games in a season used to cap the
// availability dimension.
const DefaultGamesCap = 82

// Anchors are the three reference points of the scale.
type Anchors struct {
	Min, Mean, Max float64
}

// Score maps v onto [0,100]: Min→0, Mean→50, Max→100, linear on each side.
// A side with zero spread scores 50.
func Score(a Anchors, v float64) float64 {
	if v <= a.Mean {
		if a.Mean == a.Min {
			return 50
		}
		return 50 * (v - a.Min) / (a.Mean - a.Min)
	}
	if a.Max == a.Mean {
		return 50
	}
	return 50 + 50*(v-a.Mean)/(a.Max-a.Mean)
}

// Strategy picks how anchors are derived from a population.
type Strategy int

const (
	// MinMeanMax anchors at the population minimum, mean and maximum.
	MinMeanMax Strategy = iota
	// LeagueAverage anchors at zero, the mean and twice the mean, so only the
	// league average matters. A dimension whose mean is not positive falls
	// back to MinMeanMax anchors.
	LeagueAverage
)

func (s Strategy) String() string {
	switch s {
	case MinMeanMax:
		return "min-mean-max"
	case LeagueAverage:
		return "league-average"
	default:
		return "?"
	}
}

// ParseStrategy is the inverse of Strategy.String.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "", "min-mean-max", "minmax":
		return MinMeanMax, nil
	case "league-average", "average":
		return LeagueAverage, nil
	default:
		return 0, fmt.Errorf("unknown anchor strategy %q", s)
	}
}

// Dimension is one axis of a profile.
type Dimension struct {
	Label string
	Value func(model.StatRow) model.Value

	// Cap, when > 0, clamps the population maximum (not the subject value).
	Cap float64
}

// StatDimension builds a dimension reading a single statistic.
func StatDimension(label, stat string) Dimension {
	return Dimension{Label: label, Value: func(r model.StatRow) model.Value { return r.Stat(stat) }}
}

// DefaultDimensions returns the five radar axes of the player profile.
func DefaultDimensions(gamesCap float64) []Dimension {
	avail := StatDimension("Availability", model.StatGamesPlayed)
	avail.Cap = gamesCap
	return []Dimension{
		StatDimension("Scoring", model.StatPointsPerGame),
		StatDimension("Rebounding", model.StatReboundsPerGame),
		StatDimension("Playmaking", model.StatAssistsPerGame),
		avail,
		{Label: "Production", Value: model.Production},
	}
}

// AnchorsFor computes anchors for dim over pop. ok is false when no row has
// a value for the dimension.
func AnchorsFor(pop model.Population, dim Dimension, strategy Strategy) (Anchors, bool) {
	var n int
	var sum float64
	minV, maxV := math.Inf(1), math.Inf(-1)
	for _, r := range pop.Rows {
		v := dim.Value(r)
		if !v.Valid {
			continue
		}
		n++
		sum += v.Float
		minV = math.Min(minV, v.Float)
		maxV = math.Max(maxV, v.Float)
	}
	if n == 0 {
		return Anchors{}, false
	}
	// Summation error can push the mean of identical values one ulp
	// outside [min,max], which would skip the zero-spread guards in Score.
	mean := math.Max(minV, math.Min(maxV, sum/float64(n)))

	switch {
	case strategy == LeagueAverage && mean > 0:
		return Anchors{Min: 0, Mean: mean, Max: 2 * mean}, true
	default:
		if dim.Cap > 0 {
			maxV = math.Min(maxV, dim.Cap)
			// A cap below the mean would invert the upper half of the scale.
			maxV = math.Max(maxV, mean)
		}
		return Anchors{Min: minV, Mean: mean, Max: maxV}, true
	}
}

// Axis is one scored dimension of a profile.
type Axis struct {
	Label string
	Score float64
	Raw   float64

	// Defined is false when the subject's raw value was missing; Score is
	// then meaningless and must not be drawn as 0.
	Defined bool
}

// Profile is a subject's ordered radar coordinates.
type Profile struct {
	Subject  string
	Strategy Strategy
	Axes     []Axis
}

// Scores returns the axis scores in order, with undefined axes as NaN.
func (p Profile) Scores() []float64 {
	out := make([]float64, len(p.Axes))
	for i, a := range p.Axes {
		if a.Defined {
			out[i] = a.Score
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// Labels returns the axis labels in order.
func (p Profile) Labels() []string {
	out := make([]string, len(p.Axes))
	for i, a := range p.Axes {
		out[i] = a.Label
	}
	return out
}

// BuildProfile scores subject's row on every dimension against pop.
func BuildProfile(pop model.Population, subject model.StatRow, dims []Dimension, strategy Strategy) (Profile, error) {
	if pop.Empty() {
		return Profile{}, ErrEmptyPopulation
	}
	prof := Profile{Subject: subject.Subject, Strategy: strategy, Axes: make([]Axis, len(dims))}
	for i, dim := range dims {
		axis := Axis{Label: dim.Label}
		v := dim.Value(subject)
		anchors, ok := AnchorsFor(pop, dim, strategy)
		if v.Valid && ok {
			axis.Raw = v.Float
			axis.Score = clamp(Score(anchors, v.Float))
			axis.Defined = true
		}
		prof.Axes[i] = axis
	}
	return prof, nil
}

// ProfileOf looks subject up in pop and builds its profile.
func ProfileOf(pop model.Population, subject string, dims []Dimension, strategy Strategy) (Profile, error) {
	if pop.Empty() {
		return Profile{}, ErrEmptyPopulation
	}
	row, ok := pop.Find(subject)
	if !ok {
		return Profile{}, fmt.Errorf("%q: %w", subject, ErrUnknownSubject)
	}
	return BuildProfile(pop, row, dims, strategy)
}

// clamp keeps scores of values outside the anchors (a subject from another
// season, or above a games cap) on the chart.
func clamp(s float64) float64 {
	return math.Max(0, math.Min(100, s))
}
