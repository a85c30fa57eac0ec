// Package loader fetches statistic populations from external sources.
//
// A Source returns a fresh Population per call. Cached wraps any Source with
// a TTL snapshot cache that falls back to the last good snapshot when the
// upstream is unavailable.
package loader

import (
	"context"
	"errors"
	"time"

	"github.com/pable/gleague-scout/internal/metrics"
	"github.com/pable/gleague-scout/internal/model"
)

// ErrUnavailable marks an upstream that could not be reached or read.
var ErrUnavailable = errors.New("data source unavailable")

// Source produces populations for a scope.
type Source interface {
	// Name identifies the source in logs and metrics.
	Name() string
	FetchPopulation(ctx context.Context, scope model.Scope) (model.Population, error)
	// Seasons lists the seasons available for kind, newest first.
	Seasons(ctx context.Context, kind model.Kind) ([]int, error)
}

// Instrument records fetch counts, latency and population size for src.
func Instrument(src Source) Source {
	return &instrumented{src: src}
}

type instrumented struct {
	src Source
}

func (i *instrumented) Name() string { return i.src.Name() }

func (i *instrumented) FetchPopulation(ctx context.Context, scope model.Scope) (model.Population, error) {
	start := time.Now()
	pop, err := i.src.FetchPopulation(ctx, scope)
	outcome := "ok"
	switch {
	case errors.Is(err, ErrUnavailable):
		outcome = "unavailable"
	case err != nil:
		outcome = "error"
	case pop.Empty():
		outcome = "empty"
	}
	metrics.RecordFetch(i.src.Name(), scope.Kind.String(), outcome, float64(time.Since(start).Milliseconds()))
	if err == nil {
		metrics.SetRows(scope.Kind.String(), pop.Len())
	}
	return pop, err
}

func (i *instrumented) Seasons(ctx context.Context, kind model.Kind) ([]int, error) {
	return i.src.Seasons(ctx, kind)
}
