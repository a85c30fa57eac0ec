package loader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/pable/gleague-scout/internal/model"
)

type fakeSource struct {
	mu      sync.Mutex
	calls   int
	err     error
	rows    []model.StatRow
	seasons []int
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) FetchPopulation(_ context.Context, scope model.Scope) (model.Population, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return model.Population{}, f.err
	}
	rows := make([]model.StatRow, len(f.rows))
	for i, r := range f.rows {
		rows[i] = r.Clone()
	}
	return model.Population{Scope: scope, Rows: rows}, nil
}

func (f *fakeSource) Seasons(context.Context, model.Kind) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.seasons, nil
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestCached(t *testing.T) {
	Convey("Given a cache over a working source", t, func() {
		src := &fakeSource{
			rows: []model.StatRow{{
				Subject: "Ana", Season: 2024,
				Stats: map[string]model.Value{model.StatPointsPerGame: model.Num(20)},
			}},
			seasons: []int{2024, 2023},
		}
		clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
		c := NewCached(src, time.Hour, WithClock(clock.now))
		ctx := context.Background()
		scope := model.Scope{Kind: model.KindPlayers, Season: 2024}

		snap, err := c.Snapshot(ctx, scope)
		So(err, ShouldBeNil)
		So(snap.Population.Len(), ShouldEqual, 1)
		So(snap.Stale, ShouldBeFalse)

		Convey("When fetched again within the TTL", func() {
			clock.t = clock.t.Add(59 * time.Minute)
			_, err := c.Snapshot(ctx, scope)

			Convey("Then the upstream is not queried again", func() {
				So(err, ShouldBeNil)
				So(src.calls, ShouldEqual, 1)
			})
		})

		Convey("When the TTL has elapsed", func() {
			clock.t = clock.t.Add(time.Hour)
			src.rows[0].Stats[model.StatPointsPerGame] = model.Num(25)
			snap, err := c.Snapshot(ctx, scope)

			Convey("Then the population is refetched", func() {
				So(err, ShouldBeNil)
				So(src.calls, ShouldEqual, 2)
				So(snap.Population.Rows[0].Stat(model.StatPointsPerGame).Float, ShouldEqual, 25)
				So(snap.FetchedAt, ShouldEqual, clock.t)
			})
		})

		Convey("When the upstream becomes unavailable after expiry", func() {
			clock.t = clock.t.Add(2 * time.Hour)
			src.err = fmt.Errorf("%w: connection refused", ErrUnavailable)
			snap, err := c.Snapshot(ctx, scope)

			Convey("Then the stale snapshot is served and flagged", func() {
				So(err, ShouldBeNil)
				So(snap.Stale, ShouldBeTrue)
				So(snap.Population.Len(), ShouldEqual, 1)
			})
		})

		Convey("When the upstream fails with a non-availability error", func() {
			clock.t = clock.t.Add(2 * time.Hour)
			src.err = errors.New("duplicate row")
			_, err := c.Snapshot(ctx, scope)

			Convey("Then the error is returned instead of stale data", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, ErrUnavailable), ShouldBeFalse)
			})
		})

		Convey("When a caller mutates the population it received", func() {
			snap.Population.Rows[0].Stats[model.StatPointsPerGame] = model.Num(-1)
			again, _ := c.Snapshot(ctx, scope)

			Convey("Then the cached copy is unaffected", func() {
				So(again.Population.Rows[0].Stat(model.StatPointsPerGame).Float, ShouldEqual, 20)
			})
		})

		Convey("When a different scope is requested", func() {
			_, err := c.Snapshot(ctx, model.Scope{Kind: model.KindPlayers, Season: 2023})

			Convey("Then it is cached separately", func() {
				So(err, ShouldBeNil)
				So(src.calls, ShouldEqual, 2)
			})
		})

		Convey("When the scope is invalidated", func() {
			c.Invalidate(scope)
			_, err := c.Snapshot(ctx, scope)

			Convey("Then the next call refetches", func() {
				So(err, ShouldBeNil)
				So(src.calls, ShouldEqual, 2)
			})
		})

		Convey("When seasons are listed twice", func() {
			first, err := c.Seasons(ctx, model.KindPlayers)
			So(err, ShouldBeNil)
			_, err = c.Seasons(ctx, model.KindPlayers)

			Convey("Then the list is cached too", func() {
				So(err, ShouldBeNil)
				So(first, ShouldResemble, []int{2024, 2023})
				So(src.calls, ShouldEqual, 2)
			})
		})
	})

	Convey("Given a cache over a source that never worked", t, func() {
		src := &fakeSource{err: fmt.Errorf("%w: no credentials", ErrUnavailable)}
		c := NewCached(src, 0)

		Convey("Then fetching reports the source as unavailable", func() {
			_, err := c.FetchPopulation(context.Background(), model.Scope{Kind: model.KindTeams})
			So(errors.Is(err, ErrUnavailable), ShouldBeTrue)
		})
	})
}
