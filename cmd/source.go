package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pable/gleague-scout/internal/loader"
	"github.com/pable/gleague-scout/internal/model"
	"github.com/pable/gleague-scout/internal/storage"
	"github.com/pable/gleague-scout/internal/warehouse"
)

// openSource opens the source named by --source (or name when non-empty).
// The returned close function must be called when done.
func openSource(ctx context.Context, name string) (loader.Source, func(), error) {
	if name == "" {
		name = sourceName
	}
	switch name {
	case "db", "sqlite", "":
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, nil, fmt.Errorf("create db dir: %w", err)
		}
		db, err := storage.Open(dbPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open storage: %w", err)
		}
		return loader.Instrument(db), func() { db.Close() }, nil
	case "warehouse", "bigquery":
		wh, err := warehouse.New(ctx, cfg.Warehouse)
		if err != nil {
			return nil, nil, err
		}
		return loader.Instrument(wh), func() { wh.Close() }, nil
	case "csv":
		files := make(map[model.Kind]string, len(csvFiles))
		for k, path := range csvFiles {
			kind, err := model.ParseKind(k)
			if err != nil {
				return nil, nil, err
			}
			files[kind] = path
		}
		if len(files) == 0 {
			return nil, nil, errors.New("--source csv needs at least one --csv kind=path")
		}
		return loader.Instrument(loader.NewCSVSource(files)), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown source %q (want db, warehouse or csv)", name)
	}
}

// fetch loads one population from the configured source.
func fetch(ctx context.Context, scope model.Scope) (model.Population, error) {
	src, closeFn, err := openSource(ctx, "")
	if err != nil {
		return model.Population{}, err
	}
	defer closeFn()
	return src.FetchPopulation(ctx, scope)
}

// latestSeason returns the requested season, or the newest one in pop when 0.
func latestSeason(pop model.Population, season int) int {
	if season != 0 {
		return season
	}
	if s := pop.Seasons(); len(s) > 0 {
		return s[0]
	}
	return 0
}
