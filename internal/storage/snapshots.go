package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/pable/gleague-scout/internal/model"
)

// ErrNoSnapshot is returned when nothing has been stored for a scope.
var ErrNoSnapshot = errors.New("no snapshot stored")

// SnapshotInfo describes one stored snapshot.
type SnapshotInfo struct {
	ID        int64
	Scope     model.Scope
	Source    string
	FetchedAt time.Time
	Rows      int
}

// SaveSnapshot replaces the snapshot for pop.Scope with pop's rows.
// Rows sharing a (subject, season, competition, game) key are rejected.
func (db *DB) SaveSnapshot(ctx context.Context, pop model.Population, source string, fetchedAt time.Time) (SnapshotInfo, error) {
	scope := pop.Scope
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return SnapshotInfo{}, err
	}
	defer tx.Rollback()

	if err := deleteSnapshots(ctx, tx, `kind = ? AND season = ? AND competition = ?`,
		scope.Kind.String(), scope.Season, scope.Competition); err != nil {
		return SnapshotInfo{}, err
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots(kind, season, competition, source, fetched_at, row_count)
		VALUES (?, ?, ?, ?, ?, ?)`,
		scope.Kind.String(), scope.Season, scope.Competition, source,
		fetchedAt.UTC().Format(time.RFC3339), pop.Len(),
	)
	if err != nil {
		return SnapshotInfo{}, fmt.Errorf("insert snapshot %s: %w", scope, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return SnapshotInfo{}, err
	}

	rowStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO stat_rows(snapshot_id, subject, season, competition, game, grp, team)
		VALUES (?,?,?,?,?,?,?)`)
	if err != nil {
		return SnapshotInfo{}, err
	}
	defer rowStmt.Close()
	valStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO stat_values(snapshot_id, subject, season, competition, game, stat, value)
		VALUES (?,?,?,?,?,?,?)`)
	if err != nil {
		return SnapshotInfo{}, err
	}
	defer valStmt.Close()
	attrStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO stat_attrs(snapshot_id, subject, season, competition, game, attr, value)
		VALUES (?,?,?,?,?,?,?)`)
	if err != nil {
		return SnapshotInfo{}, err
	}
	defer attrStmt.Close()

	for _, r := range pop.Rows {
		if _, err := rowStmt.ExecContext(ctx, id, r.Subject, r.Season, r.Competition, r.Game, r.Group, r.Team); err != nil {
			return SnapshotInfo{}, fmt.Errorf("insert row %s season %d: %w", r.Subject, r.Season, err)
		}
		for stat, v := range r.Stats {
			var val sql.NullFloat64
			if v.Valid {
				val = sql.NullFloat64{Float64: v.Float, Valid: true}
			}
			if _, err := valStmt.ExecContext(ctx, id, r.Subject, r.Season, r.Competition, r.Game, stat, val); err != nil {
				return SnapshotInfo{}, fmt.Errorf("insert %s for %s: %w", stat, r.Subject, err)
			}
		}
		for attr, v := range r.Attrs {
			if _, err := attrStmt.ExecContext(ctx, id, r.Subject, r.Season, r.Competition, r.Game, attr, v); err != nil {
				return SnapshotInfo{}, fmt.Errorf("insert %s for %s: %w", attr, r.Subject, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return SnapshotInfo{}, err
	}
	return SnapshotInfo{ID: id, Scope: scope, Source: source, FetchedAt: fetchedAt.UTC().Truncate(time.Second), Rows: pop.Len()}, nil
}

// findSnapshot returns the snapshot stored for scope. When none matches
// exactly, the all-seasons snapshot of the same kind is used instead.
func (db *DB) findSnapshot(ctx context.Context, scope model.Scope) (SnapshotInfo, error) {
	info, err := db.snapshotFor(ctx, scope)
	if errors.Is(err, ErrNoSnapshot) && (scope.Season != 0 || scope.Competition != "") {
		return db.snapshotFor(ctx, model.Scope{Kind: scope.Kind})
	}
	return info, err
}

func (db *DB) snapshotFor(ctx context.Context, scope model.Scope) (SnapshotInfo, error) {
	var (
		info    SnapshotInfo
		kindStr string
		at      string
	)
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, kind, season, competition, source, fetched_at, row_count
		FROM snapshots WHERE kind = ? AND season = ? AND competition = ?`,
		scope.Kind.String(), scope.Season, scope.Competition).
		Scan(&info.ID, &kindStr, &info.Scope.Season, &info.Scope.Competition, &info.Source, &at, &info.Rows)
	if err == sql.ErrNoRows {
		return SnapshotInfo{}, fmt.Errorf("%w for %s", ErrNoSnapshot, scope)
	}
	if err != nil {
		return SnapshotInfo{}, err
	}
	return finishInfo(info, kindStr, at)
}

func finishInfo(info SnapshotInfo, kindStr, at string) (SnapshotInfo, error) {
	kind, err := model.ParseKind(kindStr)
	if err != nil {
		return SnapshotInfo{}, err
	}
	info.Scope.Kind = kind
	if t, err := time.Parse(time.RFC3339, at); err == nil {
		info.FetchedAt = t
	}
	return info, nil
}

// LoadPopulation reads the rows stored for scope. The returned population
// carries scope even when it was served from the all-seasons snapshot.
func (db *DB) LoadPopulation(ctx context.Context, scope model.Scope) (model.Population, SnapshotInfo, error) {
	info, err := db.findSnapshot(ctx, scope)
	if err != nil {
		return model.Population{}, SnapshotInfo{}, err
	}

	const filter = `snapshot_id = ? AND (? = 0 OR season = ?) AND (? = '' OR competition = ?)`
	args := []any{info.ID, scope.Season, scope.Season, scope.Competition, scope.Competition}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT subject, season, competition, game, grp, team FROM stat_rows
		WHERE `+filter+` ORDER BY subject, season DESC, competition, game`, args...)
	if err != nil {
		return model.Population{}, info, err
	}
	var out []model.StatRow
	index := make(map[model.Key]int)
	for rows.Next() {
		var r model.StatRow
		if err := rows.Scan(&r.Subject, &r.Season, &r.Competition, &r.Game, &r.Group, &r.Team); err != nil {
			rows.Close()
			return model.Population{}, info, err
		}
		r.Stats = make(map[string]model.Value)
		index[r.Key()] = len(out)
		out = append(out, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return model.Population{}, info, err
	}

	vals, err := db.conn.QueryContext(ctx, `
		SELECT subject, season, competition, game, stat, value FROM stat_values WHERE `+filter, args...)
	if err != nil {
		return model.Population{}, info, err
	}
	for vals.Next() {
		var (
			k    model.Key
			stat string
			v    sql.NullFloat64
		)
		if err := vals.Scan(&k.Subject, &k.Season, &k.Competition, &k.Game, &stat, &v); err != nil {
			vals.Close()
			return model.Population{}, info, err
		}
		if i, ok := index[k]; ok {
			if v.Valid {
				out[i].Stats[stat] = model.Num(v.Float64)
			} else {
				out[i].Stats[stat] = model.Null()
			}
		}
	}
	vals.Close()
	if err := vals.Err(); err != nil {
		return model.Population{}, info, err
	}

	attrs, err := db.conn.QueryContext(ctx, `
		SELECT subject, season, competition, game, attr, value FROM stat_attrs WHERE `+filter, args...)
	if err != nil {
		return model.Population{}, info, err
	}
	defer attrs.Close()
	for attrs.Next() {
		var (
			k         model.Key
			name, val string
		)
		if err := attrs.Scan(&k.Subject, &k.Season, &k.Competition, &k.Game, &name, &val); err != nil {
			return model.Population{}, info, err
		}
		if i, ok := index[k]; ok {
			if out[i].Attrs == nil {
				out[i].Attrs = make(map[string]string)
			}
			out[i].Attrs[name] = val
		}
	}
	if err := attrs.Err(); err != nil {
		return model.Population{}, info, err
	}

	pop, err := model.NewPopulation(scope, out)
	return pop, info, err
}

// FetchPopulation serves a stored population. A scope with no snapshot is
// reported as an empty population.
func (db *DB) FetchPopulation(ctx context.Context, scope model.Scope) (model.Population, error) {
	pop, _, err := db.LoadPopulation(ctx, scope)
	if errors.Is(err, ErrNoSnapshot) {
		return model.Population{Scope: scope}, nil
	}
	return pop, err
}

// Seasons returns the distinct seasons stored for kind, newest first.
func (db *DB) Seasons(ctx context.Context, kind model.Kind) ([]int, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT DISTINCT r.season FROM stat_rows r
		JOIN snapshots s ON s.id = r.snapshot_id
		WHERE s.kind = ? ORDER BY r.season DESC`, kind.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var s int
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListSnapshots returns every stored snapshot ordered by kind then season desc.
func (db *DB) ListSnapshots(ctx context.Context) ([]SnapshotInfo, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, kind, season, competition, source, fetched_at, row_count FROM snapshots`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SnapshotInfo
	for rows.Next() {
		var (
			info        SnapshotInfo
			kindStr, at string
		)
		if err := rows.Scan(&info.ID, &kindStr, &info.Scope.Season, &info.Scope.Competition, &info.Source, &at, &info.Rows); err != nil {
			return nil, err
		}
		info, err = finishInfo(info, kindStr, at)
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Scope, out[j].Scope
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Season != b.Season {
			return a.Season > b.Season
		}
		return a.Competition < b.Competition
	})
	return out, nil
}

// DeleteScope removes the snapshot stored for scope. A scope with no season
// and no competition removes every snapshot of its kind. It returns the
// number of snapshots removed.
func (db *DB) DeleteScope(ctx context.Context, scope model.Scope) (int64, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	where, args := `kind = ? AND season = ? AND competition = ?`, []any{scope.Kind.String(), scope.Season, scope.Competition}
	if scope.Season == 0 && scope.Competition == "" {
		where, args = `kind = ?`, []any{scope.Kind.String()}
	}
	var n int64
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM snapshots WHERE `+where, args...).Scan(&n); err != nil {
		return 0, err
	}
	if err := deleteSnapshots(ctx, tx, where, args...); err != nil {
		return 0, err
	}
	return n, tx.Commit()
}

// deleteSnapshots removes matching snapshots and everything they own.
func deleteSnapshots(ctx context.Context, tx *sql.Tx, where string, args ...any) error {
	sub := `SELECT id FROM snapshots WHERE ` + where
	for _, table := range []string{"stat_values", "stat_attrs", "stat_rows"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE snapshot_id IN (`+sub+`)`, args...); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE `+where, args...); err != nil {
		return fmt.Errorf("delete snapshots: %w", err)
	}
	return nil
}
