package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/pable/gleague-scout/internal/model"
)

// Columns maps the header of a gold-table export onto StatRow fields.
// Header matching is case-insensitive. Every other column becomes a
// statistic when its cells are numeric, or an attribute otherwise.
type Columns struct {
	Subject string
	// SubjectAliases are tried when Subject is not in the header.
	SubjectAliases []string
	Season      string // "" when the table has no season column
	Competition string
	Group       string
	Team        string
	// Game is the game date column of game logs. Dates are normalised to
	// YYYY-MM-DD and a missing season is derived from them.
	Game string

	// Attrs are always kept as text.
	Attrs []string
	// Rename maps a source column to the statistic name it is stored under.
	Rename map[string]string
	// Skip lists columns to drop entirely.
	Skip []string
}

// DefaultColumns returns the layout of the gold table behind kind.
func DefaultColumns(kind model.Kind) Columns {
	switch kind {
	case model.KindTargets:
		return Columns{
			Subject: "player",
			Season:  "season",
			Group:   "pos",
			Team:    "tm",
			Attrs:   []string{model.AttrContractStatus, model.AttrCategory, model.AttrPosition},
			Rename:  map[string]string{"age": model.StatAge},
		}
	case model.KindTeams:
		return Columns{
			Subject:     "team",
			Season:      "season",
			Competition: "competition_type",
		}
	case model.KindGames:
		return Columns{
			Subject:        "player_name",
			SubjectAliases: []string{"player"},
			Season:         "season",
			Team:           "team",
			Group:          "pos",
			Game:           "game_date",
			Attrs:          []string{model.AttrPosition, "opponent", "game_id"},
			Skip:           []string{"season_clean"},
		}
	default:
		return Columns{
			Subject:        "player",
			SubjectAliases: []string{"player_name"},
			Season:         "season",
			Team:           "team",
			Group:          "pos",
			Attrs:          []string{model.AttrPosition},
			Skip:           []string{"game_date", "season_clean"},
		}
	}
}

// CSVSource reads populations from CSV exports of the gold tables, one file
// per kind. Files ending in .zst are decompressed on the fly.
type CSVSource struct {
	Files   map[model.Kind]string
	Columns map[model.Kind]Columns
}

// NewCSVSource creates a source over files using the default column layout.
func NewCSVSource(files map[model.Kind]string) *CSVSource {
	cols := make(map[model.Kind]Columns, len(files))
	for k := range files {
		cols[k] = DefaultColumns(k)
	}
	return &CSVSource{Files: files, Columns: cols}
}

func (s *CSVSource) Name() string { return "csv" }

// FetchPopulation reads the file for scope.Kind and keeps the rows matching
// the scope's season and competition.
func (s *CSVSource) FetchPopulation(ctx context.Context, scope model.Scope) (model.Population, error) {
	rows, err := s.readKind(ctx, scope.Kind)
	if err != nil {
		return model.Population{}, err
	}
	var kept []model.StatRow
	for _, r := range rows {
		if scope.Season != 0 && r.Season != scope.Season {
			continue
		}
		if scope.Competition != "" && !strings.EqualFold(r.Competition, scope.Competition) {
			continue
		}
		kept = append(kept, r)
	}
	pop, err := model.NewPopulation(scope, kept)
	if err != nil {
		return model.Population{}, fmt.Errorf("csv %s: %w", scope.Kind, err)
	}
	return pop, nil
}

// Seasons lists the seasons present in the file for kind.
func (s *CSVSource) Seasons(ctx context.Context, kind model.Kind) ([]int, error) {
	pop, err := s.FetchPopulation(ctx, model.Scope{Kind: kind})
	if err != nil {
		return nil, err
	}
	return pop.Seasons(), nil
}

func (s *CSVSource) readKind(ctx context.Context, kind model.Kind) ([]model.StatRow, error) {
	path, ok := s.Files[kind]
	if !ok || path == "" {
		return nil, fmt.Errorf("%w: no csv file configured for %s", ErrUnavailable, kind)
	}
	cols, ok := s.Columns[kind]
	if !ok {
		cols = DefaultColumns(kind)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("%w: zstd reader for %s: %v", ErrUnavailable, path, err)
		}
		defer dec.Close()
		r = dec
	}
	rows, err := ReadCSV(ctx, r, cols)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

// ReadCSV parses a gold-table export. Blank and NA-like cells become null.
func ReadCSV(ctx context.Context, r io.Reader, cols Columns) ([]model.StatRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	dec, err := NewDecoder(header, cols)
	if err != nil {
		return nil, err
	}

	var out []model.StatRow
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		row, err := dec.Row(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if row.Subject == "" {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

type columnRole int

const (
	roleStat columnRole = iota
	roleAttr
	roleSkip
)

// Decoder turns records laid out by a header into StatRows.
type Decoder struct {
	subject, season, competition, group, team, game int
	names                                           []string
	roles                                           []columnRole
}

// NewDecoder resolves cols against header. The subject column is required.
func NewDecoder(header []string, cols Columns) (*Decoder, error) {
	d := &Decoder{subject: -1, season: -1, competition: -1, group: -1, team: -1, game: -1}
	attrs := lowerSet(cols.Attrs)
	skip := lowerSet(cols.Skip)
	rename := make(map[string]string, len(cols.Rename))
	for k, v := range cols.Rename {
		rename[strings.ToLower(k)] = v
	}

	d.names = make([]string, len(header))
	d.roles = make([]columnRole, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		lower := strings.ToLower(name)
		d.names[i] = lower
		if v, ok := rename[lower]; ok {
			d.names[i] = v
		}
		switch {
		case lower == strings.ToLower(cols.Subject):
			d.subject = i
			d.roles[i] = roleSkip
		case cols.Season != "" && lower == strings.ToLower(cols.Season):
			d.season = i
			d.roles[i] = roleSkip
		case cols.Competition != "" && lower == strings.ToLower(cols.Competition):
			d.competition = i
			d.roles[i] = roleSkip
		case cols.Team != "" && lower == strings.ToLower(cols.Team):
			d.team = i
			d.roles[i] = roleSkip
		case cols.Game != "" && lower == strings.ToLower(cols.Game):
			d.game = i
			d.roles[i] = roleSkip
		case skip[lower]:
			d.roles[i] = roleSkip
		case attrs[lower]:
			d.roles[i] = roleAttr
		default:
			d.roles[i] = roleStat
		}
		// The group column stays an attribute too so filters can use it.
		if cols.Group != "" && lower == strings.ToLower(cols.Group) {
			d.group = i
			if d.roles[i] == roleStat {
				d.roles[i] = roleAttr
			}
		}
	}
	for _, alias := range cols.SubjectAliases {
		if d.subject >= 0 {
			break
		}
		for i, name := range header {
			if strings.EqualFold(strings.TrimSpace(name), alias) {
				d.subject = i
				d.roles[i] = roleSkip
				break
			}
		}
	}
	if d.subject < 0 {
		return nil, fmt.Errorf("missing subject column %q", cols.Subject)
	}
	return d, nil
}

// Row decodes one record. A record with an empty subject yields an empty Subject.
func (d *Decoder) Row(rec []string) (model.StatRow, error) {
	r := model.StatRow{
		Subject:     strings.TrimSpace(cell(rec, d.subject)),
		Competition: strings.TrimSpace(cell(rec, d.competition)),
		Group:       strings.TrimSpace(cell(rec, d.group)),
		Team:        strings.TrimSpace(cell(rec, d.team)),
		Stats:       make(map[string]model.Value),
	}
	if d.season >= 0 {
		season, err := ParseSeason(cell(rec, d.season))
		if err != nil {
			return r, err
		}
		r.Season = season
	}
	if d.game >= 0 {
		date, err := ParseGameDate(cell(rec, d.game))
		if err != nil {
			return r, fmt.Errorf("%s: %w", r.Subject, err)
		}
		if !date.IsZero() {
			r.Game = date.Format(GameDateLayout)
			if r.Season == 0 {
				r.Season = SeasonOfDate(date)
			}
		}
	}
	for i, role := range d.roles {
		if role == roleSkip {
			continue
		}
		raw := strings.TrimSpace(cell(rec, i))
		name := d.names[i]
		if role == roleAttr {
			if !IsMissing(raw) {
				if r.Attrs == nil {
					r.Attrs = make(map[string]string)
				}
				r.Attrs[name] = raw
			}
			continue
		}
		if IsMissing(raw) {
			r.Stats[name] = model.Null()
			continue
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			// Text in a stat column: keep it as an attribute.
			if r.Attrs == nil {
				r.Attrs = make(map[string]string)
			}
			r.Attrs[name] = raw
			continue
		}
		r.Stats[name] = model.Num(f)
	}
	return r, nil
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func lowerSet(in []string) map[string]bool {
	out := make(map[string]bool, len(in))
	for _, s := range in {
		out[strings.ToLower(s)] = true
	}
	return out
}

// IsMissing reports whether a raw cell denotes a missing value.
func IsMissing(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "na", "n/a", "nan", "null", "none", "-", "—":
		return true
	}
	return false
}

var errBadSeason = errors.New("bad season")

// ParseSeason accepts "2024", "2024.0" or a "2023-24" range, which maps to
// its first year.
func ParseSeason(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if IsMissing(raw) {
		return 0, nil
	}
	if i := strings.IndexAny(raw, "-/"); i > 0 {
		raw = raw[:i]
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n, nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && f == float64(int(f)) {
		return int(f), nil
	}
	return 0, fmt.Errorf("%w %q", errBadSeason, raw)
}

// GameDateLayout is the normalised form of StatRow.Game.
const GameDateLayout = "2006-01-02"

var gameDateLayouts = []string{GameDateLayout, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05", "01/02/2006", "Jan 2, 2006"}

// ParseGameDate reads a game date in any of the layouts the exports use.
// A missing cell yields the zero time.
func ParseGameDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if IsMissing(raw) {
		return time.Time{}, nil
	}
	for _, layout := range gameDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("bad game date %q", raw)
}

// SeasonOfDate maps a game date to its season, named by the year it starts
// in: games from September on belong to that year's season.
func SeasonOfDate(t time.Time) int {
	if t.Month() >= time.September {
		return t.Year()
	}
	return t.Year() - 1
}
