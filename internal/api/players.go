package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/pable/gleague-scout/internal/aggregator"
	"github.com/pable/gleague-scout/internal/export"
	"github.com/pable/gleague-scout/internal/loader"
	"github.com/pable/gleague-scout/internal/model"
	"github.com/pable/gleague-scout/internal/ranking"
)

type rowDoc struct {
	Subject     string              `json:"subject"`
	Season      int                 `json:"season,omitempty"`
	Competition string              `json:"competition,omitempty"`
	Team        string              `json:"team,omitempty"`
	Attrs       map[string]string   `json:"attrs,omitempty"`
	Stats       map[string]*float64 `json:"stats"`
}

func newRowDoc(r model.StatRow) rowDoc {
	d := rowDoc{
		Subject:     r.Subject,
		Season:      r.Season,
		Competition: r.Competition,
		Team:        r.Team,
		Attrs:       r.Attrs,
		Stats:       make(map[string]*float64, len(r.Stats)),
	}
	for name, v := range r.Stats {
		d.Stats[name] = export.Ptr(name, v)
	}
	return d
}

func rowDocs(rows []model.StatRow) []rowDoc {
	out := make([]rowDoc, 0, len(rows))
	for _, r := range rows {
		out = append(out, newRowDoc(r))
	}
	return out
}

type meta struct {
	Season    int       `json:"season,omitempty"`
	Stale     bool      `json:"stale"`
	FetchedAt time.Time `json:"fetched_at,omitzero"`
}

func metaOf(snap loader.Snapshot, season int) meta {
	return meta{Season: season, Stale: snap.Stale, FetchedAt: snap.FetchedAt}
}

// seasonOf resolves the season parameter, defaulting to the newest season
// present in pop.
func seasonOf(r *http.Request, pop model.Population) (int, error) {
	season, err := queryInt(r.URL.Query(), "season", 0)
	if err != nil || season != 0 {
		return season, err
	}
	if seasons := pop.Seasons(); len(seasons) > 0 {
		return seasons[0], nil
	}
	return 0, nil
}

func kindOf(r *http.Request, def model.Kind) (model.Kind, error) {
	raw := r.URL.Query().Get("kind")
	if raw == "" {
		return def, nil
	}
	k, err := model.ParseKind(raw)
	if err != nil {
		return 0, errors.Join(ErrBadRequest, err)
	}
	return k, nil
}

// HandleSeasons handles GET /api/seasons?kind=players.
func (s *Server) HandleSeasons(w http.ResponseWriter, r *http.Request) {
	kind, err := kindOf(r, model.KindPlayers)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	seasons, err := s.deps.Seasons(r.Context(), kind)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if seasons == nil {
		seasons = []int{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"kind": kind.String(), "seasons": seasons})
}

type summaryDoc struct {
	Found       int      `json:"found"`
	AvgAge      *float64 `json:"avg_age"`
	Available   int      `json:"available"`
	Development int      `json:"development_targets"`
}

type playersResponse struct {
	meta
	Summary summaryDoc `json:"summary"`
	Players []rowDoc   `json:"players"`
}

// HandlePlayers handles GET /api/players: the search form over one season.
func (s *Server) HandlePlayers(w http.ResponseWriter, r *http.Request) {
	kind, err := kindOf(r, model.KindPlayers)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	f, err := filterFrom(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	snap, err := s.snapshot(r.Context(), model.Scope{Kind: kind})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	season, err := seasonOf(r, snap.Population)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	pop := snap.Population
	if season != 0 {
		pop = pop.Season(season)
	}
	rows := aggregator.Search(pop, f)
	sum := aggregator.Summarize(rows, aggregator.SignableStatuses)
	writeJSON(w, http.StatusOK, playersResponse{
		meta: metaOf(snap, season),
		Summary: summaryDoc{
			Found:       sum.Found,
			AvgAge:      export.Round(sum.AvgAge, export.VolumeDecimals),
			Available:   sum.Available,
			Development: sum.Development,
		},
		Players: rowDocs(rows),
	})
}

type profileResponse struct {
	meta
	Profile export.ProfileDoc `json:"profile"`
}

// HandleProfile handles GET /api/players/{name}/profile[?season=N].
func (s *Server) HandleProfile(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	season, err := queryInt(r.URL.Query(), "season", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	opts := s.opts.Profile
	if opts.ByGroup, err = groupedBy(r.URL.Query(), opts.ByGroup); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	snap, err := s.snapshot(r.Context(), model.Scope{Kind: model.KindPlayers})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	p, err := aggregator.BuildPlayerProfile(snap.Population, name, season, opts)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{meta: metaOf(snap, p.Season), Profile: export.NewProfileDoc(p)})
}

type rankEntry struct {
	Rank     *float64 `json:"rank"`
	Position int      `json:"position,omitempty"`
	Subject  string   `json:"subject"`
	Value    *float64 `json:"value"`
}

type rankingsResponse struct {
	meta
	Competition string      `json:"competition,omitempty"`
	Stat        string      `json:"stat"`
	Order       string      `json:"order"`
	Size        int         `json:"size"`
	Total       int         `json:"total"`
	Entries     []rankEntry `json:"entries"`
}

// HandleRankings handles GET /api/rankings?stat=points_per_game&kind=K&competition=C.
func (s *Server) HandleRankings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	stat := q.Get("stat")
	if stat == "" {
		stat = model.StatPointsPerGame
	}
	kind, err := kindOf(r, model.KindPlayers)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	limit, err := queryInt(q, "limit", 25)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	snap, err := s.snapshot(r.Context(), model.Scope{Kind: kind})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	season, err := seasonOf(r, snap.Population)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	pop, competition := aggregator.Frame(snap.Population, season, q.Get("competition"))
	res := ranking.Rank(pop, stat, ranking.ParseOrder(q.Get("order")))

	entries := res.Entries
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	out := rankingsResponse{
		meta:        metaOf(snap, season),
		Competition: competition,
		Stat:        stat,
		Order:       res.Order.String(),
		Size:        res.Size,
		Total:       res.Total,
		Entries:     make([]rankEntry, 0, len(entries)),
	}
	for _, e := range entries {
		re := rankEntry{Subject: e.Subject, Value: export.Ptr(stat, e.Value)}
		if e.Ranked {
			rank := e.Rank
			re.Rank = &rank
			re.Position = e.Position
		}
		out.Entries = append(out.Entries, re)
	}
	writeJSON(w, http.StatusOK, out)
}
