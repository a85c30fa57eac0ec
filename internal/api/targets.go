package api

import (
	"net/http"

	"github.com/pable/gleague-scout/internal/aggregator"
	"github.com/pable/gleague-scout/internal/metrics"
	"github.com/pable/gleague-scout/internal/model"
)

type targetDoc struct {
	rowDoc
	Label       string             `json:"label"`
	Stored      string             `json:"stored_category,omitempty"`
	Percentiles map[string]float64 `json:"percentiles"`
}

type targetsResponse struct {
	meta
	Distribution []aggregator.Category `json:"distribution"`
	Targets      []targetDoc           `json:"targets"`
}

// HandleTargets handles GET /api/targets: the contracts table classified
// with the reference rules, filtered by the search form afterwards so that
// percentiles stay relative to the whole season (or position, ?group=pos).
func (s *Server) HandleTargets(w http.ResponseWriter, r *http.Request) {
	f, err := filterFrom(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	cc := s.opts.Classify
	if cc.ByGroup, err = groupedBy(r.URL.Query(), cc.ByGroup); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	snap, err := s.snapshot(r.Context(), model.Scope{Kind: model.KindTargets})
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

	targets := aggregator.Targets(pop, s.rules, cc)
	dist := aggregator.Distribution(s.rules, targets)
	for _, c := range dist {
		metrics.RecordClassified(c.Label, c.Count)
	}
	byKey := make(map[model.Key]aggregator.Target, len(targets))
	for _, t := range targets {
		byKey[t.Row.Key()] = t
	}

	labelled := aggregator.Relabel(pop, targets)
	rows := aggregator.Search(labelled, f)

	out := targetsResponse{
		meta:         metaOf(snap, season),
		Distribution: dist,
		Targets:      make([]targetDoc, 0, len(rows)),
	}
	for _, row := range rows {
		t := byKey[row.Key()]
		out.Targets = append(out.Targets, targetDoc{
			rowDoc:      newRowDoc(row),
			Label:       t.Label,
			Stored:      t.Stored,
			Percentiles: t.Percentiles,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
