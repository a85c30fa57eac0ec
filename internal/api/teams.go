package api

import (
	"net/http"

	"github.com/pable/gleague-scout/internal/aggregator"
	"github.com/pable/gleague-scout/internal/model"
)

type contextDoc struct {
	Season      int    `json:"season"`
	Competition string `json:"competition"`
}

type teamsResponse struct {
	meta
	Competition string       `json:"competition,omitempty"`
	Contexts    []contextDoc `json:"contexts"`
	Stats       []string     `json:"stats"`
	Teams       []rowDoc     `json:"teams"`
}

// HandleTeams handles GET /api/teams?season=N&competition=X&team=A,B.
func (s *Server) HandleTeams(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	snap, err := s.snapshot(r.Context(), model.Scope{Kind: model.KindTeams})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	season, err := seasonOf(r, snap.Population)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	ctxs := aggregator.Contexts(snap.Population)
	_, competition := aggregator.Frame(snap.Population, season, q.Get("competition"))
	overview := aggregator.TeamOverview(snap.Population, season, competition, queryList(q, "team"))

	out := teamsResponse{
		meta:        metaOf(snap, season),
		Competition: competition,
		Contexts:    make([]contextDoc, 0, len(ctxs)),
		Stats:       aggregator.NumericStats(overview),
		Teams:       rowDocs(overview.Rows),
	}
	if out.Stats == nil {
		out.Stats = []string{}
	}
	for _, c := range ctxs {
		out.Contexts = append(out.Contexts, contextDoc(c))
	}
	writeJSON(w, http.StatusOK, out)
}
