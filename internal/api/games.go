package api

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pable/gleague-scout/internal/aggregator"
	"github.com/pable/gleague-scout/internal/export"
	"github.com/pable/gleague-scout/internal/loader"
	"github.com/pable/gleague-scout/internal/model"
)

type gameLogResponse struct {
	meta
	GameLog export.GameLogDoc `json:"game_log"`
}

func queryDate(q url.Values, key string) (time.Time, error) {
	t, err := loader.ParseGameDate(q.Get(key))
	if err != nil {
		return t, fmt.Errorf("%w: %s: %w", ErrBadRequest, key, err)
	}
	return t, nil
}

func gameFilterFrom(q url.Values) (aggregator.GameFilter, error) {
	var (
		f   = aggregator.GameFilter{Team: q.Get("team")}
		err error
	)
	if f.Season, err = queryInt(q, "season", 0); err != nil {
		return f, err
	}
	if f.Last, err = queryInt(q, "last", 0); err != nil {
		return f, err
	}
	if f.From, err = queryDate(q, "from"); err != nil {
		return f, err
	}
	if f.To, err = queryDate(q, "to"); err != nil {
		return f, err
	}
	return f, nil
}

// HandleGameLog serves GET /api/players/{name}/games: the player's game
// averages against the league and a rolling timeline of ?metric=.
func (s *Server) HandleGameLog(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	q := r.URL.Query()
	f, err := gameFilterFrom(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	window, err := queryInt(q, "window", aggregator.DefaultWindow)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	metric := q.Get("metric")
	if metric == "" {
		metric = model.StatPoints
	}
	snap, err := s.snapshot(r.Context(), model.Scope{Kind: model.KindGames})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	g, err := aggregator.BuildGameLog(snap.Population, name, f, aggregator.GameMetrics)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gameLogResponse{meta: metaOf(snap, f.Season), GameLog: export.NewGameLogDoc(g, metric, window)})
}
