package api

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pable/gleague-scout/internal/aggregator"
	"github.com/pable/gleague-scout/internal/ranking"
)

// ErrBadRequest wraps every query parameter error.
var ErrBadRequest = errors.New("bad request")

func queryInt(q url.Values, key string, def int) (int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", ErrBadRequest, key)
	}
	return n, nil
}

// queryList accepts repeated keys and comma-separated values.
func queryList(q url.Values, key string) []string {
	var out []string
	for _, v := range q[key] {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// filterFrom builds a search filter. Statistic ranges are given as
// range=<stat>:<lo>-<hi>, e.g. range=pts:10-20 or range=age:-25.
func filterFrom(q url.Values) (aggregator.Filter, error) {
	f := aggregator.Filter{
		Name:       q.Get("q"),
		Categories: queryList(q, "category"),
		Positions:  queryList(q, "pos"),
		Statuses:   queryList(q, "status"),
		Teams:      queryList(q, "team"),
		SortBy:     q.Get("sort"),
		Order:      ranking.ParseOrder(q.Get("order")),
	}
	limit, err := queryInt(q, "limit", 0)
	if err != nil {
		return f, err
	}
	f.Limit = limit

	for _, arg := range q["range"] {
		stat, rng, ok := strings.Cut(arg, ":")
		if !ok || stat == "" {
			return f, fmt.Errorf("%w: range %q must be stat:lo-hi", ErrBadRequest, arg)
		}
		r, err := aggregator.ParseRange(rng)
		if err != nil {
			return f, fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
		if f.Ranges == nil {
			f.Ranges = make(map[string]aggregator.Range)
		}
		f.Ranges[stat] = r
	}
	return f, nil
}

// groupedBy reports whether ?group= asks for per-position percentiles.
// def is returned when the parameter is absent.
func groupedBy(q url.Values, def bool) (bool, error) {
	switch strings.ToLower(q.Get("group")) {
	case "":
		return def, nil
	case "pos", "position":
		return true, nil
	case "none", "league":
		return false, nil
	default:
		return false, fmt.Errorf("%w: group must be pos or none", ErrBadRequest)
	}
}
