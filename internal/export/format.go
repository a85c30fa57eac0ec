// Package export writes populations, rankings and profiles to files.
//
// Number precision follows the scouting sheet: per-game volume statistics
// carry 1 decimal, efficiency ratios 3 decimals, percentiles and counts none.
package export

import (
	"strconv"
	"strings"

	"github.com/pable/gleague-scout/internal/model"
)

// Decimal places per statistic class.
const (
	VolumeDecimals     = 1
	EfficiencyDecimals = 3
	PercentileDecimals = 0
	CountDecimals      = 0
)

var efficiencyStats = map[string]bool{
	model.StatTSPct:   true,
	model.StatTeamWin: true,
	"efg_pct":         true,
	"fg_pct":          true,
	"fg3_pct":         true,
	"ft_pct":          true,
	"usg_pct":         true,
}

var countStats = map[string]bool{
	model.StatGamesPlayed:   true,
	model.StatTotalPoints:   true,
	model.StatTotalRebounds: true,
	model.StatTotalAssists:  true,
	model.StatAge:           true,
	model.StatTeamGP:        true,
	model.StatTeamWins:      true,
	"l":                     true,

	// Box scores of a single game.
	model.StatPoints:     true,
	model.StatRebounds:   true,
	model.StatAssists:    true,
	model.StatSteals:     true,
	model.StatBlocks:     true,
	model.StatTurnovers:  true,
	model.StatPlusMinus:  true,
	model.StatFGM:        true,
	model.StatFGA:        true,
	model.Stat3PM:        true,
	model.Stat3PA:        true,
	model.StatFTM:        true,
	model.StatFTA:        true,
	model.StatEfficiency: true,
}

// Decimals returns the number of decimals stat is written with.
func Decimals(stat string) int {
	s := strings.ToLower(stat)
	switch {
	case strings.HasSuffix(s, "_percentile") || strings.HasPrefix(s, "pct_"):
		return PercentileDecimals
	case efficiencyStats[s] || strings.HasSuffix(s, "_pct"):
		return EfficiencyDecimals
	case countStats[s] || strings.HasPrefix(s, "rank_"):
		return CountDecimals
	default:
		return VolumeDecimals
	}
}

// Format renders v at the precision of stat, or "" when null.
func Format(stat string, v model.Value) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float, 'f', Decimals(stat), 64)
}

// FormatPercentile renders a percentile with no decimals.
func FormatPercentile(p float64) string {
	return strconv.FormatFloat(p, 'f', PercentileDecimals, 64)
}
