// Package config defines scoutmetrics configuration and how it is layered.
package config

import (
	"time"

	"github.com/pable/gleague-scout/internal/classify"
	"github.com/pable/gleague-scout/internal/normalize"
)

// Config is the process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr is the listen address of the serve command, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBPath is the local SQLite snapshot mirror.
	DBPath string `koanf:"db_path"`

	// CacheTTL bounds how long a fetched population is reused.
	CacheTTL time.Duration `koanf:"cache_ttl"`

	Warehouse Warehouse `koanf:"warehouse"`
	Profile   Profile   `koanf:"profile"`
	Classify  Classify  `koanf:"classify"`

	// AnthropicModel is used by the analyze command.
	AnthropicModel string `koanf:"anthropic_model"`
}

// Warehouse locates the gold tables in BigQuery.
type Warehouse struct {
	ProjectID    string `koanf:"project_id"`
	Dataset      string `koanf:"dataset"`
	Location     string `koanf:"location"`
	PlayersTable string `koanf:"players_table"`
	TargetsTable string `koanf:"targets_table"`
	TeamsTable   string `koanf:"teams_table"`
	// GamesTable holds one row per player game. It lives in the bronze
	// dataset unless GamesDataset is empty.
	GamesTable   string `koanf:"games_table"`
	GamesDataset string `koanf:"games_dataset"`

	// CredentialsEnv names the env var holding a service-account JSON key.
	// When unset or empty, ambient default credentials are used.
	CredentialsEnv string `koanf:"credentials_env"`
}

// Profile tunes the player profile page.
type Profile struct {
	GamesCap       float64 `koanf:"games_cap"`
	MinutesPerGame float64 `koanf:"minutes_per_game"`
	AnchorStrategy string  `koanf:"anchor_strategy"`
	ByPosition     bool    `koanf:"by_position"`
}

// Classify parameterises the target rule set.
type Classify struct {
	MaxAge            float64  `koanf:"max_age"`
	AvailableStatuses []string `koanf:"available_statuses"`
	TrackedStats      []string `koanf:"tracked_stats"`
	EfficiencyStat    string   `koanf:"efficiency_stat"`
	ByPosition        bool     `koanf:"by_position"`
}

// New returns a Config holding the defaults.
func New() *Config {
	cc := classify.DefaultConfig()
	return &Config{
		LogLevel: "info",
		Addr:     ":8080",
		DBPath:   "",
		CacheTTL: time.Hour,
		Warehouse: Warehouse{
			ProjectID:      "carbide-bonsai-466217-v2",
			Dataset:        "scouting_dbt_gold",
			Location:       "US",
			PlayersTable:   "player_stats_gold",
			TargetsTable:   "player_contracts_gold",
			TeamsTable:     "gold_team_stats_all",
			GamesTable:     "player_stats_gold",
			GamesDataset:   "scouting_dbt_bronze_scouting_dbt_bronze_gold",
			CredentialsEnv: "GOOGLE_SERVICE_ACCOUNT_KEY",
		},
		Profile: Profile{
			GamesCap:       normalize.DefaultGamesCap,
			MinutesPerGame: 25,
			AnchorStrategy: normalize.MinMeanMax.String(),
		},
		Classify: Classify{
			MaxAge:            cc.MaxAge,
			AvailableStatuses: cc.AvailableStatuses,
			TrackedStats:      cc.TrackedStats,
			EfficiencyStat:    cc.EfficiencyStat,
		},
		AnthropicModel: "claude-haiku-4-5-20251001",
	}
}

// ClassifyConfig converts the loaded settings into the rule-set config.
func (c *Config) ClassifyConfig() classify.Config {
	out := classify.DefaultConfig()
	out.MaxAge = c.Classify.MaxAge
	out.ByGroup = c.Classify.ByPosition
	if len(c.Classify.AvailableStatuses) > 0 {
		out.AvailableStatuses = c.Classify.AvailableStatuses
	}
	if len(c.Classify.TrackedStats) > 0 {
		out.TrackedStats = c.Classify.TrackedStats
	}
	if c.Classify.EfficiencyStat != "" {
		out.EfficiencyStat = c.Classify.EfficiencyStat
	}
	return out
}

// Strategy parses the configured anchor strategy.
func (c *Config) Strategy() (normalize.Strategy, error) {
	return normalize.ParseStrategy(c.Profile.AnchorStrategy)
}
