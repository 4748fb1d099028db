package config

import "time"

// Config holds runtime settings for the localdate CLI.
//
// Units: PollInterval, SessionTTL and StalenessWindow are time.Durations;
// RadiusKm is kilometers.
type Config struct {
	DatabaseDSN     string
	PollInterval    time.Duration
	SessionTTL      time.Duration
	RadiusKm        float64
	StalenessWindow time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabaseDSN = "localdate.db"
	c.PollInterval = 5 * time.Second
	c.SessionTTL = 7 * 24 * time.Hour
	c.RadiusKm = 10
	c.StalenessWindow = 5 * time.Minute
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
