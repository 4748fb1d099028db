package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/localdate/internal/flagx"
	"github.com/dmitrijs2005/localdate/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "5s"
// or as integer nanoseconds. After parsing, values are copied into the
// runtime Config.
type JsonConfig struct {
	DatabaseDSN     string         `json:"database_dsn"`
	PollInterval    timex.Duration `json:"poll_interval"`
	SessionTTL      timex.Duration `json:"session_ttl"`
	RadiusKm        float64        `json:"radius_km"`
	StalenessWindow timex.Duration `json:"staleness_window"`
}

// parseJson overlays Config with values loaded from a JSON file selected via
// the -c/-config flags. Absent flags mean no JSON is loaded; read or
// unmarshal errors panic (caller should recover if desired). Zero values in
// the file leave the corresponding Config field untouched.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.DatabaseDSN != "" {
		cfg.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.PollInterval.Duration != 0 {
		cfg.PollInterval = time.Duration(jc.PollInterval.Duration)
	}
	if jc.SessionTTL.Duration != 0 {
		cfg.SessionTTL = time.Duration(jc.SessionTTL.Duration)
	}
	if jc.RadiusKm != 0 {
		cfg.RadiusKm = jc.RadiusKm
	}
	if jc.StalenessWindow.Duration != 0 {
		cfg.StalenessWindow = time.Duration(jc.StalenessWindow.Duration)
	}
}
