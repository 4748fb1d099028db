// Package config loads runtime configuration for the localdate CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-d string   path to the local database file
//	-i int      conversation poll interval (seconds)
//	-r float    discovery radius (kilometers)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "5s" or integer nanoseconds:
//
//	{
//	  "database_dsn": "localdate.db",
//	  "poll_interval": "5s",
//	  "session_ttl": "168h",
//	  "radius_km": 10,
//	  "staleness_window": "5m"
//	}
package config
