package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/localdate/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   path to the local database file (default from Config)
//	-i int      conversation poll interval in seconds (default from Config)
//	-r float    discovery radius in kilometers (default from Config)
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-i", "-r"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "path to the local database file")
	pollInterval := fs.Int("i", int(cfg.PollInterval.Seconds()), "conversation poll interval (in seconds)")
	fs.Float64Var(&cfg.RadiusKm, "r", cfg.RadiusKm, "discovery radius (in kilometers)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.PollInterval = time.Duration(*pollInterval) * time.Second
}
