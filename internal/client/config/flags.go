package config

import (
	"flag"
	"os"
	"time"

	"github.com/moodmapper/moodmapper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the backend server (default from Config)
//	-d string   path of the local database file
//	-p int      remote poll interval in seconds
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-p"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "base URL of the backend server")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path of the local database file")
	pollInterval := fs.Int("p", int(cfg.PollInterval.Seconds()), "remote poll interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.PollInterval = time.Duration(*pollInterval) * time.Second
}
