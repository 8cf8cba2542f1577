package config

import (
	"flag"
	"os"
	"time"

	"github.com/ameledin/studiovault/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the broker API (default from Config)
//	-l string   collection id for the batch
//	-n int      number of concurrent transfers
//	-r int      retry budget per file
//	-t int      per-attempt timeout in seconds
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-l", "-n", "-r", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "base URL of the broker API")
	fs.StringVar(&cfg.CollectionID, "l", cfg.CollectionID, "collection id")
	fs.IntVar(&cfg.Parallel, "n", cfg.Parallel, "number of concurrent transfers")
	fs.IntVar(&cfg.MaxRetries, "r", cfg.MaxRetries, "retry budget per file")
	perAttemptTimeout := fs.Int("t", int(cfg.PerAttemptTimeout.Seconds()), "per-attempt timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.PerAttemptTimeout = time.Duration(*perAttemptTimeout) * time.Second
}
