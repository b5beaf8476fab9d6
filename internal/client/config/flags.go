package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/authgate/internal/flagx"
)

var knownFlags = []string{"-p", "-a", "-t", "-i", "-w", "-d", "-l", "-v"}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-p string    identity provider kind: memory or grpc
//	-a string    address and port of the identity provider
//	-t string    token cache file
//	-i int       online check interval in seconds
//	-w duration  initialization wait timeout (0 = unbounded)
//	-d duration  navigation delay after sign-in
//	-l string    language (en, fr)
//	-v string    log level
//
// Only the flags above are parsed; flagx.FilterArgs drops the rest.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ProviderKind, "p", cfg.ProviderKind, "identity provider kind (memory, grpc)")
	fs.StringVar(&cfg.ProviderEndpointAddr, "a", cfg.ProviderEndpointAddr, "address and port of the identity provider")
	fs.StringVar(&cfg.TokenCachePath, "t", cfg.TokenCachePath, "token cache file")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.DurationVar(&cfg.InitTimeout, "w", cfg.InitTimeout, "initialization wait timeout, 0 waits forever")
	fs.DurationVar(&cfg.NavigationDelay, "d", cfg.NavigationDelay, "navigation delay after sign-in")
	fs.StringVar(&cfg.Language, "l", cfg.Language, "language (en, fr)")
	fs.StringVar(&cfg.LogLevel, "v", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
