package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/vidtube/internal/flagx"
)

// parseFlags overlays -a and -timeout onto cfg. Other flags in args are
// ignored (see flagx.FilterArgs). A malformed value panics.
func parseFlags(cfg *Config, args []string) {
	fs := flag.NewFlagSet("client", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	timeout := fs.Int("timeout", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(flagx.FilterArgs(args, []string{"-a", "-timeout"})); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
