package config

import (
	"flag"
	"os"

	"github.com/isaidso/auth/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-s string   base URL of the identity server
//	-t string   path of the token file
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-s", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerBaseURL, "s", cfg.ServerBaseURL, "base URL of the identity server")
	fs.StringVar(&cfg.TokenFile, "t", cfg.TokenFile, "path of the token file")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
