package config

import (
	"flag"
	"io"
	"os"

	"github.com/dmitrijs2005/mailtrack/internal/flagx"
)

// ValueFlags are the flags that take a value, for subcommand detection.
var ValueFlags = []string{"-b", "-u", "-k", "-d", "-s", "-t", "-l", "-c", "-config", "-env"}

// boolFlags take no value, so the token after them is never consumed.
var boolFlags = []string{"-strict", "-no-scan"}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-b string    records backend: rest or postgres
//	-u string    REST project URL
//	-k string    REST API key
//	-d string    postgres DSN
//	-s string    attachment storage: rest, s3 or inline
//	-t duration  per-request timeout
//	-l string    log level
//	-strict      never write the counter outside the atomic increment
//	-no-scan     disable AI scanning
//
// os.Args is filtered with flagx.FilterArgs so that flags owned by other
// loaders (-c, -env) and subcommands do not break parsing.
func parseFlags(cfg *Config) error {
	args := flagx.FilterArgs(os.Args[1:],
		[]string{"-b", "-u", "-k", "-d", "-s", "-t", "-l", "-strict", "-no-scan"},
		boolFlags...)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.Backend, "b", cfg.Backend, "records backend (rest|postgres)")
	fs.StringVar(&cfg.RestURL, "u", cfg.RestURL, "REST project URL")
	fs.StringVar(&cfg.RestKey, "k", cfg.RestKey, "REST API key")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "postgres DSN")
	fs.StringVar(&cfg.Storage, "s", cfg.Storage, "attachment storage (rest|s3|inline)")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "per-request timeout")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.BoolVar(&cfg.CounterStrict, "strict", cfg.CounterStrict, "strict counter mode")
	noScan := fs.Bool("no-scan", !cfg.ScanEnabled, "disable AI scanning")

	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg.ScanEnabled = !*noScan
	return nil
}
