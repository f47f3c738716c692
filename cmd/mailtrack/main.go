package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/mailtrack/internal/app"
	"github.com/dmitrijs2005/mailtrack/internal/buildinfo"
	"github.com/dmitrijs2005/mailtrack/internal/config"
	"github.com/dmitrijs2005/mailtrack/internal/flagx"
	"github.com/dmitrijs2005/mailtrack/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}
	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	if flagx.Positional(os.Args[1:], config.ValueFlags) == "migrate" {
		if err := app.Migrate(ctx, cfg, logger); err != nil {
			log.Fatalf("%v", err)
		}
		return
	}

	a, err := app.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := a.Run(ctx); err != nil {
		os.Exit(1)
	}
}
