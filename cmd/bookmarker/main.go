package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/MrSnakeDoc/bookmarker/internal/app"
	"github.com/MrSnakeDoc/bookmarker/internal/config"
	"github.com/MrSnakeDoc/bookmarker/internal/logger"
	"github.com/MrSnakeDoc/bookmarker/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:    "bookmarker",
		Usage:   "Save, organize, search and exchange web bookmarks",
		Version: version.Version,
		Action:  serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API (default)",
				Action: serve,
			},
			addCommand(),
			listCommand(),
			deleteCommand(),
			importCommand(),
			exportCommand(),
			categoriesCommand(),
			resetCommand(),
			{
				Name:  "version",
				Usage: "Print build information",
				Action: func(_ context.Context, _ *cli.Command) error {
					fmt.Printf("bookmarker %s (commit=%s, built=%s, go=%s)\n",
						version.Version, version.Commit, version.BuildDate, version.GoVersion)
					return nil
				},
			},
		},
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "❌ bookmarker: %v\n", err)
		os.Exit(1)
	}
}

// setup loads the configuration and builds the logger.
func setup() (*config.Config, logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log := logger.New(cfg.LogLevel, cfg.PrettyLog)
	log.Debug("configuration loaded", logger.String("config", fmt.Sprintf("%+v", cfg.Redacted())))
	return cfg, log, nil
}

func serve(ctx context.Context, _ *cli.Command) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	return a.Run(ctx)
}
