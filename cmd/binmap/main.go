package main

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"binmap/internal/app"
	"binmap/internal/config"
	"binmap/internal/logging"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}
	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

type flags struct {
	ConfigPath string
	LogLevel   string
	LogFile    string
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "binmap", "config.yaml")
}

func main() {
	var (
		f       flags
		cfg     *config.Config
		logSink *logging.Sink
	)

	cmd := &cli.Command{
		Name:      "binmap",
		Usage:     "Map out the bytes of a binary file",
		UsageText: "binmap [options] [file]",
		Description: `binmap shows a file as a grid of byte cells. Bytes can be shown as hex,
decimal, binary or ASCII, split into lines and commented. Annotations are
saved next to the file as <file>.binmap and restored when it is opened again.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("BINMAP_CONFIG"),
				Value:       defaultConfigPath(),
				Destination: &f.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (trace, debug, info, warn, error), overrides the config file",
				Sources:     cli.EnvVars("BINMAP_LOG_LEVEL"),
				Destination: &f.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to stderr)",
				Sources:     cli.EnvVars("BINMAP_LOG_FILE"),
				Destination: &f.LogFile,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			loaded, err := config.Load(f.ConfigPath)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			cfg = loaded

			sink, err := logging.Open(cmp.Or(f.LogLevel, cfg.Log.Level), cmp.Or(f.LogFile, cfg.Log.File))
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = sink.Logger
			logSink = sink
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			return logSink.Close()
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() > 1 {
				return fmt.Errorf("expected at most one file, got %d. Run 'binmap --help' for usage", c.Args().Len())
			}
			application := app.New(*cfg, log.Logger)
			if path := c.Args().First(); path != "" {
				if err := application.Open(path); err != nil {
					return err
				}
			}
			return application.Run()
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "binmap failed: %v\n", err)
		os.Exit(1)
	}
}
