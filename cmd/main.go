package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/movieweb/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	runner := NewRunner(RunnerOpts{Logger: logger, ConfigPath: "config.toml"})
	defer runner.Close()

	if err := newApp(runner).Run(context.Background(), os.Args); err != nil {
		switch {
		case errors.Is(err, shared.ErrNotFound), errors.Is(err, shared.ErrMovieNotFound):
			logger.Warn("not found", "error", err)
		case errors.Is(err, shared.ErrValidation),
			errors.Is(err, shared.ErrMissingArgument),
			errors.Is(err, shared.ErrInvalidArgument):
			logger.Warn("invalid input", "error", err)
		case errors.Is(err, shared.ErrMissingCredentials):
			logger.Warn("metadata lookups need an API key", "hint", "set metadata.api_key or "+shared.EnvAPIKey, "error", err)
		default:
			runner.Close()
			logger.Fatalf("application error: %v", err)
		}
		runner.Close()
		os.Exit(1)
	}
}

// newApp builds the root command around r.
func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "movieweb",
		Usage:   "Keep per-user movie catalogs backed by OMDb metadata",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Before:   r.Configure,
		Commands: r.register(),
	}
}
