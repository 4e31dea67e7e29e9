package main

import (
	"context"
	"os"

	"shorturl/internal/app"
	"shorturl/internal/config"
	"shorturl/pkg/logger"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	driver  string
	path    string
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "shorturlctl",
		Short:        "shorturlctl shortens and resolves URLs against the configured mapping store.",
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.driver, "driver", "", "storage driver (sqlite, postgres, bolt); overrides STORAGE_DRIVER")
	flags.StringVar(&opts.path, "path", "", "database file for the sqlite or bolt driver")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")

	cmd.AddCommand(
		newInitCmd(opts),
		newShortenCmd(opts),
		newResolveCmd(opts),
	)
	return cmd
}

// loadConfig applies the command line overrides on top of the environment
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if o.driver != "" {
		cfg.Storage.Driver = o.driver
	}
	if o.path != "" {
		switch cfg.Storage.Driver {
		case config.DriverBolt:
			cfg.Storage.BoltPath = o.path
		default:
			cfg.Storage.SQLitePath = o.path
		}
	}
	return cfg, cfg.Validate()
}

func (o *rootOptions) logger() *logger.Logger {
	level := "warn"
	if o.verbose {
		level = "debug"
	}
	return logger.New(logger.Config{Level: level, Format: "text", Output: os.Stderr})
}

// openApp loads configuration and builds the application for one command
func (o *rootOptions) openApp(ctx context.Context) (*app.App, *config.Config, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	a, err := app.New(ctx, cfg, o.logger())
	if err != nil {
		return nil, nil, err
	}
	return a, cfg, nil
}
