package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/phillip/evently-go/config"
)

type rootOptions struct {
	envFile  string
	logLevel string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "evently",
		Short: "Evently API server - events, organizers and tickets",
		Long: `Evently API server - events, organizers and tickets.

Serves the event marketplace API backed by MongoDB. Without a subcommand
the HTTP server is started.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	serve := newServeCommand(opts)
	root.RunE = serve.RunE
	root.AddCommand(serve, newSeedCategoriesCommand(opts), newTokenCommand(opts))
	return root
}

// Execute runs the root command. Called once by main.main.
func Execute() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(opts *rootOptions) (config.Config, error) {
	var files []string
	if opts.envFile != "" {
		files = append(files, opts.envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return config.Config{}, err
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	return cfg, nil
}
