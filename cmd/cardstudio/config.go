package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/csheth/cardstudio/internal/api"
	"github.com/csheth/cardstudio/internal/config"
)

func newConfigCmd(o *overrides) *cobra.Command {
	var (
		initFile bool
		check    bool
	)
	cmd := &cobra.Command{
		Use:          "config",
		Short:        "Show the effective configuration",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			path := config.FilePath()
			if initFile {
				created, err := config.WriteDefault(path)
				if err != nil {
					return err
				}
				if created {
					color.New(color.FgGreen).Fprintf(out, "Created %s\n", path)
				} else {
					fmt.Fprintf(out, "%s already exists\n", path)
				}
			}

			cfg, err := loadConfig(*o)
			if err != nil {
				return err
			}
			printConfig(out, path, cfg)

			if !check {
				return nil
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			health, err := api.New(api.Config{BaseURL: cfg.APIURL, APIKey: cfg.APIKey}).Health(ctx)
			if err != nil {
				return fmt.Errorf("health check: %w", err)
			}
			status := color.New(color.FgGreen)
			if !health.OK() {
				status = color.New(color.FgRed)
			}
			status.Fprintf(out, "service: mongo=%s proxy=%s\n", health.Mongo, health.Proxy)
			if !health.OK() {
				return fmt.Errorf("content service is unhealthy")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&initFile, "init", false, "write a default config file if none exists")
	cmd.Flags().BoolVar(&check, "check", false, "query the content service health endpoint")
	return cmd
}

func printConfig(out io.Writer, path string, cfg config.Config) {
	key := color.New(color.FgCyan)
	row := func(name, value string) {
		if value == "" {
			value = "-"
		}
		key.Fprintf(out, "%-14s", name)
		fmt.Fprintln(out, value)
	}
	row("config file", path)
	row("api url", cfg.APIURL)
	row("api key", cfg.MaskedKey())
	row("range", cfg.Range)
	row("file prefix", cfg.FilePrefix)
	row("output dir", cfg.OutputDir)
	row("font", cfg.FontPath)
	row("cache dir", cfg.CacheDir)
	row("history", cfg.HistoryPath)
	row("stale after", cfg.StaleTime().String())
	if !cfg.Configured() {
		color.New(color.FgYellow).Fprintln(out, "The content service is not configured; set CARDSTUDIO_API_URL and CARDSTUDIO_API_KEY.")
	}
}
