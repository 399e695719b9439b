// Package cli is the sitebuilder command line: the HTTP server, the MCP
// stdio server and a few maintenance commands sharing one configuration.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"sitebuilder/internal/app"
	"sitebuilder/internal/config"
)

// options holds the persistent flags.
type options struct {
	configFile string
	logLevel   string
	format     string
}

// Execute runs the CLI with args. This is the entry point called from main.
func Execute(ctx context.Context, args []string) error {
	rootCmd := newRootCommand(&options{})
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(opts *options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sitebuilder",
		Short: "Landing page builder backend",
		Long: `sitebuilder serves the page builder API: a canvas of components,
block templates, an inspector and autosaved projects.

The same builder is available to AI agents over MCP (sitebuilder mcp).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "Core Commands:"})
	rootCmd.AddGroup(&cobra.Group{ID: "management", Title: "Management Commands:"})

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default is ./builder.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVarP(&opts.format, "format", "o", "table", "output format: table, json, yaml")

	rootCmd.AddCommand(
		newServeCommand(opts),
		newMCPCommand(opts),
		newProjectsCommand(opts),
		newBackupCommand(opts),
		newCatalogCommand(opts),
	)
	return rootCmd
}

// loadConfig reads the configuration and applies flag overrides.
func (o *options) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	return cfg, nil
}

// openApp loads the configuration and builds the application.
func (o *options) openApp(ctx context.Context) (*app.App, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("start builder: %w", err)
	}
	return a, nil
}
