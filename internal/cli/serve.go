package cli

import (
	"github.com/spf13/cobra"
)

func newServeCommand(opts *options) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:     "serve",
		GroupID: "core",
		Short:   "Serve the builder HTTP API",
		Long: `Start the HTTP API for the page builder.

Besides the canvas and project endpoints it exposes /metrics for Prometheus,
/api/events as a Server-Sent Events stream, and runs scheduled backups.`,
		Example: `  # Start on the configured address
  sitebuilder serve

  # Override the listen address
  sitebuilder serve --addr :3000`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			if addr != "" {
				a.Config().HTTP.Addr = addr
			}
			return a.ServeHTTP(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides http.addr)")
	return cmd
}

func newMCPCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "mcp",
		GroupID: "core",
		Short:   "Serve the builder to AI agents over MCP stdio",
		Long: `Run an MCP server on stdin/stdout. Agents get tools to add, edit and
reorder components, insert block templates and manage projects.

Logs go to stderr so they do not corrupt the protocol stream.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			return a.ServeMCP(cmd.Context())
		},
	}
}
