package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newProjectsCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project"},
		GroupID: "management",
		Short:   "Inspect and export saved projects",
	}
	cmd.AddCommand(newProjectsListCommand(opts), newProjectsExportCommand(opts))
	return cmd
}

func newProjectsListCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved projects",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			projects, err := a.Session().ListProjects(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.format, projects, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "ID\tNAME\tCOMPONENTS\tUPDATED")
				for _, p := range projects {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", p.ID, p.Name, p.ComponentCount, p.UpdatedAt.Format(time.DateTime))
				}
			})
		},
	}
}

func newProjectsExportCommand(opts *options) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every project as JSON to stdout or a file",
		Example: `  sitebuilder projects export > projects.json
  sitebuilder projects export --out projects.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}
			return a.Backups().Export(cmd.Context(), w)
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "output file (default stdout)")
	return cmd
}
