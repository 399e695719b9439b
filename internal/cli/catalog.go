package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"sitebuilder/internal/catalog"
)

func newCatalogCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "catalog [components|templates]",
		GroupID: "management",
		Short:   "Show the component palette and block templates",
		Long: `Print the component definitions and block templates the builder offers,
including the catalog override file when one is configured.`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"components", "templates"},
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := opts.loadCatalog()
			if err != nil {
				return err
			}
			section := "components"
			if len(args) == 1 {
				section = args[0]
			}
			w := cmd.OutOrStdout()
			switch section {
			case "components":
				defs := lib.Components()
				return render(w, opts.format, defs, func(tw *tabwriter.Writer) {
					fmt.Fprintln(tw, "TYPE\tLABEL\tDEFAULT")
					for _, d := range defs {
						fmt.Fprintf(tw, "%s\t%s\t%s\n", d.Type, d.Label, d.DefaultContent)
					}
				})
			case "templates":
				tmpls := lib.Templates()
				return render(w, opts.format, tmpls, func(tw *tabwriter.Writer) {
					fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tCOMPONENTS")
					for _, t := range tmpls {
						fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", t.ID, t.Name, t.Category, len(t.Components))
					}
				})
			default:
				return fmt.Errorf("unknown catalog section %q", section)
			}
		},
	}
	return cmd
}

// loadCatalog builds the library without opening storage.
func (o *options) loadCatalog() (*catalog.Library, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	base, err := catalog.Default()
	if err != nil {
		return nil, err
	}
	if cfg.Catalog.OverridePath == "" {
		return base, nil
	}
	return catalog.LoadOverride(base, cfg.Catalog.OverridePath)
}
