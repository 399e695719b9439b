package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"sitebuilder/internal/domain"
)

func newBackupCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "backup",
		GroupID: "management",
		Short:   "Create, list and restore project backups",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Write a backup now",
			RunE: func(cmd *cobra.Command, _ []string) error {
				a, err := opts.openApp(cmd.Context())
				if err != nil {
					return err
				}
				defer a.Close()
				path, err := a.Backups().Backup(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			},
		},
		&cobra.Command{
			Use:     "list",
			Aliases: []string{"ls"},
			Short:   "List backup files, oldest first",
			RunE: func(cmd *cobra.Command, _ []string) error {
				a, err := opts.openApp(cmd.Context())
				if err != nil {
					return err
				}
				defer a.Close()
				paths, err := a.Backups().List()
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), opts.format, paths, func(tw *tabwriter.Writer) {
					fmt.Fprintln(tw, "FILE\tPATH")
					for _, p := range paths {
						fmt.Fprintf(tw, "%s\t%s\n", filepath.Base(p), p)
					}
				})
			},
		},
		newBackupRestoreCommand(opts),
	)
	return cmd
}

func newBackupRestoreCommand(opts *options) *cobra.Command {
	var confirm bool
	cmd := &cobra.Command{
		Use:   "restore <file>",
		Short: "Replace every stored project with the contents of a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return errors.Join(domain.ErrConfirmationRequired, errors.New("pass --yes to overwrite the stored projects"))
			}
			a, err := opts.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			n, err := a.Backups().Restore(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "restored %d projects from %s\n", n, args[0])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&confirm, "yes", "y", false, "confirm overwriting the stored projects")
	return cmd
}
