package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/crate/internal/core/domain"
)

func (c *CLI) newPackageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "package <destination>",
		Short: "Copy the package files into the destination",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			record, err := c.app.Package(cmd.Context(), args[0], options(cmd))
			if err != nil {
				return err
			}
			return printRecord(cmd, record)
		},
	}
}

func printRecord(cmd *cobra.Command, record *domain.PackageRecord) error {
	w := cmd.OutOrStdout()
	for _, f := range record.Files {
		if _, err := fmt.Fprintln(w, f.Path); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%s %s %s\n", record.ID, record.Status, record.TreeHash)
	return err
}
