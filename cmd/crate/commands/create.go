package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/crate/internal/app"
)

func (c *CLI) newCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <destination>",
		Short: "Run the source step followed by the package step",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, _ := cmd.Flags().GetString("source")
			work, _ := cmd.Flags().GetString("work")
			record, err := c.app.Create(cmd.Context(), args[0], app.CreateOptions{
				SourceOptions: app.SourceOptions{Options: options(cmd), Kind: kind},
				Work:          work,
			})
			if err != nil {
				return err
			}
			return printRecord(cmd, record)
		},
	}
	cmd.Flags().String("source", "", "Override the source kind: none, archive or git")
	cmd.Flags().String("work", "", "Checkout directory for the source step (default --dir)")
	return cmd
}
