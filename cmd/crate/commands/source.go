package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/crate/internal/app"
)

func (c *CLI) newSourceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "source <destination>",
		Short: "Fetch the versioned sources into the destination",
		Long: "Fetch the versioned sources into the destination.\n\n" +
			"The source step is disabled unless the descriptor or --source selects 'archive' or 'git'.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, _ := cmd.Flags().GetString("source")
			return c.app.Source(cmd.Context(), args[0], app.SourceOptions{
				Options: options(cmd),
				Kind:    kind,
			})
		},
	}
	cmd.Flags().String("source", "", "Override the source kind: none, archive or git")
	return cmd
}
