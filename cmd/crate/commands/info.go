package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (c *CLI) newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Validate the descriptor and print its metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			meta, err := c.app.Info(cmd.Context(), options(cmd))
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			rows := [][2]string{
				{"id", meta.ID()},
				{"purl", meta.PURL()},
				{"description", meta.Description},
				{"license", meta.License},
				{"url", meta.URL},
				{"repo_url", meta.RepoURL},
				{"author", meta.Author},
				{"exports_sources", strings.Join(meta.ExportPatterns, ", ")},
				{"source", string(meta.Source.Kind)},
			}
			for _, row := range rows {
				if row[1] == "" {
					continue
				}
				if _, err := fmt.Fprintf(w, "%-16s %s\n", row[0]+":", row[1]); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
