package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered easings with their signatures",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			for _, name := range c.runtime.Names() {
				if def, ok := c.runtime.Lookup(name); ok {
					_, _ = fmt.Fprintln(out, def.String())
				}
			}
		},
	}
}
