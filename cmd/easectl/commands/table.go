package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/on-the-ground/easing_ive_go/easing"
)

func (c *CLI) newTableCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table NAME [ARGS...]",
		Short: "Print a dense table of an easing sampled across all evaluation contexts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			samples, _ := cmd.Flags().GetInt("samples")
			from, _ := cmd.Flags().GetFloat64("from")
			to, _ := cmd.Flags().GetFloat64("to")
			if samples < 2 {
				return fmt.Errorf("samples must be at least 2, got %d", samples)
			}

			progress := make([]float64, samples)
			for i := range progress {
				progress[i] = from + (to-from)*float64(i)/float64(samples-1)
			}

			results, err := c.runtime.Precompute(cmd.Context(), easing.Request{
				Name: args[0],
				Args: easing.Tokens(args[1:]...),
			}, progress)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, res := range results {
				p := strconv.FormatFloat(progress[i], 'f', 4, 64)
				if res.OK() {
					_, _ = fmt.Fprintf(out, "%s\t%s\n", p, strconv.FormatFloat(res.Value, 'f', 6, 64))
				} else {
					_, _ = fmt.Fprintf(out, "%s\tinvalid (%s)\n", p, res.Reason)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntP("samples", "n", 11, "Number of evenly spaced progress samples")
	cmd.Flags().Float64("from", 0, "First progress value")
	cmd.Flags().Float64("to", 1, "Last progress value")
	return cmd
}
