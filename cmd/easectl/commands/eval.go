package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.trai.ch/zerr"

	"github.com/on-the-ground/easing_ive_go/easing"
)

// ErrInvalidResult is returned when an evaluation yields an invalid value.
var ErrInvalidResult = zerr.New("easing evaluation produced an invalid value")

func (c *CLI) newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval NAME PROGRESS [ARGS...]",
		Short: "Evaluate one easing at one progress value",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			progress, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid progress %q: %w", args[1], err)
			}
			consumer, _ := cmd.Flags().GetString("consumer")

			res := c.runtime.RequestEasingValue(cmd.Context(), easing.Request{
				Name:     args[0],
				Args:     easing.Tokens(args[2:]...),
				Progress: progress,
				Consumer: easing.ConsumerHandle(consumer),
			})
			if !res.OK() {
				return fmt.Errorf("%w (%s): %w", ErrInvalidResult, res.Reason, res.Err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatFloat(res.Value, 'g', -1, 64))
			return nil
		},
	}
	cmd.Flags().String("consumer", "", "Consumer handle to subscribe when the name is undefined")
	return cmd
}
