package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/phasesim/datarecording"
	"github.com/sarchlab/phasesim/tracing"
)

var reportCmd = &cobra.Command{
	Use:   "report [recording.sqlite3]",
	Short: "Summarize a recorded run.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(args[0]); err != nil {
			return err
		}

		reader := datarecording.NewReader(args[0])
		defer reader.Close()

		return summarize(cmd.Context(), reader, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func summarize(
	ctx context.Context,
	reader datarecording.DataReader,
	out io.Writer,
) error {
	if ctx == nil {
		ctx = context.Background()
	}

	traces := tracing.NewTraceReader(reader)

	sizes, err := traces.TableSizes(ctx)
	if err != nil {
		return err
	}

	for _, size := range sizes {
		fmt.Fprintf(out, "%s: %d rows\n", size.Table, size.Rows)
	}

	history, err := traces.StateHistory(ctx, "")
	if err != nil {
		return err
	}

	for _, e := range history {
		fmt.Fprintf(out, "%s %d:%s %s\n", e.Simulation, e.Tick, e.Phase, e.State)
	}

	last, found, err := traces.LastTime(ctx, "")
	if err != nil || !found {
		return err
	}

	_, err = fmt.Fprintf(out, "last time %s\n", last)

	return err
}
