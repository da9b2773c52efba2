package main

import (
	"fmt"

	"github.com/montanaflynn/stats"
	"github.com/spf13/cobra"

	"github.com/ormasoftchile/simres/pkg/lookup"
)

var signalStats bool

var signalCmd = &cobra.Command{
	Use:   "signal [result.yaml] [name]",
	Short: "Resolve a logged signal from a test result",
	Args:  cobra.ExactArgs(2),
	RunE:  runSignal,
}

func runSignal(cmd *cobra.Command, args []string) error {
	res, err := loadResult(args[0])
	if err != nil {
		return err
	}

	values, times, err := lookup.ResolveSignal(args[1], res)
	if err != nil {
		return fmt.Errorf("resolve signal: %w", err)
	}
	if len(values) == 0 || len(times) == 0 {
		fmt.Printf("%s: empty series\n", args[1])
		return nil
	}

	fmt.Printf("%s: %d samples over [%g, %g]\n", args[1], len(values), times[0], times[len(times)-1])

	if signalStats {
		fmt.Print(renderTable(aggregateRows(values)))
		return nil
	}

	n := min(len(values), len(times))
	rows := make([][2]string, n)
	for i := 0; i < n; i++ {
		rows[i] = [2]string{fmt.Sprintf("%g", times[i]), fmt.Sprintf("%g", values[i])}
	}
	fmt.Print(renderTable(rows))
	return nil
}

// aggregateRows summarizes a series for the --stats table. Aggregate
// failures (impossible on a non-empty series) render as the error text
// rather than aborting.
func aggregateRows(values []float64) [][2]string {
	cell := func(v float64, err error) string {
		if err != nil {
			return err.Error()
		}
		return fmt.Sprintf("%g", v)
	}
	min, errMin := stats.Min(values)
	max, errMax := stats.Max(values)
	mean, errMean := stats.Mean(values)
	median, errMedian := stats.Median(values)
	stddev, errStddev := stats.StandardDeviation(values)

	return [][2]string{
		{"count", fmt.Sprintf("%d", len(values))},
		{"min", cell(min, errMin)},
		{"max", cell(max, errMax)},
		{"mean", cell(mean, errMean)},
		{"median", cell(median, errMedian)},
		{"stddev", cell(stddev, errStddev)},
		{"final", fmt.Sprintf("%g", values[len(values)-1])},
	}
}

func init() {
	signalCmd.Flags().BoolVar(&signalStats, "stats", false, "Print aggregate statistics instead of samples")
	rootCmd.AddCommand(signalCmd)
}
