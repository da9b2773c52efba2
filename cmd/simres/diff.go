package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ormasoftchile/simres/pkg/compare"
)

var (
	diffAtol float64
	diffRtol float64
)

var diffCmd = &cobra.Command{
	Use:   "diff [candidate.yaml] [reference.yaml] [signal]",
	Short: "Compare a logged signal between two test results",
	Args:  cobra.ExactArgs(3),
	RunE:  runDiff,
}

func runDiff(cmd *cobra.Command, args []string) error {
	cand, err := loadResult(args[0])
	if err != nil {
		return fmt.Errorf("candidate: %w", err)
	}
	ref, err := loadResult(args[1])
	if err != nil {
		return fmt.Errorf("reference: %w", err)
	}

	cmp, err := compare.Signals(args[2], cand, ref, compare.Tolerance{Abs: diffAtol, Rel: diffRtol})
	if err != nil {
		return fmt.Errorf("compare: %w", err)
	}

	fmt.Print(renderTable([][2]string{
		{"signal", cmp.Signal},
		{"samples", fmt.Sprintf("%d", cmp.Samples)},
		{"max abs deviation", fmt.Sprintf("%g", cmp.MaxAbs)},
		{"max rel deviation", fmt.Sprintf("%g", cmp.MaxRel)},
		{"worst at t", fmt.Sprintf("%g", cmp.WorstTime)},
	}))

	if !cmp.Within {
		fmt.Printf("\n  %s %s deviates beyond tolerance\n", failStyle.Render(glyphFailed), cmp.Signal)
		return fmt.Errorf("signal %q exceeds tolerance (max abs %g)", cmp.Signal, cmp.MaxAbs)
	}
	fmt.Printf("\n  %s %s within tolerance\n", passStyle.Render(glyphPassed), cmp.Signal)
	return nil
}

func init() {
	diffCmd.Flags().Float64Var(&diffAtol, "atol", 1e-9, "Absolute tolerance")
	diffCmd.Flags().Float64Var(&diffRtol, "rtol", 0, "Relative tolerance (fraction of |reference|)")
	rootCmd.AddCommand(diffCmd)
}
