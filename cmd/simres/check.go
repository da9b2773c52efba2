package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ormasoftchile/simres/pkg/accept"
)

var (
	checkChecksPath string
	checkReportPath string
	checkTracePath  string
)

var checkCmd = &cobra.Command{
	Use:   "check [result.yaml]",
	Short: "Run acceptance checks against a test result",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	resultPath := args[0]

	res, err := loadResult(resultPath)
	if err != nil {
		return err
	}
	cf, err := accept.LoadChecksFile(checkChecksPath)
	if err != nil {
		return err
	}

	e := &accept.Evaluator{}
	if checkTracePath != "" {
		tw, err := accept.NewTraceWriter(checkTracePath)
		if err != nil {
			return err
		}
		defer tw.Close()
		e.Trace = tw
	}

	report, err := e.Run(cf.Checks, res, resultPath)
	if err != nil {
		return err
	}

	for _, c := range report.Checks {
		switch {
		case c.Error != "":
			fmt.Printf("  %s %s: %s\n", errStyle.Render(glyphError), c.Name, c.Error)
		case c.Passed:
			fmt.Printf("  %s %s\n", passStyle.Render(glyphPassed), c.Name)
		default:
			fmt.Printf("  %s %s: %s\n", failStyle.Render(glyphFailed), c.Name, dimStyle.Render(c.Expr))
		}
	}
	fmt.Printf("\n  %d passed, %d failed, %d errored\n",
		report.Summary.Passed, report.Summary.Failed, report.Summary.Errors)

	if checkReportPath != "" {
		if err := accept.WriteReport(report, checkReportPath); err != nil {
			return err
		}
	}

	if !report.Ok() {
		return fmt.Errorf("%d check(s) did not pass", report.Summary.Failed+report.Summary.Errors)
	}
	return nil
}

func init() {
	checkCmd.Flags().StringVar(&checkChecksPath, "checks", "checks.yaml", "Path to the acceptance criteria YAML")
	checkCmd.Flags().StringVar(&checkReportPath, "report", "", "Write the acceptance report YAML to this path")
	checkCmd.Flags().StringVar(&checkTracePath, "trace", "", "Append check outcomes to this JSONL trace file")
	rootCmd.AddCommand(checkCmd)
}
