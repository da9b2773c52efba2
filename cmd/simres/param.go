package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ormasoftchile/simres/pkg/lookup"
)

var paramCmd = &cobra.Command{
	Use:   "param [result.yaml] [name]",
	Short: "Resolve a parameter override from a test result",
	Args:  cobra.ExactArgs(2),
	RunE:  runParam,
}

func runParam(cmd *cobra.Command, args []string) error {
	res, err := loadResult(args[0])
	if err != nil {
		return err
	}

	value, err := lookup.ResolveParameter(args[1], res)
	if err != nil {
		return fmt.Errorf("resolve parameter: %w", err)
	}
	fmt.Printf("%s = %g\n", args[1], value)
	return nil
}

func init() {
	rootCmd.AddCommand(paramCmd)
}
