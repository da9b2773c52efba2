package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ormasoftchile/simres/pkg/result"
)

// Version is set at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	loadDotEnv() // load .env file if present (gitignored)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadDotEnv reads a .env file from the working directory and sets
// any variables that aren't already set in the environment.
// Lines are KEY=VALUE (or KEY="VALUE"). Comments (#) and blanks are skipped.
// The .env file is gitignored so harness credentials never end up in source control.
func loadDotEnv() {
	f, err := os.Open(".env")
	if err != nil {
		return // no .env file — that's fine
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		val = strings.Trim(val, `"'`)
		if os.Getenv(key) == "" {
			os.Setenv(key, val)
		}
	}
}

// loadResult reads a result document and runs domain validation before any
// command works with it. Warnings go to stderr; errors abort the command.
func loadResult(path string) (*result.TestResult, error) {
	res, err := result.LoadFile(path)
	if err != nil {
		return nil, err
	}
	var count int
	for _, e := range result.ValidateDomain(res) {
		if e.Severity == "warning" {
			fmt.Fprintf(os.Stderr, "  ⚠ %s\n", e.Error())
			continue
		}
		fmt.Fprintf(os.Stderr, "  %s\n", e.Error())
		count++
	}
	if count > 0 {
		return nil, fmt.Errorf("%s failed validation with %d error(s)", path, count)
	}
	return res, nil
}

var rootCmd = &cobra.Command{
	Use:   "simres",
	Short: "Simulation test-result toolkit",
	Long:  "simres — resolve parameter overrides and logged signals out of simulation test results, run acceptance checks, and compare signals across runs.",
}

// --- validate ---

var validateCmd = &cobra.Command{
	Use:   "validate [result.yaml]",
	Short: "Validate a test-result YAML file against the schema",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	res, errs := result.ValidateFile(filePath)
	if len(errs) > 0 {
		var errors []*result.ValidationError
		var warnings []*result.ValidationError
		for _, e := range errs {
			if e.Severity == "warning" {
				warnings = append(warnings, e)
			} else {
				errors = append(errors, e)
			}
		}
		for _, w := range warnings {
			fmt.Fprintf(os.Stderr, "  ⚠ [%s] %s\n", w.Phase, w.Message)
			if w.Path != "" {
				fmt.Fprintf(os.Stderr, "    at: %s\n", w.Path)
			}
		}
		if len(errors) > 0 {
			fmt.Fprintf(os.Stderr, "Validation failed: %d error(s)\n\n", len(errors))
			for i, e := range errors {
				fmt.Fprintf(os.Stderr, "  %d. [%s] %s\n", i+1, e.Phase, e.Message)
				if e.Path != "" {
					fmt.Fprintf(os.Stderr, "     at: %s\n", e.Path)
				}
			}
			return fmt.Errorf("validation failed with %d error(s)", len(errors))
		}
	}
	label := res.Name
	if label == "" {
		label = filePath
	}
	fmt.Printf("✓ %s is a valid %s result\n", label, res.Kind)
	return nil
}

// --- schema ---

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Schema operations",
}

var schemaOut string

var schemaExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export JSON Schema to a file or stdout",
	RunE:  runSchemaExport,
}

func runSchemaExport(cmd *cobra.Command, args []string) error {
	data, err := result.GenerateJSONSchema()
	if err != nil {
		return fmt.Errorf("generate schema: %w", err)
	}
	if schemaOut != "" {
		if err := os.WriteFile(schemaOut, data, 0644); err != nil {
			return fmt.Errorf("write schema: %w", err)
		}
		return nil
	}
	fmt.Println(string(data))
	return nil
}

// --- version ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("simres %s (build: %s)\n", version, commit)
	},
}

func init() {
	schemaExportCmd.Flags().StringVarP(&schemaOut, "out", "o", "", "Write the schema to this file instead of stdout")
	schemaCmd.AddCommand(schemaExportCmd)

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(versionCmd)
}
