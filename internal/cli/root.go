package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lmsseed",
	Short: "Bulk loader for the LMS database",
	Long: `lmsseed loads users, courses, enrollments, course content and comments
from a directory of CSV and JSON files into the LMS PostgreSQL database.

Each source is imported by its own pass, in dependency order. Rows that
reference missing records, repeat existing ones or carry invalid values are
skipped with a reason; every other row of a pass is created in one batch.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration or parameters
  11 - Database connection failed
  15 - One or more import passes failed`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo(os.Stdout, os.Stderr)
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	// -h is taken by --host
	rootCmd.PersistentFlags().Bool("help", false, "Help for lmsseed")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
