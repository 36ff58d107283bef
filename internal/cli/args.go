package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// OptionalDataDir accepts zero or one data_dir argument.
func OptionalDataDir(cmd *cobra.Command, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf(`accepts at most 1 arg(s), received %d

Usage: %s

Example:
  %s ./csv_data -d lms`, len(args), cmd.UseLine(), cmd.CommandPath())
	}
	return nil
}
