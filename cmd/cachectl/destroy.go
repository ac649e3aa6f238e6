package main

import (
	"github.com/cachectl/cachectl/resource"
	"github.com/spf13/cobra"
)

var destroyCommand = &cobra.Command{
	Use:   "destroy [dir]",
	Short: "Delete every declared cache",
	Long: `Delete every cache declared in the configuration, regardless of its
declared state.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		absent := resource.Absent
		reconcileAll(cmd, args, &absent)
	},
}

func init() {
	destroyCommand.Flags().Bool("dry-run", false, "Report what would change without changing anything")
	destroyCommand.Flags().Bool("access-keys", false, "Include access keys in the output")

	cmd.AddCommand(destroyCommand)
}
