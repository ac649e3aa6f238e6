package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cmd = &cobra.Command{
	Use:           "cachectl",
	Short:         "Declaratively manage Redis caches",
	SilenceErrors: true,
	SilenceUsage:  true,
}

func main() {
	err := cmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func init() {
	cmd.PersistentFlags().String("subscription", "", "Subscription id. Defaults to $AZURE_SUBSCRIPTION_ID.")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Log reconciliation progress")
}
