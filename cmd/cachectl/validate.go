package main

import (
	"fmt"
	"os"

	"github.com/cachectl/cachectl/config"
	"github.com/cachectl/cachectl/resource"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var validateCommand = &cobra.Command{
	Use:   "validate [dir]",
	Short: "Check the configuration without contacting the provider",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			args = []string{"."}
		}

		loader := &config.Loader{}

		rootDir, err := loader.Root(args[0])
		if err != nil {
			fatal(err)
		}
		if rootDir == "" {
			rootDir = args[0]
		}

		cfg, diags := loader.Load(rootDir)
		if diags.HasErrors() {
			loader.WriteDiagnostics(os.Stderr, diags)
			os.Exit(1)
		}

		ok := true
		for _, c := range cfg.Caches {
			existence, err := c.Existence()
			if err != nil {
				fmt.Fprintln(os.Stderr, errors.Wrapf(err, "cache %q", c.Name))
				ok = false
				continue
			}
			if existence != resource.Present {
				continue
			}
			if err := c.Spec().Validate(); err != nil {
				fmt.Fprintln(os.Stderr, errors.Wrapf(err, "cache %q", c.Name))
				ok = false
			}
		}
		if !ok {
			os.Exit(1)
		}
		fmt.Printf("Configuration valid: %d cache(s)\n", len(cfg.Caches))
	},
}

func init() {
	cmd.AddCommand(validateCommand)
}
