package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/cachectl/cachectl/config"
	"github.com/cachectl/cachectl/provider/azure"
	"github.com/cachectl/cachectl/resource"
	"github.com/cachectl/cachectl/resource/reconciler"
	"github.com/cachectl/cachectl/resource/report"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var applyCommand = &cobra.Command{
	Use:   "apply [dir]",
	Short: "Converge caches to their declared state",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		reconcileAll(cmd, args, nil)
	},
}

func init() {
	applyCommand.Flags().Bool("dry-run", false, "Report what would change without changing anything")
	applyCommand.Flags().Bool("access-keys", false, "Include access keys in the output")

	cmd.AddCommand(applyCommand)
}

// reconcileAll loads the configuration under the given directory and
// reconciles every declared cache, one at a time, printing a result record
// per cache to stdout. If force is set, it overrides the declared existence
// of every cache.
func reconcileAll(cmd *cobra.Command, args []string, force *resource.Existence) {
	if len(args) == 0 {
		args = []string{"."}
	}

	loader := &config.Loader{}

	rootDir, err := loader.Root(args[0])
	if err != nil {
		fatal(err)
	}
	if rootDir == "" {
		// No project marker; treat the directory itself as the root.
		rootDir = args[0]
	}

	cfg, diags := loader.Load(rootDir)
	if diags.HasErrors() {
		loader.WriteDiagnostics(os.Stderr, diags)
		os.Exit(1)
	}
	if len(cfg.Caches) == 0 {
		fmt.Fprintln(os.Stderr, "No caches declared")
		return
	}

	desired := make([]reconciler.Desired, 0, len(cfg.Caches))
	for _, c := range cfg.Caches {
		existence, err := c.Existence()
		if err != nil {
			fatal(errors.Wrapf(err, "cache %q", c.Name))
		}
		if force != nil {
			existence = *force
		}
		spec := c.Spec()
		if existence == resource.Present {
			if err := spec.Validate(); err != nil {
				fatal(errors.Wrapf(err, "cache %q", c.Name))
			}
		}
		desired = append(desired, reconciler.Desired{
			Ref:       reconciler.Ref{ResourceGroup: spec.ResourceGroup, Name: spec.Name},
			Existence: existence,
			Spec:      spec,
		})
	}

	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		log.Fatalf("Get dry-run: %v", err)
	}
	withKeys, err := cmd.Flags().GetBool("access-keys")
	if err != nil {
		log.Fatalf("Get access-keys: %v", err)
	}
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		log.Fatalf("Get verbose: %v", err)
	}

	logCfg := zap.NewDevelopmentConfig()
	logCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	if verbose {
		logCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := logCfg.Build()
	if err != nil {
		log.Fatalf("Build logger: %v", err)
	}

	sub, err := cmd.Flags().GetString("subscription")
	if err != nil {
		log.Fatalf("Get subscription: %v", err)
	}
	if sub == "" {
		sub = os.Getenv("AZURE_SUBSCRIPTION_ID")
	}
	if sub == "" {
		fatal(errors.New("subscription id not set; use --subscription or $AZURE_SUBSCRIPTION_ID"))
	}

	var opts []azure.Option
	if withKeys {
		opts = append(opts, azure.WithAccessKeys())
	}
	cli, err := azure.NewFromEnvironment(sub, opts...)
	if err != nil {
		fatal(err)
	}

	rec := &reconciler.Reconciler{
		Client: cli,
		DryRun: dryRun,
		Logger: logger,
	}

	ctx := signalContext(context.Background())

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	for _, d := range desired {
		res, err := rec.Reconcile(ctx, d)
		if err != nil {
			fatal(err)
		}
		if err := enc.Encode(report.Format(res)); err != nil {
			fatal(err)
		}
	}
}
