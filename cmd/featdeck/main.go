// Command featdeck prints a scheduling report for a project: dependency
// resolution over a feature snapshot, the reconciled worktree
// inventory, and which features are ready to execute where.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"featdeck/internal/config"
	"featdeck/internal/feature"
	"featdeck/internal/ghcli"
	"featdeck/internal/gitcmd"
	"featdeck/internal/jsonutil"
	"featdeck/internal/logging"
	"featdeck/internal/prcache"
	"featdeck/internal/scheduler"
	"featdeck/internal/telemetry"
	"featdeck/internal/worktree"
)

type cliFlags struct {
	project    string
	features   string
	configPath string
	details    bool
	verbose    bool
}

func parseFlags() cliFlags {
	var f cliFlags

	flag.StringVar(&f.project, "project", "", "path to the project repository (required)")
	flag.StringVar(&f.features, "features", "", "path to a features snapshot JSON file (required)")
	flag.StringVar(&f.configPath, "config", "", "config file (default ~/.featdeck/config.yaml)")
	flag.BoolVar(&f.details, "details", false, "include dirty-file counts and live PR status")
	flag.BoolVar(&f.verbose, "verbose", false, "enable debug logging")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: featdeck [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Featdeck resolves a feature dependency graph against the project's\n")
		fmt.Fprintf(os.Stderr, "worktree inventory and reports what is ready to run, and where.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if f.project == "" || f.features == "" {
		fmt.Fprintln(os.Stderr, "error: --project and --features are required")
		flag.Usage()
		os.Exit(1)
	}
	return f
}

func main() {
	if err := run(parseFlags()); err != nil {
		fmt.Fprintf(os.Stderr, "featdeck: %v\n", err)
		os.Exit(1)
	}
}

func run(f cliFlags) error {
	configPath := f.configPath
	if configPath == "" {
		var err error
		if configPath, err = config.DefaultPath(); err != nil {
			return err
		}
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	level := cfg.Log.Level
	if f.verbose {
		level = "debug"
	}
	logger, closeLog, err := logging.Setup(cfg.Log.File, level)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	ctx := context.Background()
	shutdownTracing, err := telemetry.Setup(ctx)
	if err != nil {
		return fmt.Errorf("telemetry setup: %w", err)
	}
	defer func() { _ = shutdownTracing(ctx) }()

	data, err := os.ReadFile(f.features)
	if err != nil {
		return fmt.Errorf("read features snapshot: %w", err)
	}
	features, err := jsonutil.UnmarshalArrayAllowEmpty[feature.Feature](data, "parsing features snapshot")
	if err != nil {
		return err
	}

	gh := ghcli.NewClient(logger)
	prs := prcache.New(
		func(ctx context.Context, projectPath string) ([]ghcli.PR, error) {
			return gh.ListOpenPRs(ctx, projectPath)
		},
		gh.Available,
		prcache.WithTTL(cfg.PRCacheTTL),
		prcache.WithLogger(logger),
	)

	inv := worktree.NewInventory(gitcmd.Git{}, prs, logger)
	if cfg.WorktreesDir != "" {
		base := cfg.WorktreesDir
		inv.ContainerDir = func(projectPath string) string {
			return containerFor(base, projectPath)
		}
	}

	sched := scheduler.New(inv, logger)
	plan := sched.Plan(ctx, f.project, features, nil, f.details)

	fmt.Print(renderPlan(plan, f.details))
	return nil
}
