package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cookiemonster-dev/cookiemonster/internal/clean"
	"github.com/cookiemonster-dev/cookiemonster/internal/config"
	"github.com/cookiemonster-dev/cookiemonster/internal/core"
	"github.com/cookiemonster-dev/cookiemonster/internal/engine"
	"github.com/cookiemonster-dev/cookiemonster/internal/policy"
	"github.com/cookiemonster-dev/cookiemonster/internal/report"
	"github.com/cookiemonster-dev/cookiemonster/internal/snapshot"
	"github.com/cookiemonster-dev/cookiemonster/internal/ui"
	"github.com/cookiemonster-dev/cookiemonster/internal/winreg"
)

var (
	dryRun     bool
	withBackup bool
	jsonOut    bool
	noTUI      bool
	categories categoryFlag
	cleanOpts  config.Options
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Free up disk space",
	Long: `Remove temporary files, browser caches, recycle bin contents and
most-recently-used registry lists.

Categories run in a fixed order: temp, browsers, recycle bin, registry.
The recycle bin and the registry need an elevated prompt and are skipped
otherwise. With --backup every category except the recycle bin is copied
aside first, and is left alone if that copy fails.`,
	Example: `  cookiemonster clean --dry-run
  cookiemonster clean --category temp,browser --backup
  cookiemonster clean --exclude Steam --exclude-ext .log --json`,
	Args: cobra.NoArgs,
	RunE: runClean,
}

func init() {
	f := cleanCmd.Flags()
	f.BoolVar(&dryRun, "dry-run", false, "Preview the cleanup plan without deleting")
	f.BoolVar(&withBackup, "backup", false, "Back up each category before cleaning it")
	f.Var(&categories, "category", "Categories to clean: temp, chrome, edge, brave, firefox, recyclebin, registry, browser, all (repeatable)")
	f.StringSliceVar(&cleanOpts.Exclude, "exclude", nil, "Skip paths containing this fragment (repeatable)")
	f.StringSliceVar(&cleanOpts.Include, "include", nil, "Only clean paths containing one of these fragments (repeatable)")
	f.StringSliceVar(&cleanOpts.ExcludeExtensions, "exclude-ext", nil, "Never clean files with these extensions (default .exe,.dll,.sys,.msi)")
	f.IntVar(&cleanOpts.MaxDepth, "max-depth", 0, "Maximum depth below each root (0 = unlimited)")
	f.IntVar(&cleanOpts.Workers, "workers", 0, "Roots scanned in parallel per category (0 = auto)")
	f.StringVar(&cleanOpts.BackupRoot, "backup-dir", "", "Where backups are stored")
	f.BoolVar(&cleanOpts.AllDrives, "all-drives", false, "Also clean Temp folders on other fixed drives")
	f.BoolVar(&jsonOut, "json", false, "Print the report as JSON")
	f.BoolVar(&noTUI, "no-tui", false, "Disable the progress view")

	_ = cleanCmd.RegisterFlagCompletionFunc("category", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return completeCategories(toComplete), cobra.ShellCompDirectiveNoFileComp
	})
}

// useTUI reports whether the clean command shows the progress view.
func useTUI() bool {
	return !jsonOut && !noTUI && ui.IsTerminal()
}

func runClean(cmd *cobra.Command, args []string) error {
	opts := cleanOpts
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return err
	}

	cleaners, reg := buildCleaners(opts, logger)
	store := snapshot.New(opts.BackupRoot, reg, logger)
	newOrchestrator := func(progress func(engine.Event)) *engine.Orchestrator {
		return engine.New(cleaners, engine.Options{
			Logger:     logger,
			IsElevated: core.IsElevated,
			Snapshots:  store,
			FreeSpace:  engine.DiskFree(config.SystemDrive()),
			Host:       core.HostDescription(),
			Progress:   progress,
		})
	}

	ctx := cmd.Context()
	names := categories.Names()
	var rep engine.Report
	if useTUI() {
		var err error
		rep, err = ui.RunWithProgress(ctx, dryRun, func(ctx context.Context, progress func(engine.Event)) engine.Report {
			return newOrchestrator(progress).RunCategories(ctx, names, dryRun, withBackup)
		})
		if err != nil {
			logger.Warn().Err(err).Msg("progress view failed")
		}
	} else {
		rep = newOrchestrator(nil).RunCategories(ctx, names, dryRun, withBackup)
	}

	out := cmd.OutOrStdout()
	switch {
	case jsonOut:
		if err := report.WriteJSON(out, rep); err != nil {
			return err
		}
	case ui.IsTerminal():
		fmt.Fprint(out, ui.RenderReport(rep))
	default:
		fmt.Fprint(out, report.Render(rep))
	}

	if !rep.Success {
		return exitError{code: 2}
	}
	return nil
}

// buildCleaners wires every category of this host. The registry store is
// returned for restoring registry backups; it is nil without a registry.
func buildCleaners(opts config.Options, log zerolog.Logger) ([]clean.Cleaner, winreg.Store) {
	fo := fileOptions(opts, log)

	roots := config.GetTempRoots()
	if opts.AllDrives {
		roots = append(roots, clean.SecondaryTempRoots(config.SystemDrive())...)
	}
	cleaners := []clean.Cleaner{clean.NewTempFiles(config.Dedupe(roots), fo)}
	for _, b := range config.GetBrowsers() {
		cleaners = append(cleaners, clean.NewBrowserCache(b, clean.RunningProcesses, fo))
	}
	cleaners = append(cleaners, clean.NewRecycleBin(clean.SystemBin(), log))

	var reg winreg.Store
	if s, err := winreg.OpenSystem(); err == nil {
		reg = s
	} else {
		log.Debug().Err(err).Msg("registry not available")
	}
	cleaners = append(cleaners, clean.NewRegistry(reg, config.GetRegistryKeys(), log))
	return cleaners, reg
}

// fileOptions configures the filesystem cleaners. The backups root is never
// walked, so a --backup-dir below a cleaned root survives the run.
func fileOptions(opts config.Options, log zerolog.Logger) clean.FileOptions {
	return clean.FileOptions{
		Policy:    policy.New(opts.Exclude, opts.Include, opts.ExcludeExtensions),
		MaxDepth:  opts.MaxDepth,
		Workers:   opts.Workers,
		Protected: config.GetNeverDeletePaths(),
		Skip:      []string{opts.BackupRoot},
		Logger:    log,
	}
}
