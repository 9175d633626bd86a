package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cookiemonster-dev/cookiemonster/internal/logging"
)

var (
	// Global flags
	debug   bool
	logFile string

	// logger is built in PersistentPreRunE from the global flags.
	logger   = zerolog.Nop()
	closeLog = func() error { return nil }

	// Version info populated from main
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets build-time version information.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "cookiemonster",
	Short: "Remove temporary files, browser caches and usage traces",
	Long: `Cookie Monster - reclaim disk space and clear usage traces.

Cleans temporary files, browser caches, the recycle bin and
most-recently-used registry lists. Every destructive run can be
previewed with --dry-run and undone with --backup.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// The progress view owns the terminal during a run; keep the console
		// for warnings then.
		quiet := cmd.Name() == "clean" && useTUI()
		l, c, err := logging.New(logging.Options{Debug: debug, LogFile: logFile, Quiet: quiet})
		if err != nil {
			return err
		}
		logger, closeLog = l, c
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLog()
	},
}

// Execute runs the root command. Ctrl+C cancels the running command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Show detailed operation logs")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write JSON logs to this file")

	// Register all subcommands
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "cookiemonster %s (%s) built %s\n", appVersion, appCommit, appDate)
	},
}

// exitError carries an exit code without printing anything more.
type exitError struct{ code int }

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// ExitCode maps an Execute error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if e, ok := err.(exitError); ok {
		return e.code
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	return 1
}
