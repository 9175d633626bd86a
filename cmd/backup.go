package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cookiemonster-dev/cookiemonster/internal/config"
	"github.com/cookiemonster-dev/cookiemonster/internal/snapshot"
	"github.com/cookiemonster-dev/cookiemonster/internal/ui"
	"github.com/cookiemonster-dev/cookiemonster/internal/winreg"
)

var backupDir string

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "List, restore and delete backups",
	Long:  "Manage the backups taken by 'clean --backup'. A location may be given as a full path or as its directory name.",
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups, oldest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := openStore()
		records := store.List()
		if jsonOut {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		}
		fmt.Fprint(cmd.OutOrStdout(), ui.RenderBackups(records))
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:               "restore <location>",
	Short:             "Copy a backup back to where it came from",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeLocations,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := openStore()
		location := resolveLocation(store, args[0])
		if err := store.Restore(cmd.Context(), location); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Restored %s\n", ui.IconCheck, location)
		return nil
	},
}

var backupDeleteCmd = &cobra.Command{
	Use:               "delete <location>...",
	Short:             "Delete backups and their stored data",
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: completeLocations,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := openStore()
		var errs []error
		for _, arg := range args {
			location := resolveLocation(store, arg)
			if err := store.Delete(location); err != nil {
				errs = append(errs, err)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Deleted %s\n", ui.IconCheck, location)
		}
		return errors.Join(errs...)
	},
}

func init() {
	backupCmd.PersistentFlags().StringVar(&backupDir, "backup-dir", "", "Where backups are stored")
	backupListCmd.Flags().BoolVar(&jsonOut, "json", false, "Print the list as JSON")

	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupRestoreCmd)
	backupCmd.AddCommand(backupDeleteCmd)
}

// backupRoot is --backup-dir or the default root.
func backupRoot() string {
	if backupDir != "" {
		return backupDir
	}
	return config.DefaultBackupRoot()
}

// openStore returns the backup store with its history loaded from disk.
func openStore() *snapshot.Store {
	reg, err := winreg.OpenSystem()
	if err != nil {
		logger.Debug().Err(err).Msg("registry not available")
		reg = nil
	}
	store := snapshot.New(backupRoot(), reg, logger)
	if err := store.Reload(); err != nil {
		logger.Warn().Err(err).Msg("some backups could not be read")
	}
	return store
}

// resolveLocation accepts a bare directory name for a backup under the root.
func resolveLocation(store *snapshot.Store, arg string) string {
	if _, ok := store.Get(arg); ok || filepath.IsAbs(arg) {
		return arg
	}
	return filepath.Join(store.Root(), arg)
}

func completeLocations(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	store := openStore()
	var names []string
	for _, r := range store.List() {
		names = append(names, filepath.Base(r.Location))
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
