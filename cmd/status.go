package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/cookiemonster-dev/cookiemonster/internal/core"
	"github.com/cookiemonster-dev/cookiemonster/internal/status"
)

var (
	statusWatch   bool
	statusRefresh int
	statusJSON    bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show free space, elevation and backups",
	Long:  "Show free space per volume, whether privileged categories can run, and how much the kept backups occupy.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := status.Collector{
			Host:       core.HostDescription,
			IsElevated: core.IsElevated,
			Backups: func() (int, int64) {
				var total int64
				records := openStore().List()
				for _, r := range records {
					total += r.TotalBytes
				}
				return len(records), total
			},
			BackupRoot: backupRoot(),
		}

		if statusWatch {
			p := tea.NewProgram(status.NewStatusModel(c, time.Duration(statusRefresh)*time.Second), tea.WithAltScreen())
			_, err := p.Run()
			return err
		}

		snap, err := c.Collect(cmd.Context())
		if err != nil {
			return err
		}
		if statusJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		}
		fmt.Fprint(cmd.OutOrStdout(), status.Render(snap, 80))
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusWatch, "watch", false, "Keep refreshing until q is pressed")
	statusCmd.Flags().IntVar(&statusRefresh, "refresh", 2, "Refresh interval in seconds for --watch")
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output as JSON")
	statusCmd.Flags().StringVar(&backupDir, "backup-dir", "", "Where backups are stored")
}
