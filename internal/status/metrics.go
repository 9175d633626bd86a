// Package status collects and shows the host facts relevant to a cleanup:
// free space per volume, elevation, and the backups kept so far.
package status

import (
	"context"
	"fmt"
	"sort"

	"github.com/shirou/gopsutil/v4/disk"
)

// Partition is the usage of one mounted volume.
type Partition struct {
	Path        string  `json:"path"`
	FSType      string  `json:"fstype"`
	Total       uint64  `json:"total"`
	Used        uint64  `json:"used"`
	Free        uint64  `json:"free"`
	UsedPercent float64 `json:"used_percent"`
}

// Snapshot is one reading of the host.
type Snapshot struct {
	Host        string      `json:"host"`
	Elevated    bool        `json:"elevated"`
	Partitions  []Partition `json:"partitions"`
	Backups     int         `json:"backups"`
	BackupBytes int64       `json:"backup_bytes"`
	BackupRoot  string      `json:"backup_root"`
}

// Collector gathers snapshots. Hooks left nil are skipped.
type Collector struct {
	Host       func() string
	IsElevated func() bool
	Backups    func() (count int, bytes int64)
	BackupRoot string
}

// Collect reads the current state. Partitions whose usage cannot be read
// are left out.
func (c Collector) Collect(ctx context.Context) (*Snapshot, error) {
	parts, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list partitions: %w", err)
	}

	s := &Snapshot{BackupRoot: c.BackupRoot}
	seen := make(map[string]bool)
	for _, p := range parts {
		if seen[p.Mountpoint] {
			continue
		}
		seen[p.Mountpoint] = true
		usage, err := disk.UsageWithContext(ctx, p.Mountpoint)
		if err != nil || usage.Total == 0 {
			continue
		}
		s.Partitions = append(s.Partitions, Partition{
			Path:        p.Mountpoint,
			FSType:      p.Fstype,
			Total:       usage.Total,
			Used:        usage.Used,
			Free:        usage.Free,
			UsedPercent: usage.UsedPercent,
		})
	}
	sort.Slice(s.Partitions, func(i, j int) bool { return s.Partitions[i].Path < s.Partitions[j].Path })

	if c.Host != nil {
		s.Host = c.Host()
	}
	if c.IsElevated != nil {
		s.Elevated = c.IsElevated()
	}
	if c.Backups != nil {
		s.Backups, s.BackupBytes = c.Backups()
	}
	return s, nil
}
