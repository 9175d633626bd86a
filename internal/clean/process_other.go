//go:build !windows

package clean

import "github.com/shirou/gopsutil/v4/process"

// RunningProcesses lists process names through gopsutil.
func RunningProcesses() ([]string, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(procs))
	for _, p := range procs {
		// Processes can exit between listing and naming.
		if name, err := p.Name(); err == nil {
			names = append(names, name)
		}
	}
	return names, nil
}
