//go:build windows

package clean

import "github.com/yusufpapurcu/wmi"

type win32Process struct {
	Name string
}

// RunningProcesses lists process image names through WMI (Win32_Process).
func RunningProcesses() ([]string, error) {
	var procs []win32Process
	if err := wmi.Query("SELECT Name FROM Win32_Process", &procs); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(procs))
	for _, p := range procs {
		names = append(names, p.Name)
	}
	return names, nil
}
