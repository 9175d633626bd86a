package clean

// ProcessLister returns the executable names of running processes.
type ProcessLister func() ([]string, error)
