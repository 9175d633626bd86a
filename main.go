package main

import (
	"os"

	"github.com/cookiemonster-dev/cookiemonster/cmd"
)

// Set by the linker.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, commit, date)
	os.Exit(cmd.ExitCode(cmd.Execute()))
}
