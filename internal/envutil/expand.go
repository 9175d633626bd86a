package envutil

import (
	"os"
	"regexp"
)

// windowsVarPattern matches %NAME% references.
var windowsVarPattern = regexp.MustCompile(`%([A-Za-z_][A-Za-z0-9_()]*)%`)

// ExpandWindowsEnv resolves environment variables in a path, supporting both
// Windows %VAR% and Unix $VAR / ${VAR} syntax. Unknown %VAR% references are
// left untouched so the caller can see what failed to resolve.
func ExpandWindowsEnv(path string) string {
	return ExpandWith(path, os.LookupEnv)
}

// ExpandWith is ExpandWindowsEnv with an injectable lookup.
func ExpandWith(path string, lookup func(string) (string, bool)) string {
	path = windowsVarPattern.ReplaceAllStringFunc(path, func(ref string) string {
		name := ref[1 : len(ref)-1]
		if v, ok := lookup(name); ok {
			return v
		}
		return ref
	})
	return os.Expand(path, func(name string) string {
		v, _ := lookup(name)
		return v
	})
}
