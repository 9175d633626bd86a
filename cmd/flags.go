package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"
)

// browserKinds are the browser category names, in display order.
var browserKinds = []string{"chrome", "edge", "brave", "firefox"}

// allCategories is every category name the clean command accepts, in run
// order.
var allCategories = append(append([]string{"temp"}, browserKinds...), "recyclebin", "registry")

// categoryFlag is a repeatable, comma-separated --category value. The group
// names "browser" and "all" expand to their members.
type categoryFlag struct {
	names []string
	set   bool
}

var _ pflag.Value = (*categoryFlag)(nil)

func (f *categoryFlag) String() string { return strings.Join(f.names, ",") }

func (f *categoryFlag) Type() string { return "categories" }

func (f *categoryFlag) Set(value string) error {
	if !f.set {
		f.names = nil
		f.set = true
	}
	for _, v := range strings.Split(value, ",") {
		v = strings.ToLower(strings.TrimSpace(v))
		var add []string
		switch {
		case v == "":
			continue
		case v == "all":
			add = allCategories
		case v == "browser" || v == "browsers":
			add = browserKinds
		case slices.Contains(allCategories, v):
			add = []string{v}
		default:
			return fmt.Errorf("unknown category %q (want one of: %s, browser, all)", v, strings.Join(allCategories, ", "))
		}
		for _, a := range add {
			if !slices.Contains(f.names, a) {
				f.names = append(f.names, a)
			}
		}
	}
	return nil
}

// Names returns the selected categories, defaulting to all of them.
func (f *categoryFlag) Names() []string {
	if len(f.names) == 0 {
		return allCategories
	}
	return f.names
}

// completeCategories is the shell completion for --category.
func completeCategories(string) []string {
	return append(slices.Clone(allCategories), "browser", "all")
}
