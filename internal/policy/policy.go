// Package policy decides which candidate paths a cleaner may act on.
package policy

import (
	"path/filepath"
	"strings"
)

// Policy is an inclusion/exclusion filter over native path strings.
//
// A path is eligible when it contains none of the exclusion fragments, does
// not carry an excluded extension, and either no inclusion fragments are
// configured or at least one of them occurs in the path. Exclusion always
// wins. The zero value accepts everything.
//
// A Policy is configured before a run and must not be mutated while cleaners
// are reading it.
type Policy struct {
	exclude    []string
	include    []string
	extensions map[string]struct{}
}

// New builds a policy. Empty fragments are ignored so that a stray separator
// in a comma-separated flag cannot exclude every path.
func New(exclude, include, excludeExtensions []string) *Policy {
	p := &Policy{
		exclude: compact(exclude),
		include: compact(include),
	}
	for _, ext := range excludeExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if p.extensions == nil {
			p.extensions = make(map[string]struct{})
		}
		p.extensions[ext] = struct{}{}
	}
	return p
}

// IsEligible reports whether path may be cleaned. Fragment matching is a
// case-sensitive substring test on the path exactly as given.
func (p *Policy) IsEligible(path string) bool {
	if p == nil {
		return true
	}
	if p.IsExcluded(path) {
		return false
	}
	if len(p.include) == 0 {
		return true
	}
	for _, frag := range p.include {
		if strings.Contains(path, frag) {
			return true
		}
	}
	return false
}

// IsExcluded reports whether path is rejected by an exclusion rule alone.
// Walkers use it to prune whole directories: every descendant of an excluded
// directory contains the same fragment. Inclusion cannot be used that way.
func (p *Policy) IsExcluded(path string) bool {
	if p == nil {
		return false
	}
	for _, frag := range p.exclude {
		if strings.Contains(path, frag) {
			return true
		}
	}
	if len(p.extensions) > 0 {
		if _, ok := p.extensions[strings.ToLower(filepath.Ext(path))]; ok {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the policy has no rules at all.
func (p *Policy) IsEmpty() bool {
	return p == nil || (len(p.exclude) == 0 && len(p.include) == 0 && len(p.extensions) == 0)
}

func compact(in []string) []string {
	var out []string
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
