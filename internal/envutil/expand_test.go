package envutil

import "testing"

func TestExpandWith(t *testing.T) {
	env := map[string]string{
		"LOCALAPPDATA": `C:\Users\me\AppData\Local`,
		"HOME":         "/home/me",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	tests := []struct {
		in   string
		want string
	}{
		{`%LOCALAPPDATA%\Temp`, `C:\Users\me\AppData\Local\Temp`},
		{"$HOME/.cache", "/home/me/.cache"},
		{"${HOME}/.cache", "/home/me/.cache"},
		{`%MISSING%\x`, `%MISSING%\x`},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := ExpandWith(tt.in, lookup); got != tt.want {
			t.Errorf("ExpandWith(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
