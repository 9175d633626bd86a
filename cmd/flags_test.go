package cmd

import (
	"strings"
	"testing"
)

func TestCategoryFlag(t *testing.T) {
	tests := []struct {
		name    string
		values  []string
		want    string
		wantErr bool
	}{
		{"default", nil, "temp,chrome,edge,brave,firefox,recyclebin,registry", false},
		{"single", []string{"temp"}, "temp", false},
		{"comma list", []string{"temp, registry"}, "temp,registry", false},
		{"repeated", []string{"temp", "chrome"}, "temp,chrome", false},
		{"browser group", []string{"browser"}, "chrome,edge,brave,firefox", false},
		{"dedupe", []string{"chrome,browser"}, "chrome,edge,brave,firefox", false},
		{"case", []string{"RecycleBin"}, "recyclebin", false},
		{"unknown", []string{"cookies"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f categoryFlag
			var err error
			for _, v := range tt.values {
				if err = f.Set(v); err != nil {
					break
				}
			}
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got := strings.Join(f.Names(), ","); got != tt.want {
				t.Errorf("Names() = %s, want %s", got, tt.want)
			}
		})
	}
}
