package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/cookiemonster-dev/cookiemonster/internal/clean"
	"github.com/cookiemonster-dev/cookiemonster/internal/engine"
)

func sampleReport() engine.Report {
	return engine.Report{
		Host:     "Windows 10 Pro (build 19045)",
		Duration: 1500 * time.Millisecond,
		Categories: []engine.CategoryResult{
			{
				Category: clean.CategoryTemp,
				Status:   engine.StatusPartial,
				Stats: clean.Statistics{
					Removed: 1234, BytesReclaimed: 1500, DirsRemoved: 2, Errors: 1,
					Messages: []string{`remove C:\Temp\locked.tmp: access denied`},
				},
				Backup: `C:\backups\temp_1`,
			},
			{
				Category: clean.CategoryRegistry,
				Status:   engine.StatusDenied,
				Err:      engine.ErrPrivilegeRequired,
			},
		},
		FreeBefore: 1073741824,
		FreeAfter:  1073741824 + 1048576,
	}
}

func TestRender(t *testing.T) {
	out := Render(sampleReport())

	for _, want := range []string{
		"Host: Windows 10 Pro (build 19045)",
		"removed 1,234 items, 1.46 KB, 2 folders, 1 errors",
		`- remove C:\Temp\locked.tmp: access denied`,
		`backup: C:\backups\temp_1`,
		"! administrator privileges required",
		"denied",
		"Free space: 1.00 GB -> 1.00 GB",
		"Duration: 1.5s",
		"failed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
	if Render(sampleReport()) != out {
		t.Error("rendering is not deterministic")
	}
}

func TestRenderDryRun(t *testing.T) {
	r := engine.Report{
		DryRun:  true,
		Success: true,
		Categories: []engine.CategoryResult{{
			Category: clean.CategoryTemp,
			Stats:    clean.Statistics{WouldRemove: 5, WouldReclaim: 1048576},
		}},
	}
	out := Render(r)
	if !strings.Contains(out, "dry run") || !strings.Contains(out, "would remove 5 items, 1.00 MB, 0 errors") {
		t.Errorf("dry-run output:\n%s", out)
	}
}

func TestMessagesTruncated(t *testing.T) {
	s := clean.Statistics{Errors: 25}
	for i := range 25 {
		s.Messages = append(s.Messages, fmt.Sprintf("m%d", i))
	}
	got := Messages(s)
	if len(got) != MaxShownMessages+1 || got[len(got)-1] != "... and 15 more" {
		t.Errorf("Messages = %v", got)
	}

	few := clean.Statistics{Errors: 1, Messages: []string{"only"}}
	if got := Messages(few); len(got) != 1 {
		t.Errorf("Messages = %v", got)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleReport()); err != nil {
		t.Fatal(err)
	}
	var got struct {
		Categories []struct {
			Name   string `json:"name"`
			Status string `json:"status"`
			Error  string `json:"error"`
			Stats  struct {
				Removed int `json:"removed"`
			} `json:"stats"`
		} `json:"categories"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Categories) != 2 || got.Categories[0].Stats.Removed != 1234 || got.Categories[1].Error == "" {
		t.Errorf("json = %s", buf.String())
	}
}
