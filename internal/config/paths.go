package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cookiemonster-dev/cookiemonster/internal/envutil"
)

// Browser describes where one browser keeps its disk caches. Profiles are
// found by globbing ProfilePatterns under ProfilesRoot; every CacheDirs entry
// below a matching profile is a cleaning root.
type Browser struct {
	// Kind is the short identifier used on the command line (e.g. "chrome").
	Kind string

	// Name is the display name.
	Name string

	// ProfilesRoot is the directory holding the profile directories.
	ProfilesRoot string

	// ProfilePatterns are glob patterns relative to ProfilesRoot.
	ProfilePatterns []string

	// CacheDirs are cache directories relative to a profile.
	CacheDirs []string

	// ProcessNames are executable names used to detect a running browser.
	ProcessNames []string
}

// expand resolves environment variables in a path, supporting both
// Windows %VAR% and Unix $VAR / ${VAR} syntax.
func expand(path string) string {
	return envutil.ExpandWindowsEnv(path)
}

// localAppData returns the local app data directory.
func localAppData() string {
	return os.Getenv("LOCALAPPDATA")
}

// winDir returns the Windows directory (e.g., C:\Windows).
// Falls back to C:\Windows only if %WINDIR% is not set.
func winDir() string {
	if w := os.Getenv("WINDIR"); w != "" {
		return w
	}
	return `C:\Windows`
}

// programData returns the ProgramData directory (e.g., C:\ProgramData).
func programData() string {
	if p := os.Getenv("PROGRAMDATA"); p != "" {
		return p
	}
	return `C:\ProgramData`
}

// systemDrive returns the system drive letter with backslash (e.g., C:\).
// Falls back to C:\ only if %SYSTEMDRIVE% is not set.
func systemDrive() string {
	if d := os.Getenv("SYSTEMDRIVE"); d != "" {
		return d + `\`
	}
	return `C:\`
}

// programFiles returns the Program Files directory.
func programFiles() string {
	if p := os.Getenv("PROGRAMFILES"); p != "" {
		return p
	}
	return `C:\Program Files`
}

// userCacheDir returns the per-user cache directory on non-Windows hosts.
func userCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache")
}

// SystemDrive returns the drive or mount point holding the OS, used for
// free-space reporting.
func SystemDrive() string {
	if runtime.GOOS == "windows" {
		return systemDrive()
	}
	return "/"
}

// GetTempRoots returns the user temporary directories, deduplicated since
// %TEMP% usually points at %LOCALAPPDATA%\Temp.
func GetTempRoots() []string {
	dirs := []string{os.TempDir()}
	if runtime.GOOS == "windows" {
		dirs = append(dirs, expand("%TEMP%"), filepath.Join(localAppData(), "Temp"))
	}
	return Dedupe(dirs)
}

// Dedupe cleans the paths and drops empty entries and repeats. Comparison is
// case-insensitive on Windows.
func Dedupe(paths []string) []string {
	seen := make(map[string]bool)
	var unique []string
	for _, p := range paths {
		if p == "" || strings.Contains(p, "%") {
			continue
		}
		cleaned := filepath.Clean(p)
		key := cleaned
		if runtime.GOOS == "windows" {
			key = strings.ToLower(cleaned)
		}
		if !seen[key] {
			seen[key] = true
			unique = append(unique, cleaned)
		}
	}
	return unique
}

// chromiumCacheDirs are the per-profile cache folders of Chromium browsers.
var chromiumCacheDirs = []string{
	"Cache",
	"Code Cache",
	"GPUCache",
	filepath.Join("Service Worker", "CacheStorage"),
}

// chromiumProfiles matches the default profile and numbered extra profiles.
var chromiumProfiles = []string{"Default", "Profile *"}

// GetBrowsers returns the browser cache definitions for this host, in the
// order their categories run.
func GetBrowsers() []Browser {
	if runtime.GOOS == "windows" {
		local := localAppData()
		return []Browser{
			{
				Kind:            "chrome",
				Name:            "Google Chrome",
				ProfilesRoot:    filepath.Join(local, "Google", "Chrome", "User Data"),
				ProfilePatterns: chromiumProfiles,
				CacheDirs:       chromiumCacheDirs,
				ProcessNames:    []string{"chrome.exe"},
			},
			{
				Kind:            "edge",
				Name:            "Microsoft Edge",
				ProfilesRoot:    filepath.Join(local, "Microsoft", "Edge", "User Data"),
				ProfilePatterns: chromiumProfiles,
				CacheDirs:       chromiumCacheDirs,
				ProcessNames:    []string{"msedge.exe"},
			},
			{
				Kind:            "brave",
				Name:            "Brave",
				ProfilesRoot:    filepath.Join(local, "BraveSoftware", "Brave-Browser", "User Data"),
				ProfilePatterns: chromiumProfiles,
				CacheDirs:       chromiumCacheDirs,
				ProcessNames:    []string{"brave.exe"},
			},
			{
				Kind:            "firefox",
				Name:            "Mozilla Firefox",
				ProfilesRoot:    filepath.Join(local, "Mozilla", "Firefox", "Profiles"),
				ProfilePatterns: []string{"*"},
				CacheDirs:       []string{"cache2", "startupCache", "thumbnails"},
				ProcessNames:    []string{"firefox.exe"},
			},
		}
	}

	cache := userCacheDir()
	chrome := filepath.Join(cache, "google-chrome")
	edge := filepath.Join(cache, "microsoft-edge")
	brave := filepath.Join(cache, "BraveSoftware", "Brave-Browser")
	firefox := filepath.Join(cache, "mozilla", "firefox")
	if runtime.GOOS == "darwin" {
		chrome = filepath.Join(cache, "Google", "Chrome")
		edge = filepath.Join(cache, "Microsoft Edge")
		firefox = filepath.Join(cache, "Firefox", "Profiles")
	}
	return []Browser{
		{Kind: "chrome", Name: "Google Chrome", ProfilesRoot: chrome, ProfilePatterns: chromiumProfiles, CacheDirs: []string{"Cache", "Code Cache"}, ProcessNames: []string{"chrome", "Google Chrome"}},
		{Kind: "edge", Name: "Microsoft Edge", ProfilesRoot: edge, ProfilePatterns: chromiumProfiles, CacheDirs: []string{"Cache", "Code Cache"}, ProcessNames: []string{"msedge", "Microsoft Edge"}},
		{Kind: "brave", Name: "Brave", ProfilesRoot: brave, ProfilePatterns: chromiumProfiles, CacheDirs: []string{"Cache", "Code Cache"}, ProcessNames: []string{"brave", "Brave Browser"}},
		{Kind: "firefox", Name: "Mozilla Firefox", ProfilesRoot: firefox, ProfilePatterns: []string{"*"}, CacheDirs: []string{"cache2", "startupCache", "thumbnails"}, ProcessNames: []string{"firefox"}},
	}
}

// GetRegistryKeys returns the curated keys holding most-recently-used lists
// and typed history. Explorer and the applets recreate them on demand.
func GetRegistryKeys() []string {
	const explorer = `HKCU\Software\Microsoft\Windows\CurrentVersion\Explorer`
	return []string{
		explorer + `\RecentDocs`,
		explorer + `\RunMRU`,
		explorer + `\TypedPaths`,
		explorer + `\WordWheelQuery`,
		explorer + `\ComDlg32\OpenSavePidlMRU`,
		explorer + `\ComDlg32\LastVisitedPidlMRU`,
		`HKCU\Software\Microsoft\Internet Explorer\TypedURLs`,
		`HKCU\Software\Microsoft\Windows\CurrentVersion\Applets\Paint\Recent File List`,
		`HKCU\Software\Microsoft\Windows\CurrentVersion\Applets\Wordpad\Recent File List`,
	}
}

// DefaultBackupRoot returns the directory under which backup locations are
// created.
func DefaultBackupRoot() string {
	if runtime.GOOS == "windows" {
		if local := localAppData(); local != "" {
			return filepath.Join(local, "CookieMonster", "backups")
		}
	}
	if data := os.Getenv("XDG_DATA_HOME"); data != "" {
		return filepath.Join(data, "cookiemonster", "backups")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "cookiemonster", "backups")
}

// GetNeverDeletePaths returns paths that must NEVER be deleted under any
// circumstances. This list uses environment variables to support Windows
// installations on any drive letter (not just C:).
func GetNeverDeletePaths() []string {
	home, _ := os.UserHomeDir()
	if runtime.GOOS != "windows" {
		return []string{"/", "/bin", "/boot", "/etc", "/home", "/usr", "/var", "/tmp", home}
	}
	w := winDir()
	sd := systemDrive()
	return []string{
		sd,
		w,
		filepath.Join(w, "System32"),
		filepath.Join(w, "SysWOW64"),
		filepath.Join(w, "WinSxS"),
		filepath.Join(w, "Temp"),
		filepath.Join(sd, "Users"),
		programFiles(),
		programData(),
		home,
		localAppData(),
	}
}
