package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cookiemonster-dev/cookiemonster/internal/winreg"
)

// FileSource enumerates the files a filesystem category would remove.
type FileSource interface {
	EachEligible(ctx context.Context, fn func(path string, size int64) error) error
}

// RegistrySource names the keys a registry category would remove.
type RegistrySource interface {
	RegistryKeys() []string
	RegistryStore() winreg.Store
}

// Store creates, restores and deletes backups and keeps the Backup History.
// History mutations are serialized; a Store is safe for concurrent use.
type Store struct {
	root     string
	registry winreg.Store
	log      zerolog.Logger

	now   func() time.Time
	newID func() string

	mu      sync.Mutex
	history []BackupRecord
}

// New returns a store writing under root. registry is used to restore
// registry backups and may be nil on hosts without one. The history starts
// empty; see Reload.
func New(root string, registry winreg.Store, log zerolog.Logger) *Store {
	return &Store{
		root:     root,
		registry: registry,
		log:      log,
		now:      time.Now,
		newID:    func() string { return uuid.NewString()[:8] },
	}
}

// Root returns the backups root.
func (s *Store) Root() string { return s.root }

// CreateBackup captures what a category is about to remove. src is a
// FileSource or a RegistrySource. A backup that fails partway is still
// recorded and returned, together with an error wrapping ErrPartial.
func (s *Store) CreateBackup(ctx context.Context, category string, src any) (BackupRecord, error) {
	switch src.(type) {
	case FileSource, RegistrySource:
	default:
		return BackupRecord{}, fmt.Errorf("backup %s: category cannot be backed up", category)
	}

	ts := s.now()
	location, err := s.newLocation(category, ts)
	if err != nil {
		return BackupRecord{}, fmt.Errorf("backup %s: %w", category, err)
	}
	log := s.log.With().Str("category", category).Str("location", location).Logger()
	log.Info().Msg("creating backup")

	rec := BackupRecord{Timestamp: ts, Category: category, Location: location}
	switch src := src.(type) {
	case FileSource:
		s.captureFiles(ctx, &rec, src)
	case RegistrySource:
		s.captureRegistry(ctx, &rec, src)
	}

	if err := writeJSON(filepath.Join(location, manifestName), manifest{Format: FormatVersion, Record: rec}); err != nil {
		rec.Partial = true
		rec.Errors = append(rec.Errors, fmt.Sprintf("write manifest: %v", err))
	}

	s.mu.Lock()
	s.history = append(s.history, rec)
	s.mu.Unlock()

	log.Info().
		Int("files", len(rec.Files)).
		Int("registry_values", len(rec.RegistryValues)).
		Int64("bytes", rec.TotalBytes).
		Bool("partial", rec.Partial).
		Msg("backup created")

	if rec.Partial {
		return rec, fmt.Errorf("backup %s: %w (%d errors, first: %s)", category, ErrPartial, len(rec.Errors), rec.Errors[0])
	}
	return rec, nil
}

// newLocation creates a fresh, owner-only backup directory. os.Mkdir fails
// on an existing directory, so a location is never written twice.
func (s *Store) newLocation(category string, ts time.Time) (string, error) {
	if err := os.MkdirAll(s.root, 0o700); err != nil {
		return "", fmt.Errorf("create backups root: %w", err)
	}
	name := fmt.Sprintf("%s_%s_%s", category, ts.Format("20060102-150405"), s.newID())
	location := filepath.Join(s.root, name)
	if err := os.Mkdir(location, 0o700); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("%s: %w", location, ErrLocationExists)
		}
		return "", err
	}
	if err := restrictDir(location); err != nil {
		s.log.Debug().Err(err).Str("location", location).Msg("cannot restrict backup directory")
	}
	return location, nil
}

func (s *Store) captureFiles(ctx context.Context, rec *BackupRecord, src FileSource) {
	dir := filepath.Join(rec.Location, filesDir)
	if err := os.Mkdir(dir, 0o700); err != nil {
		rec.Partial = true
		rec.Errors = append(rec.Errors, err.Error())
		return
	}

	err := src.EachEligible(ctx, func(path string, _ int64) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		info, err := os.Lstat(path)
		if errors.Is(err, fs.ErrNotExist) {
			s.log.Debug().Str("path", path).Msg("file vanished before backup, skipping")
			return nil
		}
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		if info.Mode()&fs.ModeSymlink != 0 {
			target, err := os.Readlink(path)
			if err != nil {
				return fmt.Errorf("read link %s: %w", path, err)
			}
			rec.Files = append(rec.Files, FileEntry{Original: path, Link: target})
			return nil
		}

		stored := filepath.Join(filesDir, fmt.Sprintf("%06d_%s", len(rec.Files)+1, filepath.Base(path)))
		n, mode, err := copyFile(path, filepath.Join(rec.Location, stored))
		if errors.Is(err, fs.ErrNotExist) && !exists(path) {
			s.log.Debug().Str("path", path).Msg("file vanished before backup, skipping")
			return nil
		}
		if err != nil {
			s.log.Warn().Err(err).Str("path", path).Msg("cannot back up file")
			return fmt.Errorf("copy %s: %w", path, err)
		}
		rec.Files = append(rec.Files, FileEntry{Original: path, Stored: stored, Size: n, Mode: uint32(mode)})
		rec.TotalBytes += n
		return nil
	})
	if err != nil {
		rec.Partial = true
		for _, e := range unjoin(err) {
			rec.Errors = append(rec.Errors, e.Error())
		}
	}
}

func (s *Store) captureRegistry(ctx context.Context, rec *BackupRecord, src RegistrySource) {
	store := src.RegistryStore()
	if store == nil {
		rec.Partial = true
		rec.Errors = append(rec.Errors, winreg.ErrUnsupported.Error())
		return
	}
	dir := filepath.Join(rec.Location, registryDir)
	if err := os.Mkdir(dir, 0o700); err != nil {
		rec.Partial = true
		rec.Errors = append(rec.Errors, err.Error())
		return
	}

	for i, key := range src.RegistryKeys() {
		if err := ctx.Err(); err != nil {
			rec.Partial = true
			rec.Errors = append(rec.Errors, err.Error())
			return
		}
		exists, err := store.KeyExists(key)
		if err != nil {
			rec.Partial = true
			rec.Errors = append(rec.Errors, fmt.Sprintf("open %s: %v", key, err))
			continue
		}
		if !exists {
			continue
		}

		export := registryExport{Format: FormatVersion, Root: key}
		if err := exportTree(store, key, &export.Keys); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("cannot export registry key")
			rec.Partial = true
			rec.Errors = append(rec.Errors, err.Error())
		}
		for _, k := range export.Keys {
			rec.RegistryKeys = append(rec.RegistryKeys, k.Path)
			for _, v := range k.Values {
				rec.RegistryValues = append(rec.RegistryValues, RegistryValue{KeyPath: k.Path, Value: v})
				rec.TotalBytes += int64(len(v.Data))
			}
		}

		name := filepath.Join(rec.Location, registryDir, fmt.Sprintf("%03d.json", i+1))
		if err := writeJSON(name, export); err != nil {
			rec.Partial = true
			rec.Errors = append(rec.Errors, fmt.Sprintf("write %s: %v", name, err))
		}
	}
}

// exportTree appends key and its descendants, parents first.
func exportTree(store winreg.Store, key string, out *[]exportedKey) error {
	values, err := store.Values(key)
	if err != nil {
		if errors.Is(err, winreg.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read values of %s: %w", key, err)
	}
	*out = append(*out, exportedKey{Path: key, Values: values})

	subkeys, err := store.SubKeys(key)
	if err != nil {
		if errors.Is(err, winreg.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("enumerate %s: %w", key, err)
	}
	var errs []error
	for _, sub := range subkeys {
		errs = append(errs, exportTree(store, winreg.Join(key, sub), out))
	}
	return errors.Join(errs...)
}

// Restore copies the captured data of the backup at location back to where
// it came from, overwriting what is there. Every item is attempted; the
// failures are returned together.
func (s *Store) Restore(ctx context.Context, location string) error {
	rec, ok := s.Get(location)
	if !ok {
		return fmt.Errorf("%s: %w", location, ErrBackupNotFound)
	}
	s.log.Info().Str("location", location).Str("category", rec.Category).Msg("restoring backup")

	var errs []error
	for _, f := range rec.Files {
		if err := ctx.Err(); err != nil {
			return errors.Join(append(errs, err)...)
		}
		var err error
		if f.Link != "" {
			err = restoreLink(f.Link, f.Original)
		} else {
			err = restoreFile(filepath.Join(location, f.Stored), f.Original, fs.FileMode(f.Mode))
		}
		if err != nil {
			s.log.Warn().Err(err).Str("path", f.Original).Msg("cannot restore file")
			errs = append(errs, fmt.Errorf("restore %s: %w", f.Original, err))
		}
	}

	if rec.IsRegistry() {
		if s.registry == nil {
			return errors.Join(append(errs, fmt.Errorf("restore registry: %w", winreg.ErrUnsupported))...)
		}
		for _, key := range rec.RegistryKeys {
			if err := s.registry.CreateKey(key); err != nil {
				errs = append(errs, fmt.Errorf("create %s: %w", key, err))
			}
		}
		for _, rv := range rec.RegistryValues {
			if err := s.registry.SetValue(rv.KeyPath, rv.Value); err != nil {
				s.log.Warn().Err(err).Str("key", rv.KeyPath).Str("value", rv.Value.Name).Msg("cannot restore registry value")
				errs = append(errs, fmt.Errorf("set %s\\%s: %w", rv.KeyPath, rv.Value.Name, err))
			}
		}
	}
	return errors.Join(errs...)
}

// List returns the Backup History in creation order.
func (s *Store) List() []BackupRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]BackupRecord(nil), s.history...)
}

// Get returns the record stored at location.
func (s *Store) Get(location string) (BackupRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(location); i >= 0 {
		return s.history[i], true
	}
	return BackupRecord{}, false
}

// Delete removes the backup's stored data and then its history entry. The
// entry stays when the data cannot be removed.
func (s *Store) Delete(location string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(location)
	if i < 0 {
		return fmt.Errorf("%s: %w", location, ErrBackupNotFound)
	}
	if err := os.RemoveAll(location); err != nil {
		return fmt.Errorf("delete backup %s: %w", location, err)
	}
	s.history = append(s.history[:i], s.history[i+1:]...)
	s.log.Info().Str("location", location).Msg("backup deleted")
	return nil
}

func (s *Store) indexLocked(location string) int {
	location = filepath.Clean(location)
	for i, r := range s.history {
		if filepath.Clean(r.Location) == location {
			return i
		}
	}
	return -1
}

// Reload adds the backups found under the root to the history. Locations
// already known are left alone; the history is kept in timestamp order.
// Unreadable manifests are skipped and reported.
func (s *Store) Reload() error {
	entries, err := os.ReadDir(s.root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read backups root: %w", err)
	}

	var errs []error
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		location := filepath.Join(s.root, e.Name())
		if s.indexLocked(location) >= 0 {
			continue
		}
		rec, err := readManifest(location)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				errs = append(errs, err)
			}
			continue
		}
		// The directory may have been moved since it was written.
		rec.Location = location
		s.history = append(s.history, rec)
	}
	sort.SliceStable(s.history, func(i, j int) bool {
		return s.history[i].Timestamp.Before(s.history[j].Timestamp)
	})
	return errors.Join(errs...)
}

func readManifest(location string) (BackupRecord, error) {
	data, err := os.ReadFile(filepath.Join(location, manifestName))
	if err != nil {
		return BackupRecord{}, err
	}
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return BackupRecord{}, fmt.Errorf("%s: %w", location, err)
	}
	if m.Format != FormatVersion {
		return BackupRecord{}, fmt.Errorf("%s: format %d: %w", location, m.Format, ErrUnsupportedFormat)
	}
	return m.Record, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// copyFile copies src to a new file dst and returns the bytes copied and
// the source mode.
func copyFile(src, dst string) (int64, fs.FileMode, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, 0, err
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return 0, 0, err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return 0, 0, err
	}
	n, err := io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dst)
		return 0, 0, err
	}
	return n, info.Mode().Perm(), nil
}

func restoreFile(stored, original string, mode fs.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(original), 0o755); err != nil {
		return err
	}
	in, err := os.Open(stored)
	if err != nil {
		return err
	}
	defer in.Close()

	if mode == 0 {
		mode = 0o644
	}
	out, err := os.OpenFile(original, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// restoreLink recreates a symbolic link, replacing whatever is at original.
func restoreLink(target, original string) error {
	if err := os.MkdirAll(filepath.Dir(original), 0o755); err != nil {
		return err
	}
	if err := os.Remove(original); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.Symlink(target, original)
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func unjoin(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}
