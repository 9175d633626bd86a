//go:build windows

package winreg

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"unicode/utf16"

	"golang.org/x/sys/windows/registry"
)

// ─── Hive Resolution ─────────────────────────────────────────────────────────

// hives maps the accepted path prefixes to predefined root keys.
var hives = map[string]registry.Key{
	"HKCU":                registry.CURRENT_USER,
	"HKEY_CURRENT_USER":   registry.CURRENT_USER,
	"HKLM":                registry.LOCAL_MACHINE,
	"HKEY_LOCAL_MACHINE":  registry.LOCAL_MACHINE,
	"HKCR":                registry.CLASSES_ROOT,
	"HKEY_CLASSES_ROOT":   registry.CLASSES_ROOT,
	"HKU":                 registry.USERS,
	"HKEY_USERS":          registry.USERS,
	"HKCC":                registry.CURRENT_CONFIG,
	"HKEY_CURRENT_CONFIG": registry.CURRENT_CONFIG,
}

// splitPath separates the hive prefix from the subkey path.
func splitPath(path string) (registry.Key, string, error) {
	hive, rest, _ := strings.Cut(strings.TrimRight(path, `\`), `\`)
	root, ok := hives[strings.ToUpper(hive)]
	if !ok {
		return 0, "", fmt.Errorf("unknown registry hive in %q", path)
	}
	return root, rest, nil
}

// mapErr converts "file not found" into ErrNotExist so callers can treat an
// absent key as already clean.
func mapErr(path string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, registry.ErrNotExist) {
		return fmt.Errorf("%s: %w", path, ErrNotExist)
	}
	return fmt.Errorf("%s: %w", path, err)
}

// ─── System Store ────────────────────────────────────────────────────────────

type systemStore struct{}

// OpenSystem returns the live Windows registry.
func OpenSystem() (Store, error) {
	return systemStore{}, nil
}

func (systemStore) open(path string, access uint32) (registry.Key, error) {
	root, sub, err := splitPath(path)
	if err != nil {
		return 0, err
	}
	key, err := registry.OpenKey(root, sub, access)
	if err != nil {
		return 0, mapErr(path, err)
	}
	return key, nil
}

func (s systemStore) KeyExists(path string) (bool, error) {
	key, err := s.open(path, registry.QUERY_VALUE)
	if err != nil {
		if errors.Is(err, ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	key.Close()
	return true, nil
}

func (s systemStore) SubKeys(path string) ([]string, error) {
	key, err := s.open(path, registry.ENUMERATE_SUB_KEYS)
	if err != nil {
		return nil, err
	}
	defer key.Close()

	names, err := key.ReadSubKeyNames(-1)
	if err != nil {
		return nil, mapErr(path, err)
	}
	return names, nil
}

func (s systemStore) Values(path string) ([]Value, error) {
	key, err := s.open(path, registry.QUERY_VALUE)
	if err != nil {
		return nil, err
	}
	defer key.Close()

	names, err := key.ReadValueNames(-1)
	if err != nil {
		return nil, mapErr(path, err)
	}

	values := make([]Value, 0, len(names))
	for _, name := range names {
		// A nil buffer asks for the size first.
		n, valType, err := key.GetValue(name, nil)
		if err != nil {
			return values, mapErr(path+`\`+name, err)
		}
		buf := make([]byte, n)
		n, valType, err = key.GetValue(name, buf)
		if err != nil {
			return values, mapErr(path+`\`+name, err)
		}
		values = append(values, Value{Name: name, Type: valType, Data: buf[:n]})
	}
	return values, nil
}

func (s systemStore) DeleteValue(path, name string) error {
	key, err := s.open(path, registry.SET_VALUE)
	if err != nil {
		return err
	}
	defer key.Close()
	return mapErr(path+`\`+name, key.DeleteValue(name))
}

func (systemStore) DeleteKey(path string) error {
	root, sub, err := splitPath(path)
	if err != nil {
		return err
	}
	return mapErr(path, registry.DeleteKey(root, sub))
}

func (systemStore) CreateKey(path string) error {
	root, sub, err := splitPath(path)
	if err != nil {
		return err
	}
	key, _, err := registry.CreateKey(root, sub, registry.CREATE_SUB_KEY)
	if err != nil {
		return mapErr(path, err)
	}
	key.Close()
	return nil
}

func (systemStore) SetValue(path string, v Value) error {
	root, sub, err := splitPath(path)
	if err != nil {
		return err
	}
	key, _, err := registry.CreateKey(root, sub, registry.SET_VALUE)
	if err != nil {
		return mapErr(path, err)
	}
	defer key.Close()

	switch v.Type {
	case TypeString:
		err = key.SetStringValue(v.Name, decodeUTF16(v.Data))
	case TypeExpand:
		err = key.SetExpandStringValue(v.Name, decodeUTF16(v.Data))
	case TypeMulti:
		err = key.SetStringsValue(v.Name, decodeMulti(v.Data))
	case TypeDWord:
		if len(v.Data) < 4 {
			return fmt.Errorf("%s\\%s: short REG_DWORD (%d bytes)", path, v.Name, len(v.Data))
		}
		err = key.SetDWordValue(v.Name, binary.LittleEndian.Uint32(v.Data))
	case TypeQWord:
		if len(v.Data) < 8 {
			return fmt.Errorf("%s\\%s: short REG_QWORD (%d bytes)", path, v.Name, len(v.Data))
		}
		err = key.SetQWordValue(v.Name, binary.LittleEndian.Uint64(v.Data))
	default:
		// REG_BINARY and anything else round-trips as raw bytes.
		err = key.SetBinaryValue(v.Name, v.Data)
	}
	return mapErr(path+`\`+v.Name, err)
}

// decodeUTF16 turns little-endian UTF-16 bytes into a string, dropping the
// terminating NUL.
func decodeUTF16(b []byte) string {
	u := make([]uint16, len(b)/2)
	for i := range u {
		u[i] = binary.LittleEndian.Uint16(b[2*i:])
	}
	for len(u) > 0 && u[len(u)-1] == 0 {
		u = u[:len(u)-1]
	}
	return string(utf16.Decode(u))
}

func decodeMulti(b []byte) []string {
	s := decodeUTF16(b)
	if s == "" {
		return nil
	}
	return strings.Split(s, "\x00")
}
