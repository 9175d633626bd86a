// Package winreg abstracts the small part of the Windows registry the
// cleaner needs. Paths are full key paths including the hive, for example
// `HKCU\Software\Microsoft\Windows\CurrentVersion\Explorer\RunMRU`.
package winreg

import (
	"errors"
	"strings"
)

var (
	// ErrNotExist is returned when a key or value does not exist.
	ErrNotExist = errors.New("registry key or value does not exist")

	// ErrUnsupported is returned on hosts without a registry.
	ErrUnsupported = errors.New("registry is not available on this platform")

	// ErrHasSubKeys is returned by DeleteKey when the key still has children.
	ErrHasSubKeys = errors.New("registry key has subkeys")
)

// Value types, numbered as in winnt.h so exported data stays portable.
const (
	TypeNone     uint32 = 0
	TypeString   uint32 = 1
	TypeExpand   uint32 = 2
	TypeBinary   uint32 = 3
	TypeDWord    uint32 = 4
	TypeMulti    uint32 = 7
	TypeQWord    uint32 = 11
	typeMaxKnown uint32 = 11
)

// Value is one named registry value with its raw bytes.
type Value struct {
	Name string `json:"name"`
	Type uint32 `json:"type"`
	Data []byte `json:"data"`
}

// Store is the registry surface used by cleaners and the snapshot store.
type Store interface {
	// KeyExists reports whether the key exists.
	KeyExists(path string) (bool, error)
	// SubKeys lists the immediate child key names.
	SubKeys(path string) ([]string, error)
	// Values lists every value of a key.
	Values(path string) ([]Value, error)
	// DeleteValue removes one value.
	DeleteValue(path, name string) error
	// DeleteKey removes a key that has no subkeys.
	DeleteKey(path string) error
	// CreateKey creates the key and any missing parents.
	CreateKey(path string) error
	// SetValue writes a value, creating the key if needed.
	SetValue(path string, v Value) error
}

// Join appends a child name to a key path.
func Join(parent, child string) string {
	return strings.TrimRight(parent, `\`) + `\` + child
}

// TypeName returns the REG_* name for a value type.
func TypeName(t uint32) string {
	switch t {
	case TypeNone:
		return "REG_NONE"
	case TypeString:
		return "REG_SZ"
	case TypeExpand:
		return "REG_EXPAND_SZ"
	case TypeBinary:
		return "REG_BINARY"
	case TypeDWord:
		return "REG_DWORD"
	case TypeMulti:
		return "REG_MULTI_SZ"
	case TypeQWord:
		return "REG_QWORD"
	}
	return "REG_UNKNOWN"
}

// IsKnownType reports whether t is a value type the store can write back.
func IsKnownType(t uint32) bool {
	return t <= typeMaxKnown && TypeName(t) != "REG_UNKNOWN"
}
