package winreg

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Memory is an in-process registry. It backs tests and stands in for the
// registry on hosts that have none. Key and value names are matched
// case-insensitively, like the real registry.
type Memory struct {
	mu        sync.Mutex
	keys      map[string]*memKey
	deleteErr map[string]error
}

type memKey struct {
	path   string
	values map[string]Value
}

// NewMemory returns an empty registry.
func NewMemory() *Memory {
	return &Memory{
		keys:      make(map[string]*memKey),
		deleteErr: make(map[string]error),
	}
}

func norm(path string) string {
	return strings.ToLower(strings.TrimRight(path, `\`))
}

// FailDeletes makes every delete touching path (the key or one of its values)
// fail with err. Passing a nil err clears the failure.
func (m *Memory) FailDeletes(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.deleteErr, norm(path))
		return
	}
	m.deleteErr[norm(path)] = err
}

func (m *Memory) KeyExists(path string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.keys[norm(path)]
	return ok, nil
}

func (m *Memory) SubKeys(path string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := norm(path)
	if _, ok := m.keys[n]; !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrNotExist)
	}
	prefix := n + `\`
	var names []string
	for k, key := range m.keys {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		rest := k[len(prefix):]
		if strings.Contains(rest, `\`) {
			continue
		}
		names = append(names, key.path[len(key.path)-len(rest):])
	}
	sort.Strings(names)
	return names, nil
}

func (m *Memory) Values(path string) ([]Value, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key, ok := m.keys[norm(path)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrNotExist)
	}
	values := make([]Value, 0, len(key.values))
	for _, v := range key.values {
		values = append(values, Value{Name: v.Name, Type: v.Type, Data: append([]byte(nil), v.Data...)})
	}
	sort.Slice(values, func(i, j int) bool { return values[i].Name < values[j].Name })
	return values, nil
}

func (m *Memory) DeleteValue(path, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := norm(path)
	if err := m.deleteErr[n]; err != nil {
		return err
	}
	key, ok := m.keys[n]
	if !ok {
		return fmt.Errorf("%s: %w", path, ErrNotExist)
	}
	if _, ok := key.values[strings.ToLower(name)]; !ok {
		return fmt.Errorf("%s\\%s: %w", path, name, ErrNotExist)
	}
	delete(key.values, strings.ToLower(name))
	return nil
}

func (m *Memory) DeleteKey(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := norm(path)
	if err := m.deleteErr[n]; err != nil {
		return err
	}
	if _, ok := m.keys[n]; !ok {
		return fmt.Errorf("%s: %w", path, ErrNotExist)
	}
	prefix := n + `\`
	for k := range m.keys {
		if strings.HasPrefix(k, prefix) {
			return fmt.Errorf("%s: %w", path, ErrHasSubKeys)
		}
	}
	delete(m.keys, n)
	return nil
}

func (m *Memory) CreateKey(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createLocked(path)
	return nil
}

func (m *Memory) createLocked(path string) *memKey {
	path = strings.TrimRight(path, `\`)
	parts := strings.Split(path, `\`)
	var key *memKey
	for i := range parts {
		p := strings.Join(parts[:i+1], `\`)
		n := norm(p)
		k, ok := m.keys[n]
		if !ok {
			k = &memKey{path: p, values: make(map[string]Value)}
			m.keys[n] = k
		}
		key = k
	}
	return key
}

func (m *Memory) SetValue(path string, v Value) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := m.createLocked(path)
	v.Data = append([]byte(nil), v.Data...)
	key.values[strings.ToLower(v.Name)] = v
	return nil
}
