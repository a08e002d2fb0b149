package file

import (
	"errors"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/ragtube/ragtube-cli/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// DefaultDirName is the directory under the user's home holding config and data.
const DefaultDirName = ".ragtube"

// ConfigStore keeps config.toml in memory as flat dotted keys
// ("embedding.provider") and writes it back as nested tables.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	data     map[string]any
}

// NewConfigStore opens <configDir>/config.toml, creating configDir when
// needed. An empty configDir means ~/.ragtube. A missing file is not an error.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, DefaultDirName)
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	s := &ConfigStore{
		filePath: filepath.Join(configDir, "config.toml"),
		data:     map[string]any{},
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.data[key]
	return val, ok
}

func lookup[T any](s *ConfigStore, key string) T {
	val, _ := s.Get(key)
	typed, _ := val.(T)
	return typed
}

func (s *ConfigStore) GetString(key string) string { return lookup[string](s, key) }

func (s *ConfigStore) GetBool(key string) bool { return lookup[bool](s, key) }

// GetInt accepts both int64, which is what TOML decodes to, and int values
// set in-process.
func (s *ConfigStore) GetInt(key string) int {
	val, _ := s.Get(key)
	switch v := val.(type) {
	case int64:
		return int(v)
	case int:
		return v
	}
	return 0
}

// GetFloat widens integer values.
func (s *ConfigStore) GetFloat(key string) float64 {
	val, _ := s.Get(key)
	switch v := val.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

// GetStringSlice drops non-string elements of decoded TOML arrays.
func (s *ConfigStore) GetStringSlice(key string) []string {
	val, _ := s.Get(key)
	switch v := val.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return s.writeLocked()
}

func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked()
}

func (s *ConfigStore) writeLocked() error {
	doc, ok := nestMap(s.data)
	if !ok {
		doc = s.data
	}
	encoded, err := toml.Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(s.filePath, encoded, 0600)
}

// Load replaces the in-memory keys with the file's contents.
func (s *ConfigStore) Load() error {
	raw, err := os.ReadFile(s.filePath)
	if errors.Is(err, fs.ErrNotExist) {
		raw, err = nil, nil
	}
	if err != nil {
		return err
	}

	tree := map[string]any{}
	if err := toml.Unmarshal(raw, &tree); err != nil {
		return err
	}

	s.mu.Lock()
	s.data = flattenMap(tree, "")
	s.mu.Unlock()
	return nil
}

func (s *ConfigStore) Path() string {
	return s.filePath
}

// flattenMap turns {"a": {"b": 1}} into {"a.b": 1}.
func flattenMap(m map[string]any, prefix string) map[string]any {
	flat := make(map[string]any, len(m))
	for key, value := range m {
		if prefix != "" {
			key = prefix + "." + key
		}
		if table, ok := value.(map[string]any); ok {
			maps.Copy(flat, flattenMap(table, key))
			continue
		}
		flat[key] = value
	}
	return flat
}

// nestMap is the inverse of flattenMap. It reports false when a key is both
// a value and a table prefix ({"a": 1, "a.b": 2}); such maps are written flat.
func nestMap(flat map[string]any) (map[string]any, bool) {
	root := map[string]any{}
	for key, value := range flat {
		parts := strings.Split(key, ".")
		node := root
		for _, part := range parts[:len(parts)-1] {
			switch next := node[part].(type) {
			case nil:
				child := map[string]any{}
				node[part] = child
				node = child
			case map[string]any:
				node = next
			default:
				return nil, false
			}
		}
		leaf := parts[len(parts)-1]
		if _, taken := node[leaf]; taken {
			return nil, false
		}
		node[leaf] = value
	}
	return root, true
}
