package driven

// ConfigStore is the key/value view over ragtube's config file. Keys are
// dotted paths such as "embedding.provider" or "ingest.source_dir".
//
// Typed getters return the zero value when a key is missing or holds a
// value of another type.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	GetFloat(key string) float64
	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Set updates a key in memory and writes the file.
	Set(key string, value any) error
	Save() error
	Load() error

	// Path is the location of the backing file.
	Path() string
}
