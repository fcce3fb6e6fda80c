package driven

// ConfigStore provides access to application configuration.
// Implementations handle persistence (e.g., TOML files) and type
// conversion.
type ConfigStore interface {
	// GetString retrieves a string configuration value.
	// Returns empty string if key doesn't exist or isn't a string.
	GetString(key string) string

	// GetInt retrieves an integer configuration value.
	// Returns 0 if key doesn't exist or isn't an integer.
	GetInt(key string) int

	// GetBool retrieves a boolean configuration value.
	// Returns false if key doesn't exist or isn't a boolean.
	GetBool(key string) bool

	// Set stores a configuration value and persists it immediately.
	Set(key string, value any) error

	// Load re-reads configuration from storage, replacing in-memory
	// state. Reload is caller-invoked, never implicit.
	Load() error
}
