package config

const (
	defaultStorageDriver = "sqlite"
	defaultSQLitePath    = "recall.db"

	defaultEventsProvider = "nop"
	defaultEventsTopic    = "recall.contact.synced"

	defaultLogLevel  = "info"
	defaultLogFormat = "text"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			Driver:     defaultStorageDriver,
			SQLitePath: defaultSQLitePath,
		},
		Events: EventsConfig{
			Provider: defaultEventsProvider,
			Topic:    defaultEventsTopic,
		},
		Log: LogConfig{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
