package cache

// Config holds configuration for the read-through cache.
type Config struct {
	// Enabled toggles the cache as a whole. When disabled, every Get is a
	// miss and Set is a no-op.
	Enabled bool `mapstructure:"enabled" default:"true"`
	// Dir is the directory for on-disk persistence. Empty disables
	// persistence; entries then live only for the process lifetime.
	Dir string `mapstructure:"dir" default:""`
	// MaxSizeMB is the cumulative size budget for cached payloads.
	MaxSizeMB int `mapstructure:"max_size_mb" default:"100"`
	// DefaultTTLSeconds is the time-to-live applied when Set is called
	// without an explicit TTL.
	DefaultTTLSeconds int `mapstructure:"default_ttl_seconds" default:"3600"`
}
