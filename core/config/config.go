package config

import (
	"reflect"
	"strings"

	"staff-sync/core/cache"
	"staff-sync/core/database"
	"staff-sync/core/logger"
	"staff-sync/core/n2f"
	"staff-sync/core/report"
	"staff-sync/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the ERP database connection.
	Database database.Config `mapstructure:"database"`
	// N2F holds configuration for the target platform API.
	N2F n2f.Config `mapstructure:"n2f"`
	// Cache holds configuration for the read-through cache.
	Cache cache.Config `mapstructure:"cache"`
	// Report holds configuration for run reporting.
	Report report.Config `mapstructure:"report"`
	// Archive holds configuration for report archiving in object storage.
	Archive storage.Config `mapstructure:"archive"`
	// QueryDir optionally holds per-scope SQL files overriding the
	// built-in extraction queries (<scope>.sql).
	QueryDir string `mapstructure:"query_dir" default:""`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. DATABASE_HOST -> database.host)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
