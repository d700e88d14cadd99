// Package config provides configuration management for the synchronizer.
//
// It utilizes Viper for loading configuration from environment variables
// and an optional .env file, with defaults declared as struct tags on the
// partial configurations.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings,
// divided into subsections:
//   - Database: ERP MySQL connection details
//   - N2F: target platform API credentials, base URLs and modes
//   - Cache: read-through cache location, TTL and size budget
//   - Report: run report output directory
//   - Archive: S3/MinIO credentials for report archiving
//   - Log: logging level and format
//
// The package also owns the scope registry: the built-in list of
// synchronization perimeters with their extraction queries and axis
// mappings.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Database.Host)
package config
