// Package database handles the connection to the ERP database.
//
// It wraps GORM to configure the MySQL connection from the application's
// configuration: DSN assembly with encoded credentials, connection pool
// limits, per-operation timeouts and an initial ping.
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", zap.Error(err))
//	}
package database
