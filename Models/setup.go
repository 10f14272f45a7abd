package Models

import (
	"fmt"

	"Quarry/Config"
	"Quarry/Logger"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Connect opens the configured database and migrates the vendor tables.
func Connect(cfg *Config.AppConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "sqlite", "":
		dialector = sqlite.Open(cfg.DBDSN)
	case "postgres":
		dialector = postgres.Open(cfg.DBDSN)
	case "mysql":
		dialector = mysql.Open(cfg.DBDSN)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	connection, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.DBDriver, err)
	}

	if err := Migrate(connection); err != nil {
		return nil, err
	}

	Logger.L.Info("Database ready", "driver", cfg.DBDriver)
	return connection, nil
}

// Migrate creates the vendor tables. Parents go before the line tables that reference them.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&TransportVendor{},
		&LabourContractor{},
		&ExplosiveSupplier{},
	); err != nil {
		return fmt.Errorf("migrate vendors: %w", err)
	}

	if err := db.AutoMigrate(
		&VehicleRate{},
		&WorkContract{},
		&VendorPayment{},
	); err != nil {
		return fmt.Errorf("migrate vendor lines: %w", err)
	}
	return nil
}
