package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/arnavshah/shiftboard-go/pkg/models"
)

// Open connects to postgres when a DSN is given, otherwise falls back to a
// local sqlite file, and migrates the schema. The returned handle is passed
// explicitly to the store; there is no package-level connection.
func Open(postgresDSN, sqlitePath string) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	if postgresDSN != "" {
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  postgresDSN,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	} else {
		if sqlitePath == "" {
			sqlitePath = "shiftboard.db"
		}
		db, err = gorm.Open(sqlite.Open(sqlitePath), &gorm.Config{})
	}
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.Employee{},
		&models.AvailabilityWindow{},
		&models.Shift{},
		&models.Assignment{},
	); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return db, nil
}
