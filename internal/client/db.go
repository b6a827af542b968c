package client

import (
	"fmt"
	"strings"
	"time"

	"tipjar-backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InitDB opens the ledger store. The driver is picked from the DSN:
// sqlite for file/in-memory DSNs, mysql otherwise.
func InitDB(databaseURL string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if isSqliteDSN(databaseURL) {
		dialector = sqlite.Open(databaseURL)
	} else {
		dialector = mysql.Open(databaseURL)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// Connection pool (important for webhooks)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate runs auto-migration and seeds the order-number counter row.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.OrderSequence{},
		&model.Order{},
		&model.Payment{},
		&model.Donation{},
		&model.Subscription{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	return db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.OrderSequence{ID: 1, LastOrderNumber: 0}).Error
}

func isSqliteDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "file:") ||
		strings.Contains(dsn, ":memory:") ||
		strings.HasSuffix(dsn, ".db") ||
		strings.HasSuffix(dsn, ".sqlite")
}
