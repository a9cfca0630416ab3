// Package db opens the MySQL connection used by every repository.
package db

import (
	"log"
	"time"

	gmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"

	visitentity "checkin_backend/internal/feature/checkin/domain/entity"
	identityentity "checkin_backend/internal/feature/identity/domain/entity"
	"checkin_backend/internal/platform/config"
)

// OpenDB connects to MySQL with a retry loop, so the server survives the
// database coming up slightly later than the process. When migrate is true
// it runs GORM AutoMigrate for the identity and visit tables.
func OpenDB(cfg config.Database, migrate bool) *gorm.DB {
	dsn := cfg.DSN()

	var (
		db  *gorm.DB
		err error
	)

	deadline := time.Now().Add(60 * time.Second)
	for {
		db, err = gorm.Open(gmysql.Open(dsn), &gorm.Config{TranslateError: true})
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			log.Fatalf("DB connect failed after 60s: %v", err)
		}
		log.Printf("DB connect failed, retrying...: %v", err)
		time.Sleep(3 * time.Second)
	}

	if migrate {
		if err := db.AutoMigrate(
			&identityentity.Identity{},
			&visitentity.Visit{},
		); err != nil {
			log.Fatalf("failed to migrate: %v", err)
		}
	}

	return db
}
