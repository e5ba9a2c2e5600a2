package models

import (
	"log"

	"github.com/mmdatafocus/lexfiles_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Firm{},
		&Matter{},
		&FileDocument{},
		&ManifestEntry{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
