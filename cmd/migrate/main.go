// Command migrate applies the GORM schema. Connect skips AutoMigrate in
// production, so deployments run this binary explicitly before rollout.
package main

import (
	"log"

	"aktiv/internal/config"
	"aktiv/internal/database"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(database.PersistentModels()...); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Schema migration completed")
}
