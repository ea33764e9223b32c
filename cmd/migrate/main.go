package main

import (
	"log"

	"llm-chat-be/internal/config"
	"llm-chat-be/internal/model"
	"llm-chat-be/pkg/database"

	"github.com/fatih/color"
)

func main() {
	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}

	color.Cyan("Running migrations...")

	err = db.AutoMigrate(
		&model.User{},
		&model.UserProvider{},
		&model.ChatSession{},
		&model.ChatMessage{},
	)
	if err != nil {
		color.Red("Migration failed: %v", err)
		log.Fatal(err)
	}

	color.Green("Migrations completed successfully")
}
