package main

import (
	"context"
	"log"

	"llm-chat-be/internal/bootstrap"
	"llm-chat-be/internal/config"
	"llm-chat-be/internal/server"
	"llm-chat-be/internal/tracer"
	"llm-chat-be/pkg/database"
)

func main() {
	// 1. Initialize tracer
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 2. Load configuration
	cfg := config.Load()

	// 3. Initialize database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 4. Bootstrap dependencies
	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Logger.Sync()

	// 5. Run server
	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}
