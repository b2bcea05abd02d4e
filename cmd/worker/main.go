package main

import (
	"context"
	"log"

	"github.com/wildhaven/parkops-backend/internal/aws"
	"github.com/wildhaven/parkops-backend/internal/config"
	"github.com/wildhaven/parkops-backend/internal/database"
	"github.com/wildhaven/parkops-backend/internal/logging"
	"github.com/wildhaven/parkops-backend/internal/queue"
	"github.com/wildhaven/parkops-backend/internal/rbac"
)

func main() {
	cfg := config.Load()

	if err := logging.Init(&cfg.Logging); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	ctx := context.Background()

	sesService, err := aws.NewSESService(ctx, cfg.AWS)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	if cfg.AWS.EndpointURL != "" {
		log.Printf("Verifying sender identity %s...", sesService.Sender())
		if err := sesService.VerifyEmailIdentity(ctx); err != nil {
			log.Fatalf("Failed to verify email identity: %v", err)
		}
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	catalog, err := rbac.DefaultCatalog()
	if err != nil {
		log.Fatalf("Failed to load permission catalog: %v", err)
	}

	worker := queue.NewWorker(&cfg.Redis, sesService, db.Queries(), rbac.NewEngine(catalog))

	log.Println("Starting queue worker...")
	if err := worker.Start(); err != nil {
		log.Fatalf("Worker failed to start: %v", err)
	}
	select {}
}
