package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/tranqh/photokeep/config"
	"github.com/tranqh/photokeep/consumer/worker"
	infraPkg "github.com/tranqh/photokeep/infra"
	"github.com/tranqh/photokeep/repository"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, continuing with environment variables")
	}

	cfg := config.NewConfig()
	infra := infraPkg.InitInfra(cfg)
	repo := repository.InitRepository(infra)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reconciler := worker.NewReconcileConsumer(cfg, infra.RabbitMQ.Channel, infra, repo)
	if err := reconciler.Start(ctx); err != nil {
		infra.Logger.ErrorWithContextf(ctx, err, "Failed to start Reconcile consumer: %v", err)
		log.Fatalf("Failed to start Reconcile consumer: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	infra.Logger.InfoWithContextf(ctx, "Shutting down consumer...")
	cancel()

	infra.Logger.InfoWithContextf(ctx, "Consumer exited properly")
}
