package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/tranqh/photokeep/config"
	"github.com/tranqh/photokeep/http/controller"
	routes "github.com/tranqh/photokeep/http/route"
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

	shutdownTelemetry := infraPkg.InitTelemetry(cfg.EnvConfig)
	defer shutdownTelemetry(context.Background())

	ctrl := controller.NewController(cfg, infra, repo)
	router := routes.SetupRouter(ctrl)

	addr := ":" + cfg.EnvConfig.Server.Port
	log.Printf("HTTP Server started on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
