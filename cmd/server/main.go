package main

import (
	"log"

	"github.com/DGfinder/fleet-correlation-go/internal/api"
	"github.com/DGfinder/fleet-correlation-go/internal/config"
	"github.com/DGfinder/fleet-correlation-go/internal/database"

	// Register batch engine jobs
	_ "github.com/DGfinder/fleet-correlation-go/internal/analysis/correlation"
	_ "github.com/DGfinder/fleet-correlation-go/internal/analysis/discovery"
	_ "github.com/DGfinder/fleet-correlation-go/internal/analysis/routes"
)

func main() {
	cfg := config.Load()

	if err := database.Init(database.Config{Path: cfg.DBPath}); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.Close()

	router := api.SetupRouter(cfg, database.GetDB())

	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
