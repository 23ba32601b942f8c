package main

import (
	"context"
	"flag"
	"log"

	"github.com/saradorri/edrewards/internal/config"
	"github.com/saradorri/edrewards/internal/infrastructure/database"
	"github.com/saradorri/edrewards/internal/infrastructure/logger"
	"github.com/saradorri/edrewards/internal/infrastructure/repository"
	"github.com/saradorri/edrewards/internal/infrastructure/seeder"
)

func main() {
	var (
		configPath = flag.String("config", "./config", "Path to config directory")
		configFile = flag.String("env", "development", "Environment")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath, *configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewDatabase(&database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Name:            cfg.Database.Name,
		SSLMode:         cfg.Database.SSLMode,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	appLogger := logger.NewLogger(*configFile, cfg.Log.Level)
	defer appLogger.Sync()

	repos := repository.NewStore(db.DB).Repos()
	newSeeder := seeder.NewSeeder(repos.Users, repos.Machines, appLogger)

	ctx := context.Background()
	log.Println("Starting database seeding...")
	if err := newSeeder.SeedMachineTypes(ctx); err != nil {
		log.Fatalf("Failed to seed machine types: %v", err)
	}
	if err := newSeeder.SeedUsers(ctx); err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}
	log.Println("Database seeding completed successfully")
}
