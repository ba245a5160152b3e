package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/snap-point/fieldtrack/config"
	"github.com/snap-point/fieldtrack/geo"
	"github.com/snap-point/fieldtrack/routes"
	"github.com/snap-point/fieldtrack/services"
)

func main() {
	// Set up logging to stdout
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	cfg := config.Load()

	// Initialize database
	db := config.InitDB(cfg.Database)

	var files services.FileStore
	switch cfg.Storage.Driver {
	case "r2":
		files = services.NewR2FileStore(cfg.Storage.R2)
	case "memory":
		files = services.NewMemoryFileStore()
	default:
		log.Fatalf("unsupported STORAGE_DRIVER %q", cfg.Storage.Driver)
	}

	var locations services.LocationCache
	switch cfg.Location.Driver {
	case "redis":
		client := config.NewRedisClient(cfg.Location.Redis)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatal("Failed to connect to redis:", err)
		}
		cancel()
		locations = services.NewRedisLocationCache(client, cfg.Location.MaxAge)
	case "memory":
		locations = services.NewMemoryLocationCache(cfg.Location.MaxAge)
	default:
		log.Fatalf("unsupported LOCATION_DRIVER %q", cfg.Location.Driver)
	}

	hub := services.NewEventHub()
	defer hub.Close()

	builder := &services.MapBuilder{Concurrency: cfg.Routing.Concurrency}
	if cfg.Routing.Enabled {
		builder.Router = services.NewOSRMClient(cfg.Routing)
	}

	tracker := services.NewTracker(
		db,
		files,
		locations,
		geo.Gate{MinDistance: cfg.Upload.MinDistance},
		services.NewFileRules(cfg.Upload),
		hub,
	)

	// Create a new Gin router
	r := gin.Default()
	r.MaxMultipartMemory = 32 << 20

	routes.SetupRoutes(r, routes.Dependencies{
		Config:  cfg,
		Tracker: tracker,
		Hub:     hub,
		Builder: builder,
	})

	log.Printf("Starting server on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
