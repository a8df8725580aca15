package main

import (
	"fmt"
	"log"
	"strconv"

	"github.com/mr-pipeline/internal/config"
	"github.com/mr-pipeline/internal/db"
	"github.com/mr-pipeline/internal/web"
)

func main() {
	// Load environment configuration
	config.LoadEnv()

	fmt.Println("=== Market Report Pipeline Web Interface ===")

	// A JSON config file overrides environment-built settings
	if configPath := config.GetEnv("WEB_CONFIG", ""); configPath != "" {
		webConfig, err := web.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("Failed to load config %s: %v", configPath, err)
		}
		startServer(webConfig)
		return
	}

	// Get configuration from environment
	portStr := config.GetEnv("WEB_PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("Invalid port number: %s", portStr)
	}

	host := config.GetEnv("WEB_HOST", "localhost")
	dbName := config.GetEnv("PGDATABASE", "market_reports")

	fmt.Printf("Server: http://%s:%d\n", host, port)
	fmt.Printf("Database: %s\n", dbName)

	// Test database connectivity before starting
	dbConn, err := db.NewConnection()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	var dbVersion string
	err = dbConn.DB.QueryRow("SELECT version()").Scan(&dbVersion)
	if err != nil {
		log.Fatalf("Database connection test failed: %v", err)
	}
	fmt.Printf("Database connected successfully\n")
	dbConn.Close()

	webConfig := &web.Config{
		Server: web.ServerConfig{
			Port: port,
			Host: host,
		},
		Database: web.DatabaseConfig{
			URL: fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
				config.GetEnv("PGUSER", "user"),
				config.GetEnv("PGPASSWORD", "password"),
				config.GetEnv("PGHOST", "localhost"),
				config.GetEnv("PGPORT", "15432"),
				dbName),
			MaxConnections: config.GetEnvInt("DB_MAX_CONNECTIONS", 10),
		},
		Features: web.FeatureConfig{
			ReviewEnabled: config.GetEnvBool("ENABLE_REVIEW", true),
		},
	}

	startServer(webConfig)
}

func startServer(webConfig *web.Config) {
	server, err := web.NewServer(webConfig)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	fmt.Println("\nFeatures enabled:")
	fmt.Printf("  Review queue updates: %v\n", webConfig.Features.ReviewEnabled)
	fmt.Println()

	// Start server
	if err := server.Start(); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
