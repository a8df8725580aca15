package web

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"

	"github.com/mr-pipeline/internal/web/handlers"
	"github.com/mr-pipeline/internal/web/middleware"
)

// Server represents the web server
type Server struct {
	config     *Config
	db         *sql.DB
	httpServer *http.Server
	router     *mux.Router
}

// NewServer creates a new web server instance
func NewServer(config *Config) (*Server, error) {
	// Initialize database connection
	db, err := sql.Open("postgres", config.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure database connection pool
	db.SetMaxOpenConns(config.Database.MaxConnections)
	db.SetMaxIdleConns(config.Database.MaxConnections / 2)
	db.SetConnMaxLifetime(time.Hour)

	// Test database connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Create server instance
	server := &Server{
		config: config,
		db:     db,
	}

	// Setup routes
	server.setupRoutes()

	// Create HTTP server
	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port),
		Handler:      server.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router = mux.NewRouter()

	// Convert config for handlers (to avoid import cycle)
	handlerConfig := &handlers.Config{}
	handlerConfig.Features.ReviewEnabled = s.config.Features.ReviewEnabled

	// Create handlers with database access
	apiHandler := &handlers.APIHandler{DB: s.db, Config: handlerConfig}
	projectsHandler := &handlers.ProjectsHandler{DB: s.db, Config: handlerConfig}
	lineageHandler := &handlers.LineageHandler{DB: s.db, Config: handlerConfig}

	// API routes
	api := s.router.PathPrefix("/api").Subrouter()

	// Core data endpoints
	api.HandleFunc("/projects", projectsHandler.ListProjects).Methods("GET")
	api.HandleFunc("/projects/{id:[0-9]+}", projectsHandler.GetProject).Methods("GET")

	// Lineage reporting endpoints
	api.HandleFunc("/lineage/quality", lineageHandler.GetQuality).Methods("GET")
	api.HandleFunc("/lineage/coverage", lineageHandler.GetCoverage).Methods("GET")
	api.HandleFunc("/lineage/sources", lineageHandler.GetSources).Methods("GET")
	api.HandleFunc("/lineage/record", lineageHandler.GetRecordLineage).Methods("GET")

	// Review endpoints (if features enabled)
	api.HandleFunc("/review", lineageHandler.GetReviewQueue).Methods("GET")
	if s.config.Features.ReviewEnabled {
		api.HandleFunc("/review/confidence", lineageHandler.UpdateConfidence).Methods("PUT")
	}

	// Statistics endpoint
	api.HandleFunc("/stats", apiHandler.GetStats).Methods("GET")

	// Static file serving
	staticDir := "internal/web/static"
	if _, err := os.Stat(staticDir); err == nil {
		s.router.PathPrefix("/").Handler(http.FileServer(http.Dir(staticDir + "/")))
	}

	// Apply middleware
	s.router.Use(middleware.CORS())
	s.router.Use(middleware.RequestLogging())
}

// Start starts the web server
func (s *Server) Start() error {
	// Setup graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Start server in background
	go func() {
		fmt.Printf("Starting server on http://%s\n", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("Server error: %v\n", err)
		}
	}()

	// Wait for shutdown signal
	<-stop
	fmt.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := s.httpServer.Shutdown(ctx); err != nil {
		fmt.Printf("Server shutdown error: %v\n", err)
	}

	// Close database connection
	if err := s.db.Close(); err != nil {
		fmt.Printf("Database close error: %v\n", err)
	}

	fmt.Println("Server stopped")
	return nil
}
