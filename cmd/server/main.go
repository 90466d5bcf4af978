// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/gurkanbulca/taskmanagement/internal/config"
	"github.com/gurkanbulca/taskmanagement/internal/database"
	"github.com/gurkanbulca/taskmanagement/internal/handler"
	"github.com/gurkanbulca/taskmanagement/internal/logger"
	"github.com/gurkanbulca/taskmanagement/internal/middleware"
	"github.com/gurkanbulca/taskmanagement/internal/repository"
	"github.com/gurkanbulca/taskmanagement/internal/service"
	"github.com/gurkanbulca/taskmanagement/internal/storage"
	"github.com/gurkanbulca/taskmanagement/internal/validation"
)

// Health service names reported on the gRPC side server.
const (
	healthTagService  = "taskmanagement.TagService"
	healthTaskService = "taskmanagement.TaskService"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Validate configuration
	if err := cfg.ValidateConfig(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Log.Level))

	ctx := context.Background()

	db, err := database.Open(ctx, database.FromAppConfig(cfg.Database))
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Failed to close database connection: %v", err)
		}
	}()

	// Run migrations
	if cfg.Server.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	// Initialize services
	store := repository.NewStore(db)
	files := storage.NewFileStore(cfg.Storage.UploadDir)
	validator := validation.New()

	tagService := service.NewTagService(store, files, validator)
	taskService := service.NewTaskService(store, files, validator)

	router := handler.NewRouter(
		cfg.Server.BasePath,
		handler.NewTagHandler(tagService, cfg.Paging),
		handler.NewTaskHandler(taskService, cfg.Paging, cfg.Storage.MaxUploadSize),
	)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// gRPC side server for health checks
	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(middleware.UnaryLogging()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(healthTagService, grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(healthTaskService, grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING) // For overall health

	// Register reflection for development
	if cfg.Server.EnableReflection {
		reflection.Register(grpcServer)
		log.Println("gRPC reflection enabled (disable in production)")
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.Server.GRPCPort))
	if err != nil {
		log.Fatalf("Failed to listen: %v", err)
	}

	go func() {
		log.Printf("gRPC health server listening on port %s", cfg.Server.GRPCPort)
		if err := grpcServer.Serve(listener); err != nil {
			log.Fatalf("Failed to serve gRPC: %v", err)
		}
	}()

	go func() {
		log.Printf("HTTP server listening on port %s (environment: %s)", cfg.Server.HTTPPort, cfg.Server.Environment)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to serve HTTP: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	healthServer.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}
	grpcServer.GracefulStop()
	log.Println("Server shutdown complete")
}
