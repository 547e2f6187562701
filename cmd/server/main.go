package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/topicflow/topicflow-backend/internal/config"
	"github.com/topicflow/topicflow-backend/internal/db"
	"github.com/topicflow/topicflow-backend/internal/handlers"
	"github.com/topicflow/topicflow-backend/internal/middleware"
	"github.com/topicflow/topicflow-backend/internal/pkg/envutil"
	"github.com/topicflow/topicflow-backend/internal/pkg/logger"
	"github.com/topicflow/topicflow-backend/internal/repos"
	"github.com/topicflow/topicflow-backend/internal/server"
	"github.com/topicflow/topicflow-backend/internal/services"
)

func main() {
	// Config
	cfgPath := envutil.String("CONFIG_PATH", "config.yaml")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Logger
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// SQLite
	sqliteService, err := db.NewSQLiteService(cfg.DBPath, log)
	if err != nil {
		log.Error("SQLite init failed", "error", err)
		os.Exit(1)
	}
	if err := sqliteService.AutoMigrateAll(); err != nil {
		log.Error("SQLite auto migration failed", "error", err)
		os.Exit(1)
	}
	theDB := sqliteService.DB()
	if err := sqliteService.EnsureDefaultGraph(cfg.ScraperDBPath); err != nil {
		log.Error("Default graph setup failed", "error", err)
		os.Exit(1)
	}

	// Repos
	log.Info("Setting up Repos from main...")
	graphRepo := repos.NewGraphRepo(theDB, log)
	courseRepo := repos.NewCourseRepo(theDB, log)
	topicRepo := repos.NewTopicRepo(theDB, log)
	edgeRepo := repos.NewEdgeRepo(theDB, log)

	// Services
	log.Info("Setting up Services from main...")
	graphService := services.NewGraphService(theDB, log, graphRepo, courseRepo, topicRepo, edgeRepo)
	courseService := services.NewCourseService(theDB, log, graphRepo, courseRepo)
	topicService := services.NewTopicService(theDB, log, graphRepo, courseRepo, topicRepo, edgeRepo)
	edgeService := services.NewEdgeService(theDB, log, graphRepo, topicRepo, edgeRepo)
	batchService := services.NewBatchService(theDB, log, graphRepo, courseRepo, topicRepo, edgeRepo)
	legacyService := services.NewLegacyService(theDB, log, cfg.SnapshotPath, graphRepo, courseRepo, topicRepo, edgeRepo)

	// Handlers
	log.Info("Setting up handlers from main...")
	graphHandler := handlers.NewGraphHandler(log, graphService, batchService)
	courseHandler := handlers.NewCourseHandler(log, courseService)
	topicHandler := handlers.NewTopicHandler(log, topicService)
	edgeHandler := handlers.NewEdgeHandler(log, edgeService)
	legacyHandler := handlers.NewLegacyHandler(log, legacyService)

	// Middleware
	requestLog := middleware.NewRequestLogMiddleware(log)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		CORSOrigins:   cfg.CORSOrigins,
		RequestLog:    requestLog,
		GraphHandler:  graphHandler,
		CourseHandler: courseHandler,
		TopicHandler:  topicHandler,
		EdgeHandler:   edgeHandler,
		LegacyHandler: legacyHandler,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Server failed", "error", err)
	}
	if err := sqliteService.Close(); err != nil {
		log.Warn("Database close failed", "error", err)
	}
}
