package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"actionapi/internal/config"
	"actionapi/internal/handlers"
	"actionapi/internal/labels"
	"actionapi/internal/logging"
	"actionapi/internal/model"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the config file")
	releaseMode := flag.Bool("release", false, "Run gin in release mode")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logging.Setup(cfg)

	if *releaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// Scratch files are temporary, so the directory may not survive a
	// reboot when it lives under /tmp.
	if _, err := os.Stat(cfg.Upload.ScratchDir); os.IsNotExist(err) {
		if err := os.MkdirAll(cfg.Upload.ScratchDir, 0755); err != nil {
			log.Fatalf("Failed to create scratch directory: %v", err)
		}
	}

	store, err := labels.Load(cfg.Model.LabelsPath)
	if err != nil {
		log.Fatalf("Failed to load action classes: %v", err)
	}
	log.Infof("Loaded %d action classes from %s", store.Len(), cfg.Model.LabelsPath)

	recognizer, err := model.NewRecognizer(model.Options{
		ModelPath:   cfg.Model.Path,
		ImageSize:   cfg.Model.ImageSize,
		Sessions:    cfg.Model.Sessions,
		LibraryPath: cfg.Model.LibraryPath,
	}, store)
	if err != nil {
		log.Fatalf("Failed to initialize model: %v", err)
	}
	defer recognizer.Close()

	router := gin.New()
	router.Use(gin.Recovery())
	router.MaxMultipartMemory = cfg.Upload.MaxSizeMB << 20

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}
	router.Use(cors.New(corsConfig))

	handler := handlers.NewHandler(recognizer, cfg.Upload.ScratchDir, cfg.Upload.MaxSizeMB)
	handler.Register(router)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Http.Port),
		Handler: router,
	}

	go func() {
		log.Infof("Server starting on port %d", cfg.Http.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	log.Info("Exiting")
}
