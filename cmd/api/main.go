package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fieldvoice/fieldvoicego/internal/config"
	"github.com/fieldvoice/fieldvoicego/internal/database"
	"github.com/fieldvoice/fieldvoicego/internal/handlers"
	"github.com/fieldvoice/fieldvoicego/internal/logging"
	"github.com/fieldvoice/fieldvoicego/internal/models"
	"github.com/fieldvoice/fieldvoicego/internal/pdf"
	"github.com/fieldvoice/fieldvoicego/internal/refine"
	"github.com/fieldvoice/fieldvoicego/internal/reports"
	"github.com/fieldvoice/fieldvoicego/internal/store"
	"github.com/fieldvoice/fieldvoicego/internal/sync"
	"github.com/fieldvoice/fieldvoicego/internal/websocket"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logging.Init(cfg.NodeEnv); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logging.Close()

	// 2. Connect the remote report store (embedded vs external is
	// detected automatically)
	db, err := database.Connect(cfg.Database)
	if err != nil {
		logging.L().Fatalw("Failed to connect to database", "error", err)
	}
	// Note: db.Close() is called manually in the shutdown handler below

	// 3. Auto-Migrate Schema (Critical for Zero-Config)
	logging.L().Info("🚀 Synchronizing database schema...")
	err = db.AutoMigrate(
		&models.Project{},
		&models.Contractor{},
		&models.ProjectSetItem{},
		&models.Report{},
		&models.AIRequest{},
		&models.AIResponse{},
	)
	if err != nil {
		logging.L().Warnw("⚠️ Migration warning", "error", err)
	} else {
		logging.L().Info("✅ Schema synchronized successfully")
	}

	// 4. Open the local draft/queue store
	localStore, err := store.Open(cfg.Local.Path)
	if err != nil {
		logging.L().Fatalw("Failed to open local store", "path", cfg.Local.Path, "error", err)
	}
	saver := store.NewDebouncedSaver(localStore, cfg.Local.DebounceInterval)

	// 5. Wire the refinement backend
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var refiner refine.Refiner
	switch cfg.Refine.Backend {
	case "gemini":
		gr, err := refine.NewGeminiRefiner(ctx, cfg.Refine.GeminiAPIKey, cfg.Refine.GeminiModel, cfg.Refine.Timeout)
		if err != nil {
			logging.L().Fatalw("Failed to init Gemini refiner", "error", err)
		}
		defer gr.Close()
		refiner = gr
	default:
		refiner = refine.NewWebhookRefiner(cfg.Refine.WebhookURL, cfg.Refine.Timeout)
	}
	logging.L().Infow("🤖 Refinement backend ready", "backend", cfg.Refine.Backend)

	// 6. Sync engine, connectivity monitor, queue drainer
	repo := reports.NewRepository(db.DB)
	index := reports.NewSummaryIndex(repo, 30*time.Second)
	hub := websocket.NewHub()
	go hub.Run()

	monitor := sync.NewConnectionMonitor(cfg.Sync.ProbeURL, cfg.Sync.ProbeInterval, cfg.Sync.ProbeTimeout)
	engine := sync.NewEngine(localStore, repo, index, refiner, monitor, hub, cfg.InspectorName)
	drainer := sync.NewDrainer(engine, localStore)

	// Drain immediately when connectivity comes back rather than
	// waiting out the interval.
	monitor.OnChange(func(online bool) {
		hub.BroadcastConnectivity(online)
		if online {
			go drainer.Drain(ctx)
		}
	})
	monitor.Start()
	drainer.Start(ctx, cfg.Sync.DrainInterval)

	// 7. HTTP router
	router := handlers.NewRouter(handlers.Deps{
		Config:  cfg,
		Store:   localStore,
		Saver:   saver,
		Repo:    repo,
		Index:   index,
		Engine:  engine,
		Drainer: drainer,
		Monitor: monitor,
		Hub:     hub,
		PDFGen:  pdf.NewGenerator(cfg.BaseURL),
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Channel to listen for shutdown signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		logging.L().Infow("🚀 Server starting", "port", cfg.Port, "inspector", cfg.InspectorName)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.L().Fatalw("Failed to start server", "error", err)
		}
	}()

	sig := <-shutdown
	logging.L().Warnw("⚠️ Received signal, shutting down gracefully", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.L().Errorw("HTTP server shutdown error", "error", err)
	}

	drainer.Stop()
	monitor.Stop()
	cancel()

	if err := localStore.Close(); err != nil {
		logging.L().Errorw("Local store close error", "error", err)
	}

	logging.L().Info("🛑 Closing database connection...")
	if err := db.Close(); err != nil {
		logging.L().Errorw("Database close error", "error", err)
	}

	logging.L().Info("✅ Shutdown complete")
}
