// File: cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/iyunix/go-visionai/internal/config"
	"github.com/iyunix/go-visionai/internal/domain"
	"github.com/iyunix/go-visionai/internal/services/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.NewLogger("visionai")

	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{})
	if err != nil {
		log.Fatalf("DB Error: %v", err)
	}

	if err := db.AutoMigrate(&domain.Project{}, &domain.Chat{}, &domain.Message{}); err != nil {
		log.Fatalf("DB Migration Error: %v", err)
	}

	app, err := InitializeApplication(cfg, logger, db)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize application: %v", err)
	}
	defer app.Limiter.Close()

	// --- Server Configuration ---
	port := ":8080"
	if cfg.ServerPort != "" {
		port = ":" + cfg.ServerPort
	}
	srv := &http.Server{
		Addr:              port,
		Handler:           app.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// --- Startup Logging ---
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("==================================================")
	log.Printf("👁️ Vision AI - Multimodal Chat Assistant")
	log.Printf("==================================================")
	log.Printf("🚀 Server starting on port %s", port)
	log.Printf("🌐 Local access: http://localhost%s", port)
	log.Printf("🧠 Model: %s (%d keys)", cfg.LLMModel, len(cfg.LLMAPIKeys))
	log.Printf("🛠️ Tools: %v", app.Tools.Names())
	log.Printf("🔄 Server ready to accept connections!")
	log.Printf("==================================================")

	// --- Start Server in Goroutine ---
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server startup failed: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("🛑 Shutting down server gracefully...")
	// Long enough for in-flight generations to finish and persist.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.GenerationTimeout+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server shutdown failed: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
