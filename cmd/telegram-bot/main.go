package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"family-meal-planner/internal/config"
	"family-meal-planner/internal/database"
	"family-meal-planner/internal/importer"
	"family-meal-planner/internal/llm"
	"family-meal-planner/internal/metrics"
	"family-meal-planner/internal/recipe"
	"family-meal-planner/internal/settings"
	"family-meal-planner/internal/shopping"
	"family-meal-planner/internal/telegram"
	"family-meal-planner/internal/weekly"
)

func main() {
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	recipeRepo := recipe.NewRepository(db.SQL)
	settingsRepo := settings.NewRepository(db.SQL)
	metricsStore := metrics.NewStore(db.SQL)

	var textGen llm.TextGenerator
	if cfg.GeminiAPIKey != "" {
		gen, closeGen, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatalf("Failed to create Gemini client: %v", err)
		}
		defer closeGen()
		textGen = gen
	} else {
		log.Println("GEMINI_API_KEY not set; AI features run in fallback mode")
	}

	engine := weekly.NewEngine(
		weekly.NewStore(db.SQL),
		recipeRepo,
		weekly.WithPreferencePolicy(settings.NewTagPreferencePolicy(settingsRepo, recipeRepo)),
	)

	shopService := shopping.NewService(engine, settingsRepo, shopping.NewConsolidator(textGen, metricsStore))
	importService := importer.NewService(recipeRepo, settingsRepo, textGen, metricsStore)

	bot, err := telegram.NewBot(cfg, engine, recipeRepo, settingsRepo, shopService, importService, metricsStore)
	if err != nil {
		log.Fatalf("Failed to initialize Telegram Bot: %v", err)
	}

	bot.RegisterHandlers()

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: nil,
	}

	go func() {
		log.Printf("Telegram Bot Server listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
