package main

import (
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"sqladvisor-go/config"
	"sqladvisor-go/internal/fetcher"
	"sqladvisor-go/internal/handler"
	"sqladvisor-go/internal/history"
	"sqladvisor-go/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	// Augmentation is a capability, not a requirement: without a key the
	// static pass alone serves every request.
	var augmenter service.Augmenter
	if cfg.OpenRouterKey != "" {
		augmenter = fetcher.NewOpenRouterClient(cfg.OpenRouterKey, cfg.OpenRouterModel)
	} else {
		log.Println("Warning: OPENROUTER_API_KEY not configured, advisory augmentation disabled")
	}

	var store history.Store
	if cfg.DatabaseURL != "" {
		pgStore, err := history.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			log.Printf("Warning: failed to connect to PostgreSQL, using memory history: %v", err)
			store = history.NewMemoryStore()
		} else {
			log.Println("Using PostgreSQL history store")
			store = pgStore
		}
	} else {
		log.Println("DATABASE_URL not configured, using memory history")
		store = history.NewMemoryStore()
	}

	advisor := service.NewAdvisor(augmenter, store, time.Duration(cfg.AugmentTimeout)*time.Second)

	analyzeHandler := handler.NewAnalyzeHandler(advisor)
	historyHandler := handler.NewHistoryHandler(store)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", analyzeHandler.Health)
	mux.HandleFunc("/analyze", analyzeHandler.Analyze)
	mux.HandleFunc("/history", historyHandler.Recent)

	corsHandler := corsMiddleware(mux)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, corsHandler); err != nil {
		log.Fatal(err)
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
