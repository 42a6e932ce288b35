package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gridrace/api/internal/config"
	"github.com/gridrace/api/internal/handler"
	"github.com/gridrace/api/internal/logger"
	"github.com/gridrace/api/internal/middleware"
	"github.com/gridrace/api/internal/repository/postgres"
	redisrepo "github.com/gridrace/api/internal/repository/redis"
	"github.com/gridrace/api/internal/service"
)

func main() {
	logger.Init()
	cfg := config.Load()
	log.Info().Str("databaseURL", cfg.DatabaseURL).Msg("Config loaded")

	// Database
	db, err := postgres.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Database connection failed")
	}
	defer db.Close()

	// Redis
	redisClient, err := redisrepo.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Redis connection failed")
	}
	defer redisClient.Close()

	// Repos
	raceRepo := postgres.NewRaceRepo(db)

	// WebSocket hub
	wsHub := handler.NewHub()

	// Services
	raceSvc := service.NewRaceService(raceRepo, redisClient, wsHub)

	// Handlers
	raceHandler := handler.NewRaceHandler(raceSvc)
	wsHandler := handler.NewWSHandler(wsHub)

	// Router
	mux := http.NewServeMux()

	// Health
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	api := http.NewServeMux()
	api.HandleFunc("GET /tracks", raceHandler.ListTracks)
	api.HandleFunc("POST /races", raceHandler.CreateRace)
	api.HandleFunc("GET /races", raceHandler.ListRaces)
	api.HandleFunc("GET /races/{id}", raceHandler.GetRace)
	api.HandleFunc("GET /races/{id}/turns", raceHandler.GetRaceTurns)
	api.HandleFunc("GET /races/{id}/live", raceHandler.GetLiveState)
	api.HandleFunc("GET /races/{id}/decision", raceHandler.GetLatestDecision)
	api.HandleFunc("POST /races/{id}/cancel", raceHandler.CancelRace)

	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", api))

	// WebSocket
	mux.HandleFunc("GET /api/v1/ws", wsHandler.ServeWS)

	// Apply global middleware
	root := middleware.Chain(mux, middleware.Logger, middleware.CORS(cfg.AllowedOrigins), middleware.JSON)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server")

	raceSvc.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("Server stopped")
}
