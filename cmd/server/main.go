package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"reelist/config"
	"reelist/handlers"
	"reelist/internal/database"
	"reelist/services/auth"
	"reelist/services/tmdb"
	"reelist/services/watchlist"
	"reelist/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] configuration error: %v", err)
	}

	setupLogging(cfg.LogPath)

	db, err := database.NewDB(database.Config{DatabasePath: cfg.DatabasePath})
	if err != nil {
		log.Fatalf("[main] database error: %v", err)
	}
	defer db.Close()

	authService, err := auth.NewService(db.Users, cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatalf("[main] auth error: %v", err)
	}
	watchlistService := watchlist.NewService(db.Users)

	tmdbClient := tmdb.NewClient(cfg.TMDBAPIKey)
	tmdbClient.PageDelay = cfg.PageDelay
	if cfg.TMDBBaseURL != "" {
		tmdbClient.BaseURL = cfg.TMDBBaseURL
	}

	router := utils.NewRouter(db)
	router.Use(handlers.RequestLogger)
	handlers.RegisterRoutes(router,
		handlers.NewUsersHandler(authService, db.Users),
		handlers.NewWatchlistHandler(watchlistService),
		handlers.NewMoviesHandler(tmdbClient),
		authService,
	)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server.listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	slog.Info("server.shutting_down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server.shutdown_failed", "error", err)
	}
}

// setupLogging routes slog to stdout, with file rotation when a log
// path is configured.
func setupLogging(logPath string) {
	var w io.Writer = os.Stdout
	if logPath != "" {
		w = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		})
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, nil)))
	log.SetOutput(w)
}
