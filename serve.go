package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/spf13/cobra"
	"github.com/username/homedash/backend/src/board"
	"github.com/username/homedash/backend/src/config"
	"github.com/username/homedash/backend/src/database"
	"github.com/username/homedash/backend/src/handlers"
	"github.com/username/homedash/backend/src/logger"
	"github.com/username/homedash/backend/src/security"
	"github.com/username/homedash/backend/src/services"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd.Context())
	},
}

func runServer(ctx context.Context) error {
	cfg := config.Cfg
	logger.L.Info("Homedash backend server starting...")

	logger.L.Info("Initializing database...", "path", cfg.DatabasePath)
	db, err := database.InitDB(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	seed, err := board.LoadSeed(cfg.BoardSeedPath)
	if err != nil {
		return err
	}
	boards := services.NewBoardService(seed, cfg.BoardSessionTTL)

	calendarTokens := services.NewDBTokenStore(db)
	calendar := services.NewCalendarServiceFromConfig(cfg, calendarTokens)
	if !calendar.Configured() {
		logger.L.Warn("Google Calendar credentials missing, calendar sync disabled")
	}

	router := handlers.NewRouter(handlers.Deps{
		Config:         cfg,
		AuthService:    security.NewAuthService(cfg.JWTSecret, cfg.AccessTokenExpiry),
		MFAService:     services.NewMFAService(),
		PriceService:   services.NewPriceServiceFromConfig(cfg),
		FXService:      services.NewExchangeRateServiceFromConfig(cfg),
		BoardService:   boards,
		Calendar:       calendar,
		CalendarTokens: calendarTokens,
		StatsCache:     cache.New(5*time.Minute, 10*time.Minute),
	})

	serverAddr := ":" + cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.L.Info("Server starting", "address", serverAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.L.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.L.Info("Server stopped")
	return nil
}
