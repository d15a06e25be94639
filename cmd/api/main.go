package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"fashionmuse/internal/adapter/repo"
	"fashionmuse/internal/http/handlers"
	"fashionmuse/internal/http/httpapi"
	"fashionmuse/internal/infra"
	"fashionmuse/internal/infra/geoip"
	"fashionmuse/internal/middleware"
	"fashionmuse/internal/orchestrator"
	"fashionmuse/internal/status"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	runner := infra.NewSQLRunner(dbpool, logger)
	ledger := repo.NewLedgerRepository(runner)
	jobs := repo.NewJobRepository(runner)

	geoDB, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip database unavailable, country resolution disabled")
	}
	var lookup middleware.CountryLookup
	if geoDB != nil {
		defer geoDB.Close()
		lookup = geoDB.Country
	}

	app := &handlers.App{
		Config:       cfg,
		Logger:       logger,
		Ledger:       ledger,
		Orchestrator: orchestrator.New(ledger, jobs, logger),
		Status:       status.NewReader(jobs),
	}

	server := infra.NewHTTPServer(cfg, httpapi.NewRouter(app, lookup))

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
