package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mrithyunjay/write-hand/internal/fontgen"
	"github.com/mrithyunjay/write-hand/internal/http/handlers"
	"github.com/mrithyunjay/write-hand/internal/http/httpapi"
	"github.com/mrithyunjay/write-hand/internal/infra"
	"github.com/mrithyunjay/write-hand/internal/storage"
	"github.com/mrithyunjay/write-hand/internal/upload"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	uploads, err := upload.NewStore(cfg.UploadDir, cfg.AllowedExts)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare upload directory")
	}
	artifacts, err := storage.NewArtifactStore(cfg.OutputDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare output directory")
	}

	runner := &fontgen.ExecRunner{Bin: cfg.HandwriteBin, Timeout: cfg.ToolTimeout}
	service := fontgen.NewService(logger, uploads, artifacts, runner)

	app := handlers.NewApp(logger, cfg, service)
	router := httpapi.NewRouter(app)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("write-hand listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
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
