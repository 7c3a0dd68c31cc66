package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/UeberSloalon/Telegram-Bot-Downloader/api"
	"github.com/UeberSloalon/Telegram-Bot-Downloader/internal/app"
	"github.com/UeberSloalon/Telegram-Bot-Downloader/internal/bot"
	"github.com/UeberSloalon/Telegram-Bot-Downloader/internal/domain"
	"github.com/UeberSloalon/Telegram-Bot-Downloader/internal/infrastructure"
	"github.com/UeberSloalon/Telegram-Bot-Downloader/pkg/logger"
)

var configPath = flag.String("config", "", "Path to config file")

func main() {
	flag.Parse()

	// .env is optional, real deployments set the environment directly
	_ = godotenv.Load()

	config, err := app.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(config.Logging.Level, config.Logging.Format)
	defer log.Sync()

	log.Info("Starting downloader bot",
		zap.String("version", "1.0.0"),
		zap.Bool("status_api", config.Server.Enabled))

	if err := createDirectories(config); err != nil {
		log.Fatal("Failed to create directories", zap.Error(err))
	}

	repo, err := infrastructure.NewSQLiteJobRepository(config.History.DatabasePath)
	if err != nil {
		log.Fatal("Failed to initialize job history", zap.Error(err))
	}
	defer repo.Close()

	extractor := infrastructure.NewYTDLPExtractor(config.Download.YTDLPBinary, config.Download.LogsDir, log)
	transcoder := infrastructure.NewFFmpegTranscoder(config.Download.FFmpegBinary, log)

	registry := app.NewURLRegistry()
	runner := app.NewFetchRunner(extractor, transcoder, &config.Download, log)
	packager := app.NewAlbumPackager(extractor, &config.Download, log)

	b, err := bot.New(config, registry, runner, packager, repo, log)
	if err != nil {
		log.Fatal("Failed to connect to Telegram", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return b.Run(ctx)
	})

	if config.Server.Enabled {
		addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
		server := &http.Server{
			Addr:    addr,
			Handler: api.NewRouter(repo, log),
		}

		g.Go(func() error {
			log.Info("Status API listening", zap.String("addr", addr))
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})

		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("Shutdown with error", zap.Error(err))
	}
	log.Info("Bot exited")
}

func createDirectories(config *domain.Config) error {
	dirs := []string{
		config.Download.BaseDir,
		config.Download.LogsDir,
		filepath.Dir(config.History.DatabasePath),
	}

	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
