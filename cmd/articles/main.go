package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"article-catalog/internal/config"
	"article-catalog/internal/server"
	"article-catalog/internal/service"
	"article-catalog/internal/store"
	"article-catalog/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	envFile   string
	overrides config.Config
)

var rootCmd = &cobra.Command{
	Use:          "articles",
	Short:        "articles - keyed article catalogue over HTTP",
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Open the article store and serve the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Read(envFile)
		if err != nil {
			return err
		}
		applyOverrides(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}

		baseLogger, err := logger.New(cfg.Log.Level, cfg.Log.Development)
		if err != nil {
			return err
		}
		defer func() { _ = baseLogger.Sync() }()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		st, err := store.Open(ctx, cfg.Store, logger.Named(baseLogger, "store"))
		if err != nil {
			baseLogger.Error("Failed to init store", zap.Error(err))
			return err
		}
		defer func() {
			if err := st.Close(); err != nil {
				baseLogger.Error("failed to close store", zap.Error(err))
			}
		}()

		svc := service.New(st, logger.Named(baseLogger, "svc.articles"))
		srv := server.New(svc, logger.Named(baseLogger, "server"))

		errCh := make(chan error, 1)
		go func() {
			if err := srv.Start(cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				baseLogger.Error("http server crashed", zap.Error(err))
				return err
			}
		case <-ctx.Done():
			baseLogger.Info("Shutting down...")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			baseLogger.Error("graceful shutdown failed", zap.Error(err))
			return err
		}

		baseLogger.Info("Goodbye!")
		return nil
	},
}

// applyOverrides copies flags the user actually set over the loaded config.
func applyOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Server.Port = overrides.Server.Port
	}
	if flags.Changed("store") {
		cfg.Store.Driver = overrides.Store.Driver
	}
	if flags.Changed("badger") {
		cfg.Store.BadgerPath = overrides.Store.BadgerPath
	}
	if flags.Changed("redis") {
		cfg.Store.RedisAddr = overrides.Store.RedisAddr
	}
	if flags.Changed("postgres-dsn") {
		cfg.Store.PostgresDSN = overrides.Store.PostgresDSN
	}
	if flags.Changed("mongo-uri") {
		cfg.Store.MongoURI = overrides.Store.MongoURI
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = overrides.Log.Level
	}
	if flags.Changed("dev") {
		cfg.Log.Development = overrides.Log.Development
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Path to a .env file (default: ./.env if present)")

	f := serveCmd.Flags()
	f.StringVar(&overrides.Server.Port, "port", "8080", "HTTP port")
	f.StringVar(&overrides.Store.Driver, "store", config.DriverBadger, "Store driver: badger, redis, postgres, mongo, memory")
	f.StringVar(&overrides.Store.BadgerPath, "badger", "./badger-data", "Path to BadgerDB data directory")
	f.StringVar(&overrides.Store.RedisAddr, "redis", "localhost:6379", "Address of Redis server")
	f.StringVar(&overrides.Store.PostgresDSN, "postgres-dsn", "", "Postgres DSN")
	f.StringVar(&overrides.Store.MongoURI, "mongo-uri", "mongodb://localhost:27017", "MongoDB connection URI")
	f.StringVar(&overrides.Log.Level, "log-level", "info", "Log level")
	f.BoolVar(&overrides.Log.Development, "dev", false, "Human-readable development logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(newArticleCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
