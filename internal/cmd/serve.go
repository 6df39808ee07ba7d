package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/prooflens/prooflens/internal/analysis"
	"github.com/prooflens/prooflens/internal/analysis/openai"
	"github.com/prooflens/prooflens/internal/config"
	"github.com/prooflens/prooflens/internal/observability"
	"github.com/prooflens/prooflens/internal/ratelimit"
	"github.com/prooflens/prooflens/internal/ratelimit/store"
	"github.com/prooflens/prooflens/internal/server"
	"github.com/prooflens/prooflens/internal/server/handlers"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP gateway",
	Long: `Start the HTTP gateway with graceful shutdown support.

Signal Handling:
  • Ctrl+C (SIGINT) or SIGTERM: Graceful shutdown

The server drains in-flight requests and flushes logs on shutdown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		observability.InitServerLogger("prooflens", cfg.Logging.Level)
		logger := observability.ServerLogger

		logger.Info("Initializing gateway",
			zap.String("version", versionInfo.Version),
			zap.String("host", cfg.Server.Host),
			zap.Int("port", cfg.Server.Port),
			zap.String("redis_addr", cfg.Redis.Addr),
			zap.Bool("fail_open", cfg.RateLimit.FailOpen))

		// Sliding-window store
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = redisClient.Close() }()

		windowStore := store.NewRedis(redisClient)
		limiter := ratelimit.New(windowStore, ratelimit.WithFailOpen(cfg.RateLimit.FailOpen))

		if err := windowStore.CheckHealth(cmd.Context()); err != nil {
			// The gateway still starts: the limiter's fail direction covers
			// a store that comes up later.
			logger.Warn("Window store unreachable at startup", zap.Error(err))
		}

		// Upstream analysis client
		upstream := openai.NewClient(cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey)
		upstream.Model = cfg.OpenAI.Model
		upstream.Timeout = cfg.OpenAI.Timeout
		upstream.MaxOutputTokens = cfg.OpenAI.MaxOutputTokens
		analyzer := analysis.NewAnalyzer(upstream)

		if cfg.OpenAI.APIKey == "" {
			logger.Warn("OPENAI_API_KEY is not set; analysis requests will fail")
		}

		// Health manager
		hm := handlers.NewHealthManager(versionInfo.Version)
		hm.RegisterChecker("window_store", windowStore)

		handlers.SetVersionInfo(versionInfo.Version, versionInfo.Commit, versionInfo.BuildDate)

		srv := server.New(cfg.Server.Host, cfg.Server.Port, server.Dependencies{
			Limiter:  limiter,
			Analyzer: analyzer,
			Health:   hm,
			AnalyzePolicy: ratelimit.Policy{
				Limit:  cfg.RateLimit.Analyze.Limit,
				Window: cfg.RateLimit.Analyze.Window,
			},
			GreetingPolicy: ratelimit.Policy{
				Limit:  cfg.RateLimit.Greeting.Limit,
				Window: cfg.RateLimit.Greeting.Window,
			},
			MetricsEnabled: cfg.Metrics.Enabled,
			ReadTimeout:    cfg.Server.ReadTimeout,
			WriteTimeout:   cfg.Server.WriteTimeout,
			IdleTimeout:    cfg.Server.IdleTimeout,
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Server failed", zap.Error(err))
				return err
			}
			return nil
		case <-ctx.Done():
		}

		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown failed", zap.Error(err))
			return err
		}

		logger.Info("Server stopped")
		_ = logger.Sync()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
