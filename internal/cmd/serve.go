package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zafrem/data-detector/batch"
	"github.com/zafrem/data-detector/detect"
	"github.com/zafrem/data-detector/internal/config"
	"github.com/zafrem/data-detector/internal/server"
	"github.com/zafrem/data-detector/rules"
	"github.com/zafrem/data-detector/token"
)

var (
	serveListen  string
	serveWatch   bool
	serveAPIKeys []string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and websocket API server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", config.DefaultListen, "listen address (host:port)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "reload rules when pattern sources change")
	serveCmd.Flags().StringSliceVar(&serveAPIKeys, "api-key", nil, "API key clients must present (repeatable; default open)")

	_ = viper.BindPFlag(config.KeyListen, serveCmd.Flags().Lookup("listen"))
	_ = viper.BindPFlag(config.KeyPatternWatch, serveCmd.Flags().Lookup("watch"))
	_ = viper.BindPFlag(config.KeyAPIKeys, serveCmd.Flags().Lookup("api-key"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if len(cfg.APIKeys) == 0 {
		log.Warn().Msg("no API keys configured, all endpoints are open. Set server.api_keys for production.")
	}

	reg, err := buildRegistry(cfg)
	if err != nil {
		return fmt.Errorf("loading rules: %w", err)
	}
	store := rules.NewStore(reg, cfg.PatternPaths...)

	engineOpts, err := engineOptions(cfg)
	if err != nil {
		return err
	}
	// The engine reads through the store, so watched reloads reach running
	// scans without a restart.
	engine, err := detect.New(store, engineOpts...)
	if err != nil {
		return fmt.Errorf("building engine: %w", err)
	}

	if cfg.PatternWatch {
		if err := store.Watch(ctx); err != nil {
			return fmt.Errorf("watching rule sources: %w", err)
		}
	}

	tokenizer, err := token.New(engine)
	if err != nil {
		return fmt.Errorf("building tokenizer: %w", err)
	}

	var scannerOpts []batch.Option
	if cfg.Workers > 0 {
		scannerOpts = append(scannerOpts, batch.WithWorkers(cfg.Workers))
	}
	scanner, err := batch.New(engine, scannerOpts...)
	if err != nil {
		return fmt.Errorf("building scanner: %w", err)
	}

	opts := []server.Option{
		server.WithStore(store),
		server.WithTokenizer(tokenizer),
		server.WithScanner(scanner),
		server.WithVersion(resolvedVersion()),
	}
	if len(cfg.APIKeys) > 0 {
		opts = append(opts, server.WithAPIKeys(cfg.APIKeys...))
	}
	if cfg.RateLimitRPS > 0 {
		opts = append(opts, server.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitRPS))
	}
	if len(cfg.CORSOrigins) > 0 {
		opts = append(opts, server.WithCORSOrigins(cfg.CORSOrigins))
	}

	srv := server.NewServer(engine, opts...)

	httpServer := &http.Server{
		Addr:    cfg.Listen,
		Handler: srv.Routes(),
		// Websocket sessions inherit the write deadline, so it must far
		// exceed the per-request timeout the REST routes carry.
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	log.Info().
		Str("addr", cfg.Listen).
		Int("rules", reg.Len()).
		Bool("watch", cfg.PatternWatch).
		Bool("auth", len(cfg.APIKeys) > 0).
		Float64("rate_limit_rps", cfg.RateLimitRPS).
		Msg("datadetector_serve_started")

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown_signal_received")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("server_stopped")
	return nil
}
