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

	"go.uber.org/zap"

	"capsulex-blink/blink"
	"capsulex-blink/capsuleapi"
	"capsulex-blink/capsuleprogram"
	"capsulex-blink/config"
	"capsulex-blink/logging"
	"capsulex-blink/metrics"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "capsulex-blink: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	programID := cfg.ProgramPublicKey()
	if err := capsuleprogram.SelfCheck(programID); err != nil {
		return fmt.Errorf("submit_guess interface check: %w", err)
	}

	// Initialize Solana client
	solClient := capsuleprogram.NewClient(cfg.SolanaRPCURL, cfg.SolanaCommitment)
	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := solClient.HealthCheck(healthCtx); err != nil {
		logger.Warn("Solana health check failed", zap.String("rpc", cfg.SolanaRPCURL), zap.Error(err))
	} else {
		logger.Info(fmt.Sprintf("✅ Solana %s connected", cfg.SolanaNetwork))
	}
	cancel()

	m := metrics.New()
	assembler := capsuleprogram.NewAssembler(programID, m.InstrumentBlockhashSource(solClient))

	backend := capsuleapi.NewClient(capsuleapi.Config{
		BaseURL: cfg.BackendURL,
		Timeout: cfg.BackendTimeout,
	}, logger)

	formatter := blink.NewFormatter(blink.FormatterConfig{
		BlinkBaseURL: cfg.BlinkBaseURL,
		IconURL:      cfg.IconURL,
		BlockchainID: cfg.BlockchainID(),
	})
	service := blink.NewService(backend, assembler, formatter, logger, blink.WithMetrics(m))

	limiter := blink.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m, logger)
	limiter.TrustProxy = cfg.TrustProxy
	limiter.StartCleanup(ctx, 5*time.Minute)

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: blink.NewRouter(blink.RouterConfig{
			Handler:      blink.NewHandler(service, logger),
			Metrics:      m,
			RateLimiter:  limiter,
			BlockchainID: cfg.BlockchainID(),
			Logger:       logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("🚀 Server starting on port %s", cfg.Port),
			zap.String("program_id", programID.String()),
			zap.String("backend", cfg.BackendURL),
			zap.String("blockchain_id", cfg.BlockchainID()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
