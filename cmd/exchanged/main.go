// Command exchanged runs one continuous double auction exchange instance:
// a TCP session server driving a single-owner matching engine for one
// symbol, with Prometheus metrics and a health endpoint served over HTTP.
// Wiring follows the teacher's cmd/orders/main.go shape (zap logger, plain
// net.Listen, a thin wrapper main) generalized from a single gRPC service
// registration to the exchange's full component graph.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abdoElHodaky/cda-exchange/internal/config"
	"github.com/abdoElHodaky/cda-exchange/internal/journal"
	"github.com/abdoElHodaky/cda-exchange/internal/matching"
	"github.com/abdoElHodaky/cda-exchange/internal/session"
	"github.com/abdoElHodaky/cda-exchange/internal/timer"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(os.Getenv("CDAX_CONFIG_DIR"))
	if err != nil {
		log.Fatalf("exchanged: failed to load config: %v", err)
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("exchanged: failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	runID := uuid.NewString()
	logger.Info("exchanged: starting", zap.String("run_id", runID), zap.String("symbol", cfg.Exchange.Symbol))

	jrnl, err := journal.Open(journal.Paths{
		Book:   cfg.Journal.BookLogPath,
		Txn:    cfg.Journal.TxnLogPath,
		Action: cfg.Journal.ActionLogPath,
	}, runID)
	if err != nil {
		logger.Fatal("exchanged: failed to open journal", zap.Error(err))
	}
	defer jrnl.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	timers := timer.New(ctx)
	defer timers.Stop()

	engine := matching.New(cfg.Exchange.Symbol, timers, logger).WithJournal(jrnl)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv, err := session.New(addr, engine, timers, logger)
	if err != nil {
		logger.Fatal("exchanged: failed to bind session server", zap.Error(err))
	}

	go runMetricsServer(ctx, cfg, logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("exchanged: shutdown signal received")
		cancel()
	}()

	logger.Info("exchanged: session server listening", zap.String("addr", addr))
	if err := srv.Run(ctx); err != nil {
		logger.Fatal("exchanged: session server exited with error", zap.Error(err))
	}
}

// runMetricsServer exposes /metrics and /healthz on a small gin router,
// the ambient observability surface the exchange-specific spec omits but
// every component in this stack still carries.
func runMetricsServer(ctx context.Context, cfg *config.Config, logger *zap.Logger) {
	if cfg.Monitoring.MetricsPort == 0 {
		logger.Info("exchanged: metrics server disabled")
		return
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf(":%d", cfg.Monitoring.MetricsPort)
	httpSrv := &http.Server{Addr: addr, Handler: router}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	logger.Info("exchanged: metrics server listening", zap.String("addr", addr))
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("exchanged: metrics server exited with error", zap.Error(err))
	}
}
