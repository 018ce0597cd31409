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

	appcart "github.com/Zhima-Mochi/minishop-cart/internal/application/cart"
	appnotification "github.com/Zhima-Mochi/minishop-cart/internal/application/notification"
	"github.com/Zhima-Mochi/minishop-cart/internal/config"
	domcart "github.com/Zhima-Mochi/minishop-cart/internal/domain/cart"
	"github.com/Zhima-Mochi/minishop-cart/internal/infrastructure/filestore"
	httptransport "github.com/Zhima-Mochi/minishop-cart/internal/infrastructure/http"
	"github.com/Zhima-Mochi/minishop-cart/internal/infrastructure/inventory/httpclient"
	"github.com/Zhima-Mochi/minishop-cart/internal/infrastructure/memory"
	notificationworker "github.com/Zhima-Mochi/minishop-cart/internal/infrastructure/notification/worker"
	"github.com/Zhima-Mochi/minishop-cart/internal/infrastructure/notify"
	infraobs "github.com/Zhima-Mochi/minishop-cart/internal/infrastructure/observability"
	"github.com/Zhima-Mochi/minishop-cart/internal/infrastructure/observability/oteltrace"
	"github.com/Zhima-Mochi/minishop-cart/internal/infrastructure/observability/prometrics"
	"github.com/Zhima-Mochi/minishop-cart/internal/infrastructure/observability/zaplogger"
	"github.com/Zhima-Mochi/minishop-cart/internal/infrastructure/outbox"
	"github.com/Zhima-Mochi/minishop-cart/internal/infrastructure/redisstore"
	"github.com/Zhima-Mochi/minishop-cart/internal/observability"
	"github.com/Zhima-Mochi/minishop-cart/internal/pkg/logging"
	httppresentation "github.com/Zhima-Mochi/minishop-cart/internal/presentation/http"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const version = "0.1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	baseLogger := logging.MustNewLogger(logging.Options{
		Service: cfg.ServiceName,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
	})
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	systemLogger := logging.WithTrace(baseLogger, logging.SystemTraceID, logging.SystemSpanID)

	if err := run(cfg, baseLogger, systemLogger); err != nil {
		systemLogger.Error("service_exit", zap.Error(err))
		_ = baseLogger.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config, baseLogger, systemLogger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exporter := cfg.TracesExporter
	if exporter == oteltrace.ExporterNone && cfg.OTLPEndpoint != "" {
		exporter = oteltrace.ExporterOTLP
	}
	tp, err := oteltrace.NewProvider(ctx, oteltrace.ProviderOptions{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: version,
		Environment:    cfg.Env,
		Exporter:       exporter,
		Endpoint:       cfg.OTLPEndpoint,
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		_ = tp.Shutdown(shutdownCtx)
	}()

	logger := zaplogger.New(baseLogger)
	tel := infraobs.New(
		oteltrace.NewWithProvider(tp, cfg.ServiceName),
		logger,
		prometrics.New(prometheus.DefaultRegisterer, "", ""),
	)

	// In-memory event bus carrying cart.committed and cart.notification
	bus := outbox.NewBus(logger)
	feed := appnotification.NewFeed(cfg.NotificationFeedSize)
	notificationworker.New(bus, feed, tel).Start()
	bus.Start(ctx)
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		bus.Stop(stopCtx)
	}()

	store, closeStore, err := newStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	mux := http.NewServeMux()
	inventory, err := newInventory(cfg, mux)
	if err != nil {
		return err
	}

	manager, err := appcart.NewManager(ctx, appcart.Dependencies{
		Store:     store,
		Inventory: inventory,
		Notifier:  notify.Multi{notify.Contextual{}, notify.NewBus(bus, logger)},
		Publisher: bus,
		Telemetry: tel,
	})
	if err != nil {
		return err
	}
	systemLogger.Info("cart_restored",
		zap.String("store", cfg.StoreDriver),
		zap.Int("items", manager.Cart().Len()),
	)

	httppresentation.NewHandler(manager, feed, tel, httppresentation.WithTracerProvider(tp)).Register(mux)
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		systemLogger.Info("http_server_start",
			zap.String("addr", server.Addr),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		systemLogger.Error("http_server_shutdown_error",
			zap.Error(err),
		)
	} else {
		systemLogger.Info("http_server_stopped")
	}
	return nil
}

func newStore(ctx context.Context, cfg config.Config, logger observability.Logger) (domcart.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreDriverRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		readyCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := redisstore.WaitReady(readyCtx, client, logger.With(observability.F("component", "redis_store"))); err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return redisstore.New(client, cfg.StoreKey), func() { _ = client.Close() }, nil
	case config.StoreDriverMemory:
		return memory.NewStore(), func() {}, nil
	default:
		s, err := filestore.New(cfg.StorePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	}
}

// newInventory returns the remote client when INVENTORY_URL is set; otherwise
// it serves the in-memory catalog on mux and uses it directly.
func newInventory(cfg config.Config, mux *http.ServeMux) (domcart.Inventory, error) {
	if cfg.InventoryURL != "" {
		client, err := httpclient.New(cfg.InventoryURL, httpclient.WithTimeout(cfg.InventoryTimeout))
		if err != nil {
			return nil, err
		}
		return client, nil
	}

	catalog := memory.NewCatalog()
	if cfg.CatalogSeedFile != "" {
		f, err := os.Open(cfg.CatalogSeedFile)
		if err != nil {
			return nil, fmt.Errorf("catalog seed: %w", err)
		}
		defer f.Close()
		if catalog, err = memory.LoadSeed(f); err != nil {
			return nil, err
		}
	} else {
		catalog.Seed(memory.DefaultSeed())
	}
	httptransport.NewHandler(catalog).Register(mux)
	return catalog, nil
}
