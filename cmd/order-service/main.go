package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/jcmexdev/ecommerce-orders/internal/coordinator"
	"github.com/jcmexdev/ecommerce-orders/internal/coordinator/steplog"
	steplogsqlite "github.com/jcmexdev/ecommerce-orders/internal/coordinator/steplog/sqlite"
	"github.com/jcmexdev/ecommerce-orders/internal/order-service/adapters/cache"
	"github.com/jcmexdev/ecommerce-orders/internal/order-service/adapters/clients"
	"github.com/jcmexdev/ecommerce-orders/internal/order-service/adapters/memory"
	"github.com/jcmexdev/ecommerce-orders/internal/order-service/adapters/publisher"
	"github.com/jcmexdev/ecommerce-orders/internal/order-service/adapters/sqlite"
	"github.com/jcmexdev/ecommerce-orders/internal/order-service/app"
	"github.com/jcmexdev/ecommerce-orders/internal/order-service/config"
	"github.com/jcmexdev/ecommerce-orders/internal/order-service/core/ports"
	"github.com/jcmexdev/ecommerce-orders/internal/order-service/infra/httpx"
	kv "github.com/jcmexdev/ecommerce-orders/internal/pkg/cache"
	"github.com/jcmexdev/ecommerce-orders/internal/pkg/metrics"
	"github.com/jcmexdev/ecommerce-orders/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	telemetry.InitLogger(telemetry.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("order service stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	shutdownTracer, err := telemetry.SetupTracer(ctx, telemetry.TracerConfig{
		ServiceName: cfg.ServiceName,
		Endpoint:    cfg.OTLPEndpoint,
		Environment: cfg.Environment,
		SampleRatio: cfg.TraceSampleRatio,
	})
	if err != nil {
		return fmt.Errorf("initialise tracer: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	orders, closeOrders, err := openOrderStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer closeOrders()

	stepLog, closeStepLog, err := openStepLog(cfg.StepLogPath)
	if err != nil {
		return err
	}
	defer closeStepLog()

	hc := clients.NewHTTPClient(cfg.CallTimeout)
	var customers ports.CustomerDirectory = clients.NewCustomerClient(cfg.CustomerURL, hc)
	var confirmations ports.ConfirmationPublisher = publisher.LogPublisher{}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer func() { _ = rdb.Close() }()

		customers = cache.NewCachedCustomers(customers, kv.NewRedisCache(rdb, "order"), cfg.CustomerCacheTTL)
		confirmations = publisher.NewRedisPublisher(rdb, cfg.ConfirmationChannel)
	} else {
		slog.Warn("REDIS_ADDR not set: customer cache disabled, confirmations go to the log")
	}

	svc := app.NewService(coordinator.Collaborators{
		Customers:     customers,
		Products:      clients.NewProductClient(cfg.ProductURL, hc),
		Orders:        orders,
		Payments:      clients.NewPaymentClient(cfg.PaymentURL, hc),
		Confirmations: confirmations,
		CallTimeout:   cfg.CallTimeout,
	},
		app.WithStepLog(stepLog),
		app.WithMetrics(metrics.New(prometheus.DefaultRegisterer)),
	)

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: httpx.NewRouter(httpx.NewHandler(svc, healthDeps(orders)...), httpx.RouterConfig{
			ServiceName:    cfg.ServiceName,
			RequestTimeout: cfg.RequestTimeout,
		}),
		ReadHeaderTimeout: cfg.CallTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("order service HTTP running", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down order service")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func healthDeps(orders ports.OrderStore) []httpx.Pinger {
	if p, ok := orders.(httpx.Pinger); ok {
		return []httpx.Pinger{p}
	}
	return nil
}

func openOrderStore(path string) (ports.OrderStore, func(), error) {
	if path == "" {
		slog.Warn("DB_PATH not set: orders are kept in memory")
		return memory.NewOrderStore(), func() {}, nil
	}
	store, err := sqlite.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open order store: %w", err)
	}
	return store, func() { _ = store.Close() }, nil
}

func openStepLog(path string) (steplog.Repository, func(), error) {
	if path == "" {
		return steplog.NewMemoryRepository(), func() {}, nil
	}
	repo, err := steplogsqlite.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open step log: %w", err)
	}
	return repo, func() { _ = repo.Close() }, nil
}
