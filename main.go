package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appAudit "github.com/The4Loops/ShahuMumbai-Project-sub000/internal/application/audit"
	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/application/checkout"
	appOrder "github.com/The4Loops/ShahuMumbai-Project-sub000/internal/application/order"
	appPayment "github.com/The4Loops/ShahuMumbai-Project-sub000/internal/application/payment"
	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/config"
	domaudit "github.com/The4Loops/ShahuMumbai-Project-sub000/internal/domain/audit"
	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/domain/catalog"
	domainOrder "github.com/The4Loops/ShahuMumbai-Project-sub000/internal/domain/order"
	dompay "github.com/The4Loops/ShahuMumbai-Project-sub000/internal/domain/payment"
	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/infrastructure/discovery"
	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/infrastructure/gateway"
	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/infrastructure/id"
	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/infrastructure/memory"
	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/infrastructure/mongoaudit"
	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/infrastructure/mysqlstore"
	infraobs "github.com/The4Loops/ShahuMumbai-Project-sub000/internal/infrastructure/observability"
	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/infrastructure/observability/oteltrace"
	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/infrastructure/observability/prometrics"
	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/infrastructure/observability/zaplogger"
	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/infrastructure/outbox"
	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/infrastructure/redisledger"
	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/pkg/logging"
	httppresentation "github.com/The4Loops/ShahuMumbai-Project-sub000/internal/presentation/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// closer releases one backing store on shutdown.
type closer struct {
	name string
	fn   func(ctx context.Context) error
}

type stores struct {
	orders   domainOrder.Repository
	products catalog.Repository
	ledger   appPayment.WebhookLedger
	audit    domaudit.Repository
	closers  []closer
}

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	baseLogger, err := logging.NewLogger(cfg.Server.Name, cfg.Server.Env, logging.Options{
		Level:       cfg.Log.Level,
		Encoding:    cfg.Log.Encoding,
		OutputPaths: cfg.Log.OutputPaths,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	systemLogger := logging.WithTrace(baseLogger, logging.SystemTraceID, logging.SystemSpanID)

	if err := run(cfg, baseLogger, systemLogger); err != nil {
		systemLogger.Error("service_exit", zap.Error(err))
		_ = baseLogger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, baseLogger, systemLogger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	oteltrace.InstallPropagator()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	counters, histograms := prometrics.Instruments(prometrics.New(reg, "", ""))
	tel := infraobs.New(oteltrace.New(cfg.Server.Name), zaplogger.Wrap(baseLogger), counters, histograms)

	st, err := openStores(ctx, cfg, systemLogger)
	if err != nil {
		return err
	}
	defer closeStores(st.closers, cfg.Server.ShutdownTimeout, systemLogger)

	gw, err := newGateway(cfg.Payment)
	if err != nil {
		return err
	}

	bus := outbox.NewBus(zaplogger.Wrap(systemLogger),
		outbox.WithQueueSize(cfg.Outbox.QueueSize),
		outbox.WithConcurrency(cfg.Outbox.Concurrency),
		outbox.WithHandlerTimeout(cfg.Outbox.HandlerTimeout),
	)
	appAudit.NewWorker(st.audit, bus, tel).Start()
	bus.Start(ctx)

	timeouts := appPayment.Timeouts{Fetch: cfg.Payment.FetchTimeout, Create: cfg.Payment.CreateTimeout}
	handler := httppresentation.NewHandler(httppresentation.UseCases{
		Checkout:      checkout.NewCreateOrderUseCase(st.orders, st.products, id.NewGenerator(), bus, cfg.Payment.DefaultCurrency, tel),
		OpenGateway:   appPayment.NewOpenGatewayOrderUseCase(st.orders, gw, bus, cfg.Payment.KeyID, timeouts, tel),
		VerifyPayment: appPayment.NewVerifyPaymentUseCase(st.orders, bus, cfg.Payment.KeySecret, tel),
		Webhook:       appPayment.NewHandleWebhookUseCase(st.orders, st.ledger, bus, cfg.Payment.WebhookSecret, tel),
		GetOrder:      appOrder.NewGetOrderUseCase(st.orders, tel),
		History:       appAudit.NewHistoryUseCase(st.audit, tel),
	}, httppresentation.Options{
		SignatureHeader: cfg.Payment.SignatureHeader,
		EventIDHeader:   cfg.Payment.EventIDHeader,
		Metrics:         promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	}, tel)

	gin.SetMode(gin.ReleaseMode)
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		systemLogger.Info("http_server_start",
			zap.String("addr", server.Addr),
			zap.String("store", cfg.Store.Driver),
			zap.String("gateway", cfg.Payment.Driver),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			systemLogger.Error("http_server_error",
				zap.Error(err),
			)
			stop()
		}
	}()

	registrar := register(ctx, cfg, systemLogger)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if registrar != nil {
		if err := registrar.Deregister(shutdownCtx); err != nil {
			systemLogger.Warn("service_deregister_failed", zap.Error(err))
		}
		_ = registrar.Close()
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		systemLogger.Error("http_server_shutdown_error",
			zap.Error(err),
		)
	} else {
		systemLogger.Info("http_server_stopped")
	}

	bus.Stop(shutdownCtx)
	return nil
}

// openStores picks the order/catalog store by driver and upgrades the ledger and audit
// trail to Redis and MongoDB when those are configured.
func openStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*stores, error) {
	st := &stores{}
	seed := seedProducts(cfg.Store.SeedProducts)

	switch cfg.Store.Driver {
	case "mysql":
		db, err := mysqlstore.Open(cfg.MySQL)
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		st.closers = append(st.closers, closer{name: "mysql", fn: func(context.Context) error { return mysqlstore.Close(db) }})

		products := mysqlstore.NewCatalogRepository(db)
		for _, p := range seed {
			if err := products.Upsert(ctx, p); err != nil {
				closeStores(st.closers, cfg.Server.ShutdownTimeout, logger)
				return nil, fmt.Errorf("seed product %s: %w", p.ID, err)
			}
		}
		st.orders = mysqlstore.NewOrderRepository(db)
		st.products = products
	default:
		st.orders = memory.NewOrderRepository()
		st.products = memory.NewCatalogRepository(seed...)
	}
	logger.Info("store_ready", zap.String("driver", cfg.Store.Driver), zap.Int("seeded_products", len(seed)))

	if cfg.Redis.Addr != "" {
		ledger := redisledger.NewWebhookLedger(redisledger.NewClient(cfg.Redis), cfg.Redis.KeyPrefix, cfg.Redis.LedgerTTL)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := ledger.Ping(pingCtx)
		cancel()
		if err != nil {
			// The ledger only deduplicates; webhooks still apply without it.
			logger.Warn("webhook_ledger_unreachable", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		st.ledger = ledger
		st.closers = append(st.closers, closer{name: "redis", fn: func(context.Context) error { return ledger.Close() }})
	} else {
		st.ledger = memory.NewWebhookLedger(cfg.Redis.LedgerTTL)
	}

	if cfg.MongoDB.URI != "" {
		repo, err := mongoaudit.NewRepository(ctx, cfg.MongoDB)
		if err != nil {
			closeStores(st.closers, cfg.Server.ShutdownTimeout, logger)
			return nil, fmt.Errorf("open mongodb: %w", err)
		}
		st.audit = repo
		st.closers = append(st.closers, closer{name: "mongodb", fn: repo.Close})
	} else {
		st.audit = memory.NewAuditRepository()
	}

	return st, nil
}

func closeStores(closers []closer, timeout time.Duration, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].fn(ctx); err != nil {
			logger.Warn("store_close_failed", zap.String("store", closers[i].name), zap.Error(err))
		}
	}
}

func newGateway(cfg config.PaymentConfig) (dompay.Gateway, error) {
	switch cfg.Driver {
	case "razorpay":
		timeout := cfg.CreateTimeout
		if cfg.FetchTimeout > timeout {
			timeout = cfg.FetchTimeout
		}
		return gateway.NewRazorpay(cfg.BaseURL, cfg.KeyID, cfg.KeySecret, &http.Client{Timeout: timeout}), nil
	case "sandbox", "":
		return gateway.NewSandbox(), nil
	default:
		return nil, fmt.Errorf("unknown payment driver %q", cfg.Driver)
	}
}

// register announces this instance in etcd; discovery is optional so failures only warn.
func register(ctx context.Context, cfg *config.Config, logger *zap.Logger) *discovery.Registrar {
	if len(cfg.Etcd.Endpoints) == 0 {
		return nil
	}
	registrar, err := discovery.NewRegistrar(cfg.Etcd)
	if err != nil {
		logger.Warn("service_register_failed", zap.Error(err))
		return nil
	}
	in := discovery.Instance{Name: cfg.Server.Name, Host: advertisedHost(cfg.Server.Host), Port: cfg.Server.Port}
	if err := registrar.Register(ctx, in); err != nil {
		logger.Warn("service_register_failed", zap.Error(err))
		_ = registrar.Close()
		return nil
	}
	logger.Info("service_registered", zap.String("key", discovery.Key(cfg.Etcd.Prefix, in)))
	return registrar
}

func advertisedHost(host string) string {
	if host != "" && host != "0.0.0.0" {
		return host
	}
	if h, err := os.Hostname(); err == nil {
		return h
	}
	return "localhost"
}

func seedProducts(in []config.SeedProduct) []catalog.Product {
	out := make([]catalog.Product, 0, len(in))
	for _, p := range in {
		out = append(out, catalog.Product{
			ID:            p.ID,
			Title:         p.Title,
			Price:         p.Price,
			DiscountPrice: p.DiscountPrice,
			Stock:         p.Stock,
			IsActive:      p.Active,
		})
	}
	return out
}
