package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dejobratic/wspay/internal/config"
	"github.com/dejobratic/wspay/internal/database"
	"github.com/dejobratic/wspay/internal/kafka"
	ledgermemory "github.com/dejobratic/wspay/internal/ledger/memory"
	ledgerpostgres "github.com/dejobratic/wspay/internal/ledger/postgres"
	"github.com/dejobratic/wspay/internal/payments/adapters"
	httpadapter "github.com/dejobratic/wspay/internal/payments/adapters/http"
	paymentsmemory "github.com/dejobratic/wspay/internal/payments/adapters/memory"
	paymentspostgres "github.com/dejobratic/wspay/internal/payments/adapters/postgres"
	paymentsapp "github.com/dejobratic/wspay/internal/payments/app"
	paymentmetrics "github.com/dejobratic/wspay/internal/payments/metrics"
	"github.com/dejobratic/wspay/internal/payments/ports"
	"github.com/dejobratic/wspay/internal/payments/registry"
	"github.com/dejobratic/wspay/internal/payments/wspay"
	"github.com/dejobratic/wspay/internal/telemetry"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"
	"go.opentelemetry.io/otel"
)

const meterName = "github.com/dejobratic/wspay"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := telemetry.NewLogger(telemetry.ParseLevel(cfg.Telemetry.LogLevel))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, stop, cfg, logger); err != nil {
		logger.Error("service stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stop context.CancelFunc, cfg *config.Config, logger *slog.Logger) error {
	tel, err := telemetry.Initialize(ctx, telemetry.Config{
		ServiceName:      cfg.Service.Name,
		ServiceVersion:   cfg.Service.Version,
		Environment:      cfg.Service.Environment,
		OTLPEndpoint:     cfg.Telemetry.OTelEndpoint,
		EnableTracing:    cfg.Telemetry.EnableTracing,
		EnableMetrics:    cfg.Telemetry.EnableMetrics,
		SampleRate:       cfg.Telemetry.SampleRate,
		EnablePrometheus: cfg.Telemetry.EnablePrometheus,
	})
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()

	meter := otel.Meter(meterName)
	dbMetrics, err := database.NewMetrics(meter)
	if err != nil {
		return err
	}
	kafkaMetrics, err := kafka.NewMetrics(meter)
	if err != nil {
		return err
	}
	httpMetrics, err := httpadapter.NewMetrics(meter)
	if err != nil {
		return err
	}
	paymentsMetrics, err := paymentmetrics.NewMetrics(meter)
	if err != nil {
		return err
	}

	var (
		repo   ports.OrderRepository
		ledger ports.NotificationLedger
		pool   *pgxpool.Pool
	)

	switch cfg.Database.Store {
	case config.StoreMemory:
		logger.Warn("using in-memory order store; state is lost on restart")
		repo = paymentsmemory.NewRepository()
		ledger = ledgermemory.NewStore()
	default:
		pool, err = database.NewPool(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("create database pool: %w", err)
		}
		defer pool.Close()

		if cfg.Database.AutoMigrate {
			logger.Info("running database migrations", "path", cfg.Database.MigrationsPath)
			if err := database.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsPath); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
			logger.Info("migrations completed successfully")
		}

		repo = paymentspostgres.NewRepository(pool)
		ledger = ledgerpostgres.NewStore(pool)
	}

	bus := newEventBus(cfg, logger)
	defer func() {
		if err := bus.Close(); err != nil {
			logger.Error("failed to close event bus", "error", err)
		}
	}()

	acquirer := wspay.NewAcquirer(wspay.Config{
		ShopID:      cfg.WSPay.ShopID,
		SecretKey:   cfg.WSPay.SecretKey,
		Environment: wspay.Environment(cfg.WSPay.Environment),
		Currency:    cfg.WSPay.Currency,
		BaseURL:     cfg.WSPay.BaseURL,
	})
	if cfg.WSPay.ShopID == "" || cfg.WSPay.SecretKey == "" {
		logger.Warn("WSPay credentials are not configured; checkout and callbacks will fail",
			"shop_id", cfg.WSPay.ShopID)
	}
	logger.Info("payment acquirer registered",
		"provider", acquirer.Provider(),
		"form_url", acquirer.FormActionURL(),
		"currency", acquirer.Currency(),
	)

	service := paymentsapp.NewService(
		registry.New(acquirer),
		adapters.NewObservableRepository(repo, dbMetrics),
		adapters.NewObservableLedger(ledger, dbMetrics),
		adapters.NewObservableEventBus(bus, kafkaMetrics),
		logger,
		paymentsMetrics,
	)

	router := mux.NewRouter()
	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	router.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if pool != nil {
			if err := database.CheckHealth(r.Context(), pool); err != nil {
				respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "error": err.Error()})
				return
			}
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}).Methods(http.MethodGet)
	if handler := tel.MetricsHandler(); handler != nil {
		router.Handle(cfg.HTTP.MetricsPath, handler).Methods(http.MethodGet)
	}

	api := router.NewRoute().Subrouter()
	api.Use(
		httpadapter.WithRecovery(logger),
		httpadapter.WithLogging(logger),
		httpadapter.WithMetrics(httpMetrics),
	)
	httpadapter.NewHandler(service, httpadapter.Redirects{
		Success: cfg.WSPay.SuccessRedirect,
		Failure: cfg.WSPay.FailureRedirect,
	}).Register(api)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           withCORS(router, cfg.HTTP.CORSAllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "port", cfg.HTTP.Port, "store", cfg.Database.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownGrace)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	logger.Info("http server stopped")
	return nil
}

type eventBus interface {
	ports.EventBus
	io.Closer
}

func newEventBus(cfg *config.Config, logger *slog.Logger) eventBus {
	if len(cfg.Kafka.Brokers) == 0 {
		logger.Info("KAFKA_BROKERS not set; payment events are only logged")
		return kafka.NewNoopEventBus(logger)
	}

	logger.Info("publishing payment events to kafka", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.PaymentsTopic)
	return kafka.NewEventBus(kafka.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.PaymentsTopic))
}

// withCORS lets browser storefronts on the listed origins call the checkout API.
func withCORS(next http.Handler, origins []string) http.Handler {
	if len(origins) == 0 {
		return next
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(next)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
