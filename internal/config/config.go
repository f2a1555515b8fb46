package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config captures runtime configuration for the API service.
type Config struct {
	HTTP      HTTPConfig
	Database  DatabaseConfig
	Kafka     KafkaConfig
	Telemetry TelemetryConfig
	Service   ServiceConfig
	WSPay     WSPayConfig
}

type HTTPConfig struct {
	Port               int
	MetricsPath        string
	ShutdownGrace      int
	CORSAllowedOrigins []string
}

type DatabaseConfig struct {
	// Store selects the order repository and ledger backend: "postgres" or "memory".
	Store          string
	URL            string
	AutoMigrate    bool
	MigrationsPath string
}

type KafkaConfig struct {
	Brokers       []string
	PaymentsTopic string
}

type TelemetryConfig struct {
	LogLevel      string
	OTelEndpoint  string
	EnableTracing bool
	EnableMetrics bool
	SampleRate    float64
	// EnablePrometheus serves collected metrics on HTTP.MetricsPath.
	EnablePrometheus bool
}

// WSPayConfig holds merchant credentials and redirect targets for the WSPay acquirer.
type WSPayConfig struct {
	ShopID          string
	SecretKey       string
	Environment     string
	Currency        string
	BaseURL         string
	SuccessRedirect string
	FailureRedirect string
}

type ServiceConfig struct {
	Name        string
	Version     string
	Environment string
}

const (
	defaultHTTPPort       = 8080
	defaultMetricsPath    = "/metrics"
	defaultShutdownGrace  = 15
	defaultMigrationsPath = "migrations"
	defaultAutoMigrate    = true
	defaultServiceName    = "wspay-api"
	defaultServiceVersion = "0.1.0"
	defaultEnvironment    = "development"
	defaultLogLevel       = "info"
	defaultOTelSampleRate = 1.0
	defaultStore          = StorePostgres
	defaultPaymentsTopic  = "payments.events"
	defaultWSPayEnv       = "test"
	defaultWSPayCurrency  = "HRK"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Load reads configuration from environment variables, applying defaults when needed.
func Load() (*Config, error) {
	httpCfg, err := loadHTTPConfig()
	if err != nil {
		return nil, fmt.Errorf("loading HTTP config: %w", err)
	}

	dbCfg, err := loadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("loading database config: %w", err)
	}

	kafkaCfg := loadKafkaConfig()
	telCfg, err := loadTelemetryConfig()
	if err != nil {
		return nil, fmt.Errorf("loading telemetry config: %w", err)
	}

	serviceCfg := loadServiceConfig()

	wspayCfg, err := loadWSPayConfig()
	if err != nil {
		return nil, fmt.Errorf("loading WSPay config: %w", err)
	}

	return &Config{
		HTTP:      httpCfg,
		Database:  dbCfg,
		Kafka:     kafkaCfg,
		Telemetry: telCfg,
		Service:   serviceCfg,
		WSPay:     wspayCfg,
	}, nil
}

func loadHTTPConfig() (HTTPConfig, error) {
	port := defaultHTTPPort
	if value, ok := os.LookupEnv("API_HTTP_PORT"); ok {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return HTTPConfig{}, fmt.Errorf("invalid API_HTTP_PORT: %w", err)
		}
		port = parsed
	}

	shutdownGrace := defaultShutdownGrace
	if value, ok := os.LookupEnv("API_SHUTDOWN_GRACE_SECONDS"); ok {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return HTTPConfig{}, fmt.Errorf("invalid API_SHUTDOWN_GRACE_SECONDS: %w", err)
		}
		shutdownGrace = parsed
	}

	metricsPath := getEnvOrDefault("API_METRICS_PATH", defaultMetricsPath)

	return HTTPConfig{
		Port:               port,
		MetricsPath:        metricsPath,
		ShutdownGrace:      shutdownGrace,
		CORSAllowedOrigins: getListEnv("CORS_ALLOWED_ORIGINS"),
	}, nil
}

func loadDatabaseConfig() (DatabaseConfig, error) {
	store := strings.ToLower(getEnvOrDefault("ORDER_STORE", defaultStore))
	if store != StorePostgres && store != StoreMemory {
		return DatabaseConfig{}, fmt.Errorf("invalid ORDER_STORE %q: want %s or %s", store, StorePostgres, StoreMemory)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		databaseURL = buildDatabaseURL()
	}

	autoMigrate := defaultAutoMigrate
	if value, ok := os.LookupEnv("AUTO_MIGRATE"); ok {
		autoMigrate = value == "true"
	}

	migrationsPath := getEnvOrDefault("MIGRATIONS_PATH", defaultMigrationsPath)

	return DatabaseConfig{
		Store:          store,
		URL:            databaseURL,
		AutoMigrate:    autoMigrate,
		MigrationsPath: migrationsPath,
	}, nil
}

func loadKafkaConfig() KafkaConfig {
	return KafkaConfig{
		Brokers:       getListEnv("KAFKA_BROKERS"),
		PaymentsTopic: getEnvOrDefault("KAFKA_PAYMENTS_TOPIC", defaultPaymentsTopic),
	}
}

func loadTelemetryConfig() (TelemetryConfig, error) {
	logLevel := getEnvOrDefault("LOG_LEVEL", defaultLogLevel)
	otelEndpoint := getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	enableTracing := getBoolEnv("OTEL_ENABLE_TRACING", true)
	enableMetrics := getBoolEnv("OTEL_ENABLE_METRICS", true)

	sampleRate := defaultOTelSampleRate
	if value, ok := os.LookupEnv("OTEL_SAMPLE_RATE"); ok {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return TelemetryConfig{}, fmt.Errorf("invalid OTEL_SAMPLE_RATE: %w", err)
		}
		sampleRate = parsed
	}

	return TelemetryConfig{
		LogLevel:         logLevel,
		OTelEndpoint:     otelEndpoint,
		EnableTracing:    enableTracing,
		EnableMetrics:    enableMetrics,
		SampleRate:       sampleRate,
		EnablePrometheus: getBoolEnv("PROMETHEUS_ENABLED", true),
	}, nil
}

func loadServiceConfig() ServiceConfig {
	return ServiceConfig{
		Name:        getEnvOrDefault("API_SERVICE_NAME", defaultServiceName),
		Version:     getEnvOrDefault("SERVICE_VERSION", defaultServiceVersion),
		Environment: getEnvOrDefault("ENVIRONMENT", defaultEnvironment),
	}
}

func loadWSPayConfig() (WSPayConfig, error) {
	env := strings.ToLower(getEnvOrDefault("WSPAY_ENVIRONMENT", defaultWSPayEnv))
	if env != "prod" && env != "test" {
		return WSPayConfig{}, fmt.Errorf("invalid WSPAY_ENVIRONMENT %q: want prod or test", env)
	}

	return WSPayConfig{
		ShopID:          os.Getenv("WSPAY_SHOP_ID"),
		SecretKey:       os.Getenv("WSPAY_SECRET_KEY"),
		Environment:     env,
		Currency:        strings.ToUpper(getEnvOrDefault("WSPAY_CURRENCY", defaultWSPayCurrency)),
		BaseURL:         os.Getenv("WSPAY_BASE_URL"),
		SuccessRedirect: os.Getenv("WSPAY_SUCCESS_REDIRECT"),
		FailureRedirect: os.Getenv("WSPAY_FAILURE_REDIRECT"),
	}, nil
}

func buildDatabaseURL() string {
	host := getEnvOrDefault("DB_HOST", "localhost")
	port := getEnvOrDefault("DB_PORT", "5432")
	user := getEnvOrDefault("DB_USER", "postgres")
	password := getEnvOrDefault("DB_PASSWORD", "postgres")
	dbName := getEnvOrDefault("DB_NAME", "wspay")
	sslMode := getEnvOrDefault("DB_SSLMODE", "disable")

	maxConns := getEnvOrDefault("DB_MAX_CONNS", "25")
	minConns := getEnvOrDefault("DB_MIN_CONNS", "5")
	maxLifetime := getEnvOrDefault("DB_MAX_CONN_LIFETIME", "5m")

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&pool_max_conns=%s&pool_min_conns=%s&pool_max_conn_lifetime=%s",
		user, password, host, port, dbName, sslMode, maxConns, minConns, maxLifetime,
	)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		return value == "true"
	}
	return defaultValue
}

func getListEnv(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
