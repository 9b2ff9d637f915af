// Package config loads process configuration from the environment and
// defines the static per-service messaging configuration (exchanges,
// bindings, publishings) every MessageNode is parameterized by, mirroring
// hamilton's base.config module.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all application configuration.
type AppConfig struct {
	// Broker Configuration
	BrokerAddr string
	BrokerPort string

	// Observability Configuration
	JaegerEndpoint   string
	PrometheusPort   string
	GrafanaPort      string
	AlertManagerPort string

	// Health Check Ports, one per service in the mesh
	HealthPorts map[string]string

	// OpenTelemetry Collector Ports
	OTLPGRPCPort string
	OTLPHTTPPort string

	// Service Configuration
	ServiceName    string
	ServiceVersion string
	Environment    string
	LogLevel       string

	// Domain configuration
	MinElevationDeg   float64
	MaxPassDuration   time.Duration
	DispatchBuffer    time.Duration
	RefreshInterval   time.Duration
	SlewPollInterval  time.Duration
	AngularTolerance  float64
	AosLosSearchSpan  time.Duration
	ObservationsDir   string
	RedisAddr         string
	HXMBaseURL        string
	HXMPollInterval   time.Duration
	DefaultRPCTimeout time.Duration
}

// Load loads configuration from environment variables with defaults. It
// reads a .env file from the working directory first, if one exists, so
// local development does not require exporting variables by hand.
func Load() *AppConfig {
	_ = godotenv.Load()

	return &AppConfig{
		BrokerAddr: getEnv("OBSERVATORY_BROKER_ADDR", "localhost"),
		BrokerPort: getEnv("OBSERVATORY_BROKER_PORT", "50051"),

		JaegerEndpoint:   getEnv("JAEGER_ENDPOINT", "127.0.0.1:4317"),
		PrometheusPort:   getEnv("PROMETHEUS_PORT", "9090"),
		GrafanaPort:      getEnv("GRAFANA_PORT", "3333"),
		AlertManagerPort: getEnv("ALERTMANAGER_PORT", "9093"),

		HealthPorts: map[string]string{
			"broker":           getEnv("BROKER_HEALTH_PORT", "8080"),
			"database":         getEnv("DATABASE_HEALTH_PORT", "8081"),
			"radiometrics":     getEnv("RADIOMETRICS_HEALTH_PORT", "8082"),
			"astrodynamics":    getEnv("ASTRODYNAMICS_HEALTH_PORT", "8083"),
			"mount":            getEnv("MOUNT_HEALTH_PORT", "8084"),
			"sdr":              getEnv("SDR_HEALTH_PORT", "8085"),
			"signal_processor": getEnv("SIGNAL_PROCESSOR_HEALTH_PORT", "8086"),
			"log_collector":    getEnv("LOG_COLLECTOR_HEALTH_PORT", "8087"),
			"tracker":          getEnv("TRACKER_HEALTH_PORT", "8088"),
			"orchestrator":     getEnv("ORCHESTRATOR_HEALTH_PORT", "8089"),
			"scheduler":        getEnv("SCHEDULER_HEALTH_PORT", "8090"),
			"hxm_adapter":      getEnv("HXM_ADAPTER_HEALTH_PORT", "8091"),
		},

		OTLPGRPCPort: getEnv("OTLP_GRPC_PORT", "4320"),
		OTLPHTTPPort: getEnv("OTLP_HTTP_PORT", "4321"),

		ServiceName:    getEnv("SERVICE_NAME", "observatory-service"),
		ServiceVersion: getEnv("SERVICE_VERSION", "1.0.0"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "INFO"),

		MinElevationDeg:   getEnvAsFloat("MIN_ELEVATION_DEG", 10.0),
		MaxPassDuration:   getEnvAsDuration("MAX_PASS_DURATION", 15*time.Minute),
		DispatchBuffer:    getEnvAsDuration("DISPATCH_BUFFER", 2*time.Minute),
		RefreshInterval:   getEnvAsDuration("SCHEDULER_REFRESH_INTERVAL", 2*time.Hour),
		SlewPollInterval:  getEnvAsDuration("SLEW_POLL_INTERVAL", time.Second),
		AngularTolerance:  getEnvAsFloat("ANGULAR_TOLERANCE_DEG", 0.3),
		AosLosSearchSpan:  getEnvAsDuration("AOS_LOS_SEARCH_SPAN", 8*time.Hour),
		ObservationsDir:   getEnv("OBSERVATIONS_DIR", "./observations"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		HXMBaseURL:        getEnv("HXM_BASE_URL", "http://localhost:9000"),
		HXMPollInterval:   getEnvAsDuration("HXM_POLL_INTERVAL", 30*time.Second),
		DefaultRPCTimeout: getEnvAsDuration("DEFAULT_RPC_TIMEOUT", 10*time.Second),
	}
}

// GetBrokerAddress returns the full broker address.
func (c *AppConfig) GetBrokerAddress() string {
	return c.BrokerAddr + ":" + c.BrokerPort
}

// GetHealthPort returns the health port for a given service type.
func (c *AppConfig) GetHealthPort(serviceType string) string {
	if port, ok := c.HealthPorts[serviceType]; ok {
		return port
	}
	return "8080"
}

// GetJaegerWebURL returns the Jaeger web interface URL.
func (c *AppConfig) GetJaegerWebURL() string {
	return "http://localhost:16686"
}

// GetGrafanaURL returns the Grafana web interface URL.
func (c *AppConfig) GetGrafanaURL() string {
	return "http://localhost:" + c.GrafanaPort
}

// GetPrometheusURL returns the Prometheus web interface URL.
func (c *AppConfig) GetPrometheusURL() string {
	return "http://localhost:" + c.PrometheusPort
}

// GetAlertManagerURL returns the AlertManager web interface URL.
func (c *AppConfig) GetAlertManagerURL() string {
	return "http://localhost:" + c.AlertManagerPort
}

// Exchange mirrors hamilton's ExchangeConfig: the declaration of a topic
// exchange a node publishes to or binds against.
type Exchange struct {
	Name       string
	Type       string
	Durable    bool
	AutoDelete bool
}

// Binding mirrors hamilton's BindingConfig: one routing key a node consumes.
type Binding struct {
	Exchange   string
	RoutingKey string
}

// Publishing mirrors hamilton's PublishingConfig: one routing key a node
// is expected to publish to, named so operators can audit a node's wiring
// without reading its source.
type Publishing struct {
	Exchange   string
	RoutingKey string
}

// NodeConfig is the static messaging wiring for one MessageNode: the
// exchanges it declares, the routing keys it consumes, and the routing
// keys it is expected to publish. It is the Go analogue of hamilton's
// MessageNodeConfig dataclass.
type NodeConfig struct {
	NodeName    string
	Exchanges   []Exchange
	Bindings    []Binding
	Publishings []Publishing
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
