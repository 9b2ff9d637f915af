// Package config provides centralized configuration management for the
// ground-station mesh's services through environment variables with
// sensible defaults.
//
// # Overview
//
// The config package loads application configuration from environment variables,
// providing a single source of truth for every service in the mesh including:
//   - Broker connection settings
//   - Observability stack endpoints (Jaeger, Prometheus, Grafana)
//   - Health check ports for each service
//   - OpenTelemetry Collector configuration
//   - Service metadata (name, version, environment)
//   - Domain tuning parameters (elevation mask, pass duration, poll intervals)
//
// All configuration values have sensible defaults, so services can run without
// any environment variable configuration.
//
// # Quick Start
//
// Load configuration in your service:
//
//	appConfig := config.Load()
//	fmt.Printf("Broker: %s\n", appConfig.GetBrokerAddress())
//	fmt.Printf("Jaeger: %s\n", appConfig.JaegerEndpoint)
//	fmt.Printf("Environment: %s\n", appConfig.Environment)
//
// # Configuration Fields
//
// **Broker Configuration**:
//   - OBSERVATORY_BROKER_ADDR: Broker hostname (default: "localhost")
//   - OBSERVATORY_BROKER_PORT: Broker port (default: "50051")
//
// **Observability Stack**:
//   - JAEGER_ENDPOINT: Jaeger OTLP endpoint (default: "127.0.0.1:4317")
//   - PROMETHEUS_PORT: Prometheus port (default: "9090")
//   - GRAFANA_PORT: Grafana port (default: "3333")
//   - ALERTMANAGER_PORT: AlertManager port (default: "9093")
//
// **Health Check Ports**, one per service in the mesh (BROKER_HEALTH_PORT,
// DATABASE_HEALTH_PORT, RADIOMETRICS_HEALTH_PORT, ASTRODYNAMICS_HEALTH_PORT,
// MOUNT_HEALTH_PORT, SDR_HEALTH_PORT, SIGNAL_PROCESSOR_HEALTH_PORT,
// LOG_COLLECTOR_HEALTH_PORT, TRACKER_HEALTH_PORT, ORCHESTRATOR_HEALTH_PORT,
// SCHEDULER_HEALTH_PORT, HXM_ADAPTER_HEALTH_PORT), each defaulting to a
// distinct port starting at 8080.
//
// **OpenTelemetry Collector**:
//   - OTLP_GRPC_PORT: OTLP gRPC receiver port (default: "4320")
//   - OTLP_HTTP_PORT: OTLP HTTP receiver port (default: "4321")
//
// **Service Metadata**:
//   - SERVICE_NAME: Service name for observability (default: "observatory-service")
//   - SERVICE_VERSION: Service version (default: "1.0.0")
//   - ENVIRONMENT: Deployment environment (default: "development")
//   - LOG_LEVEL: Logging level - DEBUG, INFO, WARN, ERROR (default: "INFO")
//
// **Domain Tuning**:
//   - MIN_ELEVATION_DEG: minimum elevation mask for a usable pass (default: 10.0)
//   - MAX_PASS_DURATION: longest pass the scheduler will plan for (default: 15m)
//   - DISPATCH_BUFFER: lead time before AOS the scheduler dispatches a task (default: 2m)
//   - SCHEDULER_REFRESH_INTERVAL: copied into scheduler.Config.RefreshInterval (default: 2h);
//     Scheduler.Run does not read it and refreshes after every dispatch pass, pausing DISPATCH_BUFFER in between
//   - SLEW_POLL_INTERVAL: tracker's mount-position poll cadence while tracking (default: 1s)
//   - ANGULAR_TOLERANCE_DEG: tracker's acceptable az/el slew error (default: 0.3)
//   - AOS_LOS_SEARCH_SPAN: astrodynamics' pass-search lookahead window (default: 8h)
//   - OBSERVATIONS_DIR: base directory for recorded SigMF captures (default: "./observations")
//   - REDIS_ADDR: catalog store's Redis address (default: "localhost:6379")
//   - HXM_BASE_URL: JE9PEL HXM endpoint (default: "http://localhost:9000")
//   - HXM_POLL_INTERVAL: hxmadapter's wait between collect-request polls when none is queued (default: 30s)
//   - DEFAULT_RPC_TIMEOUT: default timeout for RPC client calls (default: 10s)
//
// # Usage Examples
//
// **Basic Configuration**:
//
//	appConfig := config.Load()
//	brokerAddr := appConfig.GetBrokerAddress()  // "localhost:50051"
//
// **Custom Environment**:
//
//	// Set environment variables
//	os.Setenv("OBSERVATORY_BROKER_ADDR", "broker.prod.example.com")
//	os.Setenv("OBSERVATORY_BROKER_PORT", "443")
//	os.Setenv("ENVIRONMENT", "production")
//	os.Setenv("LOG_LEVEL", "WARN")
//
//	appConfig := config.Load()
//	// Uses production values
//
// **Service-Specific Health Ports**:
//
//	appConfig := config.Load()
//	brokerPort := appConfig.GetHealthPort("broker")    // "8080"
//	trackerPort := appConfig.GetHealthPort("tracker")  // "8088"
//
// **Observability URLs**:
//
//	appConfig := config.Load()
//	jaegerUI := appConfig.GetJaegerWebURL()     // "http://localhost:16686"
//	grafana := appConfig.GetGrafanaURL()        // "http://localhost:3333"
//	prometheus := appConfig.GetPrometheusURL()  // "http://localhost:9090"
//	alertMgr := appConfig.GetAlertManagerURL()  // "http://localhost:9093"
//
// # Configuration Precedence
//
// A value is taken from the first of these that supplies it:
//  1. Environment variables already set in the process
//  2. A .env file in the working directory, if one exists (it never
//     overrides a variable that is already set)
//  3. Default values (if neither is set)
//
// # Development vs Production
//
// **Development (defaults)**:
//
//	ENVIRONMENT=development
//	OBSERVATORY_BROKER_ADDR=localhost
//	LOG_LEVEL=INFO
//
// **Production (recommended)**:
//
//	ENVIRONMENT=production
//	OBSERVATORY_BROKER_ADDR=broker.prod.internal
//	LOG_LEVEL=WARN
//	SERVICE_VERSION=1.2.3
//
// # Integration with Other Packages
//
// The config package is used by:
//
// **observability.DefaultConfig()**:
//
//	func DefaultConfig(serviceName string) observability.Config {
//	    appConfig := config.Load()
//	    return observability.Config{
//	        ServiceName:    serviceName,
//	        ServiceVersion: appConfig.ServiceVersion,
//	        JaegerEndpoint: appConfig.JaegerEndpoint,
//	        // ...
//	    }
//	}
//
// **NodeConfig**, every service's static messaging configuration (exchanges,
// bindings, publishings) passed to messagenode.New, is written as a literal
// in each cmd/<service>/main.go; Load does not produce it.
//
// # Best Practices
//
// **Use Load() once per service**:
//
//	// In main.go
//	appConfig := config.Load()
//	// Pass to components that need it
//
// **Don't mutate AppConfig**:
//
//	// AppConfig is a read-only snapshot of environment at startup
//	appConfig := config.Load()
//	// Don't modify config fields after loading
//
// **Use helper methods**:
//
//	addr := appConfig.GetBrokerAddress()  // Prefer this
//	// Over: addr := appConfig.BrokerAddr + ":" + appConfig.BrokerPort
//
// # Thread Safety
//
// AppConfig is safe to read from multiple goroutines once loaded.
// Do not modify AppConfig fields after calling Load().
package config
