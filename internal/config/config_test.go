package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()
	if cfg.BrokerAddr != "localhost" {
		t.Errorf("BrokerAddr = %q, want localhost", cfg.BrokerAddr)
	}
	if cfg.BrokerPort != "50051" {
		t.Errorf("BrokerPort = %q, want 50051", cfg.BrokerPort)
	}
	if cfg.MinElevationDeg != 10.0 {
		t.Errorf("MinElevationDeg = %v, want 10.0", cfg.MinElevationDeg)
	}
	if cfg.MaxPassDuration != 15*time.Minute {
		t.Errorf("MaxPassDuration = %v, want 15m", cfg.MaxPassDuration)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("OBSERVATORY_BROKER_ADDR", "broker.internal")
	t.Setenv("MIN_ELEVATION_DEG", "15.5")
	t.Setenv("SLEW_POLL_INTERVAL", "250ms")

	cfg := Load()
	if cfg.BrokerAddr != "broker.internal" {
		t.Errorf("BrokerAddr = %q, want broker.internal", cfg.BrokerAddr)
	}
	if cfg.MinElevationDeg != 15.5 {
		t.Errorf("MinElevationDeg = %v, want 15.5", cfg.MinElevationDeg)
	}
	if cfg.SlewPollInterval != 250*time.Millisecond {
		t.Errorf("SlewPollInterval = %v, want 250ms", cfg.SlewPollInterval)
	}
}

func TestGetBrokerAddress(t *testing.T) {
	cfg := &AppConfig{BrokerAddr: "10.0.0.1", BrokerPort: "50051"}
	if got := cfg.GetBrokerAddress(); got != "10.0.0.1:50051" {
		t.Errorf("GetBrokerAddress() = %q, want 10.0.0.1:50051", got)
	}
}

func TestGetHealthPort(t *testing.T) {
	cfg := &AppConfig{HealthPorts: map[string]string{"tracker": "8088"}}

	if got := cfg.GetHealthPort("tracker"); got != "8088" {
		t.Errorf("GetHealthPort(tracker) = %q, want 8088", got)
	}
	if got := cfg.GetHealthPort("unknown"); got != "8080" {
		t.Errorf("GetHealthPort(unknown) = %q, want fallback 8080", got)
	}
}

func TestGetEnvAsFloat_InvalidFallsBackToDefault(t *testing.T) {
	t.Setenv("ANGULAR_TOLERANCE_DEG", "not-a-number")
	if got := getEnvAsFloat("ANGULAR_TOLERANCE_DEG", 0.3); got != 0.3 {
		t.Errorf("getEnvAsFloat with invalid value = %v, want default 0.3", got)
	}
}

func TestGetEnvAsDuration_InvalidFallsBackToDefault(t *testing.T) {
	t.Setenv("AOS_LOS_SEARCH_SPAN", "not-a-duration")
	if got := getEnvAsDuration("AOS_LOS_SEARCH_SPAN", 8*time.Hour); got != 8*time.Hour {
		t.Errorf("getEnvAsDuration with invalid value = %v, want default 8h", got)
	}
}

func TestGetEnvAsBool(t *testing.T) {
	t.Setenv("SOME_FLAG", "true")
	if got := getEnvAsBool("SOME_FLAG", false); !got {
		t.Error("expected getEnvAsBool to parse \"true\"")
	}
}

func TestGetEnvAsInt(t *testing.T) {
	t.Setenv("SOME_COUNT", "42")
	if got := getEnvAsInt("SOME_COUNT", 0); got != 42 {
		t.Errorf("getEnvAsInt = %d, want 42", got)
	}
}
