package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/fashionmuse")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.AppEnv != "development" {
		t.Fatalf("AppEnv = %q", cfg.AppEnv)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q", cfg.Port)
	}
	if cfg.DBMaxConns != 10 {
		t.Fatalf("DBMaxConns = %d", cfg.DBMaxConns)
	}
	if cfg.GeminiModel != "gemini-2.5-flash-image" {
		t.Fatalf("GeminiModel = %q", cfg.GeminiModel)
	}
	if cfg.SynthesisTimeout != 90*time.Second {
		t.Fatalf("SynthesisTimeout = %v", cfg.SynthesisTimeout)
	}
	if cfg.SynthesisRetries != 2 {
		t.Fatalf("SynthesisRetries = %d", cfg.SynthesisRetries)
	}
	if cfg.WorkerPollInterval != 2*time.Second {
		t.Fatalf("WorkerPollInterval = %v", cfg.WorkerPollInterval)
	}
	if cfg.SweepStaleAfter != 900*time.Second {
		t.Fatalf("SweepStaleAfter = %v", cfg.SweepStaleAfter)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/fashionmuse")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "9000")
	t.Setenv("DB_MAX_CONNS", "4")
	t.Setenv("SWEEP_STALE_AFTER_SECONDS", "300")
	t.Setenv("SYNTHESIS_RETRIES", "0")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != "9000" {
		t.Fatalf("Port = %q", cfg.Port)
	}
	if cfg.DBMaxConns != 4 {
		t.Fatalf("DBMaxConns = %d", cfg.DBMaxConns)
	}
	if cfg.SweepStaleAfter != 5*time.Minute {
		t.Fatalf("SweepStaleAfter = %v", cfg.SweepStaleAfter)
	}
	if cfg.SynthesisRetries != 0 {
		t.Fatalf("SynthesisRetries = %d", cfg.SynthesisRetries)
	}
}

func TestLoadConfigRequiredValues(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "secret")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("missing DATABASE_URL should fail")
	}

	t.Setenv("DATABASE_URL", "postgres://localhost/fashionmuse")
	t.Setenv("JWT_SECRET", "")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("missing JWT_SECRET should fail")
	}
}
