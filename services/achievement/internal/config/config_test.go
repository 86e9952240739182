package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"GRPC_ADDR", "SESSION_SUBJECT_PREFIX", "WORKER_BATCH_SIZE", "WORKER_BATCH_INTERVAL_MS"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.GRPCAddr != ":9096" {
		t.Fatalf("expected :9096, got %q", cfg.GRPCAddr)
	}
	if cfg.SessionSubjectPrefix != "session" {
		t.Fatalf("expected session prefix, got %q", cfg.SessionSubjectPrefix)
	}
	if cfg.Worker.BatchSize != 100 || cfg.Worker.BatchInterval != 2*time.Second {
		t.Fatalf("unexpected worker defaults %+v", cfg.Worker)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("GRPC_ADDR", ":7000")
	t.Setenv("ACHIEVEMENT_CATALOG_PATH", " /etc/achievements.json ")
	t.Setenv("ACHIEVEMENT_WATCH_POLICY", "after_finish")
	t.Setenv("WORKER_BATCH_SIZE", "10")
	t.Setenv("WORKER_BATCH_INTERVAL_MS", "250")

	cfg := Load()
	if cfg.GRPCAddr != ":7000" || cfg.CatalogPath != "/etc/achievements.json" || cfg.WatchPolicy != "after_finish" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Worker.BatchSize != 10 || cfg.Worker.BatchInterval != 250*time.Millisecond {
		t.Fatalf("unexpected worker config %+v", cfg.Worker)
	}
}

func TestEnvInt_Invalid(t *testing.T) {
	t.Setenv("ACH_TEST_INT", "zero")
	if v := envInt("ACH_TEST_INT", 3); v != 3 {
		t.Fatalf("expected fallback 3, got %d", v)
	}
}
