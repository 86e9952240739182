package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the achievement service settings on top of the platform
// AppConfig.
type Config struct {
	GRPCAddr string
	// CatalogPath is a JSON definitions file. Empty loads definitions from
	// Postgres.
	CatalogPath string
	// SessionSubjectPrefix prefixes "<player_id>.outbound" subjects.
	SessionSubjectPrefix string
	// WatchPolicy selects the watch.Policy by name.
	WatchPolicy string
	JWTSecret   string
	JWTIssuer   string
	Worker      WorkerConfig
}

type WorkerConfig struct {
	BatchSize     int
	BatchInterval time.Duration
}

func Load() Config {
	cfg := Config{
		GRPCAddr:             strings.TrimSpace(os.Getenv("GRPC_ADDR")),
		CatalogPath:          strings.TrimSpace(os.Getenv("ACHIEVEMENT_CATALOG_PATH")),
		SessionSubjectPrefix: strings.TrimSpace(os.Getenv("SESSION_SUBJECT_PREFIX")),
		WatchPolicy:          strings.TrimSpace(os.Getenv("ACHIEVEMENT_WATCH_POLICY")),
		JWTSecret:            strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:            strings.TrimSpace(os.Getenv("JWT_ISSUER")),
		Worker: WorkerConfig{
			BatchSize:     envInt("WORKER_BATCH_SIZE", 100),
			BatchInterval: time.Duration(envInt("WORKER_BATCH_INTERVAL_MS", 2000)) * time.Millisecond,
		},
	}
	if cfg.GRPCAddr == "" {
		cfg.GRPCAddr = ":9096"
	}
	if cfg.SessionSubjectPrefix == "" {
		cfg.SessionSubjectPrefix = "session"
	}
	return cfg
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
