package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_DRIVER", "DATABASE_URL", "REDIS_URL", "KAFKA_BROKERS", "LEADERBOARD_CACHE_TTL", "LOG_LEVEL", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected port 8080, got %s", cfg.Port)
	}
	if cfg.Database.Driver != "postgres" {
		t.Errorf("Expected postgres driver, got %s", cfg.Database.Driver)
	}
	if cfg.LeaderboardCacheTTL != time.Minute {
		t.Errorf("Expected 1m cache TTL, got %v", cfg.LeaderboardCacheTTL)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("Expected info level, got %v", cfg.LogLevel)
	}
	if len(cfg.Kafka.Brokers) != 0 {
		t.Errorf("Expected no brokers, got %v", cfg.Kafka.Brokers)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Errorf("Expected wildcard origin, got %v", cfg.CORSAllowedOrigins)
	}
	if !strings.Contains(cfg.Database.DSN(), "dbname=quizhub") {
		t.Errorf("Expected DSN built from parts, got %s", cfg.Database.DSN())
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DATABASE_URL", "postgres://quiz@db/quizhub")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("LEADERBOARD_CACHE_TTL", "30s")
	t.Setenv("LOG_LEVEL", "WARNING")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Expected sqlite driver, got %s", cfg.Database.Driver)
	}
	if cfg.Database.DSN() != "postgres://quiz@db/quizhub" {
		t.Errorf("Expected DATABASE_URL to win, got %s", cfg.Database.DSN())
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "kafka-2:9092" {
		t.Errorf("Unexpected brokers %v", cfg.Kafka.Brokers)
	}
	if cfg.LeaderboardCacheTTL != 30*time.Second {
		t.Errorf("Expected 30s TTL, got %v", cfg.LeaderboardCacheTTL)
	}
	if cfg.LogLevel != slog.LevelWarn {
		t.Errorf("Expected warn level, got %v", cfg.LogLevel)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Errorf("Expected 2 origins, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"CacheTTL", "LEADERBOARD_CACHE_TTL", "soon"},
		{"Port", "PORT", "http"},
		{"Driver", "DB_DRIVER", "mysql"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			if _, err := LoadConfig(); err == nil {
				t.Errorf("Expected an error for %s=%s", tt.key, tt.val)
			}
		})
	}
}
