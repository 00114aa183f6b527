package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestConfig_DatabaseURL(t *testing.T) {
	cfg := &Config{}
	cfg.Database.Host = "localhost"
	cfg.Database.Port = 5432
	cfg.Database.Name = "testdb"
	cfg.Database.Username = "testuser"
	cfg.Database.Password = "testpassword"

	url := cfg.DatabaseURL()
	expected := "host=localhost port=5432 dbname=testdb user=testuser password=testpassword sslmode="
	if url != expected {
		t.Errorf("DatabaseURL() want = %s, got = %s", expected, url)
	}
}

func TestConfig_QualifiedPath(t *testing.T) {
	cfg := &Config{configDir: "/etc/hodpool"}

	if got := cfg.QualifiedPath("hodpool.db"); got != filepath.Join("/etc/hodpool", "hodpool.db") {
		t.Errorf("QualifiedPath() = %s", got)
	}
	if got := cfg.QualifiedPath("/var/lib/hodpool.db"); got != "/var/lib/hodpool.db" {
		t.Errorf("QualifiedPath() with an absolute path = %s", got)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig() returned an unexpected error: %v", err)
	}

	if cfg.Logging.LogLevel != "info" {
		t.Errorf("expected default log level info, got %s", cfg.Logging.LogLevel)
	}
	if !cfg.Decode.Concurrent {
		t.Error("expected concurrent decode to default to true")
	}
	if cfg.Decode.PoolChunkID != "POOL" {
		t.Errorf("expected default pool chunk id POOL, got %s", cfg.Decode.PoolChunkID)
	}
	if cfg.Decode.MaxSegmentSize != DefaultMaxSegmentSize {
		t.Errorf("expected default max segment size %d, got %d", DefaultMaxSegmentSize, cfg.Decode.MaxSegmentSize)
	}
	if cfg.Cache.TTL != 10*time.Minute {
		t.Errorf("expected default cache ttl of 10m, got %v", cfg.Cache.TTL)
	}
	if cfg.Database.Engine != "sqlite" {
		t.Errorf("expected default database engine sqlite, got %s", cfg.Database.Engine)
	}
}

func TestLoadConfig_FileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	contents := []byte(`
logging:
  log_level: debug
decode:
  concurrent: false
  workers: 2
cache:
  ttl: 30s
database:
  engine: postgres
  port: 6543
`)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), contents, 0644); err != nil {
		t.Fatalf("error writing test config: %v", err)
	}
	t.Setenv("HODPOOL_DATABASE_HOST", "db.internal")

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig() returned an unexpected error: %v", err)
	}

	if cfg.Logging.LogLevel != "debug" {
		t.Errorf("log level = %s, want debug", cfg.Logging.LogLevel)
	}
	if cfg.Decode.Concurrent {
		t.Error("expected concurrent decode to be disabled by the config file")
	}
	if cfg.Decode.Workers != 2 {
		t.Errorf("workers = %d, want 2", cfg.Decode.Workers)
	}
	if cfg.Cache.TTL != 30*time.Second {
		t.Errorf("cache ttl = %v, want 30s", cfg.Cache.TTL)
	}
	if cfg.Database.Engine != "postgres" || cfg.Database.Port != 6543 {
		t.Errorf("database = %s:%d, want postgres:6543", cfg.Database.Engine, cfg.Database.Port)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("database host = %s, want the value from HODPOOL_DATABASE_HOST", cfg.Database.Host)
	}
	if got := cfg.QualifiedPath("hodpool.db"); got != filepath.Join(dir, "hodpool.db") {
		t.Errorf("QualifiedPath() = %s", got)
	}
}

func TestNewLogger(t *testing.T) {
	cfg := &Config{}
	cfg.Logging.LogLevel = "warn"
	cfg.Logging.LogFilePath = filepath.Join(t.TempDir(), "hodpool.log")

	logger, err := NewLogger(cfg)
	if err != nil {
		t.Fatalf("NewLogger() returned an unexpected error: %v", err)
	}
	if logger.Level != logrus.WarnLevel {
		t.Errorf("logger level = %v, want warn", logger.Level)
	}

	logger.Warn("segment truncated")
	contents, err := os.ReadFile(cfg.Logging.LogFilePath)
	if err != nil {
		t.Fatalf("error reading log file: %v", err)
	}
	if len(contents) == 0 {
		t.Error("expected the warning to be written to the log file")
	}

	cfg.Logging.LogLevel = "loud"
	if _, err := NewLogger(cfg); err == nil {
		t.Error("NewLogger() with an invalid level should fail")
	}
}
