package core

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config contains all of the configuration options available to hodpool's
// loader, catalog and command line tools.
type Config struct {
	Logging struct {
		// Full path to file to which logs will be written. Blank will write to stdout.
		LogFilePath string `mapstructure:"log_file_path"`
		// Minimum level of a log required to be written. Options: debug, info, warn, error
		LogLevel string `mapstructure:"log_level"`
	} `mapstructure:"logging"`

	Decode struct {
		// Decode the texture, mesh and face segments of a pool on separate goroutines.
		Concurrent bool `mapstructure:"concurrent"`
		// Largest compressed or decompressed segment size that will be allocated.
		MaxSegmentSize int `mapstructure:"max_segment_size"`
		// Chunk ID identifying pool chunks inside a container.
		PoolChunkID string `mapstructure:"pool_chunk_id"`
		// Number of container files loaded at the same time.
		Workers int `mapstructure:"workers"`
	} `mapstructure:"decode"`

	Cache struct {
		// Keep decoded segments in memory keyed by the hash of their compressed chunk.
		Enabled bool `mapstructure:"enabled"`
		// How long a decoded pool stays cached. 0 keeps entries until evicted by hand.
		TTL time.Duration `mapstructure:"ttl"`
		// How often expired entries are purged.
		CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	} `mapstructure:"cache"`

	Database struct {
		// Database engine storing decode reports. Options: sqlite, postgres
		Engine string `mapstructure:"engine"`
		// File name of the SQLite database, relative to the config directory.
		Filename string `mapstructure:"filename"`
		// Hostname of the Postgres database instance.
		Host string `mapstructure:"host"`
		// Port on db_host on which the Postgres instance is accepting connections.
		Port int `mapstructure:"port"`
		// Name of the database in Postgres for hodpool.
		Name string `mapstructure:"name"`
		// Username and password of a user with full RW privileges to ${db_name}.
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
		// Set to verify-full if the Postgres instance supports SSL.
		SSLMode string `mapstructure:"ssl_mode"`
	} `mapstructure:"database"`

	Debugging struct {
		// Enable a pprof server while long-running commands execute.
		PprofEnabled bool `mapstructure:"pprof_enabled"`
		// Port on which a pprof server will be started if enabled.
		PprofPort int `mapstructure:"pprof_port"`
		// Enable database-level query logging.
		DatabaseLoggingEnabled bool `mapstructure:"database_logging_enabled"`
	} `mapstructure:"debugging"`

	configDir string
}

const envVarPrefix = "HODPOOL"

// DefaultMaxSegmentSize bounds segment allocations unless overridden.
const DefaultMaxSegmentSize = 256 << 20

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.log_file_path", "")
	v.SetDefault("logging.log_level", "info")

	v.SetDefault("decode.concurrent", true)
	v.SetDefault("decode.max_segment_size", DefaultMaxSegmentSize)
	v.SetDefault("decode.pool_chunk_id", "POOL")
	v.SetDefault("decode.workers", 4)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", 10*time.Minute)
	v.SetDefault("cache.cleanup_interval", time.Minute)

	v.SetDefault("database.engine", "sqlite")
	v.SetDefault("database.filename", "hodpool.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "hodpool")
	v.SetDefault("database.username", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")

	v.SetDefault("debugging.pprof_enabled", false)
	v.SetDefault("debugging.pprof_port", 6060)
	v.SetDefault("debugging.database_logging_enabled", false)
}

// LoadConfig reads config.yaml from configPath, falling back to the defaults for
// anything the file (or the environment) does not set. A missing file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath == "" {
		configPath = "."
	}
	v.AddConfigPath(configPath)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envVarPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// This allows us to set nested yaml config options through environment
	// variables. For example, database.host can be set using: <envVarPrefix>_DATABASE_HOST
	for _, k := range v.AllKeys() {
		envVar := strings.ReplaceAll(strings.ToUpper(k), ".", "_")
		if err := v.BindEnv(k, envVarPrefix+"_"+envVar); err != nil {
			return nil, fmt.Errorf("error binding %s to %s: %w", k, envVarPrefix+"_"+envVar, err)
		}
	}

	config := &Config{configDir: configPath}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config object: %w", err)
	}
	return config, nil
}

const databaseURITemplate = "host=%s port=%d dbname=%s user=%s password=%s sslmode=%s"

// DatabaseURL returns a database URL generated from the provided config values.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf(
		databaseURITemplate,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.Username,
		c.Database.Password,
		c.Database.SSLMode,
	)
}

// QualifiedPath returns file joined to the directory the config was loaded from,
// unless file is already absolute.
func (c *Config) QualifiedPath(file string) string {
	if filepath.IsAbs(file) || c.configDir == "" {
		return file
	}
	return filepath.Join(c.configDir, file)
}
