package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the immutable process-wide configuration, built once at startup
// and passed explicitly into constructors.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Source   SourceConfig   `koanf:"source"`
	AWS      AWSConfig      `koanf:"aws"`
	Database DatabaseConfig `koanf:"database"`
	Metadata MetadataConfig `koanf:"metadata"`
	Query    QueryConfig    `koanf:"query"`
}

type ServerConfig struct {
	Port int    `koanf:"port"`
	Host string `koanf:"host"`
	Mode string `koanf:"mode"` // debug | release
}

// SourceConfig selects the observation backend.
type SourceConfig struct {
	Type string `koanf:"type"` // athena | postgres
}

type AWSConfig struct {
	Region          string `koanf:"region"`
	Bucket          string `koanf:"bucket"`
	AthenaDatabase  string `koanf:"athena_database"`
	AthenaWorkgroup string `koanf:"athena_workgroup"`
	// AthenaOutputPrefix is the key prefix under Bucket where Athena writes
	// result objects.
	AthenaOutputPrefix string `koanf:"athena_output_prefix"`
	PollInterval       string `koanf:"poll_interval"`
}

// OutputLocation renders the s3:// URI Athena writes results to.
func (c AWSConfig) OutputLocation() string {
	return fmt.Sprintf("s3://%s/%s", c.Bucket, strings.TrimPrefix(c.AthenaOutputPrefix, "/"))
}

type DatabaseConfig struct {
	DSN          string `koanf:"dsn"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
	AutoMigrate  bool   `koanf:"auto_migrate"`
}

// MetadataConfig locates the filter-option objects written by the upstream
// pipeline. LocalDir is the fallback when no bucket is configured.
type MetadataConfig struct {
	CarsKey   string `koanf:"cars_key"`
	HousesKey string `koanf:"houses_key"`
	LocalDir  string `koanf:"local_dir"`
}

type QueryConfig struct {
	CarsTable        string `koanf:"cars_table"`
	HousesTable      string `koanf:"houses_table"`
	DefaultStartDate string `koanf:"default_start_date"` // YYYY-MM-DD
}

// DefaultStart parses the configured default start date. Validate has already
// checked the format.
func (c QueryConfig) DefaultStart() time.Time {
	t, _ := time.Parse("2006-01-02", c.DefaultStartDate)
	return t
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server.mode %q (must be debug or release)", c.Server.Mode)
	}

	switch c.Source.Type {
	case "athena":
		if strings.TrimSpace(c.AWS.Region) == "" {
			return fmt.Errorf("aws.region is required for the athena source")
		}
		if strings.TrimSpace(c.AWS.Bucket) == "" {
			return fmt.Errorf("aws.bucket is required for the athena source")
		}
		if strings.TrimSpace(c.AWS.AthenaDatabase) == "" {
			return fmt.Errorf("aws.athena_database is required for the athena source")
		}
		if _, err := time.ParseDuration(c.AWS.PollInterval); err != nil {
			return fmt.Errorf("invalid aws.poll_interval %q: %w", c.AWS.PollInterval, err)
		}
	case "postgres":
		if strings.TrimSpace(c.Database.DSN) == "" {
			return fmt.Errorf("database.dsn is required for the postgres source")
		}
		if c.Database.MaxOpenConns <= 0 {
			return fmt.Errorf("database.max_open_conns must be > 0")
		}
		if c.Database.MaxIdleConns <= 0 {
			return fmt.Errorf("database.max_idle_conns must be > 0")
		}
	default:
		return fmt.Errorf("unsupported source.type %q (must be athena or postgres)", c.Source.Type)
	}

	if strings.TrimSpace(c.Query.CarsTable) == "" {
		return fmt.Errorf("query.cars_table is required")
	}
	if strings.TrimSpace(c.Query.HousesTable) == "" {
		return fmt.Errorf("query.houses_table is required")
	}
	if _, err := time.Parse("2006-01-02", c.Query.DefaultStartDate); err != nil {
		return fmt.Errorf("invalid query.default_start_date %q: %w", c.Query.DefaultStartDate, err)
	}

	return nil
}

// Load parses config from defaults + file + PORTAL_ env vars and validates
// it. A .env file next to the working directory is folded into the
// environment first, so local runs work without exporting anything.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err == nil {
		slog.Info("Loaded environment from .env file")
	}

	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":              8050,
		"server.host":              "0.0.0.0",
		"server.mode":              "release",
		"source.type":              "athena",
		"aws.region":               "",
		"aws.bucket":               "",
		"aws.athena_database":      "bil_finn_daglig",
		"aws.athena_workgroup":     "",
		"aws.athena_output_prefix": "athena-results/",
		"aws.poll_interval":        "2s",
		"database.dsn":             "",
		"database.max_open_conns":  10,
		"database.max_idle_conns":  5,
		"database.auto_migrate":    true,
		"metadata.cars_key":        "calc/metadata.json",
		"metadata.houses_key":      "calc/bolig_metadata.json",
		"metadata.local_dir":       ".",
		"query.cars_table":         "database_biler_parquet",
		"query.houses_table":       "database_bolig_parquet",
		"query.default_start_date": "2025-05-01",
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("PORTAL_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "PORTAL_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
