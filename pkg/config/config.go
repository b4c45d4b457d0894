// Package config loads and validates application configuration from YAML or
// TOML files with environment-variable overrides. It provides typed structs for every
// subsystem (Server, CORS, Postgres, Kafka, Redis, Index, Search, Ingest, etc.).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	CORS     CORSConfig     `yaml:"cors"`
	Postgres PostgresConfig `yaml:"postgres"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Redis    RedisConfig    `yaml:"redis"`
	Index    IndexConfig    `yaml:"index"`
	Search   SearchConfig   `yaml:"search"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Logging  LoggingConfig  `yaml:"logging"`
	Tracing  TracingConfig  `yaml:"tracing"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	// RateLimit is the number of requests a single client may make per
	// RateWindow. Zero disables limiting.
	RateLimit       int           `yaml:"rateLimit"`
	RateWindow      time.Duration `yaml:"rateWindow"`
}

// CORSConfig controls the cross-origin policy of the search endpoint.
type CORSConfig struct {
	AllowOrigins []string `yaml:"allowOrigins"`
	AllowMethods []string `yaml:"allowMethods"`
	AllowHeaders []string `yaml:"allowHeaders"`
	MaxAge       int      `yaml:"maxAge"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds Kafka broker and topic settings. An empty broker list
// disables event publishing.
type KafkaConfig struct {
	Brokers       []string    `yaml:"brokers"`
	ConsumerGroup string      `yaml:"consumerGroup"`
	Topics        KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	SearchEvents   string `yaml:"searchEvents"`
	CatalogIndexed string `yaml:"catalogIndexed"`
}

// RedisConfig holds Redis connection and caching parameters.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// IndexConfig selects the lexical engine backend and the on-disk location of
// the word and phrase indices.
type IndexConfig struct {
	Backend    string `yaml:"backend"`
	WordPath   string `yaml:"wordPath"`
	PhrasePath string `yaml:"phrasePath"`
}

// SearchConfig controls the suggestion and retrieval limits and the query
// shapes handed to the index engine.
type SearchConfig struct {
	SuggestionLimit     int    `yaml:"suggestionLimit"`
	ResultLimit         int    `yaml:"resultLimit"`
	FuzzyDistance       int    `yaml:"fuzzyDistance"`
	FuzzyTranspositions bool   `yaml:"fuzzyTranspositions"`
	ParserConjunction   string `yaml:"parserConjunction"`
	LowercaseQuery      bool   `yaml:"lowercaseQuery"`
	NullOnEmpty         bool   `yaml:"nullOnEmpty"`
}

// IngestConfig controls catalog ingestion: worker pool size, index batch size
// and the CSV column layout of the catalog file.
type IngestConfig struct {
	Workers       int    `yaml:"workers"`
	BatchSize     int    `yaml:"batchSize"`
	CSVIDColumn   int    `yaml:"csvIdColumn"`
	CSVNameColumn int    `yaml:"csvNameColumn"`
	CSVHeader     bool   `yaml:"csvHeader"`
	PostgresQuery string `yaml:"postgresQuery"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TracingConfig controls request span logging.
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled"`
	SampleRate float64 `yaml:"sampleRate"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a config file (if provided) and applies environment-variable
// overrides. Files ending in .toml are decoded as TOML, anything else as YAML.
// It returns a Config populated with sensible defaults for any missing values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := decode(path, data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode unmarshals data into cfg. TOML keys match field names
// case-insensitively, so the YAML key spelling works in both formats.
func decode(path string, data []byte, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		_, err := toml.Decode(string(data), cfg)
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate rejects settings the services cannot run with.
func (c *Config) Validate() error {
	switch c.Index.Backend {
	case "bleve", "memory":
	default:
		return fmt.Errorf("index.backend must be bleve or memory, got %q", c.Index.Backend)
	}
	switch c.Search.ParserConjunction {
	case "or", "and":
	default:
		return fmt.Errorf("search.parserConjunction must be or or and, got %q", c.Search.ParserConjunction)
	}
	if c.Search.SuggestionLimit < 1 {
		return fmt.Errorf("search.suggestionLimit must be positive")
	}
	if c.Search.ResultLimit < 1 {
		return fmt.Errorf("search.resultLimit must be positive")
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server.rateLimit must not be negative")
	}
	if c.Server.RateLimit > 0 && c.Server.RateWindow <= 0 {
		return fmt.Errorf("server.rateWindow must be positive when rateLimit is set")
	}
	if c.Search.FuzzyDistance < 0 {
		return fmt.Errorf("search.fuzzyDistance must not be negative")
	}
	return nil
}

// defaultConfig returns a Config with defaults for local development.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			RateWindow:      time.Second,
		},
		CORS: CORSConfig{
			AllowOrigins: []string{"http://localhost:8081"},
			AllowMethods: []string{"GET"},
			AllowHeaders: []string{"Content-Type"},
			MaxAge:       3600,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "tracksearch",
			User:            "tracksearch",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			ConsumerGroup: "tracksearch-analytics",
			Topics: KafkaTopics{
				SearchEvents:   "search-events",
				CatalogIndexed: "catalog-indexed",
			},
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 10,
			CacheTTL: 5 * time.Minute,
		},
		Index: IndexConfig{
			Backend:    "bleve",
			WordPath:   "store/index/words",
			PhrasePath: "store/index/phrases",
		},
		Search: SearchConfig{
			SuggestionLimit:     10,
			ResultLimit:         50,
			FuzzyDistance:       1,
			FuzzyTranspositions: true,
			ParserConjunction:   "or",
			LowercaseQuery:      true,
		},
		Ingest: IngestConfig{
			Workers:       4,
			BatchSize:     1000,
			CSVIDColumn:   0,
			CSVNameColumn: 2,
			CSVHeader:     true,
			PostgresQuery: "SELECT track_id, name FROM tracks ORDER BY track_id",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			SampleRate: 0.1,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// applyEnvOverrides reads TS_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TS_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("TS_SERVER_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.RateLimit = n
		}
	}
	if v := os.Getenv("TS_CORS_ALLOW_ORIGINS"); v != "" {
		cfg.CORS.AllowOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("TS_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("TS_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("TS_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("TS_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("TS_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("TS_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("TS_REDIS_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Redis.Enabled = enabled
		}
	}
	if v := os.Getenv("TS_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("TS_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("TS_INDEX_BACKEND"); v != "" {
		cfg.Index.Backend = v
	}
	if v := os.Getenv("TS_INDEX_WORD_PATH"); v != "" {
		cfg.Index.WordPath = v
	}
	if v := os.Getenv("TS_INDEX_PHRASE_PATH"); v != "" {
		cfg.Index.PhrasePath = v
	}
	if v := os.Getenv("TS_SEARCH_PARSER_CONJUNCTION"); v != "" {
		cfg.Search.ParserConjunction = strings.ToLower(v)
	}
	if v := os.Getenv("TS_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("TS_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
