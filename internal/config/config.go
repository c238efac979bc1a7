package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	DB         DBConfig
	CORS       CORSConfig
	Classifier ClassifierConfig
	Ingest     IngestConfig
	Export     ExportConfig
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ClassifierConfig holds document classifier settings.
type ClassifierConfig struct {
	Threshold float64 `mapstructure:"threshold"`
}

// IngestConfig bounds incoming extraction payloads.
type IngestConfig struct {
	MaxPayloadBytes int64 `mapstructure:"max_payload_bytes"`
	KeepSourceText  bool  `mapstructure:"keep_source_text"`
}

// ExportConfig holds spreadsheet export and batch settings.
type ExportConfig struct {
	MaxRows   int `mapstructure:"max_rows"`
	BatchSize int `mapstructure:"batch_size"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// Load reads configuration from environment variables with the FORMSCAN_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FORMSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "formscan")
	v.SetDefault("db.password", "formscan_secret")
	v.SetDefault("db.name", "formscan_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	v.SetDefault("classifier.threshold", 0.3)

	v.SetDefault("ingest.max_payload_bytes", 2<<20)
	v.SetDefault("ingest.keep_source_text", true)

	v.SetDefault("export.max_rows", 5000)
	v.SetDefault("export.batch_size", 200)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":              "FORMSCAN_SERVER_PORT",
		"server.read_timeout":      "FORMSCAN_SERVER_READ_TIMEOUT",
		"server.write_timeout":     "FORMSCAN_SERVER_WRITE_TIMEOUT",
		"server.environment":       "FORMSCAN_SERVER_ENVIRONMENT",
		"db.host":                  "FORMSCAN_DB_HOST",
		"db.port":                  "FORMSCAN_DB_PORT",
		"db.user":                  "FORMSCAN_DB_USER",
		"db.password":              "FORMSCAN_DB_PASSWORD",
		"db.name":                  "FORMSCAN_DB_NAME",
		"db.sslmode":               "FORMSCAN_DB_SSLMODE",
		"db.max_open":              "FORMSCAN_DB_MAX_OPEN",
		"db.max_idle":              "FORMSCAN_DB_MAX_IDLE",
		"cors.allowed_origins":     "FORMSCAN_CORS_ALLOWED_ORIGINS",
		"classifier.threshold":     "FORMSCAN_CLASSIFIER_THRESHOLD",
		"ingest.max_payload_bytes": "FORMSCAN_INGEST_MAX_PAYLOAD_BYTES",
		"ingest.keep_source_text":  "FORMSCAN_INGEST_KEEP_SOURCE_TEXT",
		"export.max_rows":          "FORMSCAN_EXPORT_MAX_ROWS",
		"export.batch_size":        "FORMSCAN_EXPORT_BATCH_SIZE",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if FORMSCAN_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("FORMSCAN_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Classifier = ClassifierConfig{
		Threshold: v.GetFloat64("classifier.threshold"),
	}
	if cfg.Classifier.Threshold <= 0 || cfg.Classifier.Threshold > 1 {
		return nil, fmt.Errorf("classifier.threshold must be in (0, 1], got %v", cfg.Classifier.Threshold)
	}

	cfg.Ingest = IngestConfig{
		MaxPayloadBytes: v.GetInt64("ingest.max_payload_bytes"),
		KeepSourceText:  v.GetBool("ingest.keep_source_text"),
	}

	cfg.Export = ExportConfig{
		MaxRows:   v.GetInt("export.max_rows"),
		BatchSize: v.GetInt("export.batch_size"),
	}
	if cfg.Export.BatchSize <= 0 {
		cfg.Export.BatchSize = 200
	}

	return cfg, nil
}
