// Package config loads the application's Viper-backed configuration into
// domain.Config, following the teacher's internal/config.Manager shape
// (one manager, defaults grouped by subsystem, env vars layered on top of
// an optional config file).
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/mavedb/mavedb-core/internal/domain"
)

// Manager owns the loaded configuration and knows how to reload/validate it.
type Manager struct {
	config *domain.Config
}

// NewManager loads configuration from (in increasing priority) defaults,
// an optional config file, and MAVEDB_-prefixed environment variables.
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return m, nil
}

func (m *Manager) loadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/mavedb/")

	viper.SetEnvPrefix("MAVEDB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	m.setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := &domain.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unmarshaling config: %w", err)
	}
	m.config = cfg
	return nil
}

func (m *Manager) setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.database", "mavedb")
	viper.SetDefault("database.username", "mavedb")
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.max_conns", 25)
	viper.SetDefault("database.min_conns", 2)
	viper.SetDefault("database.max_conn_lifetime", "1h")
	viper.SetDefault("database.max_conn_idle_time", "30m")

	viper.SetDefault("redis.url", "redis://localhost:6379/0")
	viper.SetDefault("redis.queue_name", "mavedb:jobs")
	viper.SetDefault("redis.pool_size", 10)
	viper.SetDefault("redis.dial_timeout", "5s")

	for _, svc := range []string{"pubmed", "crossref", "biorxiv", "medrxiv", "clingen", "clinvar", "gnomad", "vrs_mapper"} {
		viper.SetDefault("external_api."+svc+".timeout", "15s")
		viper.SetDefault("external_api."+svc+".rate_limit", 3)
		viper.SetDefault("external_api."+svc+".retry_count", 2)
	}
	viper.SetDefault("external_api.pubmed.base_url", "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/")
	viper.SetDefault("external_api.crossref.base_url", "https://api.crossref.org/")
	viper.SetDefault("external_api.biorxiv.base_url", "https://api.biorxiv.org/")
	viper.SetDefault("external_api.medrxiv.base_url", "https://api.biorxiv.org/")
	viper.SetDefault("external_api.clingen.base_url", "https://reg.genome.network/")
	viper.SetDefault("external_api.clinvar.base_url", "https://ftp.ncbi.nlm.nih.gov/pub/clinvar/tab_delimited/archive/")
	viper.SetDefault("external_api.gnomad.base_url", "https://gnomad.broadinstitute.org/api/")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output", "stdout")
}

// Config returns the loaded configuration.
func (m *Manager) Config() *domain.Config { return m.config }

// Database returns the database subsystem configuration.
func (m *Manager) Database() *domain.DatabaseConfig { return &m.config.Database }

// ExternalAPI returns the external-service client configuration.
func (m *Manager) ExternalAPI() *domain.ExternalAPIConfig { return &m.config.ExternalAPI }

// Server returns the HTTP seam's listen configuration.
func (m *Manager) Server() *domain.ServerConfig { return &m.config.Server }

// Redis returns the durable job queue configuration.
func (m *Manager) Redis() *domain.RedisConfig { return &m.config.Redis }

// Reload re-reads configuration from its sources.
func (m *Manager) Reload() error { return m.loadConfig() }

// Validate checks the minimum configuration needed to start the process.
func (m *Manager) Validate() error {
	cfg := m.config
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	if cfg.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if cfg.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if cfg.Redis.URL == "" {
		return fmt.Errorf("redis url is required")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(cfg.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", cfg.Logging.Level)
	}
	return nil
}

// DatabaseURL formats the pgx connection string from the database config.
func (m *Manager) DatabaseURL() string {
	db := m.config.Database
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		db.Username, db.Password, db.Host, db.Port, db.Database, db.SSLMode)
}
