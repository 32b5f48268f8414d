package domain

import "time"

// Config is the aggregate application configuration, unmarshaled by Viper
// following the teacher's internal/config.Manager shape.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	ExternalAPI ExternalAPIConfig `mapstructure:"external_api"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig is the HTTP seam's listen/timeout configuration.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DatabaseConfig is the Postgres connection pool configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Database        string        `mapstructure:"database"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// RedisConfig configures the durable job queue (component F).
type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	QueueName    string        `mapstructure:"queue_name"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
}

// ExternalAPIConfig groups the publication and enrichment service clients.
type ExternalAPIConfig struct {
	PubMed   ExternalServiceConfig `mapstructure:"pubmed"`
	Crossref ExternalServiceConfig `mapstructure:"crossref"`
	BioRxiv  ExternalServiceConfig `mapstructure:"biorxiv"`
	MedRxiv  ExternalServiceConfig `mapstructure:"medrxiv"`
	ClinGen  ExternalServiceConfig `mapstructure:"clingen"`
	ClinVar  ExternalServiceConfig `mapstructure:"clinvar"`
	GnomAD   ExternalServiceConfig `mapstructure:"gnomad"`
	VRS      ExternalServiceConfig `mapstructure:"vrs_mapper"`
}

// ExternalServiceConfig is the common shape shared by every external client.
type ExternalServiceConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RateLimit  int           `mapstructure:"rate_limit"`
	RetryCount int           `mapstructure:"retry_count"`
}

// LoggingConfig configures logrus output.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
