package config

import (
	"fmt"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the cenaris service.
// Configuration can come from YAML file (config.yaml) or environment
// variables. Environment variables always override YAML values. Secrets
// (database password, storage connection string, session secret) must only
// come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	BaseURL  string `yaml:"base_url" env:"BASE_URL" env-default:""` // Auto-derived from Port if empty
	Version  string `yaml:"-"`                                     // Set at load time, not from config

	// Authentication configuration
	Auth AuthConfig `yaml:"auth"`

	// SessionSecret signs the OAuth-flow session cookie.
	SessionSecret string `yaml:"-" env:"SESSION_SECRET"`

	// Database configuration (PostgreSQL, document metadata)
	Database DatabaseConfig `yaml:"database"`

	// Storage is the evidence upload container.
	Storage StorageConfig `yaml:"storage"`

	// Results is where the external ML pipeline writes compliance scores.
	Results ResultsConfig `yaml:"results"`
}

// AuthConfig holds authentication-related configuration.
type AuthConfig struct {
	// EnableVerification controls whether JWT signatures are validated.
	// Set to false for local development without an auth server.
	EnableVerification bool `yaml:"enable_verification" env:"AUTH_ENABLE_VERIFICATION" env-default:"true"`

	// JWKSEndpointsStr is a comma-separated list of issuer=jwks_url pairs.
	// Format: "issuer1=url1,issuer2=url2"
	JWKSEndpointsStr string `yaml:"jwks_endpoints" env:"JWKS_ENDPOINTS" env-default:""`

	// JWKSEndpoints is the parsed map from JWKSEndpointsStr (not from config file).
	JWKSEndpoints map[string]string `yaml:"-"`

	// AuthServerURL is the external identity provider's base URL, used to
	// build login redirects.
	AuthServerURL string `yaml:"auth_server_url" env:"AUTH_SERVER_URL" env-default:""`

	// ClientID is the OAuth client ID registered with the auth server.
	ClientID string `yaml:"client_id" env:"OAUTH_CLIENT_ID" env-default:"cenaris"`
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"cenaris"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"cenaris"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	MigrationsPath string `yaml:"migrations_path" env:"PGMIGRATIONS_PATH" env-default:"migrations"`
}

// URL builds a pgx-compatible connection string.
func (c *DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

// StorageConfig holds the evidence document blob container settings.
type StorageConfig struct {
	// ConnectionString authenticates against the storage account.
	ConnectionString string `yaml:"-" env:"AZURE_STORAGE_CONNECTION_STRING"` // Secret - not in YAML
	Container        string `yaml:"container" env:"AZURE_CONTAINER_NAME" env-default:"compliance-documents"`

	// MaxUploadBytes caps evidence uploads (default 16 MiB).
	MaxUploadBytes int64 `yaml:"max_upload_bytes" env:"MAX_UPLOAD_BYTES" env-default:"16777216"`
}

// ResultsConfig holds the ML results container settings. The pipeline is an
// external producer; this service only reads from it.
type ResultsConfig struct {
	Container string `yaml:"container" env:"AZURE_ML_CONTAINER" env-default:"results"`
	BasePath  string `yaml:"base_path" env:"AZURE_ML_RESULTS_PATH" env-default:"compliance-results"`

	// SummaryFilename is the per-tenant summary file the dashboard reads.
	SummaryFilename string `yaml:"summary_filename" env:"AZURE_ML_SUMMARY_FILENAME" env-default:"compliance_summary.csv"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. The version parameter is injected at build time and set on the
// returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	if err := cfg.parseComplexFields(); err != nil {
		return nil, fmt.Errorf("failed to parse config fields: %w", err)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:" + cfg.Port
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// parseComplexFields parses fields that need post-processing after cleanenv.
func (c *Config) parseComplexFields() error {
	c.Auth.JWKSEndpoints = make(map[string]string)
	if c.Auth.JWKSEndpointsStr == "" {
		return nil
	}

	for _, pair := range strings.Split(c.Auth.JWKSEndpointsStr, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return fmt.Errorf("invalid jwks_endpoints entry: %q", pair)
		}
		c.Auth.JWKSEndpoints[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	return nil
}

// Validate fails fast on configuration that would only surface as runtime
// errors deep inside request handling. Outside the local environment the
// storage connection string and session secret are mandatory.
func (c *Config) Validate() error {
	if c.IsLocal() {
		return nil
	}
	if c.Storage.ConnectionString == "" {
		return fmt.Errorf("AZURE_STORAGE_CONNECTION_STRING is required in %s environment", c.Env)
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required in %s environment", c.Env)
	}
	if c.Auth.EnableVerification && len(c.Auth.JWKSEndpoints) == 0 {
		return fmt.Errorf("jwks_endpoints is required when auth verification is enabled")
	}
	return nil
}

// IsLocal returns true when running in the local development environment.
func (c *Config) IsLocal() bool {
	return c.Env == "local"
}
