package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Email    EmailConfig    `mapstructure:"email"`
	Import   ImportConfig   `mapstructure:"import"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// AuthConfig holds JWT and password policy configuration
type AuthConfig struct {
	JWTSecret         string        `mapstructure:"jwt_secret"`
	TokenTTL          time.Duration `mapstructure:"token_ttl"`
	PasswordMaxAge    time.Duration `mapstructure:"password_max_age"`
	ResetTokenTTL     time.Duration `mapstructure:"reset_token_ttl"`
	ResetStoreMaxSize int           `mapstructure:"reset_store_max_size"`
	LoginAuditSize    int           `mapstructure:"login_audit_size"`
	SweepInterval     time.Duration `mapstructure:"sweep_interval"`

	// First-run admin account, created only when the user table is empty.
	// An empty password disables bootstrapping.
	BootstrapAdminUser     string `mapstructure:"bootstrap_admin_user"`
	BootstrapAdminPassword string `mapstructure:"bootstrap_admin_password"`
}

// StorageConfig selects and configures the receipt storage backend.
// Backend is chosen once at startup, not per call.
type StorageConfig struct {
	Backend  string `mapstructure:"backend"` // "local" or "s3"
	LocalDir string `mapstructure:"local_dir"`
	S3Bucket string `mapstructure:"s3_bucket"`
	S3Region string `mapstructure:"s3_region"`
	S3Prefix string `mapstructure:"s3_prefix"`
}

// EmailConfig holds SMTP configuration
type EmailConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	SMTPHost      string `mapstructure:"smtp_host"`
	SMTPPort      int    `mapstructure:"smtp_port"`
	SMTPUser      string `mapstructure:"smtp_user"`
	SMTPPassword  string `mapstructure:"smtp_password"`
	FromAddress   string `mapstructure:"from_address"`
	ApproverEmail string `mapstructure:"approver_email"`
}

// ImportConfig bounds CSV uploads
type ImportConfig struct {
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	viper.SetDefault("database.path", "data/timeledger.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("database.migrations_dir", "migrations")

	viper.SetDefault("auth.token_ttl", 12*time.Hour)
	viper.SetDefault("auth.password_max_age", 90*24*time.Hour)
	viper.SetDefault("auth.reset_token_ttl", 30*time.Minute)
	viper.SetDefault("auth.reset_store_max_size", 1000)
	viper.SetDefault("auth.login_audit_size", 512)
	viper.SetDefault("auth.sweep_interval", 5*time.Minute)
	viper.SetDefault("auth.bootstrap_admin_user", "admin")

	viper.SetDefault("storage.backend", "local")
	viper.SetDefault("storage.local_dir", "data/receipts")
	viper.SetDefault("storage.s3_region", "us-east-1")

	viper.SetDefault("email.enabled", false)
	viper.SetDefault("email.smtp_port", 587)

	viper.SetDefault("import.max_upload_bytes", int64(10<<20))

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	// Sensitive credentials from environment
	viper.BindEnv("auth.jwt_secret", "TIMELEDGER_JWT_SECRET")
	viper.BindEnv("auth.bootstrap_admin_password", "TIMELEDGER_BOOTSTRAP_ADMIN_PASSWORD")
	viper.BindEnv("email.smtp_user", "TIMELEDGER_SMTP_USER")
	viper.BindEnv("email.smtp_password", "TIMELEDGER_SMTP_PASSWORD")
	viper.BindEnv("storage.s3_bucket", "TIMELEDGER_S3_BUCKET")
	viper.BindEnv("storage.s3_region", "AWS_REGION")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive")
	}

	switch c.Storage.Backend {
	case "local":
		if c.Storage.LocalDir == "" {
			return fmt.Errorf("storage.local_dir is required for the local backend")
		}
	case "s3":
		if c.Storage.S3Bucket == "" {
			return fmt.Errorf("storage.s3_bucket is required for the s3 backend")
		}
	default:
		return fmt.Errorf("storage.backend must be \"local\" or \"s3\", got %q", c.Storage.Backend)
	}

	if c.Email.Enabled {
		if c.Email.SMTPHost == "" {
			return fmt.Errorf("email.smtp_host is required when email is enabled")
		}
		if c.Email.FromAddress == "" {
			return fmt.Errorf("email.from_address is required when email is enabled")
		}
	}

	return nil
}
