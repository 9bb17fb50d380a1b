package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all API server configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Rewards  RewardsConfig
	S3       S3Config
	CORS     CORSConfig
}

// WebConfig holds all web front-end configuration.
type WebConfig struct {
	Server ServerConfig
	Logger LoggerConfig
	CORS   CORSConfig
	Web    WebTierConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
	AutoMigrate     bool
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds token issuing configuration.
type AuthConfig struct {
	JWTSecret     string
	Issuer        string
	Audience      string
	TokenLifetime time.Duration
	BcryptCost    int
}

// RewardsConfig holds loyalty point ratios.
type RewardsConfig struct {
	PointsPerUnit decimal.Decimal
	BlockSize     int
	BlockValue    decimal.Decimal
}

// S3Config holds AWS S3 configuration for preset product images.
type S3Config struct {
	Enabled  bool
	Bucket   string
	Region   string
	Prefix   string // Path prefix within bucket (e.g., "images/")
	LocalDir string
}

// CORSConfig holds cross-origin configuration.
type CORSConfig struct {
	AllowedOrigins []string
}

// WebTierConfig holds the web front-end's upstream and session settings.
type WebTierConfig struct {
	APIBaseURL       string
	ServiceEmail     string
	ServicePassword  string
	SessionTTL       time.Duration
	CookieSecure     bool
	RefreshMargin    time.Duration
	MinCacheDuration time.Duration
	RequestTimeout   time.Duration
}

// Load loads API configuration from environment variables and an optional .env file.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := &Config{
		Server:   loadServer(8080),
		Database: loadDatabase(),
		Logger:   loadLogger(),
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", ""),
			Issuer:        getEnv("JWT_ISSUER", "boba-kart-api"),
			Audience:      getEnv("JWT_AUDIENCE", "boba-kart"),
			TokenLifetime: getEnvAsDuration("TOKEN_LIFETIME", 4*time.Hour),
			BcryptCost:    getEnvAsInt("BCRYPT_COST", 10),
		},
		Rewards: RewardsConfig{
			PointsPerUnit: getEnvAsDecimal("REWARDS_POINTS_PER_UNIT", decimal.NewFromInt(1)),
			BlockSize:     getEnvAsInt("REWARDS_BLOCK_SIZE", 100),
			BlockValue:    getEnvAsDecimal("REWARDS_BLOCK_VALUE", decimal.NewFromInt(5)),
		},
		S3: S3Config{
			Enabled:  getEnvAsBool("S3_ENABLED", false),
			Bucket:   getEnv("S3_BUCKET", ""),
			Region:   getEnv("S3_REGION", "us-east-1"),
			Prefix:   getEnv("S3_PREFIX", "images/"),
			LocalDir: getEnv("IMAGES_DIR", "data/images"),
		},
		CORS: loadCORS(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadWeb loads web front-end configuration from environment variables and an optional .env file.
func LoadWeb() (*WebConfig, error) {
	loadDotEnv()

	cfg := &WebConfig{
		Server: loadServer(8081),
		Logger: loadLogger(),
		CORS:   loadCORS(),
		Web: WebTierConfig{
			APIBaseURL:       strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8080"), "/"),
			ServiceEmail:     getEnv("SERVICE_ACCOUNT_EMAIL", ""),
			ServicePassword:  getEnv("SERVICE_ACCOUNT_PASSWORD", ""),
			SessionTTL:       getEnvAsDuration("SESSION_TTL", 30*time.Minute),
			CookieSecure:     getEnvAsBool("COOKIE_SECURE", false),
			RefreshMargin:    getEnvAsDuration("TOKEN_REFRESH_MARGIN", 120*time.Second),
			MinCacheDuration: getEnvAsDuration("TOKEN_MIN_CACHE", 60*time.Second),
			RequestTimeout:   getEnvAsDuration("API_REQUEST_TIMEOUT", 10*time.Second),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Server.validate(); err != nil {
		return err
	}

	if err := c.Database.validate(); err != nil {
		return err
	}

	if err := c.Logger.validate(); err != nil {
		return err
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}

	if c.Auth.TokenLifetime < time.Minute {
		return fmt.Errorf("token lifetime must be at least one minute")
	}

	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("invalid bcrypt cost: %d", c.Auth.BcryptCost)
	}

	if c.Rewards.BlockSize < 1 {
		return fmt.Errorf("rewards block size must be at least 1")
	}

	if c.Rewards.PointsPerUnit.IsNegative() || c.Rewards.BlockValue.IsNegative() {
		return fmt.Errorf("rewards ratios cannot be negative")
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
	}

	return nil
}

// Validate validates the web configuration.
func (c *WebConfig) Validate() error {
	if err := c.Server.validate(); err != nil {
		return err
	}

	if err := c.Logger.validate(); err != nil {
		return err
	}

	if !strings.HasPrefix(c.Web.APIBaseURL, "http://") && !strings.HasPrefix(c.Web.APIBaseURL, "https://") {
		return fmt.Errorf("invalid API base URL: %s", c.Web.APIBaseURL)
	}

	if c.Web.ServiceEmail == "" || c.Web.ServicePassword == "" {
		return fmt.Errorf("service account credentials are required")
	}

	if c.Web.SessionTTL < time.Minute {
		return fmt.Errorf("session TTL must be at least one minute")
	}

	if c.Web.MinCacheDuration <= 0 {
		return fmt.Errorf("minimum token cache duration must be positive")
	}

	return nil
}

func (c *ServerConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Port)
	}
	return nil
}

func (c *DatabaseConfig) validate() error {
	if c.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Port)
	}

	if c.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.MinConnections > c.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	return nil
}

func (c *LoggerConfig) validate() error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Level)
	}

	if c.Format != "json" && c.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Format)
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func loadDotEnv() {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()
}

func loadServer(defaultPort int) ServerConfig {
	return ServerConfig{
		Host: getEnv("SERVER_HOST", "0.0.0.0"),
		Port: getEnvAsInt("SERVER_PORT", defaultPort),
	}
}

func loadDatabase() DatabaseConfig {
	return DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvAsInt("DB_PORT", 5432),
		User:            getEnv("DB_USER", "postgres"),
		Password:        getEnv("DB_PASSWORD", ""),
		Database:        getEnv("DB_NAME", "bobakart"),
		MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
		MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
		MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
		AutoMigrate:     getEnvAsBool("DB_AUTO_MIGRATE", true),
	}
}

func loadLogger() LoggerConfig {
	return LoggerConfig{
		Level:  getEnv("LOG_LEVEL", "info"),
		Format: getEnv("LOG_FORMAT", "json"),
	}
}

func loadCORS() CORSConfig {
	return CORSConfig{
		AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go duration strings ("90s", "4h") or plain seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvAsDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
