package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"tradebots/pkg/crypto"
)

// Config содержит всю конфигурацию приложения
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Logging  LoggingConfig
	Debug    DebugConfig
	CORS     CORSConfig
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Port     int
	Host     string
	UseHTTPS bool
	CertFile string
	KeyFile  string

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig - настройки подключения к БД
//
// URL (DATABASE_URL) имеет приоритет над отдельными DB_* параметрами.
type DatabaseConfig struct {
	URL      string
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// AuthConfig - параметры проверки JWT
type AuthConfig struct {
	// Domain - домен identity provider (без схемы), из него строятся
	// issuer https://<domain>/ и JWKS https://<domain>/.well-known/jwks.json
	Domain     string
	Audience   string
	Algorithms []string
	Leeway     time.Duration

	JWKSCacheTTL           time.Duration
	JWKSTimeout            time.Duration
	JWKSMinRefreshInterval time.Duration
}

// LoggingConfig - настройки логирования
type LoggingConfig struct {
	Level  string
	Format string // json, console (text)
	Output string // stdout, stderr или путь к файлу
}

// DebugConfig - basic auth для /metrics
//
// PasswordHash - bcrypt хеш. Пустые значения закрывают /metrics.
type DebugConfig struct {
	Username     string
	PasswordHash string
}

// CORSConfig - разрешенные origins для CORS и /ws/stream
type CORSConfig struct {
	AllowedOrigins []string
}

// supportedAlgorithms - JWKS содержит только RSA ключи
var supportedAlgorithms = map[string]bool{
	"RS256": true,
	"RS384": true,
	"RS512": true,
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	env := &envReader{}

	cfg := &Config{
		Server: ServerConfig{
			Port:            env.getInt("SERVER_PORT", 8080),
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			UseHTTPS:        env.getBool("USE_HTTPS", false),
			CertFile:        getEnv("CERT_FILE", ""),
			KeyFile:         getEnv("KEY_FILE", ""),
			ReadTimeout:     env.getDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    env.getDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     env.getDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: env.getDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            env.getInt("DB_PORT", 5432),
			Name:            getEnv("DB_NAME", "trading_bots"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    env.getInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    env.getInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: env.getDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Auth: AuthConfig{
			Domain:                 getEnv("AUTH0_DOMAIN", "botfsnd.auth0.com"),
			Audience:               getEnv("API_AUDIENCE", "capstone"),
			Algorithms:             getEnvAsList("AUTH_ALGORITHMS", []string{"RS256"}),
			Leeway:                 env.getDuration("AUTH_LEEWAY", 0),
			JWKSCacheTTL:           env.getDuration("JWKS_CACHE_TTL", 10*time.Minute),
			JWKSTimeout:            env.getDuration("JWKS_TIMEOUT", 5*time.Second),
			JWKSMinRefreshInterval: env.getDuration("JWKS_MIN_REFRESH_INTERVAL", 30*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			Output: getEnv("LOG_OUTPUT", "stdout"),
		},
		Debug: DebugConfig{
			Username:     getEnv("DEBUG_USERNAME", ""),
			PasswordHash: getEnv("DEBUG_PASSWORD_HASH", ""),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),
		},
	}

	if err := env.err(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет конфигурацию
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateAuth(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return c.validateDebug()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.UseHTTPS && (c.Server.CertFile == "" || c.Server.KeyFile == "") {
		return fmt.Errorf("CERT_FILE and KEY_FILE are required when USE_HTTPS is enabled")
	}

	timeouts := map[string]time.Duration{
		"SERVER_READ_TIMEOUT":     c.Server.ReadTimeout,
		"SERVER_WRITE_TIMEOUT":    c.Server.WriteTimeout,
		"SERVER_IDLE_TIMEOUT":     c.Server.IdleTimeout,
		"SERVER_SHUTDOWN_TIMEOUT": c.Server.ShutdownTimeout,
	}
	for name, value := range timeouts {
		if value <= 0 {
			return fmt.Errorf("%s must be positive, got %v", name, value)
		}
	}

	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.URL == "" {
		if c.Database.Host == "" || c.Database.Name == "" {
			return fmt.Errorf("DB_HOST and DB_NAME are required when DATABASE_URL is not set")
		}
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("DB_PORT must be between 1 and 65535, got %d", c.Database.Port)
		}
	}

	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be at least 1, got %d", c.Database.MaxOpenConns)
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("DB_MAX_IDLE_CONNS cannot be negative, got %d", c.Database.MaxIdleConns)
	}

	return nil
}

func (c *Config) validateAuth() error {
	if c.Auth.Domain == "" {
		return fmt.Errorf("AUTH0_DOMAIN is required")
	}
	if strings.Contains(c.Auth.Domain, "://") {
		return fmt.Errorf("AUTH0_DOMAIN must be a host name without scheme, got %q", c.Auth.Domain)
	}
	if c.Auth.Audience == "" {
		return fmt.Errorf("API_AUDIENCE is required")
	}

	if len(c.Auth.Algorithms) == 0 {
		return fmt.Errorf("AUTH_ALGORITHMS must list at least one algorithm")
	}
	for _, alg := range c.Auth.Algorithms {
		if !supportedAlgorithms[alg] {
			return fmt.Errorf("AUTH_ALGORITHMS: unsupported algorithm %q (RSA only)", alg)
		}
	}

	if c.Auth.Leeway < 0 {
		return fmt.Errorf("AUTH_LEEWAY cannot be negative, got %v", c.Auth.Leeway)
	}
	if c.Auth.JWKSCacheTTL <= 0 {
		return fmt.Errorf("JWKS_CACHE_TTL must be positive, got %v", c.Auth.JWKSCacheTTL)
	}
	if c.Auth.JWKSTimeout <= 0 {
		return fmt.Errorf("JWKS_TIMEOUT must be positive, got %v", c.Auth.JWKSTimeout)
	}
	if c.Auth.JWKSMinRefreshInterval < 0 {
		return fmt.Errorf("JWKS_MIN_REFRESH_INTERVAL cannot be negative, got %v", c.Auth.JWKSMinRefreshInterval)
	}

	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "json", "console", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json, console or text, got %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateDebug() error {
	if c.Debug.Username == "" && c.Debug.PasswordHash == "" {
		return nil
	}
	if c.Debug.Username == "" || c.Debug.PasswordHash == "" {
		return fmt.Errorf("DEBUG_USERNAME and DEBUG_PASSWORD_HASH must be set together")
	}
	if err := crypto.ValidateHash(c.Debug.PasswordHash); err != nil {
		return fmt.Errorf("DEBUG_PASSWORD_HASH must be a bcrypt hash: %w", err)
	}
	return nil
}

// Addr возвращает адрес для http.Server
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// DSN возвращает строку подключения к базе данных
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// DSNWithoutPassword возвращает строку подключения без пароля (для логирования)
func (d DatabaseConfig) DSNWithoutPassword() string {
	if d.URL != "" {
		return "DATABASE_URL"
	}
	return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Name, d.SSLMode)
}

// Вспомогательные функции для чтения переменных окружения

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// envReader читает типизированные переменные окружения и запоминает
// ошибки разбора. Пустая переменная означает значение по умолчанию.
type envReader struct {
	errs []error
}

func (e *envReader) lookup(key string) (string, bool) {
	value := strings.TrimSpace(os.Getenv(key))
	return value, value != ""
}

func (e *envReader) invalid(key, value string) {
	e.errs = append(e.errs, fmt.Errorf("%s: invalid value %q", key, value))
}

func (e *envReader) getInt(key string, defaultValue int) int {
	valueStr, ok := e.lookup(key)
	if !ok {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		e.invalid(key, valueStr)
		return defaultValue
	}
	return value
}

func (e *envReader) getBool(key string, defaultValue bool) bool {
	valueStr, ok := e.lookup(key)
	if !ok {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		e.invalid(key, valueStr)
		return defaultValue
	}
	return value
}

func (e *envReader) getDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr, ok := e.lookup(key)
	if !ok {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		e.invalid(key, valueStr)
		return defaultValue
	}
	return value
}

// err объединяет все ошибки разбора (nil, если их нет)
func (e *envReader) err() error {
	return errors.Join(e.errs...)
}

// getEnvAsList читает список через запятую, пустые элементы отбрасываются
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, item := range strings.Split(valueStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}
