// Package config loads and validates application configuration from
// environment variables. All values are read once at startup into an
// AppConfig that is passed explicitly to the services that need it;
// nothing in this package keeps mutable global state. Errors are
// collected so a misconfigured deployment reports every problem in
// one pass instead of failing on the first missing variable.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// PoolConfig holds the settings for the PostgreSQL connection pool.
type PoolConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	MaxSize  int
}

// AuthConfig holds token signing and session cookie settings.
type AuthConfig struct {
	JWTSecret     string        // secret key for signing session tokens
	TokenDuration time.Duration // validity window for issued tokens
	CookieMaxAge  time.Duration // lifetime of the jwt session cookie
}

// HashConfig holds the argon2id parameters used for password hashing.
// The values are fixed at startup and shared read-only by all requests.
type HashConfig struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port string
}

// AppConfig is the top-level configuration for the application.
type AppConfig struct {
	DB             *PoolConfig
	Auth           *AuthConfig
	Hash           *HashConfig
	Server         *ServerConfig
	MigrationsPath string
}

// getRequiredEnv reads an environment variable that must be present,
// collecting an error when it is missing.
func getRequiredEnv(key string, errs *[]string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		*errs = append(*errs, fmt.Sprintf("missing required environment variable: %s", key))
		return ""
	}
	return value
}

// getOptionalEnv reads an environment variable, falling back to
// defaultValue when it is unset.
func getOptionalEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getOptionalEnvInt reads an optional integer variable. A value that is
// present but unparsable is reported as an error.
func getOptionalEnvInt(key string, defaultValue int, errs *[]string) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected integer, got %q: %v", key, valueStr, err))
		return defaultValue
	}
	return valueInt
}

// getOptionalEnvDuration reads an optional duration variable in
// time.ParseDuration format (e.g. "15m", "24h").
func getOptionalEnvDuration(key string, defaultValue time.Duration, errs *[]string) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueDuration, err := time.ParseDuration(valueStr)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected duration string, got %q: %v", key, valueStr, err))
		return defaultValue
	}
	return valueDuration
}

// LoadConfig builds an AppConfig from the environment. It returns a
// single aggregated error listing every missing or malformed variable.
func LoadConfig() (*AppConfig, error) {
	var errs []string

	dbUser := getRequiredEnv("DB_USER", &errs)
	dbPassword := getRequiredEnv("DB_PASSWORD", &errs)
	dbName := getRequiredEnv("DB_NAME", &errs)
	dbHost := getOptionalEnv("DB_HOST", "localhost")
	dbPort := getOptionalEnvInt("DB_PORT", 5432, &errs)
	poolSize := getOptionalEnvInt("DB_POOL_SIZE", 10, &errs)
	if poolSize < 1 {
		errs = append(errs, fmt.Sprintf("DB_POOL_SIZE must be at least 1, got %d", poolSize))
		poolSize = 1
	}

	jwtSecret := getRequiredEnv("JWT_SECRET", &errs)
	tokenDuration := getOptionalEnvDuration("JWT_EXPIRES_IN", 24*time.Hour, &errs)
	cookieMaxAge := getOptionalEnvDuration("JWT_COOKIE_EXPIRES_IN", 24*time.Hour, &errs)

	hashMemory := getOptionalEnvInt("ARGON2_MEMORY_KIB", 64*1024, &errs)
	hashIterations := getOptionalEnvInt("ARGON2_ITERATIONS", 3, &errs)
	hashParallelism := getOptionalEnvInt("ARGON2_PARALLELISM", 2, &errs)

	serverPort := getOptionalEnv("PORT", "3000")
	migrationsPath := getOptionalEnv("MIGRATIONS_PATH", "./migrations")

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration errors:\n- %s", strings.Join(errs, "\n- "))
	}

	return &AppConfig{
		DB: &PoolConfig{
			Host:     dbHost,
			Port:     dbPort,
			User:     dbUser,
			Password: dbPassword,
			DBName:   dbName,
			MaxSize:  poolSize,
		},
		Auth: &AuthConfig{
			JWTSecret:     jwtSecret,
			TokenDuration: tokenDuration,
			CookieMaxAge:  cookieMaxAge,
		},
		Hash: &HashConfig{
			Memory:      uint32(hashMemory),
			Iterations:  uint32(hashIterations),
			Parallelism: uint8(hashParallelism),
			SaltLength:  16,
			KeyLength:   32,
		},
		Server:         &ServerConfig{Port: serverPort},
		MigrationsPath: migrationsPath,
	}, nil
}
