package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	API       APIConfig
	Store     StoreConfig
	RateLimit RateLimitConfig
	Auth      AuthConfig
	CORS      CORSConfig
	Incidents IncidentsConfig
	Email     EmailConfig
	OTLP      OTLPConfig
}

type ServerConfig struct {
	Port            string
	Host            string
	ShutdownTimeout time.Duration
}

type APIConfig struct {
	Name    string
	Version string
}

// Prefix is the versioned path every API route lives under
func (c APIConfig) Prefix() string {
	return "/api/v1/" + c.Name
}

type StoreConfig struct {
	Driver       string
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	MaxOpenConns int
	MaxIdleConns int
	MongoURI     string
	MongoDB      string
}

type RateLimitConfig struct {
	Requests   int
	Window     time.Duration
	SweepEvery time.Duration
	KeyHeader  string
	TrustXFF   bool

	StatsRedisAddr     string
	StatsRedisPassword string
	StatsRedisDB       int
	StatsPrefix        string
	StatsTTL           time.Duration
}

type AuthConfig struct {
	Enabled   bool
	JWTSecret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type IncidentsConfig struct {
	RabbitURL string
	Queue     string
}

type EmailConfig struct {
	SendsPerSecond float64
	SendDelay      time.Duration
}

type OTLPConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
	Environment string
	LogLevel    string
}

const (
	DriverMySQL  = "mysql"
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// LoadConfig loads configuration from environment variables, reading a .env
// file first when one exists
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnv("SERVER_PORT", "8080"),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		API: APIConfig{
			Name:    getEnv("API_NAME", "example"),
			Version: getEnv("API_VERSION", "0.0.1"),
		},
		Store: StoreConfig{
			Driver:       strings.ToLower(getEnv("STORE_DRIVER", DriverMySQL)),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "3306"),
			User:         getEnv("DB_USER", "root"),
			Password:     os.Getenv("DB_PASSWORD"),
			Name:         getEnv("DB_NAME", "products"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
			MongoURI:     getEnv("MONGO_CLIENT", "mongodb://localhost:27017"),
			MongoDB:      getEnv("DB_NAME_MONGO", "products"),
		},
		RateLimit: RateLimitConfig{
			Requests:           getEnvInt("RATE_LIMIT_REQUESTS", 5),
			Window:             getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
			SweepEvery:         getEnvDuration("RATE_LIMIT_SWEEP_EVERY", 2*time.Minute),
			KeyHeader:          os.Getenv("RATE_KEY_HEADER"),
			TrustXFF:           getEnvBool("TRUST_XFF", false),
			StatsRedisAddr:     os.Getenv("RATE_STATS_REDIS_ADDR"),
			StatsRedisPassword: os.Getenv("RATE_STATS_REDIS_PASSWORD"),
			StatsRedisDB:       getEnvInt("RATE_STATS_REDIS_DB", 0),
			StatsPrefix:        getEnv("RATE_STATS_PREFIX", "ratelimit:stats"),
			StatsTTL:           getEnvDuration("RATE_STATS_TTL", 24*time.Hour),
		},
		Auth: AuthConfig{
			Enabled:   getEnvBool("AUTH_ENABLED", false),
			JWTSecret: os.Getenv("JWT_SECRET"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		},
		Incidents: IncidentsConfig{
			RabbitURL: os.Getenv("RABBITMQ_URL"),
			Queue:     getEnv("RABBITMQ_QUEUE", "incidents"),
		},
		Email: EmailConfig{
			SendsPerSecond: getEnvFloat("EMAIL_SENDS_PER_SECOND", 1),
			SendDelay:      getEnvDuration("EMAIL_SEND_DELAY", 5*time.Second),
		},
		OTLP: OTLPConfig{
			Enabled:     getEnvBool("OTEL_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "products-api"),
			Environment: getEnv("OTEL_ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "debug"),
		},
	}
}

// Validate rejects configurations the service cannot start with
func (c *Config) Validate() error {
	if c.RateLimit.Requests <= 0 {
		return errors.New("RATE_LIMIT_REQUESTS must be > 0")
	}
	if c.RateLimit.Window <= 0 {
		return errors.New("RATE_LIMIT_WINDOW must be > 0")
	}
	switch c.Store.Driver {
	case DriverMySQL, DriverMongo, DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required when AUTH_ENABLED=true")
	}
	if c.Email.SendsPerSecond <= 0 {
		return errors.New("EMAIL_SENDS_PER_SECOND must be > 0")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvFloat(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
