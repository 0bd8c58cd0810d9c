package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	PostgreSQL PostgreSQLConfig
	Server     ServerConfig
	Search     SearchConfig
	Geocode    GeocodeConfig
	LLM        LLMConfig
	Logging    LoggingConfig
}

// PostgreSQLConfig holds PostgreSQL database configuration
type PostgreSQLConfig struct {
	DSN                string
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
}

// SearchConfig holds query defaults and ranking weights
type SearchConfig struct {
	DefaultLimit    int
	MaxLimit        int
	DefaultRadiusKm float64
	HorizonDays     int
	WeightDistance  float64
	WeightTime      float64
}

// GeocodeConfig holds geocoding collaborator and cache configuration.
// Confidence and ambiguity thresholds are tunable policy, not constants:
// the upstream dataset's accuracy is best-effort.
type GeocodeConfig struct {
	BaseURL         string
	CountryBias     string
	MinConfidence   float64
	AmbiguityMargin float64
	CacheSize       int
	Timeout         int
	RegionMinLat    float64
	RegionMaxLat    float64
	RegionMinLon    float64
	RegionMaxLon    float64
}

// LLMConfig holds the language-model collaborator configuration
// (any OpenAI-compatible chat completions endpoint).
type LLMConfig struct {
	APIKey      string
	APIBase     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     int
	Enabled     bool
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("PG_DSN", "")),
			Host:               getEnv("PG_HOST", "localhost"),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "sports_events"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 25),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 5),
		},
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Search: SearchConfig{
			DefaultLimit:    getEnvAsInt("SEARCH_DEFAULT_LIMIT", 20),
			MaxLimit:        getEnvAsInt("SEARCH_MAX_LIMIT", 100),
			DefaultRadiusKm: getEnvAsFloat("SEARCH_DEFAULT_RADIUS_KM", 25),
			HorizonDays:     getEnvAsInt("SEARCH_HORIZON_DAYS", 30),
			WeightDistance:  getEnvAsFloat("RANK_WEIGHT_DISTANCE", 0.7),
			WeightTime:      getEnvAsFloat("RANK_WEIGHT_TIME", 0.3),
		},
		Geocode: GeocodeConfig{
			BaseURL:         getEnv("GEOCODE_API_BASE", "https://nominatim.openstreetmap.org"),
			CountryBias:     getEnv("GEOCODE_COUNTRY_BIAS", "be"),
			MinConfidence:   getEnvAsFloat("GEOCODE_MIN_CONFIDENCE", 0.4),
			AmbiguityMargin: getEnvAsFloat("GEOCODE_AMBIGUITY_MARGIN", 0.1),
			CacheSize:       getEnvAsInt("GEOCODE_CACHE_SIZE", 1024),
			Timeout:         getEnvAsInt("GEOCODE_TIMEOUT", 10),
			RegionMinLat:    getEnvAsFloat("REGION_MIN_LAT", 49.45),
			RegionMaxLat:    getEnvAsFloat("REGION_MAX_LAT", 51.60),
			RegionMinLon:    getEnvAsFloat("REGION_MIN_LON", 2.30),
			RegionMaxLon:    getEnvAsFloat("REGION_MAX_LON", 6.50),
		},
		LLM: LLMConfig{
			APIKey:      getEnv("LLM_API_KEY", ""),
			APIBase:     getEnv("LLM_API_BASE", "http://localhost:11434/v1"),
			Model:       getEnv("LLM_MODEL", "llama3.1:8b"),
			Temperature: getEnvAsFloat("LLM_TEMPERATURE", 0.0),
			MaxTokens:   getEnvAsInt("LLM_MAX_TOKENS", 512),
			Timeout:     getEnvAsInt("LLM_TIMEOUT", 30),
			Enabled:     getEnvAsBool("LLM_ENABLED", true),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if cfg.Search.DefaultLimit < 1 || cfg.Search.DefaultLimit > cfg.Search.MaxLimit {
		return nil, fmt.Errorf("SEARCH_DEFAULT_LIMIT %d outside [1, %d]", cfg.Search.DefaultLimit, cfg.Search.MaxLimit)
	}

	return cfg, nil
}

// GetPostgreSQLDSN returns the PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean value for %s, using default %t", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
		return defaultValue
	}
	return value
}
