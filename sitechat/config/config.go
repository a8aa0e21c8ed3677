package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string `yaml:"port"`

	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBHost     string `yaml:"db_host"`
	DBPort     string `yaml:"db_port"`
	DBName     string `yaml:"db_name"`

	SessionSecret string        `yaml:"session_secret"`
	SessionTTL    time.Duration `yaml:"session_ttl"`

	MinIOEndpoint  string        `yaml:"minio_endpoint"`
	MinIOAccessKey string        `yaml:"minio_access_key"`
	MinIOSecretKey string        `yaml:"minio_secret_key"`
	MinIOBucket    string        `yaml:"minio_bucket"`
	MinIOSecure    bool          `yaml:"minio_secure"`
	CacheTTL       time.Duration `yaml:"cache_ttl"`

	FetchMode    string        `yaml:"fetch_mode"` // "http" or "browser"
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	ChunkSize    int           `yaml:"chunk_size"`
	ChunkOverlap int           `yaml:"chunk_overlap"`

	OpenAIModel        string `yaml:"openai_model"`
	AnthropicModel     string `yaml:"anthropic_model"`
	AnthropicMaxTokens int    `yaml:"anthropic_max_tokens"`

	RequestTimeout time.Duration `yaml:"request_timeout"`
	LogDir         string        `yaml:"log_dir"`
}

const (
	FetchModeHTTP    = "http"
	FetchModeBrowser = "browser"
)

func Defaults() Config {
	return Config{
		Port:               "8000",
		DBPort:             "5432",
		SessionTTL:         7 * 24 * time.Hour,
		MinIOBucket:        "sitechat",
		CacheTTL:           24 * time.Hour,
		FetchMode:          FetchModeHTTP,
		FetchTimeout:       15 * time.Second,
		ChunkSize:          1000,
		ChunkOverlap:       100,
		OpenAIModel:        "gpt-3.5-turbo",
		AnthropicModel:     "claude-3-5-haiku-latest",
		AnthropicMaxTokens: 1024,
		RequestTimeout:     120 * time.Second,
		LogDir:             "./logs",
	}
}

// LoadConfig layers defaults, the optional CONFIG_FILE yaml and the environment
// (including a .env file), in that order.
func LoadConfig() (Config, error) {
	// .env is optional; system environment variables are used when it is missing
	_ = godotenv.Load()

	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DBUser = getEnv("DB_USER", cfg.DBUser)
	cfg.DBPassword = getEnv("DB_PASSWORD", cfg.DBPassword)
	cfg.DBHost = getEnv("DB_HOST", cfg.DBHost)
	cfg.DBPort = getEnv("DB_PORT", cfg.DBPort)
	cfg.DBName = getEnv("DB_NAME", cfg.DBName)
	cfg.SessionSecret = getEnv("SESSION_SECRET", cfg.SessionSecret)
	cfg.SessionTTL = getEnvDuration("SESSION_TTL", cfg.SessionTTL)
	cfg.MinIOEndpoint = getEnv("MINIO_ENDPOINT", cfg.MinIOEndpoint)
	cfg.MinIOAccessKey = getEnv("MINIO_ACCESS_KEY", cfg.MinIOAccessKey)
	cfg.MinIOSecretKey = getEnv("MINIO_SECRET_KEY", cfg.MinIOSecretKey)
	cfg.MinIOBucket = getEnv("MINIO_BUCKET", cfg.MinIOBucket)
	cfg.MinIOSecure = getEnvBool("MINIO_SECURE", cfg.MinIOSecure)
	cfg.CacheTTL = getEnvDuration("CACHE_TTL", cfg.CacheTTL)
	cfg.FetchMode = getEnv("FETCH_MODE", cfg.FetchMode)
	cfg.FetchTimeout = getEnvDuration("FETCH_TIMEOUT", cfg.FetchTimeout)
	cfg.ChunkSize = getEnvInt("CHUNK_SIZE", cfg.ChunkSize)
	cfg.ChunkOverlap = getEnvInt("CHUNK_OVERLAP", cfg.ChunkOverlap)
	cfg.OpenAIModel = getEnv("OPENAI_MODEL", cfg.OpenAIModel)
	cfg.AnthropicModel = getEnv("ANTHROPIC_MODEL", cfg.AnthropicModel)
	cfg.AnthropicMaxTokens = getEnvInt("ANTHROPIC_MAX_TOKENS", cfg.AnthropicMaxTokens)
	cfg.RequestTimeout = getEnvDuration("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.LogDir = getEnv("LOG_DIR", cfg.LogDir)
	return cfg, nil
}

// DatabaseEnabled reports whether sessions should live in postgres rather than memory.
func (c Config) DatabaseEnabled() bool {
	return c.DBHost != ""
}

func (c Config) CacheEnabled() bool {
	return c.MinIOEndpoint != ""
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
