package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Backend   BackendConfig
	Storage   StorageConfig
	Poll      PollConfig
	Transcode TranscodeConfig
	Worker    WorkerConfig
	Webhook   WebhookConfig
	Features  FeatureConfig
}

type ServerConfig struct {
	Host               string
	Port               int
	CORSAllowedOrigins []string
	RateLimitPerMinute int
}

type DatabaseConfig struct {
	URL            string
	MaxConns       int
	MinConns       int
	MigrationsPath string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// ResultTTL bounds how long finished transcription results stay cached.
	ResultTTL time.Duration
}

type AuthConfig struct {
	JWTSecret string // empty disables auth on /api/v1
}

// BackendConfig points at the serverless control-plane endpoint.
type BackendConfig struct {
	URL         string
	JSONTimeout time.Duration
}

// StorageConfig bounds binary transfers to presigned and audio URLs.
type StorageConfig struct {
	TransferTimeout time.Duration
}

type PollConfig struct {
	MaxWait             time.Duration
	Interval            time.Duration
	TolerateQueryErrors bool
}

type TranscodeConfig struct {
	FFmpegPath      string
	FallbackBitrate string
	TempDir         string
}

type WorkerConfig struct {
	Concurrency int
}

// WebhookConfig signs completion callbacks. An empty secret sends them unsigned.
type WebhookConfig struct {
	SigningSecret string
}

type FeatureConfig struct {
	RecordingEnabled bool
}

const defaultBackendURL = "https://cix08u1fwd.execute-api.us-east-1.amazonaws.com/default/fnPolly"

func Load() (*Config, error) {
	// A missing .env file is fine; the process environment still applies.
	_ = godotenv.Load()

	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	rateLimit, err := getEnvInt("RATE_LIMIT_PER_MINUTE", 60)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE: %w", err)
	}

	maxConns, err := getEnvInt("DB_MAX_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	minConns, err := getEnvInt("DB_MIN_CONNS", 1)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	resultTTL, err := getEnvDuration("RESULT_CACHE_TTL", 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("invalid RESULT_CACHE_TTL: %w", err)
	}

	jsonTimeout, err := getEnvDuration("BACKEND_JSON_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid BACKEND_JSON_TIMEOUT: %w", err)
	}

	transferTimeout, err := getEnvDuration("STORAGE_TRANSFER_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid STORAGE_TRANSFER_TIMEOUT: %w", err)
	}

	maxWait, err := getEnvDuration("POLL_MAX_WAIT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid POLL_MAX_WAIT: %w", err)
	}

	interval, err := getEnvDuration("POLL_INTERVAL", 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid POLL_INTERVAL: %w", err)
	}

	tolerate, err := getEnvBool("POLL_TOLERATE_QUERY_ERRORS", false)
	if err != nil {
		return nil, fmt.Errorf("invalid POLL_TOLERATE_QUERY_ERRORS: %w", err)
	}

	recording, err := getEnvBool("RECORDING_ENABLED", false)
	if err != nil {
		return nil, fmt.Errorf("invalid RECORDING_ENABLED: %w", err)
	}

	concurrency, err := getEnvInt("WORKER_CONCURRENCY", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid WORKER_CONCURRENCY: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:               getEnv("SERVER_HOST", "0.0.0.0"),
			Port:               port,
			CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
			RateLimitPerMinute: rateLimit,
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConns:       maxConns,
			MinConns:       minConns,
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		},
		Redis: RedisConfig{
			Addr:      getEnv("REDIS_ADDR", "localhost:6379"),
			Password:  getEnv("REDIS_PASSWORD", ""),
			DB:        redisDB,
			ResultTTL: resultTTL,
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("AUTH_JWT_SECRET", ""),
		},
		Backend: BackendConfig{
			URL:         getEnv("BACKEND_API_URL", defaultBackendURL),
			JSONTimeout: jsonTimeout,
		},
		Storage: StorageConfig{
			TransferTimeout: transferTimeout,
		},
		Poll: PollConfig{
			MaxWait:             maxWait,
			Interval:            interval,
			TolerateQueryErrors: tolerate,
		},
		Transcode: TranscodeConfig{
			FFmpegPath:      getEnv("FFMPEG_PATH", "ffmpeg"),
			FallbackBitrate: getEnv("TRANSCODE_FALLBACK_BITRATE", "192k"),
			TempDir:         getEnv("TRANSCODE_TEMP_DIR", ""),
		},
		Worker: WorkerConfig{
			Concurrency: concurrency,
		},
		Webhook: WebhookConfig{
			SigningSecret: getEnv("WEBHOOK_SIGNING_SECRET", ""),
		},
		Features: FeatureConfig{
			RecordingEnabled: recording,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Validate() error {
	var problems []string

	u, err := url.Parse(c.Backend.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, "BACKEND_API_URL must be an absolute URL")
	}
	if c.Backend.JSONTimeout <= 0 {
		problems = append(problems, "BACKEND_JSON_TIMEOUT must be positive")
	}
	if c.Storage.TransferTimeout <= 0 {
		problems = append(problems, "STORAGE_TRANSFER_TIMEOUT must be positive")
	}
	if c.Poll.MaxWait <= 0 {
		problems = append(problems, "POLL_MAX_WAIT must be positive")
	}
	if c.Poll.Interval <= 0 {
		problems = append(problems, "POLL_INTERVAL must be positive")
	}
	if strings.TrimSpace(c.Transcode.FFmpegPath) == "" {
		problems = append(problems, "FFMPEG_PATH must not be empty")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseBool(v)
}

// getEnvDuration accepts Go durations ("90s") or plain seconds ("2.5").
func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	return time.ParseDuration(v)
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
