package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Storage  StorageConfig
	Ai       AIConfig
	SMTP     SMTPConfig
	Gate     GateConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	WsLogFilePath      string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	InstanceID         string
}

type DatabaseConfig struct {
	Connection string
}

type AuthConfig struct {
	JwtSecret    string
	SessionTTL   time.Duration
	CookieName   string
	CookieSecure bool
}

type StorageConfig struct {
	Endpoint   string
	Region     string
	AccessKey  string
	SecretKey  string
	Buckets    []string // ordered candidate list for uploads
	PresignTTL time.Duration
	MaxUpload  int64
}

type AIConfig struct {
	// BaseURL may be empty; the AI client reports that at call time.
	BaseURL string
	Timeout time.Duration
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type GateConfig struct {
	PublicPaths    []string
	PublicPrefixes []string
	SkipPrefixes   []string
	RedirectTo     string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			WsLogFilePath:      getEnv("WS_LOG_FILE_PATH", "logs/notification.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			InstanceID:         getEnv("INSTANCE_ID", hostname()),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Auth: AuthConfig{
			JwtSecret:    getEnv("JWT_SECRET", "default_secret"),
			SessionTTL:   getEnvAsDuration("SESSION_TTL", 12*time.Hour),
			CookieName:   getEnv("SESSION_COOKIE_NAME", "session"),
			CookieSecure: getEnv("GO_ENV", "development") == "production",
		},
		Storage: StorageConfig{
			Endpoint:   getEnv("S3_ENDPOINT", "http://localhost:9000"),
			Region:     getEnv("S3_REGION", "us-east-1"),
			AccessKey:  getEnv("S3_ACCESS_KEY", "minioadmin"),
			SecretKey:  getEnv("S3_SECRET_KEY", "minioadmin"),
			Buckets:    getEnvAsList("S3_BUCKETS", []string{"case-documents", "documents"}),
			PresignTTL: getEnvAsDuration("S3_PRESIGN_TTL", 15*time.Minute),
			MaxUpload:  int64(getEnvAsInt("MAX_UPLOAD_BYTES", 10*1024*1024)),
		},
		Ai: AIConfig{
			BaseURL: getEnv("AI_SERVICE_URL", ""),
			Timeout: getEnvAsDuration("AI_SERVICE_TIMEOUT", 120*time.Second),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Case Portal"),
		},
		Gate: GateConfig{
			PublicPaths:    getEnvAsList("GATE_PUBLIC_PATHS", []string{"/", "/setup", "/create-user", "/health"}),
			PublicPrefixes: getEnvAsList("GATE_PUBLIC_PREFIXES", []string{"/api/auth/"}),
			SkipPrefixes:   getEnvAsList("GATE_SKIP_PREFIXES", []string{"/static/", "/uploads/", "/favicon.ico", "/robots.txt"}),
			RedirectTo:     getEnv("GATE_REDIRECT_TO", "/"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsList splits a comma separated value, dropping empty items.
func getEnvAsList(key string, fallback []string) []string {
	strValue, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(strValue, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil || name == "" {
		return "case-portal"
	}
	return name
}
