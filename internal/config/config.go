package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port     string
	Env      string
	LogLevel string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// JWT
	JWTSecret     string
	JWTExpiration time.Duration

	// CORS
	CORSAllowedOrigins []string

	// Match lifecycle
	HeartbeatTimeout time.Duration // 상대가 사라진 것으로 판단하는 시간
	JoinGrace        time.Duration // 매치 생성 후 입장 대기 시간

	// Rating policy (수치는 설정으로 관리, 정책만 고정)
	SRGain         int
	SRLoss         int
	CRGain         int
	CRLoss         int
	CRDisagreeLoss int
	ForfeitPenalty float64 // 현재 레이팅 대비 차감 비율
}

func Load() (*Config, error) {
	// .env 파일 로드 (있는 경우)
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		JWTSecret:          getEnv("JWT_SECRET", "your-secret-key"),
		JWTExpiration:      parseDuration(getEnv("JWT_EXPIRATION", "24h"), 24*time.Hour),
		HeartbeatTimeout:   parseDuration(getEnv("HEARTBEAT_TIMEOUT", "30s"), 30*time.Second),
		JoinGrace:          parseDuration(getEnv("JOIN_GRACE", "45s"), 45*time.Second),
		SRGain:             getEnvInt("RATING_SR_GAIN", 5),
		SRLoss:             getEnvInt("RATING_SR_LOSS", 2),
		CRGain:             getEnvInt("RATING_CR_GAIN", 10),
		CRLoss:             getEnvInt("RATING_CR_LOSS", 5),
		CRDisagreeLoss:     getEnvInt("RATING_CR_DISAGREE_LOSS", 8),
		ForfeitPenalty:     getEnvFloat("RATING_FORFEIT_PENALTY", 0.05),
		CORSAllowedOrigins: splitEnv(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func parseDuration(s string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultValue
	}
	return d
}

func splitEnv(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
