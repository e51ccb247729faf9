package config

import (
	"os"
	"strings"
)

type Env struct {
	AppAddr     string
	GinMode     string
	LogLevel    string
	DB          DBConfig
	RedisURL    string
	JWTSecret   string
	CORSOrigins []string
	RegionsFile string

	// AdminUserIDs may manage promo codes.
	AdminUserIDs []string
}

// DBConfig holds the MySQL connection parameters.
type DBConfig struct {
	User     string
	Password string
	Host     string
	Name     string
}

func LoadEnv() Env {
	return Env{
		AppAddr:  getenv("APP_ADDR", ":8080"),
		GinMode:  getenv("GIN_MODE", ""),
		LogLevel: getenv("LOG_LEVEL", "info"),
		DB: DBConfig{
			User:     getenv("DB_USER", "root"),
			Password: getenv("DB_PASSWORD", ""),
			Host:     getenv("DB_HOST", "127.0.0.1:3306"),
			Name:     getenv("DB_NAME", "strappon"),
		},
		RedisURL:     getenv("REDIS_URL", ""),
		JWTSecret:    getenv("JWT_SECRET", "dev-secret-change-me"),
		CORSOrigins:  splitList(getenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")),
		RegionsFile:  getenv("REGIONS_FILE", ""),
		AdminUserIDs: splitList(getenv("ADMIN_USER_IDS", "")),
	}
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
