package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env   string
	Port  int
	DBURL string

	// session token
	JWTSecret  string
	JWTTTLDays int
	CookieName string

	// optional admin seed
	AdminEmail    string
	AdminPassword string
	AdminUsername string
	AdminRole     string

	// optional redis-backed list cache
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// optional tracing
	OTELEndpoint string

	UploadDir      string
	PublicDir      string
	TemplatesGlob  string
	AllowedOrigins []string
}

// the signing secret has no sane default; starting without one is a config error
var ErrMissingJWTSecret = errors.New("JWT_SECRET is not set")

func Load() (Config, error) {
	// .env is a local-dev convenience, absence is fine
	_ = godotenv.Load()

	cfg := Config{
		Env:   getEnv("APP_ENV", "dev"),
		Port:  getEnvInt("PORT", 3632),
		DBURL: buildDBURL(),

		JWTSecret:  os.Getenv("JWT_SECRET"),
		JWTTTLDays: getEnvInt("JWT_TTL_DAYS", 7),
		CookieName: getEnv("JWT_COOKIE_NAME", "jwt"),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminRole:     getEnv("ADMIN_ROLE", "admin"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		OTELEndpoint: os.Getenv("OTEL_ENDPOINT"),

		UploadDir:     getEnv("UPLOAD_DIR", "public/uploads"),
		PublicDir:     getEnv("PUBLIC_DIR", "public"),
		TemplatesGlob: getEnv("TEMPLATES_GLOB", "web/templates/*.html"),
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	if cfg.JWTSecret == "" {
		return Config{}, ErrMissingJWTSecret
	}

	return cfg, nil
}

// TokenTTL is the lifetime of an issued identity token and its cookie.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTTTLDays) * 24 * time.Hour
}

func buildDBURL() string {
	if url := os.Getenv("DB_URL"); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "recipehub")
	pass := getEnv("DB_PASSWORD", "recipehub")
	name := getEnv("DB_NAME", "recipehub")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return num
	}
	return fallback
}
