package config

import (
	"log"
	"os"
	"strings"
	"time"
)

type Env struct {
	AppAddr     string
	AppEnv      string // development | production
	GinMode     string
	DBDSN       string
	JWTSecret   string
	JWTTTL      time.Duration
	CORSOrigins []string
}

// IsDevelopment controls how much failure detail is serialized to clients.
func (e Env) IsDevelopment() bool {
	return e.AppEnv == "development"
}

// LoadEnv reads process configuration. Missing required variables are fatal:
// better to refuse startup than to run with an empty signing secret.
func LoadEnv() Env {
	env := Env{
		AppAddr:   getenv("APP_ADDR", ":8080"),
		AppEnv:    getenv("APP_ENV", "development"),
		GinMode:   strings.TrimSpace(os.Getenv("GIN_MODE")),
		DBDSN:     strings.TrimSpace(os.Getenv("DB_DSN")),
		JWTSecret: strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTTTL:    24 * time.Hour,
	}

	if ttl := strings.TrimSpace(os.Getenv("JWT_EXPIRES_IN")); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			log.Fatalf("invalid JWT_EXPIRES_IN %q: %v", ttl, err)
		}
		env.JWTTTL = d
	}

	if origins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				env.CORSOrigins = append(env.CORSOrigins, o)
			}
		}
	}

	missing := []string{}
	if env.DBDSN == "" {
		missing = append(missing, "DB_DSN")
	}
	if env.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		log.Fatalf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if env.AppEnv == "production" && len(env.CORSOrigins) == 0 {
		log.Println("warning: CORS_ALLOWED_ORIGINS not set in production, allowing all origins")
	}

	return env
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
