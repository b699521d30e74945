package config

import (
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
)

type Config struct {
	PostgresURI string `env:"POSTGRES_URI,default=postgres://localhost:5432/serenify?sslmode=disable"`
	RedisURI    string `env:"REDIS_URI"` // empty disables pub/sub fan-out, caching and Redis rate limiting
	MongoURI    string `env:"MONGODB_URI"`

	JWTSecret string        `env:"JWT_SECRET,default=your-secret-key-change-in-production"`
	JWTTTL    time.Duration `env:"JWT_TTL,default=24h"`

	Port           string `env:"PORT,default=8080"`
	FrontendURL    string `env:"FRONTEND_URL,default=http://localhost:3000"`
	AllowedOrigins []string
	RawOrigins     string `env:"ALLOWED_ORIGINS"`
	Environment    string `env:"ENV,default=development"` // production, development, etc.
	LogLevel       string `env:"LOG_LEVEL,default=info"`

	CloudinaryName      string `env:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `env:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `env:"CLOUDINARY_API_SECRET"`

	LicenseAllowlistFile       string        `env:"LICENSE_ALLOWLIST_FILE,default=verified_licenses.yaml"`
	AppointmentAutoCompleteAge time.Duration `env:"APPOINTMENT_AUTOCOMPLETE_AFTER,default=24h"` // 0 disables the sweeper
	AllowDirectPasswordReset   bool          `env:"ALLOW_DIRECT_PASSWORD_RESET,default=true"`
}

// Load decodes the environment into a Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, err
	}
	cfg.Environment = strings.ToLower(strings.TrimSpace(cfg.Environment))

	// CORS: ALLOWED_ORIGINS wins; otherwise fall back to FRONTEND_URL
	cfg.AllowedOrigins = parseOrigins(cfg.RawOrigins)
	if len(cfg.AllowedOrigins) == 0 && strings.TrimSpace(cfg.FrontendURL) != "" {
		cfg.AllowedOrigins = []string{strings.TrimSpace(cfg.FrontendURL)}
	}
	return &cfg, nil
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" && !containsOrigin(out, part) {
			out = append(out, part)
		}
	}
	return out
}

func containsOrigin(list []string, o string) bool {
	o = strings.TrimSpace(strings.ToLower(o))
	for _, v := range list {
		if strings.TrimSpace(strings.ToLower(v)) == o {
			return true
		}
	}
	return false
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// CloudinaryEnabled reports whether all Cloudinary credentials are present.
func (c *Config) CloudinaryEnabled() bool {
	return c.CloudinaryName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}
