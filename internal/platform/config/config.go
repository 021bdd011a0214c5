package config

import (
	"log"
	"strings"
	"time"

	"github.com/SscSPs/routing_console/internal/core/reconcile"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	JWTSecret     string

	// Platform backend
	BackendBaseURL           string
	BackendTokenFile         string
	BackendTimeout           time.Duration
	BackendRequestsPerSecond float64
	BackendBurst             int

	// Reconciler
	ReconcileMaxConcurrency int
	ReconcileAddPolicy      reconcile.AddPolicy

	// HTTP surface
	RateLimit          string
	CORSAllowedOrigins []string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	v.SetDefault("BACKEND_BASE_URL", "http://localhost:9000/api")
	v.SetDefault("BACKEND_TOKEN_FILE", "")
	v.SetDefault("BACKEND_TIMEOUT", "15s")
	v.SetDefault("BACKEND_REQUESTS_PER_SECOND", 20.0)
	v.SetDefault("BACKEND_BURST", 10)
	v.SetDefault("RECONCILE_MAX_CONCURRENCY", 8)
	v.SetDefault("RECONCILE_ADD_POLICY", string(reconcile.AddFullDesired))
	v.SetDefault("RATE_LIMIT", "300-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	cfg.DatabaseURL = v.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set. Reconcile reports will not be persisted.")
	}

	cfg.Port = v.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.IsProduction = v.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = v.GetBool("ENABLE_DB_CHECK")

	cfg.JWTSecret = v.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.BackendBaseURL = strings.TrimRight(v.GetString("BACKEND_BASE_URL"), "/")
	cfg.BackendTokenFile = v.GetString("BACKEND_TOKEN_FILE")

	timeoutStr := v.GetString("BACKEND_TIMEOUT")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil || timeout <= 0 {
		timeout = 15 * time.Second
		log.Printf("Warning: Invalid value for BACKEND_TIMEOUT ('%s'). Defaulting to %s.\n", timeoutStr, timeout)
	}
	cfg.BackendTimeout = timeout

	cfg.BackendRequestsPerSecond = v.GetFloat64("BACKEND_REQUESTS_PER_SECOND")
	cfg.BackendBurst = v.GetInt("BACKEND_BURST")
	if cfg.BackendBurst < 1 {
		cfg.BackendBurst = 1
	}

	cfg.ReconcileMaxConcurrency = v.GetInt("RECONCILE_MAX_CONCURRENCY")
	policy, err := reconcile.ParseAddPolicy(v.GetString("RECONCILE_ADD_POLICY"))
	if err != nil {
		return nil, err
	}
	cfg.ReconcileAddPolicy = policy

	cfg.RateLimit = v.GetString("RATE_LIMIT")
	for _, origin := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	return cfg, nil
}
