package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies FUTARCHY_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known FUTARCHY_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── Engine ──
	setFloat64(&cfg.Engine.Spread, "FUTARCHY_ENGINE_SPREAD")

	// ── Oracle ──
	setStr(&cfg.Oracle.WsURL, "FUTARCHY_ORACLE_WS_URL")
	setStringSlice(&cfg.Oracle.Markets, "FUTARCHY_ORACLE_MARKETS")

	// ── Database ──
	setStr(&cfg.Database.DSN, "FUTARCHY_DATABASE_DSN")
	setStr(&cfg.Database.Host, "FUTARCHY_DATABASE_HOST")
	setInt(&cfg.Database.Port, "FUTARCHY_DATABASE_PORT")
	setStr(&cfg.Database.Database, "FUTARCHY_DATABASE_NAME")
	setStr(&cfg.Database.User, "FUTARCHY_DATABASE_USER")
	setStr(&cfg.Database.Password, "FUTARCHY_DATABASE_PASSWORD")
	setStr(&cfg.Database.SSLMode, "FUTARCHY_DATABASE_SSL_MODE")
	setInt(&cfg.Database.PoolMaxConns, "FUTARCHY_DATABASE_POOL_MAX_CONNS")
	setInt(&cfg.Database.PoolMinConns, "FUTARCHY_DATABASE_POOL_MIN_CONNS")
	setBool(&cfg.Database.RunMigrations, "FUTARCHY_DATABASE_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "FUTARCHY_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "FUTARCHY_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "FUTARCHY_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "FUTARCHY_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "FUTARCHY_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "FUTARCHY_REDIS_TLS_ENABLED")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "FUTARCHY_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "FUTARCHY_S3_REGION")
	setStr(&cfg.S3.Bucket, "FUTARCHY_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "FUTARCHY_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "FUTARCHY_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "FUTARCHY_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "FUTARCHY_S3_FORCE_PATH_STYLE")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "FUTARCHY_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "FUTARCHY_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "FUTARCHY_SERVER_CORS_ORIGINS")

	// ── Top-level ──
	setStr(&cfg.Mode, "FUTARCHY_MODE")
	setStr(&cfg.LogLevel, "FUTARCHY_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
