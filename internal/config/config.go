package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	Store          string // "redis" | "memory"
	KeyPrefix      string // prefix of every Redis key (default: "bookmarker:")
	CheckRevision  bool   // reject saves when another writer saved since load
	StrictFormats  bool   // RFC 4180 CSV and escaped HTML on export
	MaxImportBytes int64  // cap on import request bodies

	BackupFile     string        // path of the periodic export (optional, empty = backups disabled)
	BackupFormat   string        // json | csv | html | homepage
	BackupInterval time.Duration // interval between backups (default: 24h)

	FetchTimeout      time.Duration // timeout for page hint fetches (0 = hints disabled)
	FetchAllowPrivate bool          // let hint fetches reach loopback and private addresses

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict access to specific IP (e.g. "1.2.3.4, 5.6.7.8")
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
	RateBurst    int      // token bucket size per client IP on mutating routes
	RatePerMin   int      // tokens refilled per minute
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("BOOKMARKER_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("BOOKMARKER_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("BOOKMARKER_LOG_LEVEL", "info"),
		PrettyLog: mustBool("BOOKMARKER_PRETTY_LOG", true),

		// Collection
		Store:          strings.ToLower(getenv("BOOKMARKER_STORE", StoreRedis)),
		KeyPrefix:      getenv("BOOKMARKER_KEY_PREFIX", "bookmarker:"),
		CheckRevision:  mustBool("BOOKMARKER_CHECK_REVISION", false),
		StrictFormats:  mustBool("BOOKMARKER_STRICT_FORMATS", false),
		MaxImportBytes: int64(getenvInt("BOOKMARKER_MAX_IMPORT_BYTES", 10<<20)),

		// Backups
		BackupFile:     getenv("BOOKMARKER_BACKUP_FILE", ""), // Optional, empty = backups disabled
		BackupFormat:   strings.ToLower(getenv("BOOKMARKER_BACKUP_FORMAT", "json")),
		BackupInterval: mustDuration("BOOKMARKER_BACKUP_INTERVAL", 24*time.Hour),

		FetchTimeout:      mustDuration("BOOKMARKER_FETCH_TIMEOUT", 3*time.Second),
		FetchAllowPrivate: mustBool("BOOKMARKER_FETCH_ALLOW_PRIVATE", false),

		// Redis settings
		RedisAddr:             getenv("BOOKMARKER_REDIS_ADDR", "localhost:6379"),
		RedisUser:             getenv("BOOKMARKER_REDIS_USERNAME", ""),
		RedisPasswordRequired: mustBool("BOOKMARKER_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("BOOKMARKER_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("BOOKMARKER_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("BOOKMARKER_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("BOOKMARKER_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("BOOKMARKER_TRUST_PROXY", false),
		RateBurst:    getenvInt("BOOKMARKER_RATE_BURST", 30),
		RatePerMin:   getenvInt("BOOKMARKER_RATE_PER_MIN", 60),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks value ranges and cross-field requirements.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ListenPort, validation.Required),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.Store, validation.Required, validation.In(StoreRedis, StoreMemory)),
		validation.Field(&c.MaxImportBytes, validation.Required, validation.Min(int64(1))),
		validation.Field(&c.BackupFormat, validation.In("json", "csv", "html", "homepage")),
		validation.Field(&c.BackupInterval,
			validation.When(c.BackupFile != "", validation.Required, validation.Min(time.Second))),
		validation.Field(&c.FetchTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.RedisAddr, validation.When(c.Store == StoreRedis, validation.Required)),
		validation.Field(&c.RedisPassword,
			validation.When(c.Store == StoreRedis && c.RedisPasswordRequired,
				validation.Required.Error("is required when BOOKMARKER_REDIS_PASSWORD_REQUIRED=true"))),
		validation.Field(&c.RedisDB, validation.Min(0)),
		validation.Field(&c.RateBurst, validation.Required, validation.Min(1)),
		validation.Field(&c.RatePerMin, validation.Required, validation.Min(1)),
	)
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	if c.RedisPassword != "" {
		c.RedisPassword = "***REDACTED***"
	}
	if c.RedisUser != "" {
		c.RedisUser = "***REDACTED***"
	}
	return c
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
