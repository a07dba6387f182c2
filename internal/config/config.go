package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Feed modes
const (
	FeedRemote  = "remote"
	FeedFixture = "fixture"
)

// Bookmark backends
const (
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request timeout for JSON endpoints (SSE is exempt)

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Feed
	FeedMode        string        // "remote" | "fixture"
	FeedURL         string        // randomuser.me compatible base URL
	FeedPageSize    int           // users per page
	FeedSeed        string        // generator seed, keeps pages stable
	FeedTimeout     time.Duration // HTTP timeout per request
	FeedMaxRetries  int           // retries on transient failures
	FeedFixtureFile string        // YAML pages, used when FeedMode == "fixture"

	// Sessions
	SessionIdleTTL      time.Duration // sessions unused for this long are ended
	SessionReapInterval time.Duration // how often idle sessions are looked for

	// Bookmarks
	BookmarkBackend string // "redis" | "postgres" | "memory"
	PostgresDSN     string // required with the postgres backend

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisPoolSize         int           // Redis connection pool size

	// Backend connect retry policy (Redis and Postgres)
	ConnectTimeout time.Duration // total time to retry connecting (ex: 30s)
	RetryInterval  time.Duration // initial wait between retries (ex: 2s, grows exponentially)
	MaxWait        time.Duration // max wait between retries (ex: 10s)
	PingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	WarnThreshold  int           // warn after this many attempts

	// Access restrictions
	AllowedCIDRS []string // optional, restrict API access to specific IPs/CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
	RateBurst    int      // feed-triggering requests allowed in a burst per client
	RatePerMin   int      // sustained feed-triggering requests per minute per client
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("USERBROWSER_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("USERBROWSER_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("USERBROWSER_REQUEST_TIMEOUT", 30*time.Second),

		// Logging
		LogLevel:  getenv("USERBROWSER_LOG_LEVEL", "info"),
		PrettyLog: mustBool("USERBROWSER_PRETTY_LOG", true),

		// Feed
		FeedMode:        strings.ToLower(getenv("USERBROWSER_FEED_MODE", FeedRemote)),
		FeedURL:         getenv("USERBROWSER_FEED_URL", "https://randomuser.me"),
		FeedPageSize:    getenvInt("USERBROWSER_FEED_PAGE_SIZE", 20),
		FeedSeed:        getenv("USERBROWSER_FEED_SEED", "xyz"),
		FeedTimeout:     mustDuration("USERBROWSER_FEED_TIMEOUT", 10*time.Second),
		FeedMaxRetries:  getenvInt("USERBROWSER_FEED_MAX_RETRIES", 2),
		FeedFixtureFile: getenv("USERBROWSER_FEED_FIXTURE_FILE", ""),

		// Sessions
		SessionIdleTTL:      mustDuration("USERBROWSER_SESSION_IDLE_TTL", 30*time.Minute),
		SessionReapInterval: mustDuration("USERBROWSER_SESSION_REAP_INTERVAL", time.Minute),

		// Bookmarks
		BookmarkBackend: strings.ToLower(getenv("USERBROWSER_BOOKMARK_BACKEND", BackendRedis)),
		PostgresDSN:     getenv("USERBROWSER_POSTGRES_DSN", ""),

		// Redis settings
		RedisUser:             getenv("USERBROWSER_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("USERBROWSER_REDIS_PASSWORD_REQUIRED", true),
		RedisPassword:         getenv("USERBROWSER_REDIS_PASSWORD", ""),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),

		// Connect retry policy
		ConnectTimeout: mustDuration("USERBROWSER_CONNECT_TIMEOUT", 30*time.Second),
		RetryInterval:  mustDuration("USERBROWSER_RETRY_INTERVAL", 2*time.Second),
		MaxWait:        mustDuration("USERBROWSER_MAX_WAIT", 10*time.Second),
		PingTimeout:    mustDuration("USERBROWSER_PING_TIMEOUT", 5*time.Second),
		WarnThreshold:  getenvInt("USERBROWSER_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedCIDRS: parseAllowedIPs(getenv("USERBROWSER_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("USERBROWSER_TRUST_PROXY", false),
		RateBurst:    getenvInt("USERBROWSER_RATE_BURST", 20),
		RatePerMin:   getenvInt("USERBROWSER_RATE_PER_MIN", 60),
	}

	switch cfg.FeedMode {
	case FeedRemote:
	case FeedFixture:
		cfg.FeedFixtureFile = requireEnv("USERBROWSER_FEED_FIXTURE_FILE")
	default:
		panic(fmt.Sprintf("❌ FATAL: Invalid USERBROWSER_FEED_MODE %q (want remote or fixture)", cfg.FeedMode))
	}

	switch cfg.BookmarkBackend {
	case BackendRedis:
		cfg.RedisAddr = requireEnv("USERBROWSER_REDIS_ADDR")
		cfg.RedisDB = requireEnvInt("USERBROWSER_REDIS_DB")
		// Validate Redis password configuration
		if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
			panic("❌ FATAL: USERBROWSER_REDIS_PASSWORD is required when USERBROWSER_REDIS_PASSWORD_REQUIRED=true")
		}
	case BackendPostgres:
		cfg.PostgresDSN = requireEnv("USERBROWSER_POSTGRES_DSN")
	case BackendMemory:
	default:
		panic(fmt.Sprintf("❌ FATAL: Invalid USERBROWSER_BOOKMARK_BACKEND %q (want redis, postgres or memory)", cfg.BookmarkBackend))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if c.RedisPassword != "" {
		c.RedisPassword = "***REDACTED***"
	}
	if c.RedisUser != "" {
		c.RedisUser = "***REDACTED***"
	}
	if c.PostgresDSN != "" {
		c.PostgresDSN = "***REDACTED***"
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

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func requireEnvInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid integer value for %s: %s", key, v))
	}
	return i
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
