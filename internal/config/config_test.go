package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestRequireEnv(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		value     string
		shouldSet bool
		wantPanic bool
	}{
		{
			name:      "variable set",
			key:       "TEST_VAR",
			value:     "test_value",
			shouldSet: true,
			wantPanic: false,
		},
		{
			name:      "variable not set",
			key:       "TEST_VAR_MISSING",
			shouldSet: false,
			wantPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				if err := os.Setenv(tt.key, tt.value); err != nil {
					t.Fatalf("failed to set env var: %v", err)
				}
				defer func() {
					if err := os.Unsetenv(tt.key); err != nil {
						t.Errorf("failed to unset env var: %v", err)
					}
				}()
			}

			if tt.wantPanic {
				defer func() {
					if r := recover(); r == nil {
						t.Errorf("requireEnv() should have panicked")
					}
				}()
			}

			result := requireEnv(tt.key)
			if !tt.wantPanic && result != tt.value {
				t.Errorf("requireEnv() = %v, want %v", result, tt.value)
			}
		})
	}
}

func TestRequireEnvInt(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		value     string
		expected  int
		wantPanic bool
	}{
		{
			name:      "valid integer",
			key:       "TEST_INT",
			value:     "42",
			expected:  42,
			wantPanic: false,
		},
		{
			name:      "invalid integer",
			key:       "TEST_INT_INVALID",
			value:     "not_a_number",
			wantPanic: true,
		},
		{
			name:      "missing variable",
			key:       "TEST_INT_MISSING",
			value:     "",
			wantPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				if err := os.Setenv(tt.key, tt.value); err != nil {
					t.Fatalf("failed to set env var: %v", err)
				}
				defer func() {
					if err := os.Unsetenv(tt.key); err != nil {
						t.Errorf("failed to unset env var: %v", err)
					}
				}()
			}

			if tt.wantPanic {
				defer func() {
					if r := recover(); r == nil {
						t.Errorf("requireEnvInt() should have panicked")
					}
				}()
			}

			result := requireEnvInt(tt.key)
			if !tt.wantPanic && result != tt.expected {
				t.Errorf("requireEnvInt() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      time.Duration
		expected time.Duration
	}{
		{
			name:     "valid duration",
			key:      "TEST_DURATION",
			value:    "5s",
			def:      1 * time.Second,
			expected: 5 * time.Second,
		},
		{
			name:     "invalid duration uses default",
			key:      "TEST_DURATION_INVALID",
			value:    "invalid",
			def:      10 * time.Second,
			expected: 10 * time.Second,
		},
		{
			name:     "missing variable uses default",
			key:      "TEST_DURATION_MISSING",
			value:    "",
			def:      15 * time.Second,
			expected: 15 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				if err := os.Setenv(tt.key, tt.value); err != nil {
					t.Fatalf("failed to set env var: %v", err)
				}
				defer func() {
					if err := os.Unsetenv(tt.key); err != nil {
						t.Errorf("failed to unset env var: %v", err)
					}
				}()
			}

			result := mustDuration(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustDuration() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMustBool(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      bool
		expected bool
	}{
		{
			name:     "true value",
			key:      "TEST_BOOL",
			value:    "true",
			def:      false,
			expected: true,
		},
		{
			name:     "false value",
			key:      "TEST_BOOL_FALSE",
			value:    "false",
			def:      true,
			expected: false,
		},
		{
			name:     "invalid value uses default",
			key:      "TEST_BOOL_INVALID",
			value:    "invalid",
			def:      true,
			expected: true,
		},
		{
			name:     "missing variable uses default",
			key:      "TEST_BOOL_MISSING",
			value:    "",
			def:      false,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				if err := os.Setenv(tt.key, tt.value); err != nil {
					t.Fatalf("failed to set env var: %v", err)
				}
				defer func() {
					if err := os.Unsetenv(tt.key); err != nil {
						t.Errorf("failed to unset env var: %v", err)
					}
				}()
			}

			result := mustBool(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustBool() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestLoadMemoryBackend(t *testing.T) {
	t.Setenv("USERBROWSER_BOOKMARK_BACKEND", "memory")
	t.Setenv("USERBROWSER_FEED_PAGE_SIZE", "7")
	t.Setenv("USERBROWSER_SESSION_IDLE_TTL", "2m")
	t.Setenv("USERBROWSER_ALLOWED_CIDRS", "10.0.0.0/8, '192.168.1.4'")

	cfg := Load()

	if cfg.BookmarkBackend != BackendMemory {
		t.Errorf("BookmarkBackend = %q, want memory", cfg.BookmarkBackend)
	}
	if cfg.FeedMode != FeedRemote {
		t.Errorf("FeedMode = %q, want remote by default", cfg.FeedMode)
	}
	if cfg.FeedPageSize != 7 {
		t.Errorf("FeedPageSize = %d, want 7", cfg.FeedPageSize)
	}
	if cfg.FeedSeed != "xyz" {
		t.Errorf("FeedSeed = %q, want xyz", cfg.FeedSeed)
	}
	if cfg.SessionIdleTTL != 2*time.Minute {
		t.Errorf("SessionIdleTTL = %v, want 2m", cfg.SessionIdleTTL)
	}
	if len(cfg.AllowedCIDRS) != 2 || cfg.AllowedCIDRS[1] != "192.168.1.4" {
		t.Errorf("AllowedCIDRS = %v", cfg.AllowedCIDRS)
	}
	if cfg.RedisAddr != "" {
		t.Errorf("RedisAddr should not be read with the memory backend")
	}
}

func TestLoadRedisBackend(t *testing.T) {
	t.Setenv("USERBROWSER_REDIS_ADDR", "redis:6379")
	t.Setenv("USERBROWSER_REDIS_DB", "2")
	t.Setenv("USERBROWSER_REDIS_PASSWORD", "secret")

	cfg := Load()
	if cfg.BookmarkBackend != BackendRedis {
		t.Errorf("BookmarkBackend = %q, want redis by default", cfg.BookmarkBackend)
	}
	if cfg.RedisAddr != "redis:6379" || cfg.RedisDB != 2 {
		t.Errorf("redis settings = %s/%d", cfg.RedisAddr, cfg.RedisDB)
	}

	red := cfg.Redacted()
	if red.RedisPassword == "secret" || cfg.RedisPassword != "secret" {
		t.Errorf("Redacted() must hide the password on the copy only")
	}
}

func TestLoadPanics(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "redis without address",
			env:  map[string]string{"USERBROWSER_BOOKMARK_BACKEND": "redis"},
			want: "USERBROWSER_REDIS_ADDR",
		},
		{
			name: "redis without required password",
			env: map[string]string{
				"USERBROWSER_REDIS_ADDR": "redis:6379",
				"USERBROWSER_REDIS_DB":   "0",
			},
			want: "USERBROWSER_REDIS_PASSWORD",
		},
		{
			name: "postgres without dsn",
			env:  map[string]string{"USERBROWSER_BOOKMARK_BACKEND": "postgres"},
			want: "USERBROWSER_POSTGRES_DSN",
		},
		{
			name: "fixture without file",
			env: map[string]string{
				"USERBROWSER_BOOKMARK_BACKEND": "memory",
				"USERBROWSER_FEED_MODE":        "fixture",
			},
			want: "USERBROWSER_FEED_FIXTURE_FILE",
		},
		{
			name: "unknown backend",
			env:  map[string]string{"USERBROWSER_BOOKMARK_BACKEND": "sqlite"},
			want: "USERBROWSER_BOOKMARK_BACKEND",
		},
		{
			name: "unknown feed mode",
			env: map[string]string{
				"USERBROWSER_BOOKMARK_BACKEND": "memory",
				"USERBROWSER_FEED_MODE":        "carrier-pigeon",
			},
			want: "USERBROWSER_FEED_MODE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			defer func() {
				r := recover()
				if r == nil {
					t.Fatalf("Load() should have panicked")
				}
				if msg, _ := r.(string); !strings.Contains(msg, tt.want) {
					t.Errorf("panic = %v, want mention of %s", r, tt.want)
				}
			}()
			Load()
		})
	}
}
