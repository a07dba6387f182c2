package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/userbrowser/internal/logger"
	"github.com/MrSnakeDoc/userbrowser/internal/session"
)

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	TimeNow   func() time.Time // for testing, defaults to time.Now

	Sessions *session.Manager // live browsing sessions
	FeedMode string           // "remote" | "fixture", reported by healthz
	Backend  string           // bookmark backend name, reported by healthz

	// Ready probes the bookmark backend. nil means always ready.
	Ready func(ctx context.Context) error

	AllowedCIDRS   []string      // IPs allowed to reach the API and readyz
	TrustProxy     bool          // true if running behind a trusted reverse proxy (e.g., cloudflared)
	RequestTimeout time.Duration // per-request timeout on JSON endpoints
	RateBurst      int           // feed-triggering requests per client, burst
	RatePerMin     int           // feed-triggering requests per client, sustained
	EventHeartbeat time.Duration // SSE keep-alive interval
}

// Now returns the current time from TimeNow, falling back to time.Now.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
