package deps

import (
	"time"

	"github.com/MrSnakeDoc/bookmarker/internal/httpserver/mw"
	"github.com/MrSnakeDoc/bookmarker/internal/logger"
	"github.com/MrSnakeDoc/bookmarker/internal/scheduler"
	"github.com/MrSnakeDoc/bookmarker/internal/service"
)

type Deps struct {
	Logger         logger.Logger
	StartTime      time.Time
	Version        string
	Commit         string
	BuildDate      string
	GoVersion      string
	Service        *service.Service              // bookmark collection operations
	StoreKind      string                        // "redis" | "memory", reported by /infra
	AllowedHosts   []string                      // Host headers allowed on /api routes
	AllowedCIDRS   []string                      // IPs allowed on /api and probe routes
	TrustProxy     bool                          // true if running behind a trusted reverse proxy (e.g., cloudflared)
	RateLimit      mw.RateLimitConfig            // token bucket on mutating routes
	MaxImportBytes int64                         // cap on import bodies
	BackupTrigger  chan struct{}                 // manual backup trigger (nil if backups disabled)
	BackupStatus   func() scheduler.BackupStatus // last backup run (nil if backups disabled)
}
