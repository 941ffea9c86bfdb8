// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"runtime"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/templates/classifieds/internal/core"
)

// Counter is satisfied by the user, ad and comment services.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

type HandlerConfig struct {
	DBStats    func() sql.DBStats
	RedisStats func() *redis.PoolStats
	RedisPing  func(ctx context.Context) error
	DBPing     func(ctx context.Context) error
	Users      Counter
	Ads        Counter
	Comments   Counter
}

type backend struct {
	name  string
	ping  func(ctx context.Context) error
	usage func() *PoolUsage
}

type Handler struct {
	users    Counter
	ads      Counter
	comments Counter
	backends []backend
}

func NewHandler(cfg HandlerConfig) *Handler {
	h := &Handler{
		users:    cfg.Users,
		ads:      cfg.Ads,
		comments: cfg.Comments,
	}

	if cfg.DBPing != nil || cfg.DBStats != nil {
		h.backends = append(h.backends, backend{
			name:  "postgres",
			ping:  cfg.DBPing,
			usage: sqlUsage(cfg.DBStats),
		})
	}
	if cfg.RedisPing != nil || cfg.RedisStats != nil {
		h.backends = append(h.backends, backend{
			name:  "redis",
			ping:  cfg.RedisPing,
			usage: redisUsage(cfg.RedisStats),
		})
	}

	return h
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/stats", h.GetStats)
		r.Get("/stats/marketplace", h.GetMarketplaceStats)
	})
}

// GetStats reports marketplace volume together with the state of the
// stores behind it.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	marketplace, err := h.marketplaceStats(ctx)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	report := StatsReport{
		Marketplace: marketplace,
		Backends:    make([]BackendStatus, 0, len(h.backends)),
		Process:     processStats(),
	}

	for _, b := range h.backends {
		status := BackendStatus{Name: b.name, Healthy: true}
		if b.ping != nil {
			status.Healthy = b.ping(ctx) == nil
		}
		if b.usage != nil {
			status.Pool = b.usage()
		}
		report.Backends = append(report.Backends, status)
	}

	core.OK(w, report)
}

func (h *Handler) GetMarketplaceStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.marketplaceStats(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, stats)
}

func (h *Handler) marketplaceStats(ctx context.Context) (MarketplaceStats, error) {
	var stats MarketplaceStats

	for _, c := range []struct {
		name    string
		counter Counter
		dst     *int64
	}{
		{"users", h.users, &stats.Users},
		{"ads", h.ads, &stats.Ads},
		{"comments", h.comments, &stats.Comments},
	} {
		if c.counter == nil {
			continue
		}
		n, err := c.counter.Count(ctx)
		if err != nil {
			return MarketplaceStats{}, fmt.Errorf("count %s: %w", c.name, err)
		}
		*c.dst = n
	}

	stats.AdsPerUser = ratio(stats.Ads, stats.Users)
	stats.CommentsPerAd = ratio(stats.Comments, stats.Ads)

	return stats, nil
}

func ratio(n, d int64) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

func sqlUsage(stats func() sql.DBStats) func() *PoolUsage {
	if stats == nil {
		return nil
	}
	return func() *PoolUsage {
		s := stats()
		return &PoolUsage{
			Open:      s.OpenConnections,
			InUse:     s.InUse,
			Idle:      s.Idle,
			Exhausted: s.WaitCount,
		}
	}
}

func redisUsage(stats func() *redis.PoolStats) func() *PoolUsage {
	if stats == nil {
		return nil
	}
	return func() *PoolUsage {
		s := stats()
		return &PoolUsage{
			Open:      int(s.TotalConns),
			InUse:     int(s.TotalConns) - int(s.IdleConns),
			Idle:      int(s.IdleConns),
			Exhausted: int64(s.Timeouts),
		}
	}
}

func processStats() ProcessStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return ProcessStats{
		GoVersion:  runtime.Version(),
		Goroutines: runtime.NumGoroutine(),
		HeapBytes:  mem.HeapAlloc,
	}
}

type StatsReport struct {
	Marketplace MarketplaceStats `json:"marketplace"`
	Backends    []BackendStatus  `json:"backends"`
	Process     ProcessStats     `json:"process"`
}

type MarketplaceStats struct {
	Users         int64   `json:"users"`
	Ads           int64   `json:"ads"`
	Comments      int64   `json:"comments"`
	AdsPerUser    float64 `json:"adsPerUser"`
	CommentsPerAd float64 `json:"commentsPerAd"`
}

type BackendStatus struct {
	Name    string     `json:"name"`
	Healthy bool       `json:"healthy"`
	Pool    *PoolUsage `json:"pool,omitempty"`
}

// PoolUsage is the common view of the sql and redis pools. Exhausted counts
// callers that found no free connection: waits for sql, wait timeouts for
// redis.
type PoolUsage struct {
	Open      int   `json:"open"`
	InUse     int   `json:"inUse"`
	Idle      int   `json:"idle"`
	Exhausted int64 `json:"exhausted"`
}

type ProcessStats struct {
	GoVersion  string `json:"goVersion"`
	Goroutines int    `json:"goroutines"`
	HeapBytes  uint64 `json:"heapBytes"`
}
