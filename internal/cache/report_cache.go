package cache

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/fundlens/fundlens-go/internal/models"
	"github.com/redis/go-redis/v9"
)

// reportCacheEntry wraps a cached report with its own expiry metadata.
type reportCacheEntry struct {
	Report    *models.ComplianceReport `json:"report"`
	CachedAt  time.Time                `json:"cached_at"`
	ExpiresAt time.Time                `json:"expires_at"`
}

// ReportCacheStats tracks cache performance counters.
type ReportCacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Sets   int64 `json:"sets"`
	mu     sync.RWMutex
}

// ReportCache caches the latest compliance report per fund in Redis so
// repeated dashboard loads skip re-evaluation.
type ReportCache struct {
	redis  *redis.Client
	ttl    time.Duration
	stats  *ReportCacheStats
	prefix string
}

// NewReportCache creates a Redis-backed report cache.
func NewReportCache(redisClient *redis.Client, ttl time.Duration) *ReportCache {
	return &ReportCache{
		redis:  redisClient,
		ttl:    ttl,
		stats:  &ReportCacheStats{},
		prefix: "compliance_report:",
	}
}

// Get retrieves the cached report for a fund.
func (c *ReportCache) Get(ctx context.Context, fundID string) (*models.ComplianceReport, bool) {
	cacheKey := c.prefix + fundID

	data, err := c.redis.Get(ctx, cacheKey).Result()
	if err == redis.Nil {
		c.miss()
		return nil, false
	}
	if err != nil {
		log.Printf("Redis error getting report for %s: %v", fundID, err)
		c.miss()
		return nil, false
	}

	var entry reportCacheEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		log.Printf("Error deserializing cached report for %s: %v", fundID, err)
		c.miss()
		return nil, false
	}

	// Check the entry expiry as well, beyond the Redis TTL.
	if time.Now().After(entry.ExpiresAt) {
		c.miss()
		return nil, false
	}

	c.stats.mu.Lock()
	c.stats.Hits++
	c.stats.mu.Unlock()
	return entry.Report, true
}

// Set stores a report with the configured TTL.
func (c *ReportCache) Set(ctx context.Context, fundID string, report *models.ComplianceReport) error {
	entry := reportCacheEntry{
		Report:    report,
		CachedAt:  time.Now(),
		ExpiresAt: time.Now().Add(c.ttl),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	if err := c.redis.Set(ctx, c.prefix+fundID, data, c.ttl).Err(); err != nil {
		return err
	}

	c.stats.mu.Lock()
	c.stats.Sets++
	c.stats.mu.Unlock()
	return nil
}

// Invalidate drops the cached report for a fund.
func (c *ReportCache) Invalidate(ctx context.Context, fundID string) error {
	return c.redis.Del(ctx, c.prefix+fundID).Err()
}

// GetStats returns a point-in-time copy of the counters.
func (c *ReportCache) GetStats() ReportCacheStats {
	c.stats.mu.RLock()
	defer c.stats.mu.RUnlock()
	return ReportCacheStats{
		Hits:   c.stats.Hits,
		Misses: c.stats.Misses,
		Sets:   c.stats.Sets,
	}
}

func (c *ReportCache) miss() {
	c.stats.mu.Lock()
	c.stats.Misses++
	c.stats.mu.Unlock()
}
