package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/sefer-erp/sefer-erp/internal/shared"
)

// ReportCache keeps assembled report payloads in Redis for a short
// TTL and collapses concurrent builds of the same report into one.
// Reports may be stale relative to in-flight writes; they are
// generated on demand, not subscribed to.
type ReportCache struct {
	assembler *Assembler
	client    *redis.Client
	logger    *slog.Logger
	ttl       time.Duration
	group     singleflight.Group

	// onBuild is invoked with the price mode whenever a report is
	// assembled rather than served from cache.
	onBuild func(mode string)
}

// OnBuild registers a hook called for every cache miss build, used to
// feed build counters.
func (c *ReportCache) OnBuild(fn func(mode string)) {
	c.onBuild = fn
}

// NewReportCache builds a ReportCache. A nil client disables caching
// but keeps the singleflight collapse.
func NewReportCache(assembler *Assembler, client *redis.Client, logger *slog.Logger, ttl time.Duration) *ReportCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ReportCache{assembler: assembler, client: client, logger: logger, ttl: ttl}
}

// SupplierReport returns the cached supplier report or builds it.
func (c *ReportCache) SupplierReport(ctx context.Context, supplierID int64, period shared.Period) (*Report, error) {
	key := fmt.Sprintf("report:supplier:%d:%s", supplierID, period)
	return c.fetch(ctx, key, string(PriceModeSupplier), func() (*Report, error) {
		return c.assembler.BuildSupplierReport(ctx, supplierID, period)
	})
}

// FactoryReport returns the cached factory report or builds it.
func (c *ReportCache) FactoryReport(ctx context.Context, projectID int64, period shared.Period) (*Report, error) {
	key := fmt.Sprintf("report:factory:%d:%s", projectID, period)
	return c.fetch(ctx, key, string(PriceModeFactory), func() (*Report, error) {
		return c.assembler.BuildFactoryReport(ctx, projectID, period)
	})
}

func (c *ReportCache) fetch(ctx context.Context, key, mode string, build func() (*Report, error)) (*Report, error) {
	if report, ok := c.lookup(ctx, key); ok {
		return report, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		if report, ok := c.lookup(ctx, key); ok {
			return report, nil
		}
		report, err := build()
		if err != nil {
			return nil, err
		}
		if c.onBuild != nil {
			c.onBuild(mode)
		}
		c.store(ctx, key, report)
		return report, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Report), nil
}

func (c *ReportCache) lookup(ctx context.Context, key string) (*Report, bool) {
	if c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("report cache get", slog.String("key", key), slog.Any("error", err))
		}
		return nil, false
	}
	var report Report
	if err := json.Unmarshal(raw, &report); err != nil {
		c.logger.Warn("report cache decode", slog.String("key", key), slog.Any("error", err))
		return nil, false
	}
	return &report, true
}

func (c *ReportCache) store(ctx context.Context, key string, report *Report) {
	if c.client == nil {
		return
	}
	raw, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("report cache set", slog.String("key", key), slog.Any("error", err))
	}
}

// Invalidate drops both report variants for a scope and period, used
// after timesheet or extra work writes when freshness matters.
func (c *ReportCache) Invalidate(ctx context.Context, supplierID, projectID int64, period shared.Period) {
	if c.client == nil {
		return
	}
	keys := []string{
		fmt.Sprintf("report:supplier:%d:%s", supplierID, period),
		fmt.Sprintf("report:factory:%d:%s", projectID, period),
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("report cache invalidate", slog.Any("error", err))
	}
}
