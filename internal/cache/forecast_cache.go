package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/queuewise/queue-intel/internal/domain"
)

// ForecastCache is a hot cache for assembled daily forecasts sitting in
// front of the persisted cells. A miss or any cache failure falls
// through to the store; the cache is never authoritative.
type ForecastCache interface {
	Get(ctx context.Context, branchID string, date time.Time) (*domain.DailyForecast, bool)
	Set(ctx context.Context, forecast *domain.DailyForecast)
}

type redisForecastCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisForecastCache wraps a redis client. A nil client yields a
// cache that always misses.
func NewRedisForecastCache(client *redis.Client, ttl time.Duration) ForecastCache {
	return &redisForecastCache{client: client, ttl: ttl}
}

func (c *redisForecastCache) Get(ctx context.Context, branchID string, date time.Time) (*domain.DailyForecast, bool) {
	if c.client == nil {
		return nil, false
	}
	// an unreachable cache is indistinguishable from a miss
	raw, err := c.client.Get(ctx, forecastKey(branchID, date)).Bytes()
	if err != nil {
		return nil, false
	}
	var forecast domain.DailyForecast
	if err := json.Unmarshal(raw, &forecast); err != nil {
		return nil, false
	}
	return &forecast, true
}

func (c *redisForecastCache) Set(ctx context.Context, forecast *domain.DailyForecast) {
	if c.client == nil || forecast == nil {
		return
	}
	raw, err := json.Marshal(forecast)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, forecastKey(forecast.BranchID, mustParseDate(forecast.Date)), raw, c.ttl).Err()
}

func forecastKey(branchID string, date time.Time) string {
	return fmt.Sprintf("forecast:%s:%s", branchID, domain.DateKey(date).Format("2006-01-02"))
}

func mustParseDate(date string) time.Time {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}
	}
	return t
}
