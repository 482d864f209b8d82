package forex

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	logx "github.com/agents-play/server/pkg/logger"
)

// CachedRateSource is a best-effort read-through Redis cache in front of a
// RateSource. Cache failures never fail the request; they fall back to the
// underlying source.
type CachedRateSource struct {
	source RateSource
	rdb    redis.Cmdable
	ttl    time.Duration
}

func NewCachedRateSource(source RateSource, rdb redis.Cmdable, ttl time.Duration) *CachedRateSource {
	return &CachedRateSource{source: source, rdb: rdb, ttl: ttl}
}

func (c *CachedRateSource) ratesKey(base Currency) string {
	return fmt.Sprintf("forex:rates:%s", base)
}

func (c *CachedRateSource) GetRates(ctx context.Context, base Currency) (*RatesResponse, error) {
	key := c.ratesKey(base)

	cached, err := c.rdb.Get(ctx, key).Result()
	if err == nil {
		var out RatesResponse
		if err := json.Unmarshal([]byte(cached), &out); err == nil {
			logx.Debug().Str("key", key).Msg("forex rates cache hit")
			return &out, nil
		}
		logx.Warn().Str("key", key).Msg("discarding unreadable cached rates")
	} else if err != redis.Nil {
		logx.Warn().Err(err).Str("key", key).Msg("forex rates cache read failed")
	}

	out, err := c.source.GetRates(ctx, base)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(out); err == nil {
		if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
			logx.Warn().Err(err).Str("key", key).Msg("forex rates cache write failed")
		}
	}

	return out, nil
}

var _ RateSource = (*CachedRateSource)(nil)
