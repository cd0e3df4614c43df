package pricing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	errx "github.com/Market-intel-core-v1/server/internal/core/error"
	"github.com/Market-intel-core-v1/server/internal/market/model"
	logx "github.com/Market-intel-core-v1/server/pkg/logger"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// QuoteCache stores live competitor quotes per search query.
type QuoteCache interface {
	// Get returns nil, nil on a miss.
	Get(ctx context.Context, query string) ([]model.CompetitorQuote, error)
	Set(ctx context.Context, query string, quotes []model.CompetitorQuote) error
}

type RedisQuoteCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisQuoteCache(rdb redis.Cmdable, ttl time.Duration) *RedisQuoteCache {
	return &RedisQuoteCache{rdb: rdb, ttl: ttl}
}

func (c *RedisQuoteCache) key(query string) string {
	return fmt.Sprintf("competitors:%s", normalizeQuery(query))
}

func (c *RedisQuoteCache) Get(ctx context.Context, query string) ([]model.CompetitorQuote, error) {
	key := c.key(query)
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to read competitor quotes from redis")
		return nil, errx.WrapRedis(err)
	}

	var quotes []model.CompetitorQuote
	if err := json.Unmarshal(b, &quotes); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to unmarshal cached competitor quotes")
		return nil, fmt.Errorf("unmarshal cached quotes: %w", err)
	}
	return quotes, nil
}

func (c *RedisQuoteCache) Set(ctx context.Context, query string, quotes []model.CompetitorQuote) error {
	b, err := json.Marshal(quotes)
	if err != nil {
		return fmt.Errorf("marshal quotes: %w", err)
	}
	key := c.key(query)
	if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to cache competitor quotes")
		return errx.WrapRedis(err)
	}
	return nil
}

func normalizeQuery(q string) string {
	return strings.ToLower(strings.Join(strings.Fields(q), " "))
}

var _ QuoteCache = (*RedisQuoteCache)(nil)
