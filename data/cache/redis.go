package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/finank/carteira_bot/config"
	"github.com/finank/carteira_bot/utils"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const (
	quoteKeyPrefix = "quote:"
	bondPricesKey  = "tesouro:prices"
)

var ErrNotFound = errors.New("error not found in cache")

// RedisCache keeps the short-lived price snapshots: one key per normalized
// ticker and a single mapping for the Tesouro Direto price table. Stale data
// is acceptable here; the TTLs are a freshness policy, not a correctness one.
type RedisCache struct {
	redis *redis.Client
	cfg   *config.Config
}

func NewRedisCache(redisClient *redis.Client, cfg *config.Config) *RedisCache {
	return &RedisCache{redis: redisClient, cfg: cfg}
}

func (r *RedisCache) SetQuotes(ctx context.Context, quotes map[string]decimal.Decimal) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("SetQuotes start", slog.String("rqID", rqID))

	pipe := r.redis.Pipeline()
	for symbol, price := range quotes {
		pipe.Set(ctx, quoteKeyPrefix+symbol, price.String(), r.cfg.Cache.QuotesExpiration)
	}

	_, err := pipe.Exec(ctx)
	if err != nil {
		slog.Error("failed on pipe.Exec", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("SetQuotes completed", slog.String("rqID", rqID))

	return nil
}

// GetQuotes returns cached prices for all requested symbols. A single missing
// symbol counts as a miss so the caller refetches the whole batch.
func (r *RedisCache) GetQuotes(ctx context.Context, symbols []string) (map[string]decimal.Decimal, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("GetQuotes start", slog.String("rqID", rqID))

	if len(symbols) == 0 {
		return map[string]decimal.Decimal{}, nil
	}

	keys := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		keys = append(keys, quoteKeyPrefix+symbol)
	}

	values, err := r.redis.MGet(ctx, keys...).Result()
	if err != nil {
		slog.Error("failed on redis.MGet", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return nil, err
	}

	quotes := make(map[string]decimal.Decimal, len(symbols))
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			return nil, ErrNotFound
		}
		price, err := decimal.NewFromString(raw)
		if err != nil {
			slog.Error("can't parse cached quote", slog.String("rqID", rqID), slog.String("raw", raw))
			return nil, ErrNotFound
		}
		quotes[symbols[i]] = price
	}

	slog.Debug("GetQuotes completed", slog.String("rqID", rqID))

	return quotes, nil
}

func (r *RedisCache) SetBondPrices(ctx context.Context, prices map[string]decimal.Decimal) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("SetBondPrices start", slog.String("rqID", rqID))

	raw, err := json.Marshal(prices)
	if err != nil {
		slog.Error("can't marshal bond prices", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return errors.New("can't marshal bond prices")
	}

	_, err = r.redis.Set(ctx, bondPricesKey, raw, r.cfg.Cache.BondsExpiration).Result()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("SetBondPrices completed", slog.String("rqID", rqID))

	return nil
}

func (r *RedisCache) GetBondPrices(ctx context.Context) (map[string]decimal.Decimal, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("GetBondPrices start", slog.String("rqID", rqID))

	raw, err := r.redis.Get(ctx, bondPricesKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return nil, err
	}

	prices := map[string]decimal.Decimal{}
	err = json.Unmarshal([]byte(raw), &prices)
	if err != nil {
		slog.Error("can't unmarshal bond prices", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return nil, errors.New("can't unmarshal bond prices")
	}

	slog.Debug("GetBondPrices completed", slog.String("rqID", rqID))

	return prices, nil
}
