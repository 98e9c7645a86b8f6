package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/finank/carteira_bot/config"
	"github.com/finank/carteira_bot/internal/model"
	"github.com/finank/carteira_bot/utils"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

type RedisSession struct {
	redis *redis.Client
	cfg   *config.Config
}

func NewRedisSession(redisClient *redis.Client, cfg *config.Config) *RedisSession {
	return &RedisSession{redis: redisClient, cfg: cfg}
}

func (s *RedisSession) GetSession(ctx context.Context, key string) (model.Session, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	raw, err := s.redis.Get(ctx, keyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.Session{}, ErrNotFound
		}
		slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return model.Session{}, err
	}

	chatSession := model.Session{}
	err = json.Unmarshal([]byte(raw), &chatSession)
	if err != nil {
		slog.Error("can't unmarshal session", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return model.Session{}, errors.New("can't unmarshal session")
	}

	return chatSession, nil
}

func (s *RedisSession) SetSession(ctx context.Context, key string, chatSession model.Session) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	raw, err := json.Marshal(chatSession)
	if err != nil {
		slog.Error("can't marshal session", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return errors.New("can't marshal session")
	}

	_, err = s.redis.Set(ctx, keyPrefix+key, raw, s.cfg.SessionExpiration).Result()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	return nil
}
