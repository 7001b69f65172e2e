package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/miniuni/miniuni-web/internal/config"
	"github.com/miniuni/miniuni-web/internal/model"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each tab's session in a hash with the fields token, role
// and userId. Writes are durable as soon as the command returns.
type RedisStore struct {
	rdb *redis.Client
	// idleTTL > 0 expires untouched sessions; reads slide the expiry.
	idleTTL time.Duration
}

// NewRedisStore creates a RedisStore.
func NewRedisStore(rdb *redis.Client, idleTTL time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, idleTTL: idleTTL}
}

// Get loads the tab's session.
func (s *RedisStore) Get(ctx context.Context, tabID string) (*model.Session, error) {
	if tabID == "" {
		return nil, ErrNoTab
	}
	key := config.CacheKey.TabSessionKey(tabID)

	fields, err := s.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	token := fields[config.SessionFieldToken]
	if token == "" {
		return nil, nil
	}

	if s.idleTTL > 0 {
		if err := s.rdb.Expire(ctx, key, s.idleTTL).Err(); err != nil {
			return nil, fmt.Errorf("refresh session ttl: %w", err)
		}
	}

	return &model.Session{
		Token:  token,
		Role:   model.Role(fields[config.SessionFieldRole]),
		UserID: fields[config.SessionFieldUserID],
	}, nil
}

// Set replaces the tab's session atomically.
func (s *RedisStore) Set(ctx context.Context, tabID string, sess *model.Session) error {
	if tabID == "" {
		return ErrNoTab
	}
	key := config.CacheKey.TabSessionKey(tabID)

	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			config.SessionFieldToken, sess.Token,
			config.SessionFieldRole, string(sess.Role),
			config.SessionFieldUserID, sess.UserID,
		)
		if s.idleTTL > 0 {
			pipe.Expire(ctx, key, s.idleTTL)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// Clear removes token, role and userId.
func (s *RedisStore) Clear(ctx context.Context, tabID string) error {
	if tabID == "" {
		return ErrNoTab
	}
	if err := s.rdb.Del(ctx, config.CacheKey.TabSessionKey(tabID)).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// PutFlash stores f for ttl. A later banner replaces an earlier one.
func (s *RedisStore) PutFlash(ctx context.Context, tabID string, f Flash, ttl time.Duration) error {
	if tabID == "" {
		return ErrNoTab
	}
	payload, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode flash: %w", err)
	}
	if err := s.rdb.Set(ctx, config.CacheKey.TabFlashKey(tabID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("store flash: %w", err)
	}
	return nil
}

// Flash returns the live banner, or nil once it has expired.
func (s *RedisStore) Flash(ctx context.Context, tabID string) (*Flash, error) {
	if tabID == "" {
		return nil, ErrNoTab
	}
	raw, err := s.rdb.Get(ctx, config.CacheKey.TabFlashKey(tabID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("load flash: %w", err)
	}
	var f Flash
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode flash: %w", err)
	}
	return &f, nil
}
