package session

import (
	"context"
	"fmt"

	"github.com/miniuni/miniuni-web/internal/config"
	"github.com/miniuni/miniuni-web/internal/database"
	"github.com/rs/zerolog"
)

// Open builds the backend selected by SESSION_BACKEND. The returned close
// function releases its connections and is never nil.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (Backend, func(), error) {
	switch cfg.SessionBackend {
	case config.SessionBackendMemory:
		log.Warn().Msg("Using in-memory session store; sessions are lost on restart")
		return NewMemoryStore(), func() {}, nil

	case config.SessionBackendRedis, "":
		rdb, err := database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := rdb.Close(); err != nil {
				log.Warn().Err(err).Msg("Closing Redis")
			}
		}
		return NewRedisStore(rdb, cfg.SessionIdleTTL), closeFn, nil

	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
	}
}
