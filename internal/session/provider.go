package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/linkpile/linkpile/internal/apperr"
	"github.com/linkpile/linkpile/pkg/config"
	"github.com/linkpile/linkpile/pkg/logging"
)

// Provider resolves an opaque session token to an actor identity. Zero means
// anonymous. Session creation, cookies and credential checks live elsewhere;
// this is the only thing the core needs from them.
type Provider interface {
	ActorID(ctx context.Context, token string) (int64, error)
}

// RedisProvider looks sessions up in the shared redis session store.
type RedisProvider struct {
	client *redis.Client
	prefix string
}

// NewRedisProvider creates a session provider backed by Redis.
func NewRedisProvider(cfg *config.RedisConfig, sess *config.SessionConfig) (*RedisProvider, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("redis is not configured")
	}

	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.GetLogger().Info("Redis connection established")

	return &RedisProvider{client: client, prefix: sess.KeyPrefix}, nil
}

// ActorID resolves token to a user id. An unknown or empty token is
// anonymous, not an error; only a store failure errors.
func (p *RedisProvider) ActorID(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, nil
	}

	val, err := p.client.Get(ctx, p.prefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, apperr.Wrap(apperr.StoreUnavailable, "session lookup failed", err)
	}

	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		// A corrupt session entry is treated as anonymous rather than
		// locking the caller out of unauthenticated endpoints.
		logging.WithComponent("session").Sugar().Warnf("corrupt session entry for token: %v", err)
		return 0, nil
	}
	return id, nil
}

// Close closes the underlying Redis connection.
func (p *RedisProvider) Close() error {
	return p.client.Close()
}

// Anonymous is a Provider that never authenticates anyone. It stands in when
// no session store is configured.
type Anonymous struct{}

// ActorID always resolves to the anonymous actor.
func (Anonymous) ActorID(context.Context, string) (int64, error) {
	return 0, nil
}

// Static is a fixed token-to-actor table, used in tests.
type Static map[string]int64

// ActorID resolves token against the table.
func (s Static) ActorID(_ context.Context, token string) (int64, error) {
	return s[token], nil
}
