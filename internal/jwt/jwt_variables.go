package jwt

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const RefreshTokenTTL = 24 * 30 * time.Hour

const AccessTokenTTL = 15 * time.Minute

const (
	RoleAdmin Role = iota
)

var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// TokenStore keeps refresh tokens. Redis backs it in production.
type TokenStore interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

var (
	mu          sync.RWMutex
	roleSecrets = map[Role]string{}
	tokenStore  TokenStore
)

// Configure installs the signing secret for role and the refresh token store.
// Binaries call it once during start-up.
func Configure(role Role, secret string, store TokenStore) {
	mu.Lock()
	defer mu.Unlock()
	roleSecrets[role] = secret
	if store != nil {
		tokenStore = store
	}
}

func secretFor(role Role) (string, bool) {
	mu.RLock()
	defer mu.RUnlock()
	secret, ok := roleSecrets[role]
	return secret, ok && secret != ""
}

func store() TokenStore {
	mu.RLock()
	defer mu.RUnlock()
	return tokenStore
}

type redisTokenStore struct {
	client *redis.Client
}

func NewRedisTokenStore(client *redis.Client) TokenStore {
	return &redisTokenStore{client: client}
}

func (s *redisTokenStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, refreshKey(key), value, ttl).Err()
}

func (s *redisTokenStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, refreshKey(key)).Result()
	if err == redis.Nil {
		return "", ErrRefreshTokenNotFound
	}
	return val, err
}

func (s *redisTokenStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return s.client.Expire(ctx, refreshKey(key), ttl).Err()
}

func refreshKey(token string) string {
	return "refresh:" + token
}
