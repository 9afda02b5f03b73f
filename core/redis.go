package core

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// AccountsHashKey is the Redis hash holding username -> password.
	AccountsHashKey = "accounts"
	// SessionKeyPrefix prefixes per-caller session keys.
	SessionKeyPrefix = "session:"
)

// SessionKey returns the Redis key for the given caller.
func SessionKey(callerID string) string {
	return SessionKeyPrefix + callerID
}

// RedisClientRaw exposes the subset of go-redis commands the stores use.
type RedisClientRaw interface {
	HSetNX(ctx context.Context, key, field string, value interface{}) *redis.BoolCmd
	HGet(ctx context.Context, key, field string) *redis.StringCmd
	HExists(ctx context.Context, key, field string) *redis.BoolCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// NewRedisClient returns a configured go-redis client from URL (e.g., redis://localhost:6379/0).
func NewRedisClient(redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		return nil, errors.New("empty redis url")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return client, nil
}

// RedisCredentialStore keeps accounts in a single Redis hash.
type RedisCredentialStore struct {
	client RedisClientRaw
}

func NewRedisCredentialStore(client RedisClientRaw) *RedisCredentialStore {
	return &RedisCredentialStore{client: client}
}

func (s *RedisCredentialStore) Exists(ctx context.Context, username string) (bool, error) {
	ok, err := s.client.HExists(ctx, AccountsHashKey, username).Result()
	if err != nil {
		return false, storeError("accounts.exists", err)
	}
	return ok, nil
}

func (s *RedisCredentialStore) Get(ctx context.Context, username string) (Credential, bool, error) {
	password, err := s.client.HGet(ctx, AccountsHashKey, username).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Credential{}, false, nil
		}
		return Credential{}, false, storeError("accounts.get", err)
	}
	return Credential{Username: username, Password: password}, true, nil
}

// Put relies on HSETNX so existence check and insert are one command.
func (s *RedisCredentialStore) Put(ctx context.Context, username, password string) error {
	created, err := s.client.HSetNX(ctx, AccountsHashKey, username, password).Result()
	if err != nil {
		return storeError("accounts.put", err)
	}
	if !created {
		return &AuthError{Kind: ErrDuplicateAccount}
	}
	return nil
}

func (s *RedisCredentialStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return storeError("accounts.ping", err)
	}
	return nil
}

// RedisSessionState stores the authenticated username per caller.
// A present key means logged in, whatever its value. Keys carry no TTL;
// sessions are never expired server-side.
type RedisSessionState struct {
	client RedisClientRaw
}

func NewRedisSessionState(client RedisClientRaw) *RedisSessionState {
	return &RedisSessionState{client: client}
}

func (s *RedisSessionState) Read(ctx context.Context, callerID string) (Session, error) {
	username, err := s.client.Get(ctx, SessionKey(callerID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{}, nil
		}
		return Session{}, storeError("session.read", err)
	}
	return Session{Username: username, LoggedIn: true}, nil
}

func (s *RedisSessionState) SetAuthenticated(ctx context.Context, callerID string, cred Credential) error {
	if err := s.client.Set(ctx, SessionKey(callerID), cred.Username, 0).Err(); err != nil {
		return storeError("session.set", err)
	}
	return nil
}
