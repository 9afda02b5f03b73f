package core

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisCredentialStore(t *testing.T) {
	mr, client := newMiniRedis(t)
	store := NewRedisCredentialStore(client)
	ctx := context.Background()

	ok, err := store.Exists(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, ok)

	_, found, err := store.Get(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Put(ctx, "alice", "pw1"))
	assert.Equal(t, "pw1", mr.HGet(AccountsHashKey, "alice"))

	err = store.Put(ctx, "alice", "pw2")
	assert.ErrorIs(t, err, ErrDuplicateAccount)
	assert.Equal(t, "pw1", mr.HGet(AccountsHashKey, "alice"), "duplicate put must not overwrite")

	ok, err = store.Exists(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok)

	cred, found, err := store.Get(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, Credential{Username: "alice", Password: "pw1"}, cred)

	require.NoError(t, store.Ping(ctx))
}

func TestRedisCredentialStoreUnavailable(t *testing.T) {
	mr, client := newMiniRedis(t)
	store := NewRedisCredentialStore(client)
	mr.Close()

	ctx := context.Background()
	_, err := store.Exists(ctx, "alice")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	_, _, err = store.Get(ctx, "alice")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, store.Put(ctx, "alice", "pw"), ErrStoreUnavailable)
	assert.ErrorIs(t, store.Ping(ctx), ErrStoreUnavailable)
}

func TestRedisSessionState(t *testing.T) {
	mr, client := newMiniRedis(t)
	state := NewRedisSessionState(client)
	ctx := context.Background()

	sess, err := state.Read(ctx, "caller-1")
	require.NoError(t, err)
	assert.False(t, sess.Authenticated())

	require.NoError(t, state.SetAuthenticated(ctx, "caller-1", Credential{Username: "carol", Password: "secret"}))
	got, err := mr.Get(SessionKey("caller-1"))
	require.NoError(t, err)
	assert.Equal(t, "carol", got, "only the username is stored")
	assert.Zero(t, mr.TTL(SessionKey("caller-1")))

	sess, err = state.Read(ctx, "caller-1")
	require.NoError(t, err)
	assert.Equal(t, "carol", sess.Username)

	sess, err = state.Read(ctx, "caller-2")
	require.NoError(t, err)
	assert.False(t, sess.Authenticated())
}

func TestRedisBackedAuthenticator(t *testing.T) {
	_, client := newMiniRedis(t)
	auth := NewAuthenticator(NewRedisCredentialStore(client), NewRedisSessionState(client))
	ctx := context.Background()

	_, err := auth.Handle(ctx, OpSignup, Request{CallerID: "c1", Body: credBody("carol", "secret")})
	require.NoError(t, err)
	_, err = auth.Handle(ctx, OpLogin, Request{CallerID: "c1", Body: credBody("carol", "secret")})
	require.NoError(t, err)

	resp, err := auth.Handle(ctx, OpLogin, Request{CallerID: "c1", Body: credBody("carol", "wrong")})
	require.NoError(t, err)
	assert.Equal(t, ResponseWelcome, resp.Kind)
	assert.Equal(t, "Welcome back carol", resp.Message)
}

func TestRedisSessionStateEmptyUsername(t *testing.T) {
	_, client := newMiniRedis(t)
	auth := NewAuthenticator(NewRedisCredentialStore(client), NewRedisSessionState(client))
	ctx := context.Background()

	_, err := auth.Handle(ctx, OpSignup, Request{CallerID: "c1", Body: credBody("", "pw")})
	require.NoError(t, err)
	_, err = auth.Handle(ctx, OpLogin, Request{CallerID: "c1", Body: credBody("", "pw")})
	require.NoError(t, err)

	resp, err := auth.Handle(ctx, OpLogin, Request{CallerID: "c1", Body: credBody("", "wrong")})
	require.NoError(t, err)
	assert.Equal(t, ResponseWelcome, resp.Kind)
	assert.Equal(t, "Welcome back ", resp.Message)
}
