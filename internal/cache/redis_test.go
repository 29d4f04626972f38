package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, ""), mr
}

func TestRedisStore_SaveAndLoad(t *testing.T) {
	s, mr := newTestRedisStore(t)
	ctx := context.Background()

	tok := &oauth2.Token{AccessToken: "abc", TokenType: "bearer", Expiry: time.Now().Add(time.Hour)}
	require.NoError(t, s.Save(ctx, "oauth_abcdef123456", tok))

	assert.True(t, mr.Exists("assembly:oauth_abcdef123456"))
	ttl := mr.TTL("assembly:oauth_abcdef123456")
	assert.True(t, ttl > 59*time.Minute && ttl <= time.Hour, "ttl = %s", ttl)

	got, err := s.Load(ctx, "oauth_abcdef123456")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "abc", got.AccessToken)
}

func TestRedisStore_ExpiresWithToken(t *testing.T) {
	s, mr := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "k", &oauth2.Token{AccessToken: "abc", Expiry: time.Now().Add(time.Minute)}))
	mr.FastForward(2 * time.Minute)

	got, err := s.Load(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStore_SkipsExpiredToken(t *testing.T) {
	s, mr := newTestRedisStore(t)

	require.NoError(t, s.Save(context.Background(), "k", &oauth2.Token{AccessToken: "abc", Expiry: time.Now().Add(-time.Second)}))
	assert.False(t, mr.Exists("assembly:k"))
}

func TestRedisStore_NoExpiry(t *testing.T) {
	s, mr := newTestRedisStore(t)

	require.NoError(t, s.Save(context.Background(), "k", &oauth2.Token{AccessToken: "abc"}))
	assert.Equal(t, time.Duration(0), mr.TTL("assembly:k"))
}

func TestRedisStore_MissAndDelete(t *testing.T) {
	s, _ := newTestRedisStore(t)
	ctx := context.Background()

	got, err := s.Load(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.Save(ctx, "k", &oauth2.Token{AccessToken: "abc"}))
	require.NoError(t, s.Delete(ctx, "k"))
	got, err = s.Load(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStore_CorruptValueIsMiss(t *testing.T) {
	s, mr := newTestRedisStore(t)
	require.NoError(t, mr.Set("assembly:k", "{not json"))

	got, err := s.Load(context.Background(), "k")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStore_ConnectionError(t *testing.T) {
	s, mr := newTestRedisStore(t)
	mr.Close()

	_, err := s.Load(context.Background(), "k")
	assert.Error(t, err)
	assert.Error(t, s.Ping(context.Background()))
}

func TestNewRedisStoreFromURL(t *testing.T) {
	mr := miniredis.RunT(t)

	s, err := NewRedisStoreFromURL("redis://" + mr.Addr() + "/0")
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	require.NoError(t, s.Ping(context.Background()))

	_, err = NewRedisStoreFromURL("http://not-redis")
	assert.Error(t, err)
}
