//go:build integration

// Runs the recent-kudos cache against a throwaway Redis container. Requires
// Docker:
//
//	go test -tags integration ./internal/store
package store

import (
	"context"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kudos/internal/models"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("could not connect to docker: %v", err)
	}

	res, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Tag:        "7-alpine",
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
	})
	if err != nil {
		t.Fatalf("could not start redis: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(res) })

	url := "redis://localhost:" + res.GetPort("6379/tcp") + "/0"

	var client *redis.Client
	if err := pool.Retry(func() error {
		var err error
		client, err = NewRedisClient(context.Background(), url)
		return err
	}); err != nil {
		t.Fatalf("redis not ready: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestCached_Redis(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()

	f := newFixture(t)
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	f.kudo(f.anna, "great demo", models.EmojiThumbsUp, base)

	next := &countingStore{Store: f.store}
	c := NewCached(next, client, zerolog.Nop())
	require.NoError(t, c.Ping(ctx))

	t.Run("hit skips store", func(t *testing.T) {
		got, err := c.RecentKudos(ctx, RecentLimit)
		require.NoError(t, err)
		assert.Equal(t, []string{"great demo"}, messages(got))

		// Written behind the cache's back, so only a miss can see it.
		f.kudo(f.bob, "unseen", models.EmojiParty, base.Add(time.Hour))

		got, err = c.RecentKudos(ctx, RecentLimit)
		require.NoError(t, err)
		assert.Equal(t, []string{"great demo"}, messages(got))
		assert.Equal(t, int32(1), next.recent.Load())

		ttl, err := client.TTL(ctx, recentKey(RecentLimit)).Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
		assert.LessOrEqual(t, ttl, recentTTL)
	})

	t.Run("create invalidates", func(t *testing.T) {
		_, err := c.CreateKudo(ctx, models.NewKudo{AuthorID: f.bob.ID, RecipientID: f.me.ID, Message: "nice work"})
		require.NoError(t, err)

		n, err := client.Exists(ctx, recentKey(RecentLimit)).Result()
		require.NoError(t, err)
		assert.Zero(t, n)

		got, err := c.RecentKudos(ctx, RecentLimit)
		require.NoError(t, err)
		assert.Equal(t, []string{"nice work", "unseen", "great demo"}, messages(got))
		assert.Equal(t, int32(2), next.recent.Load())
	})

	t.Run("profile picture invalidates", func(t *testing.T) {
		require.NoError(t, c.SetProfilePicture(ctx, f.bob.ID, "http://cdn/bob.png"))

		got, err := c.RecentKudos(ctx, RecentLimit)
		require.NoError(t, err)
		require.NotEmpty(t, got)
		assert.Equal(t, "http://cdn/bob.png", got[0].Author.ProfilePicture)
		assert.Equal(t, int32(3), next.recent.Load())
	})

	t.Run("undecodable entry is replaced", func(t *testing.T) {
		require.NoError(t, client.Set(ctx, recentKey(RecentLimit), "not json", time.Minute).Err())

		got, err := c.RecentKudos(ctx, RecentLimit)
		require.NoError(t, err)
		assert.Len(t, got, 3)
		assert.Equal(t, int32(4), next.recent.Load())

		raw, err := client.Get(ctx, recentKey(RecentLimit)).Result()
		require.NoError(t, err)
		assert.NotEqual(t, "not json", raw)
	})
}
