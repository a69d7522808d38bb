// internal/cache/listing_test.go
package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github-portfolio-api/internal/model"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

var sampleRepos = []model.Repository{{ID: 1, Name: "api"}, {ID: 2, Name: "site"}}

func TestSnapshot_IsFresh(t *testing.T) {
	fetched := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	ttl := 30 * time.Minute

	tests := []struct {
		name string
		snap Snapshot
		now  time.Time
		want bool
	}{
		{"empty snapshot", Snapshot{}, fetched, false},
		{"repositories without fetch time", Snapshot{Repositories: sampleRepos}, fetched, false},
		{"fetch time without repositories", Snapshot{FetchedAt: fetched}, fetched, false},
		{"just fetched", Snapshot{Repositories: sampleRepos, FetchedAt: fetched}, fetched, true},
		{"one nanosecond before expiry", Snapshot{Repositories: sampleRepos, FetchedAt: fetched}, fetched.Add(ttl - time.Nanosecond), true},
		{"exactly at ttl", Snapshot{Repositories: sampleRepos, FetchedAt: fetched}, fetched.Add(ttl), false},
		{"past ttl", Snapshot{Repositories: sampleRepos, FetchedAt: fetched}, fetched.Add(ttl + time.Second), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.snap.IsFresh(tt.now, ttl))
		})
	}
}

func TestListing_LookupAndReplace(t *testing.T) {
	clock := newFakeClock()
	l := NewListing(DefaultTTL, clock.Now)

	snap, fresh := l.Lookup()
	assert.False(t, fresh, "a new listing starts empty")
	assert.True(t, snap.FetchedAt.IsZero())

	l.Replace(sampleRepos, clock.Now())
	snap, fresh = l.Lookup()
	assert.True(t, fresh)
	assert.Equal(t, sampleRepos, snap.Repositories)

	clock.Advance(DefaultTTL)
	_, fresh = l.Lookup()
	assert.False(t, fresh, "snapshot expires exactly at the ttl")

	replacement := []model.Repository{{ID: 3, Name: "new"}}
	l.Replace(replacement, clock.Now())
	snap, fresh = l.Lookup()
	assert.True(t, fresh)
	assert.Equal(t, replacement, snap.Repositories, "replace must not merge")
}

func TestListing_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("stores the fetched listing with the clock time", func(t *testing.T) {
		clock := newFakeClock()
		l := NewListing(DefaultTTL, clock.Now)

		snap, err := l.Refresh(ctx, false, func(context.Context) ([]model.Repository, error) {
			return sampleRepos, nil
		})

		require.NoError(t, err)
		assert.Equal(t, clock.Now(), snap.FetchedAt)
		stored, fresh := l.Lookup()
		assert.True(t, fresh)
		assert.Equal(t, snap, stored)
	})

	t.Run("failure leaves the previous snapshot in place", func(t *testing.T) {
		clock := newFakeClock()
		l := NewListing(DefaultTTL, clock.Now)
		l.Replace(sampleRepos, clock.Now())
		before, _ := l.Lookup()
		upstreamErr := errors.New("boom")

		clock.Advance(time.Minute)
		for _, force := range []bool{false, true} {
			_, err := l.Refresh(ctx, force, func(context.Context) ([]model.Repository, error) {
				return nil, upstreamErr
			})
			assert.ErrorIs(t, err, upstreamErr)
		}

		after, _ := l.Lookup()
		assert.Equal(t, before, after)
	})

	t.Run("forced refresh always calls upstream", func(t *testing.T) {
		clock := newFakeClock()
		l := NewListing(DefaultTTL, clock.Now)
		var calls int32
		fetch := func(context.Context) ([]model.Repository, error) {
			atomic.AddInt32(&calls, 1)
			return sampleRepos, nil
		}

		for i := 0; i < 3; i++ {
			_, err := l.Refresh(ctx, true, fetch)
			require.NoError(t, err)
		}

		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	})

	t.Run("concurrent refreshes share one upstream call", func(t *testing.T) {
		clock := newFakeClock()
		l := NewListing(DefaultTTL, clock.Now)
		var calls int32
		entered := make(chan struct{})
		release := make(chan struct{})
		fetch := func(context.Context) ([]model.Repository, error) {
			if atomic.AddInt32(&calls, 1) == 1 {
				close(entered)
			}
			<-release
			return sampleRepos, nil
		}

		var wg sync.WaitGroup
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				snap, err := l.Refresh(ctx, false, fetch)
				assert.NoError(t, err)
				assert.Equal(t, sampleRepos, snap.Repositories)
			}()
		}

		<-entered
		time.Sleep(100 * time.Millisecond)
		close(release)
		wg.Wait()

		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("cancelling the first caller does not fail callers sharing its fetch", func(t *testing.T) {
		clock := newFakeClock()
		l := NewListing(DefaultTTL, clock.Now)
		var calls int32
		entered := make(chan struct{})
		release := make(chan struct{})
		fetch := func(ctx context.Context) ([]model.Repository, error) {
			if atomic.AddInt32(&calls, 1) == 1 {
				close(entered)
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-release:
				return sampleRepos, nil
			}
		}

		firstCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		firstErr := make(chan error, 1)
		go func() {
			_, err := l.Refresh(firstCtx, false, fetch)
			firstErr <- err
		}()
		<-entered

		secondErr := make(chan error, 1)
		go func() {
			snap, err := l.Refresh(ctx, false, fetch)
			if err == nil && len(snap.Repositories) != len(sampleRepos) {
				err = errors.New("unexpected snapshot")
			}
			secondErr <- err
		}()
		time.Sleep(100 * time.Millisecond)

		cancel()
		time.Sleep(50 * time.Millisecond)
		close(release)

		assert.NoError(t, <-secondErr)
		assert.NoError(t, <-firstErr)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
		_, fresh := l.Lookup()
		assert.True(t, fresh)
	})
}

func TestNewListing_DefaultsClock(t *testing.T) {
	l := NewListing(time.Hour, nil)
	l.Replace(sampleRepos, time.Now())

	_, fresh := l.Lookup()

	assert.True(t, fresh)
	assert.Equal(t, time.Hour, l.TTL())
}
