// internal/cache/listing.go
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github-portfolio-api/internal/model"
)

// DefaultTTL is how long a fetched repository listing is served before it is refetched.
const DefaultTTL = 30 * time.Minute

// Snapshot is the unfiltered repository listing together with the time it was fetched.
// A zero FetchedAt means nothing has been fetched yet.
type Snapshot struct {
	Repositories []model.Repository
	FetchedAt    time.Time
}

// IsFresh reports whether the snapshot holds repositories fetched less than ttl before now.
func (s Snapshot) IsFresh(now time.Time, ttl time.Duration) bool {
	if len(s.Repositories) == 0 || s.FetchedAt.IsZero() {
		return false
	}
	return now.Sub(s.FetchedAt) < ttl
}

// FetchFunc loads the full repository listing from upstream.
type FetchFunc func(ctx context.Context) ([]model.Repository, error)

// Listing holds exactly one Snapshot for the whole process.
// It is not partitioned by any request parameter.
type Listing struct {
	mu    sync.RWMutex
	snap  Snapshot
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group
}

// NewListing creates an empty Listing. A nil clock defaults to time.Now.
func NewListing(ttl time.Duration, clock func() time.Time) *Listing {
	if clock == nil {
		clock = time.Now
	}
	return &Listing{ttl: ttl, now: clock}
}

// TTL returns the freshness window of the listing.
func (l *Listing) TTL() time.Duration { return l.ttl }

// Lookup returns the current snapshot and whether it is still fresh.
func (l *Listing) Lookup() (Snapshot, bool) {
	l.mu.RLock()
	snap := l.snap
	l.mu.RUnlock()
	return snap, snap.IsFresh(l.now(), l.ttl)
}

// Replace overwrites the snapshot. Nothing is merged.
func (l *Listing) Replace(repos []model.Repository, now time.Time) {
	l.mu.Lock()
	l.snap = Snapshot{Repositories: repos, FetchedAt: now}
	l.mu.Unlock()
}

// Refresh fetches a new listing and replaces the snapshot with it.
//
// Concurrent non-forced refreshes share a single upstream call. A forced
// refresh always issues its own call. On error the previous snapshot is left
// in place and the error is returned.
//
// A shared call outlives the caller that started it: cancelling that caller's
// ctx does not fail the other callers waiting on the same fetch.
func (l *Listing) Refresh(ctx context.Context, force bool, fetch FetchFunc) (Snapshot, error) {
	load := func(ctx context.Context) (any, error) {
		repos, err := fetch(ctx)
		if err != nil {
			return Snapshot{}, err
		}
		snap := Snapshot{Repositories: repos, FetchedAt: l.now()}
		l.Replace(snap.Repositories, snap.FetchedAt)
		return snap, nil
	}

	if force {
		v, err := load(ctx)
		return v.(Snapshot), err
	}

	shared := context.WithoutCancel(ctx)
	v, err, _ := l.group.Do("listing", func() (any, error) {
		return load(shared)
	})
	if err != nil {
		return Snapshot{}, err
	}
	return v.(Snapshot), nil
}
