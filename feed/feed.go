// Package feed keeps the most recent calorie statistics for the UI. Fetches
// may overlap; only the result of the newest fetch is allowed to commit.
package feed

import (
	"context"
	"sync"

	"github.com/caloriediary/go-diary-client/api"
	"github.com/caloriediary/go-diary-client/diary"
	"github.com/caloriediary/go-diary-client/session"
	"github.com/pkg/errors"
)

// Snapshot is the state the UI renders from.
type Snapshot struct {
	Period diary.Period
	Report *diary.StatsReport // nil while empty or failed
	Err    string             // user-facing message, empty when none
}

// StatsFeed issues stats fetches on period changes and manual refreshes.
// Every fetch takes a generation number; a result whose generation has been
// superseded is discarded before commit, so a slow older fetch can never
// overwrite a newer one. Requests themselves are never aborted.
type StatsFeed struct {
	client  *api.Client
	session *session.Store

	lock     sync.Mutex
	gen      uint64
	snapshot Snapshot
}

// New initializes a StatsFeed over the shared api client and session store.
func New(client *api.Client, store *session.Store) (*StatsFeed, error) {
	if client == nil {
		return nil, errors.New("[feed.New] api client is required")
	}
	if store == nil {
		return nil, errors.New("[feed.New] session store is required")
	}
	return &StatsFeed{
		client:   client,
		session:  store,
		snapshot: Snapshot{Period: diary.PeriodDay},
	}, nil
}

// Fetch loads the report for period and returns the snapshot after the
// attempt. Without a token it short-circuits to an empty snapshot and issues
// no request at all. Period changes are always a fresh round trip; nothing is
// cached across periods.
func (f *StatsFeed) Fetch(ctx context.Context, period diary.Period) Snapshot {
	gen := f.begin()

	if !f.session.IsAuthenticated() {
		return f.commit(gen, Snapshot{Period: period})
	}

	report, err := f.client.FetchStats(ctx, period, "")
	if err != nil {
		return f.commit(gen, Snapshot{Period: period, Err: api.Message(err)})
	}
	return f.commit(gen, Snapshot{Period: period, Report: report})
}

// Refresh re-fetches the current period, the manual refresh trigger.
func (f *StatsFeed) Refresh(ctx context.Context) Snapshot {
	f.lock.Lock()
	period := f.snapshot.Period
	f.lock.Unlock()
	return f.Fetch(ctx, period)
}

// Current returns the last committed snapshot.
func (f *StatsFeed) Current() Snapshot {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.snapshot
}

func (f *StatsFeed) begin() uint64 {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.gen++
	return f.gen
}

func (f *StatsFeed) commit(gen uint64, next Snapshot) Snapshot {
	f.lock.Lock()
	defer f.lock.Unlock()
	if gen != f.gen {
		// Superseded by a newer fetch: discard the stale result.
		return f.snapshot
	}
	f.snapshot = next
	return f.snapshot
}
