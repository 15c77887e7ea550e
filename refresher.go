package sheetredirect

import (
	"context"
	"log"
	"time"
)

const DefaultRefreshInterval = 30 * time.Second

func NewRefresher(src Source, store *Store, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Refresher{src: src, store: store, interval: interval}
}

// RefreshOnce fetches from the source and replaces the whole table with the
// result, even when the fetch failed. Nothing is replaced once ctx is done.
func (r *Refresher) RefreshOnce(ctx context.Context) FetchResult {
	log.Printf("Refreshing cache...")
	res := FetchRecords(ctx, r.src)
	if ctx.Err() != nil {
		log.Printf("refresh: dropped result, refresher stopped: %v", ctx.Err())
		return res
	}
	t := r.store.Replace(res.Records)
	log.Printf("refresh: table %s now holds %d records", t.ID, len(t.Records))
	return res
}

// Run refreshes once right away and then on every tick until ctx is done.
// Refreshes are started without waiting for the previous one, so a slow
// source can have several in flight; the last one to finish wins.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer r.wg.Wait()

	r.spawn(ctx, func() {
		log.Printf("Initial cache refresh complete.")
	})

	for {
		select {
		case <-ctx.Done():
			log.Printf("refresh: stopped: %v", ctx.Err())
			return
		case <-ticker.C:
			r.spawn(ctx, nil)
		}
	}
}

func (r *Refresher) spawn(ctx context.Context, done func()) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.RefreshOnce(ctx)
		if done != nil {
			done()
		}
	}()
}
